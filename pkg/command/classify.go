// Package command derives a resource/action command tree from an OpenAPI
// description and synthesizes a runnable cobra command hierarchy from it.
//
// The pipeline is:
//
//  1. Classify: (path, verb) -> (resource path, action name)
//  2. Build: routes -> *Node tree keyed by resource segment
//  3. Synthesize: *Node -> *cobra.Command with one argument per parameter
//  4. Program.Parse: raw arguments -> *Invocation
package command

import "strings"

// Canonical action names.
const (
	ActionList   = "list"
	ActionGet    = "get"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// RootResource is the resource path assigned to routes with no literal
// segments, such as "/" or "/{tenant}".
const RootResource = "root"

// literalActions are trailing segments that name the action themselves.
var literalActions = map[string]bool{
	"search": true,
	"filter": true,
	"export": true,
	"import": true,
}

// IsLiteralAction reports whether segment overrides the verb-derived action.
func IsLiteralAction(segment string) bool {
	return literalActions[segment]
}

// Classify derives the resource path and action name for a route.
//
// Placeholder segments are dropped from the resource path. GET maps to
// "get" on item endpoints (trailing placeholder) and "list" otherwise,
// POST to "create", PUT and PATCH to "update", DELETE to "delete", and any
// other verb to its lower-cased name. A trailing "search", "filter",
// "export" or "import" segment replaces the action when at least one other
// literal segment remains.
func Classify(path, verb string) ([]string, string) {
	trimmed := strings.Trim(path, "/")
	method := strings.ToLower(verb)

	var segments []string
	for _, seg := range strings.Split(trimmed, "/") {
		if seg == "" || isPlaceholder(seg) {
			continue
		}
		segments = append(segments, seg)
	}

	if len(segments) == 0 {
		return []string{RootResource}, method
	}

	action := actionForMethod(method, endsWithPlaceholder(trimmed))

	if last := segments[len(segments)-1]; len(segments) > 1 && literalActions[last] {
		action = last
		segments = segments[:len(segments)-1]
	}

	return segments, action
}

func actionForMethod(method string, itemEndpoint bool) string {
	switch method {
	case "get":
		if itemEndpoint {
			return ActionGet
		}
		return ActionList
	case "post":
		return ActionCreate
	case "put", "patch":
		return ActionUpdate
	case "delete":
		return ActionDelete
	default:
		return method
	}
}

func isPlaceholder(segment string) bool {
	return strings.HasPrefix(segment, "{") && strings.HasSuffix(segment, "}")
}

func endsWithPlaceholder(trimmed string) bool {
	idx := strings.LastIndex(trimmed, "/")
	return isPlaceholder(trimmed[idx+1:])
}
