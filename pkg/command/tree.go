package command

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/grokify/apicligen/pkg/openapi"
)

// Route is one (method, path template) pair of a description together with
// its operation.
type Route struct {
	Method    string
	Path      string
	Operation *openapi.Operation
}

// RoutesFrom lists every operation of doc in document order.
func RoutesFrom(doc *openapi.Document) []Route {
	ops := doc.Operations()
	routes := make([]Route, 0, len(ops))
	for _, op := range ops {
		routes = append(routes, Route{Method: op.Method, Path: op.Path, Operation: op})
	}
	return routes
}

// Action groups the routes that classify to the same action of a resource.
// The first route is the representative used to derive arguments.
type Action struct {
	Name   string
	Routes []Route
}

// Representative returns the first route seen for the action.
func (a *Action) Representative() Route {
	return a.Routes[0]
}

// Node is one level of the command tree. Children and Actions keep the
// order in which they were first seen.
type Node struct {
	Name     string
	Children []*Node
	Actions  []*Action

	childIndex  map[string]*Node
	actionIndex map[string]*Action
}

func newNode(name string) *Node {
	return &Node{
		Name:        name,
		childIndex:  make(map[string]*Node),
		actionIndex: make(map[string]*Action),
	}
}

// Child returns the child resource with the given name, or nil.
func (n *Node) Child(name string) *Node {
	return n.childIndex[name]
}

// Action returns the action with the given name, or nil.
func (n *Node) Action(name string) *Action {
	return n.actionIndex[name]
}

// HasActions reports whether the node is a resource with at least one action.
func (n *Node) HasActions() bool {
	return len(n.Actions) > 0
}

// Lookup follows a resource path from n and returns the node it ends at.
func (n *Node) Lookup(resource []string) *Node {
	cur := n
	for _, name := range resource {
		if cur = cur.Child(name); cur == nil {
			return nil
		}
	}
	return cur
}

func (n *Node) ensureChild(name string) *Node {
	if child, ok := n.childIndex[name]; ok {
		return child
	}
	child := newNode(name)
	n.childIndex[name] = child
	n.Children = append(n.Children, child)
	return child
}

// addRoute appends route to the named action and reports whether the
// action already existed.
func (n *Node) addRoute(name string, route Route) bool {
	if action, ok := n.actionIndex[name]; ok {
		action.Routes = append(action.Routes, route)
		return true
	}
	action := &Action{Name: name, Routes: []Route{route}}
	n.actionIndex[name] = action
	n.Actions = append(n.Actions, action)
	return false
}

// Walk calls fn for n and every descendant, depth-first pre-order, passing
// the resource path of each node. The root is visited with an empty path.
func (n *Node) Walk(fn func(resource []string, node *Node)) {
	n.walk(nil, fn)
}

func (n *Node) walk(resource []string, fn func([]string, *Node)) {
	fn(resource, n)
	for _, child := range n.Children {
		child.walk(append(slices.Clone(resource), child.Name), fn)
	}
}

// Entry is a (resource path, action) pair of a flattened tree.
type Entry struct {
	Resource []string
	Action   *Action
}

// CommandPath returns the resource path followed by the action name.
func (e Entry) CommandPath() []string {
	return append(slices.Clone(e.Resource), e.Action.Name)
}

// String returns the space-separated command path.
func (e Entry) String() string {
	return strings.Join(e.CommandPath(), " ")
}

// Flatten lists every (resource path, action) pair in tree order.
func (n *Node) Flatten() []Entry {
	var entries []Entry
	n.Walk(func(resource []string, node *Node) {
		for _, action := range node.Actions {
			entries = append(entries, Entry{Resource: resource, Action: action})
		}
	})
	return entries
}

// Builder folds routes into a command tree.
type Builder struct {
	logger *slog.Logger
}

// NewBuilder creates a Builder. A nil logger uses slog.Default().
func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{logger: logger}
}

// Build classifies every route and places it under its resource path.
// Routes that collapse onto an existing (resource, action) pair are kept
// in the action's route list; the first one stays representative.
func (b *Builder) Build(routes []Route) *Node {
	root := newNode("")
	for _, route := range routes {
		resource, action := Classify(route.Path, route.Method)

		node := root
		for _, name := range resource {
			node = node.ensureChild(name)
		}

		if node.addRoute(action, route) {
			first := node.Action(action).Representative()
			b.logger.Debug("route shadowed by earlier operation",
				"command", strings.Join(append(slices.Clone(resource), action), " "),
				"route", route.Method+" "+route.Path,
				"kept", first.Method+" "+first.Path)
		}
	}
	return root
}

// Build is a convenience wrapper around NewBuilder(nil).Build.
func Build(routes []Route) *Node {
	return NewBuilder(nil).Build(routes)
}

// BuildDocument builds the command tree for every operation in doc.
func BuildDocument(doc *openapi.Document) *Node {
	return Build(RoutesFrom(doc))
}
