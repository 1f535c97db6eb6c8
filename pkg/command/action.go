package command

import (
	"slices"
	"strings"
)

// Param describes one argument of an action command.
type Param struct {
	Name        string // parameter name as declared
	Flag        string // flag name; empty for positionals
	In          string
	Kind        Kind
	Description string
}

// ActionSpec is everything needed to synthesize one action command. It is
// derived from the action's representative route and does not depend on
// any argument-parsing library.
type ActionSpec struct {
	Resource     []string
	Name         string
	Summary      string
	Method       string
	PathTemplate string
	Positionals  []Param
	Options      []Param
	HasBody      bool
}

// BodyFlag is the flag that carries the request body.
const BodyFlag = "data"

// reservedFlags cannot be used for parameters.
var reservedFlags = map[string]bool{
	"help": true,
}

// NewActionSpec derives the arguments of an action from its representative
// route: required parameters become positionals in declaration order and
// optional ones become flags named after the parameter.
func NewActionSpec(resource []string, action *Action) ActionSpec {
	route := action.Representative()
	op := route.Operation

	spec := ActionSpec{
		Resource:     slices.Clone(resource),
		Name:         action.Name,
		Method:       strings.ToUpper(route.Method),
		PathTemplate: route.Path,
	}
	if op == nil {
		return spec
	}

	spec.Summary = op.Summary
	spec.HasBody = op.HasBody()

	used := make(map[string]bool)
	if spec.HasBody {
		used[BodyFlag] = true
	}

	for _, p := range op.Parameters {
		param := Param{
			Name:        p.Name,
			In:          p.In,
			Kind:        KindOf(p.Kind()),
			Description: p.Description,
		}
		if p.Required {
			spec.Positionals = append(spec.Positionals, param)
			continue
		}
		param.Flag = flagName(p.Name, p.In, used)
		spec.Options = append(spec.Options, param)
	}

	return spec
}

// flagName picks a flag name for a parameter that collides with neither a
// reserved flag nor an earlier parameter.
func flagName(name, in string, used map[string]bool) string {
	candidate := name
	if reservedFlags[candidate] || used[candidate] {
		candidate = "param-" + name
	}
	if used[candidate] && in != "" {
		candidate = name + "-" + in
	}
	used[candidate] = true
	return candidate
}

// CommandPath returns the resource path followed by the action name.
func (s ActionSpec) CommandPath() []string {
	return append(slices.Clone(s.Resource), s.Name)
}

// Use returns the cobra usage line of the action command.
func (s ActionSpec) Use() string {
	parts := []string{s.Name}
	for _, p := range s.Positionals {
		parts = append(parts, "<"+p.Name+">")
	}
	return strings.Join(parts, " ")
}
