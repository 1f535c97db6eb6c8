package command

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

// Handler receives the parsed invocation of an action command.
type Handler func(cmd *cobra.Command, inv *Invocation) error

// Synthesize builds a cobra command hierarchy for tree: one sub-command per
// resource segment and, under each resource, one sub-command per action.
// Action commands pass their parsed arguments to handler.
func Synthesize(tree *Node, name, short string, handler Handler) *cobra.Command {
	root := &cobra.Command{
		Use:           name,
		Short:         short,
		SilenceErrors: true,
		RunE:          runGroup,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	addNode(root, tree, nil, handler)
	return root
}

// addNode attaches the actions and child resources of node to parent.
// A child resource whose name matches one of the node's actions is grafted
// onto that action command.
func addNode(parent *cobra.Command, node *Node, resource []string, handler Handler) {
	actions := make(map[string]*cobra.Command, len(node.Actions))
	for _, action := range node.Actions {
		cmd := newActionCommand(NewActionSpec(resource, action), handler)
		actions[action.Name] = cmd
		parent.AddCommand(cmd)
	}

	for _, child := range node.Children {
		childResource := append(slices.Clone(resource), child.Name)
		if cmd, ok := actions[child.Name]; ok {
			addNode(cmd, child, childResource, handler)
			continue
		}
		cmd := &cobra.Command{
			Use:   child.Name,
			Short: fmt.Sprintf("Operations on %s", child.Name),
			RunE:  runGroup,
		}
		addNode(cmd, child, childResource, handler)
		parent.AddCommand(cmd)
	}
}

// runGroup shows help for a resource command invoked without an action and
// rejects words that name no sub-command.
func runGroup(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unknown command %q for %q", args[0], cmd.CommandPath())
	}
	return cmd.Help()
}

// option is an optional parameter together with the flag value bound to it.
type option struct {
	param Param
	value *typedValue
}

// flagUsage returns the help text of an option's flag. A bare boolean flag
// means true, so false has to be attached with "=".
func flagUsage(p Param) string {
	if p.Kind != KindBoolean {
		return p.Description
	}
	hint := fmt.Sprintf("(--%s=false to send false)", p.Flag)
	if p.Description == "" {
		return hint
	}
	return p.Description + " " + hint
}

func newActionCommand(spec ActionSpec, handler Handler) *cobra.Command {
	positional := make(map[string]any, len(spec.Positionals))
	options := make([]option, 0, len(spec.Options))
	body := &documentValue{}

	cmd := &cobra.Command{
		Use:   spec.Use(),
		Short: spec.Summary,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < len(spec.Positionals) {
				var missing []string
				for _, p := range spec.Positionals[len(args):] {
					missing = append(missing, p.Name)
				}
				return fmt.Errorf("missing required argument(s): %s", strings.Join(missing, ", "))
			}
			if len(args) > len(spec.Positionals) {
				return fmt.Errorf("accepts %d arg(s), received %d", len(spec.Positionals), len(args))
			}
			for i, p := range spec.Positionals {
				v, err := p.Kind.Convert(args[i])
				if err != nil {
					return fmt.Errorf("argument %s: %w", p.Name, err)
				}
				positional[p.Name] = v
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			inv := &Invocation{
				CommandPath:  spec.CommandPath(),
				Method:       spec.Method,
				PathTemplate: spec.PathTemplate,
				Positional:   positional,
				Optional:     make(map[string]any),
				HasBody:      spec.HasBody,
			}
			// Parameters that share a name in different locations each
			// get a flag; the first one given in declaration order wins.
			for _, o := range options {
				if _, ok := inv.Optional[o.param.Name]; o.value.set && !ok {
					inv.Optional[o.param.Name] = o.value.value
				}
			}
			if body.set {
				inv.Body = body.value
			}
			if handler == nil {
				return nil
			}
			return handler(cmd, inv)
		},
	}

	flags := cmd.Flags()
	for _, p := range spec.Options {
		v := &typedValue{kind: p.Kind}
		options = append(options, option{param: p, value: v})
		flag := flags.VarPF(v, p.Flag, "", flagUsage(p))
		if p.Kind == KindBoolean {
			flag.NoOptDefVal = "true"
		}
	}
	if spec.HasBody {
		flags.Var(body, BodyFlag, "Request body (JSON string, or @file)")
	}

	return cmd
}
