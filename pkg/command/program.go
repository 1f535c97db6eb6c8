package command

import (
	"context"
	"io"
	"maps"
	"regexp"
	"strings"
	"unicode"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Invocation is the structured result of parsing one command line.
type Invocation struct {
	CommandPath  []string
	Method       string
	PathTemplate string
	Positional   map[string]any
	Optional     map[string]any
	Body         any
	HasBody      bool
}

// Values returns positional and optional values in a single map.
func (inv *Invocation) Values() map[string]any {
	out := make(map[string]any, len(inv.Positional)+len(inv.Optional))
	maps.Copy(out, inv.Optional)
	maps.Copy(out, inv.Positional)
	return out
}

// UsageError reports a command line that could not be parsed.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }

func (e *UsageError) Unwrap() error { return e.Err }

// Program parses command lines against a command tree.
type Program struct {
	tree        *Node
	name        string
	description string
	out         io.Writer
	errOut      io.Writer
}

// ProgramOption configures a Program.
type ProgramOption func(*Program)

// WithOutput directs help and usage text to out and errOut.
func WithOutput(out, errOut io.Writer) ProgramOption {
	return func(p *Program) {
		p.out = out
		p.errOut = errOut
	}
}

// NewProgram creates a Program named name for tree.
func NewProgram(tree *Node, name, description string, opts ...ProgramOption) *Program {
	p := &Program{
		tree:        tree,
		name:        name,
		description: description,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Command synthesizes a fresh cobra hierarchy whose action commands call
// handler.
func (p *Program) Command(handler Handler) *cobra.Command {
	cmd := Synthesize(p.tree, p.name, p.description, handler)
	if p.out != nil {
		cmd.SetOut(p.out)
	}
	if p.errOut != nil {
		cmd.SetErr(p.errOut)
	}
	return cmd
}

// Parse parses args and returns the selected action's invocation. It
// returns a nil invocation without error when only help was printed.
func (p *Program) Parse(ctx context.Context, args []string) (*Invocation, error) {
	var inv *Invocation
	cmd := p.Command(func(_ *cobra.Command, parsed *Invocation) error {
		inv = parsed
		return nil
	})

	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(negativesAsPositionals(cmd, args))
	if err := cmd.ExecuteContext(ctx); err != nil {
		return nil, &UsageError{Err: err}
	}
	return inv, nil
}

var negativeNumber = regexp.MustCompile(`^-\d+(\.\d+)?$`)

// negativesAsPositionals moves the positionals of an action command line
// behind "--" when one of them is a negative number, so that "-5" is not
// read as a shorthand flag. Command lines are left alone when the action
// has a flag that could itself look like a number.
func negativesAsPositionals(root *cobra.Command, args []string) []string {
	target, rest, err := root.Find(args)
	if err != nil || target == root || !hasNegative(rest) || hasNumericFlag(target) {
		return args
	}

	var flags, positionals []string
	flagSet := target.Flags()
	for i := 0; i < len(rest); i++ {
		arg := rest[i]
		switch {
		case arg == "--":
			positionals = append(positionals, rest[i+1:]...)
			i = len(rest)
		case negativeNumber.MatchString(arg):
			positionals = append(positionals, arg)
		case strings.HasPrefix(arg, "--") && !strings.Contains(arg, "="):
			flags = append(flags, arg)
			f := flagSet.Lookup(arg[2:])
			if f != nil && f.NoOptDefVal == "" && i+1 < len(rest) {
				i++
				flags = append(flags, rest[i])
			}
		case strings.HasPrefix(arg, "-") && len(arg) > 1:
			flags = append(flags, arg)
		default:
			positionals = append(positionals, arg)
		}
	}

	out := strings.Fields(target.CommandPath())[1:]
	out = append(out, flags...)
	out = append(out, "--")
	return append(out, positionals...)
}

func hasNegative(args []string) bool {
	for _, arg := range args {
		if arg == "--" {
			return false
		}
		if negativeNumber.MatchString(arg) {
			return true
		}
	}
	return false
}

func hasNumericFlag(cmd *cobra.Command) bool {
	numeric := false
	check := func(f *pflag.Flag) {
		if f.Shorthand != "" && unicode.IsDigit(rune(f.Shorthand[0])) {
			numeric = true
		}
		if strings.TrimLeftFunc(f.Name, unicode.IsDigit) == "" {
			numeric = true
		}
	}
	cmd.Flags().VisitAll(check)
	cmd.InheritedFlags().VisitAll(check)
	return numeric
}

// PrintHelp writes the top-level help text.
func (p *Program) PrintHelp() error {
	return p.Command(nil).Help()
}
