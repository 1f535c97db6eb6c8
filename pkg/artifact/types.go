package artifact

import (
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/grokify/apicligen/pkg/command"
	"github.com/grokify/apicligen/pkg/openapi"
)

// Options configures artifact generation.
type Options struct {
	// ModuleName is the Go module path of the generated CLI. Defaults to the
	// output directory's base name.
	ModuleName string

	// GoVersion is the go directive of the generated go.mod.
	GoVersion string

	// CobraVersion is the required github.com/spf13/cobra version.
	CobraVersion string

	// Postman also writes a Postman v2.1 collection.
	Postman bool
}

// DefaultOptions returns default generation options.
func DefaultOptions() *Options {
	return &Options{
		GoVersion:    "1.22",
		CobraVersion: "v1.10.2",
		Postman:      true,
	}
}

// SiteData is the template input for every generated file.
type SiteData struct {
	Module       string
	Name         string
	Title        string
	Description  string
	BaseURL      string
	BaseURLEnv   string
	GoVersion    string
	CobraVersion string
	Commands     []Command
}

// Command is one (resource, action) pair of the generated CLI.
type Command struct {
	Path        []string
	Func        string
	Method      string
	Template    string
	Summary     string
	Positionals []Arg
	Flags       []Arg
	HasBody     bool
}

// Arg is one parameter of a generated command.
type Arg struct {
	Name        string
	Flag        string
	In          string
	Kind        string
	Description string
}

// Use returns the usage line of the command's leaf.
func (c Command) Use() string {
	parts := []string{c.Path[len(c.Path)-1]}
	for _, p := range c.Positionals {
		parts = append(parts, "<"+p.Name+">")
	}
	return strings.Join(parts, " ")
}

// CommandLine returns the space-separated command path.
func (c Command) CommandLine() string {
	return strings.Join(c.Path, " ")
}

var nonIdent = regexp.MustCompile(`[^A-Za-z0-9]+`)

// BuildSiteData collects the template input for doc and tree.
func BuildSiteData(doc *openapi.Document, tree *command.Node, opts *Options) *SiteData {
	name := path.Base(opts.ModuleName)
	data := &SiteData{
		Module:       opts.ModuleName,
		Name:         name,
		Title:        doc.Info.Title,
		Description:  doc.Description(),
		BaseURL:      doc.BaseURL(),
		BaseURLEnv:   strcase.ToScreamingSnake(nonIdent.ReplaceAllString(name, "_")) + "_BASE_URL",
		GoVersion:    opts.GoVersion,
		CobraVersion: opts.CobraVersion,
	}
	if data.Title == "" {
		data.Title = name
	}

	funcs := make(map[string]int)
	for _, entry := range tree.Flatten() {
		spec := command.NewActionSpec(entry.Resource, entry.Action)
		cmd := Command{
			Path:     spec.CommandPath(),
			Func:     funcName(spec.CommandPath(), funcs),
			Method:   spec.Method,
			Template: spec.PathTemplate,
			Summary:  spec.Summary,
			HasBody:  spec.HasBody,
		}
		for _, p := range spec.Positionals {
			cmd.Positionals = append(cmd.Positionals, newArg(p))
		}
		for _, p := range spec.Options {
			cmd.Flags = append(cmd.Flags, newArg(p))
		}
		data.Commands = append(data.Commands, cmd)
	}
	return data
}

func newArg(p command.Param) Arg {
	return Arg{
		Name:        p.Name,
		Flag:        p.Flag,
		In:          p.In,
		Kind:        string(p.Kind),
		Description: p.Description,
	}
}

// funcName derives a unique exported method name from a command path.
func funcName(path []string, seen map[string]int) string {
	name := strcase.ToCamel(nonIdent.ReplaceAllString(strings.Join(path, "_"), "_"))
	if name == "" || (name[0] >= '0' && name[0] <= '9') {
		name = "Call" + name
	}
	seen[name]++
	if n := seen[name]; n > 1 {
		name += strconv.Itoa(n)
	}
	return name
}

// moduleName defaults the module path to the base name of dir.
func moduleName(dir string) string {
	base := filepath.Base(filepath.Clean(dir))
	base = strings.Trim(nonIdent.ReplaceAllString(strings.ToLower(base), "-"), "-")
	if base == "" || base == "." {
		return "apicli"
	}
	return base
}
