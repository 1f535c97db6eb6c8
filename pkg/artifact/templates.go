package artifact

const goModTemplate = `module {{.Module}}

go {{.GoVersion}}

require github.com/spf13/cobra {{.CobraVersion}}
`

const apiTemplate = `// Code generated by apicligen. DO NOT EDIT.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

// DefaultBaseURL is the server declared by the API description.
const DefaultBaseURL = {{quote .BaseURL}}

// API is a client for {{comment .Title}}.
type API struct {
	BaseURL string
	Client  *http.Client
}

// NewAPI creates a client for baseURL.
func NewAPI(baseURL string) *API {
	return &API{BaseURL: baseURL, Client: http.DefaultClient}
}

// APIError is returned for responses outside the 2xx range.
type APIError struct {
	Method string
	URL    string
	Status string
	Body   []byte
}

func (e *APIError) Error() string {
	body := strings.TrimSpace(string(e.Body))
	if body == "" {
		return fmt.Sprintf("%s %s: %s", e.Method, e.URL, e.Status)
	}
	return fmt.Sprintf("%s %s: %s: %s", e.Method, e.URL, e.Status, body)
}

var placeholder = regexp.MustCompile(` + "`" + `\{([^{}]+)\}` + "`" + `)

// do substitutes path placeholders from params, sends the remaining params
// as the query string and body as JSON, and returns the response body.
func (a *API) do(ctx context.Context, method, template string, params map[string]string, body any) ([]byte, error) {
	used := make(map[string]bool)
	path := placeholder.ReplaceAllStringFunc(template, func(match string) string {
		name := match[1 : len(match)-1]
		v, ok := params[name]
		if !ok {
			return match
		}
		used[name] = true
		return url.PathEscape(v)
	})

	query := url.Values{}
	for name, v := range params {
		if !used[name] {
			query.Set(name, v)
		}
	}

	target := strings.TrimRight(a.BaseURL, "/") + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Method: method, URL: target, Status: resp.Status, Body: data}
	}
	return data, nil
}
{{range .Commands}}
// {{.Func}} calls {{.Method}} {{comment .Template}}.
func (a *API) {{.Func}}(ctx context.Context, params map[string]string, body any) ([]byte, error) {
	return a.do(ctx, {{quote .Method}}, {{quote .Template}}, params, body)
}
{{end}}`

const mainTemplate = `// Code generated by apicligen. DO NOT EDIT.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

type argSpec struct {
	Name        string
	Flag        string
	Description string
}

type commandSpec struct {
	Path        []string
	Summary     string
	Positionals []argSpec
	Flags       []argSpec
	HasBody     bool
	Call        func(*API, context.Context, map[string]string, any) ([]byte, error)
}

var commands = []commandSpec{
{{- range .Commands}}
	{
		Path:    []string{ {{- range $i, $p := .Path}}{{if $i}}, {{end}}{{quote $p}}{{end -}} },
		Summary: {{quote .Summary}},
		Positionals: []argSpec{
{{- range .Positionals}}
			{Name: {{quote .Name}}, Description: {{quote .Description}}},
{{- end}}
		},
		Flags: []argSpec{
{{- range .Flags}}
			{Name: {{quote .Name}}, Flag: {{quote .Flag}}, Description: {{quote .Description}}},
{{- end}}
		},
		HasBody: {{.HasBody}},
		Call:    (*API).{{.Func}},
	},
{{- end}}
}

func main() {
	api := NewAPI(baseURL())

	root := &cobra.Command{
		Use:           {{quote .Name}},
		Short:         {{quote .Title}},
		Long:          {{quote .Description}},
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	for _, spec := range commands {
		addCommand(root, api, spec)
	}

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func baseURL() string {
	if u := os.Getenv({{quote .BaseURLEnv}}); u != "" {
		return u
	}
	return DefaultBaseURL
}

// child returns the sub-command of parent named name, creating a group
// command when there is none.
func child(parent *cobra.Command, name string) *cobra.Command {
	for _, c := range parent.Commands() {
		if c.Name() == name {
			return c
		}
	}
	group := &cobra.Command{
		Use:   name,
		Short: "Operations on " + name,
	}
	parent.AddCommand(group)
	return group
}

func addCommand(root *cobra.Command, api *API, spec commandSpec) {
	parent := root
	for _, name := range spec.Path[:len(spec.Path)-1] {
		parent = child(parent, name)
	}

	use := []string{spec.Path[len(spec.Path)-1]}
	for _, p := range spec.Positionals {
		use = append(use, "<"+p.Name+">")
	}

	values := make(map[string]*string)
	var data string

	cmd := &cobra.Command{
		Use:   strings.Join(use, " "),
		Short: spec.Summary,
		Args:  cobra.ExactArgs(len(spec.Positionals)),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			params := make(map[string]string)
			for i, p := range spec.Positionals {
				params[p.Name] = args[i]
			}
			for _, p := range spec.Flags {
				if cmd.Flags().Changed(p.Flag) {
					params[p.Name] = *values[p.Flag]
				}
			}

			var body any
			if data != "" {
				if err := json.Unmarshal([]byte(data), &body); err != nil {
					return fmt.Errorf("invalid --data: %w", err)
				}
			}

			out, err := spec.Call(api, cmd.Context(), params, body)
			if err != nil {
				return err
			}
			return printResponse(cmd.OutOrStdout(), out)
		},
	}

	for _, p := range spec.Flags {
		values[p.Flag] = cmd.Flags().String(p.Flag, "", p.Description)
	}
	if spec.HasBody {
		cmd.Flags().StringVar(&data, "data", "", "Request body (JSON)")
	}

	parent.AddCommand(cmd)
}

func printResponse(w io.Writer, data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		buf.Reset()
		buf.Write(data)
	}
	buf.WriteByte('\n')
	_, err := w.Write(buf.Bytes())
	return err
}
`

const readmeTemplate = `# {{.Name}}

{{if .Description}}{{.Description}}

{{end}}Command-line client for {{.Title}}, generated by apicligen.

## Build

` + "```sh" + `
go mod tidy
go build -o {{.Name}} .
` + "```" + `

Requests go to ` + "`{{.BaseURL}}`" + ` unless ` + "`{{.BaseURLEnv}}`" + ` is set.

## Commands

| Command | Request | Summary |
|---|---|---|
{{range .Commands}}| ` + "`{{$.Name}} {{.CommandLine}}{{range .Positionals}} <{{.Name}}>{{end}}`" + ` | ` + "`{{.Method}} {{.Template}}`" + ` | {{cell .Summary}} |
{{end}}`
