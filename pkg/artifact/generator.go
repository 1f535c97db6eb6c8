// Package artifact writes a standalone command-line client for an API
// description: a Go module with a typed API client and a cobra entry point,
// a README, and optionally a Postman collection.
package artifact

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/template"

	"github.com/grokify/omnistorage"
	"github.com/grokify/omnistorage/backend/file"
	"golang.org/x/tools/imports"

	"github.com/grokify/apicligen/pkg/command"
	"github.com/grokify/apicligen/pkg/openapi"
)

// File names written by the generator.
const (
	GoModFile   = "go.mod"
	APIFile     = "api.go"
	MainFile    = "main.go"
	ReadmeFile  = "README.md"
	PostmanFile = "postman_collection.json"
)

// Generator renders artifacts into a storage backend.
type Generator struct {
	backend omnistorage.Backend
	options *Options
	logger  *slog.Logger
}

// NewGenerator creates a generator writing to backend.
func NewGenerator(backend omnistorage.Backend, opts *Options) *Generator {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Generator{
		backend: backend,
		options: opts,
		logger:  slog.Default(),
	}
}

// NewFileGenerator creates a generator writing into dir, creating it when
// needed. The module name defaults to the base name of dir.
func NewFileGenerator(dir string, opts *Options) (*Generator, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.ModuleName == "" {
		o := *opts
		o.ModuleName = moduleName(dir)
		opts = &o
	}

	//nolint:gosec // G301: generated sources are meant to be shared
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return NewGenerator(file.New(file.Config{Root: dir}), opts), nil
}

// WithLogger sets the logger used for progress messages.
func (g *Generator) WithLogger(logger *slog.Logger) *Generator {
	g.logger = logger
	return g
}

// Close releases the storage backend.
func (g *Generator) Close() error {
	if c, ok := g.backend.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Generate writes every artifact for doc and its command tree.
func (g *Generator) Generate(ctx context.Context, doc *openapi.Document, tree *command.Node) error {
	if g.options.ModuleName == "" {
		return fmt.Errorf("module name is required")
	}
	data := BuildSiteData(doc, tree, g.options)

	funcMap := template.FuncMap{
		"quote":   strconv.Quote,
		"comment": comment,
		"cell":    cell,
	}

	files := []struct {
		name   string
		tmpl   string
		goFile bool
	}{
		{GoModFile, goModTemplate, false},
		{APIFile, apiTemplate, true},
		{MainFile, mainTemplate, true},
		{ReadmeFile, readmeTemplate, false},
	}

	for _, f := range files {
		tmpl, err := template.New(f.name).Funcs(funcMap).Parse(f.tmpl)
		if err != nil {
			return fmt.Errorf("parsing %s template: %w", f.name, err)
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return fmt.Errorf("executing %s template: %w", f.name, err)
		}

		content := buf.Bytes()
		if f.goFile {
			content, err = imports.Process(f.name, content, &imports.Options{
				Comments:   true,
				TabIndent:  true,
				TabWidth:   8,
				FormatOnly: true,
			})
			if err != nil {
				return fmt.Errorf("formatting %s: %w", f.name, err)
			}
		}

		if err := g.write(ctx, f.name, content); err != nil {
			return err
		}
	}

	if g.options.Postman {
		var buf bytes.Buffer
		if err := WritePostman(&buf, data); err != nil {
			return err
		}
		if err := g.write(ctx, PostmanFile, buf.Bytes()); err != nil {
			return err
		}
	}

	g.logger.Debug("artifacts generated", "module", data.Module, "commands", len(data.Commands))
	return nil
}

func (g *Generator) write(ctx context.Context, name string, content []byte) error {
	w, err := g.backend.NewWriter(ctx, name)
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	if _, err := w.Write(content); err != nil {
		_ = w.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", name, err)
	}
	return nil
}

// Template helper functions

// comment flattens s onto one line for use in a Go comment.
func comment(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// cell makes s safe for a Markdown table cell.
func cell(s string) string {
	return strings.ReplaceAll(comment(s), "|", `\|`)
}
