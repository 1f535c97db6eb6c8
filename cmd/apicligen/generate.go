package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/grokify/apicligen/pkg/artifact"
	"github.com/grokify/apicligen/pkg/openapi"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a CLI from an OpenAPI description",
	Long: `Generate a standalone command-line client from an OpenAPI description.

The output directory receives a Go module (go.mod, api.go, main.go), a
README listing every command and, unless disabled, a Postman collection.
Without --output the commands are listed and nothing is written.

Examples:
  # Generate into ./petcli
  apicligen generate --spec openapi.yaml --output ./petcli

  # Use an alias and a custom module path
  apicligen generate --spec pets --output ./petcli --module example.com/petcli

  # Regenerate whenever the description changes
  apicligen generate --spec openapi.yaml --output ./petcli --watch`,
	RunE: runGenerate,
}

var (
	specRef         string
	generateOutput  string
	generateModule  string
	generatePostman bool
	watchMode       bool
	watchDebounce   time.Duration
)

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&specRef, "spec", "s", "", "OpenAPI description: file, URL, or alias (required)")
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "Output directory for the generated CLI")
	generateCmd.Flags().StringVar(&generateModule, "module", "", "Go module path (default: output directory name)")
	generateCmd.Flags().BoolVar(&generatePostman, "postman", true, "Also write a Postman collection")
	generateCmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "Watch the description and regenerate on change")
	generateCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "Debounce interval for watch mode")

	if err := generateCmd.MarkFlagRequired("spec"); err != nil {
		panic(fmt.Sprintf("failed to mark spec flag required: %v", err))
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if watchMode {
		return withPrefix("Error generating CLI", runGenerateWatch(cmd))
	}
	return withPrefix("Error generating CLI", doGenerate(cmd))
}

func doGenerate(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	doc, err := loadDescription(ctx, specRef)
	if err != nil {
		return err
	}
	tree := buildTree(doc)

	if generateOutput == "" {
		entries := tree.Flatten()
		cmd.Printf("%d commands (no --output, nothing written)\n", len(entries))
		for _, entry := range entries {
			route := entry.Action.Representative()
			cmd.Printf("  %s  %s %s\n", entry, route.Method, route.Path)
		}
		return nil
	}

	opts := artifact.DefaultOptions()
	opts.ModuleName = generateModule
	opts.Postman = generatePostman

	gen, err := artifact.NewFileGenerator(generateOutput, opts)
	if err != nil {
		return err
	}
	defer func() { _ = gen.Close() }()

	if err := gen.WithLogger(slog.Default()).Generate(ctx, doc, tree); err != nil {
		return err
	}

	cmd.Printf("CLI generated successfully in %s\n", generateOutput)
	return nil
}

func runGenerateWatch(cmd *cobra.Command) error {
	if generateOutput == "" {
		return fmt.Errorf("--output is required for watch mode")
	}

	location, err := resolveLocation(specRef)
	if err != nil {
		return err
	}
	if openapi.IsURL(location) {
		return fmt.Errorf("watch mode needs a local file, got %s", location)
	}
	target, err := filepath.Abs(location)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}
	if _, err := os.Stat(target); err != nil {
		return fmt.Errorf("spec path error: %w", err)
	}

	cmd.Println("Starting watch mode...")
	if err := doGenerate(cmd); err != nil {
		cmd.Printf("Initial generation failed: %v\n", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace the file instead of writing it in place, so
	// the directory is watched and events are filtered by name.
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("adding directory to watcher: %w", err)
	}
	cmd.Printf("Watching file: %s\n", location)
	cmd.Println("Press Ctrl+C to stop")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	regen := newCoalescer(ctx, func() {
		cmd.Printf("\n[%s] Change detected, regenerating...\n", time.Now().Format("15:04:05"))
		if err := doGenerate(cmd); err != nil {
			cmd.Printf("Generation failed: %v\n", err)
		}
	})

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			cmd.Println("Stopping watch mode")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(watchDebounce, regen.trigger)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cmd.Printf("Watcher error: %v\n", err)
		}
	}
}

// coalescer runs fn on a single goroutine until ctx is done. Triggers that
// arrive while fn is running collapse into one further run.
type coalescer struct {
	pending chan struct{}
}

func newCoalescer(ctx context.Context, fn func()) *coalescer {
	c := &coalescer{pending: make(chan struct{}, 1)}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-c.pending:
				fn()
			}
		}
	}()
	return c
}

func (c *coalescer) trigger() {
	select {
	case c.pending <- struct{}{}:
	default:
	}
}
