package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/grokify/apicligen/pkg/command"
	"github.com/grokify/apicligen/pkg/config"
	"github.com/grokify/apicligen/pkg/openapi"
)

// loadConfig loads the alias configuration from the --config-dir directory.
func loadConfig() (*config.Config, error) {
	dir, err := config.Dir(configDir)
	if err != nil {
		return nil, err
	}
	return config.Load(dir)
}

// resolveLocation maps ref to a description location. Existing files and
// URLs are used as given; anything else is looked up as an alias.
func resolveLocation(ref string) (string, error) {
	if openapi.IsURL(ref) {
		return ref, nil
	}
	if _, err := os.Stat(ref); err == nil {
		return ref, nil
	}
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	location := cfg.Resolve(ref)
	if location != ref {
		slog.Debug("resolved alias", "alias", ref, "location", location)
	}
	return location, nil
}

// loadDescription resolves ref and parses the description it names.
func loadDescription(ctx context.Context, ref string) (*openapi.Document, error) {
	location, err := resolveLocation(ref)
	if err != nil {
		return nil, err
	}
	doc, err := openapi.Load(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("loading description: %w", err)
	}
	return doc, nil
}

// buildTree builds the command tree, logging shadowed routes.
func buildTree(doc *openapi.Document) *command.Node {
	return command.NewBuilder(slog.Default()).Build(command.RoutesFrom(doc))
}
