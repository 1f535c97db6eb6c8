// Package config manages the persisted alias configuration: a single JSON
// document mapping alias names to API description locations.
//
// The file is read once by Load and rewritten after every mutation. There
// is no locking; concurrent writers from separate processes race and the
// last save wins.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/go-playground/validator/v10"
	"github.com/tidwall/jsonc"
)

const (
	// EnvConfigDir overrides the configuration directory.
	EnvConfigDir = "APICLIGEN_CONFIG_DIR"
	// LegacyEnvConfigDir is honoured when EnvConfigDir is unset.
	LegacyEnvConfigDir = "OPENAPI_CLI_CONFIG_DIR"
	// DefaultDirName is the directory created under the user's home.
	DefaultDirName = ".openapi_cli_generator"
	// FileName is the configuration file inside the directory.
	FileName = "config.json"

	dirMode  = 0o700
	fileMode = 0o600
)

var (
	ErrAliasExists   = errors.New("alias already exists")
	ErrAliasNotFound = errors.New("alias not found")
	ErrInvalidAlias  = errors.New("invalid alias")
	ErrCorrupt       = errors.New("corrupt configuration file")
)

var validate = validator.New()

// Alias is one name -> location entry.
type Alias struct {
	Name     string `json:"name" validate:"required,printascii,excludesall= /,max=64"`
	Location string `json:"location" validate:"required"`
}

// Config is the loaded alias configuration.
type Config struct {
	Aliases map[string]string `json:"aliases"`

	path string
}

// Dir returns the configuration directory: override when set, then
// $APICLIGEN_CONFIG_DIR, then $OPENAPI_CLI_CONFIG_DIR, then
// ~/.openapi_cli_generator.
func Dir(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	for _, env := range []string{EnvConfigDir, LegacyEnvConfigDir} {
		if dir := os.Getenv(env); dir != "" {
			return dir, nil
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, DefaultDirName), nil
}

// Load reads the configuration in dir, creating the directory and a default
// file when they do not exist. A file that cannot be parsed is reported as
// ErrCorrupt and left untouched.
func Load(dir string) (*Config, error) {
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	cfg := &Config{
		Aliases: make(map[string]string),
		path:    filepath.Join(dir, FileName),
	}

	data, err := os.ReadFile(cfg.path)
	if errors.Is(err, os.ErrNotExist) {
		if err := cfg.save(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(jsonc.ToJSON(data), cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, cfg.path, err)
	}
	if cfg.Aliases == nil {
		cfg.Aliases = make(map[string]string)
	}
	return cfg, nil
}

// Path returns the location of the configuration file.
func (c *Config) Path() string {
	return c.path
}

// Add records a new alias. It fails with ErrAliasExists when name is
// already taken.
func (c *Config) Add(name, location string) error {
	if err := validateAlias(name, location); err != nil {
		return err
	}
	if _, ok := c.Aliases[name]; ok {
		return fmt.Errorf("%w: %q (use update to change it)", ErrAliasExists, name)
	}
	c.Aliases[name] = location
	return c.save()
}

// Get returns the location recorded for name.
func (c *Config) Get(name string) (string, error) {
	location, ok := c.Aliases[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrAliasNotFound, name)
	}
	return location, nil
}

// Update changes the location of an existing alias.
func (c *Config) Update(name, location string) error {
	if _, ok := c.Aliases[name]; !ok {
		return fmt.Errorf("%w: %q", ErrAliasNotFound, name)
	}
	if err := validateAlias(name, location); err != nil {
		return err
	}
	c.Aliases[name] = location
	return c.save()
}

// Remove deletes an alias.
func (c *Config) Remove(name string) error {
	if _, ok := c.Aliases[name]; !ok {
		return fmt.Errorf("%w: %q", ErrAliasNotFound, name)
	}
	delete(c.Aliases, name)
	return c.save()
}

// List returns every alias sorted by name.
func (c *Config) List() []Alias {
	names := make([]string, 0, len(c.Aliases))
	for name := range c.Aliases {
		names = append(names, name)
	}
	slices.Sort(names)

	aliases := make([]Alias, len(names))
	for i, name := range names {
		aliases[i] = Alias{Name: name, Location: c.Aliases[name]}
	}
	return aliases
}

// Clear removes every alias.
func (c *Config) Clear() error {
	c.Aliases = make(map[string]string)
	return c.save()
}

// Resolve returns the location for ref when it names an alias, or ref
// itself otherwise.
func (c *Config) Resolve(ref string) string {
	if location, ok := c.Aliases[ref]; ok {
		return location
	}
	return ref
}

func (c *Config) save() error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(c.path, buf.Bytes(), fileMode); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func validateAlias(name, location string) error {
	if err := validate.Struct(Alias{Name: name, Location: location}); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s fails %q", ErrInvalidAlias, verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidAlias, err)
	}
	return nil
}
