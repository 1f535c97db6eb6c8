package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/grokify/apicligen/pkg/openapi"
)

var aliasCmd = &cobra.Command{
	Use:   "alias",
	Short: "Manage API aliases",
	Long: `Manage short names for OpenAPI descriptions.

Aliases are stored in config.json inside the configuration directory
(--config-dir, $APICLIGEN_CONFIG_DIR, or ~/.openapi_cli_generator) and can
be used wherever a description is expected.

Examples:
  apicligen alias add pets ./petstore.yaml
  apicligen alias list
  apicligen alias update pets https://petstore3.swagger.io/api/v3/openapi.json
  apicligen alias remove pets`,
}

var aliasAddCmd = &cobra.Command{
	Use:   "add <name> <specPathOrUrl>",
	Short: "Add an API alias",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPrefix("Error adding alias", runAliasAdd(cmd, args[0], args[1]))
	},
}

var aliasRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove an API alias",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPrefix("Error removing alias", runAliasRemove(cmd, args[0]))
	},
}

var aliasListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all API aliases",
	Args:  cobra.NoArgs,
	RunE:  runAliasList,
}

var aliasShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print the location of an alias",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPrefix("Error showing alias", runAliasShow(cmd, args[0]))
	},
}

var aliasUpdateCmd = &cobra.Command{
	Use:   "update <name> <specPathOrUrl>",
	Short: "Point an existing alias at a new location",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPrefix("Error updating alias", runAliasUpdate(cmd, args[0], args[1]))
	},
}

var aliasClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every alias",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPrefix("Error clearing aliases", runAliasClear(cmd))
	},
}

var skipValidation bool

func init() {
	rootCmd.AddCommand(aliasCmd)
	aliasCmd.AddCommand(aliasAddCmd, aliasRemoveCmd, aliasListCmd, aliasShowCmd, aliasUpdateCmd, aliasClearCmd)

	for _, cmd := range []*cobra.Command{aliasAddCmd, aliasUpdateCmd} {
		cmd.Flags().BoolVar(&skipValidation, "no-validate", false, "Record the location without loading it")
	}
}

// validateLocation checks that location can be read and declares an
// OpenAPI or Swagger version.
func validateLocation(ctx context.Context, location string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	data, _, err := openapi.ReadLocation(ctx, location)
	if err != nil {
		return "", err
	}
	return openapi.SniffVersion(data)
}

func runAliasAdd(cmd *cobra.Command, name, location string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !skipValidation {
		version, err := validateLocation(cmd.Context(), location)
		if err != nil {
			return err
		}
		cmd.Printf("Validated OpenAPI %s description\n", version)
	}
	if err := cfg.Add(name, location); err != nil {
		return err
	}
	cmd.Printf("Added alias '%s' -> %s\n", name, location)
	return nil
}

func runAliasRemove(cmd *cobra.Command, name string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Remove(name); err != nil {
		return err
	}
	cmd.Printf("Removed alias '%s'\n", name)
	return nil
}

func runAliasList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return withPrefix("Error listing aliases", err)
	}
	aliases := cfg.List()
	if len(aliases) == 0 {
		cmd.Println("No aliases configured")
		return nil
	}
	cmd.Println("Available aliases:")
	for _, alias := range aliases {
		cmd.Printf("  %s -> %s\n", alias.Name, alias.Location)
	}
	return nil
}

func runAliasShow(cmd *cobra.Command, name string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	location, err := cfg.Get(name)
	if err != nil {
		return err
	}
	cmd.Println(location)
	return nil
}

func runAliasUpdate(cmd *cobra.Command, name, location string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if _, err := cfg.Get(name); err != nil {
		return err
	}
	if !skipValidation {
		if _, err := validateLocation(cmd.Context(), location); err != nil {
			return err
		}
	}
	if err := cfg.Update(name, location); err != nil {
		return err
	}
	cmd.Printf("Updated alias '%s' -> %s\n", name, location)
	return nil
}

func runAliasClear(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	n := len(cfg.Aliases)
	if err := cfg.Clear(); err != nil {
		return err
	}
	cmd.Printf("Removed %d alias(es)\n", n)
	return nil
}
