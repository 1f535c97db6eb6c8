package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/grokify/apicligen/pkg/logging"
)

var version = "0.1.0"

var (
	configDir string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "apicligen",
	Short: "Generate command-line clients from OpenAPI descriptions",
	Long: `apicligen turns an OpenAPI 3.x description into a command-line interface.

Every path is classified into a resource and an action, so that
GET /users/{id} becomes "users get <id>" and POST /users becomes
"users create --data '{...}'". The interface can be run directly against
the API or written out as a standalone Go module.

Examples:
  # Generate a standalone CLI module
  apicligen generate --spec openapi.yaml --output ./petcli

  # Remember a description under a short name
  apicligen alias add pets https://petstore3.swagger.io/api/v3/openapi.json

  # Call the API through the synthesized commands
  apicligen run pets pet get 10

  # List the commands a description produces
  apicligen inspect pets`,
	Version:       version,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Arguments were accepted; from here on failures are not usage errors.
		cmd.SilenceUsage = true
		slog.SetDefault(logging.NewCommandLogger(verbose))
		return nil
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Configuration directory (default: $APICLIGEN_CONFIG_DIR or ~/.openapi_cli_generator)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "V", false, "Enable debug logging")
}
