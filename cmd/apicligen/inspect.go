package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/grokify/apicligen/pkg/openapi"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <alias|spec>",
	Short: "List the commands an OpenAPI description produces",
	Long: `Print the version, base URL and command table of an OpenAPI description.

With --dump the normalized description (paths, operations and the parts of
each operation used for command synthesis) is written instead.

Examples:
  apicligen inspect openapi.yaml
  apicligen inspect pets --dump json`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

var inspectDump string

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringVar(&inspectDump, "dump", "", "Write the normalized description: json or yaml")
}

func runInspect(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	doc, err := loadDescription(ctx, args[0])
	if err != nil {
		return err
	}

	if inspectDump != "" {
		return openapi.Write(cmd.OutOrStdout(), doc, openapi.Format(strings.ToLower(inspectDump)))
	}

	title := doc.Info.Title
	if title == "" {
		title = args[0]
	}
	cmd.Printf("%s (OpenAPI %s)\n", title, doc.Version())
	cmd.Printf("Base URL: %s\n\n", doc.BaseURL())

	entries := buildTree(doc).Flatten()
	if len(entries) == 0 {
		cmd.Println("No commands")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COMMAND\tMETHOD\tPATH\tSUMMARY")
	for _, entry := range entries {
		route := entry.Action.Representative()
		var summary string
		if route.Operation != nil {
			summary = route.Operation.Summary
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", entry, route.Method, route.Path, summary)
	}
	return tw.Flush()
}
