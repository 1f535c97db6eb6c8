package main

import (
	"context"
	"fmt"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/grokify/omnistorage/backend/file"
	"github.com/spf13/cobra"

	"github.com/grokify/apicligen/pkg/executor"
)

var historyCmd = &cobra.Command{
	Use:   "history <file>",
	Short: "Show exchanges recorded by run --record",
	Long: `Print the HTTP exchanges written by "apicligen run --record".

Examples:
  apicligen history calls.ndjson
  apicligen history calls.ndjson.gz --bodies`,
	Args: cobra.ExactArgs(1),
	RunE: runHistory,
}

var historyBodies bool

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().BoolVar(&historyBodies, "bodies", false, "Also print request and response bodies")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	path := args[0]
	backend := file.New(file.Config{Root: filepath.Dir(path)})
	defer func() { _ = backend.Close() }()

	exchanges, err := executor.ReadExchanges(ctx, backend, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if len(exchanges) == 0 {
		cmd.Println("No exchanges recorded")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tMETHOD\tSTATUS\tDURATION\tURL")
	for _, ex := range exchanges {
		status := fmt.Sprint(ex.Status)
		if ex.Error != "" {
			status = "error"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.0fms\t%s\n",
			ex.Timestamp.Local().Format(time.DateTime), ex.Method, status, ex.DurationMs, ex.URL)
		if historyBodies {
			if ex.RequestBody != "" {
				fmt.Fprintf(tw, "\t>\t\t\t%s\n", ex.RequestBody)
			}
			if ex.ResponseBody != "" {
				fmt.Fprintf(tw, "\t<\t\t\t%s\n", ex.ResponseBody)
			}
			if ex.Error != "" {
				fmt.Fprintf(tw, "\t!\t\t\t%s\n", ex.Error)
			}
		}
	}
	return tw.Flush()
}
