package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/charta/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	DatabasePath string
	Digest       string
	Limit        int
}

// HistoryResult holds the recorded runs.
type HistoryResult struct {
	Runs  []store.Run `json:"runs"`
	Count int         `json:"count"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded validation runs",
		Long: `Show validation runs recorded with validate --record.

Runs are listed oldest first. Use --digest to list every run of one
document, whatever file it was read from.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DatabasePath, "db", "", "path to SQLite database (defaults to the config database)")
	cmd.Flags().StringVar(&opts.Digest, "digest", "", "only runs of the document with this digest")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "number of most recent runs to show (0 for all)")

	return cmd
}

func runHistory(rootOpts *RootOptions, opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := rootOpts.formatter(cmd)

	if opts.DatabasePath == "" {
		cfg, err := rootOpts.LoadConfig()
		if err != nil {
			return commandError(formatter, ErrCodeConfig, err.Error(), rootOpts.ConfigPath)
		}
		opts.DatabasePath = cfg.Database
	}
	if opts.DatabasePath == "" {
		return commandError(formatter, ErrCodeConfig, "no database: pass --db or set database in the config file", nil)
	}

	s, err := rootOpts.openStore(opts.DatabasePath)
	if err != nil {
		return commandError(formatter, ErrCodeStore, fmt.Sprintf("failed to open database: %v", err), opts.DatabasePath)
	}
	defer s.Close()

	ctx := commandContext(cmd)
	var runs []store.Run
	if opts.Digest != "" {
		runs, err = s.RunsByDigest(ctx, opts.Digest)
	} else {
		runs, err = s.ListRuns(ctx, opts.Limit)
	}
	if err != nil {
		return commandError(formatter, ErrCodeStore, fmt.Sprintf("failed to read runs: %v", err), opts.DatabasePath)
	}

	if formatter.IsJSON() {
		return formatter.Success(HistoryResult{Runs: runs, Count: len(runs)})
	}
	printHistory(formatter.Writer, runs, formatter.Verbose)
	return nil
}

// printHistory renders runs in human-readable form.
func printHistory(w io.Writer, runs []store.Run, verbose bool) {
	fmt.Fprintf(w, "History: %d run(s)\n", len(runs))
	if len(runs) == 0 {
		return
	}
	fmt.Fprintln(w)

	for _, run := range runs {
		mark := "✓"
		if !run.Valid {
			mark = "✗"
		}
		fmt.Fprintf(w, "  [%d] %s %s\n", run.Seq, mark, run.Document)
		fmt.Fprintf(w, "       Stage: %s\n", run.Stage)
		if run.Code != "" {
			fmt.Fprintf(w, "       Error: %s %s\n", run.Code, run.Message)
		}
		fmt.Fprintf(w, "       ID: %s\n", run.ID)
		if verbose {
			fmt.Fprintf(w, "       Digest: %s\n", run.Digest)
			fmt.Fprintf(w, "       Schema: %s\n", run.Schema)
		}
	}
}
