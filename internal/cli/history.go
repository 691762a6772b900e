package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/apimodel/internal/store"
	"github.com/roach88/apimodel/internal/validator"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - single run with its issues
}

// HistoryResult holds the runs listed by the history command.
type HistoryResult struct {
	Runs      []store.Run `json:"runs"`
	TotalRuns int         `json:"total_runs"`
}

// RunDetail holds a single run and its issues.
type RunDetail struct {
	Run    store.Run                   `json:"run"`
	Issues []validator.ValidationError `json:"issues"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded validation runs",
		Long: `List the validation runs recorded with validate --db.

Runs are listed in the order they were recorded. With --run, a single run
is shown with every issue it reported.

Examples:
  apimodel history --db ./history.db
  apimodel history --db ./history.db --run 0190f4b2-...
  apimodel history --db ./history.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "show a single run with its issues")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	st, err := store.Open(opts.Database, store.MustExist())
	if errors.Is(err, store.ErrNoDatabase) {
		_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "database not found", err)
	}
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if opts.RunID != "" {
		return showRun(ctx, st, opts.RunID, formatter)
	}

	runs, err := st.ListRuns(ctx)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}
	opts.logger(cmd).Debug("runs listed", "count", len(runs))

	if formatter.Format == "json" {
		return formatter.Success(HistoryResult{Runs: runs, TotalRuns: len(runs)})
	}

	if len(runs) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs recorded.")
		return nil
	}
	for _, run := range runs {
		fmt.Fprintf(formatter.Writer, "#%d %s %s: %d error(s), %d warning(s), %d/%d types pruned\n",
			run.Seq, run.ID, run.Source, run.Errors, run.Warnings, run.Stats.Pruned, run.Stats.Total)
	}
	return nil
}

func showRun(ctx context.Context, st *store.Store, id string, formatter *OutputFormatter) error {
	run, err := st.ReadRun(ctx, id)
	if errors.Is(err, store.ErrRunNotFound) {
		_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "run not found", err)
	}
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}
	issues, err := st.ReadIssues(ctx, id)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read issues", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(RunDetail{Run: run, Issues: issues})
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Run #%d %s\n", run.Seq, run.ID)
	fmt.Fprintf(w, "Source: %s\n", run.Source)
	fmt.Fprintf(w, "Model: %s\n", run.ModelHash)
	fmt.Fprintf(w, "Validator: %s\n", run.ValidatorVersion)
	fmt.Fprintf(w, "Types: %d total, %d visited, %d pruned\n", run.Stats.Total, run.Stats.Visited, run.Stats.Pruned)
	if len(issues) == 0 {
		fmt.Fprintln(w, "No issues.")
		return nil
	}
	fmt.Fprintln(w)
	for _, issue := range issues {
		fmt.Fprintln(w, issue.Error())
	}
	return nil
}
