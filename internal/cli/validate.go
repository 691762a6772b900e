package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/apimodel/internal/config"
	"github.com/roach88/apimodel/internal/model"
	"github.com/roach88/apimodel/internal/routing"
	"github.com/roach88/apimodel/internal/store"
	"github.com/roach88/apimodel/internal/validator"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Config       string
	Routing      string
	Output       string
	Database     string
	FailFast     bool
	NoJSONEvents bool
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool              `json:"valid"`
	Source    string            `json:"source"`
	ModelHash string            `json:"model_hash"`
	RunID     string            `json:"run_id,omitempty"`
	Stats     validator.Stats   `json:"stats"`
	Errors    int               `json:"errors"`
	Warnings  int               `json:"warnings"`
	Pruned    []model.TypeName  `json:"pruned,omitempty"`
	Report    *validator.Report `json:"report"`
	Previous  *PreviousRun      `json:"previous,omitempty"`
}

// PreviousRun summarizes the last recorded run of the same model.
type PreviousRun struct {
	RunID    string `json:"run_id"`
	Seq      int64  `json:"seq"`
	Errors   int    `json:"errors"`
	Warnings int    `json:"warnings"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <model>",
		Short: "Validate a metamodel and prune unreachable types",
		Long: `Validate an API metamodel and prune the types no endpoint can reach.

The model may be a JSON or YAML document, a CUE file, or a directory
holding a CUE package. Every problem is reported, grouped by endpoint and
by request or response side. Advisory warnings never fail validation.

Without fail-fast the report is informational: the command exits 0 and
the best-effort pruned model is still written, leaving the decision to
the caller. With --fail-fast (or APIMODEL_FAIL_FAST, or fail_fast in the
config file) any error fails the command and nothing is written.

Exit codes:
  0 - Model is valid, or has errors and fail-fast is off
  1 - Model has errors and fail-fast is on
  2 - Command error (model not found, bad configuration, etc.)

Examples:
  apimodel validate ./model.json
  apimodel validate ./spec --routing openapi.yaml -o pruned.json
  apimodel validate ./model.json --db ./history.db --format json
  apimodel validate ./model.json --fail-fast`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "path to apimodel.yaml")
	cmd.Flags().StringVar(&opts.Routing, "routing", "", "routing spec (endpoint map or OpenAPI 3 document)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the pruned model to this file")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite database")
	cmd.Flags().BoolVar(&opts.FailFast, "fail-fast", false, "exit non-zero when the model has errors")
	cmd.Flags().BoolVar(&opts.NoJSONEvents, "no-json-events", false, "skip the ambiguous union check")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	ctx := context.Background()
	log := opts.logger(cmd)
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	cfg, err := resolveConfig(opts, cmd)
	if err != nil {
		return outputValidateError(formatter, ErrCodeConfig, err.Error(), nil)
	}
	vopts, err := cfg.Options()
	if err != nil {
		return outputValidateError(formatter, ErrCodeConfig, err.Error(), nil)
	}
	vopts.Logger = log

	if cfg.Routing != "" {
		spec, err := routing.Load(cfg.Routing)
		if err != nil {
			return outputValidateError(formatter, ErrCodeRouting, err.Error(), nil)
		}
		formatter.VerboseLog("Routing spec %s: %d endpoint(s)", cfg.Routing, len(spec))
		vopts.Routing = spec
	}

	m, err := LoadModel(path)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			return outputValidateError(formatter, loadErr.Code, loadErr.Describe(), nil)
		}
		return outputValidateError(formatter, ErrCodeGeneric, err.Error(), nil)
	}
	formatter.VerboseLog("Loaded %s: %d type(s), %d endpoint(s)", path, len(m.Types), len(m.Endpoints))
	warnUnroutedEndpoints(formatter, vopts.Routing, m)

	hash, err := model.Fingerprint(m)
	if err != nil {
		return outputValidateError(formatter, ErrCodeGeneric, err.Error(), nil)
	}

	result, err := validator.Validate(m, vopts)
	var failed *validator.FailedError
	if err != nil && !errors.As(err, &failed) {
		return outputValidateError(formatter, ErrCodeGeneric, err.Error(), nil)
	}

	res := ValidationResult{
		Valid:     result.Report.ErrorCount() == 0,
		Source:    path,
		ModelHash: hash,
		Stats:     result.Stats,
		Errors:    result.Report.ErrorCount(),
		Warnings:  result.Report.WarningCount(),
		Pruned:    result.Pruned,
		Report:    result.Report,
	}

	if opts.Database != "" {
		run, prev, err := recordRun(ctx, opts.Database, store.RunFromResult(path, hash, result), result.Report.All())
		if err != nil {
			return outputValidateError(formatter, ErrCodeStore, err.Error(), nil)
		}
		res.RunID = run.ID
		res.Previous = prev
		formatter.VerboseLog("Recorded run #%d %s", run.Seq, run.ID)
	}

	// Under fail-fast a model with errors is never handed on.
	withhold := cfg.FailFast && !res.Valid
	written := ""
	if opts.Output != "" && !withhold {
		data, err := model.Encode(result.Model)
		if err != nil {
			return outputValidateError(formatter, ErrCodeWriteFailed, err.Error(), nil)
		}
		if err := os.WriteFile(opts.Output, data, 0644); err != nil { //nolint:gosec // output is user-visible
			return outputValidateError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing %s: %v", opts.Output, err), nil)
		}
		written = opts.Output
		if !res.Valid {
			formatter.Notice("wrote pruned model to %s despite %d error(s)", opts.Output, res.Errors)
		}
	} else if opts.Output != "" {
		formatter.Notice("pruned model not written to %s: %d error(s)", opts.Output, res.Errors)
	}

	if !res.Valid {
		return outputValidationErrors(formatter, res, cfg.FailFast, written)
	}
	return outputValidateSuccess(formatter, res, written)
}

// warnUnroutedEndpoints notes routing spec entries that name no endpoint of
// the model. Such entries are never cross-checked.
func warnUnroutedEndpoints(formatter *OutputFormatter, spec routing.Spec, m *model.Model) {
	known := make(map[string]bool, len(m.Endpoints))
	for _, ep := range m.Endpoints {
		known[ep.Name] = true
	}
	for _, name := range spec.Endpoints() {
		if !known[name] {
			formatter.Notice("routing spec endpoint %q is not in the model", name)
		}
	}
}

// resolveConfig loads the configuration file, then applies the environment,
// then the command line flags.
func resolveConfig(opts *ValidateOptions, cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if opts.Config != "" {
		loaded, err := config.Load(opts.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("fail-fast") {
		cfg.FailFast = opts.FailFast
	}
	if opts.NoJSONEvents {
		cfg.JSONEvents = false
	}
	if opts.Routing != "" {
		cfg.Routing = opts.Routing
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// recordRun stores the run and looks up the previous run of the same model.
func recordRun(ctx context.Context, dbPath string, run store.Run, issues []validator.ValidationError) (store.Run, *PreviousRun, error) {
	st, err := store.Open(dbPath)
	if err != nil {
		return store.Run{}, nil, err
	}
	defer st.Close()

	run, err = st.WriteRun(ctx, run, issues)
	if err != nil {
		return store.Run{}, nil, err
	}
	prev, ok, err := st.PreviousRun(ctx, run)
	if err != nil || !ok {
		return run, nil, err
	}
	return run, &PreviousRun{RunID: prev.ID, Seq: prev.Seq, Errors: prev.Errors, Warnings: prev.Warnings}, nil
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, res ValidationResult, written string) error {
	if formatter.Format == "json" {
		return formatter.Success(res)
	}

	fmt.Fprintln(formatter.Writer, "✓ Model valid")
	writeSummary(formatter, res)
	if len(res.Pruned) > 0 {
		fmt.Fprintln(formatter.Writer)
		fmt.Fprintln(formatter.Writer, "Pruned:")
		for _, name := range res.Pruned {
			fmt.Fprintf(formatter.Writer, "  %s\n", name)
		}
	}
	if res.Warnings > 0 {
		fmt.Fprintln(formatter.Writer)
		formatter.Report(res.Report)
	}
	if written != "" {
		fmt.Fprintf(formatter.Writer, "\nWrote pruned model to %s\n", written)
	}
	return nil
}

// outputValidateError outputs a single command error.
func outputValidateError(formatter *OutputFormatter, code, message string, details interface{}) error {
	_ = formatter.Error(code, message, details)
	// Load and configuration errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs the grouped report of a model with errors.
// Only fail-fast turns the report into a failing exit status.
func outputValidationErrors(formatter *OutputFormatter, res ValidationResult, failFast bool, written string) error {
	var exitErr error
	if failFast {
		exitErr = NewExitError(ExitFailure, (&validator.FailedError{Errors: res.Errors}).Error())
	}

	if formatter.Format == "json" {
		first := res.Report.All()[0]
		response := CLIResponse{
			Status: "error",
			Data:   res,
			RunID:  res.RunID,
			Error: &CLIError{
				Code:    first.Code,
				Message: first.Error(),
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return exitErr
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	writeSummary(formatter, res)
	fmt.Fprintln(formatter.Writer)
	formatter.Report(res.Report)
	if written != "" {
		fmt.Fprintf(formatter.Writer, "\nWrote pruned model to %s\n", written)
	}
	return exitErr
}

func writeSummary(formatter *OutputFormatter, res ValidationResult) {
	fmt.Fprintf(formatter.Writer, "Types: %d total, %d visited, %d pruned\n",
		res.Stats.Total, res.Stats.Visited, res.Stats.Pruned)
	fmt.Fprintf(formatter.Writer, "Issues: %d error(s), %d warning(s)\n", res.Errors, res.Warnings)
	if res.RunID != "" {
		fmt.Fprintf(formatter.Writer, "Run: %s\n", res.RunID)
	}
	if res.Previous != nil {
		fmt.Fprintf(formatter.Writer, "Previous run #%d: %d error(s), %d warning(s)\n",
			res.Previous.Seq, res.Previous.Errors, res.Previous.Warnings)
	}
}
