package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/charta/internal/config"
	"github.com/roach88/charta/internal/pipeline"
	"github.com/roach88/charta/internal/store"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	Schema            string
	Strict            bool
	VersionConstraint string
	InputFormat       string
	Record            string
	MaxDocumentBytes  int64
}

// DocumentResult is the validation outcome of one document.
type DocumentResult struct {
	Document string        `json:"document"`
	Valid    bool          `json:"valid"`
	Stage    string        `json:"stage"`
	Digest   string        `json:"digest"`
	RunID    string        `json:"run_id,omitempty"`
	Errors   []ErrorDetail `json:"errors,omitempty"`
}

// ValidationResult holds validation results for every document.
type ValidationResult struct {
	Valid     bool             `json:"valid"`
	Schema    string           `json:"schema"`
	Documents []DocumentResult `json:"documents"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{}

	cmd := &cobra.Command{
		Use:   "validate <document>...",
		Short: "Validate IR documents",
		Long: `Validate IR documents against a schema, then check semantic invariants.

Each document is parsed (JSON or YAML), checked against the schema,
decoded into the IR and checked for empty module names, duplicate
signals and coils, and rung actions that reference undefined coils.
Use "-" to read a document from stdin.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Schema, "schema", "", "schema file (.json or .cue); defaults to the embedded JSON Schema")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "enable strict semantic rules")
	cmd.Flags().StringVar(&opts.VersionConstraint, "version-constraint", "", "semver constraint on the IR version")
	cmd.Flags().StringVar(&opts.InputFormat, "input-format", config.InputAuto, "document format (auto|json|yaml)")
	cmd.Flags().StringVar(&opts.Record, "record", "", "record runs in this SQLite database")

	return cmd
}

// resolve applies config values to flags the user did not set.
func (o *ValidateOptions) resolve(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if !flags.Changed("schema") {
		o.Schema = cfg.Schema
	}
	if !flags.Changed("strict") {
		o.Strict = cfg.Strict
	}
	if !flags.Changed("version-constraint") {
		o.VersionConstraint = cfg.VersionConstraint
	}
	if !flags.Changed("input-format") {
		o.InputFormat = cfg.InputFormat
	}
	if !flags.Changed("record") {
		o.Record = cfg.Database
	}
	o.MaxDocumentBytes = cfg.MaxDocumentBytes
}

func runValidate(rootOpts *RootOptions, opts *ValidateOptions, paths []string, cmd *cobra.Command) error {
	formatter := rootOpts.formatter(cmd)

	cfg, err := rootOpts.LoadConfig()
	if err != nil {
		return commandError(formatter, ErrCodeConfig, err.Error(), rootOpts.ConfigPath)
	}
	opts.resolve(cmd, cfg)

	pipelineOpts := []pipeline.Option{pipeline.WithLogger(rootOpts.Logger(cmd.ErrOrStderr()))}
	if opts.Strict {
		pipelineOpts = append(pipelineOpts, pipeline.WithStrict())
	}
	if opts.VersionConstraint != "" {
		pipelineOpts = append(pipelineOpts, pipeline.WithVersionConstraint(opts.VersionConstraint))
	}

	p, err := pipeline.Load(opts.Schema, pipelineOpts...)
	if err != nil {
		var schemaErr *pipeline.SchemaLoadError
		if errors.As(err, &schemaErr) {
			return commandError(formatter, ErrCodeSchemaLoad, err.Error(), opts.Schema)
		}
		return commandError(formatter, ErrCodeConfig, err.Error(), opts.VersionConstraint)
	}
	formatter.VerboseLog("Using schema %s (%s)", p.Schema().Name(), p.Schema().Dialect())

	// Read every document before validating any so a missing file fails
	// the whole command.
	docs := make([][]byte, len(paths))
	formats := make([]pipeline.Format, len(paths))
	for i, path := range paths {
		formats[i], err = FormatFor(path, opts.InputFormat)
		if err != nil {
			return commandError(formatter, ErrCodeConfig, err.Error(), path)
		}
		docs[i], err = LoadDocument(path, opts.MaxDocumentBytes, cmd.InOrStdin())
		if err != nil {
			var loadErr *LoadError
			if errors.As(err, &loadErr) {
				return commandError(formatter, loadErr.Code, loadErr.Message, path)
			}
			return commandError(formatter, ErrCodeGeneric, err.Error(), path)
		}
	}

	var history *store.Store
	if opts.Record != "" {
		history, err = rootOpts.openStore(opts.Record)
		if err != nil {
			return commandError(formatter, ErrCodeStore, err.Error(), opts.Record)
		}
		defer history.Close()
	}

	result := ValidationResult{Valid: true, Schema: p.Schema().Name()}
	for i, path := range paths {
		report := p.Run(docs[i], formats[i])
		doc := DocumentResult{
			Document: path,
			Valid:    report.Valid(),
			Stage:    string(report.Stage),
			Digest:   report.Digest,
			Errors:   Details(report.Err),
		}
		formatter.VerboseLog("%s: %s (%s)", path, doc.Stage, doc.Digest)

		if history != nil {
			run, err := history.WriteRun(commandContext(cmd), toRun(doc, result.Schema))
			if err != nil {
				return commandError(formatter, ErrCodeStore, err.Error(), opts.Record)
			}
			doc.RunID = run.ID
		}

		result.Valid = result.Valid && doc.Valid
		result.Documents = append(result.Documents, doc)
	}

	return outputValidation(formatter, result)
}

// toRun converts a document result into a history record.
func toRun(doc DocumentResult, schemaName string) store.Run {
	run := store.Run{
		Document: doc.Document,
		Digest:   doc.Digest,
		Schema:   schemaName,
		Stage:    doc.Stage,
		Valid:    doc.Valid,
	}
	for _, e := range doc.Errors {
		run.Violations = append(run.Violations, store.Violation{Code: e.Code, Location: e.Location, Message: e.Message})
	}
	if len(doc.Errors) > 0 {
		run.Code = doc.Errors[0].Code
		run.Message = doc.Errors[0].Message
	}
	return run
}

// outputValidation writes the results and returns ExitFailure if any
// document is invalid.
func outputValidation(formatter *OutputFormatter, result ValidationResult) error {
	invalid := 0
	var first *ErrorDetail
	for i := range result.Documents {
		doc := &result.Documents[i]
		if doc.Valid {
			continue
		}
		invalid++
		if first == nil && len(doc.Errors) > 0 {
			first = &doc.Errors[0]
		}
	}

	if formatter.IsJSON() {
		var err error
		if invalid == 0 {
			err = formatter.Success(result)
		} else {
			code, message := ErrCodeGeneric, "validation failed"
			if first != nil {
				code, message = first.Code, first.Message
			}
			err = formatter.Failure(result, code, message)
		}
		if err != nil {
			return err
		}
	} else {
		for _, doc := range result.Documents {
			if doc.Valid {
				fmt.Fprintf(formatter.Writer, "✓ %s\n", doc.Document)
				continue
			}
			fmt.Fprintf(formatter.Writer, "✗ %s (%s)\n", doc.Document, doc.Stage)
			for _, e := range doc.Errors {
				if e.Location != "" {
					fmt.Fprintf(formatter.Writer, "  %s %s: %s\n", e.Code, e.Location, e.Message)
				} else {
					fmt.Fprintf(formatter.Writer, "  %s %s\n", e.Code, e.Message)
				}
			}
		}
		fmt.Fprintln(formatter.Writer)
		fmt.Fprintf(formatter.Writer, "%d of %d document(s) valid\n", len(result.Documents)-invalid, len(result.Documents))
	}

	if invalid > 0 {
		// Validation failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d document(s) invalid", invalid, len(result.Documents)))
	}
	return nil
}
