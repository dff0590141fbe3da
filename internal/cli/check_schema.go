package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/charta/internal/schema"
)

// SchemaResult describes a schema that compiled.
type SchemaResult struct {
	Schema  string `json:"schema"`
	Dialect string `json:"dialect"`
}

// NewCheckSchemaCommand creates the check-schema command.
func NewCheckSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	var cue bool

	cmd := &cobra.Command{
		Use:   "check-schema [schema]",
		Short: "Check that a schema compiles",
		Long: `Compile a JSON Schema (.json) or CUE (.cue) schema and report errors.

Without an argument the embedded default schema is checked; --cue
selects the embedded CUE schema instead of the JSON Schema.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)

			var (
				s   schema.Schema
				err error
			)
			switch {
			case len(args) == 1:
				s, err = schema.Load(args[0])
			case cue:
				s = schema.DefaultCUE()
			default:
				s = schema.Default()
			}
			if err != nil {
				return commandError(formatter, ErrCodeSchemaLoad, err.Error(), args[0])
			}

			result := SchemaResult{Schema: s.Name(), Dialect: string(s.Dialect())}
			if formatter.IsJSON() {
				return formatter.Success(result)
			}
			fmt.Fprintf(formatter.Writer, "✓ %s (%s)\n", result.Schema, result.Dialect)
			return nil
		},
	}

	cmd.Flags().BoolVar(&cue, "cue", false, "check the embedded CUE schema")

	return cmd
}
