package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/charta/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	Filter string
}

// ScenarioResult is the outcome of one scenario file.
type ScenarioResult struct {
	Scenario string   `json:"scenario"`
	Path     string   `json:"path"`
	Pass     bool     `json:"pass"`
	Cases    int      `json:"cases"`
	Errors   []string `json:"errors,omitempty"`
}

// TestResult holds the outcome of every scenario run.
type TestResult struct {
	Pass      bool             `json:"pass"`
	Scenarios []ScenarioResult `json:"scenarios"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{}

	cmd := &cobra.Command{
		Use:   "test <scenario>...",
		Short: "Run conformance scenarios",
		Long: `Run YAML conformance scenarios through the validation pipeline.

Each argument is a scenario file or a directory of *.yaml scenarios.
Every case must stop at its expected stage with its expected codes.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTest(rootOpts, opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "only run scenarios whose name contains this string")

	return cmd
}

func runTest(rootOpts *RootOptions, opts *TestOptions, args []string, cmd *cobra.Command) error {
	formatter := rootOpts.formatter(cmd)

	paths, err := scenarioPaths(args)
	if err != nil {
		return commandError(formatter, ErrCodeNotFound, err.Error(), args)
	}

	logger := rootOpts.Logger(cmd.ErrOrStderr())
	result := TestResult{Pass: true, Scenarios: []ScenarioResult{}}
	for _, path := range paths {
		scenario, err := harness.LoadScenario(path)
		if err != nil {
			return commandError(formatter, ErrCodeConfig, fmt.Sprintf("%s: %v", path, err), path)
		}
		if opts.Filter != "" && !strings.Contains(scenario.Name, opts.Filter) {
			formatter.VerboseLog("Skipping scenario %s", scenario.Name)
			continue
		}

		run, err := harness.Run(scenario, harness.WithLogger(logger))
		if err != nil {
			return commandError(formatter, ErrCodeSchemaLoad, err.Error(), path)
		}

		result.Pass = result.Pass && run.Pass
		result.Scenarios = append(result.Scenarios, ScenarioResult{
			Scenario: scenario.Name,
			Path:     path,
			Pass:     run.Pass,
			Cases:    len(run.Outcomes),
			Errors:   run.Errors,
		})
	}

	return outputTest(formatter, result)
}

// scenarioPaths expands directories into their *.yaml files, sorted.
func scenarioPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("scenario path not found: %s", arg)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(arg, "*.yaml"))
		if err != nil {
			return nil, err
		}
		sort.Strings(matches)
		paths = append(paths, matches...)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenario files found in %s", strings.Join(args, ", "))
	}
	return paths, nil
}

func outputTest(formatter *OutputFormatter, result TestResult) error {
	failed := 0
	for _, s := range result.Scenarios {
		if !s.Pass {
			failed++
		}
	}

	if formatter.IsJSON() {
		var err error
		if failed == 0 {
			err = formatter.Success(result)
		} else {
			err = formatter.Failure(result, ErrCodeGeneric, fmt.Sprintf("%d scenario(s) failed", failed))
		}
		if err != nil {
			return err
		}
	} else {
		for _, s := range result.Scenarios {
			if s.Pass {
				fmt.Fprintf(formatter.Writer, "✓ %s (%d case(s))\n", s.Scenario, s.Cases)
				continue
			}
			fmt.Fprintf(formatter.Writer, "✗ %s\n", s.Scenario)
			for _, e := range s.Errors {
				for _, line := range strings.Split(strings.TrimRight(e, "\n"), "\n") {
					fmt.Fprintf(formatter.Writer, "  %s\n", line)
				}
			}
		}
		fmt.Fprintln(formatter.Writer)
		fmt.Fprintf(formatter.Writer, "%d of %d scenario(s) passed\n", len(result.Scenarios)-failed, len(result.Scenarios))
	}

	if failed > 0 {
		// Test failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", failed))
	}
	return nil
}
