package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/charta/internal/evidence"
)

// EvidenceOptions holds flags for the evidence command.
type EvidenceOptions struct {
	Threshold float64
	Use       string
}

// EvidenceResult is the decision for one piece of evidence.
type EvidenceResult struct {
	Evidence evidence.Evidence[any] `json:"evidence"`
	Policy   evidence.Policy        `json:"policy"`
	Decision evidence.Decision      `json:"decision"`
}

// ErrCodeEvidenceRejected is reported when evidence fails the policy.
const ErrCodeEvidenceRejected = "E301"

// NewEvidenceCommand creates the evidence command.
func NewEvidenceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvidenceOptions{}

	cmd := &cobra.Command{
		Use:   "evidence <file>",
		Short: "Evaluate evidence against an acceptance policy",
		Long: `Evaluate a JSON evidence record against a confidence threshold and,
optionally, a permitted use case.

Evidence is rejected when it is disputed, below the threshold, or not
admissible for --use. Exits 1 when rejected.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvidence(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().Float64Var(&opts.Threshold, "threshold", 0.5, "minimum confidence")
	cmd.Flags().StringVar(&opts.Use, "use", "", "use case the evidence must be permitted for")

	return cmd
}

func runEvidence(rootOpts *RootOptions, opts *EvidenceOptions, path string, cmd *cobra.Command) error {
	formatter := rootOpts.formatter(cmd)

	if opts.Threshold < 0 || opts.Threshold > 1 {
		return commandError(formatter, ErrCodeConfig, fmt.Sprintf("threshold must be within [0, 1], got %g", opts.Threshold), nil)
	}

	data, err := LoadDocument(path, 0, cmd.InOrStdin())
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			return commandError(formatter, loadErr.Code, loadErr.Message, path)
		}
		return commandError(formatter, ErrCodeGeneric, err.Error(), path)
	}

	var ev evidence.Evidence[any]
	if err := json.Unmarshal(data, &ev); err != nil {
		return commandError(formatter, ErrCodeParse, fmt.Sprintf("invalid evidence: %v", err), path)
	}

	policy := evidence.Policy{Threshold: opts.Threshold, UseCase: opts.Use}
	result := EvidenceResult{Evidence: ev, Policy: policy, Decision: evidence.Evaluate(policy, ev)}

	if formatter.IsJSON() {
		if result.Decision.Accepted {
			return formatter.Success(result)
		}
		if err := formatter.Failure(result, ErrCodeEvidenceRejected, rejection(result.Decision)); err != nil {
			return err
		}
	} else {
		printDecision(formatter, result)
	}

	if !result.Decision.Accepted {
		return NewExitError(ExitFailure, rejection(result.Decision))
	}
	return nil
}

func rejection(d evidence.Decision) string {
	reasons := make([]string, len(d.Reasons))
	for i, r := range d.Reasons {
		reasons[i] = string(r)
	}
	return "evidence rejected: " + strings.Join(reasons, ", ")
}

func printDecision(formatter *OutputFormatter, result EvidenceResult) {
	w := formatter.Writer
	ev := result.Evidence
	if result.Decision.Accepted {
		fmt.Fprintln(w, "✓ Evidence accepted")
	} else {
		fmt.Fprintln(w, "✗ Evidence rejected")
	}
	fmt.Fprintf(w, "  Source: %s (%s)\n", ev.Source, ev.EvidenceType)
	fmt.Fprintf(w, "  Confidence: %.2f (threshold %.2f)\n", ev.Confidence, result.Policy.Threshold)
	if result.Policy.UseCase != "" {
		fmt.Fprintf(w, "  Use: %s\n", result.Policy.UseCase)
	}
	for _, r := range result.Decision.Reasons {
		fmt.Fprintf(w, "  Reason: %s\n", r)
	}
	formatter.VerboseLog("Value: %v", ev.Value)
}
