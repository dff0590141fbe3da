package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when a case does not match its expectation.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Case     string  // Case name
	Field    string  // Expectation that failed: stage, codes or contains
	Expected string  // Human-readable expected outcome
	Actual   string  // Human-readable actual outcome
	Outcome  Outcome // Full outcome for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	// Header with case and expectation
	fmt.Fprintf(&buf, "case %q: %s mismatch\n", e.Case, e.Field)

	// Expected vs Actual (most important info)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	// Full outcome for context
	if e.Outcome.Error != "" {
		fmt.Fprintf(&buf, "  Error: %s\n", e.Outcome.Error)
	}
	return buf.String()
}

// checkExpectation compares an outcome with the case's expectation and
// returns one error per mismatched field.
func checkExpectation(c *Case, o Outcome) []*AssertionError {
	var errs []*AssertionError
	mismatch := func(field, expected, actual string) {
		errs = append(errs, &AssertionError{
			Case:     c.Name,
			Field:    field,
			Expected: expected,
			Actual:   actual,
			Outcome:  o,
		})
	}

	if o.Stage != c.Expect.Stage {
		mismatch("stage", c.Expect.Stage, o.Stage)
	}

	if c.Expect.Codes != nil && !slices.Equal(c.Expect.Codes, o.Codes) {
		mismatch("codes", formatCodes(c.Expect.Codes), formatCodes(o.Codes))
	}

	if c.Expect.Contains != "" && !strings.Contains(o.Error, c.Expect.Contains) {
		actual := o.Error
		if actual == "" {
			actual = "no error"
		}
		mismatch("contains", fmt.Sprintf("error containing %q", c.Expect.Contains), actual)
	}

	return errs
}

func formatCodes(codes []string) string {
	if len(codes) == 0 {
		return "[]"
	}
	return "[" + strings.Join(codes, ", ") + "]"
}
