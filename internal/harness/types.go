package harness

// Outcome is what the pipeline produced for one case.
type Outcome struct {
	Case   string   `json:"case"`
	Stage  string   `json:"stage"`
	Digest string   `json:"digest"`
	Codes  []string `json:"codes"`
	Error  string   `json:"error,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every case matched its expectation.
	Pass bool `json:"pass"`

	// Outcomes holds one entry per case, in case order.
	Outcomes []Outcome `json:"outcomes"`

	// Errors contains expectation mismatch messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Outcomes: []Outcome{},
		Errors:   []string{},
	}
}

// AddError adds a mismatch message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddOutcome records the outcome of one case.
func (r *Result) AddOutcome(o Outcome) {
	if o.Codes == nil {
		o.Codes = []string{}
	}
	r.Outcomes = append(r.Outcomes, o)
}
