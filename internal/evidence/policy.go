package evidence

// RejectReason explains why a policy rejected evidence.
type RejectReason string

// Reject reasons, reported in this order.
const (
	ReasonDisputed       RejectReason = "disputed"
	ReasonBelowThreshold RejectReason = "below_threshold"
	ReasonNotAdmissible  RejectReason = "not_admissible"
)

// Policy collapses evidence into a deterministic accept/reject decision.
// An empty UseCase skips the admissibility check.
type Policy struct {
	Threshold float64 `json:"threshold"`
	UseCase   string  `json:"use_case,omitempty"`
}

// Decision is the outcome of evaluating evidence against a policy.
type Decision struct {
	Accepted bool           `json:"accepted"`
	Reasons  []RejectReason `json:"reasons,omitempty"`
}

// Evaluate checks e against the policy and returns every failed condition.
func Evaluate[T any](p Policy, e Evidence[T]) Decision {
	var reasons []RejectReason
	if e.Disputed {
		reasons = append(reasons, ReasonDisputed)
	}
	if !(e.Confidence >= p.Threshold) {
		reasons = append(reasons, ReasonBelowThreshold)
	}
	if p.UseCase != "" && !e.IsAdmissibleFor(p.UseCase) {
		reasons = append(reasons, ReasonNotAdmissible)
	}
	return Decision{Accepted: len(reasons) == 0, Reasons: reasons}
}

// Accept reports whether e passes the policy.
// Equivalent to MeetsThreshold plus IsAdmissibleFor when UseCase is set.
func Accept[T any](p Policy, e Evidence[T]) bool {
	return Evaluate(p, e).Accepted
}
