// Package evidence wraps uncertain values with confidence, provenance and
// usage-permission metadata.
//
// Values produced by sensors, OCR, language models, APIs or users enter the
// IR as Evidence. Acceptance is deterministic: a Policy collapses an Evidence
// value into accept/reject using only its confidence, dispute flag and
// permitted uses.
//
// Key constraints:
//   - Confidence is always within [0, 1]; out-of-range inputs saturate
//   - Disputed evidence never meets any threshold, including 0
//   - An empty permitted-use list means unrestricted
//   - Only the disputed flag changes after construction
package evidence
