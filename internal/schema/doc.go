// Package schema provides structural validation of raw IR documents.
//
// A Schema is compiled once from a schema document and then validates any
// number of candidate documents. Two dialects are supported: JSON Schema
// (draft 2020-12) and CUE definitions (the document is unified with #IR).
// Both default schemas are embedded and describe the same IR shape.
//
// Documents are generic JSON values as produced by encoding/json
// (map[string]any, []any, float64, string, bool, nil). Structural checks
// only look at shape; name uniqueness and references are the semantic
// package's job.
package schema
