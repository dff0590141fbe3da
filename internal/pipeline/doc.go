// Package pipeline validates raw IR documents end to end.
//
// A Pipeline holds one compiled structural schema and runs every document
// through the same linear sequence of stages:
//
//	parse → structural → deserialize → (version) → semantic
//
// The first failing stage halts the run and is reported as a stage-tagged
// error; no stage ever sees a value an earlier stage rejected, and no
// partial IR is returned. StageOf recovers the stage from any error the
// package returns.
//
// JSON and YAML documents are both reduced to the same generic JSON value
// before structural validation, so a document has the same digest and the
// same IR in either format.
//
// A Pipeline is immutable after construction and safe for concurrent use.
package pipeline
