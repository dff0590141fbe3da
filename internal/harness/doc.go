// Package harness runs conformance scenarios against the validation
// pipeline.
//
// A scenario pins the outcome of validating a set of IR documents under one
// schema and rule set, so schema or rule changes that alter an outcome show
// up as failures.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	schema: ../../schema/ir.cue   # optional; embedded JSON Schema otherwise
//	strict: false                 # optional
//	version_constraint: ">= 0.1.0" # optional
//	cases:
//	  - name: good document
//	    document: documents/valid.json
//	    expect:
//	      stage: valid
//	  - name: dangling coil
//	    format: json
//	    inline: |
//	      {"version": "0.1.0", "module": {...}}
//	    expect:
//	      stage: semantic
//	      codes: [E204]
//	      contains: undefined coil
//
// Document and schema paths are relative to the scenario file. Each case
// names exactly one of document or inline; inline documents default to
// JSON, file documents take their format from the extension.
//
// # Expectations
//
//   - stage: the stage the pipeline stopped at (valid on success)
//   - codes: the semantic codes reported, in order
//   - contains: a substring of the error message
//
// # Golden Files
//
// RunWithGolden compares the canonical JSON outcome of every case against
// testdata/golden/{scenario.Name}.golden. Regenerate with:
//
//	go test ./internal/harness -update
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/coils.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err) // schema failed to load
//	}
//	if !result.Pass {
//	    for _, err := range result.Errors {
//	        log.Println(err)
//	    }
//	}
package harness
