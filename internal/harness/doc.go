// Package harness runs completion scenarios as executable tests.
//
// A scenario declares protocols and rules, optional completion limits and a
// list of assertions over the completed system.
//
// # Scenario Format
//
// Scenarios are YAML files with the following structure:
//
//	name: overlap_abc
//	description: "What this scenario validates"
//	protocols:
//	  - name: P
//	    associated_types: [T]
//	rules:
//	  - lhs: A.B
//	    rhs: A
//	limits:
//	  max_iterations: 100
//	  max_depth: 6
//	assertions:
//	  - type: normal_form
//	    term: A.B.C
//	    expect: A.C
//
// Unknown fields are rejected.
//
// # Assertion Types
//
//   - result: the completion outcome (success, max_iterations, max_depth)
//   - normal_form: a term reduces to the expected term
//   - equivalent: all terms share one normal form
//   - distinct: no two terms share a normal form
//   - rule_count: number of live rules
//   - generator_count: number of homotopy generators
//   - rule_exists: a live rule with the given sides
//
// # Determinism
//
// Every scenario runs against its own in-memory SQLite store with a fixed run
// ID ("scenario-<name>" unless run_id is set). After completion the stored run
// is replayed, and a replay that does not reproduce the snapshot fails the
// scenario. Completed systems can be compared against golden files with
// RunWithGolden.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/overlap_abc.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, msg := range result.Errors {
//	    log.Println(msg)
//	}
package harness
