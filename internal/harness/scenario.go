package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/reqm/internal/ir"
)

// Scenario defines a completion test scenario.
// A scenario declares a requirement set, completes it and asserts on the
// completed system.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Protocols declares the protocols the rules may reference.
	Protocols []ir.ProtocolDecl `yaml:"protocols,omitempty"`

	// Rules are the input equations in term syntax.
	Rules []ir.RuleSpec `yaml:"rules"`

	// Limits bound completion. Zero values use the engine defaults.
	Limits Limits `yaml:"limits,omitempty"`

	// Assertions validate the completed system.
	// Supported types: result, normal_form, equivalent, distinct,
	// rule_count, generator_count, rule_exists
	Assertions []Assertion `yaml:"assertions"`

	// RunID is an optional fixed run ID.
	// If empty, defaults to "scenario-<name>".
	RunID string `yaml:"run_id,omitempty"`
}

// Limits bounds a scenario's completion.
type Limits struct {
	MaxIterations int `yaml:"max_iterations,omitempty"`
	MaxDepth      int `yaml:"max_depth,omitempty"`
}

// Assertion validates the completed system.
type Assertion struct {
	// Type specifies the assertion type:
	// - "result": completion outcome equals Expect
	// - "normal_form": Term reduces to Expect
	// - "equivalent": all Terms share one normal form
	// - "distinct": all Terms have pairwise different normal forms
	// - "rule_count": number of live rules equals Count
	// - "generator_count": number of homotopy generators equals Count
	// - "rule_exists": a live rule LHS ⇒ RHS exists
	Type string `yaml:"type"`

	// Term is the term to reduce (used by normal_form).
	Term string `yaml:"term,omitempty"`

	// Terms are compared by normal form (used by equivalent, distinct).
	Terms []string `yaml:"terms,omitempty"`

	// Expect is the expected outcome name (result) or normal form
	// (normal_form).
	Expect string `yaml:"expect,omitempty"`

	// Count is the expected count (used by rule_count, generator_count).
	Count *int `yaml:"count,omitempty"`

	// LHS and RHS identify a rule (used by rule_exists). An empty RHS
	// matches any right-hand side.
	LHS string `yaml:"lhs,omitempty"`
	RHS string `yaml:"rhs,omitempty"`
}

// Assertion type constants.
const (
	AssertResult         = "result"
	AssertNormalForm     = "normal_form"
	AssertEquivalent     = "equivalent"
	AssertDistinct       = "distinct"
	AssertRuleCount      = "rule_count"
	AssertGeneratorCount = "generator_count"
	AssertRuleExists     = "rule_exists"
)

// RequirementSet returns the scenario's input.
func (s *Scenario) RequirementSet() ir.RequirementSet {
	return ir.RequirementSet{Protocols: s.Protocols, Rules: s.Rules}
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
// Term syntax and protocol references are checked when the scenario runs.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Rules) == 0 {
		return fmt.Errorf("rules list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	if s.Limits.MaxIterations < 0 || s.Limits.MaxDepth < 0 {
		return fmt.Errorf("limits must be non-negative")
	}

	for i, p := range s.Protocols {
		if p.Name == "" {
			return fmt.Errorf("protocols[%d]: name is required", i)
		}
	}

	for i, r := range s.Rules {
		if r.LHS == "" || r.RHS == "" {
			return fmt.Errorf("rules[%d]: lhs and rhs are required", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertResult:
		if a.Expect == "" {
			return fmt.Errorf("assertions[%d]: expect is required for result", index)
		}
	case AssertNormalForm:
		if a.Term == "" || a.Expect == "" {
			return fmt.Errorf("assertions[%d]: term and expect are required for normal_form", index)
		}
	case AssertEquivalent, AssertDistinct:
		if len(a.Terms) < 2 {
			return fmt.Errorf("assertions[%d]: at least two terms are required for %s", index, a.Type)
		}
	case AssertRuleCount, AssertGeneratorCount:
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: count is required for %s", index, a.Type)
		}
		if *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertRuleExists:
		if a.LHS == "" {
			return fmt.Errorf("assertions[%d]: lhs is required for rule_exists", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
