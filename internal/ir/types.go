package ir

// ProtocolDecl declares a protocol, the protocols it refines and its
// associated types.
type ProtocolDecl struct {
	Name            string   `json:"name" yaml:"name"`
	Inherits        []string `json:"inherits,omitempty" yaml:"inherits,omitempty"`
	AssociatedTypes []string `json:"associated_types,omitempty" yaml:"associated_types,omitempty"`
}

// RuleSpec is an unoriented equation between two terms in text syntax.
type RuleSpec struct {
	ID  string `json:"id,omitempty" yaml:"id,omitempty"`
	LHS string `json:"lhs" yaml:"lhs"`
	RHS string `json:"rhs" yaml:"rhs"`
}

// RequirementSet is the input of a completion run.
type RequirementSet struct {
	Protocols []ProtocolDecl `json:"protocols"`
	Rules     []RuleSpec     `json:"rules"`
}

// SystemSnapshot is the exported state of a rewrite system after
// completion.
type SystemSnapshot struct {
	RunID         string            `json:"run_id,omitempty"`
	Result        string            `json:"result"`
	Steps         int               `json:"steps"`
	MaxIterations int               `json:"max_iterations"`
	MaxDepth      int               `json:"max_depth"`
	Protocols     []ProtocolDecl    `json:"protocols"`
	Rules         []RuleRecord      `json:"rules"`
	Generators    []GeneratorRecord `json:"generators"`
	InputHash     string            `json:"input_hash,omitempty"`
	EngineVersion string            `json:"engine_version"`
}

// RuleRecord is one slot of the rule table. Deleted rules are kept so that
// IDs stay aligned with the slots.
type RuleRecord struct {
	ID      int    `json:"id"`
	LHS     string `json:"lhs"`
	RHS     string `json:"rhs"`
	Deleted bool   `json:"deleted"`
}

// GeneratorRecord is a homotopy generator: a term and a loop on it.
type GeneratorRecord struct {
	Term string       `json:"term"`
	Path []StepRecord `json:"path"`
}

// StepRecord is one rewrite step of a recorded path.
type StepRecord struct {
	Kind    string `json:"kind"` // "rule" or "adjust"
	Offset  int    `json:"offset"`
	RuleID  int    `json:"rule_id"`
	Inverse bool   `json:"inverse"`
}
