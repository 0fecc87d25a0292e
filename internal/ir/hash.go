package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainRequirements = "reqm/requirements/v1"
	DomainSnapshot     = "reqm/snapshot/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte (0x00) separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// RequirementSetHash identifies an input rule set. Rule IDs are excluded;
// rule and protocol order are not.
func RequirementSetHash(rs RequirementSet) (string, error) {
	canonical, err := MarshalCanonical(rs.CanonicalObject())
	if err != nil {
		return "", fmt.Errorf("RequirementSetHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainRequirements, canonical), nil
}

// SnapshotHash identifies the completed state. Run metadata is excluded so
// that replays of the same input hash identically.
func SnapshotHash(s SystemSnapshot) (string, error) {
	obj := s.CanonicalObject()
	delete(obj, "run_id")
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("SnapshotHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSnapshot, canonical), nil
}

// MustRequirementSetHash is like RequirementSetHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustRequirementSetHash(rs RequirementSet) string {
	h, err := RequirementSetHash(rs)
	if err != nil {
		panic(err)
	}
	return h
}

// MustSnapshotHash is like SnapshotHash but panics on error.
func MustSnapshotHash(s SystemSnapshot) string {
	h, err := SnapshotHash(s)
	if err != nil {
		panic(err)
	}
	return h
}

// CanonicalObject converts the protocol declaration for MarshalCanonical.
func (d ProtocolDecl) CanonicalObject() map[string]any {
	return map[string]any{
		"name":             d.Name,
		"inherits":         stringsOrEmpty(d.Inherits),
		"associated_types": stringsOrEmpty(d.AssociatedTypes),
	}
}

// CanonicalObject converts the requirement set for MarshalCanonical.
func (rs RequirementSet) CanonicalObject() map[string]any {
	protos := make([]any, len(rs.Protocols))
	for i, p := range rs.Protocols {
		protos[i] = p.CanonicalObject()
	}
	rules := make([]any, len(rs.Rules))
	for i, r := range rs.Rules {
		rules[i] = map[string]any{"lhs": r.LHS, "rhs": r.RHS}
	}
	return map[string]any{"protocols": protos, "rules": rules}
}

// CanonicalObject converts the snapshot for MarshalCanonical. Empty
// optional fields are omitted.
func (s SystemSnapshot) CanonicalObject() map[string]any {
	protos := make([]any, len(s.Protocols))
	for i, p := range s.Protocols {
		protos[i] = p.CanonicalObject()
	}
	rules := make([]any, len(s.Rules))
	for i, r := range s.Rules {
		rules[i] = r.CanonicalObject()
	}
	gens := make([]any, len(s.Generators))
	for i, g := range s.Generators {
		gens[i] = g.CanonicalObject()
	}
	obj := map[string]any{
		"result":         s.Result,
		"steps":          s.Steps,
		"max_iterations": s.MaxIterations,
		"max_depth":      s.MaxDepth,
		"protocols":      protos,
		"rules":          rules,
		"generators":     gens,
		"engine_version": s.EngineVersion,
	}
	if s.RunID != "" {
		obj["run_id"] = s.RunID
	}
	if s.InputHash != "" {
		obj["input_hash"] = s.InputHash
	}
	return obj
}

// CanonicalObject converts the rule record for MarshalCanonical.
func (r RuleRecord) CanonicalObject() map[string]any {
	return map[string]any{"id": r.ID, "lhs": r.LHS, "rhs": r.RHS, "deleted": r.Deleted}
}

// CanonicalObject converts the generator record for MarshalCanonical.
func (g GeneratorRecord) CanonicalObject() map[string]any {
	path := make([]any, len(g.Path))
	for i, st := range g.Path {
		path[i] = st.CanonicalObject()
	}
	return map[string]any{"term": g.Term, "path": path}
}

// CanonicalObject converts the step record for MarshalCanonical.
func (st StepRecord) CanonicalObject() map[string]any {
	return map[string]any{
		"kind":    st.Kind,
		"offset":  st.Offset,
		"rule_id": st.RuleID,
		"inverse": st.Inverse,
	}
}

func stringsOrEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
