package rewrite

import "github.com/roach88/reqm/internal/ir"

// ResultNotRun is the snapshot result of a system that was never completed.
const ResultNotRun = "not_run"

// Snapshot exports the system. Every rule slot is included, deleted ones
// too, so rule IDs in the exported paths stay meaningful.
func (s *System) Snapshot() ir.SystemSnapshot {
	snap := ir.SystemSnapshot{
		Result:        ResultNotRun,
		Protocols:     []ir.ProtocolDecl{},
		Rules:         make([]ir.RuleRecord, 0, len(s.rules)),
		Generators:    make([]ir.GeneratorRecord, 0, len(s.generators)),
		EngineVersion: ir.EngineVersion,
	}
	if s.completion.ran {
		snap.Result = s.completion.result.String()
		snap.Steps = s.completion.steps
		snap.MaxIterations = s.completion.maxIterations
		snap.MaxDepth = s.completion.maxDepth
	}

	for _, name := range s.graph.Protocols() {
		info, _ := s.graph.Info(name)
		snap.Protocols = append(snap.Protocols, info.Decl)
	}
	for id, r := range s.rules {
		snap.Rules = append(snap.Rules, ir.RuleRecord{
			ID:      id,
			LHS:     r.lhs.String(),
			RHS:     r.rhs.String(),
			Deleted: r.deleted,
		})
	}
	for _, g := range s.generators {
		snap.Generators = append(snap.Generators, ir.GeneratorRecord{
			Term: g.Term.String(),
			Path: StepRecords(g.Path),
		})
	}
	return snap
}

// StepRecords converts a path to its exported form.
func StepRecords(path Path) []ir.StepRecord {
	out := make([]ir.StepRecord, len(path))
	for i, step := range path {
		out[i] = ir.StepRecord{
			Kind:    step.kind.String(),
			Offset:  step.offset,
			RuleID:  step.ruleID,
			Inverse: step.inverse,
		}
	}
	return out
}
