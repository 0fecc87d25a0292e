package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/reqm/internal/ir"
)

// CompileRequirements compiles the top-level `protocol` and `rule` structs
// of a CUE value into a RequirementSet:
//
//	protocol: Collection: {
//		inherits: ["Sequence"]
//		associated_types: ["Element"]
//	}
//	rule: r1: { lhs: "τ_0_0.[Collection]", rhs: "τ_0_0" }
//
// Protocols and rules keep their declaration order, which fixes rule IDs.
// Returns all compile errors found (does not fail-fast).
func CompileRequirements(v cue.Value) (*ir.RequirementSet, []error) {
	if err := v.Err(); err != nil {
		return nil, []error{formatCUEError(err)}
	}

	rs := &ir.RequirementSet{
		Protocols: []ir.ProtocolDecl{},
		Rules:     []ir.RuleSpec{},
	}
	var errs []error

	protocolsVal := v.LookupPath(cue.ParsePath("protocol"))
	if protocolsVal.Exists() {
		iter, err := protocolsVal.Fields()
		if err != nil {
			errs = append(errs, fmt.Errorf("iterating protocols: %w", formatCUEError(err)))
		} else {
			for iter.Next() {
				decl, err := CompileProtocol(iter.Value())
				if err != nil {
					errs = append(errs, err)
					continue
				}
				rs.Protocols = append(rs.Protocols, *decl)
			}
		}
	}

	rulesVal := v.LookupPath(cue.ParsePath("rule"))
	if rulesVal.Exists() {
		iter, err := rulesVal.Fields()
		if err != nil {
			errs = append(errs, fmt.Errorf("iterating rules: %w", formatCUEError(err)))
		} else {
			for iter.Next() {
				spec, err := CompileRule(iter.Value())
				if err != nil {
					errs = append(errs, err)
					continue
				}
				rs.Rules = append(rs.Rules, *spec)
			}
		}
	}

	return rs, errs
}
