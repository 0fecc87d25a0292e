package compiler

import (
	"strings"

	"cuelang.org/go/cue"

	"github.com/roach88/reqm/internal/ir"
)

// CompileRule parses a CUE value into a RuleSpec.
//
// The CUE value should be the rule struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`rule: "collection-sequence": { lhs: "[Collection].[Sequence]", rhs: "[Collection]" }`)
//	spec, err := CompileRule(v.LookupPath(cue.ParsePath(`rule."collection-sequence"`)))
//
// The terms are kept as text; ValidateRequirements parses them.
func CompileRule(v cue.Value) (*ir.RuleSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &ir.RuleSpec{}

	// The ID may be quoted in CUE, extract it
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		spec.ID = strings.Trim(labels[len(labels)-1].String(), `"`)
	}

	var err error
	spec.LHS, err = requiredString(v, "lhs")
	if err != nil {
		return nil, err
	}
	spec.RHS, err = requiredString(v, "rhs")
	if err != nil {
		return nil, err
	}

	return spec, nil
}

func requiredString(v cue.Value, field string) (string, error) {
	fieldVal := v.LookupPath(cue.ParsePath(field))
	if !fieldVal.Exists() {
		return "", &CompileError{
			Field:   field,
			Message: field + " is required",
			Pos:     v.Pos(),
		}
	}
	s, err := fieldVal.String()
	if err != nil {
		return "", &CompileError{
			Field:   field,
			Message: field + " must be a term string",
			Pos:     fieldVal.Pos(),
		}
	}
	return s, nil
}
