package engine

import (
	"fmt"

	"github.com/roach88/reqm/internal/ir"
	"github.com/roach88/reqm/internal/rewrite"
)

// NormalForm is a term reduced by a rewrite system, with the rewrite path
// that proves the reduction.
type NormalForm struct {
	Input  string          `json:"input"`
	Output string          `json:"output"`
	Path   []ir.StepRecord `json:"path"`
	Proof  string          `json:"proof,omitempty"`
}

// Normalize parses text in the system's context and reduces it.
func Normalize(sys *rewrite.System, text string) (NormalForm, error) {
	term, err := sys.Context().ParseTerm(text)
	if err != nil {
		return NormalForm{}, fmt.Errorf("normalize %q: %w", text, err)
	}
	input := term.Clone()

	var path rewrite.Path
	sys.Simplify(&term, &path)

	nf := NormalForm{
		Input:  input.String(),
		Output: term.String(),
		Path:   rewrite.StepRecords(path),
	}
	if len(path) > 0 {
		nf.Proof = sys.FormatPath(input, path)
	}
	return nf, nil
}

// Equivalent reports whether two terms have the same normal form. The
// answer is only a decision when the system is confluent.
func Equivalent(sys *rewrite.System, a, b string) (bool, error) {
	na, err := Normalize(sys, a)
	if err != nil {
		return false, err
	}
	nb, err := Normalize(sys, b)
	if err != nil {
		return false, err
	}
	return na.Output == nb.Output, nil
}
