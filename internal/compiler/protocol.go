package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/reqm/internal/ir"
)

// CompileProtocol parses a CUE value into a ProtocolDecl.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the protocol struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`protocol: Collection: { inherits: ["Sequence"] }`)
//	decl, err := CompileProtocol(v.LookupPath(cue.ParsePath("protocol.Collection")))
func CompileProtocol(v cue.Value) (*ir.ProtocolDecl, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	decl := &ir.ProtocolDecl{}

	// The protocol name is the struct label.
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		decl.Name = strings.Trim(labels[len(labels)-1].String(), `"`)
	}
	if decl.Name == "" {
		return nil, &CompileError{
			Field:   "protocol",
			Message: "protocol name is required",
			Pos:     v.Pos(),
		}
	}

	var err error
	decl.Inherits, err = parseStringList(v, "inherits")
	if err != nil {
		return nil, err
	}

	decl.AssociatedTypes, err = parseStringList(v, "associated_types")
	if err != nil {
		return nil, err
	}

	return decl, nil
}

// parseStringList reads an optional list of strings.
func parseStringList(v cue.Value, field string) ([]string, error) {
	listVal := v.LookupPath(cue.ParsePath(field))
	if !listVal.Exists() {
		return nil, nil
	}

	iter, err := listVal.List()
	if err != nil {
		return nil, &CompileError{
			Field:   field,
			Message: "must be a list of strings",
			Pos:     listVal.Pos(),
		}
	}

	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{
				Field:   field,
				Message: fmt.Sprintf("element %d must be a string", len(out)),
				Pos:     iter.Value().Pos(),
			}
		}
		out = append(out, s)
	}
	return out, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
