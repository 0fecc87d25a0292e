package compiler

import (
	"errors"
	"fmt"
	"regexp"
	"slices"

	"github.com/roach88/reqm/internal/ir"
)

// Validation error codes (E100-E199)
const (
	// Protocol errors (E101-E109)
	ErrInvalidProtocolName     = "E101" // protocol name is not an identifier
	ErrDuplicateProtocol       = "E102" // protocol declared twice
	ErrUnknownProtocol         = "E103" // reference to an undeclared protocol
	ErrRefinementCycle         = "E104" // protocol refines itself
	ErrDuplicateAssociatedType = "E105" // associated type declared twice
	ErrInvalidAssociatedType   = "E106" // associated type name is not an identifier

	// Rule errors (E110-E119)
	ErrInvalidTerm           = "E110" // term does not parse
	ErrUnknownAssociatedType = "E111" // protocol has no such associated type
	ErrDuplicateRuleID       = "E112" // rule ID used twice
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// identifierPattern matches protocol and associated type names.
var identifierPattern = regexp.MustCompile(`^[\p{L}_][\p{L}\p{N}_]*$`)

// ValidateRequirements validates a compiled requirement set.
// Returns all errors found (does not fail-fast).
//
// Every term must parse, and every protocol it names must be declared with
// the associated types it uses, declared directly or inherited.
func ValidateRequirements(rs *ir.RequirementSet) []ValidationError {
	errs := validateProtocols(rs.Protocols)

	// Associated types can only be checked against an acyclic graph of
	// declared protocols.
	var graph *ir.ProtocolGraph
	if len(errs) == 0 {
		names := make([]string, 0, len(rs.Protocols))
		for _, p := range rs.Protocols {
			names = append(names, p.Name)
		}
		g, err := ir.BuildProtocolGraph(rs.Protocols, names)
		if err == nil {
			graph = g
		}
	}

	declared := make(map[string]bool, len(rs.Protocols))
	for _, p := range rs.Protocols {
		declared[p.Name] = true
	}

	ctx := ir.NewContext()
	ids := make(map[string]int)
	for i, r := range rs.Rules {
		if r.ID != "" {
			if first, dup := ids[r.ID]; dup {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("rules[%d].id", i),
					Message: fmt.Sprintf("duplicate rule id %q, first used by rules[%d]", r.ID, first),
					Code:    ErrDuplicateRuleID,
				})
			} else {
				ids[r.ID] = i
			}
		}

		errs = append(errs, validateTerm(ctx, r.LHS, fmt.Sprintf("rules[%d].lhs", i), declared, graph)...)
		errs = append(errs, validateTerm(ctx, r.RHS, fmt.Sprintf("rules[%d].rhs", i), declared, graph)...)
	}

	return errs
}

func validateProtocols(decls []ir.ProtocolDecl) []ValidationError {
	var errs []ValidationError

	declared := make(map[string]bool, len(decls))
	for i, p := range decls {
		if !identifierPattern.MatchString(p.Name) {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("protocols[%d].name", i),
				Message: fmt.Sprintf("invalid protocol name %q", p.Name),
				Code:    ErrInvalidProtocolName,
			})
		}
		if declared[p.Name] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("protocols[%d].name", i),
				Message: fmt.Sprintf("duplicate protocol %q", p.Name),
				Code:    ErrDuplicateProtocol,
			})
		}
		declared[p.Name] = true
	}

	for i, p := range decls {
		for j, base := range p.Inherits {
			if !declared[base] {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("protocols[%d].inherits[%d]", i, j),
					Message: fmt.Sprintf("protocol %s refines undeclared protocol %q", p.Name, base),
					Code:    ErrUnknownProtocol,
				})
			}
		}

		seen := make(map[string]bool, len(p.AssociatedTypes))
		for j, a := range p.AssociatedTypes {
			field := fmt.Sprintf("protocols[%d].associated_types[%d]", i, j)
			if !identifierPattern.MatchString(a) {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("invalid associated type name %q", a),
					Code:    ErrInvalidAssociatedType,
				})
			}
			if seen[a] {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("duplicate associated type %q in protocol %s", a, p.Name),
					Code:    ErrDuplicateAssociatedType,
				})
			}
			seen[a] = true
		}
	}

	for _, c := range AnalyzeRefinementCycles(decls) {
		errs = append(errs, ValidationError{
			Field:   "protocols",
			Message: c.Message,
			Code:    ErrRefinementCycle,
		})
	}

	return errs
}

// validateTerm parses a term and checks the protocols and associated types
// it references. graph may be nil when the protocols themselves are invalid.
func validateTerm(ctx *ir.Context, text, field string, declared map[string]bool, graph *ir.ProtocolGraph) []ValidationError {
	term, err := ctx.ParseTerm(text)
	if err != nil {
		msg := err.Error()
		var pe *ir.ParseError
		if errors.As(err, &pe) {
			msg = fmt.Sprintf("at offset %d: %s", pe.Offset, pe.Message)
		}
		return []ValidationError{{
			Field:   field,
			Message: fmt.Sprintf("invalid term %q %s", text, msg),
			Code:    ErrInvalidTerm,
		}}
	}

	var errs []ValidationError
	for _, name := range ir.ReferencedProtocols(term) {
		if !declared[name] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("term %q references undeclared protocol %q", text, name),
				Code:    ErrUnknownProtocol,
			})
		}
	}
	if len(errs) > 0 || graph == nil {
		return errs
	}

	for _, sym := range term {
		if sym.Kind() != ir.KindAssociatedType {
			continue
		}
		for _, p := range sym.Protocols() {
			info, _ := graph.Info(p)
			if !slices.Contains(info.AssociatedTypes, sym.Name()) {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("protocol %s has no associated type %q", p, sym.Name()),
					Code:    ErrUnknownAssociatedType,
				})
			}
		}
	}
	return errs
}
