package rewrite

import (
	"errors"
	"fmt"
)

// InvariantError reports a defect in rule orientation or path construction.
//
// Invariant errors are never returned: they are raised with panic, because
// continuing with a corrupted rule table would produce plausible-looking but
// wrong equivalence answers. Recover them only at a process boundary.
type InvariantError struct {
	// Code identifies the violated invariant.
	Code InvariantCode

	// Message is a human-readable description.
	Message string

	// RuleID identifies the rule involved, or -1.
	RuleID int

	// Details contains additional context.
	Details map[string]string
}

// InvariantCode categorizes invariant violations.
type InvariantCode string

const (
	// ErrCodeStepOverflow indicates a step offset or rule ID beyond MaxStepField.
	ErrCodeStepOverflow InvariantCode = "STEP_OVERFLOW"

	// ErrCodeRuleDeletedTwice indicates a deleted rule was deleted again.
	ErrCodeRuleDeletedTwice InvariantCode = "RULE_DELETED_TWICE"

	// ErrCodeMisorientedRule indicates a live rule whose LHS is not greater
	// than its RHS.
	ErrCodeMisorientedRule InvariantCode = "MISORIENTED_RULE"

	// ErrCodeBrokenPath indicates a recorded path that does not replay.
	ErrCodeBrokenPath InvariantCode = "BROKEN_PATH"

	// ErrCodeStaleRuleID indicates a path referencing a rule that does not exist.
	ErrCodeStaleRuleID InvariantCode = "STALE_RULE_ID"

	// ErrCodeDuplicateRule indicates two live rules with the same LHS.
	ErrCodeDuplicateRule InvariantCode = "DUPLICATE_RULE"

	// ErrCodeAlreadyInitialized indicates a second call to Initialize.
	ErrCodeAlreadyInitialized InvariantCode = "ALREADY_INITIALIZED"
)

// Error implements the error interface.
func (e *InvariantError) Error() string {
	if e.RuleID >= 0 {
		return fmt.Sprintf("%s: %s (rule=%d)", e.Code, e.Message, e.RuleID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsInvariantError returns true if the error is an InvariantError with the
// given code. Uses errors.As to handle wrapped errors.
func IsInvariantError(err error, code InvariantCode) bool {
	var ie *InvariantError
	if errors.As(err, &ie) {
		return ie.Code == code
	}
	return false
}

func newInvariantError(code InvariantCode, ruleID int, format string, args ...any) *InvariantError {
	return &InvariantError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		RuleID:  ruleID,
	}
}

// invariantViolation panics with an InvariantError.
func invariantViolation(code InvariantCode, ruleID int, format string, args ...any) {
	panic(newInvariantError(code, ruleID, format, args...))
}

// LimitError is reported when completion stops at a resource limit.
//
// Unlike InvariantError this is an expected outcome on inputs that are not
// finitely presentable: the system stays readable and the caller may fall
// back to a degraded mode.
type LimitError struct {
	Result        CompletionResult
	Rules         int    // rules added by completion, including the offending one
	MaxIterations int    // iteration limit in effect
	Depth         int    // LHS length of the offending rule
	MaxDepth      int    // depth limit in effect
	Rule          string // the offending rule
}

// Error implements the error interface.
func (e *LimitError) Error() string {
	if e.Result == MaxDepth {
		return fmt.Sprintf("completion exceeded max depth: rule %s has length %d > %d limit",
			e.Rule, e.Depth, e.MaxDepth)
	}
	return fmt.Sprintf("completion reached max iterations: %d rules added, limit %d",
		e.Rules, e.MaxIterations)
}

// IsLimitError returns true if the error is a LimitError.
// Uses errors.As to handle wrapped errors.
func IsLimitError(err error) bool {
	var le *LimitError
	return errors.As(err, &le)
}

// IsMaxIterations returns true if completion ran out of iterations.
func IsMaxIterations(err error) bool {
	var le *LimitError
	if errors.As(err, &le) {
		return le.Result == MaxIterations
	}
	return false
}

// IsMaxDepth returns true if completion produced a rule deeper than allowed.
func IsMaxDepth(err error) bool {
	var le *LimitError
	if errors.As(err, &le) {
		return le.Result == MaxDepth
	}
	return false
}
