// Package rewrite implements the requirement machine's rewrite system.
//
// A System holds oriented rules LHS ⇒ RHS over ir terms, indexed by a trie
// on their left-hand sides, and drives them toward confluence with
// Knuth-Bendix completion.
//
// ARCHITECTURE:
//
// Rule table:
// Rules are appended and never removed. Redundant rules are marked deleted
// and keep their slot, because rule IDs are embedded in the trie, in the
// overlap tracker and in every recorded rewrite path.
//
// Rewrite paths:
// Every simplification can record the steps it applied. A Path composes by
// concatenation and inverts by reversing and flipping its steps, so any
// derivation can be replayed in either direction. Loops discovered while
// completing are kept as homotopy generators.
//
// Completion loop, one pass:
// 1. Compute critical pairs for overlaps not checked before
// 2. Add each resolution with AddRule, enforcing the iteration and depth limits
// 3. Drain the associated type merge queue
// 4. Simplify the rule table
// Passes repeat while any step changed the system.
//
// CRITICAL PATTERNS:
//
// Deterministic order:
// Rules are scanned in ID order, overlap positions left to right, and ties
// at one position go to the lowest rule ID. No maps are iterated where the
// order is observable.
//
// Two error tiers:
// Resource limits are expected outcomes reported as a CompletionResult and
// a *LimitError. Broken invariants panic with an *InvariantError.
package rewrite
