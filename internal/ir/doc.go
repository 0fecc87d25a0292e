// Package ir provides the symbol and term layer consumed by the rewrite engine.
//
// This package contains the alphabet, the term representations and the
// protocol graph. All other internal packages import ir; ir imports nothing
// internal. This keeps the alphabet the foundational layer with no circular
// dependencies.
//
// Key design constraints:
//   - Symbols and Terms are interned by a Context; equality is identity
//   - Every Symbol and Term of one session comes from the same Context
//   - The term order is shortlex over the symbol order, so it is monotone
//     and well-founded
//   - Names are NFC normalized at the Context boundary
//   - All JSON tags use snake_case
package ir
