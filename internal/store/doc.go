// Package store provides SQLite-backed durable storage for completion runs.
//
// A run is written once, in a single transaction, and never updated:
//   - Runs: input requirement set, limits, result and content hashes
//   - Protocols: the run's protocol graph declarations
//   - Rules: every rule table slot, deleted ones included
//   - Homotopy generators: basepoint terms and their loops
//
// # Ordering
//
// Runs carry a logical sequence number assigned on write. Listings use
// ORDER BY seq ASC, id ASC COLLATE BINARY, never wall time, so the same
// database always lists identically.
//
// # Idempotency
//
// Writing a run ID that already exists is a no-op when the stored snapshot
// hash matches, and an error otherwise.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Content hashes are computed by internal/ir/hash.go using canonical JSON
// and SHA-256 with domain separation.
package store
