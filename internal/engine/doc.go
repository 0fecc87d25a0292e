// Package engine runs requirement sets through the rewrite system.
//
// A run is:
//  1. Validate the requirement set and parse its terms
//  2. Build the protocol graph from the protocols the rules reference
//  3. Initialize a rewrite system and run Knuth-Bendix completion
//  4. Verify rule orientation and every homotopy generator
//  5. Export a snapshot and, when a store is configured, write it
//
// Completion stopping at a limit still produces a verified snapshot; the
// limit is reported in the Result. Invariant violations raised by the
// rewrite system are recovered here and returned as RunError values.
//
// Replay re-runs a stored run's input with its recorded limits and compares
// snapshot hashes. Completion is deterministic, so any mismatch means the
// engine or the stored rows changed.
//
// Each run owns its ir.Context and rewrite system. The store serializes
// writes.
package engine
