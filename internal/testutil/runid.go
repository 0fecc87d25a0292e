package testutil

import (
	"fmt"
	"sync"
)

// RunIDSequence generates run IDs <prefix>-1, <prefix>-2 and so on.
//
// Unlike engine.FixedGenerator, RunIDSequence never runs out and can be
// reset, so the same test can record runs repeatedly with identical IDs.
// It satisfies engine.RunIDGenerator.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type RunIDSequence struct {
	mu     sync.Mutex
	prefix string
	seq    int64
}

// NewRunIDSequence creates a sequence starting at 0.
// If prefix is empty, "run" is used.
func NewRunIDSequence(prefix string) *RunIDSequence {
	if prefix == "" {
		prefix = "run"
	}
	return &RunIDSequence{prefix: prefix}
}

// Generate advances the sequence and returns the next run ID.
func (s *RunIDSequence) Generate() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return fmt.Sprintf("%s-%d", s.prefix, s.seq)
}

// Current returns the number of IDs generated since the last reset.
func (s *RunIDSequence) Current() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// Reset restarts the sequence. The next ID is <prefix>-1.
func (s *RunIDSequence) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq = 0
}
