package rewrite

import (
	"fmt"
	"strings"
)

// DebugFlags selects the categories of debug records a System emits.
type DebugFlags uint8

const (
	// DebugSimplify logs every rule application during simplification.
	DebugSimplify DebugFlags = 1 << iota

	// DebugAdd logs added rules and recorded homotopy generators.
	DebugAdd

	// DebugMerge logs the associated type merge heuristic.
	DebugMerge

	// DebugCompletion logs completion passes.
	DebugCompletion
)

var debugFlagNames = []struct {
	name string
	flag DebugFlags
}{
	{"simplify", DebugSimplify},
	{"add", DebugAdd},
	{"merge", DebugMerge},
	{"completion", DebugCompletion},
}

// ParseDebugFlags parses a comma-separated list of category names.
// "all" enables every category.
func ParseDebugFlags(s string) (DebugFlags, error) {
	var flags DebugFlags
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if part == "all" {
			flags |= DebugSimplify | DebugAdd | DebugMerge | DebugCompletion
			continue
		}
		found := false
		for _, d := range debugFlagNames {
			if d.name == part {
				flags |= d.flag
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown debug category %q", part)
		}
	}
	return flags, nil
}

// String lists the enabled categories.
func (f DebugFlags) String() string {
	var names []string
	for _, d := range debugFlagNames {
		if f&d.flag != 0 {
			names = append(names, d.name)
		}
	}
	return strings.Join(names, ",")
}

func (s *System) debugging(flag DebugFlags) bool {
	return s.debug&flag != 0
}

// debugf emits a Debug record when the category is enabled.
func (s *System) debugf(flag DebugFlags, msg string, args ...any) {
	if !s.debugging(flag) {
		return
	}
	s.logger.Debug(msg, args...)
}
