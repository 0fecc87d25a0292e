package rewrite

import "github.com/hashicorp/go-set/v3"

// overlapTracker remembers which ordered rule pairs were already examined
// for critical pairs.
//
// Pairs are ordered: (i, j) covers the overlaps where rule j's LHS starts
// inside rule i's LHS, which are different from those of (j, i). Without
// the tracker every completion pass would revisit every overlap and
// completion would not converge.
type overlapTracker struct {
	checked *set.Set[rulePair]
}

type rulePair struct {
	lhs, rhs int
}

func newOverlapTracker() *overlapTracker {
	return &overlapTracker{checked: set.New[rulePair](0)}
}

// isChecked reports whether the pair (i, j) was already examined.
func (o *overlapTracker) isChecked(i, j int) bool {
	return o.checked.Contains(rulePair{i, j})
}

// record marks the pair (i, j) as examined.
func (o *overlapTracker) record(i, j int) {
	o.checked.Insert(rulePair{i, j})
}

// size returns the number of examined pairs.
func (o *overlapTracker) size() int {
	return o.checked.Size()
}
