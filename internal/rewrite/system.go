package rewrite

import (
	"iter"
	"log/slog"
	"slices"

	"github.com/roach88/reqm/internal/ir"
)

// DefaultMaxIterations is the default limit on rules added by completion.
const DefaultMaxIterations = 4000

// DefaultMaxDepth is the default limit on the LHS length of added rules.
const DefaultMaxDepth = 10

// HomotopyGenerator is a term together with a path that rewrites it back to
// itself. Generators record redundancies discovered during completion.
type HomotopyGenerator struct {
	Term ir.MutableTerm
	Path Path
}

// mergedAssociatedType is a queued rule X.[P2:T] ⇒ X.[P1:T] awaiting
// unification into X.[P1&P2:T].
type mergedAssociatedType struct {
	rhs          ir.Term
	lhsSymbol    ir.Symbol
	mergedSymbol ir.Symbol
}

// System is a rewrite system: an append-only rule table indexed by a trie,
// the protocol graph ordering its symbols, and the homotopy generators
// recorded while completing it.
//
// A System belongs to a single session. It is not safe for concurrent use
// and must not be copied after first use: the trie and the overlap tracker
// hold indices into the rule table.
type System struct {
	noCopy noCopy

	ctx    *ir.Context
	graph  *ir.ProtocolGraph
	rules  []Rule
	trie   *trie
	merged []mergedAssociatedType

	overlaps   *overlapTracker
	generators []HomotopyGenerator

	initialized bool
	completion  completionState

	logger *slog.Logger
	debug  DebugFlags
}

// completionState records the outcome of the last completion run.
type completionState struct {
	ran           bool
	result        CompletionResult
	steps         int
	maxIterations int
	maxDepth      int
	err           *LimitError
}

// Option configures a System.
type Option func(*System)

// WithLogger sets the logger for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(s *System) {
		s.logger = logger
	}
}

// WithDebug enables debug records for the given categories.
func WithDebug(flags DebugFlags) Option {
	return func(s *System) {
		s.debug = flags
	}
}

// New creates an empty System allocating symbols and terms from ctx.
func New(ctx *ir.Context, opts ...Option) *System {
	s := &System{
		ctx:      ctx,
		trie:     newTrie(),
		overlaps: newOverlapTracker(),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize adds the input equations and takes ownership of the protocol
// graph. It may be called once per System.
func (s *System) Initialize(rules []TermPair, graph *ir.ProtocolGraph) {
	if s.initialized {
		invariantViolation(ErrCodeAlreadyInitialized, -1, "rewrite system initialized twice")
	}
	s.initialized = true
	s.graph = graph

	for _, r := range rules {
		s.addRule(r.LHS, r.RHS, nil)
	}
	s.logger.Info("rewrite system initialized",
		"input_rules", len(rules),
		"rules", len(s.rules),
		"protocols", len(graph.Protocols()))
}

// AddRule orients and adds the equation lhs = rhs.
//
// Both sides are simplified first. If they meet, no rule is added; when path
// is a non-empty derivation from lhs to rhs the resulting loop is recorded
// as a homotopy generator. Otherwise the larger side becomes the LHS. With a
// path, the loop closed by the new rule is recorded as well.
//
// AddRule reports whether a rule was added.
func (s *System) AddRule(lhs, rhs ir.MutableTerm, path *Path) bool {
	return s.addRule(lhs, rhs, path)
}

func (s *System) addRule(lhs, rhs ir.MutableTerm, path *Path) bool {
	lhs, rhs = lhs.Clone(), rhs.Clone()

	var lhsPath, rhsPath Path
	s.simplify(&lhs, &lhsPath, -1)
	s.simplify(&rhs, &rhsPath, -1)

	// loop runs from simplified lhs to simplified rhs.
	var loop Path
	if path != nil {
		loop = lhsPath.Inverse()
		loop.Append(*path)
		loop.Append(rhsPath)
	}

	c := lhs.Compare(rhs, s.graph)
	if c == 0 {
		if path != nil && len(*path) > 0 {
			s.recordGenerator(lhs, loop)
		}
		s.debugf(DebugAdd, "trivial rule", "term", lhs.String())
		return false
	}
	if c < 0 {
		lhs, rhs = rhs, lhs
		loop.Invert()
	}

	id := len(s.rules)
	s.rules = append(s.rules, Rule{lhs: s.ctx.Term(lhs), rhs: s.ctx.Term(rhs)})
	if prev := s.trie.insert(lhs, id); prev >= 0 && !s.rules[prev].deleted {
		invariantViolation(ErrCodeDuplicateRule, id, "rule %s duplicates live rule %d", s.rules[id], prev)
	}
	s.debugf(DebugAdd, "added rule", "id", id, "rule", s.rules[id].String())

	if path != nil {
		loop.Add(NewRuleStep(0, id, true))
		s.recordGenerator(lhs, loop)
	}

	s.checkMergedAssociatedType(id)
	return true
}

// Simplify rewrites term into normal form and reports whether anything
// changed. Each application is appended to path when path is non-nil.
//
// At the leftmost position where some rule matches, the lowest rule ID
// wins; the scan restarts from the start after every rewrite.
func (s *System) Simplify(term *ir.MutableTerm, path *Path) bool {
	return s.simplify(term, path, -1)
}

// simplify is Simplify ignoring rule exclude (-1 ignores none).
func (s *System) simplify(term *ir.MutableTerm, path *Path, exclude int) bool {
	accept := func(id int) bool {
		return id != exclude && !s.rules[id].deleted
	}

	changed := false
	for {
		pos, id := s.firstMatch(*term, accept)
		if id < 0 {
			break
		}
		r := s.rules[id]
		term.Replace(pos, pos+r.lhs.Len(), r.rhs.Symbols())
		if path != nil {
			path.Add(NewRuleStep(pos, id, false))
		}
		if s.debugging(DebugSimplify) {
			s.logger.Debug("applied rule", "id", id, "offset", pos, "result", term.String())
		}
		changed = true
	}
	return changed
}

// firstMatch returns the leftmost position where an accepted rule matches
// and the rule, or -1.
func (s *System) firstMatch(term ir.MutableTerm, accept func(int) bool) (int, int) {
	for pos := range term {
		if id := s.trie.find(term[pos:], accept); id >= 0 {
			return pos, id
		}
	}
	return -1, -1
}

// SimplifySubstitutions simplifies every substitution of a superclass or
// concrete type symbol. Other symbols are returned unchanged.
func (s *System) SimplifySubstitutions(sym ir.Symbol) ir.Symbol {
	if !sym.IsSuperclassOrConcreteType() {
		return sym
	}
	return s.ctx.TransformSubstitutions(sym, func(t ir.Term) ir.Term {
		m := t.Mutable()
		if !s.Simplify(&m, nil) {
			return t
		}
		return s.ctx.Term(m)
	})
}

func (s *System) recordGenerator(term ir.MutableTerm, loop Path) {
	if loop.IsTrivial() {
		return
	}
	s.generators = append(s.generators, HomotopyGenerator{Term: term.Clone(), Path: loop.Clone()})
	s.debugf(DebugAdd, "recorded homotopy generator", "term", term.String(), "steps", len(loop))
}

// Context returns the allocation context.
func (s *System) Context() *ir.Context { return s.ctx }

// Protocols returns the protocol graph.
func (s *System) Protocols() *ir.ProtocolGraph { return s.graph }

// NumRules returns the number of rule slots, deleted ones included.
func (s *System) NumRules() int { return len(s.rules) }

// Rule returns the rule with the given ID.
func (s *System) Rule(id int) Rule { return s.rules[id] }

// RuleID returns the live rule whose LHS is exactly lhs.
func (s *System) RuleID(lhs ir.Term) (int, bool) {
	id := s.trie.lookup(lhs.Symbols())
	if id < 0 || s.rules[id].deleted {
		return -1, false
	}
	return id, true
}

// Rules iterates over the live rules in ID order.
func (s *System) Rules() iter.Seq2[int, Rule] {
	return func(yield func(int, Rule) bool) {
		for id, r := range s.rules {
			if r.deleted {
				continue
			}
			if !yield(id, r) {
				return
			}
		}
	}
}

// HomotopyGenerators returns the recorded generators.
func (s *System) HomotopyGenerators() []HomotopyGenerator {
	return slices.Clone(s.generators)
}

// noCopy may be embedded into structs which must not be copied after first
// use. See https://golang.org/issues/8005#issuecomment-190753527.
type noCopy struct{}

// Lock is a no-op used by the copylocks checker of go vet.
func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
