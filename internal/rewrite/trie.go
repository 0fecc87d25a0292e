package rewrite

import (
	"slices"

	"github.com/roach88/reqm/internal/ir"
)

// trie maps rule left-hand sides to rule IDs.
//
// Entries are never removed. A deleted rule keeps its entry until a new rule
// with the same LHS overwrites it, so lookups filter on the rule table.
type trie struct {
	root *trieNode
}

type trieNode struct {
	children map[ir.Symbol]*trieNode
	ruleID   int // -1 if no rule ends here
}

func newTrieNode() *trieNode {
	return &trieNode{ruleID: -1}
}

func newTrie() *trie {
	return &trie{root: newTrieNode()}
}

// insert stores id under key and returns the ID it replaced, or -1.
func (t *trie) insert(key []ir.Symbol, id int) int {
	n := t.root
	for _, sym := range key {
		if n.children == nil {
			n.children = make(map[ir.Symbol]*trieNode)
		}
		child, ok := n.children[sym]
		if !ok {
			child = newTrieNode()
			n.children[sym] = child
		}
		n = child
	}
	prev := n.ruleID
	n.ruleID = id
	return prev
}

// lookup returns the ID stored under exactly key, or -1.
func (t *trie) lookup(key []ir.Symbol) int {
	n := t.root
	for _, sym := range key {
		n = n.children[sym]
		if n == nil {
			return -1
		}
	}
	return n.ruleID
}

// find walks key and returns the lowest accepted ID among the entries whose
// key is a prefix of key, or -1.
func (t *trie) find(key []ir.Symbol, accept func(int) bool) int {
	best := -1
	n := t.root
	for _, sym := range key {
		n = n.children[sym]
		if n == nil {
			break
		}
		if n.ruleID >= 0 && (best < 0 || n.ruleID < best) && accept(n.ruleID) {
			best = n.ruleID
		}
	}
	return best
}

// findAll returns, in ascending order, the IDs of every entry whose key is a
// prefix of key or has key as a prefix.
func (t *trie) findAll(key []ir.Symbol) []int {
	var ids []int
	n := t.root
	for _, sym := range key {
		n = n.children[sym]
		if n == nil {
			slices.Sort(ids)
			return ids
		}
		if n.ruleID >= 0 {
			ids = append(ids, n.ruleID)
		}
	}

	// Key exhausted: every entry below extends it.
	stack := make([]*trieNode, 0, len(n.children))
	for _, child := range n.children {
		stack = append(stack, child)
	}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur.ruleID >= 0 {
			ids = append(ids, cur.ruleID)
		}
		for _, child := range cur.children {
			stack = append(stack, child)
		}
	}
	slices.Sort(ids)
	return ids
}
