// Package ordermap implements the balanced-BST "ordered map" component
// named in spec.md §4.1: a total order over word-sized keys backed by a
// self-balancing tree, with insert/search/destroy semantics.
//
// The tree itself is github.com/petar/GoLLRB, a left-leaning red-black
// tree — the self-balancing-BST library this corpus's go-car/v2 module
// depends on. It gives O(log n) Insert/Get without requiring us to hand
// roll AVL rotations, which is exactly the balance discipline spec.md
// §4.1 asks for.
package ordermap

import (
	"github.com/petar/GoLLRB/llrb"

	"cinemad/internal/word"
)

// Entry is one (key, value) pair stored in the tree. Val is opaque to this
// package — ordermap only orders on Key.
type Entry struct {
	Key word.Word
	Val any
}

// Less implements llrb.Item, ordering entries by the lexicographic
// byte-string order on their key word.
func (e *Entry) Less(than llrb.Item) bool {
	other, _ := than.(*Entry)
	return e.Key.Less(other.Key)
}

// Tree is a thin, typed wrapper around an *llrb.LLRB specialized to
// word.Word keys. It has no locking of its own — see index.Table for the
// reader/writer lock that guards concurrent access, per spec.md §4.2.
type Tree struct {
	t *llrb.LLRB
}

// New returns an empty Tree.
func New() *Tree {
	return &Tree{t: llrb.New()}
}

// Insert inserts key with val, reporting whether the key was newly
// created (inserted) and whether an existing entry was overwritten
// (replaced), matching spec.md §4.1's insert(key, value) → {inserted,
// replaced} contract.
func (t *Tree) Insert(key word.Word, val any) (inserted, replaced bool) {
	old := t.t.ReplaceOrInsert(&Entry{Key: key, Val: val})
	if old == nil {
		return true, false
	}
	return false, true
}

// Search returns the entry stored for key, if any.
func (t *Tree) Search(key word.Word) (val any, ok bool) {
	found := t.t.Get(&Entry{Key: key})
	if found == nil {
		return nil, false
	}
	return found.(*Entry).Val, true
}

// Len returns the number of keys currently stored.
func (t *Tree) Len() int {
	return t.t.Len()
}

// AscendAll calls fn for every (key, val) pair in ascending key order.
// This is the index build-scan's only iteration requirement per spec.md
// §4.1 ("no iteration contract beyond in-order traversal").
func (t *Tree) AscendAll(fn func(key word.Word, val any) bool) {
	min := t.t.Min()
	if min == nil {
		return
	}
	t.t.AscendGreaterOrEqual(min, func(i llrb.Item) bool {
		e := i.(*Entry)
		return fn(e.Key, e.Val)
	})
}

// Destroy drops the tree's root reference. GoLLRB has no explicit
// teardown; this exists so callers can express "this table is no longer
// usable," matching the source's avl_tree_destroy call site in spirit.
func (t *Tree) Destroy() {
	t.t = llrb.New()
}
