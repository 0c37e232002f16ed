// Package index implements the index-table component of spec.md §4.2: a
// thread-safe wrapper around the ordered map, mapping each on-disk key to
// its value offset and a per-key reader/writer lock.
package index

import (
	"io"
	"sync"

	"cinemad/internal/ordermap"
	"cinemad/internal/word"
)

// OffsetUnknown is the sentinel value-offset for a key that has been
// reserved in the index (e.g. by a concurrent double-checked insert) but
// whose record has not yet been written to disk.
const OffsetUnknown int64 = -1

// entry is the table's per-key bookkeeping record: the value word's
// on-disk byte position, and the reader/writer lock guarding concurrent
// access to that one record. It outlives any individual request — see
// spec.md §9 "tree ownership."
type entry struct {
	offset int64
	lock   sync.RWMutex
}

// Table is the index described in spec.md §4.2. The zero value is not
// usable; construct with New.
type Table struct {
	mu   sync.RWMutex // table-level reader/writer lock
	tree *ordermap.Tree
}

// New returns an empty Table.
func New() *Table {
	return &Table{tree: ordermap.New()}
}

// RLock acquires the table reader lock. Callers of multi-step read
// sequences should hold this across every KeyOffset/KeyLock call they
// make so the index cannot shift under them, per spec.md §4.2.
func (t *Table) RLock() { t.mu.RLock() }

// RUnlock releases a reader lock held via RLock.
func (t *Table) RUnlock() { t.mu.RUnlock() }

// Lock acquires the table writer lock.
func (t *Table) Lock() { t.mu.Lock() }

// Unlock releases a writer lock held via Lock.
func (t *Table) Unlock() { t.mu.Unlock() }

// KeyOffset returns the value-word offset for key, or (0, false) if the
// key is absent. Must be called while holding RLock or Lock.
func (t *Table) KeyOffset(key word.Word) (offset int64, ok bool) {
	v, found := t.tree.Search(key)
	if !found {
		return 0, false
	}
	e := v.(*entry)
	if e.offset == OffsetUnknown {
		return 0, false
	}
	return e.offset, true
}

// KeyLock returns the per-key reader/writer lock for key, reserving the
// key with an unknown offset if it does not already exist. The returned
// lock is valid for as long as the table lock is held (entries are never
// removed). Must be called while holding Lock (it may insert).
func (t *Table) KeyLock(key word.Word) *sync.RWMutex {
	v, found := t.tree.Search(key)
	if found {
		return &v.(*entry).lock
	}
	e := &entry{offset: OffsetUnknown}
	t.tree.Insert(key, e)
	return &e.lock
}

// SetOffset records the on-disk value-word offset for key, reserving the
// key if necessary. Must be called while holding Lock.
func (t *Table) SetOffset(key word.Word, offset int64) {
	v, found := t.tree.Search(key)
	if found {
		v.(*entry).offset = offset
		return
	}
	t.tree.Insert(key, &entry{offset: offset})
}

// Len returns the number of keys currently indexed. Must be called while
// holding RLock or Lock.
func (t *Table) Len() int {
	return t.tree.Len()
}

// Destroy drops every entry, leaving the table empty. Must be called while
// no other goroutine uses the table.
func (t *Table) Destroy() {
	t.tree.Destroy()
}

// Walk calls fn for every key currently indexed, in ascending order,
// stopping early if fn returns false. Must be called while holding RLock
// or Lock.
func (t *Table) Walk(fn func(key word.Word) bool) {
	t.tree.AscendAll(func(key word.Word, _ any) bool {
		return fn(key)
	})
}

// RebuildFromStream rescans rs, a seekable stream positioned anywhere, from
// the start of the backing file to the end, and ensures every on-disk key
// has an entry with its correct offset and an initialized per-key lock.
// Idempotent: existing entries are overwritten with the offsets found
// during the scan rather than duplicated. Must be called while holding
// Lock. Mirrors the source's load_table in
// original_source/cinemad/storage.c, one record (key word + value word)
// at a time.
func (t *Table) RebuildFromStream(rs io.ReadSeeker) error {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return err
	}
	keyBuf := make([]byte, word.Len)
	for {
		if _, err := io.ReadFull(rs, keyBuf); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil
			}
			return err
		}
		key, err := word.FromBytes(keyBuf)
		if err != nil {
			return err
		}
		valueOffset, err := rs.Seek(0, io.SeekCurrent)
		if err != nil {
			return err
		}
		t.SetOffset(key, valueOffset)
		if _, err := rs.Seek(int64(word.Len), io.SeekCurrent); err != nil {
			return err
		}
	}
}
