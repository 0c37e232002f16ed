package ordermap

import (
	"testing"

	"cinemad/internal/word"
)

func TestInsertAndSearch(t *testing.T) {
	tr := New()
	key := word.MustPad("k1")

	inserted, replaced := tr.Insert(key, 42)
	if !inserted || replaced {
		t.Fatalf("first Insert: got (inserted=%v, replaced=%v), want (true, false)", inserted, replaced)
	}

	val, ok := tr.Search(key)
	if !ok || val.(int) != 42 {
		t.Fatalf("Search after insert: got (%v, %v), want (42, true)", val, ok)
	}

	inserted, replaced = tr.Insert(key, 43)
	if inserted || !replaced {
		t.Fatalf("second Insert: got (inserted=%v, replaced=%v), want (false, true)", inserted, replaced)
	}

	val, _ = tr.Search(key)
	if val.(int) != 43 {
		t.Errorf("Search after replace: got %v, want 43", val)
	}
}

func TestSearchMiss(t *testing.T) {
	tr := New()
	_, ok := tr.Search(word.MustPad("missing"))
	if ok {
		t.Error("Search on empty tree should report ok=false")
	}
}

func TestAscendAllEmptyTree(t *testing.T) {
	tr := New()
	called := false
	tr.AscendAll(func(word.Word, any) bool {
		called = true
		return true
	})
	if called {
		t.Error("AscendAll on empty tree should never call fn")
	}
}

func TestAscendAllOrder(t *testing.T) {
	tr := New()
	keys := []string{"c", "a", "b"}
	for _, k := range keys {
		tr.Insert(word.MustPad(k), nil)
	}

	var seen []string
	tr.AscendAll(func(k word.Word, _ any) bool {
		seen = append(seen, k.String())
		return true
	})

	want := []string{"a", "b", "c"}
	if len(seen) != len(want) {
		t.Fatalf("AscendAll visited %d keys, want %d", len(seen), len(want))
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("AscendAll order[%d] = %q, want %q", i, seen[i], want[i])
		}
	}
}

func TestAscendAllStopsEarly(t *testing.T) {
	tr := New()
	for _, k := range []string{"a", "b", "c"} {
		tr.Insert(word.MustPad(k), nil)
	}
	count := 0
	tr.AscendAll(func(word.Word, any) bool {
		count++
		return count < 1
	})
	if count != 1 {
		t.Errorf("AscendAll should stop after fn returns false, visited %d", count)
	}
}

func TestLen(t *testing.T) {
	tr := New()
	if tr.Len() != 0 {
		t.Errorf("Len() on empty tree = %d, want 0", tr.Len())
	}
	tr.Insert(word.MustPad("a"), nil)
	tr.Insert(word.MustPad("b"), nil)
	if tr.Len() != 2 {
		t.Errorf("Len() after two inserts = %d, want 2", tr.Len())
	}
}

func TestDestroy(t *testing.T) {
	tr := New()
	tr.Insert(word.MustPad("a"), nil)
	tr.Destroy()
	if tr.Len() != 0 {
		t.Errorf("Len() after Destroy = %d, want 0", tr.Len())
	}
}
