package store

import (
	"testing"

	"cinemad/internal/word"
)

func TestCheckConsistencyCleanEngine(t *testing.T) {
	e := newTestEngine(t)
	if err := e.Set(word.MustPad("k1"), word.MustPad("v1")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := e.Set(word.MustPad("k2"), word.MustPad("v2")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	report, err := e.CheckConsistency()
	if err != nil {
		t.Fatalf("CheckConsistency: %v", err)
	}
	if !report.Consistent {
		t.Errorf("report.Consistent = false on an untouched engine, mismatches: %v", report.MismatchedKeys)
	}
	if report.TotalKeys != 2 {
		t.Errorf("report.TotalKeys = %d, want 2", report.TotalKeys)
	}
}
