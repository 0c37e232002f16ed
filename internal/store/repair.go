package store

import (
	"fmt"

	"cinemad/internal/index"
	"cinemad/internal/word"
)

// ConsistencyReport is the result of Engine.CheckConsistency: a
// comparison of the in-memory index against a fresh scan of the file.
//
// This adapts the teacher's RepairManager.CheckConsistency
// (jptalukdar-waddlemap-db/internal/storage/repair.go), which compared an
// HNSW index against a forward index for orphan/missing vector IDs; here
// the "two views of the same data" are the live index table and a
// from-scratch rescan of the data file, which is the analogous
// consistency question for a single-index engine.
type ConsistencyReport struct {
	TotalKeys      int
	MismatchedKeys []word.Word
	Consistent     bool
}

// CheckConsistency rescans the data file into a fresh index table and
// compares every key's recorded offset against the live index, reporting
// any divergence. It does not mutate e's live index.
func (e *Engine) CheckConsistency() (*ConsistencyReport, error) {
	e.index.RLock()
	defer e.index.RUnlock()

	fresh := index.New()
	fresh.Lock()
	err := fresh.RebuildFromStream(e.file)
	fresh.Unlock()
	if err != nil {
		return nil, fmt.Errorf("store: consistency rescan: %w", err)
	}

	report := &ConsistencyReport{Consistent: true}
	liveKeys := e.collectKeys()
	for _, key := range liveKeys {
		report.TotalKeys++
		liveOffset, liveOK := e.index.KeyOffset(key)
		freshOffset, freshOK := fresh.KeyOffset(key)
		if liveOK != freshOK || liveOffset != freshOffset {
			report.MismatchedKeys = append(report.MismatchedKeys, key)
			report.Consistent = false
		}
	}
	return report, nil
}

// collectKeys returns every key currently present in the live index. Must
// be called while holding the table reader or writer lock.
func (e *Engine) collectKeys() []word.Word {
	var keys []word.Word
	e.index.Walk(func(key word.Word) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}
