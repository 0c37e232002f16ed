package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"

	"cinemad/internal/word"
)

func TestSnapshotProducesDecompressableCopy(t *testing.T) {
	e := newTestEngine(t)
	if err := e.Set(word.MustPad("k1"), word.MustPad("v1")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	dst := filepath.Join(t.TempDir(), "snapshot.zst")
	if err := e.Snapshot(dst); err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	compressed, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("reading snapshot: %v", err)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		t.Fatalf("zstd.NewReader: %v", err)
	}
	defer dec.Close()

	raw, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		t.Fatalf("decoding snapshot: %v", err)
	}
	if len(raw) == 0 {
		t.Error("decompressed snapshot is empty, want the seeded record's bytes")
	}
}
