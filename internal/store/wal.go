package store

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"cinemad/internal/word"
)

// AuditEntry is a single pre-image record written to the write-ahead
// audit log before a mutating Set takes effect. Replayed on Open after an
// unclean shutdown to verify the on-disk state actually reflects the last
// acknowledged write, rather than silently trusting the index.
//
// This adapts the teacher's WALEntry/WAL
// (jptalukdar-waddlemap-db/internal/storage/wal.go), which logged
// vector-store mutations for crash recovery of the HNSW/forward/keyword
// indexes; here it logs the same (key, value) pairs this engine's Set
// already writes, since the engine has no secondary indexes to recover.
type AuditEntry struct {
	Timestamp int64
	Key       word.Word
	Value     word.Word
}

// WAL is a gob-encoded, append-only audit log of pending Set operations.
type WAL struct {
	mu      sync.Mutex
	path    string
	file    *os.File
	encoder *gob.Encoder
}

// OpenWAL opens (creating if necessary) the audit log at path.
func OpenWAL(path string) (*WAL, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("wal: open %s: %w", path, err)
	}
	return &WAL{path: path, file: f, encoder: gob.NewEncoder(f)}, nil
}

// LogSet appends a pre-image entry for an upcoming Set(key, value) and
// syncs it to disk before returning, so that a crash between this call
// and the engine's own positional write leaves a trail to recover from.
func (w *WAL) LogSet(key, value word.Word) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	entry := AuditEntry{Timestamp: time.Now().UnixNano(), Key: key, Value: value}
	if err := w.encoder.Encode(entry); err != nil {
		return fmt.Errorf("wal: encode entry: %w", err)
	}
	return w.file.Sync()
}

// Replay decodes and returns every entry currently in the log, in the
// order they were written.
func (w *WAL) Replay() ([]AuditEntry, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	dec := gob.NewDecoder(w.file)
	var entries []AuditEntry
	for {
		var e AuditEntry
		if err := dec.Decode(&e); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return entries, nil
		}
		entries = append(entries, e)
	}
	if _, err := w.file.Seek(0, io.SeekEnd); err != nil {
		return entries, err
	}
	return entries, nil
}

// Truncate clears the log, called on a clean Close since every logged
// mutation has by then been durably applied to the data file.
func (w *WAL) Truncate() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.file.Truncate(0); err != nil {
		return fmt.Errorf("wal: truncate: %w", err)
	}
	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	w.encoder = gob.NewEncoder(w.file)
	return nil
}

// Close closes the underlying file.
func (w *WAL) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

// recoverFromAudit replays the audit log left over from a session that
// did not call Close cleanly and checks each logged (key, value) pair
// against the data file, re-applying with Set any value that did not land
// on disk, then truncates the log. Entries are applied in log order, so
// the last logged value of a key wins; keys that cannot be read are
// skipped.
func (e *Engine) recoverFromAudit() error {
	entries, err := e.audit.Replay()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	for _, entry := range entries {
		got, err := e.Get(entry.Key)
		if err != nil {
			continue
		}
		if got != entry.Value {
			// Best-effort re-apply: the write was logged but never made
			// it to disk before the process ended.
			if err := e.Set(entry.Key, entry.Value); err != nil {
				return fmt.Errorf("reapplying %x: %w", entry.Key.Bytes(), err)
			}
		}
	}
	return e.audit.Truncate()
}
