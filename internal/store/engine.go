// Package store implements the storage engine of spec.md §4.3: an
// append-only, fixed-width key/value file guarded by a whole-file
// advisory lock, with an in-memory index table mediating concurrent
// reads and writes.
//
// It is grounded in original_source/cinemad/storage.c and database.c for
// the exact lock-acquisition order and double-checked-insert algorithm,
// and generalizes the teacher's Manager/Bucket
// (jptalukdar-waddlemap-db/internal/storage/storage.go) from a
// hash-sharded, variable-length, compressed record format to the single
// flat file of fixed-width records spec.md requires.
package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"go.uber.org/multierr"

	"cinemad/internal/index"
	"cinemad/internal/word"
)

// NotPresent is the reply word Get returns when the key has no record.
var NotPresent = word.MustPad("NOT_PRESENT")

// ErrAlreadyLocked is returned by Open when another process already holds
// the data file's exclusive advisory lock.
var ErrAlreadyLocked = errors.New("store: data file is locked by another process")

// Engine is the file-backed key/value store. The zero value is not
// usable; construct with Open.
type Engine struct {
	file  *os.File
	index *index.Table
	audit *WAL

	// strictSync mirrors the teacher's DBSchemaConfig.SyncMode: true
	// fsyncs every mutating write before it's acknowledged; false lets
	// the OS buffer writes, trading the durability window for throughput.
	strictSync bool
}

// Open opens filename for read/write, acquiring a non-blocking exclusive
// advisory lock on the whole file (spec.md invariant 5: at most one
// process may hold it at a time) before building the in-memory index by
// scanning the file from the start, per spec.md §4.3.
//
// The file must already exist; callers are responsible for the directory
// bootstrap and first-run seed sequence (see the bootstrap package),
// which spec.md §1 treats as an external collaborator. strictSync
// selects whether Set fsyncs after every write.
func Open(filename, auditLogPath string, strictSync bool) (*Engine, error) {
	f, err := os.OpenFile(filename, os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", filename, err)
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		f.Close()
		if errors.Is(err, syscall.EWOULDBLOCK) {
			return nil, ErrAlreadyLocked
		}
		return nil, fmt.Errorf("store: flock %s: %w", filename, err)
	}

	idx := index.New()
	idx.Lock()
	rebuildErr := idx.RebuildFromStream(f)
	idx.Unlock()
	if rebuildErr != nil {
		syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
		f.Close()
		return nil, fmt.Errorf("store: build index: %w", rebuildErr)
	}

	audit, err := OpenWAL(auditLogPath)
	if err != nil {
		syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
		f.Close()
		return nil, fmt.Errorf("store: open audit log: %w", err)
	}

	e := &Engine{file: f, index: idx, audit: audit, strictSync: strictSync}
	if err := e.recoverFromAudit(); err != nil {
		e.Close()
		return nil, fmt.Errorf("store: recover audit log: %w", err)
	}
	return e, nil
}

// Close releases the whole-file lock and closes the underlying file and
// audit log. Per spec.md §3 Lifecycles, the index is destroyed with it.
func (e *Engine) Close() error {
	var err error
	err = multierr.Append(err, e.audit.Truncate())
	err = multierr.Append(err, e.audit.Close())
	err = multierr.Append(err, syscall.Flock(int(e.file.Fd()), syscall.LOCK_UN))
	err = multierr.Append(err, e.file.Close())
	e.index.Destroy()
	return err
}

// Get implements the read path of spec.md §4.3: table reader lock, offset
// lookup, per-key reader lock, positional read, release in reverse order.
func (e *Engine) Get(key word.Word) (word.Word, error) {
	e.index.RLock()
	offset, ok := e.index.KeyOffset(key)
	if !ok {
		e.index.RUnlock()
		return NotPresent, nil
	}
	lock := e.index.KeyLock(key)
	lock.RLock()
	defer lock.RUnlock()
	defer e.index.RUnlock()

	buf := make([]byte, word.Len)
	if _, err := e.file.ReadAt(buf, offset); err != nil {
		return word.Word{}, fmt.Errorf("store: read value at %d: %w", offset, err)
	}
	return word.FromBytes(buf)
}

// Set implements the write path of spec.md §4.3: table reader lock and
// offset lookup; on a miss, upgrade to the table writer lock, re-check
// (double-checked insert), append a new key+value record and rescan to
// pick up the fresh offset; then, with the table lock still held, take
// the per-key writer lock and overwrite the value word in place.
func (e *Engine) Set(key, value word.Word) error {
	e.index.RLock()
	offset, ok := e.index.KeyOffset(key)
	if !ok {
		e.index.RUnlock()
		e.index.Lock()
		offset, ok = e.index.KeyOffset(key)
		if !ok {
			var err error
			offset, err = e.appendRecord(key)
			if err != nil {
				e.index.Unlock()
				return err
			}
			if err := e.index.RebuildFromStream(e.file); err != nil {
				e.index.Unlock()
				return fmt.Errorf("store: rescan after append: %w", err)
			}
		}
		defer e.index.Unlock()
	} else {
		defer e.index.RUnlock()
	}

	if err := e.audit.LogSet(key, value); err != nil {
		return fmt.Errorf("store: audit log: %w", err)
	}

	lock := e.index.KeyLock(key)
	lock.Lock()
	defer lock.Unlock()

	if _, err := e.file.WriteAt(value.Bytes(), offset); err != nil {
		return fmt.Errorf("store: write value at %d: %w", offset, err)
	}
	if e.strictSync {
		return e.file.Sync()
	}
	return nil
}

// appendRecord writes key immediately followed by a zero value word at
// the current end of file and returns the value word's new offset. The
// zero value is a placeholder slot; the caller always follows up with a
// positional write of the real value under the per-key writer lock,
// mirroring the source's storage_store, which appends a zeroed record and
// then unconditionally overwrites it at record->offset. Must be called
// while holding the table writer lock.
func (e *Engine) appendRecord(key word.Word) (int64, error) {
	end, err := e.file.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("store: seek end: %w", err)
	}
	var zero word.Word
	if _, err := e.file.Write(key.Bytes()); err != nil {
		return 0, fmt.Errorf("store: append key: %w", err)
	}
	if _, err := e.file.Write(zero.Bytes()); err != nil {
		return 0, fmt.Errorf("store: append value: %w", err)
	}
	if err := e.file.Sync(); err != nil {
		return 0, fmt.Errorf("store: flush append: %w", err)
	}
	return end + int64(word.Len), nil
}

// Add allocates key with an empty (all-zero) value word if it doesn't
// already exist, implementing the ADD form of spec.md §4.4. It is a no-op
// if the key is already present.
func (e *Engine) Add(key word.Word) error {
	e.index.RLock()
	_, ok := e.index.KeyOffset(key)
	e.index.RUnlock()
	if ok {
		return nil
	}
	return e.Set(key, word.Word{})
}

// Len returns the number of keys currently indexed.
func (e *Engine) Len() int {
	e.index.RLock()
	defer e.index.RUnlock()
	return e.index.Len()
}
