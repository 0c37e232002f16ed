// Package server implements the request dispatcher of spec.md §4.6: dual
// listeners, a per-request worker with a timeout companion, a joiner that
// reaps finished workers, and the global DB reader/writer lock that
// serializes bookings against status/raw queries.
//
// Grounded in the teacher's network.Server
// (jptalukdar-waddlemap-db/internal/network/server.go) for the
// accept-loop/goroutine-per-connection/length-prefixed-framing idiom, and
// in original_source/cinemad/cinemad.c for the worker/timer/joiner shapes
// that idiom is generalized to reproduce.
package server

import (
	"sync"

	"cinemad/internal/logging"
	"cinemad/internal/store"
)

// Context groups the process-wide state spec.md §9 calls out as "global
// mutables" in the source (the database handle, geometry, and the global
// DB rwlock) into a single owned value passed explicitly to every worker,
// per spec.md §9's reimplementation guidance. The joiner queue is held by
// Listeners, not by Context. Its lifetime equals the server's.
type Context struct {
	Engine *store.Engine
	Log    *logging.Logger

	// Rows and Columns are the seat-grid geometry; Total is Rows*Columns,
	// cached since booking.Status is called on every status request.
	Rows    int
	Columns int
	Total   int

	// DBLock is the global DB reader/writer lock of spec.md §5: write
	// locked for book/unbook, read locked for status and raw queries.
	DBLock sync.RWMutex

	// Timeout is the per-worker deadline T of spec.md §4.6.
	Timeout int // seconds
}

// NewContext constructs a Context for an already-open engine and seat
// geometry.
func NewContext(engine *store.Engine, log *logging.Logger, rows, columns, timeoutSeconds int) *Context {
	return &Context{
		Engine:  engine,
		Log:     log,
		Rows:    rows,
		Columns: columns,
		Total:   rows * columns,
		Timeout: timeoutSeconds,
	}
}
