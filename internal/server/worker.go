package server

import (
	"net"
	"time"
)

// serveConn reads exactly one framed request, dispatches it, writes
// exactly one framed reply, and registers the connection with joinCh so
// the joiner can close it once this worker is done.
//
// original_source/cinemad/cinemad.c spawns a request_handler thread per
// connection plus a companion thread_timer that fires SIGALRM after the
// configured timeout to abort a stuck handler, and a thread_joiner that
// pthread_joins both. A deadline on conn stands in for that SIGALRM
// companion: a Read blocked in readFrame fails the instant the deadline
// trips, serveConn returns without a reply, and the joiner then closes
// the connection.
func serveConn(ctx *Context, conn net.Conn, isAdmin bool, joinCh chan<- joinRequest) {
	done := make(chan struct{})
	joinCh <- joinRequest{conn: conn, done: done}
	defer close(done)

	if ctx.Timeout > 0 {
		deadline := time.Now().Add(time.Duration(ctx.Timeout) * time.Second)
		conn.SetDeadline(deadline)
	}

	request, err := readFrame(conn)
	if err != nil {
		return
	}

	// The deadline only bounds the blocking receive above; dispatch and the
	// reply send must not be cut short by a timer armed before lock
	// contention was known, so clear it before doing either.
	if ctx.Timeout > 0 {
		conn.SetDeadline(time.Time{})
	}

	reply := handleRequest(ctx, request, isAdmin)

	_ = writeFrame(conn, reply)
}
