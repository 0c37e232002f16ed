package server

import "net"

// joinRequest pairs a finished connection with the signal channel its
// worker closes when done, mirroring original_source/cinemad/cinemad.c's
// thread_joiner: a dedicated goroutine that reaps finished per-connection
// workers so the accept loop never blocks on cleanup.
type joinRequest struct {
	conn net.Conn
	done <-chan struct{}
}

// joiner drains joinCh, waiting for each worker's done signal and then
// closing its connection. It runs for the lifetime of the server.
func joiner(joinCh <-chan joinRequest) {
	for req := range joinCh {
		<-req.done
		req.conn.Close()
	}
}
