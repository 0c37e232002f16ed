package server

import (
	"net"
	"os"

	"go.uber.org/multierr"
)

// Listeners groups the two sockets spec.md §4.6 requires: a TCP socket
// for ordinary clients, and a Unix-domain socket reserved for the
// SPEC_FULL.md §6.1 administrative commands. Both speak the same
// length-prefixed framing and dispatch through the same Context; only
// the admin-capability bit differs between them.
type Listeners struct {
	tcp  net.Listener
	unix net.Listener

	joinCh chan joinRequest
}

// Listen opens the TCP listener on tcpAddr (e.g. ":5555") and, if
// unixPath is non-empty, a Unix-domain listener at that path, removing
// any stale socket file left behind by an unclean shutdown first.
func Listen(tcpAddr, unixPath string) (*Listeners, error) {
	tcpLn, err := net.Listen("tcp", tcpAddr)
	if err != nil {
		return nil, err
	}

	ls := &Listeners{
		tcp:    tcpLn,
		joinCh: make(chan joinRequest, 64),
	}

	if unixPath != "" {
		_ = os.Remove(unixPath)
		unixLn, err := net.Listen("unix", unixPath)
		if err != nil {
			tcpLn.Close()
			return nil, err
		}
		ls.unix = unixLn
	}

	return ls, nil
}

// Serve runs the accept loops for both listeners and the joiner, and
// blocks until both listeners are closed (by Close, typically from a
// signal handler in cmd/cinemad). This is the Go translation of
// original_source/cinemad/cinemad.c's connection_mngr accept loop, split
// across two sockets and fed by the same per-connection worker.
func (ls *Listeners) Serve(ctx *Context) {
	go joiner(ls.joinCh)

	tcpDone := make(chan struct{})
	go func() {
		acceptLoop(ctx, ls.tcp, false, ls.joinCh)
		close(tcpDone)
	}()

	if ls.unix != nil {
		acceptLoop(ctx, ls.unix, true, ls.joinCh)
	}
	<-tcpDone
}

func acceptLoop(ctx *Context, ln net.Listener, isAdmin bool, joinCh chan<- joinRequest) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		go serveConn(ctx, conn, isAdmin, joinCh)
	}
}

// Close shuts down both listeners, causing Serve to return.
func (ls *Listeners) Close() error {
	var err error
	err = multierr.Append(err, ls.tcp.Close())
	if ls.unix != nil {
		err = multierr.Append(err, ls.unix.Close())
	}
	close(ls.joinCh)
	return err
}
