// Command cinemactl is a minimal one-shot client for cinemad: it opens
// one connection, sends one framed request, prints one framed reply, and
// exits. The client CLI is explicitly out of scope for deep treatment
// per spec.md, so this stays deliberately thin — just enough to drive
// the protocol by hand or from a script.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
)

func main() {
	addr := flag.String("addr", "localhost:55555", `server address ("host:port" or, with -unix, a socket path)`)
	unix := flag.Bool("unix", false, "dial a Unix-domain socket instead of TCP")
	flag.Parse()

	request := strings.Join(flag.Args(), " ")
	if request == "" {
		fmt.Fprintln(os.Stderr, "usage: cinemactl [-addr addr] [-unix] REQUEST...")
		os.Exit(2)
	}

	reply, err := send(*addr, *unix, request)
	if err != nil {
		fmt.Fprintln(os.Stderr, "cinemactl:", err)
		os.Exit(1)
	}
	fmt.Println(reply)
}

func send(addr string, unix bool, request string) (string, error) {
	network := "tcp"
	if unix {
		network = "unix"
	}

	conn, err := net.Dial(network, addr)
	if err != nil {
		return "", fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	if err := writeFrame(conn, request); err != nil {
		return "", fmt.Errorf("send: %w", err)
	}
	reply, err := readFrame(conn)
	if err != nil {
		return "", fmt.Errorf("receive: %w", err)
	}
	return reply, nil
}

func writeFrame(conn net.Conn, msg string) error {
	lenBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(lenBuf, uint32(len(msg)))
	if _, err := conn.Write(lenBuf); err != nil {
		return err
	}
	_, err := conn.Write([]byte(msg))
	return err
}

func readFrame(conn net.Conn) (string, error) {
	lenBuf := make([]byte, 4)
	if _, err := io.ReadFull(conn, lenBuf); err != nil {
		return "", err
	}
	n := binary.BigEndian.Uint32(lenBuf)
	buf := make([]byte, n)
	if _, err := io.ReadFull(conn, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
