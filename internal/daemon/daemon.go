// Package daemon implements the "enter background mode" step
// original_source/cinemad/cinemad.c's daemonize() performs with a
// double-fork and setsid. Go cannot safely fork() once the runtime has
// started extra OS threads, so this re-execs the same binary once with a
// sentinel environment variable set, detaches its stdio, and calls
// syscall.Setsid in the child — a portable substitute spec.md §4.7
// (via SPEC_FULL.md) calls for explicitly.
package daemon

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// sentinelEnv marks a process that has already been re-exec'd into the
// background, so Enter is idempotent across the restart.
const sentinelEnv = "CINEMAD_DAEMONIZED=1"

// Enter backgrounds the current process if it hasn't already been
// backgrounded. On the first call it re-execs the running binary with
// the same arguments and the sentinel set, detaches it from the
// controlling terminal, and exits the parent; Enter never returns in the
// parent. On the re-exec'd child it calls Setsid and returns nil.
func Enter() error {
	if os.Getenv("CINEMAD_DAEMONIZED") == "1" {
		_, err := syscall.Setsid()
		if err != nil && err != syscall.EPERM {
			return fmt.Errorf("daemon: setsid: %w", err)
		}
		return nil
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("daemon: resolve executable: %w", err)
	}

	devnull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("daemon: open %s: %w", os.DevNull, err)
	}
	defer devnull.Close()

	cmd := exec.Command(exe, os.Args[1:]...)
	cmd.Env = append(os.Environ(), sentinelEnv)
	cmd.Stdin = devnull
	cmd.Stdout = devnull
	cmd.Stderr = devnull
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("daemon: re-exec: %w", err)
	}

	os.Exit(0)
	return nil // unreachable
}
