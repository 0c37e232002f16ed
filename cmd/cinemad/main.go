// Command cinemad runs the cinema seat-reservation daemon: it opens (or
// creates and seeds) the data file, starts the TCP and optional
// Unix-domain request listeners, and serves until signaled to stop.
//
// Grounded in original_source/cinemad/cinemad.c's main() for the startup
// sequence (daemonize, open-or-create database, reconcile seat grid,
// start listeners) and in jptalukdar-waddlemap-db/cmd/server/main.go for
// the Go idiom that sequence is translated into (flag parsing, deferred
// resource teardown, signal-based graceful shutdown).
package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"cinemad/internal/bootstrap"
	"cinemad/internal/config"
	"cinemad/internal/daemon"
	"cinemad/internal/logging"
	"cinemad/internal/server"
	"cinemad/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "cinemad:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:], os.Environ())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if cfg.Daemonize {
		if err := daemon.Enter(); err != nil {
			return fmt.Errorf("entering background mode: %w", err)
		}
	}

	log, err := logging.New(cfg.Debug)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer log.Sync()

	log.Infow("cinemad starting", "addr", cfg.ListenAddr, "socket", cfg.SocketPath, "rows", cfg.Rows, "columns", cfg.Columns)

	if err := os.MkdirAll(cfg.DataDir, 0o775); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	dataPath := filepath.Join(cfg.DataDir, cfg.DataFile)
	auditPath := filepath.Join(cfg.DataDir, cfg.AuditFile)

	created := false
	if _, statErr := os.Stat(dataPath); os.IsNotExist(statErr) {
		f, createErr := os.OpenFile(dataPath, os.O_CREATE|os.O_EXCL, 0o666)
		if createErr != nil {
			return fmt.Errorf("creating data file: %w", createErr)
		}
		f.Close()
		created = true
	}

	engine, err := store.Open(dataPath, auditPath, cfg.Sync == config.SyncStrict)
	if err != nil {
		if created {
			os.Remove(dataPath)
		}
		return fmt.Errorf("opening store: %w", err)
	}
	defer func() {
		if err := engine.Close(); err != nil {
			log.Errorw("closing store", "err", err)
		}
	}()

	if created {
		if err := bootstrap.Seed(engine, cfg.Rows, cfg.Columns); err != nil {
			return fmt.Errorf("seeding store: %w", err)
		}
		log.Infow("data file created and seeded", "path", dataPath)
	} else {
		if err := bootstrap.Reconcile(engine, cfg.Rows, cfg.Columns); err != nil {
			return fmt.Errorf("reconciling seat grid: %w", err)
		}
	}

	ctx := server.NewContext(engine, log, cfg.Rows, cfg.Columns, cfg.Timeout)

	listeners, err := server.Listen(cfg.ListenAddr, cfg.SocketPath)
	if err != nil {
		return fmt.Errorf("opening listeners: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	serveDone := make(chan struct{})
	go func() {
		listeners.Serve(ctx)
		close(serveDone)
	}()

	log.Infow("cinemad ready")
	<-sigCh
	log.Infow("shutting down")

	if err := listeners.Close(); err != nil {
		log.Errorw("closing listeners", "err", err)
	}
	<-serveDone

	return nil
}
