// Package config loads cinemad's runtime configuration: defaults,
// overlaid by an optional HuJSON file, overlaid by pflag command-line
// flags. Grounded in calvinalkan-agent-task/config.go's
// defaults-then-file-then-CLI layering and its use of
// github.com/tailscale/hujson to parse a relaxed (comments, trailing
// commas allowed) JSON config file.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailscale/hujson"
	flag "github.com/spf13/pflag"
)

// SyncMode mirrors the teacher's DBSchemaConfig.SyncMode: "strict" fsyncs
// the data file after every value write, "relaxed" skips that fsync and
// leaves flushing the data file to the OS. Record appends and audit log
// entries are fsynced in both modes.
type SyncMode string

const (
	SyncStrict  SyncMode = "strict"
	SyncRelaxed SyncMode = "relaxed"
)

// Config is cinemad's full runtime configuration. Fields with a
// `json:"..."` tag are the ones an operator may set in the config file;
// all are also overridable from the command line.
type Config struct {
	ListenAddr string   `json:"listen_addr"`
	SocketPath string   `json:"socket_path"`
	DataDir    string   `json:"data_dir"`
	DataFile   string   `json:"data_file"`
	AuditFile  string   `json:"audit_file"`
	Rows       int      `json:"rows"`
	Columns    int      `json:"columns"`
	Timeout    int      `json:"timeout_seconds"`
	Sync       SyncMode `json:"sync"`
	Debug      bool     `json:"debug"`
	Daemonize  bool     `json:"daemonize"`
}

// Default returns cinemad's built-in defaults, matching the seeded
// record values original_source/cinemad/cinemad.c's db_create writes
// (PORT 55555, ROWS 1, COLUMNS 1) plus this port's ambient additions.
func Default() Config {
	return Config{
		ListenAddr: ":55555",
		SocketPath: "",
		DataDir:    ".",
		DataFile:   "data.dat",
		AuditFile:  "data.audit",
		Rows:       1,
		Columns:    1,
		Timeout:    5,
		Sync:       SyncStrict,
	}
}

// Load builds the final Config: defaults, overlaid by the file named by
// --config (if any), overlaid by any flags the caller actually passed in
// args. Flags are GNU-style: long names take two dashes (--rows). env is accepted for parity with the teacher's testable
// LoadConfig signature but is currently unused — cinemad has no
// environment-variable overrides.
func Load(args []string, _ []string) (*Config, error) {
	cfg := Default()

	fs := flag.NewFlagSet("cinemad", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a HuJSON config file")
	addr := fs.String("addr", cfg.ListenAddr, "TCP listen address")
	socket := fs.String("socket", cfg.SocketPath, "Unix-domain socket path (admin interface); empty disables it")
	dataDir := fs.String("data-dir", cfg.DataDir, "directory holding the data and audit files")
	dataFile := fs.String("data-file", cfg.DataFile, "data file name")
	auditFile := fs.String("audit-file", cfg.AuditFile, "audit log file name")
	rows := fs.Int("rows", cfg.Rows, "seat grid rows")
	columns := fs.Int("columns", cfg.Columns, "seat grid columns")
	timeout := fs.Int("timeout", cfg.Timeout, "per-request worker timeout, in seconds")
	sync := fs.String("sync", string(cfg.Sync), `fsync mode: "strict" or "relaxed"`)
	debug := fs.Bool("debug", false, "enable human-readable development logging")
	daemon := fs.Bool("daemonize", false, "background the process after startup")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *configPath != "" {
		fileCfg, err := loadFile(*configPath)
		if err != nil {
			return nil, err
		}
		cfg = merge(cfg, fileCfg)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.ListenAddr = *addr
		case "socket":
			cfg.SocketPath = *socket
		case "data-dir":
			cfg.DataDir = *dataDir
		case "data-file":
			cfg.DataFile = *dataFile
		case "audit-file":
			cfg.AuditFile = *auditFile
		case "rows":
			cfg.Rows = *rows
		case "columns":
			cfg.Columns = *columns
		case "timeout":
			cfg.Timeout = *timeout
		case "sync":
			cfg.Sync = SyncMode(*sync)
		case "debug":
			cfg.Debug = *debug
		case "daemonize":
			cfg.Daemonize = *daemon
		}
	})

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: invalid HuJSON in %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: invalid JSON in %s: %w", path, err)
	}
	return cfg, nil
}

// merge overlays the non-zero fields of overlay onto base.
func merge(base, overlay Config) Config {
	if overlay.ListenAddr != "" {
		base.ListenAddr = overlay.ListenAddr
	}
	if overlay.SocketPath != "" {
		base.SocketPath = overlay.SocketPath
	}
	if overlay.DataDir != "" {
		base.DataDir = overlay.DataDir
	}
	if overlay.DataFile != "" {
		base.DataFile = overlay.DataFile
	}
	if overlay.AuditFile != "" {
		base.AuditFile = overlay.AuditFile
	}
	if overlay.Rows != 0 {
		base.Rows = overlay.Rows
	}
	if overlay.Columns != 0 {
		base.Columns = overlay.Columns
	}
	if overlay.Timeout != 0 {
		base.Timeout = overlay.Timeout
	}
	if overlay.Sync != "" {
		base.Sync = overlay.Sync
	}
	if overlay.Debug {
		base.Debug = true
	}
	if overlay.Daemonize {
		base.Daemonize = true
	}
	return base
}

func validate(cfg Config) error {
	if cfg.Rows <= 0 || cfg.Columns <= 0 {
		return fmt.Errorf("config: rows and columns must be positive, got %d x %d", cfg.Rows, cfg.Columns)
	}
	if cfg.Sync != SyncStrict && cfg.Sync != SyncRelaxed {
		return fmt.Errorf("config: sync must be %q or %q, got %q", SyncStrict, SyncRelaxed, cfg.Sync)
	}
	if cfg.DataFile == "" {
		return fmt.Errorf("config: data-file must not be empty")
	}
	return nil
}
