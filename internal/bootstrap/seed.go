// Package bootstrap seeds a freshly created data file with the logical
// schema spec.md §6 requires and reconciles an existing file's DATA
// namespace against the configured seat grid on every startup.
//
// Grounded directly in original_source/cinemad/cinemad.c's db_create
// (the msg_init command list), db_configure, and db_clean_data — reusing
// the same textual command forms through the query package rather than
// reimplementing them with direct key construction, the way the source
// itself drives its own query language to seed itself.
package bootstrap

import (
	"fmt"

	"cinemad/internal/query"
	"cinemad/internal/store"
)

// Seed runs the one-time initialization command sequence against a
// freshly created (empty) engine, populating the NETWORK, CONFIG, and
// DATA namespaces with their starting values. Callers must only invoke
// Seed on a data file that did not exist before Open created it; a second
// call does not add duplicate keys (ADD is a no-op on an existing key),
// but its SET commands reset every seeded value, seats and ID_COUNTER
// included.
func Seed(engine *store.Engine, rows, columns int) error {
	commands := []string{
		"ADD NETWORK",
		"ADD IP FROM NETWORK",
		"SET IP FROM NETWORK AS 127.0.0.1",
		"ADD PORT FROM NETWORK",
		"SET PORT FROM NETWORK AS 55555",
		"ADD CONFIG",
		"ADD PID FROM CONFIG",
		"SET PID FROM CONFIG AS 0",
		"ADD TIMESTAMP FROM CONFIG",
		"SET TIMESTAMP FROM CONFIG AS 0",
		"ADD ROWS FROM CONFIG",
		fmt.Sprintf("SET ROWS FROM CONFIG AS %d", rows),
		"ADD COLUMNS FROM CONFIG",
		fmt.Sprintf("SET COLUMNS FROM CONFIG AS %d", columns),
		"ADD FILM FROM CONFIG",
		"ADD SHOWTIME FROM CONFIG",
		"SET SHOWTIME FROM CONFIG AS 00:00",
		"ADD ID_COUNTER FROM CONFIG",
		"SET ID_COUNTER FROM CONFIG AS 0",
		"ADD DATA",
	}
	for _, cmd := range commands {
		if reply := query.Execute(engine, cmd); reply == query.Error {
			return fmt.Errorf("bootstrap: seed command %q failed", cmd)
		}
	}

	for i := 0; i < rows*columns; i++ {
		if err := addSeat(engine, i); err != nil {
			return err
		}
	}
	return nil
}

func addSeat(engine *store.Engine, seat int) error {
	if reply := query.Execute(engine, fmt.Sprintf("ADD %d FROM DATA", seat)); reply == query.Error {
		return fmt.Errorf("bootstrap: add seat %d failed", seat)
	}
	if reply := query.Execute(engine, fmt.Sprintf("SET %d FROM DATA AS 0", seat)); reply != query.Success {
		return fmt.Errorf("bootstrap: seat %d init failed", seat)
	}
	return nil
}

// Reconcile implements db_configure: for every seat in [0, rows*columns),
// add it (with value 0) if it's missing from an existing data file — this
// happens when the configured grid grew since the file was created. If
// any seat was added, every seat is reset to free via CleanData, matching
// db_configure's "clean = 1" -> db_clean_data call.
func Reconcile(engine *store.Engine, rows, columns int) error {
	total := rows * columns
	grew := false

	for i := 0; i < total; i++ {
		reply := query.Execute(engine, fmt.Sprintf("GET %d FROM DATA", i))
		if reply != query.Failure {
			continue
		}
		grew = true
		if err := addSeat(engine, i); err != nil {
			return err
		}
	}

	if grew {
		return CleanData(engine, rows, columns)
	}
	return nil
}

// CleanData implements db_clean_data: reset every seat to free (0) and
// reset ID_COUNTER back to 0, since ids minted before a grid grow must not
// carry over.
func CleanData(engine *store.Engine, rows, columns int) error {
	total := rows * columns
	for i := 0; i < total; i++ {
		if reply := query.Execute(engine, fmt.Sprintf("SET %d FROM DATA AS 0", i)); reply != query.Success {
			return fmt.Errorf("bootstrap: clean seat %d failed", i)
		}
	}
	if reply := query.Execute(engine, "SET ID_COUNTER FROM CONFIG AS 0"); reply != query.Success {
		return fmt.Errorf("bootstrap: reset ID_COUNTER failed")
	}
	return nil
}
