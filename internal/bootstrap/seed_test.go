package bootstrap

import (
	"os"
	"path/filepath"
	"testing"

	"cinemad/internal/query"
	"cinemad/internal/store"
)

func newTestEngine(t *testing.T) *store.Engine {
	t.Helper()
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "data.dat")
	auditPath := filepath.Join(dir, "data.audit")

	f, err := os.OpenFile(dataPath, os.O_CREATE|os.O_EXCL, 0o666)
	if err != nil {
		t.Fatalf("creating data file: %v", err)
	}
	f.Close()

	e, err := store.Open(dataPath, auditPath, true)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func TestSeedPopulatesSchema(t *testing.T) {
	e := newTestEngine(t)
	if err := Seed(e, 2, 3); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	cases := []struct {
		query string
		want  string
	}{
		{"GET IP FROM NETWORK", "127.0.0.1"},
		{"GET PORT FROM NETWORK", "55555"},
		{"GET ROWS FROM CONFIG", "2"},
		{"GET COLUMNS FROM CONFIG", "3"},
		{"GET ID_COUNTER FROM CONFIG", "0"},
		{"GET SHOWTIME FROM CONFIG", "00:00"},
	}
	for _, c := range cases {
		if reply := query.Execute(e, c.query); reply.String() != c.want {
			t.Errorf("%s = %q, want %q", c.query, reply.String(), c.want)
		}
	}

	for i := 0; i < 6; i++ {
		if reply := query.Execute(e, "GET "+itoa(i)+" FROM DATA"); reply.String() != "0" {
			t.Errorf("seat %d = %q, want %q", i, reply.String(), "0")
		}
	}
}

func TestReconcileAddsMissingSeatsWhenGridGrows(t *testing.T) {
	e := newTestEngine(t)
	if err := Seed(e, 1, 2); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	if err := Reconcile(e, 2, 2); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	for i := 0; i < 4; i++ {
		if reply := query.Execute(e, "GET "+itoa(i)+" FROM DATA"); reply.String() != "0" {
			t.Errorf("seat %d after reconcile = %q, want %q", i, reply.String(), "0")
		}
	}
}

func TestReconcileIsNoOpWhenGridUnchanged(t *testing.T) {
	e := newTestEngine(t)
	if err := Seed(e, 1, 2); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if reply := query.Execute(e, "SET 0 FROM DATA AS 7"); reply != query.Success {
		t.Fatalf("setting seat 0: %v", reply)
	}

	if err := Reconcile(e, 1, 2); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	if reply := query.Execute(e, "GET 0 FROM DATA"); reply.String() != "7" {
		t.Errorf("seat 0 after no-op reconcile = %q, want %q (reconcile must not reset an unchanged grid)", reply.String(), "7")
	}
}

func TestCleanDataResetsAllSeats(t *testing.T) {
	e := newTestEngine(t)
	if err := Seed(e, 1, 2); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if reply := query.Execute(e, "SET 0 FROM DATA AS 9"); reply != query.Success {
		t.Fatalf("setting seat 0: %v", reply)
	}
	if reply := query.Execute(e, "SET ID_COUNTER FROM CONFIG AS 5"); reply != query.Success {
		t.Fatalf("setting ID_COUNTER: %v", reply)
	}

	if err := CleanData(e, 1, 2); err != nil {
		t.Fatalf("CleanData: %v", err)
	}
	if reply := query.Execute(e, "GET 0 FROM DATA"); reply.String() != "0" {
		t.Errorf("seat 0 after CleanData = %q, want %q", reply.String(), "0")
	}
	if reply := query.Execute(e, "GET ID_COUNTER FROM CONFIG"); reply.String() != "0" {
		t.Errorf("ID_COUNTER after CleanData = %q, want %q", reply.String(), "0")
	}
}

func itoa(i int) string {
	return string(rune('0' + i))
}
