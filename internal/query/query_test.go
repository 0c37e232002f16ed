package query

import (
	"os"
	"path/filepath"
	"testing"

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

func TestSetThenGet(t *testing.T) {
	e := newTestEngine(t)
	if reply := Execute(e, "SET k1 AS v1"); reply != Success {
		t.Fatalf("SET reply = %v, want Success", reply)
	}
	if reply := Execute(e, "GET k1"); reply.String() != "v1" {
		t.Errorf("GET reply = %q, want %q", reply.String(), "v1")
	}
}

func TestGetMissingKeyReturnsFailure(t *testing.T) {
	e := newTestEngine(t)
	if reply := Execute(e, "GET missing"); reply != Failure {
		t.Errorf("GET missing reply = %v, want Failure", reply)
	}
}

func TestAddThenGetReturnsEmptyValue(t *testing.T) {
	e := newTestEngine(t)
	if reply := Execute(e, "ADD k1"); reply != Success {
		t.Fatalf("ADD reply = %v, want Success", reply)
	}
	if reply := Execute(e, "GET k1"); reply.String() != "" {
		t.Errorf("GET after ADD = %q, want empty string", reply.String())
	}
}

func TestStructuredFieldFromTable(t *testing.T) {
	e := newTestEngine(t)
	if reply := Execute(e, "ADD FIELD FROM TABLE"); reply != Success {
		t.Fatalf("ADD FIELD FROM TABLE reply = %v, want Success", reply)
	}
	if reply := Execute(e, "SET FIELD FROM TABLE AS value1"); reply != Success {
		t.Fatalf("SET reply = %v, want Success", reply)
	}
	if reply := Execute(e, "GET FIELD FROM TABLE"); reply.String() != "value1" {
		t.Errorf("GET reply = %q, want %q", reply.String(), "value1")
	}
}

func TestUnknownOpReturnsError(t *testing.T) {
	e := newTestEngine(t)
	if reply := Execute(e, "FROBNICATE k1"); reply != Error {
		t.Errorf("unknown op reply = %v, want Error", reply)
	}
}

func TestEmptyRequestReturnsError(t *testing.T) {
	e := newTestEngine(t)
	if reply := Execute(e, ""); reply != Error {
		t.Errorf("empty request reply = %v, want Error", reply)
	}
}

func TestSetWithMultiTokenValueReturnsError(t *testing.T) {
	e := newTestEngine(t)
	if reply := Execute(e, "SET k1 AS two words"); reply != Error {
		t.Errorf("SET with multi-token value reply = %v, want Error", reply)
	}
}

func TestSetWithoutASReturnsError(t *testing.T) {
	e := newTestEngine(t)
	if reply := Execute(e, "SET k1 v1"); reply != Error {
		t.Errorf("SET without AS reply = %v, want Error", reply)
	}
}
