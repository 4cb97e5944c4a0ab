package storage

import (
	"path/filepath"
	"testing"
)

func TestDB_SetGetRemoveAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "storage.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if err := db.Set("token", "abc"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if err := db.Set("token", "def"); err != nil {
		t.Fatalf("Set (overwrite) returned error: %v", err)
	}
	if err := db.Set("user", `{"name":"Ofek"}`); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	db, err = Open(path)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	got, ok, err := db.Get("token")
	if err != nil || !ok || got != "def" {
		t.Fatalf("Get(token) = %q, %v, %v; want def, true, nil", got, ok, err)
	}

	if err := db.Remove("token"); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	if err := db.Remove("token"); err != nil {
		t.Fatalf("Remove of missing key returned error: %v", err)
	}
	if _, ok, _ := db.Get("token"); ok {
		t.Fatalf("Get(token) after Remove reported present")
	}
	if got, ok, _ := db.Get("user"); !ok || got != `{"name":"Ofek"}` {
		t.Fatalf("Get(user) = %q, %v; want stored payload", got, ok)
	}
}

func TestDB_MemoryPath(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, ok, err := db.Get("missing"); ok || err != nil {
		t.Fatalf("Get(missing) = %v, %v; want false, nil", ok, err)
	}
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	_ = m.Set("a", "1")
	if v, ok, _ := m.Get("a"); !ok || v != "1" {
		t.Fatalf("Get(a) = %q, %v; want 1, true", v, ok)
	}
	_ = m.Remove("a")
	if m.Keys() != 0 {
		t.Fatalf("Keys() = %d, want 0", m.Keys())
	}
}
