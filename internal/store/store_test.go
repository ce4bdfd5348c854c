package store

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	// Verify file was created
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_OpensExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	// Create database
	s1, err := Open(path)
	if err != nil {
		t.Fatalf("first Open() failed: %v", err)
	}
	s1.Close()

	// Reopen database
	s2, err := Open(path)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer s2.Close()

	// Verify we can query it
	var count int
	err = s2.db.QueryRow("SELECT COUNT(*) FROM blobs").Scan(&count)
	if err != nil {
		t.Errorf("query failed: %v", err)
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	// Open multiple times
	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	// Final open should work
	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	// Verify schema is intact
	tables := []string{"blobs", "blob_backups"}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after idempotent opens: %v", table, err)
		}
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	// Try to open in non-existent directory
	path := "/nonexistent/dir/test.db"

	_, err := Open(path)
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	err := s.Close()
	if err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestClose_MultipleCalls(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	// First close should succeed
	if err := s.Close(); err != nil {
		t.Errorf("first Close() failed: %v", err)
	}

	// Second close should not panic (though may error)
	// We just verify it doesn't panic
	_ = s.Close()
}

func TestDB_ReturnsUnderlyingConnection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	db := s.DB()
	if db == nil {
		t.Error("DB() returned nil")
	}

	// Verify it's usable
	if err := db.Ping(); err != nil {
		t.Errorf("DB() connection not usable: %v", err)
	}
}

// Pragma tests

func TestPragma_JournalMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if err := s.verifyPragma("journal_mode", "wal"); err != nil {
		t.Error(err)
	}
}

func TestPragma_Synchronous(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	// NORMAL = 1
	if err := s.verifyPragma("synchronous", "1"); err != nil {
		t.Error(err)
	}
}

func TestPragma_BusyTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if err := s.verifyPragma("busy_timeout", "5000"); err != nil {
		t.Error(err)
	}
}

func TestPragma_ForeignKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	// ON = 1
	if err := s.verifyPragma("foreign_keys", "1"); err != nil {
		t.Error(err)
	}
}

// Schema tests

func TestSchema_UserVersion(t *testing.T) {
	s := createTestStore(t)

	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("query user_version: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("user_version = %d, want %d", version, currentSchemaVersion)
	}
}

func TestSchema_MigratesVersionZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	// Simulate a database written before backups existed
	if _, err := s.db.Exec("DROP TABLE blob_backups"); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if _, err := s.db.Exec("PRAGMA user_version = 0"); err != nil {
		t.Fatalf("reset version: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()

	var name string
	err = s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='blob_backups'").Scan(&name)
	if err != nil {
		t.Errorf("blob_backups not recreated: %v", err)
	}
}

// Blob tests

func TestLoad_MissingKey(t *testing.T) {
	s := createTestStore(t)

	data, ok, err := s.Load(context.Background(), "session")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if ok || data != nil {
		t.Errorf("Load() = %q, %v; want nil, false", data, ok)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, "session", []byte(`{"v":1}`)); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	data, ok, err := s.Load(ctx, "session")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if !ok {
		t.Fatal("Load() reported missing key after Save")
	}
	if !bytes.Equal(data, []byte(`{"v":1}`)) {
		t.Errorf("Load() = %q", data)
	}
}

func TestSave_OverwritesAndKeepsBackup(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if _, ok, _ := s.LoadBackup(ctx, "session"); ok {
		t.Fatal("backup present before any save")
	}

	if err := s.Save(ctx, "session", []byte("first")); err != nil {
		t.Fatalf("first Save() failed: %v", err)
	}
	if _, ok, _ := s.LoadBackup(ctx, "session"); ok {
		t.Error("first save should not create a backup")
	}

	if err := s.Save(ctx, "session", []byte("second")); err != nil {
		t.Fatalf("second Save() failed: %v", err)
	}

	data, _, _ := s.Load(ctx, "session")
	if string(data) != "second" {
		t.Errorf("Load() = %q, want second", data)
	}
	backup, ok, err := s.LoadBackup(ctx, "session")
	if err != nil {
		t.Fatalf("LoadBackup() failed: %v", err)
	}
	if !ok || string(backup) != "first" {
		t.Errorf("LoadBackup() = %q, %v; want first, true", backup, ok)
	}
}

func TestSave_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	s1, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if err := s1.Save(ctx, "session", []byte("kept")); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	s1.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s2.Close()

	data, ok, err := s2.Load(ctx, "session")
	if err != nil || !ok || string(data) != "kept" {
		t.Errorf("Load() after reopen = %q, %v, %v", data, ok, err)
	}
}

func TestSave_NilData(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, "empty", nil); err != nil {
		t.Fatalf("Save(nil) failed: %v", err)
	}
	data, ok, err := s.Load(ctx, "empty")
	if err != nil || !ok || len(data) != 0 {
		t.Errorf("Load() = %q, %v, %v; want empty, true, nil", data, ok, err)
	}
}

func TestSave_KeysAreIndependent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_ = s.Save(ctx, "a", []byte("1"))
	_ = s.Save(ctx, "b", []byte("2"))

	a, _, _ := s.Load(ctx, "a")
	b, _, _ := s.Load(ctx, "b")
	if string(a) != "1" || string(b) != "2" {
		t.Errorf("a = %q, b = %q", a, b)
	}
}

func TestDelete(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_ = s.Save(ctx, "session", []byte("1"))
	_ = s.Save(ctx, "session", []byte("2"))

	if err := s.Delete(ctx, "session"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, ok, _ := s.Load(ctx, "session"); ok {
		t.Error("value survived Delete")
	}
	if _, ok, _ := s.LoadBackup(ctx, "session"); ok {
		t.Error("backup survived Delete")
	}

	if err := s.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete() of missing key failed: %v", err)
	}
}

func TestLoad_CancelledContext(t *testing.T) {
	s := createTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := s.Load(ctx, "session"); err == nil {
		t.Error("expected error for cancelled context")
	}
}
