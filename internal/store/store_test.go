package store

import (
	"context"
	"database/sql"
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

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_OpensExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s1, err := Open(path)
	if err != nil {
		t.Fatalf("first Open() failed: %v", err)
	}
	s1.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer s2.Close()

	var count int
	if err := s2.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&count); err != nil {
		t.Errorf("query failed: %v", err)
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	var name string
	err = s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='runs'").Scan(&name)
	if err != nil {
		t.Errorf("table runs not found after idempotent opens: %v", err)
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/test.db")
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestDB_ReturnsUnderlyingConnection(t *testing.T) {
	s := createTestStore(t)

	db := s.DB()
	if db == nil {
		t.Fatal("DB() returned nil")
	}
	if err := db.Ping(); err != nil {
		t.Errorf("DB() connection not usable: %v", err)
	}
}

func TestPragmas(t *testing.T) {
	s := createTestStore(t)

	tests := []struct {
		name     string
		expected string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"},
		{"busy_timeout", "5000"},
		{"foreign_keys", "1"},
		{"user_version", "2"},
	}
	for _, tt := range tests {
		if err := s.verifyPragma(tt.name, tt.expected); err != nil {
			t.Error(err)
		}
	}
}

func TestSchema_RunsTable(t *testing.T) {
	s := createTestStore(t)

	columns := getTableColumns(t, s.db, "runs")
	expected := []string{
		"seq", "id", "program_id", "code", "input_format", "output_format",
		"tape_size", "cell_bits", "bounds", "max_steps", "status",
		"error_code", "error_message", "steps", "pointer", "tape", "output",
		"output_digest", "engine_version", "ir_version", "created_at", "origin",
	}
	for _, col := range expected {
		if !contains(columns, col) {
			t.Errorf("runs table missing column %q", col)
		}
	}
}

func TestSchema_RunsIndexes(t *testing.T) {
	s := createTestStore(t)

	indexes := getTableIndexes(t, s.db, "runs")
	if !contains(indexes, "idx_runs_program") {
		t.Errorf("runs table missing index idx_runs_program, have %v", indexes)
	}
}

func TestConstraint_StatusCheck(t *testing.T) {
	s := createTestStore(t)

	_, err := s.db.Exec(`
		INSERT INTO runs (id, program_id, code, input_format, output_format, tape_size, cell_bits,
			bounds, status, steps, pointer, tape, output, output_digest, engine_version, ir_version, created_at)
		VALUES ('r1', 'p', '+', 'ascii', 'ascii', 10, 8, 'reject', 'running', 1, 0, '[1]', '[]', 'd', '0.1.0', '1', 'now')
	`)
	if err == nil {
		t.Error("expected CHECK constraint failure for status 'running'")
	}
}

func TestConstraint_OriginCheck(t *testing.T) {
	s := createTestStore(t)

	_, err := s.db.Exec(`
		INSERT INTO runs (id, origin, program_id, code, input_format, output_format, tape_size, cell_bits,
			bounds, status, steps, pointer, tape, output, output_digest, engine_version, ir_version, created_at)
		VALUES ('r1', 'daemon', 'p', '+', 'ascii', 'ascii', 10, 8, 'reject', 'halted', 1, 0, '[1]', '[]', 'd', '0.1.0', '1', 'now')
	`)
	if err == nil {
		t.Error("expected CHECK constraint failure for origin 'daemon'")
	}
}

func TestMigrations_FromV1(t *testing.T) {
	path := filepath.Join(t.TempDir(), "v1.db")

	// Build a version 1 database by hand.
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	if err := migrateToV1(db); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`
		INSERT INTO runs (id, program_id, code, input_format, output_format, tape_size, cell_bits,
			bounds, status, steps, pointer, tape, output, output_digest, engine_version, ir_version, created_at)
		VALUES ('old', 'p', '+', 'ascii', 'ascii', 10, 8, 'reject', 'halted', 1, 0, '[1]', '[]', 'd', '0.1.0', '1', '2026-01-02T00:00:00.000000000Z')
	`); err != nil {
		t.Fatalf("insert v1 row: %v", err)
	}
	if _, err := db.Exec("PRAGMA user_version = 1"); err != nil {
		t.Fatal(err)
	}
	db.Close()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed on v1 database: %v", err)
	}
	defer s.Close()

	if err := s.verifyPragma("user_version", "2"); err != nil {
		t.Error(err)
	}
	run, err := s.ReadRun(context.Background(), "old")
	if err != nil {
		t.Fatalf("ReadRun() failed: %v", err)
	}
	if run.Origin != OriginRun {
		t.Errorf("Origin = %q, want %q", run.Origin, OriginRun)
	}
}

func TestMigrations_RejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "future.db")

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatal(err)
	}
	db.Close()

	if s, err := Open(path); err == nil {
		s.Close()
		t.Fatal("Open() succeeded on a database from a newer version")
	}
}

func getTableColumns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		t.Fatalf("failed to get table info for %q: %v", table, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			t.Fatalf("failed to scan column info: %v", err)
		}
		columns = append(columns, name)
	}
	return columns
}

func getTableIndexes(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='index' AND tbl_name=?", table)
	if err != nil {
		t.Fatalf("failed to get indexes for %q: %v", table, err)
	}
	defer rows.Close()

	var indexes []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("failed to scan index name: %v", err)
		}
		indexes = append(indexes, name)
	}
	return indexes
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
