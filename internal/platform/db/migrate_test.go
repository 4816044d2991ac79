package db

import (
	"os"
	"path/filepath"
	"testing"
)

func writeMigration(t *testing.T, dir, name, sql string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(sql), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadMigrations_SortsByVersion(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "010_reminders.sql", "CREATE TABLE r (id int)")
	writeMigration(t, dir, "001_core.sql", "CREATE TABLE t (id int)")
	writeMigration(t, dir, "002_offerings.sql", "CREATE TABLE o (id int)")

	m := NewMigrator(nil, dir)
	migrations, err := m.LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations: %v", err)
	}
	if len(migrations) != 3 {
		t.Fatalf("got %d migrations, want 3", len(migrations))
	}
	want := []int{1, 2, 10}
	for i, mig := range migrations {
		if mig.Version != want[i] {
			t.Errorf("position %d: version %d, want %d", i, mig.Version, want[i])
		}
	}
	if migrations[0].SQL != "CREATE TABLE t (id int)" {
		t.Errorf("SQL not loaded: %q", migrations[0].SQL)
	}
}

func TestLoadMigrations_SkipsNonVersionedFiles(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "001_core.sql", "CREATE TABLE t (id int)")
	writeMigration(t, dir, "README.md", "notes")
	writeMigration(t, dir, "seed.sql", "INSERT ...")
	writeMigration(t, dir, "abc_bad.sql", "nope")

	m := NewMigrator(nil, dir)
	migrations, err := m.LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations: %v", err)
	}
	if len(migrations) != 1 || migrations[0].Name != "001_core.sql" {
		t.Fatalf("got %+v, want only 001_core.sql", migrations)
	}
}

func TestLoadMigrations_MissingDir(t *testing.T) {
	m := NewMigrator(nil, filepath.Join(t.TempDir(), "nope"))
	if _, err := m.LoadMigrations(); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
