package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "opts.yaml")
	if err := os.WriteFile(path, []byte("debug: true\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	opts, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !opts.Debug {
		t.Errorf("expected debug: true to be read")
	}
	if opts.Dialect != "enhanced" {
		t.Errorf("got dialect %q, want default enhanced", opts.Dialect)
	}
	if opts.TimeoutMs != 30_000 {
		t.Errorf("got timeout %d, want default 30000", opts.TimeoutMs)
	}
}

func TestLoadRejectsUnknownDialect(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "opts.yaml")
	os.WriteFile(path, []byte("dialect: xml\n"), 0o644)

	if _, err := Load(path); err == nil {
		t.Errorf("expected an error for an unknown dialect")
	}
}

func TestLoadRejectsNegativeTimeout(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "opts.yaml")
	os.WriteFile(path, []byte("timeout_ms: -1\n"), 0o644)

	if _, err := Load(path); err == nil {
		t.Errorf("expected an error for a negative timeout")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("expected an error for a missing file")
	}
}
