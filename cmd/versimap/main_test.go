package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBuildTableFromMappingFile(t *testing.T) {
	dir := t.TempDir()
	mappingPath := filepath.Join(dir, "test.map")
	if err := os.WriteFile(mappingPath, []byte("Gen.1.1=Gen.1.1\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	CLI.Left = "KJV"
	CLI.Pivot = "Vulgate"
	CLI.Mapping = mappingPath
	CLI.LogLevel = "error"

	table, runID, _, err := buildTable()
	if err != nil {
		t.Fatalf("buildTable: %v", err)
	}
	if runID == "" {
		t.Error("runID is empty")
	}
	if table.HasErrors() {
		t.Errorf("HasErrors() = true, records: %+v", table.Diagnostics().Records())
	}
	if table.Fingerprint() == "" {
		t.Error("Fingerprint() is empty")
	}
}

func TestBuildTableRejectsUnknownVersification(t *testing.T) {
	dir := t.TempDir()
	mappingPath := filepath.Join(dir, "test.map")
	if err := os.WriteFile(mappingPath, []byte(""), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	CLI.Left = "NoSuchSystem"
	CLI.Pivot = "Vulgate"
	CLI.Mapping = mappingPath

	if _, _, _, err := buildTable(); err == nil {
		t.Error("buildTable succeeded with an unregistered left versification")
	}
}
