package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleCSV = "Budget detail\n" +
	"Grant name - Field Work\n" +
	"Grant code - FW-2\n" +
	"BG Line,Position,Salary\n" +
	"1,Coordinator,\"$45,000.00\"\n" +
	"1,Coordinator,\"$45,000.00\"\n" +
	"Total,,\"$45,000.00\"\n"

func TestRunImport_DryRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "field.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	err := runImport(context.Background(), &out, importOptions{file: path, actor: "cli", dryRun: true})
	if err != nil {
		t.Fatalf("runImport() error = %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"dry run, nothing written",
		"processed grants: 1, inserted items: 1",
		"Sheet 'field': Duplicate item (BG Line: 1) skipped",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestRunImport_MissingFile(t *testing.T) {
	err := runImport(context.Background(), &bytes.Buffer{}, importOptions{file: "does-not-exist.xlsx", dryRun: true})
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestRootCmd_RequiresFile(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"import", "--dry-run"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), "file") {
		t.Errorf("Execute() error = %v, want required flag error", err)
	}
}

func TestLoadEnv_OverridesEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://from-shell/db")

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("DATABASE_URL=postgres://from-dotenv/db\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := loadEnv(path); err != nil {
		t.Fatalf("loadEnv() error = %v", err)
	}
	if got := os.Getenv("DATABASE_URL"); got != "postgres://from-dotenv/db" {
		t.Errorf("DATABASE_URL = %q, want the .env value", got)
	}
}
