package main

import (
	"bytes"
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/subcommands"

	"kunafa-ledger/internal/app"
	"kunafa-ledger/internal/config"
)

func newEnv(t *testing.T) (*env, *bytes.Buffer) {
	t.Helper()
	cfg := config.Default()
	cfg.StorageBackend = config.BackendMemory
	rt, err := app.Open(context.Background(), cfg, log.New(&bytes.Buffer{}, "", 0))
	if err != nil {
		t.Fatalf("open runtime: %v", err)
	}
	var out bytes.Buffer
	return &env{rt: rt, out: &out}, &out
}

func run(t *testing.T, e *env, cmd subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	f := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.SetFlags(f)
	if err := f.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return cmd.Execute(context.Background(), f, e)
}

func TestAddListDelete(t *testing.T) {
	e, out := newEnv(t)
	if status := run(t, e, &addCmd{}, "-date", "2025-03-01", "-amount", "12,5", "-type", "kunafa", "-note", "souk"); status != subcommands.ExitSuccess {
		t.Fatalf("add failed: %v", status)
	}
	id := strings.TrimSpace(out.String())
	if id == "" {
		t.Fatalf("expected the new id on stdout")
	}

	out.Reset()
	if status := run(t, e, &listCmd{}); status != subcommands.ExitSuccess {
		t.Fatalf("list failed: %v", status)
	}
	listing := out.String()
	for _, want := range []string{"Tous les mois", "sam. 1 mars 2025", "Kunafa", "12.50", "souk", "Total"} {
		if !strings.Contains(listing, want) {
			t.Fatalf("missing %q in listing:\n%s", want, listing)
		}
	}

	out.Reset()
	if status := run(t, e, &editCmd{}, "-amount", "13", "-note", "", id); status != subcommands.ExitSuccess {
		t.Fatalf("edit failed: %v", status)
	}
	if got := strings.TrimSpace(out.String()); got != id+" 2025-03-01 13.00" {
		t.Fatalf("unexpected edit output %q", got)
	}
	records := e.rt.Ledger.GetAll(context.Background())
	if len(records) != 1 || records[0].Note != "" || records[0].Type != "kunafa" {
		t.Fatalf("unexpected records after edit %+v", records)
	}
	if status := run(t, e, &editCmd{}, "-amount", "1", "missing"); status != subcommands.ExitFailure {
		t.Fatalf("editing an unknown id should fail, got %v", status)
	}

	if status := run(t, e, &deleteCmd{}, id); status != subcommands.ExitSuccess {
		t.Fatalf("delete failed: %v", status)
	}
	if status := run(t, e, &deleteCmd{}, id); status != subcommands.ExitFailure {
		t.Fatalf("deleting twice should fail, got %v", status)
	}
}

func TestListPages(t *testing.T) {
	e, out := newEnv(t)
	e.rt.Config.PageSize = 2
	for _, day := range []string{"2025-03-01", "2025-03-02", "2025-03-03"} {
		run(t, e, &addCmd{}, "-date", day, "-amount", "1")
	}

	out.Reset()
	if status := run(t, e, &listCmd{}, "-pages", "1"); status != subcommands.ExitSuccess {
		t.Fatalf("list failed: %v", status)
	}
	listing := out.String()
	if strings.Contains(listing, "1 mars 2025") || !strings.Contains(listing, "3 mars 2025") {
		t.Fatalf("expected only the two most recent sales:\n%s", listing)
	}
	if !strings.Contains(listing, "3.00") || !strings.Contains(listing, "1 more, use -pages 2") {
		t.Fatalf("expected full total and a more hint:\n%s", listing)
	}

	out.Reset()
	run(t, e, &listCmd{}, "-pages", "2")
	if listing := out.String(); !strings.Contains(listing, "1 mars 2025") || strings.Contains(listing, "more, use") {
		t.Fatalf("expected every sale on two pages:\n%s", listing)
	}
}

func TestAddRejectsBadInput(t *testing.T) {
	e, _ := newEnv(t)
	for _, args := range [][]string{
		{"-amount", "-2"},
		{"-amount", "3", "-date", "30/02/2025"},
		{"-amount", "3", "-type", "cake"},
	} {
		if status := run(t, e, &addCmd{}, args...); status != subcommands.ExitUsageError {
			t.Fatalf("%v: expected usage error, got %v", args, status)
		}
	}
	if got := len(e.rt.Ledger.GetAll(context.Background())); got != 0 {
		t.Fatalf("nothing should be stored, got %d", got)
	}
}

func TestExportThenImport(t *testing.T) {
	e, out := newEnv(t)
	run(t, e, &addCmd{}, "-date", "2025-03-01", "-amount", "10")
	run(t, e, &addCmd{}, "-date", "2025-03-02", "-amount", "4.5", "-type", "flan")

	dir := t.TempDir()
	out.Reset()
	if status := run(t, e, &exportCmd{}, "-o", dir); status != subcommands.ExitSuccess {
		t.Fatalf("export failed: %v", status)
	}
	path := strings.TrimSpace(out.String())
	if filepath.Dir(path) != dir || !strings.HasPrefix(filepath.Base(path), "Sultan-Kunafa-Ventes-") {
		t.Fatalf("unexpected export path %q", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("export file missing: %v", err)
	}

	out.Reset()
	if status := run(t, e, &importCmd{}, path); status != subcommands.ExitSuccess {
		t.Fatalf("import failed: %v", status)
	}
	if !strings.Contains(out.String(), "imported=0 skipped=2") {
		t.Fatalf("unexpected import report %q", out.String())
	}

	if status := run(t, e, &exportCmd{}, "-o", dir, "-format", "pdf", "-locale", "ar"); status != subcommands.ExitFailure {
		t.Fatalf("arabic pdf without a font should fail, got %v", status)
	}
	if status := run(t, e, &exportCmd{}, "-format", "csv"); status != subcommands.ExitUsageError {
		t.Fatalf("unknown format should be a usage error, got %v", status)
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "report.xlsx")
	if err := writeFileAtomic(name, []byte("first")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := writeFileAtomic(name, []byte("second")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if got, _ := os.ReadFile(name); string(got) != "second" {
		t.Fatalf("unexpected content %q", got)
	}

	blocked := filepath.Join(dir, "blocked")
	if err := os.Mkdir(blocked, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := writeFileAtomic(blocked, []byte("data")); err == nil {
		t.Fatalf("expected rename onto a directory to fail")
	}
	if err := writeFileAtomic(filepath.Join(dir, "missing", "x.pdf"), []byte("data")); err == nil {
		t.Fatalf("expected a missing directory to fail")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 2 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("expected no leftover temp files, got %v", names)
	}
}

func TestCommandsNeedEnv(t *testing.T) {
	f := flag.NewFlagSet("list", flag.ContinueOnError)
	if status := (&listCmd{}).Execute(context.Background(), f); status != subcommands.ExitFailure {
		t.Fatalf("expected failure without env, got %v", status)
	}
}
