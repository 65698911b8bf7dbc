package registry

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func noopHandler(ctx context.Context, stdin io.Reader, stdout io.Writer, argTail string, aux any) error {
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRegisterBuiltinSplitsHints(t *testing.T) {
	r := New(testLogger())
	r.RegisterBuiltin("tell", "name:msg", noopHandler)

	cmd, ok := r.Lookup("tell")
	if !ok {
		t.Fatalf("expected tell to be registered")
	}
	if cmd.Kind != Builtin {
		t.Errorf("expected Builtin kind, got %v", cmd.Kind)
	}
	want := []string{"name", "msg"}
	if len(cmd.ParamHints) != len(want) {
		t.Fatalf("hints = %v, want %v", cmd.ParamHints, want)
	}
	for i := range want {
		if cmd.ParamHints[i] != want[i] {
			t.Errorf("hints[%d] = %q, want %q", i, cmd.ParamHints[i], want[i])
		}
	}
}

func TestLookupMissing(t *testing.T) {
	r := New(testLogger())
	if _, ok := r.Lookup("nope"); ok {
		t.Errorf("expected lookup of unregistered command to fail")
	}
}

func TestRegisterBuiltinLastWins(t *testing.T) {
	r := New(testLogger())
	r.RegisterBuiltin("who", "", noopHandler)
	r.RegisterBuiltin("who", "filter", noopHandler)

	cmd, ok := r.Lookup("who")
	if !ok {
		t.Fatalf("expected who to be registered")
	}
	if len(cmd.ParamHints) != 1 || cmd.ParamHints[0] != "filter" {
		t.Errorf("expected the second registration to win, got %v", cmd.ParamHints)
	}
}

func TestRegisterExternalScansDirectory(t *testing.T) {
	dir := t.TempDir()
	binPath := filepath.Join(dir, "cat")
	if err := os.WriteFile(binPath, []byte("#!/bin/sh\ncat\n"), 0o755); err != nil {
		t.Fatalf("write fixture binary: %v", err)
	}
	nonExec := filepath.Join(dir, "readme.txt")
	if err := os.WriteFile(nonExec, []byte("not executable"), 0o644); err != nil {
		t.Fatalf("write fixture file: %v", err)
	}

	r := New(testLogger())
	r.RegisterExternal(dir)

	cmd, ok := r.Lookup("cat")
	if !ok {
		t.Fatalf("expected cat to be registered from %s", dir)
	}
	if cmd.Kind != External {
		t.Errorf("expected External kind, got %v", cmd.Kind)
	}
	if cmd.FullName != binPath {
		t.Errorf("FullName = %q, want %q", cmd.FullName, binPath)
	}

	if _, ok := r.Lookup("readme.txt"); ok {
		t.Errorf("expected non-executable file to be skipped")
	}
}

func TestRegisterExternalMissingDirectoryDoesNotPanic(t *testing.T) {
	r := New(testLogger())
	r.RegisterExternal("/no/such/directory/exists")
	if _, ok := r.Lookup("anything"); ok {
		t.Errorf("expected empty registry after scanning a missing directory")
	}
}

func TestRegisterExternalColonSeparatedPath(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	mustExec(t, filepath.Join(dirA, "yell"))
	mustExec(t, filepath.Join(dirB, "tell"))

	r := New(testLogger())
	r.RegisterExternal(dirA + ":" + dirB)

	if _, ok := r.Lookup("yell"); !ok {
		t.Errorf("expected yell from first path entry")
	}
	if _, ok := r.Lookup("tell"); !ok {
		t.Errorf("expected tell from second path entry")
	}
}

func mustExec(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("write fixture binary %s: %v", path, err)
	}
}
