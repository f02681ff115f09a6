//go:build !windows

package backend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeScript(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
}

func TestResolveRuntimePrefersBundled(t *testing.T) {
	base := t.TempDir()
	writeScript(t, filepath.Join(base, "nodejs", "node"), "exit 0")

	rt, err := ResolveRuntime(context.Background(), base, "nodejs", "node", time.Second)
	if err != nil {
		t.Fatalf("ResolveRuntime: %v", err)
	}
	if !rt.Bundled || rt.Path != filepath.Join(base, "nodejs", "node") {
		t.Errorf("runtime = %+v, want bundled", rt)
	}
}

func TestResolveRuntimeBundledBinDir(t *testing.T) {
	base := t.TempDir()
	writeScript(t, filepath.Join(base, "nodejs", "bin", "node"), "exit 0")

	rt, err := ResolveRuntime(context.Background(), base, "nodejs", "node", time.Second)
	if err != nil {
		t.Fatalf("ResolveRuntime: %v", err)
	}
	if !rt.Bundled {
		t.Errorf("runtime = %+v, want bundled", rt)
	}
}

func TestResolveRuntimeSystemVerified(t *testing.T) {
	bin := t.TempDir()
	writeScript(t, filepath.Join(bin, "fakenode"), "echo v20.11.0")
	t.Setenv("PATH", bin)

	rt, err := ResolveRuntime(context.Background(), t.TempDir(), "nodejs", "fakenode", time.Second)
	if err != nil {
		t.Fatalf("ResolveRuntime: %v", err)
	}
	if rt.Bundled || rt.Version != "v20.11.0" {
		t.Errorf("runtime = %+v, want system v20.11.0", rt)
	}
}

func TestResolveRuntimeSystemBroken(t *testing.T) {
	bin := t.TempDir()
	writeScript(t, filepath.Join(bin, "fakenode"), "exit 3")
	t.Setenv("PATH", bin)

	_, err := ResolveRuntime(context.Background(), t.TempDir(), "nodejs", "fakenode", time.Second)
	if !errors.Is(err, ErrRuntimeNotFound) {
		t.Errorf("err = %v, want ErrRuntimeNotFound", err)
	}
}

func TestResolveRuntimeMissing(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	_, err := ResolveRuntime(context.Background(), t.TempDir(), "nodejs", "node-does-not-exist", time.Second)
	if !errors.Is(err, ErrRuntimeNotFound) {
		t.Errorf("err = %v, want ErrRuntimeNotFound", err)
	}
}
