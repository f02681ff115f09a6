package backend

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// DefaultVersionTimeout bounds the "node --version" check of a system runtime.
const DefaultVersionTimeout = 5 * time.Second

// Runtime is a resolved Node.js executable.
type Runtime struct {
	Path    string
	Bundled bool
	Version string // only set for system runtimes
}

// exeName appends .exe on Windows.
func exeName(name string) string {
	if runtime.GOOS == "windows" && !strings.HasSuffix(strings.ToLower(name), ".exe") {
		return name + ".exe"
	}
	return name
}

// ResolveRuntime prefers a runtime bundled under baseDir/bundledDir and falls
// back to systemName on PATH, verified by running it with --version.
func ResolveRuntime(ctx context.Context, baseDir, bundledDir, systemName string, timeout time.Duration) (*Runtime, error) {
	if timeout <= 0 {
		timeout = DefaultVersionTimeout
	}
	bin := exeName(filepath.Base(systemName))

	if bundledDir != "" {
		candidates := []string{
			filepath.Join(baseDir, bundledDir, bin),
			filepath.Join(baseDir, bundledDir, "bin", bin),
		}
		for _, path := range candidates {
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return &Runtime{Path: path, Bundled: true}, nil
			}
		}
	}

	path, err := exec.LookPath(exeName(systemName))
	if err != nil {
		return nil, fmt.Errorf("%w: no bundled runtime in %s and %s not on PATH", ErrRuntimeNotFound, filepath.Join(baseDir, bundledDir), systemName)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, path, "--version")
	cmd.Stdout = &out
	hideWindow(cmd)
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: %s --version: %v", ErrRuntimeNotFound, path, err)
	}
	return &Runtime{Path: path, Version: strings.TrimSpace(out.String())}, nil
}
