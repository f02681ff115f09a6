package backend

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrRuntimeNotFound, "RuntimeNotFound"},
		{fmt.Errorf("%w: /x/server.js", ErrEntryPointMissing), "EntryPointMissing"},
		{fmt.Errorf("%w: /x/node_modules", ErrDependenciesMissing), "DependenciesMissing"},
		{fmt.Errorf("%w: port 3000", ErrPortInUse), "PortInUse"},
		{fmt.Errorf("%w: exec format error", ErrSpawnFailure), "SpawnFailure"},
		{ErrNoProcessRunning, "NoProcessRunning"},
		{ErrTerminateFailed, "TerminateFailed"},
		{errors.New("boom"), "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := Code(tt.err); got != tt.want {
				t.Errorf("Code(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestMessage(t *testing.T) {
	if Message(nil) != "" {
		t.Error("nil error should have empty message")
	}
	if !strings.Contains(Message(fmt.Errorf("wrap: %w", ErrDependenciesMissing)), "npm install") {
		t.Error("dependencies message should mention npm install")
	}
	if !strings.Contains(Message(errors.New("disk on fire")), "disk on fire") {
		t.Error("unknown errors should carry their text")
	}
}
