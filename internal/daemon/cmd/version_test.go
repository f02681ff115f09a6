package cmd

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/mediadl/launcher/internal/config"
	"github.com/mediadl/launcher/internal/models"
)

func TestPrintVersionWithoutDaemon(t *testing.T) {
	t.Setenv(config.HomeEnvVar, t.TempDir())

	var buf bytes.Buffer
	printVersion(&buf)

	out := buf.String()
	for _, want := range []string{"launcherd", "http://localhost:3000", "not running"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintVersionShowsControlEndpoint(t *testing.T) {
	t.Setenv(config.HomeEnvVar, t.TempDir())
	if err := config.EnsureGlobalDir(); err != nil {
		t.Fatal(err)
	}
	if err := config.SaveDaemonInfo(models.NewDaemonInfo("127.0.0.1", 45123, os.Getpid())); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	printVersion(&buf)

	if out := buf.String(); !strings.Contains(out, "127.0.0.1:45123") {
		t.Errorf("output missing control endpoint:\n%s", out)
	}
}
