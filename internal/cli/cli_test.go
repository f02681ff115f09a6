package cli

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/mediadl/launcher/internal/api"
	"github.com/mediadl/launcher/internal/config"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()
	_ = w.Close()

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

func TestParseOnOff(t *testing.T) {
	tests := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{"on", true, false},
		{"ON", true, false},
		{"enable", true, false},
		{"off", false, false},
		{"false", false, false},
		{"maybe", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseOnOff(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseOnOff(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("parseOnOff(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestPrintResult(t *testing.T) {
	out := captureStdout(t, func() {
		if err := printResult(&api.CommandResult{Success: true, Message: "Auto-restart disabled"}, ""); err != nil {
			t.Errorf("printResult: %v", err)
		}
	})
	if !strings.Contains(out, "Auto-restart disabled") {
		t.Errorf("output = %q", out)
	}

	err := printResult(&api.CommandResult{Error: "PortInUse", Message: "Port 3000 is already in use"}, "")
	if err == nil || err.Error() != "PortInUse" {
		t.Errorf("err = %v, want PortInUse", err)
	}
}

func TestPrintServerStatus(t *testing.T) {
	out := captureStdout(t, func() {
		printServerStatus(&api.StatusReply{
			Online:             false,
			Phase:              "gave-up",
			URL:                "http://localhost:3000",
			RestartAttempts:    0,
			MaxRestartAttempts: 5,
			LastErrorMessage:   "Server entry point not found",
		})
	})
	for _, want := range []string{"offline", "gave-up", "0/5", "entry point not found"} {
		if !strings.Contains(out, want) {
			t.Errorf("status output missing %q:\n%s", want, out)
		}
	}
}

func TestGetDaemonStatusWithoutDaemon(t *testing.T) {
	t.Setenv(config.HomeEnvVar, t.TempDir())

	running, info, err := GetDaemonStatus()
	if err != nil {
		t.Fatal(err)
	}
	if running || info != nil {
		t.Errorf("running = %v, info = %v; want not running", running, info)
	}
}

func TestConnectDaemonWithoutDaemon(t *testing.T) {
	t.Setenv(config.HomeEnvVar, t.TempDir())

	_, _, err := connectDaemon()
	if err == nil || !strings.Contains(err.Error(), "not running") {
		t.Errorf("err = %v, want not running", err)
	}
}

func TestFindDaemonBinaryInBuildDir(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("PATH", "")

	if err := os.MkdirAll("build", 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile("build/"+daemonBinaryName(), []byte{}, 0o755); err != nil {
		t.Fatal(err)
	}

	path, err := findDaemonBinary()
	if err != nil {
		t.Fatalf("findDaemonBinary: %v", err)
	}
	if !strings.HasSuffix(path, daemonBinaryName()) {
		t.Errorf("path = %q", path)
	}
}

func TestSettingsSetCommand(t *testing.T) {
	t.Setenv(config.HomeEnvVar, t.TempDir())

	rootCmd.SetArgs([]string{"settings", "set", "supervisor.auto_restart", "false"})
	captureStdout(t, func() {
		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("settings set: %v", err)
		}
	})

	s, err := config.LoadSettings()
	if err != nil {
		t.Fatal(err)
	}
	if s.Supervisor.AutoRestart {
		t.Error("auto_restart should be saved as false")
	}

	rootCmd.SetArgs([]string{"settings", "set", "supervisor.unknown", "1"})
	rootCmd.SetErr(io.Discard)
	err = rootCmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "unknown setting") {
		t.Errorf("err = %v, want unknown setting", err)
	}
}
