package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mediadl/launcher/internal/models"
)

func TestLoadSettingsFromMissingFileUsesDefaults(t *testing.T) {
	s, err := LoadSettingsFrom(filepath.Join(t.TempDir(), "settings.yaml"))
	if err != nil {
		t.Fatalf("LoadSettingsFrom: %v", err)
	}

	want := models.NewSettings()
	if s.Backend.Port != want.Backend.Port || s.Backend.Host != want.Backend.Host {
		t.Errorf("backend = %s:%d, want %s:%d", s.Backend.Host, s.Backend.Port, want.Backend.Host, want.Backend.Port)
	}
	if s.Supervisor.PollInterval != 3*time.Second {
		t.Errorf("poll_interval = %v, want 3s", s.Supervisor.PollInterval)
	}
	if s.Supervisor.MaxRestartAttempts != 5 {
		t.Errorf("max_restart_attempts = %d, want 5", s.Supervisor.MaxRestartAttempts)
	}
	if !s.Supervisor.AutoRestart {
		t.Error("auto_restart should default to true")
	}
}

func TestLoadSettingsFromFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	yaml := `version: 1
backend:
  port: 3100
supervisor:
  poll_interval: 5s
  max_restart_attempts: 2
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MDLAUNCHER_SUPERVISOR_AUTO_RESTART", "false")
	t.Setenv("MDLAUNCHER_LOG_LEVEL", "debug")

	s, err := LoadSettingsFrom(path)
	if err != nil {
		t.Fatalf("LoadSettingsFrom: %v", err)
	}
	if s.Backend.Port != 3100 {
		t.Errorf("port = %d, want 3100", s.Backend.Port)
	}
	if s.Backend.Host != "127.0.0.1" {
		t.Errorf("host = %q, default should survive a partial file", s.Backend.Host)
	}
	if s.Supervisor.PollInterval != 5*time.Second {
		t.Errorf("poll_interval = %v, want 5s", s.Supervisor.PollInterval)
	}
	if s.Supervisor.MaxRestartAttempts != 2 {
		t.Errorf("max_restart_attempts = %d, want 2", s.Supervisor.MaxRestartAttempts)
	}
	if s.Supervisor.AutoRestart {
		t.Error("env override should disable auto_restart")
	}
	if s.Logging.Level != "debug" {
		t.Errorf("logging.level = %q, want debug", s.Logging.Level)
	}
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"MDLAUNCHER_BACKEND_PORT", "backend.port"},
		{"MDLAUNCHER_SUPERVISOR_POLL_INTERVAL", "supervisor.poll_interval"},
		{"MDLAUNCHER_CONTROL_WEB_ORIGINS", "control.web_origins"},
		{"MDLAUNCHER_LOG_LEVEL", "logging.level"},
		{"MDLAUNCHER_HOME", "home"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := envKey(tt.in); got != tt.want {
				t.Errorf("envKey(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.Settings)
		wantErr bool
	}{
		{"defaults", func(*models.Settings) {}, false},
		{"zero port", func(s *models.Settings) { s.Backend.Port = 0 }, true},
		{"port too large", func(s *models.Settings) { s.Backend.Port = 70000 }, true},
		{"empty entry point", func(s *models.Settings) { s.Backend.EntryPoint = "" }, true},
		{"zero poll", func(s *models.Settings) { s.Supervisor.PollInterval = 0 }, true},
		{"negative cap", func(s *models.Settings) { s.Supervisor.MaxRestartAttempts = -1 }, true},
		{"zero cap allowed", func(s *models.Settings) { s.Supervisor.MaxRestartAttempts = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := models.NewSettings()
			tt.mutate(s)
			err := Validate(s)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSaveSettingsRoundTrip(t *testing.T) {
	t.Setenv(HomeEnvVar, t.TempDir())

	s := models.NewSettings()
	s.Backend.Port = 3200
	s.Supervisor.SettleDelay = 4 * time.Second
	if err := SaveSettings(s); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}

	loaded, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if loaded.Backend.Port != 3200 {
		t.Errorf("port = %d, want 3200", loaded.Backend.Port)
	}
	if loaded.Supervisor.SettleDelay != 4*time.Second {
		t.Errorf("settle_delay = %v, want 4s", loaded.Supervisor.SettleDelay)
	}
}

func TestResolveBaseDir(t *testing.T) {
	s := models.NewSettings()
	dir := t.TempDir()
	s.Backend.BaseDir = dir

	got, err := ResolveBaseDir(s)
	if err != nil {
		t.Fatal(err)
	}
	if got != dir {
		t.Errorf("ResolveBaseDir = %q, want %q", got, dir)
	}
}

func TestSetSettingIn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	s, err := SetSettingIn(path, "supervisor.max_restart_attempts", "3")
	if err != nil {
		t.Fatalf("SetSettingIn: %v", err)
	}
	if s.Supervisor.MaxRestartAttempts != 3 {
		t.Errorf("max_restart_attempts = %d, want 3", s.Supervisor.MaxRestartAttempts)
	}

	if _, err := SetSettingIn(path, "supervisor.poll_interval", "10s"); err != nil {
		t.Fatalf("SetSettingIn duration: %v", err)
	}
	if _, err := SetSettingIn(path, "control.web_origins", "http://a.test, http://b.test"); err != nil {
		t.Fatalf("SetSettingIn list: %v", err)
	}

	loaded, err := LoadSettingsFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Supervisor.MaxRestartAttempts != 3 {
		t.Errorf("earlier update lost: max_restart_attempts = %d", loaded.Supervisor.MaxRestartAttempts)
	}
	if loaded.Supervisor.PollInterval != 10*time.Second {
		t.Errorf("poll_interval = %v, want 10s", loaded.Supervisor.PollInterval)
	}
	if len(loaded.Control.WebOrigins) != 2 || loaded.Control.WebOrigins[1] != "http://b.test" {
		t.Errorf("web_origins = %v", loaded.Control.WebOrigins)
	}
}

func TestSetSettingInRejectsBadInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	if _, err := SetSettingIn(path, "backend.nope", "1"); err == nil {
		t.Error("unknown key should fail")
	}
	if _, err := SetSettingIn(path, "backend.port", "0"); err == nil {
		t.Error("invalid port should fail validation")
	}
	if FileExists(path) {
		t.Error("failed updates must not write the file")
	}
}
