package models

import "time"

// BackendConfig describes the backend server the launcher supervises.
type BackendConfig struct {
	Host            string `yaml:"host" koanf:"host"`
	Port            int    `yaml:"port" koanf:"port"`
	BaseDir         string `yaml:"base_dir" koanf:"base_dir"` // empty = directory of launcherd
	EntryPoint      string `yaml:"entry_point" koanf:"entry_point"`
	DependenciesDir string `yaml:"dependencies_dir" koanf:"dependencies_dir"`
	BundledRuntime  string `yaml:"bundled_runtime" koanf:"bundled_runtime"` // relative to base_dir
	SystemRuntime   string `yaml:"system_runtime" koanf:"system_runtime"`   // looked up in PATH
	KillByName      bool   `yaml:"kill_by_name" koanf:"kill_by_name"`
}

// SupervisorConfig holds the restart policy and polling cadence.
type SupervisorConfig struct {
	PollInterval       time.Duration `yaml:"poll_interval" koanf:"poll_interval"`
	ProbeTimeout       time.Duration `yaml:"probe_timeout" koanf:"probe_timeout"`
	SettleDelay        time.Duration `yaml:"settle_delay" koanf:"settle_delay"`
	StartupGrace       time.Duration `yaml:"startup_grace" koanf:"startup_grace"`
	MaxRestartAttempts int           `yaml:"max_restart_attempts" koanf:"max_restart_attempts"`
	AutoRestart        bool          `yaml:"auto_restart" koanf:"auto_restart"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `yaml:"level" koanf:"level"`
	Format string `yaml:"format" koanf:"format"` // "auto" | "console" | "json"
}

// ControlConfig holds settings for the daemon's control endpoint.
type ControlConfig struct {
	Port       int      `yaml:"port" koanf:"port"` // 0 = dynamic
	WebOrigins []string `yaml:"web_origins" koanf:"web_origins"`
}

// Settings represents global launcher settings.
// This corresponds to ~/.mdlauncher/settings.yaml.
type Settings struct {
	Version    int              `yaml:"version" koanf:"version"`
	Backend    BackendConfig    `yaml:"backend" koanf:"backend"`
	Supervisor SupervisorConfig `yaml:"supervisor" koanf:"supervisor"`
	Logging    LoggingConfig    `yaml:"logging" koanf:"logging"`
	Control    ControlConfig    `yaml:"control" koanf:"control"`
}

// NewSettings creates settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Version: 1,
		Backend: BackendConfig{
			Host:            "127.0.0.1",
			Port:            3000,
			EntryPoint:      "server.js",
			DependenciesDir: "node_modules",
			BundledRuntime:  "nodejs",
			SystemRuntime:   "node",
			KillByName:      true,
		},
		Supervisor: SupervisorConfig{
			PollInterval:       3 * time.Second,
			ProbeTimeout:       time.Second,
			SettleDelay:        3 * time.Second,
			StartupGrace:       10 * time.Second,
			MaxRestartAttempts: 5,
			AutoRestart:        true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "auto",
		},
		Control: ControlConfig{
			Port:       0,
			WebOrigins: []string{"http://localhost", "http://127.0.0.1"},
		},
	}
}
