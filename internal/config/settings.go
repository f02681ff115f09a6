package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/mediadl/launcher/internal/models"
)

// EnvPrefix prefixes environment overrides, e.g. MDLAUNCHER_BACKEND_PORT=3100
// or MDLAUNCHER_SUPERVISOR_AUTO_RESTART=false.
const EnvPrefix = "MDLAUNCHER_"

// envSections lists the top-level settings keys env names may map into.
var envSections = []string{"backend", "supervisor", "logging", "control"}

// LoadSettings loads the global settings from ~/.mdlauncher/settings.yaml.
// Layers, lowest to highest priority: built-in defaults, settings.yaml, environment.
func LoadSettings() (*models.Settings, error) {
	path, err := GlobalSettingsFile()
	if err != nil {
		return nil, err
	}
	return LoadSettingsFrom(path)
}

// LoadSettingsFrom loads settings using the given file for the YAML layer.
// A missing file leaves the defaults in place.
func LoadSettingsFrom(path string) (*models.Settings, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(models.NewSettings(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load default settings: %w", err)
	}

	if FileExists(path) {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load settings from %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment overrides: %w", err)
	}

	settings := &models.Settings{}
	if err := k.Unmarshal("", settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	if err := Validate(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// SettingKeys lists the dotted keys accepted by SetSettingIn.
func SettingKeys() []string {
	k := koanf.New(".")
	_ = k.Load(structs.Provider(models.NewSettings(), "koanf"), nil)
	keys := k.Keys()
	slices.Sort(keys)
	return keys
}

// SetSettingIn updates one dotted key (e.g. supervisor.max_restart_attempts)
// in the settings file at path and saves it. Environment overrides are not
// written back.
func SetSettingIn(path, key, value string) (*models.Settings, error) {
	if !slices.Contains(SettingKeys(), key) {
		return nil, fmt.Errorf("unknown setting %q", key)
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(models.NewSettings(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load default settings: %w", err)
	}
	if FileExists(path) {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load settings from %s: %w", path, err)
		}
	}

	var v interface{} = value
	if key == "control.web_origins" {
		v = splitList(value)
	}
	if err := k.Set(key, v); err != nil {
		return nil, err
	}

	settings := &models.Settings{}
	if err := k.Unmarshal("", settings); err != nil {
		return nil, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if err := Validate(settings); err != nil {
		return nil, err
	}
	if err := SaveYAML(path, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// envKey maps MDLAUNCHER_SUPERVISOR_POLL_INTERVAL to supervisor.poll_interval.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if key == "log_level" {
		return "logging.level"
	}
	for _, section := range envSections {
		if strings.HasPrefix(key, section+"_") {
			return section + "." + strings.TrimPrefix(key, section+"_")
		}
	}
	return key
}

// SaveSettings saves the global settings to ~/.mdlauncher/settings.yaml.
func SaveSettings(settings *models.Settings) error {
	if err := Validate(settings); err != nil {
		return err
	}
	path, err := GlobalSettingsFile()
	if err != nil {
		return err
	}
	return SaveYAML(path, settings)
}

// Validate rejects settings the supervisor cannot run with.
func Validate(s *models.Settings) error {
	switch {
	case s.Backend.Port <= 0 || s.Backend.Port > 65535:
		return fmt.Errorf("invalid backend.port %d", s.Backend.Port)
	case s.Backend.Host == "":
		return fmt.Errorf("backend.host must not be empty")
	case s.Backend.EntryPoint == "":
		return fmt.Errorf("backend.entry_point must not be empty")
	case s.Supervisor.PollInterval <= 0:
		return fmt.Errorf("supervisor.poll_interval must be positive")
	case s.Supervisor.ProbeTimeout <= 0:
		return fmt.Errorf("supervisor.probe_timeout must be positive")
	case s.Supervisor.SettleDelay < 0 || s.Supervisor.StartupGrace < 0:
		return fmt.Errorf("supervisor delays must not be negative")
	case s.Supervisor.MaxRestartAttempts < 0:
		return fmt.Errorf("supervisor.max_restart_attempts must not be negative")
	}
	return nil
}

// ResolveBaseDir returns the backend base directory: the configured one,
// or the directory of the running launcher binary.
func ResolveBaseDir(s *models.Settings) (string, error) {
	if s.Backend.BaseDir != "" {
		return filepath.Abs(s.Backend.BaseDir)
	}
	return ExecutableDir()
}
