package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// SystemConfigPath is the machine-wide config file.
const SystemConfigPath = "/etc/taskdeck/config.yaml"

// Loader resolves the layered configuration. Zero-valued paths fall back
// to the standard locations; set them in tests to isolate from the host.
type Loader struct {
	SystemPath  string
	UserPath    string
	ProjectPath string
	// Env looks up environment variables (default: os.LookupEnv).
	Env func(string) (string, bool)
}

// LoadWithSources loads configuration with source tracking.
// Load order (later sources override earlier):
//  1. Built-in defaults
//  2. System config (/etc/taskdeck/config.yaml) - optional
//  3. User config (~/.taskdeck/config.yaml) - optional
//  4. Project config (.taskdeck/config.yaml, or configPath when given)
//  5. Environment variables (TASKDECK_*)
//
// CLI flags are applied by the caller through TrackedConfig.Set.
func LoadWithSources(configPath string) (*TrackedConfig, error) {
	l := Loader{ProjectPath: configPath}
	return l.Load()
}

// Load runs the layered load.
func (l Loader) Load() (*TrackedConfig, error) {
	tc := NewTrackedConfig()

	systemPath := l.SystemPath
	if systemPath == "" {
		systemPath = SystemConfigPath
	}
	if fileExists(systemPath) {
		if err := mergeFromFile(tc, systemPath, SourceSystem); err != nil {
			slog.Warn("failed to load system config", "path", systemPath, "error", err)
		}
	}

	userPath := l.UserPath
	if userPath == "" {
		if home, err := os.UserHomeDir(); err == nil {
			userPath = filepath.Join(home, DeckDir, ConfigFileName)
		}
	}
	if userPath != "" && fileExists(userPath) {
		if err := mergeFromFile(tc, userPath, SourceUser); err != nil {
			slog.Warn("failed to load user config", "path", userPath, "error", err)
		}
	}

	projectPath := l.ProjectPath
	explicit := projectPath != ""
	if !explicit {
		projectPath = filepath.Join(DeckDir, ConfigFileName)
	}
	switch {
	case fileExists(projectPath):
		// Project config errors are fatal
		if err := mergeFromFile(tc, projectPath, SourceProject); err != nil {
			return nil, err
		}
	case explicit:
		return nil, fmt.Errorf("config file not found: %s", projectPath)
	}

	env := l.Env
	if env == nil {
		env = os.LookupEnv
	}
	if _, err := applyEnv(tc, env); err != nil {
		return nil, err
	}

	return tc, nil
}

// mergeFromFile merges configuration from a file into tc.
func mergeFromFile(tc *TrackedConfig, path string, source ConfigSource) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	// Parse YAML into a map to track which fields are set
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	// Decoding over the current config only touches keys present in the file.
	if err := yaml.Unmarshal(data, tc.Config); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	known := make(map[string]bool)
	for _, p := range AllConfigPaths() {
		known[p] = true
	}
	for _, p := range flattenKeys("", raw) {
		if known[p] {
			tc.SetSourceWithPath(p, source, path)
		} else {
			slog.Warn("unknown config key", "key", p, "path", path)
		}
	}
	return nil
}

// flattenKeys returns the dotted leaf paths present in a YAML mapping.
func flattenKeys(prefix string, raw map[string]any) []string {
	var out []string
	for k, v := range raw {
		p := k
		if prefix != "" {
			p = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			out = append(out, flattenKeys(p, nested)...)
			continue
		}
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
