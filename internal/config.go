package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the engine and CLI settings, loaded from a YAML file.
type Config struct {
	// RootFolder is the application container name at the store's top level.
	RootFolder string `yaml:"root_folder"`
	// ProjectName is the project container name beneath the root.
	ProjectName string `yaml:"project_name"`
	// RestoreWindow is how many trailing steps to load on restoration.
	RestoreWindow int `yaml:"restore_window"`
	// Backend selects the store implementation: "drive" or "sqlite".
	Backend string `yaml:"backend"`
	// SQLitePath is the database file for the sqlite backend.
	SQLitePath string `yaml:"sqlite_path"`
	// TokenFile is a file containing a bearer token for the drive backend.
	TokenFile string `yaml:"token_file"`
	// RequestTimeoutSecs bounds each individual store call, in seconds.
	RequestTimeoutSecs int `yaml:"request_timeout_secs"`
}

// RequestTimeout returns the per-call timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSecs <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.RequestTimeoutSecs) * time.Second
}

// DefaultConfig returns the built-in settings. Root and project names match
// the persisted layout of existing deployments and must not change casually.
func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		RootFolder:         "GeminiStudio_Storage",
		ProjectName:        "KethuRakhu_Analytics",
		RestoreWindow:      5,
		Backend:            "sqlite",
		SQLitePath:         filepath.Join(home, ".oracle-session", "store.db"),
		TokenFile:          filepath.Join(home, ".oracle-session", "token"),
		RequestTimeoutSecs: 30,
	}
}

// DefaultConfigPath returns the default location of the config file.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".oracle-session.yaml"
	}
	return filepath.Join(home, ".oracle-session.yaml")
}

// LoadConfig reads the YAML config at path, layering it over the defaults.
// A missing file is not an error: the defaults are returned unchanged.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return cfg, cfg.Validate()
}

// Validate checks the settings that have hard constraints.
func (c *Config) Validate() error {
	if c.RootFolder == "" || c.ProjectName == "" {
		return fmt.Errorf("root_folder and project_name must not be empty")
	}
	if c.RestoreWindow < 0 {
		return fmt.Errorf("restore_window must not be negative")
	}
	switch c.Backend {
	case "drive", "sqlite":
	default:
		return fmt.Errorf("unknown backend %q (want drive or sqlite)", c.Backend)
	}
	return nil
}

// Save writes the config as YAML to path, creating parent directories.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
