package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config represents the application configuration
type Config struct {
	LogDir       string `json:"log_dir"`       // Directory written by the terminal logger; empty means $TMPDIR/terminator_logs
	EnvVar       string `json:"env_var"`       // Environment variable holding an explicit log path
	DefaultCount int    `json:"default_count"` // Commands shown when no count is given; 0 shows all
	LogLevel     string `json:"log_level"`
	LogFile      string `json:"log_file"`
	LogFormat    string `json:"log_format"` // "json" or "text"
	LogToStderr  bool   `json:"log_to_stderr"`
}

// Default returns a configuration with default values
func Default() Config {
	return Config{
		LogDir:       "",
		EnvVar:       "TERMINAL_LOG_FILE",
		DefaultCount: 1,
		LogLevel:     "warn",
		LogFile:      "",
		LogFormat:    "json",
		LogToStderr:  false,
	}
}

// Load loads configuration from the specified path.
// A missing file yields the defaults; nothing is written.
// Fields absent from the file keep their default values.
func Load(configPath string) (Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c Config) Validate() error {
	if strings.TrimSpace(c.EnvVar) == "" {
		return fmt.Errorf("env_var must not be empty")
	}

	if c.DefaultCount < 0 {
		return fmt.Errorf("default_count must not be negative, got: %d", c.DefaultCount)
	}

	switch strings.ToLower(strings.TrimSpace(c.LogFormat)) {
	case "", "json", "text":
	default:
		return fmt.Errorf("unsupported log_format: %s", c.LogFormat)
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".context_cli/config.json"
	}
	return filepath.Join(homeDir, ".context_cli", "config.json")
}
