// Package config handles the global qbib configuration and cache paths.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/qbib/config.yml.
type GlobalConfig struct {
	MasterPath string `yaml:"master_path,omitempty"`
	CacheDir   string `yaml:"cache_dir,omitempty"`
	LogLevel   string `yaml:"log_level,omitempty"`
	LogFormat  string `yaml:"log_format,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "qbib"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"

	// EnvMaster overrides master_path.
	EnvMaster = "QBIB_MASTER"
	// EnvLogLevel overrides log_level.
	EnvLogLevel = "QBIB_LOG_LEVEL"
)

// ErrMasterNotConfigured is returned when no master bibliography is set.
var ErrMasterNotConfigured = errors.New("master_path not configured")

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/qbib/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadDotEnv loads environment variables from a .env file if one exists.
// Variables already set in the environment win.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// LoadGlobalConfig loads the global configuration file and applies
// environment overrides. Returns an empty config (not an error) if the file
// doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	cfg, err := LoadGlobalConfigFrom(GlobalConfigPath())
	if err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return cfg, nil
}

// LoadGlobalConfigFrom reads a config file without environment overrides.
func LoadGlobalConfigFrom(path string) (*GlobalConfig, error) {
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	cfg.MasterPath = ExpandPath(cfg.MasterPath)
	cfg.CacheDir = ExpandPath(cfg.CacheDir)
	return &cfg, nil
}

func (c *GlobalConfig) applyEnv() {
	if v := os.Getenv(EnvMaster); v != "" {
		c.MasterPath = ExpandPath(v)
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
}

// ResolveMaster returns the master bibliography path: flagValue if set,
// otherwise the configured one.
func (c *GlobalConfig) ResolveMaster(flagValue string) (string, error) {
	if flagValue != "" {
		return ExpandPath(flagValue), nil
	}
	if c.MasterPath == "" {
		return "", ErrMasterNotConfigured
	}
	return c.MasterPath, nil
}

// HelpfulConfigMessage returns a helpful message when master_path is not configured.
func HelpfulConfigMessage() string {
	configPath := GlobalConfigPath()
	return fmt.Sprintf(`No master bibliography configured.

Pass --master, set %s, or create %s:
  mkdir -p %s
  echo 'master_path: /path/to/master.jsonl' > %s`,
		EnvMaster,
		configPath,
		filepath.Dir(configPath),
		configPath)
}
