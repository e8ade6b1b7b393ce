package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/helio/config.yml.
type GlobalConfig struct {
	DataPath  string `yaml:"data_path,omitempty"`
	LogLevel  string `yaml:"log_level,omitempty"`
	LogFormat string `yaml:"log_format,omitempty"`
	ORCID     string `yaml:"orcid,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "helio"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"

	// EnvPrefix prefixes the environment variables that override GlobalConfig.
	EnvPrefix = "HELIO_"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/helio/config.yml.
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

// LoadGlobalConfig loads the global configuration file, then applies a .env
// file from the working directory and HELIO_* environment overrides.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	cfg, err := readGlobalConfig(GlobalConfigPath())
	if err != nil {
		return nil, err
	}

	// .env never overrides variables already set in the process.
	_ = godotenv.Load()
	cfg.applyEnv(os.LookupEnv)

	if cfg.DataPath != "" {
		cfg.DataPath = ExpandPath(cfg.DataPath)
	}

	globalConfigCache = cfg
	return cfg, nil
}

func readGlobalConfig(path string) (*GlobalConfig, error) {
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
	return &cfg, nil
}

// applyEnv overrides each field whose HELIO_<YAML_KEY> variable is set.
func (c *GlobalConfig) applyEnv(lookup func(string) (string, bool)) {
	for key, field := range c.fields() {
		if v, ok := lookup(EnvPrefix + toUpperSnake(key)); ok {
			*field = v
		}
	}
}

func (c *GlobalConfig) fields() map[string]*string {
	return map[string]*string{
		"data_path":  &c.DataPath,
		"log_level":  &c.LogLevel,
		"log_format": &c.LogFormat,
		"orcid":      &c.ORCID,
	}
}

// Get returns the value of a config key by its YAML name.
func (c *GlobalConfig) Get(key string) (string, bool) {
	field, ok := c.fields()[key]
	if !ok {
		return "", false
	}
	return *field, true
}

// Keys returns the YAML names of every config key, in file order.
func Keys() []string {
	return []string{"data_path", "log_level", "log_format", "orcid"}
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// GetORCID returns the default submitter identity.
func GetORCID() string {
	cfg, err := LoadGlobalConfig()
	if err != nil {
		return ""
	}
	return cfg.ORCID
}

// GetDataPath returns the configured data path from global config.
func GetDataPath() string {
	cfg, err := LoadGlobalConfig()
	if err != nil {
		return ""
	}
	return cfg.DataPath
}

// ErrDataPathNotConfigured is returned when data_path is not set in config.
var ErrDataPathNotConfigured = errors.New("data_path not configured")

// ErrDataPathNotExist is returned when the configured data_path doesn't exist.
var ErrDataPathNotExist = errors.New("data_path does not exist")

// ValidateDataPath returns the data path from global config after validation.
func ValidateDataPath() (string, error) {
	path := GetDataPath()
	if path == "" {
		return "", ErrDataPathNotConfigured
	}
	if !IsRepository(path) {
		return "", fmt.Errorf("%w: %s", ErrDataPathNotExist, path)
	}
	return path, nil
}

// HelpfulConfigMessage returns a helpful message when no repository is found.
func HelpfulConfigMessage() string {
	configPath := GlobalConfigPath()
	return fmt.Sprintf(`No helio repository found.

Tip: run 'helio init' in your data directory, or create %s to set a default:
  mkdir -p %s
  echo 'data_path: /path/to/your/data' > %s

HELIO_DATA_PATH overrides the file.`,
		configPath,
		filepath.Dir(configPath),
		configPath)
}

func toUpperSnake(s string) string {
	return strings.ToUpper(strings.ReplaceAll(s, "-", "_"))
}
