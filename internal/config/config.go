// Package config handles repository configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents repository configuration stored in .helio/config.json.
type Config struct {
	Name         string `json:"name,omitempty"`          // Human label for the dataset
	SearchLimit  int    `json:"search_limit,omitempty"`  // Override for full-text hit count
	JournalEdges *bool  `json:"journal_edges,omitempty"` // Mirror accepted edges to asserted.jsonl (default true)
}

const (
	HelioDir     = ".helio"
	ConfigFile   = "config.json"
	DocsFile     = "docs.jsonl"
	AssertedFile = "asserted.jsonl"
	CacheDir     = "cache"
	DBFile       = "helio.db"
)

// HelioPath returns the path to the .helio directory from a root path.
func HelioPath(root string) string {
	return filepath.Join(root, HelioDir)
}

// ConfigPath returns the path to config.json from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, HelioDir, ConfigFile)
}

// DocsPath returns the path to docs.jsonl from a root path.
func DocsPath(root string) string {
	return filepath.Join(root, HelioDir, DocsFile)
}

// AssertedPath returns the path to the crowd-edge log from a root path.
func AssertedPath(root string) string {
	return filepath.Join(root, HelioDir, AssertedFile)
}

// CachePath returns the path to the cache directory from a root path.
func CachePath(root string) string {
	return filepath.Join(root, HelioDir, CacheDir)
}

// DBPath returns the path to helio.db from a root path.
func DBPath(root string) string {
	return filepath.Join(root, HelioDir, CacheDir, DBFile)
}

// IsRepository checks if the given path contains a helio data directory.
func IsRepository(root string) bool {
	info, err := os.Stat(HelioPath(root))
	return err == nil && info.IsDir()
}

// FindRepository walks up from the given path to find a helio data directory.
// Returns the repository root path or an error if not found.
func FindRepository(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsRepository(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("not in a helio repository (no %s directory found)", HelioDir)
		}
		abs = parent
	}
}

// Init creates the .helio and cache directories under root, plus a default
// config.json when none exists.
func Init(root string) error {
	if err := os.MkdirAll(CachePath(root), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", HelioDir, err)
	}
	if _, err := os.Stat(ConfigPath(root)); err == nil {
		return nil
	}
	return (&Config{}).Save(root)
}

// Load reads configuration from the repository at the given root.
// A missing config.json yields the zero Config.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.SearchLimit < 0 {
		return nil, fmt.Errorf("invalid search_limit: %d", cfg.SearchLimit)
	}

	return &cfg, nil
}

// Save writes configuration to the repository at the given root.
func (c *Config) Save(root string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Journal reports whether accepted edges are mirrored to asserted.jsonl.
func (c *Config) Journal() bool {
	return c.JournalEdges == nil || *c.JournalEdges
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}
