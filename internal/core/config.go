package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tailscale/hujson"

	"github.com/barysiuk/skillhub/internal/store"
)

const (
	configDirName  = ".skillhub"
	configFileName = "config.json"
	dbFileName     = "skillhub.db"

	// HomeEnv overrides the configuration directory.
	HomeEnv = "SKILLHUB_HOME"
)

// ConfigManager handles reading and writing the skillhub configuration.
// The file may contain comments and trailing commas (JSONC).
type ConfigManager struct {
	configDir string
	mu        sync.RWMutex
}

// NewConfigManager creates a ConfigManager using $SKILLHUB_HOME, or
// ~/.skillhub when it is unset.
func NewConfigManager() (*ConfigManager, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return &ConfigManager{configDir: expandPath(dir)}, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting home directory: %w", err)
	}
	return &ConfigManager{configDir: filepath.Join(home, configDirName)}, nil
}

// NewConfigManagerWithDir creates a ConfigManager using a custom config directory.
func NewConfigManagerWithDir(dir string) *ConfigManager {
	return &ConfigManager{configDir: dir}
}

// ConfigDir returns the configuration directory path.
func (cm *ConfigManager) ConfigDir() string {
	return cm.configDir
}

// ConfigPath returns the full path to the config file.
func (cm *ConfigManager) ConfigPath() string {
	return filepath.Join(cm.configDir, configFileName)
}

// DefaultCentralDir is the central repository root suggested by init.
func (cm *ConfigManager) DefaultCentralDir() string {
	return filepath.Join(cm.configDir, "skills")
}

// Load reads the config from disk. Returns the default config if the file
// doesn't exist; unset fields are filled with defaults.
func (cm *ConfigManager) Load() (*Config, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	cfg := defaultConfig()
	data, err := os.ReadFile(cm.ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := json.Unmarshal(std, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cm.ConfigPath(), err)
	}
	return cfg, nil
}

// Save writes the config to disk, creating the directory if needed.
func (cm *ConfigManager) Save(cfg *Config) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if err := os.MkdirAll(cm.configDir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	// Write atomically: write to temp file then rename
	tmpPath := cm.ConfigPath() + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if err := os.Rename(tmpPath, cm.ConfigPath()); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving config: %w", err)
	}
	return nil
}

// SaveCloneURLOverride records url as the clone URL for repoKey.
func (cm *ConfigManager) SaveCloneURLOverride(repoKey, url string) error {
	cfg, err := cm.Load()
	if err != nil {
		return err
	}
	if cfg.CloneURLOverrides == nil {
		cfg.CloneURLOverrides = make(map[string]string)
	}
	cfg.CloneURLOverrides[strings.ToLower(repoKey)] = url
	return cm.Save(cfg)
}

// Get returns the string form of a config key. Map entries are addressed as
// "cloneURLOverrides.<host/owner/repo>".
func (cm *ConfigManager) Get(key string) (string, error) {
	cfg, err := cm.Load()
	if err != nil {
		return "", err
	}

	name, sub, _ := strings.Cut(key, ".")
	switch name {
	case "databasePath":
		return cm.DatabasePath(cfg), nil
	case "logLevel":
		return cfg.LogLevel, nil
	case "logFormat":
		return cfg.LogFormat, nil
	case "cloneTimeout":
		return cfg.CloneTimeout, nil
	case "defaultMode":
		return cfg.DefaultMode, nil
	case "discoveryIgnore":
		return strings.Join(cfg.DiscoveryIgnore, ","), nil
	case "cloneURLOverrides":
		if sub != "" {
			return cfg.CloneURLOverrides[strings.ToLower(sub)], nil
		}
		keys := make([]string, 0, len(cfg.CloneURLOverrides))
		for k := range cfg.CloneURLOverrides {
			keys = append(keys, k+"="+cfg.CloneURLOverrides[k])
		}
		sort.Strings(keys)
		return strings.Join(keys, "\n"), nil
	}
	return "", fmt.Errorf("unknown config key %q", key)
}

// Set updates one config key and saves the file. An empty value resets the
// key (or deletes the map entry).
func (cm *ConfigManager) Set(key, value string) error {
	cfg, err := cm.Load()
	if err != nil {
		return err
	}

	name, sub, _ := strings.Cut(key, ".")
	switch name {
	case "databasePath":
		cfg.DatabasePath = value
	case "logLevel":
		cfg.LogLevel = value
	case "logFormat":
		cfg.LogFormat = value
	case "cloneTimeout":
		cfg.CloneTimeout = value
	case "defaultMode":
		cfg.DefaultMode = value
	case "discoveryIgnore":
		cfg.DiscoveryIgnore = nil
		for _, p := range strings.Split(value, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.DiscoveryIgnore = append(cfg.DiscoveryIgnore, p)
			}
		}
	case "cloneURLOverrides":
		if sub == "" {
			return fmt.Errorf("use cloneURLOverrides.<host/owner/repo>")
		}
		if cfg.CloneURLOverrides == nil {
			cfg.CloneURLOverrides = make(map[string]string)
		}
		if value == "" {
			delete(cfg.CloneURLOverrides, strings.ToLower(sub))
		} else {
			cfg.CloneURLOverrides[strings.ToLower(sub)] = value
		}
	default:
		return fmt.Errorf("unknown config key %q", key)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	return cm.Save(cfg)
}

// DatabasePath resolves the record store location.
func (cm *ConfigManager) DatabasePath(cfg *Config) string {
	if cfg.DatabasePath != "" {
		return expandPath(cfg.DatabasePath)
	}
	return filepath.Join(cm.configDir, dbFileName)
}

// Validate checks values that would otherwise fail later.
func (c *Config) Validate() error {
	if c.CloneTimeout != "" {
		if d, err := time.ParseDuration(c.CloneTimeout); err != nil || d <= 0 {
			return fmt.Errorf("cloneTimeout %q is not a positive duration", c.CloneTimeout)
		}
	}
	switch c.DefaultMode {
	case "", store.ModeCopy, store.ModeSymlink:
	default:
		return fmt.Errorf("defaultMode %q must be %q or %q", c.DefaultMode, store.ModeCopy, store.ModeSymlink)
	}
	if c.LogLevel != "" {
		if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("logLevel %q must be one of trace, debug, info, warn, error, fatal, panic", c.LogLevel)
		}
	}
	switch c.LogFormat {
	case "", "fmt", "json":
	default:
		return fmt.Errorf("logFormat %q must be fmt or json", c.LogFormat)
	}
	return nil
}

// CloneTimeoutDuration returns the parsed clone timeout.
func (c *Config) CloneTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.CloneTimeout)
	if err != nil || d <= 0 {
		return DefaultCloneTimeout
	}
	return d
}

// Mode returns the default sync mode.
func (c *Config) Mode() string {
	if c.DefaultMode == "" {
		return store.ModeSymlink
	}
	return c.DefaultMode
}

func defaultConfig() *Config {
	return &Config{
		LogLevel:     "warn",
		LogFormat:    "fmt",
		CloneTimeout: DefaultCloneTimeout.String(),
		DefaultMode:  store.ModeSymlink,
	}
}
