package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAddr          = "127.0.0.1:3336"
	DefaultHistoryLimit  = 1000
	DefaultMarkdownStyle = "dark"
	DefaultLogLevel      = "warn"
)

// Config files tried in order; the first one present wins.
var configFileNames = []string{"config.yaml", "config.yml", "config.jsonc", "config.json"}

type Config struct {
	// Addr is the web listen address.
	Addr string `yaml:"addr" json:"addr"`

	// Catalog optionally points at a TSV catalog replacing the built-in one.
	Catalog string `yaml:"catalog,omitempty" json:"catalog,omitempty"`

	LogLevel     string `yaml:"logLevel" json:"logLevel"`
	HistoryLimit int    `yaml:"historyLimit" json:"historyLimit"`

	// BackupCompression is one of none, lz4, zstd.
	BackupCompression string `yaml:"backupCompression" json:"backupCompression"`

	// MarkdownStyle is a glamour standard style name.
	MarkdownStyle string `yaml:"markdownStyle" json:"markdownStyle"`

	// Source is the file the config was read from; empty for defaults.
	Source string `yaml:"-" json:"source,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Addr:              DefaultAddr,
		LogLevel:          DefaultLogLevel,
		HistoryLimit:      DefaultHistoryLimit,
		BackupCompression: CompressionZstd.String(),
		MarkdownStyle:     DefaultMarkdownStyle,
	}
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.musicalist).
	if v := strings.TrimSpace(os.Getenv("MUSICALIST_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".musicalist"), nil
}

// LoadConfig reads the first config file found in dir over the defaults,
// then applies MUSICALIST_* environment overrides. A missing file is not an
// error.
func LoadConfig(dir string) (*Config, error) {
	cfg := DefaultConfig()
	for _, name := range configFileNames {
		path := filepath.Join(dir, name)
		b, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if err := cfg.decode(name, b); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
		cfg.Source = path
		break
	}
	cfg.applyEnv()
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(name string, b []byte) error {
	switch filepath.Ext(name) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(b, c)
	default:
		return json.Unmarshal(jsonc.ToJSON(b), c)
	}
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("MUSICALIST_ADDR")); v != "" {
		c.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("MUSICALIST_CATALOG")); v != "" {
		c.Catalog = v
	}
	if v := strings.TrimSpace(os.Getenv("MUSICALIST_LOG_LEVEL")); v != "" {
		c.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv("MUSICALIST_HISTORY_LIMIT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.HistoryLimit = n
		}
	}
}

func (c *Config) normalize() error {
	if strings.TrimSpace(c.Addr) == "" {
		c.Addr = DefaultAddr
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = DefaultHistoryLimit
	}
	if strings.TrimSpace(c.MarkdownStyle) == "" {
		c.MarkdownStyle = DefaultMarkdownStyle
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if _, err := ParseCompression(c.BackupCompression); err != nil {
		return fmt.Errorf("config: backupCompression: %w", err)
	}
	return nil
}

// SaveConfig writes cfg as config.yaml in dir, keeping a .bak of the
// previous file.
func SaveConfig(dir string, cfg *Config) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	path := filepath.Join(dir, "config.yaml")
	if prev, err := os.ReadFile(path); err == nil && len(prev) > 0 {
		_ = atomicWriteFile(dir, "config.yaml.bak.*.tmp", path+".bak", prev, 0o644)
	}
	return atomicWriteFile(dir, "config.yaml.*.tmp", path, b, 0o600)
}
