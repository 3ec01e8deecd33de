// Package config loads and saves the YAML configuration file holding the
// timezone, task lists, LLM settings and routine preferences.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/morrow/internal/constants"
)

const fileName = "config.yaml"

// StorageConfig selects the task store and the lists it reads and writes.
type StorageConfig struct {
	Database   string `yaml:"database"`
	SourceList string `yaml:"source_list"`
	OutputList string `yaml:"output_list"`
}

// LLMConfig configures the estimator and polisher backend.
type LLMConfig struct {
	APIFormat         string `yaml:"api_format"`
	BaseURL           string `yaml:"base_url"`
	Model             string `yaml:"model"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
	TimeoutSeconds    int    `yaml:"timeout_seconds"`
}

// Timeout returns the request timeout as a duration.
func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// DaemonConfig configures background planning.
type DaemonConfig struct {
	Cron string `yaml:"cron"`
}

// Config models config.yaml.
type Config struct {
	Timezone    string        `yaml:"timezone"`
	Storage     StorageConfig `yaml:"storage"`
	LLM         LLMConfig     `yaml:"llm"`
	Daemon      DaemonConfig  `yaml:"daemon"`
	Preferences Preferences   `yaml:"preferences"`
}

// Default returns a configuration with every field set.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// DefaultPreferences are written by `morrow init` when the user skips the form.
func DefaultPreferences() Preferences {
	var p Preferences
	p.Set(constants.PrefWakeUp, "7:30左右")
	p.Set(constants.PrefSleep, "尽量23点前睡觉")
	p.Set(constants.PrefLunch, "12点到1点之间")
	p.Set(constants.PrefDinner, "晚上6点半到7点半")
	return p
}

func (c *Config) applyDefaults() {
	if c.Timezone == "" {
		c.Timezone = constants.DefaultTimezone
	}
	if c.Storage.SourceList == "" {
		c.Storage.SourceList = constants.DefaultSourceList
	}
	if c.Storage.OutputList == "" {
		c.Storage.OutputList = constants.DefaultOutputList
	}
	if c.LLM.APIFormat == "" {
		c.LLM.APIFormat = "openai"
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = constants.DefaultLLMBaseURL
	}
	if c.LLM.Model == "" {
		c.LLM.Model = constants.DefaultLLMModel
	}
	if c.LLM.RequestsPerMinute <= 0 {
		c.LLM.RequestsPerMinute = constants.DefaultRequestsPerMinute
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = int(constants.DefaultLLMTimeout / time.Second)
	}
	if c.Daemon.Cron == "" {
		c.Daemon.Cron = constants.DefaultDaemonCron
	}
}

// Dir returns the default configuration directory.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(base, constants.AppName), nil
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// DefaultDatabasePath returns the sqlite file placed next to the config file.
func DefaultDatabasePath(configPath string) string {
	return filepath.Join(filepath.Dir(configPath), constants.AppName+".db")
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// Load reads the config file. A missing file yields defaults; missing keys
// get per-field defaults. The database path defaults to a file beside the
// config.
func Load(path string) (*Config, error) {
	path = ExpandHome(path)
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyDefaults()
	if cfg.Storage.Database == "" {
		cfg.Storage.Database = DefaultDatabasePath(path)
	}
	cfg.Storage.Database = ExpandHome(cfg.Storage.Database)
	return cfg, nil
}

// Exists reports whether a config file is present at path.
func Exists(path string) bool {
	_, err := os.Stat(ExpandHome(path))
	return err == nil
}

const fileHeader = `# morrow configuration
# Preferences are free text; times like "7:30", "7点半" or "下午3点" are understood.
`

var keyComments = map[string]string{
	"timezone":    "# IANA timezone used to decide which day is \"tomorrow\".",
	"storage":     "# Task store: a sqlite file path, or a postgres:// URL without a password.",
	"llm":         "# Estimator and polisher backend. api_format: openai, anthropic or gemini.\n# The API key comes from MORROW_LLM_API_KEY or `morrow auth set-key`.",
	"daemon":      "# Cron expression (5 fields) for `morrow daemon`.",
	"preferences": "# Daily routine. Known keys: wake_up, sleep, breakfast, lunch, dinner, shower.\n# `bio` is passed to the language model as context.",
}

// Save writes cfg to path as a commented YAML document, creating parent
// directories as needed.
func Save(path string, cfg *Config) error {
	path = ExpandHome(path)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	var doc yaml.Node
	if err := doc.Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		if c, ok := keyComments[doc.Content[i].Value]; ok {
			doc.Content[i].HeadComment = c
		}
	}

	var buf bytes.Buffer
	buf.WriteString(fileHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
