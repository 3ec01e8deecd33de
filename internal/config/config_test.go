package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/morrow/internal/constants"
)

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Timezone != constants.DefaultTimezone {
		t.Errorf("timezone = %q", cfg.Timezone)
	}
	if cfg.Storage.SourceList != constants.DefaultSourceList || cfg.Storage.OutputList != constants.DefaultOutputList {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Storage.Database != filepath.Join(filepath.Dir(path), "morrow.db") {
		t.Errorf("database = %q", cfg.Storage.Database)
	}
	if cfg.LLM.RequestsPerMinute != constants.DefaultRequestsPerMinute || cfg.LLM.Timeout() != constants.DefaultLLMTimeout {
		t.Errorf("llm = %+v", cfg.LLM)
	}
	if cfg.Daemon.Cron != constants.DefaultDaemonCron {
		t.Errorf("cron = %q", cfg.Daemon.Cron)
	}
}

func TestLoadPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `timezone: Europe/Berlin
llm:
  api_format: anthropic
  model: claude-test
preferences:
  bio: |
    I am a night owl.
    I like long focus blocks.
  wake_up: 9点
  sleep: "1:00"
  gym: evenings
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Timezone != "Europe/Berlin" || cfg.LLM.APIFormat != "anthropic" || cfg.LLM.Model != "claude-test" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.LLM.BaseURL != constants.DefaultLLMBaseURL {
		t.Errorf("missing base_url should default, got %q", cfg.LLM.BaseURL)
	}

	prefs := cfg.Preferences
	if prefs.Bio != "I am a night owl.\nI like long focus blocks." {
		t.Errorf("bio = %q", prefs.Bio)
	}
	wantKeys := []string{"wake_up", "sleep", "gym"}
	if len(prefs.Entries) != len(wantKeys) {
		t.Fatalf("entries = %+v", prefs.Entries)
	}
	for i, k := range wantKeys {
		if prefs.Entries[i].Key != k {
			t.Errorf("entry %d = %q, want %q", i, prefs.Entries[i].Key, k)
		}
	}
	if v, _ := prefs.Get("sleep"); v != "1:00" {
		t.Errorf("sleep = %q", v)
	}
	if _, ok := prefs.Map()["bio"]; ok {
		t.Error("bio must not be part of the routine map")
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", "timezone: [unclosed"},
		{"preferences not a mapping", "preferences:\n  - a\n  - b\n"},
		{"nested preference", "preferences:\n  wake_up:\n    time: 7:00\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Storage.Database = "/tmp/morrow.db"
	cfg.Preferences = DefaultPreferences()
	cfg.Preferences.Set("bio", "line one\nline two")
	cfg.Preferences.Set("shower", "晚上9点")

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(raw)
	if !strings.HasPrefix(text, "# morrow configuration") {
		t.Errorf("missing header:\n%s", text)
	}
	if !strings.Contains(text, "# Daily routine.") {
		t.Errorf("missing preferences comment:\n%s", text)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Preferences.Bio != "line one\nline two" {
		t.Errorf("bio = %q", loaded.Preferences.Bio)
	}
	if len(loaded.Preferences.Entries) != 5 || loaded.Preferences.Entries[4].Key != "shower" {
		t.Errorf("entries = %+v", loaded.Preferences.Entries)
	}
	if v, _ := loaded.Preferences.Get("wake_up"); v != "7:30左右" {
		t.Errorf("wake_up = %q", v)
	}
	if loaded.Storage.Database != "/tmp/morrow.db" {
		t.Errorf("database = %q", loaded.Storage.Database)
	}
}

func TestPreferencesSet(t *testing.T) {
	var p Preferences
	p.Set("lunch", "12:00")
	p.Set("dinner", "18:00")
	p.Set("lunch", "12:30")

	if len(p.Entries) != 2 || p.Entries[0].Value != "12:30" {
		t.Errorf("entries = %+v", p.Entries)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := ExpandHome("~/x/y"); got != filepath.Join(home, "x/y") {
		t.Errorf("ExpandHome = %q", got)
	}
	if got := ExpandHome("/abs/path"); got != "/abs/path" {
		t.Errorf("ExpandHome changed absolute path: %q", got)
	}
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("timezone: UTC\n"), 0600); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *Config, 1)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(cfg *Config) {
			select {
			case changes <- cfg:
			default:
			}
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte("timezone: Europe/Paris\n"), 0600); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-changes:
		if cfg.Timezone != "Europe/Paris" {
			t.Errorf("reloaded timezone = %q", cfg.Timezone)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch returned %v", err)
	}
}
