package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Port != 8790 {
		t.Errorf("expected default port 8790, got %d", cfg.Port)
	}
	if cfg.DataDir != "data" {
		t.Errorf("expected default data_dir %q, got %q", "data", cfg.DataDir)
	}
	if cfg.Search.Provider != SearchSubstring {
		t.Errorf("expected default search provider %q, got %q", SearchSubstring, cfg.Search.Provider)
	}
	if cfg.Reconcile.ChatChangedDelayMS != 500 {
		t.Errorf("expected chat_changed_delay_ms 500, got %d", cfg.Reconcile.ChatChangedDelayMS)
	}
	if cfg.Reconcile.MessageAddedDelayMS != 100 {
		t.Errorf("expected message_added_delay_ms 100, got %d", cfg.Reconcile.MessageAddedDelayMS)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.chatmarks.yml")

	original := DefaultConfig()
	original.Port = 9100
	original.DataDir = "chatdata"
	original.Search.Provider = SearchOpenAI
	original.Search.EmbeddingModel = "text-embedding-3-large"
	original.ChatInclude = []string{"**/*.jsonl", "archive/**/*.jsonl"}

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Port != 9100 {
		t.Errorf("Port = %d, want 9100", loaded.Port)
	}
	if loaded.DataDir != "chatdata" {
		t.Errorf("DataDir = %q, want %q", loaded.DataDir, "chatdata")
	}
	if loaded.Search.Provider != SearchOpenAI {
		t.Errorf("Search.Provider = %q, want %q", loaded.Search.Provider, SearchOpenAI)
	}
	if len(loaded.ChatInclude) != 2 {
		t.Errorf("ChatInclude = %v, want 2 patterns", loaded.ChatInclude)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != DefaultConfig().Port {
		t.Errorf("Port = %d, want default %d", cfg.Port, DefaultConfig().Port)
	}
}

func TestEnvOverride(t *testing.T) {
	os.Setenv("CHATMARKS_PORT", "9999")
	defer os.Unsetenv("CHATMARKS_PORT")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.yml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 9999 {
		t.Errorf("Port = %d, want env override 9999", cfg.Port)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid, got: %v", err)
	}

	bad := DefaultConfig()
	bad.Port = 0
	if err := bad.Validate(); err == nil {
		t.Error("expected error for port 0")
	}

	bad = DefaultConfig()
	bad.DataDir = ""
	if err := bad.Validate(); err == nil {
		t.Error("expected error for empty data_dir")
	}

	bad = DefaultConfig()
	bad.Search.Provider = "bogus"
	if err := bad.Validate(); err == nil {
		t.Error("expected error for unknown search provider")
	}

	bad = DefaultConfig()
	bad.Search.Provider = SearchOpenAI
	bad.Search.EmbeddingModel = ""
	if err := bad.Validate(); err == nil {
		t.Error("expected error for openai provider without embedding model")
	}
}

func TestAPIKeyEnvVar(t *testing.T) {
	if got := APIKeyEnvVar(SearchOpenAI); got != "OPENAI_API_KEY" {
		t.Errorf("APIKeyEnvVar(openai) = %q, want OPENAI_API_KEY", got)
	}
	if got := APIKeyEnvVar(SearchSubstring); got != "" {
		t.Errorf("APIKeyEnvVar(substring) = %q, want empty", got)
	}
}
