package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (CHATMARKS_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: CHATMARKS_PORT -> port, etc.
	if err := k.Load(env.Provider("CHATMARKS_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "CHATMARKS_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validSearchProviders is the set of recognized search provider values.
var validSearchProviders = map[SearchProvider]bool{
	SearchOpenAI:    true,
	SearchSubstring: true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}

	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if c.Search.Provider != "" && !validSearchProviders[c.Search.Provider] {
		return fmt.Errorf("invalid search provider %q: must be one of openai, substring", c.Search.Provider)
	}

	if c.Search.Provider == SearchOpenAI && c.Search.EmbeddingModel == "" {
		return fmt.Errorf("search.embedding_model is required for the openai provider")
	}

	if c.SettingsDebounceMS < 0 {
		return fmt.Errorf("settings_debounce_ms must be non-negative")
	}

	for _, d := range []int{
		c.Reconcile.ChatChangedDelayMS,
		c.Reconcile.MessageAddedDelayMS,
		c.Reconcile.ChatLoadedDelayMS,
		c.Reconcile.ScrollDelayMS,
	} {
		if d < 0 {
			return fmt.Errorf("reconcile delays must be non-negative")
		}
	}

	return nil
}

// APIKeyEnvVar returns the conventional environment variable name for
// the API key of the given search provider.
func APIKeyEnvVar(provider SearchProvider) string {
	if provider == SearchOpenAI {
		return "OPENAI_API_KEY"
	}
	return ""
}
