package config

// SearchProvider identifies how annotation search queries are answered.
type SearchProvider string

const (
	// SearchOpenAI embeds notes and highlight texts via the OpenAI API
	// and answers queries from a vector index.
	SearchOpenAI SearchProvider = "openai"
	// SearchSubstring answers queries with plain substring matching.
	SearchSubstring SearchProvider = "substring"
)

// Config is the top-level chatmarks configuration, corresponding to .chatmarks.yml.
type Config struct {
	Port    int    `yaml:"port" koanf:"port"`
	DataDir string `yaml:"data_dir" koanf:"data_dir"`

	// ChatInclude/ChatExclude are glob patterns applied to chat
	// transcript files under <data_dir>/chats.
	ChatInclude []string `yaml:"chat_include" koanf:"chat_include"`
	ChatExclude []string `yaml:"chat_exclude" koanf:"chat_exclude"`

	Reconcile ReconcileConfig `yaml:"reconcile" koanf:"reconcile"`
	Search    SearchConfig    `yaml:"search" koanf:"search"`

	// SettingsDebounceMS is the write-back debounce for the settings store.
	SettingsDebounceMS int `yaml:"settings_debounce_ms" koanf:"settings_debounce_ms"`

	// AllowAllOrigins relaxes CORS for development.
	AllowAllOrigins bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// ReconcileConfig holds the scheduling delays applied between a host
// trigger and the full re-synchronization pass.
type ReconcileConfig struct {
	ChatChangedDelayMS  int `yaml:"chat_changed_delay_ms" koanf:"chat_changed_delay_ms"`
	MessageAddedDelayMS int `yaml:"message_added_delay_ms" koanf:"message_added_delay_ms"`
	ChatLoadedDelayMS   int `yaml:"chat_loaded_delay_ms" koanf:"chat_loaded_delay_ms"`
	ScrollDelayMS       int `yaml:"scroll_delay_ms" koanf:"scroll_delay_ms"`
}

// SearchConfig holds annotation search settings.
type SearchConfig struct {
	Provider       SearchProvider `yaml:"provider" koanf:"provider"`
	EmbeddingModel string         `yaml:"embedding_model" koanf:"embedding_model"`
}
