package config

// DefaultExcludes are chat file patterns ignored by default.
var DefaultExcludes = []string{
	"**/*.bak",
	"**/*.tmp",
	"**/.*",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:        8790,
		DataDir:     "data",
		ChatInclude: []string{"**/*.jsonl"},
		ChatExclude: DefaultExcludes,
		Reconcile: ReconcileConfig{
			ChatChangedDelayMS:  500,
			MessageAddedDelayMS: 100,
			ChatLoadedDelayMS:   500,
			ScrollDelayMS:       500,
		},
		Search: SearchConfig{
			Provider:       SearchSubstring,
			EmbeddingModel: "text-embedding-3-small",
		},
		SettingsDebounceMS: 300,
	}
}
