package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/minjae-ko/chatmarks/internal/annotations"
	"github.com/minjae-ko/chatmarks/internal/config"
	"github.com/minjae-ko/chatmarks/internal/db"
	"github.com/minjae-ko/chatmarks/internal/search"
	"github.com/minjae-ko/chatmarks/internal/settings"
	"github.com/minjae-ko/chatmarks/internal/transcript"
)

// loadConfig loads and validates the configuration file.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// openDatabase opens the annotation database under the data directory.
func openDatabase(cfg *config.Config) (*db.DB, error) {
	dbPath := filepath.Join(cfg.DataDir, "chatmarks.db")
	database, err := db.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return database, nil
}

// openStores wires the settings store, transcript session, and
// annotation store over an open database.
func openStores(cfg *config.Config, database *db.DB) (*settings.Store, *transcript.Session, *annotations.Store, error) {
	debounce := time.Duration(cfg.SettingsDebounceMS) * time.Millisecond
	settingsStore, err := settings.NewStore(database, debounce)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening settings store: %w", err)
	}

	catalog := transcript.NewCatalog(cfg.DataDir, cfg.ChatInclude, cfg.ChatExclude)
	session := transcript.NewSession(catalog)

	store, err := annotations.NewStore(settingsStore, session)
	if err != nil {
		settingsStore.Close()
		return nil, nil, nil, fmt.Errorf("opening annotation store: %w", err)
	}
	return settingsStore, session, store, nil
}

// newSearchIndex builds the search index for the configured provider.
// For the openai provider it tries to restore a persisted embedding
// index from the data directory; a missing one just means the index
// starts empty until the next reindex.
func newSearchIndex(cfg *config.Config, database *db.DB, store *annotations.Store) (*search.Index, error) {
	var vector *search.Vector
	if cfg.Search.Provider == config.SearchOpenAI {
		envVar := config.APIKeyEnvVar(cfg.Search.Provider)
		apiKey := os.Getenv(envVar)
		if apiKey == "" {
			return nil, fmt.Errorf("search provider %q requires %s to be set", cfg.Search.Provider, envVar)
		}

		embedder := search.NewOpenAIEmbedder(apiKey, cfg.Search.EmbeddingModel)
		v, err := search.NewVector(embedder)
		if err != nil {
			return nil, fmt.Errorf("creating vector index: %w", err)
		}
		if err := v.Load(cfg.DataDir); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not load search index from %s: %v\n", cfg.DataDir, err)
			fmt.Fprintf(os.Stderr, "Run `chatmarks reindex` to build it.\n")
		}
		vector = v
	}

	index, err := search.NewIndex(database, store, cfg.Search.Provider, vector)
	if err != nil {
		return nil, fmt.Errorf("creating search index: %w", err)
	}

	// The substring provider only touches SQLite, so keeping its
	// documents fresh on every start is cheap. Embedding providers
	// wait for an explicit reindex.
	if cfg.Search.Provider == config.SearchSubstring {
		if _, err := index.Rebuild(context.Background(), nil); err != nil {
			return nil, fmt.Errorf("refreshing search documents: %w", err)
		}
	}
	return index, nil
}
