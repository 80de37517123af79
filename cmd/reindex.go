package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/minjae-ko/chatmarks/internal/config"
	"github.com/minjae-ko/chatmarks/internal/progress"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the annotation search index",
	Long:  `Regenerates the search document table from stored annotations and, for the openai provider, re-embeds every document into the vector index.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		database, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		settingsStore, session, store, err := openStores(cfg, database)
		if err != nil {
			return err
		}
		defer settingsStore.Close()
		defer session.Close()

		index, err := newSearchIndex(cfg, database, store)
		if err != nil {
			return err
		}

		reporter := progress.NewReporter()
		started := false
		n, err := index.Rebuild(context.Background(), func(done, total int) {
			if !started {
				reporter.Start(total)
				started = true
			}
			reporter.Update(done, fmt.Sprintf("Indexing %d/%d", done, total))
		})
		if started {
			reporter.Finish()
		}
		if err != nil {
			return fmt.Errorf("rebuilding index: %w", err)
		}

		if cfg.Search.Provider == config.SearchOpenAI {
			if err := index.Persist(cfg.DataDir); err != nil {
				return fmt.Errorf("persisting index: %w", err)
			}
		}

		fmt.Fprintf(os.Stderr, "Indexed %d documents (%s provider)\n", n, cfg.Search.Provider)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}
