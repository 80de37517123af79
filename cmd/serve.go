package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/minjae-ko/chatmarks/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing annotation lookup and search tools for AI agents like Claude Code.`,
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

		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "chatmarks MCP server started on stdio (data=%s)\n", cfg.DataDir)

		srv := mcpserver.NewServer(store, index)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
