package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "chatmarks",
	Short: "Bookmarks, notes, and highlights for chat transcripts",
	Long: `Chatmarks keeps a persistent annotation layer over your chat
transcripts: bookmark messages, attach notes, and highlight passages
in any color. Annotations survive across sessions and chats, stay in
sync as messages are rendered, and are searchable from the CLI, the
HTTP API, and MCP-connected AI agents.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".chatmarks.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
