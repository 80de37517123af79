package cmd

import (
	"github.com/spf13/cobra"

	"github.com/minjae-ko/chatmarks/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize chatmarks configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure chatmarks and generates a .chatmarks.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
