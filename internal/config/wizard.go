package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .chatmarks.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to chatmarks! Let's configure your annotation server.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Data directory.
	dataDirPrompt := promptui.Prompt{
		Label:   "Data directory (chat transcripts and annotation database)",
		Default: cfg.DataDir,
	}
	dataDir, err := dataDirPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("data directory prompt: %w", err)
	}
	cfg.DataDir = dataDir

	// 2. Port.
	portPrompt := promptui.Prompt{
		Label:   "HTTP port",
		Default: strconv.Itoa(cfg.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 || n > 65535 {
				return fmt.Errorf("enter a port between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port prompt: %w", err)
	}
	cfg.Port, _ = strconv.Atoi(portStr)

	// 3. Search provider.
	searchPrompt := promptui.Select{
		Label: "Annotation search provider",
		Items: []string{string(SearchSubstring), string(SearchOpenAI)},
	}
	_, searchStr, err := searchPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("search provider selection: %w", err)
	}
	cfg.Search.Provider = SearchProvider(searchStr)

	if cfg.Search.Provider == SearchOpenAI {
		modelPrompt := promptui.Select{
			Label: "Embedding model",
			Items: []string{"text-embedding-3-small", "text-embedding-3-large"},
		}
		_, model, err := modelPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("embedding model selection: %w", err)
		}
		cfg.Search.EmbeddingModel = model

		if envVar := APIKeyEnvVar(cfg.Search.Provider); envVar != "" && os.Getenv(envVar) == "" {
			fmt.Printf("\nNote: Set %s in your environment before starting the server.\n", envVar)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	// Save to .chatmarks.yml.
	configPath := ".chatmarks.yml"
	if err := cfg.Save(configPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", configPath)
	return cfg, nil
}
