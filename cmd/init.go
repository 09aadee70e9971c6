package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"docgen/config"
	"docgen/constants/lipgloss"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter docgen-config.yml in the current directory",
	Run: func(cmd *cobra.Command, args []string) {
		handleInitCommand()
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func handleInitCommand() {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Error getting current directory: %v", err)))
		return
	}

	path := filepath.Join(cwd, "docgen-config.yml")
	if _, err := os.Stat(path); err == nil {
		fmt.Println(lipgloss.Yellow.Render("docgen-config.yml already exists, leaving it untouched."))
		return
	}

	defaults := config.DefaultConfig
	starter := map[string]interface{}{
		"version": defaults.Version,
		"theme":   defaults.Theme,
		"ai": map[string]interface{}{
			"provider":        defaults.AI.Provider,
			"model":           defaults.AI.Model,
			"embedding_model": defaults.AI.EmbeddingModel,
			"max_retries":     defaults.AI.MaxRetries,
		},
		"workspace": map[string]interface{}{
			"batch_token_limit": defaults.Workspace.BatchTokenLimit,
			"max_file_size_kb":  defaults.Workspace.MaxFileSizeKB,
		},
		"embedding": map[string]interface{}{
			"enabled":     defaults.Embedding.Enabled,
			"min_score":   defaults.Embedding.MinScore,
			"max_related": defaults.Embedding.MaxRelated,
		},
		"cache": map[string]interface{}{
			"enabled": defaults.Cache.Enabled,
		},
		"merge": map[string]interface{}{
			"overwrite": false,
			"merge":     false,
		},
	}

	data, err := yaml.Marshal(starter)
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Error building config: %v", err)))
		return
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Error writing config: %v", err)))
		return
	}
	fmt.Println(lipgloss.Green.Render("✓ Wrote docgen-config.yml"))
}
