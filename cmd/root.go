package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"docgen/cache_store"
	"docgen/config"
	"docgen/constants/lipgloss"
	"docgen/generation"
	"docgen/orchestrator"
	"docgen/providers"
	"docgen/token_management"
	token_contracts "docgen/token_management/contracts"
)

// RootDependencies holds the components shared by every subcommand.
type RootDependencies struct {
	Config          *config.Config
	Cwd             string
	Client          *generation.Client
	Cache           *cache_store.Store
	TokenManagement token_contracts.ITokenManagement
}

var rootCmd = &cobra.Command{
	Use:   "docgen",
	Short: "AI-powered documentation comment generator for source code workspaces.",
	Long: `docgen analyzes a workspace, extracts its documentable declarations and
generates documentation comments for them with an AI model. Generated comments
are merged back into the source files, with caching so unchanged declarations
never trigger a second model invocation.`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		os.Exit(1)
	}
}

func init() {
	config.InitFlags(rootCmd)
}

// handleRootCommand loads configuration and constructs the shared
// dependencies. Config errors are fatal and have already exited by the time
// LoadConfigs returns.
func handleRootCommand(cmd *cobra.Command) *RootDependencies {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Error getting current directory: %v", err)))
		return nil
	}

	cfg := config.LoadConfigs(rootCmd, cwd)

	provider, err := providers.NewProvider(cfg.AI.Provider)
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		return nil
	}

	tokenManagement := token_management.NewTokenManager()
	client := generation.NewClient(provider, cfg.AI, tokenManagement)

	var cache *cache_store.Store
	if cfg.Cache.Enabled {
		cache, err = cache_store.NewStore(cfg.Cache.Dir, orchestrator.CacheVersion(cfg.Version, client.ModelID()))
		if err != nil {
			fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("Warning: cache disabled: %v", err)))
			cache = nil
		}
	}

	return &RootDependencies{
		Config:          cfg,
		Cwd:             cwd,
		Client:          client,
		Cache:           cache,
		TokenManagement: tokenManagement,
	}
}
