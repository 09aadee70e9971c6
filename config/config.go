package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"docgen/constants/lipgloss"
)

// Config represents the structure of the configuration file
type Config struct {
	Version   string          `mapstructure:"version"`
	Theme     string          `mapstructure:"theme"`
	Workspace WorkspaceConfig `mapstructure:"workspace"`
	AI        AIConfig        `mapstructure:"ai"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Merge     MergeConfig     `mapstructure:"merge"`
	Plugins   []PluginConfig  `mapstructure:"plugins"`
}

// WorkspaceConfig controls discovery and batching.
type WorkspaceConfig struct {
	Include         []string `mapstructure:"include"`
	Ignore          []string `mapstructure:"ignore"`
	TargetDirs      []string `mapstructure:"target_dirs"`
	BatchTokenLimit int      `mapstructure:"batch_token_limit"`
	MaxFileSizeKB   int      `mapstructure:"max_file_size_kb"`
	FileConcurrency int      `mapstructure:"file_concurrency"`
}

// AIConfig controls the generation client and provider selection.
type AIConfig struct {
	Provider             string   `mapstructure:"provider"`
	BaseURL              string   `mapstructure:"base_url"`
	Model                string   `mapstructure:"model"`
	EmbeddingModel       string   `mapstructure:"embedding_model"`
	ApiKey               string   `mapstructure:"api_key"`
	Temperature          *float32 `mapstructure:"temperature"`
	MaxOutputTokens      int      `mapstructure:"max_output_tokens"`
	MaxRetries           int      `mapstructure:"max_retries"`
	RetryBaseDelayMs     int      `mapstructure:"retry_base_delay_ms"`
	MinResponseLength    int      `mapstructure:"min_response_length"`
	MaxSnippetLength     int      `mapstructure:"max_snippet_length"`
	RequestConcurrency   int      `mapstructure:"request_concurrency"`
	MinRequestIntervalMs int      `mapstructure:"min_request_interval_ms"`
}

// EmbeddingConfig controls the relationship index. The whole stage is
// skippable: with Enabled=false every node proceeds with no related symbols.
type EmbeddingConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	BatchSize  int     `mapstructure:"batch_size"`
	MinScore   float64 `mapstructure:"min_score"`
	MaxRelated int     `mapstructure:"max_related"`
}

// CacheConfig controls the generation result cache.
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
}

// MergeConfig controls doc write-back behavior.
type MergeConfig struct {
	Overwrite bool `mapstructure:"overwrite"`
	Merge     bool `mapstructure:"merge"`
	DryRun    bool `mapstructure:"dry_run"`
}

// PluginConfig declares one plugin registration.
type PluginConfig struct {
	Name    string            `mapstructure:"name"`
	Enabled bool              `mapstructure:"enabled"`
	Options map[string]string `mapstructure:"options"`
}

// DefaultConfig values
var DefaultConfig = Config{
	Version: "1.0.0",
	Theme:   "dracula",
	Workspace: WorkspaceConfig{
		Include:         []string{"**/*.go", "**/*.js", "**/*.ts", "**/*.py", "**/*.java"},
		Ignore:          []string{"**/node_modules/**", "**/vendor/**", "**/.git/**", "**/dist/**", "**/build/**"},
		BatchTokenLimit: 50000,
		MaxFileSizeKB:   100,
		FileConcurrency: 4,
	},
	AI: AIConfig{
		Provider:             "openai",
		BaseURL:              "",
		Model:                "gpt-4o",
		EmbeddingModel:       "text-embedding-3-small",
		MaxOutputTokens:      1024,
		MaxRetries:           3,
		RetryBaseDelayMs:     500,
		MinResponseLength:    10,
		MaxSnippetLength:     6000,
		RequestConcurrency:   4,
		MinRequestIntervalMs: 200,
	},
	Embedding: EmbeddingConfig{
		Enabled:    false,
		BatchSize:  100,
		MinScore:   0.7,
		MaxRelated: 5,
	},
	Cache: CacheConfig{
		Enabled: true,
		Dir:     "",
	},
	Merge: MergeConfig{},
}

// cfgFile holds the path to the configuration file (set via CLI)
var cfgFile string

// LoadConfigs initializes the configuration from file, flags, and environment
// variables, and returns the final config. Invalid configuration is fatal:
// the run cannot produce valid output, so it aborts before any processing.
func LoadConfigs(rootCmd *cobra.Command, cwd string) *Config {
	var config *Config

	setDefaults()

	viper.AutomaticEnv()
	bindEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Error reading config file: %v", err)))
			os.Exit(1)
		}
	} else {
		viper.SetConfigName("docgen-config")
		viper.AddConfigPath(cwd)
		viper.SetConfigType("yaml")
		if err := viper.ReadInConfig(); err != nil {
			viper.SetConfigType("json")
			if err := viper.ReadInConfig(); err != nil {
				fmt.Println(lipgloss.Yellow.Render("No configuration file found, using defaults"))
			}
		}
	}

	bindFlags(rootCmd)

	if err := viper.Unmarshal(&config); err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Unable to decode into struct: %v", err)))
		os.Exit(1)
	}

	if err := config.Validate(); err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Invalid configuration: %v", err)))
		os.Exit(1)
	}

	return config
}

// Validate checks the configuration for errors that would make the whole run
// meaningless. These are the only errors that abort a run.
func (c *Config) Validate() error {
	switch strings.ToLower(c.AI.Provider) {
	case "openai", "anthropic", "ollama":
	default:
		return fmt.Errorf("unknown AI provider %q (supported: openai, anthropic, ollama)", c.AI.Provider)
	}
	if c.AI.Model == "" {
		return fmt.Errorf("ai.model must not be empty")
	}
	if c.Workspace.BatchTokenLimit <= 0 {
		return fmt.Errorf("workspace.batch_token_limit must be positive, got %d", c.Workspace.BatchTokenLimit)
	}
	if c.Workspace.FileConcurrency <= 0 {
		return fmt.Errorf("workspace.file_concurrency must be positive, got %d", c.Workspace.FileConcurrency)
	}
	if c.AI.RequestConcurrency <= 0 {
		return fmt.Errorf("ai.request_concurrency must be positive, got %d", c.AI.RequestConcurrency)
	}
	if c.AI.MaxRetries < 0 {
		return fmt.Errorf("ai.max_retries must not be negative, got %d", c.AI.MaxRetries)
	}
	if c.Embedding.Enabled {
		if c.Embedding.BatchSize <= 0 {
			return fmt.Errorf("embedding.batch_size must be positive, got %d", c.Embedding.BatchSize)
		}
		if c.Embedding.MinScore < -1 || c.Embedding.MinScore > 1 {
			return fmt.Errorf("embedding.min_score must be within [-1, 1], got %v", c.Embedding.MinScore)
		}
		if c.Embedding.MaxRelated <= 0 {
			return fmt.Errorf("embedding.max_related must be positive, got %d", c.Embedding.MaxRelated)
		}
	}
	if c.Merge.Overwrite && c.Merge.Merge {
		return fmt.Errorf("merge.overwrite and merge.merge are mutually exclusive")
	}
	return nil
}

// setDefaults sets all default configuration values
func setDefaults() {
	viper.SetDefault("version", DefaultConfig.Version)
	viper.SetDefault("theme", DefaultConfig.Theme)
	viper.SetDefault("workspace.include", DefaultConfig.Workspace.Include)
	viper.SetDefault("workspace.ignore", DefaultConfig.Workspace.Ignore)
	viper.SetDefault("workspace.target_dirs", DefaultConfig.Workspace.TargetDirs)
	viper.SetDefault("workspace.batch_token_limit", DefaultConfig.Workspace.BatchTokenLimit)
	viper.SetDefault("workspace.max_file_size_kb", DefaultConfig.Workspace.MaxFileSizeKB)
	viper.SetDefault("workspace.file_concurrency", DefaultConfig.Workspace.FileConcurrency)
	viper.SetDefault("ai.provider", DefaultConfig.AI.Provider)
	viper.SetDefault("ai.base_url", DefaultConfig.AI.BaseURL)
	viper.SetDefault("ai.model", DefaultConfig.AI.Model)
	viper.SetDefault("ai.embedding_model", DefaultConfig.AI.EmbeddingModel)
	viper.SetDefault("ai.api_key", DefaultConfig.AI.ApiKey)
	viper.SetDefault("ai.max_output_tokens", DefaultConfig.AI.MaxOutputTokens)
	viper.SetDefault("ai.max_retries", DefaultConfig.AI.MaxRetries)
	viper.SetDefault("ai.retry_base_delay_ms", DefaultConfig.AI.RetryBaseDelayMs)
	viper.SetDefault("ai.min_response_length", DefaultConfig.AI.MinResponseLength)
	viper.SetDefault("ai.max_snippet_length", DefaultConfig.AI.MaxSnippetLength)
	viper.SetDefault("ai.request_concurrency", DefaultConfig.AI.RequestConcurrency)
	viper.SetDefault("ai.min_request_interval_ms", DefaultConfig.AI.MinRequestIntervalMs)
	viper.SetDefault("embedding.enabled", DefaultConfig.Embedding.Enabled)
	viper.SetDefault("embedding.batch_size", DefaultConfig.Embedding.BatchSize)
	viper.SetDefault("embedding.min_score", DefaultConfig.Embedding.MinScore)
	viper.SetDefault("embedding.max_related", DefaultConfig.Embedding.MaxRelated)
	viper.SetDefault("cache.enabled", DefaultConfig.Cache.Enabled)
	viper.SetDefault("cache.dir", DefaultConfig.Cache.Dir)
	viper.SetDefault("merge.overwrite", DefaultConfig.Merge.Overwrite)
	viper.SetDefault("merge.merge", DefaultConfig.Merge.Merge)
	viper.SetDefault("merge.dry_run", DefaultConfig.Merge.DryRun)
}

// bindEnv explicitly binds environment variables to configuration keys
func bindEnv() {
	_ = viper.BindEnv("theme", "THEME")
	_ = viper.BindEnv("ai.provider", "PROVIDER")
	_ = viper.BindEnv("ai.base_url", "BASE_URL")
	_ = viper.BindEnv("ai.model", "MODEL")
	_ = viper.BindEnv("ai.embedding_model", "EMBEDDING_MODEL")
	_ = viper.BindEnv("ai.temperature", "TEMPERATURE")
	_ = viper.BindEnv("ai.api_key", "API_KEY")
	_ = viper.BindEnv("cache.enabled", "ENABLE_CACHE")
}

// bindFlags binds the CLI flags to configuration values.
func bindFlags(rootCmd *cobra.Command) {
	_ = viper.BindPFlag("theme", rootCmd.PersistentFlags().Lookup("theme"))
	_ = viper.BindPFlag("ai.provider", rootCmd.PersistentFlags().Lookup("provider"))
	_ = viper.BindPFlag("ai.base_url", rootCmd.PersistentFlags().Lookup("base_url"))
	_ = viper.BindPFlag("ai.model", rootCmd.PersistentFlags().Lookup("model"))
	_ = viper.BindPFlag("ai.embedding_model", rootCmd.PersistentFlags().Lookup("embedding_model"))
	_ = viper.BindPFlag("ai.temperature", rootCmd.PersistentFlags().Lookup("temperature"))
	_ = viper.BindPFlag("ai.api_key", rootCmd.PersistentFlags().Lookup("api_key"))
	_ = viper.BindPFlag("cache.enabled", rootCmd.PersistentFlags().Lookup("enable_cache"))
	_ = viper.BindPFlag("embedding.enabled", rootCmd.PersistentFlags().Lookup("embeddings"))
	_ = viper.BindPFlag("merge.overwrite", rootCmd.PersistentFlags().Lookup("overwrite"))
	_ = viper.BindPFlag("merge.merge", rootCmd.PersistentFlags().Lookup("merge"))
	_ = viper.BindPFlag("merge.dry_run", rootCmd.PersistentFlags().Lookup("dry-run"))
}

// InitFlags initializes the flags for the root command.
func InitFlags(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Specifies the path to a configuration file (JSON or YAML) that contains all the settings for the application.")

	rootCmd.PersistentFlags().String("theme", DefaultConfig.Theme, "Set customize theme for rendering code blocks. (e.g., 'dracula', 'light', 'dark')")
	rootCmd.PersistentFlags().Bool("enable_cache", DefaultConfig.Cache.Enabled, "Enable or disable the generation result cache")
	rootCmd.PersistentFlags().Bool("embeddings", DefaultConfig.Embedding.Enabled, "Enable embedding-based related symbol discovery")
	rootCmd.PersistentFlags().Bool("overwrite", false, "Replace existing doc comments with generated ones")
	rootCmd.PersistentFlags().Bool("merge", false, "Merge generated content into existing doc comments")
	rootCmd.PersistentFlags().Bool("dry-run", false, "Report intended changes without writing any file")

	rootCmd.Flags().BoolP("version", "v", false, "Specifies the version of the application.")

	rootCmd.PersistentFlags().String("provider", DefaultConfig.AI.Provider, "The name of the AI provider (e.g., 'openai', 'anthropic', 'ollama')")
	rootCmd.PersistentFlags().String("base_url", DefaultConfig.AI.BaseURL, "The base URL of the AI provider.")
	rootCmd.PersistentFlags().String("model", DefaultConfig.AI.Model, "The name of the model used for doc generation, such as 'gpt-4o'.")
	rootCmd.PersistentFlags().String("embedding_model", DefaultConfig.AI.EmbeddingModel, "The name of the embedding model used for related symbol discovery.")
	rootCmd.PersistentFlags().Float32("temperature", 0, "Adjusts the AI model's creativity (0-1, default 0.2).")
	rootCmd.PersistentFlags().String("api_key", DefaultConfig.AI.ApiKey, "The API key used to authenticate with the AI service provider.")
}

// GetConfigFileType returns the type of the configuration file based on its extension
func GetConfigFileType(filename string) string {
	if strings.HasSuffix(filename, ".json") {
		return "json"
	} else if strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml") {
		return "yaml"
	}
	return ""
}
