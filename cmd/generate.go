package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"docgen/constants/lipgloss"
	"docgen/context_builder"
	"docgen/merge_engine"
	"docgen/models"
	"docgen/orchestrator"
	"docgen/plugin_pipeline"
	"docgen/syntax"
	"docgen/utils"
	"docgen/workspace_analyzer"
)

var generateCmd = &cobra.Command{
	Use:   "generate [dirs...]",
	Short: "Generate documentation comments for the workspace",
	Long: `The 'generate' subcommand runs the full pipeline: workspace analysis,
optional embedding-based related-symbol discovery, AI doc generation with
caching, and merge of the results back into the source files.`,
	Run: func(cmd *cobra.Command, args []string) {
		rootDependencies := handleRootCommand(cmd)
		if rootDependencies == nil {
			return
		}
		handleGenerateCommand(rootDependencies, cmd, args)
	},
}

func init() {
	generateCmd.Flags().Bool("force", false, "Re-invoke the model even for cached declarations")
	generateCmd.Flags().Bool("no-embeddings", false, "Disable related-symbol discovery for this run")
	rootCmd.AddCommand(generateCmd)
}

func handleGenerateCommand(deps *RootDependencies, cmd *cobra.Command, args []string) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go utils.GracefulShutdown(ctx, nil, func() {
		deps.TokenManagement.ClearToken()
	})

	force, _ := cmd.Flags().GetBool("force")
	if noEmbeddings, _ := cmd.Flags().GetBool("no-embeddings"); noEmbeddings {
		deps.Config.Embedding.Enabled = false
	}
	if len(args) > 0 {
		deps.Config.Workspace.TargetDirs = args
	}

	analyzer := workspace_analyzer.NewAnalyzer(deps.Cwd, deps.Config.Workspace, syntax.NewExtractor(), deps.TokenManagement)
	builder := context_builder.NewBuilder(deps.Config.AI.MaxSnippetLength, deps.Config.Embedding.MinScore, deps.Config.Embedding.MaxRelated)
	engine := merge_engine.NewEngine(deps.Config.Merge)

	pipeline := plugin_pipeline.NewPipeline()
	normalizer := plugin_pipeline.NewNormalizerPlugin()
	normalizerOpts := map[string]string(nil)
	for _, pluginCfg := range deps.Config.Plugins {
		if pluginCfg.Name == normalizer.Name() {
			normalizerOpts = pluginCfg.Options
			if !pluginCfg.Enabled {
				normalizer.Disable()
			}
			continue
		}
		if pluginCfg.Enabled {
			fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("Warning: unknown plugin %q ignored", pluginCfg.Name)))
		}
	}
	if err := pipeline.Register(normalizer, normalizerOpts); err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		return
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("documenting"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)

	opts := orchestrator.Options{
		Force:    force,
		Progress: func() { _ = bar.Add(1) },
	}
	if deps.Config.Merge.DryRun {
		opts.Preview = func(filePath string, node models.DeclarationNode, doc string) {
			fmt.Printf("\n%s %s\n", lipgloss.Info.Render(filePath), node.Name)
			var removed []string
			if node.HasDoc {
				removed = strings.Split(node.DocComment, "\n")
			}
			utils.RenderDocPreview(os.Stdout, removed, strings.Split(doc, "\n"), node.Language, deps.Config.Theme)
		}
	}

	orch := orchestrator.New(deps.Config, analyzer, builder, deps.Client, pipeline, engine, deps.Cache, opts)

	spinner := pterm.DefaultSpinner.WithStyle(pterm.NewStyle(pterm.FgLightBlue)).
		WithSequence("⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏").
		WithDelay(100).WithRemoveWhenDone(true)
	spinnerInstance, _ := spinner.Start("Analyzing workspace...")

	report, err := orch.Run(ctx)
	_ = bar.Finish()
	spinnerInstance.Stop()
	fmt.Print("\r")

	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		return
	}

	printRunSummary(report, deps.Config.Merge.DryRun)
	deps.TokenManagement.DisplayTokens(deps.Config.AI.Provider, deps.Config.AI.Model)
}

func printRunSummary(report *orchestrator.RunReport, dryRun bool) {
	stats := report.Stats

	var sb strings.Builder
	fmt.Fprintf(&sb, "Files: %d seen, %d processed, %d modified\n", stats.FilesSeen, stats.FilesProcessed, stats.ModifiedFiles)
	fmt.Fprintf(&sb, "Nodes: %d considered, %d documented, %d skipped, %d failed\n", stats.NodesConsidered, stats.Successes, stats.Skips, stats.Failures)
	fmt.Fprintf(&sb, "Cache hits: %d, existing docs kept: %d", stats.CacheHits, stats.SkippedDocs)
	if stats.EmbeddingSuccesses+stats.EmbeddingFailures > 0 {
		fmt.Fprintf(&sb, "\nEmbeddings: %d ok, %d failed, %d relationships", stats.EmbeddingSuccesses, stats.EmbeddingFailures, stats.RelationshipsDiscovered)
	}
	if dryRun {
		fmt.Fprintf(&sb, "\nDry run: +%d/-%d lines, nothing written", stats.DryRunLinesAdded, stats.DryRunLinesRemoved)
	}
	fmt.Println(lipgloss.BoxStyle.Render(sb.String()))

	for _, procErr := range stats.Errors {
		target := procErr.File
		if procErr.NodeName != "" {
			target = fmt.Sprintf("%s (%s)", procErr.File, procErr.NodeName)
		}
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("✗ %s: %s", target, procErr.Error)))
	}
}
