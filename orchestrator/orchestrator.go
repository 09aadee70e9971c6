package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"docgen/cache_store"
	"docgen/config"
	"docgen/context_builder"
	"docgen/generation"
	"docgen/merge_engine"
	"docgen/models"
	"docgen/plugin_pipeline"
	"docgen/relationship_index"
	"docgen/task_scheduler"
	"docgen/workspace_analyzer"
)

// State is the run's lifecycle phase.
type State string

const (
	StateInit       State = "init"
	StateAnalyzing  State = "analyzing"
	StateBatching   State = "batching"
	StateProcessing State = "processing"
	StateFinalizing State = "finalizing"
	StateDone       State = "done"
)

// Generator is what the orchestrator needs from the generation client.
type Generator interface {
	Generate(ctx context.Context, nodeCtx *models.NodeContext) models.GenerationOutcome
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	ModelID() string
}

// RunReport is the serializable outcome of one run.
type RunReport struct {
	Stats *models.ProcessingStats `json:"stats"`
}

// JSON renders the report for external tooling.
func (r *RunReport) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Options are per-run switches layered over the config file.
type Options struct {
	// Force re-invokes the model even when a cached result exists.
	Force bool

	// Preview, when set, receives every planned edit during a dry run.
	Preview func(filePath string, node models.DeclarationNode, doc string)

	// Progress, when set, is called once per node outcome.
	Progress func()
}

// Orchestrator wires the whole pipeline and owns the run lifecycle. Failures
// below the workspace level never abort the run; they land in the stats as
// per-node or per-file errors.
type Orchestrator struct {
	cfg      *config.Config
	analyzer *workspace_analyzer.Analyzer
	builder  *context_builder.Builder
	gen      Generator
	pipeline *plugin_pipeline.Pipeline
	engine   *merge_engine.Engine
	cache    *cache_store.Store
	fileGate *task_scheduler.Gate
	opts     Options

	state State
}

// New assembles an orchestrator from already-constructed components.
func New(cfg *config.Config, analyzer *workspace_analyzer.Analyzer, builder *context_builder.Builder, gen Generator, pipeline *plugin_pipeline.Pipeline, engine *merge_engine.Engine, cache *cache_store.Store, opts Options) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		analyzer: analyzer,
		builder:  builder,
		gen:      gen,
		pipeline: pipeline,
		engine:   engine,
		cache:    cache,
		fileGate: task_scheduler.NewGate(cfg.Workspace.FileConcurrency),
		opts:     opts,
		state:    StateInit,
	}
}

// CacheVersion builds the cache discriminator: a config version, model or
// prompt change must invalidate prior entries.
func CacheVersion(configVersion string, modelID string) string {
	return fmt.Sprintf("%s|%s|%s", configVersion, modelID, generation.PromptVersion)
}

// State returns the current lifecycle phase.
func (o *Orchestrator) State() State {
	return o.state
}

// Run executes one full pass over the workspace. It returns an error only for
// setup failures (workspace unreadable, cancellation); everything downstream
// is contained and reported through the stats.
func (o *Orchestrator) Run(ctx context.Context) (*RunReport, error) {
	o.state = StateAnalyzing
	workspace, err := o.analyzer.Analyze(ctx)
	if err != nil {
		return nil, fmt.Errorf("analyzing workspace: %w", err)
	}

	o.state = StateBatching
	index := o.buildIndex(ctx, workspace)

	stats := newCollector(uuid.NewString(), len(workspace.Files))
	if index != nil {
		stats.send(event{kind: evEmbeddings, count: index.Embedded(), failures: index.Failures()})
	}

	o.state = StateProcessing
	o.processBatches(ctx, workspace, index, stats)

	o.state = StateFinalizing
	final := stats.close()
	o.pipeline.RunComplete(final)
	o.state = StateDone
	return &RunReport{Stats: final}, nil
}

// buildIndex embeds every declaration when embeddings are enabled. A nil
// return means every node proceeds without related symbols.
func (o *Orchestrator) buildIndex(ctx context.Context, workspace *workspace_analyzer.WorkspaceInfo) *relationship_index.Index {
	if !o.cfg.Embedding.Enabled {
		return nil
	}

	var nodes []models.DeclarationNode
	for _, file := range workspace.Files {
		nodes = append(nodes, workspace.Declarations[file.Path]...)
	}
	index := relationship_index.NewIndex(o.gen, o.cfg.Embedding.BatchSize)
	if err := index.Build(ctx, nodes); err != nil {
		log.Printf("Warning: relationship index aborted: %v", err)
		return nil
	}
	return index
}

func (o *Orchestrator) processBatches(ctx context.Context, workspace *workspace_analyzer.WorkspaceInfo, index *relationship_index.Index, stats *collector) {
	for _, batch := range workspace.Batches {
		if ctx.Err() != nil {
			return
		}
		var tasks []func() error
		for _, filePath := range batch.Files {
			filePath := filePath
			tasks = append(tasks, func() error {
				o.processFile(ctx, filePath, workspace, index, stats)
				return nil
			})
		}
		o.fileGate.ExecuteAll(ctx, tasks)
	}
}

func (o *Orchestrator) processFile(ctx context.Context, filePath string, workspace *workspace_analyzer.WorkspaceInfo, index *relationship_index.Index, stats *collector) {
	defer func() {
		if r := recover(); r != nil {
			stats.send(event{kind: evFailure, file: filePath, err: fmt.Sprintf("panic: %v", r)})
		}
	}()

	var edits []merge_engine.Edit
	for _, node := range workspace.Declarations[filePath] {
		if ctx.Err() != nil {
			return
		}
		stats.send(event{kind: evNodeConsidered})

		outcome := o.processNode(ctx, node, workspace, index, stats)
		switch outcome.Status {
		case models.OutcomeSuccess:
			stats.send(event{kind: evSuccess})
			edits = append(edits, merge_engine.Edit{Node: node, Doc: outcome.Content})
		case models.OutcomeSkip:
			stats.send(event{kind: evSkip})
		case models.OutcomeError:
			stats.send(event{kind: evFailure, file: filePath, node: node.Name, err: outcome.Reason})
		}
		if o.opts.Progress != nil {
			o.opts.Progress()
		}
	}

	if o.cfg.Merge.DryRun && o.opts.Preview != nil {
		for _, edit := range edits {
			o.opts.Preview(filePath, edit.Node, edit.Doc)
		}
	}

	result, err := o.engine.ApplyFile(filepath.Join(workspace.Root, filePath), edits)
	if err != nil {
		stats.send(event{kind: evFailure, file: filePath, err: err.Error()})
		return
	}
	stats.send(event{kind: evFileProcessed})
	if result.Changed {
		stats.send(event{kind: evFileModified})
		stats.send(event{kind: evLineDelta, added: result.LinesAdded, removed: result.LinesRemoved})
	}
	if result.Skipped > 0 {
		stats.send(event{kind: evDocsSkipped, count: result.Skipped})
	}
}

// processNode runs one declaration through cache, context building, plugins
// and generation. Panics are converted to error outcomes so one node never
// takes the file down.
func (o *Orchestrator) processNode(ctx context.Context, node models.DeclarationNode, workspace *workspace_analyzer.WorkspaceInfo, index *relationship_index.Index, stats *collector) (outcome models.GenerationOutcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = models.GenerationOutcome{Status: models.OutcomeError, Reason: fmt.Sprintf("panic: %v", r)}
		}
	}()

	key := cacheKey(node)
	if o.cache != nil && !o.opts.Force {
		var cached string
		if o.cache.Get(key, &cached) {
			stats.send(event{kind: evCacheHit})
			return models.GenerationOutcome{Status: models.OutcomeSuccess, Content: cached}
		}
	}

	nodeCtx := o.builder.Build(node, workspace, index)
	if len(nodeCtx.RelatedSymbols) > 0 {
		stats.send(event{kind: evRelationships, count: len(nodeCtx.RelatedSymbols)})
	}
	o.pipeline.RunBefore(nodeCtx)

	outcome = o.gen.Generate(ctx, nodeCtx)
	if outcome.Status != models.OutcomeSuccess {
		if outcome.Status == models.OutcomeError {
			o.pipeline.RunError(fmt.Errorf("%s", outcome.Reason), nodeCtx)
		}
		return outcome
	}

	outcome.Content = o.pipeline.RunAfter(nodeCtx, outcome.Content)
	if o.cache != nil {
		if err := o.cache.Set(key, outcome.Content); err != nil {
			log.Printf("Warning: caching result for %s: %v", node.Name, err)
		}
	}
	return outcome
}

// cacheKey canonicalizes the node so formatting-neutral changes elsewhere in
// the file do not invalidate its entry.
func cacheKey(node models.DeclarationNode) string {
	return strings.Join([]string{
		node.Language,
		string(node.Kind),
		node.Name,
		strings.TrimSpace(node.Code),
	}, "\x00")
}
