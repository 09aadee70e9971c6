package plugin_pipeline

import (
	"fmt"
	"log"

	"docgen/models"
)

// Plugin is one pipeline extension. Hooks run in registration order; each
// after-hook receives the previous hook's output so transformations chain.
type Plugin interface {
	Name() string
	Initialize(options map[string]string) error

	// BeforeProcessing may mutate the node context in place before the
	// generation request is built.
	BeforeProcessing(nodeCtx *models.NodeContext) error

	// AfterProcessing transforms the generated text and returns the result.
	AfterProcessing(nodeCtx *models.NodeContext, text string) (string, error)

	OnComplete(stats *models.ProcessingStats)
	OnError(err error, nodeCtx *models.NodeContext)

	Enable()
	Disable()
	IsEnabled() bool
}

// BasePlugin supplies the no-op hooks and the enable switch so plugins only
// implement what they need.
type BasePlugin struct {
	PluginName string
	disabled   bool
}

func (p *BasePlugin) Name() string                                 { return p.PluginName }
func (p *BasePlugin) Initialize(options map[string]string) error   { return nil }
func (p *BasePlugin) BeforeProcessing(_ *models.NodeContext) error { return nil }
func (p *BasePlugin) OnComplete(_ *models.ProcessingStats)         {}
func (p *BasePlugin) OnError(_ error, _ *models.NodeContext)       {}
func (p *BasePlugin) Enable()                                      { p.disabled = false }
func (p *BasePlugin) Disable()                                     { p.disabled = true }
func (p *BasePlugin) IsEnabled() bool                              { return !p.disabled }
func (p *BasePlugin) AfterProcessing(_ *models.NodeContext, text string) (string, error) {
	return text, nil
}

// Pipeline runs registered plugins in order. A hook that errors or panics is
// logged and skipped; processing always continues with the value the hook
// received.
type Pipeline struct {
	plugins []Plugin
}

func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// Register appends and initializes a plugin. An initialization error leaves
// the plugin out of the chain.
func (p *Pipeline) Register(plugin Plugin, options map[string]string) error {
	if err := plugin.Initialize(options); err != nil {
		return fmt.Errorf("initializing plugin %s: %w", plugin.Name(), err)
	}
	p.plugins = append(p.plugins, plugin)
	return nil
}

// Plugins returns the registered chain in order.
func (p *Pipeline) Plugins() []Plugin {
	return p.plugins
}

// RunBefore invokes every enabled before-hook against the node context.
func (p *Pipeline) RunBefore(nodeCtx *models.NodeContext) {
	for _, plugin := range p.plugins {
		if !plugin.IsEnabled() {
			continue
		}
		runRecovered(plugin.Name(), "BeforeProcessing", func() error {
			return plugin.BeforeProcessing(nodeCtx)
		})
	}
}

// RunAfter chains every enabled after-hook over the generated text. A failing
// hook's output is discarded and the chain continues with its input.
func (p *Pipeline) RunAfter(nodeCtx *models.NodeContext, text string) string {
	current := text
	for _, plugin := range p.plugins {
		if !plugin.IsEnabled() {
			continue
		}
		input := current
		ok := runRecovered(plugin.Name(), "AfterProcessing", func() error {
			out, err := plugin.AfterProcessing(nodeCtx, input)
			if err != nil {
				return err
			}
			current = out
			return nil
		})
		if !ok {
			current = input
		}
	}
	return current
}

// RunComplete notifies every enabled plugin that the run finished.
func (p *Pipeline) RunComplete(stats *models.ProcessingStats) {
	for _, plugin := range p.plugins {
		if !plugin.IsEnabled() {
			continue
		}
		runRecovered(plugin.Name(), "OnComplete", func() error {
			plugin.OnComplete(stats)
			return nil
		})
	}
}

// RunError notifies every enabled plugin of a node failure.
func (p *Pipeline) RunError(err error, nodeCtx *models.NodeContext) {
	for _, plugin := range p.plugins {
		if !plugin.IsEnabled() {
			continue
		}
		runRecovered(plugin.Name(), "OnError", func() error {
			plugin.OnError(err, nodeCtx)
			return nil
		})
	}
}

func runRecovered(pluginName string, hook string, fn func() error) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Warning: plugin %s panicked in %s: %v", pluginName, hook, r)
			ok = false
		}
	}()
	if err := fn(); err != nil {
		log.Printf("Warning: plugin %s failed in %s: %v", pluginName, hook, err)
		return false
	}
	return true
}
