package plugin_pipeline

import (
	"strings"

	"docgen/models"
)

// NormalizerPlugin strips the wrapping models tend to add around generated
// comments: markdown code fences and leading prose before the first comment
// line. It ships enabled by default.
type NormalizerPlugin struct {
	BasePlugin
}

func NewNormalizerPlugin() *NormalizerPlugin {
	return &NormalizerPlugin{BasePlugin: BasePlugin{PluginName: "normalizer"}}
}

func (p *NormalizerPlugin) AfterProcessing(nodeCtx *models.NodeContext, text string) (string, error) {
	out := strings.TrimSpace(text)
	out = stripFences(out)
	out = stripLeadingProse(out, nodeCtx.Language)
	return strings.TrimSpace(out), nil
}

func stripFences(text string) string {
	lines := strings.Split(text, "\n")
	var kept []string
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// stripLeadingProse drops introductory lines before the first line that looks
// like a comment ("Here is the documentation:" and similar). Python keeps
// everything because docstrings carry no marker prefix per line.
func stripLeadingProse(text string, language string) string {
	if strings.EqualFold(language, "python") {
		return text
	}
	lines := strings.Split(text, "\n")
	start := 0
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "/*") ||
			strings.HasPrefix(trimmed, "*") || strings.HasPrefix(trimmed, "#") {
			start = i
			break
		}
		start = i + 1
	}
	if start >= len(lines) {
		return text
	}
	return strings.Join(lines[start:], "\n")
}
