package generation

import (
	"fmt"
	"strings"

	"docgen/models"
)

// PromptVersion participates in the cache version discriminator. Bump it
// whenever the prompt text changes so stale cached responses are not reused.
const PromptVersion = "v1"

const systemPrompt = `You are a senior engineer writing documentation comments for source code.
Write one documentation comment for the declaration you are given, in the
conventional doc-comment style of its language. Describe what the declaration
does, its parameters and return values where the convention calls for them,
and any non-obvious behavior visible in the code. Output only the comment
itself, ready to paste directly above the declaration, with no surrounding
code fences and no explanation.`

// commentMarkers lists the doc-comment openers accepted per language. A
// response containing none of its language's markers is rejected as malformed.
var commentMarkers = map[string][]string{
	"go":         {"//"},
	"javascript": {"/**", "/*", "//"},
	"typescript": {"/**", "/*", "//"},
	"java":       {"/**", "/*", "//"},
	"python":     {`"""`, "'''", "#"},
	"rust":       {"///", "//!", "//"},
	"ruby":       {"#"},
	"csharp":     {"///", "//"},
}

func markersFor(language string) []string {
	if m, ok := commentMarkers[strings.ToLower(language)]; ok {
		return m
	}
	return []string{"//", "#", "/*"}
}

func hasCommentMarker(content string, language string) bool {
	trimmed := strings.TrimSpace(content)
	for _, marker := range markersFor(language) {
		if strings.Contains(trimmed, marker) {
			return true
		}
	}
	return false
}

func buildUserPrompt(nodeCtx *models.NodeContext) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Language: %s\n", nodeCtx.Language)
	fmt.Fprintf(&sb, "Declaration kind: %s\n", nodeCtx.NodeKind)
	fmt.Fprintf(&sb, "Declaration name: %s\n", nodeCtx.NodeName)
	if nodeCtx.Signature != "" {
		fmt.Fprintf(&sb, "Signature: %s\n", nodeCtx.Signature)
	}
	if nodeCtx.FileContext != "" {
		fmt.Fprintf(&sb, "File: %s\n", nodeCtx.FileContext)
	}
	if nodeCtx.PackageContext != "" {
		fmt.Fprintf(&sb, "Package: %s\n", nodeCtx.PackageContext)
	}
	if len(nodeCtx.Imports) > 0 {
		fmt.Fprintf(&sb, "Imports: %s\n", strings.Join(nodeCtx.Imports, ", "))
	}
	if len(nodeCtx.SurroundingContext) > 0 {
		fmt.Fprintf(&sb, "Sibling declarations in this file: %s\n", strings.Join(nodeCtx.SurroundingContext, ", "))
	}
	if len(nodeCtx.SymbolUsages) > 0 {
		fmt.Fprintf(&sb, "Used by: %s\n", strings.Join(nodeCtx.SymbolUsages, ", "))
	}
	if len(nodeCtx.RelatedSymbols) > 0 {
		sb.WriteString("Related symbols:\n")
		for _, rel := range nodeCtx.RelatedSymbols {
			fmt.Fprintf(&sb, "  - %s %s (%s)\n", rel.Kind, rel.Name, rel.FilePath)
		}
	}

	sb.WriteString("\nCode:\n")
	sb.WriteString(nodeCtx.CodeSnippet)
	sb.WriteString("\n")

	return sb.String()
}
