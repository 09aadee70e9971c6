package context_builder

import (
	"strings"

	"docgen/models"
	"docgen/relationship_index"
	"docgen/workspace_analyzer"
)

// Builder assembles the NodeContext handed to the generation client. It
// only reads from the workspace and the relationship index, never mutates
// them.
type Builder struct {
	maxSnippetLength int
	minScore         float64
	maxRelated       int
}

func NewBuilder(maxSnippetLength int, minScore float64, maxRelated int) *Builder {
	return &Builder{
		maxSnippetLength: maxSnippetLength,
		minScore:         minScore,
		maxRelated:       maxRelated,
	}
}

// Build produces the context for one declaration. A nil index yields a
// context with no related symbols, which is the embeddings-disabled path.
func (b *Builder) Build(node models.DeclarationNode, workspace *workspace_analyzer.WorkspaceInfo, index *relationship_index.Index) *models.NodeContext {
	nodeCtx := &models.NodeContext{
		ID:          node.ID,
		CodeSnippet: b.truncateSnippet(node.Code),
		NodeKind:    node.Kind,
		NodeName:    node.Name,
		Signature:   node.Signature,
		Language:    node.Language,
		FileContext: node.FilePath,
		CustomData:  make(map[string]string),
	}

	if workspace != nil {
		if file := fileOf(node.FilePath, workspace); file != nil {
			nodeCtx.PackageContext = file.PackageName
			nodeCtx.Imports = file.Imports
		}
		nodeCtx.SurroundingContext = siblingNames(node, workspace)
		if workspace.Symbols != nil {
			nodeCtx.SymbolUsages = workspace.Symbols.UsagesOf(node.Name)
		}
	}

	if index != nil {
		nodeCtx.RelatedSymbols = index.Query(node.ID, b.minScore, b.maxRelated)
		nodeCtx.Embedding = index.EmbeddingOf(node.ID)
	}
	return nodeCtx
}

// truncateSnippet caps the snippet at the configured length. The cut is taken
// from the body so the signature always survives, and the closing lines are
// kept so the model sees where the declaration ends.
func (b *Builder) truncateSnippet(code string) string {
	if b.maxSnippetLength <= 0 || len(code) <= b.maxSnippetLength {
		return code
	}

	const marker = "\n// ...\n"
	keep := b.maxSnippetLength - len(marker)
	head := keep * 2 / 3
	tail := keep - head

	headPart := code[:head]
	if idx := strings.LastIndexByte(headPart, '\n'); idx > 0 {
		headPart = headPart[:idx]
	}
	tailPart := code[len(code)-tail:]
	if idx := strings.IndexByte(tailPart, '\n'); idx >= 0 {
		tailPart = tailPart[idx+1:]
	}
	return headPart + marker + tailPart
}

func fileOf(filePath string, workspace *workspace_analyzer.WorkspaceInfo) *models.SourceFile {
	for i := range workspace.Files {
		if workspace.Files[i].Path == filePath {
			return &workspace.Files[i]
		}
	}
	return nil
}

// siblingNames lists the other declarations in the same file, in source
// order.
func siblingNames(node models.DeclarationNode, workspace *workspace_analyzer.WorkspaceInfo) []string {
	decls := workspace.Declarations[node.FilePath]
	var names []string
	for _, d := range decls {
		if d.ID == node.ID {
			continue
		}
		names = append(names, d.Name)
	}
	return names
}
