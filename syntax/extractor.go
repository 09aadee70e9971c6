package syntax

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"docgen/models"
)

// Extractor parses source files and returns their documentable declarations.
// Parsing is per-call; the extractor itself holds no file state and is safe
// for concurrent use.
type Extractor struct {
	registry *Registry
}

func NewExtractor() *Extractor {
	return &Extractor{registry: NewRegistry()}
}

// Supported reports whether the file's language has a registered grammar.
func (e *Extractor) Supported(path string) bool {
	return e.registry.Supported(path)
}

// LanguageOf returns the registered language name for the file, or "".
func (e *Extractor) LanguageOf(path string) string {
	if spec := e.registry.Lookup(path); spec != nil {
		return spec.Name
	}
	return ""
}

// ExtractFile reads and extracts one file from disk.
func (e *Extractor) ExtractFile(ctx context.Context, path string) ([]models.DeclarationNode, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return e.Extract(ctx, path, src)
}

// Extract parses src and returns its declarations in source order. Files in
// unsupported languages yield no declarations and no error.
func (e *Extractor) Extract(ctx context.Context, path string, src []byte) ([]models.DeclarationNode, error) {
	spec := e.registry.Lookup(path)
	if spec == nil {
		return nil, nil
	}

	parser := sitter.NewParser()
	parser.SetLanguage(spec.Language)
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	defer tree.Close()

	q, err := sitter.NewQuery([]byte(spec.Query), spec.Language)
	if err != nil {
		return nil, fmt.Errorf("compile query for %s: %w", spec.Name, err)
	}
	defer q.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(q, tree.RootNode())

	type capture struct {
		name string
		node *sitter.Node
	}
	var captures []capture
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		var declNode *sitter.Node
		var name string
		for _, cap := range m.Captures {
			switch q.CaptureNameForId(cap.Index) {
			case "decl":
				declNode = cap.Node
			case "name":
				name = cap.Node.Content(src)
			}
		}
		if declNode == nil || name == "" {
			continue
		}
		// A decorated definition is captured once as the wrapper; skip the
		// bare inner match.
		if parent := declNode.Parent(); parent != nil && parent.Type() == "decorated_definition" {
			continue
		}
		captures = append(captures, capture{name: name, node: declNode})
	}

	seen := make(map[uint32]bool, len(captures))
	kept := captures[:0]
	for _, cap := range captures {
		if seen[cap.node.StartByte()] {
			continue
		}
		seen[cap.node.StartByte()] = true
		kept = append(kept, cap)
	}
	sort.Slice(kept, func(i, j int) bool {
		return kept[i].node.StartByte() < kept[j].node.StartByte()
	})

	lines := strings.Split(string(src), "\n")
	nodes := make([]models.DeclarationNode, 0, len(kept))
	for _, cap := range kept {
		node := e.buildNode(spec, path, src, lines, cap.name, cap.node)
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// Imports returns the file's import statements in source order. Files in
// unsupported languages yield no imports and no error.
func (e *Extractor) Imports(ctx context.Context, path string, src []byte) ([]string, error) {
	spec := e.registry.Lookup(path)
	if spec == nil || spec.ImportQuery == "" {
		return nil, nil
	}

	parser := sitter.NewParser()
	parser.SetLanguage(spec.Language)
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	defer tree.Close()

	q, err := sitter.NewQuery([]byte(spec.ImportQuery), spec.Language)
	if err != nil {
		return nil, fmt.Errorf("compile import query for %s: %w", spec.Name, err)
	}
	defer q.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(q, tree.RootNode())

	var imports []string
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, cap := range m.Captures {
			if q.CaptureNameForId(cap.Index) != "import" {
				continue
			}
			if text := strings.TrimSpace(cap.Node.Content(src)); text != "" {
				imports = append(imports, text)
			}
		}
	}
	return imports, nil
}

func (e *Extractor) buildNode(spec *LanguageSpec, path string, src []byte, lines []string, name string, declNode *sitter.Node) models.DeclarationNode {
	startLine := int(declNode.StartPoint().Row) + 1
	endLine := int(declNode.EndPoint().Row) + 1
	code := declNode.Content(src)

	kind := spec.kindOf(effectiveType(declNode))
	if kind == models.NodeKindFunction && insideClassBody(declNode) {
		kind = models.NodeKindMethod
	}

	node := models.DeclarationNode{
		ID:        fmt.Sprintf("%s:%s:%d", path, name, startLine),
		Name:      name,
		Kind:      kind,
		Signature: firstSignatureLine(code),
		Code:      code,
		FilePath:  path,
		Language:  spec.Name,
		StartLine: startLine,
		EndLine:   endLine,
		Indent:    indentOfLine(lines, startLine),
	}

	if spec.Name == "python" {
		e.attachDocstring(&node, declNode, src)
	} else {
		e.attachLeadingComments(&node, declNode, src)
	}
	return node
}

// effectiveType unwraps decorator wrappers so kind mapping sees the real
// definition.
func effectiveType(node *sitter.Node) string {
	if node.Type() == "decorated_definition" {
		if def := node.ChildByFieldName("definition"); def != nil {
			return def.Type()
		}
	}
	return node.Type()
}

func insideClassBody(node *sitter.Node) bool {
	for p := node.Parent(); p != nil; p = p.Parent() {
		switch p.Type() {
		case "class_definition", "class_declaration", "class_body":
			return true
		}
	}
	return false
}

var commentNodeTypes = map[string]bool{
	"comment":       true,
	"line_comment":  true,
	"block_comment": true,
}

// attachLeadingComments collects the contiguous comment block directly above
// the declaration. A blank line breaks the block.
func (e *Extractor) attachLeadingComments(node *models.DeclarationNode, declNode *sitter.Node, src []byte) {
	var parts []string
	docStart := 0

	// Exported declarations nest under an export statement; comments sit
	// above the wrapper.
	anchor := declNode
	for p := anchor.Parent(); p != nil && p.Type() == "export_statement"; p = p.Parent() {
		anchor = p
	}

	expectedRow := int(anchor.StartPoint().Row)
	for sib := anchor.PrevSibling(); sib != nil; sib = sib.PrevSibling() {
		if !commentNodeTypes[sib.Type()] {
			break
		}
		if int(sib.EndPoint().Row) < expectedRow-1 {
			break
		}
		parts = append([]string{sib.Content(src)}, parts...)
		docStart = int(sib.StartPoint().Row) + 1
		expectedRow = int(sib.StartPoint().Row)
	}

	if len(parts) > 0 {
		node.DocComment = strings.Join(parts, "\n")
		node.DocStartLine = docStart
		node.HasDoc = true
	}
}

// attachDocstring finds a docstring as the first statement of the definition
// body.
func (e *Extractor) attachDocstring(node *models.DeclarationNode, declNode *sitter.Node, src []byte) {
	def := declNode
	if def.Type() == "decorated_definition" {
		if inner := def.ChildByFieldName("definition"); inner != nil {
			def = inner
		}
	}
	body := def.ChildByFieldName("body")
	if body == nil || body.NamedChildCount() == 0 {
		return
	}
	first := body.NamedChild(0)
	if first.Type() != "expression_statement" || first.NamedChildCount() == 0 {
		return
	}
	str := first.NamedChild(0)
	if str.Type() != "string" {
		return
	}
	node.DocComment = str.Content(src)
	node.DocStartLine = int(str.StartPoint().Row) + 1
	node.HasDoc = true
}

func firstSignatureLine(code string) string {
	line := code
	if idx := strings.IndexByte(code, '\n'); idx >= 0 {
		line = code[:idx]
	}
	line = strings.TrimSpace(line)
	line = strings.TrimSuffix(line, "{")
	return strings.TrimSpace(line)
}

func indentOfLine(lines []string, lineNo int) string {
	if lineNo < 1 || lineNo > len(lines) {
		return ""
	}
	line := lines[lineNo-1]
	trimmed := strings.TrimLeft(line, " \t")
	return line[:len(line)-len(trimmed)]
}
