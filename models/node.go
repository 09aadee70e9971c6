package models

// NodeKind classifies a documentable declaration.
type NodeKind string

const (
	NodeKindFunction  NodeKind = "function"
	NodeKindMethod    NodeKind = "method"
	NodeKindType      NodeKind = "type"
	NodeKindClass     NodeKind = "class"
	NodeKindInterface NodeKind = "interface"
)

// DeclarationNode is a single documentable declaration handed to the pipeline
// by the syntax facility. Line numbers are 1-based.
type DeclarationNode struct {
	ID        string
	Name      string
	Kind      NodeKind
	Signature string
	Code      string
	FilePath  string
	Language  string
	StartLine int
	EndLine   int
	Indent    string

	// Existing documentation attached to the node, if any.
	DocComment   string
	DocStartLine int
	HasDoc       bool
}

// RelatedSymbol is a semantically similar declaration discovered by the
// relationship index.
type RelatedSymbol struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Kind              NodeKind `json:"kind"`
	FilePath          string   `json:"file_path"`
	RelationshipScore float64  `json:"relationship_score"`
}

// EmbeddedNode holds the embedding vector for a declaration during one
// analysis pass. It lives only in memory.
type EmbeddedNode struct {
	ID        string
	Embedding []float32
	Text      string
	Name      string
	Kind      NodeKind
	FilePath  string
}

// NodeContext is the unit of work for generation: everything the model needs
// to know about one declaration. It is built fresh per node per run and
// mutated in place by plugin before-hooks.
type NodeContext struct {
	ID                 string
	CodeSnippet        string
	NodeKind           NodeKind
	NodeName           string
	Signature          string
	Language           string
	FileContext        string
	PackageContext     string
	Imports            []string
	SurroundingContext []string
	SymbolUsages       []string
	RelatedSymbols     []RelatedSymbol
	Embedding          []float32
	CustomData         map[string]string
}
