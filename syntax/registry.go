package syntax

import (
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"docgen/models"
)

// LanguageSpec binds a tree-sitter grammar to the query that captures its
// documentable declarations. Each query pattern captures the declaration as
// @decl and its identifier as @name.
type LanguageSpec struct {
	Name       string
	Language   *sitter.Language
	Query      string
	Extensions []string

	// ImportQuery captures the file's import statements as @import.
	ImportQuery string

	// kinds maps grammar node types to declaration kinds.
	kinds map[string]models.NodeKind
}

// Registry resolves a file path to its language spec by extension.
type Registry struct {
	byExt map[string]*LanguageSpec
}

func NewRegistry() *Registry {
	r := &Registry{byExt: make(map[string]*LanguageSpec)}
	r.registerBuiltins()
	return r
}

func (r *Registry) register(spec *LanguageSpec) {
	for _, ext := range spec.Extensions {
		r.byExt[ext] = spec
	}
}

// Lookup returns the spec for the file, or nil when the language is not
// supported.
func (r *Registry) Lookup(path string) *LanguageSpec {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	return r.byExt[ext]
}

// Supported reports whether declarations can be extracted from the file.
func (r *Registry) Supported(path string) bool {
	return r.Lookup(path) != nil
}

func (r *Registry) registerBuiltins() {
	r.register(&LanguageSpec{
		Name:     "go",
		Language: golang.GetLanguage(),
		Query: `
			(function_declaration name: (identifier) @name) @decl
			(method_declaration name: (field_identifier) @name) @decl
			(type_declaration (type_spec name: (type_identifier) @name)) @decl
		`,
		ImportQuery: `(import_spec) @import`,
		Extensions:  []string{"go"},
		kinds: map[string]models.NodeKind{
			"function_declaration": models.NodeKindFunction,
			"method_declaration":   models.NodeKindMethod,
			"type_declaration":     models.NodeKindType,
		},
	})

	r.register(&LanguageSpec{
		Name:     "python",
		Language: python.GetLanguage(),
		Query: `
			(function_definition name: (identifier) @name) @decl
			(class_definition name: (identifier) @name) @decl
			(decorated_definition definition: (function_definition name: (identifier) @name)) @decl
			(decorated_definition definition: (class_definition name: (identifier) @name)) @decl
		`,
		ImportQuery: `
			(import_statement) @import
			(import_from_statement) @import
		`,
		Extensions: []string{"py"},
		kinds: map[string]models.NodeKind{
			"function_definition": models.NodeKindFunction,
			"class_definition":    models.NodeKindClass,
		},
	})

	r.register(&LanguageSpec{
		Name:     "javascript",
		Language: javascript.GetLanguage(),
		Query: `
			(function_declaration name: (identifier) @name) @decl
			(class_declaration name: (identifier) @name) @decl
			(method_definition name: (property_identifier) @name) @decl
		`,
		ImportQuery: `(import_statement) @import`,
		Extensions:  []string{"js", "jsx", "mjs"},
		kinds: map[string]models.NodeKind{
			"function_declaration": models.NodeKindFunction,
			"class_declaration":    models.NodeKindClass,
			"method_definition":    models.NodeKindMethod,
		},
	})

	r.register(&LanguageSpec{
		Name:     "typescript",
		Language: typescript.GetLanguage(),
		Query: `
			(function_declaration name: (identifier) @name) @decl
			(class_declaration name: (type_identifier) @name) @decl
			(interface_declaration name: (type_identifier) @name) @decl
			(method_definition name: (property_identifier) @name) @decl
		`,
		ImportQuery: `(import_statement) @import`,
		Extensions:  []string{"ts", "tsx"},
		kinds: map[string]models.NodeKind{
			"function_declaration":  models.NodeKindFunction,
			"class_declaration":     models.NodeKindClass,
			"interface_declaration": models.NodeKindInterface,
			"method_definition":     models.NodeKindMethod,
		},
	})

	r.register(&LanguageSpec{
		Name:     "java",
		Language: java.GetLanguage(),
		Query: `
			(class_declaration name: (identifier) @name) @decl
			(interface_declaration name: (identifier) @name) @decl
			(method_declaration name: (identifier) @name) @decl
		`,
		ImportQuery: `(import_declaration) @import`,
		Extensions:  []string{"java"},
		kinds: map[string]models.NodeKind{
			"class_declaration":     models.NodeKindClass,
			"interface_declaration": models.NodeKindInterface,
			"method_declaration":    models.NodeKindMethod,
		},
	})

	r.register(&LanguageSpec{
		Name:     "csharp",
		Language: csharp.GetLanguage(),
		Query: `
			(class_declaration name: (identifier) @name) @decl
			(interface_declaration name: (identifier) @name) @decl
			(method_declaration name: (identifier) @name) @decl
		`,
		ImportQuery: `(using_directive) @import`,
		Extensions:  []string{"cs"},
		kinds: map[string]models.NodeKind{
			"class_declaration":     models.NodeKindClass,
			"interface_declaration": models.NodeKindInterface,
			"method_declaration":    models.NodeKindMethod,
		},
	})
}

func (s *LanguageSpec) kindOf(nodeType string) models.NodeKind {
	if k, ok := s.kinds[nodeType]; ok {
		return k
	}
	return models.NodeKindFunction
}
