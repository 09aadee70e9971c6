package workspace_analyzer

import (
	"regexp"
	"sort"

	"docgen/models"
)

var identifierPattern = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// SymbolMap records where each declared symbol is defined and which files
// reference it. It is built once during analysis and read-only afterwards.
type SymbolMap struct {
	definitions map[string]string
	usages      map[string][]string
}

func NewSymbolMap() *SymbolMap {
	return &SymbolMap{
		definitions: make(map[string]string),
		usages:      make(map[string][]string),
	}
}

// AddDefinitions records the file's declarations as symbol definitions.
func (m *SymbolMap) AddDefinitions(filePath string, nodes []models.DeclarationNode) {
	for _, node := range nodes {
		if _, exists := m.definitions[node.Name]; !exists {
			m.definitions[node.Name] = filePath
		}
	}
}

// ScanUsages scans every file's declaration bodies for references to known
// symbols. The defining file itself is not counted as a usage.
func (m *SymbolMap) ScanUsages(declarations map[string][]models.DeclarationNode) {
	for filePath, nodes := range declarations {
		seen := make(map[string]bool)
		for _, node := range nodes {
			for _, ident := range identifierPattern.FindAllString(node.Code, -1) {
				if seen[ident] {
					continue
				}
				defFile, defined := m.definitions[ident]
				if !defined || defFile == filePath {
					continue
				}
				seen[ident] = true
				m.usages[ident] = append(m.usages[ident], filePath)
			}
		}
	}
	for name := range m.usages {
		sort.Strings(m.usages[name])
	}
}

// DefinitionOf returns the file defining the symbol, or "".
func (m *SymbolMap) DefinitionOf(name string) string {
	return m.definitions[name]
}

// UsagesOf returns the files referencing the symbol, sorted, excluding its
// defining file.
func (m *SymbolMap) UsagesOf(name string) []string {
	return m.usages[name]
}

// Len returns the number of defined symbols.
func (m *SymbolMap) Len() int {
	return len(m.definitions)
}
