package merge_engine

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"docgen/config"
	"docgen/models"
)

// Action is the merge decision for one node.
type Action string

const (
	ActionInsert  Action = "insert"
	ActionReplace Action = "replace"
	ActionMerge   Action = "merge"
	ActionSkip    Action = "skip"
)

// Decide applies the decision table: no existing doc always inserts;
// overwrite replaces, merge merges, and with neither flag an existing doc is
// left alone.
func Decide(hasExisting bool, overwrite bool, merge bool) Action {
	if !hasExisting {
		return ActionInsert
	}
	if overwrite {
		return ActionReplace
	}
	if merge {
		return ActionMerge
	}
	return ActionSkip
}

// Edit is one pending doc write for a node in a file.
type Edit struct {
	Node models.DeclarationNode
	Doc  string
}

// FileResult reports what happened to one file.
type FileResult struct {
	Changed      bool
	LinesAdded   int
	LinesRemoved int
	Applied      int
	Skipped      int
}

// Engine writes generated docs back to source files. Each file is rewritten
// whole under a per-file lock; all of a file's edits are applied in one
// read-modify-write so line numbers from the original parse stay valid.
type Engine struct {
	cfg config.MergeConfig

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewEngine(cfg config.MergeConfig) *Engine {
	return &Engine{cfg: cfg, locks: make(map[string]*sync.Mutex)}
}

func (e *Engine) lockFor(path string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	if l, ok := e.locks[path]; ok {
		return l
	}
	l := &sync.Mutex{}
	e.locks[path] = l
	return l
}

// ApplyFile applies the file's edits and writes the result, or only computes
// the deltas when dry-run is set. Edits are applied bottom-up so earlier
// edits never invalidate later line numbers.
func (e *Engine) ApplyFile(path string, edits []Edit) (FileResult, error) {
	var result FileResult
	if len(edits) == 0 {
		return result, nil
	}

	lock := e.lockFor(path)
	lock.Lock()
	defer lock.Unlock()

	content, err := os.ReadFile(path)
	if err != nil {
		return result, fmt.Errorf("read %s: %w", path, err)
	}
	original := string(content)
	lines := strings.Split(original, "\n")

	ordered := make([]Edit, len(edits))
	copy(ordered, edits)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Node.StartLine > ordered[j].Node.StartLine
	})

	for _, edit := range ordered {
		node := edit.Node
		action := Decide(node.HasDoc, e.cfg.Overwrite, e.cfg.Merge)
		if action == ActionSkip {
			result.Skipped++
			continue
		}

		doc := edit.Doc
		if action == ActionMerge {
			doc = MergeDocs(node.DocComment, doc)
		}
		docstring := node.Language == "python"

		switch action {
		case ActionInsert:
			var at int
			indent := node.Indent
			if docstring {
				at = headerEnd(lines, node)
				indent += "    "
			} else {
				at = node.StartLine - 1
			}
			if at < 0 || at > len(lines) {
				return result, fmt.Errorf("%s: node %s start line %d out of range", path, node.Name, node.StartLine)
			}
			docLines := indentLines(doc, indent)
			lines = spliceLines(lines, at, at, docLines)
			result.LinesAdded += len(docLines)
		case ActionReplace, ActionMerge:
			from := node.DocStartLine - 1
			to := from + len(strings.Split(strings.TrimRight(node.DocComment, "\n"), "\n"))
			if from < 0 || to > len(lines) {
				return result, fmt.Errorf("%s: node %s doc span %d-%d out of range", path, node.Name, from+1, to)
			}
			indent := node.Indent
			if docstring {
				indent += "    "
			}
			docLines := indentLines(doc, indent)
			lines = spliceLines(lines, from, to, docLines)
			result.LinesAdded += len(docLines)
			result.LinesRemoved += to - from
		}
		result.Applied++
	}

	updated := strings.Join(lines, "\n")
	result.Changed = updated != original
	if !result.Changed || e.cfg.DryRun {
		return result, nil
	}

	info, err := os.Stat(path)
	mode := os.FileMode(0644)
	if err == nil {
		mode = info.Mode()
	}
	if err := os.WriteFile(path, []byte(updated), mode); err != nil {
		return result, fmt.Errorf("write %s: %w", path, err)
	}
	return result, nil
}

// headerEnd finds the line index just past the def/class header so a
// docstring lands at the top of the body. Decorators and multi-line
// signatures are skipped by scanning for the first line ending in ":".
func headerEnd(lines []string, node models.DeclarationNode) int {
	last := node.EndLine
	if last <= 0 || last > len(lines) {
		last = len(lines)
	}
	for i := node.StartLine - 1; i < last; i++ {
		if strings.HasSuffix(strings.TrimSpace(lines[i]), ":") {
			return i + 1
		}
	}
	return node.StartLine
}

func spliceLines(lines []string, from int, to int, insert []string) []string {
	out := make([]string, 0, len(lines)-(to-from)+len(insert))
	out = append(out, lines[:from]...)
	out = append(out, insert...)
	out = append(out, lines[to:]...)
	return out
}

func indentLines(doc string, indent string) []string {
	raw := strings.Split(strings.TrimRight(doc, "\n"), "\n")
	out := make([]string, len(raw))
	for i, line := range raw {
		if line == "" {
			out[i] = ""
			continue
		}
		out[i] = indent + line
	}
	return out
}

// MergeDocs combines an existing doc with a generated one. Existing text
// leads, new lines follow, and tag lines (@param, @return and friends) are
// deduplicated by tag plus first argument.
func MergeDocs(existing string, generated string) string {
	var out []string
	seenLines := make(map[string]bool)
	seenTags := make(map[string]bool)

	appendLine := func(line string) {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			if seenLines[trimmed] {
				return
			}
			if key, isTag := tagKey(trimmed); isTag {
				if seenTags[key] {
					return
				}
				seenTags[key] = true
			}
			seenLines[trimmed] = true
		}
		out = append(out, line)
	}

	for _, line := range strings.Split(strings.TrimRight(existing, "\n"), "\n") {
		appendLine(line)
	}
	for _, line := range strings.Split(strings.TrimRight(generated, "\n"), "\n") {
		appendLine(line)
	}
	return strings.Join(out, "\n")
}

// tagKey extracts "@tag argument" from a doc line, looking past comment
// leaders.
func tagKey(line string) (string, bool) {
	trimmed := strings.TrimLeft(line, "/*# \t")
	if !strings.HasPrefix(trimmed, "@") {
		return "", false
	}
	fields := strings.Fields(trimmed)
	switch len(fields) {
	case 0:
		return "", false
	case 1:
		return fields[0], true
	default:
		return fields[0] + " " + fields[1], true
	}
}
