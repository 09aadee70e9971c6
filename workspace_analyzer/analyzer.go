package workspace_analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"docgen/config"
	"docgen/models"
	"docgen/syntax"
	token_contracts "docgen/token_management/contracts"
	"docgen/utils"
)

// manifestKinds maps a manifest filename to its package kind. Manifests with
// wildcard names are handled separately.
var manifestKinds = map[string]string{
	"go.mod":         "go",
	"package.json":   "node",
	"pyproject.toml": "python",
	"Cargo.toml":     "rust",
}

// WorkspaceInfo is the full analysis result for one run: discovered packages,
// eligible source files grouped into batches, per-file declarations, and the
// workspace symbol map.
type WorkspaceInfo struct {
	Root         string
	Packages     []models.WorkspacePackage
	Files        []models.SourceFile
	Batches      []models.FileBatch
	Declarations map[string][]models.DeclarationNode
	Symbols      *SymbolMap
}

// Analyzer discovers the workspace and prepares it for processing.
type Analyzer struct {
	cwd       string
	cfg       config.WorkspaceConfig
	extractor *syntax.Extractor
	tokens    token_contracts.ITokenManagement
}

// NewAnalyzer initializes a new Analyzer rooted at cwd.
func NewAnalyzer(cwd string, cfg config.WorkspaceConfig, extractor *syntax.Extractor, tokens token_contracts.ITokenManagement) *Analyzer {
	return &Analyzer{cwd: cwd, cfg: cfg, extractor: extractor, tokens: tokens}
}

// Analyze walks the workspace and returns everything the pipeline needs.
// Unreadable files and directories are logged and skipped; only a failure to
// read the workspace root itself is an error.
func (a *Analyzer) Analyze(ctx context.Context) (*WorkspaceInfo, error) {
	ignorePatterns, err := utils.GetIgnorePatterns(a.cwd)
	if err != nil {
		log.Printf("Warning: %v", err)
	}
	ignorePatterns = append(ignorePatterns, a.cfg.Ignore...)

	packages, err := a.discoverPackages(ignorePatterns)
	if err != nil {
		return nil, err
	}

	info := &WorkspaceInfo{
		Root:         a.cwd,
		Packages:     packages,
		Declarations: make(map[string][]models.DeclarationNode),
	}

	targets := a.cfg.TargetDirs
	if len(targets) == 0 {
		targets = []string{"."}
	}

	symbols := NewSymbolMap()
	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		root := filepath.Join(a.cwd, target)
		if err := a.collectFiles(ctx, root, ignorePatterns, packages, info, symbols); err != nil {
			return nil, err
		}
	}

	symbols.ScanUsages(info.Declarations)
	info.Symbols = symbols
	info.Batches = BuildBatches(info.Files, a.cfg.BatchTokenLimit)
	return info, nil
}

func (a *Analyzer) collectFiles(ctx context.Context, root string, ignorePatterns []string, packages []models.WorkspacePackage, info *WorkspaceInfo, symbols *SymbolMap) error {
	maxBytes := int64(a.cfg.MaxFileSizeKB) * 1024

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Printf("Warning: skipping %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		relPath, relErr := filepath.Rel(a.cwd, path)
		if relErr != nil {
			relPath = path
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if path != root && (utils.IsDefaultIgnored(relPath) || utils.IsIgnored(relPath+"/", ignorePatterns)) {
				return filepath.SkipDir
			}
			return nil
		}

		if !a.eligible(relPath, ignorePatterns) {
			return nil
		}

		fileInfo, statErr := d.Info()
		if statErr != nil {
			log.Printf("Warning: skipping %s: %v", path, statErr)
			return nil
		}
		if maxBytes > 0 && fileInfo.Size() > maxBytes {
			return nil
		}

		content, readErr := os.ReadFile(path)
		if readErr != nil {
			log.Printf("Warning: skipping %s: %v", path, readErr)
			return nil
		}

		nodes, extractErr := a.extractor.Extract(ctx, relPath, content)
		if extractErr != nil {
			log.Printf("Warning: failed to parse %s: %v", path, extractErr)
			return nil
		}

		imports, importErr := a.extractor.Imports(ctx, relPath, content)
		if importErr != nil {
			log.Printf("Warning: failed to read imports of %s: %v", path, importErr)
		}

		pkgName, priority := owningPackage(relPath, packages)
		file := models.SourceFile{
			Path:            relPath,
			PackageName:     pkgName,
			Language:        a.extractor.LanguageOf(relPath),
			Size:            fileInfo.Size(),
			EstimatedTokens: a.tokens.EstimateTokens(string(content)),
			Priority:        priority,
			Imports:         imports,
		}
		info.Files = append(info.Files, file)
		info.Declarations[relPath] = nodes
		symbols.AddDefinitions(relPath, nodes)
		return nil
	})
}

// eligible applies the include/ignore pattern gates and the language gate.
func (a *Analyzer) eligible(relPath string, ignorePatterns []string) bool {
	if utils.IsDefaultIgnored(relPath) || utils.IsIgnored(relPath, ignorePatterns) {
		return false
	}
	if !a.extractor.Supported(relPath) {
		return false
	}
	if len(a.cfg.Include) == 0 {
		return true
	}
	for _, pattern := range a.cfg.Include {
		if matched, err := doublestar.Match(pattern, relPath); err == nil && matched {
			return true
		}
	}
	return false
}

// discoverPackages finds package manifests anywhere under the workspace root.
func (a *Analyzer) discoverPackages(ignorePatterns []string) ([]models.WorkspacePackage, error) {
	var packages []models.WorkspacePackage

	err := filepath.WalkDir(a.cwd, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Printf("Warning: skipping %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		relPath, relErr := filepath.Rel(a.cwd, path)
		if relErr != nil {
			relPath = path
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if path != a.cwd && (utils.IsDefaultIgnored(relPath) || utils.IsIgnored(relPath+"/", ignorePatterns)) {
				return filepath.SkipDir
			}
			return nil
		}

		kind, ok := manifestKinds[d.Name()]
		if !ok && strings.HasSuffix(d.Name(), ".csproj") {
			kind, ok = "dotnet", true
		}
		if !ok {
			return nil
		}

		pkgDir := filepath.ToSlash(filepath.Dir(relPath))
		packages = append(packages, models.WorkspacePackage{
			Name:         packageName(path, d.Name(), pkgDir),
			Path:         pkgDir,
			Kind:         kind,
			ManifestPath: relPath,
			Priority:     packagePriority(pkgDir),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discovering packages under %s: %w", a.cwd, err)
	}
	return packages, nil
}

// packagePriority ranks shallower packages higher so root-level code batches
// first.
func packagePriority(pkgDir string) int {
	if pkgDir == "." {
		return 10
	}
	depth := strings.Count(pkgDir, "/") + 1
	priority := 10 - depth
	if priority < 1 {
		priority = 1
	}
	return priority
}

// owningPackage finds the deepest package containing the file.
func owningPackage(relPath string, packages []models.WorkspacePackage) (string, int) {
	name, priority := "", 1
	bestLen := -1
	for _, pkg := range packages {
		prefix := pkg.Path
		if prefix == "." {
			prefix = ""
		}
		if prefix != "" && !strings.HasPrefix(relPath, prefix+"/") {
			continue
		}
		if len(prefix) > bestLen {
			bestLen = len(prefix)
			name, priority = pkg.Name, pkg.Priority
		}
	}
	return name, priority
}

// packageName resolves a human name for the package from its manifest, falling
// back to the directory name.
func packageName(manifestPath string, manifestName string, pkgDir string) string {
	switch manifestName {
	case "go.mod":
		if name := goModuleName(manifestPath); name != "" {
			return name
		}
	case "package.json":
		if name := packageJSONName(manifestPath); name != "" {
			return name
		}
	}
	if pkgDir == "." {
		return "root"
	}
	return filepath.Base(pkgDir)
}

func goModuleName(path string) string {
	content, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "module ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "module "))
		}
	}
	return ""
}

func packageJSONName(path string) string {
	content, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	var manifest struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(content, &manifest); err != nil {
		return ""
	}
	return manifest.Name
}
