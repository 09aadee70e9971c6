package models

// WorkspacePackage is a package discovered in the workspace, identified by its
// manifest file. Packages are immutable after discovery and ordered by
// Priority when batches are built.
type WorkspacePackage struct {
	Name         string
	Path         string
	Kind         string
	ManifestPath string
	Priority     int
}

// SourceFile is a candidate file for documentation generation.
type SourceFile struct {
	Path            string
	PackageName     string
	Language        string
	Size            int64
	EstimatedTokens int
	Priority        int
	Imports         []string
}

// FileBatch groups files so each batch stays under the configured token
// ceiling. Batches are consumed once per run.
type FileBatch struct {
	Files           []string
	EstimatedTokens int
	Priority        int
}
