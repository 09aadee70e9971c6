package models

import "time"

// ProcessingError identifies a single failure during a run.
type ProcessingError struct {
	File      string    `json:"file"`
	NodeName  string    `json:"node_name,omitempty"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// ProcessingStats accumulates counters for one run. The orchestrator is the
// single owner; all mutation happens in its collector goroutine.
type ProcessingStats struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	FilesSeen      int `json:"files_seen"`
	FilesProcessed int `json:"files_processed"`
	ModifiedFiles  int `json:"modified_files"`

	NodesConsidered int `json:"nodes_considered"`
	Successes       int `json:"successes"`
	Failures        int `json:"failures"`
	Skips           int `json:"skips"`
	SkippedDocs     int `json:"skipped_docs"`
	CacheHits       int `json:"cache_hits"`

	EmbeddingSuccesses      int `json:"embedding_successes"`
	EmbeddingFailures       int `json:"embedding_failures"`
	RelationshipsDiscovered int `json:"relationships_discovered"`

	DryRunLinesAdded   int `json:"dry_run_lines_added,omitempty"`
	DryRunLinesRemoved int `json:"dry_run_lines_removed,omitempty"`

	Errors []ProcessingError `json:"errors"`
}
