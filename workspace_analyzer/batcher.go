package workspace_analyzer

import (
	"sort"

	"docgen/models"
)

const defaultBatchTokenLimit = 8000

// BuildBatches groups files into batches under the token ceiling. Files are
// ordered by priority, then path, so batching is deterministic. A single file
// exceeding the ceiling gets a batch of its own rather than being dropped.
func BuildBatches(files []models.SourceFile, tokenLimit int) []models.FileBatch {
	if tokenLimit <= 0 {
		tokenLimit = defaultBatchTokenLimit
	}
	if len(files) == 0 {
		return nil
	}

	ordered := make([]models.SourceFile, len(files))
	copy(ordered, files)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Priority != ordered[j].Priority {
			return ordered[i].Priority > ordered[j].Priority
		}
		return ordered[i].Path < ordered[j].Path
	})

	var batches []models.FileBatch
	var current models.FileBatch
	for _, file := range ordered {
		if file.EstimatedTokens > tokenLimit {
			if len(current.Files) > 0 {
				batches = append(batches, current)
				current = models.FileBatch{}
			}
			batches = append(batches, models.FileBatch{
				Files:           []string{file.Path},
				EstimatedTokens: file.EstimatedTokens,
				Priority:        file.Priority,
			})
			continue
		}

		if len(current.Files) > 0 && current.EstimatedTokens+file.EstimatedTokens > tokenLimit {
			batches = append(batches, current)
			current = models.FileBatch{}
		}
		if len(current.Files) == 0 {
			current.Priority = file.Priority
		}
		current.Files = append(current.Files, file.Path)
		current.EstimatedTokens += file.EstimatedTokens
	}
	if len(current.Files) > 0 {
		batches = append(batches, current)
	}
	return batches
}
