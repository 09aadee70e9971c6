package orchestrator

import (
	"time"

	"docgen/models"
)

type eventKind int

const (
	evNodeConsidered eventKind = iota
	evSuccess
	evSkip
	evFailure
	evCacheHit
	evFileProcessed
	evFileModified
	evDocsSkipped
	evLineDelta
	evEmbeddings
	evRelationships
)

// event is one stats update flowing from worker goroutines to the collector.
type event struct {
	kind     eventKind
	file     string
	node     string
	err      string
	added    int
	removed  int
	count    int
	failures int
}

// collector is the sole owner of the run's ProcessingStats. Workers send
// events; nothing else touches the struct until close() hands it back.
type collector struct {
	events chan event
	done   chan *models.ProcessingStats
}

func newCollector(runID string, filesSeen int) *collector {
	c := &collector{
		events: make(chan event, 64),
		done:   make(chan *models.ProcessingStats, 1),
	}
	go c.loop(runID, filesSeen)
	return c
}

func (c *collector) loop(runID string, filesSeen int) {
	stats := &models.ProcessingStats{
		RunID:     runID,
		StartedAt: time.Now(),
		FilesSeen: filesSeen,
	}
	for ev := range c.events {
		switch ev.kind {
		case evNodeConsidered:
			stats.NodesConsidered++
		case evSuccess:
			stats.Successes++
		case evSkip:
			stats.Skips++
		case evFailure:
			stats.Failures++
			stats.Errors = append(stats.Errors, models.ProcessingError{
				File:      ev.file,
				NodeName:  ev.node,
				Error:     ev.err,
				Timestamp: time.Now(),
			})
		case evCacheHit:
			stats.CacheHits++
		case evFileProcessed:
			stats.FilesProcessed++
		case evFileModified:
			stats.ModifiedFiles++
		case evDocsSkipped:
			stats.SkippedDocs += ev.count
		case evLineDelta:
			stats.DryRunLinesAdded += ev.added
			stats.DryRunLinesRemoved += ev.removed
		case evEmbeddings:
			stats.EmbeddingSuccesses += ev.count
			stats.EmbeddingFailures += ev.failures
		case evRelationships:
			stats.RelationshipsDiscovered += ev.count
		}
	}
	stats.FinishedAt = time.Now()
	c.done <- stats
}

func (c *collector) send(ev event) {
	c.events <- ev
}

// close stops the collector and returns the finished stats.
func (c *collector) close() *models.ProcessingStats {
	close(c.events)
	return <-c.done
}
