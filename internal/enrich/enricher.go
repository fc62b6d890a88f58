// Package enrich runs the AI analysis pass that follows every entry write.
package enrich

import (
	"context"
	"log"
	"sync"

	"vent/internal/ai"
	"vent/internal/entry"
)

// Analyzer is the slice of the ai package the orchestrator uses.
type Analyzer interface {
	AnalyzeSentiment(ctx context.Context, content string) (ai.Sentiment, error)
	GenerateTags(ctx context.Context, content string) ([]string, error)
	Summarize(ctx context.Context, content string) (string, error)
}

// EntryStore persists a subset of analysis fields onto an entry.
type EntryStore interface {
	ApplyAnalysis(ctx context.Context, entryID uint64, up entry.AnalysisUpdate) error
}

// Enricher fans one entry's content out to the three analysis kinds.
// Passes for different entries, and rapid successive passes for the same
// entry, are not coordinated: the last pass to finish wins per field.
type Enricher struct {
	Analyzer Analyzer
	Entries  EntryStore

	inflight sync.WaitGroup
}

// Submit starts an enrichment pass in the background and returns
// immediately; the entry-write response never waits on it.
func (e *Enricher) Submit(entryID uint64, content string) {
	e.inflight.Add(1)
	go func() {
		defer e.inflight.Done()
		e.enrich(context.Background(), entryID, content)
	}()
}

// Wait blocks until every submitted pass has settled.
func (e *Enricher) Wait() {
	e.inflight.Wait()
}

// enrich runs the three analyses concurrently, tolerating partial failure,
// then persists whatever succeeded in a single update. A failed kind is
// logged and its field keeps its prior value; there is no retry within the
// pass (the next content edit is the natural retry).
func (e *Enricher) enrich(ctx context.Context, entryID uint64, content string) {
	var up entry.AnalysisUpdate

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		s, err := e.Analyzer.AnalyzeSentiment(ctx, content)
		if err != nil {
			log.Printf("enrich: entry=%d kind=sentiment: %v\n", entryID, err)
			return
		}
		up.Sentiment = &s
	}()

	go func() {
		defer wg.Done()
		tags, err := e.Analyzer.GenerateTags(ctx, content)
		if err != nil {
			log.Printf("enrich: entry=%d kind=tags: %v\n", entryID, err)
			return
		}
		if tags == nil {
			tags = []string{}
		}
		up.Tags = tags
	}()

	go func() {
		defer wg.Done()
		summary, err := e.Analyzer.Summarize(ctx, content)
		if err != nil {
			log.Printf("enrich: entry=%d kind=summary: %v\n", entryID, err)
			return
		}
		up.Summary = &summary
	}()

	wg.Wait()

	if err := e.Entries.ApplyAnalysis(ctx, entryID, up); err != nil {
		log.Printf("enrich: entry=%d persist: %v\n", entryID, err)
	}
}
