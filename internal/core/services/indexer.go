package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/noteseek/internal/chunker"
	"github.com/custodia-labs/noteseek/internal/core/domain"
	"github.com/custodia-labs/noteseek/internal/core/ports/driven"
	"github.com/custodia-labs/noteseek/internal/core/ports/driving"
	"github.com/custodia-labs/noteseek/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.Indexer = (*IndexService)(nil)

// DefaultEmbedWorkers is the number of concurrent embedding requests issued
// while reindexing a note.
const DefaultEmbedWorkers = 4

// IndexService coordinates reindexing: clear, chunk, embed, insert.
type IndexService struct {
	store     driven.DocumentStore
	embedding driven.EmbeddingService
	source    driven.NoteSource
	policy    chunker.Policy
	workers   int

	// Run status tracking
	mu     sync.RWMutex
	status *driving.RunStatus
}

// NewIndexService creates a new index service. A nil policy defaults to
// paragraph chunking; workers <= 0 defaults to DefaultEmbedWorkers.
func NewIndexService(
	store driven.DocumentStore,
	embedding driven.EmbeddingService,
	source driven.NoteSource,
	policy chunker.Policy,
	workers int,
) *IndexService {
	if policy == nil {
		policy = chunker.Paragraph
	}
	if workers <= 0 {
		workers = DefaultEmbedWorkers
	}
	return &IndexService{
		store:     store,
		embedding: embedding,
		source:    source,
		policy:    policy,
		workers:   workers,
	}
}

// ReindexNote replaces every document record for the note with records
// derived from its current content.
//
// The clear happens synchronously before any embedding is issued, so the
// note's old epoch is gone before the new one begins. Spans are then
// embedded concurrently; each successful embedding becomes one atomic
// insert. A span whose embedding fails is reported in the NoteReport and
// does not roll back its siblings.
func (s *IndexService) ReindexNote(ctx context.Context, noteID string) (*driving.NoteReport, error) {
	if s.embedding == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if s.store == nil {
		return nil, domain.ErrStoreUnavailable
	}

	text, err := s.source.Read(ctx, noteID)
	if err != nil {
		return nil, fmt.Errorf("read note: %w", err)
	}

	return s.reindexText(ctx, noteID, text)
}

// reindexText is the shared clear-chunk-embed-insert cycle.
func (s *IndexService) reindexText(ctx context.Context, noteID, text string) (*driving.NoteReport, error) {
	if err := s.store.ClearNote(ctx, noteID); err != nil {
		return nil, fmt.Errorf("clear note: %w", err)
	}

	spans := s.policy(text)
	report := &driving.NoteReport{NoteID: noteID}
	if len(spans) == 0 {
		logger.Debug("Note %s produced no documents", noteID)
		return report, nil
	}

	logger.Debug("Reindexing %s: %d documents", noteID, len(spans))

	// Embed spans concurrently with a bounded worker pool. Inserts happen
	// on the worker goroutines; each insert is its own transaction, so
	// out-of-order completion is harmless.
	type outcome struct {
		span chunker.Span
		err  error
	}

	jobs := make(chan chunker.Span)
	results := make(chan outcome)

	var wg sync.WaitGroup
	workers := s.workers
	if workers > len(spans) {
		workers = len(spans)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for span := range jobs {
				results <- outcome{span: span, err: s.indexSpan(ctx, noteID, span)}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, span := range spans {
			select {
			case jobs <- span:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for res := range results {
		if res.err != nil {
			logger.Warn("Document at offset %d of %s failed: %v", res.span.StartOffset, noteID, res.err)
			report.Failures = append(report.Failures, driving.DocumentFailure{
				NoteID:      noteID,
				StartOffset: res.span.StartOffset,
				Err:         res.err,
			})
			continue
		}
		report.Indexed++
	}

	if err := ctx.Err(); err != nil {
		return report, err
	}

	// Deterministic failure order for reporting.
	sort.Slice(report.Failures, func(i, j int) bool {
		return report.Failures[i].StartOffset < report.Failures[j].StartOffset
	})

	return report, nil
}

// indexSpan embeds one span and inserts it. The insert is skipped entirely
// when the embedding fails, so the store never sees the document.
func (s *IndexService) indexSpan(ctx context.Context, noteID string, span chunker.Span) error {
	vector, err := s.embedding.Embed(ctx, span.Text)
	if err != nil {
		var embErr *domain.EmbeddingError
		if errors.As(err, &embErr) {
			return err
		}
		return &domain.EmbeddingError{Cause: err}
	}

	if _, err := s.store.InsertDocument(ctx, noteID, span.StartOffset, span.Text, vector); err != nil {
		return err
	}
	return nil
}

// ReindexAll reindexes every note the source enumerates, sequentially.
// Each note's reindex individually satisfies the clear-then-insert
// atomicity guarantees; a note that fails wholesale is recorded and does
// not stop the run.
func (s *IndexService) ReindexAll(ctx context.Context) (*driving.RunReport, error) {
	if s.embedding == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	all, err := s.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	report := &driving.RunReport{RunID: uuid.New().String()}
	status := &driving.RunStatus{RunID: report.RunID, Running: true}
	s.setStatus(status)
	defer s.clearStatus()

	logger.Info("Reindex run %s: %d notes", report.RunID, len(all))

	for _, note := range all {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		noteReport, err := s.ReindexNote(ctx, note.ID)
		if err != nil {
			report.Failures = append(report.Failures, driving.DocumentFailure{
				NoteID: note.ID,
				Err:    err,
			})
			s.bumpStatus(1, 1)
			continue
		}

		report.Notes++
		report.Indexed += noteReport.Indexed
		report.Failures = append(report.Failures, noteReport.Failures...)
		s.bumpStatus(1, len(noteReport.Failures))
	}

	logger.Info("Reindex run %s complete: %d notes, %d documents, %d failures",
		report.RunID, report.Notes, report.Indexed, len(report.Failures))
	return report, nil
}

// ResetIndex drops every document record and embedding.
func (s *IndexService) ResetIndex(ctx context.Context, force bool) error {
	if !force {
		return domain.ErrNotConfirmed
	}
	if s.store == nil {
		return domain.ErrStoreUnavailable
	}
	if err := s.store.Reset(ctx); err != nil {
		return fmt.Errorf("reset index: %w", err)
	}
	logger.Info("Index reset")
	return nil
}

// Status returns the progress of an in-flight reindex run, if any.
func (s *IndexService) Status(_ context.Context) (*driving.RunStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.status == nil {
		return &driving.RunStatus{}, nil
	}
	// Return a copy to avoid race conditions
	return &driving.RunStatus{
		RunID:          s.status.RunID,
		Running:        s.status.Running,
		NotesProcessed: s.status.NotesProcessed,
		ErrorCount:     s.status.ErrorCount,
	}, nil
}

// setStatus records the active run.
func (s *IndexService) setStatus(status *driving.RunStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// bumpStatus advances the active run's counters.
func (s *IndexService) bumpStatus(notes, errs int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != nil {
		s.status.NotesProcessed += notes
		s.status.ErrorCount += errs
	}
}

// clearStatus marks the run finished.
func (s *IndexService) clearStatus() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = nil
}
