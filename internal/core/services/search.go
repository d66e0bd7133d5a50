package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/noteseek/internal/core/domain"
	"github.com/custodia-labs/noteseek/internal/core/ports/driven"
	"github.com/custodia-labs/noteseek/internal/core/ports/driving"
	"github.com/custodia-labs/noteseek/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService is the query engine: it embeds the query, runs the top-K
// similarity scan, and locates each hit via the note source.
type SearchService struct {
	store     driven.DocumentStore
	embedding driven.EmbeddingService
	source    driven.NoteSource
}

// NewSearchService creates a new search service.
func NewSearchService(
	store driven.DocumentStore,
	embedding driven.EmbeddingService,
	source driven.NoteSource,
) *SearchService {
	return &SearchService{
		store:     store,
		embedding: embedding,
		source:    source,
	}
}

// Search performs a similarity search across all indexed documents.
// An embedding failure propagates without the store being queried.
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q", query)

	// Return empty for empty query
	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.SearchResult{}, nil
	}

	if s.embedding == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if s.store == nil {
		return nil, domain.ErrStoreUnavailable
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = domain.DefaultSearchLimit
	}
	logger.Debug("Limit: %d", limit)

	logger.Debug("Generating query embedding...")
	vector, err := s.embedding.Embed(ctx, query)
	if err != nil {
		logger.Warn("Query embedding failed: %v", err)
		return nil, fmt.Errorf("embed query: %w", err)
	}
	logger.Debug("Query embedding: %d dimensions", len(vector))

	hits, err := s.store.TopKSimilar(ctx, vector, limit)
	if err != nil {
		logger.Warn("Similarity search failed: %v", err)
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	logger.Debug("Raw results: %d hits", len(hits))

	results := make([]domain.SearchResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, domain.SearchResult{
			NoteID:      hit.NoteID,
			Path:        s.locate(hit.NoteID),
			StartOffset: hit.StartOffset,
			Content:     hit.Content,
			Distance:    hit.Distance,
		})
	}

	logger.Info("Final results: %d", len(results))
	return results, nil
}

// locate resolves a note ID to its path, tolerating a missing source.
func (s *SearchService) locate(noteID string) string {
	if s.source == nil {
		return ""
	}
	return s.source.PathForID(noteID)
}
