package cli

import (
	"context"
	"sync"

	"github.com/custodia-labs/noteseek/internal/core/domain"
	"github.com/custodia-labs/noteseek/internal/core/ports/driven"
	"github.com/custodia-labs/noteseek/internal/core/ports/driving"
)

// mockSearchService implements driving.SearchService for testing.
type mockSearchService struct {
	results []domain.SearchResult
	err     error
}

func (m *mockSearchService) Search(
	_ context.Context, _ string, _ domain.SearchOptions,
) ([]domain.SearchResult, error) {
	return m.results, m.err
}

// mockIndexer implements driving.Indexer for testing.
type mockIndexer struct {
	noteReport *driving.NoteReport
	runReport  *driving.RunReport
	err        error

	resetCalls     int
	lastResetForce bool
}

func (m *mockIndexer) ReindexNote(_ context.Context, noteID string) (*driving.NoteReport, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.noteReport != nil {
		return m.noteReport, nil
	}
	return &driving.NoteReport{NoteID: noteID, Indexed: 1}, nil
}

func (m *mockIndexer) ReindexAll(_ context.Context) (*driving.RunReport, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.runReport != nil {
		return m.runReport, nil
	}
	return &driving.RunReport{RunID: "run-1", Notes: 2, Indexed: 5}, nil
}

func (m *mockIndexer) ResetIndex(_ context.Context, force bool) error {
	m.resetCalls++
	m.lastResetForce = force
	if !force {
		return domain.ErrNotConfirmed
	}
	return m.err
}

func (m *mockIndexer) Status(_ context.Context) (*driving.RunStatus, error) {
	return &driving.RunStatus{}, nil
}

// mockDocStore implements driven.DocumentStore for testing. The mutex
// matters for the watch command, which clears from timer goroutines.
type mockDocStore struct {
	mu sync.Mutex

	stats driven.IndexStats
	count int
	err   error

	clearedNotes    []string
	clearedPrefixes []string
}

func (m *mockDocStore) ClearNote(_ context.Context, noteID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearedNotes = append(m.clearedNotes, noteID)
	return m.err
}

func (m *mockDocStore) ClearNotesWithPrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearedPrefixes = append(m.clearedPrefixes, prefix)
	return m.err
}

// cleared returns the note IDs passed to ClearNote so far.
func (m *mockDocStore) cleared() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.clearedNotes...)
}

// prefixes returns the prefixes passed to ClearNotesWithPrefix so far.
func (m *mockDocStore) prefixes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.clearedPrefixes...)
}

func (m *mockDocStore) InsertDocument(
	_ context.Context, _ string, _ int, _ string, _ []float32,
) (int64, error) {
	return 0, m.err
}

func (m *mockDocStore) TopKSimilar(_ context.Context, _ []float32, _ int) ([]domain.Hit, error) {
	return nil, m.err
}

func (m *mockDocStore) CountForNote(_ context.Context, _ string) (int, error) {
	return m.count, m.err
}

func (m *mockDocStore) Stats(_ context.Context) (driven.IndexStats, error) {
	return m.stats, m.err
}

func (m *mockDocStore) Reset(_ context.Context) error { return m.err }

func (m *mockDocStore) Close() error { return nil }

// setupTestServices swaps all package-level services for mocks so commands
// never touch config, disk, or the network. Returns a cleanup function.
func setupTestServices() func() {
	oldIndex := indexService
	oldSearch := searchService
	oldStore := docStore
	oldNotes := noteSource
	oldEmbed := embedService

	indexService = &mockIndexer{}
	searchService = &mockSearchService{
		results: []domain.SearchResult{
			{
				NoteID:      "inbox.md",
				Path:        "/notes/inbox.md",
				StartOffset: 0,
				Content:     "a matching passage",
				Distance:    0.15,
			},
		},
	}
	docStore = &mockDocStore{stats: driven.IndexStats{Documents: 10, Notes: 3, Dimensions: 768}}
	noteSource = nil
	embedService = nil

	return func() {
		indexService = oldIndex
		searchService = oldSearch
		docStore = oldStore
		noteSource = oldNotes
		embedService = oldEmbed
	}
}
