package mcp

import (
	"context"

	"github.com/custodia-labs/noteseek/internal/core/domain"
	"github.com/custodia-labs/noteseek/internal/core/ports/driving"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results []domain.SearchResult
	err     error

	lastLimit int
}

func (m *mockSearchService) Search(
	_ context.Context,
	_ string,
	opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	m.lastLimit = opts.Limit
	return m.results, m.err
}

// mockIndexer is a mock implementation of driving.Indexer.
type mockIndexer struct {
	report *driving.NoteReport
	err    error

	lastNoteID string
}

func (m *mockIndexer) ReindexNote(_ context.Context, noteID string) (*driving.NoteReport, error) {
	m.lastNoteID = noteID
	return m.report, m.err
}

func (m *mockIndexer) ReindexAll(_ context.Context) (*driving.RunReport, error) {
	return &driving.RunReport{}, m.err
}

func (m *mockIndexer) ResetIndex(_ context.Context, force bool) error {
	if !force {
		return domain.ErrNotConfirmed
	}
	return m.err
}

func (m *mockIndexer) Status(_ context.Context) (*driving.RunStatus, error) {
	return &driving.RunStatus{}, nil
}

// mockNoteSource is a mock implementation of driven.NoteSource.
type mockNoteSource struct {
	notes map[string]string
}

func (m *mockNoteSource) List(_ context.Context) ([]domain.Note, error) {
	return nil, nil
}

func (m *mockNoteSource) IsNote(_ string) bool {
	return true
}

func (m *mockNoteSource) IDForPath(path string) (string, error) {
	return path, nil
}

func (m *mockNoteSource) PathForID(id string) string {
	return "/notes/" + id
}

func (m *mockNoteSource) Read(_ context.Context, id string) (string, error) {
	content, ok := m.notes[id]
	if !ok {
		return "", domain.ErrNotFound
	}
	return content, nil
}
