package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/noteseek/internal/chunker"
	"github.com/custodia-labs/noteseek/internal/core/domain"
	"github.com/custodia-labs/noteseek/internal/core/ports/driven"
)

// --- Mock implementations ---

// storedDoc is one record held by the mock store.
type storedDoc struct {
	id          int64
	noteID      string
	startOffset int
	content     string
	vector      []float32
}

// mockDocumentStore implements driven.DocumentStore in memory.
// It is safe for concurrent use because the index service embeds and
// inserts from multiple goroutines.
type mockDocumentStore struct {
	mu     sync.Mutex
	docs   []storedDoc
	nextID int64

	hits []domain.Hit

	clearErr  error
	insertErr error
	topKErr   error
	resetErr  error

	resetCalls int
	lastTopK   int
}

func (m *mockDocumentStore) ClearNote(_ context.Context, noteID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.clearErr != nil {
		return m.clearErr
	}
	kept := m.docs[:0]
	for _, d := range m.docs {
		if d.noteID != noteID {
			kept = append(kept, d)
		}
	}
	m.docs = kept
	return nil
}

func (m *mockDocumentStore) ClearNotesWithPrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.clearErr != nil {
		return m.clearErr
	}
	kept := m.docs[:0]
	for _, d := range m.docs {
		if !strings.HasPrefix(d.noteID, prefix) {
			kept = append(kept, d)
		}
	}
	m.docs = kept
	return nil
}

func (m *mockDocumentStore) InsertDocument(
	_ context.Context, noteID string, startOffset int, content string, vector []float32,
) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return 0, m.insertErr
	}
	m.nextID++
	m.docs = append(m.docs, storedDoc{
		id:          m.nextID,
		noteID:      noteID,
		startOffset: startOffset,
		content:     content,
		vector:      vector,
	})
	return m.nextID, nil
}

func (m *mockDocumentStore) TopKSimilar(_ context.Context, _ []float32, k int) ([]domain.Hit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastTopK = k
	if m.topKErr != nil {
		return nil, m.topKErr
	}
	if k > len(m.hits) {
		return m.hits, nil
	}
	return m.hits[:k], nil
}

func (m *mockDocumentStore) CountForNote(_ context.Context, noteID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, d := range m.docs {
		if d.noteID == noteID {
			count++
		}
	}
	return count, nil
}

func (m *mockDocumentStore) Stats(_ context.Context) (driven.IndexStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]bool{}
	for _, d := range m.docs {
		seen[d.noteID] = true
	}
	return driven.IndexStats{Documents: len(m.docs), Notes: len(seen)}, nil
}

func (m *mockDocumentStore) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.resetErr != nil {
		return m.resetErr
	}
	m.resetCalls++
	m.docs = nil
	return nil
}

func (m *mockDocumentStore) Close() error {
	return nil
}

// docsFor returns the stored docs for a note, sorted by start offset.
func (m *mockDocumentStore) docsFor(noteID string) []storedDoc {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []storedDoc
	for _, d := range m.docs {
		if d.noteID == noteID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].startOffset < out[j].startOffset })
	return out
}

// mockEmbeddingService implements driven.EmbeddingService for testing.
type mockEmbeddingService struct {
	embedding []float32
	embedErr  error
	dims      int

	// failTexts makes Embed fail for specific inputs only.
	failTexts map[string]bool

	mu    sync.Mutex
	calls int
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if m.failTexts[text] {
		return nil, &domain.EmbeddingError{Cause: fmt.Errorf("provider rejected %q", text)}
	}
	if m.embedding != nil {
		return m.embedding, nil
	}
	return []float32{1, 0, 0}, nil
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		result[i] = vec
	}
	return result, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	if m.dims > 0 {
		return m.dims
	}
	return 3
}

func (m *mockEmbeddingService) ModelName() string {
	return "mock-embed"
}

func (m *mockEmbeddingService) Ping(_ context.Context) error {
	return nil
}

func (m *mockEmbeddingService) Close() error {
	return nil
}

func (m *mockEmbeddingService) embedCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockNoteSource implements driven.NoteSource over a map of ID to content.
type mockNoteSource struct {
	notes   map[string]string
	listErr error
}

func (m *mockNoteSource) List(_ context.Context) ([]domain.Note, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	ids := make([]string, 0, len(m.notes))
	for id := range m.notes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	found := make([]domain.Note, len(ids))
	for i, id := range ids {
		found[i] = domain.Note{ID: id, Path: "/notes/" + id}
	}
	return found, nil
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
		return "", fmt.Errorf("read note %s: %w", id, domain.ErrNotFound)
	}
	return content, nil
}

// setupIndexService wires an IndexService over fresh mocks.
func setupIndexService(t *testing.T, notes map[string]string) (*IndexService, *mockDocumentStore, *mockEmbeddingService) {
	t.Helper()
	store := &mockDocumentStore{}
	embedder := &mockEmbeddingService{}
	source := &mockNoteSource{notes: notes}
	return NewIndexService(store, embedder, source, chunker.Paragraph, 2), store, embedder
}

// ==================== ReindexNote ====================

func TestReindexNote_ReplacesExistingRecords(t *testing.T) {
	svc, store, _ := setupIndexService(t, map[string]string{
		"inbox.md": "New first paragraph.\n\nNew second paragraph.",
	})
	ctx := context.Background()

	// Seed stale records from a previous epoch of the note.
	_, err := store.InsertDocument(ctx, "inbox.md", 0, "stale content", []float32{9, 9, 9})
	require.NoError(t, err)
	_, err = store.InsertDocument(ctx, "other.md", 0, "unrelated", []float32{1, 1, 1})
	require.NoError(t, err)

	report, err := svc.ReindexNote(ctx, "inbox.md")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Indexed)
	assert.Empty(t, report.Failures)

	docs := store.docsFor("inbox.md")
	require.Len(t, docs, 2)
	assert.Equal(t, "New first paragraph.", docs[0].content)
	assert.Equal(t, 0, docs[0].startOffset)
	assert.Equal(t, "New second paragraph.", docs[1].content)
	assert.Equal(t, 22, docs[1].startOffset)

	// The sibling note is untouched.
	assert.Len(t, store.docsFor("other.md"), 1)
}

func TestReindexNote_EmptyNoteClearsRecords(t *testing.T) {
	svc, store, embedder := setupIndexService(t, map[string]string{
		"empty.md": "  \n\n\t\n",
	})
	ctx := context.Background()

	_, err := store.InsertDocument(ctx, "empty.md", 0, "old", []float32{1, 0, 0})
	require.NoError(t, err)
	_, err = store.InsertDocument(ctx, "other.md", 0, "keep", []float32{0, 1, 0})
	require.NoError(t, err)

	report, err := svc.ReindexNote(ctx, "empty.md")
	require.NoError(t, err)
	assert.Equal(t, 0, report.Indexed)
	assert.Empty(t, report.Failures)

	// No documents remain and no embeddings were requested.
	assert.Empty(t, store.docsFor("empty.md"))
	assert.Len(t, store.docsFor("other.md"), 1)
	assert.Equal(t, 0, embedder.embedCalls())
}

func TestReindexNote_PartialEmbeddingFailure(t *testing.T) {
	svc, store, embedder := setupIndexService(t, map[string]string{
		"note.md": "First part.\n\nBroken part.\n\nThird part.",
	})
	embedder.failTexts = map[string]bool{"Broken part.": true}

	report, err := svc.ReindexNote(context.Background(), "note.md")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Indexed)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "note.md", report.Failures[0].NoteID)
	assert.Equal(t, 13, report.Failures[0].StartOffset)

	var embErr *domain.EmbeddingError
	assert.True(t, errors.As(report.Failures[0].Err, &embErr))

	// The two healthy spans landed; the failed one left no record.
	docs := store.docsFor("note.md")
	require.Len(t, docs, 2)
	assert.Equal(t, "First part.", docs[0].content)
	assert.Equal(t, "Third part.", docs[1].content)
}

func TestReindexNote_MissingNote(t *testing.T) {
	svc, _, _ := setupIndexService(t, map[string]string{})

	_, err := svc.ReindexNote(context.Background(), "ghost.md")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestReindexNote_NilEmbeddingService(t *testing.T) {
	svc := NewIndexService(&mockDocumentStore{}, nil, &mockNoteSource{}, nil, 0)

	_, err := svc.ReindexNote(context.Background(), "inbox.md")
	assert.True(t, errors.Is(err, domain.ErrEmbeddingUnavailable))
}

func TestReindexNote_ClearFailureAborts(t *testing.T) {
	svc, store, embedder := setupIndexService(t, map[string]string{
		"note.md": "Some content.",
	})
	store.clearErr = errors.New("database locked")

	_, err := svc.ReindexNote(context.Background(), "note.md")
	require.Error(t, err)
	assert.Equal(t, 0, embedder.embedCalls())
}

// ==================== ReindexAll ====================

func TestReindexAll(t *testing.T) {
	svc, store, _ := setupIndexService(t, map[string]string{
		"a.md": "Alpha one.\n\nAlpha two.",
		"b.md": "Beta.",
		"c.md": "\n\n",
	})

	report, err := svc.ReindexAll(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 3, report.Notes)
	assert.Equal(t, 3, report.Indexed)
	assert.Empty(t, report.Failures)

	assert.Len(t, store.docsFor("a.md"), 2)
	assert.Len(t, store.docsFor("b.md"), 1)
	assert.Empty(t, store.docsFor("c.md"))
}

func TestReindexAll_NoteFailureDoesNotStopRun(t *testing.T) {
	svc, store, embedder := setupIndexService(t, map[string]string{
		"good.md": "Fine content.",
		"sick.md": "Doomed content.",
	})
	embedder.failTexts = map[string]bool{"Doomed content.": true}

	report, err := svc.ReindexAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Notes)
	assert.Equal(t, 1, report.Indexed)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "sick.md", report.Failures[0].NoteID)

	assert.Len(t, store.docsFor("good.md"), 1)
	assert.Empty(t, store.docsFor("sick.md"))
}

func TestReindexAll_ListError(t *testing.T) {
	store := &mockDocumentStore{}
	source := &mockNoteSource{listErr: errors.New("walk failed")}
	svc := NewIndexService(store, &mockEmbeddingService{}, source, nil, 0)

	_, err := svc.ReindexAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list notes")
}

// ==================== ResetIndex ====================

func TestResetIndex_RequiresForce(t *testing.T) {
	svc, store, _ := setupIndexService(t, nil)

	err := svc.ResetIndex(context.Background(), false)
	assert.True(t, errors.Is(err, domain.ErrNotConfirmed))
	assert.Equal(t, 0, store.resetCalls)

	require.NoError(t, svc.ResetIndex(context.Background(), true))
	assert.Equal(t, 1, store.resetCalls)
}

// ==================== Status ====================

func TestStatus_Idle(t *testing.T) {
	svc, _, _ := setupIndexService(t, nil)

	status, err := svc.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, status.Running)
	assert.Empty(t, status.RunID)
}
