package driven

import (
	"context"

	"github.com/custodia-labs/noteseek/internal/core/domain"
)

// DocumentStore is the single source of truth for document records and
// their embeddings. Backed by SQLite: a metadata table and a vector table
// joined on the document ID, always mutated together in one transaction.
//
// The central invariant: after any ClearNote or InsertDocument completes,
// the set of document IDs in the metadata table equals the set of keys in
// the vector table - no orphans in either direction, ever, including to
// concurrent readers mid-update.
type DocumentStore interface {
	// ClearNote deletes every document record and embedding belonging to
	// the note, atomically. Clearing a note with no records is a no-op.
	ClearNote(ctx context.Context, noteID string) error

	// ClearNotesWithPrefix deletes the records of every note whose ID
	// begins with prefix, atomically. Matching is case-sensitive. Used when
	// a whole notes subdirectory disappears. An empty prefix is rejected.
	ClearNotesWithPrefix(ctx context.Context, prefix string) error

	// InsertDocument atomically creates one document record and its
	// embedding, returning the assigned document ID. A vector whose length
	// differs from the store's configured dimension fails with a
	// *domain.StoreError wrapping *domain.DimensionMismatchError and leaves
	// no row in either table.
	InsertDocument(ctx context.Context, noteID string, startOffset int, content string, vector []float32) (int64, error)

	// TopKSimilar returns up to k documents ordered by ascending cosine
	// distance to the query vector, ties broken by ascending document ID.
	// An empty store yields an empty slice.
	TopKSimilar(ctx context.Context, query []float32, k int) ([]domain.Hit, error)

	// CountForNote reports how many document records a note currently has.
	CountForNote(ctx context.Context, noteID string) (int, error)

	// Stats reports totals across the whole index.
	Stats(ctx context.Context) (IndexStats, error)

	// Reset drops all document records and embeddings and recreates the
	// empty schema. Destructive; confirmation is enforced above this layer.
	Reset(ctx context.Context) error

	// Close releases the database connection.
	Close() error
}

// IndexStats summarises the contents of the store.
type IndexStats struct {
	// Documents is the total number of document records.
	Documents int

	// Notes is the number of distinct notes with at least one record.
	Notes int

	// Dimensions is the vector dimension the store was opened with.
	Dimensions int
}
