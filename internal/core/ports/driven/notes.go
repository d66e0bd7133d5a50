package driven

import (
	"context"

	"github.com/custodia-labs/noteseek/internal/core/domain"
)

// NoteSource is the note-management collaborator: it owns the mapping
// between note IDs and content on disk. The index never reads note files
// except through this port.
type NoteSource interface {
	// List enumerates every note currently known to the source.
	List(ctx context.Context) ([]domain.Note, error)

	// IsNote reports whether the path refers to a valid note file.
	IsNote(path string) bool

	// IDForPath derives the stable note ID for a path.
	// Returns domain.ErrInvalidInput when the path is not a note.
	IDForPath(path string) (string, error)

	// PathForID resolves a note ID back to its filesystem path.
	PathForID(id string) string

	// Read returns the note's current content.
	// Returns domain.ErrNotFound when no such note exists.
	Read(ctx context.Context, id string) (string, error)
}
