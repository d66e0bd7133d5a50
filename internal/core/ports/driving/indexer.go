package driving

import "context"

// Indexer coordinates reindexing of notes into the embedding store.
type Indexer interface {
	// ReindexNote replaces every document record for the note with records
	// derived from its current content. Per-document embedding failures are
	// reported in the NoteReport and do not abort sibling documents.
	ReindexNote(ctx context.Context, noteID string) (*NoteReport, error)

	// ReindexAll reindexes every note the source enumerates.
	ReindexAll(ctx context.Context) (*RunReport, error)

	// ResetIndex drops every document record and embedding.
	// Without force it fails with domain.ErrNotConfirmed.
	ResetIndex(ctx context.Context, force bool) error

	// Status returns the progress of an in-flight ReindexAll run, if any.
	Status(ctx context.Context) (*RunStatus, error)
}

// DocumentFailure records one document whose embedding or insert failed
// during a reindex.
type DocumentFailure struct {
	// NoteID identifies the owning note.
	NoteID string

	// StartOffset is the byte position of the failed span.
	StartOffset int

	// Err is the failure.
	Err error
}

// NoteReport summarises the outcome of reindexing a single note.
type NoteReport struct {
	// NoteID identifies the note.
	NoteID string

	// Indexed is the number of documents successfully inserted.
	Indexed int

	// Failures lists documents that could not be embedded or inserted.
	Failures []DocumentFailure
}

// RunReport summarises a full-corpus reindex.
type RunReport struct {
	// RunID uniquely identifies this reindex run.
	RunID string

	// Notes is the number of notes processed.
	Notes int

	// Indexed is the total number of documents inserted.
	Indexed int

	// Failures lists every document failure across the run.
	Failures []DocumentFailure
}

// RunStatus describes an in-flight reindex run.
type RunStatus struct {
	// RunID identifies the run, empty when idle.
	RunID string

	// Running indicates whether a reindex is in progress.
	Running bool

	// NotesProcessed is the count of notes completed so far.
	NotesProcessed int

	// ErrorCount is the number of document failures so far.
	ErrorCount int
}
