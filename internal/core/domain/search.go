package domain

// DefaultSearchLimit is the number of results returned when the caller does
// not ask for a specific limit.
const DefaultSearchLimit = 20

// SearchOptions configures a similarity search.
type SearchOptions struct {
	// Limit is the maximum number of results (default 20).
	Limit int
}

// SearchResult represents a single located search hit.
// It carries everything the presentation layer needs to jump to the match:
// the note, the byte offset within it, and the display text.
type SearchResult struct {
	// NoteID identifies the matched note.
	NoteID string

	// Path is the resolved filesystem location of the note, when the note
	// source can map the ID. Empty if the note has since disappeared.
	Path string

	// StartOffset is the byte position of the matched span within the note.
	StartOffset int

	// Content is the text of the matched span.
	Content string

	// Distance is the cosine distance to the query (lower is better).
	Distance float64
}
