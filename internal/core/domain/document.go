package domain

// Note is the external unit of authored content. The note manager owns the
// content; the index only ever stores the ID as a foreign key.
type Note struct {
	// ID is the stable identifier for the note.
	ID string

	// Path is the filesystem location of the note's content.
	Path string
}

// Document represents one embedded span of a note's text.
// Documents are never mutated in place - reindexing a note deletes and
// recreates all of its documents.
type Document struct {
	// ID is the store-assigned primary key. It is monotonically increasing
	// and doubles as the join key into the vector side of the store.
	ID int64

	// NoteID identifies the owning note.
	NoteID string

	// StartOffset is the byte position of the span within the note's text.
	StartOffset int

	// Content is the literal text of the span.
	Content string
}

// Hit is a raw similarity match returned by the store, before the note ID
// has been resolved to a location.
type Hit struct {
	// DocID is the matched document.
	DocID int64

	// NoteID identifies the owning note.
	NoteID string

	// StartOffset is the byte position of the span within the note.
	StartOffset int

	// Content is the text of the matched span.
	Content string

	// Distance is the cosine distance to the query vector (0 = identical
	// direction). Lower is more similar.
	Distance float64
}
