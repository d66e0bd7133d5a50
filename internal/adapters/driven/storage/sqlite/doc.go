// Package sqlite implements the dual document/embedding store on a single
// SQLite database file.
//
// Two tables share the doc_id key: documents (note_id, start_offset,
// content) and embeddings (one fixed-length float32 vector per row, stored
// as a little-endian BLOB). Every write touches both tables inside one
// transaction, so readers never observe a document without its vector or a
// vector without its document.
//
// Similarity search is an exact scan: cosine distance against every stored
// vector, sorted ascending with doc_id as the tie-breaker. For a personal
// note corpus this is well within budget and keeps the vectors inside the
// same transactional boundary as the metadata.
package sqlite
