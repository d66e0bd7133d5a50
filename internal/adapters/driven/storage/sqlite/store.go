package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/noteseek/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/noteseek/internal/core/domain"
	"github.com/custodia-labs/noteseek/internal/core/ports/driven"
)

// metaKeyDimensions is the index_meta key recording the vector dimension.
const metaKeyDimensions = "dimensions"

// Ensure Store implements the interface.
var _ driven.DocumentStore = (*Store)(nil)

// Store is the SQLite-backed dual store: document metadata and embedding
// vectors in one database file, mutated together transactionally.
type Store struct {
	db   *sql.DB
	path string
	dims int
}

// NewStore opens (or creates) the store at the specified data directory
// with the given embedding dimension. If dataDir is empty, defaults to
// ~/.noteseek/data/index.db.
//
// The dimension is pinned in the database on first open. Opening an
// existing store with a different dimension fails: stored vectors from
// another dimension are unusable and the store must be reset.
func NewStore(dataDir string, dimensions int) (*Store, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("%w: dimensions must be positive", domain.ErrInvalidInput)
	}

	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".noteseek", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "index.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
		dims: dimensions,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	// Pin or verify the embedding dimension
	if err := s.checkDimensions(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Dimensions returns the vector dimension the store was opened with.
func (s *Store) Dimensions() int {
	return s.dims
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version,
		); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// checkDimensions pins the configured dimension on first open and verifies
// it on every subsequent open.
func (s *Store) checkDimensions() error {
	var stored string
	err := s.db.QueryRow(
		"SELECT value FROM index_meta WHERE key = ?", metaKeyDimensions,
	).Scan(&stored)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = s.db.Exec(
			"INSERT INTO index_meta (key, value) VALUES (?, ?)",
			metaKeyDimensions, strconv.Itoa(s.dims),
		)
		if err != nil {
			return &domain.StoreError{Op: "pin dimensions", Cause: err}
		}
		return nil

	case err != nil:
		return &domain.StoreError{Op: "read dimensions", Cause: err}
	}

	pinned, err := strconv.Atoi(stored)
	if err != nil {
		return &domain.StoreError{Op: "read dimensions", Cause: err}
	}
	if pinned != s.dims {
		return &domain.StoreError{
			Op: "open",
			Cause: fmt.Errorf(
				"store was built with %d-dimensional vectors, configured for %d; run reset to rebuild",
				pinned, s.dims),
		}
	}
	return nil
}

// ClearNote deletes every document record and embedding for the note in one
// transaction. Clearing a note with no records is a no-op.
func (s *Store) ClearNote(ctx context.Context, noteID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &domain.StoreError{Op: "clear note", Cause: err}
	}
	defer tx.Rollback() //nolint:errcheck

	// Embeddings first: the FK cascade would cover this, but the delete is
	// kept explicit so the pairing does not depend on pragma state.
	_, err = tx.ExecContext(ctx, `
		DELETE FROM embeddings
		WHERE doc_id IN (SELECT doc_id FROM documents WHERE note_id = ?)
	`, noteID)
	if err != nil {
		return &domain.StoreError{Op: "clear note", Cause: err}
	}

	_, err = tx.ExecContext(ctx, "DELETE FROM documents WHERE note_id = ?", noteID)
	if err != nil {
		return &domain.StoreError{Op: "clear note", Cause: err}
	}

	if err := tx.Commit(); err != nil {
		return &domain.StoreError{Op: "clear note", Cause: err}
	}
	return nil
}

// ClearNotesWithPrefix deletes every document record and embedding for
// notes whose ID starts with prefix, in one transaction. Matching is
// case-sensitive and every character of the prefix matches literally;
// LIKE would fold ASCII case and treat % and _ as wildcards.
func (s *Store) ClearNotesWithPrefix(ctx context.Context, prefix string) error {
	if prefix == "" {
		return fmt.Errorf("%w: empty note ID prefix", domain.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &domain.StoreError{Op: "clear prefix", Cause: err}
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		DELETE FROM embeddings
		WHERE doc_id IN (
			SELECT doc_id FROM documents WHERE substr(note_id, 1, length(?)) = ?
		)
	`, prefix, prefix)
	if err != nil {
		return &domain.StoreError{Op: "clear prefix", Cause: err}
	}

	_, err = tx.ExecContext(ctx,
		"DELETE FROM documents WHERE substr(note_id, 1, length(?)) = ?", prefix, prefix)
	if err != nil {
		return &domain.StoreError{Op: "clear prefix", Cause: err}
	}

	if err := tx.Commit(); err != nil {
		return &domain.StoreError{Op: "clear prefix", Cause: err}
	}
	return nil
}

// InsertDocument creates one document record and its embedding atomically,
// returning the assigned document ID.
func (s *Store) InsertDocument(
	ctx context.Context, noteID string, startOffset int, content string, vector []float32,
) (int64, error) {
	if len(vector) != s.dims {
		return 0, &domain.StoreError{
			Op:    "insert document",
			Cause: &domain.DimensionMismatchError{Want: s.dims, Got: len(vector)},
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, &domain.StoreError{Op: "insert document", Cause: err}
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, `
		INSERT INTO documents (note_id, start_offset, content)
		VALUES (?, ?, ?)
	`, noteID, startOffset, content)
	if err != nil {
		return 0, &domain.StoreError{Op: "insert document", Cause: err}
	}

	docID, err := res.LastInsertId()
	if err != nil {
		return 0, &domain.StoreError{Op: "insert document", Cause: err}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO embeddings (doc_id, vector) VALUES (?, ?)
	`, docID, float32SliceToBytes(vector))
	if err != nil {
		return 0, &domain.StoreError{Op: "insert embedding", Cause: err}
	}

	if err := tx.Commit(); err != nil {
		return 0, &domain.StoreError{Op: "insert document", Cause: err}
	}
	return docID, nil
}

// TopKSimilar scans every embedding, computes cosine distance to the query,
// and returns up to k hits ordered by ascending distance, ties broken by
// ascending document ID.
func (s *Store) TopKSimilar(ctx context.Context, query []float32, k int) ([]domain.Hit, error) {
	if len(query) != s.dims {
		return nil, &domain.StoreError{
			Op:    "similarity scan",
			Cause: &domain.DimensionMismatchError{Want: s.dims, Got: len(query)},
		}
	}
	if k <= 0 {
		return []domain.Hit{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT d.doc_id, d.note_id, d.start_offset, d.content, e.vector
		FROM embeddings e
		JOIN documents d ON d.doc_id = e.doc_id
		ORDER BY d.doc_id
	`)
	if err != nil {
		return nil, &domain.StoreError{Op: "similarity scan", Cause: err}
	}
	defer rows.Close()

	hits := []domain.Hit{}
	for rows.Next() {
		var hit domain.Hit
		var blob []byte
		if err := rows.Scan(&hit.DocID, &hit.NoteID, &hit.StartOffset, &hit.Content, &blob); err != nil {
			return nil, &domain.StoreError{Op: "similarity scan", Cause: err}
		}
		hit.Distance = cosineDistance(query, bytesToFloat32Slice(blob))
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StoreError{Op: "similarity scan", Cause: err}
	}

	// Stable sort preserves the doc_id scan order among equal distances.
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// CountForNote reports how many document records a note currently has.
func (s *Store) CountForNote(ctx context.Context, noteID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM documents WHERE note_id = ?", noteID,
	).Scan(&count)
	if err != nil {
		return 0, &domain.StoreError{Op: "count documents", Cause: err}
	}
	return count, nil
}

// Stats reports totals across the whole index.
func (s *Store) Stats(ctx context.Context) (driven.IndexStats, error) {
	stats := driven.IndexStats{Dimensions: s.dims}
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT note_id) FROM documents
	`).Scan(&stats.Documents, &stats.Notes)
	if err != nil {
		return driven.IndexStats{}, &domain.StoreError{Op: "stats", Cause: err}
	}
	return stats, nil
}

// Reset drops all document records and embeddings and recreates the empty
// schema, re-pinning the configured dimension.
func (s *Store) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &domain.StoreError{Op: "reset", Cause: err}
	}
	defer tx.Rollback() //nolint:errcheck

	stmts := []string{
		"DROP TABLE IF EXISTS embeddings",
		"DROP TABLE IF EXISTS documents",
		"DROP TABLE IF EXISTS index_meta",
		`CREATE TABLE documents (
			doc_id       INTEGER PRIMARY KEY AUTOINCREMENT,
			note_id      TEXT    NOT NULL,
			start_offset INTEGER NOT NULL,
			content      TEXT    NOT NULL
		)`,
		"CREATE INDEX idx_documents_note_id ON documents(note_id)",
		`CREATE TABLE embeddings (
			doc_id INTEGER PRIMARY KEY REFERENCES documents(doc_id) ON DELETE CASCADE,
			vector BLOB NOT NULL
		)`,
		`CREATE TABLE index_meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return &domain.StoreError{Op: "reset", Cause: err}
		}
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO index_meta (key, value) VALUES (?, ?)",
		metaKeyDimensions, strconv.Itoa(s.dims))
	if err != nil {
		return &domain.StoreError{Op: "reset", Cause: err}
	}

	if err := tx.Commit(); err != nil {
		return &domain.StoreError{Op: "reset", Cause: err}
	}
	return nil
}

// ==================== Helper Functions ====================

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// cosineDistance returns 1 - cosine_similarity(a, b). Zero-magnitude
// vectors are treated as maximally distant.
func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) {
		return 1
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
