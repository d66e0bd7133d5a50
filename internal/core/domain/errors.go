package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotConfirmed indicates a destructive operation was attempted
	// without explicit confirmation.
	ErrNotConfirmed = errors.New("operation not confirmed")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Indexing and search are disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrStoreUnavailable indicates the document store is not configured.
	ErrStoreUnavailable = errors.New("document store unavailable")
)

// EmbeddingError wraps a failure from the embedding provider: provider
// unreachable, malformed response, or a vector of the wrong length.
// The store is never touched for a document whose embedding failed.
type EmbeddingError struct {
	// Cause is the underlying provider failure.
	Cause error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding: %v", e.Cause)
}

func (e *EmbeddingError) Unwrap() error {
	return e.Cause
}

// StoreError wraps a transaction or schema failure in the document store.
// A StoreError means the failed operation was rolled back in full; the
// metadata table and vector table are never left inconsistent.
type StoreError struct {
	// Op is the store operation that failed.
	Op string

	// Cause is the underlying failure.
	Cause error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Cause)
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

// DimensionMismatchError reports a vector whose length disagrees with the
// configured embedding dimension. Store operations return it wrapped in a
// StoreError, and the embedding adapters wrap it in an EmbeddingError, so
// errors.As matches both the class and the subtype. An insert that raises
// it leaves no trace in either table.
type DimensionMismatchError struct {
	// Want is the configured dimension.
	Want int

	// Got is the length of the offending vector.
	Got int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: want %d, got %d", e.Want, e.Got)
}

// IsDimensionMismatch reports whether err is, or wraps, a
// DimensionMismatchError.
func IsDimensionMismatch(err error) bool {
	var dm *DimensionMismatchError
	return errors.As(err, &dm)
}
