package mcp

import (
	"github.com/custodia-labs/noteseek/internal/core/ports/driven"
	"github.com/custodia-labs/noteseek/internal/core/ports/driving"
)

// Ports aggregates all port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search provides similarity search over the index.
	Search driving.SearchService

	// Indexer triggers reindexing. Optional; without it the
	// reindex_note tool is not registered.
	Indexer driving.Indexer

	// Notes resolves note IDs to content for resources. Optional.
	Notes driven.NoteSource
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	// Indexer and Notes are optional
	return nil
}
