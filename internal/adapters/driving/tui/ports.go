package tui

import (
	"errors"

	"github.com/custodia-labs/noteseek/internal/core/ports/driving"
)

// ErrMissingSearchService indicates the app was constructed without a
// search service.
var ErrMissingSearchService = errors.New("tui: search service is required")

// Ports aggregates the driving port interfaces required by the TUI.
type Ports struct {
	// Search provides similarity search over the index.
	Search driving.SearchService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
