package driving

import (
	"context"

	"github.com/custodia-labs/noteseek/internal/core/domain"
)

// SearchService answers "find notes similar to this query" requests.
type SearchService interface {
	// Search embeds the query and returns the closest documents, ranked by
	// ascending cosine distance and located via the note source.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)
}
