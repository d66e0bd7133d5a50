package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/noteseek/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the search query to find note passages"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 20)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result: a located passage
// inside a note, ordered by ascending cosine distance.
type SearchResultOutput struct {
	NoteID      string  `json:"note_id"`
	Path        string  `json:"path"`
	StartOffset int     `json:"start_offset"`
	Content     string  `json:"content"`
	Distance    float64 `json:"distance"`
}

// ReindexNoteInput is the input schema for the reindex_note tool.
type ReindexNoteInput struct {
	NoteID string `json:"note_id" jsonschema:"the note to reindex, as a path relative to the notes directory"`
}

// ReindexNoteOutput is the output schema for the reindex_note tool.
type ReindexNoteOutput struct {
	NoteID   string   `json:"note_id"`
	Indexed  int      `json:"indexed"`
	Failures []string `json:"failures,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Semantic search across all indexed notes",
	}, s.handleSearch)

	if s.ports.Indexer != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "reindex_note",
			Description: "Re-embed and re-index a single note from its current content",
		}, s.handleReindexNote)
	}
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	opts := domain.SearchOptions{Limit: input.Limit}
	results, err := s.ports.Search.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}

	for i := range results {
		output.Results[i] = SearchResultOutput{
			NoteID:      results[i].NoteID,
			Path:        results[i].Path,
			StartOffset: results[i].StartOffset,
			Content:     results[i].Content,
			Distance:    results[i].Distance,
		}
	}

	return nil, output, nil
}

// handleReindexNote handles the reindex_note tool invocation.
func (s *Server) handleReindexNote(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ReindexNoteInput,
) (*mcp.CallToolResult, ReindexNoteOutput, error) {
	report, err := s.ports.Indexer.ReindexNote(ctx, input.NoteID)
	if err != nil {
		return nil, ReindexNoteOutput{}, err
	}

	output := ReindexNoteOutput{
		NoteID:  report.NoteID,
		Indexed: report.Indexed,
	}
	for _, f := range report.Failures {
		output.Failures = append(output.Failures, f.Err.Error())
	}

	return nil, output, nil
}
