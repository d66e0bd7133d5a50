package mcp

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// uriScheme is the custom URI scheme for noteseek resources.
const uriScheme = "noteseek://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	if s.ports.Notes == nil {
		return
	}

	// Template for note content.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "notes/{noteId}",
		Name:        "note-content",
		Description: "Current content of a note, by its ID",
		MIMEType:    "text/plain",
	}, s.handleNoteContentResource)
}

// handleNoteContentResource returns the current content of a note.
func (s *Server) handleNoteContentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	noteID := strings.TrimPrefix(req.Params.URI, uriScheme+"notes/")

	content, err := s.ports.Notes.Read(ctx, noteID)
	if err != nil {
		return nil, err
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     content,
		}},
	}, nil
}
