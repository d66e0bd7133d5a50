package mcp

import "errors"

// ErrMissingSearchService indicates the server was constructed without a
// search service, which every tool depends on.
var ErrMissingSearchService = errors.New("mcp: search service is required")
