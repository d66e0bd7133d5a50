// Package domain defines the core business entities for noteseek.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Note: An external unit of authored content, referenced by ID
//   - Document: A chunk of a note's text, the unit of embedding
//   - Hit: A raw similarity match from the store
//   - SearchResult: A located, ranked search result
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
