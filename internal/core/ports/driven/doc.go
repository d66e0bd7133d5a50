// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - DocumentStore: the dual store - document metadata plus the vector
//     table, mutated together in one transaction
//   - EmbeddingService: generates vector embeddings
//   - NoteSource: enumerates notes and maps note IDs to paths
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
