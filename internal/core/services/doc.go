// Package services implements the core business logic: the index manager
// that drives chunking and embedding into the store, and the query engine
// that answers similarity searches.
package services
