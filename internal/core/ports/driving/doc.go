// Package driving defines the interfaces external actors use to drive
// the core (primary/inbound ports). CLI commands, the MCP server and the
// TUI depend on these interfaces, never on concrete services.
package driving
