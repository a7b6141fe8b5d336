// Package driving defines the interfaces through which the outside
// world (CLI, MCP server) drives the core: querying, loading, cache
// administration, favourites and export.
package driving
