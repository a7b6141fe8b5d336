package mcp

import (
	"github.com/fathom-search/fathom-cli/internal/core/ports/driven"
	"github.com/fathom-search/fathom-cli/internal/core/ports/driving"
)

// Ports aggregates everything the MCP server needs. A single injection
// point keeps the wiring in one place.
type Ports struct {
	// Query answers catalog queries. Required.
	Query driving.CatalogQuery

	// Store backs the list_filters tool. Optional: when nil the tool
	// reports empty filter sets.
	Store driven.CatalogStore

	// Admin backs the cached-partitions resource. Optional.
	Admin driving.CacheAdmin

	// Partition is the active tenant/user partition key. Required.
	Partition string

	// Version is the build version advertised during the MCP
	// handshake. Defaults to "dev" when unset.
	Version string
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	if p.Partition == "" {
		return ErrMissingPartition
	}
	return nil
}
