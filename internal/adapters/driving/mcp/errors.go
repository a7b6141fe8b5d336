// Package mcp provides an MCP (Model Context Protocol) server adapter
// for fathom. It lets AI assistants query the local catalog.
package mcp

import "errors"

// ErrMissingQueryService is returned when the query façade is not provided.
var ErrMissingQueryService = errors.New("mcp: query service is required")

// ErrMissingPartition is returned when no tenant/user partition is configured.
var ErrMissingPartition = errors.New("mcp: no tenant configured")
