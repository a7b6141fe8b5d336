package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// uriScheme is the custom URI scheme for fathom resources.
const uriScheme = "fathom://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "cached-partitions",
		Name:        "cached-partitions",
		Description: "Tenant/user partitions cached locally, with app and record counts",
		MIMEType:    "application/json",
	}, s.handlePartitionsResource)
}

// handlePartitionsResource returns the cached partition inventory.
func (s *Server) handlePartitionsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Admin == nil {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     "[]",
			}},
		}, nil
	}

	infos, err := s.ports.Admin.ListPartitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing partitions: %w", err)
	}

	type partitionInfo struct {
		Partition   string `json:"partition"`
		AppCount    int    `json:"app_count"`
		RecordCount int    `json:"record_count"`
		LastSync    string `json:"last_sync,omitempty"`
	}

	out := make([]partitionInfo, len(infos))
	for i, info := range infos {
		out[i] = partitionInfo{
			Partition:   info.TenantUser,
			AppCount:    info.AppCount,
			RecordCount: info.RecordCount,
		}
		if !info.LastSync.IsZero() {
			out[i].LastSync = info.LastSync.UTC().Format(time.RFC3339)
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling partitions: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
