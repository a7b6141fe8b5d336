package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fathom-search/fathom-cli/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query       string   `json:"query,omitempty" jsonschema:"free text to search for; empty lists everything matching the filters"`
	SpaceIDs    []string `json:"space_ids,omitempty" jsonschema:"restrict to these space IDs"`
	AppIDs      []string `json:"app_ids,omitempty" jsonschema:"restrict to these application IDs"`
	SheetIDs    []string `json:"sheet_ids,omitempty" jsonschema:"restrict to these sheet IDs"`
	ObjectTypes []string `json:"object_types,omitempty" jsonschema:"restrict to these object types (Master Dimension, Master Measure, Sheet Dimension, Sheet Measure)"`
	Visibility  string   `json:"visibility,omitempty" jsonschema:"sheet visibility: published, unpublished or approved"`
	Limit       int      `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 25)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Total   int                  `json:"total"`
}

// SearchResultOutput represents a single catalog record.
type SearchResultOutput struct {
	ID         string   `json:"id"`
	Type       string   `json:"type"`
	Title      string   `json:"title"`
	Definition string   `json:"definition,omitempty"`
	Labels     []string `json:"labels,omitempty"`
	App        string   `json:"app"`
	Sheet      string   `json:"sheet,omitempty"`
	Chart      string   `json:"chart,omitempty"`
}

// ListFiltersOutput is the output schema for the list_filters tool.
type ListFiltersOutput struct {
	ObjectTypes []string `json:"object_types"`
	Apps        []string `json:"apps"`
	Sheets      []string `json:"sheets"`
	Spaces      []string `json:"spaces"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search the cached dimensions and measures of the configured tenant",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_filters",
		Description: "List the filter values available in the catalog (object types, apps, sheets, spaces)",
	}, s.handleListFilters)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 25
	}

	filter := domain.Filter{
		TenantUser: s.ports.Partition,
		SpaceIDs:   input.SpaceIDs,
		AppIDs:     input.AppIDs,
		SheetIDs:   input.SheetIDs,
		Visibility: domain.SheetVisibility(input.Visibility),
		SearchText: input.Query,
	}
	for _, t := range input.ObjectTypes {
		filter.ObjectTypes = append(filter.ObjectTypes, domain.ObjectType(t))
	}

	result, err := s.ports.Query.Query(ctx, domain.QueryOptions{
		Filter: filter,
		Page:   domain.Page{Limit: limit},
	})
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(result.Records)),
		Total:   result.Total,
	}
	for i := range result.Records {
		r := &result.Records[i]
		output.Results[i] = SearchResultOutput{
			ID:         r.ID,
			Type:       string(r.ObjectType),
			Title:      r.Title,
			Definition: r.Definition,
			Labels:     r.Name,
			App:        r.AppName,
			Sheet:      r.SheetName,
			Chart:      r.ChartTitle,
		}
	}

	return nil, output, nil
}

// handleListFilters handles the list_filters tool invocation.
func (s *Server) handleListFilters(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, ListFiltersOutput, error) {
	var output ListFiltersOutput
	if s.ports.Store == nil {
		return nil, output, nil
	}

	fields := []struct {
		name string
		dst  *[]string
	}{
		{"objectType", &output.ObjectTypes},
		{"appName", &output.Apps},
		{"sheetName", &output.Sheets},
		{"spaceId", &output.Spaces},
	}
	for _, f := range fields {
		values, err := s.ports.Store.UniqueValues(ctx, s.ports.Partition, f.name)
		if err != nil {
			return nil, ListFiltersOutput{}, err
		}
		*f.dst = values
	}

	return nil, output, nil
}
