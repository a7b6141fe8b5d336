package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fathom-search/fathom-cli/internal/core/domain"
)

const testPartition = "https://tenant.example.com::user-1"

func TestServer_handleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns catalog records", func(t *testing.T) {
		query := &mockQuery{
			result: &domain.QueryResult{
				Records: []domain.IndexRecord{{
					ID:         "rec-1",
					ObjectType: domain.ObjectTypeMasterDimension,
					Title:      "Region",
					Definition: "[Region]",
					Name:       []string{"Region"},
					AppName:    "Sales Dashboard",
					SheetName:  "Overview",
				}},
				Total: 1,
			},
		}

		server, err := NewServer(&Ports{Query: query, Partition: testPartition})
		require.NoError(t, err)

		input := SearchInput{Query: "region", Limit: 10}
		_, output, err := server.handleSearch(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, 1, output.Total)
		require.Len(t, output.Results, 1)
		assert.Equal(t, "rec-1", output.Results[0].ID)
		assert.Equal(t, "Master Dimension", output.Results[0].Type)
		assert.Equal(t, "Region", output.Results[0].Title)
		assert.Equal(t, "[Region]", output.Results[0].Definition)
		assert.Equal(t, "Sales Dashboard", output.Results[0].App)
	})

	t.Run("scopes the query to the configured partition", func(t *testing.T) {
		query := &mockQuery{}
		server, err := NewServer(&Ports{Query: query, Partition: testPartition})
		require.NoError(t, err)

		_, _, err = server.handleSearch(ctx, nil, SearchInput{
			Query:       "sales",
			SpaceIDs:    []string{"space-a"},
			ObjectTypes: []string{"Master Measure"},
		})
		require.NoError(t, err)

		assert.Equal(t, testPartition, query.lastOpts.Filter.TenantUser)
		assert.Equal(t, []string{"space-a"}, query.lastOpts.Filter.SpaceIDs)
		assert.Equal(t,
			[]domain.ObjectType{domain.ObjectTypeMasterMeasure},
			query.lastOpts.Filter.ObjectTypes)
	})

	t.Run("default limit is 25", func(t *testing.T) {
		query := &mockQuery{}
		server, err := NewServer(&Ports{Query: query, Partition: testPartition})
		require.NoError(t, err)

		_, _, err = server.handleSearch(ctx, nil, SearchInput{Query: "x"})
		require.NoError(t, err)
		assert.Equal(t, 25, query.lastOpts.Page.Limit)
	})

	t.Run("propagates query errors", func(t *testing.T) {
		query := &mockQuery{err: errors.New("boom")}
		server, err := NewServer(&Ports{Query: query, Partition: testPartition})
		require.NoError(t, err)

		_, _, err = server.handleSearch(ctx, nil, SearchInput{Query: "x"})
		assert.Error(t, err)
	})
}

func TestServer_handleListFilters(t *testing.T) {
	ctx := context.Background()

	t.Run("returns filter values per field", func(t *testing.T) {
		store := &mockStore{values: map[string][]string{
			"objectType": {"Master Dimension", "Master Measure"},
			"appName":    {"Sales Dashboard"},
			"sheetName":  {"Overview"},
			"spaceId":    {"space-a"},
		}}

		server, err := NewServer(&Ports{
			Query: &mockQuery{}, Store: store, Partition: testPartition,
		})
		require.NoError(t, err)

		_, output, err := server.handleListFilters(ctx, nil, struct{}{})
		require.NoError(t, err)
		assert.Equal(t, []string{"Master Dimension", "Master Measure"}, output.ObjectTypes)
		assert.Equal(t, []string{"Sales Dashboard"}, output.Apps)
		assert.Equal(t, []string{"Overview"}, output.Sheets)
		assert.Equal(t, []string{"space-a"}, output.Spaces)
	})

	t.Run("empty without a store", func(t *testing.T) {
		server, err := NewServer(&Ports{Query: &mockQuery{}, Partition: testPartition})
		require.NoError(t, err)

		_, output, err := server.handleListFilters(ctx, nil, struct{}{})
		require.NoError(t, err)
		assert.Empty(t, output.ObjectTypes)
	})
}
