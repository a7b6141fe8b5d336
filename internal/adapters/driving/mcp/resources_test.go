package mcp

import (
	"context"
	"testing"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fathom-search/fathom-cli/internal/core/domain"
)

func TestServer_handlePartitionsResource(t *testing.T) {
	ctx := context.Background()
	req := &sdk.ReadResourceRequest{
		Params: &sdk.ReadResourceParams{URI: uriScheme + "cached-partitions"},
	}

	t.Run("returns cached partitions as JSON", func(t *testing.T) {
		admin := &mockAdmin{partitions: []domain.PartitionInfo{{
			TenantUser:  testPartition,
			AppCount:    2,
			RecordCount: 40,
			LastSync:    time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		}}}

		server, err := NewServer(&Ports{
			Query: &mockQuery{}, Admin: admin, Partition: testPartition,
		})
		require.NoError(t, err)

		result, err := server.handlePartitionsResource(ctx, req)
		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
		assert.Contains(t, result.Contents[0].Text, testPartition)
		assert.Contains(t, result.Contents[0].Text, `"record_count": 40`)
		assert.Contains(t, result.Contents[0].Text, "2026-08-30T12:00:00Z")
	})

	t.Run("empty list without an admin port", func(t *testing.T) {
		server, err := NewServer(&Ports{Query: &mockQuery{}, Partition: testPartition})
		require.NoError(t, err)

		result, err := server.handlePartitionsResource(ctx, req)
		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})
}
