package bleve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fathom-search/fathom-cli/internal/core/domain"
)

const testPartition = "https://tenant.example.com::user-1"

func setupEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewMemEngine()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, engine.Close()) })
	return engine
}

func record(appID, path, title, labels, body string) domain.IndexRecord {
	return domain.IndexRecord{
		ID:         domain.RecordKey(testPartition, appID, path),
		TenantUser: testPartition,
		AppID:      appID,
		Path:       path,
		Title:      title,
		NameText:   labels,
		SearchText: body,
	}
}

func TestEngine_SearchRanksTitleAboveBody(t *testing.T) {
	engine := setupEngine(t)
	ctx := context.Background()

	titleHit := record("app-1", "masterDimensions[0].qDim",
		"Sales by Region", "", "Sales by Region [Region]")
	bodyHit := record("app-1", "masterMeasures[0].qMeasure",
		"Revenue", "", "Revenue Sum(Sales)")
	miss := record("app-1", "masterDimensions[1].qDim",
		"Customers", "", "Customers [Customer]")

	require.NoError(t, engine.IndexRecords(ctx,
		[]domain.IndexRecord{bodyHit, titleHit, miss}))

	hits, err := engine.Search(ctx, testPartition, "sales", 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, titleHit.ID, hits[0].RecordID)
	assert.Equal(t, bodyHit.ID, hits[1].RecordID)
	assert.Greater(t, hits[0].Score, hits[1].Score)
}

func TestEngine_SearchIsPartitionScoped(t *testing.T) {
	engine := setupEngine(t)
	ctx := context.Background()

	mine := record("app-1", "masterDimensions[0].qDim",
		"Sales", "", "Sales [Amount]")

	other := mine
	other.TenantUser = "https://tenant.example.com::user-2"
	other.ID = domain.RecordKey(other.TenantUser, other.AppID, other.Path)

	require.NoError(t, engine.IndexRecords(ctx, []domain.IndexRecord{mine, other}))

	hits, err := engine.Search(ctx, testPartition, "sales", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, mine.ID, hits[0].RecordID)

	_, err = engine.Search(ctx, "", "sales", 10)
	assert.ErrorIs(t, err, domain.ErrPartitionRequired)
}

func TestEngine_DeleteForApplication(t *testing.T) {
	engine := setupEngine(t)
	ctx := context.Background()

	keep := record("app-2", "masterDimensions[0].qDim", "Sales Kept", "", "Sales Kept")
	drop := record("app-1", "masterDimensions[0].qDim", "Sales Dropped", "", "Sales Dropped")

	require.NoError(t, engine.IndexRecords(ctx, []domain.IndexRecord{keep, drop}))
	require.NoError(t, engine.DeleteForApplication(ctx, testPartition, "app-1"))

	hits, err := engine.Search(ctx, testPartition, "sales", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, keep.ID, hits[0].RecordID)
}

func TestEngine_DeleteForTenantUser(t *testing.T) {
	engine := setupEngine(t)
	ctx := context.Background()

	mine := record("app-1", "masterDimensions[0].qDim", "Sales", "", "Sales")
	other := record("app-1", "masterDimensions[1].qDim", "Sales Too", "", "Sales Too")
	other.TenantUser = "https://tenant.example.com::user-2"
	other.ID = domain.RecordKey(other.TenantUser, other.AppID, other.Path)

	require.NoError(t, engine.IndexRecords(ctx, []domain.IndexRecord{mine, other}))
	require.NoError(t, engine.DeleteForTenantUser(ctx, testPartition))

	hits, err := engine.Search(ctx, testPartition, "sales", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)

	hits, err = engine.Search(ctx, other.TenantUser, "sales", 10)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestEngine_LabelMatch(t *testing.T) {
	engine := setupEngine(t)
	ctx := context.Background()

	labelled := record("app-1", "masterDimensions[0].qDim",
		"Geography", "Country Region", "Geography Country Region")

	require.NoError(t, engine.IndexRecords(ctx, []domain.IndexRecord{labelled}))

	hits, err := engine.Search(ctx, testPartition, "region", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, labelled.ID, hits[0].RecordID)
}
