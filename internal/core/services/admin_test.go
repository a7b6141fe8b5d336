package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fathom-search/fathom-cli/internal/adapters/driven/storage/memory"
	"github.com/fathom-search/fathom-cli/internal/core/domain"
)

func TestAdmin_ListAndClearPartitions(t *testing.T) {
	ctx := context.Background()
	store := seedQueryStore(t,
		queryRec("app-1", "p1", "Sales", "Sum(Sales)"),
	)
	require.NoError(t, store.SaveAppMetadata(ctx, queryPartition,
		domain.AppMetadata{ID: "app-1", Name: "App app-1"}))

	admin := NewAdminService(store, nil)

	infos, err := admin.ListPartitions(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, queryPartition, infos[0].TenantUser)
	assert.Equal(t, 1, infos[0].AppCount)
	assert.Equal(t, 1, infos[0].RecordCount)

	require.NoError(t, admin.ClearPartition(ctx, queryPartition))

	infos, err = admin.ListPartitions(ctx)
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestAdmin_ClearRequiresPartition(t *testing.T) {
	admin := NewAdminService(memory.NewCatalogStore(), nil)
	err := admin.ClearPartition(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrPartitionRequired)
}

func TestFavorites_AddListRemove(t *testing.T) {
	ctx := context.Background()
	favs := NewFavorites(memory.NewCatalogStore(), queryPartition)

	require.NoError(t, favs.Add(ctx, domain.Favorite{AppID: "app-1", Path: "p1"}))
	require.NoError(t, favs.Add(ctx, domain.Favorite{AppID: "app-1", Path: "p1"}),
		"adding twice is idempotent")

	list, err := favs.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, favs.Remove(ctx, domain.Favorite{AppID: "app-1", Path: "p1"}))
	list, err = favs.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestFavorites_RejectsIncompleteKeys(t *testing.T) {
	favs := NewFavorites(memory.NewCatalogStore(), queryPartition)
	assert.ErrorIs(t, favs.Add(context.Background(), domain.Favorite{AppID: "app-1"}),
		domain.ErrInvalidInput)
	assert.ErrorIs(t, favs.Remove(context.Background(), domain.Favorite{Path: "p1"}),
		domain.ErrInvalidInput)
}
