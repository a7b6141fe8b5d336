package services

import (
	"context"
	"fmt"

	"github.com/fathom-search/fathom-cli/internal/core/domain"
	"github.com/fathom-search/fathom-cli/internal/core/ports/driven"
	"github.com/fathom-search/fathom-cli/internal/core/ports/driving"
	"github.com/fathom-search/fathom-cli/internal/logger"
)

// Ensure the services implement their interfaces.
var (
	_ driving.CacheAdmin      = (*AdminService)(nil)
	_ driving.FavoriteService = (*Favorites)(nil)
)

// AdminService is the manage-data surface over the catalog store.
type AdminService struct {
	store  driven.CatalogStore
	search driven.SearchEngine // optional
}

// NewAdminService creates the manage-data service.
func NewAdminService(store driven.CatalogStore, search driven.SearchEngine) *AdminService {
	return &AdminService{store: store, search: search}
}

// ListPartitions enumerates cached tenant/user pairs with counts.
func (a *AdminService) ListPartitions(ctx context.Context) ([]domain.PartitionInfo, error) {
	infos, err := a.store.ListCachedPartitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cached partitions: %w", err)
	}
	return infos, nil
}

// ClearPartition wipes one tenant/user cache. Favourites survive.
func (a *AdminService) ClearPartition(ctx context.Context, tenantUser string) error {
	if tenantUser == "" {
		return domain.ErrPartitionRequired
	}
	if err := a.store.DeleteForTenantUser(ctx, tenantUser); err != nil {
		return fmt.Errorf("clear partition: %w", err)
	}
	if a.search != nil {
		if err := a.search.DeleteForTenantUser(ctx, tenantUser); err != nil {
			logger.Warn("Clear search partition %s: %v", tenantUser, err)
		}
	}
	logger.Info("Cleared partition %s", tenantUser)
	return nil
}

// Favorites manages pinned records for one partition. Favourites are
// keyed by (appID, path), independent of the index, so they survive
// rebuilds.
type Favorites struct {
	store      driven.CatalogStore
	tenantUser string
}

// NewFavorites creates the favourites service for a partition.
func NewFavorites(store driven.CatalogStore, tenantUser string) *Favorites {
	return &Favorites{store: store, tenantUser: tenantUser}
}

// Add pins a record.
func (f *Favorites) Add(ctx context.Context, fav domain.Favorite) error {
	if fav.AppID == "" || fav.Path == "" {
		return domain.ErrInvalidInput
	}
	return f.store.AddFavorite(ctx, f.tenantUser, fav)
}

// Remove unpins a record.
func (f *Favorites) Remove(ctx context.Context, fav domain.Favorite) error {
	if fav.AppID == "" || fav.Path == "" {
		return domain.ErrInvalidInput
	}
	return f.store.RemoveFavorite(ctx, f.tenantUser, fav)
}

// List returns all pinned pairs.
func (f *Favorites) List(ctx context.Context) ([]domain.Favorite, error) {
	return f.store.Favorites(ctx, f.tenantUser)
}
