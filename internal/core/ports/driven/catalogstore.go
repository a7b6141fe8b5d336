package driven

import (
	"context"

	"github.com/fathom-search/fathom-cli/internal/core/domain"
)

// CatalogStore is the embedded, durable index of extracted records,
// partitioned by tenant/user. Backed by SQLite.
//
// Partition isolation is absolute: every read operation takes the
// partition explicitly and never returns rows from another one.
// Failures surface as *domain.StorageError.
type CatalogStore interface {
	// UpsertRecords bulk inserts or replaces records by ID.
	UpsertRecords(ctx context.Context, records []domain.IndexRecord) error

	// DeleteForApplication removes every record of one application in
	// the partition. Always called before re-inserting that
	// application's records, so replacement is atomic as a set.
	DeleteForApplication(ctx context.Context, tenantUser, appID string) error

	// DeleteForTenantUser wipes the partition: records, application
	// metadata and sync stamps. Favourites survive.
	DeleteForTenantUser(ctx context.Context, tenantUser string) error

	// Query returns records matching the filter. Absent facet fields
	// impose no restriction. When SearchText is set, results are
	// ranked: title matches outrank label matches, which outrank body
	// matches; ties break on record ID.
	Query(ctx context.Context, filter domain.Filter) ([]domain.IndexRecord, error)

	// UniqueValues returns the distinct non-empty values of a record
	// field within the partition. Supported fields: "objectType",
	// "appName", "sheetName", "spaceId".
	UniqueValues(ctx context.Context, tenantUser, field string) ([]string, error)

	// ListCachedPartitions enumerates every cached tenant/user pair
	// with counts, for the manage-data surface.
	ListCachedPartitions(ctx context.Context) ([]domain.PartitionInfo, error)

	// AppMetadata returns the lightweight per-application stamps for
	// the partition.
	AppMetadata(ctx context.Context, tenantUser string) ([]domain.AppMetadata, error)

	// SaveAppMetadata inserts or replaces one application's stamp.
	SaveAppMetadata(ctx context.Context, tenantUser string, meta domain.AppMetadata) error

	// DeleteAppMetadata removes one application's stamp.
	DeleteAppMetadata(ctx context.Context, tenantUser, appID string) error

	// AddFavorite pins a record by (appID, path).
	AddFavorite(ctx context.Context, tenantUser string, fav domain.Favorite) error

	// RemoveFavorite unpins a record.
	RemoveFavorite(ctx context.Context, tenantUser string, fav domain.Favorite) error

	// Favorites lists the partition's pinned (appID, path) pairs.
	Favorites(ctx context.Context, tenantUser string) ([]domain.Favorite, error)

	// Close releases the underlying database.
	Close() error
}
