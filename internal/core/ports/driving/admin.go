package driving

import (
	"context"
	"io"

	"github.com/fathom-search/fathom-cli/internal/core/domain"
)

// CacheAdmin is the manage-data surface: enumerate what is cached
// across all tenant/user pairs and clear one pair's cache.
type CacheAdmin interface {
	// ListPartitions enumerates cached partitions with counts.
	ListPartitions(ctx context.Context) ([]domain.PartitionInfo, error)

	// ClearPartition wipes one tenant/user cache (records and
	// metadata; favourites survive).
	ClearPartition(ctx context.Context, tenantUser string) error
}

// FavoriteService manages pinned records for the active partition.
type FavoriteService interface {
	// Add pins a record by (appID, path).
	Add(ctx context.Context, fav domain.Favorite) error

	// Remove unpins a record.
	Remove(ctx context.Context, fav domain.Favorite) error

	// List returns all pinned pairs.
	List(ctx context.Context) ([]domain.Favorite, error)
}

// ReportExporter writes the currently visible result set as a tabular
// report consumed by spreadsheet tooling.
type ReportExporter interface {
	// Export queries with the given options and writes one CSV row per
	// record, using the fixed column contract.
	Export(ctx context.Context, opts domain.QueryOptions, w io.Writer) error
}
