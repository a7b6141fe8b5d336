package driven

import (
	"context"

	"github.com/fathom-search/fathom-cli/internal/core/domain"
)

// SearchEngine provides ranked free-text search over index records.
// Backed by bleve. Optional: when absent, the query façade degrades to
// the catalog store's substring ranking.
type SearchEngine interface {
	// IndexRecords adds or updates records in the search index.
	IndexRecords(ctx context.Context, records []domain.IndexRecord) error

	// DeleteForApplication removes one application's records from the
	// index, mirroring CatalogStore.DeleteForApplication.
	DeleteForApplication(ctx context.Context, tenantUser, appID string) error

	// DeleteForTenantUser removes a whole partition from the index.
	DeleteForTenantUser(ctx context.Context, tenantUser string) error

	// Search returns ranked record IDs for a free-text query within
	// one partition. Title matches are boosted above label matches,
	// which are boosted above body text.
	Search(ctx context.Context, tenantUser, query string, limit int) ([]SearchHit, error)

	// Close releases the index.
	Close() error
}

// SearchHit is one ranked match from the engine.
type SearchHit struct {
	// RecordID is the matched record's primary key.
	RecordID string

	// Score is the engine's relevance score.
	Score float64
}
