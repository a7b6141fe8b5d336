package driving

import (
	"context"

	"github.com/fathom-search/fathom-cli/internal/core/domain"
)

// CatalogQuery is the query façade. It answers one-shot queries and
// maintains a debounced live query whose results are pushed to a
// subscriber whenever the filter changes or an application finishes
// loading.
type CatalogQuery interface {
	// Query runs one query reflecting the given options. Sorting and
	// pagination happen on the result list, not in the store.
	Query(ctx context.Context, opts domain.QueryOptions) (*domain.QueryResult, error)

	// SetFilter replaces the live filter state and schedules a
	// debounced re-query.
	SetFilter(filter domain.Filter)

	// SetSort replaces the live sort order and schedules a re-query.
	SetSort(sort domain.Sort)

	// SetPage replaces the live pagination and schedules a re-query.
	SetPage(page domain.Page)

	// Subscribe registers the listener that receives live results.
	// Only one listener is supported; a later call replaces it.
	Subscribe(fn func(*domain.QueryResult))

	// NotifyApplicationLoaded re-issues the live query because new
	// records were committed, so results grow while loading continues.
	NotifyApplicationLoaded(appID string)

	// Close stops the debounce machinery.
	Close()
}
