package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fathom-search/fathom-cli/internal/core/domain"
	"github.com/fathom-search/fathom-cli/internal/core/ports/driven"
	"github.com/fathom-search/fathom-cli/internal/core/ports/driving"
	"github.com/fathom-search/fathom-cli/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.CatalogQuery = (*QueryService)(nil)

const (
	// defaultDebounce delays live re-queries after a filter change.
	defaultDebounce = 200 * time.Millisecond

	// engineSearchLimit is how many ranked hits are requested from the
	// search engine before facet intersection trims them down.
	engineSearchLimit = 1000

	// liveQueryTimeout bounds one debounced background query.
	liveQueryTimeout = 5 * time.Second
)

// QueryService is the query façade. It translates the user's filter
// state into one catalog store query, optionally ranked by the search
// engine, and maintains a debounced live query that re-runs on every
// filter change and on each completed application load.
type QueryService struct {
	store    driven.CatalogStore
	search   driven.SearchEngine // optional
	debounce time.Duration

	mu         sync.Mutex
	opts       domain.QueryOptions
	subscriber func(*domain.QueryResult)
	timer      *time.Timer
	closed     bool
}

// NewQueryService creates the façade. The search engine may be nil;
// free-text queries then use the store's substring ranking.
func NewQueryService(store driven.CatalogStore, search driven.SearchEngine, debounce time.Duration) *QueryService {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &QueryService{store: store, search: search, debounce: debounce}
}

// Query runs one query reflecting the given options.
func (q *QueryService) Query(ctx context.Context, opts domain.QueryOptions) (*domain.QueryResult, error) {
	if opts.Filter.TenantUser == "" {
		return nil, domain.ErrPartitionRequired
	}

	records, ranked, err := q.fetch(ctx, opts.Filter)
	if err != nil {
		if domain.IsStorageError(err) {
			// Index absence means "no results yet", not a crash.
			logger.Warn("Query degraded to empty results: %v", err)
			return &domain.QueryResult{}, nil
		}
		return nil, err
	}

	if opts.Filter.FavoritesOnly {
		records, err = q.keepFavorites(ctx, opts.Filter.TenantUser, records)
		if err != nil {
			return nil, err
		}
	}

	sortRecords(records, opts.Sort, ranked)

	total := len(records)
	return &domain.QueryResult{
		Records: paginate(records, opts.Page),
		Total:   total,
	}, nil
}

// fetch retrieves matching records. With a free-text query and an
// available engine, the engine's ranking is intersected with the
// store's facet filtering; otherwise the store handles both. The
// second return reports whether results already carry relevance order.
func (q *QueryService) fetch(ctx context.Context, filter domain.Filter) ([]domain.IndexRecord, bool, error) {
	text := strings.TrimSpace(filter.SearchText)

	if text != "" && q.search != nil {
		hits, err := q.search.Search(ctx, filter.TenantUser, text, engineSearchLimit)
		if err == nil {
			facets := filter
			facets.SearchText = ""
			rows, err := q.store.Query(ctx, facets)
			if err != nil {
				return nil, false, err
			}
			return intersectRanked(hits, rows), true, nil
		}
		// Engine failure degrades to the store's own ranking.
		logger.Warn("Search engine unavailable, falling back to store ranking: %v", err)
	}

	rows, err := q.store.Query(ctx, filter)
	if err != nil {
		return nil, false, err
	}
	return rows, text != "", nil
}

// intersectRanked keeps the engine's order, dropping hits the facet
// query filtered out.
func intersectRanked(hits []driven.SearchHit, rows []domain.IndexRecord) []domain.IndexRecord {
	byID := make(map[string]domain.IndexRecord, len(rows))
	for _, r := range rows {
		byID[r.ID] = r
	}

	out := make([]domain.IndexRecord, 0, len(hits))
	for _, hit := range hits {
		if r, ok := byID[hit.RecordID]; ok {
			out = append(out, r)
		}
	}
	return out
}

// keepFavorites filters records down to the user's pinned pairs.
func (q *QueryService) keepFavorites(
	ctx context.Context, tenantUser string, records []domain.IndexRecord,
) ([]domain.IndexRecord, error) {
	favs, err := q.store.Favorites(ctx, tenantUser)
	if err != nil {
		return nil, fmt.Errorf("list favourites: %w", err)
	}

	pinned := make(map[string]struct{}, len(favs))
	for _, f := range favs {
		pinned[f.Key()] = struct{}{}
	}

	kept := make([]domain.IndexRecord, 0, len(records))
	for _, r := range records {
		key := domain.Favorite{AppID: r.AppID, Path: r.Path}.Key()
		if _, ok := pinned[key]; ok {
			kept = append(kept, r)
		}
	}
	return kept, nil
}

// sortRecords orders results by the requested column, ties broken by
// record ID so ordering is stable. With SortRelevance the incoming
// order is kept: ranked order for free-text queries, insertion order
// otherwise.
func sortRecords(records []domain.IndexRecord, s domain.Sort, ranked bool) {
	if s.Column == domain.SortRelevance {
		if ranked && s.Descending {
			reverse(records)
		}
		return
	}

	key := sortKey(s.Column)
	sort.Slice(records, func(i, j int) bool {
		a, b := key(&records[i]), key(&records[j])
		if a != b {
			if s.Descending {
				return a > b
			}
			return a < b
		}
		return records[i].ID < records[j].ID
	})
}

// sortKey maps a column to its comparable value, lower-cased so
// ordering is case-insensitive.
func sortKey(col domain.SortColumn) func(*domain.IndexRecord) string {
	switch col {
	case domain.SortDefinition:
		return func(r *domain.IndexRecord) string { return strings.ToLower(r.Definition) }
	case domain.SortApp:
		return func(r *domain.IndexRecord) string { return strings.ToLower(r.AppName) }
	case domain.SortSheet:
		return func(r *domain.IndexRecord) string { return strings.ToLower(r.SheetName) }
	case domain.SortType:
		return func(r *domain.IndexRecord) string { return string(r.ObjectType) }
	case domain.SortName:
		return func(r *domain.IndexRecord) string { return strings.ToLower(r.NameText) }
	default:
		return func(r *domain.IndexRecord) string { return strings.ToLower(r.Title) }
	}
}

func reverse(records []domain.IndexRecord) {
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
}

// paginate applies offset/limit to the sorted list.
func paginate(records []domain.IndexRecord, p domain.Page) []domain.IndexRecord {
	if p.Offset >= len(records) {
		return []domain.IndexRecord{}
	}
	records = records[p.Offset:]
	if p.Limit > 0 && p.Limit < len(records) {
		records = records[:p.Limit]
	}
	return records
}

// SetFilter replaces the live filter and schedules a debounced re-query.
func (q *QueryService) SetFilter(filter domain.Filter) {
	q.mu.Lock()
	q.opts.Filter = filter
	q.mu.Unlock()
	q.schedule()
}

// SetSort replaces the live sort order and schedules a re-query.
func (q *QueryService) SetSort(s domain.Sort) {
	q.mu.Lock()
	q.opts.Sort = s
	q.mu.Unlock()
	q.schedule()
}

// SetPage replaces the live pagination and schedules a re-query.
func (q *QueryService) SetPage(p domain.Page) {
	q.mu.Lock()
	q.opts.Page = p
	q.mu.Unlock()
	q.schedule()
}

// Subscribe registers the live-result listener.
func (q *QueryService) Subscribe(fn func(*domain.QueryResult)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.subscriber = fn
}

// NotifyApplicationLoaded re-issues the live query so results stream
// in while loading progresses.
func (q *QueryService) NotifyApplicationLoaded(appID string) {
	logger.Debug("Application %s committed, re-issuing live query", appID)
	q.schedule()
}

// Close stops the debounce machinery.
func (q *QueryService) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	if q.timer != nil {
		q.timer.Stop()
	}
}

// schedule (re)arms the debounce timer: rapid filter changes collapse
// into one query once input settles.
func (q *QueryService) schedule() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed || q.subscriber == nil {
		return
	}
	if q.timer != nil {
		q.timer.Stop()
	}
	q.timer = time.AfterFunc(q.debounce, q.runLive)
}

// runLive executes the live query and pushes results to the subscriber.
func (q *QueryService) runLive() {
	q.mu.Lock()
	opts := q.opts
	fn := q.subscriber
	closed := q.closed
	q.mu.Unlock()

	if closed || fn == nil || opts.Filter.TenantUser == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), liveQueryTimeout)
	defer cancel()

	result, err := q.Query(ctx, opts)
	if err != nil {
		logger.Warn("Live query failed: %v", err)
		return
	}
	fn(result)
}
