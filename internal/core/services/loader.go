package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/fathom-search/fathom-cli/internal/core/domain"
	"github.com/fathom-search/fathom-cli/internal/core/ports/driven"
	"github.com/fathom-search/fathom-cli/internal/core/ports/driving"
	"github.com/fathom-search/fathom-cli/internal/logger"
)

// Ensure Loader implements the interface.
var _ driving.CatalogLoader = (*Loader)(nil)

const (
	// defaultWorkers is the bounded concurrency of a load batch.
	defaultWorkers = 5

	// maxListPages bounds pagination when listing applications or
	// spaces, guarding against infinite-loop pagination bugs.
	maxListPages = 100

	// defaultSourceRate paces document source calls per second.
	defaultSourceRate = 10
)

// LoaderConfig configures a load session.
type LoaderConfig struct {
	// TenantURL and UserID identify the partition this session loads into.
	TenantURL string
	UserID    string

	// Workers is the bounded concurrency; defaults to 5.
	Workers int

	// SourceRate caps document source calls per second; defaults to 10.
	SourceRate float64
}

// Loader orchestrates concurrent application loads into the catalog:
// lightweight reconciliation against cached metadata, a bounded worker
// pool, space-filter parking, and epoch-tagged cancellation so a full
// refresh invalidates whatever an older batch still has in flight.
//
// One Loader owns one session's state; nothing is shared through
// package-level variables, so concurrent sessions stay isolated.
type Loader struct {
	source    driven.DocumentSource
	store     driven.CatalogStore
	search    driven.SearchEngine // optional
	limiter   *rate.Limiter
	workers   int
	tenantURL string
	userID    string
	sessionID string
	sheetMeta *SheetMetaQueue

	// epoch tags batches; workers re-check it before every state
	// mutation and discard results from stale epochs.
	epoch atomic.Uint64

	mu       sync.Mutex
	running  bool
	status   driving.LoadStatus
	parked   []domain.AppSummary
	spaces   []domain.Space
	filter   []string // nil means all spaces admitted
	onLoaded []func(appID string)
}

// NewLoader creates a load session for one tenant/user partition.
// The search engine is optional: when nil, only the catalog store is
// populated.
func NewLoader(
	source driven.DocumentSource,
	store driven.CatalogStore,
	search driven.SearchEngine,
	cfg LoaderConfig,
) *Loader {
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	perSecond := cfg.SourceRate
	if perSecond <= 0 {
		perSecond = defaultSourceRate
	}

	return &Loader{
		source:    source,
		store:     store,
		search:    search,
		limiter:   rate.NewLimiter(rate.Limit(perSecond), workers),
		workers:   workers,
		tenantURL: cfg.TenantURL,
		userID:    cfg.UserID,
		sessionID: uuid.NewString(),
		sheetMeta: NewSheetMetaQueue(),
	}
}

// Partition returns the tenant/user partition key this session loads into.
func (l *Loader) Partition() string {
	return domain.PartitionKey(l.tenantURL, l.userID)
}

// SessionID identifies this load session in log output, so interleaved
// batch lines and epoch discards are attributable to one session.
func (l *Loader) SessionID() string {
	return l.sessionID
}

// SheetMeta exposes the serialised sheet metadata queue.
func (l *Loader) SheetMeta() *SheetMetaQueue {
	return l.sheetMeta
}

// OnApplicationLoaded registers a callback fired after each committed
// application load.
func (l *Loader) OnApplicationLoaded(fn func(appID string)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onLoaded = append(l.onLoaded, fn)
}

// Status returns a copy of the current progress snapshot.
func (l *Loader) Status() driving.LoadStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

// Spaces returns the space listing gathered during the last reconcile.
func (l *Loader) Spaces() []domain.Space {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.Space, len(l.spaces))
	copy(out, l.spaces)
	return out
}

// SetSpaceFilter replaces the active space selection. A nil or empty
// selection admits every space. Parked applications stay parked until
// Resume re-admits the matching ones.
func (l *Loader) SetSpaceFilter(spaceIDs []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.filter = spaceIDs
	logger.Debug("Space filter set to %v (%d parked)", spaceIDs, len(l.parked))
}

// Reconcile lists the source's applications and spaces to completion
// (bounded pages) and diffs the listing against cached metadata using
// lightweight fields only: an application is loaded when absent from
// the cache or when its last-modified stamp differs, removed when it
// disappeared from the source, unchanged otherwise.
func (l *Loader) Reconcile(ctx context.Context) (*domain.ReconcilePlan, error) {
	remote, err := l.listApplications(ctx)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}

	spaces, err := l.listSpaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("list spaces: %w", err)
	}
	l.mu.Lock()
	l.spaces = spaces
	l.mu.Unlock()

	cached, err := l.store.AppMetadata(ctx, l.Partition())
	if err != nil {
		return nil, fmt.Errorf("read cached metadata: %w", err)
	}

	plan := reconcile(cached, remote)
	logger.Info("Reconcile: %d to load, %d to remove, %d unchanged",
		len(plan.ToLoad), len(plan.ToRemove), len(plan.Unchanged))
	return plan, nil
}

// reconcile performs the lightweight diff. Pure, for testability.
func reconcile(cached []domain.AppMetadata, remote []domain.AppSummary) *domain.ReconcilePlan {
	cachedByID := make(map[string]domain.AppMetadata, len(cached))
	for _, m := range cached {
		cachedByID[m.ID] = m
	}

	plan := &domain.ReconcilePlan{}
	remoteIDs := make(map[string]struct{}, len(remote))
	for _, app := range remote {
		remoteIDs[app.ID] = struct{}{}
		m, ok := cachedByID[app.ID]
		if !ok || m.Modified != app.Modified {
			plan.ToLoad = append(plan.ToLoad, app)
		} else {
			plan.Unchanged = append(plan.Unchanged, app)
		}
	}

	for _, m := range cached {
		if _, ok := remoteIDs[m.ID]; !ok {
			plan.ToRemove = append(plan.ToRemove, m)
		}
	}

	return plan
}

// Refresh runs the full pipeline: reconcile, drop stale applications,
// then load the changed ones. With full set, the whole partition is
// wiped first and the loader epoch is bumped so in-flight workers from
// the previous session discard their writes.
func (l *Loader) Refresh(ctx context.Context, full bool) error {
	partition := l.Partition()

	if full {
		l.epoch.Add(1)
		l.sheetMeta.Reset()
		l.mu.Lock()
		l.parked = nil
		l.mu.Unlock()

		if err := l.store.DeleteForTenantUser(ctx, partition); err != nil {
			return fmt.Errorf("clear partition: %w", err)
		}
		if l.search != nil {
			if err := l.search.DeleteForTenantUser(ctx, partition); err != nil {
				logger.Warn("Clear search partition: %v", err)
			}
		}
		logger.Info("Full refresh (session %s): cleared partition %s", l.sessionID, partition)
	}

	plan, err := l.Reconcile(ctx)
	if err != nil {
		return err
	}

	for _, stale := range plan.ToRemove {
		if err := l.removeApplication(ctx, partition, stale.ID); err != nil {
			logger.Warn("Remove stale application %s: %v", stale.ID, err)
		}
	}

	l.mu.Lock()
	l.status.Cached = len(plan.Unchanged)
	l.mu.Unlock()

	return l.LoadAll(ctx, plan.ToLoad)
}

// LoadAll processes the given applications with bounded concurrency.
// Applications outside the space filter are parked rather than
// fetched; once every remaining unfetched application is filtered out,
// the batch finishes paused. A per-application failure is counted and
// never aborts the batch.
func (l *Loader) LoadAll(ctx context.Context, apps []domain.AppSummary) error {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return domain.ErrLoadInProgress
	}
	l.running = true
	l.status = driving.LoadStatus{
		Running: true,
		Cached:  l.status.Cached,
		Total:   len(apps) + len(l.parked),
		Pending: len(l.parked),
	}
	l.mu.Unlock()

	epoch := l.epoch.Load()
	sem := make(chan struct{}, l.workers)
	var wg sync.WaitGroup

	for _, app := range apps {
		if ctx.Err() != nil {
			break
		}

		// Admission is checked at dispatch time, so narrowing the
		// space filter mid-batch pulls undispatched applications out.
		if !l.admits(app) {
			l.park(app)
			continue
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(app domain.AppSummary) {
			defer wg.Done()
			defer func() { <-sem }()
			l.loadOne(ctx, epoch, app)
		}(app)
	}

	wg.Wait()

	l.mu.Lock()
	l.running = false
	l.status.Running = false
	l.status.Pending = len(l.parked)
	l.status.Paused = len(l.parked) > 0
	status := l.status
	l.mu.Unlock()

	logger.Info("Load batch %s done: %d loaded, %d cached, %d failed, %d parked",
		l.sessionID, status.Loaded, status.Cached, status.Failed, status.Pending)

	return ctx.Err()
}

// Resume starts a fresh batch over the parked applications admitted by
// the current space filter. Already-loaded applications are never
// refetched: the parked list only ever holds unfetched ones.
func (l *Loader) Resume(ctx context.Context) error {
	l.mu.Lock()
	var admitted, still []domain.AppSummary
	for _, app := range l.parked {
		if l.admitsLocked(app) {
			admitted = append(admitted, app)
		} else {
			still = append(still, app)
		}
	}
	l.parked = still
	l.mu.Unlock()

	if len(admitted) == 0 {
		return nil
	}
	logger.Info("Resuming %d parked applications", len(admitted))
	return l.LoadAll(ctx, admitted)
}

// loadOne fetches, extracts and commits a single application. All
// store mutations are guarded by an epoch check so a full refresh
// started meanwhile invalidates this worker's results.
func (l *Loader) loadOne(ctx context.Context, epoch uint64, app domain.AppSummary) {
	if err := l.limiter.Wait(ctx); err != nil {
		return
	}

	logger.Debug("Loading application %s (%s)", app.ID, app.Name)

	doc, err := l.source.FetchStructure(ctx, app.ID)
	if err != nil {
		l.markFailed(app, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err))
		return
	}

	if l.stale(epoch) {
		logger.Debug("Session %s discarding %s: %v", l.sessionID, app.ID, domain.ErrStaleEpoch)
		return
	}

	partition := l.Partition()

	// Replace the application's records as a set: delete everything
	// first so no stale leftovers survive a shrunk document.
	if err := l.store.DeleteForApplication(ctx, partition, app.ID); err != nil {
		l.markFailed(app, err)
		return
	}
	if l.search != nil {
		if err := l.search.DeleteForApplication(ctx, partition, app.ID); err != nil {
			logger.Warn("Search delete for %s: %v", app.ID, err)
		}
	}

	records := Extract(doc, app.ID, app.Name, app.SpaceID)

	// Publish this document's sheet flags through the serialised
	// queue, then stamp records from the merged snapshot.
	l.sheetMeta.Merge(sheetStatuses(doc))
	l.stampRecords(partition, records)

	if l.stale(epoch) {
		logger.Debug("Session %s discarding %s: %v", l.sessionID, app.ID, domain.ErrStaleEpoch)
		return
	}

	if err := l.store.UpsertRecords(ctx, records); err != nil {
		l.markFailed(app, err)
		return
	}
	if l.search != nil {
		if err := l.search.IndexRecords(ctx, records); err != nil {
			logger.Warn("Search index for %s: %v", app.ID, err)
		}
	}

	meta := app.Metadata()
	meta.LoadedAt = time.Now().UTC()
	if err := l.store.SaveAppMetadata(ctx, partition, meta); err != nil {
		l.markFailed(app, err)
		return
	}

	l.mu.Lock()
	l.status.Loaded++
	callbacks := make([]func(string), len(l.onLoaded))
	copy(callbacks, l.onLoaded)
	l.mu.Unlock()

	logger.Debug("Loaded %s: %d records", app.ID, len(records))

	for _, fn := range callbacks {
		fn(app.ID)
	}
}

// stampRecords assigns partition, record keys and merged sheet flags.
func (l *Loader) stampRecords(partition string, records []domain.IndexRecord) {
	for i := range records {
		records[i].TenantUser = partition
		records[i].ID = domain.RecordKey(partition, records[i].AppID, records[i].Path)
		if records[i].SheetID != "" {
			if status, ok := l.sheetMeta.Status(records[i].SheetID); ok {
				records[i].SheetApproved = status.Approved
				records[i].SheetPublished = status.Published
			}
		}
	}
}

// sheetStatuses collects one document's sheet publication flags.
func sheetStatuses(doc *domain.Structure) map[string]domain.SheetStatus {
	statuses := make(map[string]domain.SheetStatus, len(doc.Sheets))
	for _, sh := range doc.Sheets {
		if sh.ID == "" {
			continue
		}
		statuses[sh.ID] = domain.SheetStatus{Approved: sh.Approved, Published: sh.Published}
	}
	return statuses
}

// removeApplication drops one application's records and metadata.
func (l *Loader) removeApplication(ctx context.Context, partition, appID string) error {
	if err := l.store.DeleteForApplication(ctx, partition, appID); err != nil {
		return err
	}
	if err := l.store.DeleteAppMetadata(ctx, partition, appID); err != nil {
		return err
	}
	if l.search != nil {
		if err := l.search.DeleteForApplication(ctx, partition, appID); err != nil {
			logger.Warn("Search delete for %s: %v", appID, err)
		}
	}
	return nil
}

// markFailed records a per-application failure without aborting the batch.
func (l *Loader) markFailed(app domain.AppSummary, err error) {
	logger.Warn("Application %s failed: %v", app.ID, err)
	l.mu.Lock()
	l.status.Failed++
	l.mu.Unlock()
}

// stale reports whether the worker's epoch has been superseded.
func (l *Loader) stale(epoch uint64) bool {
	return l.epoch.Load() != epoch
}

// park shelves an application excluded by the space filter.
func (l *Loader) park(app domain.AppSummary) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.parked = append(l.parked, app)
	l.status.Pending = len(l.parked)
	logger.Debug("Parked %s (space %q filtered out)", app.ID, app.SpaceID)
}

// admits reports whether the current space filter lets this
// application load.
func (l *Loader) admits(app domain.AppSummary) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.admitsLocked(app)
}

func (l *Loader) admitsLocked(app domain.AppSummary) bool {
	f := domain.Filter{SpaceIDs: l.filter}
	return f.MatchesSpace(app.SpaceID)
}

// listApplications follows the source's pagination to completion,
// bounded by maxListPages.
func (l *Loader) listApplications(ctx context.Context) ([]domain.AppSummary, error) {
	var all []domain.AppSummary
	token := ""
	for page := 0; page < maxListPages; page++ {
		res, err := l.source.ListApplications(ctx, token)
		if err != nil {
			return nil, err
		}
		all = append(all, res.Items...)
		if res.NextPageToken == "" {
			return all, nil
		}
		token = res.NextPageToken
	}
	logger.Warn("Application listing exceeded %d pages; truncating", maxListPages)
	return all, nil
}

// listSpaces mirrors listApplications for the space listing.
func (l *Loader) listSpaces(ctx context.Context) ([]domain.Space, error) {
	var all []domain.Space
	token := ""
	for page := 0; page < maxListPages; page++ {
		res, err := l.source.ListSpaces(ctx, token)
		if err != nil {
			return nil, err
		}
		all = append(all, res.Items...)
		if res.NextPageToken == "" {
			return all, nil
		}
		token = res.NextPageToken
	}
	logger.Warn("Space listing exceeded %d pages; truncating", maxListPages)
	return all, nil
}
