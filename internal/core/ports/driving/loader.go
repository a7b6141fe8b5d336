package driving

import (
	"context"

	"github.com/fathom-search/fathom-cli/internal/core/domain"
)

// CatalogLoader orchestrates fetching application documents into the
// local index: lightweight reconciliation, bounded-concurrency loading,
// space-filter back-pressure and epoch-tagged cancellation.
type CatalogLoader interface {
	// Reconcile lists the source's applications (paginated, bounded)
	// and diffs them against cached metadata using lightweight fields
	// only. It never fetches a full document to decide staleness.
	Reconcile(ctx context.Context) (*domain.ReconcilePlan, error)

	// LoadAll processes the given applications with bounded
	// concurrency. Applications outside the current space filter are
	// parked, not fetched. Per-application failures are counted and do
	// not abort the batch.
	LoadAll(ctx context.Context, apps []domain.AppSummary) error

	// Refresh is the full pipeline: reconcile, remove stale
	// applications, then LoadAll the changed ones. With full set, the
	// partition is wiped first and the load restarts from empty.
	Refresh(ctx context.Context, full bool) error

	// SetSpaceFilter replaces the active space selection. Parked
	// applications matching the widened selection are re-admitted by
	// the next Resume; already-loaded applications are not refetched.
	SetSpaceFilter(spaceIDs []string)

	// Resume starts a fresh bounded-concurrency batch over the parked
	// applications admitted by the current space filter.
	Resume(ctx context.Context) error

	// Status returns a snapshot of the current batch's progress.
	Status() LoadStatus

	// Spaces returns the source's space listing gathered during the
	// last reconcile.
	Spaces() []domain.Space

	// OnApplicationLoaded registers a callback fired after each
	// application's records are committed.
	OnApplicationLoaded(fn func(appID string))
}

// LoadStatus is a snapshot of load progress for banners and polling.
type LoadStatus struct {
	// Running reports whether a batch is in flight.
	Running bool

	// Paused is set when every remaining unfetched application is
	// excluded by the space filter.
	Paused bool

	// Total is the number of applications in the current batch,
	// parked ones included.
	Total int

	// Loaded counts applications fetched and committed this batch.
	Loaded int

	// Cached counts applications skipped because the cache was current.
	Cached int

	// Failed counts per-application failures this batch.
	Failed int

	// Pending counts applications parked by the space filter.
	Pending int
}
