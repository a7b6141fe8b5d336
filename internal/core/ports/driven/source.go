package driven

import (
	"context"

	"github.com/fathom-search/fathom-cli/internal/core/domain"
)

// DocumentSource is the external collaborator that serves structural
// documents for a workspace. fathom consumes it; implementing it
// (including authentication) is out of scope for this repository.
//
// FetchStructure may fail per application with transient network or
// not-found errors; the loader treats both as a per-application
// failure, never as fatal to the batch.
type DocumentSource interface {
	// FetchStructure returns the full structural document for one
	// application.
	FetchStructure(ctx context.Context, appID string) (*domain.Structure, error)

	// ListApplications returns one page of the application listing.
	// Pass the previous page's NextPageToken to continue; an empty
	// NextPageToken marks the last page. Callers must bound the number
	// of pages they follow.
	ListApplications(ctx context.Context, pageToken string) (domain.AppPage, error)

	// ListSpaces returns one page of the space listing, paginated the
	// same way as ListApplications.
	ListSpaces(ctx context.Context, pageToken string) (domain.SpacePage, error)
}
