package domain

// SheetVisibility restricts results by sheet publication state.
type SheetVisibility string

// Sheet visibility filter values. VisibilityAny imposes no restriction.
const (
	VisibilityAny         SheetVisibility = ""
	VisibilityPublished   SheetVisibility = "published"
	VisibilityUnpublished SheetVisibility = "unpublished"
	VisibilityApproved    SheetVisibility = "approved"
)

// Filter is the faceted query against the catalog store. TenantUser is
// mandatory; every other field, when empty, imposes no restriction
// rather than matching nothing.
type Filter struct {
	// TenantUser is the partition to query. Required: the store rejects
	// a filter without it, so cross-tenant leakage is impossible even
	// on a bug in filter construction.
	TenantUser string

	// SpaceIDs restricts to applications in these spaces. The empty
	// string is a valid member meaning the personal space.
	SpaceIDs []string

	// AppIDs restricts to these applications.
	AppIDs []string

	// SheetIDs restricts to these sheets.
	SheetIDs []string

	// ObjectTypes restricts to these record types.
	ObjectTypes []ObjectType

	// Visibility restricts by sheet publication state.
	Visibility SheetVisibility

	// SearchText is matched case-insensitively against each record's
	// SearchText, ranked with title matches above body matches.
	SearchText string

	// FavoritesOnly keeps only records the user has pinned.
	FavoritesOnly bool
}

// HasSpaceFilter reports whether the filter restricts spaces at all.
func (f Filter) HasSpaceFilter() bool {
	return len(f.SpaceIDs) > 0
}

// MatchesSpace reports whether an application in the given space passes
// the space facet.
func (f Filter) MatchesSpace(spaceID string) bool {
	if !f.HasSpaceFilter() {
		return true
	}
	for _, id := range f.SpaceIDs {
		if id == spaceID {
			return true
		}
	}
	return false
}

// SortColumn names a displayable column results can be ordered by.
type SortColumn string

// Sortable columns. SortRelevance is only meaningful with a free-text
// query; without one it falls back to insertion order.
const (
	SortRelevance  SortColumn = ""
	SortTitle      SortColumn = "title"
	SortDefinition SortColumn = "definition"
	SortApp        SortColumn = "app"
	SortSheet      SortColumn = "sheet"
	SortType       SortColumn = "type"
	SortName       SortColumn = "name"
)

// Sort describes result ordering. Ties always break on record ID so
// ordering is stable across identical queries.
type Sort struct {
	Column     SortColumn
	Descending bool
}

// Page applies offset/limit pagination to the sorted result list.
// A zero Limit means no limit.
type Page struct {
	Offset int
	Limit  int
}

// QueryOptions bundles everything one façade query needs.
type QueryOptions struct {
	Filter Filter
	Sort   Sort
	Page   Page
}

// QueryResult is the façade's answer: the page of records plus the
// total count before pagination.
type QueryResult struct {
	Records []IndexRecord
	Total   int
}
