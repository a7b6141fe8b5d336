package domain

import (
	"strings"
	"time"
)

// ObjectType classifies an index record. The enumeration is closed:
// every stored record carries exactly one of these values.
type ObjectType string

// The four object types produced by the extractor.
const (
	ObjectTypeMasterDimension ObjectType = "Master Dimension"
	ObjectTypeMasterMeasure   ObjectType = "Master Measure"
	ObjectTypeSheetDimension  ObjectType = "Sheet Dimension"
	ObjectTypeSheetMeasure    ObjectType = "Sheet Measure"
)

// ObjectTypes lists all valid object types in display order.
func ObjectTypes() []ObjectType {
	return []ObjectType{
		ObjectTypeMasterDimension,
		ObjectTypeMasterMeasure,
		ObjectTypeSheetDimension,
		ObjectTypeSheetMeasure,
	}
}

// Valid reports whether t is one of the closed enumeration values.
func (t ObjectType) Valid() bool {
	switch t {
	case ObjectTypeMasterDimension, ObjectTypeMasterMeasure,
		ObjectTypeSheetDimension, ObjectTypeSheetMeasure:
		return true
	}
	return false
}

// IndexRecord is the unit stored and searched: one flat, denormalised
// row per dimension or measure instance found in an application's
// structural document.
type IndexRecord struct {
	// ID is the stable composite key: partition + ":" + appID + ":" + path.
	ID string

	// TenantUser is the partition key identifying the owning cache.
	TenantUser string

	// Path is the structural locator within the application document,
	// e.g. "masterDimensions[3].qDim". Unique only within one application.
	Path string

	// AppID identifies the application the record was extracted from.
	AppID string

	// AppName is the application display name at extraction time.
	AppName string

	// SpaceID is the application's space. Empty string means the
	// personal space (no shared space).
	SpaceID string

	// ObjectType classifies the record. Never empty for a stored record.
	ObjectType ObjectType

	// Sheet context. Empty for master-scoped records.
	SheetID        string
	SheetName      string
	SheetURL       string
	SheetApproved  bool
	SheetPublished bool

	// Chart context. Empty for master-scoped records.
	ChartID    string
	ChartTitle string
	ChartURL   string

	// Title is the best-effort human label of the object.
	Title string

	// Name is the ordered list of field labels. May be empty.
	Name []string

	// NameText is Name joined by spaces, precomputed for matching and sorting.
	NameText string

	// Definition is the underlying expression or field reference.
	// Always a real string, never a stringified object.
	Definition string

	// SearchText is the precomputed concatenation of title, definition,
	// sheet name, chart title and name labels. Free-text search matches
	// against this field only. Stored in original case for display;
	// matching lower-cases at query time.
	SearchText string
}

// ComposeSearchText builds the SearchText value from the record's own
// fields, skipping empty parts.
func (r *IndexRecord) ComposeSearchText() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{r.Title, r.Definition, r.SheetName, r.ChartTitle, r.NameText} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// AppMetadata is the lightweight per-application stamp stored separately
// from index records. It carries just enough to decide whether an
// application needs refetching without loading its full document.
type AppMetadata struct {
	// ID is the application identifier.
	ID string

	// Name is the application display name.
	Name string

	// SpaceID is the application's space; empty for the personal space.
	SpaceID string

	// Modified is the opaque last-modified stamp reported by the
	// document source. Compared by inequality only.
	Modified string

	// LoadedAt is when this application was last successfully loaded.
	LoadedAt time.Time
}

// Favorite marks one record as pinned by the user. Favourites are keyed
// by (appID, path) rather than record ID so they survive index rebuilds.
type Favorite struct {
	AppID string
	Path  string
}

// Key returns the lookup key used to match a favourite against a record.
func (f Favorite) Key() string {
	return f.AppID + recordKeySeparator + f.Path
}
