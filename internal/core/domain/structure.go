package domain

import (
	"encoding/json"
	"strings"
)

// Structure is the raw per-application document returned by the document
// source. SheetDimensions and SheetMeasures are flattened associations
// between a sheet's visual object and the dimension or measure it uses,
// with sheet/chart context already denormalised onto each entry by the
// source.
type Structure struct {
	// AppLayout carries top-level application metadata.
	AppLayout AppLayout `json:"appLayout"`

	// MasterDimensions are the reusable dimensions declared at
	// application scope.
	MasterDimensions []MasterDimension `json:"masterDimensions"`

	// MasterMeasures are the reusable measures declared at
	// application scope.
	MasterMeasures []MasterMeasure `json:"masterMeasures"`

	// Sheets lists the application's sheets with publication flags.
	Sheets []Sheet `json:"sheets"`

	// SheetDimensions are per-visual-object dimension usages.
	SheetDimensions []SheetEntry `json:"sheetDimensions"`

	// SheetMeasures are per-visual-object measure usages.
	SheetMeasures []SheetEntry `json:"sheetMeasures"`
}

// AppLayout is the subset of application layout fields the extractor
// and loader care about.
type AppLayout struct {
	Title    string `json:"qTitle"`
	Modified string `json:"modifiedDate"`
}

// ObjectMeta carries the metadata block attached to master objects.
type ObjectMeta struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Approved    bool   `json:"approved"`
	Published   bool   `json:"published"`
}

// MasterDimension is one entry of the application's master dimension list.
type MasterDimension struct {
	Meta ObjectMeta    `json:"qMeta"`
	Dim  *DimensionDef `json:"qDim"`
}

// DimensionDef is the inline payload of a dimension definition.
type DimensionDef struct {
	Grouping    string       `json:"qGrouping"`
	FieldDefs   []StringLike `json:"qFieldDefs"`
	FieldLabels []StringLike `json:"qFieldLabels"`
	LabelExpr   StringLike   `json:"qLabelExpression"`
}

// MasterMeasure is one entry of the application's master measure list.
type MasterMeasure struct {
	Meta    ObjectMeta  `json:"qMeta"`
	Measure *MeasureDef `json:"qMeasure"`
}

// MeasureDef is the inline payload of a measure definition.
type MeasureDef struct {
	Label     StringLike `json:"qLabel"`
	Def       Definition `json:"qDef"`
	LabelExpr StringLike `json:"qLabelExpression"`
}

// Sheet describes one sheet of the application, including the
// publication flags that sheet-scoped records inherit.
type Sheet struct {
	ID        string `json:"qId"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Approved  bool   `json:"approved"`
	Published bool   `json:"published"`
}

// SheetEntry is one flattened association between a visual object and a
// dimension or measure. When Def is present the definition is inline;
// when only LibraryID is set the entry references a master object and
// carries no payload of its own.
type SheetEntry struct {
	SheetID    string `json:"sheetId"`
	SheetTitle string `json:"sheetTitle"`
	SheetURL   string `json:"sheetUrl"`
	ChartID    string `json:"chartId"`
	ChartTitle string `json:"chartTitle"`
	ChartURL   string `json:"chartUrl"`

	LibraryID string     `json:"qLibraryId"`
	Def       *InlineDef `json:"qDef"`
}

// InlineDef is the inline definition payload of a sheet entry. The
// shapes vary per visualisation type, so every field is optional.
type InlineDef struct {
	Def         Definition        `json:"qDef"`
	FieldDefs   []StringLike      `json:"qFieldDefs"`
	FieldLabels []StringLike      `json:"qFieldLabels"`
	Title       StringLike        `json:"title"`
	Label       StringLike        `json:"qLabel"`
	Meta        *MetaDef          `json:"qMetaDef"`
	TitleExpr   StringLike        `json:"qTitle"`
	StringExpr  *StringExpression `json:"qStringExpression"`
}

// MetaDef is the nested metadata block some inline definitions carry.
type MetaDef struct {
	Title string `json:"title"`
}

// StringExpression wraps an unevaluated expression. The expression text
// is surfaced verbatim; fathom never evaluates it.
type StringExpression struct {
	Expr string `json:"qExpr"`
}

// Definition is a qDef value: a plain string, or an object carrying the
// string under "qv", a nested "qDef" (itself possibly nested one more
// level), or a field definition list. Decoding is total - unexpected
// shapes yield the empty string rather than a stringified object.
type Definition struct {
	value string
}

// DefinitionOf builds a Definition from a known string, for tests and
// fixtures.
func DefinitionOf(s string) Definition {
	return Definition{value: s}
}

// String returns the extracted definition text, possibly empty.
func (d Definition) String() string {
	return d.value
}

// IsZero reports whether no definition text was found.
func (d Definition) IsZero() bool {
	return d.value == ""
}

// maxDefinitionNesting bounds how many "qDef" levels the decoder
// follows: the outer key plus one nested level.
const maxDefinitionNesting = 1

// UnmarshalJSON extracts the definition string from any of the shapes
// the source emits. Preference order: plain string, object "qv",
// object "qDef" (itself possibly nested one more level), field
// definition list joined by spaces. Anything else degrades to empty.
func (d *Definition) UnmarshalJSON(data []byte) error {
	d.value = definitionText(data, 0)
	return nil
}

func definitionText(data []byte, depth int) string {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		return str
	}

	var obj struct {
		QV        *string         `json:"qv"`
		Def       json.RawMessage `json:"qDef"`
		FieldDefs []StringLike    `json:"qFieldDefs"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return ""
	}

	if obj.QV != nil {
		return *obj.QV
	}
	if len(obj.Def) > 0 && depth <= maxDefinitionNesting {
		if v := definitionText(obj.Def, depth+1); v != "" {
			return v
		}
	}
	if len(obj.FieldDefs) > 0 {
		return strings.Join(UnwrapStrings(obj.FieldDefs), " ")
	}
	return ""
}

// MarshalJSON writes the definition back as a plain string.
func (d Definition) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.value)
}

// AppSummary is one entry of the document source's application listing.
// Lightweight by design: reconciliation compares these against cached
// AppMetadata without fetching full documents.
type AppSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	SpaceID  string `json:"spaceId"`
	Modified string `json:"modifiedDate"`
}

// Metadata converts the summary into the cached metadata form.
func (a AppSummary) Metadata() AppMetadata {
	return AppMetadata{ID: a.ID, Name: a.Name, SpaceID: a.SpaceID, Modified: a.Modified}
}

// Space is one workspace space. The empty ID denotes the personal space.
type Space struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// AppPage is one page of the application listing.
type AppPage struct {
	Items         []AppSummary
	NextPageToken string
}

// SpacePage is one page of the space listing.
type SpacePage struct {
	Items         []Space
	NextPageToken string
}
