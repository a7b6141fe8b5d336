package services

import (
	"fmt"
	"strings"

	"github.com/fathom-search/fathom-cli/internal/core/domain"
)

// Extract walks one application's structural document and emits flat
// index records: one per master dimension, master measure and
// sheet-scoped dimension/measure usage.
//
// Extract is pure and total. Missing or malformed fields degrade to
// empty values; it never returns an error and performs no I/O. Record
// ID and TenantUser are left empty - the loader stamps them, since the
// partition is a session concern, not a document concern.
func Extract(doc *domain.Structure, appID, appName, spaceID string) []domain.IndexRecord {
	if doc == nil {
		return nil
	}

	sheets := make(map[string]domain.Sheet, len(doc.Sheets))
	for _, sh := range doc.Sheets {
		sheets[sh.ID] = sh
	}

	e := extraction{
		appID:   appID,
		appName: appName,
		spaceID: spaceID,
		sheets:  sheets,
		seen:    make(map[string]struct{}),
	}

	for i, md := range doc.MasterDimensions {
		e.masterDimension(i, md)
	}
	for i, mm := range doc.MasterMeasures {
		e.masterMeasure(i, mm)
	}
	for i, entry := range doc.SheetDimensions {
		e.sheetEntry("sheetDimensions", i, entry, domain.ObjectTypeSheetDimension)
	}
	for i, entry := range doc.SheetMeasures {
		e.sheetEntry("sheetMeasures", i, entry, domain.ObjectTypeSheetMeasure)
	}

	return e.records
}

// extraction holds the per-document walk state. A fresh value per call
// keeps concurrent extractions fully isolated.
type extraction struct {
	appID   string
	appName string
	spaceID string
	sheets  map[string]domain.Sheet
	seen    map[string]struct{}
	records []domain.IndexRecord
}

// masterDimension emits a record for one master dimension list entry,
// if it carries an inline dimension definition.
func (e *extraction) masterDimension(i int, md domain.MasterDimension) {
	if md.Dim == nil {
		return
	}

	name := domain.UnwrapStrings(md.Dim.FieldLabels)
	definition := strings.Join(domain.UnwrapStrings(md.Dim.FieldDefs), " ")
	title := firstNonEmpty(md.Dim.LabelExpr.OrEmpty(), md.Meta.Title)

	e.emit(domain.IndexRecord{
		Path:       fmt.Sprintf("masterDimensions[%d].qDim", i),
		ObjectType: domain.ObjectTypeMasterDimension,
		Title:      title,
		Name:       name,
		Definition: definition,
	})
}

// masterMeasure emits a record for one master measure list entry.
// Title priority: label, then meta title, then label expression.
func (e *extraction) masterMeasure(i int, mm domain.MasterMeasure) {
	if mm.Measure == nil {
		return
	}

	title := firstNonEmpty(
		mm.Measure.Label.OrEmpty(),
		mm.Meta.Title,
		mm.Measure.LabelExpr.OrEmpty(),
	)

	e.emit(domain.IndexRecord{
		Path:       fmt.Sprintf("masterMeasures[%d].qMeasure", i),
		ObjectType: domain.ObjectTypeMasterMeasure,
		Title:      title,
		Definition: mm.Measure.Def.String(),
	})
}

// sheetEntry emits a record for one sheet dimension/measure usage.
// Entries with an inline definition carry their own name, definition
// and title; entries that only reference a master object by library ID
// keep the sheet/chart context but an empty payload, so they are
// findable by sheet text without duplicating the master object's own
// definition text.
func (e *extraction) sheetEntry(listName string, i int, entry domain.SheetEntry, objType domain.ObjectType) {
	rec := domain.IndexRecord{
		ObjectType: objType,
		SheetID:    entry.SheetID,
		SheetName:  entry.SheetTitle,
		SheetURL:   entry.SheetURL,
		ChartID:    entry.ChartID,
		ChartTitle: entry.ChartTitle,
		ChartURL:   entry.ChartURL,
	}

	if sh, ok := e.sheets[entry.SheetID]; ok {
		rec.SheetApproved = sh.Approved
		rec.SheetPublished = sh.Published
		if rec.SheetName == "" {
			rec.SheetName = sh.Title
		}
		if rec.SheetURL == "" {
			rec.SheetURL = sh.URL
		}
	}

	switch {
	case entry.Def != nil:
		rec.Path = fmt.Sprintf("%s[%d].qDef", listName, i)
		rec.Name = domain.UnwrapStrings(entry.Def.FieldLabels)
		rec.Definition = inlineDefinition(entry.Def)
		rec.Title = inlineTitle(entry.Def)

	case entry.LibraryID != "":
		// Reference to a master object: no payload of its own.
		rec.Path = fmt.Sprintf("%s[%d].qLibraryId", listName, i)

	default:
		// Neither inline definition nor library reference.
		return
	}

	e.emit(rec)
}

// emit finalises derived fields and appends the record, deduplicating
// by path: re-processing the same path is a no-op, not a duplicate.
func (e *extraction) emit(rec domain.IndexRecord) {
	if _, dup := e.seen[rec.Path]; dup {
		return
	}
	e.seen[rec.Path] = struct{}{}

	rec.AppID = e.appID
	rec.AppName = e.appName
	rec.SpaceID = e.spaceID
	rec.NameText = strings.Join(rec.Name, " ")
	rec.SearchText = rec.ComposeSearchText()

	e.records = append(e.records, rec)
}

// inlineDefinition extracts the definition text of an inline def:
// the qDef value when present, the field definition list otherwise.
// Definition decoding already guarantees a real string or "".
func inlineDefinition(def *domain.InlineDef) string {
	if !def.Def.IsZero() {
		return def.Def.String()
	}
	return strings.Join(domain.UnwrapStrings(def.FieldDefs), " ")
}

// inlineTitle applies the uniform title priority: explicit title,
// label, nested meta title, qTitle, then the unevaluated string
// expression. First non-empty wins.
func inlineTitle(def *domain.InlineDef) string {
	metaTitle := ""
	if def.Meta != nil {
		metaTitle = def.Meta.Title
	}
	exprTitle := ""
	if def.StringExpr != nil {
		exprTitle = def.StringExpr.Expr
	}
	return firstNonEmpty(
		def.Title.OrEmpty(),
		def.Label.OrEmpty(),
		metaTitle,
		def.TitleExpr.OrEmpty(),
		exprTitle,
	)
}

// firstNonEmpty returns the first non-empty candidate.
func firstNonEmpty(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}
