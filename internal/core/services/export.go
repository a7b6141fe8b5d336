package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/fathom-search/fathom-cli/internal/core/domain"
	"github.com/fathom-search/fathom-cli/internal/core/ports/driving"
)

// Ensure Exporter implements the interface.
var _ driving.ReportExporter = (*Exporter)(nil)

// reportColumns is the fixed export column contract consumed by
// spreadsheet tooling. Order matters.
var reportColumns = []string{
	"Title", "Definition", "App", "Sheet", "Type", "Name/Labels",
	"Sheet ID", "Sheet URL", "Chart Title", "Chart URL", "Chart ID",
}

// Exporter writes the currently visible result set as CSV, one row per
// record.
type Exporter struct {
	query driving.CatalogQuery
}

// NewExporter creates the report exporter on top of the query façade.
func NewExporter(query driving.CatalogQuery) *Exporter {
	return &Exporter{query: query}
}

// Export queries with the given options and streams CSV rows.
func (e *Exporter) Export(ctx context.Context, opts domain.QueryOptions, w io.Writer) error {
	result, err := e.query.Query(ctx, opts)
	if err != nil {
		return fmt.Errorf("export query: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(reportColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i := range result.Records {
		r := &result.Records[i]
		row := []string{
			r.Title,
			r.Definition,
			r.AppName,
			r.SheetName,
			string(r.ObjectType),
			strings.Join(r.Name, ", "),
			r.SheetID,
			r.SheetURL,
			r.ChartTitle,
			r.ChartURL,
			r.ChartID,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
