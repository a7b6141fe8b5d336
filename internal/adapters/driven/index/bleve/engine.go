// Package bleve adapts a bleve full-text index to the SearchEngine port.
// The index holds a flattened copy of each record's searchable fields;
// the catalog store stays the source of truth for record payloads.
package bleve

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/fathom-search/fathom-cli/internal/core/domain"
	"github.com/fathom-search/fathom-cli/internal/core/ports/driven"
)

// Ensure Engine implements the interface.
var _ driven.SearchEngine = (*Engine)(nil)

// Relevance boosts. Title matches outrank label matches, which outrank
// body matches; only the relative order is a contract.
const (
	titleBoost = 3.0
	labelBoost = 2.0
	bodyBoost  = 1.0
)

const batchSize = 100

// deletePageSize bounds each page when collecting IDs for deletion.
const deletePageSize = 500

// searchDoc is the flattened shape stored in the index.
type searchDoc struct {
	TenantUser string `json:"tenantUser"`
	AppID      string `json:"appId"`
	Title      string `json:"title"`
	Labels     string `json:"labels"`
	Body       string `json:"body"`
}

// Type implements bleve's Classifier so documents land on our mapping.
func (searchDoc) Type() string { return "record" }

// Engine is the bleve-backed search engine.
type Engine struct {
	index bleve.Index
	path  string
}

// NewEngine opens (or creates) a bleve index at the specified data
// directory. If dataDir is empty, defaults to ~/.fathom/data.
func NewEngine(dataDir string) (*Engine, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".fathom", "data")
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	indexPath := filepath.Join(dataDir, "search.bleve")

	index, err := bleve.Open(indexPath)
	if err == bleve.ErrorIndexPathDoesNotExist {
		index, err = bleve.New(indexPath, buildMapping())
	}
	if err != nil {
		return nil, fmt.Errorf("opening search index: %w", err)
	}

	return &Engine{index: index, path: indexPath}, nil
}

// NewMemEngine creates an in-memory engine, used in tests.
func NewMemEngine() (*Engine, error) {
	index, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return nil, fmt.Errorf("creating in-memory index: %w", err)
	}
	return &Engine{index: index}, nil
}

// buildMapping defines the index schema: exact-match keyword fields for
// the partition and application keys, analysed text for everything else.
func buildMapping() mapping.IndexMapping {
	keywordField := bleve.NewTextFieldMapping()
	keywordField.Analyzer = keyword.Name

	textField := bleve.NewTextFieldMapping()

	record := bleve.NewDocumentMapping()
	record.AddFieldMappingsAt("tenantUser", keywordField)
	record.AddFieldMappingsAt("appId", keywordField)
	record.AddFieldMappingsAt("title", textField)
	record.AddFieldMappingsAt("labels", textField)
	record.AddFieldMappingsAt("body", textField)

	m := bleve.NewIndexMapping()
	m.AddDocumentMapping("record", record)
	m.DefaultType = "record"
	return m
}

// IndexRecords adds or updates records in batches.
func (e *Engine) IndexRecords(ctx context.Context, records []domain.IndexRecord) error {
	batch := e.index.NewBatch()
	for i := range records {
		r := &records[i]
		doc := searchDoc{
			TenantUser: r.TenantUser,
			AppID:      r.AppID,
			Title:      r.Title,
			Labels:     r.NameText,
			Body:       r.SearchText,
		}
		if err := batch.Index(r.ID, doc); err != nil {
			return fmt.Errorf("adding record %s to batch: %w", r.ID, err)
		}

		if batch.Size() >= batchSize {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := e.index.Batch(batch); err != nil {
				return fmt.Errorf("indexing batch: %w", err)
			}
			batch = e.index.NewBatch()
		}
	}

	if batch.Size() > 0 {
		if err := e.index.Batch(batch); err != nil {
			return fmt.Errorf("indexing batch: %w", err)
		}
	}
	return nil
}

// DeleteForApplication removes one application's records from the index.
func (e *Engine) DeleteForApplication(ctx context.Context, tenantUser, appID string) error {
	q := bleve.NewConjunctionQuery(
		termQuery("tenantUser", tenantUser),
		termQuery("appId", appID),
	)
	return e.deleteMatching(ctx, q)
}

// DeleteForTenantUser removes a whole partition from the index.
func (e *Engine) DeleteForTenantUser(ctx context.Context, tenantUser string) error {
	return e.deleteMatching(ctx, termQuery("tenantUser", tenantUser))
}

// deleteMatching collects matching IDs page by page and deletes them in
// batches. Restarts from offset zero each page because deletions shift
// the result window.
func (e *Engine) deleteMatching(ctx context.Context, q query.Query) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		req := bleve.NewSearchRequest(q)
		req.Size = deletePageSize
		result, err := e.index.Search(req)
		if err != nil {
			return fmt.Errorf("finding records to delete: %w", err)
		}
		if len(result.Hits) == 0 {
			return nil
		}

		batch := e.index.NewBatch()
		for _, hit := range result.Hits {
			batch.Delete(hit.ID)
		}
		if err := e.index.Batch(batch); err != nil {
			return fmt.Errorf("deleting batch: %w", err)
		}
	}
}

// Search returns ranked record IDs for a free-text query within one
// partition. The partition term is a hard requirement; the boosted
// field queries decide ranking.
func (e *Engine) Search(ctx context.Context, tenantUser, text string, limit int) ([]driven.SearchHit, error) {
	if tenantUser == "" {
		return nil, domain.ErrPartitionRequired
	}
	if limit <= 0 {
		limit = 100
	}

	title := bleve.NewMatchQuery(text)
	title.SetField("title")
	title.SetBoost(titleBoost)

	labels := bleve.NewMatchQuery(text)
	labels.SetField("labels")
	labels.SetBoost(labelBoost)

	body := bleve.NewMatchQuery(text)
	body.SetField("body")
	body.SetBoost(bodyBoost)

	q := bleve.NewBooleanQuery()
	q.AddMust(termQuery("tenantUser", tenantUser))
	q.AddShould(title, labels, body)
	q.SetMinShould(1)

	req := bleve.NewSearchRequest(q)
	req.Size = limit

	result, err := e.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}

	hits := make([]driven.SearchHit, 0, len(result.Hits))
	for _, hit := range result.Hits {
		hits = append(hits, driven.SearchHit{RecordID: hit.ID, Score: hit.Score})
	}
	return hits, nil
}

// Close releases the index.
func (e *Engine) Close() error {
	return e.index.Close()
}

// Path returns the on-disk index path, empty for in-memory engines.
func (e *Engine) Path() string {
	return e.path
}

func termQuery(field, term string) *query.TermQuery {
	q := bleve.NewTermQuery(term)
	q.SetField(field)
	return q
}
