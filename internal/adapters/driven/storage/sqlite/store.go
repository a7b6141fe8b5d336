package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/fathom-search/fathom-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/fathom-search/fathom-cli/internal/core/domain"
	"github.com/fathom-search/fathom-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.CatalogStore = (*Store)(nil)

// Substring ranking weights. Policy parameters, not a contract: only
// the relative order (title > labels > body) is relied upon.
const (
	titleWeight = 4
	nameWeight  = 2
	bodyWeight  = 1
)

// uniqueValueColumns whitelists the fields UniqueValues may enumerate.
var uniqueValueColumns = map[string]string{
	"objectType": "object_type",
	"appName":    "app_name",
	"sheetName":  "sheet_name",
	"spaceId":    "space_id",
}

// Store is the SQLite-backed catalog store: durable index records,
// lightweight application metadata and favourites, partitioned by
// tenant/user.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a store at the specified data directory.
// If dataDir is empty, defaults to ~/.fathom/data/catalog.db.
func NewStore(dataDir string) (*Store, error) {
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

	dbPath := filepath.Join(dataDir, "catalog.db")

	// WAL mode for better concurrency between load workers and queries.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: dbPath}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}
		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// UpsertRecords bulk inserts or replaces records by ID. Sequence
// numbers preserve insertion order for stable unranked results.
func (s *Store) UpsertRecords(ctx context.Context, records []domain.IndexRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.NewStorageError("begin upsert", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var nextSeq int64
	row := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(seq), 0) + 1 FROM records")
	if err := row.Scan(&nextSeq); err != nil {
		return domain.NewStorageError("next sequence", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (
			id, tenant_user, app_id, path, app_name, space_id, object_type,
			sheet_id, sheet_name, sheet_url, sheet_approved, sheet_published,
			chart_id, chart_title, chart_url,
			title, name, name_text, definition, search_text, seq
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			app_name = excluded.app_name,
			space_id = excluded.space_id,
			object_type = excluded.object_type,
			sheet_id = excluded.sheet_id,
			sheet_name = excluded.sheet_name,
			sheet_url = excluded.sheet_url,
			sheet_approved = excluded.sheet_approved,
			sheet_published = excluded.sheet_published,
			chart_id = excluded.chart_id,
			chart_title = excluded.chart_title,
			chart_url = excluded.chart_url,
			title = excluded.title,
			name = excluded.name,
			name_text = excluded.name_text,
			definition = excluded.definition,
			search_text = excluded.search_text
	`)
	if err != nil {
		return domain.NewStorageError("prepare upsert", err)
	}
	defer stmt.Close()

	for i := range records {
		r := &records[i]
		nameJSON, err := json.Marshal(r.Name)
		if err != nil {
			return domain.NewStorageError("marshal name labels", err)
		}

		if _, err := stmt.ExecContext(ctx,
			r.ID, r.TenantUser, r.AppID, r.Path, r.AppName, r.SpaceID, string(r.ObjectType),
			r.SheetID, r.SheetName, r.SheetURL, boolToInt(r.SheetApproved), boolToInt(r.SheetPublished),
			r.ChartID, r.ChartTitle, r.ChartURL,
			r.Title, string(nameJSON), r.NameText, r.Definition, r.SearchText, nextSeq,
		); err != nil {
			return domain.NewStorageError("upsert record", err)
		}
		nextSeq++
	}

	if err := tx.Commit(); err != nil {
		return domain.NewStorageError("commit upsert", err)
	}
	return nil
}

// DeleteForApplication removes one application's records.
func (s *Store) DeleteForApplication(ctx context.Context, tenantUser, appID string) error {
	if tenantUser == "" {
		return domain.ErrPartitionRequired
	}
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM records WHERE tenant_user = ? AND app_id = ?", tenantUser, appID)
	if err != nil {
		return domain.NewStorageError("delete application records", err)
	}
	return nil
}

// DeleteForTenantUser wipes the partition's records and metadata.
// Favourites are deliberately kept: they survive index rebuilds.
func (s *Store) DeleteForTenantUser(ctx context.Context, tenantUser string) error {
	if tenantUser == "" {
		return domain.ErrPartitionRequired
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.NewStorageError("begin partition wipe", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM records WHERE tenant_user = ?", tenantUser); err != nil {
		return domain.NewStorageError("delete partition records", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM app_metadata WHERE tenant_user = ?", tenantUser); err != nil {
		return domain.NewStorageError("delete partition metadata", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.NewStorageError("commit partition wipe", err)
	}
	return nil
}

// Query returns records matching the filter. The partition key is
// mandatory; every other facet, when empty, imposes no restriction.
// With SearchText, results are ranked by weighted substring matches.
func (s *Store) Query(ctx context.Context, filter domain.Filter) ([]domain.IndexRecord, error) {
	if filter.TenantUser == "" {
		return nil, domain.ErrPartitionRequired
	}

	where := []string{"tenant_user = ?"}
	args := []any{filter.TenantUser}

	addIn := func(column string, values []string) {
		if len(values) == 0 {
			return
		}
		placeholders := strings.Repeat("?,", len(values))
		where = append(where, fmt.Sprintf("%s IN (%s)", column, placeholders[:len(placeholders)-1]))
		for _, v := range values {
			args = append(args, v)
		}
	}

	addIn("space_id", filter.SpaceIDs)
	addIn("app_id", filter.AppIDs)
	addIn("sheet_id", filter.SheetIDs)
	if len(filter.ObjectTypes) > 0 {
		types := make([]string, len(filter.ObjectTypes))
		for i, t := range filter.ObjectTypes {
			types[i] = string(t)
		}
		addIn("object_type", types)
	}

	switch filter.Visibility {
	case domain.VisibilityPublished:
		where = append(where, "sheet_id != '' AND sheet_published = 1")
	case domain.VisibilityUnpublished:
		where = append(where, "sheet_id != '' AND sheet_published = 0")
	case domain.VisibilityApproved:
		where = append(where, "sheet_id != '' AND sheet_approved = 1")
	}

	term := strings.TrimSpace(filter.SearchText)
	if term != "" {
		where = append(where, "instr(lower(search_text), lower(?)) > 0")
		args = append(args, term)
	}

	query := `
		SELECT id, tenant_user, app_id, path, app_name, space_id, object_type,
			sheet_id, sheet_name, sheet_url, sheet_approved, sheet_published,
			chart_id, chart_title, chart_url,
			title, name, name_text, definition, search_text
		FROM records WHERE ` + strings.Join(where, " AND ") + " ORDER BY seq"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.NewStorageError("query records", err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}

	if term != "" {
		rankRecords(records, term)
	}
	return records, nil
}

// rankRecords orders matches by weighted substring score: title
// matches outrank label matches, which outrank body matches. Ties
// break on record ID so results are deterministic.
func rankRecords(records []domain.IndexRecord, term string) {
	term = strings.ToLower(term)
	scores := make(map[string]int, len(records))
	for i := range records {
		scores[records[i].ID] = matchScore(&records[i], term)
	}
	sort.Slice(records, func(i, j int) bool {
		si, sj := scores[records[i].ID], scores[records[j].ID]
		if si != sj {
			return si > sj
		}
		return records[i].ID < records[j].ID
	})
}

// matchScore computes the weighted substring score for one record.
func matchScore(r *domain.IndexRecord, term string) int {
	score := 0
	if strings.Contains(strings.ToLower(r.Title), term) {
		score += titleWeight
		if strings.EqualFold(r.Title, term) {
			score += titleWeight
		}
	}
	if strings.Contains(strings.ToLower(r.NameText), term) {
		score += nameWeight
	}
	if strings.Contains(strings.ToLower(r.SearchText), term) {
		score += bodyWeight
	}
	return score
}

// UniqueValues returns the distinct non-empty values of a whitelisted
// record field within the partition.
func (s *Store) UniqueValues(ctx context.Context, tenantUser, field string) ([]string, error) {
	if tenantUser == "" {
		return nil, domain.ErrPartitionRequired
	}
	column, ok := uniqueValueColumns[field]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported field %q", domain.ErrInvalidInput, field)
	}

	//nolint:gosec // column comes from a fixed whitelist
	query := fmt.Sprintf(
		"SELECT DISTINCT %s FROM records WHERE tenant_user = ? AND %s != '' ORDER BY %s",
		column, column, column)

	rows, err := s.db.QueryContext(ctx, query, tenantUser)
	if err != nil {
		return nil, domain.NewStorageError("query unique values", err)
	}
	defer rows.Close()

	var values []string //nolint:prealloc // size unknown from query
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, domain.NewStorageError("scan unique value", err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("iterate unique values", err)
	}
	return values, nil
}

// ListCachedPartitions enumerates every cached tenant/user pair.
func (s *Store) ListCachedPartitions(ctx context.Context) ([]domain.PartitionInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.tenant_user,
			(SELECT COUNT(*) FROM app_metadata m WHERE m.tenant_user = t.tenant_user),
			(SELECT COUNT(*) FROM records r WHERE r.tenant_user = t.tenant_user),
			(SELECT MAX(loaded_at) FROM app_metadata m WHERE m.tenant_user = t.tenant_user)
		FROM (
			SELECT tenant_user FROM records
			UNION
			SELECT tenant_user FROM app_metadata
		) t
		ORDER BY t.tenant_user
	`)
	if err != nil {
		return nil, domain.NewStorageError("list partitions", err)
	}
	defer rows.Close()

	var infos []domain.PartitionInfo //nolint:prealloc // size unknown from query
	for rows.Next() {
		var info domain.PartitionInfo
		var lastSync sql.NullTime
		if err := rows.Scan(&info.TenantUser, &info.AppCount, &info.RecordCount, &lastSync); err != nil {
			return nil, domain.NewStorageError("scan partition", err)
		}
		if lastSync.Valid {
			info.LastSync = lastSync.Time
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("iterate partitions", err)
	}
	return infos, nil
}

// AppMetadata returns the partition's lightweight application stamps.
func (s *Store) AppMetadata(ctx context.Context, tenantUser string) ([]domain.AppMetadata, error) {
	if tenantUser == "" {
		return nil, domain.ErrPartitionRequired
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT app_id, name, space_id, modified, loaded_at
		FROM app_metadata WHERE tenant_user = ?
	`, tenantUser)
	if err != nil {
		return nil, domain.NewStorageError("query app metadata", err)
	}
	defer rows.Close()

	var metas []domain.AppMetadata //nolint:prealloc // size unknown from query
	for rows.Next() {
		var m domain.AppMetadata
		var loadedAt sql.NullTime
		if err := rows.Scan(&m.ID, &m.Name, &m.SpaceID, &m.Modified, &loadedAt); err != nil {
			return nil, domain.NewStorageError("scan app metadata", err)
		}
		if loadedAt.Valid {
			m.LoadedAt = loadedAt.Time
		}
		metas = append(metas, m)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("iterate app metadata", err)
	}
	return metas, nil
}

// SaveAppMetadata inserts or replaces one application's stamp.
func (s *Store) SaveAppMetadata(ctx context.Context, tenantUser string, meta domain.AppMetadata) error {
	if tenantUser == "" {
		return domain.ErrPartitionRequired
	}

	loadedAt := meta.LoadedAt
	if loadedAt.IsZero() {
		loadedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_metadata (tenant_user, app_id, name, space_id, modified, loaded_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(tenant_user, app_id) DO UPDATE SET
			name = excluded.name,
			space_id = excluded.space_id,
			modified = excluded.modified,
			loaded_at = excluded.loaded_at
	`, tenantUser, meta.ID, meta.Name, meta.SpaceID, meta.Modified, loadedAt)
	if err != nil {
		return domain.NewStorageError("save app metadata", err)
	}
	return nil
}

// DeleteAppMetadata removes one application's stamp.
func (s *Store) DeleteAppMetadata(ctx context.Context, tenantUser, appID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM app_metadata WHERE tenant_user = ? AND app_id = ?", tenantUser, appID)
	if err != nil {
		return domain.NewStorageError("delete app metadata", err)
	}
	return nil
}

// AddFavorite pins a record by (appID, path).
func (s *Store) AddFavorite(ctx context.Context, tenantUser string, fav domain.Favorite) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO favorites (tenant_user, app_id, path) VALUES (?, ?, ?)
		ON CONFLICT(tenant_user, app_id, path) DO NOTHING
	`, tenantUser, fav.AppID, fav.Path)
	if err != nil {
		return domain.NewStorageError("add favourite", err)
	}
	return nil
}

// RemoveFavorite unpins a record.
func (s *Store) RemoveFavorite(ctx context.Context, tenantUser string, fav domain.Favorite) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM favorites WHERE tenant_user = ? AND app_id = ? AND path = ?",
		tenantUser, fav.AppID, fav.Path)
	if err != nil {
		return domain.NewStorageError("remove favourite", err)
	}
	return nil
}

// Favorites lists the partition's pinned pairs.
func (s *Store) Favorites(ctx context.Context, tenantUser string) ([]domain.Favorite, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT app_id, path FROM favorites WHERE tenant_user = ? ORDER BY created_at", tenantUser)
	if err != nil {
		return nil, domain.NewStorageError("query favourites", err)
	}
	defer rows.Close()

	var favs []domain.Favorite //nolint:prealloc // size unknown from query
	for rows.Next() {
		var f domain.Favorite
		if err := rows.Scan(&f.AppID, &f.Path); err != nil {
			return nil, domain.NewStorageError("scan favourite", err)
		}
		favs = append(favs, f)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("iterate favourites", err)
	}
	return favs, nil
}

// scanRecords scans the full record column list.
func scanRecords(rows *sql.Rows) ([]domain.IndexRecord, error) {
	var records []domain.IndexRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		var r domain.IndexRecord
		var objectType, nameJSON string
		var approved, published int
		if err := rows.Scan(
			&r.ID, &r.TenantUser, &r.AppID, &r.Path, &r.AppName, &r.SpaceID, &objectType,
			&r.SheetID, &r.SheetName, &r.SheetURL, &approved, &published,
			&r.ChartID, &r.ChartTitle, &r.ChartURL,
			&r.Title, &nameJSON, &r.NameText, &r.Definition, &r.SearchText,
		); err != nil {
			return nil, domain.NewStorageError("scan record", err)
		}

		r.ObjectType = domain.ObjectType(objectType)
		r.SheetApproved = approved != 0
		r.SheetPublished = published != 0
		if nameJSON != "" {
			if err := json.Unmarshal([]byte(nameJSON), &r.Name); err != nil {
				return nil, domain.NewStorageError("unmarshal name labels", err)
			}
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("iterate records", err)
	}
	return records, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
