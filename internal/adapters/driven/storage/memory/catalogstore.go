package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fathom-search/fathom-cli/internal/core/domain"
	"github.com/fathom-search/fathom-cli/internal/core/ports/driven"
)

// Ensure CatalogStore implements the interface.
var _ driven.CatalogStore = (*CatalogStore)(nil)

// CatalogStore is an in-memory implementation of driven.CatalogStore.
// Used in tests and as the backing store for ephemeral sessions.
type CatalogStore struct {
	mu        sync.RWMutex
	records   map[string]domain.IndexRecord // record ID -> record
	order     map[string]int                // record ID -> insertion sequence
	metadata  map[string]domain.AppMetadata // tenantUser + "\x00" + appID -> stamp
	favorites map[string]domain.Favorite    // tenantUser + "\x00" + key -> favourite
	nextSeq   int
}

// NewCatalogStore creates a new in-memory catalog store.
func NewCatalogStore() *CatalogStore {
	return &CatalogStore{
		records:   make(map[string]domain.IndexRecord),
		order:     make(map[string]int),
		metadata:  make(map[string]domain.AppMetadata),
		favorites: make(map[string]domain.Favorite),
	}
}

// UpsertRecords stores or replaces records by ID.
func (s *CatalogStore) UpsertRecords(_ context.Context, records []domain.IndexRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		if _, exists := s.records[r.ID]; !exists {
			s.order[r.ID] = s.nextSeq
			s.nextSeq++
		}
		s.records[r.ID] = r
	}
	return nil
}

// DeleteForApplication removes one application's records.
func (s *CatalogStore) DeleteForApplication(_ context.Context, tenantUser, appID string) error {
	if tenantUser == "" {
		return domain.ErrPartitionRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, r := range s.records {
		if r.TenantUser == tenantUser && r.AppID == appID {
			delete(s.records, id)
			delete(s.order, id)
		}
	}
	return nil
}

// DeleteForTenantUser wipes the partition's records and metadata.
// Favourites survive, matching the durable store.
func (s *CatalogStore) DeleteForTenantUser(_ context.Context, tenantUser string) error {
	if tenantUser == "" {
		return domain.ErrPartitionRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, r := range s.records {
		if r.TenantUser == tenantUser {
			delete(s.records, id)
			delete(s.order, id)
		}
	}
	for key := range s.metadata {
		if metadataPartition(key) == tenantUser {
			delete(s.metadata, key)
		}
	}
	return nil
}

// Query returns records matching the filter, ranked when SearchText is set.
func (s *CatalogStore) Query(_ context.Context, filter domain.Filter) ([]domain.IndexRecord, error) {
	if filter.TenantUser == "" {
		return nil, domain.ErrPartitionRequired
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	term := strings.ToLower(strings.TrimSpace(filter.SearchText))

	var matched []domain.IndexRecord
	for _, r := range s.records {
		if !matchesFilter(&r, filter) {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(r.SearchText), term) {
			continue
		}
		matched = append(matched, r)
	}

	if term != "" {
		sort.Slice(matched, func(i, j int) bool {
			si, sj := matchScore(&matched[i], term), matchScore(&matched[j], term)
			if si != sj {
				return si > sj
			}
			return matched[i].ID < matched[j].ID
		})
	} else {
		sort.Slice(matched, func(i, j int) bool {
			return s.order[matched[i].ID] < s.order[matched[j].ID]
		})
	}
	return matched, nil
}

// matchesFilter applies every facet of the filter except free text.
func matchesFilter(r *domain.IndexRecord, filter domain.Filter) bool {
	if r.TenantUser != filter.TenantUser {
		return false
	}
	if len(filter.SpaceIDs) > 0 && !contains(filter.SpaceIDs, r.SpaceID) {
		return false
	}
	if len(filter.AppIDs) > 0 && !contains(filter.AppIDs, r.AppID) {
		return false
	}
	if len(filter.SheetIDs) > 0 && !contains(filter.SheetIDs, r.SheetID) {
		return false
	}
	if len(filter.ObjectTypes) > 0 {
		found := false
		for _, t := range filter.ObjectTypes {
			if r.ObjectType == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	switch filter.Visibility {
	case domain.VisibilityPublished:
		if r.SheetID == "" || !r.SheetPublished {
			return false
		}
	case domain.VisibilityUnpublished:
		if r.SheetID == "" || r.SheetPublished {
			return false
		}
	case domain.VisibilityApproved:
		if r.SheetID == "" || !r.SheetApproved {
			return false
		}
	}
	return true
}

// matchScore mirrors the durable store's weighted substring ranking.
func matchScore(r *domain.IndexRecord, term string) int {
	score := 0
	if strings.Contains(strings.ToLower(r.Title), term) {
		score += 4
		if strings.EqualFold(r.Title, term) {
			score += 4
		}
	}
	if strings.Contains(strings.ToLower(r.NameText), term) {
		score += 2
	}
	if strings.Contains(strings.ToLower(r.SearchText), term) {
		score++
	}
	return score
}

// UniqueValues returns the distinct non-empty values of a record field.
func (s *CatalogStore) UniqueValues(_ context.Context, tenantUser, field string) ([]string, error) {
	if tenantUser == "" {
		return nil, domain.ErrPartitionRequired
	}

	var pick func(r *domain.IndexRecord) string
	switch field {
	case "objectType":
		pick = func(r *domain.IndexRecord) string { return string(r.ObjectType) }
	case "appName":
		pick = func(r *domain.IndexRecord) string { return r.AppName }
	case "sheetName":
		pick = func(r *domain.IndexRecord) string { return r.SheetName }
	case "spaceId":
		pick = func(r *domain.IndexRecord) string { return r.SpaceID }
	default:
		return nil, fmt.Errorf("%w: unsupported field %q", domain.ErrInvalidInput, field)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, r := range s.records {
		if r.TenantUser != tenantUser {
			continue
		}
		if v := pick(&r); v != "" {
			seen[v] = struct{}{}
		}
	}

	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)
	return values, nil
}

// ListCachedPartitions enumerates every cached tenant/user pair.
func (s *CatalogStore) ListCachedPartitions(_ context.Context) ([]domain.PartitionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make(map[string]*domain.PartitionInfo)
	get := func(tenantUser string) *domain.PartitionInfo {
		info, ok := infos[tenantUser]
		if !ok {
			info = &domain.PartitionInfo{TenantUser: tenantUser}
			infos[tenantUser] = info
		}
		return info
	}

	for _, r := range s.records {
		get(r.TenantUser).RecordCount++
	}
	for key, m := range s.metadata {
		info := get(metadataPartition(key))
		info.AppCount++
		if m.LoadedAt.After(info.LastSync) {
			info.LastSync = m.LoadedAt
		}
	}

	result := make([]domain.PartitionInfo, 0, len(infos))
	for _, info := range infos {
		result = append(result, *info)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].TenantUser < result[j].TenantUser
	})
	return result, nil
}

// AppMetadata returns the partition's application stamps.
func (s *CatalogStore) AppMetadata(_ context.Context, tenantUser string) ([]domain.AppMetadata, error) {
	if tenantUser == "" {
		return nil, domain.ErrPartitionRequired
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var metas []domain.AppMetadata
	for key, m := range s.metadata {
		if metadataPartition(key) == tenantUser {
			metas = append(metas, m)
		}
	}
	sort.Slice(metas, func(i, j int) bool { return metas[i].ID < metas[j].ID })
	return metas, nil
}

// SaveAppMetadata inserts or replaces one application's stamp.
func (s *CatalogStore) SaveAppMetadata(_ context.Context, tenantUser string, meta domain.AppMetadata) error {
	if tenantUser == "" {
		return domain.ErrPartitionRequired
	}
	if meta.LoadedAt.IsZero() {
		meta.LoadedAt = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metadata[metadataKey(tenantUser, meta.ID)] = meta
	return nil
}

// DeleteAppMetadata removes one application's stamp.
func (s *CatalogStore) DeleteAppMetadata(_ context.Context, tenantUser, appID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.metadata, metadataKey(tenantUser, appID))
	return nil
}

// AddFavorite pins a record by (appID, path).
func (s *CatalogStore) AddFavorite(_ context.Context, tenantUser string, fav domain.Favorite) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.favorites[tenantUser+"\x00"+fav.Key()] = fav
	return nil
}

// RemoveFavorite unpins a record.
func (s *CatalogStore) RemoveFavorite(_ context.Context, tenantUser string, fav domain.Favorite) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.favorites, tenantUser+"\x00"+fav.Key())
	return nil
}

// Favorites lists the partition's pinned pairs.
func (s *CatalogStore) Favorites(_ context.Context, tenantUser string) ([]domain.Favorite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix := tenantUser + "\x00"
	var favs []domain.Favorite
	for key, f := range s.favorites {
		if strings.HasPrefix(key, prefix) {
			favs = append(favs, f)
		}
	}
	sort.Slice(favs, func(i, j int) bool { return favs[i].Key() < favs[j].Key() })
	return favs, nil
}

// Close is a no-op for the in-memory store.
func (s *CatalogStore) Close() error {
	return nil
}

func metadataKey(tenantUser, appID string) string {
	return tenantUser + "\x00" + appID
}

func metadataPartition(key string) string {
	if i := strings.IndexByte(key, 0); i >= 0 {
		return key[:i]
	}
	return key
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
