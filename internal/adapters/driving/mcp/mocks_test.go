package mcp

import (
	"context"

	"github.com/fathom-search/fathom-cli/internal/core/domain"
)

// mockQuery is a mock implementation of driving.CatalogQuery.
type mockQuery struct {
	result   *domain.QueryResult
	err      error
	lastOpts domain.QueryOptions
}

func (m *mockQuery) Query(_ context.Context, opts domain.QueryOptions) (*domain.QueryResult, error) {
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	if m.result == nil {
		return &domain.QueryResult{}, nil
	}
	return m.result, nil
}

func (m *mockQuery) SetFilter(_ domain.Filter)               {}
func (m *mockQuery) SetSort(_ domain.Sort)                   {}
func (m *mockQuery) SetPage(_ domain.Page)                   {}
func (m *mockQuery) Subscribe(_ func(*domain.QueryResult))   {}
func (m *mockQuery) NotifyApplicationLoaded(_ string)        {}
func (m *mockQuery) Close()                                  {}

// mockStore implements the UniqueValues slice of driven.CatalogStore;
// everything else is a no-op.
type mockStore struct {
	values map[string][]string
	err    error
}

func (m *mockStore) UniqueValues(_ context.Context, _, field string) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.values[field], nil
}

func (m *mockStore) UpsertRecords(_ context.Context, _ []domain.IndexRecord) error { return nil }
func (m *mockStore) DeleteForApplication(_ context.Context, _, _ string) error     { return nil }
func (m *mockStore) DeleteForTenantUser(_ context.Context, _ string) error         { return nil }
func (m *mockStore) Query(_ context.Context, _ domain.Filter) ([]domain.IndexRecord, error) {
	return nil, nil
}
func (m *mockStore) ListCachedPartitions(_ context.Context) ([]domain.PartitionInfo, error) {
	return nil, nil
}
func (m *mockStore) AppMetadata(_ context.Context, _ string) ([]domain.AppMetadata, error) {
	return nil, nil
}
func (m *mockStore) SaveAppMetadata(_ context.Context, _ string, _ domain.AppMetadata) error {
	return nil
}
func (m *mockStore) DeleteAppMetadata(_ context.Context, _, _ string) error           { return nil }
func (m *mockStore) AddFavorite(_ context.Context, _ string, _ domain.Favorite) error { return nil }
func (m *mockStore) RemoveFavorite(_ context.Context, _ string, _ domain.Favorite) error {
	return nil
}
func (m *mockStore) Favorites(_ context.Context, _ string) ([]domain.Favorite, error) {
	return nil, nil
}
func (m *mockStore) Close() error { return nil }

// mockAdmin is a mock implementation of driving.CacheAdmin.
type mockAdmin struct {
	partitions []domain.PartitionInfo
	err        error
}

func (m *mockAdmin) ListPartitions(_ context.Context) ([]domain.PartitionInfo, error) {
	return m.partitions, m.err
}

func (m *mockAdmin) ClearPartition(_ context.Context, _ string) error {
	return m.err
}
