package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fathom-search/fathom-cli/internal/core/domain"
	"github.com/fathom-search/fathom-cli/internal/core/ports/driven"
)

// fakeSource serves a fixed application listing and structure.
type fakeSource struct {
	apps   []domain.AppSummary
	spaces []domain.Space
	docs   map[string]*domain.Structure
}

func (f *fakeSource) FetchStructure(_ context.Context, appID string) (*domain.Structure, error) {
	doc, ok := f.docs[appID]
	if !ok {
		return nil, domain.ErrAppNotFound
	}
	return doc, nil
}

func (f *fakeSource) ListApplications(_ context.Context, _ string) (domain.AppPage, error) {
	return domain.AppPage{Items: f.apps}, nil
}

func (f *fakeSource) ListSpaces(_ context.Context, _ string) (domain.SpacePage, error) {
	return domain.SpacePage{Items: f.spaces}, nil
}

// installFakeSource swaps the source factory for the duration of a test.
func installFakeSource(t *testing.T, src driven.DocumentSource) {
	t.Helper()
	prev := newDocumentSource
	newDocumentSource = func(_, _ string) (driven.DocumentSource, error) {
		return src, nil
	}
	t.Cleanup(func() { newDocumentSource = prev })
}

func simpleStructure(title, def string) *domain.Structure {
	return &domain.Structure{
		MasterDimensions: []domain.MasterDimension{{
			Meta: domain.ObjectMeta{Title: title},
			Dim: &domain.DimensionDef{
				FieldDefs: []domain.StringLike{domain.PlainString(def)},
			},
		}},
	}
}

func TestLoadCmd_LoadsApplications(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	installFakeSource(t, &fakeSource{
		apps: []domain.AppSummary{
			{ID: "app-1", Name: "Sales Dashboard", Modified: "2026-01-01"},
		},
		docs: map[string]*domain.Structure{
			"app-1": simpleStructure("Region", "[Region]"),
		},
	})

	out, err := execute(t, "load")
	require.NoError(t, err)
	assert.Contains(t, out, "1 loaded")

	records, err := catalogStore.Query(context.Background(), domain.Filter{
		TenantUser: domain.PartitionKey(testTenantURL, testUserID),
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Region", records[0].Title)
}

func TestLoadCmd_SecondRunUsesCache(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	installFakeSource(t, &fakeSource{
		apps: []domain.AppSummary{
			{ID: "app-1", Name: "Sales Dashboard", Modified: "2026-01-01"},
		},
		docs: map[string]*domain.Structure{
			"app-1": simpleStructure("Region", "[Region]"),
		},
	})

	_, err := execute(t, "load")
	require.NoError(t, err)

	out, err := execute(t, "load")
	require.NoError(t, err)
	assert.Contains(t, out, "0 loaded, 1 cached")
}

func TestLoadCmd_SpaceFilterParksApps(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	installFakeSource(t, &fakeSource{
		apps: []domain.AppSummary{
			{ID: "app-1", Name: "In Space", SpaceID: "space-a", Modified: "2026-01-01"},
			{ID: "app-2", Name: "Elsewhere", SpaceID: "space-b", Modified: "2026-01-01"},
		},
		docs: map[string]*domain.Structure{
			"app-1": simpleStructure("Region", "[Region]"),
			"app-2": simpleStructure("Country", "[Country]"),
		},
	})

	out, err := execute(t, "load", "--space", "space-a")
	require.NoError(t, err)
	assert.Contains(t, out, "1 loaded")
	assert.Contains(t, out, "parked by the space filter")

	// The selection is persisted for the next session.
	assert.Equal(t, []string{"space-a"}, configStore.GetStringSlice("loader.space_filter"))
}

func TestLoadCmd_FailsWithoutTenant(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	require.NoError(t, configStore.Set("tenant_url", ""))

	_, err := execute(t, "load")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no tenant configured")
}
