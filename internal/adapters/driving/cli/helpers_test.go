package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fathom-search/fathom-cli/internal/adapters/driven/config/file"
	"github.com/fathom-search/fathom-cli/internal/adapters/driven/storage/memory"
	"github.com/fathom-search/fathom-cli/internal/core/domain"
	"github.com/fathom-search/fathom-cli/internal/core/services"
)

const (
	testTenantURL = "https://tenant.example.com"
	testUserID    = "user-1"
)

// setupTestServices wires in-memory services so commands run without
// touching the real data directory. Returns a cleanup function.
func setupTestServices(t *testing.T) func() {
	t.Helper()

	cfg, err := file.NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, cfg.Set(file.KeyTenantURL, testTenantURL))
	require.NoError(t, cfg.Set(file.KeyUserID, testUserID))

	resetSearchFlags()

	configStore = cfg
	catalogStore = memory.NewCatalogStore()
	searchEngine = nil
	queryService = services.NewQueryService(catalogStore, nil, 0)
	cacheAdmin = services.NewAdminService(catalogStore, nil)
	favorites = services.NewFavorites(catalogStore, activePartition())
	exporter = services.NewExporter(queryService)

	return func() {
		configStore = nil
		catalogStore = nil
		searchEngine = nil
		queryService = nil
		cacheAdmin = nil
		favorites = nil
		exporter = nil
	}
}

// resetSearchFlags clears the flag-bound variables shared by the search
// and export commands, so one test's flags don't leak into the next.
func resetSearchFlags() {
	searchSpaces = nil
	searchApps = nil
	searchSheets = nil
	searchTypes = nil
	searchVisibility = ""
	searchFavorites = false
	searchSort = ""
	searchDesc = false
	searchLimit = 25
	searchOffset = 0
	searchJSON = false
	exportOut = ""
	loadFull = false
	loadSpaces = nil
	loadResume = false
}

// seedRecords inserts records into the wired store under the test partition.
func seedRecords(t *testing.T, records ...domain.IndexRecord) {
	t.Helper()
	partition := domain.PartitionKey(testTenantURL, testUserID)
	for i := range records {
		records[i].TenantUser = partition
		records[i].ID = domain.RecordKey(partition, records[i].AppID, records[i].Path)
		if records[i].SearchText == "" {
			records[i].SearchText = records[i].ComposeSearchText()
		}
	}
	require.NoError(t, catalogStore.UpsertRecords(context.Background(), records))
}
