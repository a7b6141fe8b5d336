// Package cli provides the fathom command-line interface.
package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	bleveindex "github.com/fathom-search/fathom-cli/internal/adapters/driven/index/bleve"
	"github.com/fathom-search/fathom-cli/internal/adapters/driven/config/file"
	"github.com/fathom-search/fathom-cli/internal/adapters/driven/storage/sqlite"
	"github.com/fathom-search/fathom-cli/internal/core/domain"
	"github.com/fathom-search/fathom-cli/internal/core/ports/driven"
	"github.com/fathom-search/fathom-cli/internal/core/ports/driving"
	"github.com/fathom-search/fathom-cli/internal/core/services"
	"github.com/fathom-search/fathom-cli/internal/logger"
)

// version is set by Execute from the build.
var version = "dev"

// Shared service handles, wired by initServices before any command runs.
var (
	configStore  driven.ConfigStore
	catalogStore driven.CatalogStore
	searchEngine driven.SearchEngine
	queryService driving.CatalogQuery
	cacheAdmin   driving.CacheAdmin
	favorites    driving.FavoriteService
	exporter     driving.ReportExporter
)

// newDocumentSource builds the document source for the active tenant.
// The default build carries no transport; integrations and tests
// replace it.
var newDocumentSource = func(tenantURL, userID string) (driven.DocumentSource, error) {
	return nil, errors.New("no document source configured: this build has no tenant transport")
}

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "fathom",
	Short: "Local catalog of analytics app metadata",
	Long: `Fathom maintains a local, searchable catalog of the dimensions and
measures defined across your analytics applications. Application
structure is fetched once, indexed locally, and queried offline.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		return initServices()
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		closeServices()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

// Execute runs the root command. Called by main with the build version.
func Execute(buildVersion string) error {
	if buildVersion != "" {
		version = buildVersion
	}
	return rootCmd.Execute()
}

// initServices wires the adapters and core services. The search engine
// is optional: if it fails to open, queries degrade to store ranking.
func initServices() error {
	if catalogStore != nil {
		return nil // already wired (tests inject their own)
	}

	var err error
	configStore, err = file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}

	store, err := sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("opening catalog store: %w", err)
	}
	catalogStore = store

	engine, err := bleveindex.NewEngine("")
	if err != nil {
		logger.Warn("Search index unavailable, falling back to basic ranking: %v", err)
	} else {
		searchEngine = engine
	}

	debounce := time.Duration(configStore.GetInt(file.KeyDebounceMS)) * time.Millisecond
	queryService = services.NewQueryService(catalogStore, searchEngine, debounce)

	cacheAdmin = services.NewAdminService(catalogStore, searchEngine)
	favorites = services.NewFavorites(catalogStore, activePartition())
	exporter = services.NewExporter(queryService)
	return nil
}

func closeServices() {
	if queryService != nil {
		queryService.Close()
	}
	if searchEngine != nil {
		_ = searchEngine.Close()
	}
	if catalogStore != nil {
		_ = catalogStore.Close()
	}
}

// activeTenant returns the configured tenant URL and user ID.
func activeTenant() (string, string) {
	return configStore.GetString(file.KeyTenantURL), configStore.GetString(file.KeyUserID)
}

// activePartition returns the partition key for the configured tenant,
// or "" when no tenant is configured.
func activePartition() string {
	tenantURL, userID := activeTenant()
	if tenantURL == "" || userID == "" {
		return ""
	}
	return domain.PartitionKey(tenantURL, userID)
}

// requirePartition returns the active partition or an actionable error.
func requirePartition() (string, error) {
	p := activePartition()
	if p == "" {
		return "", errors.New("no tenant configured: run 'fathom config set tenant_url <url>' and 'fathom config set user_id <id>'")
	}
	return p, nil
}

// normalizeSpaceIDs maps the "personal" alias to the empty space ID
// the store uses for applications outside any shared space.
func normalizeSpaceIDs(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		if strings.EqualFold(id, "personal") {
			out[i] = ""
		} else {
			out[i] = id
		}
	}
	return out
}

// newLoader builds a load session for the configured tenant.
func newLoader() (driving.CatalogLoader, error) {
	tenantURL, userID := activeTenant()
	if tenantURL == "" || userID == "" {
		return nil, errors.New("no tenant configured: run 'fathom config set tenant_url <url>' and 'fathom config set user_id <id>'")
	}

	source, err := newDocumentSource(tenantURL, userID)
	if err != nil {
		return nil, err
	}

	loader := services.NewLoader(source, catalogStore, searchEngine, services.LoaderConfig{
		TenantURL: tenantURL,
		UserID:    userID,
		Workers:   configStore.GetInt(file.KeyWorkers),
	})
	if spaces := configStore.GetStringSlice(file.KeySpaceFilter); len(spaces) > 0 {
		loader.SetSpaceFilter(normalizeSpaceIDs(spaces))
	}
	loader.OnApplicationLoaded(queryService.NotifyApplicationLoaded)
	return loader, nil
}
