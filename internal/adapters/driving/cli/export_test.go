package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fathom-search/fathom-cli/internal/core/domain"
)

func TestExportCmd_WritesCSVToStdout(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	seedRecords(t, domain.IndexRecord{
		AppID: "app-1", AppName: "Sales Dashboard",
		Path: "masterDimensions[0].qDim", Title: "Region",
		Definition: "[Region]", Name: []string{"Region"},
		ObjectType: domain.ObjectTypeMasterDimension,
	})

	out, err := execute(t, "export")
	require.NoError(t, err)
	assert.Contains(t, out, "Title,Definition,App,Sheet,Type,Name/Labels")
	assert.Contains(t, out, "Region,[Region],Sales Dashboard")
}

func TestExportCmd_WritesToFile(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	seedRecords(t, domain.IndexRecord{
		AppID: "app-1", AppName: "App",
		Path: "masterMeasures[0].qMeasure", Title: "Total Sales",
		Definition: "Sum(Sales)", ObjectType: domain.ObjectTypeMasterMeasure,
	})

	path := filepath.Join(t.TempDir(), "report.csv")
	out, err := execute(t, "export", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported to")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Total Sales")
}

func TestExportCmd_AppliesFilters(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	seedRecords(t,
		domain.IndexRecord{
			AppID: "app-1", AppName: "App",
			Path: "masterDimensions[0].qDim", Title: "Region",
			ObjectType: domain.ObjectTypeMasterDimension,
		},
		domain.IndexRecord{
			AppID: "app-1", AppName: "App",
			Path: "masterMeasures[0].qMeasure", Title: "Total Sales",
			ObjectType: domain.ObjectTypeMasterMeasure,
		},
	)

	out, err := execute(t, "export", "--type", "Master Dimension")
	require.NoError(t, err)
	assert.Contains(t, out, "Region")
	assert.NotContains(t, out, "Total Sales")
}
