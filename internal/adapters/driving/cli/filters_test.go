package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fathom-search/fathom-cli/internal/core/domain"
)

func TestFiltersCmd_ListsAllFields(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	seedRecords(t, domain.IndexRecord{
		AppID: "app-1", AppName: "Sales Dashboard", SpaceID: "space-a",
		Path: "sheetDimensions[0].qDef", Title: "Region",
		SheetID: "sheet-1", SheetName: "Overview",
		ObjectType: domain.ObjectTypeSheetDimension,
	})

	out, err := execute(t, "filters")
	require.NoError(t, err)
	assert.Contains(t, out, "Sheet Dimension")
	assert.Contains(t, out, "Sales Dashboard")
	assert.Contains(t, out, "Overview")
	assert.Contains(t, out, "space-a")
}

func TestFiltersCmd_SingleField(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	seedRecords(t, domain.IndexRecord{
		AppID: "app-1", AppName: "Sales Dashboard", SpaceID: "space-a",
		Path: "masterDimensions[0].qDim", Title: "Region",
		ObjectType: domain.ObjectTypeMasterDimension,
	})

	out, err := execute(t, "filters", "space")
	require.NoError(t, err)
	assert.Contains(t, out, "space-a")
	assert.NotContains(t, out, "Sales Dashboard")
}

func TestFiltersCmd_UnknownField(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	_, err := execute(t, "filters", "bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown filter")
}
