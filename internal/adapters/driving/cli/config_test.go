package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigShowCmd(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	out, err := execute(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "tenant_url")
	assert.Contains(t, out, testTenantURL)
	assert.Contains(t, out, "(unset)")
}

func TestConfigGetCmd(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	out, err := execute(t, "config", "get", "tenant_url")
	require.NoError(t, err)
	assert.Contains(t, out, testTenantURL)

	_, err = execute(t, "config", "get", "missing_key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not set")
}

func TestConfigSetCmd_TypeDetection(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	_, err := execute(t, "config", "set", "loader.workers", "8")
	require.NoError(t, err)
	assert.Equal(t, 8, configStore.GetInt("loader.workers"))

	_, err = execute(t, "config", "set", "loader.space_filter", "space-a, space-b")
	require.NoError(t, err)
	assert.Equal(t, []string{"space-a", "space-b"}, configStore.GetStringSlice("loader.space_filter"))

	_, err = execute(t, "config", "set", "some_flag", "true")
	require.NoError(t, err)
	assert.True(t, configStore.GetBool("some_flag"))
}
