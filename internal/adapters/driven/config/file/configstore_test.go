package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupConfigStore(t *testing.T) *ConfigStore {
	t.Helper()
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store := setupConfigStore(t)

	require.NoError(t, store.Set(KeyTenantURL, "https://tenant.example.com"))
	require.NoError(t, store.Set(KeyWorkers, 8))
	require.NoError(t, store.Set("verbose", true))
	require.NoError(t, store.Set(KeySpaceFilter, []string{"space-a", "space-b"}))

	assert.Equal(t, "https://tenant.example.com", store.GetString(KeyTenantURL))
	assert.Equal(t, 8, store.GetInt(KeyWorkers))
	assert.True(t, store.GetBool("verbose"))
	assert.Equal(t, []string{"space-a", "space-b"}, store.GetStringSlice(KeySpaceFilter))
}

func TestConfigStore_MissingKeys(t *testing.T) {
	store := setupConfigStore(t)

	assert.Equal(t, "", store.GetString("missing"))
	assert.Equal(t, 0, store.GetInt("missing"))
	assert.False(t, store.GetBool("missing"))
	assert.Nil(t, store.GetStringSlice("missing"))

	_, ok := store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set(KeyTenantURL, "https://tenant.example.com"))
	require.NoError(t, store.Set(KeyUserID, "user-1"))
	require.NoError(t, store.Set(KeyWorkers, 3))

	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "https://tenant.example.com", reloaded.GetString(KeyTenantURL))
	assert.Equal(t, "user-1", reloaded.GetString(KeyUserID))
	assert.Equal(t, 3, reloaded.GetInt(KeyWorkers))
}

func TestConfigStore_DottedKeysRoundTripAsTables(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set(KeyDebounceMS, 250))

	// The file uses a nested [query] table, not a literal dotted key.
	content, err := os.ReadFile(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "[query]")
	assert.Contains(t, string(content), "debounce_ms")

	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, 250, reloaded.GetInt(KeyDebounceMS))
}

func TestConfigStore_LoadMissingFileStartsEmpty(t *testing.T) {
	store := setupConfigStore(t)
	require.NoError(t, store.Load())
	_, ok := store.Get(KeyTenantURL)
	assert.False(t, ok)
}

func TestConfigStore_FilePermissions(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set(KeyUserID, "user-1"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}
