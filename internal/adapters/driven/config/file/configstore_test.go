package file

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/noteseek/internal/core/domain"
)

func setupStore(t *testing.T) *ConfigStore {
	t.Helper()
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store := setupStore(t)

	require.NoError(t, store.Set("test_key", "test_value"))

	val, ok := store.Get("test_key")
	assert.True(t, ok)
	assert.Equal(t, "test_value", val)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := setupStore(t)

	require.NoError(t, store.Set("s", "hello"))
	require.NoError(t, store.Set("i", 42))
	require.NoError(t, store.Set("f", 1.5))
	require.NoError(t, store.Set("b", true))

	assert.Equal(t, "hello", store.GetString("s"))
	assert.Equal(t, 42, store.GetInt("i"))
	assert.Equal(t, 1.5, store.GetFloat("f"))
	assert.True(t, store.GetBool("b"))

	// Missing keys fall back to zero values.
	assert.Equal(t, "", store.GetString("missing"))
	assert.Equal(t, 0, store.GetInt("missing"))
	assert.Equal(t, 0.0, store.GetFloat("missing"))
	assert.False(t, store.GetBool("missing"))

	// Wrong types fall back too.
	assert.Equal(t, "", store.GetString("i"))
	assert.Equal(t, 0, store.GetInt("s"))

	// Integers read back as floats.
	assert.Equal(t, 42.0, store.GetFloat("i"))
}

func TestConfigStore_PersistsAcrossReopen(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, store.Set(KeyProvider, "openai"))
	require.NoError(t, store.Set(KeyDimensions, 1536))

	reopened, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "openai", reopened.GetString(KeyProvider))
	assert.Equal(t, 1536, reopened.GetInt(KeyDimensions))
}

func TestConfigStore_FlattensNestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	content := "[embedding]\nprovider = \"ollama\"\nmodel = \"all-minilm\"\ndimensions = 384\n"
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "ollama", store.GetString(KeyProvider))
	assert.Equal(t, "all-minilm", store.GetString(KeyModel))
	assert.Equal(t, 384, store.GetInt(KeyDimensions))
}

func TestSettingsFrom_Defaults(t *testing.T) {
	store := setupStore(t)

	settings := SettingsFrom(store)

	assert.Equal(t, DefaultProvider, settings.Provider)
	assert.Equal(t, DefaultModel, settings.Model)
	assert.Equal(t, DefaultDimensions, settings.Dimensions)
	assert.Equal(t, DefaultAPIKeyEnv, settings.APIKeyEnv)
	assert.Empty(t, settings.NotesDir)
	assert.Zero(t, settings.EmbedRPS)
	require.NoError(t, settings.Validate())
}

func TestSettingsFrom_Configured(t *testing.T) {
	store := setupStore(t)
	require.NoError(t, store.Set(KeyNotesDir, "/srv/notes"))
	require.NoError(t, store.Set(KeyProvider, "openai"))
	require.NoError(t, store.Set(KeyModel, "text-embedding-3-small"))
	require.NoError(t, store.Set(KeyDimensions, 1536))
	require.NoError(t, store.Set(KeyEmbedRPS, 2.5))
	require.NoError(t, store.Set(KeyEmbedWorkers, 8))

	settings := SettingsFrom(store)

	assert.Equal(t, "/srv/notes", settings.NotesDir)
	assert.Equal(t, "openai", settings.Provider)
	assert.Equal(t, "text-embedding-3-small", settings.Model)
	assert.Equal(t, 1536, settings.Dimensions)
	assert.Equal(t, 2.5, settings.EmbedRPS)
	assert.Equal(t, 8, settings.Workers)
	require.NoError(t, settings.Validate())
}

func TestSettings_ValidateRejectsUnknownProvider(t *testing.T) {
	settings := Settings{Provider: "carrier-pigeon"}

	err := settings.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}
