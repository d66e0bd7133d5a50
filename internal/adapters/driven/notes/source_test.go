package notes

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/noteseek/internal/core/domain"
)

// setupNotesDir creates a notes directory with a few files.
func setupNotesDir(t *testing.T) (string, *Source) {
	t.Helper()
	dir := t.TempDir()

	write := func(rel, content string) {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	}

	write("inbox.md", "inbox note")
	write("projects/roadmap.md", "roadmap")
	write("scratch.txt", "scratch")
	write("image.png", "not a note")
	write(".hidden.md", "hidden")

	source, err := NewSource(dir)
	require.NoError(t, err)
	return dir, source
}

func TestNewSource_NotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file.md")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0600))

	_, err := NewSource(file)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestList(t *testing.T) {
	_, source := setupNotesDir(t)

	found, err := source.List(context.Background())
	require.NoError(t, err)

	ids := make([]string, len(found))
	for i, n := range found {
		ids[i] = n.ID
	}
	// Sorted, slash-separated, binaries and hidden files excluded.
	assert.Equal(t, []string{"inbox.md", "projects/roadmap.md", "scratch.txt"}, ids)
}

func TestIsNote(t *testing.T) {
	dir, source := setupNotesDir(t)

	assert.True(t, source.IsNote(filepath.Join(dir, "inbox.md")))
	assert.True(t, source.IsNote(filepath.Join(dir, "scratch.txt")))
	assert.False(t, source.IsNote(filepath.Join(dir, "image.png")))
	assert.False(t, source.IsNote(filepath.Join(dir, ".hidden.md")))
	assert.False(t, source.IsNote(filepath.Join(dir, "missing.md")))
	assert.False(t, source.IsNote(dir))
}

func TestIDForPath_RoundTrip(t *testing.T) {
	dir, source := setupNotesDir(t)

	path := filepath.Join(dir, "projects", "roadmap.md")
	id, err := source.IDForPath(path)
	require.NoError(t, err)
	assert.Equal(t, "projects/roadmap.md", id)
	assert.Equal(t, path, source.PathForID(id))
}

func TestIDForPath_OutsideRoot(t *testing.T) {
	_, source := setupNotesDir(t)

	outside := filepath.Join(t.TempDir(), "other.md")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0600))

	_, err := source.IDForPath(outside)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestIDForPath_NotANote(t *testing.T) {
	dir, source := setupNotesDir(t)

	_, err := source.IDForPath(filepath.Join(dir, "image.png"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestRead(t *testing.T) {
	_, source := setupNotesDir(t)
	ctx := context.Background()

	content, err := source.Read(ctx, "inbox.md")
	require.NoError(t, err)
	assert.Equal(t, "inbox note", content)

	_, err = source.Read(ctx, "missing.md")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
