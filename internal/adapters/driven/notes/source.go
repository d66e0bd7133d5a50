// Package notes implements the filesystem note source: it enumerates the
// notes directory, decides what counts as a note, and owns the mapping
// between note IDs and paths. A note's ID is its slash-separated path
// relative to the notes root, so IDs stay stable across machines.
package notes

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/noteseek/internal/core/domain"
	"github.com/custodia-labs/noteseek/internal/core/ports/driven"
)

// Ensure Source implements the interface.
var _ driven.NoteSource = (*Source)(nil)

// noteExtensions are the file extensions recognised as notes.
var noteExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".txt":      true,
}

// Source is a filesystem-backed note source rooted at a directory.
type Source struct {
	root string
}

// NewSource creates a note source over the given directory.
// If dir is empty, defaults to ~/notes.
func NewSource(dir string) (*Source, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, "notes")
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving notes directory: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("notes directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, abs)
	}

	return &Source{root: abs}, nil
}

// Root returns the notes directory.
func (s *Source) Root() string {
	return s.root
}

// List enumerates every note under the root, sorted by ID for determinism.
func (s *Source) List(ctx context.Context) ([]domain.Note, error) {
	var found []domain.Note

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			// Skip hidden directories like .git
			if name := d.Name(); name != "." && strings.HasPrefix(name, ".") && path != s.root {
				return filepath.SkipDir
			}
			return nil
		}
		if !s.IsNote(path) {
			return nil
		}

		id, err := s.IDForPath(path)
		if err != nil {
			return nil // Outside the root or hidden; skip
		}
		found = append(found, domain.Note{ID: id, Path: path})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing notes: %w", err)
	}

	sort.Slice(found, func(i, j int) bool { return found[i].ID < found[j].ID })
	return found, nil
}

// IsNote reports whether the path refers to a regular file with a
// recognised note extension. Hidden files are not notes.
func (s *Source) IsNote(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if !noteExtensions[strings.ToLower(filepath.Ext(base))] {
		return false
	}

	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// IDForPath derives the note ID: the slash-separated path relative to the
// notes root.
func (s *Source) IDForPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	rel, err := filepath.Rel(s.root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%w: %s is outside the notes directory", domain.ErrInvalidInput, path)
	}

	ext := strings.ToLower(filepath.Ext(rel))
	if !noteExtensions[ext] {
		return "", fmt.Errorf("%w: %s is not a note", domain.ErrInvalidInput, path)
	}

	return filepath.ToSlash(rel), nil
}

// PathForID resolves a note ID back to its filesystem path.
func (s *Source) PathForID(id string) string {
	return filepath.Join(s.root, filepath.FromSlash(id))
}

// Read returns the note's current content.
func (s *Source) Read(_ context.Context, id string) (string, error) {
	path := s.PathForID(id)
	if !s.IsNote(path) {
		return "", fmt.Errorf("read note %s: %w", id, domain.ErrNotFound)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("read note %s: %w", id, domain.ErrNotFound)
		}
		return "", fmt.Errorf("read note %s: %w", id, err)
	}
	return string(data), nil
}
