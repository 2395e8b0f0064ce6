// Package storage manages transient per-operation files
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	downloaderrors "github.com/patt509/YT-Downloader/internal/domain/download/errors"
)

// FileStore hands out uniquely named paths inside one directory
type FileStore struct {
	dir    string
	logger zerolog.Logger
}

// NewFileStore creates the directory if needed
func NewFileStore(dir string, logger zerolog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create temp dir %s: %w", dir, err)
	}

	return &FileStore{
		dir:    dir,
		logger: logger,
	}, nil
}

// Dir returns the managed directory
func (s *FileStore) Dir() string {
	return s.dir
}

// Acquire reserves a fresh path. Nothing is created on disk; whoever writes to
// the path must leave its removal to the returned handle.
func (s *FileStore) Acquire(prefix, ext string) *File {
	name := uuid.NewString() + normalizeExt(ext)
	if prefix = sanitizePrefix(prefix); prefix != "" {
		name = prefix + "-" + name
	}

	return &File{
		path:   filepath.Join(s.dir, name),
		logger: s.logger,
	}
}

// File is a scoped temporary path. Release removes it and may be called any
// number of times from any goroutine.
type File struct {
	mu       sync.Mutex
	path     string
	released bool
	logger   zerolog.Logger
}

// Path returns the current path
func (f *File) Path() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.path
}

// RenameExt renames the file on disk to carry ext and tracks the new path.
// The old name no longer exists once it returns successfully.
func (f *File) RenameExt(ext string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.released {
		return "", downloaderrors.ErrFileStoreReleased
	}

	target := strings.TrimSuffix(f.path, filepath.Ext(f.path)) + normalizeExt(ext)
	if target == f.path {
		return f.path, nil
	}

	if err := os.Rename(f.path, target); err != nil {
		return "", fmt.Errorf("failed to rename %s: %w", filepath.Base(f.path), err)
	}

	f.path = target
	return target, nil
}

// Release removes the file. A missing file is not an error, so a second
// Release after a late writer recreated the path still cleans it up.
func (f *File) Release() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	first := !f.released
	f.released = true

	err := os.Remove(f.path)
	if err == nil {
		f.logger.Debug().Str("path", f.path).Bool("first_release", first).Msg("Temp file removed")
		return nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("failed to remove %s: %w", f.path, err)
}

// Released reports whether Release was called at least once
func (f *File) Released() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.released
}

func normalizeExt(ext string) string {
	if ext == "" || strings.HasPrefix(ext, ".") {
		return ext
	}
	return "." + ext
}

// sanitizePrefix keeps only characters safe in file names
func sanitizePrefix(prefix string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return -1
		}
	}, prefix)
}
