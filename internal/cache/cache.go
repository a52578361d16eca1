// Package cache implements the filesystem filing cache. Filings are stored
// in a two-level directory tree:
//
//	{root}/{TICKER}/{FORM_TYPE}/{YYYY-MM-DD}.{txt|md|html}
//
// The path for a given (ticker, form type, date, format) is deterministic,
// so the tree itself is the cache index, with no metadata files.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bxxd/mcp-edgar-ux/pkg/models"
)

// StorageError is a local filesystem failure (permissions, disk full).
// Not retried; surfaced to the caller.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Store is a filesystem-backed filing cache rooted at a single directory.
// Multiple processes may share a root: writes for a given key are idempotent,
// so concurrent duplicate writes are allowed rather than serialized.
type Store struct {
	root string
}

// New creates a Store rooted at dir. The directory is created lazily on
// first write, never here.
func New(dir string) *Store {
	return &Store{root: dir}
}

// Root returns the cache root directory.
func (s *Store) Root() string { return s.root }

// PathFor derives the storage path for a cache key. Pure function, no I/O.
// Ticker and form type are uppercased so every casing of the same key
// resolves to the same path.
func (s *Store) PathFor(ticker, formType, filingDate string, format models.Format) (string, error) {
	ext := format.Ext()
	if ext == "" {
		return "", &models.ErrInvalidFormat{Format: string(format)}
	}
	return filepath.Join(s.root,
		strings.ToUpper(ticker),
		strings.ToUpper(formType),
		filingDate+"."+ext,
	), nil
}

// Exists reports whether an artifact is cached for the given key.
func (s *Store) Exists(ticker, formType, filingDate string, format models.Format) bool {
	path, err := s.PathFor(ticker, formType, filingDate, format)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Save writes filing content as UTF-8 text, creating parent directories as
// needed, and returns the final path. An existing artifact at the same key
// is overwritten silently; callers guard against accidental overwrite.
func (s *Store) Save(ticker, formType, filingDate, content string, format models.Format) (string, error) {
	path, err := s.PathFor(ticker, formType, filingDate, format)
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &StorageError{Op: "mkdir", Path: dir, Err: err}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", &StorageError{Op: "write", Path: path, Err: err}
	}
	return path, nil
}

// Remove deletes the artifact for a cache key, if present. Used by force
// refetch to drop the key binding before re-downloading.
func (s *Store) Remove(ticker, formType, filingDate string, format models.Format) error {
	path, err := s.PathFor(ticker, formType, filingDate, format)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return &StorageError{Op: "remove", Path: path, Err: err}
	}
	return nil
}

// ListAll walks the cache tree and returns every cached filing, optionally
// filtered by ticker and/or form type (case-insensitive), sorted by filing
// date descending. A missing cache root is not an error; it returns an
// empty list. Files with unrecognized extensions and stray non-directory
// entries are ignored.
func (s *Store) ListAll(ticker, formType string) ([]models.CachedFiling, error) {
	tickerDirs, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &StorageError{Op: "list", Path: s.root, Err: err}
	}

	var filings []models.CachedFiling
	for _, td := range tickerDirs {
		if !td.IsDir() {
			continue
		}
		if ticker != "" && !strings.EqualFold(td.Name(), ticker) {
			continue
		}

		tickerPath := filepath.Join(s.root, td.Name())
		formDirs, err := os.ReadDir(tickerPath)
		if err != nil {
			continue
		}
		for _, fd := range formDirs {
			if !fd.IsDir() {
				continue
			}
			if formType != "" && !strings.EqualFold(fd.Name(), formType) {
				continue
			}

			formPath := filepath.Join(tickerPath, fd.Name())
			files, err := os.ReadDir(formPath)
			if err != nil {
				continue
			}
			for _, f := range files {
				if f.IsDir() {
					continue
				}
				ext := strings.TrimPrefix(filepath.Ext(f.Name()), ".")
				format, ok := models.FormatForExt(ext)
				if !ok {
					continue
				}
				info, err := f.Info()
				if err != nil {
					continue
				}
				date := strings.TrimSuffix(f.Name(), filepath.Ext(f.Name()))
				filings = append(filings, models.CachedFiling{
					Ticker:     td.Name(),
					FormType:   fd.Name(),
					FilingDate: date,
					Path:       filepath.Join(formPath, f.Name()),
					SizeBytes:  info.Size(),
					Format:     format,
				})
			}
		}
	}

	// ISO dates sort lexicographically in chronological order.
	sort.Slice(filings, func(i, j int) bool {
		return filings[i].FilingDate > filings[j].FilingDate
	})
	return filings, nil
}

// DiskUsage returns the total size in bytes of all files under the cache
// root, or 0 when the root does not exist.
func (s *Store) DiskUsage() int64 {
	var total int64
	filepath.WalkDir(s.root, func(path string, d os.DirEntry, err error) error { //nolint:errcheck
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	return total
}
