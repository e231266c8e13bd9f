// Package assets resolves image assets for questions from an in-memory ZIP
// archive. Keys are file basenames; a secondary index without the extension
// lets dataset records reference images either way.
package assets

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
)

// ErrNotFound is returned for keys no archive entry matches. Callers treat
// it as a soft condition, not a load failure.
var ErrNotFound = errors.New("asset not found")

// Resolver hands out image blobs by key and enumerates the key index the
// assembler uses for id-substring cluster matching.
type Resolver interface {
	Resolve(key string) ([]byte, string, error)
	Keys() []string
}

var imageContentTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// Archive is a Resolver over one ZIP archive held in memory. Entries are
// decompressed on demand, not up front.
type Archive struct {
	reader  *zip.Reader
	entries map[string]*zip.File
	keys    []string
}

// OpenArchive indexes the image entries of a ZIP archive. Non-image entries
// and directories are skipped.
func OpenArchive(data []byte) (*Archive, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening image archive: %w", err)
	}

	a := &Archive{reader: r, entries: make(map[string]*zip.File)}
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		base := path.Base(f.Name)
		ext := strings.ToLower(path.Ext(base))
		if _, ok := imageContentTypes[ext]; !ok {
			continue
		}
		if _, dup := a.entries[base]; !dup {
			a.keys = append(a.keys, base)
		}
		a.entries[base] = f
		stem := strings.TrimSuffix(base, path.Ext(base))
		if _, taken := a.entries[stem]; !taken {
			a.entries[stem] = f
		}
	}
	return a, nil
}

// Resolve returns the blob and content type for key, or ErrNotFound.
func (a *Archive) Resolve(key string) ([]byte, string, error) {
	f, ok := a.entries[key]
	if !ok {
		return nil, "", fmt.Errorf("%q: %w", key, ErrNotFound)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, "", fmt.Errorf("opening archive entry %q: %w", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, "", fmt.Errorf("reading archive entry %q: %w", f.Name, err)
	}
	return data, contentTypeFor(f.Name), nil
}

// Keys returns the indexed basenames, one per archive entry.
func (a *Archive) Keys() []string {
	out := make([]string, len(a.keys))
	copy(out, a.keys)
	return out
}

func contentTypeFor(name string) string {
	if ct, ok := imageContentTypes[strings.ToLower(path.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// Store keeps the current archive per dataset id.
type Store struct {
	mu       sync.RWMutex
	archives map[string]*Archive
}

func NewStore() *Store {
	return &Store{archives: make(map[string]*Archive)}
}

func (s *Store) Replace(datasetID string, a *Archive) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.archives[datasetID] = a
}

func (s *Store) Get(datasetID string) (*Archive, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.archives[datasetID]
	return a, ok && a != nil
}
