// Package cas implements the content addressable download cache. Blobs are
// stored under their sha256 and a JSON index maps URLs to blobs.
package cas

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	hobfs "go.trai.ch/hob/internal/adapters/fs"
	"go.trai.ch/hob/internal/core/domain"
	"go.trai.ch/hob/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.DownloadCache = (*Store)(nil)

const (
	indexName = "index.json"
	blobsDir  = "blobs"
)

// Store implements ports.DownloadCache in a directory.
type Store struct {
	dir    string
	hasher ports.Hasher
	locker ports.FileLocker
	now    func() time.Time

	mu    sync.RWMutex
	cache map[string]domain.CachedDownload
}

// NewStore creates a download cache rooted at dir. The index is read once;
// a missing index is an empty cache.
func NewStore(dir string, hasher ports.Hasher, locker ports.FileLocker) (*Store, error) {
	s := &Store{
		dir:    filepath.Clean(dir),
		hasher: hasher,
		locker: locker,
		now:    time.Now,
		cache:  make(map[string]domain.CachedDownload),
	}
	cache, err := s.read()
	if err != nil {
		return nil, err
	}
	s.cache = cache
	return s, nil
}

func (s *Store) indexPath() string {
	return filepath.Join(s.dir, indexName)
}

func (s *Store) blobPath(sum string) string {
	return filepath.Join(s.dir, blobsDir, sum[:2], sum)
}

func (s *Store) read() (map[string]domain.CachedDownload, error) {
	cache := make(map[string]domain.CachedDownload)

	data, err := os.ReadFile(s.indexPath()) //nolint:gosec // index lives in the cache directory
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cache, nil
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to read download index"), "path", s.indexPath())
	}
	if len(data) == 0 {
		return cache, nil
	}
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to unmarshal download index"), "path", s.indexPath())
	}
	return cache, nil
}

// Lookup returns the blob cached for url. Entries whose blob went missing
// are misses.
func (s *Store) Lookup(url string) (string, bool) {
	s.mu.RLock()
	entry, ok := s.cache[url]
	s.mu.RUnlock()
	if !ok || len(entry.SHA256) < 2 {
		return "", false
	}

	blob := s.blobPath(entry.SHA256)
	info, err := os.Stat(blob)
	if err != nil || !info.Mode().IsRegular() || info.Size() != entry.Size {
		return "", false
	}
	return blob, true
}

// Store copies path into the cache and records it under url. The index is
// merged with what other processes wrote while holding the index lock.
func (s *Store) Store(ctx context.Context, url, path string) error {
	hash, err := s.hasher.HashFile(path)
	if err != nil {
		return err
	}
	blob := s.blobPath(hash.SHA256)
	if _, err := os.Stat(blob); err != nil {
		if err := hobfs.CopyFile(path, blob, domain.FilePerm); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to cache download"), "url", url)
		}
	}

	if err := os.MkdirAll(s.dir, domain.PrivateDirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create download cache"), "path", s.dir)
	}
	unlock, err := s.locker.Lock(ctx, s.indexPath())
	if err != nil {
		return err
	}
	defer func() { _ = unlock() }()

	s.mu.Lock()
	defer s.mu.Unlock()

	cache, err := s.read()
	if err != nil {
		return err
	}
	cache[url] = domain.CachedDownload{
		URL:     url,
		SHA256:  hash.SHA256,
		Size:    hash.Size,
		Fetched: s.now().UTC().Truncate(time.Second),
	}

	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal download index")
	}
	if err := hobfs.WriteFileAtomic(s.indexPath(), data); err != nil {
		return err
	}
	s.cache = cache
	return nil
}
