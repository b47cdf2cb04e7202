// Package lockfile persists hob.lock as TOML.
package lockfile

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	hobfs "go.trai.ch/hob/internal/adapters/fs"
	"go.trai.ch/hob/internal/core/domain"
	"go.trai.ch/hob/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.LockfileStore = (*Store)(nil)

type document struct {
	Packages map[string]string `toml:"packages"`
	Metadata metadata          `toml:"metadata"`
}

type metadata struct {
	Generated     time.Time `toml:"generated"`
	Generator     string    `toml:"generator"`
	GenerationID  string    `toml:"generation_id"`
	RecipesDigest string    `toml:"recipes_digest"`
}

// Store implements ports.LockfileStore.
type Store struct {
	locker    ports.FileLocker
	generator string
	now       func() time.Time
}

// NewStore creates a Store that stamps saved lockfiles with generator.
func NewStore(locker ports.FileLocker, generator string) *Store {
	return &Store{locker: locker, generator: generator, now: time.Now}
}

// Load reads the lockfile at path.
func (s *Store) Load(path string) (*domain.Lockfile, error) {
	//nolint:gosec // path is derived from the configured recipes path
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, zerr.With(zerr.Wrap(domain.ErrLockfileNotFound, "run 'hob lock update' first"), "path", path)
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to read lockfile"), "path", path)
	}

	var doc document
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrLockfileInvalid, err.Error()), "path", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrLockfileInvalid, "unknown key"), "path", path),
			"key", undecoded[0].String())
	}

	lock := domain.NewLockfile()
	for name, version := range doc.Packages {
		lock.Packages[name] = version
	}
	lock.Metadata = domain.LockMetadata{
		Generated:     doc.Metadata.Generated,
		Generator:     doc.Metadata.Generator,
		GenerationID:  doc.Metadata.GenerationID,
		RecipesDigest: doc.Metadata.RecipesDigest,
	}
	return lock, nil
}

// Save fills in the generation metadata and replaces the lockfile atomically
// while holding its advisory lock.
func (s *Store) Save(ctx context.Context, path string, lock *domain.Lockfile) error {
	unlock, err := s.locker.Lock(ctx, path)
	if err != nil {
		return err
	}
	defer func() { _ = unlock() }()

	lock.Metadata = domain.LockMetadata{
		Generated:     s.now().UTC().Truncate(time.Second),
		Generator:     s.generator,
		GenerationID:  uuid.NewString(),
		RecipesDigest: Digest(lock),
	}
	doc := document{
		Packages: lock.Packages,
		Metadata: metadata{
			Generated:     lock.Metadata.Generated,
			Generator:     lock.Metadata.Generator,
			GenerationID:  lock.Metadata.GenerationID,
			RecipesDigest: lock.Metadata.RecipesDigest,
		},
	}
	if doc.Packages == nil {
		doc.Packages = map[string]string{}
	}

	var buf bytes.Buffer
	buf.WriteString("# Generated by hob. Do not edit by hand.\n\n")
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return zerr.Wrap(err, "failed to encode lockfile")
	}
	return hobfs.WriteFileAtomic(path, buf.Bytes())
}

// Digest is an xxh64 digest over the sorted name and version pairs. Two
// lockfiles with the same packages have the same digest.
func Digest(lock *domain.Lockfile) string {
	h := xxhash.New()
	for _, name := range lock.Names() {
		_, _ = h.WriteString(name)
		_, _ = h.WriteString("=")
		_, _ = h.WriteString(lock.Packages[name])
		_, _ = h.WriteString("\n")
	}
	return strconv.FormatUint(h.Sum64(), 16)
}
