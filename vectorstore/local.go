package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/rotalabs/steergo/codec"
	"github.com/rotalabs/steergo/model"
	"github.com/rotalabs/steergo/vector"
)

// LocalStoreOptions configures a LocalStore.
type LocalStoreOptions struct {
	// Codec encodes manifests and metadata. Defaults to codec.Default.
	Codec codec.Codec
	// Compression applies to raw float arrays. Defaults to CompressionNone.
	Compression Compression
}

// LocalStore persists vector sets on the local file system, one directory
// per behavior under the root.
type LocalStore struct {
	root string
	opts LocalStoreOptions
}

var _ Store = (*LocalStore)(nil)

// NewLocalStore creates a store rooted at the given directory.
func NewLocalStore(root string, optFns ...func(o *LocalStoreOptions)) *LocalStore {
	opts := LocalStoreOptions{
		Codec:       codec.Default,
		Compression: CompressionNone,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &LocalStore{root: root, opts: opts}
}

// Save writes a set under <root>/<behavior>/, replacing any existing set.
func (s *LocalStore) Save(ctx context.Context, set *vector.Set) error {
	blobs, err := MarshalSet(set, s.opts.Codec, s.opts.Compression)
	if err != nil {
		return err
	}

	dir := filepath.Join(s.root, set.Behavior())
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for name, data := range blobs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}

// Load reads the set stored for a behavior.
func (s *LocalStore) Load(ctx context.Context, behavior string) (*vector.Set, error) {
	dir := filepath.Join(s.root, behavior)
	manifest, err := s.readManifest(dir)
	if err != nil {
		return nil, err
	}
	return UnmarshalSet(manifest, func(name string) ([]byte, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return os.ReadFile(filepath.Join(dir, name))
	})
}

// List returns the manifests of every stored set, sorted by behavior.
func (s *LocalStore) List(ctx context.Context) ([]Manifest, error) {
	entries, err := os.ReadDir(s.root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var manifests []Manifest
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		manifest, err := s.readManifest(filepath.Join(s.root, entry.Name()))
		if errors.Is(err, model.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		manifests = append(manifests, manifest)
	}
	sort.Slice(manifests, func(i, j int) bool { return manifests[i].Behavior < manifests[j].Behavior })
	return manifests, nil
}

// Delete removes a behavior's set. Absent sets are a no-op.
func (s *LocalStore) Delete(_ context.Context, behavior string) error {
	return os.RemoveAll(filepath.Join(s.root, behavior))
}

func (s *LocalStore) readManifest(dir string) (Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if errors.Is(err, fs.ErrNotExist) {
		return Manifest{}, fmt.Errorf("%w: no manifest in %s", model.ErrNotFound, dir)
	}
	if err != nil {
		return Manifest{}, err
	}

	c := s.opts.Codec
	if c == nil {
		c = codec.Default
	}
	var manifest Manifest
	if err := c.Unmarshal(data, &manifest); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	return manifest, nil
}
