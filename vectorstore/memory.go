package vectorstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rotalabs/steergo/codec"
	"github.com/rotalabs/steergo/model"
	"github.com/rotalabs/steergo/vector"
)

// MemoryStore keeps vector sets in memory. It runs sets through the same
// blob layout as the other backends, so it doubles as a serialization check
// in tests. Safe for concurrent use.
type MemoryStore struct {
	mu        sync.RWMutex
	behaviors map[string]map[string][]byte
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{behaviors: make(map[string]map[string][]byte)}
}

// Save stores a set, replacing any set held for its behavior.
func (s *MemoryStore) Save(_ context.Context, set *vector.Set) error {
	blobs, err := MarshalSet(set, codec.Default, CompressionNone)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.behaviors[set.Behavior()] = blobs
	return nil
}

// Load returns the set held for a behavior.
func (s *MemoryStore) Load(_ context.Context, behavior string) (*vector.Set, error) {
	s.mu.RLock()
	blobs, ok := s.behaviors[behavior]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: no set for behavior %q", model.ErrNotFound, behavior)
	}

	manifest, err := decodeManifest(blobs[ManifestName])
	if err != nil {
		return nil, err
	}
	return UnmarshalSet(manifest, func(name string) ([]byte, error) {
		data, ok := blobs[name]
		if !ok {
			return nil, fmt.Errorf("%w: blob %q", model.ErrNotFound, name)
		}
		return data, nil
	})
}

// List returns the manifests of all held sets, sorted by behavior.
func (s *MemoryStore) List(_ context.Context) ([]Manifest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	manifests := make([]Manifest, 0, len(s.behaviors))
	for _, blobs := range s.behaviors {
		manifest, err := decodeManifest(blobs[ManifestName])
		if err != nil {
			return nil, err
		}
		manifests = append(manifests, manifest)
	}
	sort.Slice(manifests, func(i, j int) bool { return manifests[i].Behavior < manifests[j].Behavior })
	return manifests, nil
}

// Delete drops a behavior's set.
func (s *MemoryStore) Delete(_ context.Context, behavior string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.behaviors, behavior)
	return nil
}

func decodeManifest(data []byte) (Manifest, error) {
	var manifest Manifest
	if err := codec.Default.Unmarshal(data, &manifest); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	return manifest, nil
}
