// Package minio stores steering-vector sets in MinIO and other S3-compatible
// object storage.
package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/minio/minio-go/v7"

	"github.com/rotalabs/steergo/codec"
	"github.com/rotalabs/steergo/model"
	"github.com/rotalabs/steergo/vector"
	"github.com/rotalabs/steergo/vectorstore"
)

// StoreOptions configures a Store.
type StoreOptions struct {
	// Codec encodes manifests and metadata. Defaults to codec.Default.
	Codec codec.Codec
	// Compression applies to raw float arrays. Defaults to CompressionLZ4;
	// self-hosted storage tends to sit close to the consumer, so decode
	// speed wins over ratio.
	Compression vectorstore.Compression
}

// Store persists vector sets in a MinIO bucket under an optional root prefix.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
	opts   StoreOptions
}

var _ vectorstore.Store = (*Store)(nil)

// NewStore creates a store writing to the given bucket and root prefix
// (e.g. "vectors/").
func NewStore(client *minio.Client, bucket, rootPrefix string, optFns ...func(o *StoreOptions)) *Store {
	opts := StoreOptions{
		Codec:       codec.Default,
		Compression: vectorstore.CompressionLZ4,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Store{client: client, bucket: bucket, prefix: rootPrefix, opts: opts}
}

func (s *Store) key(behavior, name string) string {
	return path.Join(s.prefix, behavior, name)
}

// Save uploads a set's blobs, the manifest last so readers never see a
// manifest pointing at missing layers.
func (s *Store) Save(ctx context.Context, set *vector.Set) error {
	blobs, err := vectorstore.MarshalSet(set, s.opts.Codec, s.opts.Compression)
	if err != nil {
		return err
	}

	manifestData := blobs[vectorstore.ManifestName]
	delete(blobs, vectorstore.ManifestName)

	for name, data := range blobs {
		if err := s.put(ctx, s.key(set.Behavior(), name), data); err != nil {
			return err
		}
	}
	return s.put(ctx, s.key(set.Behavior(), vectorstore.ManifestName), manifestData)
}

func (s *Store) put(ctx context.Context, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}

// Load downloads the set stored for a behavior.
func (s *Store) Load(ctx context.Context, behavior string) (*vector.Set, error) {
	manifestData, err := s.get(ctx, s.key(behavior, vectorstore.ManifestName))
	if err != nil {
		return nil, err
	}
	manifest, err := s.decodeManifest(manifestData)
	if err != nil {
		return nil, err
	}

	return vectorstore.UnmarshalSet(manifest, func(name string) ([]byte, error) {
		return s.get(ctx, s.key(behavior, name))
	})
}

func (s *Store) get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.Code == "NotFound" {
			return nil, fmt.Errorf("%w: %s/%s", model.ErrNotFound, s.bucket, key)
		}
		return nil, err
	}
	return data, nil
}

// List returns the manifests of every set under the root prefix.
func (s *Store) List(ctx context.Context) ([]vectorstore.Manifest, error) {
	var manifests []vectorstore.Manifest

	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		if path.Base(obj.Key) != vectorstore.ManifestName {
			continue
		}
		data, err := s.get(ctx, obj.Key)
		if err != nil {
			return nil, err
		}
		manifest, err := s.decodeManifest(data)
		if err != nil {
			return nil, err
		}
		manifests = append(manifests, manifest)
	}
	sort.Slice(manifests, func(i, j int) bool { return manifests[i].Behavior < manifests[j].Behavior })
	return manifests, nil
}

// Delete removes all objects under a behavior's prefix. Absent sets are a
// no-op.
func (s *Store) Delete(ctx context.Context, behavior string) error {
	prefix := path.Join(s.prefix, behavior)
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return obj.Err
		}
		err := s.client.RemoveObject(ctx, s.bucket, obj.Key, minio.RemoveObjectOptions{})
		if err != nil {
			errResp := minio.ToErrorResponse(err)
			if errResp.Code == "NoSuchKey" || errResp.Code == "NotFound" {
				continue
			}
			return err
		}
	}
	return nil
}

func (s *Store) decodeManifest(data []byte) (vectorstore.Manifest, error) {
	c := s.opts.Codec
	if c == nil {
		c = codec.Default
	}
	var manifest vectorstore.Manifest
	if err := c.Unmarshal(data, &manifest); err != nil {
		return vectorstore.Manifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	return manifest, nil
}
