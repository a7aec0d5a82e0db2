// Package s3 stores steering-vector sets in Amazon S3, with an optional
// DynamoDB catalog for cross-model discovery.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"golang.org/x/sync/errgroup"

	"github.com/rotalabs/steergo/codec"
	"github.com/rotalabs/steergo/model"
	"github.com/rotalabs/steergo/vector"
	"github.com/rotalabs/steergo/vectorstore"
)

// API is the S3 surface the store needs. *s3.Client satisfies it.
type API interface {
	manager.UploadAPIClient
	awss3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *awss3.GetObjectInput, optFns ...func(*awss3.Options)) (*awss3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *awss3.DeleteObjectInput, optFns ...func(*awss3.Options)) (*awss3.DeleteObjectOutput, error)
}

// StoreOptions configures a Store.
type StoreOptions struct {
	// Codec encodes manifests and metadata. Defaults to codec.Default.
	Codec codec.Codec
	// Compression applies to raw float arrays. Defaults to CompressionZSTD;
	// object storage favors ratio over decode speed.
	Compression vectorstore.Compression
	// Concurrency bounds parallel per-layer uploads and downloads.
	Concurrency int
}

// Store persists vector sets in an S3 bucket under an optional root prefix
// (e.g. "steering/qwen3-8b/").
type Store struct {
	client   API
	uploader *manager.Uploader
	bucket   string
	prefix   string
	opts     StoreOptions
}

var _ vectorstore.Store = (*Store)(nil)

// NewStore creates a store writing to the given bucket and root prefix.
func NewStore(client API, bucket, rootPrefix string, optFns ...func(o *StoreOptions)) *Store {
	opts := StoreOptions{
		Codec:       codec.Default,
		Compression: vectorstore.CompressionZSTD,
		Concurrency: 4,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Store{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		prefix:   rootPrefix,
		opts:     opts,
	}
}

func (s *Store) key(behavior, name string) string {
	return path.Join(s.prefix, behavior, name)
}

// Save uploads a set's blobs in parallel. The manifest goes last so readers
// never see a manifest pointing at missing layers.
func (s *Store) Save(ctx context.Context, set *vector.Set) error {
	blobs, err := vectorstore.MarshalSet(set, s.opts.Codec, s.opts.Compression)
	if err != nil {
		return err
	}

	manifestData := blobs[vectorstore.ManifestName]
	delete(blobs, vectorstore.ManifestName)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for name, data := range blobs {
		name, data := name, data
		g.Go(func() error {
			return s.put(gctx, s.key(set.Behavior(), name), data)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	return s.put(ctx, s.key(set.Behavior(), vectorstore.ManifestName), manifestData)
}

func (s *Store) put(ctx context.Context, key string, data []byte) error {
	_, err := s.uploader.Upload(ctx, &awss3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
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
	resp, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%w: s3://%s/%s", model.ErrNotFound, s.bucket, key)
		}
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// List returns the manifests of every set under the root prefix.
func (s *Store) List(ctx context.Context) ([]Manifest, error) {
	keys, err := s.listKeys(ctx, s.prefix)
	if err != nil {
		return nil, err
	}

	var manifests []Manifest
	for _, key := range keys {
		if path.Base(key) != vectorstore.ManifestName {
			continue
		}
		data, err := s.get(ctx, key)
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

// Delete removes all objects under a behavior's prefix.
func (s *Store) Delete(ctx context.Context, behavior string) error {
	keys, err := s.listKeys(ctx, path.Join(s.prefix, behavior)+"/")
	if err != nil {
		return err
	}
	for _, key := range keys {
		_, err := s.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}
	return nil
}

func (s *Store) listKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string

	paginator := awss3.NewListObjectsV2Paginator(s.client, &awss3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) decodeManifest(data []byte) (Manifest, error) {
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

// Manifest aliases the shared manifest type.
type Manifest = vectorstore.Manifest

// BehaviorFromKey extracts the behavior segment from an object key relative
// to the store's root prefix. Returns "" for keys outside the layout.
func BehaviorFromKey(rootPrefix, key string) string {
	rel := strings.TrimPrefix(key, rootPrefix)
	rel = strings.TrimPrefix(rel, "/")
	behavior, _, ok := strings.Cut(rel, "/")
	if !ok {
		return ""
	}
	return behavior
}
