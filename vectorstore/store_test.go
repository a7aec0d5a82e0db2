package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotalabs/steergo/model"
	"github.com/rotalabs/steergo/testutil"
	"github.com/rotalabs/steergo/vector"
)

func testSet(t *testing.T, behavior string, layers ...int) *vector.Set {
	t.Helper()
	vectors := make([]vector.Vector, 0, len(layers))
	for _, l := range layers {
		v := vector.New(behavior, l, testutil.RandomVector(int64(l), 16), "toy-model")
		v.Metadata["num_pairs"] = 10
		vectors = append(vectors, v)
	}
	set, err := vector.NewSet(behavior, vectors...)
	require.NoError(t, err)
	return set
}

func assertSetsEqual(t *testing.T, want, got *vector.Set) {
	t.Helper()
	assert.Equal(t, want.Behavior(), got.Behavior())
	require.Equal(t, want.Layers(), got.Layers())
	for _, l := range want.Layers() {
		wv, err := want.Lookup(l)
		require.NoError(t, err)
		gv, err := got.Lookup(l)
		require.NoError(t, err)
		assert.Equal(t, wv.Data, gv.Data, "layer %d data", l)
		assert.Equal(t, wv.SourceModel, gv.SourceModel)
		assert.Equal(t, wv.ExtractionMethod, gv.ExtractionMethod)
	}
}

func TestCompressionRoundTrip(t *testing.T) {
	payload := encodeFloats(testutil.RandomVector(42, 1024))

	for _, comp := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(comp.String(), func(t *testing.T) {
			frame, err := compressFrame(payload, comp)
			require.NoError(t, err)

			out, err := decompressFrame(frame, comp)
			require.NoError(t, err)
			assert.Equal(t, payload, out)
		})
	}

	t.Run("truncated frame", func(t *testing.T) {
		_, err := decompressFrame([]byte{1, 2, 3}, CompressionLZ4)
		assert.Error(t, err)
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := ParseCompression("gzip")
		var cfgErr *model.ErrConfiguration
		assert.ErrorAs(t, err, &cfgErr)
	})
}

func TestFloatEncoding(t *testing.T) {
	in := []float32{0, 1, -1.5, 3.14159, -0}
	out := decodeFloats(encodeFloats(in))
	assert.Equal(t, in, out)
}

func TestMarshalSetRoundTrip(t *testing.T) {
	set := testSet(t, "formality", 10, 12, 14)

	blobs, err := MarshalSet(set, nil, CompressionZSTD)
	require.NoError(t, err)
	// manifest + (meta, array) per layer
	assert.Len(t, blobs, 7)

	manifest, err := decodeManifest(blobs[ManifestName])
	require.NoError(t, err)
	assert.Equal(t, "formality", manifest.Behavior)
	assert.Equal(t, "toy-model", manifest.SourceModel)
	assert.Equal(t, []int{10, 12, 14}, manifest.Layers)
	assert.Equal(t, "zstd", manifest.Compression)

	got, err := UnmarshalSet(manifest, func(name string) ([]byte, error) {
		return blobs[name], nil
	})
	require.NoError(t, err)
	assertSetsEqual(t, set, got)
}

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(t.TempDir(), func(o *LocalStoreOptions) {
		o.Compression = CompressionLZ4
	})

	set := testSet(t, "refusal", 14, 16)
	require.NoError(t, store.Save(ctx, set))

	t.Run("load round trips", func(t *testing.T) {
		got, err := store.Load(ctx, "refusal")
		require.NoError(t, err)
		assertSetsEqual(t, set, got)
	})

	t.Run("save replaces", func(t *testing.T) {
		smaller := testSet(t, "refusal", 14)
		require.NoError(t, store.Save(ctx, smaller))

		got, err := store.Load(ctx, "refusal")
		require.NoError(t, err)
		assert.Equal(t, []int{14}, got.Layers())

		require.NoError(t, store.Save(ctx, set))
	})

	t.Run("list", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, testSet(t, "formality", 10)))

		manifests, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, manifests, 2)
		assert.Equal(t, "formality", manifests[0].Behavior)
		assert.Equal(t, "refusal", manifests[1].Behavior)
	})

	t.Run("load missing", func(t *testing.T) {
		_, err := store.Load(ctx, "absent")
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "refusal"))
		_, err := store.Load(ctx, "refusal")
		assert.ErrorIs(t, err, model.ErrNotFound)

		// deleting again is a no-op
		assert.NoError(t, store.Delete(ctx, "refusal"))
	})

	t.Run("empty root lists nothing", func(t *testing.T) {
		empty := NewLocalStore(t.TempDir())
		manifests, err := empty.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, manifests)
	})
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	set := testSet(t, "conciseness", 8, 10)
	require.NoError(t, store.Save(ctx, set))

	got, err := store.Load(ctx, "conciseness")
	require.NoError(t, err)
	assertSetsEqual(t, set, got)

	manifests, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, manifests, 1)
	assert.Equal(t, []int{8, 10}, manifests[0].Layers)

	_, err = store.Load(ctx, "absent")
	assert.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, store.Delete(ctx, "conciseness"))
	_, err = store.Load(ctx, "conciseness")
	assert.ErrorIs(t, err, model.ErrNotFound)
}
