package vectorstore

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/rotalabs/steergo/codec"
	"github.com/rotalabs/steergo/model"
	"github.com/rotalabs/steergo/vector"
)

// Store persists steering-vector sets. A set is stored as one manifest plus
// one metadata record and one raw float32 array per layer, keyed under the
// set's behavior.
type Store interface {
	// Save writes a whole set, replacing any set stored for its behavior.
	Save(ctx context.Context, set *vector.Set) error
	// Load reads the set stored for a behavior. Returns model.ErrNotFound
	// when no set exists.
	Load(ctx context.Context, behavior string) (*vector.Set, error)
	// List returns the manifests of every stored set.
	List(ctx context.Context) ([]Manifest, error)
	// Delete removes a behavior's set. Deleting an absent set is a no-op.
	Delete(ctx context.Context, behavior string) error
}

// Manifest describes one persisted vector set.
type Manifest struct {
	Behavior    string `json:"behavior"`
	SourceModel string `json:"source_model,omitempty"`
	Layers      []int  `json:"layers"`
	Codec       string `json:"codec"`
	Compression string `json:"compression"`
}

// VectorMeta is the per-vector metadata record, stored beside the raw array
// so provenance stays inspectable without decoding floats.
type VectorMeta struct {
	Behavior         string         `json:"behavior"`
	LayerIndex       int            `json:"layer_index"`
	SourceModel      string         `json:"source_model,omitempty"`
	ExtractionMethod string         `json:"extraction_method,omitempty"`
	Dim              int            `json:"dim"`
	Metadata         map[string]any `json:"metadata,omitempty"`
}

// ManifestName is the blob name of a set's manifest within its prefix.
const ManifestName = "manifest.json"

func metaName(layer int) string  { return fmt.Sprintf("layer_%d.json", layer) }
func arrayName(layer int) string { return fmt.Sprintf("layer_%d.f32", layer) }

// MarshalSet renders a set into its named blobs. All backends share this
// layout so sets move freely between local, memory and object storage.
func MarshalSet(set *vector.Set, c codec.Codec, comp Compression) (map[string][]byte, error) {
	if c == nil {
		c = codec.Default
	}

	blobs := make(map[string][]byte, 2*set.Len()+1)
	for _, v := range set.Vectors() {
		meta := VectorMeta{
			Behavior:         v.Behavior,
			LayerIndex:       v.LayerIndex,
			SourceModel:      v.SourceModel,
			ExtractionMethod: v.ExtractionMethod,
			Dim:              v.Dim(),
			Metadata:         v.Metadata,
		}
		metaBytes, err := c.Marshal(meta)
		if err != nil {
			return nil, fmt.Errorf("encode vector meta layer %d: %w", v.LayerIndex, err)
		}
		arrayBytes, err := compressFrame(encodeFloats(v.Data), comp)
		if err != nil {
			return nil, fmt.Errorf("compress vector layer %d: %w", v.LayerIndex, err)
		}
		blobs[metaName(v.LayerIndex)] = metaBytes
		blobs[arrayName(v.LayerIndex)] = arrayBytes
	}

	manifest := Manifest{
		Behavior:    set.Behavior(),
		SourceModel: set.SourceModel(),
		Layers:      set.Layers(),
		Codec:       c.Name(),
		Compression: comp.String(),
	}
	manifestBytes, err := c.Marshal(manifest)
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	blobs[ManifestName] = manifestBytes

	return blobs, nil
}

// UnmarshalSet rebuilds a set from its manifest and a blob reader. The
// manifest is self-describing: it names the codec and compression its blobs
// were written with.
func UnmarshalSet(manifest Manifest, read func(name string) ([]byte, error)) (*vector.Set, error) {
	c, ok := codec.ByName(manifest.Codec)
	if !ok {
		return nil, model.Configf("unknown codec in manifest: %q", manifest.Codec)
	}
	comp, err := ParseCompression(manifest.Compression)
	if err != nil {
		return nil, err
	}

	set, err := vector.NewSet(manifest.Behavior)
	if err != nil {
		return nil, err
	}

	for _, layer := range manifest.Layers {
		metaBytes, err := read(metaName(layer))
		if err != nil {
			return nil, fmt.Errorf("read vector meta layer %d: %w", layer, err)
		}
		var meta VectorMeta
		if err := c.Unmarshal(metaBytes, &meta); err != nil {
			return nil, fmt.Errorf("decode vector meta layer %d: %w", layer, err)
		}

		arrayBytes, err := read(arrayName(layer))
		if err != nil {
			return nil, fmt.Errorf("read vector array layer %d: %w", layer, err)
		}
		raw, err := decompressFrame(arrayBytes, comp)
		if err != nil {
			return nil, fmt.Errorf("decompress vector layer %d: %w", layer, err)
		}
		data := decodeFloats(raw)
		if meta.Dim != 0 && meta.Dim != len(data) {
			return nil, &model.ErrDimensionMismatch{Expected: meta.Dim, Actual: len(data)}
		}

		v := vector.Vector{
			Behavior:         meta.Behavior,
			LayerIndex:       meta.LayerIndex,
			Data:             data,
			SourceModel:      meta.SourceModel,
			ExtractionMethod: meta.ExtractionMethod,
			Metadata:         meta.Metadata,
		}
		if err := set.Add(v); err != nil {
			return nil, err
		}
	}
	return set, nil
}

// encodeFloats writes float32 values little-endian.
func encodeFloats(data []float32) []byte {
	out := make([]byte, 4*len(data))
	for i, f := range data {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(f))
	}
	return out
}

// decodeFloats reads little-endian float32 values.
func decodeFloats(raw []byte) []float32 {
	out := make([]float32, len(raw)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	return out
}
