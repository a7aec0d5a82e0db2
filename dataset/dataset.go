package dataset

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotalabs/steergo/codec"
	"github.com/rotalabs/steergo/model"
)

// ContrastPair is one positive/negative example pair: the positive text
// exhibits the target behavior, the negative text does not.
type ContrastPair struct {
	Positive string         `json:"positive"`
	Negative string         `json:"negative"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Validate rejects pairs with empty texts.
func (p ContrastPair) Validate() error {
	if p.Positive == "" || p.Negative == "" {
		return model.Configf("contrast pair needs both positive and negative texts")
	}
	return nil
}

// Dataset is a collection of contrast pairs for one behavior. It satisfies
// extract.Source.
type Dataset struct {
	behavior    string
	description string
	pairs       []ContrastPair
}

// New creates an empty dataset for a behavior.
func New(behavior, description string) *Dataset {
	return &Dataset{behavior: behavior, description: description}
}

// Behavior returns the behavior the pairs contrast.
func (d *Dataset) Behavior() string { return d.behavior }

// Description returns the dataset's description.
func (d *Dataset) Description() string { return d.description }

// Add appends a validated pair.
func (d *Dataset) Add(p ContrastPair) error {
	if err := p.Validate(); err != nil {
		return err
	}
	d.pairs = append(d.pairs, p)
	return nil
}

// AddPair appends a pair from raw texts.
func (d *Dataset) AddPair(positive, negative string) error {
	return d.Add(ContrastPair{Positive: positive, Negative: negative})
}

// Len returns the number of pairs.
func (d *Dataset) Len() int { return len(d.pairs) }

// Pair returns the i-th texts, implementing extract.Source.
func (d *Dataset) Pair(i int) (positive, negative string) {
	p := d.pairs[i]
	return p.Positive, p.Negative
}

// At returns the i-th full pair.
func (d *Dataset) At(i int) ContrastPair { return d.pairs[i] }

// Subset returns a new dataset holding the pairs at the given indices.
func (d *Dataset) Subset(indices []int) *Dataset {
	out := New(d.behavior, d.description)
	for _, i := range indices {
		out.pairs = append(out.pairs, d.pairs[i])
	}
	return out
}

// datasetFile is the on-disk JSON shape, matching the persistence contract:
// behavior, description and the pair list.
type datasetFile struct {
	Behavior    string         `json:"behavior"`
	Description string         `json:"description,omitempty"`
	Pairs       []ContrastPair `json:"pairs"`
}

// Save writes the dataset as one JSON file, creating parent directories.
func (d *Dataset) Save(path string, c codec.Codec) error {
	if c == nil {
		c = codec.Default
	}
	data, err := c.Marshal(datasetFile{
		Behavior:    d.behavior,
		Description: d.description,
		Pairs:       d.pairs,
	})
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Load reads a dataset from a JSON file, validating every pair.
func Load(path string, c codec.Codec) (*Dataset, error) {
	if c == nil {
		c = codec.Default
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file datasetFile
	if err := c.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}

	d := New(file.Behavior, file.Description)
	for _, p := range file.Pairs {
		if err := d.Add(p); err != nil {
			return nil, err
		}
	}
	return d, nil
}
