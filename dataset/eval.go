package dataset

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotalabs/steergo/codec"
	"github.com/rotalabs/steergo/model"
)

// Example is one evaluation prompt: the text to generate from and whether
// the target behavior is expected to trigger on it.
type Example struct {
	Prompt           string         `json:"prompt"`
	ExpectedBehavior bool           `json:"expected_behavior"`
	Category         string         `json:"category,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
}

// EvalDataset is a collection of evaluation examples for one behavior.
// It satisfies eval.PromptSource.
type EvalDataset struct {
	behavior    string
	description string
	examples    []Example
}

// NewEval creates an empty evaluation dataset.
func NewEval(behavior, description string) *EvalDataset {
	return &EvalDataset{behavior: behavior, description: description}
}

// Behavior returns the behavior under evaluation.
func (d *EvalDataset) Behavior() string { return d.behavior }

// Add appends an example.
func (d *EvalDataset) Add(e Example) error {
	if e.Prompt == "" {
		return model.Configf("evaluation example needs a prompt")
	}
	d.examples = append(d.examples, e)
	return nil
}

// Len returns the number of examples.
func (d *EvalDataset) Len() int { return len(d.examples) }

// Example returns the i-th prompt and expectation, implementing
// eval.PromptSource.
func (d *EvalDataset) Example(i int) (prompt string, expected bool) {
	e := d.examples[i]
	return e.Prompt, e.ExpectedBehavior
}

// Positives returns the examples where the behavior should trigger.
func (d *EvalDataset) Positives() []Example {
	var out []Example
	for _, e := range d.examples {
		if e.ExpectedBehavior {
			out = append(out, e)
		}
	}
	return out
}

// Negatives returns the examples where the behavior should not trigger.
func (d *EvalDataset) Negatives() []Example {
	var out []Example
	for _, e := range d.examples {
		if !e.ExpectedBehavior {
			out = append(out, e)
		}
	}
	return out
}

type evalFile struct {
	Behavior    string    `json:"behavior"`
	Description string    `json:"description,omitempty"`
	Examples    []Example `json:"examples"`
}

// Save writes the dataset as one JSON file, creating parent directories.
func (d *EvalDataset) Save(path string, c codec.Codec) error {
	if c == nil {
		c = codec.Default
	}
	data, err := c.Marshal(evalFile{
		Behavior:    d.behavior,
		Description: d.description,
		Examples:    d.examples,
	})
	if err != nil {
		return fmt.Errorf("encode eval dataset: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadEval reads an evaluation dataset from a JSON file.
func LoadEval(path string, c codec.Codec) (*EvalDataset, error) {
	if c == nil {
		c = codec.Default
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file evalFile
	if err := c.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode eval dataset: %w", err)
	}

	d := NewEval(file.Behavior, file.Description)
	for _, e := range file.Examples {
		if err := d.Add(e); err != nil {
			return nil, err
		}
	}
	return d, nil
}
