package testutil

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/rotalabs/steergo/model"
)

// ToyModel is a deterministic in-process model for tests. Its module tree
// follows the Llama-style layout ("model.layers.<i>" with "mlp" and
// "self_attn" children) so the default architecture templates resolve
// against it.
//
// On Forward the output function produces a (seq, hidden) activation from
// the input tokens; the activation then flows through each layer in order,
// running attention, MLP and residual hooks per layer. The final value is
// stored in LastOutput for assertions.
type ToyModel struct {
	identity  string
	numLayers int
	hidden    int
	outputFn  func(tokens []int) [][]float32

	root   *model.BaseModule
	layers []*layerModules

	// LastOutput is the activation left after the most recent forward pass,
	// with all hook mutations applied.
	LastOutput *model.Activation
	// ForwardCount counts completed forward passes.
	ForwardCount int
}

type layerModules struct {
	residual *model.BaseModule
	mlp      *model.BaseModule
	attn     *model.BaseModule
}

// NewToyModel builds a toy model whose unhooked activation rows are produced
// by outputFn. Every sequence position gets the row outputFn returns for it;
// the same rows flow through every layer.
func NewToyModel(identity string, numLayers, hidden int, outputFn func(tokens []int) [][]float32) *ToyModel {
	m := &ToyModel{
		identity:  identity,
		numLayers: numLayers,
		hidden:    hidden,
		outputFn:  outputFn,
	}

	m.root = model.NewBaseModule("")
	base := model.NewBaseModule("model")
	list := model.NewBaseModule("layers")
	for i := 0; i < numLayers; i++ {
		layer := model.NewBaseModule(fmt.Sprintf("%d", i))
		mlp := model.NewBaseModule("mlp")
		attn := model.NewBaseModule("self_attn")
		layer.AddChild(attn)
		layer.AddChild(mlp)
		list.AddChild(layer)
		m.layers = append(m.layers, &layerModules{residual: layer, mlp: mlp, attn: attn})
	}
	base.AddChild(list)
	m.root.AddChild(base)
	return m
}

// NewConstantModel builds a toy model whose unhooked output is value at
// every position and hidden index.
func NewConstantModel(identity string, numLayers, hidden int, value float32) *ToyModel {
	return NewToyModel(identity, numLayers, hidden, func(tokens []int) [][]float32 {
		rows := make([][]float32, len(tokens))
		for p := range rows {
			row := make([]float32, hidden)
			for i := range row {
				row[i] = value
			}
			rows[p] = row
		}
		return rows
	})
}

// Identity implements model.Model.
func (m *ToyModel) Identity() string { return m.identity }

// Root implements model.Model.
func (m *ToyModel) Root() model.Module { return m.root }

// HiddenSize implements model.HiddenSizer, enabling structural inference.
func (m *ToyModel) HiddenSize() int { return m.hidden }

// Forward implements model.Model. Hooks fire inline, attention before MLP
// before residual within each layer, layers in order.
func (m *ToyModel) Forward(ctx context.Context, tokens []int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(tokens) == 0 {
		return fmt.Errorf("toy model: empty token sequence")
	}

	act, err := model.ActivationFromRows(m.outputFn(tokens))
	if err != nil {
		return err
	}

	for _, layer := range m.layers {
		if act, err = layer.attn.RunHooks(act); err != nil {
			return err
		}
		if act, err = layer.mlp.RunHooks(act); err != nil {
			return err
		}
		if act, err = layer.residual.RunHooks(act); err != nil {
			return err
		}
	}

	m.LastOutput = act
	m.ForwardCount++
	return nil
}

// LayerModule returns the residual module of a layer, for hook-count checks.
func (m *ToyModel) LayerModule(layer int) *model.BaseModule {
	return m.layers[layer].residual
}

// ByteEncoder tokenizes text into its byte values. Deterministic and
// dependency-free, which is all extraction tests need.
type ByteEncoder struct{}

// Encode implements extract.Encoder.
func (ByteEncoder) Encode(text string) ([]int, error) {
	if text == "" {
		return nil, fmt.Errorf("empty text")
	}
	tokens := make([]int, len(text))
	for i := 0; i < len(text); i++ {
		tokens[i] = int(text[i])
	}
	return tokens, nil
}

// RandomVector returns a deterministic pseudo-random vector for a seed.
func RandomVector(seed int64, dim int) []float32 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float32, dim)
	for i := range out {
		out[i] = rng.Float32()*2 - 1
	}
	return out
}
