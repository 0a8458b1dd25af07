package huffpack

import (
	"fmt"
	"maps"

	"github.com/seiflotfy/huffpack/coding"
)

// Model is a reusable Huffman tree and codebook.
//
// A model trained on a representative sample can encode any input whose
// symbols all occur in the sample, which avoids rebuilding the tree for
// every message.
type Model struct {
	config   Config
	freq     coding.FrequencyMap
	tree     *coding.Tree
	codebook coding.Codebook
}

// NewModel creates an empty model with the provided options.
func NewModel(opts ...Option) *Model {
	return &Model{config: newConfig(opts)}
}

// TrainModel trains a reusable model from sample bytes.
func TrainModel(sample []byte, opts ...Option) (*Model, error) {
	m := NewModel(opts...)
	if err := m.Train(sample); err != nil {
		return nil, err
	}
	return m, nil
}

// Train builds the tree and codebook from the frequencies of sample.
func (m *Model) Train(sample []byte) error {
	return m.trainFrequencies(countFrequencies(m.config, sample))
}

func (m *Model) trainFrequencies(freq coding.FrequencyMap) error {
	tree, err := coding.BuildTree(freq)
	if err != nil {
		return fmt.Errorf("build tree: %w", err)
	}
	cb, err := coding.AssignCodes(tree)
	if err != nil {
		return fmt.Errorf("assign codes: %w", err)
	}
	m.freq = freq
	m.tree = tree
	m.codebook = cb
	return nil
}

// Encode compresses data using a previously trained model.
func (m *Model) Encode(data []byte) (*Archive, error) {
	if m.tree == nil {
		return nil, ErrUntrainedModel
	}
	return m.encode(data)
}

func (m *Model) encode(data []byte) (*Archive, error) {
	p, err := pack(m.config, data, &m.codebook)
	if err != nil {
		return nil, fmt.Errorf("pack: %w", err)
	}
	return &Archive{
		Codebook: m.codebook,
		Payload:  p,
		freq:     m.freq,
		tree:     m.tree,
	}, nil
}

// Decode reconstructs the bytes of an archive produced by this model.
func (m *Model) Decode(a *Archive) ([]byte, error) {
	if m.tree == nil {
		return nil, ErrUntrainedModel
	}
	return coding.Unpack(a.Payload, m.tree)
}

// Trained reports whether the model is ready for Encode.
func (m *Model) Trained() bool {
	return m.tree != nil
}

// Codebook returns the trained codebook.
func (m *Model) Codebook() coding.Codebook {
	return m.codebook
}

// Frequencies returns the symbol counts the model was trained on, or nil
// before training.
func (m *Model) Frequencies() coding.FrequencyMap {
	return maps.Clone(m.freq)
}

// Tree returns the trained tree, or nil before training.
func (m *Model) Tree() *coding.Tree {
	return m.tree
}
