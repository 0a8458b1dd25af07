// Package huffpack compresses byte streams with Huffman coding and stores
// the codebook and packed bits together in a self-describing Archive.
package huffpack

import (
	"errors"
	"runtime"

	"github.com/op/go-logging"

	"github.com/seiflotfy/huffpack/coding"
)

var log = logging.MustGetLogger("huffpack")

const (
	defaultParallelThreshold = 1 << 20 // 1MB
	maxWorkers               = 256
)

// Config holds configuration for the encoder.
type Config struct {
	Workers           int // Goroutines used for counting and packing (0 = GOMAXPROCS)
	ParallelThreshold int // Minimum input size before work is split (0 = 1MB, <0 = never)
	ModelCacheSize    int // Trees remembered by frequency table (0 = no cache)
}

// Option is a functional option for configuring the encoder.
type Option func(*Config)

// WithWorkers sets the number of goroutines used for frequency counting and
// bit packing. Values above 256 are clamped.
func WithWorkers(n int) Option {
	return func(c *Config) {
		c.Workers = n
	}
}

// WithParallelThreshold sets the input size at which work is split across
// workers. A negative value keeps everything on the calling goroutine.
func WithParallelThreshold(n int) Option {
	return func(c *Config) {
		c.ParallelThreshold = n
	}
}

// WithModelCache remembers up to size trees keyed by frequency table so
// inputs with identical histograms skip tree construction.
func WithModelCache(size int) Option {
	return func(c *Config) {
		c.ModelCacheSize = size
	}
}

var (
	// ErrUntrainedModel indicates Encode was called before a model was trained.
	ErrUntrainedModel = errors.New("model is not trained")

	// Errors from the coding engine.
	ErrEmptyInput      = coding.ErrEmptyInput
	ErrUnknownSymbol   = coding.ErrUnknownSymbol
	ErrMalformedStream = coding.ErrMalformedStream
)

func newConfig(opts []Option) Config {
	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// workersFor returns how many goroutines to use for an input of n bytes.
func workersFor(cfg Config, n int) int {
	threshold := cfg.ParallelThreshold
	if threshold == 0 {
		threshold = defaultParallelThreshold
	}
	if threshold < 0 || n < threshold {
		return 1
	}
	w := cfg.Workers
	if w <= 0 {
		w = runtime.GOMAXPROCS(0)
	}
	return min(w, maxWorkers)
}

func countFrequencies(cfg Config, data []byte) coding.FrequencyMap {
	if w := workersFor(cfg, len(data)); w > 1 {
		return coding.CountFrequenciesParallel(data, w)
	}
	return coding.CountFrequencies(data)
}

func pack(cfg Config, data []byte, cb *coding.Codebook) (coding.Payload, error) {
	if w := workersFor(cfg, len(data)); w > 1 {
		return coding.PackParallel(data, cb, w)
	}
	return coding.Pack(data, cb)
}

// Encoder derives a Huffman code from each input and compresses it.
type Encoder struct {
	config Config
	cache  *modelCache
}

// NewEncoder creates a new encoder with the given options.
func NewEncoder(opts ...Option) *Encoder {
	cfg := newConfig(opts)
	e := &Encoder{config: cfg}
	if cfg.ModelCacheSize > 0 {
		e.cache = newModelCache(cfg.ModelCacheSize)
	}
	return e
}

// Encode compresses data with a code derived from its own byte frequencies.
// Empty data yields an empty archive.
func (e *Encoder) Encode(data []byte) (*Archive, error) {
	if len(data) == 0 {
		return &Archive{Payload: coding.Payload{Bytes: []byte{}}}, nil
	}

	freq := countFrequencies(e.config, data)
	m, err := e.model(freq)
	if err != nil {
		return nil, err
	}
	a, err := m.encode(data)
	if err != nil {
		return nil, err
	}
	log.Debugf("encoded %d bytes into %d bits with %d symbols", len(data), a.Payload.BitLen, m.codebook.Len())
	return a, nil
}

func (e *Encoder) model(freq coding.FrequencyMap) (*Model, error) {
	if e.cache != nil {
		if m, ok := e.cache.get(freq); ok {
			log.Debugf("model cache hit for %d symbols", len(freq))
			return m, nil
		}
	}
	m := &Model{config: e.config}
	if err := m.trainFrequencies(freq); err != nil {
		return nil, err
	}
	if e.cache != nil {
		e.cache.add(freq, m)
	}
	return m, nil
}

// Compress is shorthand for NewEncoder(opts...).Encode(data).
func Compress(data []byte, opts ...Option) (*Archive, error) {
	return NewEncoder(opts...).Encode(data)
}

// Decode reconstructs the original bytes from an archive.
func Decode(a *Archive) ([]byte, error) {
	return a.Decompress()
}
