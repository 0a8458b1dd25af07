// Package service holds the huffd compression use cases.
package service

import (
	"errors"
	"fmt"

	"github.com/op/go-logging"

	"github.com/seiflotfy/huffpack"
)

var log = logging.MustGetLogger("huffd/service")

// ErrInvalidContainer indicates a request body that is not a valid archive.
var ErrInvalidContainer = errors.New("invalid container")

// CodeEntry describes one codebook entry. Symbol is numeric so any byte,
// including spaces and newlines, is unambiguous.
type CodeEntry struct {
	Symbol int    `json:"symbol"`
	Count  uint64 `json:"count"`
	Code   string `json:"code"`
}

// CodebookReport summarises the code derived for an input.
type CodebookReport struct {
	InputBytes int         `json:"input_bytes"`
	BitLength  uint64      `json:"bit_length"`
	Entries    []CodeEntry `json:"entries"`
}

type CompressionService struct {
	enc *huffpack.Encoder
}

func NewCompressionService(enc *huffpack.Encoder) *CompressionService {
	return &CompressionService{enc: enc}
}

// Compress encodes data and returns the serialized archive.
func (s *CompressionService) Compress(data []byte) ([]byte, error) {
	a, err := s.enc.Encode(data)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	out, err := a.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	log.Infof("compressed %d bytes to %d bytes", len(data), len(out))
	return out, nil
}

// Decompress parses a serialized archive and returns the original bytes.
func (s *CompressionService) Decompress(container []byte) ([]byte, error) {
	var a huffpack.Archive
	if err := a.UnmarshalBinary(container); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContainer, err)
	}
	out, err := a.Decompress()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContainer, err)
	}
	log.Infof("decompressed %d bytes to %d bytes", len(container), len(out))
	return out, nil
}

// Codebook reports the code that Compress would use for data.
func (s *CompressionService) Codebook(data []byte) (*CodebookReport, error) {
	a, err := s.enc.Encode(data)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	counts := a.Frequencies()

	report := &CodebookReport{
		InputBytes: len(data),
		BitLength:  a.Payload.BitLen,
		Entries:    make([]CodeEntry, 0, a.Symbols()),
	}
	for _, sym := range a.Codebook.Symbols() {
		c, _ := a.Codebook.Lookup(sym)
		report.Entries = append(report.Entries, CodeEntry{
			Symbol: int(sym),
			Count:  counts[sym],
			Code:   c.String(),
		})
	}
	return report, nil
}
