package coding

import "errors"

var (
	// ErrEmptyInput indicates there are no symbols to build a tree from.
	ErrEmptyInput = errors.New("coding: empty input")
	// ErrUnknownSymbol indicates a byte with no codebook entry was packed.
	ErrUnknownSymbol = errors.New("coding: unknown symbol")
	// ErrMalformedStream indicates the packed bits do not decode to a clean
	// sequence of leaf-terminated paths.
	ErrMalformedStream = errors.New("coding: malformed stream")
	// ErrCodeTooLong indicates a root-to-leaf path longer than MaxCodeLen bits.
	ErrCodeTooLong = errors.New("coding: code too long")
)
