// Package coding implements the Huffman coding engine: frequency analysis,
// tree construction, code assignment and bit-level packing of the encoded
// stream.
package coding

import (
	"sort"
	"sync"
)

// FrequencyMap maps a symbol to the number of times it occurs in the input.
// Symbols that never occur are absent.
type FrequencyMap map[byte]uint64

// Total returns the sum of all counts, which equals the input length.
func (f FrequencyMap) Total() uint64 {
	var n uint64
	for _, c := range f {
		n += c
	}
	return n
}

// Symbols returns the observed symbols in ascending order.
func (f FrequencyMap) Symbols() []byte {
	syms := make([]byte, 0, len(f))
	for s := range f {
		syms = append(syms, s)
	}
	sort.Slice(syms, func(i, j int) bool { return syms[i] < syms[j] })
	return syms
}

// Table returns the counts as a dense 256-entry array.
func (f FrequencyMap) Table() [256]uint64 {
	var t [256]uint64
	for s, c := range f {
		t[s] = c
	}
	return t
}

func fromTable(t *[256]uint64) FrequencyMap {
	f := make(FrequencyMap)
	for s, c := range t {
		if c != 0 {
			f[byte(s)] = c
		}
	}
	return f
}

// CountFrequencies scans data once and counts every byte value.
func CountFrequencies(data []byte) FrequencyMap {
	var t [256]uint64
	for _, b := range data {
		t[b]++
	}
	return fromTable(&t)
}

// CountFrequenciesParallel splits data into at most workers contiguous
// chunks, counts each into a private table and merges the tables once
// every worker has finished. The result is identical to CountFrequencies.
func CountFrequenciesParallel(data []byte, workers int) FrequencyMap {
	chunks := splitRanges(len(data), workers)
	if len(chunks) <= 1 {
		return CountFrequencies(data)
	}

	partial := make([][256]uint64, len(chunks))
	var wg sync.WaitGroup
	wg.Add(len(chunks))
	for i, r := range chunks {
		i, r := i, r
		go func() {
			defer wg.Done()
			t := &partial[i]
			for _, b := range data[r.start:r.end] {
				t[b]++
			}
		}()
	}
	wg.Wait()

	var merged [256]uint64
	for i := range partial {
		for s, c := range partial[i] {
			merged[s] += c
		}
	}
	return fromTable(&merged)
}

type span struct {
	start, end int
}

// splitRanges divides [0, n) into at most parts non-empty contiguous spans.
func splitRanges(n, parts int) []span {
	if n == 0 {
		return nil
	}
	if parts < 1 {
		parts = 1
	}
	if parts > n {
		parts = n
	}
	size := (n + parts - 1) / parts
	spans := make([]span, 0, parts)
	for start := 0; start < n; start += size {
		end := min(start+size, n)
		spans = append(spans, span{start: start, end: end})
	}
	return spans
}
