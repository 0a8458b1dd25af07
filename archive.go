package huffpack

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"maps"

	"github.com/seiflotfy/huffpack/coding"
)

const (
	archiveMagic   = "HUFP"
	archiveVersion = uint16(1)

	stageCodebook = "codebook"
	stagePayload  = "payload"

	stagePayloadParamRaw = uint8(1) // bitLen uint64 followed by packed bytes

	maxArchiveStages     = 16
	maxStagePayloadBytes = 1 << 30 // 1 GiB
	codebookEntryMaxSize = 2 + coding.MaxCodeLen/8
)

// Wire format (version 1):
//
//	magic[4] = "HUFP"
//	version  = uint16 little-endian
//	stageCnt = uint16 little-endian
//	repeat stageCnt times:
//	  nameLen  = uint8
//	  paramLen = uint16 little-endian
//	  dataLen  = uint32 little-endian
//	  name     = nameLen bytes
//	  params   = paramLen bytes
//	  payload  = dataLen bytes
//
// Stage "codebook":
//
//	count = uint16 little-endian (0..256)
//	repeat count times, ascending symbol order:
//	  symbol = uint8
//	  length = uint8 (1..64)
//	  code   = ceil(length/8) bytes, big-endian, right-aligned
//
// Stage "payload" (param 1):
//
//	bitLen = uint64 little-endian
//	packed = ceil(bitLen/8) bytes, first bit in the MSB of the first byte
//
// Unknown stages are skipped via dataLen framing.
type stageHeader struct {
	name     string
	paramLen uint16
	dataLen  uint32
}

// countingWriter tracks bytes written and the first error.
type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (cw *countingWriter) write(b []byte) {
	if cw.err != nil {
		return
	}
	n, err := cw.w.Write(b)
	cw.n += int64(n)
	if err == nil && n != len(b) {
		err = io.ErrShortWrite
	}
	cw.err = err
}

func (cw *countingWriter) writeLE(v any) {
	if cw.err != nil {
		return
	}
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
		cw.err = err
		return
	}
	cw.write(buf.Bytes())
}

func (cw *countingWriter) stage(name string, params, payload []byte) {
	if len(name) == 0 || len(name) > 255 {
		cw.err = fmt.Errorf("invalid stage name length: %d", len(name))
		return
	}
	if len(params) > int(^uint16(0)) {
		cw.err = fmt.Errorf("stage params too large for %q: %d", name, len(params))
		return
	}
	if len(payload) > maxStagePayloadBytes {
		cw.err = fmt.Errorf("stage payload too large for %q: %d", name, len(payload))
		return
	}
	cw.writeLE(uint8(len(name)))
	cw.writeLE(uint16(len(params)))
	cw.writeLE(uint32(len(payload)))
	cw.write([]byte(name))
	cw.write(params)
	cw.write(payload)
}

func readStageHeader(r io.Reader) (stageHeader, int64, error) {
	var fixed [7]byte
	n, err := io.ReadFull(r, fixed[:])
	total := int64(n)
	if err != nil {
		return stageHeader{}, total, err
	}
	nameLen := fixed[0]
	if nameLen == 0 {
		return stageHeader{}, total, fmt.Errorf("stage name length must be > 0")
	}
	paramLen := binary.LittleEndian.Uint16(fixed[1:3])
	dataLen := binary.LittleEndian.Uint32(fixed[3:7])
	if dataLen > maxStagePayloadBytes {
		return stageHeader{}, total, fmt.Errorf("stage payload too large: %d", dataLen)
	}

	name := make([]byte, nameLen)
	n, err = io.ReadFull(r, name)
	total += int64(n)
	if err != nil {
		return stageHeader{}, total, err
	}
	return stageHeader{name: string(name), paramLen: paramLen, dataLen: dataLen}, total, nil
}

// Archive holds a codebook and the payload packed with it.
type Archive struct {
	Codebook coding.Codebook
	Payload  coding.Payload

	// freq and tree are kept when the archive was encoded in-process.
	freq coding.FrequencyMap
	tree *coding.Tree
}

// Symbols returns the number of distinct symbols in the codebook.
func (a *Archive) Symbols() int {
	return a.Codebook.Len()
}

// Empty reports whether the archive encodes no bytes.
func (a *Archive) Empty() bool {
	return a.Payload.BitLen == 0
}

// Frequencies returns the symbol counts the codebook was derived from. It
// is nil for an archive read from bytes, since the container does not
// store counts.
func (a *Archive) Frequencies() coding.FrequencyMap {
	return maps.Clone(a.freq)
}

// Decompress reconstructs the original bytes.
func (a *Archive) Decompress() ([]byte, error) {
	return a.AppendAll(nil)
}

// AppendAll appends the decoded bytes to dst.
func (a *Archive) AppendAll(dst []byte) ([]byte, error) {
	var out []byte
	var err error
	if a.tree != nil {
		out, err = coding.Unpack(a.Payload, a.tree)
	} else {
		out, err = coding.UnpackCodebook(a.Payload, &a.Codebook)
	}
	if err != nil {
		return dst, err
	}
	return append(dst, out...), nil
}

// SpaceUsed returns the serialized size of the archive in bytes.
func (a *Archive) SpaceUsed() int {
	header := len(archiveMagic) + 2 + 2
	stage := func(name string, params, data int) int {
		return 1 + 2 + 4 + len(name) + params + data
	}
	cbSize := 2
	for _, s := range a.Codebook.Symbols() {
		c, _ := a.Codebook.Lookup(s)
		cbSize += 2 + codeBytes(c.Len)
	}
	return header +
		stage(stageCodebook, 0, cbSize) +
		stage(stagePayload, 1, 8+len(a.Payload.Bytes))
}

func codeBytes(length uint8) int {
	return (int(length) + 7) / 8
}

func encodeCodebookStage(cb *coding.Codebook) []byte {
	syms := cb.Symbols()
	out := make([]byte, 2, 2+len(syms)*codebookEntryMaxSize)
	binary.LittleEndian.PutUint16(out, uint16(len(syms)))
	for _, s := range syms {
		c, _ := cb.Lookup(s)
		out = append(out, s, c.Len)
		var code [8]byte
		binary.BigEndian.PutUint64(code[:], c.Bits)
		out = append(out, code[8-codeBytes(c.Len):]...)
	}
	return out
}

func decodeCodebookStage(dst *Archive, params, payload []byte) error {
	if len(params) != 0 {
		return fmt.Errorf("unexpected codebook params: %d bytes", len(params))
	}
	if len(payload) < 2 {
		return fmt.Errorf("codebook stage too short: %d bytes", len(payload))
	}
	count := int(binary.LittleEndian.Uint16(payload))
	if count > 256 {
		return fmt.Errorf("codebook entry count out of range: %d", count)
	}

	var cb coding.Codebook
	pos := 2
	for i := 0; i < count; i++ {
		if pos+2 > len(payload) {
			return fmt.Errorf("truncated codebook entry %d", i)
		}
		sym, length := payload[pos], payload[pos+1]
		pos += 2
		if length == 0 || length > coding.MaxCodeLen {
			return fmt.Errorf("invalid code length %d for symbol %#02x", length, sym)
		}
		nb := codeBytes(length)
		if pos+nb > len(payload) {
			return fmt.Errorf("truncated code for symbol %#02x", sym)
		}
		var bits uint64
		for _, b := range payload[pos : pos+nb] {
			bits = bits<<8 | uint64(b)
		}
		pos += nb
		if _, dup := cb.Lookup(sym); dup {
			return fmt.Errorf("duplicate codebook symbol %#02x", sym)
		}
		if err := cb.Set(sym, coding.Code{Bits: bits, Len: length}); err != nil {
			return err
		}
	}
	if pos != len(payload) {
		return fmt.Errorf("codebook stage has %d trailing bytes", len(payload)-pos)
	}
	dst.Codebook = cb
	return nil
}

func encodePayloadStage(p coding.Payload) []byte {
	out := make([]byte, 8, 8+len(p.Bytes))
	binary.LittleEndian.PutUint64(out, p.BitLen)
	return append(out, p.Bytes...)
}

func decodePayloadStage(dst *Archive, params, payload []byte) error {
	if len(params) != 1 || params[0] != stagePayloadParamRaw {
		return fmt.Errorf("unsupported payload params: %v", params)
	}
	if len(payload) < 8 {
		return fmt.Errorf("payload stage too short: %d bytes", len(payload))
	}
	dst.Payload = coding.Payload{
		BitLen: binary.LittleEndian.Uint64(payload),
		Bytes:  payload[8:],
	}
	return nil
}

func validateArchiveStructure(a *Archive) error {
	if err := a.Payload.Validate(); err != nil {
		return err
	}
	if a.Payload.BitLen > 0 && a.Codebook.Len() == 0 {
		return fmt.Errorf("payload of %d bits with empty codebook", a.Payload.BitLen)
	}
	if _, err := coding.NewMatcher(&a.Codebook); err != nil {
		return fmt.Errorf("codebook: %w", err)
	}
	return nil
}

// WriteTo serializes the Archive to an io.Writer.
func (a *Archive) WriteTo(w io.Writer) (int64, error) {
	if err := validateArchiveStructure(a); err != nil {
		return 0, fmt.Errorf("invalid archive: %w", err)
	}

	stages := []struct {
		name    string
		params  []byte
		payload []byte
	}{
		{
			name:    stageCodebook,
			payload: encodeCodebookStage(&a.Codebook),
		},
		{
			name:    stagePayload,
			params:  []byte{stagePayloadParamRaw},
			payload: encodePayloadStage(a.Payload),
		},
	}

	cw := &countingWriter{w: w}
	cw.write([]byte(archiveMagic))
	cw.writeLE(archiveVersion)
	cw.writeLE(uint16(len(stages)))
	for _, s := range stages {
		cw.stage(s.name, s.params, s.payload)
	}
	return cw.n, cw.err
}

// ReadFrom deserializes an Archive from an io.Reader.
func (a *Archive) ReadFrom(r io.Reader) (int64, error) {
	var total int64
	var header [8]byte
	n, err := io.ReadFull(r, header[:])
	total += int64(n)
	if err != nil {
		return total, fmt.Errorf("read archive header: %w", err)
	}
	if string(header[:4]) != archiveMagic {
		return total, fmt.Errorf("invalid archive magic: %q", string(header[:4]))
	}
	if version := binary.LittleEndian.Uint16(header[4:6]); version != archiveVersion {
		return total, fmt.Errorf("unsupported archive version: %d", version)
	}
	stageCount := binary.LittleEndian.Uint16(header[6:8])
	if stageCount == 0 || stageCount > maxArchiveStages {
		return total, fmt.Errorf("invalid stage count: %d", stageCount)
	}

	var tmp Archive
	seen := make(map[string]bool, stageCount)
	for i := 0; i < int(stageCount); i++ {
		offset := total
		h, n, err := readStageHeader(r)
		total += n
		if err != nil {
			return total, fmt.Errorf("read stage header at offset %d (stage index %d): %w", offset, i, err)
		}
		if seen[h.name] {
			return total, fmt.Errorf("duplicate stage %q at stage index %d", h.name, i)
		}

		params := make([]byte, h.paramLen)
		n2, err := io.ReadFull(r, params)
		total += int64(n2)
		if err != nil {
			return total, fmt.Errorf("read stage %q params (stage index %d): %w", h.name, i, err)
		}

		var decode func(*Archive, []byte, []byte) error
		switch h.name {
		case stageCodebook:
			decode = decodeCodebookStage
		case stagePayload:
			decode = decodePayloadStage
		default:
			skipped, err := io.CopyN(io.Discard, r, int64(h.dataLen))
			total += skipped
			if err != nil {
				return total, fmt.Errorf("skip unknown stage %q (stage index %d): %w", h.name, i, err)
			}
			continue
		}

		// dataLen is untrusted; grow with the bytes actually read.
		payload, err := io.ReadAll(io.LimitReader(r, int64(h.dataLen)))
		total += int64(len(payload))
		if err == nil && len(payload) < int(h.dataLen) {
			err = io.ErrUnexpectedEOF
		}
		if err != nil {
			return total, fmt.Errorf("read stage %q payload (stage index %d): %w", h.name, i, err)
		}
		if err := decode(&tmp, params, payload); err != nil {
			return total, fmt.Errorf("decode stage %q (stage index %d): %w", h.name, i, err)
		}
		seen[h.name] = true
	}

	for _, name := range []string{stageCodebook, stagePayload} {
		if !seen[name] {
			return total, fmt.Errorf("missing required stage %q", name)
		}
	}
	if err := validateArchiveStructure(&tmp); err != nil {
		return total, fmt.Errorf("invalid archive structure: %w", err)
	}

	*a = tmp
	return total, nil
}

// MarshalBinary returns the serialized archive.
func (a *Archive) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(a.SpaceUsed())
	if _, err := a.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary replaces a with the archive serialized in data.
func (a *Archive) UnmarshalBinary(data []byte) error {
	r := bytes.NewReader(data)
	if _, err := a.ReadFrom(r); err != nil {
		return err
	}
	if r.Len() != 0 {
		return fmt.Errorf("%d trailing bytes after archive", r.Len())
	}
	return nil
}
