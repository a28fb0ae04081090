package witness

import "encoding/binary"

// readField decodes one `[u32 LE length][payload]` field starting at start and
// returns the offset just past the payload. The payload borrows from b.
func readField(name string, b []byte, start int) (int, []byte, error) {
	if start < 0 || start > len(b) || len(b)-start < WITNESS_LENGTH_BYTES {
		return 0, nil, structErr(-1, name, "expect 4 bytes of LE uint32 length at %d..%d", start, start+WITNESS_LENGTH_BYTES)
	}
	length := binary.LittleEndian.Uint32(b[start : start+WITNESS_LENGTH_BYTES])
	from := start + WITNESS_LENGTH_BYTES
	if uint64(length) > uint64(len(b)-from) {
		return 0, nil, structErr(-1, name, "expect %d bytes in %d..%d, only %d left", length, from, uint64(from)+uint64(length), len(b)-from)
	}
	to := from + int(length)
	return to, b[from:to], nil
}

// fieldReader walks the fields of one witness, tagging errors with the
// witness index.
type fieldReader struct {
	index int
	raw   []byte
	off   int
}

func newFieldReader(index int, raw []byte) *fieldReader {
	return &fieldReader{index: index, raw: raw, off: WITNESS_HEADER_BYTES + WITNESS_TYPE_BYTES}
}

func (r *fieldReader) next(name string) ([]byte, error) {
	next, field, err := readField(name, r.raw, r.off)
	if err != nil {
		if we, ok := err.(*WitnessError); ok {
			we.Index = r.index
		}
		return nil, err
	}
	r.off = next
	return field, nil
}

func fieldU32(index int, name string, v []byte) (uint32, error) {
	if len(v) != 4 {
		return 0, structErr(index, name, "should be 4 bytes, got %d", len(v))
	}
	return binary.LittleEndian.Uint32(v), nil
}

func fieldU64(index int, name string, v []byte) (uint64, error) {
	if len(v) != 8 {
		return 0, structErr(index, name, "should be 8 bytes, got %d", len(v))
	}
	return binary.LittleEndian.Uint64(v), nil
}

func putField(dst []byte, v []byte) []byte {
	var l [WITNESS_LENGTH_BYTES]byte
	binary.LittleEndian.PutUint32(l[:], uint32(len(v)))
	dst = append(dst, l[:]...)
	return append(dst, v...)
}

func leU32(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b[:4])
}
