package molecule

import "encoding/binary"

// EncodeBytes encodes a fixvec<byte>.
func EncodeBytes(b []byte) []byte {
	out := make([]byte, headerUnit, headerUnit+len(b))
	binary.LittleEndian.PutUint32(out, uint32(len(b)))
	return append(out, b...)
}

// EncodeTable encodes already-serialized fields as a table. The same layout is
// used for dynvec.
func EncodeTable(fields ...[]byte) []byte {
	headerSize := headerUnit * (len(fields) + 1)
	total := headerSize
	for _, f := range fields {
		total += len(f)
	}
	out := make([]byte, headerSize, total)
	binary.LittleEndian.PutUint32(out[0:4], uint32(total))
	off := headerSize
	for i, f := range fields {
		binary.LittleEndian.PutUint32(out[headerUnit*(i+1):], uint32(off))
		off += len(f)
	}
	for _, f := range fields {
		out = append(out, f...)
	}
	return out
}

// EncodeDynvec encodes serialized items as a dynvec.
func EncodeDynvec(items ...[]byte) []byte {
	if len(items) == 0 {
		out := make([]byte, headerUnit)
		binary.LittleEndian.PutUint32(out, headerUnit)
		return out
	}
	return EncodeTable(items...)
}

func EncodeU32(v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return b[:]
}

func EncodeU64(v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return b[:]
}
