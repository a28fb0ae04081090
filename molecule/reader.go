// Package molecule decodes and encodes the molecule binary layout used for
// registry domain objects carried inside witnesses.
//
// Only the three shapes the registry schemas need are supported: fixed-size
// structs (handled by callers as plain byte arrays), fixvec<byte> (Bytes) and
// the offset-headed table/dynvec layout.
package molecule

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const headerUnit = 4

var ErrVerification = errors.New("molecule: verification failed")

func verr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrVerification, fmt.Sprintf(format, args...))
}

func readU32(b []byte, off int) (uint32, bool) {
	if off < 0 || off+headerUnit > len(b) {
		return 0, false
	}
	return binary.LittleEndian.Uint32(b[off : off+headerUnit]), true
}

// splitOffsets parses a table or dynvec header and returns the item slices.
// An empty dynvec is the 4-byte header alone.
func splitOffsets(b []byte, what string) ([][]byte, error) {
	total, ok := readU32(b, 0)
	if !ok {
		return nil, verr("%s: header too short (%d bytes)", what, len(b))
	}
	if uint64(total) != uint64(len(b)) {
		return nil, verr("%s: total_size %d != actual %d", what, total, len(b))
	}
	if len(b) == headerUnit {
		return nil, nil
	}
	first, ok := readU32(b, headerUnit)
	if !ok {
		return nil, verr("%s: missing first offset", what)
	}
	if first%headerUnit != 0 || first < 2*headerUnit || uint64(first) > uint64(len(b)) {
		return nil, verr("%s: invalid first offset %d", what, first)
	}
	count := int(first/headerUnit) - 1
	offsets := make([]int, 0, count+1)
	for i := 0; i < count; i++ {
		o, ok := readU32(b, headerUnit*(i+1))
		if !ok {
			return nil, verr("%s: offset %d truncated", what, i)
		}
		offsets = append(offsets, int(o))
	}
	offsets = append(offsets, len(b))

	items := make([][]byte, 0, count)
	for i := 0; i < count; i++ {
		from, to := offsets[i], offsets[i+1]
		if from > to || to > len(b) {
			return nil, verr("%s: offsets not ascending at item %d", what, i)
		}
		items = append(items, b[from:to])
	}
	return items, nil
}

// table returns the fields of a table, accepting trailing fields unknown to
// this schema version (compatible mode).
func table(b []byte, what string, fieldCount int) ([][]byte, error) {
	fields, err := splitOffsets(b, what)
	if err != nil {
		return nil, err
	}
	if len(fields) < fieldCount {
		return nil, verr("%s: field_count %d < %d", what, len(fields), fieldCount)
	}
	return fields, nil
}

// strictTable rejects tables carrying fields beyond the schema.
func strictTable(b []byte, what string, fieldCount int) ([][]byte, error) {
	fields, err := table(b, what, fieldCount)
	if err != nil {
		return nil, err
	}
	if len(fields) != fieldCount {
		return nil, verr("%s: field_count %d != %d", what, len(fields), fieldCount)
	}
	return fields, nil
}

func dynvec(b []byte, what string) ([][]byte, error) {
	return splitOffsets(b, what)
}

// DecodeBytes decodes a fixvec<byte>.
func DecodeBytes(b []byte) ([]byte, error) {
	n, ok := readU32(b, 0)
	if !ok {
		return nil, verr("Bytes: header too short")
	}
	if uint64(n)+headerUnit != uint64(len(b)) {
		return nil, verr("Bytes: item_count %d does not match size %d", n, len(b))
	}
	return append([]byte(nil), b[headerUnit:]...), nil
}

func fixed(b []byte, what string, size int) ([]byte, error) {
	if len(b) != size {
		return nil, verr("%s: expected %d bytes, got %d", what, size, len(b))
	}
	return b, nil
}

func decodeU8(b []byte, what string) (uint8, error) {
	v, err := fixed(b, what, 1)
	if err != nil {
		return 0, err
	}
	return v[0], nil
}

func decodeU32(b []byte, what string) (uint32, error) {
	v, err := fixed(b, what, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(v), nil
}

func decodeU64(b []byte, what string) (uint64, error) {
	v, err := fixed(b, what, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(v), nil
}
