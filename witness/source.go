package witness

import (
	"bytes"

	"github.com/pkg/errors"
)

// Source reads transaction witnesses the way the host syscall does: the
// witness at index is copied into buf and its full length is returned. When
// the witness is longer than buf, buf holds the prefix and the error is
// ERR_LENGTH_NOT_ENOUGH. Past the last witness the error is
// ERR_INDEX_OUT_OF_BOUND.
type Source interface {
	LoadWitness(buf []byte, index int) (int, error)
}

// MemSource serves witnesses from memory.
type MemSource [][]byte

func (m MemSource) LoadWitness(buf []byte, index int) (int, error) {
	if index < 0 || index >= len(m) {
		return 0, ERR_INDEX_OUT_OF_BOUND
	}
	w := m[index]
	if w == nil {
		return 0, ERR_ITEM_MISSING
	}
	copy(buf, w)
	if len(w) > len(buf) {
		return len(w), ERR_LENGTH_NOT_ENOUGH
	}
	return len(w), nil
}

// loadWitness reads the complete witness at index.
func loadWitness(src Source, index int) ([]byte, error) {
	var probe [PROBE_BYTES]byte
	n, err := src.LoadWitness(probe[:], index)
	switch {
	case err == nil:
		return append([]byte(nil), probe[:n]...), nil
	case errors.Is(err, ERR_LENGTH_NOT_ENOUGH):
	default:
		return nil, errors.Wrapf(err, "load witnesses[%d]", index)
	}
	buf := make([]byte, n)
	m, err := src.LoadWitness(buf, index)
	if err != nil {
		return nil, errors.Wrapf(err, "load witnesses[%d]", index)
	}
	if m != n {
		return nil, errors.Wrapf(ERR_ENCODING, "witnesses[%d] length changed between reads (%d != %d)", index, n, m)
	}
	return buf, nil
}

// loadDasWitness reads the witness at index and checks the das header and the
// expected data type.
func loadDasWitness(src Source, index int, want DataType) ([]byte, error) {
	raw, err := loadWitness(src, index)
	if err != nil {
		return nil, err
	}
	if len(raw) < WITNESS_HEADER_BYTES+WITNESS_TYPE_BYTES || !bytes.Equal(raw[:WITNESS_HEADER_BYTES], WITNESS_HEADER[:]) {
		return nil, structErr(index, "header", "not a das witness")
	}
	got := DataType(leU32(raw[WITNESS_HEADER_BYTES:]))
	if got != want {
		return nil, &WitnessError{
			Code:     ERR_WITNESS_VERSION_OR_TYPE,
			Index:    index,
			Field:    "data_type",
			Expected: want.String(),
			Actual:   got.String(),
		}
	}
	return raw, nil
}
