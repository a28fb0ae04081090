package witness

import "encoding/binary"

func newWitness(dt DataType, fields ...[]byte) []byte {
	size := WITNESS_HEADER_BYTES + WITNESS_TYPE_BYTES
	for _, f := range fields {
		size += WITNESS_LENGTH_BYTES + len(f)
	}
	out := make([]byte, 0, size)
	out = append(out, WITNESS_HEADER[:]...)
	out = binary.LittleEndian.AppendUint32(out, uint32(dt))
	for _, f := range fields {
		out = putField(out, f)
	}
	return out
}

// RawSubAccountWitness holds the undecoded fields of a sub-account witness.
type RawSubAccountWitness struct {
	Version       uint32
	Action        SubAccountAction
	Signature     []byte
	SignRole      []byte
	SignExpiredAt []byte
	NewRoot       []byte
	Proof         []byte
	SubAccount    []byte
	EditKey       []byte
	EditValue     []byte
}

func (w RawSubAccountWitness) Encode() []byte {
	return newWitness(DataTypeSubAccount,
		binary.LittleEndian.AppendUint32(nil, w.Version),
		[]byte(w.Action.String()),
		w.Signature,
		w.SignRole,
		w.SignExpiredAt,
		w.NewRoot,
		w.Proof,
		w.SubAccount,
		w.EditKey,
		w.EditValue,
	)
}

// RawSignWitness holds the fields of a mint or renew sign witness.
type RawSignWitness struct {
	Version            uint32
	Signature          []byte
	SignRole           []byte
	ExpiredAt          uint64
	AccountListSmtRoot []byte
}

// Encode builds the witness as dt, which is SubAccountMintSign or
// SubAccountRenewSign.
func (w RawSignWitness) Encode(dt DataType) []byte {
	return newWitness(dt,
		binary.LittleEndian.AppendUint32(nil, w.Version),
		w.Signature,
		w.SignRole,
		binary.LittleEndian.AppendUint64(nil, w.ExpiredAt),
		w.AccountListSmtRoot,
	)
}

// EncodeRulesWitness builds a price or preserved rules witness around an
// encoded SubAccountRules payload.
func EncodeRulesWitness(kind DataType, version uint32, rules []byte) []byte {
	return newWitness(kind, binary.LittleEndian.AppendUint32(nil, version), rules)
}

// EncodeWitness builds a das witness of any data type.
func EncodeWitness(dt DataType, fields ...[]byte) []byte {
	return newWitness(dt, fields...)
}
