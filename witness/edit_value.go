package witness

import (
	"encoding/binary"

	"das.dev/contracts/molecule"
)

// EditValue is the decoded edit_value of a sub-account witness. The concrete
// type is fixed by the action and the edit_key.
type EditValue interface {
	editValue()
}

type EditNone struct{}

type EditOwner struct{ LockArgs []byte }

type EditManager struct{ LockArgs []byte }

type EditRecords struct{ Records molecule.Records }

// EditProof marks a manual creation whose edit_value carries the proof.
type EditProof struct{}

// EditChannel is the custom_rule payment channel: lock hash and fee.
type EditChannel struct {
	LockHash [channelLockHashBytes]byte
	Fee      uint64
}

// EditExpiredAt is the new expiry of a renewal. Channel is set for
// custom_rule renewals.
type EditExpiredAt struct {
	ExpiredAt uint64
	Channel   *EditChannel
}

func (EditNone) editValue()      {}
func (EditOwner) editValue()     {}
func (EditManager) editValue()   {}
func (EditRecords) editValue()   {}
func (EditProof) editValue()     {}
func (EditChannel) editValue()   {}
func (EditExpiredAt) editValue() {}

const (
	channelLockHashBytes = 20
	channelBytes         = channelLockHashBytes + 8
	expiredAtBytes       = 8
	minManualProofBytes  = 8
)

func decodeChannel(b []byte) EditChannel {
	var c EditChannel
	copy(c.LockHash[:], b[:channelLockHashBytes])
	c.Fee = binary.LittleEndian.Uint64(b[channelLockHashBytes:])
	return c
}

// EncodeChannel is the custom_rule edit_value of a creation.
func EncodeChannel(lockHash [channelLockHashBytes]byte, fee uint64) []byte {
	out := make([]byte, 0, channelBytes)
	out = append(out, lockHash[:]...)
	return binary.LittleEndian.AppendUint64(out, fee)
}

func requireFlag(index int, flag, want SubAccountConfigFlag, key []byte) error {
	if flag != want {
		return &WitnessError{
			Code:     ERR_WITNESS_EDIT_KEY_INVALID,
			Index:    index,
			Field:    "edit_key",
			Msg:      "'" + string(key) + "' is not allowed in edit_key",
			Expected: want.String(),
			Actual:   flag.String(),
		}
	}
	return nil
}

func editValueLenErr(index int, format string, args ...any) error {
	return werr(ERR_WITNESS_EDIT_VALUE, index, "edit_value", format, args...)
}

func decodeCreateValue(index int, flag SubAccountConfigFlag, key, value []byte) (EditValue, error) {
	switch string(key) {
	case string(EditKeyManual):
		if len(value) < minManualProofBytes {
			return nil, editValueLenErr(index, "should be at least %d bytes, got %d", minManualProofBytes, len(value))
		}
		return EditProof{}, nil
	case string(EditKeyCustomScript):
		// The payload is checked before the flag so a non-empty value is
		// reported the same way under every flag.
		if len(value) != 0 {
			return nil, editValueLenErr(index, "should be empty, got %d bytes", len(value))
		}
		if err := requireFlag(index, flag, FlagCustomScript, key); err != nil {
			return nil, err
		}
		return EditNone{}, nil
	case string(EditKeyCustomRule):
		if err := requireFlag(index, flag, FlagCustomRule, key); err != nil {
			return nil, err
		}
		if len(value) != channelBytes {
			return nil, editValueLenErr(index, "should be %d bytes, got %d", channelBytes, len(value))
		}
		return decodeChannel(value), nil
	default:
		return EditNone{}, nil
	}
}

func decodeRenewValue(index int, flag SubAccountConfigFlag, key, value []byte) (EditValue, error) {
	if len(value) < expiredAtBytes {
		return nil, werr(ERR_NEW_EXPIRED_AT_IS_REQUIRED, index, "edit_value",
			"should start with the 8 bytes of the new expired_at, got %d bytes", len(value))
	}
	ev := EditExpiredAt{ExpiredAt: binary.LittleEndian.Uint64(value[:expiredAtBytes])}

	switch string(key) {
	case string(EditKeyCustomScript):
		if err := requireFlag(index, flag, FlagCustomScript, key); err != nil {
			return nil, err
		}
		if len(value) != expiredAtBytes {
			return nil, editValueLenErr(index, "should only contain expired_at, got %d bytes", len(value))
		}
	case string(EditKeyCustomRule):
		if err := requireFlag(index, flag, FlagCustomRule, key); err != nil {
			return nil, err
		}
		if len(value) != expiredAtBytes+channelBytes {
			return nil, editValueLenErr(index, "should be %d bytes, got %d", expiredAtBytes+channelBytes, len(value))
		}
		c := decodeChannel(value[expiredAtBytes:])
		ev.Channel = &c
	}
	return ev, nil
}

func decodeEditValue(index int, key, value []byte) (EditValue, error) {
	switch string(key) {
	case string(EditKeyOwner):
		return EditOwner{LockArgs: append([]byte(nil), value...)}, nil
	case string(EditKeyManager):
		return EditManager{LockArgs: append([]byte(nil), value...)}, nil
	case string(EditKeyRecords):
		records, err := molecule.DecodeRecordsStrict(value)
		if err != nil {
			return nil, &WitnessError{Code: ERR_WITNESS_STRUCTURE, Index: index, Field: "edit_value", Msg: "decoding records failed", Err: err}
		}
		return EditRecords{Records: records}, nil
	default:
		return EditNone{}, nil
	}
}

// EncodeRenewValue builds the edit_value of a renewal; channel may be nil.
func EncodeRenewValue(expiredAt uint64, channel []byte) []byte {
	out := binary.LittleEndian.AppendUint64(make([]byte, 0, expiredAtBytes+len(channel)), expiredAt)
	return append(out, channel...)
}
