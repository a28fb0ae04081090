package witness

import (
	"encoding/hex"
	"strconv"

	"go.uber.org/zap"

	"das.dev/contracts/molecule"
	"das.dev/contracts/signlib"
)

// SubAccountWitness is one decoded sub-account mutation.
type SubAccountWitness struct {
	// Index is the transaction witness index.
	Index   int
	Version uint32
	Action  SubAccountAction

	Signature []byte
	SignRole  *LockRole
	// SignType is nil when the lock args name an undefined algorithm.
	SignType      *signlib.LockType
	SignArgs      []byte
	SignExpiredAt uint64

	NewRoot    []byte
	Proof      []byte
	SubAccount *molecule.SubAccount

	EditKey        []byte
	EditValue      EditValue
	EditValueBytes []byte
}

// Get decodes the i-th sub-account witness. It returns nil, nil past the end.
func (p *Parser) Get(i int) (*SubAccountWitness, error) {
	if i < 0 || i >= len(p.indexes) {
		return nil, nil
	}
	return p.parseWitness(p.indexes[i])
}

// Iterator walks the sub-account witnesses in scan order and stops at the
// first error.
type Iterator struct {
	p   *Parser
	pos int
	cur *SubAccountWitness
	err error
}

func (p *Parser) Iter() *Iterator {
	return &Iterator{p: p}
}

func (it *Iterator) Next() bool {
	if it.err != nil {
		return false
	}
	w, err := it.p.Get(it.pos)
	it.pos++
	if err != nil {
		it.err = err
		it.cur = nil
		return false
	}
	it.cur = w
	return w != nil
}

func (it *Iterator) Witness() *SubAccountWitness { return it.cur }

func (it *Iterator) Err() error { return it.err }

func (p *Parser) parseWitness(index int) (*SubAccountWitness, error) {
	p.log.Debug("parsing sub-account witness", zap.Int("index", index))

	raw, err := loadDasWitness(p.src, index, DataTypeSubAccount)
	if err != nil {
		return nil, err
	}

	r := newFieldReader(index, raw)
	var f [10][]byte
	for n, name := range subAccountFields {
		if f[n], err = r.next(name); err != nil {
			p.log.Warn("sub-account witness structure error", zap.Int("index", index), zap.Error(err))
			return nil, err
		}
	}
	versionBytes, actionBytes, signature, signRoleByte, signExpiredAtBytes := f[0], f[1], f[2], f[3], f[4]
	newRoot, proof, subAccountBytes, editKey, editValueBytes := f[5], f[6], f[7], f[8], f[9]

	version, err := fieldU32(index, "version", versionBytes)
	if err != nil {
		return nil, err
	}
	if version != SubAccountWitnessVersion {
		p.log.Warn("unsupported sub-account witness version", zap.Int("index", index), zap.Uint32("version", version))
		return nil, &WitnessError{
			Code:     ERR_WITNESS_VERSION_OR_TYPE,
			Index:    index,
			Field:    "version",
			Msg:      "unsupported sub-account witness version",
			Expected: strconv.FormatUint(uint64(SubAccountWitnessVersion), 10),
			Actual:   strconv.FormatUint(uint64(version), 10),
		}
	}

	action, ok := ParseSubAccountAction(actionBytes)
	if !ok {
		p.log.Warn("sub-account witness action parse failed", zap.Int("index", index), zap.ByteString("action", actionBytes))
		return nil, structErr(index, "action", "unknown action %q", actionBytes)
	}

	sub, err := molecule.DecodeSubAccount(subAccountBytes)
	if err != nil {
		p.log.Warn("sub-account witness sub_account decoding failed", zap.Int("index", index), zap.Error(err))
		return nil, &WitnessError{Code: ERR_WITNESS_STRUCTURE, Index: index, Field: "sub_account", Msg: "decoding SubAccount failed", Err: err}
	}

	w := &SubAccountWitness{
		Index:          index,
		Version:        version,
		Action:         action,
		Signature:      append([]byte(nil), signature...),
		NewRoot:        append([]byte(nil), newRoot...),
		Proof:          append([]byte(nil), proof...),
		SubAccount:     sub,
		EditKey:        append([]byte(nil), editKey...),
		EditValueBytes: append([]byte(nil), editValueBytes...),
	}

	switch action {
	case ActionCreate:
		w.EditValue, err = decodeCreateValue(index, p.flag, editKey, editValueBytes)
	case ActionRenew:
		w.EditValue, err = decodeRenewValue(index, p.flag, editKey, editValueBytes)
	case ActionEdit:
		if w.SignExpiredAt, err = fieldU64(index, "sign_expired_at", signExpiredAtBytes); err != nil {
			break
		}
		if w.SignRole, w.SignType, w.SignArgs, err = parseSignInfo(index, signRoleByte, sub.Lock.Args); err != nil {
			break
		}
		w.EditValue, err = decodeEditValue(index, editKey, editValueBytes)
	case ActionRecycle:
		w.EditValue = EditNone{}
	}
	if err != nil {
		p.log.Warn("sub-account witness edit_value rejected", zap.Int("index", index), zap.Error(err))
		return nil, err
	}

	p.log.Debug("sub-account witness parsed",
		zap.Int("index", index),
		zap.Stringer("action", action),
		zap.String("account", sub.AccountString()),
		zap.ByteString("edit_key", editKey),
		zap.String("new_root", hex.EncodeToString(newRoot)),
		zap.String("sign_args", hex.EncodeToString(w.SignArgs)),
		zap.Uint64("sign_expired_at", w.SignExpiredAt),
	)
	return w, nil
}

var subAccountFields = [10]string{
	"version", "action", "signature", "sign_role", "sign_expired_at",
	"new_root", "proof", "sub_account", "edit_key", "edit_value",
}

// parseSignInfo resolves the signer from a one byte role and das-lock args:
// 0 selects the owner half, anything else the manager half.
func parseSignInfo(index int, roleByte, lockArgs []byte) (*LockRole, *signlib.LockType, []byte, error) {
	if len(roleByte) != 1 {
		return nil, nil, nil, &WitnessError{
			Code:     ERR_ENCODING,
			Index:    index,
			Field:    "sign_role",
			Msg:      "parsing to u8 failed",
			Expected: "1 byte",
			Actual:   hex.EncodeToString(roleByte),
		}
	}
	if len(lockArgs)%2 != 0 {
		return nil, nil, nil, &WitnessError{
			Code:     ERR_ENCODING,
			Index:    index,
			Field:    "lock_args",
			Msg:      "das-lock args must split into equal halves",
			Expected: "even length",
			Actual:   strconv.Itoa(len(lockArgs)),
		}
	}

	var (
		role    LockRole
		rawType uint8
		ok      bool
		args    []byte
	)
	if LockRole(roleByte[0]) == LockRoleOwner {
		role = LockRoleOwner
		rawType, ok = GetOwnerType(lockArgs)
		args = GetOwnerLockArgs(lockArgs)
	} else {
		role = LockRoleManager
		rawType, ok = GetManagerType(lockArgs)
		args = GetManagerLockArgs(lockArgs)
	}

	var signType *signlib.LockType
	if ok {
		if t, defined := signlib.ParseLockType(rawType); defined {
			signType = &t
		}
	}
	return &role, signType, append([]byte(nil), args...), nil
}
