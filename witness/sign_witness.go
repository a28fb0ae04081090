package witness

import (
	"go.uber.org/zap"

	"das.dev/contracts/signlib"
)

// SignWitness is a SubAccountMintSign or SubAccountRenewSign witness.
type SignWitness struct {
	Index    int
	DataType DataType
	Version  uint32

	Signature []byte
	SignRole  *LockRole
	SignType  *signlib.LockType
	SignArgs  []byte

	ExpiredAt          uint64
	ExpiredAtBytes     []byte
	AccountListSmtRoot []byte
}

// GetMintSign decodes the mint sign witness with the signer taken from
// lockArgs. ok is false when the transaction has none.
func (p *Parser) GetMintSign(lockArgs []byte) (*SignWitness, bool, error) {
	if p.MintSignIndex < 0 {
		return nil, false, nil
	}
	w, err := p.parseSignWitness(p.MintSignIndex, DataTypeSubAccountMintSign, lockArgs)
	return w, true, err
}

func (p *Parser) GetRenewSign(lockArgs []byte) (*SignWitness, bool, error) {
	if p.RenewSignIndex < 0 {
		return nil, false, nil
	}
	w, err := p.parseSignWitness(p.RenewSignIndex, DataTypeSubAccountRenewSign, lockArgs)
	return w, true, err
}

func (p *Parser) parseSignWitness(index int, dt DataType, lockArgs []byte) (*SignWitness, error) {
	p.log.Debug("parsing sign witness", zap.Int("index", index), zap.Stringer("data_type", dt))

	raw, err := loadDasWitness(p.src, index, dt)
	if err != nil {
		return nil, err
	}

	r := newFieldReader(index, raw)
	versionBytes, err := r.next("version")
	if err != nil {
		return nil, err
	}
	signature, err := r.next("signature")
	if err != nil {
		return nil, err
	}
	signRoleByte, err := r.next("sign_role")
	if err != nil {
		return nil, err
	}
	expiredAtBytes, err := r.next("expired_at")
	if err != nil {
		return nil, err
	}
	smtRoot, err := r.next("account_list_smt_root")
	if err != nil {
		return nil, err
	}

	version, err := fieldU32(index, "version", versionBytes)
	if err != nil {
		return nil, err
	}
	expiredAt, err := fieldU64(index, "expired_at", expiredAtBytes)
	if err != nil {
		return nil, err
	}
	role, signType, signArgs, err := parseSignInfo(index, signRoleByte, lockArgs)
	if err != nil {
		return nil, err
	}

	return &SignWitness{
		Index:              index,
		DataType:           dt,
		Version:            version,
		Signature:          append([]byte(nil), signature...),
		SignRole:           role,
		SignType:           signType,
		SignArgs:           signArgs,
		ExpiredAt:          expiredAt,
		ExpiredAtBytes:     append([]byte(nil), expiredAtBytes...),
		AccountListSmtRoot: append([]byte(nil), smtRoot...),
	}, nil
}
