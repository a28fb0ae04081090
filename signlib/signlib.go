// Package signlib routes signature checks to the verification backend of each
// das-lock algorithm.
//
// Backends share one calling contract regardless of where they come from:
// (type_no, digest, signature bytes, signer args) -> 0 on success, any other
// value is an error code returned to the caller untouched.
package signlib

import (
	"encoding/hex"
	"fmt"

	"go.uber.org/zap"

	"das.dev/contracts/ckbhash"
)

type Verifier interface {
	Verify(typeNo int32, digest, signature, signer []byte) int32
}

// VerifierFunc adapts a plain function to Verifier.
type VerifierFunc func(typeNo int32, digest, signature, signer []byte) int32

func (f VerifierFunc) Verify(typeNo int32, digest, signature, signer []byte) int32 {
	return f(typeNo, digest, signature, signer)
}

// SignLib holds one backend per algorithm family. ETH and ETHTypedData share
// the ETH backend.
type SignLib struct {
	CKBSignhash Verifier
	CKBMultisig Verifier
	ETH         Verifier
	TRON        Verifier
	Doge        Verifier

	Logger *zap.Logger
}

func (s *SignLib) logger() *zap.Logger {
	if s == nil || s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *SignLib) backend(t LockType) (Verifier, error) {
	var v Verifier
	switch t {
	case CKBSingle:
		v = s.CKBSignhash
	case CKBMulti:
		v = s.CKBMultisig
	case ETH, ETHTypedData:
		v = s.ETH
	case TRON:
		v = s.TRON
	case Doge:
		v = s.Doge
	default:
		return nil, fmt.Errorf("%w: %s", ErrUndefinedLockType, t)
	}
	if v == nil {
		return nil, fmt.Errorf("%w: %s", ErrBackendNotLoaded, t)
	}
	return v, nil
}

// Validate runs the backend of lockType over digest.
func (s *SignLib) Validate(lockType LockType, typeNo int32, digest, signature, signer []byte) error {
	v, err := s.backend(lockType)
	if err != nil {
		return err
	}
	s.logger().Debug("validate signature",
		zap.Stringer("lock_type", lockType),
		zap.Int32("type_no", typeNo),
		zap.String("digest", hex.EncodeToString(digest)),
		zap.String("signature", hex.EncodeToString(signature)),
		zap.String("signer", hex.EncodeToString(signer)),
	)
	if code := v.Verify(typeNo, digest, signature, signer); code != 0 {
		return &CodeError{LockType: lockType, Code: code}
	}
	return nil
}

// GenDigest hashes the concatenated parts with the ckb-default-hash blake2b.
func GenDigest(lockType LockType, parts ...[]byte) ([]byte, error) {
	switch lockType {
	case CKBSingle, CKBMulti, ETH, ETHTypedData, TRON, Doge:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUndefinedLockType, lockType)
	}
	sum := ckbhash.Sum(parts...)
	return sum[:], nil
}

// VerifySubAccountMintSig checks a mint or renew signature over
// expired_at || account_list_smt_root.
func (s *SignLib) VerifySubAccountMintSig(lockType LockType, expiredAt, smtRoot, signature, signer []byte) error {
	if DevMode {
		return nil
	}
	digest, err := GenDigest(lockType, expiredAt, smtRoot)
	if err != nil {
		return err
	}
	return s.Validate(lockType, 0, digest, signature, signer)
}

// VerifySubAccountSig checks an edit signature over
// account_id || edit_key || edit_value || nonce || sign_expired_at.
func (s *SignLib) VerifySubAccountSig(lockType LockType, accountID, editKey, editValue, nonce, signature, signer, signExpiredAt []byte) error {
	if DevMode {
		return nil
	}
	digest, err := GenDigest(lockType, accountID, editKey, editValue, nonce, signExpiredAt)
	if err != nil {
		return err
	}
	return s.Validate(lockType, 0, digest, signature, signer)
}
