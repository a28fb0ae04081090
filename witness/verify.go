package witness

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"das.dev/contracts/signlib"
)

func sigVerifyErr(index int, field string, err error) error {
	code := ERR_SUB_ACCOUNT_SIG_VERIFY
	if errors.Is(err, signlib.ErrUndefinedLockType) {
		code = ERR_UNDEFINED_DAS_LOCK_TYPE
	}
	return &WitnessError{Code: code, Index: index, Field: field, Msg: "signature verification failed", Err: err}
}

// VerifyMintSign checks a mint or renew sign witness against its expiry and
// SMT root.
func VerifyMintSign(lib *signlib.SignLib, w *SignWitness) error {
	if w.SignType == nil {
		return sigVerifyErr(w.Index, "sign_type", signlib.ErrUndefinedLockType)
	}
	if err := lib.VerifySubAccountMintSig(*w.SignType, w.ExpiredAtBytes, w.AccountListSmtRoot, w.Signature, w.SignArgs); err != nil {
		return sigVerifyErr(w.Index, "signature", err)
	}
	return nil
}

// VerifySubAccountWitness checks the signature of an edit. Other actions are
// authorized by the mint or renew sign witness and carry no signer.
func VerifySubAccountWitness(lib *signlib.SignLib, w *SubAccountWitness) error {
	if w.Action != ActionEdit {
		return nil
	}
	if w.SignType == nil {
		return sigVerifyErr(w.Index, "sign_type", signlib.ErrUndefinedLockType)
	}
	nonce := binary.LittleEndian.AppendUint64(nil, w.SubAccount.Nonce)
	signExpiredAt := binary.LittleEndian.AppendUint64(nil, w.SignExpiredAt)
	err := lib.VerifySubAccountSig(*w.SignType, w.SubAccount.ID[:], w.EditKey, w.EditValueBytes,
		nonce, w.Signature, w.SignArgs, signExpiredAt)
	if err != nil {
		return sigVerifyErr(w.Index, "signature", err)
	}
	return nil
}
