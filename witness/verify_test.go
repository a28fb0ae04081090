package witness

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"das.dev/contracts/signlib"
)

type recordingVerifier struct {
	digests [][]byte
	signers [][]byte
	code    int32
}

func (r *recordingVerifier) Verify(_ int32, digest, _, signer []byte) int32 {
	r.digests = append(r.digests, append([]byte(nil), digest...))
	r.signers = append(r.signers, append([]byte(nil), signer...))
	return r.code
}

func TestVerifySubAccountWitness_EditDigest(t *testing.T) {
	if signlib.DevMode {
		t.Skip("signature checks are bypassed in das_dev builds")
	}
	rec := &recordingVerifier{}
	lib := &signlib.SignLib{ETH: rec}

	w, err := parseOne(t, FlagManual, mutation(ActionEdit, EditKeyManager, []byte{7, 7}))
	require.NoError(t, err)
	require.NoError(t, VerifySubAccountWitness(lib, w))

	want, err := signlib.GenDigest(signlib.ETH,
		w.SubAccount.ID[:], EditKeyManager, []byte{7, 7}, le64(3), le64(1_700_086_400))
	require.NoError(t, err)
	require.Equal(t, [][]byte{want}, rec.digests)
	require.Equal(t, [][]byte{ownerArgs}, rec.signers)
}

func TestVerifySubAccountWitness_NonEditSkipped(t *testing.T) {
	rec := &recordingVerifier{code: -1}
	lib := &signlib.SignLib{ETH: rec}
	w, err := parseOne(t, FlagManual, mutation(ActionCreate, EditKeyManual, make([]byte, 8)))
	require.NoError(t, err)
	require.NoError(t, VerifySubAccountWitness(lib, w))
	require.Empty(t, rec.digests)
}

func TestVerifySubAccountWitness_Failures(t *testing.T) {
	if signlib.DevMode {
		t.Skip("signature checks are bypassed in das_dev builds")
	}
	lib := &signlib.SignLib{ETH: &recordingVerifier{code: -12}}
	w, err := parseOne(t, FlagManual, mutation(ActionEdit, EditKeyOwner, nil))
	require.NoError(t, err)

	err = VerifySubAccountWitness(lib, w)
	require.ErrorIs(t, err, ERR_SUB_ACCOUNT_SIG_VERIFY)
	code, ok := signlib.Code(err)
	require.True(t, ok)
	require.Equal(t, int32(-12), code)

	sub := testSubAccount()
	sub.Lock.Args = BuildLockArgs(uint8(signlib.WebAuthn), ownerArgs, uint8(signlib.ETH), managerArgs)
	raw := mutation(ActionEdit, EditKeyOwner, nil)
	raw.SubAccount = sub.Encode()
	w, err = parseOne(t, FlagManual, raw)
	require.NoError(t, err)
	err = VerifySubAccountWitness(lib, w)
	require.ErrorIs(t, err, ERR_UNDEFINED_DAS_LOCK_TYPE)
	require.ErrorIs(t, err, signlib.ErrUndefinedLockType)
}

func TestVerifyMintSign(t *testing.T) {
	if signlib.DevMode {
		t.Skip("signature checks are bypassed in das_dev builds")
	}
	root := bytes.Repeat([]byte{0x77}, 32)
	sign := RawSignWitness{
		Version:            SignWitnessVersion,
		Signature:          bytes.Repeat([]byte{1}, 65),
		SignRole:           []byte{1},
		ExpiredAt:          1_800_000_000,
		AccountListSmtRoot: root,
	}
	src := MemSource{
		sign.Encode(DataTypeSubAccountMintSign),
		mutation(ActionCreate, EditKeyManual, make([]byte, 8)).Encode(),
	}
	p, err := NewParser(src, FlagManual)
	require.NoError(t, err)

	_, ok, err := p.GetRenewSign(testLockArgs())
	require.NoError(t, err)
	require.False(t, ok)

	sw, ok, err := p.GetMintSign(testLockArgs())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(1_800_000_000), sw.ExpiredAt)
	require.Equal(t, LockRoleManager, *sw.SignRole)
	require.Equal(t, signlib.TRON, *sw.SignType)
	require.Equal(t, managerArgs, sw.SignArgs)

	rec := &recordingVerifier{}
	require.NoError(t, VerifyMintSign(&signlib.SignLib{TRON: rec}, sw))
	want, err := signlib.GenDigest(signlib.TRON, le64(1_800_000_000), root)
	require.NoError(t, err)
	require.Equal(t, [][]byte{want}, rec.digests)

	err = VerifyMintSign(&signlib.SignLib{TRON: &recordingVerifier{code: 5}}, sw)
	require.ErrorIs(t, err, ERR_SUB_ACCOUNT_SIG_VERIFY)
}

func TestGetMintSign_Structure(t *testing.T) {
	sign := RawSignWitness{
		Version:            SignWitnessVersion,
		Signature:          bytes.Repeat([]byte{1}, 65),
		SignRole:           []byte{0, 1},
		AccountListSmtRoot: make([]byte, 32),
	}
	src := MemSource{sign.Encode(DataTypeSubAccountRenewSign)}
	p, err := NewParser(src, FlagManual)
	require.NoError(t, err)

	_, ok, err := p.GetRenewSign(testLockArgs())
	require.True(t, ok)
	require.ErrorIs(t, err, ERR_ENCODING)

	short := EncodeWitness(DataTypeSubAccountMintSign, le32(1), bytes.Repeat([]byte{1}, 65), []byte{0}, []byte{1, 2, 3}, make([]byte, 32))
	p, err = NewParser(MemSource{short}, FlagManual)
	require.NoError(t, err)
	_, _, err = p.GetMintSign(testLockArgs())
	require.ErrorIs(t, err, ERR_WITNESS_STRUCTURE)
}
