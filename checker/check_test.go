package checker

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"strconv"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/sha3"

	"das.dev/contracts/molecule"
	"das.dev/contracts/signlib"
	"das.dev/contracts/witness"
)

func keccak(parts ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)
}

type ethKey struct {
	priv *btcec.PrivateKey
	addr []byte
}

func newETHKey(seed byte) ethKey {
	priv, pub := btcec.PrivKeyFromBytes(bytes.Repeat([]byte{seed}, 32))
	return ethKey{priv: priv, addr: keccak(pub.SerializeUncompressed()[1:])[12:]}
}

func (k ethKey) sign(t *testing.T, digest []byte) []byte {
	t.Helper()
	hash := keccak([]byte("\x19Ethereum Signed Message:\n"), []byte(strconv.Itoa(len(digest))), digest)
	sig := ecdsa.SignCompact(k.priv, hash, false)
	return append(append([]byte(nil), sig[1:]...), sig[0])
}

func le64(v uint64) []byte { return binary.LittleEndian.AppendUint64(nil, v) }

type txBuilder struct {
	owner, manager ethKey
	sub            *molecule.SubAccount
	root           []byte
}

func newTxBuilder() *txBuilder {
	b := &txBuilder{owner: newETHKey(0x11), manager: newETHKey(0x22), root: bytes.Repeat([]byte{0xab}, 32)}
	b.sub = &molecule.SubAccount{
		Lock:    molecule.Script{HashType: 1, Args: b.lockArgs()},
		Account: []molecule.AccountChar{{CharSetName: 2, Bytes: []byte("bob")}},
		Suffix:  []byte(".xxx.bit"),
		Nonce:   1,
	}
	b.sub.ID[3] = 0x33
	return b
}

func (b *txBuilder) lockArgs() []byte {
	return witness.BuildLockArgs(uint8(signlib.ETH), b.owner.addr, uint8(signlib.ETH), b.manager.addr)
}

func (b *txBuilder) mintSign(t *testing.T, expiredAt uint64) []byte {
	digest, err := signlib.GenDigest(signlib.ETH, le64(expiredAt), b.root)
	require.NoError(t, err)
	return witness.RawSignWitness{
		Version:            witness.SignWitnessVersion,
		Signature:          b.owner.sign(t, digest),
		SignRole:           []byte{byte(witness.LockRoleOwner)},
		ExpiredAt:          expiredAt,
		AccountListSmtRoot: b.root,
	}.Encode(witness.DataTypeSubAccountMintSign)
}

func (b *txBuilder) mutation(action witness.SubAccountAction, key, value []byte) witness.RawSubAccountWitness {
	return witness.RawSubAccountWitness{
		Version:       witness.SubAccountWitnessVersion,
		Action:        action,
		SignRole:      []byte{0},
		SignExpiredAt: le64(0),
		NewRoot:       b.root,
		Proof:         []byte{0x4c},
		SubAccount:    b.sub.Encode(),
		EditKey:       key,
		EditValue:     value,
	}
}

func (b *txBuilder) signedEdit(t *testing.T, signer ethKey, role witness.LockRole, key, value []byte, signExpiredAt uint64) []byte {
	w := b.mutation(witness.ActionEdit, key, value)
	w.SignRole = []byte{byte(role)}
	w.SignExpiredAt = le64(signExpiredAt)
	digest, err := signlib.GenDigest(signlib.ETH, b.sub.ID[:], key, value, le64(b.sub.Nonce), le64(signExpiredAt))
	require.NoError(t, err)
	w.Signature = signer.sign(t, digest)
	return w.Encode()
}

func lockWitness() []byte { return bytes.Repeat([]byte{0x55}, 85) }

func TestCheck_ManualCreateWithMintSign(t *testing.T) {
	if signlib.DevMode {
		t.Skip("signature checks are bypassed in das_dev builds")
	}
	b := newTxBuilder()
	fx := NewFixture("create",
		[][]byte{
			lockWitness(),
			b.mintSign(t, 1_900_000_000),
			b.mutation(witness.ActionCreate, witness.EditKeyManual, make([]byte, 8)).Encode(),
			b.signedEdit(t, b.owner, witness.LockRoleOwner, witness.EditKeyManager, b.lockArgs(), 1_900_000_000),
		},
		witness.SubAccountCellData{Flag: witness.FlagManual}.Encode(),
		b.lockArgs(),
	)

	cfg := DefaultConfig()
	lib := signlib.NewNativeSignLib(zaptest.NewLogger(t))
	r, err := Check(cfg, fx, lib, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.True(t, r.Verified)
	require.True(t, r.ContainsCreation)
	require.True(t, r.ContainsEdition)
	require.Len(t, r.Witnesses, 2)
	require.Equal(t, "bob.xxx.bit", r.Witnesses[0].Account)
	require.Equal(t, "proof", r.Witnesses[0].EditValue)
	require.Equal(t, "manager", r.Witnesses[1].EditKey)
	require.Equal(t, "owner", r.Witnesses[1].SignRole)
	require.Equal(t, "ETH", r.Witnesses[1].SignType)
	require.NotNil(t, r.MintSign)
	require.Equal(t, 1, r.MintSign.Index)
	require.Nil(t, r.PriceRules)

	var out strings.Builder
	require.NoError(t, r.WriteText(&out))
	require.Contains(t, out.String(), "signatures: ok")
}

func TestCheck_WrongSignerRejected(t *testing.T) {
	if signlib.DevMode {
		t.Skip("signature checks are bypassed in das_dev builds")
	}
	b := newTxBuilder()
	fx := NewFixture("edit",
		[][]byte{b.signedEdit(t, b.manager, witness.LockRoleOwner, witness.EditKeyOwner, b.lockArgs(), 5)},
		nil, nil)

	r, err := Check(DefaultConfig(), fx, signlib.NewNativeSignLib(nil), nil)
	require.ErrorIs(t, err, witness.ERR_SUB_ACCOUNT_SIG_VERIFY)
	require.Equal(t, int8(-43), witness.ERR_SUB_ACCOUNT_SIG_VERIFY.ExitCode())
	require.NotNil(t, r)
	require.False(t, r.Verified)
	require.Len(t, r.Witnesses, 1)

	// Inspecting without a SignLib only parses.
	r, err = Check(DefaultConfig(), fx, nil, nil)
	require.NoError(t, err)
	require.False(t, r.Verified)
}

func TestCheck_CustomRuleLoadsRules(t *testing.T) {
	b := newTxBuilder()
	rules := molecule.EncodeSubAccountRules([]molecule.SubAccountRule{
		{Index: 0, Name: []byte("short"), Price: 100},
		{Index: 1, Name: []byte("long"), Price: 10},
	})
	var lockHash [20]byte
	cell := witness.SubAccountCellData{
		Flag:           witness.FlagCustomRule,
		PriceRulesHash: witness.RulesHash(rules),
	}
	fx := NewFixture("rules",
		[][]byte{
			witness.EncodeRulesWitness(witness.DataTypeSubAccountPriceRule, witness.RulesWitnessVersion, rules),
			b.mutation(witness.ActionCreate, witness.EditKeyCustomRule, witness.EncodeChannel(lockHash, 7)).Encode(),
		},
		cell.Encode(), nil)

	r, err := Check(DefaultConfig(), fx, nil, nil)
	require.NoError(t, err)
	require.Equal(t, "custom_rule", r.Flag)
	require.NotNil(t, r.PriceRules)
	require.Equal(t, 2, r.PriceRules.Count)
	require.Nil(t, r.PreservedRules)
	require.Contains(t, r.Witnesses[0].EditValue, "fee=7")

	cell.PriceRulesHash[0] ^= 0xff
	fx.SubAccountCellData = hex.EncodeToString(cell.Encode())
	_, err = Check(DefaultConfig(), fx, nil, nil)
	require.ErrorIs(t, err, witness.ERR_CONFIG_RULES_HASH_MISMATCH)
}

func TestCheck_FlagOverride(t *testing.T) {
	b := newTxBuilder()
	fx := NewFixture("script",
		[][]byte{b.mutation(witness.ActionCreate, witness.EditKeyCustomScript, nil).Encode()},
		nil, nil)

	_, err := Check(DefaultConfig(), fx, nil, nil)
	require.ErrorIs(t, err, witness.ERR_WITNESS_EDIT_KEY_INVALID)

	fx.Flag = "custom_script"
	r, err := Check(DefaultConfig(), fx, nil, nil)
	require.NoError(t, err)
	require.Equal(t, "none", r.Witnesses[0].EditValue)

	fx.Flag = ""
	cfg := DefaultConfig()
	cfg.Flag = "custom_script"
	_, err = Check(cfg, fx, nil, nil)
	require.NoError(t, err)
}

func TestCheck_MissingWitnessIsSourceError(t *testing.T) {
	b := newTxBuilder()
	fx := NewFixture("missing",
		[][]byte{b.mutation(witness.ActionRecycle, nil, nil).Encode(), nil},
		nil, nil)
	_, err := Check(DefaultConfig(), fx, nil, nil)
	require.ErrorIs(t, err, witness.ERR_ITEM_MISSING)
	require.Equal(t, witness.CategorySource, witness.ERR_ITEM_MISSING.Category())
}
