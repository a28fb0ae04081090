package molecule

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleSubAccount() *SubAccount {
	s := &SubAccount{
		Lock: Script{
			HashType: 1,
			Args:     []byte{0x03, 0xaa, 0xbb, 0x03, 0xcc, 0xdd},
		},
		Account: []AccountChar{
			{CharSetName: 2, Bytes: []byte("a")},
			{CharSetName: 2, Bytes: []byte("b")},
		},
		Suffix:       []byte(".xxx.bit"),
		RegisteredAt: 1000,
		ExpiredAt:    2000,
		Records: Records{
			{Type: []byte("address"), Key: []byte("60"), Value: []byte("0xabc"), TTL: 300},
		},
		Nonce: 7,
	}
	s.ID[0] = 0x11
	s.Lock.CodeHash[31] = 0x22
	return s
}

func TestSubAccount_EncodeDecode(t *testing.T) {
	want := sampleSubAccount()
	got, err := DecodeSubAccount(want.Encode())
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.Equal(t, "ab.xxx.bit", got.AccountString())
}

func TestSubAccount_TruncatedRejected(t *testing.T) {
	raw := sampleSubAccount().Encode()
	_, err := DecodeSubAccount(raw[:len(raw)-1])
	require.ErrorIs(t, err, ErrVerification)
}

func TestTable_CompatibleTrailingFields(t *testing.T) {
	s := Script{HashType: 0, Args: []byte{1, 2}}
	raw := EncodeTable(s.CodeHash[:], []byte{0}, EncodeBytes(s.Args), []byte("future"))
	got, err := DecodeScript(raw)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2}, got.Args)
}

func TestTable_TooFewFields(t *testing.T) {
	var h [32]byte
	_, err := DecodeScript(EncodeTable(h[:], []byte{0}))
	require.ErrorIs(t, err, ErrVerification)
}

func TestRecords_Empty(t *testing.T) {
	got, err := DecodeRecords(Records{}.Encode())
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestRecords_Malformed(t *testing.T) {
	_, err := DecodeRecords([]byte{0x01, 0x02})
	require.Error(t, err)
	_, err = DecodeRecords([]byte{0x08, 0, 0, 0, 0x09, 0, 0, 0})
	require.Error(t, err)
}

func recordWithExtraField() []byte {
	return EncodeDynvec(EncodeTable(
		EncodeBytes([]byte("profile")),
		EncodeBytes([]byte("twitter")),
		EncodeBytes(nil),
		EncodeBytes([]byte("@alice")),
		EncodeU32(300),
		[]byte("future"),
	))
}

func TestRecords_StrictRejectsExtraFields(t *testing.T) {
	raw := recordWithExtraField()

	got, err := DecodeRecords(raw)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, []byte("@alice"), got[0].Value)

	_, err = DecodeRecordsStrict(raw)
	require.ErrorIs(t, err, ErrVerification)

	want := Records{{Type: []byte("a"), Key: []byte("b"), Value: []byte("c"), TTL: 1}}
	strict, err := DecodeRecordsStrict(want.Encode())
	require.NoError(t, err)
	require.Equal(t, want, strict)
}

func TestBytes_CountMismatch(t *testing.T) {
	_, err := DecodeBytes([]byte{0x02, 0, 0, 0, 0xff})
	require.ErrorIs(t, err, ErrVerification)
}

func TestSubAccountRules_EncodeDecode(t *testing.T) {
	rules := []SubAccountRule{
		{Index: 0, Name: []byte("short"), Price: 100, AST: EncodeTable(), Status: 1},
		{Index: 1, Name: []byte("long"), Note: []byte("n"), Price: 5, AST: EncodeTable([]byte{0x01})},
	}
	got, err := DecodeSubAccountRules(EncodeSubAccountRules(rules))
	require.NoError(t, err)
	require.Equal(t, rules, got)
}
