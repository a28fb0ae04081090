package witness

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewParser_ClassifiesWitnesses(t *testing.T) {
	src := MemSource{
		lockWitness(),
		EncodeWitness(DataTypeActionData, bytes.Repeat([]byte{1}, 40)),
		RawSignWitness{Version: SignWitnessVersion, Signature: make([]byte, 65), SignRole: []byte{0}, AccountListSmtRoot: make([]byte, 32)}.Encode(DataTypeSubAccountMintSign),
		EncodeRulesWitness(DataTypeSubAccountPriceRule, RulesWitnessVersion, rulesPayload(0, 2)),
		EncodeRulesWitness(DataTypeSubAccountPreservedRule, RulesWitnessVersion, rulesPayload(0, 1)),
		mutation(ActionCreate, EditKeyManual, make([]byte, 8)).Encode(),
		mutation(ActionRenew, []byte("expired_at"), le64(1)).Encode(),
		mutation(ActionCreate, EditKeyManual, make([]byte, 8)).Encode(),
		RawSignWitness{Version: SignWitnessVersion, Signature: make([]byte, 65), SignRole: []byte{0}, AccountListSmtRoot: make([]byte, 32)}.Encode(DataTypeSubAccountRenewSign),
	}

	p, err := NewParser(src, FlagManual, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	require.Equal(t, FlagManual, p.Flag())
	require.Equal(t, 3, p.Len())
	require.Equal(t, []int{5, 6, 7}, p.Indexes())
	require.Equal(t, 2, p.MintSignIndex)
	require.Equal(t, 8, p.RenewSignIndex)
	require.True(t, p.HasMintSign())
	require.True(t, p.HasRenewSign())
	require.Equal(t, []int{3}, p.PriceRuleIndexes)
	require.Equal(t, []int{4}, p.PreservedRuleIndexes)
	require.True(t, p.ContainsCreation)
	require.True(t, p.ContainsRenew)
	require.False(t, p.ContainsEdition)
	require.False(t, p.ContainsRecycle)
	require.False(t, p.OnlyContainsRecycle())
}

func TestNewParser_StopsAtEndOfDasSection(t *testing.T) {
	src := MemSource{
		lockWitness(),
		mutation(ActionRecycle, nil, nil).Encode(),
		lockWitness(),
		mutation(ActionCreate, EditKeyManual, make([]byte, 8)).Encode(),
	}
	p, err := NewParser(src, FlagManual)
	require.NoError(t, err)
	require.Equal(t, []int{1}, p.Indexes())
	require.True(t, p.OnlyContainsRecycle())
}

func TestNewParser_SkipsShortWitnesses(t *testing.T) {
	src := MemSource{
		{},
		[]byte("das"),
		mutation(ActionEdit, EditKeyOwner, testLockArgs()).Encode(),
		// A das witness that fits inside the probe window is not inspected.
		EncodeWitness(DataTypeSubAccount, []byte{2, 0, 0, 0}),
		mutation(ActionCreate, EditKeyManual, make([]byte, 8)).Encode(),
	}
	p, err := NewParser(src, FlagManual)
	require.NoError(t, err)
	require.Equal(t, []int{2, 4}, p.Indexes())
	require.True(t, p.ContainsEdition)
}

func TestNewParser_IgnoresUnknownDataTypes(t *testing.T) {
	src := MemSource{
		EncodeWitness(DataType(9999), bytes.Repeat([]byte{7}, 40)),
		EncodeWitness(DataTypeConfigCellSubAccount, bytes.Repeat([]byte{7}, 40)),
		mutation(ActionCreate, EditKeyManual, make([]byte, 8)).Encode(),
	}
	p, err := NewParser(src, FlagManual)
	require.NoError(t, err)
	require.Equal(t, []int{2}, p.Indexes())
}

func TestNewParser_WitnessEmpty(t *testing.T) {
	for name, src := range map[string]MemSource{
		"no witnesses":      {},
		"only lock":         {lockWitness()},
		"only unknown type": {EncodeWitness(DataType(9999), bytes.Repeat([]byte{7}, 40))},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewParser(src, FlagManual)
			require.ErrorIs(t, err, ERR_WITNESS_EMPTY)
			require.Equal(t, int8(49), ERR_WITNESS_EMPTY.ExitCode())
		})
	}
}

func TestNewParser_DuplicateSignWitness(t *testing.T) {
	sign := RawSignWitness{Version: SignWitnessVersion, Signature: make([]byte, 65), SignRole: []byte{0}, AccountListSmtRoot: make([]byte, 32)}
	src := MemSource{
		sign.Encode(DataTypeSubAccountMintSign),
		mutation(ActionCreate, EditKeyManual, make([]byte, 8)).Encode(),
		sign.Encode(DataTypeSubAccountMintSign),
	}

	_, err := NewParser(src, FlagManual)
	require.ErrorIs(t, err, ERR_WITNESS_DUPLICATED)
	var we *WitnessError
	require.True(t, errors.As(err, &we))
	require.Equal(t, 2, we.Index)

	p, err := NewParser(src, FlagManual, WithLastSignWins())
	require.NoError(t, err)
	require.Equal(t, 2, p.MintSignIndex)
}

func TestNewParser_SourceErrorIsFatal(t *testing.T) {
	src := MemSource{
		mutation(ActionCreate, EditKeyManual, make([]byte, 8)).Encode(),
		nil,
	}
	_, err := NewParser(src, FlagManual)
	require.ErrorIs(t, err, ERR_ITEM_MISSING)
	require.Contains(t, err.Error(), "witnesses[1]")
}

func TestNewParser_MalformedProbeIsStructural(t *testing.T) {
	w := EncodeWitness(DataTypeSubAccount, []byte{2, 0, 0, 0}, bytes.Repeat([]byte{'x'}, 30))
	_, err := NewParser(MemSource{w}, FlagManual)
	require.ErrorIs(t, err, ERR_WITNESS_STRUCTURE)
}

func TestNewParser_NilSource(t *testing.T) {
	_, err := NewParser(nil, FlagManual)
	require.ErrorIs(t, err, ERR_INVALID_ARGUMENT)
}
