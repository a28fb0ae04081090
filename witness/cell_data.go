package witness

import "encoding/binary"

// Sub-account cell data layout:
//
//	smt_root(32) | das_profit(8) | owner_profit(8) | flag(1) | flag specific ...
//
// flag == custom_script: custom_script(32) | custom_script_args(10)
// flag == custom_rule:   price_rules_hash(10) | preserved_rules_hash(10)
const (
	cellSmtRootEnd     = 32
	cellDasProfitEnd   = 40
	cellOwnerProfitEnd = 48
	cellFlagEnd        = 49

	cellCustomScriptEnd     = cellFlagEnd + 32
	cellCustomScriptArgsEnd = cellCustomScriptEnd + 10

	cellPriceRulesHashEnd     = cellFlagEnd + RULES_HASH_BYTES
	cellPreservedRulesHashEnd = cellPriceRulesHashEnd + RULES_HASH_BYTES
)

func GetSmtRoot(data []byte) ([]byte, bool) {
	return slice(data, 0, cellSmtRootEnd)
}

func GetDasProfit(data []byte) (uint64, bool) {
	v, ok := slice(data, cellSmtRootEnd, cellDasProfitEnd)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint64(v), true
}

func GetOwnerProfit(data []byte) (uint64, bool) {
	v, ok := slice(data, cellDasProfitEnd, cellOwnerProfitEnd)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint64(v), true
}

// GetFlag defaults to manual for cell data written before the flag existed.
func GetFlag(data []byte) (SubAccountConfigFlag, bool) {
	v, ok := slice(data, cellOwnerProfitEnd, cellFlagEnd)
	if !ok {
		return FlagManual, len(data) == cellOwnerProfitEnd
	}
	switch f := SubAccountConfigFlag(v[0]); f {
	case FlagManual, FlagCustomScript, FlagCustomRule:
		return f, true
	default:
		return f, false
	}
}

func GetCustomScript(data []byte) ([]byte, bool) {
	return slice(data, cellFlagEnd, cellCustomScriptEnd)
}

func GetCustomScriptArgs(data []byte) ([]byte, bool) {
	return slice(data, cellCustomScriptEnd, cellCustomScriptArgsEnd)
}

// GetPriceRulesHash reports false unless the flag is custom_rule; other
// layouts reuse these bytes.
func GetPriceRulesHash(data []byte) ([]byte, bool) {
	if !hasFlag(data, FlagCustomRule) {
		return nil, false
	}
	return slice(data, cellFlagEnd, cellPriceRulesHashEnd)
}

func GetPreservedRulesHash(data []byte) ([]byte, bool) {
	if !hasFlag(data, FlagCustomRule) {
		return nil, false
	}
	return slice(data, cellPriceRulesHashEnd, cellPreservedRulesHashEnd)
}

func hasFlag(data []byte, want SubAccountConfigFlag) bool {
	f, ok := GetFlag(data)
	return ok && f == want
}

func slice(data []byte, from, to int) ([]byte, bool) {
	if len(data) < to {
		return nil, false
	}
	return data[from:to], true
}

// SubAccountCellData builds cell data; used by fixtures and tests.
type SubAccountCellData struct {
	SmtRoot            [32]byte
	DasProfit          uint64
	OwnerProfit        uint64
	Flag               SubAccountConfigFlag
	CustomScript       [32]byte
	CustomScriptArgs   [10]byte
	PriceRulesHash     [RULES_HASH_BYTES]byte
	PreservedRulesHash [RULES_HASH_BYTES]byte
}

func (d SubAccountCellData) Encode() []byte {
	out := make([]byte, 0, cellCustomScriptArgsEnd)
	out = append(out, d.SmtRoot[:]...)
	out = binary.LittleEndian.AppendUint64(out, d.DasProfit)
	out = binary.LittleEndian.AppendUint64(out, d.OwnerProfit)
	out = append(out, byte(d.Flag))
	switch d.Flag {
	case FlagCustomScript:
		out = append(out, d.CustomScript[:]...)
		out = append(out, d.CustomScriptArgs[:]...)
	case FlagCustomRule:
		out = append(out, d.PriceRulesHash[:]...)
		out = append(out, d.PreservedRulesHash[:]...)
	}
	return out
}
