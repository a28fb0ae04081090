package witness

import "fmt"

// Binary format: 'das'(3) + DATA_TYPE(4) + length-prefixed fields.
const (
	WITNESS_HEADER_BYTES = 3
	WITNESS_TYPE_BYTES   = 4
	WITNESS_LENGTH_BYTES = 4

	SUB_ACCOUNT_WITNESS_VERSION_BYTES = WITNESS_LENGTH_BYTES + 4
	// "recycle" is the longest action name.
	SUB_ACCOUNT_WITNESS_ACTION_BYTES = WITNESS_LENGTH_BYTES + 7

	PROBE_BYTES = WITNESS_HEADER_BYTES + WITNESS_TYPE_BYTES +
		SUB_ACCOUNT_WITNESS_VERSION_BYTES + SUB_ACCOUNT_WITNESS_ACTION_BYTES

	SubAccountWitnessVersion uint32 = 2
	SignWitnessVersion       uint32 = 1
	RulesWitnessVersion      uint32 = 1

	RULES_HASH_BYTES = 10
)

var WITNESS_HEADER = [WITNESS_HEADER_BYTES]byte{'d', 'a', 's'}

// DataType is the 4-byte type tag following the witness header.
type DataType uint32

const (
	DataTypeActionData DataType = iota
	DataTypeAccountCellData
	DataTypeAccountSaleCellData
	DataTypeAccountAuctionCellData
	DataTypeProposalCellData
	DataTypePreAccountCellData
	DataTypeIncomeCellData
	DataTypeOfferCellData
	DataTypeSubAccount
	DataTypeSubAccountMintSign
	DataTypeReverseSmt
	DataTypeSubAccountPriceRule
	DataTypeSubAccountPreservedRule
	DataTypeSubAccountRenewSign
	DataTypeDeviceKeyListEntityData
)

const (
	DataTypeConfigCellAccount DataType = 100 + iota
	DataTypeConfigCellApply
	DataTypeConfigCellIncome
	DataTypeConfigCellMain
	DataTypeConfigCellPrice
	DataTypeConfigCellProposal
	DataTypeConfigCellProfitRate
	DataTypeConfigCellRecordKeyNamespace
	DataTypeConfigCellRelease
	DataTypeConfigCellUnAvailableAccount
	DataTypeConfigCellSecondaryMarket
	DataTypeConfigCellReverseResolution
	DataTypeConfigCellSubAccount
	DataTypeConfigCellSubAccountBetaList
	DataTypeConfigCellSystemStatus
	DataTypeConfigCellSMTNodeWhitelist
)

var dataTypeNames = map[DataType]string{
	DataTypeActionData:              "ActionData",
	DataTypeAccountCellData:         "AccountCellData",
	DataTypeAccountSaleCellData:     "AccountSaleCellData",
	DataTypeAccountAuctionCellData:  "AccountAuctionCellData",
	DataTypeProposalCellData:        "ProposalCellData",
	DataTypePreAccountCellData:      "PreAccountCellData",
	DataTypeIncomeCellData:          "IncomeCellData",
	DataTypeOfferCellData:           "OfferCellData",
	DataTypeSubAccount:              "SubAccount",
	DataTypeSubAccountMintSign:      "SubAccountMintSign",
	DataTypeReverseSmt:              "ReverseSmt",
	DataTypeSubAccountPriceRule:     "SubAccountPriceRule",
	DataTypeSubAccountPreservedRule: "SubAccountPreservedRule",
	DataTypeSubAccountRenewSign:     "SubAccountRenewSign",
	DataTypeDeviceKeyListEntityData: "DeviceKeyListEntityData",
}

func (d DataType) String() string {
	if n, ok := dataTypeNames[d]; ok {
		return n
	}
	if d >= DataTypeConfigCellAccount && d <= DataTypeConfigCellSMTNodeWhitelist {
		return fmt.Sprintf("ConfigCell(%d)", uint32(d))
	}
	return fmt.Sprintf("DataType(%d)", uint32(d))
}

// Known reports whether d is a data type defined by the registry. Unknown
// types are tolerated by the classifier so new witness kinds can ship without
// upgrading every script.
func (d DataType) Known() bool {
	if _, ok := dataTypeNames[d]; ok {
		return true
	}
	return d >= DataTypeConfigCellAccount && d <= DataTypeConfigCellSMTNodeWhitelist
}

type SubAccountAction uint8

const (
	ActionCreate SubAccountAction = iota
	ActionEdit
	ActionRenew
	ActionRecycle
)

var actionNames = [...]string{
	ActionCreate:  "create",
	ActionEdit:    "edit",
	ActionRenew:   "renew",
	ActionRecycle: "recycle",
}

func (a SubAccountAction) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return fmt.Sprintf("action(%d)", uint8(a))
}

func ParseSubAccountAction(b []byte) (SubAccountAction, bool) {
	for i, name := range actionNames {
		if string(b) == name {
			return SubAccountAction(i), true
		}
	}
	return 0, false
}

// SubAccountConfigFlag selects how sub-account creation and renewal are
// authorized for one parent account.
type SubAccountConfigFlag uint8

const (
	FlagManual       SubAccountConfigFlag = 0
	FlagCustomScript SubAccountConfigFlag = 1
	FlagCustomRule   SubAccountConfigFlag = 255
)

func (f SubAccountConfigFlag) String() string {
	switch f {
	case FlagManual:
		return "manual"
	case FlagCustomScript:
		return "custom_script"
	case FlagCustomRule:
		return "custom_rule"
	default:
		return fmt.Sprintf("flag(%d)", uint8(f))
	}
}

func ParseSubAccountConfigFlag(s string) (SubAccountConfigFlag, error) {
	switch s {
	case "manual", "":
		return FlagManual, nil
	case "custom_script":
		return FlagCustomScript, nil
	case "custom_rule":
		return FlagCustomRule, nil
	default:
		return 0, fmt.Errorf("unknown sub-account config flag %q", s)
	}
}

type LockRole uint8

const (
	LockRoleOwner   LockRole = 0
	LockRoleManager LockRole = 1
)

func (r LockRole) String() string {
	if r == LockRoleOwner {
		return "owner"
	}
	return "manager"
}

var (
	EditKeyManual       = []byte("manual")
	EditKeyCustomScript = []byte("custom_script")
	EditKeyCustomRule   = []byte("custom_rule")
	EditKeyOwner        = []byte("owner")
	EditKeyManager      = []byte("manager")
	EditKeyRecords      = []byte("records")
)
