package witness

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode names a rejection reason. It is itself an error so callers can
// match with errors.Is(err, ERR_WITNESS_EMPTY).
type ErrorCode string

const (
	// Host read failures.
	ERR_INDEX_OUT_OF_BOUND ErrorCode = "IndexOutOfBound"
	ERR_ITEM_MISSING       ErrorCode = "ItemMissing"
	ERR_LENGTH_NOT_ENOUGH  ErrorCode = "LengthNotEnough"
	ERR_ENCODING           ErrorCode = "Encoding"

	ERR_INVALID_ARGUMENT ErrorCode = "InvalidArgument"

	ERR_WITNESS_STRUCTURE             ErrorCode = "WitnessStructureError"
	ERR_WITNESS_ENTITY_DECODING       ErrorCode = "WitnessEntityDecodingError"
	ERR_WITNESS_EMPTY                 ErrorCode = "WitnessEmpty"
	ERR_WITNESS_DUPLICATED            ErrorCode = "WitnessDuplicated"
	ERR_WITNESS_VERSION_OR_TYPE       ErrorCode = "WitnessVersionOrTypeInvalid"
	ERR_WITNESS_VERSION_UNDEFINED     ErrorCode = "WitnessVersionUndefined"
	ERR_WITNESS_PARSING               ErrorCode = "WitnessParsingError"
	ERR_WITNESS_EDIT_VALUE            ErrorCode = "WitnessEditValueError"
	ERR_NEW_EXPIRED_AT_IS_REQUIRED    ErrorCode = "NewExpiredAtIsRequired"
	ERR_CONFIG_RULES_HASH_MISMATCH    ErrorCode = "ConfigRulesHashMismatch"
	ERR_WITNESS_EDIT_KEY_INVALID      ErrorCode = "WitnessEditKeyInvalid"
	ERR_SUB_ACCOUNT_SIG_VERIFY        ErrorCode = "SubAccountSigVerifyError"
	ERR_UNDEFINED_DAS_LOCK_TYPE       ErrorCode = "UndefinedDasLockType"
	ERR_SUB_ACCOUNT_CELL_DATA_INVALID ErrorCode = "InvalidCellData"
)

type Category uint8

const (
	CategorySource Category = iota
	CategoryStructure
	CategoryConsistency
	CategoryAuthorization
	CategoryConfiguration
)

func (c Category) String() string {
	switch c {
	case CategorySource:
		return "source"
	case CategoryStructure:
		return "structure"
	case CategoryConsistency:
		return "consistency"
	case CategoryAuthorization:
		return "authorization"
	case CategoryConfiguration:
		return "configuration"
	default:
		return "unknown"
	}
}

type codeInfo struct {
	category Category
	exit     int8
}

// Exit codes follow the registry's error table; codes introduced by this
// module take free slots next to their relatives.
var codeTable = map[ErrorCode]codeInfo{
	ERR_INDEX_OUT_OF_BOUND: {CategorySource, 1},
	ERR_ITEM_MISSING:       {CategorySource, 2},
	ERR_LENGTH_NOT_ENOUGH:  {CategorySource, 3},
	ERR_ENCODING:           {CategorySource, 4},

	ERR_INVALID_ARGUMENT:              {CategoryStructure, 5},
	ERR_SUB_ACCOUNT_CELL_DATA_INVALID: {CategoryStructure, 7},

	ERR_WITNESS_STRUCTURE:          {CategoryStructure, 40},
	ERR_WITNESS_ENTITY_DECODING:    {CategoryStructure, 48},
	ERR_WITNESS_EMPTY:              {CategoryStructure, 49},
	ERR_WITNESS_VERSION_OR_TYPE:    {CategoryStructure, 52},
	ERR_WITNESS_VERSION_UNDEFINED:  {CategoryStructure, 53},
	ERR_WITNESS_DUPLICATED:         {CategoryStructure, 54},
	ERR_WITNESS_PARSING:            {CategoryStructure, -30},
	ERR_WITNESS_EDIT_VALUE:         {CategoryStructure, -29},
	ERR_NEW_EXPIRED_AT_IS_REQUIRED: {CategoryStructure, -28},

	ERR_CONFIG_RULES_HASH_MISMATCH: {CategoryConsistency, -27},

	ERR_WITNESS_EDIT_KEY_INVALID: {CategoryConfiguration, -26},

	ERR_SUB_ACCOUNT_SIG_VERIFY:  {CategoryAuthorization, -43},
	ERR_UNDEFINED_DAS_LOCK_TYPE: {CategoryAuthorization, -25},
}

func (c ErrorCode) Error() string { return string(c) }

func (c ErrorCode) Category() Category {
	if info, ok := codeTable[c]; ok {
		return info.category
	}
	return CategoryStructure
}

// ExitCode is the script exit code the host sees for this rejection.
func (c ErrorCode) ExitCode() int8 {
	if info, ok := codeTable[c]; ok {
		return info.exit
	}
	return 5
}

// WitnessError carries the diagnostics of one rejection. Index is the
// transaction witness index, or -1 when the error is not tied to a witness.
type WitnessError struct {
	Code     ErrorCode
	Index    int
	Field    string
	Expected string
	Actual   string
	Msg      string
	Err      error
}

func (e *WitnessError) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString(string(e.Code))
	if e.Index >= 0 {
		fmt.Fprintf(&b, " witnesses[%d]", e.Index)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " %s", e.Field)
	}
	if e.Msg != "" {
		fmt.Fprintf(&b, ": %s", e.Msg)
	}
	if e.Expected != "" || e.Actual != "" {
		fmt.Fprintf(&b, " (expected: %s, actual: %s)", e.Expected, e.Actual)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *WitnessError) Is(target error) bool {
	c, ok := target.(ErrorCode)
	return ok && e != nil && c == e.Code
}

func (e *WitnessError) Unwrap() error { return e.Err }

func (e *WitnessError) Category() Category { return e.Code.Category() }

// CodeOf finds the rejection code anywhere in err's chain.
func CodeOf(err error) (ErrorCode, bool) {
	var we *WitnessError
	if errors.As(err, &we) {
		return we.Code, true
	}
	var c ErrorCode
	if errors.As(err, &c) {
		return c, true
	}
	return "", false
}

func werr(code ErrorCode, index int, field, format string, args ...any) error {
	return &WitnessError{Code: code, Index: index, Field: field, Msg: fmt.Sprintf(format, args...)}
}

func structErr(index int, field, format string, args ...any) error {
	return werr(ERR_WITNESS_STRUCTURE, index, field, format, args...)
}
