package signlib

import (
	"errors"
	"fmt"
)

// Return codes shared by the native verification routines. Values follow the
// CKB system lock scripts so codes from loaded libraries and native backends
// read the same.
const (
	ERROR_ARGUMENTS_LEN           int32 = -1
	ERROR_ENCODING                int32 = -2
	ERROR_SECP_RECOVER_PUBKEY     int32 = -11
	ERROR_SECP_VERIFICATION       int32 = -12
	ERROR_SECP_PARSE_SIGNATURE    int32 = -14
	ERROR_WITNESS_SIZE            int32 = -22
	ERROR_PUBKEY_BLAKE160_HASH    int32 = -31
	ERROR_INVALID_RESERVE_FIELD   int32 = -41
	ERROR_INVALID_PUBKEYS_CNT     int32 = -42
	ERROR_INVALID_THRESHOLD       int32 = -43
	ERROR_INVALID_REQUIRE_FIRST_N int32 = -44
	ERROR_MULTSIG_SCRIPT_HASH     int32 = -51
	ERROR_VERIFICATION            int32 = -52

	ERROR_UNDEFINED_DAS_LOCK_TYPE int32 = 110
)

var (
	ErrUndefinedLockType = errors.New("undefined signature algorithm")
	ErrBackendNotLoaded  = errors.New("signature backend not loaded")
)

// CodeError is a nonzero return code from a verification routine, passed
// through unchanged.
type CodeError struct {
	LockType LockType
	Code     int32
}

func (e *CodeError) Error() string {
	return fmt.Sprintf("%s signature verification failed: code=%d", e.LockType, e.Code)
}

// Code extracts the native return code from err, if any.
func Code(err error) (int32, bool) {
	var ce *CodeError
	if errors.As(err, &ce) {
		return ce.Code, true
	}
	if errors.Is(err, ErrUndefinedLockType) {
		return ERROR_UNDEFINED_DAS_LOCK_TYPE, true
	}
	return 0, false
}
