package signlib

import "fmt"

// LockType is the das-lock algorithm id stored in the first byte of each
// half of das-lock args.
type LockType uint8

const (
	CKBSingle    LockType = 0
	CKBMulti     LockType = 1
	XXX          LockType = 2
	ETH          LockType = 3
	TRON         LockType = 4
	ETHTypedData LockType = 5
	MIXIN        LockType = 6
	Doge         LockType = 7
	WebAuthn     LockType = 8
)

var lockTypeNames = map[LockType]string{
	CKBSingle:    "CKBSingle",
	CKBMulti:     "CKBMulti",
	XXX:          "XXX",
	ETH:          "ETH",
	TRON:         "TRON",
	ETHTypedData: "ETHTypedData",
	MIXIN:        "MIXIN",
	Doge:         "Doge",
	WebAuthn:     "WebAuthn",
}

func (t LockType) String() string {
	if n, ok := lockTypeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("LockType(%d)", uint8(t))
}

// ParseLockType maps a raw byte to a defined lock type.
func ParseLockType(v uint8) (LockType, bool) {
	t := LockType(v)
	_, ok := lockTypeNames[t]
	return t, ok
}
