package signlib

import "fmt"

// DylibSpec locates a runtime-loaded verification library.
type DylibSpec struct {
	Path string
	// SHA3 pins the SHA3-256 of the library file, hex encoded. Optional.
	SHA3 string
}

func (s *SignLib) set(t LockType, v Verifier) error {
	switch t {
	case CKBSingle:
		s.CKBSignhash = v
	case CKBMulti:
		s.CKBMultisig = v
	case ETH, ETHTypedData:
		s.ETH = v
	case TRON:
		s.TRON = v
	case Doge:
		s.Doge = v
	default:
		return fmt.Errorf("%w: %s", ErrUndefinedLockType, t)
	}
	return nil
}
