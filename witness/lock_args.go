package witness

// das-lock args: owner_type(1) | owner_args | manager_type(1) | manager_args,
// with both halves of equal length. Odd-length args are malformed and every
// getter reports them as absent.

func lockArgsHalf(args []byte) int {
	if len(args)%2 != 0 {
		return 0
	}
	return len(args) / 2
}

func GetOwnerType(args []byte) (uint8, bool) {
	if lockArgsHalf(args) < 1 {
		return 0, false
	}
	return args[0], true
}

func GetOwnerLockArgs(args []byte) []byte {
	h := lockArgsHalf(args)
	if h < 1 {
		return nil
	}
	return args[1:h]
}

func GetManagerType(args []byte) (uint8, bool) {
	h := lockArgsHalf(args)
	if h < 1 {
		return 0, false
	}
	return args[h], true
}

func GetManagerLockArgs(args []byte) []byte {
	h := lockArgsHalf(args)
	if h < 1 {
		return nil
	}
	return args[h+1 : 2*h]
}

// BuildLockArgs joins owner and manager halves.
func BuildLockArgs(ownerType uint8, owner []byte, managerType uint8, manager []byte) []byte {
	out := make([]byte, 0, 2+len(owner)+len(manager))
	out = append(out, ownerType)
	out = append(out, owner...)
	out = append(out, managerType)
	return append(out, manager...)
}
