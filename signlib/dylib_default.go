//go:build !das_signlib_dylib

package signlib

import "errors"

// LoadDylibSignLib needs a binary built with the das_signlib_dylib tag. With
// no libraries configured the native backends are returned as they are.
func LoadDylibSignLib(base *SignLib, paths map[LockType]DylibSpec) (*SignLib, func(), error) {
	if len(paths) == 0 {
		return base, func() {}, nil
	}
	return nil, nil, errors.New("sign lib dylibs configured but binary built without das_signlib_dylib")
}
