//go:build das_signlib_dylib

package signlib

/*
#cgo linux LDFLAGS: -ldl
#include <dlfcn.h>
#include <stdint.h>
#include <stdlib.h>

// int validate(int type, uint8_t* message, uint8_t* lock_bytes, uint8_t* lock_args)
typedef int32_t (*das_validate_fn)(int32_t, const uint8_t*, const uint8_t*, const uint8_t*);
// int validate_str(int type, uint8_t* message, size_t message_len, uint8_t* lock_bytes, uint8_t* lock_args)
typedef int32_t (*das_validate_str_fn)(int32_t, const uint8_t*, size_t, const uint8_t*, const uint8_t*);

typedef struct {
	void* handle;
	das_validate_fn validate;
	das_validate_str_fn validate_str;
} das_sign_lib_t;

static int das_sign_lib_load(das_sign_lib_t* p, const char* path) {
	p->handle = dlopen(path, RTLD_NOW);
	if (!p->handle) return -1;

	p->validate = (das_validate_fn)dlsym(p->handle, "validate");
	// validate_str is absent from the CKB signhash and multisig libraries.
	p->validate_str = (das_validate_str_fn)dlsym(p->handle, "validate_str");

	if (!p->validate) {
		dlclose(p->handle);
		p->handle = NULL;
		return -2;
	}
	return 0;
}

static int32_t das_sign_lib_validate(
	das_sign_lib_t* p, int32_t type_no,
	const uint8_t* msg, const uint8_t* lock_bytes, const uint8_t* lock_args)
{
	if (!p || !p->validate) return -99;
	return p->validate(type_no, msg, lock_bytes, lock_args);
}

static int32_t das_sign_lib_validate_str(
	das_sign_lib_t* p, int32_t type_no,
	const uint8_t* msg, size_t msg_len, const uint8_t* lock_bytes, const uint8_t* lock_args)
{
	if (!p || !p->validate_str) return -99;
	return p->validate_str(type_no, msg, msg_len, lock_bytes, lock_args);
}

static void das_sign_lib_close(das_sign_lib_t* p) {
	if (p->handle) {
		dlclose(p->handle);
		p->handle = NULL;
	}
}
*/
import "C"

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unsafe"

	"golang.org/x/crypto/sha3"
)

// DylibVerifier calls a verification library loaded at runtime.
type DylibVerifier struct {
	p C.das_sign_lib_t
}

// LoadDylibVerifier opens the library at path. When sha3Hex is set the file
// must hash to it before it is loaded.
func LoadDylibVerifier(path, sha3Hex string) (*DylibVerifier, error) {
	if sha3Hex != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		h := sha3.New256()
		if _, err := io.Copy(h, f); err != nil {
			return nil, err
		}
		if actual := hex.EncodeToString(h.Sum(nil)); actual != strings.ToLower(sha3Hex) {
			return nil, fmt.Errorf("sign lib %s hash mismatch: expected %s, actual %s", path, sha3Hex, actual)
		}
	}

	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	var p C.das_sign_lib_t
	if rc := C.das_sign_lib_load(&p, cpath); rc != 0 {
		return nil, errors.New("failed to load sign lib " + path)
	}
	return &DylibVerifier{p: p}, nil
}

// Close releases the library handle.
func (d *DylibVerifier) Close() {
	C.das_sign_lib_close(&d.p)
}

func bytePtr(b []byte) *C.uint8_t {
	if len(b) == 0 {
		return nil
	}
	return (*C.uint8_t)(unsafe.Pointer(&b[0]))
}

// Verify prefers validate_str and falls back to the fixed-length validate
// entry point for libraries that only export it.
func (d *DylibVerifier) Verify(typeNo int32, digest, signature, signer []byte) int32 {
	if d.p.validate_str != nil {
		return int32(C.das_sign_lib_validate_str(&d.p, C.int32_t(typeNo),
			bytePtr(digest), C.size_t(len(digest)), bytePtr(signature), bytePtr(signer)))
	}
	return int32(C.das_sign_lib_validate(&d.p, C.int32_t(typeNo),
		bytePtr(digest), bytePtr(signature), bytePtr(signer)))
}

// LoadDylibSignLib loads one library per configured family and leaves the
// others on their native backend.
func LoadDylibSignLib(base *SignLib, paths map[LockType]DylibSpec) (*SignLib, func(), error) {
	out := *base
	var loaded []*DylibVerifier
	closeAll := func() {
		for _, v := range loaded {
			v.Close()
		}
	}
	for t, spec := range paths {
		v, err := LoadDylibVerifier(spec.Path, spec.SHA3)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		loaded = append(loaded, v)
		if err := out.set(t, v); err != nil {
			closeAll()
			return nil, nil, err
		}
	}
	return &out, closeAll, nil
}
