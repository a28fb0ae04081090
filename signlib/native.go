package signlib

import (
	"bytes"
	"crypto/sha256"
	"strconv"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"go.uber.org/zap"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // address derivation for Dogecoin requires RIPEMD-160
	"golang.org/x/crypto/sha3"

	"das.dev/contracts/ckbhash"
)

const (
	secpSignatureSize = 65
	blake160Size      = ckbhash.Blake160Len
	addressSize       = 20
	tronAddressPrefix = 0x41
)

// NewNativeSignLib returns a SignLib backed by pure Go implementations of
// every routable algorithm.
func NewNativeSignLib(log *zap.Logger) *SignLib {
	return &SignLib{
		CKBSignhash: VerifierFunc(verifyCKBSignhash),
		CKBMultisig: VerifierFunc(verifyCKBMultisig),
		ETH:         VerifierFunc(verifyETH),
		TRON:        VerifierFunc(verifyTRON),
		Doge:        VerifierFunc(verifyDoge),
		Logger:      log,
	}
}

func blake160(b []byte) []byte { return ckbhash.Blake160(b) }

func keccak256(parts ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, p := range parts {
		_, _ = h.Write(p)
	}
	return h.Sum(nil)
}

func hash160(b []byte) []byte {
	s := sha256.Sum256(b)
	r := ripemd160.New()
	_, _ = r.Write(s[:])
	return r.Sum(nil)
}

// recoverRSV recovers the public key from an r||s||v signature where v is
// the recovery id, optionally offset by 27.
func recoverRSV(sig, hash []byte) (*btcec.PublicKey, int32) {
	if len(sig) != secpSignatureSize {
		return nil, ERROR_SECP_PARSE_SIGNATURE
	}
	v := sig[64]
	if v >= 27 {
		v -= 27
	}
	if v > 3 {
		return nil, ERROR_SECP_PARSE_SIGNATURE
	}
	compact := make([]byte, 0, secpSignatureSize)
	compact = append(compact, 27+v+4)
	compact = append(compact, sig[:64]...)
	pub, _, err := ecdsa.RecoverCompact(compact, hash)
	if err != nil {
		return nil, ERROR_SECP_RECOVER_PUBKEY
	}
	return pub, 0
}

func verifyCKBSignhash(_ int32, digest, signature, signer []byte) int32 {
	if len(signer) != blake160Size {
		return ERROR_ARGUMENTS_LEN
	}
	if len(signature) != secpSignatureSize {
		return ERROR_WITNESS_SIZE
	}
	pub, code := recoverRSV(signature, digest)
	if code != 0 {
		return code
	}
	if !bytes.Equal(blake160(pub.SerializeCompressed()), signer) {
		return ERROR_PUBKEY_BLAKE160_HASH
	}
	return 0
}

// verifyCKBMultisig expects signature = multisig_script || signatures where
// multisig_script = S(0) | R | M | N | blake160(pubkey) * N and signer is
// blake160(multisig_script).
func verifyCKBMultisig(_ int32, digest, signature, signer []byte) int32 {
	if len(signer) != blake160Size {
		return ERROR_ARGUMENTS_LEN
	}
	if len(signature) < 4 {
		return ERROR_WITNESS_SIZE
	}
	reserved, requireFirstN, threshold, pubkeysCnt := signature[0], int(signature[1]), int(signature[2]), int(signature[3])
	if reserved != 0 {
		return ERROR_INVALID_RESERVE_FIELD
	}
	if pubkeysCnt == 0 {
		return ERROR_INVALID_PUBKEYS_CNT
	}
	if threshold == 0 || threshold > pubkeysCnt {
		return ERROR_INVALID_THRESHOLD
	}
	if requireFirstN > threshold {
		return ERROR_INVALID_REQUIRE_FIRST_N
	}
	scriptLen := 4 + blake160Size*pubkeysCnt
	if len(signature) != scriptLen+secpSignatureSize*threshold {
		return ERROR_WITNESS_SIZE
	}
	script := signature[:scriptLen]
	if !bytes.Equal(blake160(script), signer) {
		return ERROR_MULTSIG_SCRIPT_HASH
	}

	used := make([]bool, pubkeysCnt)
	sigs := signature[scriptLen:]
	for i := 0; i < threshold; i++ {
		pub, code := recoverRSV(sigs[i*secpSignatureSize:(i+1)*secpSignatureSize], digest)
		if code != 0 {
			return code
		}
		h := blake160(pub.SerializeCompressed())
		matched := false
		for j := 0; j < pubkeysCnt; j++ {
			if used[j] {
				continue
			}
			if bytes.Equal(h, script[4+j*blake160Size:4+(j+1)*blake160Size]) {
				used[j] = true
				matched = true
				break
			}
		}
		if !matched {
			return ERROR_VERIFICATION
		}
	}
	for j := 0; j < requireFirstN; j++ {
		if !used[j] {
			return ERROR_VERIFICATION
		}
	}
	return 0
}

func personalHash(prefix string, msg []byte) []byte {
	return keccak256([]byte(prefix), []byte(strconv.Itoa(len(msg))), msg)
}

func ethAddress(pub *btcec.PublicKey) []byte {
	return keccak256(pub.SerializeUncompressed()[1:])[12:]
}

func verifyETH(_ int32, digest, signature, signer []byte) int32 {
	if len(signer) != addressSize {
		return ERROR_ARGUMENTS_LEN
	}
	pub, code := recoverRSV(signature, personalHash("\x19Ethereum Signed Message:\n", digest))
	if code != 0 {
		return code
	}
	if !bytes.Equal(ethAddress(pub), signer) {
		return ERROR_SECP_VERIFICATION
	}
	return 0
}

func verifyTRON(_ int32, digest, signature, signer []byte) int32 {
	if len(signer) == addressSize+1 && signer[0] == tronAddressPrefix {
		signer = signer[1:]
	}
	if len(signer) != addressSize {
		return ERROR_ARGUMENTS_LEN
	}
	pub, code := recoverRSV(signature, personalHash("\x19TRON Signed Message:\n", digest))
	if code != 0 {
		return code
	}
	if !bytes.Equal(ethAddress(pub), signer) {
		return ERROR_SECP_VERIFICATION
	}
	return 0
}

func dogeMessageHash(msg []byte) []byte {
	const magic = "Dogecoin Signed Message:\n"
	buf := make([]byte, 0, 2+len(magic)+9+len(msg))
	buf = append(buf, byte(len(magic)))
	buf = append(buf, magic...)
	buf = appendVarInt(buf, uint64(len(msg)))
	buf = append(buf, msg...)
	first := sha256.Sum256(buf)
	second := sha256.Sum256(first[:])
	return second[:]
}

func appendVarInt(b []byte, v uint64) []byte {
	switch {
	case v < 0xfd:
		return append(b, byte(v))
	case v <= 0xffff:
		return append(b, 0xfd, byte(v), byte(v>>8))
	case v <= 0xffffffff:
		return append(b, 0xfe, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
	default:
		return append(b, 0xff, byte(v), byte(v>>8), byte(v>>16), byte(v>>24),
			byte(v>>32), byte(v>>40), byte(v>>48), byte(v>>56))
	}
}

// verifyDoge takes a bitcoin-style compact signature (header byte first).
func verifyDoge(_ int32, digest, signature, signer []byte) int32 {
	if len(signer) != addressSize {
		return ERROR_ARGUMENTS_LEN
	}
	if len(signature) != secpSignatureSize {
		return ERROR_WITNESS_SIZE
	}
	pub, compressed, err := ecdsa.RecoverCompact(signature, dogeMessageHash(digest))
	if err != nil {
		return ERROR_SECP_RECOVER_PUBKEY
	}
	var serialized []byte
	if compressed {
		serialized = pub.SerializeCompressed()
	} else {
		serialized = pub.SerializeUncompressed()
	}
	if !bytes.Equal(hash160(serialized), signer) {
		return ERROR_SECP_VERIFICATION
	}
	return 0
}
