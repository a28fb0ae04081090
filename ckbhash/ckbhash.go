// Package ckbhash is the chain's default hash: blake2b-256 personalized with
// "ckb-default-hash". Rule commitments, signature digests and blake160 lock
// args are all built on it.
package ckbhash

import (
	"hash"

	"github.com/minio/blake2b-simd"
)

const (
	Size        = 32
	Blake160Len = 20
)

var personalization = []byte("ckb-default-hash")

var config = &blake2b.Config{Size: Size, Person: personalization}

// New returns a streaming hasher.
func New() hash.Hash {
	h, err := blake2b.New(config)
	if err != nil {
		// The config is constant and valid.
		panic(err)
	}
	return h
}

// Sum hashes the concatenation of parts.
func Sum(parts ...[]byte) [Size]byte {
	h := New()
	for _, p := range parts {
		_, _ = h.Write(p)
	}
	var out [Size]byte
	h.Sum(out[:0])
	return out
}

// Blake160 is the first 20 bytes of Sum(b).
func Blake160(b []byte) []byte {
	sum := Sum(b)
	return sum[:Blake160Len]
}
