package witness

import "das.dev/contracts/ckbhash"

func blake2b256(b []byte) [32]byte {
	return ckbhash.Sum(b)
}
