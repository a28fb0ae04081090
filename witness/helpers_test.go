package witness

import (
	"bytes"
	"encoding/binary"

	"das.dev/contracts/molecule"
	"das.dev/contracts/signlib"
)

var (
	ownerArgs   = bytes.Repeat([]byte{0xa1}, 20)
	managerArgs = bytes.Repeat([]byte{0xb2}, 20)
)

func testLockArgs() []byte {
	return BuildLockArgs(uint8(signlib.ETH), ownerArgs, uint8(signlib.TRON), managerArgs)
}

func testSubAccount() *molecule.SubAccount {
	s := &molecule.SubAccount{
		Lock:         molecule.Script{HashType: 1, Args: testLockArgs()},
		Account:      []molecule.AccountChar{{CharSetName: 2, Bytes: []byte("alice")}},
		Suffix:       []byte(".xxx.bit"),
		RegisteredAt: 1_700_000_000,
		ExpiredAt:    1_731_536_000,
		Nonce:        3,
	}
	s.ID[0] = 0x42
	return s
}

func le64(v uint64) []byte {
	return binary.LittleEndian.AppendUint64(nil, v)
}

func mutation(action SubAccountAction, key, value []byte) RawSubAccountWitness {
	return RawSubAccountWitness{
		Version:       SubAccountWitnessVersion,
		Action:        action,
		Signature:     bytes.Repeat([]byte{0x5e}, 65),
		SignRole:      []byte{0},
		SignExpiredAt: le64(1_700_086_400),
		NewRoot:       bytes.Repeat([]byte{0x0f}, 32),
		Proof:         []byte{0x4c, 0x4f, 0x00},
		SubAccount:    testSubAccount().Encode(),
		EditKey:       key,
		EditValue:     value,
	}
}

func manualCellData() []byte {
	return SubAccountCellData{Flag: FlagManual}.Encode()
}

func rulesPayload(from, to uint32) []byte {
	var rules []molecule.SubAccountRule
	for i := from; i < to; i++ {
		rules = append(rules, molecule.SubAccountRule{
			Index:  i,
			Name:   []byte("rule"),
			Price:  uint64(i+1) * 100_000_000,
			Status: 1,
		})
	}
	return molecule.EncodeSubAccountRules(rules)
}

// lockWitness stands in for the secp256k1 WitnessArgs that precede das
// witnesses in a real transaction.
func lockWitness() []byte {
	return bytes.Repeat([]byte{0x55}, 85)
}
