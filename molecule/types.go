package molecule

const (
	AccountIDLength = 20
	HashLength      = 32
)

type Script struct {
	CodeHash [HashLength]byte
	HashType uint8
	Args     []byte
}

func DecodeScript(b []byte) (Script, error) {
	fields, err := table(b, "Script", 3)
	if err != nil {
		return Script{}, err
	}
	codeHash, err := fixed(fields[0], "Script.code_hash", HashLength)
	if err != nil {
		return Script{}, err
	}
	hashType, err := decodeU8(fields[1], "Script.hash_type")
	if err != nil {
		return Script{}, err
	}
	args, err := DecodeBytes(fields[2])
	if err != nil {
		return Script{}, err
	}
	s := Script{HashType: hashType, Args: args}
	copy(s.CodeHash[:], codeHash)
	return s, nil
}

func (s Script) Encode() []byte {
	return EncodeTable(s.CodeHash[:], []byte{s.HashType}, EncodeBytes(s.Args))
}

type AccountChar struct {
	CharSetName uint32
	Bytes       []byte
}

type Record struct {
	Type  []byte
	Key   []byte
	Label []byte
	Value []byte
	TTL   uint32
}

type Records []Record

// DecodeRecords accepts records written by newer schemas with extra trailing
// fields.
func DecodeRecords(b []byte) (Records, error) {
	return decodeRecords(b, table)
}

// DecodeRecordsStrict requires every record to have exactly the known fields.
func DecodeRecordsStrict(b []byte) (Records, error) {
	return decodeRecords(b, strictTable)
}

func decodeRecords(b []byte, split func([]byte, string, int) ([][]byte, error)) (Records, error) {
	items, err := dynvec(b, "Records")
	if err != nil {
		return nil, err
	}
	out := make(Records, 0, len(items))
	for _, item := range items {
		fields, err := split(item, "Record", 5)
		if err != nil {
			return nil, err
		}
		var r Record
		if r.Type, err = DecodeBytes(fields[0]); err != nil {
			return nil, err
		}
		if r.Key, err = DecodeBytes(fields[1]); err != nil {
			return nil, err
		}
		if r.Label, err = DecodeBytes(fields[2]); err != nil {
			return nil, err
		}
		if r.Value, err = DecodeBytes(fields[3]); err != nil {
			return nil, err
		}
		if r.TTL, err = decodeU32(fields[4], "Record.record_ttl"); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (rs Records) Encode() []byte {
	items := make([][]byte, 0, len(rs))
	for _, r := range rs {
		items = append(items, EncodeTable(
			EncodeBytes(r.Type),
			EncodeBytes(r.Key),
			EncodeBytes(r.Label),
			EncodeBytes(r.Value),
			EncodeU32(r.TTL),
		))
	}
	return EncodeDynvec(items...)
}

// SubAccount is the per-account state committed in the sub-account SMT.
type SubAccount struct {
	Lock                 Script
	ID                   [AccountIDLength]byte
	Account              []AccountChar
	Suffix               []byte
	RegisteredAt         uint64
	ExpiredAt            uint64
	Status               uint8
	Records              Records
	Nonce                uint64
	EnableSubAccount     uint8
	RenewSubAccountPrice uint64
}

// AccountString joins the account chars and the suffix, e.g. "alice.xxx.bit".
func (s *SubAccount) AccountString() string {
	var out []byte
	for _, c := range s.Account {
		out = append(out, c.Bytes...)
	}
	return string(append(out, s.Suffix...))
}

func DecodeSubAccount(b []byte) (*SubAccount, error) {
	fields, err := table(b, "SubAccount", 11)
	if err != nil {
		return nil, err
	}
	var s SubAccount
	if s.Lock, err = DecodeScript(fields[0]); err != nil {
		return nil, err
	}
	id, err := fixed(fields[1], "SubAccount.id", AccountIDLength)
	if err != nil {
		return nil, err
	}
	copy(s.ID[:], id)

	chars, err := dynvec(fields[2], "AccountChars")
	if err != nil {
		return nil, err
	}
	for _, item := range chars {
		cf, err := table(item, "AccountChar", 2)
		if err != nil {
			return nil, err
		}
		name, err := decodeU32(cf[0], "AccountChar.char_set_name")
		if err != nil {
			return nil, err
		}
		raw, err := DecodeBytes(cf[1])
		if err != nil {
			return nil, err
		}
		s.Account = append(s.Account, AccountChar{CharSetName: name, Bytes: raw})
	}

	if s.Suffix, err = DecodeBytes(fields[3]); err != nil {
		return nil, err
	}
	if s.RegisteredAt, err = decodeU64(fields[4], "SubAccount.registered_at"); err != nil {
		return nil, err
	}
	if s.ExpiredAt, err = decodeU64(fields[5], "SubAccount.expired_at"); err != nil {
		return nil, err
	}
	if s.Status, err = decodeU8(fields[6], "SubAccount.status"); err != nil {
		return nil, err
	}
	if s.Records, err = DecodeRecords(fields[7]); err != nil {
		return nil, err
	}
	if s.Nonce, err = decodeU64(fields[8], "SubAccount.nonce"); err != nil {
		return nil, err
	}
	if s.EnableSubAccount, err = decodeU8(fields[9], "SubAccount.enable_sub_account"); err != nil {
		return nil, err
	}
	if s.RenewSubAccountPrice, err = decodeU64(fields[10], "SubAccount.renew_sub_account_price"); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *SubAccount) Encode() []byte {
	chars := make([][]byte, 0, len(s.Account))
	for _, c := range s.Account {
		chars = append(chars, EncodeTable(EncodeU32(c.CharSetName), EncodeBytes(c.Bytes)))
	}
	return EncodeTable(
		s.Lock.Encode(),
		s.ID[:],
		EncodeDynvec(chars...),
		EncodeBytes(s.Suffix),
		EncodeU64(s.RegisteredAt),
		EncodeU64(s.ExpiredAt),
		[]byte{s.Status},
		s.Records.Encode(),
		EncodeU64(s.Nonce),
		[]byte{s.EnableSubAccount},
		EncodeU64(s.RenewSubAccountPrice),
	)
}

// SubAccountRule is a price or preserved-name rule. The AST is kept as its
// raw molecule bytes; evaluating it is the caller's concern.
type SubAccountRule struct {
	Index  uint32
	Name   []byte
	Note   []byte
	Price  uint64
	AST    []byte
	Status uint8
}

func DecodeSubAccountRules(b []byte) ([]SubAccountRule, error) {
	items, err := dynvec(b, "SubAccountRules")
	if err != nil {
		return nil, err
	}
	out := make([]SubAccountRule, 0, len(items))
	for _, item := range items {
		fields, err := table(item, "SubAccountRule", 6)
		if err != nil {
			return nil, err
		}
		var r SubAccountRule
		if r.Index, err = decodeU32(fields[0], "SubAccountRule.index"); err != nil {
			return nil, err
		}
		if r.Name, err = DecodeBytes(fields[1]); err != nil {
			return nil, err
		}
		if r.Note, err = DecodeBytes(fields[2]); err != nil {
			return nil, err
		}
		if r.Price, err = decodeU64(fields[3], "SubAccountRule.price"); err != nil {
			return nil, err
		}
		r.AST = append([]byte(nil), fields[4]...)
		if r.Status, err = decodeU8(fields[5], "SubAccountRule.status"); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func EncodeSubAccountRules(rules []SubAccountRule) []byte {
	items := make([][]byte, 0, len(rules))
	for _, r := range rules {
		ast := r.AST
		if ast == nil {
			ast = EncodeTable()
		}
		items = append(items, EncodeTable(
			EncodeU32(r.Index),
			EncodeBytes(r.Name),
			EncodeBytes(r.Note),
			EncodeU64(r.Price),
			ast,
			[]byte{r.Status},
		))
	}
	return EncodeDynvec(items...)
}
