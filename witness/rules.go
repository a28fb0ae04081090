package witness

import (
	"bytes"
	"encoding/hex"
	"strconv"

	"go.uber.org/zap"

	"das.dev/contracts/molecule"
)

// RuleSet is the decoded price or preserved rule list of a transaction.
type RuleSet struct {
	Kind  DataType
	Rules []molecule.SubAccountRule
	// Hash is blake2b(blake2b(rules_0) || blake2b(rules_1) || ...); its first
	// 10 bytes are committed in the sub-account cell data.
	Hash [32]byte
}

// GetRules loads the rules of kind and checks them against the hash committed
// in cellData. It returns nil, nil when no rules are committed and none are
// present.
func (p *Parser) GetRules(cellData []byte, kind DataType) (*RuleSet, error) {
	var (
		indexes  []int
		expected []byte
		ok       bool
	)
	switch kind {
	case DataTypeSubAccountPriceRule:
		indexes = p.PriceRuleIndexes
		expected, ok = GetPriceRulesHash(cellData)
	case DataTypeSubAccountPreservedRule:
		indexes = p.PreservedRuleIndexes
		expected, ok = GetPreservedRulesHash(cellData)
	default:
		return nil, werr(ERR_INVALID_ARGUMENT, -1, "kind", "%s is not a rule witness type", kind)
	}

	if len(indexes) == 0 {
		if !ok || isZero(expected) {
			return nil, nil
		}
		p.log.Warn("rules are committed but not found in witnesses", zap.Stringer("kind", kind))
		return nil, werr(ERR_WITNESS_EMPTY, -1, kind.String(), "rules are committed but not found in witnesses")
	}

	hash, err := p.hashRules(indexes, kind)
	if err != nil {
		return nil, err
	}
	if !ok || !bytes.Equal(expected, hash[:RULES_HASH_BYTES]) {
		p.log.Warn("rules hash mismatched",
			zap.Stringer("kind", kind),
			zap.String("in_data", hex.EncodeToString(expected)),
			zap.String("calculated", hex.EncodeToString(hash[:RULES_HASH_BYTES])),
		)
		return nil, &WitnessError{
			Code:     ERR_CONFIG_RULES_HASH_MISMATCH,
			Index:    -1,
			Field:    kind.String(),
			Msg:      "the hash of rules is mismatched",
			Expected: hex.EncodeToString(expected),
			Actual:   hex.EncodeToString(hash[:RULES_HASH_BYTES]),
		}
	}

	rules, err := p.decodeRules(indexes, kind)
	if err != nil {
		return nil, err
	}
	return &RuleSet{Kind: kind, Rules: rules, Hash: hash}, nil
}

func (p *Parser) readRulesWitness(index int, kind DataType) (version, rules []byte, err error) {
	raw, err := loadDasWitness(p.src, index, kind)
	if err != nil {
		return nil, nil, err
	}
	r := newFieldReader(index, raw)
	if version, err = r.next("version"); err != nil {
		return nil, nil, err
	}
	if rules, err = r.next("rules"); err != nil {
		return nil, nil, err
	}
	return version, rules, nil
}

// hashRules is the first pass: only the rules payloads are hashed, nothing is
// decoded yet.
func (p *Parser) hashRules(indexes []int, kind DataType) ([32]byte, error) {
	concat := make([]byte, 0, 32*len(indexes))
	for _, index := range indexes {
		p.log.Debug("hashing rules witness", zap.Int("index", index), zap.Stringer("kind", kind))
		_, rules, err := p.readRulesWitness(index, kind)
		if err != nil {
			return [32]byte{}, err
		}
		h := blake2b256(rules)
		concat = append(concat, h[:]...)
	}
	return blake2b256(concat), nil
}

func (p *Parser) decodeRules(indexes []int, kind DataType) ([]molecule.SubAccountRule, error) {
	var out []molecule.SubAccountRule
	for _, index := range indexes {
		p.log.Debug("decoding rules witness", zap.Int("index", index), zap.Stringer("kind", kind))
		versionBytes, rulesBytes, err := p.readRulesWitness(index, kind)
		if err != nil {
			return nil, err
		}
		version, err := fieldU32(index, "version", versionBytes)
		if err != nil {
			return nil, err
		}
		if version != RulesWitnessVersion {
			p.log.Warn("unsupported rules witness version", zap.Int("index", index), zap.Uint32("version", version))
			return nil, &WitnessError{
				Code:     ERR_WITNESS_VERSION_UNDEFINED,
				Index:    index,
				Field:    "version",
				Expected: strconv.FormatUint(uint64(RulesWitnessVersion), 10),
				Actual:   strconv.FormatUint(uint64(version), 10),
			}
		}
		rules, err := molecule.DecodeSubAccountRules(rulesBytes)
		if err != nil {
			p.log.Warn("decoding rules failed", zap.Int("index", index), zap.Error(err))
			return nil, &WitnessError{Code: ERR_WITNESS_ENTITY_DECODING, Index: index, Field: "rules", Msg: "decoding SubAccountRules failed", Err: err}
		}
		out = append(out, rules...)
	}

	for i, rule := range out {
		if rule.Index != uint32(i) {
			return nil, &WitnessError{
				Code:     ERR_WITNESS_PARSING,
				Index:    -1,
				Field:    "rules[" + strconv.Itoa(i) + "].index",
				Msg:      "rule indexes should be continuous",
				Expected: strconv.Itoa(i),
				Actual:   strconv.FormatUint(uint64(rule.Index), 10),
			}
		}
	}
	return out, nil
}

// RulesHash computes the committed rules hash of payloads in witness order.
func RulesHash(payloads ...[]byte) [RULES_HASH_BYTES]byte {
	concat := make([]byte, 0, 32*len(payloads))
	for _, b := range payloads {
		h := blake2b256(b)
		concat = append(concat, h[:]...)
	}
	full := blake2b256(concat)
	var out [RULES_HASH_BYTES]byte
	copy(out[:], full[:RULES_HASH_BYTES])
	return out
}

func isZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
