package witness

import (
	"bytes"
	"encoding/hex"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Parser indexes the sub-account witnesses of one transaction. It keeps
// positions only; every accessor re-reads the witness from the Source.
type Parser struct {
	src  Source
	flag SubAccountConfigFlag
	log  *zap.Logger

	lastSignWins bool

	ContainsCreation bool
	ContainsEdition  bool
	ContainsRenew    bool
	ContainsRecycle  bool

	MintSignIndex        int
	RenewSignIndex       int
	PriceRuleIndexes     []int
	PreservedRuleIndexes []int
	indexes              []int
}

type ParserOption func(*Parser)

func WithLogger(log *zap.Logger) ParserOption {
	return func(p *Parser) {
		if log != nil {
			p.log = log
		}
	}
}

// WithLastSignWins keeps the last mint or renew sign witness when a
// transaction carries more than one instead of rejecting it. Only useful for
// replaying transactions accepted by older scripts.
func WithLastSignWins() ParserOption {
	return func(p *Parser) { p.lastSignWins = true }
}

// NewParser scans src from index 0 and records every sub-account related
// witness. It fails with ERR_WITNESS_EMPTY when none is found.
func NewParser(src Source, flag SubAccountConfigFlag, opts ...ParserOption) (*Parser, error) {
	if src == nil {
		return nil, werr(ERR_INVALID_ARGUMENT, -1, "source", "nil witness source")
	}
	p := &Parser{
		src:            src,
		flag:           flag,
		log:            zap.NewNop(),
		MintSignIndex:  -1,
		RenewSignIndex: -1,
	}
	for _, opt := range opts {
		opt(p)
	}
	if err := p.scan(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parser) scan() error {
	started := false
	count := 0
loop:
	for i := 0; ; i++ {
		var buf [PROBE_BYTES]byte
		_, err := p.src.LoadWitness(buf[:], i)
		switch {
		case err == nil:
			// Too short to be a das witness.
			continue
		case errors.Is(err, ERR_INDEX_OUT_OF_BOUND):
			break loop
		case errors.Is(err, ERR_LENGTH_NOT_ENOUGH):
		default:
			return errors.Wrapf(err, "scan witnesses[%d]", i)
		}

		if !bytes.Equal(buf[:WITNESS_HEADER_BYTES], WITNESS_HEADER[:]) {
			if started {
				break loop
			}
			continue
		}
		started = true

		dt := DataType(leU32(buf[WITNESS_HEADER_BYTES:]))
		switch dt {
		case DataTypeSubAccountMintSign:
			if err := p.setSignIndex(&p.MintSignIndex, i, dt); err != nil {
				return err
			}
			count++
		case DataTypeSubAccountRenewSign:
			if err := p.setSignIndex(&p.RenewSignIndex, i, dt); err != nil {
				return err
			}
			count++
		case DataTypeSubAccount:
			if err := p.peekAction(i, buf[:]); err != nil {
				return err
			}
			p.indexes = append(p.indexes, i)
			count++
		case DataTypeSubAccountPriceRule:
			p.PriceRuleIndexes = append(p.PriceRuleIndexes, i)
			count++
		case DataTypeSubAccountPreservedRule:
			p.PreservedRuleIndexes = append(p.PreservedRuleIndexes, i)
			count++
		default:
			if !dt.Known() {
				p.log.Debug("ignored unknown data type", zap.Int("index", i), zap.Uint32("data_type", uint32(dt)))
			}
		}
	}

	if count == 0 {
		p.log.Warn("no sub-account witness found in transaction")
		return werr(ERR_WITNESS_EMPTY, -1, "", "can not find any sub-account witness")
	}
	p.log.Debug("sub-account witnesses indexed",
		zap.Int("sub_account", len(p.indexes)),
		zap.Int("mint_sign", p.MintSignIndex),
		zap.Int("renew_sign", p.RenewSignIndex),
		zap.Ints("price_rules", p.PriceRuleIndexes),
		zap.Ints("preserved_rules", p.PreservedRuleIndexes),
	)
	return nil
}

func (p *Parser) setSignIndex(slot *int, i int, dt DataType) error {
	if *slot >= 0 && !p.lastSignWins {
		p.log.Warn("duplicated sign witness",
			zap.Stringer("data_type", dt), zap.Int("first", *slot), zap.Int("second", i))
		return &WitnessError{
			Code:     ERR_WITNESS_DUPLICATED,
			Index:    i,
			Field:    dt.String(),
			Msg:      "only one sign witness of this type is allowed",
			Expected: "1",
			Actual:   "2",
		}
	}
	*slot = i
	return nil
}

// peekAction reads version and action from the probe buffer to set the
// Contains* flags.
func (p *Parser) peekAction(i int, buf []byte) error {
	r := newFieldReader(i, buf)
	if _, err := r.next("version"); err != nil {
		return err
	}
	action, err := r.next("action")
	if err != nil {
		return err
	}
	a, ok := ParseSubAccountAction(action)
	if !ok {
		p.log.Debug("unrecognized action while scanning", zap.Int("index", i), zap.String("action", hex.EncodeToString(action)))
		return nil
	}
	switch a {
	case ActionCreate:
		p.ContainsCreation = true
	case ActionEdit:
		p.ContainsEdition = true
	case ActionRenew:
		p.ContainsRenew = true
	case ActionRecycle:
		p.ContainsRecycle = true
	}
	return nil
}

func (p *Parser) Flag() SubAccountConfigFlag { return p.flag }

// Len returns the number of sub-account witnesses.
func (p *Parser) Len() int { return len(p.indexes) }

// Indexes returns the transaction witness indexes of the sub-account
// witnesses in scan order.
func (p *Parser) Indexes() []int {
	return append([]int(nil), p.indexes...)
}

func (p *Parser) HasMintSign() bool  { return p.MintSignIndex >= 0 }
func (p *Parser) HasRenewSign() bool { return p.RenewSignIndex >= 0 }

func (p *Parser) OnlyContainsRecycle() bool {
	return p.ContainsRecycle && !p.ContainsCreation && !p.ContainsEdition && !p.ContainsRenew
}
