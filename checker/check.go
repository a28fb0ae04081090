// Package checker replays captured sub-account transactions through the
// witness parser and the signature dispatcher.
package checker

import (
	"encoding/hex"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"das.dev/contracts/signlib"
	"das.dev/contracts/witness"
)

type WitnessSummary struct {
	Index     int    `json:"index"`
	Action    string `json:"action"`
	Account   string `json:"account"`
	EditKey   string `json:"edit_key,omitempty"`
	EditValue string `json:"edit_value"`
	SignRole  string `json:"sign_role,omitempty"`
	SignType  string `json:"sign_type,omitempty"`
	NewRoot   string `json:"new_root"`
}

type SignSummary struct {
	Index              int    `json:"index"`
	SignRole           string `json:"sign_role"`
	SignType           string `json:"sign_type,omitempty"`
	ExpiredAt          uint64 `json:"expired_at"`
	AccountListSmtRoot string `json:"account_list_smt_root"`
}

type RuleSummary struct {
	Count int    `json:"count"`
	Hash  string `json:"hash"`
}

// Report describes one fixture after parsing, and after verification when
// Verified is set.
type Report struct {
	Name string `json:"name"`
	Flag string `json:"flag"`

	ContainsCreation    bool `json:"contains_creation"`
	ContainsEdition     bool `json:"contains_edition"`
	ContainsRenew       bool `json:"contains_renew"`
	ContainsRecycle     bool `json:"contains_recycle"`
	OnlyContainsRecycle bool `json:"only_contains_recycle"`

	Witnesses      []WitnessSummary `json:"witnesses"`
	MintSign       *SignSummary     `json:"mint_sign,omitempty"`
	RenewSign      *SignSummary     `json:"renew_sign,omitempty"`
	PriceRules     *RuleSummary     `json:"price_rules,omitempty"`
	PreservedRules *RuleSummary     `json:"preserved_rules,omitempty"`

	Verified bool `json:"verified"`
}

// Check parses every witness of fx and loads its rule sets. When lib is not
// nil every signature is verified as well. The first failure is returned
// together with the partial report.
func Check(cfg Config, fx *Fixture, lib *signlib.SignLib, log *zap.Logger) (*Report, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("fixture", fx.Name))

	src, err := fx.Source()
	if err != nil {
		return nil, errors.Wrap(err, "fixture witnesses")
	}
	cellData, err := fx.CellData()
	if err != nil {
		return nil, errors.Wrap(err, "fixture cell data")
	}
	lockArgs, err := fx.LockArgs()
	if err != nil {
		return nil, errors.Wrap(err, "fixture lock args")
	}

	flag := fx.ConfigFlag(cfg)
	opts := []witness.ParserOption{witness.WithLogger(log)}
	if cfg.LastSignWins {
		opts = append(opts, witness.WithLastSignWins())
	}
	p, err := witness.NewParser(src, flag, opts...)
	if err != nil {
		return nil, err
	}

	r := &Report{
		Name:                fx.Name,
		Flag:                flag.String(),
		ContainsCreation:    p.ContainsCreation,
		ContainsEdition:     p.ContainsEdition,
		ContainsRenew:       p.ContainsRenew,
		ContainsRecycle:     p.ContainsRecycle,
		OnlyContainsRecycle: p.OnlyContainsRecycle(),
	}

	var decoded []*witness.SubAccountWitness
	it := p.Iter()
	for it.Next() {
		w := it.Witness()
		decoded = append(decoded, w)
		r.Witnesses = append(r.Witnesses, summarizeWitness(w))
	}
	if err := it.Err(); err != nil {
		return r, err
	}

	mint, hasMint, err := p.GetMintSign(lockArgs)
	if err != nil {
		return r, err
	}
	if hasMint {
		r.MintSign = summarizeSign(mint)
	}
	renew, hasRenew, err := p.GetRenewSign(lockArgs)
	if err != nil {
		return r, err
	}
	if hasRenew {
		r.RenewSign = summarizeSign(renew)
	}

	// Rule hashes only exist in custom_rule cell data.
	if flag == witness.FlagCustomRule {
		if r.PriceRules, err = loadRules(p, cellData, witness.DataTypeSubAccountPriceRule); err != nil {
			return r, err
		}
		if r.PreservedRules, err = loadRules(p, cellData, witness.DataTypeSubAccountPreservedRule); err != nil {
			return r, err
		}
	}

	if lib == nil {
		return r, nil
	}

	if hasMint {
		if err := witness.VerifyMintSign(lib, mint); err != nil {
			return r, err
		}
	}
	if hasRenew {
		if err := witness.VerifyMintSign(lib, renew); err != nil {
			return r, err
		}
	}
	for _, w := range decoded {
		if err := witness.VerifySubAccountWitness(lib, w); err != nil {
			return r, err
		}
	}
	r.Verified = true
	log.Info("fixture verified",
		zap.Int("sub_account_witnesses", len(decoded)),
		zap.Bool("mint_sign", hasMint),
		zap.Bool("renew_sign", hasRenew),
	)
	return r, nil
}

func loadRules(p *witness.Parser, cellData []byte, kind witness.DataType) (*RuleSummary, error) {
	set, err := p.GetRules(cellData, kind)
	if err != nil || set == nil {
		return nil, err
	}
	return &RuleSummary{Count: len(set.Rules), Hash: hex.EncodeToString(set.Hash[:witness.RULES_HASH_BYTES])}, nil
}

func summarizeWitness(w *witness.SubAccountWitness) WitnessSummary {
	s := WitnessSummary{
		Index:     w.Index,
		Action:    w.Action.String(),
		Account:   w.SubAccount.AccountString(),
		EditKey:   string(w.EditKey),
		EditValue: describeEditValue(w.EditValue),
		NewRoot:   hex.EncodeToString(w.NewRoot),
	}
	if w.SignRole != nil {
		s.SignRole = w.SignRole.String()
	}
	if w.SignType != nil {
		s.SignType = w.SignType.String()
	}
	return s
}

func summarizeSign(w *witness.SignWitness) *SignSummary {
	s := &SignSummary{
		Index:              w.Index,
		ExpiredAt:          w.ExpiredAt,
		AccountListSmtRoot: hex.EncodeToString(w.AccountListSmtRoot),
	}
	if w.SignRole != nil {
		s.SignRole = w.SignRole.String()
	}
	if w.SignType != nil {
		s.SignType = w.SignType.String()
	}
	return s
}
