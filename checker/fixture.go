package checker

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"das.dev/contracts/witness"
)

// Fixture is a captured transaction: its witnesses in order, the sub-account
// cell data they are checked against and the das-lock args of the parent
// account used to resolve mint and renew signers. Byte fields are hex, with
// or without 0x. A witness of "~" (null) models a missing item.
type Fixture struct {
	Name               string    `yaml:"name" json:"name"`
	Flag               string    `yaml:"flag,omitempty" json:"flag,omitempty"`
	Witnesses          []*string `yaml:"witnesses" json:"witnesses"`
	SubAccountCellData string    `yaml:"sub_account_cell_data" json:"sub_account_cell_data"`
	SignLockArgs       string    `yaml:"sign_lock_args,omitempty" json:"sign_lock_args,omitempty"`
}

// ParseFixture accepts YAML or JSON.
func ParseFixture(raw []byte) (*Fixture, error) {
	var fx Fixture
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	if strings.TrimSpace(fx.Name) == "" {
		return nil, fmt.Errorf("fixture name is required")
	}
	if _, err := fx.Source(); err != nil {
		return nil, err
	}
	if _, err := fx.CellData(); err != nil {
		return nil, err
	}
	if _, err := fx.LockArgs(); err != nil {
		return nil, err
	}
	if fx.Flag != "" {
		if _, err := witness.ParseSubAccountConfigFlag(fx.Flag); err != nil {
			return nil, err
		}
	}
	return &fx, nil
}

func LoadFixture(path string) (*Fixture, error) {
	raw, err := readFileByPath(path)
	if err != nil {
		return nil, err
	}
	return ParseFixture(raw)
}

func decodeHex(field, s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return b, nil
}

func (fx *Fixture) Source() (witness.MemSource, error) {
	src := make(witness.MemSource, len(fx.Witnesses))
	for i, w := range fx.Witnesses {
		if w == nil {
			continue
		}
		b, err := decodeHex(fmt.Sprintf("witnesses[%d]", i), *w)
		if err != nil {
			return nil, err
		}
		src[i] = b
	}
	return src, nil
}

func (fx *Fixture) CellData() ([]byte, error) {
	return decodeHex("sub_account_cell_data", fx.SubAccountCellData)
}

func (fx *Fixture) LockArgs() ([]byte, error) {
	return decodeHex("sign_lock_args", fx.SignLockArgs)
}

// ConfigFlag picks the flag from the fixture, then from the cell data, then
// from cfg.
func (fx *Fixture) ConfigFlag(cfg Config) witness.SubAccountConfigFlag {
	if fx.Flag != "" {
		if f, err := witness.ParseSubAccountConfigFlag(fx.Flag); err == nil {
			return f
		}
	}
	if data, err := fx.CellData(); err == nil {
		if f, ok := witness.GetFlag(data); ok {
			return f
		}
	}
	return cfg.ConfigFlag()
}

// NewFixture builds a fixture from raw bytes; nil witnesses stay missing.
func NewFixture(name string, witnesses [][]byte, cellData, lockArgs []byte) *Fixture {
	fx := &Fixture{
		Name:               name,
		SubAccountCellData: hex.EncodeToString(cellData),
		SignLockArgs:       hex.EncodeToString(lockArgs),
	}
	for _, w := range witnesses {
		if w == nil {
			fx.Witnesses = append(fx.Witnesses, nil)
			continue
		}
		s := "0x" + hex.EncodeToString(w)
		fx.Witnesses = append(fx.Witnesses, &s)
	}
	return fx
}
