package checker

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"das.dev/contracts/signlib"
	"das.dev/contracts/witness"
)

// SignLibConfig points one verification backend at a shared library. SHA3
// pins the library file; empty skips the check.
type SignLibConfig struct {
	Path string `yaml:"path" json:"path"`
	SHA3 string `yaml:"sha3,omitempty" json:"sha3,omitempty"`
}

// Config drives the checker. An empty LogFile logs to stderr.
type Config struct {
	LogLevel     string                   `yaml:"log_level" json:"log_level"`
	LogFile      string                   `yaml:"log_file,omitempty" json:"log_file,omitempty"`
	DataDir      string                   `yaml:"data_dir" json:"data_dir"`
	Flag         string                   `yaml:"flag" json:"flag"`
	LastSignWins bool                     `yaml:"last_sign_wins" json:"last_sign_wins"`
	SignLibs     map[string]SignLibConfig `yaml:"sign_libs,omitempty" json:"sign_libs,omitempty"`
}

var allowedLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// Backend names accepted under sign_libs.
var signLibBackends = map[string]signlib.LockType{
	"ckb_signhash": signlib.CKBSingle,
	"ckb_multisig": signlib.CKBMulti,
	"eth":          signlib.ETH,
	"tron":         signlib.TRON,
	"doge":         signlib.Doge,
}

func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".das-witness"
	}
	return filepath.Join(home, ".das-witness")
}

func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		DataDir:  DefaultDataDir(),
		Flag:     witness.FlagManual.String(),
	}
}

// LoadConfig reads a YAML config on top of DefaultConfig. Unknown keys are
// rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	raw, err := readFileByPath(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := ValidateConfig(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.DataDir) == "" {
		return errors.New("data_dir is required")
	}
	logLevel := strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if _, ok := allowedLogLevels[logLevel]; !ok {
		return fmt.Errorf("invalid log_level %q", cfg.LogLevel)
	}
	if _, err := witness.ParseSubAccountConfigFlag(cfg.Flag); err != nil {
		return err
	}
	for name, lib := range cfg.SignLibs {
		if _, ok := signLibBackends[name]; !ok {
			return fmt.Errorf("unknown sign_libs backend %q", name)
		}
		if strings.TrimSpace(lib.Path) == "" {
			return fmt.Errorf("sign_libs.%s.path is required", name)
		}
		if lib.SHA3 != "" && len(lib.SHA3) != 64 {
			return fmt.Errorf("sign_libs.%s.sha3 must be 64 hex chars", name)
		}
	}
	return nil
}

// ConfigFlag returns the parsed default sub-account config flag.
func (c Config) ConfigFlag() witness.SubAccountConfigFlag {
	f, _ := witness.ParseSubAccountConfigFlag(c.Flag)
	return f
}

func (c Config) dylibSpecs() map[signlib.LockType]signlib.DylibSpec {
	if len(c.SignLibs) == 0 {
		return nil
	}
	out := make(map[signlib.LockType]signlib.DylibSpec, len(c.SignLibs))
	for name, lib := range c.SignLibs {
		out[signLibBackends[name]] = signlib.DylibSpec{Path: lib.Path, SHA3: lib.SHA3}
	}
	return out
}

// NewSignLib returns the native backends with any configured libraries
// loaded over them. The returned func releases the libraries.
func NewSignLib(cfg Config, log *zap.Logger) (*signlib.SignLib, func(), error) {
	return signlib.LoadDylibSignLib(signlib.NewNativeSignLib(log), cfg.dylibSpecs())
}
