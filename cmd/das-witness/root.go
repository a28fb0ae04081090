package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"das.dev/contracts/checker"
)

var validFormats = []string{"text", "json"}

// rootOptions holds the global flags and what PersistentPreRunE builds from
// them.
type rootOptions struct {
	configPath string
	dataDir    string
	format     string
	verbose    bool

	cfg       checker.Config
	log       *zap.Logger
	logCloser io.Closer
}

func (o *rootOptions) close() {
	if o.log != nil {
		_ = o.log.Sync()
	}
	if o.logCloser != nil {
		_ = o.logCloser.Close()
	}
}

func (o *rootOptions) setup() error {
	if !isValidFormat(o.format) {
		return fmt.Errorf("invalid format %q: must be one of %v", o.format, validFormats)
	}
	cfg, err := checker.LoadConfig(o.configPath)
	if err != nil {
		return err
	}
	if o.dataDir != "" {
		cfg.DataDir = o.dataDir
	}
	if o.verbose {
		cfg.LogLevel = "debug"
	}
	if err := checker.ValidateConfig(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	log, closer, err := checker.NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	o.cfg, o.log, o.logCloser = cfg, log, closer
	return nil
}

type rootCommand struct {
	*cobra.Command
	opts *rootOptions
}

func newRootCommand() *rootCommand {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "das-witness",
		Short: "Parse and verify sub-account transaction witnesses",
		Long: `Replays captured sub-account transactions through the witness parser,
the rule loader and the signature dispatcher, reporting the first rejection
with the exit code the on-chain script would return.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup()
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML config file")
	cmd.PersistentFlags().StringVar(&opts.dataDir, "datadir", "", "fixture store directory (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(newInspectCommand(opts))
	cmd.AddCommand(newRulesCommand(opts))
	cmd.AddCommand(newVerifyCommand(opts))
	cmd.AddCommand(newImportCommand(opts))
	cmd.AddCommand(newListCommand(opts))
	cmd.AddCommand(newDeleteCommand(opts))

	return &rootCommand{Command: cmd, opts: opts}
}

func isValidFormat(format string) bool {
	for _, f := range validFormats {
		if f == format {
			return true
		}
	}
	return false
}
