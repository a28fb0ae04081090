package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"das.dev/contracts/checker"
)

// fixtureArgs resolves the fixture either from a file argument or from the
// store by name.
type fixtureArgs struct {
	fromStore string
}

func (f *fixtureArgs) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.fromStore, "from-store", "", "load the named fixture from the store instead of a file")
	cmd.Args = func(cmd *cobra.Command, args []string) error {
		if f.fromStore != "" {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	}
}

func (f *fixtureArgs) load(opts *rootOptions, args []string) (*checker.Fixture, error) {
	if f.fromStore == "" {
		return checker.LoadFixture(args[0])
	}
	st, err := checker.OpenStore(opts.cfg.DataDir)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	fx, ok, err := st.Get(f.fromStore)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("fixture %q not found in %s", f.fromStore, st.Path())
	}
	return fx, nil
}

func writeReport(opts *rootOptions, w io.Writer, r *checker.Report) error {
	if r == nil {
		return nil
	}
	if opts.format == "json" {
		return r.WriteJSON(w)
	}
	return r.WriteText(w)
}

func newInspectCommand(opts *rootOptions) *cobra.Command {
	var fa fixtureArgs
	cmd := &cobra.Command{
		Use:   "inspect <fixture>",
		Short: "Parse every witness of a fixture without checking signatures",
		RunE: func(cmd *cobra.Command, args []string) error {
			fx, err := fa.load(opts, args)
			if err != nil {
				return err
			}
			r, err := checker.Check(opts.cfg, fx, nil, opts.log)
			if werr := writeReport(opts, cmd.OutOrStdout(), r); werr != nil && err == nil {
				err = werr
			}
			return err
		},
	}
	fa.bind(cmd)
	return cmd
}

type rulesOutput struct {
	Name           string               `json:"name"`
	Flag           string               `json:"flag"`
	PriceRules     *checker.RuleSummary `json:"price_rules"`
	PreservedRules *checker.RuleSummary `json:"preserved_rules"`
}

func newRulesCommand(opts *rootOptions) *cobra.Command {
	var fa fixtureArgs
	cmd := &cobra.Command{
		Use:   "rules <fixture>",
		Short: "Check the price and preserved rule witnesses against the cell data",
		RunE: func(cmd *cobra.Command, args []string) error {
			fx, err := fa.load(opts, args)
			if err != nil {
				return err
			}
			r, err := checker.Check(opts.cfg, fx, nil, opts.log)
			if r == nil {
				return err
			}
			out := rulesOutput{Name: r.Name, Flag: r.Flag, PriceRules: r.PriceRules, PreservedRules: r.PreservedRules}
			if werr := writeRules(opts, cmd.OutOrStdout(), out); werr != nil && err == nil {
				err = werr
			}
			return err
		},
	}
	fa.bind(cmd)
	return cmd
}

func writeRules(opts *rootOptions, w io.Writer, out rulesOutput) error {
	if opts.format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	if _, err := fmt.Fprintf(w, "fixture: %s\nflag: %s\n", out.Name, out.Flag); err != nil {
		return err
	}
	for _, s := range []struct {
		label string
		rules *checker.RuleSummary
	}{{"price_rules", out.PriceRules}, {"preserved_rules", out.PreservedRules}} {
		line := s.label + ": none\n"
		if s.rules != nil {
			line = fmt.Sprintf("%s: %d rules, hash=%s\n", s.label, s.rules.Count, s.rules.Hash)
		}
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}

func newVerifyCommand(opts *rootOptions) *cobra.Command {
	var fa fixtureArgs
	cmd := &cobra.Command{
		Use:   "verify <fixture>",
		Short: "Parse a fixture and verify every signature it carries",
		RunE: func(cmd *cobra.Command, args []string) error {
			fx, err := fa.load(opts, args)
			if err != nil {
				return err
			}
			lib, release, err := checker.NewSignLib(opts.cfg, opts.log)
			if err != nil {
				return fmt.Errorf("load sign libraries: %w", err)
			}
			defer release()
			r, err := checker.Check(opts.cfg, fx, lib, opts.log)
			if werr := writeReport(opts, cmd.OutOrStdout(), r); werr != nil && err == nil {
				err = werr
			}
			return err
		},
	}
	fa.bind(cmd)
	return cmd
}

func newImportCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <fixture>...",
		Short: "Store fixtures by name for later runs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := checker.OpenStore(opts.cfg.DataDir)
			if err != nil {
				return err
			}
			defer st.Close()
			for _, path := range args {
				fx, err := checker.LoadFixture(path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				if err := st.Put(fx); err != nil {
					return err
				}
				opts.log.Info("fixture imported", zap.String("name", fx.Name), zap.String("path", path))
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %s\n", fx.Name)
			}
			return nil
		},
	}
}

func newListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored fixtures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := checker.OpenStore(opts.cfg.DataDir)
			if err != nil {
				return err
			}
			defer st.Close()
			names, err := st.List()
			if err != nil {
				return err
			}
			if opts.format == "json" {
				if names == nil {
					names = []string{}
				}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(names)
			}
			for _, name := range names {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

var errNotStored = errors.New("fixture not stored")

func newDeleteCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a stored fixture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := checker.OpenStore(opts.cfg.DataDir)
			if err != nil {
				return err
			}
			defer st.Close()
			if _, ok, err := st.Get(args[0]); err != nil {
				return err
			} else if !ok {
				return fmt.Errorf("%w: %s", errNotStored, args[0])
			}
			return st.Delete(args[0])
		},
	}
}
