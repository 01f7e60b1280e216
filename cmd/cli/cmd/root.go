// Package cmd provides the CLI commands for sitecost.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"sitecost/core/currency"
	"sitecost/core/estimate"
	"sitecost/core/ratetable"
	"sitecost/core/types"
	"sitecost/internal/config"
	"sitecost/internal/logging"
	"sitecost/internal/store"
)

// Version is the CLI version
const Version = "1.0.0"

var (
	errorText   = color.New(color.FgRed, color.Bold).SprintFunc()
	successText = color.New(color.FgGreen, color.Bold).SprintFunc()
	warningText = color.New(color.FgYellow, color.Bold).SprintFunc()
)

// app holds state shared by all commands of one invocation
type app struct {
	cfgFile string
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
}

// Execute runs the CLI
func Execute() error {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(root.ErrOrStderr(), "%s %v\n", errorText("Error:"), err)
		return err
	}
	return nil
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "sitecost",
		Short: "Estimate the cost of building a website",
		Long: `sitecost prices website projects from a short questionnaire.

It turns a project type, tier, hourly rate and complexity answers into a
deterministic, itemized estimate with phases, addons, maintenance and
retainer options.

Examples:
  sitecost estimate --project-type landing_page --tier simple --rate 95
  sitecost estimate --input request.yaml --format markdown --output quote.md
  sitecost batch requests.json --parallel 4
  sitecost convert --amount 2643.38 --from usd --to eur`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (json, yaml or toml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose output")

	root.AddCommand(newEstimateCmd(a))
	root.AddCommand(newBatchCmd(a))
	root.AddCommand(newConvertCmd(a))
	root.AddCommand(newTablesCmd(a))
	root.AddCommand(newRatesCmd(a))
	root.AddCommand(newHistoryCmd(a))
	root.AddCommand(newConfigCmd(a))
	root.AddCommand(newVersionCmd())

	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if a.cfgFile != "" {
		loaded, err := config.Load(a.cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
	} else {
		// keep stderr quiet unless asked
		cfg.Logging.Level = "warn"
	}
	if a.verbose {
		cfg.Logging.Level = "debug"
	}
	a.cfg = cfg
	config.Set(cfg)

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

// table loads the rate table named by path, the config, or the built-in one
func (a *app) table(path string) (*ratetable.Table, error) {
	if path == "" {
		path = a.cfg.Pricing.RateTable
	}
	if path == "" {
		return ratetable.Default(), nil
	}
	return ratetable.LoadFile(path)
}

// rates loads the snapshot named by path or the config; nil means static rates
func (a *app) rates(path string) (*types.CurrencyRatesSnapshot, error) {
	if path == "" {
		path = a.cfg.Pricing.RatesFile
	}
	if path == "" {
		return nil, nil
	}
	return currency.LoadSnapshot(path)
}

func (a *app) service(tablePath, ratesPath string) (*estimate.Service, error) {
	table, err := a.table(tablePath)
	if err != nil {
		return nil, err
	}
	snapshot, err := a.rates(ratesPath)
	if err != nil {
		return nil, err
	}

	opts := []estimate.Option{
		estimate.WithBaseCurrency(a.cfg.Pricing.Currency),
		estimate.WithLogger(a.logger),
	}
	if snapshot != nil {
		opts = append(opts, estimate.WithRates(snapshot))
	}
	return estimate.NewService(table, opts...), nil
}

func (a *app) openStore(ctx context.Context) (*store.Store, error) {
	return store.Open(ctx, a.cfg.Storage.Driver, a.cfg.Storage.DSN)
}

// writeOutput sends rendered output to path, or to w when path is empty
func writeOutput(w io.Writer, path string, render func(io.Writer) error) error {
	if path == "" {
		return render(w)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sitecost version %s (rate table %s)\n", Version, ratetable.DefaultVersion)
		},
	}
}

func newConfigCmd(a *app) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(a.cfg); err != nil {
				return err
			}
			return enc.Close()
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "init <path>",
		Short: "Write a default configuration file",
		Long: `Write the default configuration to path. The format follows the
extension: .toml, .yaml/.yml or .json.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); err == nil {
				return fmt.Errorf("%s already exists", args[0])
			}
			if err := config.Default().Save(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s wrote %s\n", successText("✓"), args[0])
			return nil
		},
	})

	return configCmd
}
