package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/LeJamon/goAMM/internal/config"
	"github.com/LeJamon/goAMM/internal/core/amm"
	"github.com/LeJamon/goAMM/internal/di"
	"github.com/spf13/cobra"
)

// Version is the ammd release, overridden at link time.
var Version = "0.1.0-dev"

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	configFile string
	logLevel   string
	backend    string
	dataDir    string
}

// NewRootCommand builds the ammd command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "ammd",
		Short: "ammd - constant-product AMM engine",
		Long: `ammd runs a constant-product automated market maker over a local
state store: two-asset pools and batch pools that price every token id of a
collection against one currency. Each pool keeps the fee multiplier configured
under [engine] when it was created.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "conf", "", "configuration file path")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override the configured log level")
	rootCmd.PersistentFlags().StringVar(&opts.backend, "backend", "", "override the configured storage backend")
	rootCmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "override the configured storage path")

	rootCmd.AddCommand(
		newVersionCmd(),
		newConfigCmd(),
		newPoolCmd(opts),
		newLedgerCmd(opts),
		newLiquidityCmd(opts),
		newSwapCmd(opts),
		newQuoteCmd(opts),
		newFeeCmd(opts),
		newBatchCmd(opts),
		newEventsCmd(opts),
	)
	return rootCmd
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration and applies flag overrides.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(o.configFile)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.backend != "" {
		cfg.Storage.Backend = o.backend
	}
	if o.dataDir != "" {
		cfg.Storage.Path = o.dataDir
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// withEngine builds the service graph, runs fn and tears everything down.
func (o *globalOptions) withEngine(cmd *cobra.Command, fn func(ctx context.Context, e *amm.Engine) error) (err error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	container, engine, err := di.Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := container.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return fn(ctx, engine)
}
