package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	logger  zerolog.Logger
	rootCfg *Config
)

// rootFlags holds the values bound to the persistent flags of one root command.
type rootFlags struct {
	configPath string
	verbose    bool
	debug      bool
	overrides  Config
}

// newRootCmd builds the command tree with its own flag set, so that every execution starts from
// the defaults.
func newRootCmd() *cobra.Command {
	f := &rootFlags{}
	cmd := &cobra.Command{
		Use:   "isrsac",
		Short: "multi-signatures over an ISRSAC modulus",
		Long: `isrsac sets up an ISRSAC modulus, issues identity certificates to a group of
signers, and produces broadcast or sequential multi-signatures with them.
Every intermediate value of the protocols is printed, so that executions can be
followed step by step.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := zerolog.WarnLevel
			if f.verbose {
				level = zerolog.InfoLevel
			}
			if f.debug {
				level = zerolog.DebugLevel
			}
			logger = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).Level(level).With().Timestamp().Logger()

			cfg, err := LoadConfig(f.configPath)
			if err != nil {
				return err
			}
			cfg.Merge(cmd, &f.overrides)
			rootCfg = cfg
			logger.Debug().Str("config", f.configPath).Interface("values", cfg).Msg("configuration loaded")
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&f.configPath, "config", "c", "", "TOML configuration file")
	flags.BoolVarP(&f.verbose, "verbose", "v", false, "verbose mode")
	flags.BoolVar(&f.debug, "debug", false, "debug mode")

	o := &f.overrides
	flags.StringVar(&o.Scheme, "scheme", "", "modulus scheme: isrsac, rsa or isr-rsa")
	flags.StringVar(&o.Hash, "hash", "", "hash function: sha256, blake3 or sha3-256")
	flags.StringVar(&o.P, "p", "", "first prime")
	flags.StringVar(&o.Q, "q", "", "second prime")
	flags.Uint64Var(&o.R, "r", 0, "blinding value of the ISRSAC scheme")
	flags.IntVar(&o.Bits, "bits", 0, "size of the random primes, when p and q are not given")
	flags.Uint64Var(&o.MaxBlinding, "max-blinding", 0, "upper bound of the random blinding value")
	flags.IntVar(&o.Attempts, "attempts", 0, "number of parameter sets tried before giving up")
	flags.Uint64Var(&o.Exponent, "exponent", 0, "first public exponent candidate")
	flags.StringSliceVar(&o.Signers, "signers", nil, "identifiers of the signers")
	flags.StringVarP(&o.Message, "message", "m", "", "message to sign")
	flags.StringVarP(&o.Output, "output", "o", "", "file receiving the CBOR encoded result")

	cmd.AddCommand(newKeygenCmd(), newBroadcastCmd(&o.Broadcast), newSequentialCmd())
	return cmd
}

// Execute builds the command tree and runs it until completion or interruption.
// This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
