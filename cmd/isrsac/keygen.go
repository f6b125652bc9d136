package main

import (
	"github.com/spf13/cobra"
	"github.com/taurusgroup/isrsac-multisig/pkg/isrsac"
)

func newKeygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "derive the system parameters of the authority",
		Long: `keygen derives n, m, φ, e and d from the configured primes, or from random primes
of the configured size. With --output, the parameters are written in CBOR.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			parameters, err := setupParameters(cmd, rootCfg)
			if err != nil {
				return err
			}
			reportParameters(cmd.OutOrStdout(), parameters)
			return writeOutput(rootCfg.Output, parameters)
		},
	}
}

// setupParameters runs the setup described by cfg, retrying rejected random values.
func setupParameters(cmd *cobra.Command, cfg *Config) (*isrsac.Parameters, error) {
	src, err := cfg.Source()
	if err != nil {
		return nil, err
	}
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	logger.Info().Str("scheme", cfg.Scheme).Int("attempts", cfg.Attempts).Msg("setting up parameters")
	parameters, err := isrsac.SetupFrom(cmd.Context(), src, cfg.Attempts, opts...)
	if err != nil {
		return nil, err
	}
	logger.Info().
		Stringer("p", parameters.P).
		Stringer("q", parameters.Q).
		Uint64("r", parameters.R).
		Int("bits", parameters.M.BitLen()).
		Msg("parameters accepted")
	return parameters, nil
}
