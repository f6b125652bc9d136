package main

import (
	"crypto/rand"
	"errors"

	"github.com/spf13/cobra"
	"github.com/taurusgroup/isrsac-multisig/pkg/certificate"
	"github.com/taurusgroup/isrsac-multisig/protocols/sequential"
)

func newSequentialCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sequential",
		Short: "produce a sequential multi-signature",
		Long: `sequential issues a certificate to every signer, then applies the signers one after
the other, in the order of the configuration. The state after every step is
printed, and the final signature is verified against the whole chain.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rootCfg
			s, err := newSession(cmd, cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			reportParameters(out, s.parameters)
			reportCertificates(out, s.certs, s.creds)

			message := []byte(cfg.Message)
			acc := sequential.NewAccumulator()
			for _, cred := range s.creds {
				if err = cmd.Context().Err(); err != nil {
					return err
				}
				if acc, err = sequential.Step(s.pk, s.oracle, acc, cred, message, rand.Reader); err != nil {
					return err
				}
				reportSequentialStep(out, acc)
			}
			sig, err := acc.Signature()
			if err != nil {
				return err
			}

			valid := sequential.Verify(s.pk, s.oracle, message, sig)
			chainValid := sequential.VerifyChain(s.pk, s.oracle, message, sig, certificate.Publics(s.creds...))
			reportSequentialSignature(out, sig, valid, chainValid)
			if !valid || !chainValid {
				return errors.New("signature rejected")
			}
			logger.Info().Int("signers", len(sig.Chain)).Msg("sequential signature verified")
			return writeOutput(cfg.Output, sig)
		},
	}
}
