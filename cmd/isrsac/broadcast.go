package main

import (
	"errors"
	"fmt"

	"github.com/cronokirby/saferith"
	"github.com/spf13/cobra"
	"github.com/taurusgroup/isrsac-multisig/pkg/pool"
	"github.com/taurusgroup/isrsac-multisig/protocols/broadcast"
)

func newBroadcastCmd(overrides *BroadcastConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "broadcast",
		Short: "produce a broadcast multi-signature",
		Long: `broadcast issues a certificate to every signer, then runs the three phases of the
broadcast scheme: commitments, challenge and responses. The aggregated
signature is verified before being written.

With --networked, every signer runs the round based protocol on its own
handler, and the messages are exchanged over an in-memory network.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rootCfg
			variant, err := broadcast.ParseVariant(cfg.Broadcast.Variant)
			if err != nil {
				return err
			}
			s, err := newSession(cmd, cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			reportParameters(out, s.parameters)
			reportCertificates(out, s.certs, s.creds)

			var pl *pool.Pool
			if cfg.Broadcast.Workers > 0 {
				pl = pool.NewPool(cfg.Broadcast.Workers)
				defer pl.TearDown()
				logger.Debug().Int("workers", pl.Workers()).Msg("worker pool started")
			}

			message := []byte(cfg.Message)
			var sig *broadcast.Signature
			if cfg.Broadcast.Networked {
				if sig, err = signNetworked(s, message, variant, pl); err != nil {
					return err
				}
			} else {
				transcript, err := broadcast.Sign(cmd.Context(), s.pk, s.oracle, s.creds, message,
					broadcast.WithVariant(variant), broadcast.WithPool(pl))
				if err != nil {
					return err
				}
				reportBroadcastTranscript(out, transcript)
				sig = transcript.Signature
			}

			publics := make([]*saferith.Nat, 0, len(s.creds))
			for _, c := range s.creds {
				publics = append(publics, c.H)
			}
			kPrime, lPrime, err := broadcast.VerifyDetail(s.pk, s.oracle, message, sig, publics)
			if err != nil {
				return fmt.Errorf("signature rejected: %w", err)
			}
			valid := broadcast.Verify(s.pk, s.oracle, message, sig, publics)
			reportBroadcastVerification(out, kPrime, lPrime, valid)
			if !valid {
				return errors.New("signature rejected")
			}
			logger.Info().Int("signers", len(sig.Signers)).Stringer("variant", variant).Msg("broadcast signature verified")
			return writeOutput(cfg.Output, sig)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&overrides.Variant, "variant", "", "response equation: bound or unbound")
	flags.IntVarP(&overrides.Workers, "workers", "w", 0, "number of workers computing the signers in parallel")
	flags.BoolVar(&overrides.Networked, "networked", false, "run every signer on its own protocol handler")
	return cmd
}

var errNoSignature = errors.New("protocol ended without a signature")
