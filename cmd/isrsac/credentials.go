package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/taurusgroup/isrsac-multisig/pkg/certificate"
	"github.com/taurusgroup/isrsac-multisig/pkg/hash"
	"github.com/taurusgroup/isrsac-multisig/pkg/isrsac"
)

// session is what the authority hands out before signing: the public key, and a credential per signer.
type session struct {
	parameters *isrsac.Parameters
	pk         *isrsac.PublicKey
	oracle     hash.Oracle
	certs      []*certificate.Certificate
	creds      []*certificate.Credential
}

// newSession sets up the parameters and issues a certificate to every configured signer, in order.
func newSession(cmd *cobra.Command, cfg *Config) (*session, error) {
	ids, err := cfg.SignerIDs()
	if err != nil {
		return nil, err
	}
	o, err := cfg.Oracle()
	if err != nil {
		return nil, err
	}
	parameters, err := setupParameters(cmd, cfg)
	if err != nil {
		return nil, err
	}
	sk := parameters.PrivateKey()
	s := &session{
		parameters: parameters,
		pk:         sk.PublicKey,
		oracle:     o,
	}
	for _, id := range ids {
		cert, err := certificate.Issue(sk, o, id)
		if err != nil {
			return nil, fmt.Errorf("issuing certificate of %q: %w", id, err)
		}
		cred, err := certificate.FromCertificate(s.pk, o, cert)
		if err != nil {
			return nil, err
		}
		logger.Debug().Str("id", string(id)).Stringer("h", cred.H.Big()).Msg("certificate issued")
		s.certs = append(s.certs, cert)
		s.creds = append(s.creds, cred)
	}
	return s, nil
}
