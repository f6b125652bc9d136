package broadcast

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/isrsac-multisig/internal/round"
	"github.com/taurusgroup/isrsac-multisig/pkg/certificate"
	"github.com/taurusgroup/isrsac-multisig/pkg/hash"
	"github.com/taurusgroup/isrsac-multisig/pkg/isrsac"
	"github.com/taurusgroup/isrsac-multisig/pkg/party"
	"github.com/taurusgroup/isrsac-multisig/pkg/pool"
	"github.com/taurusgroup/isrsac-multisig/pkg/protocol"
)

const (
	// Broadcast multi-signature over an ISRSAC modulus.
	protocolID = "isrsac/broadcast"
	// This protocol has 3 concrete rounds.
	protocolRounds round.Number = 3
)

// Config is what a party needs to take part in a signing session.
type Config struct {
	PublicKey  *isrsac.PublicKey
	Oracle     hash.Oracle
	Credential *certificate.Credential
	// Publics holds the public value hᵢ of every signer, including this party.
	Publics map[party.ID]*saferith.Nat
	Variant Variant
	// Rand defaults to crypto/rand.Reader.
	Rand io.Reader
}

// StartSign initiates the protocol for producing a broadcast multi-signature.
//
// signers is the list of all participants generating a signature together, including
// this participant. Each of them must have a public value in cfg.Publics.
//
// The result of the protocol is a *Signature.
func StartSign(cfg *Config, signers []party.ID, message []byte, pl *pool.Pool) protocol.StartFunc {
	return func(sessionID []byte) (round.Session, error) {
		if cfg == nil || cfg.PublicKey == nil || cfg.Oracle == nil || cfg.Credential == nil {
			return nil, errors.New("broadcast.StartSign: incomplete config")
		}
		info := round.Info{
			ProtocolID:       protocolID,
			FinalRoundNumber: protocolRounds,
			SelfID:           cfg.Credential.ID,
			PartyIDs:         signers,
		}

		helper, err := round.NewSession(info, sessionID, pl, cfg.PublicKey, hash.BytesWithDomain{
			TheDomain: "Message",
			Bytes:     message,
		})
		if err != nil {
			return nil, fmt.Errorf("broadcast.StartSign: %w", err)
		}

		publics := make(map[party.ID]*saferith.Nat, helper.N())
		for _, id := range helper.PartyIDs() {
			h, ok := cfg.Publics[id]
			if !ok {
				return nil, fmt.Errorf("broadcast.StartSign: no public value for %q", id)
			}
			publics[id] = h
		}
		agg, err := NewAggregator(cfg.PublicKey, cfg.Oracle, publics, cfg.Variant)
		if err != nil {
			return nil, fmt.Errorf("broadcast.StartSign: %w", err)
		}

		rnd := cfg.Rand
		if rnd == nil {
			rnd = rand.Reader
		}

		return &round1{
			Helper:  helper,
			cfg:     cfg,
			message: message,
			agg:     agg,
			rand:    rnd,
		}, nil
	}
}
