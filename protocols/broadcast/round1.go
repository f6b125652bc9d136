package broadcast

import (
	"io"

	"github.com/taurusgroup/isrsac-multisig/internal/round"
)

var _ round.Round = (*round1)(nil)

type round1 struct {
	*round.Helper

	cfg     *Config
	message []byte
	agg     *Aggregator
	rand    io.Reader
}

// VerifyMessage implements round.Round.
func (r *round1) VerifyMessage(round.Message) error { return nil }

// StoreMessage implements round.Round.
func (r *round1) StoreMessage(round.Message) error { return nil }

// Finalize implements round.Round
//
// - sample rᵢ, a unit mod m
// - broadcast Rᵢ = rᵢᵉ (mod n).
func (r *round1) Finalize(out chan<- *round.Message) (round.Session, error) {
	nonce, R, err := Commit(r.cfg.PublicKey, r.rand)
	if err != nil {
		return r, err
	}
	if err = r.agg.AddCommitment(&Commitment{ID: r.SelfID(), R: R}); err != nil {
		return r.AbortRound(err, r.SelfID()), nil
	}

	if err = r.BroadcastMessage(out, &broadcast2{R: R.Big()}); err != nil {
		return r, err
	}

	return &round2{
		round1: r,
		nonce:  nonce,
	}, nil
}

// MessageContent implements round.Round.
func (round1) MessageContent() round.Content { return nil }

// Number implements round.Round.
func (round1) Number() round.Number { return 1 }
