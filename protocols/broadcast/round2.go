package broadcast

import (
	"math/big"

	"github.com/taurusgroup/isrsac-multisig/internal/round"
	"github.com/taurusgroup/isrsac-multisig/pkg/math/arith"
)

var _ round.BroadcastRound = (*round2)(nil)

type round2 struct {
	*round1
	nonce *Nonce
}

type broadcast2 struct {
	// R = Rᵢ = rᵢᵉ (mod n)
	R *big.Int
}

// StoreBroadcastMessage implements round.BroadcastRound.
//
// - store Rⱼ.
func (r *round2) StoreBroadcastMessage(msg round.Message) error {
	body, ok := msg.Content.(*broadcast2)
	if !ok || body == nil || body.R == nil || body.R.Sign() <= 0 {
		return round.ErrInvalidContent
	}
	return r.agg.AddCommitment(&Commitment{ID: msg.From, R: arith.NatFromBig(body.R)})
}

// VerifyMessage implements round.Round.
func (round2) VerifyMessage(round.Message) error { return nil }

// StoreMessage implements round.Round.
func (round2) StoreMessage(round.Message) error { return nil }

// Finalize implements round.Round
//
// - compute K = ∏ Rⱼ (mod n) and l = H(K mod m, M)
// - broadcast Dᵢ.
func (r *round2) Finalize(out chan<- *round.Message) (round.Session, error) {
	ch, err := r.agg.Challenge(r.message)
	if err != nil {
		return r, err
	}

	partial, err := Respond(r.cfg.PublicKey, r.cfg.Credential, r.nonce, ch, r.cfg.Variant)
	if err != nil {
		return r.AbortRound(err, r.SelfID()), nil
	}
	if err = r.agg.AddResponse(partial); err != nil {
		return r.AbortRound(err, r.SelfID()), nil
	}

	if err = r.BroadcastMessage(out, &broadcast3{D: partial.D.Big()}); err != nil {
		return r, err
	}

	return &round3{round2: r}, nil
}

// RoundNumber implements round.Content.
func (broadcast2) RoundNumber() round.Number { return 2 }

// BroadcastContent implements round.BroadcastRound.
func (round2) BroadcastContent() round.Content { return &broadcast2{} }

// MessageContent implements round.Round.
func (round2) MessageContent() round.Content { return nil }

// Number implements round.Round.
func (round2) Number() round.Number { return 2 }
