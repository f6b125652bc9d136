package broadcast

import (
	"errors"
	"math/big"

	"github.com/taurusgroup/isrsac-multisig/internal/round"
	"github.com/taurusgroup/isrsac-multisig/pkg/math/arith"
)

var _ round.BroadcastRound = (*round3)(nil)

type round3 struct {
	*round2
}

type broadcast3 struct {
	// D = Dᵢ
	D *big.Int
}

// StoreBroadcastMessage implements round.BroadcastRound.
//
// - store Dⱼ.
func (r *round3) StoreBroadcastMessage(msg round.Message) error {
	body, ok := msg.Content.(*broadcast3)
	if !ok || body == nil || body.D == nil || body.D.Sign() <= 0 {
		return round.ErrInvalidContent
	}
	return r.agg.AddResponse(&PartialSignature{ID: msg.From, D: arith.NatFromBig(body.D)})
}

// VerifyMessage implements round.Round.
func (round3) VerifyMessage(round.Message) error { return nil }

// StoreMessage implements round.Round.
func (round3) StoreMessage(round.Message) error { return nil }

// Finalize implements round.Round
//
// - verify every Dⱼ against Rⱼ, aborting with the culprits otherwise
// - output D = ∏ Dⱼ (mod n).
func (r *round3) Finalize(chan<- *round.Message) (round.Session, error) {
	sig, err := r.agg.Aggregate(r.Pool)
	if err != nil {
		var respErr *ResponseError
		if errors.As(err, &respErr) {
			return r.AbortRound(err, respErr.Culprits...), nil
		}
		return r, err
	}
	return r.ResultRound(sig), nil
}

// RoundNumber implements round.Content.
func (broadcast3) RoundNumber() round.Number { return 3 }

// BroadcastContent implements round.BroadcastRound.
func (round3) BroadcastContent() round.Content { return &broadcast3{} }

// MessageContent implements round.Round.
func (round3) MessageContent() round.Content { return nil }

// Number implements round.Round.
func (round3) Number() round.Number { return 3 }
