// Package broadcast implements the broadcast multi-signature over an ISRSAC modulus.
//
// Every signer i holds a credential (Sᵢ, hᵢ) with Sᵢᵉ ≡ hᵢ (mod m), and:
//
//  1. samples a nonce rᵢ and publishes Rᵢ = rᵢᵉ (mod n),
//  2. once every Rⱼ is known, computes K = ∏ Rⱼ (mod n) and l = H(K mod m, M),
//  3. publishes Dᵢ = rᵢ⋅Sᵢˡ (mod n).
//
// The signature is (D = ∏ Dᵢ, K, l). It verifies if l = H(K', M) where K' = Dᵉ⋅(∏ hᵢ)⁻ˡ (mod m).
//
// The steps are available as pure functions (Commit, Respond), with an Aggregator
// collecting values, as a local runner (Sign), and as a round-based protocol (StartSign)
// for parties exchanging messages through protocol.MultiHandler.
package broadcast

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrIncompleteRound is returned when a value is requested before every expected input was received.
	ErrIncompleteRound = errors.New("broadcast: round is incomplete")
	// ErrUnexpectedParticipant is returned for values from a party outside of the signer set.
	ErrUnexpectedParticipant = errors.New("broadcast: unexpected participant")
	// ErrDuplicate is returned when a party sends the same kind of value twice.
	ErrDuplicate = errors.New("broadcast: duplicate value")
	// ErrNonceReused is returned when a Nonce is used for a second response.
	ErrNonceReused = errors.New("broadcast: nonce already used")
	// ErrInvalidCommitment is returned when a commitment is not a unit.
	ErrInvalidCommitment = errors.New("broadcast: invalid commitment")
	// ErrInvalidResponse is returned when a partial signature does not match the commitment of its sender.
	ErrInvalidResponse = errors.New("broadcast: invalid response")
	// ErrChallengeFixed is returned when a commitment arrives after the challenge was derived,
	// or when the challenge is requested for a different message.
	ErrChallengeFixed = errors.New("broadcast: challenge already derived")
)

// Variant selects the response equation.
type Variant uint8

const (
	// Bound responses are Dᵢ = rᵢ⋅Sᵢˡ, so that the challenge is bound into the signature.
	Bound Variant = iota
	// Unbound responses are Dᵢ = rᵢ⋅Sᵢ. The challenge only enters the signature through the verifier's
	// recomputation of l, this variant is kept for compatibility with existing signatures.
	Unbound
)

// String implements fmt.Stringer.
func (v Variant) String() string {
	switch v {
	case Bound:
		return "bound"
	case Unbound:
		return "unbound"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(v))
	}
}

// ParseVariant returns the Variant whose String() is name.
func ParseVariant(name string) (Variant, error) {
	switch strings.ToLower(name) {
	case "", "bound":
		return Bound, nil
	case "unbound":
		return Unbound, nil
	}
	return 0, fmt.Errorf("broadcast: unknown variant %q", name)
}

func (v Variant) valid() bool {
	return v == Bound || v == Unbound
}
