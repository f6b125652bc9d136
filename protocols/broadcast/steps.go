package broadcast

import (
	"errors"
	"fmt"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/isrsac-multisig/pkg/certificate"
	"github.com/taurusgroup/isrsac-multisig/pkg/hash"
	"github.com/taurusgroup/isrsac-multisig/pkg/isrsac"
	"github.com/taurusgroup/isrsac-multisig/pkg/math/arith"
	"github.com/taurusgroup/isrsac-multisig/pkg/math/sample"
)

// Commit samples a fresh nonce r ∈ [2, n-1], a unit mod m, and returns it with R = rᵉ (mod n).
func Commit(pk *isrsac.PublicKey, rand io.Reader) (*Nonce, *saferith.Nat, error) {
	r, err := sample.Nonce(rand, pk.N(), pk.M())
	if err != nil {
		return nil, nil, fmt.Errorf("broadcast.Commit: %w", err)
	}
	return &Nonce{r: r}, pk.ExpE(r), nil
}

// DeriveChallenge computes l = H(K mod m, M).
func DeriveChallenge(pk *isrsac.PublicKey, o hash.Oracle, K *saferith.Nat, message []byte) (*saferith.Nat, error) {
	l, err := o.Sum(hash.DomainBroadcastChallenge, arith.Reduce(K, pk.M()), message)
	if err != nil {
		return nil, fmt.Errorf("broadcast: failed to derive challenge: %w", err)
	}
	return l, nil
}

// Respond consumes the nonce and returns Dᵢ = rᵢ⋅Sᵢˡ (mod n), or rᵢ⋅Sᵢ (mod n) for the Unbound variant.
func Respond(pk *isrsac.PublicKey, cred *certificate.Credential, nonce *Nonce, ch *Challenge, v Variant) (*PartialSignature, error) {
	if ch == nil || ch.L == nil {
		return nil, errors.New("broadcast.Respond: missing challenge")
	}
	if !v.valid() {
		return nil, fmt.Errorf("broadcast.Respond: unknown variant %d", v)
	}
	r, err := nonce.take()
	if err != nil {
		return nil, err
	}
	ring := pk.ModN()
	s := ring.Reduce(cred.S)
	if v == Bound {
		s = ring.Exp(s, ch.L)
	}
	return &PartialSignature{
		ID: cred.ID,
		D:  ring.Mul(s, r),
	}, nil
}

// VerifyResponse checks Dᵢᵉ ≡ Rᵢ⋅hᵢˡ (mod m), or Rᵢ⋅hᵢ for the Unbound variant.
// It allows identifying the signer responsible for an invalid aggregate.
func VerifyResponse(pk *isrsac.PublicKey, ch *Challenge, v Variant, R, h, D *saferith.Nat) bool {
	if R == nil || h == nil || D == nil || ch == nil || ch.L == nil {
		return false
	}
	m := pk.M()
	expected := arith.Reduce(h, m)
	if v == Bound {
		expected.Exp(expected, ch.L, m)
	}
	expected.ModMul(expected, arith.Reduce(R, m), m)
	return arith.Equal(pk.ExpEModM(D), expected, m)
}

func validCommitment(pk *isrsac.PublicKey, R *saferith.Nat) bool {
	if R == nil {
		return false
	}
	if _, _, lt := R.CmpMod(pk.N()); lt != 1 {
		return false
	}
	return arith.Reduce(R, pk.M()).IsUnit(pk.M()) == 1
}
