package broadcast

import (
	"errors"
	"fmt"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/isrsac-multisig/pkg/hash"
	"github.com/taurusgroup/isrsac-multisig/pkg/isrsac"
	"github.com/taurusgroup/isrsac-multisig/pkg/math/arith"
)

// Verify returns true if sig is a valid signature of message by the signers whose public values are given.
//
// The order of publics does not matter. A malformed signature is reported as invalid.
func Verify(pk *isrsac.PublicKey, o hash.Oracle, message []byte, sig *Signature, publics []*saferith.Nat) bool {
	K, l, err := VerifyDetail(pk, o, message, sig, publics)
	if err != nil {
		return false
	}
	if l.Eq(sig.L) != 1 {
		return false
	}
	if sig.K != nil && (!arith.IsUnit(sig.K, pk.M()) || !arith.Equal(K, sig.K, pk.M())) {
		return false
	}
	return true
}

// VerifyDetail recomputes K' = Dᵉ⋅(∏ hᵢ)⁻ˡ (mod m), with the exponent 1 instead of l for the Unbound variant,
// and l' = H(K', M). They are returned for inspection, Verify performs the comparison.
func VerifyDetail(pk *isrsac.PublicKey, o hash.Oracle, message []byte, sig *Signature, publics []*saferith.Nat) (*saferith.Nat, *saferith.Nat, error) {
	if sig == nil || sig.D == nil || sig.L == nil {
		return nil, nil, errors.New("broadcast: incomplete signature")
	}
	if !sig.Variant.valid() {
		return nil, nil, fmt.Errorf("broadcast: unknown variant %d", sig.Variant)
	}
	if len(publics) == 0 {
		return nil, nil, errors.New("broadcast: no public values")
	}
	for _, h := range publics {
		if h == nil {
			return nil, nil, errors.New("broadcast: missing public value")
		}
	}
	m := pk.M()
	if !arith.IsUnit(sig.D, m) {
		return nil, nil, errors.New("broadcast: D is not a unit")
	}

	h := arith.Product(m, publics...)
	if sig.Variant == Bound {
		h.Exp(h, sig.L, m)
	}
	if h.IsUnit(m) != 1 {
		return nil, nil, errors.New("broadcast: public values are not units")
	}
	h.ModInverse(h, m)

	K := pk.ExpEModM(sig.D)
	K.ModMul(K, h, m)

	l, err := DeriveChallenge(pk, o, K, message)
	if err != nil {
		return nil, nil, err
	}
	return K, l, nil
}
