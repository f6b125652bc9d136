package isrsac

import (
	"fmt"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/isrsac-multisig/pkg/hash"
	"github.com/taurusgroup/isrsac-multisig/pkg/math/arith"
)

// Sign produces the single-signer signature s = H(msg)ᵈ (mod m).
//
// H(msg) is hashed to a unit of ℤₘ under hash.DomainMessage.
func Sign(sk *PrivateKey, o hash.Oracle, msg []byte) (*saferith.Nat, error) {
	h, err := hash.UnitModN(o, sk.M(), hash.DomainMessage, msg)
	if err != nil {
		return nil, fmt.Errorf("isrsac.Sign: %w", err)
	}
	return sk.ExpD(h), nil
}

// Verify returns true if sᵉ ≡ H(msg) (mod m).
func Verify(pk *PublicKey, o hash.Oracle, msg []byte, s *saferith.Nat) bool {
	if s == nil {
		return false
	}
	h, err := hash.UnitModN(o, pk.M(), hash.DomainMessage, msg)
	if err != nil {
		return false
	}
	return arith.Equal(pk.ExpEModM(s), h, pk.M())
}
