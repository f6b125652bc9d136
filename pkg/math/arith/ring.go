package arith

import (
	"math/big"

	"github.com/cronokirby/saferith"
)

// Ring computes modulo a public modulus which may be even, such as the ISRSAC signing modulus
// n = pq(p-1)(q-1). saferith only supports exponentiation and inversion for odd moduli,
// so the work is done with math/big and converted back.
//
// Exponents are always public challenges or e. math/big is not constant time,
// so a Ring must not be used where the exponent is secret.
type Ring struct {
	n    *big.Int
	bits int
}

// NewRing returns the ring ℤₙ.
func NewRing(n *saferith.Modulus) *Ring {
	return &Ring{n: n.Big(), bits: n.BitLen()}
}

func (r *Ring) fromBig(x *big.Int) *saferith.Nat {
	return new(saferith.Nat).SetBig(x, r.bits)
}

// Reduce returns x (mod n).
func (r *Ring) Reduce(x *saferith.Nat) *saferith.Nat {
	return r.fromBig(new(big.Int).Mod(x.Big(), r.n))
}

// Exp returns xᵉ (mod n).
func (r *Ring) Exp(x, e *saferith.Nat) *saferith.Nat {
	return r.fromBig(new(big.Int).Exp(x.Big(), e.Big(), r.n))
}

// Mul returns ∏ xs (mod n). The empty product is 1.
func (r *Ring) Mul(xs ...*saferith.Nat) *saferith.Nat {
	acc := big.NewInt(1)
	for _, x := range xs {
		acc.Mul(acc, x.Big())
		acc.Mod(acc, r.n)
	}
	return r.fromBig(acc.Mod(acc, r.n))
}
