package arith

import (
	"math/big"

	"github.com/cronokirby/saferith"
)

// NatFromBig converts a non-negative big.Int, using its bit length as capacity.
func NatFromBig(x *big.Int) *saferith.Nat {
	return new(saferith.Nat).SetBig(x, x.BitLen())
}

// ModulusFromBig converts a positive big.Int into a saferith.Modulus.
func ModulusFromBig(x *big.Int) *saferith.Modulus {
	return saferith.ModulusFromNat(NatFromBig(x))
}

// Product returns ∏ xs (mod m). The empty product is 1.
func Product(m *saferith.Modulus, xs ...*saferith.Nat) *saferith.Nat {
	result := new(saferith.Nat).SetUint64(1)
	result.Mod(result, m)
	for _, x := range xs {
		result.ModMul(result, x, m)
	}
	return result
}

// Reduce returns x (mod m), without modifying x.
func Reduce(x *saferith.Nat, m *saferith.Modulus) *saferith.Nat {
	return new(saferith.Nat).Mod(x, m)
}

// Equal returns true if x ≡ y (mod m).
func Equal(x, y *saferith.Nat, m *saferith.Modulus) bool {
	return Reduce(x, m).Eq(Reduce(y, m)) == 1
}

// IsUnit returns true if x is invertible mod m. Zero and nil are not.
func IsUnit(x *saferith.Nat, m *saferith.Modulus) bool {
	return x != nil && Reduce(x, m).IsUnit(m) == 1
}

// IsCoprime returns true if gcd(a,b) = 1.
func IsCoprime(a, b *big.Int) bool {
	var gcd big.Int
	return gcd.GCD(nil, nil, a, b).Cmp(big.NewInt(1)) == 0
}

// LCM returns lcm(a, b) for positive a, b.
func LCM(a, b *big.Int) *big.Int {
	var gcd, out big.Int
	gcd.GCD(nil, nil, a, b)
	out.Div(a, &gcd)
	return out.Mul(&out, b)
}
