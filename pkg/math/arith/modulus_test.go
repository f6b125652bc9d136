package arith

import (
	"math/big"
	mrand "math/rand"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
)

func TestModulus_Exp(t *testing.T) {
	r := mrand.New(mrand.NewSource(0))
	p := NatFromBig(big.NewInt(1000003))
	q := NatFromBig(big.NewInt(999983))

	cFast := ModulusFromFactors(p, q)
	cSlow := ModulusFromN(saferith.ModulusFromNat(new(saferith.Nat).Mul(p, q, -1)))
	assert.True(t, cFast.Nat().Eq(cSlow.Nat()) == 1, "n moduli should be the same")

	for i := 0; i < 32; i++ {
		x := new(saferith.Nat).SetUint64(r.Uint64())
		x.Mod(x, cSlow.Modulus)
		e := new(saferith.Nat).SetUint64(r.Uint64())

		yExpected := new(saferith.Nat).Exp(x, e, cSlow.Modulus)
		yFast := cFast.Exp(x, e)
		ySlow := cSlow.Exp(x, e)
		assert.True(t, yExpected.Eq(yFast) == 1, "exponentiation with acceleration should give the same result")
		assert.True(t, yExpected.Eq(ySlow) == 1, "exponentiation without acceleration should give the same result")
	}
}

func TestProduct(t *testing.T) {
	m := saferith.ModulusFromUint64(187)
	xs := []*saferith.Nat{
		new(saferith.Nat).SetUint64(10),
		new(saferith.Nat).SetUint64(20),
		new(saferith.Nat).SetUint64(30),
	}
	// 6000 = 32·187 + 16
	assert.True(t, Equal(Product(m, xs...), new(saferith.Nat).SetUint64(16), m))
	assert.True(t, Equal(Product(m), new(saferith.Nat).SetUint64(1), m))
}

func TestLCM(t *testing.T) {
	assert.Equal(t, int64(80), LCM(big.NewInt(10), big.NewInt(16)).Int64())
	assert.True(t, IsCoprime(big.NewInt(65537), big.NewInt(10800)))
	assert.False(t, IsCoprime(big.NewInt(6), big.NewInt(10800)))
}
