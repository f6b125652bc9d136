package hash

import (
	"math/big"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash_WriteAny(t *testing.T) {
	testFunc := func(vs ...interface{}) error {
		h := New()
		for _, v := range vs {
			if err := h.WriteAny(v); err != nil {
				return err
			}
		}
		return nil
	}
	b := big.NewInt(35)
	n := new(saferith.Nat).SetBig(b, b.BitLen())
	m := saferith.ModulusFromBytes(b.Bytes())

	assert.NoError(t, testFunc(b, n, m))
	assert.NoError(t, testFunc([]byte{1, 4, 6}, "id", uint64(7)))
	assert.Error(t, testFunc(big.NewInt(-1)))
	assert.Error(t, testFunc(3.14))
}

// Concatenating decimal representations maps (1, 23) and (12, 3) to the same string.
// The length prefixed encoding must not.
func TestHash_WriteAny_Collision(t *testing.T) {
	for _, alg := range []Algorithm{SHA256, BLAKE3, SHA3_256} {
		t.Run(alg.String(), func(t *testing.T) {
			h1 := NewWithAlgorithm(alg)
			require.NoError(t, h1.WriteAny(big.NewInt(1), big.NewInt(23)))
			h2 := NewWithAlgorithm(alg)
			require.NoError(t, h2.WriteAny(big.NewInt(12), big.NewInt(3)))
			assert.NotEqual(t, h1.Sum(), h2.Sum())

			h3 := NewWithAlgorithm(alg)
			require.NoError(t, h3.WriteAny("1", "23"))
			h4 := NewWithAlgorithm(alg)
			require.NoError(t, h4.WriteAny("12", "3"))
			assert.NotEqual(t, h3.Sum(), h4.Sum())
			assert.Len(t, h1.Sum(), DigestLengthBytes)
		})
	}
}

func TestHash_IntegerCanonical(t *testing.T) {
	x := big.NewInt(1000)
	small := new(saferith.Nat).SetBig(x, x.BitLen())
	wide := new(saferith.Nat).SetBig(x, 512)

	h1 := New()
	require.NoError(t, h1.WriteAny(small))
	h2 := New()
	require.NoError(t, h2.WriteAny(wide))
	h3 := New()
	require.NoError(t, h3.WriteAny(x))
	assert.Equal(t, h1.Sum(), h2.Sum())
	assert.Equal(t, h1.Sum(), h3.Sum())
}

func TestOracle_DomainSeparation(t *testing.T) {
	o := NewOracle(SHA256)
	a, err := o.Sum(DomainCertificate, "alice")
	require.NoError(t, err)
	b, err := o.Sum(DomainBroadcastChallenge, "alice")
	require.NoError(t, err)
	assert.Equal(t, saferith.Choice(0), a.Eq(b))

	again, err := o.Sum(DomainCertificate, "alice")
	require.NoError(t, err)
	assert.Equal(t, saferith.Choice(1), a.Eq(again))
}

func TestUnitModN(t *testing.T) {
	// 11·17, small enough that many digests share a factor with it
	n := saferith.ModulusFromUint64(187)
	o := NewOracle(SHA256)
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		u, err := UnitModN(o, n, DomainCertificate, id)
		require.NoError(t, err)
		assert.Equal(t, saferith.Choice(1), u.IsUnit(n))
		_, _, lt := u.CmpMod(n)
		assert.Equal(t, saferith.Choice(1), lt)
	}
}

func TestParseAlgorithm(t *testing.T) {
	for _, alg := range []Algorithm{SHA256, BLAKE3, SHA3_256} {
		parsed, err := ParseAlgorithm(alg.String())
		require.NoError(t, err)
		assert.Equal(t, alg, parsed)
	}
	_, err := ParseAlgorithm("md5")
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}
