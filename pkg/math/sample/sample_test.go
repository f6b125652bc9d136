package sample

import (
	"crypto/rand"
	"io"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModN(t *testing.T) {
	n := saferith.ModulusFromUint64(3 * 11 * 65519)
	for i := 0; i < 100; i++ {
		x, err := ModN(rand.Reader, n)
		require.NoError(t, err)
		_, _, lt := x.CmpMod(n)
		assert.Equal(t, saferith.Choice(1), lt, "ModN generated a number >= n")
	}
}

func TestNonce(t *testing.T) {
	// n = pq(p-1)(q-1), m = pq for p = 11, q = 17
	n := saferith.ModulusFromUint64(29920)
	m := saferith.ModulusFromUint64(187)
	two := new(saferith.Nat).SetUint64(2)
	for i := 0; i < 200; i++ {
		r, err := Nonce(rand.Reader, n, m)
		require.NoError(t, err)
		_, _, lt := r.Cmp(two)
		assert.Equal(t, saferith.Choice(0), lt)
		assert.Equal(t, saferith.Choice(1), new(saferith.Nat).Mod(r, m).IsUnit(m))
	}
}

func TestNonce_ExhaustedReader(t *testing.T) {
	n := saferith.ModulusFromUint64(29920)
	_, err := Nonce(emptyReader{}, n, n)
	assert.Error(t, err)
}

func TestPrime(t *testing.T) {
	p, err := Prime(rand.Reader, 32)
	require.NoError(t, err)
	assert.Equal(t, 32, p.BitLen())
	assert.True(t, p.ProbablyPrime(20))

	_, err = Prime(rand.Reader, 4)
	assert.Error(t, err)
}

func TestIntN(t *testing.T) {
	for i := 0; i < 100; i++ {
		x, err := IntN(rand.Reader, 2, 5)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, x, uint64(2))
		assert.LessOrEqual(t, x, uint64(5))
	}
	_, err := IntN(rand.Reader, 5, 2)
	assert.Error(t, err)
}

type emptyReader struct{}

func (emptyReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }
