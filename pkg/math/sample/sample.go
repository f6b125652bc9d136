package sample

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/isrsac-multisig/internal/params"
)

var ErrMaxIterations = fmt.Errorf("sample: failed to generate after %d iterations", params.MaxIterations)

// ModN samples an element of ℤₙ by rejection sampling.
func ModN(rand io.Reader, n *saferith.Modulus) (*saferith.Nat, error) {
	out := new(saferith.Nat)
	buf := make([]byte, (n.BitLen()+7)/8)
	for i := 0; i < params.MaxIterations; i++ {
		if _, err := io.ReadFull(rand, buf); err != nil {
			return nil, fmt.Errorf("sample: %w", err)
		}
		// clear the bits above the size of n, so that at least half the candidates are accepted
		if excess := len(buf)*8 - n.BitLen(); excess > 0 {
			buf[0] &= 0xff >> excess
		}
		out.SetBytes(buf)
		if _, _, lt := out.CmpMod(n); lt == 1 {
			return out, nil
		}
	}
	return nil, ErrMaxIterations
}

// Nonce returns an r ∈ [2, n-1] which is also a unit modulo unitMod.
//
// unitMod is the verification modulus; it divides n, so requiring r to be a unit there
// keeps every commitment rᵉ invertible in the group used by verifiers.
func Nonce(rand io.Reader, n, unitMod *saferith.Modulus) (*saferith.Nat, error) {
	two := new(saferith.Nat).SetUint64(2)
	for i := 0; i < params.MaxIterations; i++ {
		r, err := ModN(rand, n)
		if err != nil {
			return nil, err
		}
		if _, _, lt := r.Cmp(two); lt == 1 {
			continue
		}
		if new(saferith.Nat).Mod(r, unitMod).IsUnit(unitMod) != 1 {
			continue
		}
		return r, nil
	}
	return nil, ErrMaxIterations
}

// Prime returns a random prime of exactly bits bits.
func Prime(r io.Reader, bits int) (*big.Int, error) {
	if bits < params.MinPrimeBits {
		return nil, fmt.Errorf("sample: prime size must be at least %d bits", params.MinPrimeBits)
	}
	if r == nil {
		r = rand.Reader
	}
	p, err := rand.Prime(r, bits)
	if err != nil {
		return nil, fmt.Errorf("sample: %w", err)
	}
	return p, nil
}

// IntN returns a uniform integer in [lo, hi].
func IntN(r io.Reader, lo, hi uint64) (uint64, error) {
	if hi < lo {
		return 0, errors.New("sample: empty interval")
	}
	if r == nil {
		r = rand.Reader
	}
	span := new(big.Int).SetUint64(hi - lo)
	span.Add(span, big.NewInt(1))
	x, err := rand.Int(r, span)
	if err != nil {
		return 0, fmt.Errorf("sample: %w", err)
	}
	return lo + x.Uint64(), nil
}
