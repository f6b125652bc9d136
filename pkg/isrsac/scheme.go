package isrsac

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/taurusgroup/isrsac-multisig/pkg/math/arith"
)

// Scheme selects how the moduli and the totient-like value are derived from (p, q).
type Scheme uint8

const (
	// SchemeISRSAC uses n = pq(p-1)(q-1), m = pq and φ = α(n) = (p-1)(q-1)(p-2r)(q-2r) / 2r.
	SchemeISRSAC Scheme = iota
	// SchemeRSA uses n = m = pq and φ = (p-1)(q-1).
	SchemeRSA
	// SchemeISRRSA uses n = m = p²q and φ = p(p-1)(q-1).
	SchemeISRRSA
)

// String implements fmt.Stringer.
func (s Scheme) String() string {
	switch s {
	case SchemeISRSAC:
		return "isrsac"
	case SchemeRSA:
		return "rsa"
	case SchemeISRRSA:
		return "isr-rsa"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// ParseScheme returns the Scheme whose String() is name.
func ParseScheme(name string) (Scheme, error) {
	switch strings.ToLower(name) {
	case "", "isrsac":
		return SchemeISRSAC, nil
	case "rsa":
		return SchemeRSA, nil
	case "isr-rsa", "isrrsa":
		return SchemeISRRSA, nil
	}
	return 0, fmt.Errorf("isrsac: unknown scheme %q", name)
}

// derivation holds the values computed from (p, q, r) before an exponent is chosen.
type derivation struct {
	n, m, phi *big.Int
	// lambda is the exponent of the unit group of ℤₘ.
	// x^(e⋅d) ≡ x (mod m) holds as long as λ divides φ.
	lambda *big.Int
}

func (s Scheme) derive(p, q *big.Int, r uint64) (*derivation, error) {
	one := big.NewInt(1)
	pMinus1 := new(big.Int).Sub(p, one)
	qMinus1 := new(big.Int).Sub(q, one)
	pq := new(big.Int).Mul(p, q)

	switch s {
	case SchemeISRSAC:
		if r == 0 {
			return nil, fmt.Errorf("%w: blinding value r must be positive", ErrParameterConstraint)
		}
		twoR := new(big.Int).Lsh(new(big.Int).SetUint64(r), 1)
		if twoR.Cmp(p) >= 0 || twoR.Cmp(q) >= 0 {
			return nil, fmt.Errorf("%w: 2r = %v must be smaller than p and q", ErrParameterConstraint, twoR)
		}
		// (p-1)(q-1)(p-2r)(q-2r)
		numerator := new(big.Int).Mul(pMinus1, qMinus1)
		numerator.Mul(numerator, new(big.Int).Sub(p, twoR))
		numerator.Mul(numerator, new(big.Int).Sub(q, twoR))
		alpha, rem := new(big.Int).QuoRem(numerator, twoR, new(big.Int))
		if rem.Sign() != 0 {
			return nil, fmt.Errorf("%w: α(n) is not an integer for r = %d", ErrParameterConstraint, r)
		}
		n := new(big.Int).Mul(pq, pMinus1)
		n.Mul(n, qMinus1)
		return &derivation{
			n:      n,
			m:      pq,
			phi:    alpha,
			lambda: arith.LCM(pMinus1, qMinus1),
		}, nil
	case SchemeRSA:
		return &derivation{
			n:      pq,
			m:      new(big.Int).Set(pq),
			phi:    new(big.Int).Mul(pMinus1, qMinus1),
			lambda: arith.LCM(pMinus1, qMinus1),
		}, nil
	case SchemeISRRSA:
		n := new(big.Int).Mul(pq, p)
		pTimesPMinus1 := new(big.Int).Mul(p, pMinus1)
		return &derivation{
			n:      n,
			m:      new(big.Int).Set(n),
			phi:    new(big.Int).Mul(pTimesPMinus1, qMinus1),
			lambda: arith.LCM(pTimesPMinus1, qMinus1),
		}, nil
	}
	return nil, fmt.Errorf("%w: unknown scheme %v", ErrParameterConstraint, s)
}
