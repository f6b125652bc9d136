package isrsac

import (
	"fmt"
	"math/big"

	"github.com/taurusgroup/isrsac-multisig/internal/params"
	"github.com/taurusgroup/isrsac-multisig/pkg/math/arith"
)

// Parameters are the system parameters of a session, derived once by the authority.
//
// They must be treated as read-only after Setup returns; the public and private
// keys derived from them can be shared freely between goroutines.
type Parameters struct {
	Scheme Scheme
	// P, Q are the secret primes.
	P, Q *big.Int
	// R is the blinding value of the ISRSAC scheme, and 0 for other schemes.
	R uint64
	// N is the signing modulus.
	N *big.Int
	// M is the verification modulus. It divides N.
	M *big.Int
	// Phi is the totient-like value E and D are inverses modulo.
	Phi *big.Int
	// E is the public exponent, D the private one.
	E, D *big.Int
}

type config struct {
	scheme   Scheme
	exponent uint64
}

// Option configures Setup.
type Option func(*config)

// WithScheme selects the modulus construction. The default is SchemeISRSAC.
func WithScheme(s Scheme) Option {
	return func(c *config) { c.scheme = s }
}

// WithExponent sets the first public exponent candidate. The default is 65537.
// Even candidates are rounded up, since φ is always even.
func WithExponent(e uint64) Option {
	return func(c *config) { c.exponent = e }
}

// Setup derives the system parameters from two distinct primes p, q and, for ISRSAC,
// the blinding value r.
//
// An error wrapping ErrParameterConstraint is returned if the inputs do not satisfy
// the requirements of the scheme, in which case new inputs should be supplied.
func Setup(p, q *big.Int, r uint64, opts ...Option) (*Parameters, error) {
	c := config{
		scheme:   SchemeISRSAC,
		exponent: params.DefaultExponent,
	}
	for _, opt := range opts {
		opt(&c)
	}

	if err := validatePrimes(p, q); err != nil {
		return nil, err
	}

	d, err := c.scheme.derive(p, q, r)
	if err != nil {
		return nil, err
	}

	// the private exponent only inverts the public one on ℤₘ if λ(m) | φ
	if new(big.Int).Mod(d.phi, d.lambda).Sign() != 0 {
		return nil, fmt.Errorf("%w: λ(m) = %v does not divide φ = %v", ErrParameterConstraint, d.lambda, d.phi)
	}

	e, err := searchExponent(c.exponent, d.phi)
	if err != nil {
		return nil, err
	}

	priv, err := modInverse(e, d.phi)
	if err != nil {
		return nil, err
	}

	if c.scheme != SchemeISRSAC {
		r = 0
	}
	return &Parameters{
		Scheme: c.scheme,
		P:      new(big.Int).Set(p),
		Q:      new(big.Int).Set(q),
		R:      r,
		N:      d.n,
		M:      d.m,
		Phi:    d.phi,
		E:      e,
		D:      priv,
	}, nil
}

func validatePrimes(p, q *big.Int) error {
	three := big.NewInt(3)
	for _, x := range []*big.Int{p, q} {
		if x == nil {
			return fmt.Errorf("%w: missing prime", ErrParameterConstraint)
		}
		if x.Cmp(three) <= 0 {
			return fmt.Errorf("%w: prime %v must be greater than 3", ErrParameterConstraint, x)
		}
		if !x.ProbablyPrime(params.PrimalityIterations) {
			return fmt.Errorf("%w: %v is not prime", ErrParameterConstraint, x)
		}
	}
	if p.Cmp(q) == 0 {
		return fmt.Errorf("%w: p and q must be distinct", ErrParameterConstraint)
	}
	return nil
}

// searchExponent returns the first odd e ≥ start with gcd(e, φ) = 1,
// trying at most params.MaxExponentCandidates candidates.
func searchExponent(start uint64, phi *big.Int) (*big.Int, error) {
	if start < 3 {
		start = 3
	}
	e := new(big.Int).SetUint64(start | 1)
	two := big.NewInt(2)
	for i := 0; i < params.MaxExponentCandidates; i++ {
		if arith.IsCoprime(e, phi) {
			return e, nil
		}
		e.Add(e, two)
	}
	return nil, fmt.Errorf("%w: no exponent coprime to φ after %d candidates from %d",
		ErrParameterConstraint, params.MaxExponentCandidates, start)
}

// modInverse returns a⁻¹ mod m, computed with the extended Euclidean algorithm.
func modInverse(a, m *big.Int) (*big.Int, error) {
	var x, gcd big.Int
	gcd.GCD(&x, nil, a, m)
	if gcd.Cmp(big.NewInt(1)) != 0 {
		return nil, fmt.Errorf("%w: gcd(%v, %v) = %v", ErrNoModularInverse, a, m, &gcd)
	}
	return x.Mod(&x, m), nil
}

// PublicKey returns (e, n, m).
func (p *Parameters) PublicKey() *PublicKey {
	return newPublicKey(p.E, p.N, p.M)
}

// PrivateKey returns (d, n, m), with accelerated exponentiation when m = pq.
func (p *Parameters) PrivateKey() *PrivateKey {
	var m *arith.Modulus
	if p.Scheme == SchemeISRRSA {
		m = arith.ModulusFromN(arith.ModulusFromBig(p.M))
	} else {
		m = arith.ModulusFromFactors(arith.NatFromBig(p.P), arith.NatFromBig(p.Q))
	}
	return &PrivateKey{
		PublicKey: p.PublicKey(),
		d:         arith.NatFromBig(p.D),
		crt:       m,
	}
}

// Validate checks the algebraic relations between the fields, and is used after
// decoding parameters from an untrusted source.
func (p *Parameters) Validate() error {
	if p == nil || p.N == nil || p.M == nil || p.Phi == nil || p.E == nil || p.D == nil {
		return fmt.Errorf("%w: incomplete parameters", ErrParameterConstraint)
	}
	expected, err := Setup(p.P, p.Q, p.R, WithScheme(p.Scheme), WithExponent(p.E.Uint64()))
	if err != nil {
		return err
	}
	if expected.N.Cmp(p.N) != 0 || expected.M.Cmp(p.M) != 0 || expected.Phi.Cmp(p.Phi) != 0 {
		return fmt.Errorf("%w: moduli do not match (p, q, r)", ErrParameterConstraint)
	}
	if expected.E.Cmp(p.E) != 0 || expected.D.Cmp(p.D) != 0 {
		return fmt.Errorf("%w: exponents do not match", ErrParameterConstraint)
	}
	return nil
}
