package isrsac

import "errors"

var (
	// ErrNoModularInverse is returned when an inverse was assumed to exist but gcd(a, modulus) ≠ 1.
	ErrNoModularInverse = errors.New("isrsac: no modular inverse")
	// ErrParameterConstraint is returned when the supplied primes or blinding value violate a relation
	// required by the scheme. The parameter source should retry with new values.
	ErrParameterConstraint = errors.New("isrsac: parameter constraint violation")
	// ErrNoPrimeFound is returned by a ParameterSource which gave up looking for suitable primes.
	ErrNoPrimeFound = errors.New("isrsac: no prime found")
)
