package params

const (
	// DefaultExponent is the first public exponent candidate tried by the authority.
	DefaultExponent = 65537

	// MaxExponentCandidates bounds the upward search for an exponent coprime to φ.
	// Candidates are tried in steps of 2, so this covers a window of 2¹⁷ integers.
	MaxExponentCandidates = 1 << 16

	// MaxIterations bounds rejection sampling and hash-to-unit loops.
	MaxIterations = 255

	// PrimalityIterations is the number of Miller-Rabin rounds used to check
	// primes handed to the authority. 20 is the same number that Go uses internally.
	PrimalityIterations = 20

	// MaxPrimeAttempts bounds how many candidate pairs a random parameter source draws.
	MaxPrimeAttempts = 1000

	// MinPrimeBits is the smallest prime size accepted by the random parameter source.
	MinPrimeBits = 8
)
