package hash

import (
	"fmt"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/isrsac-multisig/internal/params"
)

// Domains used by the signature schemes.
// Each logical use of the oracle gets its own tag, so that a certificate hash
// can never be replayed as a challenge and vice versa.
const (
	DomainCertificate         = "isrsac/certificate"
	DomainMessage             = "isrsac/message"
	DomainBroadcastChallenge  = "isrsac/broadcast-challenge"
	DomainSequentialChallenge = "isrsac/sequential-challenge"
)

// Oracle maps a domain and an ordered tuple of values to a non-negative integer.
//
// The default implementation is returned by NewOracle, tests may substitute a
// deterministic double.
type Oracle interface {
	Sum(domain string, data ...interface{}) (*saferith.Nat, error)
}

type oracle struct {
	alg Algorithm
}

// NewOracle returns an Oracle interpreting the digest of the domain separated
// transcript as a big-endian integer.
func NewOracle(alg Algorithm) Oracle {
	return oracle{alg: alg}
}

// Sum implements Oracle.
func (o oracle) Sum(domain string, data ...interface{}) (*saferith.Nat, error) {
	h := NewWithAlgorithm(o.alg, BytesWithDomain{
		TheDomain: "Oracle Domain",
		Bytes:     []byte(domain),
	})
	if err := h.WriteAny(data...); err != nil {
		return nil, fmt.Errorf("hash.Oracle: %w", err)
	}
	return new(saferith.Nat).SetBytes(h.Sum()), nil
}

// UnitModN hashes data under domain, and reduces the result mod n.
// If the result is not a unit, a counter is appended and the data hashed again,
// until a unit is found or params.MaxIterations attempts have been made.
//
// The first attempt always includes the counter 0, so the output only depends on
// (domain, data, n).
func UnitModN(o Oracle, n *saferith.Modulus, domain string, data ...interface{}) (*saferith.Nat, error) {
	input := make([]interface{}, len(data)+1)
	copy(input, data)
	for ctr := uint64(0); ctr < params.MaxIterations; ctr++ {
		input[len(data)] = ctr
		x, err := o.Sum(domain, input...)
		if err != nil {
			return nil, err
		}
		u := new(saferith.Nat).Mod(x, n)
		if u.IsUnit(n) == 1 {
			return u, nil
		}
	}
	return nil, fmt.Errorf("hash.UnitModN: no unit found after %d iterations", params.MaxIterations)
}
