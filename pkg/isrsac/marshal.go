package isrsac

import (
	"fmt"
	"math/big"

	"github.com/fxamacker/cbor/v2"
)

type parametersMarshal struct {
	Scheme    Scheme
	P, Q      *big.Int
	R         uint64
	N, M, Phi *big.Int
	E, D      *big.Int
}

// MarshalBinary implements encoding.BinaryMarshaler.
//
// The encoding contains the secret primes, it must only be stored by the authority.
func (p *Parameters) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(parametersMarshal(*p))
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
// The decoded parameters are validated before being accepted.
func (p *Parameters) UnmarshalBinary(data []byte) error {
	var tmp parametersMarshal
	if err := cbor.Unmarshal(data, &tmp); err != nil {
		return fmt.Errorf("isrsac: %w", err)
	}
	decoded := Parameters(tmp)
	if err := decoded.Validate(); err != nil {
		return err
	}
	*p = decoded
	return nil
}
