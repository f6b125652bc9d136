package isrsac

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"
	"github.com/taurusgroup/isrsac-multisig/pkg/math/arith"
)

// PublicKey is (e, n) together with the verification modulus m.
type PublicKey struct {
	e    *saferith.Nat
	n, m *saferith.Modulus
	// ring computes mod n, which is even for ISRSAC
	ring *arith.Ring
	// bigE is e as a big.Int, used for encoding.
	bigE *big.Int
}

// PrivateKey is the authority's (d, m). It embeds the PublicKey.
type PrivateKey struct {
	*PublicKey
	d *saferith.Nat
	// crt is m, with its factorization when it is known
	crt *arith.Modulus
}

func newPublicKey(e, n, m *big.Int) *PublicKey {
	nMod := arith.ModulusFromBig(n)
	return &PublicKey{
		e:    arith.NatFromBig(e),
		n:    nMod,
		m:    arith.ModulusFromBig(m),
		ring: arith.NewRing(nMod),
		bigE: new(big.Int).Set(e),
	}
}

// NewPublicKey creates a PublicKey from values received from the authority.
// It checks that m is odd and divides n, and that e > 1.
func NewPublicKey(e, n, m *big.Int) (*PublicKey, error) {
	if e == nil || n == nil || m == nil {
		return nil, errors.New("isrsac: incomplete public key")
	}
	if e.Cmp(big.NewInt(1)) <= 0 {
		return nil, errors.New("isrsac: public exponent must be greater than 1")
	}
	if m.Sign() <= 0 || m.Bit(0) == 0 {
		return nil, errors.New("isrsac: verification modulus must be odd and positive")
	}
	if new(big.Int).Mod(n, m).Sign() != 0 {
		return nil, errors.New("isrsac: verification modulus must divide the signing modulus")
	}
	return newPublicKey(e, n, m), nil
}

// E returns the public exponent.
func (pk *PublicKey) E() *saferith.Nat { return pk.e }

// N returns the signing modulus.
func (pk *PublicKey) N() *saferith.Modulus { return pk.n }

// ModN returns the ring ℤₙ, in which signers compute commitments and responses.
func (pk *PublicKey) ModN() *arith.Ring { return pk.ring }

// M returns the verification modulus.
func (pk *PublicKey) M() *saferith.Modulus { return pk.m }

// Equal returns true if both keys hold the same values.
func (pk *PublicKey) Equal(other *PublicKey) bool {
	return pk.e.Eq(other.e) == 1 &&
		pk.n.Nat().Eq(other.n.Nat()) == 1 &&
		pk.m.Nat().Eq(other.m.Nat()) == 1
}

// ExpE returns xᵉ (mod n).
func (pk *PublicKey) ExpE(x *saferith.Nat) *saferith.Nat {
	return pk.ring.Exp(x, pk.e)
}

// ExpEModM returns xᵉ (mod m).
func (pk *PublicKey) ExpEModM(x *saferith.Nat) *saferith.Nat {
	return new(saferith.Nat).Exp(arith.Reduce(x, pk.m), pk.e, pk.m)
}

// ExpD returns xᵈ (mod m).
func (sk *PrivateKey) ExpD(x *saferith.Nat) *saferith.Nat {
	return sk.crt.Exp(arith.Reduce(x, sk.crt.Modulus), sk.d)
}

// WriteTo implements io.WriterTo, writing e, n and m as length-prefixed big-endian integers.
func (pk *PublicKey) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, x := range [][]byte{pk.bigE.Bytes(), pk.n.Big().Bytes(), pk.m.Big().Bytes()} {
		var length [8]byte
		binary.BigEndian.PutUint64(length[:], uint64(len(x)))
		n, err := w.Write(length[:])
		total += int64(n)
		if err != nil {
			return total, err
		}
		n, err = w.Write(x)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Domain implements hash.WriterToWithDomain.
func (*PublicKey) Domain() string { return "ISRSAC Public Key" }

type publicKeyMarshal struct {
	E, N, M *big.Int
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (pk *PublicKey) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(&publicKeyMarshal{
		E: pk.bigE,
		N: pk.n.Big(),
		M: pk.m.Big(),
	})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (pk *PublicKey) UnmarshalBinary(data []byte) error {
	var tmp publicKeyMarshal
	if err := cbor.Unmarshal(data, &tmp); err != nil {
		return fmt.Errorf("isrsac: %w", err)
	}
	decoded, err := NewPublicKey(tmp.E, tmp.N, tmp.M)
	if err != nil {
		return err
	}
	*pk = *decoded
	return nil
}
