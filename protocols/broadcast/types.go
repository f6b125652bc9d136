package broadcast

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"
	"github.com/taurusgroup/isrsac-multisig/pkg/math/arith"
	"github.com/taurusgroup/isrsac-multisig/pkg/party"
)

// Nonce is the secret rᵢ of a signer. It can be used for a single response.
type Nonce struct {
	r   *saferith.Nat
	mtx sync.Mutex
}

// NewNonce wraps r. It is meant for tests replaying known values, Commit should be used otherwise.
func NewNonce(r *saferith.Nat) *Nonce {
	return &Nonce{r: r.Clone()}
}

// take returns r and erases it from the Nonce.
func (n *Nonce) take() (*saferith.Nat, error) {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	if n.r == nil {
		return nil, ErrNonceReused
	}
	r := n.r
	n.r = nil
	return r, nil
}

// Used returns true once the nonce was consumed by Respond.
func (n *Nonce) Used() bool {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	return n.r == nil
}

// Commitment is the published Rᵢ = rᵢᵉ (mod n) of a signer.
type Commitment struct {
	ID party.ID
	R  *saferith.Nat
}

// Challenge is the aggregate commitment K = ∏ Rᵢ (mod n) and the derived l = H(K mod m, M).
type Challenge struct {
	K *saferith.Nat
	L *saferith.Nat
}

// PartialSignature is the response Dᵢ of a signer.
type PartialSignature struct {
	ID party.ID
	D  *saferith.Nat
}

// Signature is an aggregated broadcast multi-signature.
type Signature struct {
	// D = ∏ Dᵢ (mod n)
	D *saferith.Nat
	// K = ∏ Rᵢ (mod n). It may be nil, in which case only l is checked.
	K *saferith.Nat
	// L = H(K mod m, M)
	L *saferith.Nat
	// Variant is the response equation used by the signers.
	Variant Variant
	// Signers are the sorted identifiers of the signers.
	Signers party.IDSlice
}

type signatureMarshal struct {
	D, K, L *big.Int
	Variant Variant
	Signers []party.ID
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (s *Signature) MarshalBinary() ([]byte, error) {
	tmp := signatureMarshal{
		D:       s.D.Big(),
		L:       s.L.Big(),
		Variant: s.Variant,
		Signers: s.Signers,
	}
	if s.K != nil {
		tmp.K = s.K.Big()
	}
	return cbor.Marshal(tmp)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (s *Signature) UnmarshalBinary(data []byte) error {
	var tmp signatureMarshal
	if err := cbor.Unmarshal(data, &tmp); err != nil {
		return fmt.Errorf("broadcast: %w", err)
	}
	if tmp.D == nil || tmp.L == nil || tmp.D.Sign() < 0 || tmp.L.Sign() < 0 {
		return errors.New("broadcast: incomplete signature")
	}
	if !tmp.Variant.valid() {
		return fmt.Errorf("broadcast: unknown variant %d", tmp.Variant)
	}
	s.D = arith.NatFromBig(tmp.D)
	s.L = arith.NatFromBig(tmp.L)
	s.K = nil
	if tmp.K != nil {
		if tmp.K.Sign() < 0 {
			return errors.New("broadcast: negative commitment")
		}
		s.K = arith.NatFromBig(tmp.K)
	}
	s.Variant = tmp.Variant
	s.Signers = party.NewIDSlice(tmp.Signers)
	return nil
}
