package sequential

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"
	"github.com/taurusgroup/isrsac-multisig/pkg/hash"
	"github.com/taurusgroup/isrsac-multisig/pkg/isrsac"
	"github.com/taurusgroup/isrsac-multisig/pkg/math/arith"
	"github.com/taurusgroup/isrsac-multisig/pkg/party"
)

// Signature is a sequential multi-signature.
type Signature struct {
	K, M, D, F *saferith.Nat
	// Chain lists the signers in the order they were applied.
	Chain []Link
}

// Signers returns the signers in the order they were applied.
func (s *Signature) Signers() []party.ID {
	ids := make([]party.ID, 0, len(s.Chain))
	for _, l := range s.Chain {
		ids = append(ids, l.ID)
	}
	return ids
}

// Verify recomputes m' = H(M, K) and returns true if it is equal to m.
//
// This only binds K to the message, VerifyChain also checks D and f against the signers' public values.
func Verify(pk *isrsac.PublicKey, o hash.Oracle, message []byte, sig *Signature) bool {
	if sig == nil || !arith.IsUnit(sig.K, pk.M()) || sig.M == nil {
		return false
	}
	m, err := challenge(pk, o, message, sig.K)
	if err != nil {
		return false
	}
	return m.Eq(sig.M) == 1
}

// VerifyChain recomputes every mᵢ from the recorded Kᵢ, and checks that
//
//	Dᵉ ≡ K⋅∏ hᵢ^mᵢ (mod m),  f ≡ hₗ^mₗ (mod n)
//
// where l is the last signer. publics must hold the public value of every signer in the chain.
func VerifyChain(pk *isrsac.PublicKey, o hash.Oracle, message []byte, sig *Signature, publics map[party.ID]*saferith.Nat) bool {
	if !Verify(pk, o, message, sig) || !arith.IsUnit(sig.D, pk.M()) || sig.F == nil || len(sig.Chain) == 0 {
		return false
	}
	last := sig.Chain[len(sig.Chain)-1]
	if last.K == nil || last.K.Eq(sig.K) != 1 {
		return false
	}

	mod := pk.M()
	expected := arith.Reduce(sig.K, mod)
	seen := make(map[party.ID]bool, len(sig.Chain))
	for _, link := range sig.Chain {
		if seen[link.ID] || !arith.IsUnit(link.K, mod) {
			return false
		}
		seen[link.ID] = true
		h, ok := publics[link.ID]
		if !ok || h == nil {
			return false
		}
		m, err := challenge(pk, o, message, link.K)
		if err != nil {
			return false
		}
		if link.M != nil && link.M.Eq(m) != 1 {
			return false
		}
		hm := new(saferith.Nat).Exp(arith.Reduce(h, mod), m, mod)
		expected.ModMul(expected, hm, mod)
	}
	if !arith.Equal(pk.ExpEModM(sig.D), expected, mod) {
		return false
	}

	ring := pk.ModN()
	f := ring.Exp(publics[last.ID], sig.M)
	return f.Eq(ring.Reduce(sig.F)) == 1
}

type linkMarshal struct {
	ID   party.ID
	K, M *big.Int
}

type signatureMarshal struct {
	K, M, D, F *big.Int
	Chain      []linkMarshal
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (s *Signature) MarshalBinary() ([]byte, error) {
	tmp := signatureMarshal{
		K:     s.K.Big(),
		M:     s.M.Big(),
		D:     s.D.Big(),
		F:     s.F.Big(),
		Chain: make([]linkMarshal, 0, len(s.Chain)),
	}
	for _, l := range s.Chain {
		tmp.Chain = append(tmp.Chain, linkMarshal{ID: l.ID, K: l.K.Big(), M: l.M.Big()})
	}
	return cbor.Marshal(tmp)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (s *Signature) UnmarshalBinary(data []byte) error {
	var tmp signatureMarshal
	if err := cbor.Unmarshal(data, &tmp); err != nil {
		return fmt.Errorf("sequential: %w", err)
	}
	for _, x := range []*big.Int{tmp.K, tmp.M, tmp.D, tmp.F} {
		if x == nil || x.Sign() < 0 {
			return errors.New("sequential: incomplete signature")
		}
	}
	chain := make([]Link, 0, len(tmp.Chain))
	for _, l := range tmp.Chain {
		if l.K == nil || l.M == nil || l.K.Sign() < 0 || l.M.Sign() < 0 {
			return errors.New("sequential: incomplete chain")
		}
		chain = append(chain, Link{ID: l.ID, K: arith.NatFromBig(l.K), M: arith.NatFromBig(l.M)})
	}
	s.K = arith.NatFromBig(tmp.K)
	s.M = arith.NatFromBig(tmp.M)
	s.D = arith.NatFromBig(tmp.D)
	s.F = arith.NatFromBig(tmp.F)
	s.Chain = chain
	return nil
}
