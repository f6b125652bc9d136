// Package sequential implements the sequential multi-signature over an ISRSAC modulus.
//
// Signers are applied one after the other to an Accumulator. Signer i samples rᵢ and computes
//
//	Kᵢ = Kᵢ₋₁⋅rᵢᵉ,  mᵢ = H(M, Kᵢ mod m),  Dᵢ = Dᵢ₋₁⋅rᵢ⋅Sᵢ^mᵢ,  fᵢ = hᵢ^mᵢ  (mod n).
//
// The signature is the final (K, m, D, f) together with the chain of intermediate Kᵢ.
// Unlike the broadcast protocol, the order of the signers changes the signature.
package sequential

import (
	"errors"
	"fmt"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/isrsac-multisig/pkg/certificate"
	"github.com/taurusgroup/isrsac-multisig/pkg/hash"
	"github.com/taurusgroup/isrsac-multisig/pkg/isrsac"
	"github.com/taurusgroup/isrsac-multisig/pkg/math/arith"
	"github.com/taurusgroup/isrsac-multisig/pkg/math/sample"
	"github.com/taurusgroup/isrsac-multisig/pkg/party"
)

// ErrDuplicate is returned when a signer is applied twice to the same accumulator.
var ErrDuplicate = errors.New("sequential: signer already applied")

// Link records the state after a signer was applied.
type Link struct {
	ID party.ID
	// K = Kᵢ
	K *saferith.Nat
	// M = mᵢ
	M *saferith.Nat
}

// Accumulator is the state passed from one signer to the next.
// It is never modified, Step returns a new one.
type Accumulator struct {
	K, D, F *saferith.Nat
	// M is the challenge of the last signer, nil before the first step.
	M     *saferith.Nat
	Chain []Link
}

// NewAccumulator returns the empty accumulator, with K = D = f = 1.
func NewAccumulator() *Accumulator {
	one := func() *saferith.Nat { return new(saferith.Nat).SetUint64(1) }
	return &Accumulator{K: one(), D: one(), F: one()}
}

// Len returns the number of signers applied so far.
func (acc *Accumulator) Len() int { return len(acc.Chain) }

func (acc *Accumulator) contains(id party.ID) bool {
	for _, l := range acc.Chain {
		if l.ID == id {
			return true
		}
	}
	return false
}

// Signature returns the signature of the signers applied so far.
func (acc *Accumulator) Signature() (*Signature, error) {
	if acc.Len() == 0 {
		return nil, errors.New("sequential: no signer was applied")
	}
	return &Signature{
		K:     acc.K,
		M:     acc.M,
		D:     acc.D,
		F:     acc.F,
		Chain: append([]Link(nil), acc.Chain...),
	}, nil
}

func challenge(pk *isrsac.PublicKey, o hash.Oracle, message []byte, K *saferith.Nat) (*saferith.Nat, error) {
	m, err := o.Sum(hash.DomainSequentialChallenge, message, arith.Reduce(K, pk.M()))
	if err != nil {
		return nil, fmt.Errorf("sequential: failed to derive challenge: %w", err)
	}
	return m, nil
}

// Step applies the signer holding cred to acc, with a fresh nonce from rand.
func Step(pk *isrsac.PublicKey, o hash.Oracle, acc *Accumulator, cred *certificate.Credential, message []byte, rand io.Reader) (*Accumulator, error) {
	if acc == nil {
		acc = NewAccumulator()
	}
	if acc.contains(cred.ID) {
		return nil, fmt.Errorf("%w: %q", ErrDuplicate, cred.ID)
	}
	n := pk.N()

	r, err := sample.Nonce(rand, n, pk.M())
	if err != nil {
		return nil, fmt.Errorf("sequential.Step: %w", err)
	}

	ring := pk.ModN()
	K := ring.Mul(pk.ExpE(r), acc.K)

	m, err := challenge(pk, o, message, K)
	if err != nil {
		return nil, err
	}

	D := ring.Mul(ring.Exp(cred.S, m), r, acc.D)
	F := ring.Exp(cred.H, m)

	chain := make([]Link, len(acc.Chain), len(acc.Chain)+1)
	copy(chain, acc.Chain)
	chain = append(chain, Link{ID: cred.ID, K: K, M: m})

	return &Accumulator{
		K:     K,
		D:     D,
		F:     F,
		M:     m,
		Chain: chain,
	}, nil
}

// Sign applies the signers in the given order.
func Sign(pk *isrsac.PublicKey, o hash.Oracle, creds []*certificate.Credential, message []byte, rand io.Reader) (*Signature, error) {
	acc := NewAccumulator()
	var err error
	for _, cred := range creds {
		if acc, err = Step(pk, o, acc, cred, message, rand); err != nil {
			return nil, err
		}
	}
	return acc.Signature()
}
