package broadcast

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/isrsac-multisig/pkg/hash"
	"github.com/taurusgroup/isrsac-multisig/pkg/isrsac"
	"github.com/taurusgroup/isrsac-multisig/pkg/math/arith"
	"github.com/taurusgroup/isrsac-multisig/pkg/party"
	"github.com/taurusgroup/isrsac-multisig/pkg/pool"
)

// Aggregator collects the commitments and responses of a fixed set of signers.
//
// The challenge is only derived once every commitment was received,
// and the signature once every response was received.
// It is safe for concurrent use.
type Aggregator struct {
	pk      *isrsac.PublicKey
	oracle  hash.Oracle
	variant Variant

	signers party.IDSlice
	publics map[party.ID]*saferith.Nat

	commitments map[party.ID]*saferith.Nat
	responses   map[party.ID]*saferith.Nat

	message   []byte
	challenge *Challenge

	mtx sync.Mutex
}

// NewAggregator returns an Aggregator for the signers whose public values hᵢ are given.
func NewAggregator(pk *isrsac.PublicKey, o hash.Oracle, publics map[party.ID]*saferith.Nat, v Variant) (*Aggregator, error) {
	if len(publics) == 0 {
		return nil, fmt.Errorf("broadcast: %w: no signers", ErrIncompleteRound)
	}
	if !v.valid() {
		return nil, fmt.Errorf("broadcast: unknown variant %d", v)
	}
	ids := make([]party.ID, 0, len(publics))
	copied := make(map[party.ID]*saferith.Nat, len(publics))
	for id, h := range publics {
		if h == nil || arith.Reduce(h, pk.M()).IsUnit(pk.M()) != 1 {
			return nil, fmt.Errorf("broadcast: public value of %q is not a unit", id)
		}
		ids = append(ids, id)
		copied[id] = h
	}
	signers := party.NewIDSlice(ids)
	if !signers.Valid() {
		return nil, fmt.Errorf("broadcast: invalid signer set %v", signers)
	}
	return &Aggregator{
		pk:          pk,
		oracle:      o,
		variant:     v,
		signers:     signers,
		publics:     copied,
		commitments: make(map[party.ID]*saferith.Nat, len(ids)),
		responses:   make(map[party.ID]*saferith.Nat, len(ids)),
	}, nil
}

// Signers returns the sorted signer set.
func (a *Aggregator) Signers() party.IDSlice { return a.signers }

// AddCommitment records Rᵢ.
func (a *Aggregator) AddCommitment(c *Commitment) error {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	if !a.signers.Contains(c.ID) {
		return fmt.Errorf("%w: %q", ErrUnexpectedParticipant, c.ID)
	}
	if a.challenge != nil {
		return ErrChallengeFixed
	}
	if _, ok := a.commitments[c.ID]; ok {
		return fmt.Errorf("%w: commitment of %q", ErrDuplicate, c.ID)
	}
	if !validCommitment(a.pk, c.R) {
		return fmt.Errorf("%w: from %q", ErrInvalidCommitment, c.ID)
	}
	a.commitments[c.ID] = c.R
	return nil
}

// Challenge returns K and l for message.
// It fails with ErrIncompleteRound as long as a commitment is missing.
// Subsequent calls with the same message return the same challenge.
func (a *Aggregator) Challenge(message []byte) (*Challenge, error) {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	if a.challenge != nil {
		if !bytes.Equal(a.message, message) {
			return nil, ErrChallengeFixed
		}
		return a.challenge, nil
	}
	if missing := a.missing(a.commitments); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing commitments from %v", ErrIncompleteRound, missing)
	}
	Rs := make([]*saferith.Nat, 0, len(a.signers))
	for _, id := range a.signers {
		Rs = append(Rs, a.commitments[id])
	}
	K := a.pk.ModN().Mul(Rs...)
	l, err := DeriveChallenge(a.pk, a.oracle, K, message)
	if err != nil {
		return nil, err
	}
	a.message = append([]byte(nil), message...)
	a.challenge = &Challenge{K: K, L: l}
	return a.challenge, nil
}

// AddResponse records Dᵢ. Responses are checked when aggregating.
func (a *Aggregator) AddResponse(p *PartialSignature) error {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	if !a.signers.Contains(p.ID) {
		return fmt.Errorf("%w: %q", ErrUnexpectedParticipant, p.ID)
	}
	if a.challenge == nil {
		return fmt.Errorf("%w: response of %q before the challenge", ErrIncompleteRound, p.ID)
	}
	if _, ok := a.responses[p.ID]; ok {
		return fmt.Errorf("%w: response of %q", ErrDuplicate, p.ID)
	}
	if p.D == nil {
		return fmt.Errorf("%w: empty response from %q", ErrInvalidResponse, p.ID)
	}
	a.responses[p.ID] = p.D
	return nil
}

// ResponseError identifies the signers whose response did not verify.
type ResponseError struct {
	Culprits []party.ID
}

// Error implements error.
func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s from %v", ErrInvalidResponse, e.Culprits)
}

// Unwrap returns ErrInvalidResponse.
func (e *ResponseError) Unwrap() error { return ErrInvalidResponse }

// Aggregate checks every response against the commitment of its sender,
// possibly in parallel on pl, and returns the aggregated signature.
// If some responses are invalid, a *ResponseError is returned.
func (a *Aggregator) Aggregate(pl *pool.Pool) (*Signature, error) {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	if a.challenge == nil {
		return nil, fmt.Errorf("%w: no challenge", ErrIncompleteRound)
	}
	if missing := a.missing(a.responses); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing responses from %v", ErrIncompleteRound, missing)
	}

	results := pl.Parallelize(len(a.signers), func(i int) interface{} {
		id := a.signers[i]
		return VerifyResponse(a.pk, a.challenge, a.variant, a.commitments[id], a.publics[id], a.responses[id])
	})
	var culprits []party.ID
	for i, ok := range results {
		if !ok.(bool) {
			culprits = append(culprits, a.signers[i])
		}
	}
	if len(culprits) > 0 {
		return nil, &ResponseError{Culprits: culprits}
	}

	Ds := make([]*saferith.Nat, 0, len(a.signers))
	for _, id := range a.signers {
		Ds = append(Ds, a.responses[id])
	}
	return &Signature{
		D:       a.pk.ModN().Mul(Ds...),
		K:       a.challenge.K.Clone(),
		L:       a.challenge.L.Clone(),
		Variant: a.variant,
		Signers: a.signers.Copy(),
	}, nil
}

func (a *Aggregator) missing(received map[party.ID]*saferith.Nat) []party.ID {
	var missing []party.ID
	for _, id := range a.signers {
		if _, ok := received[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
