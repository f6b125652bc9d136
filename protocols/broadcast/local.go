package broadcast

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/isrsac-multisig/pkg/certificate"
	"github.com/taurusgroup/isrsac-multisig/pkg/hash"
	"github.com/taurusgroup/isrsac-multisig/pkg/isrsac"
	"github.com/taurusgroup/isrsac-multisig/pkg/party"
	"github.com/taurusgroup/isrsac-multisig/pkg/pool"
	"golang.org/x/sync/errgroup"
)

type config struct {
	variant Variant
	pool    *pool.Pool
	rand    io.Reader
}

// Option configures Sign.
type Option func(*config)

// WithVariant selects the response equation. The default is Bound.
func WithVariant(v Variant) Option {
	return func(c *config) { c.variant = v }
}

// WithPool runs the per-signer computations on pl instead of one goroutine per signer.
func WithPool(pl *pool.Pool) Option {
	return func(c *config) { c.pool = pl }
}

// WithRand sets the source of the nonces. The default is crypto/rand.Reader.
func WithRand(r io.Reader) Option {
	return func(c *config) { c.rand = r }
}

// Transcript holds every value produced while signing, in order to be reported.
type Transcript struct {
	Message     []byte
	Variant     Variant
	Signers     party.IDSlice
	Publics     map[party.ID]*saferith.Nat
	Commitments map[party.ID]*saferith.Nat
	Challenge   *Challenge
	Responses   map[party.ID]*saferith.Nat
	Signature   *Signature
}

// PublicValues returns the public values of the signers in signer order, as expected by Verify.
func (t *Transcript) PublicValues() []*saferith.Nat {
	out := make([]*saferith.Nat, 0, len(t.Signers))
	for _, id := range t.Signers {
		out = append(out, t.Publics[id])
	}
	return out
}

// Sign runs the broadcast protocol for signers whose credentials are all held locally.
//
// The commitment and response phases are computed in parallel, with a barrier between them.
func Sign(ctx context.Context, pk *isrsac.PublicKey, o hash.Oracle, creds []*certificate.Credential, message []byte, opts ...Option) (*Transcript, error) {
	c := config{variant: Bound, rand: rand.Reader}
	for _, opt := range opts {
		opt(&c)
	}
	rnd := pool.NewLockedReader(c.rand)

	agg, err := NewAggregator(pk, o, certificate.Publics(creds...), c.variant)
	if err != nil {
		return nil, err
	}
	if len(agg.Signers()) != len(creds) {
		return nil, fmt.Errorf("%w: credentials with the same identifier", ErrDuplicate)
	}

	nonces := make([]*Nonce, len(creds))
	err = parallel(ctx, c.pool, len(creds), func(i int) error {
		nonce, R, err := Commit(pk, rnd)
		if err != nil {
			return err
		}
		nonces[i] = nonce
		return agg.AddCommitment(&Commitment{ID: creds[i].ID, R: R})
	})
	if err != nil {
		return nil, err
	}

	ch, err := agg.Challenge(message)
	if err != nil {
		return nil, err
	}

	err = parallel(ctx, c.pool, len(creds), func(i int) error {
		partial, err := Respond(pk, creds[i], nonces[i], ch, c.variant)
		if err != nil {
			return err
		}
		return agg.AddResponse(partial)
	})
	if err != nil {
		return nil, err
	}

	sig, err := agg.Aggregate(c.pool)
	if err != nil {
		return nil, err
	}

	return &Transcript{
		Message:     message,
		Variant:     c.variant,
		Signers:     agg.Signers(),
		Publics:     cloneValues(agg.publics),
		Commitments: cloneValues(agg.commitments),
		Challenge:   &Challenge{K: ch.K.Clone(), L: ch.L.Clone()},
		Responses:   cloneValues(agg.responses),
		Signature:   sig,
	}, nil
}

// cloneValues returns a deep copy of m, so that a Transcript does not alias the state of an Aggregator.
func cloneValues(m map[party.ID]*saferith.Nat) map[party.ID]*saferith.Nat {
	out := make(map[party.ID]*saferith.Nat, len(m))
	for id, x := range m {
		out[id] = x.Clone()
	}
	return out
}

// SignSingle is the broadcast protocol with a single signer, where K = R and D = D₁.
func SignSingle(pk *isrsac.PublicKey, o hash.Oracle, cred *certificate.Credential, message []byte, rand io.Reader, v Variant) (*Signature, error) {
	nonce, R, err := Commit(pk, rand)
	if err != nil {
		return nil, err
	}
	l, err := DeriveChallenge(pk, o, R, message)
	if err != nil {
		return nil, err
	}
	ch := &Challenge{K: R, L: l}
	partial, err := Respond(pk, cred, nonce, ch, v)
	if err != nil {
		return nil, err
	}
	return &Signature{
		D:       partial.D,
		K:       R,
		L:       l,
		Variant: v,
		Signers: party.IDSlice{cred.ID},
	}, nil
}

// parallel evaluates f for 0..count-1, on pl if it is set, and otherwise on one goroutine each.
// The first error is returned.
func parallel(ctx context.Context, pl *pool.Pool, count int, f func(i int) error) error {
	if pl != nil {
		results := pl.Parallelize(count, func(i int) interface{} {
			if err := ctx.Err(); err != nil {
				return err
			}
			return f(i)
		})
		for _, r := range results {
			if err, ok := r.(error); ok && err != nil {
				return err
			}
		}
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < count; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return f(i)
		})
	}
	err := g.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("broadcast: signing interrupted: %w", err)
	}
	return err
}
