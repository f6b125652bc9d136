package isrsac

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/taurusgroup/isrsac-multisig/internal/params"
	"github.com/taurusgroup/isrsac-multisig/pkg/math/sample"
)

// ParameterSource supplies candidate primes, and the ISRSAC blinding value r.
//
// Setup may reject what a source supplies; SetupFrom asks the source again in that case.
type ParameterSource interface {
	Supply(ctx context.Context) (p, q *big.Int, r uint64, err error)
}

// FixedSource always supplies the same values. It is meant for tests and
// for parameters loaded from a configuration file.
type FixedSource struct {
	P, Q *big.Int
	R    uint64
}

// Supply implements ParameterSource.
func (s FixedSource) Supply(context.Context) (*big.Int, *big.Int, uint64, error) {
	if s.P == nil || s.Q == nil {
		return nil, nil, 0, fmt.Errorf("%w: fixed source has no primes", ErrNoPrimeFound)
	}
	return s.P, s.Q, s.R, nil
}

// RandomSource draws two distinct random primes of Bits bits each,
// and a blinding value r uniformly in [1, MaxBlinding].
type RandomSource struct {
	Bits int
	// MaxBlinding bounds r. When 0, r = 1 is always supplied, which satisfies
	// every ISRSAC constraint.
	MaxBlinding uint64
	// Rand defaults to crypto/rand.Reader.
	Rand io.Reader
}

// Supply implements ParameterSource.
func (s RandomSource) Supply(ctx context.Context) (*big.Int, *big.Int, uint64, error) {
	rnd := s.Rand
	if rnd == nil {
		rnd = rand.Reader
	}
	for i := 0; i < params.MaxPrimeAttempts; i++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, 0, err
		}
		p, err := sample.Prime(rnd, s.Bits)
		if err != nil {
			return nil, nil, 0, fmt.Errorf("%w: %v", ErrNoPrimeFound, err)
		}
		q, err := sample.Prime(rnd, s.Bits)
		if err != nil {
			return nil, nil, 0, fmt.Errorf("%w: %v", ErrNoPrimeFound, err)
		}
		if p.Cmp(q) == 0 {
			continue
		}
		r := uint64(1)
		if s.MaxBlinding > 1 {
			if r, err = sample.IntN(rnd, 1, s.MaxBlinding); err != nil {
				return nil, nil, 0, fmt.Errorf("%w: %v", ErrNoPrimeFound, err)
			}
		}
		return p, q, r, nil
	}
	return nil, nil, 0, fmt.Errorf("%w: no distinct pair after %d attempts", ErrNoPrimeFound, params.MaxPrimeAttempts)
}

// SetupFrom asks src for values until Setup accepts them, at most attempts times.
//
// Only ErrParameterConstraint is retried; any other error is returned immediately.
func SetupFrom(ctx context.Context, src ParameterSource, attempts int, opts ...Option) (*Parameters, error) {
	var lastErr error
	for i := 0; i < attempts; i++ {
		p, q, r, err := src.Supply(ctx)
		if err != nil {
			return nil, err
		}
		parameters, err := Setup(p, q, r, opts...)
		if err == nil {
			return parameters, nil
		}
		if !errors.Is(err, ErrParameterConstraint) {
			return nil, err
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("%w: no attempts made", ErrNoPrimeFound)
	}
	return nil, fmt.Errorf("isrsac.SetupFrom: gave up after %d attempts: %w", attempts, lastErr)
}
