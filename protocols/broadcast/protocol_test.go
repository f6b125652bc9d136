package broadcast

import (
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/isrsac-multisig/internal/round"
	"github.com/taurusgroup/isrsac-multisig/internal/test"
	"github.com/taurusgroup/isrsac-multisig/pkg/certificate"
	"github.com/taurusgroup/isrsac-multisig/pkg/party"
	"github.com/taurusgroup/isrsac-multisig/pkg/pool"
	"github.com/taurusgroup/isrsac-multisig/pkg/protocol"
)

func startRounds(t *testing.T, N int, v Variant, pl *pool.Pool) ([]round.Session, *Config) {
	pk, o, creds := setup(t, N)
	publics := certificate.Publics(creds...)
	signers := certificate.IDs(creds...)

	rounds := make([]round.Session, 0, N)
	var cfg *Config
	for i, cred := range creds {
		cfg = &Config{
			PublicKey:  pk,
			Oracle:     o,
			Credential: cred,
			Publics:    publics,
			Variant:    v,
			Rand:       test.Rand(int64(i)),
		}
		r, err := StartSign(cfg, signers, message, pl)(nil)
		require.NoError(t, err, "round creation should not result in an error")
		rounds = append(rounds, r)
	}
	return rounds, cfg
}

func TestRounds(t *testing.T) {
	pl := pool.NewPool(0)
	defer pl.TearDown()

	for _, v := range []Variant{Bound, Unbound} {
		rounds, cfg := startRounds(t, 4, v, pl)
		for {
			done, err := test.Rounds(rounds, nil)
			require.NoError(t, err, "failed to process round")
			if done {
				break
			}
		}

		var first *Signature
		for _, r := range rounds {
			require.IsType(t, &round.Output{}, r)
			sig, ok := r.(*round.Output).Result.(*Signature)
			require.True(t, ok)
			assert.True(t, Verify(cfg.PublicKey, cfg.Oracle, message, sig, mapValues(cfg.Publics)))
			if first == nil {
				first = sig
				continue
			}
			assert.Equal(t, saferith.Choice(1), first.D.Eq(sig.D), "every party outputs the same signature")
		}
	}
}

type corruptResponse struct {
	culprit party.ID
}

func (c corruptResponse) ModifyContent(from party.ID, content round.Content) {
	if body, ok := content.(*broadcast3); ok && from == c.culprit {
		body.D = new(big.Int).Add(body.D, big.NewInt(1))
	}
}

func TestRoundsCulprit(t *testing.T) {
	rounds, _ := startRounds(t, 3, Bound, nil)
	culprit := rounds[1].SelfID()
	for {
		done, err := test.Rounds(rounds, corruptResponse{culprit: culprit})
		require.NoError(t, err, "failed to process round")
		if done {
			break
		}
	}
	for _, r := range rounds {
		abort, ok := r.(*round.Abort)
		if r.SelfID() == culprit {
			// the culprit checks its own unmodified response
			require.IsType(t, &round.Output{}, r)
			continue
		}
		require.True(t, ok, "honest parties must abort")
		assert.Equal(t, []party.ID{culprit}, abort.Culprits)
		assert.True(t, errors.Is(abort.Err, ErrInvalidResponse))
	}
}

func TestStartSignErrors(t *testing.T) {
	_, cfg := startRounds(t, 2, Bound, nil)

	_, err := StartSign(cfg, []party.ID{cfg.Credential.ID, "unknown"}, message, nil)(nil)
	assert.Error(t, err, "missing public value")

	_, err = StartSign(cfg, []party.ID{"unknown"}, message, nil)(nil)
	assert.Error(t, err, "self not a signer")

	_, err = StartSign(&Config{}, []party.ID{cfg.Credential.ID}, message, nil)(nil)
	assert.Error(t, err)
}

func do(t *testing.T, cfg *Config, ids party.IDSlice, pl *pool.Pool, n *test.Network, wg *sync.WaitGroup) {
	defer wg.Done()
	h, err := protocol.NewMultiHandler(StartSign(cfg, ids, message, pl), []byte("session"),
		protocol.WithLogger(zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel)))
	if !assert.NoError(t, err) {
		return
	}
	r, err := test.RunHandler(cfg.Credential.ID, h, n)
	if !assert.NoError(t, err) {
		return
	}
	sig, ok := r.(*Signature)
	if assert.True(t, ok) {
		assert.True(t, Verify(cfg.PublicKey, cfg.Oracle, message, sig, mapValues(cfg.Publics)))
	}
}

func TestMultiHandler(t *testing.T) {
	N := 5
	pl := pool.NewPool(0)
	defer pl.TearDown()

	pk, o, creds := setup(t, N)
	publics := certificate.Publics(creds...)
	ids := certificate.IDs(creds...)
	n := test.NewNetwork(ids)

	var wg sync.WaitGroup
	wg.Add(N)
	for i, cred := range creds {
		cfg := &Config{
			PublicKey:  pk,
			Oracle:     o,
			Credential: cred,
			Publics:    publics,
			Rand:       test.Rand(int64(i)),
		}
		go do(t, cfg, ids, pl, n, &wg)
	}
	wg.Wait()
}

func mapValues(m map[party.ID]*saferith.Nat) []*saferith.Nat {
	out := make([]*saferith.Nat, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}
