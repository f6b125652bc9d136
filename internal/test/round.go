package test

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/taurusgroup/isrsac-multisig/internal/round"
	"github.com/taurusgroup/isrsac-multisig/pkg/party"
	"golang.org/x/sync/errgroup"
)

// Rule describes hooks that can be applied to a protocol execution, in order to simulate misbehaving parties.
type Rule interface {
	// ModifyContent modifies the content of a message sent by from, before it is delivered.
	ModifyContent(from party.ID, content round.Content)
}

// Rounds finalizes every session, and delivers the resulting messages to the others through the cbor encoding.
// It returns true once all sessions have reached an Output or Abort round.
func Rounds(rounds []round.Session, rule Rule) (bool, error) {
	var (
		errGroup errgroup.Group
		N        = len(rounds)
		out      = make(chan *round.Message, N*(N+1))
		mtx      sync.Mutex
	)

	if _, err := checkAllRoundsSame(rounds); err != nil {
		return false, err
	}

	for idx := range rounds {
		idx := idx
		errGroup.Go(func() error {
			r := rounds[idx]
			local := make(chan *round.Message, N+1)
			rNew, err := r.Finalize(local)
			close(local)
			if err != nil {
				return err
			}
			for msg := range local {
				if rule != nil {
					rule.ModifyContent(msg.From, msg.Content)
				}
				out <- msg
			}
			if rNew != nil {
				mtx.Lock()
				rounds[idx] = rNew
				mtx.Unlock()
			}
			return nil
		})
	}
	if err := errGroup.Wait(); err != nil {
		return false, err
	}
	close(out)

	if allFinished(rounds) {
		return true, nil
	}
	if _, err := checkAllRoundsSame(rounds); err != nil {
		return false, err
	}

	for msg := range out {
		msgBytes, err := cbor.Marshal(msg.Content)
		if err != nil {
			return false, err
		}
		for _, r := range rounds {
			r := r
			if msg.From == r.SelfID() || msg.Content.RoundNumber() != r.Number() {
				continue
			}
			if msg.To != "" && msg.To != r.SelfID() {
				continue
			}
			m := *msg
			errGroup.Go(func() error {
				return deliver(r, m, msgBytes)
			})
		}
		if err = errGroup.Wait(); err != nil {
			return false, err
		}
	}

	return false, nil
}

func deliver(r round.Session, m round.Message, data []byte) error {
	if m.Broadcast {
		b, ok := r.(round.BroadcastRound)
		if !ok {
			return errors.New("broadcast message but not broadcast round")
		}
		m.Content = b.BroadcastContent()
		if err := cbor.Unmarshal(data, m.Content); err != nil {
			return err
		}
		return b.StoreBroadcastMessage(m)
	}

	m.Content = r.MessageContent()
	if m.Content == nil {
		return errors.New("message but round does not expect one")
	}
	if err := cbor.Unmarshal(data, m.Content); err != nil {
		return err
	}
	if err := r.VerifyMessage(m); err != nil {
		return err
	}
	return r.StoreMessage(m)
}

// allFinished returns true if every session reached an Output or an Abort.
// Honest parties may abort while a misbehaving one reaches the output.
func allFinished(rounds []round.Session) bool {
	for _, r := range rounds {
		switch r.(type) {
		case *round.Output, *round.Abort:
		default:
			return false
		}
	}
	return true
}

func checkAllRoundsSame(rounds []round.Session) (reflect.Type, error) {
	var t reflect.Type
	for _, r := range rounds {
		t2 := reflect.TypeOf(r)
		if t == nil {
			t = t2
		} else if t != t2 {
			return t, fmt.Errorf("two different rounds: %s %s", t, t2)
		}
	}
	return t, nil
}
