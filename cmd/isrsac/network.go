package main

import (
	"fmt"
	"sync"

	"github.com/taurusgroup/isrsac-multisig/pkg/certificate"
	"github.com/taurusgroup/isrsac-multisig/pkg/party"
	"github.com/taurusgroup/isrsac-multisig/pkg/pool"
	"github.com/taurusgroup/isrsac-multisig/pkg/protocol"
	"github.com/taurusgroup/isrsac-multisig/protocols/broadcast"
)

// chanNetwork delivers the messages of a session between handlers running in the same process.
type chanNetwork struct {
	mtx            sync.Mutex
	listenChannels map[party.ID]chan *protocol.Message
}

func newChanNetwork(parties []party.ID) *chanNetwork {
	n := len(parties)
	lc := make(map[party.ID]chan *protocol.Message, n)
	for _, id := range parties {
		lc[id] = make(chan *protocol.Message, 2*n*n)
	}
	return &chanNetwork{listenChannels: lc}
}

func (c *chanNetwork) Next(id party.ID) <-chan *protocol.Message {
	return c.listenChannels[id]
}

// Send encodes msg and delivers a decoded copy to every recipient, as a real transport would.
func (c *chanNetwork) Send(msg *protocol.Message) {
	data, err := msg.MarshalBinary()
	if err != nil {
		logger.Error().Err(err).Msg("encoding message")
		return
	}
	c.mtx.Lock()
	defer c.mtx.Unlock()
	for id, ch := range c.listenChannels {
		if !msg.IsFor(id) {
			continue
		}
		var received protocol.Message
		if err = received.UnmarshalBinary(data); err != nil {
			logger.Error().Err(err).Msg("decoding message")
			return
		}
		logger.Debug().Stringer("message", &received).Str("to", string(id)).Hex("digest", received.Hash()).Msg("delivering")
		ch <- &received
	}
}

// run forwards messages between h and the network until the protocol ends.
func (c *chanNetwork) run(id party.ID, h protocol.Handler) {
	incoming := c.Next(id)
	outgoing := h.Listen()
	for {
		select {
		case msg, ok := <-outgoing:
			if !ok {
				return
			}
			c.Send(msg)
		case msg := <-incoming:
			h.Accept(msg)
		}
	}
}

// signNetworked runs one broadcast.StartSign handler per credential, and returns the signature
// they agreed on.
func signNetworked(s *session, message []byte, v broadcast.Variant, pl *pool.Pool) (*broadcast.Signature, error) {
	ids := certificate.IDs(s.creds...)
	publics := certificate.Publics(s.creds...)
	sessionID := []byte(fmt.Sprintf("isrsac %s", message))
	network := newChanNetwork(ids)

	handlers := make([]*protocol.MultiHandler, len(s.creds))
	for i, cred := range s.creds {
		cfg := &broadcast.Config{
			PublicKey:  s.pk,
			Oracle:     s.oracle,
			Credential: cred,
			Publics:    publics,
			Variant:    v,
		}
		h, err := protocol.NewMultiHandler(broadcast.StartSign(cfg, ids, message, pl), sessionID,
			protocol.WithLogger(logger.With().Str("party", string(cred.ID)).Logger()))
		if err != nil {
			return nil, err
		}
		handlers[i] = h
	}

	var wg sync.WaitGroup
	for i, h := range handlers {
		wg.Add(1)
		go func(id party.ID, h *protocol.MultiHandler) {
			defer wg.Done()
			network.run(id, h)
		}(s.creds[i].ID, h)
	}
	wg.Wait()

	var sig *broadcast.Signature
	for i, h := range handlers {
		result, err := h.Result()
		if err != nil {
			return nil, fmt.Errorf("party %q: %w", s.creds[i].ID, err)
		}
		partySig, ok := result.(*broadcast.Signature)
		if !ok {
			return nil, errNoSignature
		}
		if sig == nil {
			sig = partySig
			continue
		}
		if sig.D.Eq(partySig.D) != 1 {
			return nil, fmt.Errorf("party %q produced a different signature", s.creds[i].ID)
		}
	}
	return sig, nil
}
