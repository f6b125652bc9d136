package test

import (
	"sync"

	"github.com/taurusgroup/isrsac-multisig/pkg/party"
	"github.com/taurusgroup/isrsac-multisig/pkg/protocol"
)

// Network is an in-memory transport between the parties of a test.
// Every delivered message goes through the wire encoding of protocol.Message.
type Network struct {
	parties          party.IDSlice
	listenChannels   map[party.ID]chan *protocol.Message
	done             chan struct{}
	closedListenChan chan *protocol.Message
	mtx              sync.Mutex
}

// NewNetwork returns a Network connecting the given parties.
func NewNetwork(parties party.IDSlice) *Network {
	closed := make(chan *protocol.Message)
	close(closed)
	n := &Network{
		parties:          parties,
		listenChannels:   make(map[party.ID]chan *protocol.Message, len(parties)),
		done:             make(chan struct{}),
		closedListenChan: closed,
	}
	N := len(parties)
	for _, id := range parties {
		n.listenChannels[id] = make(chan *protocol.Message, 2*N*N)
	}
	return n
}

// Next returns the channel of messages delivered to id.
func (n *Network) Next(id party.ID) <-chan *protocol.Message {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	c, ok := n.listenChannels[id]
	if !ok {
		return n.closedListenChan
	}
	return c
}

// Send delivers msg to every party it is addressed to which is still listening.
// Messages that cannot be encoded or decoded are dropped.
func (n *Network) Send(msg *protocol.Message) {
	data, err := msg.MarshalBinary()
	if err != nil {
		return
	}
	n.mtx.Lock()
	defer n.mtx.Unlock()
	for id, c := range n.listenChannels {
		if !msg.IsFor(id) {
			continue
		}
		var received protocol.Message
		if err = received.UnmarshalBinary(data); err != nil {
			return
		}
		c <- &received
	}
}

// Done marks id as finished, and returns a channel closed once every party is.
func (n *Network) Done(id party.ID) chan struct{} {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	if _, ok := n.listenChannels[id]; ok {
		delete(n.listenChannels, id)
		if len(n.listenChannels) == 0 {
			close(n.done)
		}
	}
	return n.done
}
