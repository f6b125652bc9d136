package test

import (
	"github.com/taurusgroup/isrsac-multisig/pkg/party"
	"github.com/taurusgroup/isrsac-multisig/pkg/protocol"
)

// RunHandler relays messages between h and network until h closes its outgoing channel,
// waits for every other party to finish, and returns the result of h.
func RunHandler(id party.ID, h protocol.Handler, network *Network) (interface{}, error) {
	incoming := network.Next(id)
	outgoing := h.Listen()
	for {
		select {
		case msg, ok := <-outgoing:
			if !ok {
				<-network.Done(id)
				return h.Result()
			}
			go network.Send(msg)
		case msg := <-incoming:
			h.Accept(msg)
		}
	}
}
