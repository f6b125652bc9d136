package round

import (
	"errors"

	"github.com/taurusgroup/isrsac-multisig/pkg/party"
)

// Content represents the message, either broadcast or P2P returned by a round
// during finalization.
type Content interface {
	RoundNumber() Number
}

type Message struct {
	From, To  party.ID
	Broadcast bool
	Content   Content
}

var (
	// ErrInvalidContent is returned when the content of a message is not of the type expected by the round.
	ErrInvalidContent = errors.New("round: content is not the right type")
	// ErrOutChanFull is returned when a message could not be sent on the out channel.
	ErrOutChanFull = errors.New("round: out channel is full")
)
