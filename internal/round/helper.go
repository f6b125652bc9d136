package round

import (
	"fmt"

	"github.com/taurusgroup/isrsac-multisig/pkg/hash"
	"github.com/taurusgroup/isrsac-multisig/pkg/party"
	"github.com/taurusgroup/isrsac-multisig/pkg/pool"
)

// Helper holds what every round of an execution shares. Embedding it in the first round
// gives a Session; it is never modified after NewSession returns.
type Helper struct {
	info   Info
	ids    party.IDSlice
	others party.IDSlice
	ssid   []byte

	// Pool may be nil, in which case rounds compute sequentially.
	Pool *pool.Pool
}

// NewSession validates info and derives the SSID of the execution, which binds
// the protocol, the participants, sessionID and every element of auxInfo.
//
// sessionID should differ between executions with the same participants, and may be nil.
// All parties must pass the same sessionID and auxInfo, otherwise their messages are rejected.
func NewSession(info Info, sessionID []byte, pl *pool.Pool, auxInfo ...hash.WriterToWithDomain) (*Helper, error) {
	ids, err := info.validate()
	if err != nil {
		return nil, err
	}
	ssid, err := deriveSSID(info, ids, sessionID, auxInfo)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	return &Helper{
		info:   info,
		ids:    ids,
		others: ids.Remove(info.SelfID),
		ssid:   ssid,
		Pool:   pl,
	}, nil
}

func deriveSSID(info Info, ids party.IDSlice, sessionID []byte, auxInfo []hash.WriterToWithDomain) ([]byte, error) {
	values := []interface{}{
		hash.BytesWithDomain{TheDomain: "Protocol ID", Bytes: []byte(info.ProtocolID)},
		info.FinalRoundNumber,
		ids,
	}
	if sessionID != nil {
		values = append(values, hash.BytesWithDomain{TheDomain: "Session ID", Bytes: sessionID})
	}
	for _, a := range auxInfo {
		if a != nil {
			values = append(values, a)
		}
	}
	h := hash.New()
	if err := h.WriteAny(values...); err != nil {
		return nil, err
	}
	return h.Sum(), nil
}

// BroadcastMessage sends content to all other parties.
// It fails with ErrOutChanFull instead of blocking.
func (h *Helper) BroadcastMessage(out chan<- *Message, content Content) error {
	select {
	case out <- &Message{From: h.info.SelfID, Broadcast: true, Content: content}:
		return nil
	default:
		return ErrOutChanFull
	}
}

func (h *Helper) ProtocolID() string       { return h.info.ProtocolID }
func (h *Helper) FinalRoundNumber() Number { return h.info.FinalRoundNumber }

// SSID identifies the execution. It is the same for all parties.
func (h *Helper) SSID() []byte { return h.ssid }

func (h *Helper) SelfID() party.ID { return h.info.SelfID }

// PartyIDs returns the sorted participants.
func (h *Helper) PartyIDs() party.IDSlice { return h.ids }

// OtherPartyIDs returns PartyIDs without SelfID.
func (h *Helper) OtherPartyIDs() party.IDSlice { return h.others }

func (h *Helper) N() int { return len(h.ids) }
