package round

import (
	"errors"

	"github.com/taurusgroup/isrsac-multisig/pkg/party"
)

// Info describes a protocol execution from the point of view of one party.
type Info struct {
	ProtocolID string
	// FinalRoundNumber is the number of rounds before the output round.
	FinalRoundNumber Number
	SelfID           party.ID
	// PartyIDs contains every participant, including SelfID, in any order.
	PartyIDs []party.ID
}

func (info Info) validate() (party.IDSlice, error) {
	if info.ProtocolID == "" {
		return nil, errors.New("session: empty protocol identifier")
	}
	if info.FinalRoundNumber == 0 {
		return nil, errors.New("session: protocol must have at least one round")
	}
	ids := party.NewIDSlice(info.PartyIDs)
	if !ids.Valid() {
		return nil, errors.New("session: party identifiers must be distinct and non empty")
	}
	if !ids.Contains(info.SelfID) {
		return nil, errors.New("session: own identifier missing from the participants")
	}
	return ids, nil
}
