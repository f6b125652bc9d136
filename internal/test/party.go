package test

import (
	"fmt"

	"github.com/taurusgroup/isrsac-multisig/pkg/party"
)

// PartyIDs returns a party.IDSlice (sorted) with IDs represented as simple strings.
func PartyIDs(n int) party.IDSlice {
	ids := make(party.IDSlice, n)
	for i := range ids {
		ids[i] = party.ID(fmt.Sprintf("signer-%02d", i))
	}
	return party.NewIDSlice(ids)
}
