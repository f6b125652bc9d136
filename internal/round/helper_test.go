package round_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/isrsac-multisig/internal/round"
	"github.com/taurusgroup/isrsac-multisig/internal/test"
	"github.com/taurusgroup/isrsac-multisig/pkg/hash"
	"github.com/taurusgroup/isrsac-multisig/pkg/party"
)

func TestNewSession(t *testing.T) {
	RNumber := round.Number(3)
	N := 26
	partyIDs := test.PartyIDs(N)
	selfID := partyIDs[0]
	tests := []struct {
		name        string
		roundNumber round.Number
		selfID      party.ID
		partyIDs    []party.ID
		wantErr     bool
	}{
		{
			"invalid selfID",
			RNumber,
			"",
			partyIDs,
			true,
		},
		{
			"selfID not included",
			RNumber,
			"zz",
			partyIDs,
			true,
		},
		{
			"duplicate selfID",
			RNumber,
			selfID,
			append(partyIDs.Copy(), selfID),
			true,
		},
		{
			"duplicate second ID",
			RNumber,
			selfID,
			append(partyIDs.Copy(), partyIDs[1]),
			true,
		},
		{
			"no rounds",
			0,
			selfID,
			partyIDs,
			true,
		},
		{
			"single party",
			RNumber,
			selfID,
			[]party.ID{selfID},
			false,
		},
		{
			"valid",
			RNumber,
			selfID,
			partyIDs,
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := round.Info{
				ProtocolID:       "TEST",
				FinalRoundNumber: tt.roundNumber,
				SelfID:           tt.selfID,
				PartyIDs:         tt.partyIDs,
			}
			_, err := round.NewSession(info, nil, nil)
			if tt.wantErr == (err == nil) {
				t.Error(err)
			}
		})
	}
}

func TestSessionSSID(t *testing.T) {
	partyIDs := test.PartyIDs(3)
	info := round.Info{
		ProtocolID:       "TEST",
		FinalRoundNumber: 2,
		SelfID:           partyIDs[0],
		PartyIDs:         partyIDs,
	}
	h1, err := round.NewSession(info, []byte("session"), nil)
	require.NoError(t, err)

	// the SSID does not depend on the party
	info.SelfID = partyIDs[1]
	h2, err := round.NewSession(info, []byte("session"), nil)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(h1.SSID(), h2.SSID()))
	assert.Equal(t, partyIDs.Remove(partyIDs[1]), h2.OtherPartyIDs())

	h3, err := round.NewSession(info, []byte("other"), nil)
	require.NoError(t, err)
	assert.False(t, bytes.Equal(h1.SSID(), h3.SSID()))

	h4, err := round.NewSession(info, []byte("session"), nil, hash.BytesWithDomain{TheDomain: "aux", Bytes: []byte{1}})
	require.NoError(t, err)
	assert.False(t, bytes.Equal(h1.SSID(), h4.SSID()))

	info.FinalRoundNumber = 3
	h5, err := round.NewSession(info, []byte("session"), nil)
	require.NoError(t, err)
	assert.False(t, bytes.Equal(h1.SSID(), h5.SSID()), "round count is bound")

	info.ProtocolID = ""
	_, err = round.NewSession(info, []byte("session"), nil)
	assert.Error(t, err)
}
