package protocol

import (
	"fmt"

	"github.com/taurusgroup/isrsac-multisig/internal/round"
	"github.com/taurusgroup/isrsac-multisig/pkg/party"
)

// Error is a custom error for protocols which contains information about the responsible round in which it occurred,
// and the parties responsible.
type Error struct {
	// RoundNumber where the error occurred
	RoundNumber round.Number
	// Culprits is empty if the identity of the misbehaving party cannot be known.
	Culprits []party.ID
	// Err is the underlying error.
	Err error
}

// Error implements error.
func (e Error) Error() string {
	if len(e.Culprits) == 0 {
		return fmt.Sprintf("round %d: %s", e.RoundNumber, e.Err)
	}
	return fmt.Sprintf("round %d: culprits: %v: %s", e.RoundNumber, e.Culprits, e.Err)
}

// Unwrap implements the errors.Wrapper interface.
func (e Error) Unwrap() error {
	return e.Err
}
