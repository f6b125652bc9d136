// Package certificate implements identity-based certificates issued by the modulus authority.
//
// A certificate for an identifier ID is S = H(ID)ᵈ (mod m), so that Sᵉ ≡ H(ID) (mod m).
// Anyone holding the public key can recompute H(ID), the certificate is thus
// bound to the identifier it was issued for.
package certificate

import (
	"errors"
	"fmt"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/isrsac-multisig/pkg/hash"
	"github.com/taurusgroup/isrsac-multisig/pkg/isrsac"
	"github.com/taurusgroup/isrsac-multisig/pkg/math/arith"
	"github.com/taurusgroup/isrsac-multisig/pkg/party"
)

// Certificate is the long-term secret of a participant, issued by the authority.
type Certificate struct {
	ID party.ID
	S  *saferith.Nat
}

// PublicValue returns H(id) reduced to a unit mod m.
func PublicValue(pk *isrsac.PublicKey, o hash.Oracle, id party.ID) (*saferith.Nat, error) {
	if id == "" {
		return nil, errors.New("certificate: empty identifier")
	}
	h, err := hash.UnitModN(o, pk.M(), hash.DomainCertificate, id)
	if err != nil {
		return nil, fmt.Errorf("certificate: %w", err)
	}
	return h, nil
}

// Issue returns the certificate of id.
func Issue(sk *isrsac.PrivateKey, o hash.Oracle, id party.ID) (*Certificate, error) {
	h, err := PublicValue(sk.PublicKey, o, id)
	if err != nil {
		return nil, err
	}
	return &Certificate{
		ID: id,
		S:  sk.ExpD(h),
	}, nil
}

// Verify returns true if Sᵉ ≡ H(ID) (mod m).
func (c *Certificate) Verify(pk *isrsac.PublicKey, o hash.Oracle) bool {
	if c == nil || c.S == nil {
		return false
	}
	h, err := PublicValue(pk, o, c.ID)
	if err != nil {
		return false
	}
	return arith.Equal(pk.ExpEModM(c.S), h, pk.M())
}

// Credential is the signing material of a participant:
// its identifier, secret S and public value H with Sᵉ ≡ H (mod m).
type Credential struct {
	ID party.ID
	S  *saferith.Nat
	H  *saferith.Nat
}

// FromCertificate returns the Credential of a certificate issued by the authority.
// The certificate is checked against the public key.
func FromCertificate(pk *isrsac.PublicKey, o hash.Oracle, c *Certificate) (*Credential, error) {
	if !c.Verify(pk, o) {
		return nil, fmt.Errorf("certificate: invalid certificate for %q", c.ID)
	}
	h, err := PublicValue(pk, o, c.ID)
	if err != nil {
		return nil, err
	}
	return &Credential{
		ID: c.ID,
		S:  c.S.Clone(),
		H:  h,
	}, nil
}

// FromSecret returns a Credential for a raw secret s, whose public value is sᵉ (mod m).
// The secret must be a unit mod m.
func FromSecret(pk *isrsac.PublicKey, id party.ID, s *saferith.Nat) (*Credential, error) {
	if id == "" {
		return nil, errors.New("certificate: empty identifier")
	}
	if s == nil || arith.Reduce(s, pk.M()).IsUnit(pk.M()) != 1 {
		return nil, fmt.Errorf("certificate: secret of %q is not a unit", id)
	}
	return &Credential{
		ID: id,
		S:  s.Clone(),
		H:  pk.ExpEModM(s),
	}, nil
}

// Publics returns the public values of the credentials, indexed by ID.
func Publics(creds ...*Credential) map[party.ID]*saferith.Nat {
	out := make(map[party.ID]*saferith.Nat, len(creds))
	for _, c := range creds {
		out[c.ID] = c.H
	}
	return out
}

// IDs returns the sorted identifiers of the credentials.
func IDs(creds ...*Credential) party.IDSlice {
	ids := make([]party.ID, 0, len(creds))
	for _, c := range creds {
		ids = append(ids, c.ID)
	}
	return party.NewIDSlice(ids)
}
