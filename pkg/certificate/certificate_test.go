package certificate_test

import (
	"math/big"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/isrsac-multisig/pkg/certificate"
	"github.com/taurusgroup/isrsac-multisig/pkg/hash"
	"github.com/taurusgroup/isrsac-multisig/pkg/isrsac"
	"github.com/taurusgroup/isrsac-multisig/pkg/party"
)

func keys(t *testing.T) *isrsac.PrivateKey {
	params, err := isrsac.Setup(big.NewInt(1000003), big.NewInt(999983), 1)
	require.NoError(t, err)
	return params.PrivateKey()
}

func TestIssueVerify(t *testing.T) {
	sk := keys(t)
	o := hash.NewOracle(hash.SHA256)

	for _, id := range []party.ID{"alice", "bob", "carol"} {
		c, err := certificate.Issue(sk, o, id)
		require.NoError(t, err)
		assert.True(t, c.Verify(sk.PublicKey, o))

		other := &certificate.Certificate{ID: id + "x", S: c.S}
		assert.False(t, other.Verify(sk.PublicKey, o), "certificate must be bound to its ID")

		cred, err := certificate.FromCertificate(sk.PublicKey, o, c)
		require.NoError(t, err)
		assert.Equal(t, saferith.Choice(1), sk.ExpEModM(cred.S).Eq(cred.H))
	}

	_, err := certificate.Issue(sk, o, "")
	assert.Error(t, err)
}

func TestFromCertificateRejectsForgery(t *testing.T) {
	sk := keys(t)
	o := hash.NewOracle(hash.BLAKE3)
	forged := &certificate.Certificate{ID: "mallory", S: new(saferith.Nat).SetUint64(42)}
	_, err := certificate.FromCertificate(sk.PublicKey, o, forged)
	assert.Error(t, err)
}

func TestFromSecret(t *testing.T) {
	params, err := isrsac.Setup(big.NewInt(11), big.NewInt(17), 1)
	require.NoError(t, err)
	pk := params.PublicKey()

	cred, err := certificate.FromSecret(pk, "a", new(saferith.Nat).SetUint64(5))
	require.NoError(t, err)
	// 5^65537 mod 187
	expected := new(big.Int).Exp(big.NewInt(5), big.NewInt(65537), big.NewInt(187))
	assert.Equal(t, expected.Uint64(), cred.H.Big().Uint64())

	_, err = certificate.FromSecret(pk, "a", new(saferith.Nat).SetUint64(11))
	assert.Error(t, err, "11 divides m")
}

func TestIDs(t *testing.T) {
	creds := []*certificate.Credential{{ID: "c"}, {ID: "a"}, {ID: "b"}}
	assert.Equal(t, party.IDSlice{"a", "b", "c"}, certificate.IDs(creds...))
	assert.Len(t, certificate.Publics(creds...), 3)
}
