package sequential_test

import (
	"math/big"
	mrand "math/rand"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/isrsac-multisig/internal/test"
	"github.com/taurusgroup/isrsac-multisig/pkg/certificate"
	"github.com/taurusgroup/isrsac-multisig/pkg/hash"
	"github.com/taurusgroup/isrsac-multisig/pkg/isrsac"
	"github.com/taurusgroup/isrsac-multisig/pkg/math/arith"
	"github.com/taurusgroup/isrsac-multisig/protocols/sequential"
)

var message = []byte("Contrato de Parceria 2025")

func setup(t *testing.T, N int) (*isrsac.PublicKey, hash.Oracle, []*certificate.Credential) {
	params, err := isrsac.Setup(big.NewInt(1000003), big.NewInt(999983), 1)
	require.NoError(t, err)
	sk := params.PrivateKey()
	o := hash.NewOracle(hash.BLAKE3)

	creds := make([]*certificate.Credential, 0, N)
	for _, id := range test.PartyIDs(N) {
		c, err := certificate.Issue(sk, o, id)
		require.NoError(t, err)
		cred, err := certificate.FromCertificate(sk.PublicKey, o, c)
		require.NoError(t, err)
		creds = append(creds, cred)
	}
	return sk.PublicKey, o, creds
}

func TestSign(t *testing.T) {
	for N := 1; N <= 6; N++ {
		pk, o, creds := setup(t, N)
		sig, err := sequential.Sign(pk, o, creds, message, test.Rand(int64(N)))
		require.NoError(t, err)

		assert.Len(t, sig.Chain, N)
		assert.True(t, sequential.Verify(pk, o, message, sig))
		assert.True(t, sequential.VerifyChain(pk, o, message, sig, certificate.Publics(creds...)))
		assert.False(t, sequential.Verify(pk, o, []byte("other"), sig))
		assert.False(t, sequential.VerifyChain(pk, o, []byte("other"), sig, certificate.Publics(creds...)))
	}
}

func TestStep(t *testing.T) {
	pk, o, creds := setup(t, 3)
	acc := sequential.NewAccumulator()
	var err error
	for i, cred := range creds {
		prev := acc
		acc, err = sequential.Step(pk, o, acc, cred, message, test.Rand(int64(i)))
		require.NoError(t, err)
		assert.Equal(t, i, prev.Len(), "the input accumulator is not modified")
		assert.Equal(t, i+1, acc.Len())
	}

	_, err = sequential.Step(pk, o, acc, creds[1], message, test.Rand(9))
	assert.ErrorIs(t, err, sequential.ErrDuplicate)

	_, err = sequential.NewAccumulator().Signature()
	assert.Error(t, err)
}

// signInOrder gives each signer the same nonce whatever its position.
func signInOrder(t *testing.T, pk *isrsac.PublicKey, o hash.Oracle, creds []*certificate.Credential, order []int) *sequential.Signature {
	acc := sequential.NewAccumulator()
	var err error
	for _, i := range order {
		acc, err = sequential.Step(pk, o, acc, creds[i], message, test.Rand(int64(100+i)))
		require.NoError(t, err)
	}
	sig, err := acc.Signature()
	require.NoError(t, err)
	return sig
}

func TestOrderSensitivity(t *testing.T) {
	pk, o, creds := setup(t, 3)
	a := signInOrder(t, pk, o, creds, []int{0, 1, 2})
	b := signInOrder(t, pk, o, creds, []int{2, 0, 1})

	// K = ∏ rᵢᵉ does not depend on the order, but every mᵢ does
	assert.Equal(t, saferith.Choice(1), a.K.Eq(b.K))
	assert.Equal(t, saferith.Choice(0), a.D.Eq(b.D))

	publics := certificate.Publics(creds...)
	assert.True(t, sequential.VerifyChain(pk, o, message, a, publics))
	assert.True(t, sequential.VerifyChain(pk, o, message, b, publics))

	// attributing the first two steps to each other is rejected
	swapped := *a
	swapped.Chain = []sequential.Link{
		{ID: a.Chain[1].ID, K: a.Chain[0].K, M: a.Chain[0].M},
		{ID: a.Chain[0].ID, K: a.Chain[1].K, M: a.Chain[1].M},
		a.Chain[2],
	}
	assert.False(t, sequential.VerifyChain(pk, o, message, &swapped, publics))
}

func TestOrderSensitivityRandom(t *testing.T) {
	const trials = 100
	N := 4
	pk, o, creds := setup(t, N)
	rnd := mrand.New(mrand.NewSource(7))

	identity := make([]int, N)
	for i := range identity {
		identity[i] = i
	}
	sign := func(order []int, seed int64) *sequential.Signature {
		acc := sequential.NewAccumulator()
		var err error
		for _, i := range order {
			acc, err = sequential.Step(pk, o, acc, creds[i], message, test.Rand(seed+int64(i)))
			require.NoError(t, err)
		}
		sig, err := acc.Signature()
		require.NoError(t, err)
		return sig
	}

	differs := 0
	for trial := 0; trial < trials; trial++ {
		perm := rnd.Perm(N)
		for assert.ObjectsAreEqual(identity, perm) {
			perm = rnd.Perm(N)
		}
		seed := int64(1000 * (trial + 1))
		a := sign(identity, seed)
		b := sign(perm, seed)
		require.Equal(t, saferith.Choice(1), a.K.Eq(b.K), "same nonces give the same K")
		if a.D.Eq(b.D) != 1 {
			differs++
		}
	}
	assert.GreaterOrEqual(t, differs, trials*99/100)
}

func TestSmallModulus(t *testing.T) {
	params, err := isrsac.Setup(big.NewInt(11), big.NewInt(17), 1)
	require.NoError(t, err)
	require.Equal(t, int64(29920), params.N.Int64())
	sk := params.PrivateKey()
	pk := sk.PublicKey
	o := hash.NewOracle(hash.SHA256)

	creds := make([]*certificate.Credential, 0, 3)
	for _, id := range test.PartyIDs(3) {
		c, err := certificate.Issue(sk, o, id)
		require.NoError(t, err)
		cred, err := certificate.FromCertificate(pk, o, c)
		require.NoError(t, err)
		creds = append(creds, cred)
	}

	sig, err := sequential.Sign(pk, o, creds, message, test.Rand(3))
	require.NoError(t, err)
	for _, x := range []*saferith.Nat{sig.K, sig.D, sig.F} {
		assert.Equal(t, saferith.Choice(0), x.EqZero())
	}
	for _, link := range sig.Chain {
		assert.Equal(t, saferith.Choice(0), link.K.EqZero())
	}
	assert.True(t, sequential.VerifyChain(pk, o, message, sig, certificate.Publics(creds...)))
}

func TestZeroSignature(t *testing.T) {
	pk, o, creds := setup(t, 2)
	forged := []byte("never signed")
	zero := new(saferith.Nat)
	m, err := o.Sum(hash.DomainSequentialChallenge, forged, arith.Reduce(zero, pk.M()))
	require.NoError(t, err)

	chain := make([]sequential.Link, 0, len(creds))
	for _, c := range creds {
		chain = append(chain, sequential.Link{ID: c.ID, K: zero, M: m})
	}
	sig := &sequential.Signature{K: zero, M: m, D: zero, F: zero, Chain: chain}
	assert.False(t, sequential.Verify(pk, o, forged, sig))
	assert.False(t, sequential.VerifyChain(pk, o, forged, sig, certificate.Publics(creds...)))
}

func TestTampering(t *testing.T) {
	pk, o, creds := setup(t, 4)
	sig, err := sequential.Sign(pk, o, creds, message, test.Rand(1))
	require.NoError(t, err)
	publics := certificate.Publics(creds...)
	require.True(t, sequential.VerifyChain(pk, o, message, sig, publics))

	rnd := mrand.New(mrand.NewSource(4))
	bits := pk.N().BitLen()
	flip := func(x *saferith.Nat) *saferith.Nat {
		b := x.Big()
		i := rnd.Intn(bits)
		b.SetBit(b, i, b.Bit(i)^1)
		return arith.NatFromBig(b)
	}

	for i := 0; i < 1000; i++ {
		tampered := *sig
		tampered.D = flip(sig.D)
		assert.False(t, sequential.VerifyChain(pk, o, message, &tampered, publics))

		tampered = *sig
		tampered.K = flip(sig.K)
		assert.False(t, sequential.Verify(pk, o, message, &tampered))
	}

	tampered := *sig
	tampered.F = flip(sig.F)
	assert.False(t, sequential.VerifyChain(pk, o, message, &tampered, publics))

	delete(publics, creds[2].ID)
	assert.False(t, sequential.VerifyChain(pk, o, message, sig, publics), "unknown signer")

	assert.True(t, sequential.Verify(pk, o, message, sig), "verification is idempotent")
}

func TestSignatureMarshal(t *testing.T) {
	pk, o, creds := setup(t, 3)
	sig, err := sequential.Sign(pk, o, creds, message, test.Rand(2))
	require.NoError(t, err)

	data, err := sig.MarshalBinary()
	require.NoError(t, err)
	var decoded sequential.Signature
	require.NoError(t, decoded.UnmarshalBinary(data))
	assert.Equal(t, sig.Signers(), decoded.Signers())
	assert.True(t, sequential.VerifyChain(pk, o, message, &decoded, certificate.Publics(creds...)))
}
