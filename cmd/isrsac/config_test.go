package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/isrsac-multisig/pkg/isrsac"
	"github.com/taurusgroup/isrsac-multisig/pkg/party"
	"github.com/taurusgroup/isrsac-multisig/protocols/broadcast"
	"github.com/taurusgroup/isrsac-multisig/protocols/sequential"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "isrsac.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	path := writeConfig(t, `
scheme = "rsa"
hash = "blake3"
p = "1000003"
q = "999983"
signers = ["alice", "bob"]
message = "pay 10"

[broadcast]
variant = "unbound"
workers = 4
`)
	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "rsa", cfg.Scheme)
	assert.Equal(t, "blake3", cfg.Hash)
	assert.Equal(t, []string{"alice", "bob"}, cfg.Signers)
	assert.Equal(t, "unbound", cfg.Broadcast.Variant)
	assert.Equal(t, 4, cfg.Broadcast.Workers)
	// defaults are kept for missing keys
	assert.Equal(t, uint64(1), cfg.R)
	assert.Equal(t, 10, cfg.Attempts)

	src, err := cfg.Source()
	require.NoError(t, err)
	assert.IsType(t, isrsac.FixedSource{}, src)

	ids, err := cfg.SignerIDs()
	require.NoError(t, err)
	assert.Equal(t, []party.ID{"alice", "bob"}, ids)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, `scheme = `))
	assert.Error(t, err, "malformed TOML")

	_, err = LoadConfig(writeConfig(t, `modulus = "187"`))
	assert.Error(t, err, "unknown key")
}

func TestConfigValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.P, cfg.Q = "11", "x"
	_, err := cfg.Source()
	assert.Error(t, err)

	cfg.P, cfg.Q = "", ""
	cfg.Bits = 4
	_, err = cfg.Source()
	assert.Error(t, err)
	cfg.Bits = 64
	src, err := cfg.Source()
	require.NoError(t, err)
	assert.IsType(t, isrsac.RandomSource{}, src)

	cfg.Scheme = "elgamal"
	_, err = cfg.Options()
	assert.Error(t, err)

	cfg.Hash = "md5"
	_, err = cfg.Oracle()
	assert.Error(t, err)

	cfg.Signers = []string{"a", "b", "a"}
	_, err = cfg.SignerIDs()
	assert.Error(t, err)
	cfg.Signers = nil
	_, err = cfg.SignerIDs()
	assert.Error(t, err)
}

func execute(t *testing.T, args ...string) string {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.ExecuteContext(context.Background()), out.String())
	return out.String()
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()

	out := execute(t, "keygen", "--p", "11", "--q", "17", "--r", "1")
	assert.Contains(t, out, "n       29920\n")
	assert.Contains(t, out, "m       187\n")
	assert.Contains(t, out, "φ       10800\n")

	seqPath := filepath.Join(dir, "sequential.cbor")
	out = execute(t, "sequential", "--p", "11", "--q", "17", "--signers", "U1,U2,U3", "--message", "hello", "--output", seqPath)
	assert.Contains(t, out, "result  accepted\n")
	assert.Contains(t, out, "chain   accepted\n")
	data, err := os.ReadFile(seqPath)
	require.NoError(t, err)
	var seqSig sequential.Signature
	require.NoError(t, seqSig.UnmarshalBinary(data))
	assert.Equal(t, []party.ID{"U1", "U2", "U3"}, seqSig.Signers())

	for _, networked := range []string{"false", "true"} {
		bcPath := filepath.Join(dir, "broadcast-"+networked+".cbor")
		out = execute(t, "broadcast", "--p", "11", "--q", "17", "--signers", "U1,U2,U3",
			"--variant", "unbound", "--workers", "2", "--networked="+networked, "--output", bcPath)
		assert.Contains(t, out, "result  accepted\n")
		data, err = os.ReadFile(bcPath)
		require.NoError(t, err)
		var bcSig broadcast.Signature
		require.NoError(t, bcSig.UnmarshalBinary(data))
		assert.Equal(t, broadcast.Unbound, bcSig.Variant)
		assert.Len(t, bcSig.Signers, 3)
	}
}

func TestCommandsIndependent(t *testing.T) {
	dir := t.TempDir()
	signers := func(path string) []party.ID {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		var sig sequential.Signature
		require.NoError(t, sig.UnmarshalBinary(data))
		return sig.Signers()
	}

	first := filepath.Join(dir, "first.cbor")
	execute(t, "sequential", "--p", "11", "--q", "17", "--signers", "U1,U2", "--output", first)
	assert.Equal(t, []party.ID{"U1", "U2"}, signers(first))

	second := filepath.Join(dir, "second.cbor")
	execute(t, "sequential", "--p", "11", "--q", "17", "--signers", "U3", "--output", second)
	assert.Equal(t, []party.ID{"U3"}, signers(second), "signers of the previous execution must not be kept")

	// without flags, the configuration file decides
	path := writeConfig(t, `
p = "11"
q = "17"
signers = ["V1", "V2", "V3"]
`)
	third := filepath.Join(dir, "third.cbor")
	execute(t, "sequential", "--config", path, "--output", third)
	assert.Equal(t, []party.ID{"V1", "V2", "V3"}, signers(third))
}
