package main

import (
	"fmt"
	"math/big"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"github.com/taurusgroup/isrsac-multisig/internal/params"
	"github.com/taurusgroup/isrsac-multisig/pkg/hash"
	"github.com/taurusgroup/isrsac-multisig/pkg/isrsac"
	"github.com/taurusgroup/isrsac-multisig/pkg/party"
	"github.com/taurusgroup/isrsac-multisig/protocols/broadcast"
)

// Config holds every setting of the command. It is read from a TOML file, and flags take precedence.
type Config struct {
	Scheme string `toml:"scheme"`
	Hash   string `toml:"hash"`

	// P and Q are decimal strings, since they may not fit a TOML integer.
	P string `toml:"p"`
	Q string `toml:"q"`
	R uint64 `toml:"r"`

	Bits        int    `toml:"bits"`
	MaxBlinding uint64 `toml:"max_blinding"`
	Attempts    int    `toml:"attempts"`
	Exponent    uint64 `toml:"exponent"`

	Signers []string `toml:"signers"`
	Message string   `toml:"message"`
	Output  string   `toml:"output"`

	Broadcast BroadcastConfig `toml:"broadcast"`
}

// BroadcastConfig holds the settings of the broadcast command.
type BroadcastConfig struct {
	Variant   string `toml:"variant"`
	Workers   int    `toml:"workers"`
	Networked bool   `toml:"networked"`
}

// DefaultConfig returns the settings used when neither a file nor a flag sets a value.
func DefaultConfig() *Config {
	return &Config{
		Scheme:   isrsac.SchemeISRSAC.String(),
		Hash:     hash.SHA256.String(),
		R:        1,
		Bits:     64,
		Attempts: 10,
		Exponent: params.DefaultExponent,
		Signers:  []string{"U1", "U2", "U3"},
		Message:  "hello",
		Broadcast: BroadcastConfig{
			Variant: broadcast.Bound.String(),
		},
	}
}

// LoadConfig returns DefaultConfig overwritten by the values of the file at path, if path is not empty.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config: %s: unknown keys %v", path, undecoded)
	}
	return cfg, nil
}

// Merge copies the values of the flags set on cmd from flags into c.
func (c *Config) Merge(cmd *cobra.Command, flags *Config) {
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}
	if changed("scheme") {
		c.Scheme = flags.Scheme
	}
	if changed("hash") {
		c.Hash = flags.Hash
	}
	if changed("p") {
		c.P = flags.P
	}
	if changed("q") {
		c.Q = flags.Q
	}
	if changed("r") {
		c.R = flags.R
	}
	if changed("bits") {
		c.Bits = flags.Bits
	}
	if changed("max-blinding") {
		c.MaxBlinding = flags.MaxBlinding
	}
	if changed("attempts") {
		c.Attempts = flags.Attempts
	}
	if changed("exponent") {
		c.Exponent = flags.Exponent
	}
	if changed("signers") {
		c.Signers = flags.Signers
	}
	if changed("message") {
		c.Message = flags.Message
	}
	if changed("output") {
		c.Output = flags.Output
	}
	if changed("variant") {
		c.Broadcast.Variant = flags.Broadcast.Variant
	}
	if changed("workers") {
		c.Broadcast.Workers = flags.Broadcast.Workers
	}
	if changed("networked") {
		c.Broadcast.Networked = flags.Broadcast.Networked
	}
}

// Source returns the parameter source described by the configuration:
// the fixed primes if both are set, random primes otherwise.
func (c *Config) Source() (isrsac.ParameterSource, error) {
	if c.P == "" && c.Q == "" {
		if c.Bits < params.MinPrimeBits {
			return nil, fmt.Errorf("config: bits must be at least %d", params.MinPrimeBits)
		}
		return isrsac.RandomSource{Bits: c.Bits, MaxBlinding: c.MaxBlinding}, nil
	}
	p, ok := new(big.Int).SetString(c.P, 10)
	if !ok {
		return nil, fmt.Errorf("config: invalid prime p %q", c.P)
	}
	q, ok := new(big.Int).SetString(c.Q, 10)
	if !ok {
		return nil, fmt.Errorf("config: invalid prime q %q", c.Q)
	}
	return isrsac.FixedSource{P: p, Q: q, R: c.R}, nil
}

// Options returns the isrsac.Setup options described by the configuration.
func (c *Config) Options() ([]isrsac.Option, error) {
	scheme, err := isrsac.ParseScheme(c.Scheme)
	if err != nil {
		return nil, err
	}
	return []isrsac.Option{isrsac.WithScheme(scheme), isrsac.WithExponent(c.Exponent)}, nil
}

// Oracle returns the hash oracle selected by the configuration.
func (c *Config) Oracle() (hash.Oracle, error) {
	alg, err := hash.ParseAlgorithm(c.Hash)
	if err != nil {
		return nil, err
	}
	return hash.NewOracle(alg), nil
}

// SignerIDs returns the signers in the configured order, which matters for the sequential scheme.
func (c *Config) SignerIDs() ([]party.ID, error) {
	if len(c.Signers) == 0 {
		return nil, fmt.Errorf("config: no signers")
	}
	ids := make([]party.ID, 0, len(c.Signers))
	for _, s := range c.Signers {
		ids = append(ids, party.ID(s))
	}
	if !party.NewIDSlice(ids).Valid() {
		return nil, fmt.Errorf("config: signers must be distinct and non empty")
	}
	return ids, nil
}
