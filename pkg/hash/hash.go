package hash

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	stdhash "hash"
	"math/big"
	"strings"

	"github.com/cronokirby/saferith"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/sha3"
)

// Algorithm selects the digest function underlying a Hash.
type Algorithm uint8

const (
	// SHA256 is the default digest for challenges and certificates.
	SHA256 Algorithm = iota
	// BLAKE3 is used for session transcripts.
	BLAKE3
	// SHA3_256 is the Keccak based alternative.
	SHA3_256
)

// DigestLengthBytes is the output size of every supported algorithm.
const DigestLengthBytes = 32

var ErrUnknownAlgorithm = errors.New("hash: unknown algorithm")

// String implements fmt.Stringer.
func (a Algorithm) String() string {
	switch a {
	case SHA256:
		return "sha256"
	case BLAKE3:
		return "blake3"
	case SHA3_256:
		return "sha3-256"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(a))
	}
}

// ParseAlgorithm returns the Algorithm whose String() is name.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(name) {
	case "", "sha256", "sha-256":
		return SHA256, nil
	case "blake3":
		return BLAKE3, nil
	case "sha3-256", "sha3":
		return SHA3_256, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
}

func (a Algorithm) newDigest() stdhash.Hash {
	switch a {
	case BLAKE3:
		return blake3.New()
	case SHA3_256:
		return sha3.New256()
	default:
		return sha256.New()
	}
}

// Hash accumulates a domain separated transcript of values, and hashes it with the chosen Algorithm.
//
// Every value is written with its domain and length, so that distinct sequences of values
// always produce distinct transcripts.
type Hash struct {
	alg        Algorithm
	transcript []byte
}

// New creates a BLAKE3 Hash, initialized with initialData.
func New(initialData ...WriterToWithDomain) *Hash {
	return NewWithAlgorithm(BLAKE3, initialData...)
}

// NewWithAlgorithm creates a Hash using the given Algorithm, initialized with initialData.
func NewWithAlgorithm(alg Algorithm, initialData ...WriterToWithDomain) *Hash {
	h := &Hash{alg: alg}
	for _, d := range initialData {
		_ = h.WriteAny(d)
	}
	return h
}

// Write implements io.Writer, appending raw bytes to the transcript.
//
// Prefer WriteAny, which applies domain separation.
func (hash *Hash) Write(p []byte) (int, error) {
	hash.transcript = append(hash.transcript, p...)
	return len(p), nil
}

// Sum returns the digest of the current transcript, of length DigestLengthBytes.
func (hash *Hash) Sum() []byte {
	d := hash.alg.newDigest()
	_, _ = d.Write(hash.transcript)
	return d.Sum(nil)
}

// WriteAny takes many different data types and writes them to the hash state.
//
// Currently supported types:
//
//   - []byte
//   - string
//   - uint64
//   - *big.Int (non-negative)
//   - *saferith.Nat
//   - *saferith.Modulus
//   - hash.WriterToWithDomain
//
// Integers are written in their minimal big-endian form, so that equal values
// produce equal transcripts regardless of their announced size.
func (hash *Hash) WriteAny(data ...interface{}) error {
	for _, d := range data {
		var object WriterToWithDomain
		switch t := d.(type) {
		case []byte:
			object = BytesWithDomain{TheDomain: "[]byte", Bytes: t}
		case string:
			object = BytesWithDomain{TheDomain: "string", Bytes: []byte(t)}
		case uint64:
			var b [8]byte
			binary.BigEndian.PutUint64(b[:], t)
			object = BytesWithDomain{TheDomain: "uint64", Bytes: b[:]}
		case *big.Int:
			if t == nil {
				return errors.New("hash.Hash: write *big.Int: nil")
			}
			if t.Sign() < 0 {
				return errors.New("hash.Hash: write *big.Int: negative")
			}
			object = BytesWithDomain{TheDomain: "Integer", Bytes: t.Bytes()}
		case *saferith.Nat:
			if t == nil {
				return errors.New("hash.Hash: write *saferith.Nat: nil")
			}
			object = BytesWithDomain{TheDomain: "Integer", Bytes: t.Big().Bytes()}
		case *saferith.Modulus:
			if t == nil {
				return errors.New("hash.Hash: write *saferith.Modulus: nil")
			}
			object = BytesWithDomain{TheDomain: "Modulus", Bytes: t.Big().Bytes()}
		case WriterToWithDomain:
			object = t
		default:
			return fmt.Errorf("hash.Hash: unsupported type %T", d)
		}
		if err := writeWithDomain(hash, object); err != nil {
			return fmt.Errorf("hash.Hash: write %s: %w", object.Domain(), err)
		}
	}
	return nil
}
