package test

import (
	"fmt"
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/isrsac-multisig/pkg/party"
)

// ModPrimeOracle is a deterministic hash.Oracle for hand-checked examples.
// The data is concatenated as big-endian bytes and read as an integer reduced mod Prime.
// The domain is ignored.
type ModPrimeOracle struct {
	Prime uint64
}

// Sum implements hash.Oracle.
func (o ModPrimeOracle) Sum(_ string, data ...interface{}) (*saferith.Nat, error) {
	var buf []byte
	for _, d := range data {
		switch t := d.(type) {
		case []byte:
			buf = append(buf, t...)
		case string:
			buf = append(buf, t...)
		case party.ID:
			buf = append(buf, t...)
		case uint64:
			buf = append(buf, new(big.Int).SetUint64(t).Bytes()...)
		case *big.Int:
			buf = append(buf, t.Bytes()...)
		case *saferith.Nat:
			buf = append(buf, t.Big().Bytes()...)
		default:
			return nil, fmt.Errorf("test: unsupported type %T", d)
		}
	}
	x := new(big.Int).SetBytes(buf)
	x.Mod(x, new(big.Int).SetUint64(o.Prime))
	return new(saferith.Nat).SetBig(x, x.BitLen()), nil
}
