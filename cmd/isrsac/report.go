package main

import (
	"encoding"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/isrsac-multisig/pkg/certificate"
	"github.com/taurusgroup/isrsac-multisig/pkg/isrsac"
	"github.com/taurusgroup/isrsac-multisig/pkg/party"
	"github.com/taurusgroup/isrsac-multisig/protocols/broadcast"
	"github.com/taurusgroup/isrsac-multisig/protocols/sequential"
)

func nat(x *saferith.Nat) string {
	if x == nil {
		return "-"
	}
	return x.Big().String()
}

func verdict(ok bool) string {
	if ok {
		return "accepted"
	}
	return "rejected"
}

func reportParameters(w io.Writer, p *isrsac.Parameters) {
	fmt.Fprintf(w, "scheme  %v\n", p.Scheme)
	fmt.Fprintf(w, "p       %v\n", p.P)
	fmt.Fprintf(w, "q       %v\n", p.Q)
	if p.Scheme == isrsac.SchemeISRSAC {
		fmt.Fprintf(w, "r       %d\n", p.R)
	}
	fmt.Fprintf(w, "n       %v\n", p.N)
	fmt.Fprintf(w, "m       %v\n", p.M)
	fmt.Fprintf(w, "φ       %v\n", p.Phi)
	fmt.Fprintf(w, "e       %v\n", p.E)
	fmt.Fprintf(w, "d       %v\n\n", p.D)
}

func reportCertificates(w io.Writer, certs []*certificate.Certificate, creds []*certificate.Credential) {
	for i, c := range certs {
		fmt.Fprintf(w, "%-10s h = %s  S = %s\n", c.ID, nat(creds[i].H), nat(c.S))
	}
	fmt.Fprintln(w)
}

func sortedIDs(m map[party.ID]*saferith.Nat) []party.ID {
	ids := make([]party.ID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func reportBroadcastTranscript(w io.Writer, t *broadcast.Transcript) {
	fmt.Fprintf(w, "variant %v\n", t.Variant)
	for _, id := range sortedIDs(t.Commitments) {
		fmt.Fprintf(w, "%-10s R = %s\n", id, nat(t.Commitments[id]))
	}
	fmt.Fprintf(w, "K       %s\n", nat(t.Challenge.K))
	fmt.Fprintf(w, "l       %s\n", nat(t.Challenge.L))
	for _, id := range sortedIDs(t.Responses) {
		fmt.Fprintf(w, "%-10s D = %s\n", id, nat(t.Responses[id]))
	}
	fmt.Fprintln(w)
}

func reportBroadcastVerification(w io.Writer, kPrime, lPrime *saferith.Nat, valid bool) {
	fmt.Fprintf(w, "K'      %s\n", nat(kPrime))
	fmt.Fprintf(w, "l'      %s\n", nat(lPrime))
	fmt.Fprintf(w, "result  %s\n", verdict(valid))
}

func reportSequentialStep(w io.Writer, acc *sequential.Accumulator) {
	last := acc.Chain[len(acc.Chain)-1]
	fmt.Fprintf(w, "%-10s K = %s  m = %s  D = %s\n", last.ID, nat(acc.K), nat(acc.M), nat(acc.D))
}

func reportSequentialSignature(w io.Writer, sig *sequential.Signature, valid, chainValid bool) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "K       %s\n", nat(sig.K))
	fmt.Fprintf(w, "m       %s\n", nat(sig.M))
	fmt.Fprintf(w, "D       %s\n", nat(sig.D))
	fmt.Fprintf(w, "f       %s\n", nat(sig.F))
	fmt.Fprintf(w, "result  %s\n", verdict(valid))
	fmt.Fprintf(w, "chain   %s\n", verdict(chainValid))
}

// writeOutput writes the binary encoding of v to path, if path is not empty.
func writeOutput(path string, v encoding.BinaryMarshaler) error {
	if path == "" {
		return nil
	}
	data, err := v.MarshalBinary()
	if err != nil {
		return err
	}
	if err = os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	logger.Info().Str("path", path).Int("bytes", len(data)).Msg("output written")
	return nil
}
