package party

import (
	"encoding/binary"
	"io"
)

// ID represents a unique identifier for a participant of a signing session.
//
// In the identity-based schemes, the ID is also what the authority certifies:
// a participant's certificate is a signature over H(ID).
type ID string

// WriteTo implements io.WriterTo, writing the length of the ID followed by its bytes.
func (id ID) WriteTo(w io.Writer) (int64, error) {
	var size [8]byte
	binary.BigEndian.PutUint64(size[:], uint64(len(id)))
	n0, err := w.Write(size[:])
	if err != nil {
		return int64(n0), err
	}
	n1, err := w.Write([]byte(id))
	return int64(n0 + n1), err
}

// Domain implements hash.WriterToWithDomain.
func (ID) Domain() string { return "Party ID" }
