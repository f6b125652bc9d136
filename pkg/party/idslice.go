package party

import (
	"encoding/binary"
	"io"
	"sort"
)

// IDSlice is a list of participant identifiers.
//
// Most methods assume the slice is sorted and free of duplicates,
// which NewIDSlice guarantees.
type IDSlice []ID

// NewIDSlice returns a sorted copy of partyIDs.
func NewIDSlice(partyIDs []ID) IDSlice {
	ids := IDSlice(partyIDs).Copy()
	ids.sort()
	return ids
}

// Contains returns true if all ids are in partyIDs.
func (partyIDs IDSlice) Contains(ids ...ID) bool {
	for _, id := range ids {
		if _, found := partyIDs.search(id); !found {
			return false
		}
	}
	return true
}

// Valid returns true if the slice is sorted, free of duplicates and contains no empty ID.
func (partyIDs IDSlice) Valid() bool {
	for i, id := range partyIDs {
		if id == "" {
			return false
		}
		if i > 0 && partyIDs[i-1] >= id {
			return false
		}
	}
	return true
}

// Copy returns an identical copy of the receiver.
func (partyIDs IDSlice) Copy() IDSlice {
	ids := make(IDSlice, len(partyIDs))
	copy(ids, partyIDs)
	return ids
}

// Remove returns a copy of the receiver without id.
func (partyIDs IDSlice) Remove(id ID) IDSlice {
	ids := make(IDSlice, 0, len(partyIDs))
	for _, p := range partyIDs {
		if p != id {
			ids = append(ids, p)
		}
	}
	return ids
}

// Len is part of sort.Interface.
func (partyIDs IDSlice) Len() int { return len(partyIDs) }

// Less is part of sort.Interface.
func (partyIDs IDSlice) Less(i, j int) bool { return partyIDs[i] < partyIDs[j] }

// Swap is part of sort.Interface.
func (partyIDs IDSlice) Swap(i, j int) { partyIDs[i], partyIDs[j] = partyIDs[j], partyIDs[i] }

func (partyIDs IDSlice) sort() { sort.Sort(partyIDs) }

func (partyIDs IDSlice) search(x ID) (int, bool) {
	index := sort.Search(len(partyIDs), func(i int) bool { return partyIDs[i] >= x })
	if index >= 0 && index < len(partyIDs) && partyIDs[index] == x {
		return index, true
	}
	return 0, false
}

// WriteTo implements io.WriterTo. It writes the number of IDs, followed by every ID.
func (partyIDs IDSlice) WriteTo(w io.Writer) (int64, error) {
	var size [8]byte
	binary.BigEndian.PutUint64(size[:], uint64(len(partyIDs)))
	n, err := w.Write(size[:])
	total := int64(n)
	if err != nil {
		return total, err
	}
	for _, id := range partyIDs {
		n64, err := id.WriteTo(w)
		total += n64
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Domain implements hash.WriterToWithDomain.
func (IDSlice) Domain() string { return "IDSlice" }
