package pipeline

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

// Job ids are ULIDs: 26 Crockford Base32 characters, 48-bit millisecond
// timestamp followed by 80 random bits, so ids sort by creation time.

var (
	ulidMu  sync.Mutex
	lastTS  uint64
	lastSeq uint16
)

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// NewJobID returns a fresh ULID for a batch job.
func NewJobID() string {
	ulidMu.Lock()
	defer ulidMu.Unlock()

	ts := uint64(time.Now().UnixMilli())
	if ts == lastTS {
		lastSeq++
	} else {
		lastTS = ts
		lastSeq = 0
	}

	var rnd [10]byte
	rand.Read(rnd[:])
	// The sequence occupies the leading random bytes so ids minted within
	// the same millisecond stay unique.
	binary.BigEndian.PutUint16(rnd[:2], lastSeq)

	var out [26]byte
	// Timestamp: 48 bits into 10 characters, top two bits of the first
	// character are padding.
	for i := 9; i >= 0; i-- {
		out[i] = crockford[ts>>((9-i)*5)&31]
	}
	// Randomness: 80 bits into exactly 16 characters.
	acc, bits, j := uint64(0), 0, 10
	for _, b := range rnd {
		acc = acc<<8 | uint64(b)
		bits += 8
		for bits >= 5 {
			bits -= 5
			out[j] = crockford[acc>>bits&31]
			j++
		}
	}
	return string(out[:])
}
