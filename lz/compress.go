package lz

import "github.com/meigma/jsystem/internal/endian"

const (
	hashBits = 15
	hashSize = 1 << hashBits
	hashLen  = 3
)

// MaxCompressedLen returns the largest output Compress can produce for n
// input bytes: every byte a literal plus one flag byte per group.
func MaxCompressedLen(n int) int {
	return n + (n+groupSize-1)/groupSize
}

// Compress encodes src.
//
// The encoder is greedy with no lookahead. At each position it considers
// every earlier position within WindowSize, nearest first, and keeps the
// first longest run (capped at MaxMatch); a farther candidate replaces it
// only if strictly longer. Runs of MinMatch bytes or fewer are emitted as
// literals, since a 2-byte back-reference saves nothing. The output is
// deterministic for a given input.
func Compress(src []byte) []byte {
	out := make([]byte, 0, MaxCompressedLen(len(src)))
	m := newMatcher(src)

	pos := 0
	for pos < len(src) {
		flagAt := len(out)
		out = append(out, 0)

		for bit := 0; bit < groupSize && pos < len(src); bit++ {
			m.insertUpTo(pos)
			distance, length := m.find(pos)
			if length == 0 {
				out[flagAt] |= 0x80 >> bit
				out = append(out, src[pos])
				pos++
				continue
			}

			out = appendBackref(out, distance, length)
			pos += length
		}
	}
	return out
}

// appendBackref encodes a back-reference of length bytes from distance
// bytes behind the cursor.
func appendBackref(out []byte, distance, length int) []byte {
	d := uint16(distance - 1) //nolint:gosec // distance is within [1, WindowSize]
	count := length - MinMatch
	var half [2]byte
	if count < shortLimit {
		endian.PutUint16(half[:], uint16(count)<<12|d) //nolint:gosec // count < 16
		return append(out, half[0], half[1])
	}
	endian.PutUint16(half[:], d)
	return append(out, half[0], half[1], byte(count-shortLimit))
}

// matcher indexes earlier positions by their first three bytes.
//
// Any run longer than MinMatch shares its first three bytes with the current
// position, so walking the chain of equal-prefix positions from the most
// recent one visits every useful candidate in increasing distance order and
// yields the same choice as scanning the whole window.
type matcher struct {
	src      []byte
	head     [hashSize]int32
	prev     []int32
	inserted int
}

func newMatcher(src []byte) *matcher {
	m := &matcher{src: src, prev: make([]int32, len(src))}
	for i := range m.head {
		m.head[i] = -1
	}
	return m
}

func (m *matcher) hash(pos int) uint32 {
	s := m.src[pos : pos+hashLen]
	v := uint32(s[0])<<16 | uint32(s[1])<<8 | uint32(s[2])
	return (v * 2654435761) >> (32 - hashBits)
}

// insertUpTo adds every position before pos to the chains.
func (m *matcher) insertUpTo(pos int) {
	for ; m.inserted < pos; m.inserted++ {
		if m.inserted+hashLen > len(m.src) {
			m.prev[m.inserted] = -1
			continue
		}
		h := m.hash(m.inserted)
		m.prev[m.inserted] = m.head[h]
		m.head[h] = int32(m.inserted) //nolint:gosec // inputs are bounded by the 32-bit size header
	}
}

// find returns the distance and length of the best earlier run at pos, or
// zero length when no run longer than MinMatch exists.
func (m *matcher) find(pos int) (distance, length int) {
	src := m.src
	if pos+hashLen > len(src) {
		return 0, 0
	}
	limit := min(MaxMatch, len(src)-pos)
	best := MinMatch

	for c := int(m.head[m.hash(pos)]); c >= 0 && pos-c <= WindowSize; c = int(m.prev[c]) {
		// A strictly longer run must also match at index best.
		if src[c+best] != src[pos+best] {
			continue
		}
		n := 0
		for n < limit && src[c+n] == src[pos+n] {
			n++
		}
		if n > best {
			best = n
			distance = pos - c
			if best == limit {
				break
			}
		}
	}
	if distance == 0 {
		return 0, 0
	}
	return distance, best
}
