package asmresolver

import "github.com/cespare/xxhash/v2"

// HeapBuilder accumulates strings, blobs, and GUIDs for the write path,
// deduplicating identical entries before offsets are assigned so two
// members that reference the same name or signature share one heap slot —
// the same content-hash dedup idea as the teacher's sibling repo's
// `internal/hash.ID` (a one-line xxhash.Sum64String wrapper used to key
// scheduler work units), applied here to heap entries instead.
type HeapBuilder struct {
	strings     []byte
	stringIndex map[uint64]uint32

	blob      []byte
	blobIndex map[uint64]uint32

	us      []byte
	usIndex map[uint64]uint32

	guid []byte
}

// NewHeapBuilder returns an empty builder. Index 0 is reserved in every
// heap (spec.md §4.2), so each heap starts pre-seeded with a single zero
// byte / empty entry occupying that slot.
func NewHeapBuilder() *HeapBuilder {
	return &HeapBuilder{
		strings:     []byte{0},
		stringIndex: make(map[uint64]uint32),
		blob:        []byte{0},
		blobIndex:   make(map[uint64]uint32),
		us:          []byte{0},
		usIndex:     make(map[uint64]uint32),
	}
}

// AddString interns s into #Strings, returning its (possibly shared) index.
func (b *HeapBuilder) AddString(s string) uint32 {
	h := xxhash.Sum64String(s)
	if idx, ok := b.stringIndex[h]; ok {
		return idx
	}
	idx := uint32(len(b.strings))
	b.strings = append(b.strings, s...)
	b.strings = append(b.strings, 0)
	b.stringIndex[h] = idx
	return idx
}

// AddBlob interns data into #Blob, returning its (possibly shared) index.
func (b *HeapBuilder) AddBlob(data []byte) uint32 {
	h := xxhash.Sum64(data)
	if idx, ok := b.blobIndex[h]; ok {
		return idx
	}
	idx := uint32(len(b.blob))
	w := NewWriter()
	w.WriteCompressedUint32(uint32(len(data)))
	w.WriteBytes(data)
	b.blob = append(b.blob, w.Bytes()...)
	b.blobIndex[h] = idx
	return idx
}

// AddUserString interns s into #US, returning its (possibly shared) index.
// The trailing flag byte records whether s contains any code point outside
// the printable low-ASCII range, per ECMA-335 §II.24.2.4's requirement that
// consumers be able to tell without re-scanning the string.
func (b *HeapBuilder) AddUserString(s string) uint32 {
	h := xxhash.Sum64String(s)
	if idx, ok := b.usIndex[h]; ok {
		return idx
	}
	idx := uint32(len(b.us))

	utf16 := encodeUTF16LE(s)
	flag := uint8(0)
	for _, r := range s {
		if r > 0x7E || (r < 0x20 && r != 0x09 && r != 0x0A && r != 0x0D) {
			flag = 1
			break
		}
	}

	w := NewWriter()
	w.WriteCompressedUint32(uint32(len(utf16) + 1))
	w.WriteBytes(utf16)
	w.WriteU8(flag)
	b.us = append(b.us, w.Bytes()...)
	b.usIndex[h] = idx
	return idx
}

// AddGUID appends g to #GUID unconditionally (GUID heap entries are not
// deduplicated by content: a caller minting a fresh Mvid needs a fresh slot
// even if, astronomically, it collided with an existing one) and returns
// its 1-based index.
func (b *HeapBuilder) AddGUID(g [16]byte) uint32 {
	idx := uint32(len(b.guid)/16) + 1
	b.guid = append(b.guid, g[:]...)
	return idx
}

// Heaps returns the built heap contents, ready to be laid out into a
// metadata root's stream directory.
func (b *HeapBuilder) Heaps() Heaps {
	return Heaps{strings: b.strings, us: b.us, guid: b.guid, blob: b.blob}
}

func encodeUTF16LE(s string) []byte {
	out := make([]byte, 0, len(s)*2)
	for _, r := range s {
		if r <= 0xFFFF {
			out = append(out, byte(r), byte(r>>8))
			continue
		}
		r -= 0x10000
		hi := 0xD800 + (r >> 10)
		lo := 0xDC00 + (r & 0x3FF)
		out = append(out, byte(hi), byte(hi>>8), byte(lo), byte(lo>>8))
	}
	return out
}
