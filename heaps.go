package asmresolver

import (
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// Heaps holds read-only views over the four ECMA-335 metadata heaps.
// Index 0 is absent in every heap, by convention (spec.md §4.2); accessors
// return ok=false for it instead of synthesizing a value.
type Heaps struct {
	strings []byte
	us      []byte
	guid    []byte
	blob    []byte
}

// newHeaps builds a Heaps view from the stream-name -> bytes map a PE
// parser (or any other external collaborator) hands off, matching the
// `pe.CLR.MetadataStreams` map the teacher already builds in
// parseCLRHeaderDirectory (dotnet.go).
func newHeaps(streams map[string][]byte) Heaps {
	return Heaps{
		strings: streams["#Strings"],
		us:      streams["#US"],
		guid:    streams["#GUID"],
		blob:    streams["#Blob"],
	}
}

// GetString returns the NUL-terminated UTF-8 string at index in #Strings.
// ok is false for index 0 or an index past the heap's end.
func (h Heaps) GetString(index uint32) (s string, ok bool) {
	if index == 0 || int(index) >= len(h.strings) {
		return "", false
	}
	end := index
	for int(end) < len(h.strings) && h.strings[end] != 0 {
		end++
	}
	return string(h.strings[index:end]), true
}

// GetUserString returns the decoded UTF-16 string at index in #US. Each
// entry is a compressed-uint32 byte length (counting a trailing flag byte)
// followed by UTF-16LE code units and the flag byte itself; the flag is
// informational (see HeapBuilder.AddUserString for when it is set) and is
// not part of the returned value.
func (h Heaps) GetUserString(index uint32) (s string, ok bool) {
	if index == 0 || int(index) >= len(h.us) {
		return "", false
	}
	r := NewReader(h.us)
	if err := r.Seek(index); err != nil {
		return "", false
	}
	n, err := r.ReadCompressedUint32()
	if err != nil || n == 0 {
		return "", n == 0 && err == nil
	}
	raw, err := r.ReadBytes(n)
	if err != nil {
		return "", false
	}
	// Strip the trailing flag byte; what remains must be an even number of
	// UTF-16LE bytes.
	body := raw
	if len(body) > 0 {
		body = body[:len(body)-1]
	}
	if len(body)%2 != 0 {
		body = body[:len(body)-1]
	}
	decoder := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	decoded, err := decoder.Bytes(body)
	if err != nil {
		return "", false
	}
	return strings.TrimRight(string(decoded), "\x00"), true
}

// GetGUID returns the 16-byte GUID at the 1-based index into #GUID.
func (h Heaps) GetGUID(index uint32) (g [16]byte, ok bool) {
	if index == 0 {
		return g, false
	}
	off := (index - 1) * 16
	if int(off+16) > len(h.guid) {
		return g, false
	}
	copy(g[:], h.guid[off:off+16])
	return g, true
}

// GetBlob returns the length-prefixed byte run at index in #Blob. The
// returned slice aliases the heap's backing buffer.
func (h Heaps) GetBlob(index uint32) (b []byte, ok bool) {
	if index == 0 || int(index) >= len(h.blob) {
		return nil, false
	}
	r := NewReader(h.blob)
	if err := r.Seek(index); err != nil {
		return nil, false
	}
	n, err := r.ReadCompressedUint32()
	if err != nil {
		return nil, false
	}
	data, err := r.ReadBytes(n)
	if err != nil {
		return nil, false
	}
	return data, true
}

// NewBlobReader returns a Reader positioned at the start of the blob's
// payload (past its length prefix), ready for signature/element decoding.
func (h Heaps) NewBlobReader(index uint32) (*Reader, error) {
	b, ok := h.GetBlob(index)
	if !ok {
		return nil, newImageError("read #Blob heap entry", -1, index, ErrOutsideBoundary)
	}
	return NewReader(b), nil
}
