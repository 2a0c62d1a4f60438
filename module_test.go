package asmresolver

import "testing"

// buildMetadataRoot assembles a minimal standalone CLI metadata root: the
// BSJB header, a stream directory, and three streams (#~, #Strings,
// #GUID), enough to exercise NewImage end to end.
func buildMetadataRoot(t *testing.T) []byte {
	t.Helper()

	tablesStream := buildTablesStream(t)

	stringsHeap := make([]byte, 0, 32)
	stringsHeap = append(stringsHeap, 0) // reserved index 0
	for len(stringsHeap) < 7 {
		stringsHeap = append(stringsHeap, 0)
	}
	stringsHeap = append(stringsHeap, []byte("Test.dll\x00")...)

	guidHeap := make([]byte, 16) // index 1
	guidHeap[0] = 0xAA
	guidHeap[15] = 0xBB

	type namedStream struct {
		name string
		data []byte
	}
	streams := []namedStream{
		{"#~", tablesStream},
		{"#Strings", stringsHeap},
		{"#GUID", guidHeap},
	}

	version := "v4.0.30319\x00\x00"
	for len(version)%4 != 0 {
		version += "\x00"
	}

	header := NewWriter()
	header.WriteU32(metadataRootSignature)
	header.WriteU16(1) // MajorVersion
	header.WriteU16(1) // MinorVersion
	header.WriteU32(0) // Reserved
	header.WriteU32(uint32(len(version)))
	header.WriteBytes([]byte(version))
	header.WriteU16(0)                     // Flags
	header.WriteU16(uint16(len(streams)))   // NumberOfStreams

	// Stream directory entries reference absolute offsets into the final
	// buffer; compute them by laying out the directory first (fixed-size
	// per entry given each name's padded length), then the stream bodies.
	type dirEntry struct {
		nameBytes []byte
	}
	dirEntries := make([]dirEntry, len(streams))
	dirSize := 0
	for i, s := range streams {
		name := []byte(s.name)
		name = append(name, 0)
		for len(name)%4 != 0 {
			name = append(name, 0)
		}
		dirEntries[i] = dirEntry{nameBytes: name}
		dirSize += 8 + len(name)
	}

	bodyStart := header.Len() + uint32(dirSize)
	offsets := make([]uint32, len(streams))
	cursor := bodyStart
	for i, s := range streams {
		offsets[i] = cursor
		cursor += uint32(len(s.data))
		for cursor%4 != 0 {
			cursor++ // pad stream bodies to 4-byte boundaries, as real images do
		}
	}

	for i, s := range streams {
		header.WriteU32(offsets[i])
		header.WriteU32(uint32(len(s.data)))
		header.WriteBytes(dirEntries[i].nameBytes)
	}

	out := header.Bytes()
	for i, s := range streams {
		for uint32(len(out)) < offsets[i] {
			out = append(out, 0)
		}
		out = append(out, s.data...)
	}
	for len(out)%4 != 0 {
		out = append(out, 0)
	}
	return out
}

func TestNewImageName(t *testing.T) {
	img, err := NewImage(buildMetadataRoot(t))
	if err != nil {
		t.Fatalf("NewImage: %v", err)
	}
	name, ok := img.Name()
	if !ok || name != "Test.dll" {
		t.Fatalf("got (%q, %v), want (\"Test.dll\", true)", name, ok)
	}
}

func TestNewImageMvid(t *testing.T) {
	img, err := NewImage(buildMetadataRoot(t))
	if err != nil {
		t.Fatalf("NewImage: %v", err)
	}
	mvid, ok := img.Mvid()
	if !ok || mvid[0] != 0xAA || mvid[15] != 0xBB {
		t.Fatalf("got (%x, %v)", mvid, ok)
	}
}

func TestNewImageBadSignature(t *testing.T) {
	data := make([]byte, 32)
	if _, err := NewImage(data); err == nil {
		t.Fatal("expected error for bad BSJB signature")
	}
}

func TestTryLookupStringOutOfRange(t *testing.T) {
	img, err := NewImage(buildMetadataRoot(t))
	if err != nil {
		t.Fatalf("NewImage: %v", err)
	}
	if _, ok := img.TryLookupString(9999); ok {
		t.Fatal("expected ok=false for an out-of-range string index")
	}
}

// TestResolveNilTokenIsNotFoundNotError distinguishes spec.md §8's two
// token-resolution scenarios: a nil token (RID 0) is not-found, while a RID
// past the table's row count is the hard ErrTokenOutOfRange.
func TestResolveNilTokenIsNotFoundNotError(t *testing.T) {
	img, err := NewImage(buildMetadataRoot(t))
	if err != nil {
		t.Fatalf("NewImage: %v", err)
	}

	m, err := img.Resolve(NewToken(TypeDef, 0))
	if err != nil {
		t.Fatalf("got err %v, want nil for a nil token", err)
	}
	if m != nil {
		t.Fatalf("got %v, want nil Member for a nil token", m)
	}

	if _, ok := img.TryLookupMember(NewToken(TypeDef, 0)); ok {
		t.Fatal("expected ok=false for a nil token")
	}

	_, err = img.Resolve(NewToken(TypeRef, 99))
	if err != ErrTokenOutOfRange {
		t.Fatalf("got err %v, want ErrTokenOutOfRange for an out-of-range rid", err)
	}
}

func TestLookupMemberNilTokenDoesNotPanic(t *testing.T) {
	img, err := NewImage(buildMetadataRoot(t))
	if err != nil {
		t.Fatalf("NewImage: %v", err)
	}
	if m := img.LookupMember(NewToken(TypeDef, 0)); m != nil {
		t.Fatalf("got %v, want nil Member for a nil token", m)
	}
}

// TestCorLibReferenceSelfFallback exercises spec.md §4.8's fallback: an
// image with no matching AssemblyRef but whose own Assembly row names a
// known corlib (as mscorlib.dll itself would) is reported as its own
// corlib.
func TestCorLibReferenceSelfFallback(t *testing.T) {
	ts := &TableSet{
		Assemblies: []AssemblyRow{{Name: 1, MajorVersion: 4}},
	}
	ts.RowCounts[Assembly] = 1

	img := &Image{
		ts:     ts,
		heaps:  newHeaps(map[string][]byte{"#Strings": append([]byte{0}, []byte("mscorlib\x00")...)}),
		ranges: NewRangeResolver(ts),
		cache:  newMemberCache(),
	}

	ref, ok := img.CorLibReference()
	if !ok {
		t.Fatal("expected ok=true for a self-referencing corlib image")
	}
	if name, _ := ref.Name(); name != "mscorlib" {
		t.Fatalf("got name %q, want mscorlib", name)
	}
}
