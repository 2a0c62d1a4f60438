package asmresolver

import "testing"

func TestHeapBuilderStringDedup(t *testing.T) {
	b := NewHeapBuilder()
	i1 := b.AddString("System.Object")
	i2 := b.AddString("System.Object")
	i3 := b.AddString("System.String")
	if i1 != i2 {
		t.Errorf("identical strings got different indexes: %d != %d", i1, i2)
	}
	if i1 == i3 {
		t.Errorf("distinct strings got the same index: %d", i1)
	}

	heaps := b.Heaps()
	s, ok := heaps.GetString(i1)
	if !ok || s != "System.Object" {
		t.Fatalf("got (%q, %v), want (\"System.Object\", true)", s, ok)
	}
}

func TestHeapBuilderBlobDedup(t *testing.T) {
	b := NewHeapBuilder()
	i1 := b.AddBlob([]byte{0x01, 0x02, 0x03})
	i2 := b.AddBlob([]byte{0x01, 0x02, 0x03})
	if i1 != i2 {
		t.Errorf("identical blobs got different indexes: %d != %d", i1, i2)
	}

	heaps := b.Heaps()
	got, ok := heaps.GetBlob(i1)
	if !ok || string(got) != "\x01\x02\x03" {
		t.Fatalf("got (%x, %v)", got, ok)
	}
}

func TestHeapBuilderIndexZeroReserved(t *testing.T) {
	b := NewHeapBuilder()
	idx := b.AddString("x")
	if idx == 0 {
		t.Fatal("first interned string must not occupy reserved index 0")
	}
}

func TestHeapBuilderUserStringRoundTrip(t *testing.T) {
	b := NewHeapBuilder()
	idx := b.AddUserString("hi")
	heaps := b.Heaps()
	s, ok := heaps.GetUserString(idx)
	if !ok || s != "hi" {
		t.Fatalf("got (%q, %v), want (\"hi\", true)", s, ok)
	}
}

func TestHeapBuilderGUIDNotDeduped(t *testing.T) {
	b := NewHeapBuilder()
	g := [16]byte{1, 2, 3}
	i1 := b.AddGUID(g)
	i2 := b.AddGUID(g)
	if i1 == i2 {
		t.Error("GUID heap entries should each get a fresh index, not be deduped")
	}
}
