package asmresolver

import "testing"

func TestDecodeMethodSignatureVoidNoArgs(t *testing.T) {
	// HASTHIS|DEFAULT, 0 params, return VOID
	data := []byte{0x20, 0x00, byte(ElementTypeVoid)}
	sig, err := DecodeMethodSignature(NewReader(data))
	if err != nil {
		t.Fatalf("DecodeMethodSignature: %v", err)
	}
	if !sig.HasThis {
		t.Error("expected HasThis")
	}
	if sig.ReturnType.ElementType != ElementTypeVoid {
		t.Errorf("got return type %v, want Void", sig.ReturnType.ElementType)
	}
	if len(sig.Parameters) != 0 {
		t.Errorf("got %d parameters, want 0", len(sig.Parameters))
	}
}

func TestDecodeMethodSignatureWithParams(t *testing.T) {
	// DEFAULT, 2 params, return I4, params (I4, String)
	data := []byte{
		0x00, 0x02,
		byte(ElementTypeI4),
		byte(ElementTypeI4),
		byte(ElementTypeString),
	}
	sig, err := DecodeMethodSignature(NewReader(data))
	if err != nil {
		t.Fatalf("DecodeMethodSignature: %v", err)
	}
	if sig.HasThis {
		t.Error("did not expect HasThis")
	}
	if len(sig.Parameters) != 2 {
		t.Fatalf("got %d parameters, want 2", len(sig.Parameters))
	}
	if sig.Parameters[0].ElementType != ElementTypeI4 {
		t.Errorf("param 0 = %v, want I4", sig.Parameters[0].ElementType)
	}
	if sig.Parameters[1].ElementType != ElementTypeString {
		t.Errorf("param 1 = %v, want String", sig.Parameters[1].ElementType)
	}
}

func TestDecodeTypeSignatureSZArray(t *testing.T) {
	data := []byte{byte(ElementTypeSZArray), byte(ElementTypeI4)}
	sig, err := DecodeTypeSignature(NewReader(data))
	if err != nil {
		t.Fatalf("DecodeTypeSignature: %v", err)
	}
	if sig.ElementType != ElementTypeSZArray {
		t.Fatalf("got %v, want SZArray", sig.ElementType)
	}
	if sig.Element == nil || sig.Element.ElementType != ElementTypeI4 {
		t.Fatalf("got element %v, want I4", sig.Element)
	}
}

func TestDecodeTypeSignatureValueType(t *testing.T) {
	// ELEMENT_TYPE_VALUETYPE followed by a TypeDefOrRef coded index for
	// TypeDef rid 3 (tag 0).
	encoded := TypeDefOrRef.Encode(TypeDef, 3)
	w := NewWriter()
	w.WriteU8(byte(ElementTypeValueType))
	w.WriteCompressedUint32(encoded)

	sig, err := DecodeTypeSignature(NewReader(w.Bytes()))
	if err != nil {
		t.Fatalf("DecodeTypeSignature: %v", err)
	}
	if sig.Token != NewToken(TypeDef, 3) {
		t.Fatalf("got token %v, want TypeDef[3]", sig.Token)
	}
}

func TestDecodeTypeSignatureUnsupportedElement(t *testing.T) {
	data := []byte{0x7F}
	if _, err := DecodeTypeSignature(NewReader(data)); err != ErrUnsupportedElement {
		t.Fatalf("got err %v, want ErrUnsupportedElement", err)
	}
}

func TestDecodeTypeSignatureTypeSpecSelfReferenceDoesNotErrorOnce(t *testing.T) {
	// A single VALUETYPE naming a TypeSpec is legal on its own; the
	// recursion guard only fires when expansion of that very TypeSpec's
	// own signature re-enters itself. DecodeTypeSignature (no resolver) has
	// no TypeSpec table to expand into, so a standalone reference is never
	// mistaken for a cycle.
	encoded := TypeDefOrRef.Encode(TypeSpec, 1)
	w := NewWriter()
	w.WriteU8(byte(ElementTypeValueType))
	w.WriteCompressedUint32(encoded)

	if _, err := DecodeTypeSignature(NewReader(w.Bytes())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// typeSpecBlob encodes a VALUETYPE/TypeSpec reference to rid, the shape a
// TypeSpec row's own blob takes when it names another TypeSpec.
func typeSpecBlob(rid uint32) []byte {
	w := NewWriter()
	w.WriteU8(byte(ElementTypeValueType))
	w.WriteCompressedUint32(TypeDefOrRef.Encode(TypeSpec, rid))
	return w.Bytes()
}

func TestDecodeTypeSignatureWithTypeSpecsSelfReferenceFails(t *testing.T) {
	// TypeSpec rid 1's own signature names itself: decoding it must fail
	// with ErrSignatureRecursion instead of looping forever.
	blobs := map[uint32][]byte{1: typeSpecBlob(1)}
	resolve := func(rid uint32) (*Reader, error) { return NewReader(blobs[rid]), nil }

	_, err := DecodeTypeSignatureWithTypeSpecs(NewReader(typeSpecBlob(1)), resolve)
	if err != ErrSignatureRecursion {
		t.Fatalf("got err %v, want ErrSignatureRecursion", err)
	}
}

func TestDecodeTypeSignatureWithTypeSpecsIndirectCycleFails(t *testing.T) {
	// TypeSpec 1 names TypeSpec 2, which names TypeSpec 1 back: a two-hop
	// cycle must be caught the same way a direct self-reference is.
	blobs := map[uint32][]byte{1: typeSpecBlob(2), 2: typeSpecBlob(1)}
	resolve := func(rid uint32) (*Reader, error) { return NewReader(blobs[rid]), nil }

	_, err := DecodeTypeSignatureWithTypeSpecs(NewReader(typeSpecBlob(1)), resolve)
	if err != ErrSignatureRecursion {
		t.Fatalf("got err %v, want ErrSignatureRecursion", err)
	}
}

func TestDecodeTypeSignatureWithTypeSpecsExpandsNonCyclic(t *testing.T) {
	// TypeSpec 1 names a plain I4, a legal (non-cyclic) expansion.
	w := NewWriter()
	w.WriteU8(byte(ElementTypeI4))
	blobs := map[uint32][]byte{1: w.Bytes()}
	resolve := func(rid uint32) (*Reader, error) { return NewReader(blobs[rid]), nil }

	sig, err := DecodeTypeSignatureWithTypeSpecs(NewReader(typeSpecBlob(1)), resolve)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig.Element == nil || sig.Element.ElementType != ElementTypeI4 {
		t.Fatalf("got expanded element %v, want I4", sig.Element)
	}
}
