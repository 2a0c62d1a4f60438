package asmresolver

import (
	"reflect"
	"testing"
)

func TestDecodeCustomAttributeValueFixedArgs(t *testing.T) {
	w := NewWriter()
	w.WriteU16(customAttribPrologue)
	w.WriteI32(42) // I4 fixed arg
	w.WriteU16(0)  // no named args

	fixed, named, err := DecodeCustomAttributeValue(NewReader(w.Bytes()), []*TypeSignature{{ElementType: ElementTypeI4}})
	if err != nil {
		t.Fatalf("DecodeCustomAttributeValue: %v", err)
	}
	if len(fixed) != 1 || fixed[0].Int != 42 {
		t.Fatalf("got fixed %v, want [Int=42]", fixed)
	}
	if len(named) != 0 {
		t.Fatalf("got %d named args, want 0", len(named))
	}
}

func TestDecodeCustomAttributeValueBadPrologue(t *testing.T) {
	w := NewWriter()
	w.WriteU16(0x0002)
	if _, _, err := DecodeCustomAttributeValue(NewReader(w.Bytes()), nil); err != ErrUnsupportedElement {
		t.Fatalf("got err %v, want ErrUnsupportedElement", err)
	}
}

func TestDecodeCustomAttributeValueNamedArg(t *testing.T) {
	w := NewWriter()
	w.WriteU16(customAttribPrologue)
	w.WriteU16(1) // 1 named arg
	w.WriteU8(0x53)
	w.WriteU8(byte(ElementTypeString))
	w.WriteSerString("Description", true)
	w.WriteSerString("hello", true)

	_, named, err := DecodeCustomAttributeValue(NewReader(w.Bytes()), nil)
	if err != nil {
		t.Fatalf("DecodeCustomAttributeValue: %v", err)
	}
	if len(named) != 1 {
		t.Fatalf("got %d named args, want 1", len(named))
	}
	if !named[0].IsField || named[0].Name != "Description" || named[0].Value.Str != "hello" {
		t.Fatalf("got %+v", named[0])
	}
}

func TestEncodeDecodeElementValueRoundTrip(t *testing.T) {
	values := []ElementValue{
		{Kind: ElementTypeBoolean, Bool: true},
		{Kind: ElementTypeChar, Uint: 'A'},
		{Kind: ElementTypeU1, Uint: 7},
		{Kind: ElementTypeI4, Int: -7},
		{Kind: ElementTypeU8, Uint: 1 << 40},
		{Kind: ElementTypeR8, Float: 3.25},
		{Kind: ElementTypeString, Str: "hi", Ok: true},
	}
	for _, v := range values {
		w := NewWriter()
		EncodeElementValue(w, v)

		t2 := &TypeSignature{ElementType: v.Kind}
		got, err := decodeElementValue(NewReader(w.Bytes()), t2)
		if err != nil {
			t.Fatalf("decode %+v: %v", v, err)
		}
		if !reflect.DeepEqual(got, v) {
			t.Errorf("round trip %+v: got %+v", v, got)
		}
	}
}
