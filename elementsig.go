package asmresolver

// ElementValue is one decoded CustomAttrib FixedArg or NamedArg value,
// ECMA-335 §II.23.3. Exactly one of the typed fields is meaningful,
// selected by Kind.
type ElementValue struct {
	Kind  ElementType
	Bool  bool
	Int   int64
	Uint  uint64
	Float float64
	Str   string
	Ok    bool // for Str: false for the nil SerString, true for any other string (including "")
	Array []ElementValue

	// EnumTypeName carries an ElementTypeEnum value's
	// declaring type name, read from the blob's own SerString per
	// ECMA-335 §II.23.3's "an enum" production — resolving it to a member
	// token is the caller's job (it needs an Image to search by name).
	EnumTypeName string
}

const customAttribPrologue = 0x0001

// DecodeCustomAttributeValue decodes one CustomAttrib blob against ctor's
// parameter types, returning the fixed arguments followed by any named
// arguments. namedCount is read from the blob itself.
func DecodeCustomAttributeValue(r *Reader, fixedArgTypes []*TypeSignature) (fixed []ElementValue, named []NamedArgument, err error) {
	prologue, err := r.ReadU16()
	if err != nil {
		return nil, nil, err
	}
	if prologue != customAttribPrologue {
		return nil, nil, ErrUnsupportedElement
	}

	fixed = make([]ElementValue, len(fixedArgTypes))
	for i, t := range fixedArgTypes {
		fixed[i], err = decodeElementValue(r, t)
		if err != nil {
			return nil, nil, err
		}
	}

	numNamed, err := r.ReadU16()
	if err != nil {
		return nil, nil, err
	}
	named = make([]NamedArgument, numNamed)
	for i := range named {
		named[i], err = decodeNamedArgument(r)
		if err != nil {
			return nil, nil, err
		}
	}
	return fixed, named, nil
}

// NamedArgument is one CustomAttrib NamedArg: a field or property on the
// attribute type, identified by name, with its own element value.
type NamedArgument struct {
	IsField bool // false means it names a property
	Name    string
	Value   ElementValue
}

func decodeNamedArgument(r *Reader) (NamedArgument, error) {
	var arg NamedArgument
	kindByte, err := r.ReadU8()
	if err != nil {
		return arg, err
	}
	switch ElementType(kindByte) {
	case 0x53: // FIELD
		arg.IsField = true
	case 0x54: // PROPERTY
		arg.IsField = false
	default:
		return arg, ErrUnsupportedElement
	}

	fieldOrPropType, err := decodeNamedArgType(r)
	if err != nil {
		return arg, err
	}
	name, ok, err := r.ReadSerString()
	if err != nil {
		return arg, err
	}
	if !ok {
		return arg, ErrUnsupportedElement
	}
	arg.Name = name
	arg.Value, err = decodeElementValue(r, fieldOrPropType)
	return arg, err
}

// decodeNamedArgType decodes the FieldOrPropType production that precedes a
// NamedArg's value: either a plain ELEMENT_TYPE, or 0x55 (ElementTypeEnum)
// followed by the enum's type name, or 0x1D (SZArray marker precedes an
// element FieldOrPropType recursively).
func decodeNamedArgType(r *Reader) (*TypeSignature, error) {
	b, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	switch ElementType(b) {
	case 0x55: // ENUM
		name, ok, err := r.ReadSerString()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrUnsupportedElement
		}
		return &TypeSignature{ElementType: 0x55, Number: 0, Args: nil, Token: 0, Array: nil, Element: nil, EnumName: name}, nil
	case ElementTypeSZArray:
		elem, err := decodeNamedArgType(r)
		if err != nil {
			return nil, err
		}
		return &TypeSignature{ElementType: ElementTypeSZArray, Element: elem}, nil
	default:
		return &TypeSignature{ElementType: ElementType(b)}, nil
	}
}

func decodeElementValue(r *Reader, t *TypeSignature) (ElementValue, error) {
	if t == nil {
		return ElementValue{}, ErrUnsupportedElement
	}
	switch t.ElementType {
	case ElementTypeBoolean:
		v, err := r.ReadU8()
		return ElementValue{Kind: t.ElementType, Bool: v != 0}, err
	case ElementTypeChar:
		v, err := r.ReadU16()
		return ElementValue{Kind: t.ElementType, Uint: uint64(v)}, err
	case ElementTypeU1:
		v, err := r.ReadU8()
		return ElementValue{Kind: t.ElementType, Uint: uint64(v)}, err
	case ElementTypeI1:
		v, err := r.ReadI8()
		return ElementValue{Kind: t.ElementType, Int: int64(v)}, err
	case ElementTypeU2:
		v, err := r.ReadU16()
		return ElementValue{Kind: t.ElementType, Uint: uint64(v)}, err
	case ElementTypeI2:
		v, err := r.ReadI16()
		return ElementValue{Kind: t.ElementType, Int: int64(v)}, err
	case ElementTypeU4:
		v, err := r.ReadU32()
		return ElementValue{Kind: t.ElementType, Uint: uint64(v)}, err
	case ElementTypeI4:
		v, err := r.ReadI32()
		return ElementValue{Kind: t.ElementType, Int: int64(v)}, err
	case ElementTypeU8:
		v, err := r.ReadU64()
		return ElementValue{Kind: t.ElementType, Uint: v}, err
	case ElementTypeI8:
		v, err := r.ReadI64()
		return ElementValue{Kind: t.ElementType, Int: v}, err
	case ElementTypeR4:
		v, err := r.ReadF32()
		return ElementValue{Kind: t.ElementType, Float: float64(v)}, err
	case ElementTypeR8:
		v, err := r.ReadF64()
		return ElementValue{Kind: t.ElementType, Float: v}, err
	case ElementTypeString:
		s, ok, err := r.ReadSerString()
		return ElementValue{Kind: t.ElementType, Str: s, Ok: ok}, err
	case ElementTypeObject:
		// A boxed value is preceded by its own FieldOrPropType byte.
		inner, err := decodeNamedArgType(r)
		if err != nil {
			return ElementValue{}, err
		}
		return decodeElementValue(r, inner)
	case ElementTypeClass:
		// System.Type value: encoded the same as String (a SerString
		// naming the type), per ECMA-335 §II.23.3 note on ELEMENT_TYPE_CLASS
		// with a null token standing in for System.Type.
		s, ok, err := r.ReadSerString()
		return ElementValue{Kind: t.ElementType, Str: s, Ok: ok}, err
	case 0x55: // ENUM
		// The underlying integral type is not re-stated in the blob; a
		// caller that needs the enum's true underlying type must resolve
		// t.EnumName to a member and inspect its Constant row (members.go),
		// then re-decode. Absent that context the value is always read as
		// I4, the most common underlying type; an enum with any other
		// underlying type is misread here, and no error is reported.
		v, err := r.ReadI32()
		return ElementValue{Kind: t.ElementType, Int: int64(v), EnumTypeName: t.EnumName}, err
	case ElementTypeSZArray:
		n, err := r.ReadU32()
		if err != nil {
			return ElementValue{}, err
		}
		if n == 0xFFFFFFFF { // null array
			return ElementValue{Kind: ElementTypeSZArray, Array: nil}, nil
		}
		out := make([]ElementValue, n)
		for i := range out {
			ev, err := decodeElementValue(r, t.Element)
			if err != nil {
				return ElementValue{}, err
			}
			out[i] = ev
		}
		return ElementValue{Kind: ElementTypeSZArray, Array: out}, nil
	default:
		return ElementValue{}, ErrUnsupportedElement
	}
}

// EncodeElementValue appends ev to w using the same wire shapes
// decodeElementValue reads them in. It is the package's one write-path
// serializer for custom-attribute values (spec.md §1's write-path
// compatibility anchor), not a general emitter.
func EncodeElementValue(w *Writer, ev ElementValue) {
	switch ev.Kind {
	case ElementTypeBoolean:
		if ev.Bool {
			w.WriteU8(1)
		} else {
			w.WriteU8(0)
		}
	case ElementTypeChar:
		w.WriteU16(uint16(ev.Uint))
	case ElementTypeU1:
		w.WriteU8(uint8(ev.Uint))
	case ElementTypeI1:
		w.WriteI8(int8(ev.Int))
	case ElementTypeU2:
		w.WriteU16(uint16(ev.Uint))
	case ElementTypeI2:
		w.WriteI16(int16(ev.Int))
	case ElementTypeU4:
		w.WriteU32(uint32(ev.Uint))
	case ElementTypeI4, 0x55:
		w.WriteI32(int32(ev.Int))
	case ElementTypeU8:
		w.WriteU64(ev.Uint)
	case ElementTypeI8:
		w.WriteI64(ev.Int)
	case ElementTypeR4:
		w.WriteF32(float32(ev.Float))
	case ElementTypeR8:
		w.WriteF64(ev.Float)
	case ElementTypeString, ElementTypeClass:
		w.WriteSerString(ev.Str, ev.Ok)
	case ElementTypeSZArray:
		if ev.Array == nil {
			w.WriteU32(0xFFFFFFFF)
			return
		}
		w.WriteU32(uint32(len(ev.Array)))
		for _, elem := range ev.Array {
			EncodeElementValue(w, elem)
		}
	}
}
