package asmresolver

import "sync"

// Member is any metadata entity the factory below can mint: something with
// a stable token identity. Concrete members additionally expose table-
// specific accessors (Name, Signature, parent/child relations, ...).
type Member interface {
	Token() Token
}

// memberCache publishes at most one Member per token across the lifetime of
// an Image, following the teacher's general "parse once, cache forever"
// posture (pe.File caches its directory parses the same way) generalized to
// per-token identity instead of per-directory. Each table gets its own map
// and mutex rather than one global lock, so resolving a MethodDef does not
// contend with resolving a TypeRef.
type memberCache struct {
	mus   [tableCount]sync.RWMutex
	byTok [tableCount]map[uint32]Member
}

func newMemberCache() *memberCache {
	mc := &memberCache{}
	for i := range mc.byTok {
		mc.byTok[i] = make(map[uint32]Member)
	}
	return mc
}

// getOrCreate returns the cached Member for tok, creating it via build on
// first request. Double-checked locking: an RLock-guarded fast path handles
// the overwhelmingly common already-resolved case; build runs outside any
// lock (it may itself resolve other members), and the result is published
// under a write lock with a second check in case of a concurrent race.
func (mc *memberCache) getOrCreate(tok Token, build func() (Member, error)) (Member, error) {
	table := tok.Table()
	mu := &mc.mus[table]

	mu.RLock()
	if m, ok := mc.byTok[table][tok.RID()]; ok {
		mu.RUnlock()
		return m, nil
	}
	mu.RUnlock()

	m, err := build()
	if err != nil {
		return nil, err
	}

	mu.Lock()
	defer mu.Unlock()
	if existing, ok := mc.byTok[table][tok.RID()]; ok {
		return existing, nil
	}
	mc.byTok[table][tok.RID()] = m
	return m, nil
}

// TypeReference is a TypeRef row's resolved member identity.
type TypeReference struct {
	tok Token
	img *Image
	row TypeRefRow
}

func (m *TypeReference) Token() Token { return m.tok }

// Name returns the referenced type's simple name.
func (m *TypeReference) Name() (string, bool) { return m.img.heaps.GetString(m.row.TypeName) }

// Namespace returns the referenced type's namespace.
func (m *TypeReference) Namespace() (string, bool) { return m.img.heaps.GetString(m.row.TypeNamespace) }

// ResolutionScope returns the token this reference resolves against: an
// AssemblyRef, ModuleRef, Module, or enclosing TypeRef (for nested types).
func (m *TypeReference) ResolutionScope() (Token, error) {
	table, rid, err := ResolutionScope.Decode(m.row.ResolutionScope)
	if err != nil {
		return 0, err
	}
	if rid == 0 {
		return 0, nil
	}
	return NewToken(table, rid), nil
}

// TypeDefinition is a TypeDef row's resolved member identity.
type TypeDefinition struct {
	tok Token
	img *Image
	row TypeDefRow
}

func (m *TypeDefinition) Token() Token { return m.tok }

func (m *TypeDefinition) Name() (string, bool) { return m.img.heaps.GetString(m.row.TypeName) }

func (m *TypeDefinition) Namespace() (string, bool) { return m.img.heaps.GetString(m.row.TypeNamespace) }

// Extends returns the base-type token (TypeDef, TypeRef, or TypeSpec), or a
// nil token for a type with no base (System.Object and interfaces).
func (m *TypeDefinition) Extends() (Token, error) {
	table, rid, err := TypeDefOrRef.Decode(m.row.Extends)
	if err != nil {
		return 0, err
	}
	if rid == 0 {
		return 0, nil
	}
	return NewToken(table, rid), nil
}

// Fields resolves the member range this type owns into the Field table.
func (m *TypeDefinition) Fields() ([]*FieldDefinition, error) {
	rng, ok := m.img.ranges.MemberRange(TypeDef, m.tok.RID(), Field)
	if !ok {
		return nil, nil
	}
	return resolveRange[*FieldDefinition](m.img, rng)
}

// Methods resolves the member range this type owns into the MethodDef table.
func (m *TypeDefinition) Methods() ([]*MethodDefinition, error) {
	rng, ok := m.img.ranges.MemberRange(TypeDef, m.tok.RID(), MethodDef)
	if !ok {
		return nil, nil
	}
	return resolveRange[*MethodDefinition](m.img, rng)
}

// Properties resolves the member range this type owns into the Property
// table, indirecting through its PropertyMap row (spec.md §4.5).
func (m *TypeDefinition) Properties() ([]*PropertyDefinition, error) {
	rng, ok := m.img.ranges.MemberRange(TypeDef, m.tok.RID(), Property)
	if !ok {
		return nil, nil
	}
	return resolveRange[*PropertyDefinition](m.img, rng)
}

// Events resolves the member range this type owns into the Event table,
// indirecting through its EventMap row (spec.md §4.5).
func (m *TypeDefinition) Events() ([]*EventDefinition, error) {
	rng, ok := m.img.ranges.MemberRange(TypeDef, m.tok.RID(), Event)
	if !ok {
		return nil, nil
	}
	return resolveRange[*EventDefinition](m.img, rng)
}

// IsNested reports whether this type is a nested class, and if so, its
// enclosing type's token.
func (m *TypeDefinition) IsNested() (Token, bool) {
	return m.img.enclosingClass(m.tok.RID())
}

// FieldDefinition is a Field row's resolved member identity.
type FieldDefinition struct {
	tok Token
	img *Image
	row FieldRow
}

func (m *FieldDefinition) Token() Token { return m.tok }

func (m *FieldDefinition) Name() (string, bool) { return m.img.heaps.GetString(m.row.Name) }

// Signature returns a Reader positioned at the start of the field's
// signature blob.
func (m *FieldDefinition) Signature() (*Reader, error) { return m.img.heaps.NewBlobReader(m.row.Signature) }

// DeclaringType resolves the TypeDef that owns this field.
func (m *FieldDefinition) DeclaringType() (*TypeDefinition, error) {
	table, rid, ok := m.img.ranges.Owner(Field, m.tok.RID())
	if !ok {
		return nil, ErrMemberResolution
	}
	mem, err := m.img.Resolve(NewToken(table, rid))
	if err != nil {
		return nil, err
	}
	td, _ := mem.(*TypeDefinition)
	return td, nil
}

// MethodDefinition is a MethodDef row's resolved member identity.
type MethodDefinition struct {
	tok Token
	img *Image
	row MethodDefRow
}

func (m *MethodDefinition) Token() Token { return m.tok }

func (m *MethodDefinition) Name() (string, bool) { return m.img.heaps.GetString(m.row.Name) }

// Signature returns a Reader positioned at the start of the method's
// signature blob.
func (m *MethodDefinition) Signature() (*Reader, error) { return m.img.heaps.NewBlobReader(m.row.Signature) }

// Parameters resolves the member range this method owns into the Param table.
func (m *MethodDefinition) Parameters() ([]*ParameterDefinition, error) {
	rng, ok := m.img.ranges.MemberRange(MethodDef, m.tok.RID(), Param)
	if !ok {
		return nil, nil
	}
	return resolveRange[*ParameterDefinition](m.img, rng)
}

// DeclaringType resolves the TypeDef that owns this method.
func (m *MethodDefinition) DeclaringType() (*TypeDefinition, error) {
	table, rid, ok := m.img.ranges.Owner(MethodDef, m.tok.RID())
	if !ok {
		return nil, ErrMemberResolution
	}
	mem, err := m.img.Resolve(NewToken(table, rid))
	if err != nil {
		return nil, err
	}
	td, _ := mem.(*TypeDefinition)
	return td, nil
}

// ParameterDefinition is a Param row's resolved member identity.
type ParameterDefinition struct {
	tok Token
	img *Image
	row ParamRow
}

func (m *ParameterDefinition) Token() Token { return m.tok }

func (m *ParameterDefinition) Name() (string, bool) { return m.img.heaps.GetString(m.row.Name) }

func (m *ParameterDefinition) Sequence() uint16 { return m.row.Sequence }

// MemberReference is a MemberRef row's resolved member identity: a
// reference to a field or method defined in another module or assembly.
type MemberReference struct {
	tok Token
	img *Image
	row MemberRefRow
}

func (m *MemberReference) Token() Token { return m.tok }

func (m *MemberReference) Name() (string, bool) { return m.img.heaps.GetString(m.row.Name) }

// Signature returns a Reader positioned at the start of this reference's
// field or method signature blob.
func (m *MemberReference) Signature() (*Reader, error) { return m.img.heaps.NewBlobReader(m.row.Signature) }

// Parent resolves the token this member belongs to (TypeDef, TypeRef,
// ModuleRef, MethodDef, or TypeSpec).
func (m *MemberReference) Parent() (Token, error) {
	table, rid, err := MemberRefParent.Decode(m.row.Class)
	if err != nil {
		return 0, err
	}
	return NewToken(table, rid), nil
}

// PropertyDefinition is a Property row's resolved member identity.
type PropertyDefinition struct {
	tok Token
	img *Image
	row PropertyRow
}

func (m *PropertyDefinition) Token() Token { return m.tok }

func (m *PropertyDefinition) Name() (string, bool) { return m.img.heaps.GetString(m.row.Name) }

// Signature returns a Reader positioned at the start of the property's
// signature blob.
func (m *PropertyDefinition) Signature() (*Reader, error) { return m.img.heaps.NewBlobReader(m.row.Type) }

// EventDefinition is an Event row's resolved member identity.
type EventDefinition struct {
	tok Token
	img *Image
	row EventRow
}

func (m *EventDefinition) Token() Token { return m.tok }

func (m *EventDefinition) Name() (string, bool) { return m.img.heaps.GetString(m.row.Name) }

// EventType resolves the event's delegate type token.
func (m *EventDefinition) EventType() (Token, error) {
	table, rid, err := TypeDefOrRef.Decode(m.row.EventType)
	if err != nil {
		return 0, err
	}
	return NewToken(table, rid), nil
}

// AssemblyReference is an AssemblyRef row's resolved member identity.
type AssemblyReference struct {
	tok Token
	img *Image
	row AssemblyRefRow
}

func (m *AssemblyReference) Token() Token { return m.tok }

func (m *AssemblyReference) Name() (string, bool) { return m.img.heaps.GetString(m.row.Name) }

func (m *AssemblyReference) Version() [4]uint16 { return m.row.Version() }

// GenericParameter is a GenericParam row's resolved member identity.
type GenericParameter struct {
	tok Token
	img *Image
	row GenericParamRow
}

func (m *GenericParameter) Token() Token { return m.tok }

func (m *GenericParameter) Name() (string, bool) { return m.img.heaps.GetString(m.row.Name) }

func (m *GenericParameter) Number() uint16 { return m.row.Number }

// Owner resolves the TypeDef or MethodDef this generic parameter belongs to.
func (m *GenericParameter) Owner() (Token, error) {
	table, rid, err := TypeOrMethodDef.Decode(m.row.Owner)
	if err != nil {
		return 0, err
	}
	return NewToken(table, rid), nil
}

// GenericParameterConstraint is a GenericParamConstraint row's resolved
// member identity.
type GenericParameterConstraint struct {
	tok Token
	img *Image
	row GenericParamConstraintRow
}

func (m *GenericParameterConstraint) Token() Token { return m.tok }

// Constraint resolves the token of the type this constraint requires.
func (m *GenericParameterConstraint) Constraint() (Token, error) {
	table, rid, err := TypeDefOrRef.Decode(m.row.Constraint)
	if err != nil {
		return 0, err
	}
	return NewToken(table, rid), nil
}

// resolveRange resolves every token in rng through img.Resolve and type
// asserts each result to T, skipping resolution errors is not an option
// (spec.md treats a malformed row as a hard error, not a silent drop).
func resolveRange[T Member](img *Image, rng MetadataRange) ([]T, error) {
	out := make([]T, 0, rng.Len())
	for _, tok := range rng.Tokens() {
		mem, err := img.Resolve(tok)
		if err != nil {
			return nil, err
		}
		t, ok := mem.(T)
		if !ok {
			return nil, ErrMemberResolution
		}
		out = append(out, t)
	}
	return out, nil
}

// buildMember constructs the Member for tok from the image's parsed TableSet. It
// is the single dispatch point resolveRange and Image.Resolve both go
// through, mirroring the exhaustive per-table switch parseTable already
// uses for parsing (tablerows.go) but for minting, not reading, rows.
func buildMember(img *Image, tok Token) (Member, error) {
	ts := img.ts
	rid := tok.RID()
	idx := rid - 1

	switch tok.Table() {
	case TypeRef:
		if rid == 0 || int(idx) >= len(ts.TypeRefs) {
			return nil, ErrTokenOutOfRange
		}
		return &TypeReference{tok: tok, img: img, row: ts.TypeRefs[idx]}, nil
	case TypeDef:
		if rid == 0 || int(idx) >= len(ts.TypeDefs) {
			return nil, ErrTokenOutOfRange
		}
		return &TypeDefinition{tok: tok, img: img, row: ts.TypeDefs[idx]}, nil
	case Field:
		if rid == 0 || int(idx) >= len(ts.Fields) {
			return nil, ErrTokenOutOfRange
		}
		return &FieldDefinition{tok: tok, img: img, row: ts.Fields[idx]}, nil
	case MethodDef:
		if rid == 0 || int(idx) >= len(ts.MethodDefs) {
			return nil, ErrTokenOutOfRange
		}
		return &MethodDefinition{tok: tok, img: img, row: ts.MethodDefs[idx]}, nil
	case Param:
		if rid == 0 || int(idx) >= len(ts.Params) {
			return nil, ErrTokenOutOfRange
		}
		return &ParameterDefinition{tok: tok, img: img, row: ts.Params[idx]}, nil
	case MemberRef:
		if rid == 0 || int(idx) >= len(ts.MemberRefs) {
			return nil, ErrTokenOutOfRange
		}
		return &MemberReference{tok: tok, img: img, row: ts.MemberRefs[idx]}, nil
	case Property:
		if rid == 0 || int(idx) >= len(ts.Properties) {
			return nil, ErrTokenOutOfRange
		}
		return &PropertyDefinition{tok: tok, img: img, row: ts.Properties[idx]}, nil
	case Event:
		if rid == 0 || int(idx) >= len(ts.Events) {
			return nil, ErrTokenOutOfRange
		}
		return &EventDefinition{tok: tok, img: img, row: ts.Events[idx]}, nil
	case AssemblyRef:
		if rid == 0 || int(idx) >= len(ts.AssemblyRefs) {
			return nil, ErrTokenOutOfRange
		}
		return &AssemblyReference{tok: tok, img: img, row: ts.AssemblyRefs[idx]}, nil
	case GenericParam:
		if rid == 0 || int(idx) >= len(ts.GenericParams) {
			return nil, ErrTokenOutOfRange
		}
		return &GenericParameter{tok: tok, img: img, row: ts.GenericParams[idx]}, nil
	case GenericParamConstraint:
		if rid == 0 || int(idx) >= len(ts.GenericParamConstraints) {
			return nil, ErrTokenOutOfRange
		}
		return &GenericParameterConstraint{tok: tok, img: img, row: ts.GenericParamConstraints[idx]}, nil
	default:
		return nil, ErrMemberResolution
	}
}
