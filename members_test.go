package asmresolver

import "testing"

func newTestImage(ts *TableSet) *Image {
	return &Image{
		ts:     ts,
		heaps:  Heaps{},
		ranges: NewRangeResolver(ts),
		cache:  newMemberCache(),
	}
}

func TestResolveReturnsSameIdentity(t *testing.T) {
	ts := &TableSet{TypeRefs: []TypeRefRow{{TypeName: 1}}}
	ts.RowCounts[TypeRef] = 1
	img := newTestImage(ts)

	tok := NewToken(TypeRef, 1)
	m1, err := img.Resolve(tok)
	if err != nil {
		t.Fatalf("first Resolve: %v", err)
	}
	m2, err := img.Resolve(tok)
	if err != nil {
		t.Fatalf("second Resolve: %v", err)
	}
	if m1 != m2 {
		t.Fatalf("Resolve returned distinct identities for the same token: %p != %p", m1, m2)
	}
}

// TestResolveNilTokenIsNotFound matches spec.md §8: a nil token (RID 0) is
// not-found, distinct from a RID past the table's row count
// (TestResolveOutOfRangeRID), which is the hard ErrTokenOutOfRange.
func TestResolveNilTokenIsNotFound(t *testing.T) {
	img := newTestImage(&TableSet{})
	m, err := img.Resolve(NewToken(TypeRef, 0))
	if err != nil {
		t.Fatalf("got err %v, want nil", err)
	}
	if m != nil {
		t.Fatalf("got %v, want nil Member", m)
	}
}

func TestResolveOutOfRangeRID(t *testing.T) {
	ts := &TableSet{TypeRefs: []TypeRefRow{{TypeName: 1}}}
	ts.RowCounts[TypeRef] = 1
	img := newTestImage(ts)
	if _, err := img.Resolve(NewToken(TypeRef, 5)); err != ErrTokenOutOfRange {
		t.Fatalf("got err %v, want ErrTokenOutOfRange", err)
	}
}

func TestTryLookupMember(t *testing.T) {
	img := newTestImage(&TableSet{})
	if _, ok := img.TryLookupMember(NewToken(TypeRef, 1)); ok {
		t.Fatal("expected ok=false resolving a nonexistent row")
	}
}

func TestFieldDeclaringType(t *testing.T) {
	ts := &TableSet{
		TypeDefs: []TypeDefRow{{FieldList: 1}},
		Fields:   []FieldRow{{Name: 1}},
	}
	ts.RowCounts[TypeDef] = 1
	ts.RowCounts[Field] = 1
	img := newTestImage(ts)

	mem, err := img.Resolve(NewToken(Field, 1))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	field := mem.(*FieldDefinition)
	owner, err := field.DeclaringType()
	if err != nil {
		t.Fatalf("DeclaringType: %v", err)
	}
	if owner.Token() != NewToken(TypeDef, 1) {
		t.Fatalf("got owner %v, want TypeDef[1]", owner.Token())
	}
}

func TestTypeDefinitionPropertiesAndEvents(t *testing.T) {
	ts := &TableSet{
		TypeDefs: []TypeDefRow{{}, {}},
		PropertyMaps: []PropertyMapRow{
			{Parent: 2, PropertyList: 1},
		},
		Properties: []PropertyRow{{Name: 1}},
		EventMaps: []EventMapRow{
			{Parent: 2, EventList: 1},
		},
		Events: []EventRow{{Name: 1}},
	}
	ts.RowCounts[TypeDef] = 2
	ts.RowCounts[PropertyMap] = 1
	ts.RowCounts[Property] = 1
	ts.RowCounts[EventMap] = 1
	ts.RowCounts[Event] = 1
	img := newTestImage(ts)

	mem, err := img.Resolve(NewToken(TypeDef, 1))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	typeDef := mem.(*TypeDefinition)

	if props, err := typeDef.Properties(); err != nil || len(props) != 0 {
		t.Fatalf("got (%v, %v), want (0 properties, nil err) for TypeDef 1", props, err)
	}
	if events, err := typeDef.Events(); err != nil || len(events) != 0 {
		t.Fatalf("got (%v, %v), want (0 events, nil err) for TypeDef 1", events, err)
	}

	mem, err = img.Resolve(NewToken(TypeDef, 2))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	typeDef = mem.(*TypeDefinition)

	props, err := typeDef.Properties()
	if err != nil || len(props) != 1 {
		t.Fatalf("got (%v, %v), want (1 property, nil err) for TypeDef 2", props, err)
	}
	events, err := typeDef.Events()
	if err != nil || len(events) != 1 {
		t.Fatalf("got (%v, %v), want (1 event, nil err) for TypeDef 2", events, err)
	}
}

func TestNestedClassLookup(t *testing.T) {
	ts := &TableSet{
		TypeDefs: []TypeDefRow{{}, {}},
		NestedClasses: []NestedClassRow{
			{NestedClass: 2, EnclosingClass: 1},
		},
	}
	ts.RowCounts[TypeDef] = 2
	img := newTestImage(ts)

	enclosing, ok := img.enclosingClass(2)
	if !ok {
		t.Fatal("expected nested class 2 to have an enclosing class")
	}
	if enclosing != NewToken(TypeDef, 1) {
		t.Fatalf("got %v, want TypeDef[1]", enclosing)
	}
	if _, ok := img.enclosingClass(1); ok {
		t.Fatal("expected type 1 to not be nested")
	}
}
