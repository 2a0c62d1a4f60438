package asmresolver

import "testing"

func fixtureTableSet() *TableSet {
	ts := &TableSet{
		TypeDefs: []TypeDefRow{
			{FieldList: 1, MethodList: 1}, // rid 1: <Module>, owns fields [1,1) and methods [1,1) -- empty run
			{FieldList: 1, MethodList: 1}, // rid 2: owns fields [1,3), methods [1,2)
			{FieldList: 3, MethodList: 2}, // rid 3: last owner, owns fields [3,4), methods [2,3)
		},
		Fields:     make([]FieldRow, 3),
		MethodDefs: make([]MethodDefRow, 2),
		PropertyMaps: []PropertyMapRow{
			{Parent: 2, PropertyList: 1}, // rid 1: owned by TypeDef 2, owns properties [1,3)
			{Parent: 3, PropertyList: 3}, // rid 2: owned by TypeDef 3, owns properties [3,4)
		},
		Properties: make([]PropertyRow, 3),
		EventMaps: []EventMapRow{
			{Parent: 3, EventList: 1}, // rid 1: owned by TypeDef 3, owns events [1,2)
		},
		Events: make([]EventRow, 1),
	}
	ts.RowCounts[TypeDef] = uint32(len(ts.TypeDefs))
	ts.RowCounts[Field] = uint32(len(ts.Fields))
	ts.RowCounts[MethodDef] = uint32(len(ts.MethodDefs))
	ts.RowCounts[PropertyMap] = uint32(len(ts.PropertyMaps))
	ts.RowCounts[Property] = uint32(len(ts.Properties))
	ts.RowCounts[EventMap] = uint32(len(ts.EventMaps))
	ts.RowCounts[Event] = uint32(len(ts.Events))
	return ts
}

func TestRangeResolverEmptyRun(t *testing.T) {
	rr := NewRangeResolver(fixtureTableSet())
	rng, ok := rr.MemberRange(TypeDef, 1, Field)
	if !ok {
		t.Fatal("expected ok=true for owner rid 1")
	}
	if rng.Len() != 0 {
		t.Errorf("got len %d, want 0 (empty run)", rng.Len())
	}
}

func TestRangeResolverLastOwnerRunsToRowCount(t *testing.T) {
	rr := NewRangeResolver(fixtureTableSet())
	rng, ok := rr.MemberRange(TypeDef, 3, Field)
	if !ok {
		t.Fatal("expected ok=true for owner rid 3")
	}
	if rng.Start != 3 || rng.End != 4 {
		t.Errorf("got range [%d,%d), want [3,4)", rng.Start, rng.End)
	}
}

func TestRangeResolverMiddleOwner(t *testing.T) {
	rr := NewRangeResolver(fixtureTableSet())
	rng, ok := rr.MemberRange(TypeDef, 2, Field)
	if !ok {
		t.Fatal("expected ok=true for owner rid 2")
	}
	if rng.Start != 1 || rng.End != 3 {
		t.Errorf("got range [%d,%d), want [1,3)", rng.Start, rng.End)
	}
}

func TestRangeResolverOwnerInverse(t *testing.T) {
	rr := NewRangeResolver(fixtureTableSet())
	owner, rid, ok := rr.Owner(Field, 2)
	if !ok {
		t.Fatal("expected ok=true")
	}
	if owner != TypeDef || rid != 2 {
		t.Errorf("got (%v, %d), want (TypeDef, 2)", owner, rid)
	}
}

func TestRangeResolverUnrelatedTablesNotFound(t *testing.T) {
	rr := NewRangeResolver(fixtureTableSet())
	if _, ok := rr.MemberRange(TypeDef, 1, AssemblyRef); ok {
		t.Fatal("expected ok=false: TypeDef does not own a range into AssemblyRef")
	}
}

func TestRangeResolverOutOfBoundsOwner(t *testing.T) {
	rr := NewRangeResolver(fixtureTableSet())
	if _, ok := rr.MemberRange(TypeDef, 99, Field); ok {
		t.Fatal("expected ok=false for out-of-range owner rid")
	}
}

// TestRangeResolverPropertyMapIndirection exercises spec.md §4.5's owner_of
// rule for PropertyMap: the published owner is TypeDef, reached through
// PropertyMapRow.Parent, not PropertyMap's own rid.
func TestRangeResolverPropertyMapIndirection(t *testing.T) {
	rr := NewRangeResolver(fixtureTableSet())

	if _, ok := rr.MemberRange(TypeDef, 1, Property); ok {
		t.Fatal("expected ok=false: TypeDef 1 owns no PropertyMap row")
	}

	rng, ok := rr.MemberRange(TypeDef, 2, Property)
	if !ok {
		t.Fatal("expected ok=true for TypeDef 2 via PropertyMap rid 1")
	}
	if rng.Start != 1 || rng.End != 3 {
		t.Errorf("got range [%d,%d), want [1,3)", rng.Start, rng.End)
	}

	rng, ok = rr.MemberRange(TypeDef, 3, Property)
	if !ok {
		t.Fatal("expected ok=true for TypeDef 3 via PropertyMap rid 2")
	}
	if rng.Start != 3 || rng.End != 4 {
		t.Errorf("got range [%d,%d), want [3,4)", rng.Start, rng.End)
	}

	owner, rid, ok := rr.Owner(Property, 1)
	if !ok || owner != TypeDef || rid != 2 {
		t.Errorf("got (%v, %d, %v), want (TypeDef, 2, true)", owner, rid, ok)
	}
}

// TestRangeResolverEventMapIndirection is the EventMap analogue.
func TestRangeResolverEventMapIndirection(t *testing.T) {
	rr := NewRangeResolver(fixtureTableSet())

	rng, ok := rr.MemberRange(TypeDef, 3, Event)
	if !ok {
		t.Fatal("expected ok=true for TypeDef 3 via EventMap rid 1")
	}
	if rng.Start != 1 || rng.End != 2 {
		t.Errorf("got range [%d,%d), want [1,2)", rng.Start, rng.End)
	}

	owner, rid, ok := rr.Owner(Event, 1)
	if !ok || owner != TypeDef || rid != 3 {
		t.Errorf("got (%v, %d, %v), want (TypeDef, 3, true)", owner, rid, ok)
	}
}
