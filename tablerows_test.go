package asmresolver

import "testing"

// buildTablesStream assembles a minimal #~ stream containing one Module row
// and one TypeRef row, exercising parseTableSet's header, row-count array,
// and per-table dispatch together.
func buildTablesStream(t *testing.T) []byte {
	t.Helper()
	w := NewWriter()
	w.WriteU32(0)    // Reserved
	w.WriteU8(2)     // MajorVersion
	w.WriteU8(0)     // MinorVersion
	w.WriteU8(0)     // HeapSizes: all heap indexes are 2 bytes
	w.WriteU8(0)     // Reserved2
	valid := uint64(1)<<Module | uint64(1)<<TypeRef
	w.WriteU64(valid)
	w.WriteU64(0) // Sorted

	// Row counts, ascending table index order.
	w.WriteU32(1) // Module
	w.WriteU32(1) // TypeRef

	// Module row.
	w.WriteU16(0) // Generation
	w.WriteU16(7) // Name -> #Strings index 7
	w.WriteU16(1) // Mvid -> #GUID index 1
	w.WriteU16(0) // EncID
	w.WriteU16(0) // EncBaseID

	// TypeRef row: ResolutionScope coded index -> Module rid 1, tag 0.
	w.WriteU16(uint16(ResolutionScope.Encode(Module, 1)))
	w.WriteU16(10) // TypeName -> #Strings index 10
	w.WriteU16(20) // TypeNamespace -> #Strings index 20

	return w.Bytes()
}

func TestParseTableSet(t *testing.T) {
	ts, err := parseTableSet(buildTablesStream(t))
	if err != nil {
		t.Fatalf("parseTableSet: %v", err)
	}
	if len(ts.Modules) != 1 {
		t.Fatalf("got %d Module rows, want 1", len(ts.Modules))
	}
	if ts.Modules[0].Name != 7 || ts.Modules[0].Mvid != 1 {
		t.Errorf("got Module row %+v", ts.Modules[0])
	}
	if len(ts.TypeRefs) != 1 {
		t.Fatalf("got %d TypeRef rows, want 1", len(ts.TypeRefs))
	}
	table, rid, err := ResolutionScope.Decode(ts.TypeRefs[0].ResolutionScope)
	if err != nil {
		t.Fatalf("decode ResolutionScope: %v", err)
	}
	if table != Module || rid != 1 {
		t.Errorf("got ResolutionScope (%v, %d), want (Module, 1)", table, rid)
	}
	if ts.TypeRefs[0].TypeName != 10 || ts.TypeRefs[0].TypeNamespace != 20 {
		t.Errorf("got TypeRef row %+v", ts.TypeRefs[0])
	}
}

func TestParseTableSetAbsentTableStaysEmpty(t *testing.T) {
	ts, err := parseTableSet(buildTablesStream(t))
	if err != nil {
		t.Fatalf("parseTableSet: %v", err)
	}
	if ts.TypeDefs != nil {
		t.Errorf("got %d TypeDef rows, want none parsed (table absent from Valid mask)", len(ts.TypeDefs))
	}
	if ts.RowCount(TypeDef) != 0 {
		t.Errorf("RowCount(TypeDef) = %d, want 0", ts.RowCount(TypeDef))
	}
}

// TestParseTableSetFieldPtrKeepsStreamAligned exercises a table (FieldPtr)
// that mainstream optimized images never populate but that some obfuscated
// or edit-and-continue-built images do. FieldPtr's table index (3) sits
// right before Field's (4): if FieldPtr's rows were silently left unread,
// the Field row that follows would be misread starting at the wrong offset.
func TestParseTableSetFieldPtrKeepsStreamAligned(t *testing.T) {
	w := NewWriter()
	w.WriteU32(0) // Reserved
	w.WriteU8(2)  // MajorVersion
	w.WriteU8(0)  // MinorVersion
	w.WriteU8(0)  // HeapSizes
	w.WriteU8(0)  // Reserved2
	valid := uint64(1)<<FieldPtr | uint64(1)<<Field
	w.WriteU64(valid)
	w.WriteU64(0) // Sorted

	w.WriteU32(2) // FieldPtr row count
	w.WriteU32(1) // Field row count

	// Two FieldPtr rows, each a simple 2-byte index into Field. If FieldPtr's
	// row count above were silently skipped, these four bytes would instead
	// be misread as the start of the Field row that follows.
	w.WriteU16(5)
	w.WriteU16(6)

	// One Field row.
	w.WriteU16(0x0006) // Flags: FieldAttributes.Public
	w.WriteU16(42)     // Name -> #Strings index 42
	w.WriteU16(7)      // Signature -> #Blob index 7

	ts, err := parseTableSet(w.Bytes())
	if err != nil {
		t.Fatalf("parseTableSet: %v", err)
	}
	if len(ts.FieldPtrs) != 2 || ts.FieldPtrs[0].Field != 5 || ts.FieldPtrs[1].Field != 6 {
		t.Fatalf("got FieldPtrs %+v", ts.FieldPtrs)
	}
	if len(ts.Fields) != 1 || ts.Fields[0].Name != 42 || ts.Fields[0].Signature != 7 {
		t.Fatalf("got Fields %+v, stream desynchronized after FieldPtr", ts.Fields)
	}
}
