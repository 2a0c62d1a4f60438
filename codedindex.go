package asmresolver

// CodedIndex describes one ECMA-335 §II.24.2.6 coded-index category: an
// ordered list of candidate tables and the tag-bit count
// `b = ceil(log2(len(Candidates)))` needed to select among them. A plain,
// uncoded table index (e.g. TypeDef's FieldList column) is the degenerate
// case of a single candidate and zero tag bits.
//
// The candidate lists and tag-bit counts below are lifted verbatim from the
// teacher's `codedidx` table in dotnet_helper.go, except HasCustomAttribute
// and CustomAttributeType, whose candidate lists are rebuilt here in full
// ECMA-335 §II.24.2.6 tag order. The width computation (§4.4 here) changes
// from reading `pe.CLR.MetadataTables[i].CountCols` to reading a TableSet's
// RowCounts.
type CodedIndex struct {
	TagBits    uint8
	Candidates []TableIndex
}

// noTag fills an unused coded-index tag slot (e.g. CustomAttributeType's
// reserved tags 0, 1, 4): Decode reports ErrInvalidCodedIndex for it, and
// its RowCount is always 0 so it never affects Width.
const noTag = TableIndex(0xFF)

var (
	TypeDefOrRef    = CodedIndex{TagBits: 2, Candidates: []TableIndex{TypeDef, TypeRef, TypeSpec}}
	HasConstant     = CodedIndex{TagBits: 2, Candidates: []TableIndex{Field, Param, Property}}
	HasFieldMarshal = CodedIndex{TagBits: 1, Candidates: []TableIndex{Field, Param}}
	HasDeclSecurity = CodedIndex{TagBits: 2, Candidates: []TableIndex{TypeDef, MethodDef, Assembly}}
	MemberRefParent = CodedIndex{TagBits: 3, Candidates: []TableIndex{TypeDef, TypeRef, ModuleRef, MethodDef, TypeSpec}}
	HasSemantics    = CodedIndex{TagBits: 1, Candidates: []TableIndex{Event, Property}}
	MethodDefOrRef  = CodedIndex{TagBits: 1, Candidates: []TableIndex{MethodDef, MemberRef}}
	MemberForwarded = CodedIndex{TagBits: 1, Candidates: []TableIndex{Field, MethodDef}}
	Implementation  = CodedIndex{TagBits: 2, Candidates: []TableIndex{FileMD, AssemblyRef, ExportedType}}
	ResolutionScope = CodedIndex{TagBits: 2, Candidates: []TableIndex{Module, ModuleRef, AssemblyRef, TypeRef}}
	TypeOrMethodDef = CodedIndex{TagBits: 1, Candidates: []TableIndex{TypeDef, MethodDef}}

	// HasCustomAttribute enumerates all 22 tables a CustomAttribute row can
	// attach to, tag order per ECMA-335 §II.24.2.6.
	HasCustomAttribute = CodedIndex{TagBits: 5, Candidates: []TableIndex{
		MethodDef, Field, TypeRef, TypeDef, Param, InterfaceImpl, MemberRef,
		Module, DeclSecurity, Property, Event, StandAloneSig, ModuleRef,
		TypeSpec, Assembly, AssemblyRef, FileMD, ExportedType,
		ManifestResource, GenericParam, GenericParamConstraint, MethodSpec,
	}}

	// CustomAttributeType's tags 0, 1 and 4 are reserved; only 2 (MethodDef)
	// and 3 (MemberRef) are ever emitted by a compiler.
	CustomAttributeType = CodedIndex{TagBits: 3, Candidates: []TableIndex{
		noTag, noTag, MethodDef, MemberRef, noTag,
	}}
)

// simpleIndex builds the degenerate, zero-tag-bit CodedIndex for an
// uncoded reference into a single table.
func simpleIndex(t TableIndex) CodedIndex { return CodedIndex{TagBits: 0, Candidates: []TableIndex{t}} }

// maxRowCount returns the largest row count among the category's candidate
// tables, per ECMA-335's width rule.
func (c CodedIndex) maxRowCount(ts *TableSet) uint32 {
	var max uint32
	for _, t := range c.Candidates {
		if t == noTag {
			continue
		}
		if n := ts.RowCount(t); n > max {
			max = n
		}
	}
	return max
}

// Width returns 2 or 4: a coded index is 2 bytes wide iff
// `maxRowCount << TagBits` still fits in 16 bits (spec.md §4.4).
func (c CodedIndex) Width(ts *TableSet) uint32 {
	limit := uint32(1) << (16 - c.TagBits)
	if c.maxRowCount(ts) >= limit {
		return 4
	}
	return 2
}

// Encode packs (table, rid) into a single coded-index value. It panics if
// table is not one of the category's candidates — this is a programmer
// error (encoding is only ever called with tokens this process produced),
// unlike Decode, which sees untrusted on-disk data and returns an error.
func (c CodedIndex) Encode(table TableIndex, rid uint32) uint32 {
	for tag, cand := range c.Candidates {
		if cand == table {
			return (rid << c.TagBits) | uint32(tag)
		}
	}
	panic("asmresolver: table not a candidate of this coded index")
}

// Decode unpacks a coded-index value into a (table, rid) token. It fails
// with ErrInvalidCodedIndex if the tag selects a candidate slot that does
// not exist.
func (c CodedIndex) Decode(value uint32) (table TableIndex, rid uint32, err error) {
	mask := uint32(1)<<c.TagBits - 1
	tag := value & mask
	if int(tag) >= len(c.Candidates) || c.Candidates[tag] == noTag {
		return 0, 0, ErrInvalidCodedIndex
	}
	return c.Candidates[tag], value >> c.TagBits, nil
}

// readIndex reads a column encoded per idx's width (§4.4), returning the
// raw encoded uint32 value (not yet decoded into a token — callers that
// need the token call idx.Decode on the result).
func readIndex(r *Reader, ts *TableSet, idx CodedIndex) (uint32, error) {
	switch idx.Width(ts) {
	case 2:
		v, err := r.ReadU16()
		return uint32(v), err
	default:
		return r.ReadU32()
	}
}

// readHeapIndex reads a string/GUID/blob heap index column, whose width
// comes from the tables-stream header's HeapSizes bitmask rather than from
// table row counts (spec.md separates this from coded-index width).
func readHeapIndex(r *Reader, ts *TableSet, kind heapKind) (uint32, error) {
	if ts.heapIndexSize(kind) == 2 {
		v, err := r.ReadU16()
		return uint32(v), err
	}
	return r.ReadU32()
}
