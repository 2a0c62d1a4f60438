package asmresolver

import "fmt"

// TableIndex identifies one of the 45 ECMA-335 metadata tables. The values
// are the table's position in the tables-stream `Valid` bit mask, carried
// over from the teacher's Metadata Tables constants (dotnet.go) verbatim —
// they are fixed by the ECMA-335 spec, not an implementation choice.
type TableIndex uint8

// Metadata table indices, ECMA-335 §II.22.
const (
	Module TableIndex = iota
	TypeRef
	TypeDef
	FieldPtr
	Field
	MethodPtr
	MethodDef
	ParamPtr
	Param
	InterfaceImpl
	MemberRef
	Constant
	CustomAttribute
	FieldMarshal
	DeclSecurity
	ClassLayout
	FieldLayout
	StandAloneSig
	EventMap
	EventPtr
	Event
	PropertyMap
	PropertyPtr
	Property
	MethodSemantics
	MethodImpl
	ModuleRef
	TypeSpec
	ImplMap
	FieldRVA
	ENCLog
	ENCMap
	Assembly
	AssemblyProcessor
	AssemblyOS
	AssemblyRef
	AssemblyRefProcessor
	AssemblyRefOS
	FileMD
	ExportedType
	ManifestResource
	NestedClass
	GenericParam
	MethodSpec
	GenericParamConstraint

	// tableCount is one past the last defined table index.
	tableCount
)

var tableNames = [tableCount]string{
	Module:                 "Module",
	TypeRef:                "TypeRef",
	TypeDef:                "TypeDef",
	FieldPtr:               "FieldPtr",
	Field:                  "Field",
	MethodPtr:              "MethodPtr",
	MethodDef:              "MethodDef",
	ParamPtr:               "ParamPtr",
	Param:                  "Param",
	InterfaceImpl:          "InterfaceImpl",
	MemberRef:              "MemberRef",
	Constant:               "Constant",
	CustomAttribute:        "CustomAttribute",
	FieldMarshal:           "FieldMarshal",
	DeclSecurity:           "DeclSecurity",
	ClassLayout:            "ClassLayout",
	FieldLayout:            "FieldLayout",
	StandAloneSig:          "StandAloneSig",
	EventMap:               "EventMap",
	EventPtr:               "EventPtr",
	Event:                  "Event",
	PropertyMap:            "PropertyMap",
	PropertyPtr:            "PropertyPtr",
	Property:               "Property",
	MethodSemantics:        "MethodSemantics",
	MethodImpl:             "MethodImpl",
	ModuleRef:              "ModuleRef",
	TypeSpec:               "TypeSpec",
	ImplMap:                "ImplMap",
	FieldRVA:               "FieldRVA",
	ENCLog:                 "ENCLog",
	ENCMap:                 "ENCMap",
	Assembly:               "Assembly",
	AssemblyProcessor:      "AssemblyProcessor",
	AssemblyOS:             "AssemblyOS",
	AssemblyRef:            "AssemblyRef",
	AssemblyRefProcessor:   "AssemblyRefProcessor",
	AssemblyRefOS:          "AssemblyRefOS",
	FileMD:                 "File",
	ExportedType:           "ExportedType",
	ManifestResource:       "ManifestResource",
	NestedClass:            "NestedClass",
	GenericParam:           "GenericParam",
	MethodSpec:             "MethodSpec",
	GenericParamConstraint: "GenericParamConstraint",
}

// String returns the ECMA-335 table name, or a numeric fallback for an
// index outside the defined range.
func (t TableIndex) String() string {
	if int(t) < len(tableNames) && tableNames[t] != "" {
		return tableNames[t]
	}
	return fmt.Sprintf("Table(0x%02x)", uint8(t))
}

// Token is the canonical 32-bit identity of a metadata member: an 8-bit
// table index in the high byte and a 24-bit, 1-based row identifier (RID)
// in the low 24 bits. A RID of 0 denotes a nil token.
type Token uint32

// NewToken builds a token from a table index and a 1-based RID.
func NewToken(table TableIndex, rid uint32) Token {
	return Token(uint32(table)<<24 | (rid & 0x00FFFFFF))
}

// Table returns the token's table index.
func (t Token) Table() TableIndex { return TableIndex(t >> 24) }

// RID returns the token's 1-based row identifier; 0 means nil.
func (t Token) RID() uint32 { return uint32(t) & 0x00FFFFFF }

// IsNil reports whether the token's RID is 0.
func (t Token) IsNil() bool { return t.RID() == 0 }

func (t Token) String() string {
	return fmt.Sprintf("%s[0x%06x]", t.Table(), t.RID())
}

// MetadataRange is a half-open, 1-based run of row identifiers `[Start,
// End)` within a target table, as produced by resolving a list-owning
// table's "first-of-run" column (spec.md §4.3).
type MetadataRange struct {
	Table TableIndex
	Start uint32
	End   uint32
}

// Len returns the number of rows the range spans.
func (r MetadataRange) Len() uint32 {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}

// Contains reports whether rid lies within the range.
func (r MetadataRange) Contains(rid uint32) bool {
	return rid >= r.Start && rid < r.End
}

// Tokens returns every token the range yields, in RID order.
func (r MetadataRange) Tokens() []Token {
	n := r.Len()
	out := make([]Token, 0, n)
	for rid := r.Start; rid < r.End; rid++ {
		out = append(out, NewToken(r.Table, rid))
	}
	return out
}
