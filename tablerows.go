package asmresolver

// Row struct field comments are transcribed from the ECMA-335 6th edition
// spec, following the teacher's own convention in dotnet_metadata_tables.go.
// Heap-index fields (String/GUID/Blob) and coded-index fields hold the raw
// encoded column value; decoding a coded index into a (table, rid) pair is
// the Member Factory's job (members.go), not the row parser's — a Row is
// value-like data, with no identity of its own (spec.md §3).

// ModuleRow is table 0x00.
type ModuleRow struct {
	Generation uint16 // reserved, shall be zero
	Name       uint32 // index into #Strings
	Mvid       uint32 // index into #GUID
	EncID      uint32 // index into #GUID, reserved
	EncBaseID  uint32 // index into #GUID, reserved
}

// TypeRefRow is table 0x01.
type TypeRefRow struct {
	ResolutionScope uint32 // ResolutionScope coded index
	TypeName        uint32 // index into #Strings
	TypeNamespace   uint32 // index into #Strings
}

// TypeDefRow is table 0x02.
type TypeDefRow struct {
	Flags         uint32 // TypeAttributes bitmask
	TypeName      uint32 // index into #Strings
	TypeNamespace uint32 // index into #Strings
	Extends       uint32 // TypeDefOrRef coded index
	FieldList     uint32 // first-of-run index into Field
	MethodList    uint32 // first-of-run index into MethodDef
}

// FieldPtrRow is table 0x03, an edit-and-continue row-reordering indirection
// table ahead of Field: present only in uncompressed (#-) images, never in
// the optimized (#~) images mainstream runtimes emit, but some .NET
// obfuscators and EnC-built assemblies do carry it, so it is parsed rather
// than assumed absent (spec.md §7: no silent defaults for malformed-looking
// but well-formed data).
type FieldPtrRow struct {
	Field uint32 // index into Field
}

// FieldRow is table 0x04.
type FieldRow struct {
	Flags     uint16 // FieldAttributes bitmask
	Name      uint32 // index into #Strings
	Signature uint32 // index into #Blob
}

// MethodPtrRow is table 0x05, the MethodDef analogue of FieldPtrRow.
type MethodPtrRow struct {
	Method uint32 // index into MethodDef
}

// MethodDefRow is table 0x06.
type MethodDefRow struct {
	RVA       uint32
	ImplFlags uint16 // MethodImplAttributes bitmask
	Flags     uint16 // MethodAttributes bitmask
	Name      uint32 // index into #Strings
	Signature uint32 // index into #Blob
	ParamList uint32 // first-of-run index into Param
}

// ParamPtrRow is table 0x07, the Param analogue of FieldPtrRow.
type ParamPtrRow struct {
	Param uint32 // index into Param
}

// ParamRow is table 0x08.
type ParamRow struct {
	Flags    uint16 // ParamAttributes bitmask
	Sequence uint16
	Name     uint32 // index into #Strings
}

// InterfaceImplRow is table 0x09.
type InterfaceImplRow struct {
	Class     uint32 // index into TypeDef
	Interface uint32 // TypeDefOrRef coded index
}

// MemberRefRow is table 0x0a.
type MemberRefRow struct {
	Class     uint32 // MemberRefParent coded index
	Name      uint32 // index into #Strings
	Signature uint32 // index into #Blob
}

// ConstantRow is table 0x0b.
type ConstantRow struct {
	Type    uint8 // ELEMENT_TYPE constant
	Padding uint8
	Parent  uint32 // HasConstant coded index
	Value   uint32 // index into #Blob
}

// CustomAttributeRow is table 0x0c.
type CustomAttributeRow struct {
	Parent uint32 // HasCustomAttribute coded index
	Type   uint32 // CustomAttributeType coded index
	Value  uint32 // index into #Blob
}

// FieldMarshalRow is table 0x0d.
type FieldMarshalRow struct {
	Parent     uint32 // HasFieldMarshal coded index
	NativeType uint32 // index into #Blob
}

// DeclSecurityRow is table 0x0e.
type DeclSecurityRow struct {
	Action        uint16
	Parent        uint32 // HasDeclSecurity coded index
	PermissionSet uint32 // index into #Blob
}

// ClassLayoutRow is table 0x0f.
type ClassLayoutRow struct {
	PackingSize uint16
	ClassSize   uint32
	Parent      uint32 // index into TypeDef
}

// FieldLayoutRow is table 0x10.
type FieldLayoutRow struct {
	Offset uint32
	Field  uint32 // index into Field
}

// StandAloneSigRow is table 0x11.
type StandAloneSigRow struct {
	Signature uint32 // index into #Blob
}

// EventMapRow is table 0x12.
type EventMapRow struct {
	Parent    uint32 // index into TypeDef
	EventList uint32 // first-of-run index into Event
}

// EventPtrRow is table 0x13, the Event analogue of FieldPtrRow.
type EventPtrRow struct {
	Event uint32 // index into Event
}

// EventRow is table 0x14.
type EventRow struct {
	EventFlags uint16 // EventAttributes bitmask
	Name       uint32 // index into #Strings
	EventType  uint32 // TypeDefOrRef coded index
}

// PropertyMapRow is table 0x15.
type PropertyMapRow struct {
	Parent       uint32 // index into TypeDef
	PropertyList uint32 // first-of-run index into Property
}

// PropertyPtrRow is table 0x16, the Property analogue of FieldPtrRow.
type PropertyPtrRow struct {
	Property uint32 // index into Property
}

// PropertyRow is table 0x17.
type PropertyRow struct {
	Flags uint16 // PropertyAttributes bitmask
	Name  uint32 // index into #Strings
	Type  uint32 // index into #Blob
}

// MethodSemanticsRow is table 0x18.
type MethodSemanticsRow struct {
	Semantics   uint16 // MethodSemanticsAttributes bitmask
	Method      uint32 // index into MethodDef
	Association uint32 // HasSemantics coded index
}

// MethodImplRow is table 0x19.
type MethodImplRow struct {
	Class             uint32 // index into TypeDef
	MethodBody        uint32 // MethodDefOrRef coded index
	MethodDeclaration uint32 // MethodDefOrRef coded index
}

// ModuleRefRow is table 0x1a.
type ModuleRefRow struct {
	Name uint32 // index into #Strings
}

// TypeSpecRow is table 0x1b.
type TypeSpecRow struct {
	Signature uint32 // index into #Blob
}

// ImplMapRow is table 0x1c.
type ImplMapRow struct {
	MappingFlags    uint16 // PInvokeAttributes bitmask
	MemberForwarded uint32 // MemberForwarded coded index
	ImportName      uint32 // index into #Strings
	ImportScope     uint32 // index into ModuleRef
}

// FieldRVARow is table 0x1d.
type FieldRVARow struct {
	RVA   uint32
	Field uint32 // index into Field
}

// ENCLogRow is table 0x1e, an edit-and-continue delta log entry. Never
// populated in an optimized (#~) image; carried here so a Valid bit set for
// it does not desynchronize the rest of the stream.
type ENCLogRow struct {
	Token    uint32
	FuncCode uint32
}

// ENCMapRow is table 0x1f, an edit-and-continue token remap entry.
type ENCMapRow struct {
	Token uint32
}

// AssemblyRow is table 0x20.
type AssemblyRow struct {
	HashAlgID      uint32
	MajorVersion   uint16
	MinorVersion   uint16
	BuildNumber    uint16
	RevisionNumber uint16
	Flags          uint32 // AssemblyFlags bitmask
	PublicKey      uint32 // index into #Blob
	Name           uint32 // index into #Strings
	Culture        uint32 // index into #Strings
}

// AssemblyProcessorRow is table 0x21, long obsolete (no mainstream compiler
// or runtime emits it); carried here for the same stream-alignment reason
// as ENCLogRow.
type AssemblyProcessorRow struct {
	Processor uint32
}

// AssemblyOSRow is table 0x22, likewise obsolete.
type AssemblyOSRow struct {
	OSPlatformID   uint32
	OSMajorVersion uint32
	OSMinorVersion uint32
}

// AssemblyRefRow is table 0x23.
type AssemblyRefRow struct {
	MajorVersion     uint16
	MinorVersion     uint16
	BuildNumber      uint16
	RevisionNumber   uint16
	Flags            uint32 // AssemblyFlags bitmask
	PublicKeyOrToken uint32 // index into #Blob
	Name             uint32 // index into #Strings
	Culture          uint32 // index into #Strings
	HashValue        uint32 // index into #Blob
}

// Version returns the four-part assembly version as a comparable tuple.
func (r AssemblyRefRow) Version() [4]uint16 {
	return [4]uint16{r.MajorVersion, r.MinorVersion, r.BuildNumber, r.RevisionNumber}
}

// AssemblyRefProcessorRow is table 0x24, obsolete like AssemblyProcessorRow.
type AssemblyRefProcessorRow struct {
	Processor   uint32
	AssemblyRef uint32 // index into AssemblyRef
}

// AssemblyRefOSRow is table 0x25, obsolete like AssemblyOSRow.
type AssemblyRefOSRow struct {
	OSPlatformID   uint32
	OSMajorVersion uint32
	OSMinorVersion uint32
	AssemblyRef    uint32 // index into AssemblyRef
}

// FileRow is table 0x26.
type FileRow struct {
	Flags     uint32 // FileAttributes bitmask
	Name      uint32 // index into #Strings
	HashValue uint32 // index into #Blob
}

// ExportedTypeRow is table 0x27.
type ExportedTypeRow struct {
	Flags          uint32 // TypeAttributes bitmask
	TypeDefID      uint32 // index into a TypeDef table of another module
	TypeName       uint32 // index into #Strings
	TypeNamespace  uint32 // index into #Strings
	Implementation uint32 // Implementation coded index
}

// ManifestResourceRow is table 0x28.
type ManifestResourceRow struct {
	Offset         uint32
	Flags          uint32 // ManifestResourceAttributes bitmask
	Name           uint32 // index into #Strings
	Implementation uint32 // Implementation coded index
}

// NestedClassRow is table 0x29.
type NestedClassRow struct {
	NestedClass    uint32 // index into TypeDef
	EnclosingClass uint32 // index into TypeDef
}

// GenericParamRow is table 0x2a.
type GenericParamRow struct {
	Number uint16
	Flags  uint16 // GenericParamAttributes bitmask
	Owner  uint32 // TypeOrMethodDef coded index
	Name   uint32 // index into #Strings
}

// MethodSpecRow is table 0x2b.
type MethodSpecRow struct {
	Method        uint32 // MethodDefOrRef coded index
	Instantiation uint32 // index into #Blob
}

// GenericParamConstraintRow is table 0x2c.
type GenericParamConstraintRow struct {
	Owner      uint32 // index into GenericParam
	Constraint uint32 // TypeDefOrRef coded index
}

// parseTable dispatches to the row parser for table i, appending the
// decoded rows to the matching TableSet field and advancing r past them.
// Every table the teacher's dotnet_metadata_tables.go defines a row shape
// for is wired here; the teacher itself only ever reached the Module case
// (parseCLRHeaderDirectory's dispatch switch had no other cases).
func parseTable(ts *TableSet, r *Reader, i TableIndex) error {
	n := int(ts.RowCount(i))
	switch i {
	case Module:
		ts.Modules = make([]ModuleRow, n)
		for idx := range ts.Modules {
			row := &ts.Modules[idx]
			var err error
			if row.Generation, err = r.ReadU16(); err != nil {
				return err
			}
			if row.Name, err = readHeapIndex(r, ts, heapKindString); err != nil {
				return err
			}
			if row.Mvid, err = readHeapIndex(r, ts, heapKindGUID); err != nil {
				return err
			}
			if row.EncID, err = readHeapIndex(r, ts, heapKindGUID); err != nil {
				return err
			}
			if row.EncBaseID, err = readHeapIndex(r, ts, heapKindGUID); err != nil {
				return err
			}
		}
	case TypeRef:
		ts.TypeRefs = make([]TypeRefRow, n)
		for idx := range ts.TypeRefs {
			row := &ts.TypeRefs[idx]
			var err error
			if row.ResolutionScope, err = readIndex(r, ts, ResolutionScope); err != nil {
				return err
			}
			if row.TypeName, err = readHeapIndex(r, ts, heapKindString); err != nil {
				return err
			}
			if row.TypeNamespace, err = readHeapIndex(r, ts, heapKindString); err != nil {
				return err
			}
		}
	case TypeDef:
		ts.TypeDefs = make([]TypeDefRow, n)
		for idx := range ts.TypeDefs {
			row := &ts.TypeDefs[idx]
			var err error
			if row.Flags, err = r.ReadU32(); err != nil {
				return err
			}
			if row.TypeName, err = readHeapIndex(r, ts, heapKindString); err != nil {
				return err
			}
			if row.TypeNamespace, err = readHeapIndex(r, ts, heapKindString); err != nil {
				return err
			}
			if row.Extends, err = readIndex(r, ts, TypeDefOrRef); err != nil {
				return err
			}
			if row.FieldList, err = readIndex(r, ts, simpleIndex(Field)); err != nil {
				return err
			}
			if row.MethodList, err = readIndex(r, ts, simpleIndex(MethodDef)); err != nil {
				return err
			}
		}
	case Field:
		ts.Fields = make([]FieldRow, n)
		for idx := range ts.Fields {
			row := &ts.Fields[idx]
			var err error
			if row.Flags, err = r.ReadU16(); err != nil {
				return err
			}
			if row.Name, err = readHeapIndex(r, ts, heapKindString); err != nil {
				return err
			}
			if row.Signature, err = readHeapIndex(r, ts, heapKindBlob); err != nil {
				return err
			}
		}
	case MethodDef:
		ts.MethodDefs = make([]MethodDefRow, n)
		for idx := range ts.MethodDefs {
			row := &ts.MethodDefs[idx]
			var err error
			if row.RVA, err = r.ReadU32(); err != nil {
				return err
			}
			if row.ImplFlags, err = r.ReadU16(); err != nil {
				return err
			}
			if row.Flags, err = r.ReadU16(); err != nil {
				return err
			}
			if row.Name, err = readHeapIndex(r, ts, heapKindString); err != nil {
				return err
			}
			if row.Signature, err = readHeapIndex(r, ts, heapKindBlob); err != nil {
				return err
			}
			if row.ParamList, err = readIndex(r, ts, simpleIndex(Param)); err != nil {
				return err
			}
		}
	case Param:
		ts.Params = make([]ParamRow, n)
		for idx := range ts.Params {
			row := &ts.Params[idx]
			var err error
			if row.Flags, err = r.ReadU16(); err != nil {
				return err
			}
			if row.Sequence, err = r.ReadU16(); err != nil {
				return err
			}
			if row.Name, err = readHeapIndex(r, ts, heapKindString); err != nil {
				return err
			}
		}
	case InterfaceImpl:
		ts.InterfaceImpls = make([]InterfaceImplRow, n)
		for idx := range ts.InterfaceImpls {
			row := &ts.InterfaceImpls[idx]
			var err error
			if row.Class, err = readIndex(r, ts, simpleIndex(TypeDef)); err != nil {
				return err
			}
			if row.Interface, err = readIndex(r, ts, TypeDefOrRef); err != nil {
				return err
			}
		}
	case MemberRef:
		ts.MemberRefs = make([]MemberRefRow, n)
		for idx := range ts.MemberRefs {
			row := &ts.MemberRefs[idx]
			var err error
			if row.Class, err = readIndex(r, ts, MemberRefParent); err != nil {
				return err
			}
			if row.Name, err = readHeapIndex(r, ts, heapKindString); err != nil {
				return err
			}
			if row.Signature, err = readHeapIndex(r, ts, heapKindBlob); err != nil {
				return err
			}
		}
	case Constant:
		ts.Constants = make([]ConstantRow, n)
		for idx := range ts.Constants {
			row := &ts.Constants[idx]
			var err error
			if row.Type, err = r.ReadU8(); err != nil {
				return err
			}
			if row.Padding, err = r.ReadU8(); err != nil {
				return err
			}
			if row.Parent, err = readIndex(r, ts, HasConstant); err != nil {
				return err
			}
			if row.Value, err = readHeapIndex(r, ts, heapKindBlob); err != nil {
				return err
			}
		}
	case CustomAttribute:
		ts.CustomAttributes = make([]CustomAttributeRow, n)
		for idx := range ts.CustomAttributes {
			row := &ts.CustomAttributes[idx]
			var err error
			if row.Parent, err = readIndex(r, ts, HasCustomAttribute); err != nil {
				return err
			}
			if row.Type, err = readIndex(r, ts, CustomAttributeType); err != nil {
				return err
			}
			if row.Value, err = readHeapIndex(r, ts, heapKindBlob); err != nil {
				return err
			}
		}
	case FieldMarshal:
		ts.FieldMarshals = make([]FieldMarshalRow, n)
		for idx := range ts.FieldMarshals {
			row := &ts.FieldMarshals[idx]
			var err error
			if row.Parent, err = readIndex(r, ts, HasFieldMarshal); err != nil {
				return err
			}
			if row.NativeType, err = readHeapIndex(r, ts, heapKindBlob); err != nil {
				return err
			}
		}
	case DeclSecurity:
		ts.DeclSecurities = make([]DeclSecurityRow, n)
		for idx := range ts.DeclSecurities {
			row := &ts.DeclSecurities[idx]
			var err error
			if row.Action, err = r.ReadU16(); err != nil {
				return err
			}
			if row.Parent, err = readIndex(r, ts, HasDeclSecurity); err != nil {
				return err
			}
			if row.PermissionSet, err = readHeapIndex(r, ts, heapKindBlob); err != nil {
				return err
			}
		}
	case ClassLayout:
		ts.ClassLayouts = make([]ClassLayoutRow, n)
		for idx := range ts.ClassLayouts {
			row := &ts.ClassLayouts[idx]
			var err error
			if row.PackingSize, err = r.ReadU16(); err != nil {
				return err
			}
			if row.ClassSize, err = r.ReadU32(); err != nil {
				return err
			}
			if row.Parent, err = readIndex(r, ts, simpleIndex(TypeDef)); err != nil {
				return err
			}
		}
	case FieldLayout:
		ts.FieldLayouts = make([]FieldLayoutRow, n)
		for idx := range ts.FieldLayouts {
			row := &ts.FieldLayouts[idx]
			var err error
			if row.Offset, err = r.ReadU32(); err != nil {
				return err
			}
			if row.Field, err = readIndex(r, ts, simpleIndex(Field)); err != nil {
				return err
			}
		}
	case StandAloneSig:
		ts.StandAloneSigs = make([]StandAloneSigRow, n)
		for idx := range ts.StandAloneSigs {
			row := &ts.StandAloneSigs[idx]
			var err error
			if row.Signature, err = readHeapIndex(r, ts, heapKindBlob); err != nil {
				return err
			}
		}
	case EventMap:
		ts.EventMaps = make([]EventMapRow, n)
		for idx := range ts.EventMaps {
			row := &ts.EventMaps[idx]
			var err error
			if row.Parent, err = readIndex(r, ts, simpleIndex(TypeDef)); err != nil {
				return err
			}
			if row.EventList, err = readIndex(r, ts, simpleIndex(Event)); err != nil {
				return err
			}
		}
	case Event:
		ts.Events = make([]EventRow, n)
		for idx := range ts.Events {
			row := &ts.Events[idx]
			var err error
			if row.EventFlags, err = r.ReadU16(); err != nil {
				return err
			}
			if row.Name, err = readHeapIndex(r, ts, heapKindString); err != nil {
				return err
			}
			if row.EventType, err = readIndex(r, ts, TypeDefOrRef); err != nil {
				return err
			}
		}
	case PropertyMap:
		ts.PropertyMaps = make([]PropertyMapRow, n)
		for idx := range ts.PropertyMaps {
			row := &ts.PropertyMaps[idx]
			var err error
			if row.Parent, err = readIndex(r, ts, simpleIndex(TypeDef)); err != nil {
				return err
			}
			if row.PropertyList, err = readIndex(r, ts, simpleIndex(Property)); err != nil {
				return err
			}
		}
	case Property:
		ts.Properties = make([]PropertyRow, n)
		for idx := range ts.Properties {
			row := &ts.Properties[idx]
			var err error
			if row.Flags, err = r.ReadU16(); err != nil {
				return err
			}
			if row.Name, err = readHeapIndex(r, ts, heapKindString); err != nil {
				return err
			}
			if row.Type, err = readHeapIndex(r, ts, heapKindBlob); err != nil {
				return err
			}
		}
	case MethodSemantics:
		ts.MethodSemantics = make([]MethodSemanticsRow, n)
		for idx := range ts.MethodSemantics {
			row := &ts.MethodSemantics[idx]
			var err error
			if row.Semantics, err = r.ReadU16(); err != nil {
				return err
			}
			if row.Method, err = readIndex(r, ts, simpleIndex(MethodDef)); err != nil {
				return err
			}
			if row.Association, err = readIndex(r, ts, HasSemantics); err != nil {
				return err
			}
		}
	case MethodImpl:
		ts.MethodImpls = make([]MethodImplRow, n)
		for idx := range ts.MethodImpls {
			row := &ts.MethodImpls[idx]
			var err error
			if row.Class, err = readIndex(r, ts, simpleIndex(TypeDef)); err != nil {
				return err
			}
			if row.MethodBody, err = readIndex(r, ts, MethodDefOrRef); err != nil {
				return err
			}
			if row.MethodDeclaration, err = readIndex(r, ts, MethodDefOrRef); err != nil {
				return err
			}
		}
	case ModuleRef:
		ts.ModuleRefs = make([]ModuleRefRow, n)
		for idx := range ts.ModuleRefs {
			row := &ts.ModuleRefs[idx]
			var err error
			if row.Name, err = readHeapIndex(r, ts, heapKindString); err != nil {
				return err
			}
		}
	case TypeSpec:
		ts.TypeSpecs = make([]TypeSpecRow, n)
		for idx := range ts.TypeSpecs {
			row := &ts.TypeSpecs[idx]
			var err error
			if row.Signature, err = readHeapIndex(r, ts, heapKindBlob); err != nil {
				return err
			}
		}
	case ImplMap:
		ts.ImplMaps = make([]ImplMapRow, n)
		for idx := range ts.ImplMaps {
			row := &ts.ImplMaps[idx]
			var err error
			if row.MappingFlags, err = r.ReadU16(); err != nil {
				return err
			}
			if row.MemberForwarded, err = readIndex(r, ts, MemberForwarded); err != nil {
				return err
			}
			if row.ImportName, err = readHeapIndex(r, ts, heapKindString); err != nil {
				return err
			}
			if row.ImportScope, err = readIndex(r, ts, simpleIndex(ModuleRef)); err != nil {
				return err
			}
		}
	case FieldRVA:
		ts.FieldRVAs = make([]FieldRVARow, n)
		for idx := range ts.FieldRVAs {
			row := &ts.FieldRVAs[idx]
			var err error
			if row.RVA, err = r.ReadU32(); err != nil {
				return err
			}
			if row.Field, err = readIndex(r, ts, simpleIndex(Field)); err != nil {
				return err
			}
		}
	case Assembly:
		ts.Assemblies = make([]AssemblyRow, n)
		for idx := range ts.Assemblies {
			row := &ts.Assemblies[idx]
			var err error
			if row.HashAlgID, err = r.ReadU32(); err != nil {
				return err
			}
			if row.MajorVersion, err = r.ReadU16(); err != nil {
				return err
			}
			if row.MinorVersion, err = r.ReadU16(); err != nil {
				return err
			}
			if row.BuildNumber, err = r.ReadU16(); err != nil {
				return err
			}
			if row.RevisionNumber, err = r.ReadU16(); err != nil {
				return err
			}
			if row.Flags, err = r.ReadU32(); err != nil {
				return err
			}
			if row.PublicKey, err = readHeapIndex(r, ts, heapKindBlob); err != nil {
				return err
			}
			if row.Name, err = readHeapIndex(r, ts, heapKindString); err != nil {
				return err
			}
			if row.Culture, err = readHeapIndex(r, ts, heapKindString); err != nil {
				return err
			}
		}
	case AssemblyRef:
		ts.AssemblyRefs = make([]AssemblyRefRow, n)
		for idx := range ts.AssemblyRefs {
			row := &ts.AssemblyRefs[idx]
			var err error
			if row.MajorVersion, err = r.ReadU16(); err != nil {
				return err
			}
			if row.MinorVersion, err = r.ReadU16(); err != nil {
				return err
			}
			if row.BuildNumber, err = r.ReadU16(); err != nil {
				return err
			}
			if row.RevisionNumber, err = r.ReadU16(); err != nil {
				return err
			}
			if row.Flags, err = r.ReadU32(); err != nil {
				return err
			}
			if row.PublicKeyOrToken, err = readHeapIndex(r, ts, heapKindBlob); err != nil {
				return err
			}
			if row.Name, err = readHeapIndex(r, ts, heapKindString); err != nil {
				return err
			}
			if row.Culture, err = readHeapIndex(r, ts, heapKindString); err != nil {
				return err
			}
			if row.HashValue, err = readHeapIndex(r, ts, heapKindBlob); err != nil {
				return err
			}
		}
	case FileMD:
		ts.Files = make([]FileRow, n)
		for idx := range ts.Files {
			row := &ts.Files[idx]
			var err error
			if row.Flags, err = r.ReadU32(); err != nil {
				return err
			}
			if row.Name, err = readHeapIndex(r, ts, heapKindString); err != nil {
				return err
			}
			if row.HashValue, err = readHeapIndex(r, ts, heapKindBlob); err != nil {
				return err
			}
		}
	case ExportedType:
		ts.ExportedTypes = make([]ExportedTypeRow, n)
		for idx := range ts.ExportedTypes {
			row := &ts.ExportedTypes[idx]
			var err error
			if row.Flags, err = r.ReadU32(); err != nil {
				return err
			}
			if row.TypeDefID, err = r.ReadU32(); err != nil {
				return err
			}
			if row.TypeName, err = readHeapIndex(r, ts, heapKindString); err != nil {
				return err
			}
			if row.TypeNamespace, err = readHeapIndex(r, ts, heapKindString); err != nil {
				return err
			}
			if row.Implementation, err = readIndex(r, ts, Implementation); err != nil {
				return err
			}
		}
	case ManifestResource:
		ts.ManifestResources = make([]ManifestResourceRow, n)
		for idx := range ts.ManifestResources {
			row := &ts.ManifestResources[idx]
			var err error
			if row.Offset, err = r.ReadU32(); err != nil {
				return err
			}
			if row.Flags, err = r.ReadU32(); err != nil {
				return err
			}
			if row.Name, err = readHeapIndex(r, ts, heapKindString); err != nil {
				return err
			}
			if row.Implementation, err = readIndex(r, ts, Implementation); err != nil {
				return err
			}
		}
	case NestedClass:
		ts.NestedClasses = make([]NestedClassRow, n)
		for idx := range ts.NestedClasses {
			row := &ts.NestedClasses[idx]
			var err error
			if row.NestedClass, err = readIndex(r, ts, simpleIndex(TypeDef)); err != nil {
				return err
			}
			if row.EnclosingClass, err = readIndex(r, ts, simpleIndex(TypeDef)); err != nil {
				return err
			}
		}
	case GenericParam:
		ts.GenericParams = make([]GenericParamRow, n)
		for idx := range ts.GenericParams {
			row := &ts.GenericParams[idx]
			var err error
			if row.Number, err = r.ReadU16(); err != nil {
				return err
			}
			if row.Flags, err = r.ReadU16(); err != nil {
				return err
			}
			if row.Owner, err = readIndex(r, ts, TypeOrMethodDef); err != nil {
				return err
			}
			if row.Name, err = readHeapIndex(r, ts, heapKindString); err != nil {
				return err
			}
		}
	case MethodSpec:
		ts.MethodSpecs = make([]MethodSpecRow, n)
		for idx := range ts.MethodSpecs {
			row := &ts.MethodSpecs[idx]
			var err error
			if row.Method, err = readIndex(r, ts, MethodDefOrRef); err != nil {
				return err
			}
			if row.Instantiation, err = readHeapIndex(r, ts, heapKindBlob); err != nil {
				return err
			}
		}
	case GenericParamConstraint:
		ts.GenericParamConstraints = make([]GenericParamConstraintRow, n)
		for idx := range ts.GenericParamConstraints {
			row := &ts.GenericParamConstraints[idx]
			var err error
			if row.Owner, err = readIndex(r, ts, simpleIndex(GenericParam)); err != nil {
				return err
			}
			if row.Constraint, err = readIndex(r, ts, TypeDefOrRef); err != nil {
				return err
			}
		}
	case FieldPtr:
		ts.FieldPtrs = make([]FieldPtrRow, n)
		for idx := range ts.FieldPtrs {
			row := &ts.FieldPtrs[idx]
			var err error
			if row.Field, err = readIndex(r, ts, simpleIndex(Field)); err != nil {
				return err
			}
		}
	case MethodPtr:
		ts.MethodPtrs = make([]MethodPtrRow, n)
		for idx := range ts.MethodPtrs {
			row := &ts.MethodPtrs[idx]
			var err error
			if row.Method, err = readIndex(r, ts, simpleIndex(MethodDef)); err != nil {
				return err
			}
		}
	case ParamPtr:
		ts.ParamPtrs = make([]ParamPtrRow, n)
		for idx := range ts.ParamPtrs {
			row := &ts.ParamPtrs[idx]
			var err error
			if row.Param, err = readIndex(r, ts, simpleIndex(Param)); err != nil {
				return err
			}
		}
	case EventPtr:
		ts.EventPtrs = make([]EventPtrRow, n)
		for idx := range ts.EventPtrs {
			row := &ts.EventPtrs[idx]
			var err error
			if row.Event, err = readIndex(r, ts, simpleIndex(Event)); err != nil {
				return err
			}
		}
	case PropertyPtr:
		ts.PropertyPtrs = make([]PropertyPtrRow, n)
		for idx := range ts.PropertyPtrs {
			row := &ts.PropertyPtrs[idx]
			var err error
			if row.Property, err = readIndex(r, ts, simpleIndex(Property)); err != nil {
				return err
			}
		}
	case ENCLog:
		ts.ENCLogs = make([]ENCLogRow, n)
		for idx := range ts.ENCLogs {
			row := &ts.ENCLogs[idx]
			var err error
			if row.Token, err = r.ReadU32(); err != nil {
				return err
			}
			if row.FuncCode, err = r.ReadU32(); err != nil {
				return err
			}
		}
	case ENCMap:
		ts.ENCMaps = make([]ENCMapRow, n)
		for idx := range ts.ENCMaps {
			row := &ts.ENCMaps[idx]
			var err error
			if row.Token, err = r.ReadU32(); err != nil {
				return err
			}
		}
	case AssemblyProcessor:
		ts.AssemblyProcessors = make([]AssemblyProcessorRow, n)
		for idx := range ts.AssemblyProcessors {
			row := &ts.AssemblyProcessors[idx]
			var err error
			if row.Processor, err = r.ReadU32(); err != nil {
				return err
			}
		}
	case AssemblyOS:
		ts.AssemblyOSs = make([]AssemblyOSRow, n)
		for idx := range ts.AssemblyOSs {
			row := &ts.AssemblyOSs[idx]
			var err error
			if row.OSPlatformID, err = r.ReadU32(); err != nil {
				return err
			}
			if row.OSMajorVersion, err = r.ReadU32(); err != nil {
				return err
			}
			if row.OSMinorVersion, err = r.ReadU32(); err != nil {
				return err
			}
		}
	case AssemblyRefProcessor:
		ts.AssemblyRefProcessors = make([]AssemblyRefProcessorRow, n)
		for idx := range ts.AssemblyRefProcessors {
			row := &ts.AssemblyRefProcessors[idx]
			var err error
			if row.Processor, err = r.ReadU32(); err != nil {
				return err
			}
			if row.AssemblyRef, err = readIndex(r, ts, simpleIndex(AssemblyRef)); err != nil {
				return err
			}
		}
	case AssemblyRefOS:
		ts.AssemblyRefOSs = make([]AssemblyRefOSRow, n)
		for idx := range ts.AssemblyRefOSs {
			row := &ts.AssemblyRefOSs[idx]
			var err error
			if row.OSPlatformID, err = r.ReadU32(); err != nil {
				return err
			}
			if row.OSMajorVersion, err = r.ReadU32(); err != nil {
				return err
			}
			if row.OSMinorVersion, err = r.ReadU32(); err != nil {
				return err
			}
			if row.AssemblyRef, err = readIndex(r, ts, simpleIndex(AssemblyRef)); err != nil {
				return err
			}
		}
	}
	return nil
}
