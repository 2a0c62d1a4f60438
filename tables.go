package asmresolver

// TablesStreamHeader is the `#~` (or `#-`) stream header, ECMA-335
// §II.24.2.6, generalized from the teacher's PE-offset-reading
// `parseMetadataStream`/`MetadataTableStreamHeader` (dotnet.go) into a
// Reader-cursor read.
type TablesStreamHeader struct {
	Reserved     uint32
	MajorVersion uint8
	MinorVersion uint8
	// HeapSizes bit 0x01 means #Strings indices are 4 bytes, 0x02 means
	// #GUID indices are 4 bytes, 0x04 means #Blob indices are 4 bytes.
	HeapSizes uint8
	// Reserved2 corresponds to the single reserved byte ECMA-335 places
	// between HeapSizes and the Valid mask.
	Reserved2 uint8
	Valid     uint64
	Sorted    uint64
}

const (
	heapSizesStringWide = 0x01
	heapSizesGUIDWide   = 0x02
	heapSizesBlobWide   = 0x04
)

// stringIndexWide, guidIndexWide, blobIndexWide report whether the
// corresponding heap's indexes are 4 bytes wide rather than 2.
func (h TablesStreamHeader) stringIndexWide() bool { return h.HeapSizes&heapSizesStringWide != 0 }
func (h TablesStreamHeader) guidIndexWide() bool   { return h.HeapSizes&heapSizesGUIDWide != 0 }
func (h TablesStreamHeader) blobIndexWide() bool   { return h.HeapSizes&heapSizesBlobWide != 0 }

// hasTable reports whether table i is present, per the Valid bit mask.
func (h TablesStreamHeader) hasTable(i TableIndex) bool {
	if i >= 64 {
		return false
	}
	return h.Valid&(1<<uint(i)) != 0
}

// TableSet is the parsed tables stream: per-table row counts and, once
// parsed, the row slices themselves. Looking up row rid in any of the typed
// row slices below (index rid-1) is a constant-time indexed load, per Design
// Notes §9.
type TableSet struct {
	Header    TablesStreamHeader
	RowCounts [tableCount]uint32

	Modules                 []ModuleRow
	TypeRefs                []TypeRefRow
	TypeDefs                []TypeDefRow
	FieldPtrs               []FieldPtrRow
	Fields                  []FieldRow
	MethodPtrs              []MethodPtrRow
	MethodDefs              []MethodDefRow
	ParamPtrs               []ParamPtrRow
	Params                  []ParamRow
	InterfaceImpls          []InterfaceImplRow
	MemberRefs              []MemberRefRow
	Constants               []ConstantRow
	CustomAttributes        []CustomAttributeRow
	FieldMarshals           []FieldMarshalRow
	DeclSecurities          []DeclSecurityRow
	ClassLayouts            []ClassLayoutRow
	FieldLayouts            []FieldLayoutRow
	StandAloneSigs          []StandAloneSigRow
	EventMaps               []EventMapRow
	EventPtrs               []EventPtrRow
	Events                  []EventRow
	PropertyMaps            []PropertyMapRow
	PropertyPtrs            []PropertyPtrRow
	Properties              []PropertyRow
	MethodSemantics         []MethodSemanticsRow
	MethodImpls             []MethodImplRow
	ModuleRefs              []ModuleRefRow
	TypeSpecs               []TypeSpecRow
	ImplMaps                []ImplMapRow
	FieldRVAs               []FieldRVARow
	ENCLogs                 []ENCLogRow
	ENCMaps                 []ENCMapRow
	Assemblies              []AssemblyRow
	AssemblyProcessors      []AssemblyProcessorRow
	AssemblyOSs             []AssemblyOSRow
	AssemblyRefs            []AssemblyRefRow
	AssemblyRefProcessors   []AssemblyRefProcessorRow
	AssemblyRefOSs          []AssemblyRefOSRow
	Files                   []FileRow
	ExportedTypes           []ExportedTypeRow
	ManifestResources       []ManifestResourceRow
	NestedClasses           []NestedClassRow
	GenericParams           []GenericParamRow
	MethodSpecs             []MethodSpecRow
	GenericParamConstraints []GenericParamConstraintRow
}

// RowCount returns the number of rows in table t (0 if the table is absent).
func (ts *TableSet) RowCount(t TableIndex) uint32 {
	if int(t) >= len(ts.RowCounts) {
		return 0
	}
	return ts.RowCounts[t]
}

// heapIndexSize returns 2 or 4 depending on the HeapSizes bit for kind.
func (ts *TableSet) heapIndexSize(kind heapKind) uint32 {
	switch kind {
	case heapKindString:
		if ts.Header.stringIndexWide() {
			return 4
		}
	case heapKindGUID:
		if ts.Header.guidIndexWide() {
			return 4
		}
	case heapKindBlob:
		if ts.Header.blobIndexWide() {
			return 4
		}
	}
	return 2
}

type heapKind int

const (
	heapKindString heapKind = iota
	heapKindGUID
	heapKindBlob
)

// parseTablesStreamHeader reads the fixed `#~`/`#-` stream header, per
// ECMA-335 §II.24.2.6. The row count array that follows it (one uint32 per
// table set in Valid, in ascending table-index order) is read by
// parseTableSet.
func parseTablesStreamHeader(r *Reader) (TablesStreamHeader, error) {
	var h TablesStreamHeader
	var err error
	if h.Reserved, err = r.ReadU32(); err != nil {
		return h, newImageError("parse tables-stream header", -1, r.Position(), err)
	}
	u8, err := r.ReadU8()
	if err != nil {
		return h, newImageError("parse tables-stream header", -1, r.Position(), err)
	}
	h.MajorVersion = u8
	if u8, err = r.ReadU8(); err != nil {
		return h, newImageError("parse tables-stream header", -1, r.Position(), err)
	}
	h.MinorVersion = u8
	if u8, err = r.ReadU8(); err != nil {
		return h, newImageError("parse tables-stream header", -1, r.Position(), err)
	}
	h.HeapSizes = u8
	if u8, err = r.ReadU8(); err != nil {
		return h, newImageError("parse tables-stream header", -1, r.Position(), err)
	}
	h.Reserved2 = u8
	if h.Valid, err = r.ReadU64(); err != nil {
		return h, newImageError("parse tables-stream header", -1, r.Position(), err)
	}
	if h.Sorted, err = r.ReadU64(); err != nil {
		return h, newImageError("parse tables-stream header", -1, r.Position(), err)
	}
	return h, nil
}

// parseTableSet parses the full `#~` stream: header, row-count array, then
// every present table's rows, in ascending table-index order (the order
// ECMA-335 mandates on disk).
func parseTableSet(data []byte) (*TableSet, error) {
	r := NewReader(data)
	header, err := parseTablesStreamHeader(r)
	if err != nil {
		return nil, err
	}

	ts := &TableSet{Header: header}
	for i := TableIndex(0); i < tableCount; i++ {
		if !header.hasTable(i) {
			continue
		}
		n, err := r.ReadU32()
		if err != nil {
			return nil, newImageError("read row count", int(i), r.Position(), err)
		}
		if n == 0 {
			return nil, newImageError("read row count", int(i), r.Position(), ErrMalformedImage)
		}
		ts.RowCounts[i] = n
	}

	for i := TableIndex(0); i < tableCount; i++ {
		if !header.hasTable(i) {
			continue
		}
		if err := parseTable(ts, r, i); err != nil {
			if err == ErrOutsideBoundary {
				err = ErrMalformedImage // row count overflows the stream
			}
			return nil, newImageError("parse table rows", int(i), r.Position(), err)
		}
	}
	return ts, nil
}
