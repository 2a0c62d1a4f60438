package asmresolver

import (
	"os"
	"sync"

	"github.com/edsrzf/mmap-go"

	aslog "github.com/Kinimiwar/AsmResolver/log"
)

// RVAResolver resolves a relative virtual address to a file offset. It is
// the seam spec.md §1 draws around the PE container: a PE parser plugs in by
// implementing this one method. NewImageFromPE stores it on the Image; the
// package itself never calls it, and the metadata root is always passed in
// as bytes rather than located through it.
type RVAResolver interface {
	ResolveRVA(rva uint32) (offset uint32, err error)
}

// Image is the resolved view over one CLI metadata root: its heaps, its
// parsed tables stream, and the lazily-built indexes (member cache, member
// ranges, nested-class lookup) layered on top of them. It is the package's
// primary entry point and corresponds to spec.md's ModuleDefinition lookup
// surface, minus the facade methods spec.md places out of scope (§1).
type Image struct {
	header MetadataRootHeader
	heaps  Heaps
	ts     *TableSet
	ranges *RangeResolver
	cache  *memberCache

	rva    RVAResolver
	logger *aslog.Helper

	nestedOnce sync.Once
	nested     map[uint32]uint32 // NestedClass rid -> EnclosingClass rid, keyed by NestedClass TypeDef rid

	mm mmap.MMap
}

// Options configures Image construction, mirroring the teacher's own
// Options struct (file.go): a caller-supplied Logger, falling back to a
// filtered stdout logger at LevelError when none is given.
type Options struct {
	Logger aslog.Logger
}

func resolveLogger(opts Options) *aslog.Helper {
	if opts.Logger != nil {
		return aslog.NewHelper(opts.Logger)
	}
	return aslog.NewHelper(aslog.NewFilter(aslog.NewStdLogger(os.Stdout), aslog.FilterLevel(aslog.LevelError)))
}

// MetadataRootHeader is the CLI metadata root, ECMA-335 §II.24.2.1: the
// magic signature, version string, and stream directory that is read before
// any individual stream (#~, #Strings, ...) can be located. Generalized
// from the teacher's MetadataHeader (dotnet.go), which read the same layout
// but eagerly through PE-relative offsets rather than a standalone Reader.
type MetadataRootHeader struct {
	Signature       uint32
	MajorVersion    uint16
	MinorVersion    uint16
	Reserved        uint32
	VersionString   string
	Flags           uint16
	NumberOfStreams uint16
}

const metadataRootSignature = 0x424A5342 // "BSJB"

type streamHeader struct {
	Offset uint32
	Size   uint32
	Name   string
}

// parseMetadataRoot reads the CLI metadata root and its stream directory,
// returning the header and each stream's raw bytes keyed by name.
func parseMetadataRoot(data []byte) (MetadataRootHeader, map[string][]byte, error) {
	r := NewReader(data)
	var h MetadataRootHeader
	var err error

	if h.Signature, err = r.ReadU32(); err != nil {
		return h, nil, newImageError("parse metadata root", -1, r.Position(), err)
	}
	if h.Signature != metadataRootSignature {
		return h, nil, newImageError("parse metadata root", -1, 0, ErrMalformedImage)
	}
	if h.MajorVersion, err = r.ReadU16(); err != nil {
		return h, nil, err
	}
	if h.MinorVersion, err = r.ReadU16(); err != nil {
		return h, nil, err
	}
	if h.Reserved, err = r.ReadU32(); err != nil {
		return h, nil, err
	}
	length, err := r.ReadU32()
	if err != nil {
		return h, nil, err
	}
	versionBytes, err := r.ReadBytes(length)
	if err != nil {
		return h, nil, err
	}
	h.VersionString = cStringTrim(versionBytes)
	// The version string is padded to a 4-byte boundary; length already
	// accounts for the padding per ECMA-335, so no extra alignment read here.

	if h.Flags, err = r.ReadU16(); err != nil {
		return h, nil, err
	}
	if h.NumberOfStreams, err = r.ReadU16(); err != nil {
		return h, nil, err
	}

	streams := make(map[string][]byte, h.NumberOfStreams)
	for i := uint16(0); i < h.NumberOfStreams; i++ {
		var sh streamHeader
		if sh.Offset, err = r.ReadU32(); err != nil {
			return h, nil, err
		}
		if sh.Size, err = r.ReadU32(); err != nil {
			return h, nil, err
		}
		name, err := readAlignedCString(r)
		if err != nil {
			return h, nil, err
		}
		sh.Name = name
		if int(sh.Offset+sh.Size) > len(data) {
			return h, nil, newImageError("read stream "+name, -1, sh.Offset, ErrOutsideBoundary)
		}
		streams[sh.Name] = data[sh.Offset : sh.Offset+sh.Size]
	}
	return h, streams, nil
}

func cStringTrim(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// readAlignedCString reads a NUL-terminated string, then skips the padding
// bytes ECMA-335 requires to bring the reader cursor to a 4-byte boundary
// relative to the directory entry's start.
func readAlignedCString(r *Reader) (string, error) {
	start := r.Position()
	var buf []byte
	for {
		b, err := r.ReadU8()
		if err != nil {
			return "", err
		}
		if b == 0 {
			break
		}
		buf = append(buf, b)
	}
	consumed := r.Position() - start
	pad := (4 - consumed%4) % 4
	if pad > 0 {
		if _, err := r.ReadBytes(pad); err != nil {
			return "", err
		}
	}
	return string(buf), nil
}

// NewImage parses an already-extracted CLI metadata root (the bytes the
// COR20 header's MetaData directory entry points at) into a resolvable
// Image. It takes no RVAResolver: method bodies and other RVA-addressed
// data outside the metadata root are out of scope here (spec.md §1), and
// callers needing them use NewImageFromPE instead.
func NewImage(data []byte, opts ...Options) (*Image, error) {
	return newImage(data, nil, mergeOptions(opts))
}

// NewImageFromPE parses a CLI metadata root the same way NewImage does, but
// additionally retains rva for components that need to dereference RVAs
// outside the metadata root (e.g. a method body given a MethodDef's RVA
// column). rva may be nil.
func NewImageFromPE(data []byte, rva RVAResolver, opts ...Options) (*Image, error) {
	return newImage(data, rva, mergeOptions(opts))
}

func mergeOptions(opts []Options) Options {
	if len(opts) == 0 {
		return Options{}
	}
	return opts[0]
}

func newImage(data []byte, rva RVAResolver, opts Options) (*Image, error) {
	header, streams, err := parseMetadataRoot(data)
	if err != nil {
		return nil, err
	}
	tablesData, ok := streams["#~"]
	if !ok {
		tablesData, ok = streams["#-"]
	}
	if !ok {
		return nil, newImageError("locate tables stream", -1, 0, ErrMalformedImage)
	}
	logger := resolveLogger(opts)
	ts, err := parseTableSet(tablesData)
	if err != nil {
		logger.Errorf("tables stream parsing failed: %v", err)
		return nil, err
	}
	logger.Debugf("parsed metadata root %q with %d streams", header.VersionString, len(streams))
	return &Image{
		header: header,
		heaps:  newHeaps(streams),
		ts:     ts,
		ranges: NewRangeResolver(ts),
		cache:  newMemberCache(),
		rva:    rva,
		logger: logger,
	}, nil
}

// NewImageFromFile mmaps path and parses it as a standalone CLI metadata
// root blob (not a full PE image) — useful for .winmd-style files and test
// fixtures that store the metadata root directly. The returned Image holds
// the mapping open; call Close when done.
func NewImageFromFile(path string, opts ...Options) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, err
	}
	img, err := newImage(m, nil, mergeOptions(opts))
	if err != nil {
		m.Unmap()
		return nil, err
	}
	img.mm = m
	return img, nil
}

// Close releases the memory mapping backing the image, if any. It is a
// no-op for images built over a caller-owned byte slice.
func (img *Image) Close() error {
	if img.mm != nil {
		return img.mm.Unmap()
	}
	return nil
}

// Name returns the module's simple name (ModuleRow.Name via #Strings).
func (img *Image) Name() (string, bool) {
	if len(img.ts.Modules) == 0 {
		return "", false
	}
	return img.heaps.GetString(img.ts.Modules[0].Name)
}

// Mvid returns the module's version identifier GUID.
func (img *Image) Mvid() ([16]byte, bool) {
	if len(img.ts.Modules) == 0 {
		return [16]byte{}, false
	}
	return img.heaps.GetGUID(img.ts.Modules[0].Mvid)
}

// EncID returns the edit-and-continue identifier GUID, if present.
func (img *Image) EncID() ([16]byte, bool) {
	if len(img.ts.Modules) == 0 {
		return [16]byte{}, false
	}
	return img.heaps.GetGUID(img.ts.Modules[0].EncID)
}

// EncBaseID returns the edit-and-continue base identifier GUID, if present.
func (img *Image) EncBaseID() ([16]byte, bool) {
	if len(img.ts.Modules) == 0 {
		return [16]byte{}, false
	}
	return img.heaps.GetGUID(img.ts.Modules[0].EncBaseID)
}

// Resolve returns the Member identified by tok, building and caching it on
// first request (members.go). A nil token (RID 0) is not an error: per
// spec.md §8's concrete scenario, "lookup_member(token(TypeDef, 0)) returns
// not-found" while a RID past the table's row count returns
// ErrTokenOutOfRange — the two cases are distinguishable, not both hard
// errors. Resolve reports the nil case as (nil, nil); callers past it
// (TryLookupMember, LookupMember) must check for a nil Member even when err
// is nil.
func (img *Image) Resolve(tok Token) (Member, error) {
	if tok.IsNil() {
		return nil, nil
	}
	return img.cache.getOrCreate(tok, func() (Member, error) {
		return buildMember(img, tok)
	})
}

// LookupMember resolves tok or panics. It exists for call sites that have
// already validated tok came from this same image (e.g. iterating a
// MetadataRange) and treat an unresolvable token as a programming error
// rather than bad input. A nil token is not a panic: it resolves to a nil
// Member, matching Resolve's not-found contract.
func (img *Image) LookupMember(tok Token) Member {
	m, err := img.Resolve(tok)
	if err != nil {
		panic(err)
	}
	return m
}

// TryLookupMember resolves tok, returning ok=false instead of an error for
// any failure (including a nil token) — the non-panicking counterpart
// callers parsing untrusted data should prefer.
func (img *Image) TryLookupMember(tok Token) (Member, bool) {
	m, err := img.Resolve(tok)
	return m, err == nil && m != nil
}

// LookupString returns the #Strings heap entry at index, panicking if it is
// absent.
func (img *Image) LookupString(index uint32) string {
	s, ok := img.heaps.GetString(index)
	if !ok {
		panic(ErrOutsideBoundary)
	}
	return s
}

// TryLookupString is the non-panicking counterpart of LookupString.
//
// Open Question (spec.md §9) resolved: the teacher's nearest analogue
// (getStringAtOffset in helper.go) returns the zero value and a silently
// inverted ok on heap-exhaustion; here ok is true iff the string was
// actually read, matching Heaps.GetString's own (already correct) contract
// instead of propagating that inversion into the public surface.
func (img *Image) TryLookupString(index uint32) (string, bool) {
	return img.heaps.GetString(index)
}

// IndexEncoder returns kind itself, for callers building new coded-index
// values (e.g. a heap/table builder on the write path) rather than decoding
// existing ones. A CodedIndex carries no row counts: its width comes from
// Width, given a TableSet.
func (img *Image) IndexEncoder(kind CodedIndex) CodedIndex { return kind }

// DecodeTypeSignature decodes one Type from r (signature.go's grammar) with
// this image's TypeSpec table available for expansion: an
// ElementTypeValueType/ElementTypeClass reference naming a TypeSpec is
// recursively expanded against that row's own signature blob, and a
// self-referencing TypeSpec fails with ErrSignatureRecursion (spec.md
// §4.7.1) rather than recursing forever.
func (img *Image) DecodeTypeSignature(r *Reader) (*TypeSignature, error) {
	return DecodeTypeSignatureWithTypeSpecs(r, img.resolveTypeSpecSignature)
}

func (img *Image) resolveTypeSpecSignature(rid uint32) (*Reader, error) {
	if rid == 0 || int(rid) > len(img.ts.TypeSpecs) {
		return nil, ErrTokenOutOfRange
	}
	return img.heaps.NewBlobReader(img.ts.TypeSpecs[rid-1].Signature)
}

// TopLevelTypes returns every TypeDef that is not a nested class, in table
// order. RID 1 (the pseudo "<Module>" type ECMA-335 always places first) is
// included, matching the teacher's table iteration which never special-
// cased it.
func (img *Image) TopLevelTypes() ([]*TypeDefinition, error) {
	var out []*TypeDefinition
	for rid := uint32(1); rid <= uint32(len(img.ts.TypeDefs)); rid++ {
		if _, nested := img.enclosingClass(rid); nested {
			continue
		}
		mem, err := img.Resolve(NewToken(TypeDef, rid))
		if err != nil {
			return nil, err
		}
		out = append(out, mem.(*TypeDefinition))
	}
	return out, nil
}

// AssemblyReferences returns every AssemblyRef row resolved to a member.
func (img *Image) AssemblyReferences() ([]*AssemblyReference, error) {
	out := make([]*AssemblyReference, 0, len(img.ts.AssemblyRefs))
	for rid := uint32(1); rid <= uint32(len(img.ts.AssemblyRefs)); rid++ {
		mem, err := img.Resolve(NewToken(AssemblyRef, rid))
		if err != nil {
			return nil, err
		}
		out = append(out, mem.(*AssemblyReference))
	}
	return out, nil
}

// corelibNames lists the assembly names every supported runtime ships its
// base class library under; CorLibReference uses this to pick the
// AssemblyRef a TypeRef's ResolutionScope most likely names when no single
// canonical mscorlib/System.Private.CoreLib reference exists in an image
// (supplemented feature, not present in spec.md's distillation — see
// SPEC_FULL.md §7).
var corelibNames = map[string]bool{
	"mscorlib":                true,
	"System.Private.CoreLib":  true,
	"System.Runtime":          true,
	"netstandard":             true,
}

// CorLibReference returns the AssemblyRef this image's types most likely
// resolve their base library through, preferring the highest-versioned
// match among corelibNames. If no AssemblyRef matches, spec.md §4.8's
// fallback applies: "...otherwise, if the current module's assembly name is
// in that set, it is the corlib" — the case an image like mscorlib itself
// hits, since it never references itself through an AssemblyRef row. That
// case is reported via a reference synthesized from the image's own
// Assembly row rather than a resolved AssemblyRef.
func (img *Image) CorLibReference() (*AssemblyReference, bool) {
	refs, err := img.AssemblyReferences()
	if err != nil {
		return nil, false
	}
	var best *AssemblyReference
	for _, ref := range refs {
		name, ok := ref.Name()
		if !ok || !corelibNames[name] {
			continue
		}
		if best == nil || versionLess(best.Version(), ref.Version()) {
			best = ref
		}
	}
	if best != nil {
		return best, true
	}

	if len(img.ts.Assemblies) == 0 {
		return nil, false
	}
	self := img.ts.Assemblies[0]
	name, ok := img.heaps.GetString(self.Name)
	if !ok || !corelibNames[name] {
		return nil, false
	}
	return &AssemblyReference{
		tok: NewToken(Assembly, 1),
		img: img,
		row: AssemblyRefRow{
			MajorVersion:     self.MajorVersion,
			MinorVersion:     self.MinorVersion,
			BuildNumber:      self.BuildNumber,
			RevisionNumber:   self.RevisionNumber,
			Flags:            self.Flags,
			PublicKeyOrToken: self.PublicKey,
			Name:             self.Name,
			Culture:          self.Culture,
		},
	}, true
}

func versionLess(a, b [4]uint16) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// enclosingClass returns the TypeDef rid enclosing nestedRID, building the
// NestedClass index on first use.
func (img *Image) enclosingClass(nestedRID uint32) (Token, bool) {
	img.nestedOnce.Do(func() {
		img.nested = make(map[uint32]uint32, len(img.ts.NestedClasses))
		for _, row := range img.ts.NestedClasses {
			img.nested[row.NestedClass] = row.EnclosingClass
		}
	})
	enclosing, ok := img.nested[nestedRID]
	if !ok {
		return 0, false
	}
	return NewToken(TypeDef, enclosing), true
}
