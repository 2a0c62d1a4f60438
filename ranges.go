package asmresolver

import "sync"

// rangeOwner describes one list-owning column: the association table whose
// rows are walked to compute "first-of-run" boundaries, the target table
// those boundaries point into, and the semantic owner the resulting range is
// published under. For TypeDef/MethodDef/Param, owner == assoc: the
// association table's own rid is the owner (identity, spec.md §4.5). For
// PropertyMap/EventMap, owner is TypeDef and assoc is PropertyMap/EventMap:
// spec.md §4.5 requires owner_of(rid, row) to resolve through row.Parent
// rather than the association row's own rid, since PropertyMap/EventMap rows
// are an indirection table, not the owner themselves.
// Generalized from the teacher's TypeDef.FieldList/MethodList handling
// (dotnet_metadata_tables.go), which only ever resolved those two; spec.md
// §4.3 asks for every owning table ECMA-335 defines one of these columns for.
type rangeOwner struct {
	owner  TableIndex
	assoc  TableIndex
	target TableIndex
	first  func(ts *TableSet, rid uint32) (uint32, bool)
	parent func(ts *TableSet, rid uint32) (uint32, bool) // assoc rid -> owner rid; nil means identity
}

var rangeOwners = []rangeOwner{
	{
		owner:  TypeDef,
		assoc:  TypeDef,
		target: Field,
		first: func(ts *TableSet, rid uint32) (uint32, bool) {
			if rid == 0 || int(rid) > len(ts.TypeDefs) {
				return 0, false
			}
			return ts.TypeDefs[rid-1].FieldList, true
		},
	},
	{
		owner:  TypeDef,
		assoc:  TypeDef,
		target: MethodDef,
		first: func(ts *TableSet, rid uint32) (uint32, bool) {
			if rid == 0 || int(rid) > len(ts.TypeDefs) {
				return 0, false
			}
			return ts.TypeDefs[rid-1].MethodList, true
		},
	},
	{
		owner:  MethodDef,
		assoc:  MethodDef,
		target: Param,
		first: func(ts *TableSet, rid uint32) (uint32, bool) {
			if rid == 0 || int(rid) > len(ts.MethodDefs) {
				return 0, false
			}
			return ts.MethodDefs[rid-1].ParamList, true
		},
	},
	{
		owner:  TypeDef,
		assoc:  EventMap,
		target: Event,
		first: func(ts *TableSet, rid uint32) (uint32, bool) {
			if rid == 0 || int(rid) > len(ts.EventMaps) {
				return 0, false
			}
			return ts.EventMaps[rid-1].EventList, true
		},
		parent: func(ts *TableSet, rid uint32) (uint32, bool) {
			if rid == 0 || int(rid) > len(ts.EventMaps) {
				return 0, false
			}
			return ts.EventMaps[rid-1].Parent, true
		},
	},
	{
		owner:  TypeDef,
		assoc:  PropertyMap,
		target: Property,
		first: func(ts *TableSet, rid uint32) (uint32, bool) {
			if rid == 0 || int(rid) > len(ts.PropertyMaps) {
				return 0, false
			}
			return ts.PropertyMaps[rid-1].PropertyList, true
		},
		parent: func(ts *TableSet, rid uint32) (uint32, bool) {
			if rid == 0 || int(rid) > len(ts.PropertyMaps) {
				return 0, false
			}
			return ts.PropertyMaps[rid-1].Parent, true
		},
	},
}

// rangeKey identifies one (owner table, target table) pair, since TypeDef
// owns two independent ranges (Field and MethodDef).
type rangeKey struct {
	owner  TableIndex
	target TableIndex
}

// RangeResolver lazily computes and caches owner->member MetadataRanges.
// Each (owner table, target table) pair is expanded at most once, the first
// time any row of that pair is asked for; after that, every owner's range is
// known and lookups are O(1) (spec.md §4.3, §Design Notes).
//
// The teacher never built this: parseCLRHeaderDirectory's table-parsing
// switch only reached the Module case, so TypeDef.FieldList/MethodList were
// parsed but never turned into resolved ranges anywhere in dotnet.go.
type RangeResolver struct {
	ts *TableSet

	mu       sync.Mutex
	forward  map[rangeKey][]MetadataRange // indexed by owner rid - 1
	hasOwner map[rangeKey][]bool          // parallel to forward: true iff that owner rid actually has a range published (distinguishes "no owning row" from "owning row with an empty run")
	inverse  map[rangeKey]map[uint32]uint32
	expanded map[rangeKey]bool
}

// NewRangeResolver returns a resolver over ts. It does no work up front.
func NewRangeResolver(ts *TableSet) *RangeResolver {
	return &RangeResolver{
		ts:       ts,
		forward:  make(map[rangeKey][]MetadataRange),
		hasOwner: make(map[rangeKey][]bool),
		inverse:  make(map[rangeKey]map[uint32]uint32),
		expanded: make(map[rangeKey]bool),
	}
}

// expand computes every owner's range for the given rangeOwner definition in
// one pass, per spec.md §4.3: association row i's range runs from its
// first-of-run value to row i+1's (or, for the last row, to the target
// table's row count + 1). The range is then published under ro.parent(i)
// (identity when ro.parent is nil) rather than under i itself, per spec.md
// §4.5's owner_of rule. Must be called with mu held.
func (rr *RangeResolver) expand(ro rangeOwner) {
	key := rangeKey{ro.owner, ro.target}
	if rr.expanded[key] {
		return
	}
	rr.expanded[key] = true

	assocN := rr.ts.RowCount(ro.assoc)
	targetCount := rr.ts.RowCount(ro.target)
	ownerN := rr.ts.RowCount(ro.owner)
	ranges := make([]MetadataRange, ownerN)
	has := make([]bool, ownerN)
	inv := make(map[uint32]uint32, targetCount)

	for rid := uint32(1); rid <= assocN; rid++ {
		start, _ := ro.first(rr.ts, rid)
		end := targetCount + 1
		if rid < assocN {
			if next, ok := ro.first(rr.ts, rid+1); ok {
				end = next
			}
		}
		if end < start {
			end = start
		}

		ownerRID := rid
		if ro.parent != nil {
			p, ok := ro.parent(rr.ts, rid)
			if !ok {
				continue
			}
			ownerRID = p
		}
		if ownerRID == 0 || int(ownerRID) > len(ranges) {
			continue
		}

		ranges[ownerRID-1] = MetadataRange{Table: ro.target, Start: start, End: end}
		has[ownerRID-1] = true
		for m := start; m < end; m++ {
			inv[m] = ownerRID
		}
	}

	rr.forward[key] = ranges
	rr.hasOwner[key] = has
	rr.inverse[key] = inv
}

func findRangeOwner(target, owner TableIndex) (rangeOwner, bool) {
	for _, ro := range rangeOwners {
		if ro.owner == owner && ro.target == target {
			return ro, true
		}
	}
	return rangeOwner{}, false
}

// MemberRange returns the MetadataRange of target-table rows owned by
// (owner, ownerRID). It returns ok=false if owner does not in fact own a
// range into target, or ownerRID is out of bounds.
func (rr *RangeResolver) MemberRange(owner TableIndex, ownerRID uint32, target TableIndex) (MetadataRange, bool) {
	ro, found := findRangeOwner(target, owner)
	if !found {
		return MetadataRange{}, false
	}

	rr.mu.Lock()
	defer rr.mu.Unlock()
	key := rangeKey{owner, target}
	rr.expand(ro)
	ranges := rr.forward[key]
	has := rr.hasOwner[key]
	if ownerRID == 0 || int(ownerRID) > len(ranges) || !has[ownerRID-1] {
		return MetadataRange{}, false
	}
	return ranges[ownerRID-1], true
}

// Owner resolves the inverse direction: the (owner, ownerRID) that owns
// target-table row memberRID, if target is a table some rangeOwner points
// into. Returns ok=false if memberRID is not covered by any owner's range
// (spec.md's empty-run edge case: a valid row rid with no owning parent
// range covering it, not necessarily an error).
func (rr *RangeResolver) Owner(target TableIndex, memberRID uint32) (owner TableIndex, ownerRID uint32, ok bool) {
	for _, ro := range rangeOwners {
		if ro.target != target {
			continue
		}
		rr.mu.Lock()
		key := rangeKey{ro.owner, ro.target}
		rr.expand(ro)
		rid, found := rr.inverse[key][memberRID]
		rr.mu.Unlock()
		if found {
			return ro.owner, rid, true
		}
	}
	return 0, 0, false
}
