package symbols

import (
	"fmt"
	"sort"
	"strings"

	"github.com/funvibe/traitmap/internal/ast"
	"github.com/funvibe/traitmap/internal/decls"
	"github.com/funvibe/traitmap/internal/source"
	"github.com/funvibe/traitmap/internal/typesystem"
)

type ItemKind int

const (
	ItemFunction ItemKind = iota
	ItemConstant
	ItemType
)

func (k ItemKind) String() string {
	switch k {
	case ItemFunction:
		return "method"
	case ItemConstant:
		return "constant"
	case ItemType:
		return "type"
	}
	return "item"
}

// ResolvedItem is a trait item as stored in a trait map. Only TypedItem
// may reach the map; a ParsedItem there is a bug in the caller.
type ResolvedItem interface {
	resolvedItem()
}

// ParsedItem is an impl item that has been parsed but not type checked.
type ParsedItem struct {
	Kind ItemKind
	Name string
	Span source.Span
}

// TypedItem is a type-checked impl item backed by a declaration.
type TypedItem struct {
	Kind ItemKind
	Decl decls.DeclID
}

func (ParsedItem) resolvedItem() {}
func (TypedItem) resolvedItem()  {}

func mustTyped(item ResolvedItem) TypedItem {
	switch it := item.(type) {
	case TypedItem:
		return it
	case ParsedItem:
		panic(fmt.Sprintf("symbols: untyped item %q reached the trait map", it.Name))
	}
	panic(fmt.Sprintf("symbols: unexpected item %T", item))
}

func itemName(de *decls.Engine, item ResolvedItem) string {
	return de.Get(mustTyped(item).Decl).DeclName()
}

func itemSpan(de *decls.Engine, item ResolvedItem) source.Span {
	return de.Get(mustTyped(item).Decl).DeclSpan()
}

func isDummyMethod(de *decls.Engine, item ResolvedItem) bool {
	it := mustTyped(item)
	if it.Kind != ItemFunction {
		return false
	}
	fn, ok := de.Get(it.Decl).(*decls.FunctionDecl)
	return ok && fn.IsTraitMethodDummy
}

// TraitItems maps item names to items.
type TraitItems map[string]ResolvedItem

func (ti TraitItems) clone() TraitItems {
	c := make(TraitItems, len(ti))
	for k, v := range ti {
		c[k] = v
	}
	return c
}

func (ti TraitItems) sortedNames() []string {
	names := make([]string, 0, len(ti))
	for k := range ti {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// TraitName is a trait path together with the type arguments it was
// implemented with. Entries of the same impl share one TraitName.
type TraitName struct {
	Path ast.CallPath
	Args []typesystem.TypeID
}

// Display renders the name as written, e.g. `Dbl<u64>`.
func (n *TraitName) Display(te *typesystem.Engine) string {
	if len(n.Args) == 0 {
		return n.Path.String()
	}
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = te.Display(a)
	}
	return n.Path.String() + "<" + strings.Join(args, ", ") + ">"
}

func (n *TraitName) compare(te *typesystem.Engine, o *TraitName) int {
	if n == o {
		return 0
	}
	if c := n.Path.Compare(o.Path); c != 0 {
		return c
	}
	if len(n.Args) != len(o.Args) {
		return cmpInt(len(n.Args), len(o.Args))
	}
	for i := range n.Args {
		if c := strings.Compare(te.Key(n.Args[i]), te.Key(o.Args[i])); c != 0 {
			return c
		}
	}
	return 0
}

// TraitKey identifies one impl: trait, implementing type and the type's
// own generic slots. Keys order by those three fields; IsImplSelf follows
// from the name, since inherent impls use the bare Self path.
type TraitKey struct {
	Name       *TraitName
	TypeID     typesystem.TypeID
	TypeParams []typesystem.TypeParameter
	// DeclSpan is the span of the trait declaration, if known.
	DeclSpan   *source.Span
	IsImplSelf bool
}

func (k TraitKey) compare(te *typesystem.Engine, o TraitKey) int {
	if c := k.Name.compare(te, o.Name); c != 0 {
		return c
	}
	if k.TypeID != o.TypeID {
		return cmpInt(int(k.TypeID), int(o.TypeID))
	}
	if len(k.TypeParams) != len(o.TypeParams) {
		return cmpInt(len(k.TypeParams), len(o.TypeParams))
	}
	for i := range k.TypeParams {
		if k.TypeParams[i].TypeID != o.TypeParams[i].TypeID {
			return cmpInt(int(k.TypeParams[i].TypeID), int(o.TypeParams[i].TypeID))
		}
	}
	return 0
}

func (k TraitKey) clone() TraitKey {
	k.TypeParams = typesystem.CloneParams(k.TypeParams)
	return k
}

type TraitValue struct {
	Items    TraitItems
	ImplSpan source.Span
}

// TraitEntry is one stored impl.
type TraitEntry struct {
	Key   TraitKey
	Value TraitValue
}

func (e TraitEntry) clone() TraitEntry {
	return TraitEntry{
		Key:   e.Key.clone(),
		Value: TraitValue{Items: e.Value.Items.clone(), ImplSpan: e.Value.ImplSpan},
	}
}

// TraitMap indexes the impls of one scope. Entries are bucketed by the
// root shape of their implementing type and kept sorted by key inside a
// bucket.
type TraitMap struct {
	buckets map[typesystem.TypeRootFilter][]TraitEntry

	// satisfiedCache holds constraint queries that were proven to hold.
	satisfiedCache map[string]struct{}
	// insertSeen holds the types impls were inserted for.
	insertSeen map[typesystem.TypeID]struct{}

	// constraintScans counts scope-chain scans done by constraint checks
	// started from this map's scope.
	constraintScans int
}

func NewTraitMap() *TraitMap {
	return &TraitMap{
		buckets:        make(map[typesystem.TypeRootFilter][]TraitEntry),
		satisfiedCache: make(map[string]struct{}),
		insertSeen:     make(map[typesystem.TypeID]struct{}),
	}
}

// Clone returns a deep copy of the map including its caches.
func (tm *TraitMap) Clone() *TraitMap {
	c := NewTraitMap()
	for f, entries := range tm.buckets {
		cp := make([]TraitEntry, len(entries))
		for i, e := range entries {
			cp[i] = e.clone()
		}
		c.buckets[f] = cp
	}
	for k := range tm.satisfiedCache {
		c.satisfiedCache[k] = struct{}{}
	}
	for k := range tm.insertSeen {
		c.insertSeen[k] = struct{}{}
	}
	c.constraintScans = tm.constraintScans
	return c
}

// Len returns the number of entries in the map.
func (tm *TraitMap) Len() int {
	n := 0
	for _, entries := range tm.buckets {
		n += len(entries)
	}
	return n
}

// Entries returns every entry, bucket by bucket in filter order.
func (tm *TraitMap) Entries() []TraitEntry {
	var out []TraitEntry
	for _, f := range tm.sortedFilters() {
		out = append(out, tm.buckets[f]...)
	}
	return out
}

// ConstraintScans reports how many times a constraint check started in
// this map's scope had to walk the scope chain.
func (tm *TraitMap) ConstraintScans() int { return tm.constraintScans }

// SeenInsert reports whether an impl was inserted for id.
func (tm *TraitMap) SeenInsert(id typesystem.TypeID) bool {
	_, ok := tm.insertSeen[id]
	return ok
}

func (tm *TraitMap) sortedFilters() []typesystem.TypeRootFilter {
	fs := make([]typesystem.TypeRootFilter, 0, len(tm.buckets))
	for f := range tm.buckets {
		fs = append(fs, f)
	}
	sort.Slice(fs, func(i, j int) bool { return fs[i].Less(fs[j]) })
	return fs
}

// getImpls returns the candidate entries for id. Generic impls live in
// the placeholder bucket and are added when withPlaceholder is set.
func (tm *TraitMap) getImpls(te *typesystem.Engine, id typesystem.TypeID, withPlaceholder bool) []TraitEntry {
	f := te.RootFilter(id)
	entries := tm.buckets[f]
	if withPlaceholder && f != typesystem.PlaceholderFilter {
		if ph := tm.buckets[typesystem.PlaceholderFilter]; len(ph) > 0 {
			out := make([]TraitEntry, 0, len(entries)+len(ph))
			out = append(out, entries...)
			return append(out, ph...)
		}
	}
	return entries
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
