// Package mapping maintains the bidirectional index between a map's
// geometric layout elements and the semantic model elements they render.
//
// The two sides evolve independently during construction: a reader builds
// layout fragments as it parses and registers each fragment against the
// model element it renders, re-registering with replace semantics as later
// fragments complete a composite glyph. Writers go the other way, asking
// for the model element behind a layout element they are walking.
//
// Keys on the model side come in two shapes. A simple key names one model
// element. A scoped key pairs an element with its immediate container,
// which is how auxiliary units (a state variable on one specific
// macromolecule, say) stay distinguishable from an equal-valued unit on a
// different parent.
//
// A composite mapping spans several layout elements that jointly render
// one model element - a process box plus its two connector stubs. One of
// them is the anchor: the canonical representative used when the group
// must act as a single visual locus, such as attaching an arc endpoint.
//
// During construction the table holds builder instances; when the owning
// map freezes, [Table.Rebind] swaps every reference for its frozen
// counterpart, reconciling the identities the build step created. The
// table itself is the same structure in both phases.
package mapping

import (
	"errors"
	"fmt"

	"github.com/sbgntools/sbgnmap/pkg/core/model"
)

var (
	// ErrConflict is returned by [Table.Add] when a key is already mapped
	// and replace was not requested. The caller decides whether that is a
	// structural defect in the input or grounds to retry with replace.
	ErrConflict = errors.New("mapping already registered")

	// ErrUnknown is returned by lookups for elements that were never
	// registered. A lookup that would otherwise return nothing is a reader
	// defect, and silent emptiness would corrupt downstream writers, so
	// the miss is surfaced loudly.
	ErrUnknown = errors.New("no mapping registered")

	// ErrEmptyKey is returned by [Table.Add] when no layout element or no
	// model element is supplied.
	ErrEmptyKey = errors.New("empty mapping key")

	// ErrAnchorOutsideSet is returned by [Table.Add] when the designated
	// anchor is not one of the layout elements being registered.
	ErrAnchorOutsideSet = errors.New("anchor not in layout element set")

	// ErrUnresolvedRef is returned by [Table.Rebind] when a registered
	// reference has no counterpart on the frozen side, meaning the reader
	// registered an element it never attached to the tree.
	ErrUnresolvedRef = errors.New("mapping reference not present in built map")
)

// Ref is the least a mapping side needs from an element: a stable id.
// Both frozen records and their builders satisfy it, so the same table
// serves a map under construction and the frozen map it becomes.
type Ref interface {
	ElementID() string
}

// Key identifies a model element on the model side of the table.
// Container is nil for simple keys and set for scoped keys.
type Key struct {
	Element   Ref
	Container Ref
}

// SimpleKey makes a key for a globally identifiable model element.
func SimpleKey(e Ref) Key { return Key{Element: e} }

// ScopedKey makes a key for an auxiliary unit scoped to its container.
func ScopedKey(e, container Ref) Key {
	return Key{Element: e, Container: container}
}

// Scoped reports whether the key carries a container scope.
func (k Key) Scoped() bool { return k.Container != nil }

// equal compares two keys. Frozen model elements compare structurally;
// builder references, which have no structural equality yet, compare by
// id. Mixed comparisons fall back to id as well.
func (k Key) equal(o Key) bool {
	return refEqual(k.Element, o.Element) && refEqual(k.Container, o.Container)
}

func refEqual(a, b Ref) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if ea, ok := a.(model.Element); ok {
		if eb, ok := b.(model.Element); ok {
			return ea.Equal(eb)
		}
	}
	return a.ElementID() == b.ElementID()
}

func (k Key) id() string {
	id := ""
	if k.Element != nil {
		id = k.Element.ElementID()
	}
	if k.Container != nil {
		id += "@" + k.Container.ElementID()
	}
	return id
}

// Table is the layout↔model mapping. It is mutated freely while a map is
// under construction and treated as frozen once the owning map builds.
// Not safe for concurrent mutation.
type Table struct {
	layoutToModel map[Ref]Key
	byModel       map[string][]entry // key id -> entries, for value-equality lookup
	anchors       map[Ref]Key
}

type entry struct {
	key      Key
	elements []Ref
	anchor   Ref
}

// NewTable creates an empty mapping table.
func NewTable() *Table {
	return &Table{
		layoutToModel: make(map[Ref]Key),
		byModel:       make(map[string][]entry),
		anchors:       make(map[Ref]Key),
	}
}

// Add registers that the layout elements in elements jointly render the
// model element named by key. When anchor is non-nil it must be one of
// elements and becomes the group's canonical representative; the model
// side then resolves to the anchor alone. With a nil anchor the model
// side resolves to all of elements.
//
// If a layout element is already registered and replace is false, Add
// fails with [ErrConflict] and the table is left unchanged. With replace
// true the prior association is discarded and superseded. Model keys are
// not conflict-checked: registering further layout elements under an
// existing key accumulates rendering loci for it. Once a key's group is
// anchored, the anchor stays its sole representative; an anchor
// designated later supersedes fragments accumulated earlier.
func (t *Table) Add(key Key, elements []Ref, anchor Ref, replace bool) error {
	if key.Element == nil || len(elements) == 0 {
		return ErrEmptyKey
	}
	if anchor != nil {
		found := false
		for _, le := range elements {
			if le == anchor {
				found = true
				break
			}
		}
		if !found {
			return ErrAnchorOutsideSet
		}
	}

	// Conflicts are a layout-side notion: a layout element renders exactly
	// one model key, while a model key accumulates layout loci (the same
	// compartment drawn at two positions is two registrations). Check up
	// front so a failed Add leaves no partial state.
	if !replace {
		for _, le := range elements {
			if _, exists := t.layoutToModel[le]; exists {
				return fmt.Errorf("%w: layout element %q", ErrConflict, le.ElementID())
			}
		}
	}

	for _, le := range elements {
		if old, exists := t.layoutToModel[le]; exists {
			t.dropFromEntry(old, le)
		}
		t.layoutToModel[le] = key
	}

	resolved := elements
	if anchor != nil {
		resolved = []Ref{anchor}
	}

	id := key.id()
	entries := t.byModel[id]
	merged := false
	for i, e := range entries {
		if !e.key.equal(key) {
			continue
		}
		switch {
		case anchor != nil:
			// A designated anchor becomes the group's sole representative,
			// superseding any fragments accumulated earlier.
			e.anchor = anchor
			e.elements = []Ref{anchor}
		case e.anchor != nil:
			// The group is already anchored; new fragments fold under the
			// existing representative.
		default:
			for _, r := range resolved {
				if !containsRef(e.elements, r) {
					e.elements = append(e.elements, r)
				}
			}
		}
		entries[i] = e
		merged = true
		break
	}
	if !merged {
		t.byModel[id] = append(entries, entry{key: key, elements: resolved, anchor: anchor})
	}
	if anchor != nil {
		t.anchors[anchor] = key
	}
	return nil
}

func containsRef(refs []Ref, r Ref) bool {
	for _, x := range refs {
		if x == r {
			return true
		}
	}
	return false
}

// AddSingle registers a one-to-one mapping between a layout element and a
// model element.
func (t *Table) AddSingle(le Ref, me Ref, replace bool) error {
	return t.Add(SimpleKey(me), []Ref{le}, nil, replace)
}

// GetModel returns the key for the model element(s) that the layout
// element renders. After successful construction this never misses for a
// registered element; a miss is reported as [ErrUnknown].
func (t *Table) GetModel(le Ref) (Key, error) {
	k, ok := t.layoutToModel[le]
	if !ok {
		return Key{}, fmt.Errorf("%w: layout element %q", ErrUnknown, le.ElementID())
	}
	return k, nil
}

// GetLayout returns the layout elements that render the model element
// named by key: the anchor alone for anchored composites, otherwise every
// registered fragment. Lookup accepts any structurally equal key, not
// just the instance originally registered.
func (t *Table) GetLayout(key Key) ([]Ref, error) {
	e, ok := t.lookupEntry(key)
	if !ok {
		return nil, fmt.Errorf("%w: model element %q", ErrUnknown, key.id())
	}
	return append([]Ref(nil), e.elements...), nil
}

// Anchor returns the key a layout element anchors, if any.
func (t *Table) Anchor(le Ref) (Key, bool) {
	k, ok := t.anchors[le]
	return k, ok
}

// Has reports whether the layout element is registered.
func (t *Table) Has(le Ref) bool {
	_, ok := t.layoutToModel[le]
	return ok
}

// Len returns the number of registered layout elements.
func (t *Table) Len() int { return len(t.layoutToModel) }

// lookupEntry finds the entry for a structurally equal key. The id index
// narrows the scan to entries sharing the key's element id.
func (t *Table) lookupEntry(key Key) (entry, bool) {
	for _, e := range t.byModel[key.id()] {
		if e.key.equal(key) {
			return e, true
		}
	}
	return entry{}, false
}

// dropFromEntry removes one layout element from a superseded key's entry,
// deleting the entry when it empties out.
func (t *Table) dropFromEntry(key Key, le Ref) {
	id := key.id()
	entries := t.byModel[id]
	for i, e := range entries {
		if !e.key.equal(key) {
			continue
		}
		for j, el := range e.elements {
			if el == le {
				e.elements = append(e.elements[:j], e.elements[j+1:]...)
				break
			}
		}
		if e.anchor == le {
			e.anchor = nil
			delete(t.anchors, le)
		}
		if len(e.elements) == 0 {
			t.byModel[id] = append(entries[:i], entries[i+1:]...)
			if len(t.byModel[id]) == 0 {
				delete(t.byModel, id)
			}
		} else {
			entries[i] = e
		}
		return
	}
}

// Rebind produces a new table with every reference swapped through the
// two resolvers: layoutFor for the layout side, modelFor for the model
// side. The owning map calls this when freezing (builders → records) and
// again when thawing (records → builders), keyed by element id, which is
// stable across the conversion. A reference the resolver cannot place
// fails with [ErrUnresolvedRef].
func (t *Table) Rebind(layoutFor, modelFor func(id string) (Ref, bool)) (*Table, error) {
	resolve := func(r Ref, fn func(id string) (Ref, bool), side string) (Ref, error) {
		if r == nil {
			return nil, nil
		}
		n, ok := fn(r.ElementID())
		if !ok {
			return nil, fmt.Errorf("%w: %s element %q", ErrUnresolvedRef, side, r.ElementID())
		}
		return n, nil
	}

	out := NewTable()
	for _, entries := range t.byModel {
		for _, e := range entries {
			elem, err := resolve(e.key.Element, modelFor, "model")
			if err != nil {
				return nil, err
			}
			container, err := resolve(e.key.Container, modelFor, "model")
			if err != nil {
				return nil, err
			}
			key := Key{Element: elem, Container: container}

			els := make([]Ref, len(e.elements))
			for i, le := range e.elements {
				if els[i], err = resolve(le, layoutFor, "layout"); err != nil {
					return nil, err
				}
			}
			var anchor Ref
			if e.anchor != nil {
				if anchor, err = resolve(e.anchor, layoutFor, "layout"); err != nil {
					return nil, err
				}
			}
			if err := out.Add(key, els, anchor, false); err != nil {
				return nil, err
			}
		}
	}

	// Layout fragments folded behind an anchor do not appear in the
	// entries' element lists; carry their forward associations over too.
	for le, key := range t.layoutToModel {
		nle, err := resolve(le, layoutFor, "layout")
		if err != nil {
			return nil, err
		}
		if _, ok := out.layoutToModel[nle]; ok {
			continue
		}
		elem, err := resolve(key.Element, modelFor, "model")
		if err != nil {
			return nil, err
		}
		container, err := resolve(key.Container, modelFor, "model")
		if err != nil {
			return nil, err
		}
		out.layoutToModel[nle] = Key{Element: elem, Container: container}
	}
	return out, nil
}
