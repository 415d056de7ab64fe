// Package sbgn ties the three halves of an SBGN map together: the
// semantic model, the geometric layout, and the mapping table relating
// them. It is the aggregate that readers build, writers walk, and layout
// utilities mutate.
//
// A [Map] is frozen; a [MapBuilder] is the map under construction.
// Readers work bottom-up: create element builders through the factory
// methods, attach children, register mappings as pairs are finalized, and
// Build once at the end. Build freezes both trees and rebinds the mapping
// table from builder identities to frozen identities, so lookups against
// the frozen map resolve to elements of the frozen trees.
package sbgn

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"

	"github.com/sbgntools/sbgnmap/pkg/core/builder"
	"github.com/sbgntools/sbgnmap/pkg/core/layout"
	"github.com/sbgntools/sbgnmap/pkg/core/mapping"
	"github.com/sbgntools/sbgnmap/pkg/core/model"
)

// Flavor names the SBGN language a map is drawn in. The core machinery is
// flavor-agnostic; the flavor travels with the map so wire adapters and
// renderers can dispatch.
type Flavor string

// Supported map flavors, matching SBGN-ML language attribute values.
const (
	FlavorProcessDescription Flavor = "process description"
	FlavorActivityFlow       Flavor = "activity flow"
)

// Map is a frozen SBGN map.
type Map struct {
	Flavor  Flavor
	Model   *model.Model
	Layout  *layout.Layout
	Mapping *mapping.Table
}

// GetMapping returns the model key rendered by the given layout element.
func (m *Map) GetMapping(le layout.Element) (mapping.Key, error) {
	return m.Mapping.GetModel(le)
}

// AsBuilder thaws the map: both trees convert to builder form and the
// mapping table is rebound to the builder identities.
func (m *Map) AsBuilder() (*MapBuilder, error) {
	mb := &MapBuilder{
		Flavor:  m.Flavor,
		Model:   m.Model.AsBuilder(),
		Layout:  m.Layout.AsBuilder(),
		Mapping: mapping.NewTable(),
	}

	layoutByID := make(map[string]mapping.Ref)
	mb.Layout.Walk(func(e layout.ElementBuilder) bool {
		layoutByID[e.ElementID()] = e
		return true
	})
	modelByID := modelBuilderIndex(mb.Model)

	rebound, err := m.Mapping.Rebind(
		func(id string) (mapping.Ref, bool) { r, ok := layoutByID[id]; return r, ok },
		func(id string) (mapping.Ref, bool) { r, ok := modelByID[id]; return r, ok },
	)
	if err != nil {
		return nil, fmt.Errorf("thaw mapping: %w", err)
	}
	mb.Mapping = rebound
	return mb, nil
}

// MapBuilder is a map under construction. The zero value is not usable;
// use [NewMapBuilder].
type MapBuilder struct {
	Flavor  Flavor
	Model   *model.ModelBuilder
	Layout  *layout.LayoutBuilder
	Mapping *mapping.Table
}

// NewMapBuilder creates an empty map builder of the given flavor.
func NewMapBuilder(f Flavor) *MapBuilder {
	return &MapBuilder{
		Flavor:  f,
		Model:   &model.ModelBuilder{},
		Layout:  &layout.LayoutBuilder{},
		Mapping: mapping.NewTable(),
	}
}

// NewModelElement returns a fresh model element builder of the given
// record type, with a generated id. The builder is not yet attached to
// the model; callers attach it via AddElement once populated.
func (b *MapBuilder) NewModelElement(t reflect.Type) (model.ElementBuilder, error) {
	nb, err := builder.New(t)
	if err != nil {
		return nil, err
	}
	eb, ok := nb.(model.ElementBuilder)
	if !ok {
		return nil, fmt.Errorf("%T is not a model element builder", nb)
	}
	if eb.ElementID() == "" {
		eb.SetElementID(uuid.NewString())
	}
	return eb, nil
}

// NewLayoutElement returns a fresh layout element builder of the given
// record type, with a generated id.
func (b *MapBuilder) NewLayoutElement(t reflect.Type) (layout.ElementBuilder, error) {
	nb, err := builder.New(t)
	if err != nil {
		return nil, err
	}
	eb, ok := nb.(layout.ElementBuilder)
	if !ok {
		return nil, fmt.Errorf("%T is not a layout element builder", nb)
	}
	if eb.ElementID() == "" {
		eb.SetElementID(uuid.NewString())
	}
	return eb, nil
}

// AddMapping registers that the layout elements render the model element
// named by key. See [mapping.Table.Add] for anchor and replace semantics.
func (b *MapBuilder) AddMapping(key mapping.Key, elements []mapping.Ref, anchor mapping.Ref, replace bool) error {
	return b.Mapping.Add(key, elements, anchor, replace)
}

// AddMappingSingle registers a one-to-one layout/model pair.
func (b *MapBuilder) AddMappingSingle(le layout.ElementBuilder, me model.ElementBuilder, replace bool) error {
	return b.Mapping.AddSingle(le, me, replace)
}

// GetMapping returns the model key rendered by the given layout builder.
func (b *MapBuilder) GetMapping(le layout.ElementBuilder) (mapping.Key, error) {
	return b.Mapping.GetModel(le)
}

// Build freezes the whole map. Both trees build recursively, then the
// mapping table is rebound from builder identities to the frozen elements
// by id, which is the identity that survives the conversion.
func (b *MapBuilder) Build() (*Map, error) {
	m := &Map{
		Flavor: b.Flavor,
		Model:  b.Model.Build(),
		Layout: b.Layout.Build(),
	}

	layoutByID := make(map[string]mapping.Ref)
	m.Layout.Walk(func(e layout.Element) bool {
		layoutByID[e.ElementID()] = e
		return true
	})
	modelByID := modelIndex(m.Model)

	rebound, err := b.Mapping.Rebind(
		func(id string) (mapping.Ref, bool) { r, ok := layoutByID[id]; return r, ok },
		func(id string) (mapping.Ref, bool) { r, ok := modelByID[id]; return r, ok },
	)
	if err != nil {
		return nil, fmt.Errorf("freeze mapping: %w", err)
	}
	m.Mapping = rebound
	return m, nil
}

// modelIndex indexes every model element, including auxiliary units and
// flux roles nested inside their containers, by id.
func modelIndex(m *model.Model) map[string]mapping.Ref {
	idx := make(map[string]mapping.Ref)
	add := func(r mapping.Ref) {
		if r != nil && r.ElementID() != "" {
			idx[r.ElementID()] = r
		}
	}
	for _, c := range m.Compartments {
		add(c)
		for _, u := range c.Units {
			add(u)
		}
	}
	for _, p := range m.EntityPools {
		add(p)
		for _, s := range p.StateVariables {
			add(s)
		}
		for _, u := range p.Units {
			add(u)
		}
	}
	for _, p := range m.Processes {
		add(p)
		for _, r := range p.Reactants {
			add(r)
		}
		for _, r := range p.Products {
			add(r)
		}
	}
	for _, o := range m.Operators {
		add(o)
	}
	for _, mo := range m.Modulations {
		add(mo)
	}
	for _, a := range m.Activities {
		add(a)
		for _, u := range a.Units {
			add(u)
		}
	}
	for _, i := range m.Influences {
		add(i)
	}
	return idx
}

// modelBuilderIndex is the builder-side counterpart of modelIndex.
func modelBuilderIndex(m *model.ModelBuilder) map[string]mapping.Ref {
	idx := make(map[string]mapping.Ref)
	add := func(r mapping.Ref) {
		if r != nil && r.ElementID() != "" {
			idx[r.ElementID()] = r
		}
	}
	for _, c := range m.Compartments {
		add(c)
		for _, u := range c.Units {
			add(u)
		}
	}
	for _, p := range m.EntityPools {
		add(p)
		for _, s := range p.StateVariables {
			add(s)
		}
		for _, u := range p.Units {
			add(u)
		}
	}
	for _, p := range m.Processes {
		add(p)
		for _, r := range p.Reactants {
			add(r)
		}
		for _, r := range p.Products {
			add(r)
		}
	}
	for _, o := range m.Operators {
		add(o)
	}
	for _, mo := range m.Modulations {
		add(mo)
	}
	for _, a := range m.Activities {
		add(a)
		for _, u := range a.Units {
			add(u)
		}
	}
	for _, i := range m.Influences {
		add(i)
	}
	return idx
}
