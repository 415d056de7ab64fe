package model

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/sbgntools/sbgnmap/pkg/core/builder"
)

// ErrUnsupportedElement is returned by AddElement when the given value
// matches none of the target builder's container fields.
var ErrUnsupportedElement = errors.New("unsupported model element type")

// ElementBuilder is the mutable counterpart of [Element]. Fields that hold
// a polymorphic Element in the record hold an ElementBuilder in the
// builder, so the two hierarchies stay parallel through interfaces too.
type ElementBuilder interface {
	builder.Builder
	ElementID() string
	SetElementID(id string)
	BuildElement() Element
}

// BuilderOf wraps a frozen model element in its builder form.
func BuilderOf(e Element) ElementBuilder {
	if e == nil {
		return nil
	}
	b := builder.FromObject(e)
	eb, ok := b.(ElementBuilder)
	if !ok {
		panic(fmt.Sprintf("model: no builder for element type %T", e))
	}
	return eb
}

func buildElems(in []ElementBuilder) []Element {
	if in == nil {
		return nil
	}
	out := make([]Element, len(in))
	for i, b := range in {
		out[i] = b.BuildElement()
	}
	return out
}

// =============================================================================
// Auxiliary units
// =============================================================================

// StateVariableBuilder is the mutable counterpart of [StateVariable].
type StateVariableBuilder struct {
	ID          string
	Variable    string
	Value       string
	Annotations []Annotation
}

// AsBuilder wraps the state variable in builder form.
func (s *StateVariable) AsBuilder() *StateVariableBuilder {
	return &StateVariableBuilder{
		ID:          s.ID,
		Variable:    s.Variable,
		Value:       s.Value,
		Annotations: append([]Annotation(nil), s.Annotations...),
	}
}

// Build freezes the builder.
func (b *StateVariableBuilder) Build() *StateVariable {
	return &StateVariable{
		ID:          b.ID,
		Variable:    b.Variable,
		Value:       b.Value,
		Annotations: append([]Annotation(nil), b.Annotations...),
	}
}

func (b *StateVariableBuilder) BuildObject() any         { return b.Build() }
func (b *StateVariableBuilder) BuildElement() Element    { return b.Build() }
func (b *StateVariableBuilder) RecordType() reflect.Type { return reflect.TypeOf((*StateVariable)(nil)) }
func (b *StateVariableBuilder) ElementID() string        { return b.ID }
func (b *StateVariableBuilder) SetElementID(id string)   { b.ID = id }

// UnitOfInformationBuilder is the mutable counterpart of [UnitOfInformation].
type UnitOfInformationBuilder struct {
	ID          string
	Prefix      string
	Value       string
	Annotations []Annotation
}

// AsBuilder wraps the unit in builder form.
func (u *UnitOfInformation) AsBuilder() *UnitOfInformationBuilder {
	return &UnitOfInformationBuilder{
		ID:          u.ID,
		Prefix:      u.Prefix,
		Value:       u.Value,
		Annotations: append([]Annotation(nil), u.Annotations...),
	}
}

// Build freezes the builder.
func (b *UnitOfInformationBuilder) Build() *UnitOfInformation {
	return &UnitOfInformation{
		ID:          b.ID,
		Prefix:      b.Prefix,
		Value:       b.Value,
		Annotations: append([]Annotation(nil), b.Annotations...),
	}
}

func (b *UnitOfInformationBuilder) BuildObject() any      { return b.Build() }
func (b *UnitOfInformationBuilder) BuildElement() Element { return b.Build() }
func (b *UnitOfInformationBuilder) RecordType() reflect.Type {
	return reflect.TypeOf((*UnitOfInformation)(nil))
}
func (b *UnitOfInformationBuilder) ElementID() string      { return b.ID }
func (b *UnitOfInformationBuilder) SetElementID(id string) { b.ID = id }

// =============================================================================
// Compartment
// =============================================================================

// CompartmentBuilder is the mutable counterpart of [Compartment].
type CompartmentBuilder struct {
	ID          string
	Label       string
	Units       []*UnitOfInformationBuilder
	Annotations []Annotation
}

// AsBuilder wraps the compartment in builder form.
func (c *Compartment) AsBuilder() *CompartmentBuilder {
	return &CompartmentBuilder{
		ID:          c.ID,
		Label:       c.Label,
		Units:       builder.FromSlice(c.Units, (*UnitOfInformation).AsBuilder),
		Annotations: append([]Annotation(nil), c.Annotations...),
	}
}

// Build freezes the builder.
func (b *CompartmentBuilder) Build() *Compartment {
	return &Compartment{
		ID:          b.ID,
		Label:       b.Label,
		Units:       builder.BuildSlice[*UnitOfInformation](b.Units),
		Annotations: append([]Annotation(nil), b.Annotations...),
	}
}

func (b *CompartmentBuilder) BuildObject() any         { return b.Build() }
func (b *CompartmentBuilder) BuildElement() Element    { return b.Build() }
func (b *CompartmentBuilder) RecordType() reflect.Type { return reflect.TypeOf((*Compartment)(nil)) }
func (b *CompartmentBuilder) ElementID() string        { return b.ID }
func (b *CompartmentBuilder) SetElementID(id string)   { b.ID = id }

// AddElement attaches an auxiliary unit builder to the compartment.
func (b *CompartmentBuilder) AddElement(x any) error {
	if v, ok := x.(*UnitOfInformationBuilder); ok {
		b.Units = append(b.Units, v)
		return nil
	}
	return fmt.Errorf("%w: %T on CompartmentBuilder", ErrUnsupportedElement, x)
}

// =============================================================================
// EntityPool
// =============================================================================

// EntityPoolBuilder is the mutable counterpart of [EntityPool].
type EntityPoolBuilder struct {
	ID             string
	Kind           EntityKind
	Label          string
	Compartment    *CompartmentBuilder
	StateVariables []*StateVariableBuilder
	Units          []*UnitOfInformationBuilder
	Annotations    []Annotation
}

// AsBuilder wraps the pool in builder form, recursively wrapping its
// compartment and auxiliary units.
func (p *EntityPool) AsBuilder() *EntityPoolBuilder {
	b := &EntityPoolBuilder{
		ID:             p.ID,
		Kind:           p.Kind,
		Label:          p.Label,
		StateVariables: builder.FromSlice(p.StateVariables, (*StateVariable).AsBuilder),
		Units:          builder.FromSlice(p.Units, (*UnitOfInformation).AsBuilder),
		Annotations:    append([]Annotation(nil), p.Annotations...),
	}
	if p.Compartment != nil {
		b.Compartment = p.Compartment.AsBuilder()
	}
	return b
}

// Build freezes the builder.
func (b *EntityPoolBuilder) Build() *EntityPool {
	p := &EntityPool{
		ID:             b.ID,
		Kind:           b.Kind,
		Label:          b.Label,
		StateVariables: builder.BuildSlice[*StateVariable](b.StateVariables),
		Units:          builder.BuildSlice[*UnitOfInformation](b.Units),
		Annotations:    append([]Annotation(nil), b.Annotations...),
	}
	if b.Compartment != nil {
		p.Compartment = b.Compartment.Build()
	}
	return p
}

func (b *EntityPoolBuilder) BuildObject() any         { return b.Build() }
func (b *EntityPoolBuilder) BuildElement() Element    { return b.Build() }
func (b *EntityPoolBuilder) RecordType() reflect.Type { return reflect.TypeOf((*EntityPool)(nil)) }
func (b *EntityPoolBuilder) ElementID() string        { return b.ID }
func (b *EntityPoolBuilder) SetElementID(id string)   { b.ID = id }

// AddElement attaches an auxiliary unit builder to the first container
// field whose element type matches.
func (b *EntityPoolBuilder) AddElement(x any) error {
	switch v := x.(type) {
	case *StateVariableBuilder:
		b.StateVariables = append(b.StateVariables, v)
		return nil
	case *UnitOfInformationBuilder:
		b.Units = append(b.Units, v)
		return nil
	default:
		return fmt.Errorf("%w: %T on EntityPoolBuilder", ErrUnsupportedElement, x)
	}
}

// =============================================================================
// FluxRole and Process
// =============================================================================

// FluxRoleBuilder is the mutable counterpart of [FluxRole].
type FluxRoleBuilder struct {
	ID            string
	Role          RoleKind
	Element       *EntityPoolBuilder
	Stoichiometry int
}

// AsBuilder wraps the role in builder form.
func (r *FluxRole) AsBuilder() *FluxRoleBuilder {
	b := &FluxRoleBuilder{ID: r.ID, Role: r.Role, Stoichiometry: r.Stoichiometry}
	if r.Element != nil {
		b.Element = r.Element.AsBuilder()
	}
	return b
}

// Build freezes the builder.
func (b *FluxRoleBuilder) Build() *FluxRole {
	r := &FluxRole{ID: b.ID, Role: b.Role, Stoichiometry: b.Stoichiometry}
	if b.Element != nil {
		r.Element = b.Element.Build()
	}
	return r
}

func (b *FluxRoleBuilder) BuildObject() any         { return b.Build() }
func (b *FluxRoleBuilder) BuildElement() Element    { return b.Build() }
func (b *FluxRoleBuilder) RecordType() reflect.Type { return reflect.TypeOf((*FluxRole)(nil)) }
func (b *FluxRoleBuilder) ElementID() string        { return b.ID }
func (b *FluxRoleBuilder) SetElementID(id string)   { b.ID = id }

// ProcessBuilder is the mutable counterpart of [Process].
type ProcessBuilder struct {
	ID          string
	Kind        ProcessKind
	Label       string
	Reversible  bool
	Reactants   []*FluxRoleBuilder
	Products    []*FluxRoleBuilder
	Annotations []Annotation
}

// AsBuilder wraps the process in builder form.
func (p *Process) AsBuilder() *ProcessBuilder {
	return &ProcessBuilder{
		ID:          p.ID,
		Kind:        p.Kind,
		Label:       p.Label,
		Reversible:  p.Reversible,
		Reactants:   builder.FromSlice(p.Reactants, (*FluxRole).AsBuilder),
		Products:    builder.FromSlice(p.Products, (*FluxRole).AsBuilder),
		Annotations: append([]Annotation(nil), p.Annotations...),
	}
}

// Build freezes the builder.
func (b *ProcessBuilder) Build() *Process {
	return &Process{
		ID:          b.ID,
		Kind:        b.Kind,
		Label:       b.Label,
		Reversible:  b.Reversible,
		Reactants:   builder.BuildSlice[*FluxRole](b.Reactants),
		Products:    builder.BuildSlice[*FluxRole](b.Products),
		Annotations: append([]Annotation(nil), b.Annotations...),
	}
}

func (b *ProcessBuilder) BuildObject() any         { return b.Build() }
func (b *ProcessBuilder) BuildElement() Element    { return b.Build() }
func (b *ProcessBuilder) RecordType() reflect.Type { return reflect.TypeOf((*Process)(nil)) }
func (b *ProcessBuilder) ElementID() string        { return b.ID }
func (b *ProcessBuilder) SetElementID(id string)   { b.ID = id }

// AddElement attaches a flux role builder, dispatching to Reactants or
// Products on the role's kind.
func (b *ProcessBuilder) AddElement(x any) error {
	v, ok := x.(*FluxRoleBuilder)
	if !ok {
		return fmt.Errorf("%w: %T on ProcessBuilder", ErrUnsupportedElement, x)
	}
	if v.Role == RoleProduct {
		b.Products = append(b.Products, v)
	} else {
		b.Reactants = append(b.Reactants, v)
	}
	return nil
}

// =============================================================================
// LogicalOperator and Modulation
// =============================================================================

// LogicalOperatorBuilder is the mutable counterpart of [LogicalOperator].
type LogicalOperatorBuilder struct {
	ID     string
	Kind   OperatorKind
	Inputs []ElementBuilder
}

// AsBuilder wraps the operator in builder form.
func (l *LogicalOperator) AsBuilder() *LogicalOperatorBuilder {
	return &LogicalOperatorBuilder{
		ID:     l.ID,
		Kind:   l.Kind,
		Inputs: builder.FromSlice(l.Inputs, BuilderOf),
	}
}

// Build freezes the builder.
func (b *LogicalOperatorBuilder) Build() *LogicalOperator {
	return &LogicalOperator{ID: b.ID, Kind: b.Kind, Inputs: buildElems(b.Inputs)}
}

func (b *LogicalOperatorBuilder) BuildObject() any      { return b.Build() }
func (b *LogicalOperatorBuilder) BuildElement() Element { return b.Build() }
func (b *LogicalOperatorBuilder) RecordType() reflect.Type {
	return reflect.TypeOf((*LogicalOperator)(nil))
}
func (b *LogicalOperatorBuilder) ElementID() string      { return b.ID }
func (b *LogicalOperatorBuilder) SetElementID(id string) { b.ID = id }

// AddElement attaches an input builder.
func (b *LogicalOperatorBuilder) AddElement(x any) error {
	if v, ok := x.(ElementBuilder); ok {
		b.Inputs = append(b.Inputs, v)
		return nil
	}
	return fmt.Errorf("%w: %T on LogicalOperatorBuilder", ErrUnsupportedElement, x)
}

// ModulationBuilder is the mutable counterpart of [Modulation].
type ModulationBuilder struct {
	ID          string
	Kind        ModulationKind
	Source      ElementBuilder
	Target      *ProcessBuilder
	Annotations []Annotation
}

// AsBuilder wraps the modulation in builder form.
func (m *Modulation) AsBuilder() *ModulationBuilder {
	b := &ModulationBuilder{
		ID:          m.ID,
		Kind:        m.Kind,
		Source:      BuilderOf(m.Source),
		Annotations: append([]Annotation(nil), m.Annotations...),
	}
	if m.Target != nil {
		b.Target = m.Target.AsBuilder()
	}
	return b
}

// Build freezes the builder.
func (b *ModulationBuilder) Build() *Modulation {
	m := &Modulation{
		ID:          b.ID,
		Kind:        b.Kind,
		Annotations: append([]Annotation(nil), b.Annotations...),
	}
	if b.Source != nil {
		m.Source = b.Source.BuildElement()
	}
	if b.Target != nil {
		m.Target = b.Target.Build()
	}
	return m
}

func (b *ModulationBuilder) BuildObject() any         { return b.Build() }
func (b *ModulationBuilder) BuildElement() Element    { return b.Build() }
func (b *ModulationBuilder) RecordType() reflect.Type { return reflect.TypeOf((*Modulation)(nil)) }
func (b *ModulationBuilder) ElementID() string        { return b.ID }
func (b *ModulationBuilder) SetElementID(id string)   { b.ID = id }

// =============================================================================
// Activity flow
// =============================================================================

// ActivityBuilder is the mutable counterpart of [Activity].
type ActivityBuilder struct {
	ID          string
	Kind        ActivityKind
	Label       string
	Compartment *CompartmentBuilder
	Units       []*UnitOfInformationBuilder
	Annotations []Annotation
}

// AsBuilder wraps the activity in builder form.
func (a *Activity) AsBuilder() *ActivityBuilder {
	b := &ActivityBuilder{
		ID:          a.ID,
		Kind:        a.Kind,
		Label:       a.Label,
		Units:       builder.FromSlice(a.Units, (*UnitOfInformation).AsBuilder),
		Annotations: append([]Annotation(nil), a.Annotations...),
	}
	if a.Compartment != nil {
		b.Compartment = a.Compartment.AsBuilder()
	}
	return b
}

// Build freezes the builder.
func (b *ActivityBuilder) Build() *Activity {
	a := &Activity{
		ID:          b.ID,
		Kind:        b.Kind,
		Label:       b.Label,
		Units:       builder.BuildSlice[*UnitOfInformation](b.Units),
		Annotations: append([]Annotation(nil), b.Annotations...),
	}
	if b.Compartment != nil {
		a.Compartment = b.Compartment.Build()
	}
	return a
}

func (b *ActivityBuilder) BuildObject() any         { return b.Build() }
func (b *ActivityBuilder) BuildElement() Element    { return b.Build() }
func (b *ActivityBuilder) RecordType() reflect.Type { return reflect.TypeOf((*Activity)(nil)) }
func (b *ActivityBuilder) ElementID() string        { return b.ID }
func (b *ActivityBuilder) SetElementID(id string)   { b.ID = id }

// AddElement attaches an auxiliary unit builder.
func (b *ActivityBuilder) AddElement(x any) error {
	if v, ok := x.(*UnitOfInformationBuilder); ok {
		b.Units = append(b.Units, v)
		return nil
	}
	return fmt.Errorf("%w: %T on ActivityBuilder", ErrUnsupportedElement, x)
}

// InfluenceBuilder is the mutable counterpart of [Influence].
type InfluenceBuilder struct {
	ID          string
	Kind        InfluenceKind
	Source      ElementBuilder
	Target      ElementBuilder
	Annotations []Annotation
}

// AsBuilder wraps the influence in builder form.
func (i *Influence) AsBuilder() *InfluenceBuilder {
	return &InfluenceBuilder{
		ID:          i.ID,
		Kind:        i.Kind,
		Source:      BuilderOf(i.Source),
		Target:      BuilderOf(i.Target),
		Annotations: append([]Annotation(nil), i.Annotations...),
	}
}

// Build freezes the builder.
func (b *InfluenceBuilder) Build() *Influence {
	i := &Influence{
		ID:          b.ID,
		Kind:        b.Kind,
		Annotations: append([]Annotation(nil), b.Annotations...),
	}
	if b.Source != nil {
		i.Source = b.Source.BuildElement()
	}
	if b.Target != nil {
		i.Target = b.Target.BuildElement()
	}
	return i
}

func (b *InfluenceBuilder) BuildObject() any         { return b.Build() }
func (b *InfluenceBuilder) BuildElement() Element    { return b.Build() }
func (b *InfluenceBuilder) RecordType() reflect.Type { return reflect.TypeOf((*Influence)(nil)) }
func (b *InfluenceBuilder) ElementID() string        { return b.ID }
func (b *InfluenceBuilder) SetElementID(id string)   { b.ID = id }

// =============================================================================
// ModelBuilder
// =============================================================================

// ModelBuilder is the mutable counterpart of [Model].
type ModelBuilder struct {
	Compartments []*CompartmentBuilder
	EntityPools  []*EntityPoolBuilder
	Processes    []*ProcessBuilder
	Operators    []*LogicalOperatorBuilder
	Modulations  []*ModulationBuilder
	Activities   []*ActivityBuilder
	Influences   []*InfluenceBuilder
}

// AsBuilder wraps the model in builder form.
func (m *Model) AsBuilder() *ModelBuilder {
	return &ModelBuilder{
		Compartments: builder.FromSlice(m.Compartments, (*Compartment).AsBuilder),
		EntityPools:  builder.FromSlice(m.EntityPools, (*EntityPool).AsBuilder),
		Processes:    builder.FromSlice(m.Processes, (*Process).AsBuilder),
		Operators:    builder.FromSlice(m.Operators, (*LogicalOperator).AsBuilder),
		Modulations:  builder.FromSlice(m.Modulations, (*Modulation).AsBuilder),
		Activities:   builder.FromSlice(m.Activities, (*Activity).AsBuilder),
		Influences:   builder.FromSlice(m.Influences, (*Influence).AsBuilder),
	}
}

// Build freezes the builder into an immutable model.
func (b *ModelBuilder) Build() *Model {
	return &Model{
		Compartments: builder.BuildSlice[*Compartment](b.Compartments),
		EntityPools:  builder.BuildSlice[*EntityPool](b.EntityPools),
		Processes:    builder.BuildSlice[*Process](b.Processes),
		Operators:    builder.BuildSlice[*LogicalOperator](b.Operators),
		Modulations:  builder.BuildSlice[*Modulation](b.Modulations),
		Activities:   builder.BuildSlice[*Activity](b.Activities),
		Influences:   builder.BuildSlice[*Influence](b.Influences),
	}
}

func (b *ModelBuilder) BuildObject() any         { return b.Build() }
func (b *ModelBuilder) RecordType() reflect.Type { return reflect.TypeOf((*Model)(nil)) }

// AddElement appends x to the first collection whose element type matches.
func (b *ModelBuilder) AddElement(x any) error {
	switch v := x.(type) {
	case *CompartmentBuilder:
		b.Compartments = append(b.Compartments, v)
	case *EntityPoolBuilder:
		b.EntityPools = append(b.EntityPools, v)
	case *ProcessBuilder:
		b.Processes = append(b.Processes, v)
	case *LogicalOperatorBuilder:
		b.Operators = append(b.Operators, v)
	case *ModulationBuilder:
		b.Modulations = append(b.Modulations, v)
	case *ActivityBuilder:
		b.Activities = append(b.Activities, v)
	case *InfluenceBuilder:
		b.Influences = append(b.Influences, v)
	default:
		return fmt.Errorf("%w: %T on ModelBuilder", ErrUnsupportedElement, x)
	}
	return nil
}

func init() {
	for _, r := range []builder.Registration{
		{
			Record:     reflect.TypeOf((*StateVariable)(nil)),
			Builder:    reflect.TypeOf((*StateVariableBuilder)(nil)),
			New:        func() builder.Builder { return &StateVariableBuilder{} },
			FromObject: func(x any) builder.Builder { return x.(*StateVariable).AsBuilder() },
		},
		{
			Record:     reflect.TypeOf((*UnitOfInformation)(nil)),
			Builder:    reflect.TypeOf((*UnitOfInformationBuilder)(nil)),
			New:        func() builder.Builder { return &UnitOfInformationBuilder{} },
			FromObject: func(x any) builder.Builder { return x.(*UnitOfInformation).AsBuilder() },
		},
		{
			Record:     reflect.TypeOf((*Compartment)(nil)),
			Builder:    reflect.TypeOf((*CompartmentBuilder)(nil)),
			New:        func() builder.Builder { return &CompartmentBuilder{} },
			FromObject: func(x any) builder.Builder { return x.(*Compartment).AsBuilder() },
		},
		{
			Record:     reflect.TypeOf((*EntityPool)(nil)),
			Builder:    reflect.TypeOf((*EntityPoolBuilder)(nil)),
			New:        func() builder.Builder { return &EntityPoolBuilder{} },
			FromObject: func(x any) builder.Builder { return x.(*EntityPool).AsBuilder() },
		},
		{
			Record:     reflect.TypeOf((*FluxRole)(nil)),
			Builder:    reflect.TypeOf((*FluxRoleBuilder)(nil)),
			New:        func() builder.Builder { return &FluxRoleBuilder{} },
			FromObject: func(x any) builder.Builder { return x.(*FluxRole).AsBuilder() },
		},
		{
			Record:     reflect.TypeOf((*Process)(nil)),
			Builder:    reflect.TypeOf((*ProcessBuilder)(nil)),
			New:        func() builder.Builder { return &ProcessBuilder{} },
			FromObject: func(x any) builder.Builder { return x.(*Process).AsBuilder() },
		},
		{
			Record:     reflect.TypeOf((*LogicalOperator)(nil)),
			Builder:    reflect.TypeOf((*LogicalOperatorBuilder)(nil)),
			New:        func() builder.Builder { return &LogicalOperatorBuilder{} },
			FromObject: func(x any) builder.Builder { return x.(*LogicalOperator).AsBuilder() },
		},
		{
			Record:     reflect.TypeOf((*Modulation)(nil)),
			Builder:    reflect.TypeOf((*ModulationBuilder)(nil)),
			New:        func() builder.Builder { return &ModulationBuilder{} },
			FromObject: func(x any) builder.Builder { return x.(*Modulation).AsBuilder() },
		},
		{
			Record:     reflect.TypeOf((*Activity)(nil)),
			Builder:    reflect.TypeOf((*ActivityBuilder)(nil)),
			New:        func() builder.Builder { return &ActivityBuilder{} },
			FromObject: func(x any) builder.Builder { return x.(*Activity).AsBuilder() },
		},
		{
			Record:     reflect.TypeOf((*Influence)(nil)),
			Builder:    reflect.TypeOf((*InfluenceBuilder)(nil)),
			New:        func() builder.Builder { return &InfluenceBuilder{} },
			FromObject: func(x any) builder.Builder { return x.(*Influence).AsBuilder() },
		},
		{
			Record:     reflect.TypeOf((*Model)(nil)),
			Builder:    reflect.TypeOf((*ModelBuilder)(nil)),
			New:        func() builder.Builder { return &ModelBuilder{} },
			FromObject: func(x any) builder.Builder { return x.(*Model).AsBuilder() },
		},
	} {
		builder.MustRegister(r)
	}
}
