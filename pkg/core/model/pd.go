package model

// Process-description records. The concrete types mirror the PD glyph
// vocabulary; auxiliary units (state variables, units of information) are
// scoped to their containing element and unique only within it.

// Compartment is a bounded region that entity pools live in.
type Compartment struct {
	ID          string
	Label       string
	Units       []*UnitOfInformation
	Annotations []Annotation
}

// ElementID returns the compartment's id.
func (c *Compartment) ElementID() string { return c.ID }

// Equal reports structural equality, ignoring id and annotations.
func (c *Compartment) Equal(other Element) bool {
	o, ok := other.(*Compartment)
	if !ok || o == nil {
		return false
	}
	return c.Label == o.Label && equalSet(c.Units, o.Units)
}

// StateVariable is an auxiliary unit carrying a variable/value pair, e.g.
// a phosphorylation site. Its identity is scoped to the element it
// decorates, never global.
type StateVariable struct {
	ID          string
	Variable    string
	Value       string
	Annotations []Annotation
}

// ElementID returns the state variable's id.
func (s *StateVariable) ElementID() string { return s.ID }

// Equal reports structural equality, ignoring id and annotations.
func (s *StateVariable) Equal(other Element) bool {
	o, ok := other.(*StateVariable)
	if !ok || o == nil {
		return false
	}
	return s.Variable == o.Variable && s.Value == o.Value
}

// UnitOfInformation is an auxiliary unit carrying a typed label, e.g.
// "mt:prot". Scoped to its container like [StateVariable].
type UnitOfInformation struct {
	ID          string
	Prefix      string
	Value       string
	Annotations []Annotation
}

// ElementID returns the unit's id.
func (u *UnitOfInformation) ElementID() string { return u.ID }

// Equal reports structural equality, ignoring id and annotations.
func (u *UnitOfInformation) Equal(other Element) bool {
	o, ok := other.(*UnitOfInformation)
	if !ok || o == nil {
		return false
	}
	return u.Prefix == o.Prefix && u.Value == o.Value
}

// EntityPool is a pool of indistinguishable entities: a macromolecule, a
// simple chemical, a complex, and so on, optionally located in a
// compartment and decorated with auxiliary units.
type EntityPool struct {
	ID             string
	Kind           EntityKind
	Label          string
	Compartment    *Compartment
	StateVariables []*StateVariable
	Units          []*UnitOfInformation
	Annotations    []Annotation
}

// ElementID returns the pool's id.
func (p *EntityPool) ElementID() string { return p.ID }

// Equal reports structural equality, ignoring id and annotations.
func (p *EntityPool) Equal(other Element) bool {
	o, ok := other.(*EntityPool)
	if !ok || o == nil {
		return false
	}
	return p.Kind == o.Kind &&
		p.Label == o.Label &&
		equalPtr(p.Compartment, o.Compartment) &&
		equalSet(p.StateVariables, o.StateVariables) &&
		equalSet(p.Units, o.Units)
}

// FluxRole binds an entity pool to a process as reactant or product with a
// stoichiometric coefficient.
type FluxRole struct {
	ID            string
	Role          RoleKind
	Element       *EntityPool
	Stoichiometry int
}

// ElementID returns the role's id.
func (r *FluxRole) ElementID() string { return r.ID }

// Equal reports structural equality, ignoring id.
func (r *FluxRole) Equal(other Element) bool {
	o, ok := other.(*FluxRole)
	if !ok || o == nil {
		return false
	}
	return r.Role == o.Role &&
		r.Stoichiometry == o.Stoichiometry &&
		equalPtr(r.Element, o.Element)
}

// Process transforms reactant pools into product pools. A reversible
// process is a single record; direction lives in the flux roles.
type Process struct {
	ID          string
	Kind        ProcessKind
	Label       string
	Reversible  bool
	Reactants   []*FluxRole
	Products    []*FluxRole
	Annotations []Annotation
}

// ElementID returns the process's id.
func (p *Process) ElementID() string { return p.ID }

// Equal reports structural equality, ignoring id and annotations.
func (p *Process) Equal(other Element) bool {
	o, ok := other.(*Process)
	if !ok || o == nil {
		return false
	}
	return p.Kind == o.Kind &&
		p.Label == o.Label &&
		p.Reversible == o.Reversible &&
		equalSet(p.Reactants, o.Reactants) &&
		equalSet(p.Products, o.Products)
}

// LogicalOperator combines inputs (pools, activities, or other operators)
// into a single logical antecedent for a modulation or influence.
type LogicalOperator struct {
	ID     string
	Kind   OperatorKind
	Inputs []Element
}

// ElementID returns the operator's id.
func (l *LogicalOperator) ElementID() string { return l.ID }

// Equal reports structural equality, ignoring id.
func (l *LogicalOperator) Equal(other Element) bool {
	o, ok := other.(*LogicalOperator)
	if !ok || o == nil {
		return false
	}
	return l.Kind == o.Kind && equalSet(l.Inputs, o.Inputs)
}

// Modulation is a regulatory relation from a pool or operator onto a
// process.
type Modulation struct {
	ID          string
	Kind        ModulationKind
	Source      Element
	Target      *Process
	Annotations []Annotation
}

// ElementID returns the modulation's id.
func (m *Modulation) ElementID() string { return m.ID }

// Equal reports structural equality, ignoring id and annotations.
func (m *Modulation) Equal(other Element) bool {
	o, ok := other.(*Modulation)
	if !ok || o == nil {
		return false
	}
	return m.Kind == o.Kind &&
		equalElem(m.Source, o.Source) &&
		equalPtr(m.Target, o.Target)
}
