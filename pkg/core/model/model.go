package model

// Model is the root of the semantic tree. Collections carry set semantics:
// membership is by structural equality and insertion order is a parse
// artifact. A single Model type serves both process-description and
// activity-flow maps; a map of one flavor simply leaves the other flavor's
// collections empty.
type Model struct {
	Compartments []*Compartment
	EntityPools  []*EntityPool
	Processes    []*Process
	Operators    []*LogicalOperator
	Modulations  []*Modulation
	Activities   []*Activity
	Influences   []*Influence
}

// Equal reports structural equality of the two models, collection by
// collection with set semantics.
func (m *Model) Equal(other *Model) bool {
	if other == nil {
		return false
	}
	return equalSet(m.Compartments, other.Compartments) &&
		equalSet(m.EntityPools, other.EntityPools) &&
		equalSet(m.Processes, other.Processes) &&
		equalSet(m.Operators, other.Operators) &&
		equalSet(m.Modulations, other.Modulations) &&
		equalSet(m.Activities, other.Activities) &&
		equalSet(m.Influences, other.Influences)
}

// Elements returns every element in the model's collections, top-level
// only (auxiliary units stay inside their containers).
func (m *Model) Elements() []Element {
	var out []Element
	for _, c := range m.Compartments {
		out = append(out, c)
	}
	for _, p := range m.EntityPools {
		out = append(out, p)
	}
	for _, p := range m.Processes {
		out = append(out, p)
	}
	for _, o := range m.Operators {
		out = append(out, o)
	}
	for _, mo := range m.Modulations {
		out = append(out, mo)
	}
	for _, a := range m.Activities {
		out = append(out, a)
	}
	for _, i := range m.Influences {
		out = append(out, i)
	}
	return out
}
