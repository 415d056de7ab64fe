package model

// Activity-flow records. These share the compartment and auxiliary-unit
// types with the process-description vocabulary; the core machinery never
// distinguishes which flavor it is holding.

// Activity is an activity-flow node: a biological activity or phenotype.
type Activity struct {
	ID          string
	Kind        ActivityKind
	Label       string
	Compartment *Compartment
	Units       []*UnitOfInformation
	Annotations []Annotation
}

// ElementID returns the activity's id.
func (a *Activity) ElementID() string { return a.ID }

// Equal reports structural equality, ignoring id and annotations.
func (a *Activity) Equal(other Element) bool {
	o, ok := other.(*Activity)
	if !ok || o == nil {
		return false
	}
	return a.Kind == o.Kind &&
		a.Label == o.Label &&
		equalPtr(a.Compartment, o.Compartment) &&
		equalSet(a.Units, o.Units)
}

// Influence is an activity-flow arc from an activity or operator onto an
// activity.
type Influence struct {
	ID          string
	Kind        InfluenceKind
	Source      Element
	Target      Element
	Annotations []Annotation
}

// ElementID returns the influence's id.
func (i *Influence) ElementID() string { return i.ID }

// Equal reports structural equality, ignoring id and annotations.
func (i *Influence) Equal(other Element) bool {
	o, ok := other.(*Influence)
	if !ok || o == nil {
		return false
	}
	return i.Kind == o.Kind &&
		equalElem(i.Source, o.Source) &&
		equalElem(i.Target, o.Target)
}
