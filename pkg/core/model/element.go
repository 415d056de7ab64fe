// Package model defines the immutable semantic side of an SBGN map:
// compartments, entity pools, processes, logical operators, activities, and
// their auxiliary units.
//
// Model elements are frozen records with structural equality. Two elements
// with equal fields are interchangeable wherever they appear; sharing means
// duplication-safe equality, not pointer aliasing. The element id and the
// annotation list are excluded from equality: the id exists for
// deterministic tie-breaking and external cross-referencing only.
//
// Elements are created fully populated by their builder's Build call and
// never mutated afterwards. When an element's content must change, a new
// element supersedes it through [AddOrReplaceElement].
package model

// Annotation attaches an external resource reference (MIRIAM-style) to a
// model element. Annotations never participate in element equality.
type Annotation struct {
	Relation string
	URI      string
}

// Element is implemented by every immutable model record.
//
// Equal is structural over all fields except the element id and the
// annotations. An Element compared against an element of a different
// concrete type is never equal.
type Element interface {
	ElementID() string
	Equal(other Element) bool
}

// EntityKind classifies entity pool glyphs.
type EntityKind string

// Entity pool kinds, matching SBGN-ML class names.
const (
	EntityUnspecified        EntityKind = "unspecified entity"
	EntitySimpleChemical     EntityKind = "simple chemical"
	EntityMacromolecule      EntityKind = "macromolecule"
	EntityNucleicAcidFeature EntityKind = "nucleic acid feature"
	EntityComplex            EntityKind = "complex"
	EntityPerturbingAgent    EntityKind = "perturbing agent"
	EntityEmptySet           EntityKind = "source and sink"
)

// ProcessKind classifies process glyphs.
type ProcessKind string

// Process kinds, matching SBGN-ML class names.
const (
	ProcessGeneric      ProcessKind = "process"
	ProcessOmitted      ProcessKind = "omitted process"
	ProcessUncertain    ProcessKind = "uncertain process"
	ProcessAssociation  ProcessKind = "association"
	ProcessDissociation ProcessKind = "dissociation"
)

// RoleKind distinguishes the two flux roles a pool can play in a process.
type RoleKind string

// Flux roles.
const (
	RoleReactant RoleKind = "consumption"
	RoleProduct  RoleKind = "production"
)

// OperatorKind classifies logical operator glyphs.
type OperatorKind string

// Logical operators.
const (
	OperatorAnd OperatorKind = "and"
	OperatorOr  OperatorKind = "or"
	OperatorNot OperatorKind = "not"
)

// ModulationKind classifies modulation arcs.
type ModulationKind string

// Modulation kinds, matching SBGN-ML arc class names.
const (
	ModulationGeneric     ModulationKind = "modulation"
	ModulationStimulation ModulationKind = "stimulation"
	ModulationCatalysis   ModulationKind = "catalysis"
	ModulationInhibition  ModulationKind = "inhibition"
	ModulationNecessary   ModulationKind = "necessary stimulation"
)

// ActivityKind classifies activity-flow node glyphs.
type ActivityKind string

// Activity kinds.
const (
	ActivityBiological ActivityKind = "biological activity"
	ActivityPhenotype  ActivityKind = "phenotype"
)

// InfluenceKind classifies activity-flow arcs.
type InfluenceKind string

// Influence kinds.
const (
	InfluencePositive  InfluenceKind = "positive influence"
	InfluenceNegative  InfluenceKind = "negative influence"
	InfluenceUnknown   InfluenceKind = "unknown influence"
	InfluenceNecessary InfluenceKind = "necessary stimulation"
)

// equalPtr compares two record pointers of the same concrete type,
// treating nil as equal only to nil.
func equalPtr[T any, P interface {
	*T
	Element
}](a, b P) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

// equalSet compares two element collections as sets: equal length and
// every element of a structurally matched by a distinct element of b.
// Collections built by readers carry set semantics; insertion order is an
// artifact of parse order and must not affect equality.
func equalSet[T Element](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
outer:
	for _, ea := range a {
		for i, eb := range b {
			if !used[i] && ea.Equal(eb) {
				used[i] = true
				continue outer
			}
		}
		return false
	}
	return true
}

// equalElem compares two interface-typed elements nil-safely.
func equalElem(a, b Element) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}
