// Package pd translates SBGN-ML process description maps to and from the
// core map aggregate.
//
// Reading works bottom-up in phases: compartments first, then entity
// pools, then processes and operators, then arcs. Each phase freezes its
// records early and deduplicates them, so equal glyphs collapse to one
// model element with several rendering loci. Mappings are registered
// against whichever duplicate survived, which keeps the table and the
// model telling the same story.
package pd

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/sbgntools/sbgnmap/pkg/core/layout"
	"github.com/sbgntools/sbgnmap/pkg/core/mapping"
	"github.com/sbgntools/sbgnmap/pkg/core/model"
	"github.com/sbgntools/sbgnmap/pkg/core/sbgn"
	"github.com/sbgntools/sbgnmap/pkg/errors"
	"github.com/sbgntools/sbgnmap/pkg/sbgnml"
)

// Glyph and arc classes handled by this flavor, beyond the kind constants
// shared with the model.
const (
	classCompartment   = "compartment"
	classStateVariable = "state variable"
	classUnitOfInfo    = "unit of information"
	classLogicArc      = "logic arc"
	classCardinality   = "cardinality"
	classStoichiometry = "stoichiometry"
)

// Read converts a decoded SBGN-ML document into a frozen process
// description map. Only the document's first map is read.
func Read(doc *sbgnml.File) (*sbgn.Map, error) {
	if len(doc.Maps) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidSBGNML, "document contains no map")
	}
	return ReadMap(&doc.Maps[0])
}

// ReadMap converts one SBGN-ML map element.
func ReadMap(m *sbgnml.Map) (*sbgn.Map, error) {
	if m.Language != sbgnml.LanguagePD {
		return nil, errors.New(errors.ErrCodeInvalidLanguage,
			"expected %q map, got %q", sbgnml.LanguagePD, m.Language)
	}

	r := newReader()
	if err := r.readCompartments(m.Glyphs); err != nil {
		return nil, err
	}
	if err := r.readPools(m.Glyphs); err != nil {
		return nil, err
	}
	if err := r.readProcesses(m.Glyphs); err != nil {
		return nil, err
	}
	if err := r.readArcs(m.Arcs); err != nil {
		return nil, err
	}
	return r.finish()
}

type reader struct {
	mb *sbgn.MapBuilder

	comps   []*model.Compartment
	compIdx *model.Index[*model.Compartment]
	pools   []*model.EntityPool
	poolIdx *model.Index[*model.EntityPool]

	compByGlyph map[string]*model.Compartment
	poolByGlyph map[string]*model.EntityPool
	procByGlyph map[string]*model.ProcessBuilder
	opByGlyph   map[string]*model.LogicalOperatorBuilder

	procs []*model.ProcessBuilder
	ops   []*model.LogicalOperatorBuilder
	mods  []*model.ModulationBuilder

	portOwner map[string]string
}

func newReader() *reader {
	return &reader{
		mb: sbgn.NewMapBuilder(sbgn.FlavorProcessDescription),
		compIdx: model.NewIndex(func(c *model.Compartment) string {
			return c.Label
		}),
		poolIdx: model.NewIndex(func(p *model.EntityPool) string {
			comp := ""
			if p.Compartment != nil {
				comp = p.Compartment.Label
			}
			return string(p.Kind) + "|" + p.Label + "|" + comp
		}),
		compByGlyph: make(map[string]*model.Compartment),
		poolByGlyph: make(map[string]*model.EntityPool),
		procByGlyph: make(map[string]*model.ProcessBuilder),
		opByGlyph:   make(map[string]*model.LogicalOperatorBuilder),
		portOwner:   make(map[string]string),
	}
}

// idTieBreak is the dedup comparator: the candidate supersedes an equal
// existing member when its id sorts lower.
func idTieBreak[E model.Element](candidate, existing E) bool {
	return candidate.ElementID() < existing.ElementID()
}

func labelText(g *sbgnml.Glyph) string {
	if g.Label == nil {
		return ""
	}
	return g.Label.Text
}

func glyphID(g *sbgnml.Glyph) string {
	if g.ID != "" {
		return g.ID
	}
	return uuid.NewString()
}

func (r *reader) nodeFor(g *sbgnml.Glyph) (*layout.NodeBuilder, error) {
	if g.BBox == nil {
		return nil, errors.New(errors.ErrCodeInvalidSBGNML, "glyph %q has no bbox", g.ID)
	}
	nb := &layout.NodeBuilder{
		ID:     glyphID(g),
		X:      g.BBox.X,
		Y:      g.BBox.Y,
		Width:  g.BBox.W,
		Height: g.BBox.H,
	}
	if g.Label != nil {
		nb.Label = &layout.LabelBuilder{ID: nb.ID + ".label", Text: g.Label.Text, Position: nb.Center()}
	}
	return nb, nil
}

// pendingAux pairs an auxiliary child's layout node with the candidate
// model record built for it, before the parent's dedup fate is known.
type pendingAux struct {
	node *layout.NodeBuilder
	rec  model.Element
}

// rejectUnknownChildren fails on nested glyph classes this flavor does
// not model. Dropping them would corrupt the round-trip silently.
func rejectUnknownChildren(g *sbgnml.Glyph, allowed ...string) error {
	for i := range g.Glyphs {
		child := &g.Glyphs[i]
		known := false
		for _, a := range allowed {
			if child.Class == a {
				known = true
				break
			}
		}
		if !known {
			return errors.New(errors.ErrCodeUnsupported,
				"glyph class %q nested in %q", child.Class, g.ID)
		}
	}
	return nil
}

// =============================================================================
// Phase 1: compartments
// =============================================================================

func (r *reader) readCompartments(glyphs []sbgnml.Glyph) error {
	type pending struct {
		glyph  string
		node   *layout.NodeBuilder
		record *model.Compartment
		aux    []pendingAux
	}
	var pend []pending

	for i := range glyphs {
		g := &glyphs[i]
		if g.Class != classCompartment {
			continue
		}
		if err := rejectUnknownChildren(g, classUnitOfInfo); err != nil {
			return err
		}
		node, err := r.nodeFor(g)
		if err != nil {
			return err
		}
		if err := r.mb.Layout.AddElement(node); err != nil {
			return err
		}

		cb := &model.CompartmentBuilder{ID: glyphID(g), Label: labelText(g)}
		aux, err := r.readUnits(g, node, cb)
		if err != nil {
			return err
		}

		record := cb.Build()
		model.AddOrReplaceElement(record, &r.comps, idTieBreak, r.compIdx)
		pend = append(pend, pending{glyph: g.ID, node: node, record: record, aux: aux})
	}

	// Dedup has settled; resolve every glyph to its surviving record and
	// register the mappings against that survivor.
	for _, p := range pend {
		survivor, ok := r.compIdx.Find(p.record)
		if !ok {
			return errors.New(errors.ErrCodeInternal, "compartment %q lost during dedup", p.glyph)
		}
		r.compByGlyph[p.glyph] = survivor
		if err := r.mb.AddMapping(mapping.SimpleKey(survivor), []mapping.Ref{p.node}, nil, false); err != nil {
			return errors.Wrap(errors.ErrCodeMappingConflict, err, "compartment %q", p.glyph)
		}
		if err := r.registerUnitMappings(survivor, survivor.Units, p.aux); err != nil {
			return err
		}
	}
	return nil
}

// readUnits parses unit-of-information children into the container
// builder and returns the pending layout/record pairs.
func (r *reader) readUnits(g *sbgnml.Glyph, node *layout.NodeBuilder, container interface{ AddElement(any) error }) ([]pendingAux, error) {
	var aux []pendingAux
	for i := range g.Glyphs {
		child := &g.Glyphs[i]
		if child.Class != classUnitOfInfo {
			continue
		}
		cn, err := r.nodeFor(child)
		if err != nil {
			return nil, err
		}
		if err := node.AddElement(cn); err != nil {
			return nil, err
		}
		ub := &model.UnitOfInformationBuilder{ID: glyphID(child), Value: labelText(child)}
		if err := container.AddElement(ub); err != nil {
			return nil, err
		}
		aux = append(aux, pendingAux{node: cn, rec: ub.Build()})
	}
	return aux, nil
}

// registerUnitMappings maps each pending unit node to the structurally
// matching unit inside the surviving container, scoped to it.
func (r *reader) registerUnitMappings(container model.Element, units []*model.UnitOfInformation, aux []pendingAux) error {
	used := make([]bool, len(units))
	for _, a := range aux {
		matched := false
		for i, u := range units {
			if used[i] || !u.Equal(a.rec) {
				continue
			}
			used[i] = true
			key := mapping.ScopedKey(u, container)
			if err := r.mb.AddMapping(key, []mapping.Ref{a.node}, nil, false); err != nil {
				return errors.Wrap(errors.ErrCodeMappingConflict, err, "unit %q", a.node.ID)
			}
			matched = true
			break
		}
		if !matched {
			return errors.New(errors.ErrCodeInternal, "unit %q missing from surviving container", a.node.ID)
		}
	}
	return nil
}

// =============================================================================
// Phase 2: entity pools
// =============================================================================

func isEntityClass(class string) bool {
	switch model.EntityKind(class) {
	case model.EntityUnspecified, model.EntitySimpleChemical, model.EntityMacromolecule,
		model.EntityNucleicAcidFeature, model.EntityComplex, model.EntityPerturbingAgent,
		model.EntityEmptySet:
		return true
	}
	return false
}

func (r *reader) readPools(glyphs []sbgnml.Glyph) error {
	type pending struct {
		glyph  string
		node   *layout.NodeBuilder
		record *model.EntityPool
		aux    []pendingAux
	}
	var pend []pending

	for i := range glyphs {
		g := &glyphs[i]
		if !isEntityClass(g.Class) {
			continue
		}
		if err := rejectUnknownChildren(g, classUnitOfInfo, classStateVariable); err != nil {
			return err
		}
		node, err := r.nodeFor(g)
		if err != nil {
			return err
		}
		if err := r.mb.Layout.AddElement(node); err != nil {
			return err
		}

		pb := &model.EntityPoolBuilder{
			ID:    glyphID(g),
			Kind:  model.EntityKind(g.Class),
			Label: labelText(g),
		}
		if g.CompartmentRef != "" {
			comp, ok := r.compByGlyph[g.CompartmentRef]
			if !ok {
				return errors.New(errors.ErrCodeInvalidSBGNML,
					"glyph %q references unknown compartment %q", g.ID, g.CompartmentRef)
			}
			pb.Compartment = comp.AsBuilder()
		}

		aux, err := r.readUnits(g, node, pb)
		if err != nil {
			return err
		}
		svs, err := r.readStateVariables(g, node, pb)
		if err != nil {
			return err
		}
		aux = append(aux, svs...)

		record := pb.Build()
		model.AddOrReplaceElement(record, &r.pools, idTieBreak, r.poolIdx)
		pend = append(pend, pending{glyph: g.ID, node: node, record: record, aux: aux})
	}

	for _, p := range pend {
		survivor, ok := r.poolIdx.Find(p.record)
		if !ok {
			return errors.New(errors.ErrCodeInternal, "entity pool %q lost during dedup", p.glyph)
		}
		r.poolByGlyph[p.glyph] = survivor
		if err := r.mb.AddMapping(mapping.SimpleKey(survivor), []mapping.Ref{p.node}, nil, false); err != nil {
			return errors.Wrap(errors.ErrCodeMappingConflict, err, "entity pool %q", p.glyph)
		}
		if err := r.registerPoolAux(survivor, p.aux); err != nil {
			return err
		}
	}
	return nil
}

func (r *reader) readStateVariables(g *sbgnml.Glyph, node *layout.NodeBuilder, pb *model.EntityPoolBuilder) ([]pendingAux, error) {
	var aux []pendingAux
	for i := range g.Glyphs {
		child := &g.Glyphs[i]
		if child.Class != classStateVariable {
			continue
		}
		cn, err := r.nodeFor(child)
		if err != nil {
			return nil, err
		}
		if err := node.AddElement(cn); err != nil {
			return nil, err
		}
		sb := &model.StateVariableBuilder{ID: glyphID(child)}
		if child.State != nil {
			sb.Variable = child.State.Variable
			sb.Value = child.State.Value
		}
		if err := pb.AddElement(sb); err != nil {
			return nil, err
		}
		aux = append(aux, pendingAux{node: cn, rec: sb.Build()})
	}
	return aux, nil
}

// registerPoolAux maps pending state variable and unit nodes to their
// counterparts inside the surviving pool.
func (r *reader) registerPoolAux(survivor *model.EntityPool, aux []pendingAux) error {
	var units, svs []pendingAux
	for _, a := range aux {
		if _, ok := a.rec.(*model.StateVariable); ok {
			svs = append(svs, a)
		} else {
			units = append(units, a)
		}
	}
	if err := r.registerUnitMappings(survivor, survivor.Units, units); err != nil {
		return err
	}

	used := make([]bool, len(survivor.StateVariables))
	for _, a := range svs {
		matched := false
		for i, sv := range survivor.StateVariables {
			if used[i] || !sv.Equal(a.rec) {
				continue
			}
			used[i] = true
			key := mapping.ScopedKey(sv, survivor)
			if err := r.mb.AddMapping(key, []mapping.Ref{a.node}, nil, false); err != nil {
				return errors.Wrap(errors.ErrCodeMappingConflict, err, "state variable %q", a.node.ID)
			}
			matched = true
			break
		}
		if !matched {
			return errors.New(errors.ErrCodeInternal, "state variable %q missing from surviving pool", a.node.ID)
		}
	}
	return nil
}

// =============================================================================
// Phase 3: processes and logical operators
// =============================================================================

func isProcessClass(class string) bool {
	switch model.ProcessKind(class) {
	case model.ProcessGeneric, model.ProcessOmitted, model.ProcessUncertain,
		model.ProcessAssociation, model.ProcessDissociation:
		return true
	}
	return false
}

func isOperatorClass(class string) bool {
	switch model.OperatorKind(class) {
	case model.OperatorAnd, model.OperatorOr, model.OperatorNot:
		return true
	}
	return false
}

func (r *reader) readProcesses(glyphs []sbgnml.Glyph) error {
	for i := range glyphs {
		g := &glyphs[i]
		switch {
		case isProcessClass(g.Class):
			pb := &model.ProcessBuilder{
				ID:    glyphID(g),
				Kind:  model.ProcessKind(g.Class),
				Label: labelText(g),
			}
			if err := r.readComposite(g, pb); err != nil {
				return err
			}
			r.procByGlyph[g.ID] = pb
			r.procs = append(r.procs, pb)

		case isOperatorClass(g.Class):
			ob := &model.LogicalOperatorBuilder{
				ID:   glyphID(g),
				Kind: model.OperatorKind(g.Class),
			}
			if err := r.readComposite(g, ob); err != nil {
				return err
			}
			r.opByGlyph[g.ID] = ob
			r.ops = append(r.ops, ob)

		case g.Class == classCompartment || isEntityClass(g.Class):
			// Handled in earlier phases.

		default:
			return errors.New(errors.ErrCodeUnsupported, "glyph class %q", g.Class)
		}
	}
	return nil
}

// readComposite builds the layout side of a ported glyph. The body node
// anchors the composite; each port stub joins the set under the same
// model key, re-registered with replace as the composite grows.
func (r *reader) readComposite(g *sbgnml.Glyph, me model.ElementBuilder) error {
	if err := rejectUnknownChildren(g); err != nil {
		return err
	}
	box, err := r.nodeFor(g)
	if err != nil {
		return err
	}
	if err := r.mb.Layout.AddElement(box); err != nil {
		return err
	}

	key := mapping.SimpleKey(me)
	parts := []mapping.Ref{box}
	if err := r.mb.AddMapping(key, parts, box, false); err != nil {
		return errors.Wrap(errors.ErrCodeMappingConflict, err, "glyph %q", g.ID)
	}
	for _, port := range g.Ports {
		stub := &layout.NodeBuilder{ID: port.ID, X: port.X, Y: port.Y}
		if err := box.AddElement(stub); err != nil {
			return err
		}
		r.portOwner[port.ID] = g.ID
		parts = append(parts, stub)
		if err := r.mb.AddMapping(key, parts, box, true); err != nil {
			return errors.Wrap(errors.ErrCodeMappingConflict, err, "port %q", port.ID)
		}
	}
	return nil
}

// =============================================================================
// Phase 4: arcs
// =============================================================================

// resolveEnd translates an arc endpoint reference, which may name a port,
// into the owning glyph's id.
func (r *reader) resolveEnd(ref string) string {
	if owner, ok := r.portOwner[ref]; ok {
		return owner
	}
	return ref
}

func arcPoints(a *sbgnml.Arc) []layout.Point {
	pts := make([]layout.Point, 0, len(a.Next)+2)
	pts = append(pts, layout.Point{X: a.Start.X, Y: a.Start.Y})
	for _, n := range a.Next {
		pts = append(pts, layout.Point{X: n.X, Y: n.Y})
	}
	return append(pts, layout.Point{X: a.End.X, Y: a.End.Y})
}

func arcStoichiometry(a *sbgnml.Arc) int {
	for i := range a.Glyphs {
		g := &a.Glyphs[i]
		if g.Class != classCardinality && g.Class != classStoichiometry {
			continue
		}
		if n, err := strconv.Atoi(labelText(g)); err == nil {
			return n
		}
	}
	return 0
}

func isModulationClass(class string) bool {
	switch model.ModulationKind(class) {
	case model.ModulationGeneric, model.ModulationStimulation, model.ModulationCatalysis,
		model.ModulationInhibition, model.ModulationNecessary:
		return true
	}
	return false
}

func (r *reader) readArcs(arcs []sbgnml.Arc) error {
	for i := range arcs {
		a := &arcs[i]
		ab := &layout.ArcBuilder{ID: a.ID, Points: arcPoints(a)}
		if ab.ID == "" {
			ab.ID = uuid.NewString()
		}
		if err := r.mb.Layout.AddElement(ab); err != nil {
			return err
		}

		src := r.resolveEnd(a.Source)
		tgt := r.resolveEnd(a.Target)

		switch {
		case model.RoleKind(a.Class) == model.RoleReactant:
			if err := r.readFlux(a, ab, model.RoleReactant, src, tgt); err != nil {
				return err
			}
		case model.RoleKind(a.Class) == model.RoleProduct:
			if err := r.readFlux(a, ab, model.RoleProduct, tgt, src); err != nil {
				return err
			}
		case isModulationClass(a.Class):
			if err := r.readModulation(a, ab, src, tgt); err != nil {
				return err
			}
		case a.Class == classLogicArc:
			if err := r.readLogicArc(a, ab, src, tgt); err != nil {
				return err
			}
		default:
			return errors.New(errors.ErrCodeUnsupported, "arc class %q", a.Class)
		}
	}
	return nil
}

// readFlux records a consumption or production edge: the pool end and the
// process end, already oriented so poolEnd names the pool glyph.
func (r *reader) readFlux(a *sbgnml.Arc, ab *layout.ArcBuilder, role model.RoleKind, poolEnd, procEnd string) error {
	pool, ok := r.poolByGlyph[poolEnd]
	if !ok {
		return errors.New(errors.ErrCodeInvalidSBGNML, "arc %q references unknown entity pool %q", a.ID, poolEnd)
	}
	proc, ok := r.procByGlyph[procEnd]
	if !ok {
		return errors.New(errors.ErrCodeInvalidSBGNML, "arc %q references unknown process %q", a.ID, procEnd)
	}

	fr := &model.FluxRoleBuilder{
		ID:            ab.ID,
		Role:          role,
		Element:       pool.AsBuilder(),
		Stoichiometry: arcStoichiometry(a),
	}
	if err := proc.AddElement(fr); err != nil {
		return err
	}
	key := mapping.ScopedKey(fr, proc)
	if err := r.mb.AddMapping(key, []mapping.Ref{ab}, nil, false); err != nil {
		return errors.Wrap(errors.ErrCodeMappingConflict, err, "arc %q", a.ID)
	}
	return nil
}

func (r *reader) readModulation(a *sbgnml.Arc, ab *layout.ArcBuilder, src, tgt string) error {
	source, _, err := r.sourceElement(a.ID, src)
	if err != nil {
		return err
	}
	proc, ok := r.procByGlyph[tgt]
	if !ok {
		return errors.New(errors.ErrCodeInvalidSBGNML, "arc %q targets unknown process %q", a.ID, tgt)
	}

	mo := &model.ModulationBuilder{
		ID:     ab.ID,
		Kind:   model.ModulationKind(a.Class),
		Source: source,
		Target: proc,
	}
	r.mods = append(r.mods, mo)
	if err := r.mb.AddMappingSingle(ab, mo, false); err != nil {
		return errors.Wrap(errors.ErrCodeMappingConflict, err, "arc %q", a.ID)
	}
	return nil
}

// readLogicArc attaches the source to the operator's inputs and maps the
// arc to the input relation: the source element scoped to the operator.
func (r *reader) readLogicArc(a *sbgnml.Arc, ab *layout.ArcBuilder, src, tgt string) error {
	op, ok := r.opByGlyph[tgt]
	if !ok {
		return errors.New(errors.ErrCodeInvalidSBGNML, "arc %q targets unknown operator %q", a.ID, tgt)
	}
	source, ref, err := r.sourceElement(a.ID, src)
	if err != nil {
		return err
	}
	if err := op.AddElement(source); err != nil {
		return err
	}
	key := mapping.ScopedKey(ref, op)
	if err := r.mb.AddMapping(key, []mapping.Ref{ab}, nil, false); err != nil {
		return errors.Wrap(errors.ErrCodeMappingConflict, err, "arc %q", a.ID)
	}
	return nil
}

// sourceElement resolves an arc source to a pool or operator. The second
// return is the mapping reference: the surviving pool record for pools,
// the builder itself for operators.
func (r *reader) sourceElement(arcID, glyph string) (model.ElementBuilder, mapping.Ref, error) {
	if p, ok := r.poolByGlyph[glyph]; ok {
		return p.AsBuilder(), p, nil
	}
	if o, ok := r.opByGlyph[glyph]; ok {
		return o, o, nil
	}
	return nil, nil, errors.New(errors.ErrCodeInvalidSBGNML, "arc %q has unknown source %q", arcID, glyph)
}

// =============================================================================
// Phase 5: finalize
// =============================================================================

func (r *reader) finish() (*sbgn.Map, error) {
	for _, c := range r.comps {
		if err := r.mb.Model.AddElement(c.AsBuilder()); err != nil {
			return nil, err
		}
	}
	for _, p := range r.pools {
		if err := r.mb.Model.AddElement(p.AsBuilder()); err != nil {
			return nil, err
		}
	}
	for _, p := range r.procs {
		if err := r.mb.Model.AddElement(p); err != nil {
			return nil, err
		}
	}
	for _, o := range r.ops {
		if err := r.mb.Model.AddElement(o); err != nil {
			return nil, err
		}
	}
	for _, m := range r.mods {
		if err := r.mb.Model.AddElement(m); err != nil {
			return nil, err
		}
	}

	r.mb.Layout.Width, r.mb.Layout.Height = extent(r.mb.Layout)
	m, err := r.mb.Build()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "freeze map")
	}
	return m, nil
}

// extent computes the layout canvas size from the outermost element
// bounds, clamped at the origin.
func extent(lb *layout.LayoutBuilder) (float64, float64) {
	var w, h float64
	lb.Walk(func(e layout.ElementBuilder) bool {
		switch v := e.(type) {
		case *layout.NodeBuilder:
			if x := v.X + v.Width; x > w {
				w = x
			}
			if y := v.Y + v.Height; y > h {
				h = y
			}
		case *layout.ArcBuilder:
			for _, p := range v.Points {
				if p.X > w {
					w = p.X
				}
				if p.Y > h {
					h = p.Y
				}
			}
		}
		return true
	})
	return w, h
}
