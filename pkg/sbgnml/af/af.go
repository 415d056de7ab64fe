// Package af translates SBGN-ML activity flow maps to and from the core
// map aggregate. The flavor is simpler than process description: no
// ports, no flux roles, just activity nodes joined by influence arcs.
package af

import (
	"github.com/google/uuid"

	"github.com/sbgntools/sbgnmap/pkg/core/layout"
	"github.com/sbgntools/sbgnmap/pkg/core/mapping"
	"github.com/sbgntools/sbgnmap/pkg/core/model"
	"github.com/sbgntools/sbgnmap/pkg/core/sbgn"
	"github.com/sbgntools/sbgnmap/pkg/errors"
	"github.com/sbgntools/sbgnmap/pkg/sbgnml"
)

const (
	classCompartment = "compartment"
	classUnitOfInfo  = "unit of information"
)

// Read converts a decoded SBGN-ML document into a frozen activity flow
// map. Only the document's first map is read.
func Read(doc *sbgnml.File) (*sbgn.Map, error) {
	if len(doc.Maps) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidSBGNML, "document contains no map")
	}
	return ReadMap(&doc.Maps[0])
}

// ReadMap converts one SBGN-ML map element.
func ReadMap(m *sbgnml.Map) (*sbgn.Map, error) {
	if m.Language != sbgnml.LanguageAF {
		return nil, errors.New(errors.ErrCodeInvalidLanguage,
			"expected %q map, got %q", sbgnml.LanguageAF, m.Language)
	}

	r := newReader()
	if err := r.readCompartments(m.Glyphs); err != nil {
		return nil, err
	}
	if err := r.readActivities(m.Glyphs); err != nil {
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
	acts    []*model.Activity
	actIdx  *model.Index[*model.Activity]

	compByGlyph map[string]*model.Compartment
	actByGlyph  map[string]*model.Activity

	infs []*model.InfluenceBuilder
}

func newReader() *reader {
	return &reader{
		mb: sbgn.NewMapBuilder(sbgn.FlavorActivityFlow),
		compIdx: model.NewIndex(func(c *model.Compartment) string {
			return c.Label
		}),
		actIdx: model.NewIndex(func(a *model.Activity) string {
			comp := ""
			if a.Compartment != nil {
				comp = a.Compartment.Label
			}
			return string(a.Kind) + "|" + a.Label + "|" + comp
		}),
		compByGlyph: make(map[string]*model.Compartment),
		actByGlyph:  make(map[string]*model.Activity),
	}
}

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

func nodeFor(g *sbgnml.Glyph) (*layout.NodeBuilder, error) {
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

func isActivityClass(class string) bool {
	switch model.ActivityKind(class) {
	case model.ActivityBiological, model.ActivityPhenotype:
		return true
	}
	return false
}

func isInfluenceClass(class string) bool {
	switch model.InfluenceKind(class) {
	case model.InfluencePositive, model.InfluenceNegative,
		model.InfluenceUnknown, model.InfluenceNecessary:
		return true
	}
	return false
}

func (r *reader) readCompartments(glyphs []sbgnml.Glyph) error {
	type pending struct {
		glyph  string
		node   *layout.NodeBuilder
		record *model.Compartment
	}
	var pend []pending

	for i := range glyphs {
		g := &glyphs[i]
		if g.Class != classCompartment {
			continue
		}
		if err := rejectUnknownChildren(g); err != nil {
			return err
		}
		node, err := nodeFor(g)
		if err != nil {
			return err
		}
		if err := r.mb.Layout.AddElement(node); err != nil {
			return err
		}
		record := (&model.CompartmentBuilder{ID: glyphID(g), Label: labelText(g)}).Build()
		model.AddOrReplaceElement(record, &r.comps, idTieBreak, r.compIdx)
		pend = append(pend, pending{glyph: g.ID, node: node, record: record})
	}

	for _, p := range pend {
		survivor, ok := r.compIdx.Find(p.record)
		if !ok {
			return errors.New(errors.ErrCodeInternal, "compartment %q lost during dedup", p.glyph)
		}
		r.compByGlyph[p.glyph] = survivor
		if err := r.mb.AddMapping(mapping.SimpleKey(survivor), []mapping.Ref{p.node}, nil, false); err != nil {
			return errors.Wrap(errors.ErrCodeMappingConflict, err, "compartment %q", p.glyph)
		}
	}
	return nil
}

func (r *reader) readActivities(glyphs []sbgnml.Glyph) error {
	type pending struct {
		glyph  string
		node   *layout.NodeBuilder
		record *model.Activity
		units  []unitPending
	}
	var pend []pending

	for i := range glyphs {
		g := &glyphs[i]
		switch {
		case isActivityClass(g.Class):
		case g.Class == classCompartment:
			continue
		default:
			return errors.New(errors.ErrCodeUnsupported, "glyph class %q", g.Class)
		}
		if err := rejectUnknownChildren(g, classUnitOfInfo); err != nil {
			return err
		}

		node, err := nodeFor(g)
		if err != nil {
			return err
		}
		if err := r.mb.Layout.AddElement(node); err != nil {
			return err
		}

		ab := &model.ActivityBuilder{
			ID:    glyphID(g),
			Kind:  model.ActivityKind(g.Class),
			Label: labelText(g),
		}
		if g.CompartmentRef != "" {
			comp, ok := r.compByGlyph[g.CompartmentRef]
			if !ok {
				return errors.New(errors.ErrCodeInvalidSBGNML,
					"glyph %q references unknown compartment %q", g.ID, g.CompartmentRef)
			}
			ab.Compartment = comp.AsBuilder()
		}
		units, err := r.readUnits(g, node, ab)
		if err != nil {
			return err
		}

		record := ab.Build()
		model.AddOrReplaceElement(record, &r.acts, idTieBreak, r.actIdx)
		pend = append(pend, pending{glyph: g.ID, node: node, record: record, units: units})
	}

	for _, p := range pend {
		survivor, ok := r.actIdx.Find(p.record)
		if !ok {
			return errors.New(errors.ErrCodeInternal, "activity %q lost during dedup", p.glyph)
		}
		r.actByGlyph[p.glyph] = survivor
		if err := r.mb.AddMapping(mapping.SimpleKey(survivor), []mapping.Ref{p.node}, nil, false); err != nil {
			return errors.Wrap(errors.ErrCodeMappingConflict, err, "activity %q", p.glyph)
		}
		if err := r.registerUnits(survivor, p.units); err != nil {
			return err
		}
	}
	return nil
}

type unitPending struct {
	node *layout.NodeBuilder
	rec  *model.UnitOfInformation
}

func (r *reader) readUnits(g *sbgnml.Glyph, node *layout.NodeBuilder, ab *model.ActivityBuilder) ([]unitPending, error) {
	var units []unitPending
	for i := range g.Glyphs {
		child := &g.Glyphs[i]
		if child.Class != classUnitOfInfo {
			continue
		}
		cn, err := nodeFor(child)
		if err != nil {
			return nil, err
		}
		if err := node.AddElement(cn); err != nil {
			return nil, err
		}
		ub := &model.UnitOfInformationBuilder{ID: glyphID(child), Value: labelText(child)}
		if err := ab.AddElement(ub); err != nil {
			return nil, err
		}
		units = append(units, unitPending{node: cn, rec: ub.Build()})
	}
	return units, nil
}

func (r *reader) registerUnits(survivor *model.Activity, units []unitPending) error {
	used := make([]bool, len(survivor.Units))
	for _, a := range units {
		matched := false
		for i, u := range survivor.Units {
			if used[i] || !u.Equal(a.rec) {
				continue
			}
			used[i] = true
			key := mapping.ScopedKey(u, survivor)
			if err := r.mb.AddMapping(key, []mapping.Ref{a.node}, nil, false); err != nil {
				return errors.Wrap(errors.ErrCodeMappingConflict, err, "unit %q", a.node.ID)
			}
			matched = true
			break
		}
		if !matched {
			return errors.New(errors.ErrCodeInternal, "unit %q missing from surviving activity", a.node.ID)
		}
	}
	return nil
}

func (r *reader) readArcs(arcs []sbgnml.Arc) error {
	for i := range arcs {
		a := &arcs[i]
		if !isInfluenceClass(a.Class) {
			return errors.New(errors.ErrCodeUnsupported, "arc class %q", a.Class)
		}

		pts := make([]layout.Point, 0, len(a.Next)+2)
		pts = append(pts, layout.Point{X: a.Start.X, Y: a.Start.Y})
		for _, n := range a.Next {
			pts = append(pts, layout.Point{X: n.X, Y: n.Y})
		}
		pts = append(pts, layout.Point{X: a.End.X, Y: a.End.Y})

		ab := &layout.ArcBuilder{ID: a.ID, Points: pts}
		if ab.ID == "" {
			ab.ID = uuid.NewString()
		}
		if err := r.mb.Layout.AddElement(ab); err != nil {
			return err
		}

		src, ok := r.actByGlyph[a.Source]
		if !ok {
			return errors.New(errors.ErrCodeInvalidSBGNML, "arc %q has unknown source %q", a.ID, a.Source)
		}
		tgt, ok := r.actByGlyph[a.Target]
		if !ok {
			return errors.New(errors.ErrCodeInvalidSBGNML, "arc %q has unknown target %q", a.ID, a.Target)
		}

		inf := &model.InfluenceBuilder{
			ID:     ab.ID,
			Kind:   model.InfluenceKind(a.Class),
			Source: src.AsBuilder(),
			Target: tgt.AsBuilder(),
		}
		r.infs = append(r.infs, inf)
		if err := r.mb.AddMappingSingle(ab, inf, false); err != nil {
			return errors.Wrap(errors.ErrCodeMappingConflict, err, "arc %q", a.ID)
		}
	}
	return nil
}

func (r *reader) finish() (*sbgn.Map, error) {
	for _, c := range r.comps {
		if err := r.mb.Model.AddElement(c.AsBuilder()); err != nil {
			return nil, err
		}
	}
	for _, a := range r.acts {
		if err := r.mb.Model.AddElement(a.AsBuilder()); err != nil {
			return nil, err
		}
	}
	for _, i := range r.infs {
		if err := r.mb.Model.AddElement(i); err != nil {
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

// Write converts a frozen activity flow map back into an SBGN-ML
// document.
func Write(m *sbgn.Map) (*sbgnml.File, error) {
	if m.Flavor != sbgn.FlavorActivityFlow {
		return nil, errors.New(errors.ErrCodeInvalidLanguage,
			"expected %q map, got %q", sbgn.FlavorActivityFlow, m.Flavor)
	}

	w := &writer{m: m}
	out := sbgnml.Map{ID: "map1", Language: sbgnml.LanguageAF}
	for _, el := range m.Layout.Elements {
		switch v := el.(type) {
		case *layout.Node:
			g, err := w.glyphFor(v)
			if err != nil {
				return nil, err
			}
			out.Glyphs = append(out.Glyphs, *g)
		case *layout.Arc:
			a, err := w.arcFor(v)
			if err != nil {
				return nil, err
			}
			out.Arcs = append(out.Arcs, *a)
		default:
			return nil, errors.New(errors.ErrCodeUnsupported, "top-level layout element %T", el)
		}
	}
	return &sbgnml.File{Xmlns: sbgnml.Namespace, Maps: []sbgnml.Map{out}}, nil
}

type writer struct {
	m *sbgn.Map
}

func (w *writer) locusID(key mapping.Key) (string, error) {
	refs, err := w.m.Mapping.GetLayout(key)
	if err != nil || len(refs) == 0 {
		return "", errors.Wrap(errors.ErrCodeMappingUnknown, err, "no rendering locus")
	}
	return refs[0].ElementID(), nil
}

func (w *writer) glyphFor(n *layout.Node) (*sbgnml.Glyph, error) {
	key, err := w.m.Mapping.GetModel(n)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMappingUnknown, err, "node %q", n.ID)
	}

	g := &sbgnml.Glyph{
		ID:   n.ID,
		BBox: &sbgnml.BBox{X: n.X, Y: n.Y, W: n.Width, H: n.Height},
	}
	if n.Label != nil && n.Label.Text != "" {
		g.Label = &sbgnml.Label{Text: n.Label.Text}
	}

	switch me := key.Element.(type) {
	case *model.Compartment:
		g.Class = classCompartment

	case *model.Activity:
		g.Class = string(me.Kind)
		if me.Compartment != nil {
			ref, err := w.locusID(mapping.SimpleKey(me.Compartment))
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeMappingUnknown, err, "compartment of activity %q", n.ID)
			}
			g.CompartmentRef = ref
		}
		for _, child := range n.Children {
			cn, ok := child.(*layout.Node)
			if !ok {
				continue
			}
			ck, err := w.m.Mapping.GetModel(cn)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeMappingUnknown, err, "aux node %q", cn.ID)
			}
			u, ok := ck.Element.(*model.UnitOfInformation)
			if !ok {
				return nil, errors.New(errors.ErrCodeUnsupported, "aux node %q maps to %T", cn.ID, ck.Element)
			}
			aux := sbgnml.Glyph{
				ID:    cn.ID,
				Class: classUnitOfInfo,
				BBox:  &sbgnml.BBox{X: cn.X, Y: cn.Y, W: cn.Width, H: cn.Height},
			}
			if u.Value != "" {
				aux.Label = &sbgnml.Label{Text: u.Value}
			}
			g.Glyphs = append(g.Glyphs, aux)
		}

	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "node %q maps to %T", n.ID, key.Element)
	}
	return g, nil
}

func (w *writer) arcFor(a *layout.Arc) (*sbgnml.Arc, error) {
	key, err := w.m.Mapping.GetModel(a)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMappingUnknown, err, "arc %q", a.ID)
	}
	inf, ok := key.Element.(*model.Influence)
	if !ok {
		return nil, errors.New(errors.ErrCodeUnsupported, "arc %q maps to %T", a.ID, key.Element)
	}

	out := &sbgnml.Arc{ID: a.ID, Class: string(inf.Kind)}
	out.Start = sbgnml.Coord{X: a.Start().X, Y: a.Start().Y}
	out.End = sbgnml.Coord{X: a.End().X, Y: a.End().Y}
	if len(a.Points) > 2 {
		for _, p := range a.Points[1 : len(a.Points)-1] {
			out.Next = append(out.Next, sbgnml.Coord{X: p.X, Y: p.Y})
		}
	}

	if out.Source, err = w.locusID(mapping.SimpleKey(inf.Source)); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMappingUnknown, err, "source of arc %q", a.ID)
	}
	if out.Target, err = w.locusID(mapping.SimpleKey(inf.Target)); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMappingUnknown, err, "target of arc %q", a.ID)
	}
	return out, nil
}
