package pd

import (
	"strconv"

	"github.com/sbgntools/sbgnmap/pkg/core/layout"
	"github.com/sbgntools/sbgnmap/pkg/core/mapping"
	"github.com/sbgntools/sbgnmap/pkg/core/model"
	"github.com/sbgntools/sbgnmap/pkg/core/sbgn"
	"github.com/sbgntools/sbgnmap/pkg/errors"
	"github.com/sbgntools/sbgnmap/pkg/sbgnml"
)

// Write converts a frozen process description map back into an SBGN-ML
// document. Every top-level layout element is resolved through the
// mapping table to decide its glyph or arc class; an unmapped element is
// a defect in the map, not a skippable curiosity.
func Write(m *sbgn.Map) (*sbgnml.File, error) {
	if m.Flavor != sbgn.FlavorProcessDescription {
		return nil, errors.New(errors.ErrCodeInvalidLanguage,
			"expected %q map, got %q", sbgn.FlavorProcessDescription, m.Flavor)
	}

	w := &writer{m: m}
	out := sbgnml.Map{ID: "map1", Language: sbgnml.LanguagePD}
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

// locusID returns the id of a rendering locus for the model element: the
// anchor for anchored composites, otherwise the first registered
// fragment.
func (w *writer) locusID(key mapping.Key) (string, error) {
	refs, err := w.m.Mapping.GetLayout(key)
	if err != nil || len(refs) == 0 {
		return "", errors.Wrap(errors.ErrCodeMappingUnknown, err, "no rendering locus")
	}
	return refs[0].ElementID(), nil
}

func bboxOf(n *layout.Node) *sbgnml.BBox {
	return &sbgnml.BBox{X: n.X, Y: n.Y, W: n.Width, H: n.Height}
}

func labelOf(n *layout.Node) *sbgnml.Label {
	if n.Label == nil || n.Label.Text == "" {
		return nil
	}
	return &sbgnml.Label{Text: n.Label.Text}
}

func (w *writer) glyphFor(n *layout.Node) (*sbgnml.Glyph, error) {
	key, err := w.m.Mapping.GetModel(n)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMappingUnknown, err, "node %q", n.ID)
	}

	g := &sbgnml.Glyph{ID: n.ID, BBox: bboxOf(n), Label: labelOf(n)}
	switch me := key.Element.(type) {
	case *model.Compartment:
		g.Class = classCompartment
		if err := w.addAuxGlyphs(g, n); err != nil {
			return nil, err
		}

	case *model.EntityPool:
		g.Class = string(me.Kind)
		if me.Compartment != nil {
			ref, err := w.locusID(mapping.SimpleKey(me.Compartment))
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeMappingUnknown, err, "compartment of pool %q", n.ID)
			}
			g.CompartmentRef = ref
		}
		if err := w.addAuxGlyphs(g, n); err != nil {
			return nil, err
		}

	case *model.Process:
		g.Class = string(me.Kind)
		w.addPorts(g, n, me)

	case *model.LogicalOperator:
		g.Class = string(me.Kind)
		w.addPorts(g, n, me)

	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "node %q maps to %T", n.ID, key.Element)
	}
	return g, nil
}

// addAuxGlyphs emits the node's auxiliary children: state variables and
// units of information, identified by their scoped mapping keys.
func (w *writer) addAuxGlyphs(g *sbgnml.Glyph, n *layout.Node) error {
	for _, child := range n.Children {
		cn, ok := child.(*layout.Node)
		if !ok {
			continue
		}
		key, err := w.m.Mapping.GetModel(cn)
		if err != nil {
			return errors.Wrap(errors.ErrCodeMappingUnknown, err, "aux node %q", cn.ID)
		}
		aux := sbgnml.Glyph{ID: cn.ID, BBox: bboxOf(cn)}
		switch me := key.Element.(type) {
		case *model.StateVariable:
			aux.Class = classStateVariable
			if me.Variable != "" || me.Value != "" {
				aux.State = &sbgnml.State{Variable: me.Variable, Value: me.Value}
			}
		case *model.UnitOfInformation:
			aux.Class = classUnitOfInfo
			if me.Value != "" {
				aux.Label = &sbgnml.Label{Text: me.Value}
			}
		default:
			return errors.New(errors.ErrCodeUnsupported, "aux node %q maps to %T", cn.ID, key.Element)
		}
		g.Glyphs = append(g.Glyphs, aux)
	}
	return nil
}

// addPorts emits port stubs for the composite's member nodes: children
// of the body that map back to the same element.
func (w *writer) addPorts(g *sbgnml.Glyph, n *layout.Node, me model.Element) {
	for _, child := range n.Children {
		cn, ok := child.(*layout.Node)
		if !ok {
			continue
		}
		key, err := w.m.Mapping.GetModel(cn)
		if err != nil || key.Element.ElementID() != me.ElementID() {
			continue
		}
		g.Ports = append(g.Ports, sbgnml.Port{ID: cn.ID, X: cn.X, Y: cn.Y})
	}
}

func coord(p layout.Point) sbgnml.Coord {
	return sbgnml.Coord{X: p.X, Y: p.Y}
}

func wirePoints(a *layout.Arc) (sbgnml.Coord, []sbgnml.Coord, sbgnml.Coord) {
	start := coord(a.Start())
	end := coord(a.End())
	var next []sbgnml.Coord
	if len(a.Points) > 2 {
		for _, p := range a.Points[1 : len(a.Points)-1] {
			next = append(next, coord(p))
		}
	}
	return start, next, end
}

func (w *writer) arcFor(a *layout.Arc) (*sbgnml.Arc, error) {
	key, err := w.m.Mapping.GetModel(a)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMappingUnknown, err, "arc %q", a.ID)
	}

	out := &sbgnml.Arc{ID: a.ID}
	out.Start, out.Next, out.End = wirePoints(a)

	switch me := key.Element.(type) {
	case *model.FluxRole:
		out.Class = string(me.Role)
		poolID, err := w.locusID(mapping.SimpleKey(me.Element))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeMappingUnknown, err, "pool of arc %q", a.ID)
		}
		procEnd, err := w.portEnd(key.Container, a, me.Role == model.RoleProduct)
		if err != nil {
			return nil, err
		}
		if me.Role == model.RoleProduct {
			out.Source, out.Target = procEnd, poolID
		} else {
			out.Source, out.Target = poolID, procEnd
		}
		if me.Stoichiometry > 0 {
			out.Glyphs = append(out.Glyphs, stoichiometryGlyph(a, me.Stoichiometry))
		}

	case *model.Modulation:
		out.Class = string(me.Kind)
		if out.Source, err = w.locusID(mapping.SimpleKey(me.Source)); err != nil {
			return nil, errors.Wrap(errors.ErrCodeMappingUnknown, err, "source of arc %q", a.ID)
		}
		if out.Target, err = w.locusID(mapping.SimpleKey(me.Target)); err != nil {
			return nil, errors.Wrap(errors.ErrCodeMappingUnknown, err, "target of arc %q", a.ID)
		}

	default:
		// A scoped key whose container is an operator is the input
		// relation recorded for a logic arc.
		if _, ok := key.Container.(*model.LogicalOperator); ok {
			out.Class = classLogicArc
			if out.Source, err = w.locusID(mapping.SimpleKey(key.Element)); err != nil {
				return nil, errors.Wrap(errors.ErrCodeMappingUnknown, err, "source of arc %q", a.ID)
			}
			if out.Target, err = w.locusID(mapping.SimpleKey(key.Container)); err != nil {
				return nil, errors.Wrap(errors.ErrCodeMappingUnknown, err, "target of arc %q", a.ID)
			}
			return out, nil
		}
		return nil, errors.New(errors.ErrCodeUnsupported, "arc %q maps to %T", a.ID, key.Element)
	}
	return out, nil
}

// portEnd picks the process-side endpoint id for a flux arc: the port
// stub nearest the arc's end on the process side, or the body when the
// composite has no ports.
func (w *writer) portEnd(container mapping.Ref, a *layout.Arc, atStart bool) (string, error) {
	proc, ok := container.(model.Element)
	if !ok {
		return "", errors.New(errors.ErrCodeMappingUnknown, "flux arc %q has no process scope", a.ID)
	}
	bodyID, err := w.locusID(mapping.SimpleKey(proc))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeMappingUnknown, err, "process of arc %q", a.ID)
	}

	var body *layout.Node
	w.m.Layout.Walk(func(e layout.Element) bool {
		if n, ok := e.(*layout.Node); ok && n.ID == bodyID {
			body = n
			return false
		}
		return true
	})
	if body == nil {
		return bodyID, nil
	}

	end := a.End()
	if atStart {
		end = a.Start()
	}
	bestID := bodyID
	bestDist := -1.0
	for _, child := range body.Children {
		cn, ok := child.(*layout.Node)
		if !ok {
			continue
		}
		key, err := w.m.Mapping.GetModel(cn)
		if err != nil || key.Element.ElementID() != proc.ElementID() {
			continue
		}
		dx, dy := cn.X-end.X, cn.Y-end.Y
		if d := dx*dx + dy*dy; bestDist < 0 || d < bestDist {
			bestDist = d
			bestID = cn.ID
		}
	}
	return bestID, nil
}

func stoichiometryGlyph(a *layout.Arc, n int) sbgnml.Glyph {
	mid := a.Start()
	if len(a.Points) > 1 {
		p, q := a.Points[0], a.Points[len(a.Points)-1]
		mid = layout.Point{X: (p.X + q.X) / 2, Y: (p.Y + q.Y) / 2}
	}
	return sbgnml.Glyph{
		ID:    a.ID + ".cardinality",
		Class: classCardinality,
		Label: &sbgnml.Label{Text: strconv.Itoa(n)},
		BBox:  &sbgnml.BBox{X: mid.X, Y: mid.Y},
	}
}
