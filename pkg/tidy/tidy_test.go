package tidy

import (
	"testing"

	"github.com/sbgntools/sbgnmap/pkg/core/layout"
	"github.com/sbgntools/sbgnmap/pkg/core/mapping"
	"github.com/sbgntools/sbgnmap/pkg/core/model"
	"github.com/sbgntools/sbgnmap/pkg/core/sbgn"
)

func TestTidyBuilderGrowsToLabel(t *testing.T) {
	mb := sbgn.NewMapBuilder(sbgn.FlavorProcessDescription)
	node := &layout.NodeBuilder{ID: "n1", X: 40, Y: 40, Width: 20, Height: 10,
		Label: &layout.LabelBuilder{Text: "ATP"}}
	if err := mb.Layout.AddElement(node); err != nil {
		t.Fatalf("AddElement: %v", err)
	}

	TidyBuilder(mb)

	// "ATP" needs 3*7+10 = 31 points of width and the minimum label height.
	if node.Width != 31 {
		t.Errorf("width = %v, want 31", node.Width)
	}
	if node.Height != 16 {
		t.Errorf("height = %v, want 16", node.Height)
	}
	// Growth is centered on the original box.
	if node.X != 34.5 || node.Y != 37 {
		t.Errorf("origin = (%v, %v), want (34.5, 37)", node.X, node.Y)
	}
	if node.Label.Position != node.Center() {
		t.Error("label should be recentered after growth")
	}
}

func TestTidyBuilderKeepsWideNodes(t *testing.T) {
	mb := sbgn.NewMapBuilder(sbgn.FlavorProcessDescription)
	node := &layout.NodeBuilder{ID: "n1", X: 0, Y: 0, Width: 200, Height: 50,
		Label: &layout.LabelBuilder{Text: "ATP"}}
	if err := mb.Layout.AddElement(node); err != nil {
		t.Fatalf("AddElement: %v", err)
	}

	TidyBuilder(mb)

	if node.Width != 200 || node.Height != 50 || node.X != 0 || node.Y != 0 {
		t.Errorf("node = (%v, %v, %v, %v), want unchanged", node.X, node.Y, node.Width, node.Height)
	}
}

func TestTidyBuilderFitsCompartment(t *testing.T) {
	mb := sbgn.NewMapBuilder(sbgn.FlavorProcessDescription)

	cb := &model.CompartmentBuilder{ID: "c1"}
	comp := &layout.NodeBuilder{ID: "nc", X: 0, Y: 0, Width: 100, Height: 100}
	if err := mb.Layout.AddElement(comp); err != nil {
		t.Fatalf("AddElement: %v", err)
	}
	if err := mb.AddMappingSingle(comp, cb, false); err != nil {
		t.Fatalf("map compartment: %v", err)
	}

	pb := &model.EntityPoolBuilder{ID: "p1", Kind: model.EntitySimpleChemical,
		Compartment: &model.CompartmentBuilder{ID: "c1"}}
	member := &layout.NodeBuilder{ID: "np", X: 150, Y: 20, Width: 60, Height: 30}
	if err := mb.Layout.AddElement(member); err != nil {
		t.Fatalf("AddElement: %v", err)
	}
	if err := mb.AddMappingSingle(member, pb, false); err != nil {
		t.Fatalf("map pool: %v", err)
	}

	TidyBuilder(mb)

	// The box grows rightward to cover the member plus padding; the other
	// edges already enclose it.
	if comp.X != 0 || comp.Y != 0 {
		t.Errorf("origin = (%v, %v), want (0, 0)", comp.X, comp.Y)
	}
	if comp.Width != 230 || comp.Height != 100 {
		t.Errorf("size = (%v, %v), want (230, 100)", comp.Width, comp.Height)
	}
	if member.X != 150 || member.Width != 60 {
		t.Error("members are never moved")
	}
	if mb.Layout.Width != 230 || mb.Layout.Height != 100 {
		t.Errorf("canvas = (%v, %v), want (230, 100)", mb.Layout.Width, mb.Layout.Height)
	}
}

func TestTidyBuilderAssignsMembersByLocus(t *testing.T) {
	mb := sbgn.NewMapBuilder(sbgn.FlavorProcessDescription)

	// One compartment drawn twice; members attach to the locus containing
	// their center, and strays attach to neither.
	cb := &model.CompartmentBuilder{ID: "c1"}
	locus1 := &layout.NodeBuilder{ID: "nc1", X: 0, Y: 0, Width: 100, Height: 100}
	locus2 := &layout.NodeBuilder{ID: "nc2", X: 300, Y: 0, Width: 100, Height: 100}
	for _, n := range []*layout.NodeBuilder{locus1, locus2} {
		if err := mb.Layout.AddElement(n); err != nil {
			t.Fatalf("AddElement: %v", err)
		}
	}
	if err := mb.AddMapping(mapping.SimpleKey(cb), []mapping.Ref{locus1, locus2}, nil, false); err != nil {
		t.Fatalf("map compartment: %v", err)
	}

	inside := &layout.NodeBuilder{ID: "np1", X: 30, Y: 30, Width: 40, Height: 40}
	stray := &layout.NodeBuilder{ID: "np2", X: 310, Y: 150, Width: 30, Height: 30}
	for i, n := range []*layout.NodeBuilder{inside, stray} {
		if err := mb.Layout.AddElement(n); err != nil {
			t.Fatalf("AddElement: %v", err)
		}
		pb := &model.EntityPoolBuilder{ID: "p" + string(rune('1'+i)), Kind: model.EntitySimpleChemical,
			Compartment: &model.CompartmentBuilder{ID: "c1"}}
		if err := mb.AddMappingSingle(n, pb, false); err != nil {
			t.Fatalf("map pool: %v", err)
		}
	}

	TidyBuilder(mb)

	// The contained member is already covered with padding to spare, and
	// the stray below locus2 must not drag either box.
	if locus1.X != 0 || locus1.Y != 0 || locus1.Width != 100 || locus1.Height != 100 {
		t.Errorf("locus1 = (%v, %v, %v, %v), want unchanged", locus1.X, locus1.Y, locus1.Width, locus1.Height)
	}
	if locus2.Width != 100 || locus2.Height != 100 {
		t.Errorf("locus2 size = (%v, %v), want unchanged", locus2.Width, locus2.Height)
	}
}

func TestSetArcsToBordersBuilder(t *testing.T) {
	mb := sbgn.NewMapBuilder(sbgn.FlavorProcessDescription)
	n1 := &layout.NodeBuilder{ID: "n1", X: 0, Y: 0, Width: 100, Height: 100}
	n2 := &layout.NodeBuilder{ID: "n2", X: 200, Y: 0, Width: 100, Height: 100}
	arc := &layout.ArcBuilder{ID: "a1", Points: []layout.Point{{X: 50, Y: 50}, {X: 250, Y: 50}}}
	for _, e := range []layout.ElementBuilder{n1, n2, arc} {
		if err := mb.Layout.AddElement(e); err != nil {
			t.Fatalf("AddElement: %v", err)
		}
	}

	SetArcsToBordersBuilder(mb)

	if arc.Start() != (layout.Point{X: 100, Y: 50}) {
		t.Errorf("start = %v, want (100, 50)", arc.Start())
	}
	if arc.End() != (layout.Point{X: 200, Y: 50}) {
		t.Errorf("end = %v, want (200, 50)", arc.End())
	}
}

func TestSetArcsToBordersPrefersSmallestBox(t *testing.T) {
	mb := sbgn.NewMapBuilder(sbgn.FlavorProcessDescription)
	comp := &layout.NodeBuilder{ID: "nc", X: 0, Y: 0, Width: 400, Height: 400}
	pool := &layout.NodeBuilder{ID: "np", X: 50, Y: 50, Width: 100, Height: 100}
	arc := &layout.ArcBuilder{ID: "a1", Points: []layout.Point{{X: 100, Y: 100}, {X: 300, Y: 100}}}
	for _, e := range []layout.ElementBuilder{comp, pool, arc} {
		if err := mb.Layout.AddElement(e); err != nil {
			t.Fatalf("AddElement: %v", err)
		}
	}

	SetArcsToBordersBuilder(mb)

	// The start sits in both the compartment and the pool; it must clip
	// to the pool border, not the compartment's.
	if arc.Start() != (layout.Point{X: 150, Y: 100}) {
		t.Errorf("start = %v, want (150, 100)", arc.Start())
	}
}

func TestSetArcsToBordersSkipsPortStubs(t *testing.T) {
	mb := sbgn.NewMapBuilder(sbgn.FlavorProcessDescription)
	box := &layout.NodeBuilder{ID: "nb", X: 0, Y: 0, Width: 100, Height: 100,
		Children: []layout.ElementBuilder{
			&layout.NodeBuilder{ID: "port", X: 100, Y: 50},
		}}
	arc := &layout.ArcBuilder{ID: "a1", Points: []layout.Point{{X: 100, Y: 50}, {X: 200, Y: 50}}}
	for _, e := range []layout.ElementBuilder{box, arc} {
		if err := mb.Layout.AddElement(e); err != nil {
			t.Fatalf("AddElement: %v", err)
		}
	}

	SetArcsToBordersBuilder(mb)

	// The endpoint lands exactly on a zero-size port stub and stays put.
	if arc.Start() != (layout.Point{X: 100, Y: 50}) {
		t.Errorf("start = %v, want unchanged", arc.Start())
	}
}

func TestTidyFrozenForm(t *testing.T) {
	mb := sbgn.NewMapBuilder(sbgn.FlavorProcessDescription)
	pb := &model.EntityPoolBuilder{ID: "p1", Kind: model.EntitySimpleChemical, Label: "ATP"}
	if err := mb.Model.AddElement(pb); err != nil {
		t.Fatalf("add pool: %v", err)
	}
	node := &layout.NodeBuilder{ID: "n1", X: 40, Y: 40, Width: 20, Height: 10,
		Label: &layout.LabelBuilder{ID: "lb", Text: "ATP"}}
	if err := mb.Layout.AddElement(node); err != nil {
		t.Fatalf("add node: %v", err)
	}
	if err := mb.AddMappingSingle(node, pb, false); err != nil {
		t.Fatalf("map: %v", err)
	}
	m, err := mb.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	tidied, err := Tidy(m)
	if err != nil {
		t.Fatalf("Tidy: %v", err)
	}

	got := tidied.Layout.Elements[0].(*layout.Node)
	if got.Width != 31 || got.Height != 16 {
		t.Errorf("tidied node = (%v, %v), want (31, 16)", got.Width, got.Height)
	}
	if orig := m.Layout.Elements[0].(*layout.Node); orig.Width != 20 {
		t.Error("the input map must not be mutated")
	}
	if tidied.Mapping.Len() != m.Mapping.Len() {
		t.Error("mapping should survive the tidy pass")
	}
}
