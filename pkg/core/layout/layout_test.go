package layout

import (
	"errors"
	"testing"
)

func TestNodeEqualIgnoresID(t *testing.T) {
	a := &Node{ID: "a", X: 10, Y: 20, Width: 100, Height: 50}
	b := &Node{ID: "b", X: 10, Y: 20, Width: 100, Height: 50}

	if !a.Equal(b) {
		t.Error("nodes differing only in id should be equal")
	}
}

func TestNodeEqualDistinguishesGeometry(t *testing.T) {
	base := &Node{X: 10, Y: 20, Width: 100, Height: 50,
		Label: &Label{Text: "ATP", Position: Point{X: 60, Y: 45}}}

	tests := []struct {
		name  string
		other *Node
	}{
		{"different position", &Node{X: 11, Y: 20, Width: 100, Height: 50,
			Label: &Label{Text: "ATP", Position: Point{X: 60, Y: 45}}}},
		{"different size", &Node{X: 10, Y: 20, Width: 100, Height: 60,
			Label: &Label{Text: "ATP", Position: Point{X: 60, Y: 45}}}},
		{"different label text", &Node{X: 10, Y: 20, Width: 100, Height: 50,
			Label: &Label{Text: "ADP", Position: Point{X: 60, Y: 45}}}},
		{"missing label", &Node{X: 10, Y: 20, Width: 100, Height: 50}},
		{"extra child", &Node{X: 10, Y: 20, Width: 100, Height: 50,
			Label:    &Label{Text: "ATP", Position: Point{X: 60, Y: 45}},
			Children: []Element{&Node{Width: 5, Height: 5}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if base.Equal(tt.other) {
				t.Error("nodes should not be equal")
			}
		})
	}
}

func TestNodeChildrenSetSemantics(t *testing.T) {
	a := &Node{Width: 100, Height: 50, Children: []Element{
		&Node{X: 1, Width: 5, Height: 5},
		&Node{X: 2, Width: 5, Height: 5},
	}}
	b := &Node{Width: 100, Height: 50, Children: []Element{
		&Node{X: 2, Width: 5, Height: 5},
		&Node{X: 1, Width: 5, Height: 5},
	}}

	if !a.Equal(b) {
		t.Error("children should compare as sets, not sequences")
	}
}

func TestEqualAcrossTypes(t *testing.T) {
	n := &Node{Width: 10, Height: 10}
	a := &Arc{Points: []Point{{}, {X: 10}}}
	if n.Equal(a) || a.Equal(n) {
		t.Error("elements of different concrete types should never be equal")
	}
}

func TestArcEqualComparesPointSequence(t *testing.T) {
	a := &Arc{Points: []Point{{X: 0, Y: 0}, {X: 5, Y: 5}, {X: 10, Y: 0}}}
	b := &Arc{ID: "other", Points: []Point{{X: 0, Y: 0}, {X: 5, Y: 5}, {X: 10, Y: 0}}}
	c := &Arc{Points: []Point{{X: 10, Y: 0}, {X: 5, Y: 5}, {X: 0, Y: 0}}}

	if !a.Equal(b) {
		t.Error("arcs with identical point sequences should be equal")
	}
	if a.Equal(c) {
		t.Error("arc points are ordered; reversed polylines differ")
	}
}

func TestArcEndpoints(t *testing.T) {
	a := &Arc{Points: []Point{{X: 1, Y: 2}, {X: 3, Y: 4}, {X: 5, Y: 6}}}
	if a.Start() != (Point{X: 1, Y: 2}) {
		t.Errorf("Start = %v", a.Start())
	}
	if a.End() != (Point{X: 5, Y: 6}) {
		t.Errorf("End = %v", a.End())
	}

	empty := &Arc{}
	if empty.Start() != (Point{}) || empty.End() != (Point{}) {
		t.Error("empty arc endpoints should be the zero point")
	}
}

func TestNodeCenterAndBounds(t *testing.T) {
	n := &Node{X: 10, Y: 20, Width: 100, Height: 60}
	if got := n.Center(); got != (Point{X: 60, Y: 50}) {
		t.Errorf("Center = %v, want (60, 50)", got)
	}
	minX, minY, maxX, maxY := n.Bounds()
	if minX != 10 || minY != 20 || maxX != 110 || maxY != 80 {
		t.Errorf("Bounds = (%v, %v, %v, %v)", minX, minY, maxX, maxY)
	}
}

func TestBorderPoint(t *testing.T) {
	n := &Node{X: 0, Y: 0, Width: 100, Height: 100}
	tests := []struct {
		name   string
		toward Point
		want   Point
	}{
		{"due east", Point{X: 200, Y: 50}, Point{X: 100, Y: 50}},
		{"due west", Point{X: -100, Y: 50}, Point{X: 0, Y: 50}},
		{"due south", Point{X: 50, Y: 300}, Point{X: 50, Y: 100}},
		{"diagonal", Point{X: 150, Y: 150}, Point{X: 100, Y: 100}},
		{"at center", Point{X: 50, Y: 50}, Point{X: 50, Y: 50}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.BorderPoint(tt.toward); got != tt.want {
				t.Errorf("BorderPoint(%v) = %v, want %v", tt.toward, got, tt.want)
			}
		})
	}
}

func TestWalkOrder(t *testing.T) {
	l := &Layout{Elements: []Element{
		&Node{ID: "a", Children: []Element{
			&Node{ID: "a1"},
			&Node{ID: "a2"},
		}},
		&Arc{ID: "b", Children: []Element{&Node{ID: "b1"}}},
	}}

	var order []string
	l.Walk(func(e Element) bool {
		order = append(order, e.ElementID())
		return true
	})

	want := []string{"a", "a1", "a2", "b", "b1"}
	if len(order) != len(want) {
		t.Fatalf("visited %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("visited %v, want %v", order, want)
		}
	}
}

func TestWalkEarlyStop(t *testing.T) {
	l := &Layout{Elements: []Element{
		&Node{ID: "a", Children: []Element{&Node{ID: "a1"}}},
		&Node{ID: "b"},
	}}

	var count int
	l.Walk(func(e Element) bool {
		count++
		return e.ElementID() != "a1"
	})
	if count != 2 {
		t.Errorf("visited %d elements, want 2", count)
	}
}

func TestNodeRoundTrip(t *testing.T) {
	n := &Node{
		ID: "n1", X: 10, Y: 20, Width: 100, Height: 50,
		Label: &Label{ID: "lb1", Text: "ATP", Position: Point{X: 60, Y: 45}},
		Children: []Element{
			&Node{ID: "port1", X: 110, Y: 45, Width: 0, Height: 0},
		},
	}

	got := n.AsBuilder().Build()
	if !got.Equal(n) {
		t.Error("thaw and refreeze should preserve structural equality")
	}
	if got.ID != "n1" || got.Label.ID != "lb1" || got.Children[0].ElementID() != "port1" {
		t.Error("ids should survive the round trip")
	}
}

func TestArcRoundTrip(t *testing.T) {
	a := &Arc{
		ID:     "a1",
		Points: []Point{{X: 0, Y: 0}, {X: 50, Y: 50}},
		Children: []Element{
			&Node{ID: "card", X: 20, Y: 20, Width: 16, Height: 14,
				Label: &Label{Text: "2"}},
		},
	}

	got := a.AsBuilder().Build()
	if !got.Equal(a) {
		t.Error("thaw and refreeze should preserve structural equality")
	}
}

func TestArcBuilderSetEndpoints(t *testing.T) {
	b := &ArcBuilder{}
	b.SetStart(Point{X: 1, Y: 1})
	if len(b.Points) != 1 {
		t.Fatalf("points = %d, want 1 after SetStart on empty arc", len(b.Points))
	}

	b.Points = []Point{{X: 0, Y: 0}, {X: 5, Y: 5}, {X: 10, Y: 10}}
	b.SetStart(Point{X: 2, Y: 2})
	b.SetEnd(Point{X: 8, Y: 8})
	if b.Points[0] != (Point{X: 2, Y: 2}) {
		t.Errorf("start = %v, want (2, 2)", b.Points[0])
	}
	if b.Points[1] != (Point{X: 5, Y: 5}) {
		t.Error("bend points must be left alone")
	}
	if b.Points[2] != (Point{X: 8, Y: 8}) {
		t.Errorf("end = %v, want (8, 8)", b.Points[2])
	}
}

func TestNodeBuilderAddElement(t *testing.T) {
	b := &NodeBuilder{ID: "n1"}

	if err := b.AddElement(&LabelBuilder{Text: "first"}); err != nil {
		t.Fatalf("AddElement label: %v", err)
	}
	if b.Label == nil || b.Label.Text != "first" {
		t.Fatal("first label should fill the Label field")
	}

	// A second label becomes a child glyph.
	if err := b.AddElement(&LabelBuilder{Text: "second"}); err != nil {
		t.Fatalf("AddElement second label: %v", err)
	}
	if err := b.AddElement(&NodeBuilder{ID: "child"}); err != nil {
		t.Fatalf("AddElement child node: %v", err)
	}
	if len(b.Children) != 2 {
		t.Errorf("children = %d, want 2", len(b.Children))
	}

	if err := b.AddElement("nope"); !errors.Is(err, ErrUnsupportedElement) {
		t.Errorf("err = %v, want ErrUnsupportedElement", err)
	}
}

func TestLayoutBuilderWalk(t *testing.T) {
	lb := &LayoutBuilder{Width: 400, Height: 300}
	parent := &NodeBuilder{ID: "a", Children: []ElementBuilder{&NodeBuilder{ID: "a1"}}}
	if err := lb.AddElement(parent); err != nil {
		t.Fatalf("AddElement: %v", err)
	}
	if err := lb.AddElement(&ArcBuilder{ID: "b"}); err != nil {
		t.Fatalf("AddElement: %v", err)
	}

	var order []string
	lb.Walk(func(e ElementBuilder) bool {
		order = append(order, e.ElementID())
		return true
	})
	want := []string{"a", "a1", "b"}
	if len(order) != len(want) {
		t.Fatalf("visited %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("visited %v, want %v", order, want)
		}
	}

	l := lb.Build()
	if l.Width != 400 || l.Height != 300 || len(l.Elements) != 2 {
		t.Error("Build should carry frame size and top-level elements")
	}
}

func TestBuilderOfDispatch(t *testing.T) {
	if _, ok := BuilderOf(&Node{}).(*NodeBuilder); !ok {
		t.Error("BuilderOf(*Node) should be a *NodeBuilder")
	}
	if _, ok := BuilderOf(&Arc{}).(*ArcBuilder); !ok {
		t.Error("BuilderOf(*Arc) should be an *ArcBuilder")
	}
	if _, ok := BuilderOf(&Label{}).(*LabelBuilder); !ok {
		t.Error("BuilderOf(*Label) should be a *LabelBuilder")
	}
}
