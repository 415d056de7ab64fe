// Package layout defines the immutable geometric side of an SBGN map:
// positioned nodes, polyline arcs, and text labels, arranged in an
// ownership tree under a single Layout root.
//
// Layout elements are frozen records with value equality. They are built
// through their builder counterparts (NodeBuilder, ArcBuilder, ...) and
// never mutated afterwards; layout-tidying code converts a frozen layout
// back to builder form, mutates, and freezes again.
//
// Geometry helpers (Center, BorderPoint, Bounds) are available identically
// on records and builders, so code that only reads geometry does not need
// to care which form it holds.
package layout

// Point is a position in user units (pixels in the usual SVG mapping).
type Point struct {
	X float64
	Y float64
}

// Element is implemented by every layout record: nodes, arcs, and labels.
// Equality is structural over all fields except the element id.
type Element interface {
	ElementID() string
	Equal(other Element) bool
	ChildElements() []Element
}

// Node is a rectangular glyph with an optional text label and owned child
// elements (auxiliary sub-glyphs, ports, nested nodes). X and Y locate the
// top-left corner.
type Node struct {
	ID       string
	X, Y     float64
	Width    float64
	Height   float64
	Label    *Label
	Children []Element
}

// ElementID returns the node's id.
func (n *Node) ElementID() string { return n.ID }

// ChildElements returns the node's owned child elements.
func (n *Node) ChildElements() []Element { return n.Children }

// Center returns the node's center point.
func (n *Node) Center() Point { return rectCenter(n.X, n.Y, n.Width, n.Height) }

// BorderPoint returns the point where the segment from the node's center
// toward p crosses the node's border. If p lies at the center, the center
// itself is returned.
func (n *Node) BorderPoint(p Point) Point {
	return borderPoint(n.X, n.Y, n.Width, n.Height, p)
}

// Bounds returns the node's bounding box as (minX, minY, maxX, maxY).
func (n *Node) Bounds() (float64, float64, float64, float64) {
	return n.X, n.Y, n.X + n.Width, n.Y + n.Height
}

// Equal reports structural equality with other, ignoring element ids.
func (n *Node) Equal(other Element) bool {
	o, ok := other.(*Node)
	if !ok || o == nil {
		return false
	}
	if n.X != o.X || n.Y != o.Y || n.Width != o.Width || n.Height != o.Height {
		return false
	}
	if !labelEqual(n.Label, o.Label) {
		return false
	}
	return elementsEqual(n.Children, o.Children)
}

// Arc is a polyline connecting two visual loci. Points holds the start
// point, any bend points, and the end point, in order. Children carries
// owned sub-glyphs such as stoichiometry cardinality boxes.
type Arc struct {
	ID       string
	Points   []Point
	Children []Element
}

// ElementID returns the arc's id.
func (a *Arc) ElementID() string { return a.ID }

// ChildElements returns the arc's owned child elements.
func (a *Arc) ChildElements() []Element { return a.Children }

// Start returns the first point of the polyline, or the zero point for an
// empty arc.
func (a *Arc) Start() Point {
	if len(a.Points) == 0 {
		return Point{}
	}
	return a.Points[0]
}

// End returns the last point of the polyline, or the zero point for an
// empty arc.
func (a *Arc) End() Point {
	if len(a.Points) == 0 {
		return Point{}
	}
	return a.Points[len(a.Points)-1]
}

// Equal reports structural equality with other, ignoring element ids.
func (a *Arc) Equal(other Element) bool {
	o, ok := other.(*Arc)
	if !ok || o == nil {
		return false
	}
	if len(a.Points) != len(o.Points) {
		return false
	}
	for i := range a.Points {
		if a.Points[i] != o.Points[i] {
			return false
		}
	}
	return elementsEqual(a.Children, o.Children)
}

// Label is a positioned piece of text owned by a node or arc.
type Label struct {
	ID       string
	Text     string
	Position Point
}

// ElementID returns the label's id.
func (l *Label) ElementID() string { return l.ID }

// ChildElements returns nil; labels own nothing.
func (l *Label) ChildElements() []Element { return nil }

// Equal reports structural equality with other, ignoring element ids.
func (l *Label) Equal(other Element) bool {
	o, ok := other.(*Label)
	if !ok || o == nil {
		return false
	}
	return l.Text == o.Text && l.Position == o.Position
}

// Layout is the root of the geometric tree: a frame size plus the
// top-level elements. Child elements are exclusively owned by their
// parents; the same element never appears under two parents.
type Layout struct {
	Width    float64
	Height   float64
	Elements []Element
}

// Equal reports structural equality with other.
func (l *Layout) Equal(other *Layout) bool {
	if other == nil {
		return false
	}
	if l.Width != other.Width || l.Height != other.Height {
		return false
	}
	return elementsEqual(l.Elements, other.Elements)
}

// Walk visits every element in the layout tree in depth-first order,
// parents before children. Walk stops early if fn returns false.
func (l *Layout) Walk(fn func(Element) bool) {
	var visit func([]Element) bool
	visit = func(els []Element) bool {
		for _, e := range els {
			if !fn(e) {
				return false
			}
			if !visit(e.ChildElements()) {
				return false
			}
		}
		return true
	}
	visit(l.Elements)
}

func labelEqual(a, b *Label) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

// elementsEqual compares two element collections as sets: same length and
// every element of a structurally matched by some element of b.
func elementsEqual(a, b []Element) bool {
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

// rectCenter returns the center of the rectangle at (x, y).
func rectCenter(x, y, w, h float64) Point {
	return Point{X: x + w/2, Y: y + h/2}
}

// borderPoint intersects the ray from the rectangle's center toward p with
// the rectangle border. Falls back to the center when p coincides with it.
func borderPoint(x, y, w, h float64, p Point) Point {
	c := rectCenter(x, y, w, h)
	dx := p.X - c.X
	dy := p.Y - c.Y
	if dx == 0 && dy == 0 {
		return c
	}

	// Scale the direction vector so the longer axis reaches the border.
	sx, sy := 2.0, 2.0 // effectively unbounded when the axis is unused
	if dx != 0 {
		sx = (w / 2) / abs(dx)
	}
	if dy != 0 {
		sy = (h / 2) / abs(dy)
	}
	s := sx
	if sy < s {
		s = sy
	}
	return Point{X: c.X + dx*s, Y: c.Y + dy*s}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
