package layout

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/sbgntools/sbgnmap/pkg/core/builder"
)

// ErrUnsupportedElement is returned by AddElement when the given value
// matches none of the target builder's container fields.
var ErrUnsupportedElement = errors.New("unsupported layout element type")

// ElementBuilder is the mutable counterpart of [Element]. Every layout
// builder implements it, so container fields that hold mixed element kinds
// stay polymorphic across both forms.
type ElementBuilder interface {
	builder.Builder
	ElementID() string
	SetElementID(id string)
	BuildElement() Element
}

// BuilderOf wraps a frozen layout element in its builder form.
func BuilderOf(e Element) ElementBuilder {
	switch v := e.(type) {
	case *Node:
		return v.AsBuilder()
	case *Arc:
		return v.AsBuilder()
	case *Label:
		return v.AsBuilder()
	default:
		panic(fmt.Sprintf("layout: no builder for element type %T", e))
	}
}

func buildChildren(in []ElementBuilder) []Element {
	if in == nil {
		return nil
	}
	out := make([]Element, len(in))
	for i, b := range in {
		out[i] = b.BuildElement()
	}
	return out
}

func childBuilders(in []Element) []ElementBuilder {
	return builder.FromSlice(in, BuilderOf)
}

// =============================================================================
// NodeBuilder
// =============================================================================

// NodeBuilder is the mutable counterpart of [Node].
type NodeBuilder struct {
	ID       string
	X, Y     float64
	Width    float64
	Height   float64
	Label    *LabelBuilder
	Children []ElementBuilder
}

// AsBuilder wraps the node in builder form, recursively wrapping its label
// and children.
func (n *Node) AsBuilder() *NodeBuilder {
	b := &NodeBuilder{
		ID:       n.ID,
		X:        n.X,
		Y:        n.Y,
		Width:    n.Width,
		Height:   n.Height,
		Children: childBuilders(n.Children),
	}
	if n.Label != nil {
		b.Label = n.Label.AsBuilder()
	}
	return b
}

// Build freezes the builder into an immutable node.
func (b *NodeBuilder) Build() *Node {
	n := &Node{
		ID:       b.ID,
		X:        b.X,
		Y:        b.Y,
		Width:    b.Width,
		Height:   b.Height,
		Children: buildChildren(b.Children),
	}
	if b.Label != nil {
		n.Label = b.Label.Build()
	}
	return n
}

func (b *NodeBuilder) BuildObject() any          { return b.Build() }
func (b *NodeBuilder) BuildElement() Element     { return b.Build() }
func (b *NodeBuilder) RecordType() reflect.Type  { return reflect.TypeOf((*Node)(nil)) }
func (b *NodeBuilder) ElementID() string         { return b.ID }
func (b *NodeBuilder) SetElementID(id string)    { b.ID = id }
func (b *NodeBuilder) ChildElements() []Element  { return buildChildren(b.Children) }

// Center returns the node's center point.
func (b *NodeBuilder) Center() Point { return rectCenter(b.X, b.Y, b.Width, b.Height) }

// BorderPoint returns the border crossing toward p, as [Node.BorderPoint].
func (b *NodeBuilder) BorderPoint(p Point) Point {
	return borderPoint(b.X, b.Y, b.Width, b.Height, p)
}

// Bounds returns the node's bounding box as (minX, minY, maxX, maxY).
func (b *NodeBuilder) Bounds() (float64, float64, float64, float64) {
	return b.X, b.Y, b.X + b.Width, b.Y + b.Height
}

// AddElement attaches a child builder. Labels set the node's Label field
// when it is still empty; everything implementing [ElementBuilder] is
// appended to Children. Other values fail with [ErrUnsupportedElement].
func (b *NodeBuilder) AddElement(x any) error {
	switch v := x.(type) {
	case *LabelBuilder:
		if b.Label == nil {
			b.Label = v
			return nil
		}
		b.Children = append(b.Children, v)
		return nil
	case ElementBuilder:
		b.Children = append(b.Children, v)
		return nil
	default:
		return fmt.Errorf("%w: %T on NodeBuilder", ErrUnsupportedElement, x)
	}
}

// =============================================================================
// ArcBuilder
// =============================================================================

// ArcBuilder is the mutable counterpart of [Arc].
type ArcBuilder struct {
	ID       string
	Points   []Point
	Children []ElementBuilder
}

// AsBuilder wraps the arc in builder form.
func (a *Arc) AsBuilder() *ArcBuilder {
	return &ArcBuilder{
		ID:       a.ID,
		Points:   append([]Point(nil), a.Points...),
		Children: childBuilders(a.Children),
	}
}

// Build freezes the builder into an immutable arc.
func (b *ArcBuilder) Build() *Arc {
	return &Arc{
		ID:       b.ID,
		Points:   append([]Point(nil), b.Points...),
		Children: buildChildren(b.Children),
	}
}

func (b *ArcBuilder) BuildObject() any         { return b.Build() }
func (b *ArcBuilder) BuildElement() Element    { return b.Build() }
func (b *ArcBuilder) RecordType() reflect.Type { return reflect.TypeOf((*Arc)(nil)) }
func (b *ArcBuilder) ElementID() string        { return b.ID }
func (b *ArcBuilder) SetElementID(id string)   { b.ID = id }
func (b *ArcBuilder) ChildElements() []Element { return buildChildren(b.Children) }

// Start returns the first polyline point, or the zero point when empty.
func (b *ArcBuilder) Start() Point {
	if len(b.Points) == 0 {
		return Point{}
	}
	return b.Points[0]
}

// End returns the last polyline point, or the zero point when empty.
func (b *ArcBuilder) End() Point {
	if len(b.Points) == 0 {
		return Point{}
	}
	return b.Points[len(b.Points)-1]
}

// SetStart replaces the first polyline point, appending when empty.
func (b *ArcBuilder) SetStart(p Point) {
	if len(b.Points) == 0 {
		b.Points = []Point{p}
		return
	}
	b.Points[0] = p
}

// SetEnd replaces the last polyline point, appending when empty.
func (b *ArcBuilder) SetEnd(p Point) {
	if len(b.Points) == 0 {
		b.Points = []Point{p}
		return
	}
	b.Points[len(b.Points)-1] = p
}

// AddElement attaches a child sub-glyph builder.
func (b *ArcBuilder) AddElement(x any) error {
	if v, ok := x.(ElementBuilder); ok {
		b.Children = append(b.Children, v)
		return nil
	}
	return fmt.Errorf("%w: %T on ArcBuilder", ErrUnsupportedElement, x)
}

// =============================================================================
// LabelBuilder
// =============================================================================

// LabelBuilder is the mutable counterpart of [Label].
type LabelBuilder struct {
	ID       string
	Text     string
	Position Point
}

// AsBuilder wraps the label in builder form.
func (l *Label) AsBuilder() *LabelBuilder {
	return &LabelBuilder{ID: l.ID, Text: l.Text, Position: l.Position}
}

// Build freezes the builder into an immutable label.
func (b *LabelBuilder) Build() *Label {
	return &Label{ID: b.ID, Text: b.Text, Position: b.Position}
}

func (b *LabelBuilder) BuildObject() any         { return b.Build() }
func (b *LabelBuilder) BuildElement() Element    { return b.Build() }
func (b *LabelBuilder) RecordType() reflect.Type { return reflect.TypeOf((*Label)(nil)) }
func (b *LabelBuilder) ElementID() string        { return b.ID }
func (b *LabelBuilder) SetElementID(id string)   { b.ID = id }
func (b *LabelBuilder) ChildElements() []Element { return nil }

// =============================================================================
// LayoutBuilder
// =============================================================================

// LayoutBuilder is the mutable counterpart of [Layout].
type LayoutBuilder struct {
	Width    float64
	Height   float64
	Elements []ElementBuilder
}

// AsBuilder wraps the layout in builder form.
func (l *Layout) AsBuilder() *LayoutBuilder {
	return &LayoutBuilder{
		Width:    l.Width,
		Height:   l.Height,
		Elements: childBuilders(l.Elements),
	}
}

// Build freezes the builder into an immutable layout.
func (b *LayoutBuilder) Build() *Layout {
	return &Layout{
		Width:    b.Width,
		Height:   b.Height,
		Elements: buildChildren(b.Elements),
	}
}

func (b *LayoutBuilder) BuildObject() any         { return b.Build() }
func (b *LayoutBuilder) RecordType() reflect.Type { return reflect.TypeOf((*Layout)(nil)) }

// AddElement appends a top-level element builder.
func (b *LayoutBuilder) AddElement(x any) error {
	if v, ok := x.(ElementBuilder); ok {
		b.Elements = append(b.Elements, v)
		return nil
	}
	return fmt.Errorf("%w: %T on LayoutBuilder", ErrUnsupportedElement, x)
}

// Walk visits every element builder in depth-first order, parents first.
func (b *LayoutBuilder) Walk(fn func(ElementBuilder) bool) {
	var visit func([]ElementBuilder) bool
	visit = func(els []ElementBuilder) bool {
		for _, e := range els {
			if !fn(e) {
				return false
			}
			switch v := e.(type) {
			case *NodeBuilder:
				if !visit(v.Children) {
					return false
				}
			case *ArcBuilder:
				if !visit(v.Children) {
					return false
				}
			}
		}
		return true
	}
	visit(b.Elements)
}

func init() {
	builder.MustRegister(builder.Registration{
		Record:     reflect.TypeOf((*Node)(nil)),
		Builder:    reflect.TypeOf((*NodeBuilder)(nil)),
		New:        func() builder.Builder { return &NodeBuilder{} },
		FromObject: func(x any) builder.Builder { return x.(*Node).AsBuilder() },
	})
	builder.MustRegister(builder.Registration{
		Record:     reflect.TypeOf((*Arc)(nil)),
		Builder:    reflect.TypeOf((*ArcBuilder)(nil)),
		New:        func() builder.Builder { return &ArcBuilder{} },
		FromObject: func(x any) builder.Builder { return x.(*Arc).AsBuilder() },
	})
	builder.MustRegister(builder.Registration{
		Record:     reflect.TypeOf((*Label)(nil)),
		Builder:    reflect.TypeOf((*LabelBuilder)(nil)),
		New:        func() builder.Builder { return &LabelBuilder{} },
		FromObject: func(x any) builder.Builder { return x.(*Label).AsBuilder() },
	})
	builder.MustRegister(builder.Registration{
		Record:     reflect.TypeOf((*Layout)(nil)),
		Builder:    reflect.TypeOf((*LayoutBuilder)(nil)),
		New:        func() builder.Builder { return &LayoutBuilder{} },
		FromObject: func(x any) builder.Builder { return x.(*Layout).AsBuilder() },
	})
}
