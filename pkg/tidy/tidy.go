// Package tidy provides geometric cleanup passes over a map's layout:
// fitting compartment boxes around their member glyphs and clipping arc
// endpoints to node borders.
//
// Every pass comes in two forms. The builder form mutates the given
// MapBuilder in place. The frozen form thaws the map, runs the builder
// form, and freezes again, so callers get back the same form they gave.
package tidy

import (
	"github.com/sbgntools/sbgnmap/pkg/core/layout"
	"github.com/sbgntools/sbgnmap/pkg/core/model"
	"github.com/sbgntools/sbgnmap/pkg/core/sbgn"
)

// Layout tuning constants. Sizes are in layout units (points).
const (
	compartmentPadding = 20.0
	labelCharWidth     = 7.0
	labelHeight        = 16.0
	labelPadding       = 10.0
)

// Tidy fits compartments around their contents and grows nodes to fit
// their labels, returning a new frozen map.
func Tidy(m *sbgn.Map) (*sbgn.Map, error) {
	mb, err := m.AsBuilder()
	if err != nil {
		return nil, err
	}
	TidyBuilder(mb)
	return mb.Build()
}

// TidyBuilder is the in-place form of [Tidy].
func TidyBuilder(mb *sbgn.MapBuilder) {
	growToLabels(mb)
	fitCompartments(mb)
	resize(mb)
}

// SetArcsToBorders clips every arc's endpoints to the border of the node
// it touches, returning a new frozen map.
func SetArcsToBorders(m *sbgn.Map) (*sbgn.Map, error) {
	mb, err := m.AsBuilder()
	if err != nil {
		return nil, err
	}
	SetArcsToBordersBuilder(mb)
	return mb.Build()
}

// SetArcsToBordersBuilder is the in-place form of [SetArcsToBorders].
func SetArcsToBordersBuilder(mb *sbgn.MapBuilder) {
	var nodes []*layout.NodeBuilder
	mb.Layout.Walk(func(e layout.ElementBuilder) bool {
		if n, ok := e.(*layout.NodeBuilder); ok {
			nodes = append(nodes, n)
		}
		return true
	})

	// The smallest box containing the point wins, so an endpoint inside a
	// pool nested in a compartment clips to the pool, not the compartment.
	clip := func(p, toward layout.Point) layout.Point {
		var best *layout.NodeBuilder
		for _, n := range nodes {
			minX, minY, maxX, maxY := n.Bounds()
			if p.X < minX || p.X > maxX || p.Y < minY || p.Y > maxY {
				continue
			}
			if best == nil || n.Width*n.Height < best.Width*best.Height {
				best = n
			}
		}
		if best == nil || best.Width == 0 || best.Height == 0 {
			return p
		}
		return best.BorderPoint(toward)
	}

	mb.Layout.Walk(func(e layout.ElementBuilder) bool {
		a, ok := e.(*layout.ArcBuilder)
		if !ok || len(a.Points) < 2 {
			return true
		}
		a.SetStart(clip(a.Start(), a.Points[1]))
		a.SetEnd(clip(a.End(), a.Points[len(a.Points)-2]))
		return true
	})
}

// growToLabels widens any node narrower than its label text.
func growToLabels(mb *sbgn.MapBuilder) {
	mb.Layout.Walk(func(e layout.ElementBuilder) bool {
		n, ok := e.(*layout.NodeBuilder)
		if !ok || n.Label == nil || n.Label.Text == "" {
			return true
		}
		want := float64(len(n.Label.Text))*labelCharWidth + labelPadding
		if n.Width < want {
			n.X -= (want - n.Width) / 2
			n.Width = want
		}
		if n.Height < labelHeight {
			n.Y -= (labelHeight - n.Height) / 2
			n.Height = labelHeight
		}
		n.Label.Position = n.Center()
		return true
	})
}

// fitCompartments expands each compartment box to cover the members
// assigned to it, with padding. A member belongs to the compartment
// locus whose box contains its center; when the compartment is drawn
// once, all its members count.
func fitCompartments(mb *sbgn.MapBuilder) {
	type memberSet struct {
		loci    []*layout.NodeBuilder
		members []*layout.NodeBuilder
	}
	byComp := make(map[string]*memberSet)

	set := func(id string) *memberSet {
		s, ok := byComp[id]
		if !ok {
			s = &memberSet{}
			byComp[id] = s
		}
		return s
	}

	for _, el := range mb.Layout.Elements {
		n, ok := el.(*layout.NodeBuilder)
		if !ok {
			continue
		}
		key, err := mb.GetMapping(n)
		if err != nil {
			continue
		}
		switch me := key.Element.(type) {
		case *model.CompartmentBuilder:
			s := set(me.ID)
			s.loci = append(s.loci, n)
		case *model.EntityPoolBuilder:
			if me.Compartment != nil {
				s := set(me.Compartment.ID)
				s.members = append(s.members, n)
			}
		case *model.ActivityBuilder:
			if me.Compartment != nil {
				s := set(me.Compartment.ID)
				s.members = append(s.members, n)
			}
		}
	}

	for _, s := range byComp {
		for _, locus := range s.loci {
			minX, minY, maxX, maxY := locus.Bounds()
			grown := false
			for _, m := range s.members {
				c := m.Center()
				inside := c.X >= minX && c.X <= maxX && c.Y >= minY && c.Y <= maxY
				if !inside && len(s.loci) > 1 {
					continue
				}
				mx0, my0, mx1, my1 := m.Bounds()
				if mx0-compartmentPadding < minX {
					minX = mx0 - compartmentPadding
				}
				if my0-compartmentPadding < minY {
					minY = my0 - compartmentPadding
				}
				if mx1+compartmentPadding > maxX {
					maxX = mx1 + compartmentPadding
				}
				if my1+compartmentPadding > maxY {
					maxY = my1 + compartmentPadding
				}
				grown = true
			}
			if !grown {
				continue
			}
			locus.X, locus.Y = minX, minY
			locus.Width, locus.Height = maxX-minX, maxY-minY
			if locus.Label != nil {
				locus.Label.Position = layout.Point{X: locus.Center().X, Y: minY + labelHeight/2 + 2}
			}
		}
	}
}

// resize recomputes the canvas extent after geometry changed.
func resize(mb *sbgn.MapBuilder) {
	var w, h float64
	mb.Layout.Walk(func(e layout.ElementBuilder) bool {
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
	mb.Layout.Width, mb.Layout.Height = w, h
}
