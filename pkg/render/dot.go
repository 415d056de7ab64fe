// Package render turns a frozen map into Graphviz DOT and rasterized
// diagram formats. The DOT projection is semantic: one node per model
// element, edges from the model's relations, with Graphviz doing the
// layout. Styling comes from a TOML [Style] sheet.
package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/sbgntools/sbgnmap/pkg/core/model"
	"github.com/sbgntools/sbgnmap/pkg/core/sbgn"
	"github.com/sbgntools/sbgnmap/pkg/errors"
)

// ToDOT converts a map to Graphviz DOT. The resulting string renders
// with [RenderSVG], [RenderPNG], or [RenderPDF].
func ToDOT(m *sbgn.Map, style Style) string {
	var buf bytes.Buffer
	buf.WriteString("digraph sbgn {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", style.RankDir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	fmt.Fprintf(&buf, "  node [fontname=%q, fontsize=%d, style=filled];\n", style.Font, style.FontSize)
	fmt.Fprintf(&buf, "  edge [fontname=%q, fontsize=%d];\n", style.Font, style.FontSize)
	buf.WriteString("\n")

	for _, c := range m.Model.Compartments {
		writeNode(&buf, style, c.ID, c.Label, "compartment")
	}
	for _, p := range m.Model.EntityPools {
		writeNode(&buf, style, p.ID, poolLabel(p), string(p.Kind))
	}
	for _, p := range m.Model.Processes {
		writeNode(&buf, style, p.ID, processLabel(p), string(p.Kind))
	}
	for _, o := range m.Model.Operators {
		writeNode(&buf, style, o.ID, strings.ToUpper(string(o.Kind)), string(o.Kind))
	}
	for _, a := range m.Model.Activities {
		writeNode(&buf, style, a.ID, a.Label, string(a.Kind))
	}

	buf.WriteString("\n")
	for _, p := range m.Model.Processes {
		for _, r := range p.Reactants {
			writeEdge(&buf, r.Element.ID, p.ID, "none", edgeLabel(r))
		}
		for _, r := range p.Products {
			writeEdge(&buf, p.ID, r.Element.ID, "normal", edgeLabel(r))
		}
	}
	for _, mo := range m.Model.Modulations {
		writeEdge(&buf, mo.Source.ElementID(), mo.Target.ID, modulationHead(mo.Kind), "")
	}
	for _, o := range m.Model.Operators {
		for _, in := range o.Inputs {
			writeEdge(&buf, in.ElementID(), o.ID, "none", "")
		}
	}
	for _, i := range m.Model.Influences {
		writeEdge(&buf, i.Source.ElementID(), i.Target.ElementID(), influenceHead(i.Kind), "")
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeNode(buf *bytes.Buffer, style Style, id, label, class string) {
	g := style.forClass(class)
	fmt.Fprintf(buf, "  %q [label=%q, shape=%s, fillcolor=%q, color=%q, fontcolor=%q];\n",
		id, label, g.Shape, g.Fill, g.Stroke, g.FontColor)
}

func writeEdge(buf *bytes.Buffer, from, to, arrowhead, label string) {
	attrs := []string{fmt.Sprintf("arrowhead=%s", arrowhead)}
	if label != "" {
		attrs = append(attrs, fmt.Sprintf("label=%q", label))
	}
	fmt.Fprintf(buf, "  %q -> %q [%s];\n", from, to, strings.Join(attrs, ", "))
}

func poolLabel(p *model.EntityPool) string {
	if p.Kind == model.EntityEmptySet {
		return "∅"
	}
	label := p.Label
	for _, sv := range p.StateVariables {
		state := sv.Value
		if sv.Variable != "" {
			state = sv.Variable + ":" + sv.Value
		}
		label += "\n" + state
	}
	return label
}

func processLabel(p *model.Process) string {
	switch p.Kind {
	case model.ProcessOmitted:
		return "\\\\"
	case model.ProcessUncertain:
		return "?"
	case model.ProcessAssociation, model.ProcessDissociation:
		return ""
	}
	return p.Label
}

func edgeLabel(r *model.FluxRole) string {
	if r.Stoichiometry > 1 {
		return fmt.Sprintf("%d", r.Stoichiometry)
	}
	return ""
}

func modulationHead(k model.ModulationKind) string {
	switch k {
	case model.ModulationCatalysis:
		return "odot"
	case model.ModulationStimulation:
		return "onormal"
	case model.ModulationInhibition:
		return "tee"
	case model.ModulationNecessary:
		return "onormaltee"
	}
	return "diamond"
}

func influenceHead(k model.InfluenceKind) string {
	switch k {
	case model.InfluencePositive:
		return "onormal"
	case model.InfluenceNegative:
		return "tee"
	case model.InfluenceNecessary:
		return "onormaltee"
	}
	return "diamond"
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "render SVG")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
//
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return ToPNG(svg, scale)
}
