package render

import (
	"github.com/BurntSushi/toml"

	"github.com/sbgntools/sbgnmap/pkg/errors"
)

// GlyphStyle holds the visual attributes for one glyph class. Empty
// fields fall back to the style's defaults.
type GlyphStyle struct {
	Shape     string `toml:"shape"`
	Fill      string `toml:"fill"`
	Stroke    string `toml:"stroke"`
	FontColor string `toml:"fontcolor"`
}

// Style is a rendering style sheet, loadable from TOML. Class keys use
// SBGN-ML class names ("macromolecule", "process", ...).
type Style struct {
	Font     string                `toml:"font"`
	FontSize int                   `toml:"fontsize"`
	RankDir  string                `toml:"rankdir"`
	Defaults GlyphStyle            `toml:"defaults"`
	Class    map[string]GlyphStyle `toml:"class"`
}

// DefaultStyle returns the built-in SBGN look.
func DefaultStyle() Style {
	return Style{
		Font:     "Helvetica",
		FontSize: 12,
		RankDir:  "TB",
		Defaults: GlyphStyle{Shape: "box", Fill: "white", Stroke: "black", FontColor: "black"},
		Class: map[string]GlyphStyle{
			"compartment":          {Shape: "folder", Fill: "#f5f5dc"},
			"macromolecule":        {Shape: "box", Fill: "#c9e7c0"},
			"simple chemical":      {Shape: "ellipse", Fill: "#f0e0a0"},
			"nucleic acid feature": {Shape: "box", Fill: "#d0d0f0"},
			"unspecified entity":   {Shape: "ellipse", Fill: "#eeeeee"},
			"complex":              {Shape: "octagon", Fill: "#d0e0f0"},
			"perturbing agent":     {Shape: "cds", Fill: "#f0c0c0"},
			"source and sink":      {Shape: "circle", Fill: "white"},
			"process":              {Shape: "square", Fill: "white"},
			"omitted process":      {Shape: "square", Fill: "white"},
			"uncertain process":    {Shape: "square", Fill: "white"},
			"association":          {Shape: "circle", Fill: "black", FontColor: "white"},
			"dissociation":         {Shape: "doublecircle", Fill: "white"},
			"and":                  {Shape: "circle"},
			"or":                   {Shape: "circle"},
			"not":                  {Shape: "circle"},
			"biological activity":  {Shape: "box", Fill: "#c9e7c0"},
			"phenotype":            {Shape: "hexagon", Fill: "#f0e0a0"},
		},
	}
}

// LoadStyle reads a TOML style sheet, layered over the defaults so a
// sheet only has to name what it changes.
func LoadStyle(path string) (Style, error) {
	s := DefaultStyle()
	if _, err := toml.DecodeFile(path, &s); err != nil {
		return Style{}, errors.Wrap(errors.ErrCodeInvalidStyle, err, "load style sheet %s", path)
	}
	return s, nil
}

// forClass resolves the effective style for a glyph class.
func (s Style) forClass(class string) GlyphStyle {
	g := s.Class[class]
	if g.Shape == "" {
		g.Shape = s.Defaults.Shape
	}
	if g.Fill == "" {
		g.Fill = s.Defaults.Fill
	}
	if g.Stroke == "" {
		g.Stroke = s.Defaults.Stroke
	}
	if g.FontColor == "" {
		g.FontColor = s.Defaults.FontColor
	}
	return g
}
