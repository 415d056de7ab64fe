// Package sbgnml defines the SBGN-ML 0.2 wire format and shared
// read/write scaffolding for the flavor-specific adapters in pd and af.
//
// The types here are plain XML-shaped structs. Translating them into the
// core's model/layout/mapping aggregate is the adapters' job; this
// package knows nothing about the core.
package sbgnml

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
)

// Namespace is the SBGN-ML 0.2 XML namespace.
const Namespace = "http://sbgn.org/libsbgn/0.2"

// Language attribute values for the map flavors this module handles.
const (
	LanguagePD = "process description"
	LanguageAF = "activity flow"
)

// File is the root <sbgn> document.
type File struct {
	XMLName xml.Name `xml:"sbgn"`
	Xmlns   string   `xml:"xmlns,attr,omitempty"`
	Maps    []Map    `xml:"map"`
}

// Map is one <map> of a given language.
type Map struct {
	ID       string  `xml:"id,attr,omitempty"`
	Language string  `xml:"language,attr"`
	Glyphs   []Glyph `xml:"glyph"`
	Arcs     []Arc   `xml:"arc"`
}

// Glyph is a node-shaped element: entity pools, processes, compartments,
// operators, and their nested auxiliary glyphs.
type Glyph struct {
	ID             string  `xml:"id,attr"`
	Class          string  `xml:"class,attr"`
	CompartmentRef string  `xml:"compartmentRef,attr,omitempty"`
	Orientation    string  `xml:"orientation,attr,omitempty"`
	Label          *Label  `xml:"label"`
	State          *State  `xml:"state"`
	BBox           *BBox   `xml:"bbox"`
	Glyphs         []Glyph `xml:"glyph"`
	Ports          []Port  `xml:"port"`
}

// Label carries a glyph's display text.
type Label struct {
	Text string `xml:"text,attr"`
}

// State carries a state variable's value/variable pair.
type State struct {
	Value    string `xml:"value,attr,omitempty"`
	Variable string `xml:"variable,attr,omitempty"`
}

// BBox is a glyph bounding box, top-left anchored.
type BBox struct {
	X float64 `xml:"x,attr"`
	Y float64 `xml:"y,attr"`
	W float64 `xml:"w,attr"`
	H float64 `xml:"h,attr"`
}

// Port is an arc attachment point owned by a glyph.
type Port struct {
	ID string  `xml:"id,attr"`
	X  float64 `xml:"x,attr"`
	Y  float64 `xml:"y,attr"`
}

// Arc is an edge-shaped element. Source and Target reference glyph or
// port ids; the polyline is start, bend points, end.
type Arc struct {
	ID     string  `xml:"id,attr"`
	Class  string  `xml:"class,attr"`
	Source string  `xml:"source,attr"`
	Target string  `xml:"target,attr"`
	Start  Coord   `xml:"start"`
	Next   []Coord `xml:"next"`
	End    Coord   `xml:"end"`
	Glyphs []Glyph `xml:"glyph"`
}

// Coord is a polyline point in arc elements.
type Coord struct {
	X float64 `xml:"x,attr"`
	Y float64 `xml:"y,attr"`
}

// Read decodes an SBGN-ML document from r.
func Read(r io.Reader) (*File, error) {
	var f File
	if err := xml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode sbgnml: %w", err)
	}
	return &f, nil
}

// ReadFile decodes the SBGN-ML document at path.
func ReadFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// Write encodes the document to w with an XML header and two-space
// indentation, matching what the reference tooling emits.
func Write(f *File, w io.Writer) error {
	if f.Xmlns == "" {
		f.Xmlns = Namespace
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encode sbgnml: %w", err)
	}
	return enc.Close()
}

// WriteFile encodes the document to a file at path.
func WriteFile(f *File, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer out.Close()
	return Write(f, out)
}

// Language returns the language of the document's first map, or an empty
// string for a document with no maps.
func (f *File) Language() string {
	if len(f.Maps) == 0 {
		return ""
	}
	return f.Maps[0].Language
}
