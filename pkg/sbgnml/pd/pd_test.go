package pd

import (
	"strings"
	"testing"

	"github.com/sbgntools/sbgnmap/pkg/core/mapping"
	"github.com/sbgntools/sbgnmap/pkg/core/model"
	"github.com/sbgntools/sbgnmap/pkg/core/sbgn"
	"github.com/sbgntools/sbgnmap/pkg/errors"
	"github.com/sbgntools/sbgnmap/pkg/sbgnml"
)

// A small reaction drawn twice over: the cytosol compartment and the ATP
// pool each appear as two glyphs and must collapse to single model
// elements with two rendering loci.
const reactionDoc = `<?xml version="1.0" encoding="UTF-8"?>
<sbgn xmlns="http://sbgn.org/libsbgn/0.2">
  <map id="map1" language="process description">
    <glyph id="c1" class="compartment">
      <label text="cytosol"/>
      <bbox x="0" y="0" w="400" h="300"/>
    </glyph>
    <glyph id="c2" class="compartment">
      <label text="cytosol"/>
      <bbox x="400" y="0" w="300" h="300"/>
    </glyph>
    <glyph id="g1" class="macromolecule" compartmentRef="c1">
      <label text="ERK"/>
      <bbox x="50" y="50" w="100" h="50"/>
      <glyph id="sv1" class="state variable">
        <state variable="P"/>
        <bbox x="70" y="44" w="30" h="12"/>
      </glyph>
    </glyph>
    <glyph id="g2" class="simple chemical" compartmentRef="c1">
      <label text="ATP"/>
      <bbox x="50" y="150" w="80" h="40"/>
    </glyph>
    <glyph id="g3" class="simple chemical" compartmentRef="c2">
      <label text="ATP"/>
      <bbox x="450" y="150" w="80" h="40"/>
    </glyph>
    <glyph id="p1" class="process">
      <bbox x="250" y="100" w="20" h="20"/>
      <port id="p1.1" x="245" y="110"/>
      <port id="p1.2" x="275" y="110"/>
    </glyph>
    <arc id="a1" class="consumption" source="g2" target="p1.1">
      <glyph id="a1.card" class="cardinality">
        <label text="2"/>
      </glyph>
      <start x="130" y="170"/>
      <end x="245" y="110"/>
    </arc>
    <arc id="a2" class="production" source="p1.2" target="g1">
      <start x="275" y="110"/>
      <end x="150" y="75"/>
    </arc>
    <arc id="a3" class="catalysis" source="g1" target="p1">
      <start x="100" y="100"/>
      <end x="260" y="100"/>
    </arc>
  </map>
</sbgn>`

func readDoc(t *testing.T, doc string) *sbgn.Map {
	t.Helper()
	f, err := sbgnml.Read(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	m, err := Read(f)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	return m
}

func TestReadDeduplicatesCompartments(t *testing.T) {
	m := readDoc(t, reactionDoc)

	if len(m.Model.Compartments) != 1 {
		t.Fatalf("compartments = %d, want 1", len(m.Model.Compartments))
	}
	comp := m.Model.Compartments[0]
	if comp.Label != "cytosol" {
		t.Errorf("label = %q, want cytosol", comp.Label)
	}
	if comp.ID != "c1" {
		t.Errorf("survivor id = %q, want c1 by tie-break", comp.ID)
	}

	refs, err := m.Mapping.GetLayout(mapping.SimpleKey(comp))
	if err != nil {
		t.Fatalf("GetLayout: %v", err)
	}
	if len(refs) != 2 {
		t.Errorf("compartment loci = %d, want 2", len(refs))
	}
}

func TestReadDeduplicatesPools(t *testing.T) {
	m := readDoc(t, reactionDoc)

	if len(m.Model.EntityPools) != 2 {
		t.Fatalf("pools = %d, want 2", len(m.Model.EntityPools))
	}

	var atp, erk *model.EntityPool
	for _, p := range m.Model.EntityPools {
		switch p.Label {
		case "ATP":
			atp = p
		case "ERK":
			erk = p
		}
	}
	if atp == nil || erk == nil {
		t.Fatal("expected ATP and ERK pools")
	}

	if atp.ID != "g2" {
		t.Errorf("ATP survivor id = %q, want g2 by tie-break", atp.ID)
	}
	refs, err := m.Mapping.GetLayout(mapping.SimpleKey(atp))
	if err != nil {
		t.Fatalf("GetLayout(ATP): %v", err)
	}
	if len(refs) != 2 {
		t.Errorf("ATP loci = %d, want 2", len(refs))
	}

	if erk.Compartment == nil || erk.Compartment.Label != "cytosol" {
		t.Error("ERK should sit in the cytosol")
	}
	if len(erk.StateVariables) != 1 || erk.StateVariables[0].Variable != "P" {
		t.Errorf("ERK state variables = %+v", erk.StateVariables)
	}
}

func TestReadProcessAndArcs(t *testing.T) {
	m := readDoc(t, reactionDoc)

	if len(m.Model.Processes) != 1 {
		t.Fatalf("processes = %d, want 1", len(m.Model.Processes))
	}
	proc := m.Model.Processes[0]
	if proc.Kind != model.ProcessGeneric {
		t.Errorf("kind = %q", proc.Kind)
	}

	if len(proc.Reactants) != 1 || len(proc.Products) != 1 {
		t.Fatalf("reactants/products = %d/%d, want 1/1", len(proc.Reactants), len(proc.Products))
	}
	reac := proc.Reactants[0]
	if reac.Element.Label != "ATP" {
		t.Errorf("reactant = %q, want ATP", reac.Element.Label)
	}
	if reac.Stoichiometry != 2 {
		t.Errorf("stoichiometry = %d, want 2", reac.Stoichiometry)
	}
	if proc.Products[0].Element.Label != "ERK" {
		t.Errorf("product = %q, want ERK", proc.Products[0].Element.Label)
	}

	// The ported process is an anchored composite; its key resolves to
	// the body glyph alone.
	refs, err := m.Mapping.GetLayout(mapping.SimpleKey(proc))
	if err != nil {
		t.Fatalf("GetLayout(process): %v", err)
	}
	if len(refs) != 1 || refs[0].ElementID() != "p1" {
		t.Errorf("process loci = %v, want just p1", refs)
	}

	if len(m.Model.Modulations) != 1 {
		t.Fatalf("modulations = %d, want 1", len(m.Model.Modulations))
	}
	mo := m.Model.Modulations[0]
	if mo.Kind != model.ModulationCatalysis {
		t.Errorf("modulation kind = %q", mo.Kind)
	}
	src, ok := mo.Source.(*model.EntityPool)
	if !ok || src.Label != "ERK" {
		t.Errorf("modulation source = %#v, want the ERK pool", mo.Source)
	}
}

func TestWriteReaction(t *testing.T) {
	m := readDoc(t, reactionDoc)

	f, err := Write(m)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(f.Maps) != 1 || f.Maps[0].Language != sbgnml.LanguagePD {
		t.Fatal("expected one process description map")
	}
	out := f.Maps[0]

	classCount := map[string]int{}
	for _, g := range out.Glyphs {
		classCount[g.Class]++
	}
	if classCount["compartment"] != 2 {
		t.Errorf("compartment glyphs = %d, want both loci", classCount["compartment"])
	}
	if classCount["simple chemical"] != 2 {
		t.Errorf("simple chemical glyphs = %d, want both loci", classCount["simple chemical"])
	}
	if classCount["macromolecule"] != 1 || classCount["process"] != 1 {
		t.Errorf("glyph classes = %v", classCount)
	}

	byID := map[string]sbgnml.Glyph{}
	for _, g := range out.Glyphs {
		byID[g.ID] = g
	}

	// Both ATP loci point at the surviving compartment locus.
	if byID["g2"].CompartmentRef != "c1" || byID["g3"].CompartmentRef != "c1" {
		t.Errorf("compartment refs = %q/%q, want c1/c1",
			byID["g2"].CompartmentRef, byID["g3"].CompartmentRef)
	}
	if got := byID["p1"]; len(got.Ports) != 2 {
		t.Errorf("process ports = %d, want 2", len(got.Ports))
	}
	if erk := byID["g1"]; len(erk.Glyphs) != 1 || erk.Glyphs[0].Class != "state variable" {
		t.Errorf("ERK aux glyphs = %+v", erk.Glyphs)
	}

	arcByClass := map[string]sbgnml.Arc{}
	for _, a := range out.Arcs {
		arcByClass[a.Class] = a
	}
	cons := arcByClass["consumption"]
	if cons.Source != "g2" || cons.Target != "p1.1" {
		t.Errorf("consumption %q -> %q, want g2 -> p1.1", cons.Source, cons.Target)
	}
	if len(cons.Glyphs) != 1 || cons.Glyphs[0].Class != "cardinality" ||
		cons.Glyphs[0].Label == nil || cons.Glyphs[0].Label.Text != "2" {
		t.Errorf("cardinality glyph = %+v", cons.Glyphs)
	}
	prod := arcByClass["production"]
	if prod.Source != "p1.2" || prod.Target != "g1" {
		t.Errorf("production %q -> %q, want p1.2 -> g1", prod.Source, prod.Target)
	}
	cat := arcByClass["catalysis"]
	if cat.Source != "g1" || cat.Target != "p1" {
		t.Errorf("catalysis %q -> %q, want g1 -> p1", cat.Source, cat.Target)
	}
}

func TestReadWriteReadStable(t *testing.T) {
	m := readDoc(t, reactionDoc)

	f, err := Write(m)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	m2, err := Read(f)
	if err != nil {
		t.Fatalf("re-Read: %v", err)
	}

	if m2.Flavor != m.Flavor {
		t.Errorf("flavor = %q, want %q", m2.Flavor, m.Flavor)
	}
	if !m2.Model.Equal(m.Model) {
		t.Error("model should be stable across a write/read cycle")
	}
	if !m2.Layout.Equal(m.Layout) {
		t.Error("layout should be stable across a write/read cycle")
	}
}

const logicDoc = `<?xml version="1.0" encoding="UTF-8"?>
<sbgn xmlns="http://sbgn.org/libsbgn/0.2">
  <map id="map1" language="process description">
    <glyph id="b1" class="macromolecule">
      <label text="ERK"/>
      <bbox x="0" y="0" w="100" h="50"/>
    </glyph>
    <glyph id="b2" class="macromolecule">
      <label text="MEK"/>
      <bbox x="0" y="100" w="100" h="50"/>
    </glyph>
    <glyph id="and1" class="and">
      <bbox x="180" y="60" w="30" h="30"/>
      <port id="and1.1" x="215" y="75"/>
    </glyph>
    <glyph id="pr1" class="process">
      <bbox x="300" y="65" w="20" h="20"/>
    </glyph>
    <arc id="la1" class="logic arc" source="b1" target="and1">
      <start x="100" y="25"/>
      <end x="180" y="70"/>
    </arc>
    <arc id="la2" class="logic arc" source="b2" target="and1">
      <start x="100" y="125"/>
      <end x="180" y="80"/>
    </arc>
    <arc id="s1" class="stimulation" source="and1.1" target="pr1">
      <start x="215" y="75"/>
      <end x="300" y="75"/>
    </arc>
  </map>
</sbgn>`

func TestReadLogicNetwork(t *testing.T) {
	m := readDoc(t, logicDoc)

	if len(m.Model.Operators) != 1 {
		t.Fatalf("operators = %d, want 1", len(m.Model.Operators))
	}
	op := m.Model.Operators[0]
	if op.Kind != model.OperatorAnd {
		t.Errorf("operator kind = %q", op.Kind)
	}
	if len(op.Inputs) != 2 {
		t.Fatalf("operator inputs = %d, want 2", len(op.Inputs))
	}

	if len(m.Model.Modulations) != 1 {
		t.Fatalf("modulations = %d, want 1", len(m.Model.Modulations))
	}
	mo := m.Model.Modulations[0]
	if mo.Kind != model.ModulationStimulation {
		t.Errorf("modulation kind = %q", mo.Kind)
	}
	if _, ok := mo.Source.(*model.LogicalOperator); !ok {
		t.Errorf("modulation source = %T, want the operator", mo.Source)
	}
}

func TestWriteLogicNetwork(t *testing.T) {
	m := readDoc(t, logicDoc)

	f, err := Write(m)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := f.Maps[0]

	var logicTargets []string
	var stim sbgnml.Arc
	for _, a := range out.Arcs {
		switch a.Class {
		case "logic arc":
			logicTargets = append(logicTargets, a.Target)
		case "stimulation":
			stim = a
		}
	}
	if len(logicTargets) != 2 || logicTargets[0] != "and1" || logicTargets[1] != "and1" {
		t.Errorf("logic arc targets = %v, want both and1", logicTargets)
	}
	if stim.Source != "and1" || stim.Target != "pr1" {
		t.Errorf("stimulation %q -> %q, want and1 -> pr1", stim.Source, stim.Target)
	}

	m2, err := Read(f)
	if err != nil {
		t.Fatalf("re-Read: %v", err)
	}
	if !m2.Model.Equal(m.Model) {
		t.Error("model should be stable across a write/read cycle")
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code errors.Code
	}{
		{
			"wrong language",
			`<sbgn xmlns="http://sbgn.org/libsbgn/0.2"><map language="activity flow"/></sbgn>`,
			errors.ErrCodeInvalidLanguage,
		},
		{
			"no maps",
			`<sbgn xmlns="http://sbgn.org/libsbgn/0.2"></sbgn>`,
			errors.ErrCodeInvalidSBGNML,
		},
		{
			"glyph without bbox",
			`<sbgn><map language="process description"><glyph id="g" class="macromolecule"/></map></sbgn>`,
			errors.ErrCodeInvalidSBGNML,
		},
		{
			"unknown glyph class",
			`<sbgn><map language="process description"><glyph id="g" class="banana"><bbox x="0" y="0" w="1" h="1"/></glyph></map></sbgn>`,
			errors.ErrCodeUnsupported,
		},
		{
			"arc to unknown pool",
			`<sbgn><map language="process description">
			  <glyph id="p" class="process"><bbox x="0" y="0" w="20" h="20"/></glyph>
			  <arc id="a" class="consumption" source="ghost" target="p"><start x="0" y="0"/><end x="1" y="1"/></arc>
			</map></sbgn>`,
			errors.ErrCodeInvalidSBGNML,
		},
		{
			"unknown compartment ref",
			`<sbgn><map language="process description">
			  <glyph id="g" class="macromolecule" compartmentRef="ghost"><bbox x="0" y="0" w="1" h="1"/></glyph>
			</map></sbgn>`,
			errors.ErrCodeInvalidSBGNML,
		},
		{
			"subunit nested in complex",
			`<sbgn><map language="process description">
			  <glyph id="cx1" class="complex"><bbox x="0" y="0" w="100" h="60"/>
			    <glyph id="mm1" class="macromolecule"><label text="sub"/><bbox x="10" y="10" w="40" h="20"/></glyph>
			  </glyph>
			</map></sbgn>`,
			errors.ErrCodeUnsupported,
		},
		{
			"state variable nested in compartment",
			`<sbgn><map language="process description">
			  <glyph id="c1" class="compartment"><bbox x="0" y="0" w="200" h="100"/>
			    <glyph id="sv1" class="state variable"><state variable="P"/><bbox x="10" y="0" w="20" h="10"/></glyph>
			  </glyph>
			</map></sbgn>`,
			errors.ErrCodeUnsupported,
		},
		{
			"glyph nested in process",
			`<sbgn><map language="process description">
			  <glyph id="p" class="process"><bbox x="0" y="0" w="20" h="20"/>
			    <glyph id="u1" class="unit of information"><label text="x"/><bbox x="0" y="0" w="10" h="10"/></glyph>
			  </glyph>
			</map></sbgn>`,
			errors.ErrCodeUnsupported,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := sbgnml.Read(strings.NewReader(tt.doc))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			_, err = Read(f)
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestWriteWrongFlavor(t *testing.T) {
	mb := sbgn.NewMapBuilder(sbgn.FlavorActivityFlow)
	m, err := mb.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := Write(m); !errors.Is(err, errors.ErrCodeInvalidLanguage) {
		t.Errorf("err = %v, want code %s", err, errors.ErrCodeInvalidLanguage)
	}
}
