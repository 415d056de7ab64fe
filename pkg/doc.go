// Package pkg provides the core libraries for sbgnmap, a toolkit for
// Systems Biology Graphical Notation maps.
//
// # Overview
//
// sbgnmap parses SBGN-ML documents into a dual representation: a
// semantic model of what a diagram says and a geometric layout of how
// it says it, related by an explicit mapping table. The pkg directory
// is organized into five main areas:
//
//  1. [core] - Domain logic (model, layout, mapping, builders)
//  2. [sbgnml] - Wire format adapters (SBGN-ML readers and writers)
//  3. [tidy] - Layout cleanup passes
//  4. [render] - Diagram generation (DOT, SVG, PNG, PDF)
//  5. [pipeline] - Orchestration (read → tidy → render) with caching
//
// # Architecture
//
// The typical data flow through sbgnmap:
//
//	SBGN-ML document
//	         ↓
//	    [sbgnml/pd] or [sbgnml/af] (parse and deduplicate)
//	         ↓
//	    [core/sbgn] map aggregate (model + layout + mapping)
//	         ↓
//	    [tidy] package (optional geometric cleanup)
//	         ↓
//	    [render] package (Graphviz projection)
//	         ↓
//	    SVG/PNG/PDF/DOT output
//
// # Quick Start
//
// Read a map and render it:
//
//	import (
//	    "context"
//	    "os"
//	    "github.com/sbgntools/sbgnmap/pkg/pipeline"
//	)
//
//	input, _ := os.ReadFile("glycolysis.sbgn")
//	runner := pipeline.NewRunner(nil, nil)
//	result, _ := runner.Execute(context.Background(), pipeline.Options{
//	    Input:   input,
//	    Formats: []string{"svg"},
//	    Tidy:    true,
//	})
//	os.WriteFile("glycolysis.svg", result.Artifacts["svg"], 0644)
//
// # Main Packages
//
// ## Core Domain Logic
//
// [core/model] - Immutable semantic elements: compartments, entity
// pools, processes, logical operators, modulations, activities, and
// influences. Elements carry structural equality; equal duplicates
// collapse on insertion.
//
// [core/layout] - Immutable geometric elements: nodes with boxes and
// labels, arcs with point sequences. Flavor-agnostic.
//
// [core/mapping] - The bidirectional table relating layout elements to
// the model elements they render, with scoped keys for auxiliary units
// and anchored composites for multi-glyph elements.
//
// [core/builder] - The builder registry that backs generic element
// construction for both trees.
//
// [core/sbgn] - The map aggregate tying the three together, with
// freeze/thaw between builder and frozen form.
//
// ## Wire Format
//
// [sbgnml] - SBGN-ML 0.2 document types and XML codec.
//
// [sbgnml/pd] - Process description reader and writer.
//
// [sbgnml/af] - Activity flow reader and writer.
//
// ## Processing
//
// [tidy] - Layout cleanup: grow boxes to fit labels, fit compartments
// around members, clip arc endpoints to node borders.
//
// [render] - Graphviz-based diagram generation with TOML style sheets.
//
// [pipeline] - The read → tidy → render pipeline shared by the CLI and
// the HTTP server, with content-addressed artifact caching.
//
// ## Infrastructure
//
// [cache] - Artifact cache backends: file, Redis, and null.
//
// [store] - Map document persistence: memory and MongoDB.
//
// [errors] - Coded errors with user-facing messages.
//
// [observability] - Pluggable hooks for pipeline, cache, and store
// instrumentation.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...              # All tests
//	go test ./pkg/core/mapping/... # Specific package
//
// [core]: https://pkg.go.dev/github.com/sbgntools/sbgnmap/pkg/core
// [core/model]: https://pkg.go.dev/github.com/sbgntools/sbgnmap/pkg/core/model
// [core/layout]: https://pkg.go.dev/github.com/sbgntools/sbgnmap/pkg/core/layout
// [core/mapping]: https://pkg.go.dev/github.com/sbgntools/sbgnmap/pkg/core/mapping
// [core/builder]: https://pkg.go.dev/github.com/sbgntools/sbgnmap/pkg/core/builder
// [core/sbgn]: https://pkg.go.dev/github.com/sbgntools/sbgnmap/pkg/core/sbgn
// [sbgnml]: https://pkg.go.dev/github.com/sbgntools/sbgnmap/pkg/sbgnml
// [sbgnml/pd]: https://pkg.go.dev/github.com/sbgntools/sbgnmap/pkg/sbgnml/pd
// [sbgnml/af]: https://pkg.go.dev/github.com/sbgntools/sbgnmap/pkg/sbgnml/af
// [tidy]: https://pkg.go.dev/github.com/sbgntools/sbgnmap/pkg/tidy
// [render]: https://pkg.go.dev/github.com/sbgntools/sbgnmap/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/sbgntools/sbgnmap/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/sbgntools/sbgnmap/pkg/cache
// [store]: https://pkg.go.dev/github.com/sbgntools/sbgnmap/pkg/store
// [errors]: https://pkg.go.dev/github.com/sbgntools/sbgnmap/pkg/errors
// [observability]: https://pkg.go.dev/github.com/sbgntools/sbgnmap/pkg/observability
package pkg
