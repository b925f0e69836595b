// Package pkg provides the core libraries for dashgrid dashboard layouts.
//
// # Overview
//
// Dashgrid keeps dashboard widgets on grids. A free-form grid places widgets
// at explicit cells and pushes whatever is in the way right or down; a flow
// grid packs widgets in order along rows or columns. Both reject a placement
// that cannot fit and leave the grid exactly as it was. The pkg directory is
// organized into three areas:
//
//  1. [grid] - The placement engine (free-form and flow grids, snapshots)
//  2. [board] - Dashboards: targets, widget types, drags, layout import/export
//  3. Outer surfaces: [render], [pipeline], [store], [server]
//
// # Architecture
//
// The typical data flow through dashgrid:
//
//	board.toml + layout.json
//	         ↓
//	    [config] + [layout] packages (decode and validate)
//	         ↓
//	    [board] package (targets, widgets, drags)
//	         ↓
//	    [grid] package (collision and reflow)
//	         ↓
//	    [pipeline] → [render] (text, DOT, SVG, PDF, PNG)
//
// # Quick Start
//
// Place two widgets on a free-form grid:
//
//	g := grid.NewFree(grid.FreeConfig{MinRows: 1, MinColumns: 3, MaxColumns: 3})
//	a := grid.NewItem("a", grid.Rect{Width: 1, Height: 1})
//	b := grid.NewItem("b", grid.Rect{Width: 2, Height: 1})
//	g.TryPlace(a, grid.At(0, 0))
//	ok, _ := g.TryPlace(b, grid.At(0, 0)) // a is pushed to (2,0)
//
// Or work with a whole board:
//
//	b, _ := board.Load(config.Default(), layout.Layout{})
//	main, _ := b.Target("main")
//	main.Add(board.Spec{ID: "revenue", Type: "chart"})
//	layout.WriteFile("board.json", b.Export())
//
// # Main Packages
//
// [grid] - Free-form and flow grids behind one Grid interface. Free-form
// occupancy is a bitmask per row; displacement recurses along one axis per
// cascade. Flow grids keep an ordered entry list and reflow it on every
// mutation. Snapshots capture a grid for rollback and drag previews.
//
// [board] - Boards built from a configuration. Adds widget IDs, widget types
// with size limits, first-fit placement, transfers between targets, one drag
// session at a time and all-or-nothing layout import.
//
// [config] - TOML board configuration (targets and widget types).
//
// [layout] - The JSON shape of a saved board.
//
// [render] - Text, styled terminal text and Graphviz output.
//
// [pipeline] - Render orchestration with a content-addressed [cache].
//
// [store] - Board documents in files, Redis or MongoDB.
//
// [server] - JSON HTTP API over a store.
//
// [errors] - Coded errors shared by every layer.
//
// [observability] - Hooks for metrics and tracing.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/grid/...               # Specific package
//	go test -run Example ./pkg/grid      # Examples only
//	go test -tags integration ./pkg/...  # Include MongoDB tests
//
// [grid]: https://pkg.go.dev/github.com/matzehuels/dashgrid/pkg/grid
// [board]: https://pkg.go.dev/github.com/matzehuels/dashgrid/pkg/board
// [config]: https://pkg.go.dev/github.com/matzehuels/dashgrid/pkg/config
// [layout]: https://pkg.go.dev/github.com/matzehuels/dashgrid/pkg/layout
// [render]: https://pkg.go.dev/github.com/matzehuels/dashgrid/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/dashgrid/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/dashgrid/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/dashgrid/pkg/store
// [server]: https://pkg.go.dev/github.com/matzehuels/dashgrid/pkg/server
// [errors]: https://pkg.go.dev/github.com/matzehuels/dashgrid/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/dashgrid/pkg/observability
package pkg
