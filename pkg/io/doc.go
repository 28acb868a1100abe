// Package io reads and writes graph descriptions and layout results as JSON.
//
// # Graph Format
//
// A graph description has two top-level arrays:
//
//	{
//	  "nodes": [
//	    {"id": "parse", "width": 80, "height": 30},
//	    {"id": "emit", "width": 80, "height": 30,
//	     "ports": [{"id": "emit.in", "side": "west", "x": 0, "y": 15}]}
//	  ],
//	  "edges": [
//	    {"id": "e1", "source": "parse", "target": "emit.in"}
//	  ]
//	}
//
// Node fields:
//   - id: unique name, required
//   - width, height: node extents; zero or negative sizes are clamped by layout
//   - ports: explicit ports with an optional side and an offset from the
//     node's top-left corner
//   - layer, order: preset layer and position within the layer, used by
//     fixed layering and fixed ordering
//   - x, y: a preset top-left position
//   - meta: freeform object carried through layout untouched
//
// An edge's source and target name either a port or a node. Naming a node
// attaches the edge to that node's implicit output or input port. Edge ids
// are optional and generated when omitted.
//
// Use [ReadGraph] and [WriteGraph] with any reader or writer, or
// [ImportGraph] and [ExportGraph] for files.
//
// # Results
//
// [WriteResult] encodes a [layout.Result] including positions, port sides
// and routes; [ReadResult] decodes one. [ImportResult] turns a result back
// into a graph whose layers, orders, positions and ports are all preset, so
// that laying it out again with [layout.Options.FixedLayout] reproduces the
// same drawing.
package io
