// Package graph provides the in-memory graph model used by the layout engine.
//
// # Overview
//
// A [Graph] is an arena of nodes, ports and edges. Every entity is addressed
// by a dense integer identifier ([NodeID], [PortID], [EdgeID]) that stays
// valid for the lifetime of the graph; entities are never deleted. Relations
// between entities (port to owning node, edge to endpoint ports) are stored
// as identifiers rather than pointers, so layout stages can annotate the
// graph in place without aliasing hazards.
//
// # Ports
//
// Edges connect ports, not nodes. A node may declare any number of ports,
// each with a [Side] and an offset relative to the node's top-left corner.
// When an edge is connected by node name, the node's implicit input or
// output port is used; implicit ports are created on first use and let the
// engine choose their side and offset.
//
// # Layout Annotations
//
// Layout stages write the following fields, each at most once per stage:
//
//   - [Edge.Reversed]: set by cycle breaking
//   - [Node.Layer]: set by layer assignment
//   - [Node.Order]: set by crossing minimization
//   - [Node.Pos] and [Port.Offset]: set by node placement
//   - [Edge.Bends], [Edge.Start] and [Edge.End]: set by edge routing
//
// # Edge Crossings
//
// [CountCrossings] counts crossings between two adjacent layers given the
// endpoint positions of every segment, using a Fenwick tree to count
// inversions in O(E log V).
package graph
