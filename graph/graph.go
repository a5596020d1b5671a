// seehuhn.de/go/terrain - path graphs and border rasterisation for terrain
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package graph implements the spatial path graph: nodes, the edges
// between them, connections made of edges, and the [WorldGraph] which
// indexes all of these by position.
//
// Nodes are compared by identity.  Every node, edge and connection
// belongs to at most one WorldGraph.
package graph

import "errors"

var (
	// ErrDuplicateNode is returned when a node would share its id or its
	// exact position with a node already stored in the graph.
	ErrDuplicateNode = errors.New("duplicate node")

	// ErrDuplicateConnection is returned when a connection is stored twice
	// under the same reference.
	ErrDuplicateConnection = errors.New("duplicate connection")

	// ErrNotContiguous is returned when an edge does not start where the
	// connection currently ends.
	ErrNotContiguous = errors.New("edge is not contiguous with connection")

	// ErrNodeRemoved is returned when a node which was removed from its
	// graph is changed in a way which would need the graph.
	ErrNodeRemoved = errors.New("node was removed from its graph")

	// ErrUnknownNode is returned when a persisted graph refers to a node
	// which is not part of it.
	ErrUnknownNode = errors.New("unknown node")
)
