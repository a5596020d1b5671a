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

package graph

import (
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/terrain/geometry"
)

// Node is a point feature of the graph.
type Node struct {
	id        uuid.UUID
	position  geometry.Vec3
	radius    float64
	belongsTo uuid.UUID // weak reference, resolved through the graph

	mu          sync.Mutex // guards the fields below
	typ         NodeType
	graph       *WorldGraph
	removed     bool // set once the node was removed from graph
	edges       []*Edge
	connections []*Connection
	data        map[string]string
}

// NewNode returns a new node with a random id.
func NewNode(position geometry.Vec3, radius float64, typ NodeType) *Node {
	return NewNodeWithID(uuid.New(), position, radius, typ)
}

// NewNodeWithID returns a new node with the given id.
func NewNodeWithID(id uuid.UUID, position geometry.Vec3, radius float64, typ NodeType) *Node {
	return &Node{
		id:       id,
		position: position,
		radius:   radius,
		typ:      typ,
	}
}

// FindValidPosition rounds the ground plane coordinates of p to integers.
// Unless typ is a border type, coordinates on a multiple of terrainSize
// are moved by one unit so that the node never lies on a region seam.
func FindValidPosition(p geometry.Vec3, typ NodeType, terrainSize int) geometry.Vec3 {
	x := int(math.Round(p.X))
	z := int(math.Round(p.Z))
	if !typ.IsBorder() && terrainSize > 0 {
		if x%terrainSize == 0 {
			x++
		}
		if z%terrainSize == 0 {
			z++
		}
	}
	return geometry.Vec3{X: float64(x), Y: p.Y, Z: float64(z)}
}

// ID returns the id of the node.
func (n *Node) ID() uuid.UUID {
	return n.id
}

// Position returns the position of the node.
func (n *Node) Position() geometry.Vec3 {
	return n.position
}

// PositionXZ returns the ground plane position of the node.
func (n *Node) PositionXZ() vec.Vec2 {
	return n.position.XZ()
}

// Radius returns the radius of the area around the node.
func (n *Node) Radius() float64 {
	return n.radius
}

// Type returns the type of the node.
func (n *Node) Type() NodeType {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.typ
}

// SetType changes the type of the node.  If the node is stored in a
// graph, it is re-indexed under the new type in one step.  Nodes which
// were removed from their graph cannot change type; the result is then
// [ErrNodeRemoved].
func (n *Node) SetType(typ NodeType) error {
	n.mu.Lock()
	g, removed := n.graph, n.removed
	if g == nil && !removed {
		n.typ = typ
		n.mu.Unlock()
		return nil
	}
	n.mu.Unlock()

	if g == nil {
		return fmt.Errorf("node %s: %w", n, ErrNodeRemoved)
	}
	return g.retype(n, typ)
}

// owner returns the graph n is stored in, or nil.
func (n *Node) owner() *WorldGraph {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.graph
}

// attach records that n is stored in g, or was removed from it if g is
// nil.
func (n *Node) attach(g *WorldGraph) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.graph = g
	n.removed = g == nil
}

// BelongsTo returns the id of the node this node belongs to, or
// [uuid.Nil].  Use [WorldGraph.BelongsTo] to resolve it.
func (n *Node) BelongsTo() uuid.UUID {
	return n.belongsTo
}

// SetBelongsTo records that n belongs to owner.  A nil owner clears the
// reference.
func (n *Node) SetBelongsTo(owner *Node) {
	if owner == nil {
		n.belongsTo = uuid.Nil
		return
	}
	n.belongsTo = owner.id
}

// belongsToNode reports whether n belongs to other.
func (n *Node) belongsToNode(other *Node) bool {
	return other != nil && n.belongsTo != uuid.Nil && n.belongsTo == other.id
}

// IsEndpointOrCrossing reports whether connections may start or end at n.
func (n *Node) IsEndpointOrCrossing() bool {
	t := n.Type()
	return t.IsEndpoint() || t.IsCrossing()
}

// PerimeterType returns the type of the perimeter nodes around n.
func (n *Node) PerimeterType() NodeType {
	return n.Type().PerimeterType()
}

// PerimeterNodes returns the perimeter nodes which belong to n.
// The node must be stored in a graph.
func (n *Node) PerimeterNodes() []*Node {
	g := n.owner()
	if g == nil {
		return nil
	}
	cand := g.NodesInRange(n.PositionXZ(), n.radius+1, n.PerimeterType())
	return lo.Filter(cand, func(p *Node, _ int) bool {
		return p.belongsToNode(n)
	})
}

// IsRelevantForRect reports whether n or its area intersects r.
func (n *Node) IsRelevantForRect(r rect.Rect) bool {
	if geometry.Contains(r, n.PositionXZ()) {
		return true
	}
	area := geometry.Rect(n.position.X-n.radius, n.position.Z-n.radius, 2*n.radius, 2*n.radius)
	return geometry.Overlaps(r, area)
}

// StraightDistanceTo returns the Euclidean distance between n and other.
func (n *Node) StraightDistanceTo(other *Node) float64 {
	return n.position.Distance(other.position)
}

// Seed returns a deterministic seed derived from position, radius and
// type of the node.
func (n *Node) Seed() int32 {
	seed := int32(341625275)
	seed *= int32(math.Abs(n.position.X) + 377)
	seed *= int32(math.Abs(n.position.Y) + 377)
	seed *= int32(math.Abs(n.position.Z) + 377)
	seed *= int32(n.radius + 377)
	t := n.Type()
	seed *= int32(t.Base) + 377
	for _, c := range t.Custom {
		seed *= int32(c)
	}
	return seed
}

// Edges returns the stored edges incident to n.
func (n *Node) Edges() []*Edge {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.edges)
}

// addEdge records an incident edge.  Transient edges are ignored.
func (n *Node) addEdge(e *Edge) {
	if e.transient {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if !slices.Contains(n.edges, e) {
		n.edges = append(n.edges, e)
	}
}

// addConnection records an incident connection.  Transient connections
// are ignored.
func (n *Node) addConnection(c *Connection) {
	if c.transient {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if !slices.Contains(n.connections, c) {
		n.connections = append(n.connections, c)
	}
}

func (n *Node) storedConnections() []*Connection {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.connections)
}

// Connections returns the connections arriving at or leaving from n, in
// the direction in which they pass through n.
func (n *Node) Connections() []*Connection {
	var res []*Connection
	for _, c := range n.storedConnections() {
		res = append(res, c.DirectedIncomingTo(n)...)
		for _, out := range c.DirectedOutgoingFrom(n) {
			if !slices.Contains(res, out) {
				res = append(res, out)
			}
		}
	}
	return res
}

// ConnectionsIn returns the connections arriving at n.
func (n *Node) ConnectionsIn() []*Connection {
	return lo.FlatMap(n.storedConnections(), func(c *Connection, _ int) []*Connection {
		return c.DirectedIncomingTo(n)
	})
}

// ConnectionsOut returns the connections leaving from n.
func (n *Node) ConnectionsOut() []*Connection {
	return lo.FlatMap(n.storedConnections(), func(c *Connection, _ int) []*Connection {
		return c.DirectedOutgoingFrom(n)
	})
}

// HasDirectConnectionTo reports whether a stored connection through n
// also reaches other, without passing another endpoint.
func (n *Node) HasDirectConnectionTo(other *Node) bool {
	if n.owner() != other.owner() {
		return false
	}
	t := other.Type()
	return lo.SomeBy(n.storedConnections(), func(c *Connection) bool {
		switch {
		case t.IsEndpoint():
			return c.Source() == other || c.Destination() == other
		case t.IsCrossing():
			return slices.Contains(c.IntermediateCrossings(), other)
		default:
			return slices.Contains(c.Nodes(), other)
		}
	})
}

// DataRiverDirection is the data key under which ford nodes keep the
// direction of the river they cross, as a JSON encoded [geometry.Vec3].
const DataRiverDirection = "riverDirection"

// SetData stores a value in the data bag of the node.
func (n *Node) SetData(key, value string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.data == nil {
		n.data = make(map[string]string)
	}
	n.data[key] = value
}

// Data returns a value from the data bag of the node.
func (n *Node) Data(key string) (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	v, ok := n.data[key]
	return v, ok
}

// HasData reports whether the data bag contains key.
func (n *Node) HasData(key string) bool {
	_, ok := n.Data(key)
	return ok
}

// RemoveData deletes a value from the data bag of the node.
func (n *Node) RemoveData(key string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.data, key)
}

func (n *Node) dataCopy() map[string]string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.data) == 0 {
		return nil
	}
	res := make(map[string]string, len(n.data))
	for k, v := range n.data {
		res[k] = v
	}
	return res
}

func (n *Node) String() string {
	return fmt.Sprintf("{%s %v %s r=%g}", shortID(n.id), n.position, n.Type(), n.radius)
}

// shortID abbreviates an id for log messages.
func shortID(id uuid.UUID) string {
	s := id.String()
	return s[:3] + ".." + s[len(s)-3:]
}
