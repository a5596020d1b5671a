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
	"encoding/binary"
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/terrain/curve"
	"seehuhn.de/go/terrain/geometry"
)

// Connection is a path of edges from a source node to a destination node.
//
// The edges are grouped into parts.  A new part starts at every crossing
// inside the connection.
type Connection struct {
	id        uuid.UUID
	typ       ConnectionType
	direction Direction

	source      *Node
	destination *Node
	parts       [][]*Edge
	widthMax    float64
	length      float64

	// transient connections have not been stored in a graph yet, or only
	// exist as the reversal of a stored connection.
	transient  bool
	isReversal bool

	mu       sync.Mutex // guards reversed
	reversed *Connection
}

// NewConnection returns a new, empty connection with a random id.
func NewConnection(typ ConnectionType, direction Direction) *Connection {
	return &Connection{
		id:        uuid.New(),
		typ:       typ,
		direction: direction,
		transient: true,
	}
}

// ID returns the id of the connection.  Reversed connections share the id
// of their original.
func (c *Connection) ID() uuid.UUID {
	return c.id
}

// Type returns the type of the connection.
func (c *Connection) Type() ConnectionType {
	return c.typ
}

// Direction returns the direction of the connection.
func (c *Connection) Direction() Direction {
	return c.direction
}

// Source returns the first node of the connection.
func (c *Connection) Source() *Node {
	return c.source
}

// Destination returns the last node of the connection.
func (c *Connection) Destination() *Node {
	return c.destination
}

// IsTransient reports whether the connection is not (yet) stored in a
// graph.
func (c *Connection) IsTransient() bool {
	return c.transient
}

// WidthMax returns the largest width of all edges.
func (c *Connection) WidthMax() float64 {
	return c.widthMax
}

// Length returns the sum of the arc lengths of all edges.
func (c *Connection) Length() float64 {
	return c.length
}

// LengthBetween returns the length of the connection between two of its
// nodes.  A nil node stands for the source or destination, respectively.
func (c *Connection) LengthBetween(source, destination *Node) float64 {
	if source == nil {
		source = c.source
	}
	if destination == nil {
		destination = c.destination
	}
	return lo.SumBy(c.EdgesBetween(source, destination, false), (*Edge).Length)
}

// AddEdge appends a new edge from source to destination.  The source must
// be the current destination of the connection.
func (c *Connection) AddEdge(source, destination *Node, widths [2]float64, b *curve.Bezier) (*Edge, error) {
	if len(c.parts) > 0 && c.destination != source {
		return nil, fmt.Errorf("connection %s: edge from %s: %w", shortID(c.id), source, ErrNotContiguous)
	}
	c.clearReversed()

	e := NewEdge(source, destination, widths, b)
	e.transient = c.transient
	c.storeEdge(e)
	return e, nil
}

func (c *Connection) clearReversed() {
	if c.isReversal {
		return
	}
	c.mu.Lock()
	c.reversed = nil
	c.mu.Unlock()
}

// storeEdge appends e, starting a new part if e leaves a crossing.
func (c *Connection) storeEdge(e *Edge) {
	if len(c.parts) == 0 {
		c.source = e.source
		c.parts = append(c.parts, nil)
	}
	c.destination = e.destination

	last := len(c.parts) - 1
	if n := len(c.parts[last]); n > 0 {
		link(c.parts[last][n-1], e)
		if e.source.Type().IsCrossing() {
			c.parts = append(c.parts, nil)
			last++
		}
	}
	c.parts[last] = append(c.parts[last], e)

	e.SetConnection(c)
	for _, n := range e.Nodes() {
		n.addEdge(e)
		n.addConnection(c)
	}
	c.widthMax = max(c.widthMax, e.WidthMax())
	c.length += e.Length()
}

func link(prev, next *Edge) {
	if prev.transient || next.transient {
		prev.next = next
		next.previous = prev
		return
	}
	prev.SetNext(next)
	next.SetPrevious(prev)
}

// Reversed returns the connection traversed from destination to source.
// The reversed connection is built once and cached until edges are added.
// Reversing it again gives back c.
func (c *Connection) Reversed() *Connection {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.reversed == nil {
		rc := &Connection{
			id:         c.id,
			typ:        c.typ,
			direction:  c.direction.Reversed(),
			transient:  true,
			isReversal: true,
			reversed:   c,
		}
		edges := c.Edges()
		for i := len(edges) - 1; i >= 0; i-- {
			r := edges[i].twin(rc)
			r.previous, r.next = nil, nil
			rc.storeEdge(r)
		}
		c.reversed = rc
	}
	return c.reversed
}

// Parts returns the edges of the connection grouped by parts.
func (c *Connection) Parts() [][]*Edge {
	res := make([][]*Edge, len(c.parts))
	for i, p := range c.parts {
		res[i] = slices.Clone(p)
	}
	return res
}

// Edges returns all edges in order.
func (c *Connection) Edges() []*Edge {
	return lo.Flatten(c.parts)
}

// EdgeCount returns the number of edges.
func (c *Connection) EdgeCount() int {
	return lo.SumBy(c.parts, func(p []*Edge) int { return len(p) })
}

// FirstEdge returns the first edge, or nil for an empty connection.
func (c *Connection) FirstEdge() *Edge {
	if len(c.parts) == 0 {
		return nil
	}
	return c.parts[0][0]
}

// LastEdge returns the last edge, or nil for an empty connection.
func (c *Connection) LastEdge() *Edge {
	if len(c.parts) == 0 {
		return nil
	}
	p := c.parts[len(c.parts)-1]
	return p[len(p)-1]
}

// Nodes returns all nodes in order, from source to destination.
func (c *Connection) Nodes() []*Node {
	edges := c.Edges()
	if len(edges) == 0 {
		return nil
	}
	nodes := make([]*Node, 0, len(edges)+1)
	nodes = append(nodes, c.source)
	for _, e := range edges {
		nodes = append(nodes, e.destination)
	}
	return nodes
}

// IntermediateCrossings returns the crossings at which the parts meet.
func (c *Connection) IntermediateCrossings() []*Node {
	var res []*Node
	for _, p := range c.parts[min(1, len(c.parts)):] {
		res = append(res, p[0].source)
	}
	return res
}

// EdgesBetween returns the edges leading from source to destination.
// If source comes after destination, the edges of the reversed connection
// are returned.  Unless ignoreDirection is set, the direction of the
// connection must permit travel from source to destination.
func (c *Connection) EdgesBetween(source, destination *Node, ignoreDirection bool) []*Edge {
	if source == destination {
		return nil
	}
	nodes := c.Nodes()
	iSrc := slices.Index(nodes, source)
	iDst := slices.Index(nodes, destination)
	if iSrc < 0 || iDst < 0 {
		return nil
	}

	walk := c
	if iSrc > iDst {
		if c.direction == OneWayForward && !ignoreDirection {
			return nil
		}
		walk = c.Reversed()
	} else if c.direction == OneWayBackward && !ignoreDirection {
		return nil
	}

	var res []*Edge
	add := false
	for _, e := range walk.Edges() {
		if e.source == source {
			add = true
		}
		if add {
			res = append(res, e)
			if e.destination == destination {
				break
			}
		}
	}
	return res
}

// NodesBetween returns the nodes on the way from source to destination,
// both included.
func (c *Connection) NodesBetween(source, destination *Node, ignoreDirection bool) []*Node {
	res := []*Node{source}
	for _, e := range c.EdgesBetween(source, destination, ignoreDirection) {
		res = append(res, e.destination)
	}
	return res
}

// EdgesUntilEndpointOrCrossing returns the edges from source up to the
// next endpoint or crossing.
func (c *Connection) EdgesUntilEndpointOrCrossing(source *Node) []*Edge {
	var res []*Edge
	add := false
	for _, e := range c.Edges() {
		if e.source == source {
			add = true
		}
		if add {
			res = append(res, e)
			if e.destination.IsEndpointOrCrossing() {
				break
			}
		}
	}
	return res
}

// EdgeFrom returns the edge leaving source, or nil.
func (c *Connection) EdgeFrom(source *Node) *Edge {
	e, _ := lo.Find(c.Edges(), func(e *Edge) bool { return e.source == source })
	return e
}

// DirectedOutgoingFrom returns the connections which leave source: c
// itself, its reversal, or both.
func (c *Connection) DirectedOutgoingFrom(source *Node) []*Connection {
	switch c.direction {
	case OneWayForward:
		if source == c.destination {
			return nil
		}
		return []*Connection{c}
	case OneWayBackward:
		if source == c.source {
			return nil
		}
		return []*Connection{c.Reversed()}
	default:
		switch source {
		case c.source:
			return []*Connection{c}
		case c.destination:
			return []*Connection{c.Reversed()}
		}
		return []*Connection{c, c.Reversed()}
	}
}

// DirectedIncomingTo returns the connections which arrive at target: c
// itself, its reversal, or both.
func (c *Connection) DirectedIncomingTo(target *Node) []*Connection {
	switch c.direction {
	case OneWayForward:
		if target == c.source {
			return nil
		}
		return []*Connection{c}
	case OneWayBackward:
		if target == c.destination {
			return nil
		}
		return []*Connection{c.Reversed()}
	default:
		switch target {
		case c.destination:
			return []*Connection{c}
		case c.source:
			return []*Connection{c.Reversed()}
		}
		return []*Connection{c, c.Reversed()}
	}
}

// SplitAt starts a new part at the given node.  If the node is neither an
// endpoint nor a crossing, its type is changed to typ first.  Nothing
// happens if the node already starts or ends a part.
func (c *Connection) SplitAt(node *Node, typ NodeType) error {
	idx := slices.IndexFunc(c.parts, func(p []*Edge) bool {
		return lo.SomeBy(p, func(e *Edge) bool { return e.source == node || e.destination == node })
	})
	if idx < 0 {
		return fmt.Errorf("connection %s: split at %s: %w", shortID(c.id), node, ErrUnknownNode)
	}
	part := c.parts[idx]
	if node == part[0].source || node == part[len(part)-1].destination {
		return nil
	}
	c.clearReversed()

	if !node.IsEndpointOrCrossing() {
		if err := node.SetType(typ); err != nil {
			return err
		}
	}

	var first, second []*Edge
	for i, e := range part {
		if e.destination == node {
			first = part[:i+1:i+1]
			second = slices.Clone(part[i+1:])
			break
		}
	}
	c.parts[idx] = first
	c.parts = slices.Insert(c.parts, idx+1, second)
	return nil
}

// IsPrimary reports whether other connections branch off c, that is,
// whether c has more than one part.
func (c *Connection) IsPrimary() bool {
	return len(c.parts) > 1
}

// IsSecondary reports whether c starts or ends at a crossing.
func (c *Connection) IsSecondary() bool {
	if c.source == nil {
		return false
	}
	return c.source.Type().IsCrossing() || c.destination.Type().IsCrossing()
}

// StartsOrEndsWithCrossingOf reports whether c starts or ends at a crossing
// at which one of the parts of other starts or ends.
func (c *Connection) StartsOrEndsWithCrossingOf(other *Connection) bool {
	if c == other || !c.IsSecondary() {
		return false
	}
	for _, n := range []*Node{c.source, c.destination} {
		if !n.Type().IsCrossing() {
			continue
		}
		for _, p := range other.parts {
			if p[0].source == n || p[len(p)-1].destination == n {
				return true
			}
		}
	}
	return false
}

// EdgesForOffsets returns the edges with an end node in one of the given
// index cells.
func (c *Connection) EdgesForOffsets(offsets []Offset) []*Edge {
	set := make(map[Offset]bool, len(offsets))
	for _, o := range offsets {
		set[o] = true
	}
	return lo.Filter(c.Edges(), func(e *Edge, _ int) bool {
		return set[OffsetOf(e.source.PositionXZ(), OffsetResolution)] ||
			set[OffsetOf(e.destination.PositionXZ(), OffsetResolution)]
	})
}

// DivideIntoSubsections splits the connection into runs of consecutive
// edges which lie in r.
//
// By default, a run collects edges with at least one end inside r.  If
// fullInside is set, a run must start with an edge which lies completely
// inside r (boundary included) and leaves a border node or an endpoint,
// or a crossing if startAtCrossing is set.  Such a run ends at the first
// qualifying node inside r.
func (c *Connection) DivideIntoSubsections(r rect.Rect, fullInside, startAtCrossing bool) [][]*Edge {
	qualifies := func(n *Node) bool {
		return n.Type().IsBorder() || n.Type().IsEndpoint() || startAtCrossing && n.Type().IsCrossing()
	}
	ends := func(e *Edge) bool {
		return fullInside && qualifies(e.destination) && geometry.Contains(r, e.destination.PositionXZ())
	}

	edges := c.Edges()
	var res [][]*Edge
	for i := 0; i < len(edges); i++ {
		e := edges[i]
		var starts bool
		if fullInside {
			starts = e.FullInside(r) && qualifies(e.source)
		} else {
			starts = e.Inside(r)
		}
		if !starts {
			continue
		}

		run := []*Edge{e}
		if !ends(e) {
			for j := i + 1; j < len(edges); j++ {
				f := edges[j]
				if !f.Inside(r) {
					break
				}
				run = append(run, f)
				i = j
				if ends(f) {
					break
				}
			}
		}
		res = append(res, run)
	}
	return res
}

// Seed returns a deterministic seed derived from all nodes.
func (c *Connection) Seed() int32 {
	seed := int32(341625236)
	for _, n := range c.Nodes() {
		seed *= n.Seed()
	}
	return seed
}

// connectionNamespace is the name space for connection ids.
var connectionNamespace = uuid.MustParse("5b0f3c9e-7d1a-4f6e-9a57-2f8e61c0d4b3")

// stableID derives the id of a stored connection from its nodes.
func (c *Connection) stableID() uuid.UUID {
	nodes := c.Nodes()
	buf := make([]byte, 0, 4+24*len(nodes))
	buf = binary.BigEndian.AppendUint32(buf, uint32(c.Seed()))
	for _, n := range nodes {
		for _, v := range []float64{n.position.X, n.position.Y, n.position.Z} {
			buf = binary.BigEndian.AppendUint64(buf, math.Float64bits(v))
		}
	}
	return uuid.NewSHA1(connectionNamespace, buf)
}

// Optimized returns the form of c which is stored in a graph: one-way
// backward connections are turned around, and the connection gets an id
// derived from its nodes.
func (c *Connection) Optimized() *Connection {
	o, id := c.prepare()
	o.commit(id)
	return o
}

// prepare returns the connection which [Connection.Optimized] would
// return, together with its future id.  Neither c nor its edges are
// modified.
func (c *Connection) prepare() (*Connection, uuid.UUID) {
	o := c
	if c.direction == OneWayBackward {
		o = &Connection{typ: c.typ, direction: OneWayForward, transient: true}
		edges := c.Edges()
		for i := len(edges) - 1; i >= 0; i-- {
			e := edges[i]
			r := NewEdge(e.destination, e.source, [2]float64{e.widths[1], e.widths[0]}, e.curve.Reversed())
			r.transient = true
			o.storeEdge(r)
		}
	}
	return o, o.stableID()
}

// commit marks c and its edges as stored, under the given id.
func (c *Connection) commit(id uuid.UUID) {
	c.transient = false
	for _, e := range c.Edges() {
		e.transient = false
	}
	c.id = id
	c.clearReversed()
}

func (c *Connection) String() string {
	return fmt.Sprintf("%s %s -> %s: %d edges", shortID(c.id), c.source, c.destination, c.EdgeCount())
}
