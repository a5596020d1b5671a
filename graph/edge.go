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
	"sync"

	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/terrain/curve"
	"seehuhn.de/go/terrain/geometry"
)

// Edge is a directed segment of a connection between two nodes.
type Edge struct {
	source      *Node
	destination *Node
	curve       *curve.Bezier
	widths      [2]float64

	previous   *Edge
	next       *Edge
	connection *Connection

	// transient edges only exist as the reversal of a stored edge and
	// are never recorded in the nodes.
	transient bool

	mu       sync.Mutex // guards reversed
	reversed *Edge
}

// NewEdge returns a new edge from source to destination.  The widths
// apply at source and destination.  If c is nil, the edge is straight.
func NewEdge(source, destination *Node, widths [2]float64, c *curve.Bezier) *Edge {
	if c == nil {
		c = curve.Straight(source.position, destination.position)
	}
	return &Edge{
		source:      source,
		destination: destination,
		curve:       c,
		widths:      widths,
	}
}

// Source returns the start node.
func (e *Edge) Source() *Node {
	return e.source
}

// Destination returns the end node.
func (e *Edge) Destination() *Node {
	return e.destination
}

// Nodes returns source and destination.
func (e *Edge) Nodes() [2]*Node {
	return [2]*Node{e.source, e.destination}
}

// Other returns the node at the other end of the edge.
func (e *Edge) Other(n *Node) *Node {
	if n == e.source {
		return e.destination
	}
	return e.source
}

// Curve returns the Bézier curve of the edge.
func (e *Edge) Curve() *curve.Bezier {
	return e.curve
}

// Widths returns the width at the source and at the destination.
func (e *Edge) Widths() [2]float64 {
	return e.widths
}

// WidthMax returns the larger of the two widths.
func (e *Edge) WidthMax() float64 {
	return max(e.widths[0], e.widths[1])
}

// InterpolatedWidth returns the width at the curve parameter t.
func (e *Edge) InterpolatedWidth(t float64) float64 {
	return geometry.Lerp(e.widths[0], e.widths[1], t)
}

// Length returns the arc length of the edge.
func (e *Edge) Length() float64 {
	return e.curve.Length()
}

// Chord returns the vector from source to destination.
func (e *Edge) Chord() geometry.Vec3 {
	return e.destination.position.Sub(e.source.position)
}

// StraightSlopeDegrees returns the inclination of the chord in degrees.
func (e *Edge) StraightSlopeDegrees() float64 {
	return 90 - geometry.Angle(geometry.Up, e.Chord())
}

// Previous returns the preceding edge of the connection, or nil.
func (e *Edge) Previous() *Edge {
	return e.previous
}

// Next returns the following edge of the connection, or nil.
func (e *Edge) Next() *Edge {
	return e.next
}

// Connection returns the connection the edge belongs to.
func (e *Edge) Connection() *Connection {
	return e.connection
}

// IsTransient reports whether the edge is the reversal of a stored edge.
func (e *Edge) IsTransient() bool {
	return e.transient
}

// IsSecondary reports whether the edge joins a crossing to one of the
// perimeter nodes of that crossing.
func (e *Edge) IsSecondary() bool {
	s, d := e.source, e.destination
	if !s.Type().IsCrossing() && !d.Type().IsCrossing() {
		return false
	}
	if !s.belongsToNode(d) && !d.belongsToNode(s) {
		return false
	}
	return s.Type().Base != Custom && d.Type().Base != Custom
}

// Inside reports whether either end of the edge lies inside r.
func (e *Edge) Inside(r rect.Rect) bool {
	return geometry.Contains(r, e.source.PositionXZ()) ||
		geometry.Contains(r, e.destination.PositionXZ())
}

// FullInside reports whether both ends of the edge lie inside r or on
// its boundary.
func (e *Edge) FullInside(r rect.Rect) bool {
	return geometry.HasBorder(r, e.source.PositionXZ()) &&
		geometry.HasBorder(r, e.destination.PositionXZ())
}

// Reversed returns the edge traversed in the opposite direction.  The
// reversed edge is built once and then cached.  Reversing it again gives
// back e.  If e belongs to a connection, the reversed edge belongs to the
// reversed connection and is linked to its neighbours there.
func (e *Edge) Reversed() *Edge {
	if c := e.connection; c != nil && !e.transient {
		c.Reversed()
	}
	return e.twin(nil)
}

// twin returns the reversed edge, building it on first use.  If conn is
// not nil, the reversed edge is attached to it.
func (e *Edge) twin(conn *Connection) *Edge {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.reversed == nil {
		r := &Edge{
			source:      e.destination,
			destination: e.source,
			curve:       e.curve.Reversed(),
			widths:      [2]float64{e.widths[1], e.widths[0]},
			transient:   true,
			reversed:    e,
		}
		e.reversed = r
	}
	if conn != nil {
		e.reversed.connection = conn
	}
	return e.reversed
}

func (e *Edge) cachedTwin() *Edge {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reversed
}

// SetWidths changes the widths of the edge and of its reversal.
func (e *Edge) SetWidths(widths [2]float64) {
	e.widths = widths
	if r := e.cachedTwin(); r != nil {
		r.widths = [2]float64{widths[1], widths[0]}
	}
}

// SetNext links the edge to the following edge.
func (e *Edge) SetNext(next *Edge) {
	e.next = next
	if r := e.cachedTwin(); r != nil {
		r.previous = twinOf(next)
	}
}

// SetPrevious links the edge to the preceding edge.
func (e *Edge) SetPrevious(previous *Edge) {
	e.previous = previous
	if r := e.cachedTwin(); r != nil {
		r.next = twinOf(previous)
	}
}

// SetConnection attaches the edge to a connection.
func (e *Edge) SetConnection(c *Connection) {
	e.connection = c
}

func twinOf(e *Edge) *Edge {
	if e == nil {
		return nil
	}
	return e.twin(nil)
}

// IntermediatePoint is a sample along an edge, produced by
// [Edge.WalkBezier].
type IntermediatePoint struct {
	Position    geometry.Vec3
	Width       float64
	Length      float64 // arc length from the edge source
	TotalLength float64 // arc length of the edge
	Part        int
	Parts       int
}

// WalkBezier samples the edge at equal arc length steps.  The number of
// steps is the edge length times resolution, but at least one.  The
// callback is called with each pair of consecutive samples.
func (e *Edge) WalkBezier(resolution float64, fn func(last, next IntermediatePoint)) {
	total := e.curve.Length()
	parts := max(int(total*resolution), 1)
	step := total / float64(parts)

	last := IntermediatePoint{
		Position:    e.source.position,
		Width:       e.widths[0],
		TotalLength: total,
		Parts:       parts,
	}
	dist := 0.0
	for i := 1; i <= parts; i++ {
		dist += step
		t := e.curve.FindT(dist, total)
		p := IntermediatePoint{
			Position:    e.curve.Position(t),
			Width:       e.InterpolatedWidth(t),
			Length:      dist,
			TotalLength: total,
			Part:        i,
			Parts:       parts,
		}
		fn(last, p)
		last = p
	}
}

// SlopeResolution returns a sampling resolution modifier in [1, 2] which
// grows with the inclination of the edge.
func (e *Edge) SlopeResolution() float64 {
	s := e.StraightSlopeDegrees() / 10
	return min(max(s*s, 1), 2)
}

func (e *Edge) String() string {
	return fmt.Sprintf("{%s -> %s}", e.source, e.destination)
}
