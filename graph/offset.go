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
	"cmp"
	"math"
	"slices"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/terrain/geometry"
)

// OffsetResolution is the side length of the spatial index cells.
const OffsetResolution = 64

// Offset identifies a cell of the spatial index by its lower left corner.
type Offset struct {
	X, Z int
}

// OffsetOf returns the offset of the cell of size res containing p.
func OffsetOf(p vec.Vec2, res int) Offset {
	return Offset{X: offsetValue(p.X, res), Z: offsetValue(p.Y, res)}
}

func offsetValue(v float64, res int) int {
	return int(math.Floor(v/float64(res))) * res
}

// Rect returns the area covered by the cell.
func (o Offset) Rect(res int) rect.Rect {
	return geometry.Rect(float64(o.X), float64(o.Z), float64(res), float64(res))
}

func compareOffsets(a, b Offset) int {
	if c := cmp.Compare(a.X, b.X); c != 0 {
		return c
	}
	return cmp.Compare(a.Z, b.Z)
}

// OffsetsForRect returns the offsets of all cells which intersect r.
// Cells which only touch the upper or right edge of r are excluded.
func OffsetsForRect(r rect.Rect, res int) []Offset {
	var offsets []Offset
	start := OffsetOf(vec.Vec2{X: r.LLx, Y: r.LLy}, res)
	for x := start.X; float64(x) < r.URx; x += res {
		for z := start.Z; float64(z) < r.URy; z += res {
			offsets = append(offsets, Offset{X: x, Z: z})
		}
	}
	return offsets
}

// OffsetsForRange returns the offsets of all cells which intersect the
// square of half-width radius around p.  Cells touching the square from
// above or from the right are included.
func OffsetsForRange(p vec.Vec2, radius float64, res int) []Offset {
	var offsets []Offset
	start := OffsetOf(vec.Vec2{X: p.X - radius, Y: p.Y - radius}, res)
	for x := start.X; float64(x) <= p.X+radius; x += res {
		for z := start.Z; float64(z) <= p.Y+radius; z += res {
			offsets = append(offsets, Offset{X: x, Z: z})
		}
	}
	return offsets
}

// OffsetsTouchedBetween returns the offsets of all cells crossed by the
// straight segment from a to b.
func OffsetsTouchedBetween(a, b vec.Vec2, res int) []Offset {
	start := OffsetOf(a, res)
	end := OffsetOf(b, res)
	if start == end {
		return []Offset{start}
	}

	bounds := rect.Rect{
		LLx: float64(min(start.X, end.X)),
		LLy: float64(min(start.Z, end.Z)),
		URx: float64(max(start.X, end.X) + res),
		URy: float64(max(start.Z, end.Z) + res),
	}
	var offsets []Offset
	for _, o := range OffsetsForRect(bounds, res) {
		if o == start || o == end {
			offsets = append(offsets, o)
			continue
		}
		if _, ok := geometry.BorderIntersection(a, b, o.Rect(res)); ok {
			offsets = append(offsets, o)
		}
	}
	return offsets
}

// EdgesByOffset maps index cells to the connections touching them.
type EdgesByOffset map[Offset][]*Connection

// Clone returns a copy of e.  The connection slices are copied, the
// connections themselves are shared.
func (e EdgesByOffset) Clone() EdgesByOffset {
	res := make(EdgesByOffset, len(e))
	for o, cc := range e {
		res[o] = slices.Clone(cc)
	}
	return res
}

// FilterForRect returns the connections touching the cells which
// intersect r, each connection once.  A secondary connection is placed
// after all connections which have a crossing it starts or ends at.
func (e EdgesByOffset) FilterForRect(r rect.Rect) []*Connection {
	offsets := OffsetsForRect(r, OffsetResolution)
	slices.SortFunc(offsets, compareOffsets)

	seen := make(map[*Connection]bool)
	var relevant []*Connection
	for _, o := range offsets {
		for _, c := range e[o] {
			if !seen[c] {
				seen[c] = true
				relevant = append(relevant, c)
			}
		}
	}

	sorted := make([]*Connection, 0, len(relevant))
	for _, c := range relevant {
		idx := 0
		for i, other := range sorted {
			if c.StartsOrEndsWithCrossingOf(other) {
				idx = i + 1
			}
		}
		sorted = slices.Insert(sorted, idx, c)
	}
	return sorted
}
