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

// Package raster scan converts closed outlines into per-cell coverage on a
// regular grid.
//
// Outlines are given in world coordinates as [path.Data].  The
// transformation matrix of a [Rasteriser] maps world coordinates to grid
// coordinates, where cell (x, y) covers the unit square [x, x+1)×[y, y+1).
// Coverage is the exact fraction of a cell's area inside the outline.
package raster

import (
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// Rule selects how overlapping parts of an outline are filled.
type Rule int

// These are the supported fill rules.
const (
	NonZero Rule = iota
	EvenOdd
)

// segment is a non-horizontal line segment in grid coordinates.
type segment struct {
	x0, y0 float64
	x1, y1 float64
	slope  float64 // (x1-x0)/(y1-y0)
}

func (s *segment) xAt(y float64) float64 {
	return s.x0 + s.slope*(y-s.y0)
}

func (s *segment) yRange() (float64, float64) {
	return min(s.y0, s.y1), max(s.y0, s.y1)
}

// Rasteriser computes cell coverage for outlines.
// Buffers are kept between calls, so that a Rasteriser used for many
// outlines reaches a steady state without allocations.
//
// A Rasteriser is not safe for concurrent use.
type Rasteriser struct {
	// CTM maps world coordinates to grid coordinates.
	// It must be non-singular.
	CTM matrix.Matrix

	// Clip is the part of the grid which receives coverage.
	// The corners must have integer coordinates.
	Clip rect.Rect

	// Flatness is the tolerance for approximating curves by line segments,
	// measured in cells.
	Flatness float64

	// Rule is the fill rule.
	Rule Rule

	// denseLimit is the largest bounding box area, in cells, for which the
	// whole box is accumulated at once.  Larger outlines are processed
	// row by row with an active segment list.
	denseLimit int

	segs   []segment
	bbox   box
	cover  []float32 // per cell change of the winding contribution
	area   []float32 // per cell partial contribution; cover is reused for output
	active []int
	rows   []bool // rows reached by a segment, for the dense approach
	splits []float64
}

type box struct {
	empty      bool
	xMin, xMax float64
	yMin, yMax float64
}

func (b *box) add(x, y float64) {
	if b.empty {
		*b = box{xMin: x, xMax: x, yMin: y, yMax: y}
		return
	}
	b.xMin = min(b.xMin, x)
	b.xMax = max(b.xMax, x)
	b.yMin = min(b.yMin, y)
	b.yMax = max(b.yMax, y)
}

// New returns a Rasteriser for the given clip rectangle, using the
// identity transformation.
func New(clip rect.Rect) *Rasteriser {
	r := &Rasteriser{denseLimit: denseLimit}
	r.Reset(clip)
	return r
}

// ForRegion returns a Rasteriser for a grid covering the world rectangle
// region with resolution cells per world unit.  Cell (0, 0) has its lower
// left corner at the lower left corner of region.
func ForRegion(region rect.Rect, resolution float64) *Rasteriser {
	w := int(math.Ceil((region.URx - region.LLx) * resolution))
	h := int(math.Ceil((region.URy - region.LLy) * resolution))
	r := New(rect.Rect{URx: float64(w), URy: float64(h)})
	r.CTM = matrix.Matrix{
		resolution, 0,
		0, resolution,
		-region.LLx * resolution, -region.LLy * resolution,
	}
	return r
}

// Reset restores the default parameters and sets a new clip rectangle.
// Buffer capacity is kept.
func (r *Rasteriser) Reset(clip rect.Rect) {
	r.CTM = matrix.Identity
	r.Clip = clip
	r.Flatness = defaultFlatness
	r.Rule = NonZero
	if r.denseLimit == 0 {
		r.denseLimit = denseLimit
	}
	r.segs = r.segs[:0]
	r.active = r.active[:0]
	r.splits = r.splits[:0]
}

// ToGrid maps a point from world coordinates to grid coordinates.
func (r *Rasteriser) ToGrid(p vec.Vec2) vec.Vec2 {
	m := r.CTM
	return vec.Vec2{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// CellCenter returns the world coordinates of the centre of cell (x, y).
func (r *Rasteriser) CellCenter(x, y int) vec.Vec2 {
	m := r.CTM
	det := m[0]*m[3] - m[1]*m[2]
	u := float64(x) + 0.5 - m[4]
	v := float64(y) + 0.5 - m[5]
	return vec.Vec2{
		X: (m[3]*u - m[2]*v) / det,
		Y: (m[0]*v - m[1]*u) / det,
	}
}

// Fill computes the coverage of the outline p.  The emit callback is
// called once per grid row which has non-zero coverage, with the first
// covered column and the coverage of consecutive cells.  The coverage
// slice is only valid during the callback.
func (r *Rasteriser) Fill(p *path.Data, emit func(y, x0 int, coverage []float32)) {
	x0, x1, y0, y1, ok := r.collect(p)
	if !ok {
		return
	}
	if (x1-x0)*(y1-y0) < r.denseLimit {
		r.fillDense(x0, x1, y0, y1, emit)
	} else {
		r.fillRows(x0, x1, y0, y1, emit)
	}
}

// Cells calls visit for every cell with non-zero coverage by p.
func (r *Rasteriser) Cells(p *path.Data, visit func(x, y int, coverage float32)) {
	r.Fill(p, func(y, x0 int, coverage []float32) {
		for i, c := range coverage {
			if c > 0 {
				visit(x0+i, y, c)
			}
		}
	})
}

// collect converts p into grid space segments.  It returns the integer
// bounding box of the segments, clipped to r.Clip.
func (r *Rasteriser) collect(p *path.Data) (x0, x1, y0, y1 int, ok bool) {
	r.segs = r.segs[:0]
	r.bbox = box{empty: true}

	var cur, start vec.Vec2
	k := 0
	for _, cmd := range p.Cmds {
		switch cmd {
		case path.CmdMoveTo:
			cur = p.Coords[k]
			start = cur
			k++
		case path.CmdLineTo:
			r.line(cur, p.Coords[k])
			cur = p.Coords[k]
			k++
		case path.CmdQuadTo:
			// raised to the equivalent cubic
			c, end := p.Coords[k], p.Coords[k+1]
			r.cubic(cur, cur.Add(c.Sub(cur).Mul(2.0/3)), end.Add(c.Sub(end).Mul(2.0/3)), end)
			cur = end
			k += 2
		case path.CmdCubeTo:
			r.cubic(cur, p.Coords[k], p.Coords[k+1], p.Coords[k+2])
			cur = p.Coords[k+2]
			k += 3
		case path.CmdClose:
			if cur != start {
				r.line(cur, start)
			}
			cur = start
		}
	}
	if len(r.segs) == 0 {
		return 0, 0, 0, 0, false
	}

	x0 = max(int(math.Floor(r.bbox.xMin)), int(r.Clip.LLx))
	x1 = min(int(math.Floor(r.bbox.xMax))+1, int(r.Clip.URx))
	y0 = max(int(math.Floor(r.bbox.yMin)), int(r.Clip.LLy))
	y1 = min(int(math.Floor(r.bbox.yMax))+1, int(r.Clip.URy))
	return x0, x1, y0, y1, x0 < x1 && y0 < y1
}

// line adds the segment from a to b, both in world coordinates.
func (r *Rasteriser) line(a, b vec.Vec2) {
	ga := r.ToGrid(a)
	gb := r.ToGrid(b)
	dy := gb.Y - ga.Y
	if math.Abs(dy) < horizontalThreshold {
		return
	}
	r.segs = append(r.segs, segment{
		x0: ga.X, y0: ga.Y,
		x1: gb.X, y1: gb.Y,
		slope: (gb.X - ga.X) / dy,
	})
	r.bbox.add(ga.X, ga.Y)
	r.bbox.add(gb.X, gb.Y)
}

const (
	defaultFlatness = 0.25

	// horizontalThreshold is the smallest vertical extent, in cells, of a
	// segment which contributes to coverage.
	horizontalThreshold = 1e-10

	denseLimit = 65536
)
