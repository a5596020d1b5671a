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

package border

import (
	"context"
	"math"

	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/terrain/curve"
	"seehuhn.de/go/terrain/geometry"
	"seehuhn.de/go/terrain/raster"
)

// zone identifies one of the four quadrilaterals between two
// consecutive samples.
type zone int

const (
	centerLeft zone = iota
	centerRight
	borderLeft
	borderRight
)

// quad is the outline of one zone, together with the reference lines
// used for interpolation.  The "from" line runs along the inner edge of
// the zone, the "to" line along the outer edge.
type quad struct {
	from1, from2, to1, to2 geometry.Vec3
	outline                []vec.Vec2
}

func quads(p1, p2 *Point) [4]quad {
	mk := func(from1, from2, to1, to2 geometry.Vec3) quad {
		return quad{
			from1: from1, from2: from2, to1: to1, to2: to2,
			outline: []vec.Vec2{from1.XZ(), to1.XZ(), to2.XZ(), from2.XZ()},
		}
	}
	return [4]quad{
		centerLeft:  mk(p1.Point, p2.Point, p1.InnerLeft, p2.InnerLeft),
		centerRight: mk(p1.Point, p2.Point, p1.InnerRight, p2.InnerRight),
		borderLeft:  mk(p1.InnerLeft, p2.InnerLeft, p1.OuterLeft, p2.OuterLeft),
		borderRight: mk(p1.InnerRight, p2.InnerRight, p1.OuterRight, p2.OuterRight),
	}
}

// interpolate locates c inside q.  The reference heights are taken from
// the from and to lines at the position of c along the zone, amount is
// the relative distance of c from the from line, in [0, 1].  Degenerate
// zones give amount 0.
func (q *quad) interpolate(c vec.Vec2) (hFrom, hTo, amount float64) {
	d1 := geometry.LineDistance(q.from1.XZ(), q.to1.XZ(), c)
	d2 := geometry.LineDistance(q.from2.XZ(), q.to2.XZ(), c)
	progress := d1 / (d1 + d2)
	if math.IsNaN(progress) {
		progress = 0
	}

	hFrom = geometry.Lerp(q.from1.Y, q.from2.Y, progress)
	hTo = geometry.Lerp(q.to1.Y, q.to2.Y, progress)

	dist := geometry.LineDistance(q.from1.XZ(), q.from2.XZ(), c)
	maxDist := geometry.LineDistance(q.from1.XZ(), q.from2.XZ(), q.to1.Lerp(q.to2, progress).XZ())
	amount = dist / maxDist
	if math.IsNaN(amount) {
		amount = 0
	}
	return hFrom, hTo, geometry.Clamp01(amount)
}

// cellVisitor enumerates the grid cells whose centres lie inside the
// zones between two samples.
type cellVisitor struct {
	r    *raster.Rasteriser
	w    int
	seen map[int]struct{}
}

func newCellVisitor[T any](g *Grid[T]) *cellVisitor {
	r := g.Rasteriser()
	// same rule as the cell centre test
	r.Rule = raster.EvenOdd
	return &cellVisitor{
		r:    r,
		w:    g.Width,
		seen: make(map[int]struct{}),
	}
}

// visit calls fn once for every cell touched by the zones of qs, with
// the first zone (in the order of qs) containing the cell centre.  Cells
// whose centre lies in none of the zones are skipped.
func (v *cellVisitor) visit(qs *[4]quad, fn func(x, y int, c vec.Vec2, z zone)) {
	clear(v.seen)
	for i := range qs {
		v.r.Cells(raster.Polygon(qs[i].outline...), func(x, y int, _ float32) {
			key := y*v.w + x
			if _, done := v.seen[key]; done {
				return
			}
			v.seen[key] = struct{}{}

			c := v.r.CellCenter(x, y)
			for z := range qs {
				if geometry.InsidePolygon(c, qs[z].outline) {
					fn(x, y, c, zone(z))
					return
				}
			}
		})
	}
}

// FillHeights writes the height contributions of a run of samples into
// heights.  The centre zones carry the path height at full weight, the
// border zones blend from the path height into the terrain following
// falloff.  Cells marked in section are skipped, written cells get
// marked, so that each cell receives at most one step per section.  The
// section grid must cover the same cells as heights.  Written heights are
// clamped to [0, TerrainHeight].
func (h *Helper) FillHeights(ctx context.Context, points []Point, section *Grid[bool], heights *Heights, falloff curve.Keyframes) {
	if len(points) < 2 {
		return
	}
	v := newCellVisitor(heights)
	for i := 1; i < len(points); i++ {
		if ctx.Err() != nil {
			return
		}
		p1, p2 := &points[i-1], &points[i]
		qs := quads(p1, p2)
		v.visit(&qs, func(x, y int, c vec.Vec2, z zone) {
			if section.At(x, y) {
				return
			}

			hFrom, hTo, amount := qs[z].interpolate(c)
			center := z == centerLeft || z == centerRight

			var height, weight float64
			switch {
			case !center && p1.Tilted:
				height = geometry.Lerp(hFrom, hTo, amount)
				weight = falloff.Evaluate(1 - amount)
			case center:
				height = geometry.Lerp(hFrom, hTo, amount)
				weight = 1
			default:
				height = hFrom
				weight = falloff.Evaluate(1 - amount)
			}

			if h.Variance != nil {
				variance := h.Variance(c) + h.VarianceOffset
				if h.InclineBySlope && !p1.SlopeNormal.IsZero() {
					n := p1.SlopeNormal.Lerp(p2.SlopeNormal, amount).Normalize()
					height += geometry.InclineHeightChange(n, variance)
				} else {
					height += variance
				}
			}
			height = min(max(height, 0), h.TerrainHeight)

			weight = geometry.Clamp01(weight * p1.Alpha)
			if h.Mask != nil {
				weight *= h.Mask(c)
			}

			idx := y*heights.Width + x
			hp := heights.Cells[idx]
			if hp == nil {
				hp = &HeightProcess{}
				heights.Cells[idx] = hp
			}
			hp.AddStep(height, weight)
			section.Set(x, y, true)
		})
	}
}

// FillMask writes the weights of a run of samples into mask.  Cells
// inside the path get the sample alpha, cells between inner and outer
// border get falloff of the relative distance to the outer border.
// Existing values are only ever increased.
func (h *Helper) FillMask(ctx context.Context, points []Point, mask *Mask, falloff curve.Keyframes) {
	if len(points) < 2 {
		return
	}
	v := newCellVisitor(mask)
	for i := 1; i < len(points); i++ {
		if ctx.Err() != nil {
			return
		}
		p1, p2 := &points[i-1], &points[i]
		qs := quads(p1, p2)
		v.visit(&qs, func(x, y int, c vec.Vec2, z zone) {
			weight := 1.0
			if z == borderLeft || z == borderRight {
				_, _, amount := qs[z].interpolate(c)
				weight = falloff.Evaluate(1 - amount)
			}
			weight = geometry.Clamp01(weight * p1.Alpha)
			if h.Mask != nil {
				weight *= h.Mask(c)
			}

			idx := y*mask.Width + x
			mask.Cells[idx] = max(mask.Cells[idx], weight)
		})
	}
}
