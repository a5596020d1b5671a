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
	"fmt"
	"math"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/terrain/geometry"
)

// BorderType selects how the outer border is placed.
type BorderType int

// These are the supported border types.
const (
	// Fixed places the outer border at a constant distance from the inner
	// border.
	Fixed BorderType = iota

	// Adaptive searches outwards until the terrain slope is acceptable.
	// Near the edges of a region the search window narrows towards half
	// the maximal border, so that adjacent regions agree on the border.
	Adaptive
)

func (t BorderType) String() string {
	switch t {
	case Fixed:
		return "fixed"
	case Adaptive:
		return "adaptive"
	default:
		return fmt.Sprintf("BorderType(%d)", int(t))
	}
}

// MarshalText implements [encoding.TextMarshaler].
func (t BorderType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (t *BorderType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "fixed":
		*t = Fixed
	case "adaptive":
		*t = Adaptive
	default:
		return fmt.Errorf("unknown border type %q", text)
	}
	return nil
}

// Sampler returns a value for a position in the ground plane.
type Sampler func(p vec.Vec2) float64

// Options control a [Helper].
type Options struct {
	// Resolution is the number of grid cells per world unit.  The
	// outward border search advances by half a cell.
	Resolution float64 `yaml:"resolution"`

	// TerrainHeight is the maximal height written into a height grid.
	TerrainHeight float64 `yaml:"terrainHeight"`

	Type     BorderType `yaml:"borderType"`
	MaxSlope float64    `yaml:"borderSlopeMax"` // degrees

	// VarianceOffset is added to every variance sample.
	VarianceOffset float64 `yaml:"varianceOffset"`

	// InclineBySlope applies variance along the slope normal of the path
	// instead of vertically.
	InclineBySlope bool `yaml:"inclineBySlope"`
}

// Helper holds the samplers used to place borders and to fill grids.
// Height is required for adaptive borders and for height grids.  Mask
// and Variance are optional.
type Helper struct {
	Options

	Height   Sampler
	Mask     Sampler
	Variance Sampler
}

// heightStepFactor lets the accumulated height change of the outward
// search exceed what the slope alone allows.
const heightStepFactor = 1.2

// CurrentHeight returns the height at p, with the compositions already
// written to heights applied.  If heights is nil, the plain terrain height
// is returned.  The result is false if p lies outside the grid or no
// height sampler is set.
func (h *Helper) CurrentHeight(p vec.Vec2, heights *Heights) (float64, bool) {
	if h.Height == nil {
		return 0, false
	}
	if heights == nil {
		return h.Height(p), true
	}
	if !geometry.Contains(heights.Region, p) {
		return 0, false
	}
	res := h.Height(p)
	if x, y, ok := heights.CellAt(p); ok {
		if hp := heights.At(x, y); hp != nil {
			res = hp.Processed(res)
		}
	}
	return res, true
}

// BorderDistanceBounds returns the permitted range of outer border
// distances for an inner border at from.  For adaptive borders the range
// shrinks towards maxBorder/2 as from approaches the edge of region, by
// maxChange per unit of distance.
func (h *Helper) BorderDistanceBounds(from geometry.Vec3, region rect.Rect, maxBorder, maxChange float64) (lo, hi float64) {
	if h.Type == Fixed {
		return maxBorder, maxBorder
	}

	p := from.XZ()
	if !geometry.Contains(region, p) {
		return maxBorder / 2, maxBorder / 2
	}

	x := p.X - region.LLx
	z := p.Y - region.LLy
	size := geometry.Size(region)
	d := min(min(x, size.X-x), min(z, size.Y-z))
	d = max(0, d-1.1*maxBorder)

	lo = max(0, maxBorder/2-maxChange*d)
	hi = min(maxBorder, maxBorder/2+maxChange*d)
	return lo, hi
}

// FindPointForOuterBorder places the outer border for the inner border
// at from, in the horizontal direction dir (a unit vector).
//
// For fixed borders the result lies maxBorder away from from.  Adaptive
// borders walk outwards in steps of half a cell until the slope from
// from is at most MaxSlope and the accumulated absolute height change
// stays within the slope budget, then one step further.  The search stops
// after maxBorder and the resulting distance is clamped to [lo, hi].
func (h *Helper) FindPointForOuterBorder(ctx context.Context, from, dir geometry.Vec3, maxBorder, lo, hi float64, heights *Heights) geometry.Vec3 {
	if h.Type == Fixed {
		return from.Add(dir.Mul(maxBorder))
	}
	if math.Abs(lo-hi) < 0.01 || heights == nil || h.Height == nil || !geometry.Contains(heights.Region, from.XZ()) {
		return from.Add(dir.Mul(lo))
	}

	step := 0.5 / h.Resolution
	budgetPerStep := math.Sin(h.MaxSlope*math.Pi/180) * step * heightStepFactor

	current := from
	slope := 90.0
	dist := 0.0
	proceed := false
	total := 0.0
	budget := budgetPerStep
	cx, cy, _ := heights.CellAt(current.XZ())

	for offset := step; (slope > h.MaxSlope || proceed || total > budget) && dist < maxBorder; offset += step {
		if ctx.Err() != nil {
			return from
		}
		budget += budgetPerStep

		p := from.Add(dir.Mul(offset))
		px, py, _ := heights.CellAt(p.XZ())
		if px == cx && py == cy {
			continue
		}
		height, ok := h.CurrentHeight(p.XZ(), heights)
		if !ok {
			dist = offset
			break
		}
		total += math.Abs(height - current.Y)

		current = geometry.Vec3{X: p.X, Y: height, Z: p.Z}
		cx, cy = px, py
		slope = math.Abs(geometry.AngleToGround(current.Sub(from)))
		dist = current.XZ().Sub(from.XZ()).Length()

		// take one more step once the slope is fine
		proceed = slope > h.MaxSlope
	}

	switch {
	case dist > hi:
		current = h.atDistance(from, dir, hi, heights)
	case dist < lo:
		current = h.atDistance(from, dir, lo, heights)
	}
	return current
}

// atDistance returns the point d away from from in direction dir, at the
// current height there.  Outside the grid the height of from is used.
func (h *Helper) atDistance(from, dir geometry.Vec3, d float64, heights *Heights) geometry.Vec3 {
	p := from.Add(dir.Mul(d))
	if height, ok := h.CurrentHeight(p.XZ(), heights); ok {
		p.Y = height
	}
	return p
}

// CircleAroundPoint returns border samples on a ring around the sample
// p, for capping a path at an endpoint.  The ring starts at the right
// inner border and turns towards the left one, around the back of the
// path for start points and around the front if inverse is set.  The
// number of ring samples grows with the circumference of the outer ring.
// If the inner borders of p coincide with its centre, the ring starts in
// the direction of the outer borders instead.
//
// Each ring sample only carries a right border.  If onlyBorder is set,
// the ring samples sit on the inner border instead of at the centre.
// On cancellation the result is nil.
func (h *Helper) CircleAroundPoint(ctx context.Context, p *Point, inverse bool, maxBorder, change float64, onlyBorder bool, heights *Heights) []Point {
	initial := p.InnerRight.Sub(p.Point)
	left := p.InnerLeft.Sub(p.Point)
	innerRadius := initial.Length()
	collapsed := initial.XZ().Length() < 1e-9
	if collapsed {
		initial = p.OuterRight.Sub(p.Point).Flat().Normalize()
		left = p.OuterLeft.Sub(p.Point).Flat().Normalize()
		innerRadius = 0
	}

	axis := initial.Cross(initial.Cross(geometry.Up))
	if axis.Y < 0 {
		axis = axis.Mul(-1)
	}
	if axis.IsZero() {
		axis = geometry.Up
	}

	// turning in the positive sense leads around the back of the path
	angle := geometry.SignedAngle(initial, left, axis)
	if angle <= 0 {
		angle += 360
	}
	if inverse {
		angle -= 360
	}

	perimeter := 2 * math.Pi * (innerRadius + maxBorder) * math.Abs(angle) / 360
	steps := max(perimeter/2*h.Resolution, 1)
	stepSize := angle / steps

	final := p.OuterLeft.Sub(p.InnerLeft).Length()
	last := final
	adaptive := h.Type == Adaptive && heights != nil

	var res []Point
	for i := 0; float64(i) < steps; i++ {
		if ctx.Err() != nil {
			return nil
		}
		dir := geometry.RotateAxis(initial, axis, float64(i)*stepSize)
		unit := dir.Normalize()
		inner := p.Point
		if !collapsed {
			inner = inner.Add(dir)
		}

		var outer geometry.Vec3
		if adaptive {
			remaining := steps - float64(i)
			minToEnd := final - remaining*change
			maxToEnd := final + remaining*change

			lo, hi := h.BorderDistanceBounds(inner, heights.Region, maxBorder, change)
			minDist := max(last-change, lo, minToEnd)
			maxDist := min(last+change, hi)
			maxDist = min(max(maxDist, minDist), maxToEnd)

			outer = h.FindPointForOuterBorder(ctx, inner, unit, maxToEnd, minDist, maxDist, heights)
		} else {
			outer = inner.Add(unit.Mul(maxBorder))
		}
		last = outer.Sub(inner).Length()

		center := p.Point
		if onlyBorder {
			center = inner
		}
		res = append(res, ringPoint(center, inner, outer))
	}

	center := p.Point
	if onlyBorder {
		center = p.InnerLeft
	}
	return append(res, ringPoint(center, p.InnerLeft, p.OuterLeft))
}

func ringPoint(center, inner, outer geometry.Vec3) Point {
	return Point{
		Point:      center,
		InnerLeft:  center,
		InnerRight: inner,
		OuterLeft:  center,
		OuterRight: outer,
		Alpha:      1,
	}
}
