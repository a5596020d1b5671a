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

package walker

import (
	"context"
	"encoding/json"
	"slices"

	"github.com/samber/lo"
	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/terrain"
	"seehuhn.de/go/terrain/border"
	"seehuhn.de/go/terrain/geometry"
	"seehuhn.de/go/terrain/graph"
)

// crossingBorderExtra is the share of BorderMax added to the outer
// borders of tilted samples next to a crossing.
const crossingBorderExtra = 0.2

// NewElevating returns a walker which writes height steps that level the
// terrain along the paths.  The height sampler is required, mask and
// variance are optional.
func NewElevating(opt Options, height, mask, variance border.Sampler) (*Walker[*border.HeightProcess], error) {
	return newElevating(opt, height, mask, variance, false)
}

// NewCarving returns a walker which writes height steps that cut
// trenches below the paths.  The depth of a trench is DepthRatio times
// the path width, at most DepthMax.
func NewCarving(opt Options, height, mask, variance border.Sampler) (*Walker[*border.HeightProcess], error) {
	return newElevating(opt, height, mask, variance, true)
}

func newElevating(opt Options, height, mask, variance border.Sampler, carving bool) (*Walker[*border.HeightProcess], error) {
	if height == nil {
		return nil, ErrMissingHeight
	}
	b := &base{
		opt: opt,
		helper: border.Helper{
			Options:  opt.Options,
			Height:   height,
			Mask:     mask,
			Variance: variance,
		},
	}
	return &Walker[*border.HeightProcess]{base: b, v: &elevating{base: b, carving: carving}}, nil
}

type elevating struct {
	*base
	carving bool
}

func (v *elevating) name() string {
	if v.carving {
		return "carving"
	}
	return "elevating"
}

func (v *elevating) heights(result *border.Heights) *border.Heights {
	return result
}

// depth returns how far a carved path of the given width lies below
// the path positions.
func (v *elevating) depth(width float64) float64 {
	return min(max(width*v.opt.DepthRatio, 0), v.opt.DepthMax)
}

func (v *elevating) lower(pos, next geometry.Vec3, width float64) (geometry.Vec3, geometry.Vec3) {
	if !v.carving {
		return pos, next
	}
	depth := v.depth(width)
	if v.opt.InclineBySlope {
		depth = geometry.InclineHeightChange(geometry.SlopeNormal(pos, next), depth)
	}
	d := geometry.Vec3{Y: depth}
	return pos.Sub(d), next.Sub(d)
}

func (v *elevating) innerBorder(from, normal geometry.Vec3, radius float64) geometry.Vec3 {
	if v.carving {
		return from
	}
	return from.Add(normal.Mul(radius))
}

func (v *elevating) borderBounds(inner geometry.Vec3, radius float64, region rect.Rect) (lo, hi float64) {
	if v.carving {
		return 2 * radius, 2 * radius
	}
	return v.helper.BorderDistanceBounds(inner, region, v.opt.BorderMax, v.opt.BorderChange)
}

// crossingPoint narrows the path towards the crossing following
// CrossingWidthFalloff.
func (v *elevating) crossingPoint(t *tilt, pt graph.IntermediatePoint, slope geometry.Vec3, _, progress float64) border.Point {
	f := v.opt.CrossingWidthFalloff.Evaluate(progress)
	left, right := t.toLeft.Normalize(), t.toRight.Normalize()

	if v.carving {
		p := pt.Position.Sub(geometry.Vec3{Y: v.depth(pt.Width)})
		return border.Point{
			Edge:        t.edge,
			Point:       p,
			InnerLeft:   p,
			InnerRight:  p,
			OuterLeft:   p.Add(left.Mul(t.leftLen * f)),
			OuterRight:  p.Add(right.Mul(t.rightLen * f)),
			SlopeNormal: slope,
			Alpha:       f,
			Tilted:      true,
		}
	}

	extra := v.opt.BorderMax * crossingBorderExtra
	innerLeft := pt.Position.Add(t.toLeft.Mul(f))
	innerRight := pt.Position.Add(t.toRight.Mul(f))
	return border.Point{
		Edge:        t.edge,
		Point:       pt.Position,
		InnerLeft:   innerLeft,
		InnerRight:  innerRight,
		OuterLeft:   innerLeft.Add(left.Mul(extra + t.leftLen*f)),
		OuterRight:  innerRight.Add(right.Mul(extra + t.rightLen*f)),
		SlopeNormal: slope,
		Alpha:       f,
		Tilted:      true,
	}
}

func (v *elevating) postprocess(ctx context.Context, points []border.Point, sub []*graph.Edge) error {
	v.tiltRiverFords(points, sub)
	v.smoothTiltedCrossings(points)
	return v.fixOverlappingBorders(ctx, points)
}

func (v *elevating) fill(ctx context.Context, points []border.Point, section *border.Grid[bool], result *border.Heights) {
	v.helper.FillHeights(ctx, points, section, result, v.opt.Falloff)
}

// tiltRiverFords rotates the borders of samples at river fords onto the
// slope of the river.  For a subsection which crosses a whole ford, all
// samples are tilted.
func (v *elevating) tiltRiverFords(points []border.Point, sub []*graph.Edge) {
	if len(sub) == 0 || len(points) == 0 {
		return
	}
	src := sub[0].Source()
	dst := sub[len(sub)-1].Destination()

	if src.Type().IsFord() {
		if rot, ok := fordRotation(src); ok {
			tiltBorders(&points[0], rot)
		}
	}
	if dst.Type().IsFord() {
		if rot, ok := fordRotation(dst); ok {
			tiltBorders(&points[len(points)-1], rot)
		}
	}
	if src.Type().Base == graph.SectionRiverFordSource && dst.Type().Base == graph.SectionRiverFordDestination {
		if rot, ok := fordRotation(src); ok {
			for i := 1; i < len(points)-1; i++ {
				tiltBorders(&points[i], rot)
			}
		}
	}
}

// fordRotation returns the rotation from the horizontal river direction
// stored at n onto the river direction itself.
func fordRotation(n *graph.Node) (func(geometry.Vec3) geometry.Vec3, bool) {
	data, ok := n.Data(graph.DataRiverDirection)
	if !ok {
		return nil, false
	}
	var dir geometry.Vec3
	if err := json.Unmarshal([]byte(data), &dir); err != nil {
		terrain.Logger().Warn("invalid river direction", "node", n, "error", err)
		return nil, false
	}
	flatDir := dir.Flat()
	return func(x geometry.Vec3) geometry.Vec3 {
		return geometry.RotateFromTo(x, flatDir, dir)
	}, true
}

func tiltBorders(p *border.Point, rot func(geometry.Vec3) geometry.Vec3) {
	p.Tilted = true
	p.TransformBorders(rot)
}

// smoothTiltedCrossings lets the tilt of the samples at the ends of the
// list fade out over CrossingTiltSmoothingDistance.
func (v *elevating) smoothTiltedCrossings(points []border.Point) {
	n := len(points)
	if n == 0 {
		return
	}
	smoothing := min(v.opt.CrossingTiltSmoothingDistance, points[n/2].Point.Distance(points[0].Point))
	if smoothing <= 0 {
		return
	}

	if points[0].Tilted {
		if idx := slices.IndexFunc(points, notTilted); idx > 0 {
			ref := &points[idx-1]
			left, right := v.tiltAngle(ref, border.Left), v.tiltAngle(ref, border.Right)
			done := 0.0
			for i := idx; i < n; i++ {
				done += points[i].Point.Distance(points[i-1].Point)
				amount := 1 - done/smoothing
				v.smoothTilt(&points[i], amount*left, amount*right)
				if done >= smoothing {
					break
				}
			}
		}
	}

	if points[n-1].Tilted {
		if _, idx, ok := lo.FindLastIndexOf(points, notTilted); ok && idx < n-1 {
			ref := &points[idx+1]
			left, right := v.tiltAngle(ref, border.Left), v.tiltAngle(ref, border.Right)
			done := 0.0
			for i := idx; i > 0; i-- {
				done += points[i].Point.Distance(points[i+1].Point)
				amount := 1 - done/smoothing
				v.smoothTilt(&points[i], amount*left, amount*right)
				if done >= smoothing {
					break
				}
			}
		}
	}
}

// tiltAngle returns the angle between the ground and the border of the
// last tilted sample.
func (v *elevating) tiltAngle(p *border.Point, side border.Side) float64 {
	to := p.Inner(side)
	if v.carving {
		to = p.Outer(side)
	}
	return geometry.AngleToGround(to.Sub(p.Point))
}

func (v *elevating) smoothTilt(p *border.Point, left, right float64) {
	p.InnerLeft, p.OuterLeft = v.smoothBorder(p.Point, p.InnerLeft, p.OuterLeft, -left)
	p.InnerRight, p.OuterRight = v.smoothBorder(p.Point, p.InnerRight, p.OuterRight, -right)
	p.Smoothed = true
}

// smoothBorder rotates a border of the sample at p by angle degrees
// about the horizontal axis across the border.
func (v *elevating) smoothBorder(p, inner, outer geometry.Vec3, angle float64) (geometry.Vec3, geometry.Vec3) {
	if v.carving {
		toOuter := outer.Sub(inner)
		rotated := geometry.RotateAngle(toOuter, angle, toOuter.Cross(geometry.Up))
		return inner, p.Add(rotated)
	}

	toInner := inner.Sub(p)
	borderLen := outer.Distance(inner)
	rotated := geometry.RotateAngle(toInner, angle, toInner.Cross(geometry.Up))
	inner = p.Add(rotated)
	return inner, inner.Add(rotated.Normalize().Mul(borderLen))
}
