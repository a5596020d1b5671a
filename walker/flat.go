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

	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/terrain/border"
	"seehuhn.de/go/terrain/geometry"
	"seehuhn.de/go/terrain/graph"
)

// NewFlat returns a walker which writes path masks.  Mask values are the
// running maximum of the weights of all borders covering a cell, scaled
// by the optional mask sampler.
//
// Flat walkers always use fixed borders: the outer border lies BorderMax
// beyond the inner border.
func NewFlat(opt Options, mask border.Sampler) *Walker[float64] {
	opt.Type = border.Fixed
	b := &base{
		opt: opt,
		helper: border.Helper{
			Options: opt.Options,
			Mask:    mask,
		},
	}
	return &Walker[float64]{base: b, v: flat{b}}
}

type flat struct {
	*base
}

func (flat) name() string {
	return "flat"
}

func (flat) heights(*border.Mask) *border.Heights {
	return nil
}

func (flat) lower(pos, next geometry.Vec3, _ float64) (geometry.Vec3, geometry.Vec3) {
	return pos, next
}

func (flat) innerBorder(from, normal geometry.Vec3, radius float64) geometry.Vec3 {
	return from.Add(normal.Mul(radius))
}

func (f flat) borderBounds(inner geometry.Vec3, _ float64, region rect.Rect) (lo, hi float64) {
	return f.helper.BorderDistanceBounds(inner, region, f.opt.BorderMax, f.opt.BorderChange)
}

// crossingPoint widens the path towards the crossing and fades it if
// CrossingFade is set.
func (f flat) crossingPoint(t *tilt, pt graph.IntermediatePoint, slope geometry.Vec3, dist, _ float64) border.Point {
	opt := &f.opt

	factor := 1.0
	if opt.CrossingWiden && opt.CrossingWidenDistance > 0 {
		factor = opt.widen(1 - dist/opt.CrossingWidenDistance)
	}
	alpha := 1.0
	if opt.CrossingFade && opt.CrossingDistance > 0 {
		alpha = opt.CrossingFalloff.Evaluate(dist / opt.CrossingDistance)
	}

	innerLeft := pt.Position.Add(t.toLeft.Mul(factor))
	innerRight := pt.Position.Add(t.toRight.Mul(factor))
	return border.Point{
		Edge:        t.edge,
		Point:       pt.Position,
		InnerLeft:   innerLeft,
		InnerRight:  innerRight,
		OuterLeft:   innerLeft.Add(t.toLeft.Normalize().Mul(t.leftLen)),
		OuterRight:  innerRight.Add(t.toRight.Normalize().Mul(t.rightLen)),
		SlopeNormal: slope,
		Alpha:       alpha,
		Tilted:      true,
	}
}

func (f flat) postprocess(ctx context.Context, points []border.Point, _ []*graph.Edge) error {
	return f.fixOverlappingBorders(ctx, points)
}

func (f flat) fill(ctx context.Context, points []border.Point, _ *border.Grid[bool], result *border.Mask) {
	f.helper.FillMask(ctx, points, result, f.opt.Falloff)
}
