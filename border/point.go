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

// Package border places border samples along paths and rasterises them
// into region grids.
//
// A path is described by a sequence of [Point] values.  Each sample has
// an inner border at the edge of the path surface and an outer border
// where the path blends back into the terrain, on both sides.  Consecutive
// samples span quadrilaterals which [Helper.FillHeights] and
// [Helper.FillMask] turn into grid values.
package border

import (
	"seehuhn.de/go/terrain/geometry"
	"seehuhn.de/go/terrain/graph"
)

// Side selects the left or right border of a sample.
type Side int

// These are the two sides of a path, seen in walking direction.
const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

// Point is a sample along a path, together with its borders.
type Point struct {
	// Edge is the edge the sample was taken from.  Samples of end caps
	// have no edge.
	Edge *graph.Edge

	Point      geometry.Vec3
	InnerLeft  geometry.Vec3
	InnerRight geometry.Vec3
	OuterLeft  geometry.Vec3
	OuterRight geometry.Vec3

	// SlopeNormal is the normal of the path surface at the sample, or the
	// zero vector if the sample has no meaningful slope.
	SlopeNormal geometry.Vec3

	// Alpha scales the weight of everything written for this sample.
	Alpha float64

	// Tilted marks samples whose borders follow a crossing or a ford
	// instead of the ground plane.
	Tilted bool

	// Smoothed marks samples whose tilt was relaxed towards the ground.
	Smoothed bool

	OverlapLeft  bool
	OverlapRight bool
}

// Inner returns the inner border on side s.
func (p *Point) Inner(s Side) geometry.Vec3 {
	if s == Left {
		return p.InnerLeft
	}
	return p.InnerRight
}

// Outer returns the outer border on side s.
func (p *Point) Outer(s Side) geometry.Vec3 {
	if s == Left {
		return p.OuterLeft
	}
	return p.OuterRight
}

// SetBorder replaces the border on side s.  The inner border keeps its
// height.  The sample is marked as adjusted for overlaps on that side.
func (p *Point) SetBorder(s Side, inner, outer geometry.Vec3) {
	if s == Left {
		p.InnerLeft = geometry.Vec3{X: inner.X, Y: p.InnerLeft.Y, Z: inner.Z}
		p.OuterLeft = outer
		p.OverlapLeft = true
	} else {
		p.InnerRight = geometry.Vec3{X: inner.X, Y: p.InnerRight.Y, Z: inner.Z}
		p.OuterRight = outer
		p.OverlapRight = true
	}
}

// TransformBorders replaces every border b by Point + f(b - Point).
func (p *Point) TransformBorders(f func(geometry.Vec3) geometry.Vec3) {
	p.InnerLeft = p.Point.Add(f(p.InnerLeft.Sub(p.Point)))
	p.InnerRight = p.Point.Add(f(p.InnerRight.Sub(p.Point)))
	p.OuterLeft = p.Point.Add(f(p.OuterLeft.Sub(p.Point)))
	p.OuterRight = p.Point.Add(f(p.OuterRight.Sub(p.Point)))
}
