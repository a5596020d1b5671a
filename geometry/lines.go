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

package geometry

import (
	"math"

	"seehuhn.de/go/geom/vec"
)

// Intersect computes the intersection of the segments from1-to1 and
// from2-to2.  Parallel segments never intersect.  If padding is positive,
// intersections closer than padding to any of the four end points are
// ignored.
func Intersect(from1, to1, from2, to2 vec.Vec2, padding float64) (vec.Vec2, bool) {
	a1 := to1.Y - from1.Y
	b1 := from1.X - to1.X
	c1 := a1*from1.X + b1*from1.Y

	a2 := to2.Y - from2.Y
	b2 := from2.X - to2.X
	c2 := a2*from2.X + b2*from2.Y

	det := a1*b2 - a2*b1
	if det == 0 {
		return vec.Vec2{}, false
	}

	x := (b2*c1 - b1*c2) / det
	y := (a1*c2 - a2*c1) / det

	if outside(x, from1.X, to1.X) || outside(y, from1.Y, to1.Y) ||
		outside(x, from2.X, to2.X) || outside(y, from2.Y, to2.Y) {
		return vec.Vec2{}, false
	}

	m := vec.Vec2{X: x, Y: y}
	if padding > 0 {
		for _, p := range []vec.Vec2{from1, from2, to1, to2} {
			if p.Sub(m).Length() < padding {
				return vec.Vec2{}, false
			}
		}
	}
	return m, true
}

// outside reports whether x lies strictly below or strictly above both
// a and b.
func outside(x, a, b float64) bool {
	return x < a && x < b || x > a && x > b
}

// ClosestPointOnLine returns the point on the infinite line through from
// and to which is closest to p.
func ClosestPointOnLine(from, to, p Vec3) Vec3 {
	dir := to.Sub(from).Normalize()
	d := p.Sub(from).Dot(dir)
	return from.Add(dir.Mul(d))
}

// DistanceToLine returns the distance of p from the infinite line through
// from and to.
func DistanceToLine(from, to, p Vec3) float64 {
	return ClosestPointOnLine(from, to, p).Distance(p)
}

// Angle returns the unsigned angle between a and b in degrees.
func Angle(a, b Vec3) float64 {
	den := math.Sqrt(a.Dot(a) * b.Dot(b))
	if den < 1e-15 {
		return 0
	}
	c := min(max(a.Dot(b)/den, -1), 1)
	return math.Acos(c) * 180 / math.Pi
}

// SignedAngle returns the angle from a to b in degrees, measured around
// the given normal.
func SignedAngle(a, b, normal Vec3) float64 {
	return math.Atan2(normal.Dot(a.Cross(b)), a.Dot(b)) * 180 / math.Pi
}

// AngleToGround returns the angle between v and the ground plane in
// degrees.  The result is negative if v points downwards.
func AngleToGround(v Vec3) float64 {
	a := Angle(v, v.Flat())
	if v.Y < 0 {
		return -a
	}
	return a
}

// GroundNormal returns the horizontal unit normal of the direction from
// src to dst.
func GroundNormal(src, dst Vec3) Vec3 {
	return dst.Sub(src).Flat().Cross(Up).Normalize()
}

// SlopeNormal returns the upward unit normal of the sloped surface which
// follows the segment from src to dst and is horizontal across it.
// Degenerate segments give [Up].
func SlopeNormal(src, dst Vec3) Vec3 {
	n := GroundNormal(src, dst).Cross(dst.Sub(src)).Normalize()
	if n.IsZero() {
		return Up
	}
	return n
}

// InclineHeightChange converts an offset along the slope normal n into
// the equivalent vertical offset of the surface.
func InclineHeightChange(n Vec3, change float64) float64 {
	if n.Y < minNormalY {
		return change
	}
	return change / n.Y
}

// minNormalY bounds the amplification of InclineHeightChange on steep
// slopes.
const minNormalY = 0.1

// RotateAxis rotates v by deg degrees around axis, following the right
// hand rule.
func RotateAxis(v, axis Vec3, deg float64) Vec3 {
	k := axis.Normalize()
	if k.IsZero() {
		return v
	}
	theta := deg * math.Pi / 180
	cos, sin := math.Cos(theta), math.Sin(theta)
	return v.Mul(cos).Add(k.Cross(v).Mul(sin)).Add(k.Mul(k.Dot(v) * (1 - cos)))
}

// RotateFromTo applies to v the rotation which turns the direction from
// into the direction to.
func RotateFromTo(v, from, to Vec3) Vec3 {
	axis := from.Cross(to)
	if axis.Length() < zeroLength {
		return v
	}
	return RotateAxis(v, axis, Angle(from, to))
}

// RotateAngle rotates v by deg degrees around axis, choosing the sense of
// rotation which does not steepen v.  The result is rescaled so that its
// ground plane length matches that of v.
func RotateAngle(v Vec3, deg float64, axis Vec3) Vec3 {
	before := AngleToGround(v)
	r := RotateAxis(v, axis, deg)
	if math.Abs(AngleToGround(r)) > math.Abs(before) {
		r = RotateAxis(v, axis.Mul(-1), deg)
	}

	scale := v.XZ().Length() / r.XZ().Length()
	if math.IsNaN(scale) || math.IsInf(scale, 0) {
		return r
	}
	return r.Mul(scale)
}

// LineDistance returns the distance of p from the infinite line through
// from and to, in the ground plane.  If from and to coincide, the
// distance to from is returned.
func LineDistance(from, to, p vec.Vec2) float64 {
	d := to.Sub(from)
	l := d.Length()
	if l < zeroLength {
		return p.Sub(from).Length()
	}
	return math.Abs(d.X*(p.Y-from.Y)-d.Y*(p.X-from.X)) / l
}
