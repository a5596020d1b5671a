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
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// Rect returns the rectangle with lower left corner (x, z) and the given
// size.
func Rect(x, z, width, height float64) rect.Rect {
	return rect.Rect{LLx: x, LLy: z, URx: x + width, URy: z + height}
}

// Contains reports whether p lies inside r.  The lower and left edges
// belong to the rectangle, the upper and right edges do not.
func Contains(r rect.Rect, p vec.Vec2) bool {
	return p.X >= r.LLx && p.X < r.URx && p.Y >= r.LLy && p.Y < r.URy
}

// HasBorder reports whether p lies inside r or on any of its edges.
func HasBorder(r rect.Rect, p vec.Vec2) bool {
	return p.X >= r.LLx && p.X <= r.URx && p.Y >= r.LLy && p.Y <= r.URy
}

// Overlaps reports whether the interiors of a and b intersect.
func Overlaps(a, b rect.Rect) bool {
	return b.URx > a.LLx && b.LLx < a.URx && b.URy > a.LLy && b.LLy < a.URy
}

// Expand grows r by margin on all four sides.
func Expand(r rect.Rect, margin float64) rect.Rect {
	return rect.Rect{
		LLx: r.LLx - margin,
		LLy: r.LLy - margin,
		URx: r.URx + margin,
		URy: r.URy + margin,
	}
}

// Size returns the width and height of r.
func Size(r rect.Rect) vec.Vec2 {
	return vec.Vec2{X: r.URx - r.LLx, Y: r.URy - r.LLy}
}

// BorderIntersection returns the point where the segment from inside to
// outside leaves r.
func BorderIntersection(inside, outside vec.Vec2, r rect.Rect) (vec.Vec2, bool) {
	d := outside.Sub(inside)

	if d.Y > 0 {
		if d.X == 0 && inside.Y < r.URy && outside.Y > r.URy {
			return vec.Vec2{X: inside.X, Y: r.URy}, true
		}
		if p, ok := Intersect(inside, outside, vec.Vec2{X: r.LLx, Y: r.URy}, vec.Vec2{X: r.URx, Y: r.URy}, -1); ok {
			return p, true
		}
	}
	if d.Y < 0 {
		if d.X == 0 && inside.Y > r.LLy && outside.Y < r.LLy {
			return vec.Vec2{X: inside.X, Y: r.LLy}, true
		}
		if p, ok := Intersect(inside, outside, vec.Vec2{X: r.LLx, Y: r.LLy}, vec.Vec2{X: r.URx, Y: r.LLy}, -1); ok {
			return p, true
		}
	}
	if d.X < 0 {
		if d.Y == 0 && inside.X > r.LLx && outside.X < r.LLx {
			return vec.Vec2{X: r.LLx, Y: inside.Y}, true
		}
		if p, ok := Intersect(inside, outside, vec.Vec2{X: r.LLx, Y: r.LLy}, vec.Vec2{X: r.LLx, Y: r.URy}, -1); ok {
			return p, true
		}
	}
	if d.X > 0 {
		if d.Y == 0 && inside.X < r.URx && outside.X > r.URx {
			return vec.Vec2{X: r.URx, Y: inside.Y}, true
		}
		if p, ok := Intersect(inside, outside, vec.Vec2{X: r.URx, Y: r.LLy}, vec.Vec2{X: r.URx, Y: r.URy}, -1); ok {
			return p, true
		}
	}
	return vec.Vec2{}, false
}
