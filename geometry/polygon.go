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

// InsidePolygon reports whether p lies inside the polygon, using the
// even-odd rule.  The polygon is implicitly closed.
func InsidePolygon(p vec.Vec2, polygon []vec.Vec2) bool {
	inside := false
	j := len(polygon) - 1
	for i := range polygon {
		pi, pj := polygon[i], polygon[j]
		if pi.Y < p.Y && pj.Y >= p.Y || pj.Y < p.Y && pi.Y >= p.Y {
			if pi.X+(p.Y-pi.Y)/(pj.Y-pi.Y)*(pj.X-pi.X) < p.X {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// CircleAround returns points on the circle of the given radius around
// center, spaced roughly half a unit apart.
func CircleAround(center vec.Vec2, radius float64) []vec.Vec2 {
	n := int(2 * math.Pi * radius * 2)
	if n <= 0 {
		return nil
	}
	step := 2 * math.Pi / float64(n)
	res := make([]vec.Vec2, n)
	for i := range res {
		sin, cos := math.Sincos(float64(i) * step)
		res[i] = center.Add(vec.Vec2{X: sin, Y: cos}.Mul(radius))
	}
	return res
}

// Arc appends points of a circular arc to pts and returns the extended
// slice.  The arc starts in direction startDir (a unit vector) from center
// and sweeps by the given angle in radians, counter-clockwise for positive
// sweep.  The number of points is chosen so that no chord deviates by more
// than flatness from the arc.
func Arc(pts []vec.Vec2, center vec.Vec2, radius float64, startDir vec.Vec2, sweep, flatness float64, includeStart bool) []vec.Vec2 {
	if radius < flatness {
		if includeStart {
			pts = append(pts, center.Add(startDir.Mul(radius)))
		}
		return append(pts, center.Add(rotate2(startDir, sweep).Mul(radius)))
	}

	// A chord over the angle θ deviates by r(1 - cos(θ/2)) from the arc.
	angleStep := 2 * math.Acos(1-flatness/radius)
	if angleStep <= 0 || math.IsNaN(angleStep) {
		angleStep = math.Pi / 4
	}
	n := max(int(math.Ceil(math.Abs(sweep)/angleStep)), 1)

	dt := sweep / float64(n)
	startI := 0
	if !includeStart {
		startI = 1
	}
	for i := startI; i <= n; i++ {
		pts = append(pts, center.Add(rotate2(startDir, float64(i)*dt).Mul(radius)))
	}
	return pts
}

// rotate2 rotates v counter-clockwise by the angle a in radians.
func rotate2(v vec.Vec2, a float64) vec.Vec2 {
	sin, cos := math.Sincos(a)
	return vec.Vec2{
		X: v.X*cos - v.Y*sin,
		Y: v.X*sin + v.Y*cos,
	}
}

// PolylineLength returns the summed length of the segments of a polyline.
func PolylineLength(pts []vec.Vec2) float64 {
	sum := 0.0
	for i := 1; i < len(pts); i++ {
		sum += pts[i].Sub(pts[i-1]).Length()
	}
	return sum
}
