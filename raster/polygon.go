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

package raster

import (
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

// Polygon returns the closed outline through the given points.
func Polygon(pts ...vec.Vec2) *path.Data {
	p := &path.Data{}
	if len(pts) == 0 {
		return p
	}
	p.MoveTo(pts[0])
	for _, q := range pts[1:] {
		p.LineTo(q)
	}
	return p.Close()
}

// kappa places the control points of a cubic Bézier quarter circle.
const kappa = 0.5522847498

// Circle returns a counter-clockwise circle made of four cubic Bézier
// curves.
func Circle(center vec.Vec2, radius float64) *path.Data {
	k := kappa * radius
	pt := func(x, y float64) vec.Vec2 { return vec.Vec2{X: center.X + x, Y: center.Y + y} }

	p := &path.Data{}
	p.MoveTo(pt(radius, 0))
	p.CubeTo(pt(radius, k), pt(k, radius), pt(0, radius))
	p.CubeTo(pt(-k, radius), pt(-radius, k), pt(-radius, 0))
	p.CubeTo(pt(-radius, -k), pt(-k, -radius), pt(0, -radius))
	p.CubeTo(pt(k, -radius), pt(radius, -k), pt(radius, 0))
	return p.Close()
}
