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
	"fmt"
	"image"
	"image/color"
	"testing"

	"golang.org/x/image/vector"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// BenchmarkRing rasterises a ring, the shape of a road around a round
// node, at different grid sizes.
func BenchmarkRing(b *testing.B) {
	for _, size := range []int{20, 200, 2000} {
		b.Run(fmt.Sprintf("%dx%d", size, size), func(b *testing.B) {
			clip := rect.Rect{URx: float64(size), URy: float64(size)}
			r := New(clip)
			dst := image.NewAlpha(image.Rect(0, 0, size, size))

			c := float64(size) / 2
			ring := ringPath(c, c, float64(size)*0.45, float64(size)*0.30)

			b.ReportAllocs()
			for b.Loop() {
				r.Reset(clip)
				r.Rule = EvenOdd
				r.Fill(ring, func(y, x0 int, coverage []float32) {
					row := dst.Pix[y*dst.Stride+x0:]
					for i, v := range coverage {
						row[i] = uint8(v * 255)
					}
				})
			}
		})
	}
}

// BenchmarkVectorRing is the same as BenchmarkRing, using
// golang.org/x/image/vector.
func BenchmarkVectorRing(b *testing.B) {
	for _, size := range []int{20, 200, 2000} {
		b.Run(fmt.Sprintf("%dx%d", size, size), func(b *testing.B) {
			r := vector.NewRasterizer(size, size)
			dst := image.NewAlpha(image.Rect(0, 0, size, size))
			src := image.NewUniform(color.Alpha{A: 255})

			c := float32(size) / 2
			b.ReportAllocs()
			for b.Loop() {
				r.Reset(size, size)
				vectorCircle(r, c, c, float32(size)*0.45, false)
				vectorCircle(r, c, c, float32(size)*0.30, true)
				r.Draw(dst, dst.Bounds(), src, image.Point{})
			}
		})
	}
}


func ringPath(cx, cy, outer, inner float64) *path.Data {
	p := &path.Data{}
	circle(p, cx, cy, outer, false)
	circle(p, cx, cy, inner, true)
	return p
}

// circle appends a circle made of four cubic Bézier curves, starting at
// the top.
func circle(p *path.Data, cx, cy, r float64, clockwise bool) {
	k := kappa * r
	s := 1.0
	if clockwise {
		s = -1
	}
	pt := func(x, y float64) vec.Vec2 { return vec.Vec2{X: cx + s*x, Y: cy + y} }

	p.MoveTo(pt(0, -r))
	p.CubeTo(pt(k, -r), pt(r, -k), pt(r, 0))
	p.CubeTo(pt(r, k), pt(k, r), pt(0, r))
	p.CubeTo(pt(-k, r), pt(-r, k), pt(-r, 0))
	p.CubeTo(pt(-r, -k), pt(-k, -r), pt(0, -r))
	p.Close()
}

func vectorCircle(r *vector.Rasterizer, cx, cy, radius float32, clockwise bool) {
	k := float32(kappa) * radius
	s := float32(1)
	if clockwise {
		s = -1
	}
	r.MoveTo(cx, cy-radius)
	r.CubeTo(cx+s*k, cy-radius, cx+s*radius, cy-k, cx+s*radius, cy)
	r.CubeTo(cx+s*radius, cy+k, cx+s*k, cy+radius, cx, cy+radius)
	r.CubeTo(cx-s*k, cy+radius, cx-s*radius, cy+k, cx-s*radius, cy)
	r.CubeTo(cx-s*radius, cy-k, cx-s*k, cy-radius, cx, cy-radius)
	r.ClosePath()
}
