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
	"math"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/terrain/raster"
)

// Grid is a rectangular array of cells covering a region of the ground
// plane.  Cell (0, 0) has its lower left corner at the lower left corner
// of the region.
type Grid[T any] struct {
	Region     rect.Rect
	Resolution float64 // cells per world unit

	Width, Height int

	// Cells holds the values in row-major order, Cells[y*Width+x].
	Cells []T
}

// Mask is a grid of scalar weights.
type Mask = Grid[float64]

// Heights is a grid of height compositions.  Cells without a
// composition are nil.
type Heights = Grid[*HeightProcess]

// NewGrid allocates a grid covering region with the given number of cells
// per world unit.
func NewGrid[T any](region rect.Rect, resolution float64) *Grid[T] {
	w := int(math.Ceil((region.URx - region.LLx) * resolution))
	h := int(math.Ceil((region.URy - region.LLy) * resolution))
	w, h = max(w, 0), max(h, 0)
	return &Grid[T]{
		Region:     region,
		Resolution: resolution,
		Width:      w,
		Height:     h,
		Cells:      make([]T, w*h),
	}
}

// Valid reports whether (x, y) is a cell of g.
func (g *Grid[T]) Valid(x, y int) bool {
	return x >= 0 && x < g.Width && y >= 0 && y < g.Height
}

// At returns the value of cell (x, y).  Cells outside the grid have the
// zero value.
func (g *Grid[T]) At(x, y int) T {
	if !g.Valid(x, y) {
		var zero T
		return zero
	}
	return g.Cells[y*g.Width+x]
}

// Set changes the value of cell (x, y).  Cells outside the grid are
// ignored.
func (g *Grid[T]) Set(x, y int, v T) {
	if g.Valid(x, y) {
		g.Cells[y*g.Width+x] = v
	}
}

// CellAt returns the cell containing the world position p.
func (g *Grid[T]) CellAt(p vec.Vec2) (x, y int, ok bool) {
	x = int(math.Floor((p.X - g.Region.LLx) * g.Resolution))
	y = int(math.Floor((p.Y - g.Region.LLy) * g.Resolution))
	return x, y, g.Valid(x, y)
}

// CellCenter returns the world position of the centre of cell (x, y).
func (g *Grid[T]) CellCenter(x, y int) vec.Vec2 {
	return vec.Vec2{
		X: g.Region.LLx + (float64(x)+0.5)/g.Resolution,
		Y: g.Region.LLy + (float64(y)+0.5)/g.Resolution,
	}
}

// Rasteriser returns a rasteriser whose grid coincides with g.
func (g *Grid[T]) Rasteriser() *raster.Rasteriser {
	return raster.ForRegion(g.Region, g.Resolution)
}

// Clear resets all cells to the zero value.
func (g *Grid[T]) Clear() {
	clear(g.Cells)
}
