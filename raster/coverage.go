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
	"cmp"
	"math"
	"slices"
)

// Coverage is accumulated per cell in two buffers.  A segment crossing a
// cell with signed vertical extent d adds d to cover and d·(1-f) to area,
// where f is the horizontal position of the crossing inside the cell.
// Scanning a row from the left, the coverage of a cell is the sum of cover
// over all cells to its left plus its own area.  Contributions left of the
// first column are collected in the first cell.

// accumulate adds the part of s inside row y to the buffers, which
// represent columns x0 to x1-1.
func (r *Rasteriser) accumulate(s *segment, y int, cover, area []float32, x0, x1 int) {
	lo, hi := s.yRange()
	top := max(float64(y), lo)
	bot := min(float64(y+1), hi)
	if bot <= top {
		return
	}
	sign := float32(1)
	if s.y1 < s.y0 {
		sign = -1
	}

	xa, xb := s.xAt(top), s.xAt(bot)
	left := int(math.Floor(min(xa, xb)))
	right := int(math.Floor(max(xa, xb)))
	switch {
	case right < x0:
		d := sign * float32(bot-top)
		cover[0] += d
		area[0] += d
		return
	case left >= x1:
		return
	case left == right:
		deposit(s, top, bot, sign, left, cover, area, x0, x1)
		return
	}

	// split where s crosses a column boundary
	r.splits = append(r.splits[:0], top, bot)
	inv := 1 / s.slope
	for x := left + 1; x <= right; x++ {
		yx := s.y0 + inv*(float64(x)-s.x0)
		if yx > top && yx < bot {
			r.splits = append(r.splits, yx)
		}
	}
	slices.Sort(r.splits)
	for i := 1; i < len(r.splits); i++ {
		a, b := r.splits[i-1], r.splits[i]
		if b <= a {
			continue
		}
		col := int(math.Floor(s.xAt((a + b) / 2)))
		deposit(s, a, b, sign, col, cover, area, x0, x1)
	}
}

// deposit adds the part of s between a and b, which lies in column col.
func deposit(s *segment, a, b float64, sign float32, col int, cover, area []float32, x0, x1 int) {
	d := sign * float32(b-a)
	switch {
	case col < x0:
		cover[0] += d
		area[0] += d
	case col < x1:
		f := s.xAt((a+b)/2) - float64(col)
		i := col - x0
		cover[i] += d
		area[i] += d * float32(1-f)
	}
}

// integrate turns the accumulated buffers of one row into coverage,
// stored in cover.
func integrate(rule Rule, cover, area []float32) {
	var acc float32
	for i := range cover {
		v := acc + area[i]
		acc += cover[i]
		if v < 0 {
			v = -v
		}
		if rule == EvenOdd {
			v -= 2 * float32(int(v/2))
			if v > 1 {
				v = 2 - v
			}
		} else if v > 1 {
			v = 1
		}
		cover[i] = v
	}
}

// span returns the range of non-zero entries of c.
func span(c []float32) (lo, hi int, ok bool) {
	for lo < len(c) && c[lo] == 0 {
		lo++
	}
	if lo == len(c) {
		return 0, 0, false
	}
	hi = len(c)
	for c[hi-1] == 0 {
		hi--
	}
	return lo, hi, true
}

// inRow reports whether s has a non-degenerate part in row y.
func inRow(s *segment, y int) bool {
	lo, hi := s.yRange()
	return min(float64(y+1), hi) > max(float64(y), lo)
}

// fillDense accumulates all segments into buffers covering the whole
// bounding box, then integrates row by row.
func (r *Rasteriser) fillDense(x0, x1, y0, y1 int, emit func(y, x0 int, coverage []float32)) {
	w, h := x1-x0, y1-y0
	n := w * h
	r.cover = slices.Grow(r.cover[:0], n)[:n]
	r.area = slices.Grow(r.area[:0], n)[:n]
	clear(r.cover)
	clear(r.area)
	r.rows = slices.Grow(r.rows[:0], h)[:h]
	clear(r.rows)

	for i := range r.segs {
		s := &r.segs[i]
		lo, hi := s.yRange()
		first := max(int(math.Floor(lo)), y0)
		last := min(int(math.Floor(hi))+1, y1)
		for y := first; y < last; y++ {
			row := y - y0
			off := row * w
			r.accumulate(s, y, r.cover[off:off+w], r.area[off:off+w], x0, x1)
			if inRow(s, y) {
				r.rows[row] = true
			}
		}
	}

	for row := range h {
		if !r.rows[row] {
			continue
		}
		off := row * w
		c := r.cover[off : off+w]
		integrate(r.Rule, c, r.area[off:off+w])
		if lo, hi, ok := span(c); ok {
			emit(y0+row, x0+lo, c[lo:hi])
		}
	}
}

// fillRows processes one row at a time, keeping a list of the segments
// which intersect the current row.
func (r *Rasteriser) fillRows(x0, x1, y0, y1 int, emit func(y, x0 int, coverage []float32)) {
	w := x1 - x0
	r.cover = slices.Grow(r.cover[:0], w)[:w]
	r.area = slices.Grow(r.area[:0], w)[:w]

	slices.SortFunc(r.segs, func(a, b segment) int {
		return cmp.Compare(min(a.y0, a.y1), min(b.y0, b.y1))
	})
	r.active = r.active[:0]
	next := 0

	for y := y0; y < y1; y++ {
		top, bot := float64(y), float64(y+1)
		for next < len(r.segs) && min(r.segs[next].y0, r.segs[next].y1) < bot {
			r.active = append(r.active, next)
			next++
		}
		if len(r.active) == 0 {
			continue
		}

		clear(r.cover)
		clear(r.area)
		touched := false
		for i := 0; i < len(r.active); {
			s := &r.segs[r.active[i]]
			if max(s.y0, s.y1) <= top {
				last := len(r.active) - 1
				r.active[i] = r.active[last]
				r.active = r.active[:last]
				continue
			}
			r.accumulate(s, y, r.cover, r.area, x0, x1)
			touched = touched || inRow(s, y)
			i++
		}
		if !touched {
			continue
		}

		integrate(r.Rule, r.cover, r.area)
		if lo, hi, ok := span(r.cover); ok {
			emit(y, x0+lo, r.cover[lo:hi])
		}
	}
}
