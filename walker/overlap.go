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
	"math"
	"slices"

	"github.com/samber/lo"

	"seehuhn.de/go/terrain/border"
	"seehuhn.de/go/terrain/geometry"
)

// span is an inclusive range of sample indices.
type span struct {
	lo, hi int
}

func notTilted(p border.Point) bool {
	return !p.Tilted
}

// fixOverlappingBorders moves the borders of samples whose segments from
// the centre to the outer border cross the segments of nearby samples.
// Both sides are handled independently.  Tilted samples at the ends of
// the list are left alone.
func (b *base) fixOverlappingBorders(ctx context.Context, points []border.Point) error {
	for _, side := range []border.Side{border.Left, border.Right} {
		if err := b.fixSide(ctx, points, side); err != nil {
			return err
		}
	}
	return nil
}

func (b *base) fixSide(ctx context.Context, points []border.Point, side border.Side) error {
	n := len(points)
	first := slices.IndexFunc(points, notTilted)
	if n < 2 || first < 0 {
		return nil
	}
	_, last, _ := lo.FindLastIndexOf(points, notTilted)
	low := max(0, first-2)
	high := min(n-1, last+2)

	var sections []span
	lastEnd := low
	for i := low + 1; i <= high; i++ {
		if ctx.Err() != nil {
			return nil
		}
		if !b.bordersIntersect(points, i-1, i, i, side) {
			continue
		}

		// with wide borders everything may overlap, so the search is capped
		bounds := span{
			lo: max(lastEnd, i-1-b.opt.SectionCap),
			hi: min(high, i+b.opt.SectionCap),
		}
		s := b.findIntersections(ctx, points, i-1, i, side, bounds)
		sections = append(sections, s)
		i, lastEnd = s.hi, s.hi
	}
	if len(sections) == 0 {
		return nil
	}

	sections = b.mergeSections(ctx, points, sections, side)
	for _, s := range sections {
		// the samples around the section serve as reference
		start := max(0, s.lo-1)
		end := min(n-1, s.hi+1)
		if err := adjustBorder(points, start, end, side); err != nil {
			return err
		}
	}
	b.untangle(points, max(0, low-1), high, side)
	return nil
}

// findIntersections grows the section low..high while further samples
// within bounds overlap it.  The search in each direction gives up after
// ScanDistance samples without overlap.
func (b *base) findIntersections(ctx context.Context, points []border.Point, low, high int, side border.Side, bounds span) span {
	scan := max(b.opt.ScanDistance, 1)

	for changed := true; changed; {
		changed = false
		if ctx.Err() != nil {
			break
		}

		miss := 0
		for next := high + 1; next <= bounds.hi && miss < scan; next++ {
			if b.bordersIntersect(points, next, low, next, side) {
				high = next
				miss = 0
				changed = true
			} else {
				miss++
			}
		}

		miss = 0
		for next := low - 1; next >= bounds.lo && miss < scan; next-- {
			if b.bordersIntersect(points, next, next, high, side) {
				low = next
				miss = 0
				changed = true
			} else {
				miss++
			}
		}
	}

	// a margin around the section avoids choppy borders on S curves
	offset := scan - 1
	return span{
		lo: max(bounds.lo, low-offset),
		hi: min(bounds.hi, high+offset),
	}
}

// mergeSections joins sections which touch or whose borders cross.
func (b *base) mergeSections(ctx context.Context, points []border.Point, sections []span, side border.Side) []span {
	for i := 0; i < len(sections)-1; i++ {
		for i+1 < len(sections) {
			next := sections[i+1]
			if sections[i].hi <= next.lo && !b.sectionsOverlap(points, sections[i], next, side) {
				break
			}
			if ctx.Err() != nil {
				return sections
			}
			sections[i].hi = max(sections[i].hi, next.hi)
			sections = slices.Delete(sections, i+1, i+2)
		}
	}
	return sections
}

func (b *base) sectionsOverlap(points []border.Point, first, second span, side border.Side) bool {
	for i := first.lo; i < first.hi; i++ {
		if b.bordersIntersect(points, i, second.lo, second.hi, side) {
			return true
		}
	}
	return false
}

// bordersIntersect reports whether the border segment of sample index
// crosses the border segment of any other sample in low..high.
func (b *base) bordersIntersect(points []border.Point, index, low, high int, side border.Side) bool {
	p := &points[index]
	from, to := p.Point.XZ(), p.Outer(side).XZ()
	for i := low; i <= high; i++ {
		if i == index {
			continue
		}
		c := &points[i]
		if _, ok := geometry.Intersect(from, to, c.Point.XZ(), c.Outer(side).XZ(), b.opt.IntersectPadding); ok {
			return true
		}
	}
	return false
}

// adjustBorder replaces the borders strictly between start and end by
// interpolating the outer borders of start and end.  The middle sample is
// set first, then both halves are handled recursively.  The outer border
// distance never exceeds the interpolated distance of the references.
func adjustBorder(points []border.Point, start, end int, side border.Side) error {
	if end-start < 2 {
		return nil
	}

	s, e := &points[start], &points[end]
	borderStart, borderEnd := s.Outer(side), e.Outer(side)
	length := geometry.Lerp(borderStart.Distance(s.Point), borderEnd.Distance(e.Point), 0.5)

	center := start + (end-start)/2
	cp := &points[center]
	outer := borderStart.Lerp(borderEnd, 0.5)
	toOuter := outer.Sub(cp.Point)
	if toOuter.IsZero() || math.IsNaN(toOuter.X+toOuter.Y+toOuter.Z) {
		return ErrFullRebuild
	}
	dir := toOuter.Normalize()
	if toOuter.Length() > length {
		outer = cp.Point.Add(dir.Mul(length))
	}
	innerLen := min(cp.Inner(side).Distance(cp.Point), outer.Distance(cp.Point))
	inner := cp.Point.Add(dir.Mul(innerLen))
	cp.SetBorder(side, inner, outer)

	if err := adjustBorder(points, start, center, side); err != nil {
		return err
	}
	return adjustBorder(points, center, end, side)
}

// untangle shortens border segments which still cross the segment of the
// previous sample, so that they end just before the crossing.  Only the
// later sample of each pair is changed, so one pass suffices.
func (b *base) untangle(points []border.Point, low, high int, side border.Side) {
	pad := b.opt.IntersectPadding
	for i := low + 1; i <= high; i++ {
		prev, p := &points[i-1], &points[i]
		centre := p.Point.XZ()
		m, ok := geometry.Intersect(prev.Point.XZ(), prev.Outer(side).XZ(), centre, p.Outer(side).XZ(), pad)
		if !ok {
			continue
		}

		length := p.Outer(side).XZ().Sub(centre).Length()
		d := m.Sub(centre).Length()
		if length == 0 {
			continue
		}
		keep := d - min(max(pad, 1e-3)/2, d/2)

		outer := p.Point.Lerp(p.Outer(side), keep/length)
		inner := p.Inner(side)
		if l := inner.XZ().Sub(centre).Length(); l > keep {
			inner = p.Point.Lerp(inner, keep/l)
		}
		p.SetBorder(side, inner, outer)
	}
}
