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

// Package walker turns the connections of a region into border samples
// and writes them into a region grid.
//
// A [Walker] exists in three variants.  The flat walker writes a mask of
// weights in [0, 1].  The elevating walker writes height steps which
// level the terrain along the paths, and the carving walker writes height
// steps which cut trenches below the paths.  All variants share the walk
// along the edges, the fades near endpoints and crossings, and the
// resolution of overlapping borders.
package walker

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/samber/lo"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/pdf/graphics"

	"seehuhn.de/go/terrain"
	"seehuhn.de/go/terrain/border"
	"seehuhn.de/go/terrain/geometry"
	"seehuhn.de/go/terrain/graph"
)

var (
	// ErrFullRebuild is returned when overlap resolution produced a border
	// without direction.  The samples of the region are corrupt and the
	// region must be rebuilt from scratch.
	ErrFullRebuild = errors.New("degenerate border after overlap resolution, full rebuild necessary")

	// ErrMissingHeight is returned by constructors which need a height
	// sampler but were given none.
	ErrMissingHeight = errors.New("missing height sampler")
)

// gapStep is the spacing of the samples which connect a perimeter sample
// to the tilted samples of a crossing edge.
const gapStep = 1.5

// Walker walks the edges of a region and writes them into a grid with
// cells of type T.
type Walker[T any] struct {
	*base
	v variant[T]
}

// base holds what all variants share.
type base struct {
	opt    Options
	helper border.Helper
}

// variant holds the parts of the walk which differ between flat,
// elevating and carving walkers.
type variant[T any] interface {
	name() string

	// heights returns the height grid used to place adaptive borders, or
	// nil.
	heights(result *border.Grid[T]) *border.Heights

	// lower moves a pair of path positions to the height of the path
	// surface.
	lower(pos, next geometry.Vec3, width float64) (geometry.Vec3, geometry.Vec3)

	innerBorder(from, normal geometry.Vec3, radius float64) geometry.Vec3
	borderBounds(inner geometry.Vec3, radius float64, region rect.Rect) (lo, hi float64)

	// crossingPoint returns a tilted sample on an edge between a crossing
	// and its perimeter.  dist is the distance from the crossing, progress
	// runs from 0 at the crossing to 1 at the perimeter.
	crossingPoint(t *tilt, pt graph.IntermediatePoint, slope geometry.Vec3, dist, progress float64) border.Point

	postprocess(ctx context.Context, points []border.Point, sub []*graph.Edge) error
	fill(ctx context.Context, points []border.Point, section *border.Grid[bool], result *border.Grid[T])
}

// Options returns the options of w.
func (w *Walker[T]) Options() Options {
	return w.opt
}

// ProcessEdges writes every connection of byOffset which comes within
// margin of the region of result into result.  It returns the edges which
// were walked.
//
// If ctx is cancelled, ProcessEdges stops before the next connection and
// returns the edges walked so far with a nil error.  The only error is a
// wrapped [ErrFullRebuild], after which the region must be rebuilt.
func (w *Walker[T]) ProcessEdges(ctx context.Context, byOffset graph.EdgesByOffset, result *border.Grid[T], margin float64) ([]*graph.Edge, error) {
	name := w.v.name()
	log := terrain.Logger()
	start := time.Now()
	defer func() {
		regionDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}()

	if len(byOffset) == 0 {
		log.Debug("skip empty connections", "variant", name, "region", result.Region)
		regionsTotal.WithLabelValues(name, outcomeEmpty).Inc()
		return nil, nil
	}

	relevant := geometry.Expand(result.Region, margin)
	conns := byOffset.FilterForRect(relevant)
	if len(conns) == 0 {
		log.Debug("skip empty relevant connections", "variant", name, "region", result.Region)
		regionsTotal.WithLabelValues(name, outcomeEmpty).Inc()
		return nil, nil
	}

	r := &run[T]{
		Walker:   w,
		ctx:      ctx,
		result:   result,
		heights:  w.v.heights(result),
		relevant: relevant,
	}

	var processed []*graph.Edge
	for _, c := range conns {
		if ctx.Err() != nil {
			break
		}
		edges, err := r.connection(c)
		processed = append(processed, edges...)
		if err != nil {
			regionsTotal.WithLabelValues(name, outcomeRebuild).Inc()
			return processed, fmt.Errorf("connection %s: %w", c.ID(), err)
		}
	}
	edgesProcessed.WithLabelValues(name).Add(float64(len(processed)))

	if ctx.Err() != nil {
		log.Debug("region cancelled", "variant", name, "region", result.Region, "edges", len(processed))
		regionsTotal.WithLabelValues(name, outcomeCancelled).Inc()
		return processed, nil
	}
	regionsTotal.WithLabelValues(name, outcomeOK).Inc()
	return processed, nil
}

// run holds the state of one call to ProcessEdges.
type run[T any] struct {
	*Walker[T]
	ctx      context.Context
	result   *border.Grid[T]
	heights  *border.Heights
	relevant rect.Rect
}

// collector accumulates the samples of one subsection.
type collector struct {
	points  []border.Point
	prev    geometry.Vec3
	hasPrev bool
}

func (c *collector) last() *border.Point {
	if len(c.points) == 0 {
		return nil
	}
	return &c.points[len(c.points)-1]
}

// sample describes a pair of consecutive positions on an edge.
type sample struct {
	conn      *graph.Connection
	edge      *graph.Edge
	pos, next geometry.Vec3
	dist      float64 // distance of next from the start of conn
	total     float64
	width     float64
	secondary bool

	// crossing is set for samples of a connection which overflows from
	// this crossing.
	crossing *graph.Node

	// end places the sample at next instead of pos.
	end bool
}

func (r *run[T]) connection(c *graph.Connection) ([]*graph.Edge, error) {
	subs := c.DivideIntoSubsections(r.relevant, false, false)
	if len(subs) == 0 {
		return nil, nil
	}
	terrain.Logger().Debug("process connection", "connection", c, "subsections", len(subs))

	total := c.Length()
	// start with the length of the skipped edges
	dist := c.LengthBetween(nil, subs[0][0].Source())
	primary := c.IsPrimary()
	secondary := c.IsSecondary()

	var processed []*graph.Edge
	for i, sub := range subs {
		if r.ctx.Err() != nil {
			return processed, nil
		}
		processed = append(processed, sub...)

		points := r.walkSubsection(c, sub, dist, total, secondary)
		if len(points) > 0 {
			if err := r.v.postprocess(r.ctx, points, sub); err != nil {
				return processed, err
			}

			section := border.NewGrid[bool](r.result.Region, r.result.Resolution)
			r.v.fill(r.ctx, points, section, r.result)

			if r.opt.EndpointHandling == graphics.LineCapRound {
				r.capEnds(sub, points, section)
			}
			if r.opt.CrossingOverflow && primary {
				r.overflow(c, sub)
			}
		}

		if i+1 < len(subs) {
			dist = c.LengthBetween(nil, subs[i+1][0].Source())
		}
	}
	return processed, nil
}

// walkSubsection collects the samples of a run of consecutive edges of c.
// dist is the distance of the run from the source of c.
func (r *run[T]) walkSubsection(c *graph.Connection, sub []*graph.Edge, dist, total float64, secondary bool) []border.Point {
	col := &collector{}
	src, dst := c.Source(), c.Destination()

	var tail *sample
	for _, e := range sub {
		width := e.WidthMax() + r.opt.AdditionalWidth
		switch {
		case e.Destination() == dst && e.IsSecondary():
			r.crossingSecondary(col, dst, width, e)
			tail = nil
		case e.Source() == src && e.IsSecondary():
			r.crossingSecondary(col, src, width, e)
			tail = nil
		default:
			offset := dist
			e.WalkBezier(e.SlopeResolution()*r.opt.Detail, func(last, next graph.IntermediatePoint) {
				s := sample{
					conn:      c,
					edge:      e,
					pos:       last.Position,
					next:      next.Position,
					dist:      offset + next.Length,
					total:     total,
					width:     next.Width + r.opt.AdditionalWidth,
					secondary: secondary,
				}
				r.collect(col, &s)
				tail = &s
			})
		}
		dist += e.Length()
	}

	if tail != nil {
		tail.end = true
		r.collect(col, tail)
	}

	if r.opt.EndpointHandling == graphics.LineCapSquare && len(col.points) > 1 {
		r.extendEnds(col, sub)
	}
	return col.points
}

// collect appends the sample for s to col, unless s is degenerate or
// lies outside the fade range of an overflowing connection.
func (r *run[T]) collect(col *collector, s *sample) {
	pos, next := r.v.lower(s.pos, s.next, s.width)

	last := pos
	if pos == next && col.hasPrev {
		last = col.prev
	}
	if last == next {
		return
	}
	col.prev, col.hasPrev = pos, true

	at := last
	if s.end {
		at = next
	}

	opt := &r.opt
	normal := geometry.GroundNormal(last, next)
	remaining := s.total - s.dist
	radius := r.radius(s.conn, s.dist, s.width, s.secondary, remaining)

	prev := col.last()
	innerLeft := r.v.innerBorder(at, normal, radius)
	outerLeft := r.outerBorder(innerLeft, normal, radius, prev, border.Left)
	innerRight := r.v.innerBorder(at, normal.Mul(-1), radius)
	outerRight := r.outerBorder(innerRight, normal.Mul(-1), radius, prev, border.Right)

	src, dst := s.conn.Source(), s.conn.Destination()
	nearest := min(s.dist, remaining)
	alpha := 1.0
	overflow := s.crossing != nil

	if !overflow && opt.EndpointHandling == graphics.LineCapButt && opt.EndFadeDistance > 0 {
		if s.dist < opt.EndFadeDistance && !src.Type().IsCrossing() ||
			remaining < opt.EndFadeDistance && !dst.Type().IsCrossing() {
			alpha = opt.EndFadeFalloff.Evaluate(nearest / opt.EndFadeDistance)
		}
	}

	if !overflow && s.secondary && opt.CrossingFade && opt.CrossingDistance > 0 {
		if s.dist < opt.CrossingDistance && src.Type().IsCrossing() ||
			remaining < opt.CrossingDistance && dst.Type().IsCrossing() {
			alpha = opt.CrossingFalloff.Evaluate(nearest / opt.CrossingDistance)
		}
	}

	if overflow {
		d := opt.CrossingOverflowDistance
		switch {
		case d <= 0:
			return
		case s.dist < d && src == s.crossing:
			alpha = opt.CrossingOverflowFalloff.Evaluate(1 - s.dist/d)
		case remaining < d && dst == s.crossing:
			alpha = opt.CrossingOverflowFalloff.Evaluate(1 - remaining/d)
		default:
			return
		}
	}

	col.points = append(col.points, border.Point{
		Edge:        s.edge,
		Point:       at,
		InnerLeft:   innerLeft,
		InnerRight:  innerRight,
		OuterLeft:   outerLeft,
		OuterRight:  outerRight,
		SlopeNormal: geometry.SlopeNormal(last, next),
		Alpha:       alpha,
	})
}

// radius returns half the path width, widened near the crossings of
// secondary connections.
func (r *run[T]) radius(c *graph.Connection, dist, width float64, secondary bool, remaining float64) float64 {
	radius := width / 2

	opt := &r.opt
	if !opt.CrossingWiden || !secondary || opt.CrossingWidenDistance <= 0 {
		return radius
	}
	if dist < opt.CrossingWidenDistance && c.FirstEdge().IsSecondary() ||
		remaining < opt.CrossingWidenDistance && c.LastEdge().IsSecondary() {
		radius *= opt.widen(1 - min(dist, remaining)/opt.CrossingWidenDistance)
	}
	return radius
}

// widen returns the width factor at position pos of the widening curve.
func (o *Options) widen(pos float64) float64 {
	return o.CrossingWidenMin + o.CrossingWidenFalloff.Evaluate(pos)*(o.CrossingWidenMax-o.CrossingWidenMin)
}

// outerBorder places the outer border for the inner border at inner.  The
// border distance may differ from the one of the previous sample by at
// most BorderChange.
func (r *run[T]) outerBorder(inner, dir geometry.Vec3, radius float64, prev *border.Point, s border.Side) geometry.Vec3 {
	minBound, maxBound := r.v.borderBounds(inner, radius, r.result.Region)

	last := 0.0
	if prev != nil {
		last = prev.Outer(s).Sub(prev.Inner(s)).Length()
	}
	maxDist := maxBound
	if last != 0 {
		maxDist = min(maxBound, last+r.opt.BorderChange)
	}
	minDist := max(minBound, min(maxDist, last)-r.opt.BorderChange)

	return r.helper.FindPointForOuterBorder(r.ctx, inner, dir, r.opt.BorderMax, minDist, maxDist, r.heights)
}

// extendEnds prolongs the samples by one radius beyond the endpoints of
// the subsection.
func (r *run[T]) extendEnds(col *collector, sub []*graph.Edge) {
	pts := col.points
	if sub[0].Source().Type().IsEndpoint() {
		first := pts[0]
		dir := first.Point.Sub(pts[1].Point).Flat().Normalize()
		radius := first.InnerLeft.Sub(first.Point).Length()
		pts = append([]border.Point{shifted(first, dir.Mul(radius))}, pts...)
	}
	if sub[len(sub)-1].Destination().Type().IsEndpoint() {
		n := len(pts)
		last := pts[n-1]
		dir := last.Point.Sub(pts[n-2].Point).Flat().Normalize()
		radius := last.InnerLeft.Sub(last.Point).Length()
		pts = append(pts, shifted(last, dir.Mul(radius)))
	}
	col.points = pts
}

func shifted(p border.Point, d geometry.Vec3) border.Point {
	p.Point = p.Point.Add(d)
	p.InnerLeft = p.InnerLeft.Add(d)
	p.InnerRight = p.InnerRight.Add(d)
	p.OuterLeft = p.OuterLeft.Add(d)
	p.OuterRight = p.OuterRight.Add(d)
	return p
}

// capEnds adds round caps where the subsection starts or ends at an
// endpoint.
func (r *run[T]) capEnds(sub []*graph.Edge, points []border.Point, section *border.Grid[bool]) {
	if sub[0].Source().Type().IsEndpoint() {
		ring := r.helper.CircleAroundPoint(r.ctx, &points[0], false, r.opt.BorderMax, r.opt.BorderChange, false, r.heights)
		r.v.fill(r.ctx, ring, section, r.result)
	}
	if sub[len(sub)-1].Destination().Type().IsEndpoint() {
		ring := r.helper.CircleAroundPoint(r.ctx, &points[len(points)-1], true, r.opt.BorderMax, r.opt.BorderChange, false, r.heights)
		r.v.fill(r.ctx, ring, section, r.result)
	}
}

// tilt describes how the borders of an edge next to a crossing lean
// towards the two through edges of the crossing.
type tilt struct {
	edge              *graph.Edge
	toLeft, toRight   geometry.Vec3
	leftLen, rightLen float64 // border lengths at the perimeter
}

// crossingSecondary collects the samples of the edge e between a
// crossing and its perimeter, for a secondary connection.
func (r *run[T]) crossingSecondary(col *collector, crossing *graph.Node, width float64, e *graph.Edge) {
	log := terrain.Logger()

	through := lo.Filter(crossing.Edges(), func(x *graph.Edge, _ int) bool {
		return x != e && x.Connection() != e.Connection()
	})
	first, ok1 := lo.Find(through, func(x *graph.Edge) bool { return x.Source() == crossing })
	second, ok2 := lo.Find(through, func(x *graph.Edge) bool { return x.Destination() == crossing })
	if !ok1 || !ok2 {
		log.Warn("crossing without through edges", "node", crossing, "edge", e)
		return
	}

	cp := crossing.Position()
	to1 := first.Curve().SourceControl.Lerp(first.Destination().Position(), 0.5)
	to2 := second.Curve().DestinationControl.Lerp(second.Source().Position(), 0.5)
	toVec1 := to1.Sub(cp).Normalize().Mul(width / 2)
	toVec2 := to2.Sub(cp).Normalize().Mul(width / 2)

	b := e.Curve()
	lastPos := b.Source
	normal := geometry.GroundNormal(lastPos, b.Position(0.1))
	leftNode := lastPos.Add(normal)

	isStart := e.Source().Type().IsCrossing()

	var perimeter border.Point
	if isStart {
		ends := e.Nodes()
		pn, ok := lo.Find(ends[:], func(n *graph.Node) bool { return n.Type().IsCrossingPerimeter() })
		if !ok {
			log.Warn("crossing edge without perimeter", "edge", e)
			return
		}
		pos := pn.Position()
		conn := e.Connection()
		radius := r.radius(conn, e.Length(), width, true, conn.Length()-e.Length())

		innerLeft := r.v.innerBorder(pos, normal, radius)
		innerRight := r.v.innerBorder(pos, normal.Mul(-1), radius)
		perimeter = border.Point{
			Edge:        e,
			Point:       pos,
			InnerLeft:   innerLeft,
			InnerRight:  innerRight,
			OuterLeft:   r.outerBorder(innerLeft, normal, radius, nil, border.Left),
			OuterRight:  r.outerBorder(innerRight, normal.Mul(-1), radius, nil, border.Right),
			SlopeNormal: geometry.Up,
			Alpha:       1,
		}
	} else {
		last := col.last()
		if last == nil {
			// the edge is also walked by the neighbouring region
			log.Debug("no samples before crossing", "edge", e)
			return
		}
		perimeter = *last
	}

	t := &tilt{
		edge:     e,
		toLeft:   toVec2,
		toRight:  toVec1,
		leftLen:  perimeter.OuterLeft.Sub(perimeter.InnerLeft).Length(),
		rightLen: perimeter.OuterRight.Sub(perimeter.InnerRight).Length(),
	}
	if lastPos.Add(toVec1).Distance(leftNode) < lastPos.Add(toVec2).Distance(leftNode) {
		t.toLeft, t.toRight = toVec1, toVec2
	}
	r.tiltedEdge(col, t, &perimeter, isStart)
}

// tiltedEdge walks the crossing edge of t and connects the tilted
// samples to the perimeter sample.
func (r *run[T]) tiltedEdge(col *collector, t *tilt, perimeter *border.Point, isStart bool) {
	length := t.edge.Length()

	var tilted []border.Point
	t.edge.WalkBezier(2*r.opt.Detail, func(last, next graph.IntermediatePoint) {
		// leave room for the gap samples at the perimeter
		if isStart && next.Part == next.Parts {
			return
		}

		dist := next.Length
		progress := 0.0
		if length > 0 {
			progress = geometry.Clamp01(next.Length / length)
		}
		if !isStart {
			dist = length - next.Length
			progress = 1 - progress
		}

		slope := geometry.SlopeNormal(last.Position, next.Position)
		tilted = append(tilted, r.v.crossingPoint(t, next, slope, dist, progress))
	})
	if len(tilted) == 0 {
		return
	}

	if isStart {
		gap := fillGap(perimeter, &tilted[len(tilted)-1], perimeter)
		col.points = append(col.points, tilted...)
		col.points = append(col.points, gap...)
	} else {
		gap := fillGap(perimeter, perimeter, &tilted[0])
		col.points = append(col.points, gap...)
		col.points = append(col.points, tilted...)
	}
}

// fillGap returns samples between start and end, every gapStep units.
// The borders take their heights from the perimeter sample.
func fillGap(perimeter, start, end *border.Point) []border.Point {
	count := math.Ceil(end.Point.Distance(start.Point) / gapStep)

	var res []border.Point
	last := start.Point
	for i := 1.0; i < count; i++ {
		d := i / count
		at := func(a, b geometry.Vec3, y float64) geometry.Vec3 {
			v := a.Lerp(b, d)
			v.Y = y
			return v
		}
		pos := start.Point.Lerp(end.Point, d)
		res = append(res, border.Point{
			Edge:        start.Edge,
			Point:       pos,
			InnerLeft:   at(start.InnerLeft, end.InnerLeft, perimeter.InnerLeft.Y),
			InnerRight:  at(start.InnerRight, end.InnerRight, perimeter.InnerRight.Y),
			OuterLeft:   at(start.OuterLeft, end.OuterLeft, perimeter.OuterLeft.Y),
			OuterRight:  at(start.OuterRight, end.OuterRight, perimeter.OuterRight.Y),
			SlopeNormal: geometry.SlopeNormal(last, pos),
			Alpha:       1,
		})
		last = pos
	}
	return res
}

// overflow lets c spill into the connections which branch off the
// crossings of sub, with a weight which fades with the distance from the
// crossing.
func (r *run[T]) overflow(c *graph.Connection, sub []*graph.Edge) {
	offsets := graph.OffsetsForRect(r.relevant, graph.OffsetResolution)
	for _, n := range crossingNodes(sub) {
		if n == c.Source() || n == c.Destination() {
			continue
		}

		seen := map[*graph.Connection]bool{c: true}
		for _, ce := range n.Edges() {
			branch := ce.Connection()
			if branch == nil || seen[branch] {
				continue
			}
			seen[branch] = true
			if r.ctx.Err() != nil {
				return
			}

			edges := branch.EdgesForOffsets(offsets)
			if len(edges) == 0 {
				continue
			}
			total := lo.SumBy(edges, (*graph.Edge).Length)

			col := &collector{}
			dist := 0.0
			for _, e := range edges {
				width := e.WidthMax() + r.opt.AdditionalWidth
				offset := dist
				e.WalkBezier(r.opt.Detail, func(last, next graph.IntermediatePoint) {
					r.collect(col, &sample{
						conn:      branch,
						edge:      e,
						pos:       last.Position,
						next:      next.Position,
						dist:      offset + next.Length,
						total:     total,
						width:     width,
						secondary: true,
						crossing:  n,
					})
				})
				dist += e.Length()
			}

			if len(col.points) > 0 {
				section := border.NewGrid[bool](r.result.Region, r.result.Resolution)
				r.v.fill(r.ctx, col.points, section, r.result)
			}
		}
	}
}

// crossingNodes returns the crossings among the end nodes of the edges,
// in walking order.
func crossingNodes(edges []*graph.Edge) []*graph.Node {
	var nodes []*graph.Node
	for _, e := range edges {
		nodes = append(nodes, e.Source(), e.Destination())
	}
	return lo.Uniq(lo.Filter(nodes, func(n *graph.Node, _ int) bool {
		return n.Type().IsCrossing()
	}))
}
