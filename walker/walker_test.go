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
	"errors"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"gopkg.in/yaml.v3"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"

	"seehuhn.de/go/terrain/border"
	"seehuhn.de/go/terrain/curve"
	"seehuhn.de/go/terrain/geometry"
	"seehuhn.de/go/terrain/graph"
)

const epsilon = 1e-6

func node(x, y, z float64, base graph.BaseType) *graph.Node {
	return graph.NewNode(geometry.Vec3{X: x, Y: y, Z: z}, 1, graph.TypeOf(base))
}

// store builds a connection through the given nodes and stores it in g.
func store(t *testing.T, g *graph.WorldGraph, width float64, nodes ...*graph.Node) *graph.Connection {
	t.Helper()
	c := graph.NewConnection(graph.ConnectionType{}, graph.TwoWay)
	for i := 1; i < len(nodes); i++ {
		if _, err := c.AddEdge(nodes[i-1], nodes[i], [2]float64{width, width}, nil); err != nil {
			t.Fatal(err)
		}
	}
	stored, err := g.StoreConnection(c, "paths")
	if err != nil {
		t.Fatal(err)
	}
	return stored
}

// straightPath returns a graph with one straight connection of length 100
// and width 10 along z=50, at height y.
func straightPath(t *testing.T, y float64) graph.EdgesByOffset {
	t.Helper()
	g := graph.New()
	store(t, g, 10, node(0, y, 50, graph.Custom), node(100, y, 50, graph.Custom))
	return g.ConnectionsByOffset("paths")
}

func testOptions() Options {
	opt := DefaultOptions(1, 100)
	opt.BorderMax = 5
	opt.Falloff = curve.Linear()
	opt.EndFadeDistance = 0
	return opt
}

func maskAt(m *border.Mask, x, z float64) float64 {
	cx, cy, ok := m.CellAt(vec.Vec2{X: x, Y: z})
	if !ok {
		return math.NaN()
	}
	return m.At(cx, cy)
}

func TestFlatStraightPath(t *testing.T) {
	w := NewFlat(testOptions(), nil)
	mask := border.NewGrid[float64](geometry.Rect(-20, 30, 140, 40), 1)

	before := testutil.ToFloat64(regionsTotal.WithLabelValues("flat", outcomeOK))
	edgesBefore := testutil.ToFloat64(edgesProcessed.WithLabelValues("flat"))

	edges, err := w.ProcessEdges(context.Background(), straightPath(t, 0), mask, Margin(10, 5, 0))
	if err != nil {
		t.Fatal(err)
	}
	if len(edges) != 1 {
		t.Fatalf("got %d processed edges, want 1", len(edges))
	}

	// distance from the centre line -> mask value
	cases := []struct {
		d    float64
		want float64
	}{
		{0.5, 1},
		{2.5, 1},
		{4.5, 1},
		{6.5, 0.7},
		{7.5, 0.5},
		{9.5, 0.1},
		{11.5, 0},
		{15.5, 0},
	}
	for _, x := range []float64{10.5, 50.5, 89.5} {
		for _, c := range cases {
			above := maskAt(mask, x, 50+c.d)
			below := maskAt(mask, x, 50-c.d)
			if math.Abs(above-c.want) > epsilon {
				t.Errorf("x=%g d=%g: got %g, want %g", x, c.d, above, c.want)
			}
			if math.Abs(above-below) > epsilon {
				t.Errorf("x=%g d=%g: asymmetric, %g != %g", x, c.d, above, below)
			}
		}
	}
	if v := maskAt(mask, 103.5, 50.5); v != 0 {
		t.Errorf("butt end: got %g beyond the endpoint", v)
	}

	if d := testutil.ToFloat64(regionsTotal.WithLabelValues("flat", outcomeOK)) - before; d != 1 {
		t.Errorf("ok regions: got %g, want 1", d)
	}
	if d := testutil.ToFloat64(edgesProcessed.WithLabelValues("flat")) - edgesBefore; d != 1 {
		t.Errorf("edges processed: got %g, want 1", d)
	}
}

func TestEndpointHandling(t *testing.T) {
	cases := []struct {
		name  string
		style graphics.LineCapStyle
		at    float64 // x position beyond the end at x=100
		want  float64
	}{
		{"butt", graphics.LineCapButt, 103.5, 0},
		{"square", graphics.LineCapSquare, 103.5, 1},
		{"square-outside", graphics.LineCapSquare, 106.5, 0},
		{"round", graphics.LineCapRound, 103.5, 1},
		{"round-outside", graphics.LineCapRound, 112.5, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			opt := testOptions()
			opt.EndpointHandling = c.style
			w := NewFlat(opt, nil)
			mask := border.NewGrid[float64](geometry.Rect(-20, 30, 140, 40), 1)
			if _, err := w.ProcessEdges(context.Background(), straightPath(t, 0), mask, 20); err != nil {
				t.Fatal(err)
			}
			if v := maskAt(mask, c.at, 50.5); math.Abs(v-c.want) > epsilon {
				t.Errorf("x=%g: got %g, want %g", c.at, v, c.want)
			}
			if v := maskAt(mask, 50.5, 50.5); v != 1 {
				t.Errorf("centre: got %g, want 1", v)
			}
		})
	}
}

func TestEndFade(t *testing.T) {
	opt := testOptions()
	opt.EndFadeDistance = 10
	opt.EndFadeFalloff = curve.Linear()
	w := NewFlat(opt, nil)
	mask := border.NewGrid[float64](geometry.Rect(-20, 30, 140, 40), 1)
	if _, err := w.ProcessEdges(context.Background(), straightPath(t, 0), mask, 20); err != nil {
		t.Fatal(err)
	}

	if v := maskAt(mask, 50.5, 50.5); v != 1 {
		t.Errorf("centre: got %g, want 1", v)
	}
	near := maskAt(mask, 2.5, 50.5)
	if near <= 0 || near >= 0.5 {
		t.Errorf("near the start: got %g, want a value in (0, 0.5)", near)
	}
	if end := maskAt(mask, 97.5, 50.5); math.Abs(end-near) > 0.25 {
		t.Errorf("fade is not symmetric: %g at the start, %g at the end", near, end)
	}
}

func TestCrossing(t *testing.T) {
	g := graph.New()
	x := node(50, 0, 50, graph.Crossing)
	store(t, g, 10, node(0, 0, 50, graph.Custom), x, node(100, 0, 50, graph.Custom))

	p := node(50, 0, 56, graph.CrossingPerimeter)
	p.SetBelongsTo(x)
	store(t, g, 4, x, p, node(50, 0, 95, graph.Custom))

	opt := testOptions()
	opt.CrossingOverflow = true
	opt.CrossingWiden = true
	w := NewFlat(opt, nil)
	mask := border.NewGrid[float64](geometry.Rect(0, 0, 100, 100), 1)

	edges, err := w.ProcessEdges(context.Background(), g.ConnectionsByOffset("paths"), mask, 20)
	if err != nil {
		t.Fatal(err)
	}
	if len(edges) != 4 {
		t.Errorf("got %d processed edges, want 4", len(edges))
	}

	for _, pt := range []vec.Vec2{{X: 25.5, Y: 50.5}, {X: 75.5, Y: 49.5}, {X: 50.5, Y: 80.5}} {
		if v := maskAt(mask, pt.X, pt.Y); v != 1 {
			t.Errorf("%v: got %g, want 1", pt, v)
		}
	}
	if v := maskAt(mask, 50.5, 58.5); v <= 0 {
		t.Errorf("branch near the crossing is empty")
	}
	if v := maskAt(mask, 20.5, 80.5); v != 0 {
		t.Errorf("far from all paths: got %g", v)
	}
}

func TestCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := NewFlat(testOptions(), nil)
	mask := border.NewGrid[float64](geometry.Rect(-20, 30, 140, 40), 1)
	before := testutil.ToFloat64(regionsTotal.WithLabelValues("flat", outcomeCancelled))

	edges, err := w.ProcessEdges(ctx, straightPath(t, 0), mask, 20)
	if err != nil {
		t.Fatal(err)
	}
	if len(edges) != 0 {
		t.Errorf("got %d processed edges", len(edges))
	}
	for i, v := range mask.Cells {
		if v != 0 {
			t.Fatalf("cell %d was written: %g", i, v)
		}
	}
	if d := testutil.ToFloat64(regionsTotal.WithLabelValues("flat", outcomeCancelled)) - before; d != 1 {
		t.Errorf("cancelled regions: got %g, want 1", d)
	}
}

func TestEmpty(t *testing.T) {
	w := NewFlat(testOptions(), nil)
	far := border.NewGrid[float64](geometry.Rect(1000, 1000, 20, 20), 1)
	for name, byOffset := range map[string]graph.EdgesByOffset{
		"no connections": {},
		"far away":       straightPath(t, 0),
	} {
		edges, err := w.ProcessEdges(context.Background(), byOffset, far, 10)
		if err != nil || len(edges) != 0 {
			t.Errorf("%s: got %d edges, error %v", name, len(edges), err)
		}
	}
}

func TestElevating(t *testing.T) {
	if _, err := NewElevating(testOptions(), nil, nil, nil); !errors.Is(err, ErrMissingHeight) {
		t.Errorf("missing height: got %v", err)
	}

	ground := func(vec.Vec2) float64 { return 10 }
	w, err := NewElevating(testOptions(), ground, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	heights := border.NewGrid[*border.HeightProcess](geometry.Rect(-20, 30, 140, 40), 1)
	if _, err := w.ProcessEdges(context.Background(), straightPath(t, 20), heights, 20); err != nil {
		t.Fatal(err)
	}
	composed := border.Compose(heights, ground)

	cases := []struct {
		d, want float64
	}{
		{0.5, 20},
		{4.5, 20},
		{7.5, 15},
		{11.5, 10},
	}
	for _, c := range cases {
		for _, z := range []float64{50 + c.d, 50 - c.d} {
			if h := maskAt(composed, 50.5, z); math.Abs(h-c.want) > epsilon {
				t.Errorf("z=%g: got %g, want %g", z, h, c.want)
			}
		}
	}
}

func TestCarving(t *testing.T) {
	ground := func(vec.Vec2) float64 { return 10 }
	w, err := NewCarving(testOptions(), ground, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	heights := border.NewGrid[*border.HeightProcess](geometry.Rect(-20, 30, 140, 40), 1)
	if _, err := w.ProcessEdges(context.Background(), straightPath(t, 10), heights, 20); err != nil {
		t.Fatal(err)
	}
	composed := border.Compose(heights, ground)

	// width 10 and depth ratio 0.1 give a trench of depth 1 with
	// borders of 5 on either side of the centre line
	if h := maskAt(composed, 50.5, 50.5); h < 9 || h > 9.2 {
		t.Errorf("centre: got %g, want about 9", h)
	}
	if h := maskAt(composed, 50.5, 52.5); math.Abs(h-9.5) > epsilon {
		t.Errorf("half way: got %g, want 9.5", h)
	}
	if h := maskAt(composed, 50.5, 57.5); h != 10 {
		t.Errorf("outside: got %g, want 10", h)
	}
}

// hairpin returns samples along a path which comes in along z=0, turns
// around the point (0, 2) and leaves along z=4.  The borders reach 6
// units from the centre on both sides, so the inner borders of the turn
// overlap heavily.
func hairpin() []border.Point {
	var pos []geometry.Vec3
	for x := -10.0; x < 0; x++ {
		pos = append(pos, geometry.Vec3{X: x})
	}
	for a := -90.0; a <= 90; a += 15 {
		r := a * math.Pi / 180
		pos = append(pos, geometry.Vec3{X: 2 * math.Cos(r), Z: 2 + 2*math.Sin(r)})
	}
	for x := -1.0; x >= -10; x-- {
		pos = append(pos, geometry.Vec3{X: x, Z: 4})
	}

	points := make([]border.Point, len(pos))
	for i, p := range pos {
		a, b := pos[max(i-1, 0)], pos[min(i+1, len(pos)-1)]
		n := geometry.GroundNormal(a, b)
		points[i] = border.Point{
			Point:      p,
			InnerLeft:  p.Add(n),
			InnerRight: p.Sub(n),
			OuterLeft:  p.Add(n.Mul(6)),
			OuterRight: p.Sub(n.Mul(6)),
			Alpha:      1,
		}
	}
	return points
}

func crossingPairs(points []border.Point, side border.Side, padding float64) int {
	count := 0
	for i := 1; i < len(points); i++ {
		p, q := &points[i-1], &points[i]
		if _, ok := geometry.Intersect(p.Point.XZ(), p.Outer(side).XZ(), q.Point.XZ(), q.Outer(side).XZ(), padding); ok {
			count++
		}
	}
	return count
}

func TestFixOverlappingBorders(t *testing.T) {
	w := NewFlat(testOptions(), nil)
	pad := w.opt.IntersectPadding
	points := hairpin()

	if crossingPairs(points, border.Left, pad) == 0 {
		t.Fatal("test path has no overlapping borders")
	}

	if err := w.fixOverlappingBorders(context.Background(), points); err != nil {
		t.Fatal(err)
	}
	for _, side := range []border.Side{border.Left, border.Right} {
		if n := crossingPairs(points, side, pad); n != 0 {
			t.Errorf("%s: %d adjacent border segments still cross", side, n)
		}
	}

	adjusted := 0
	for i, p := range points {
		if p.OverlapLeft {
			adjusted++
		}
		if p.OverlapRight {
			t.Errorf("sample %d: outer side of the turn was adjusted", i)
		}
		if p.Inner(border.Left).Distance(p.Point) > p.Outer(border.Left).Distance(p.Point)+epsilon {
			t.Errorf("sample %d: inner border beyond the outer border", i)
		}
	}
	if adjusted == 0 {
		t.Error("no sample was adjusted")
	}
}

func TestFixOverlappingBordersTilted(t *testing.T) {
	w := NewFlat(testOptions(), nil)
	points := hairpin()
	for i := range points {
		points[i].Tilted = true
	}
	orig := append([]border.Point(nil), points...)

	if err := w.fixOverlappingBorders(context.Background(), points); err != nil {
		t.Fatal(err)
	}
	for i := range points {
		if points[i] != orig[i] {
			t.Fatalf("tilted sample %d was changed", i)
		}
	}
}

func TestAdjustBorderDegenerate(t *testing.T) {
	pt := func(x, z, ox, oz float64) border.Point {
		p := geometry.Vec3{X: x, Z: z}
		o := geometry.Vec3{X: ox, Z: oz}
		return border.Point{Point: p, InnerLeft: p, OuterLeft: o}
	}
	// the interpolated outer border of the middle sample is its centre
	points := []border.Point{
		pt(-1, 0, -1, 1),
		pt(0, 0, 0, 3),
		pt(1, 0, 1, -1),
	}
	if err := adjustBorder(points, 0, 2, border.Left); !errors.Is(err, ErrFullRebuild) {
		t.Errorf("got %v, want ErrFullRebuild", err)
	}
}

func TestOptionsYAML(t *testing.T) {
	in := `
borderType: adaptive
borderSlopeMax: 30
borderMax: 8
crossingOverflow: true
falloff:
  - {time: 0, value: 0, in: 1, out: 1}
  - {time: 1, value: 1, in: 1, out: 1}
`
	opt := DefaultOptions(2, 50)
	if err := yaml.Unmarshal([]byte(in), &opt); err != nil {
		t.Fatal(err)
	}
	if opt.Type != border.Adaptive || opt.MaxSlope != 30 || opt.BorderMax != 8 || !opt.CrossingOverflow {
		t.Errorf("options not loaded: %+v", opt)
	}
	if opt.Resolution != 2 || opt.TerrainHeight != 50 || opt.SectionCap != 5 {
		t.Errorf("defaults lost: %+v", opt)
	}
	if v := opt.Falloff.Evaluate(0.25); math.Abs(v-0.25) > epsilon {
		t.Errorf("falloff(0.25) = %g", v)
	}
}

func TestParseEndpointHandling(t *testing.T) {
	cases := []struct {
		in   string
		want graphics.LineCapStyle
		ok   bool
	}{
		{"", graphics.LineCapButt, true},
		{"butt", graphics.LineCapButt, true},
		{"fade", graphics.LineCapButt, true},
		{"round", graphics.LineCapRound, true},
		{"circle", graphics.LineCapRound, true},
		{"square", graphics.LineCapSquare, true},
		{"spiky", 0, false},
	}
	for _, c := range cases {
		got, err := ParseEndpointHandling(c.in)
		if (err == nil) != c.ok {
			t.Errorf("%q: unexpected error %v", c.in, err)
			continue
		}
		if c.ok && got != c.want {
			t.Errorf("%q: got %v, want %v", c.in, got, c.want)
		}
	}
}

func TestMargin(t *testing.T) {
	if m := Margin(10, 5, 0); m != 20 {
		t.Errorf("got %g, want 20", m)
	}
	if m := Margin(3.2, 1, 2.5); m != 8 {
		t.Errorf("got %g, want 8", m)
	}
}

func BenchmarkFlatStraightPath(b *testing.B) {
	g := graph.New()
	c := graph.NewConnection(graph.ConnectionType{}, graph.TwoWay)
	if _, err := c.AddEdge(node(0, 0, 50, graph.Custom), node(100, 0, 50, graph.Custom), [2]float64{10, 10}, nil); err != nil {
		b.Fatal(err)
	}
	if _, err := g.StoreConnection(c, "paths"); err != nil {
		b.Fatal(err)
	}
	byOffset := g.ConnectionsByOffset("paths")

	w := NewFlat(testOptions(), nil)
	mask := border.NewGrid[float64](geometry.Rect(-20, 30, 140, 40), 1)
	ctx := context.Background()
	for b.Loop() {
		mask.Clear()
		if _, err := w.ProcessEdges(ctx, byOffset, mask, 20); err != nil {
			b.Fatal(err)
		}
	}
}

// TestCrossingOverflow checks the mask along a secondary connection which
// leaves a crossing of a primary connection.  The secondary connection
// fades in over CrossingDistance.  With overflow enabled, the primary
// connection spills into the first CrossingOverflowDistance units of the
// branch, and the mask is the larger of both weights.
func TestCrossingOverflow(t *testing.T) {
	build := func(t *testing.T) graph.EdgesByOffset {
		g := graph.New()
		x := node(50, 0, 50, graph.Crossing)
		store(t, g, 10, node(0, 0, 50, graph.Custom), x, node(100, 0, 50, graph.Custom))

		p := node(50, 0, 56, graph.CrossingPerimeter)
		p.SetBelongsTo(x)
		store(t, g, 4, x, p, node(50, 0, 146, graph.Custom))
		return g.ConnectionsByOffset("paths")
	}

	// Samples along the branch lie 2 units apart.  A cell between two
	// samples takes the weight of the earlier one, which is computed for
	// the distance of the later one from the crossing.
	cases := []struct {
		z              float64
		fade, overflow float64
	}{
		{60.5, 12.0 / 40, 1 - 12.0/24},
		{62.5, 14.0 / 40, 1 - 14.0/24},
		{64.5, 16.0 / 40, 16.0 / 40},
		{68.5, 20.0 / 40, 20.0 / 40},
		{70.5, 22.0 / 40, 22.0 / 40},
		{90.5, 1, 1},
	}

	for _, overflow := range []bool{false, true} {
		opt := testOptions()
		opt.CrossingFade = true
		opt.CrossingDistance = 40
		opt.CrossingFalloff = curve.Linear()
		opt.CrossingOverflow = overflow
		opt.CrossingOverflowDistance = 24
		opt.CrossingOverflowFalloff = curve.Linear()
		w := NewFlat(opt, nil)
		mask := border.NewGrid[float64](geometry.Rect(0, 0, 100, 160), 1)

		if _, err := w.ProcessEdges(context.Background(), build(t), mask, 20); err != nil {
			t.Fatal(err)
		}
		for _, c := range cases {
			want := c.fade
			if overflow {
				want = c.overflow
			}
			if v := maskAt(mask, 50.5, c.z); math.Abs(v-want) > epsilon {
				t.Errorf("overflow=%t z=%g: got %g, want %g", overflow, c.z, v, want)
			}
		}
	}
}

// hairpinPath returns a graph with one connection of width 4 which runs
// along z=40 from x=10 to x=50, turns through 180 degrees around (50, 43)
// and returns along z=46 to x=10.
func hairpinPath(t *testing.T) graph.EdgesByOffset {
	t.Helper()
	a, b := node(10, 0, 40, graph.Custom), node(50, 0, 40, graph.Section)
	c, d := node(50, 0, 46, graph.Section), node(10, 0, 46, graph.Custom)
	turn := curve.New(b.Position(), geometry.Vec3{X: 54, Z: 40}, geometry.Vec3{X: 54, Z: 46}, c.Position())

	conn := graph.NewConnection(graph.ConnectionType{}, graph.TwoWay)
	edges := []struct {
		from, to *graph.Node
		bezier   *curve.Bezier
	}{
		{a, b, nil},
		{b, c, turn},
		{c, d, nil},
	}
	for _, e := range edges {
		if _, err := conn.AddEdge(e.from, e.to, [2]float64{4, 4}, e.bezier); err != nil {
			t.Fatal(err)
		}
	}
	g := graph.New()
	if _, err := g.StoreConnection(conn, "paths"); err != nil {
		t.Fatal(err)
	}
	return g.ConnectionsByOffset("paths")
}

func hairpinOptions() Options {
	opt := testOptions()
	opt.Detail = 1.5
	return opt
}

func TestHairpinSamples(t *testing.T) {
	w := NewFlat(hairpinOptions(), nil)
	mask := border.NewGrid[float64](geometry.Rect(0, 20, 80, 40), 1)
	r := &run[float64]{
		Walker:   w,
		ctx:      context.Background(),
		result:   mask,
		relevant: geometry.Expand(mask.Region, 20),
	}
	conns := hairpinPath(t).FilterForRect(r.relevant)
	if len(conns) != 1 {
		t.Fatalf("got %d connections, want 1", len(conns))
	}
	c := conns[0]

	points := r.walkSubsection(c, c.Edges(), 0, c.Length(), false)
	pad := w.opt.IntersectPadding
	if crossingPairs(points, border.Left, pad) == 0 {
		t.Fatal("the turn has no overlapping borders")
	}

	if err := w.v.postprocess(r.ctx, points, c.Edges()); err != nil {
		t.Fatal(err)
	}
	for _, side := range []border.Side{border.Left, border.Right} {
		if n := crossingPairs(points, side, pad); n != 0 {
			t.Errorf("%s: %d adjacent border segments still cross", side, n)
		}
	}

	adjusted := 0
	for i, p := range points {
		if p.OverlapRight {
			t.Errorf("sample %d: outer side of the turn was adjusted", i)
		}
		if p.OverlapLeft {
			adjusted++
		}
		if p.Point.X < 40 {
			// radius 2 plus BorderMax 5
			if d := p.OuterLeft.Distance(p.Point); p.OverlapLeft || math.Abs(d-7) > epsilon {
				t.Errorf("sample %d at x=%.2f: left border changed to %g", i, p.Point.X, d)
			}
		}
	}
	if adjusted == 0 {
		t.Error("no sample was adjusted")
	}
}

func TestHairpinMask(t *testing.T) {
	w := NewFlat(hairpinOptions(), nil)
	mask := border.NewGrid[float64](geometry.Rect(0, 20, 80, 40), 1)
	edges, err := w.ProcessEdges(context.Background(), hairpinPath(t), mask, 20)
	if err != nil {
		t.Fatal(err)
	}
	if len(edges) != 3 {
		t.Errorf("got %d processed edges, want 3", len(edges))
	}

	// Away from the turn the legs keep their plain profile.  The inner
	// borders of both legs reach across the gap between them.
	cases := []struct {
		z, want float64
	}{
		{30.5, 0},
		{35.5, 0.5},
		{40.5, 1},
		{42.5, 0.9},
		{43.5, 0.9},
		{46.5, 1},
		{50.5, 0.5},
		{54.5, 0},
	}
	for _, c := range cases {
		if v := maskAt(mask, 25.5, c.z); math.Abs(v-c.want) > epsilon {
			t.Errorf("z=%g: got %g, want %g", c.z, v, c.want)
		}
	}

	// just outside the centre line of the turn
	if v := maskAt(mask, 53.5, 43.5); v != 1 {
		t.Errorf("turn: got %g, want 1", v)
	}
}

// tiltedSample returns a sample at (x, 0, 0) on a path along the x axis,
// with inner borders 2 and outer borders 7 away from the centre line.
// The borders on the left and right rise at the given angles, in
// degrees.
func tiltedSample(x, left, right float64) border.Point {
	p := geometry.Vec3{X: x}
	side := func(dir, angle float64) (geometry.Vec3, geometry.Vec3) {
		a := angle * math.Pi / 180
		inner := p.Add(geometry.Vec3{Y: 2 * math.Tan(a), Z: 2 * dir})
		outer := inner.Add(geometry.Vec3{Y: 5 * math.Sin(a), Z: 5 * math.Cos(a) * dir})
		return inner, outer
	}
	pt := border.Point{Point: p, Alpha: 1, Tilted: left != 0 || right != 0}
	pt.InnerLeft, pt.OuterLeft = side(1, left)
	pt.InnerRight, pt.OuterRight = side(-1, right)
	return pt
}

func TestSmoothTiltedCrossings(t *testing.T) {
	opt := testOptions()
	opt.CrossingTiltSmoothingDistance = 4
	w, err := NewElevating(opt, func(vec.Vec2) float64 { return 0 }, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	v := w.v.(*elevating)

	// 21 samples one unit apart, tilted at both ends
	var points []border.Point
	for i := range 21 {
		if i < 3 || i > 17 {
			points = append(points, tiltedSample(float64(i), 30, -20))
		} else {
			points = append(points, tiltedSample(float64(i), 0, 0))
		}
	}
	v.smoothTiltedCrossings(points)

	// sample index -> share of the tilt which remains
	cases := []struct {
		i      int
		amount float64
	}{
		{3, 0.75}, {4, 0.5}, {5, 0.25}, {6, 0},
		{17, 0.75}, {16, 0.5}, {15, 0.25}, {14, 0},
	}
	for _, c := range cases {
		p := &points[c.i]
		if !p.Smoothed {
			t.Errorf("sample %d: not smoothed", c.i)
		}
		for _, s := range []struct {
			side  border.Side
			angle float64
		}{
			{border.Left, 30},
			{border.Right, -20},
		} {
			inner, outer := p.Inner(s.side).Sub(p.Point), p.Outer(s.side).Sub(p.Point)
			want := c.amount * s.angle
			if got := geometry.AngleToGround(inner); math.Abs(got-want) > 1e-9 {
				t.Errorf("sample %d %s: inner border at %g degrees, want %g", c.i, s.side, got, want)
			}
			if got := geometry.AngleToGround(outer); math.Abs(got-want) > 1e-9 {
				t.Errorf("sample %d %s: outer border at %g degrees, want %g", c.i, s.side, got, want)
			}
			if l := inner.XZ().Length(); math.Abs(l-2) > 1e-9 {
				t.Errorf("sample %d %s: inner border %g from the centre, want 2", c.i, s.side, l)
			}
			if l := p.Outer(s.side).Distance(p.Inner(s.side)); math.Abs(l-5) > 1e-9 {
				t.Errorf("sample %d %s: border length %g, want 5", c.i, s.side, l)
			}
		}
	}

	for i := 7; i <= 13; i++ {
		p := &points[i]
		if p.Smoothed || p.InnerLeft.Y != 0 || p.OuterRight.Y != 0 {
			t.Errorf("sample %d: changed outside the smoothing distance", i)
		}
	}
}

func TestRiverFordTilt(t *testing.T) {
	ford := node(0.5, 30, 50.25, graph.SectionRiverFordSource)
	// the river runs downhill at 45 degrees across the path
	ford.SetData(graph.DataRiverDirection, `{"x":0,"y":-1,"z":1}`)
	g := graph.New()
	store(t, g, 4, ford, node(60.5, 30, 50.25, graph.Custom))

	ground := func(vec.Vec2) float64 { return 30 }
	w, err := NewElevating(testOptions(), ground, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	heights := border.NewGrid[*border.HeightProcess](geometry.Rect(-20, 20, 100, 60), 1)
	if _, err := w.ProcessEdges(context.Background(), g.ConnectionsByOffset("paths"), heights, 20); err != nil {
		t.Fatal(err)
	}
	composed := border.Compose(heights, ground)

	// downstream side
	prev := math.Inf(-1)
	for _, x := range []float64{1.5, 5.5, 9.5, 13.5} {
		h := maskAt(composed, x, 51.5)
		if h >= 30 || h <= prev {
			t.Errorf("x=%g: left side at %g, want below 30 and above %g", x, h, prev)
		}
		prev = h
	}
	// upstream side
	if h := maskAt(composed, 1.5, 49); h <= 30 {
		t.Errorf("right side at the ford: got %g, want above 30", h)
	}

	// beyond CrossingTiltSmoothingDistance the path is level again
	for _, z := range []float64{49, 51.5} {
		if h := maskAt(composed, 31.5, z); h != 30 {
			t.Errorf("z=%g: got %g, want 30", z, h)
		}
	}
}

// TestAdaptiveBorders runs a path along the edge of a cliff.  On the
// gentle slope to the left the outer border stops one unit beyond the
// inner border, where the terrain is first flat enough.  Above the cliff
// to the right the search runs to BorderMax.
func TestAdaptiveBorders(t *testing.T) {
	ground := func(p vec.Vec2) float64 {
		d := p.Y - 50.25
		if d < 0 {
			return 30 + 2*d
		}
		return 30 + 0.1*d
	}
	g := graph.New()
	store(t, g, 4, node(0.5, 30, 50.25, graph.Custom), node(100.5, 30, 50.25, graph.Custom))
	byOffset := g.ConnectionsByOffset("paths")

	cases := []struct {
		z            float64
		fixed, adapt float64
	}{
		// centre line
		{50.5, 30, 30},
		// left: inner border at 52.25, adaptive outer border at 53.25
		{52.5, ground(vec.Vec2{Y: 52.5}) + (30-ground(vec.Vec2{Y: 52.5}))*0.95,
			ground(vec.Vec2{Y: 52.5}) + (30-ground(vec.Vec2{Y: 52.5}))*0.75},
		{53.5, ground(vec.Vec2{Y: 53.5}) + (30-ground(vec.Vec2{Y: 53.5}))*0.75,
			ground(vec.Vec2{Y: 53.5})},
		// right: inner border at 48.25, outer border at 43.25 either way
		{45.5, ground(vec.Vec2{Y: 45.5}) + (30-ground(vec.Vec2{Y: 45.5}))*0.45,
			ground(vec.Vec2{Y: 45.5}) + (30-ground(vec.Vec2{Y: 45.5}))*0.45},
		{42.5, ground(vec.Vec2{Y: 42.5}), ground(vec.Vec2{Y: 42.5})},
	}

	for _, typ := range []border.BorderType{border.Fixed, border.Adaptive} {
		opt := testOptions()
		opt.Type = typ
		w, err := NewElevating(opt, ground, nil, nil)
		if err != nil {
			t.Fatal(err)
		}
		heights := border.NewGrid[*border.HeightProcess](geometry.Rect(-20, 20, 140, 60), 1)
		if _, err := w.ProcessEdges(context.Background(), byOffset, heights, 20); err != nil {
			t.Fatal(err)
		}
		composed := border.Compose(heights, ground)

		for _, c := range cases {
			want := c.fixed
			if typ == border.Adaptive {
				want = c.adapt
			}
			if h := maskAt(composed, 51.5, c.z); math.Abs(h-want) > 1e-6 {
				t.Errorf("%s z=%g: got %g, want %g", typ, c.z, h, want)
			}
		}
	}
}
