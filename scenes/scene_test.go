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

package scenes

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"

	"seehuhn.de/go/terrain/border"
	"seehuhn.de/go/terrain/graph"
)

func valueAt(t *testing.T, g *border.Mask, x, z float64) float64 {
	t.Helper()
	cx, cy, ok := g.CellAt(vec.Vec2{X: x, Y: z})
	if !ok {
		t.Fatalf("(%g, %g) is outside the grid", x, z)
	}
	return g.At(cx, cy)
}

func TestBuiltin(t *testing.T) {
	seen := make(map[string]bool)
	for _, s := range Builtin() {
		t.Run(s.Name, func(t *testing.T) {
			if seen[s.Name] {
				t.Fatalf("duplicate scene name %q", s.Name)
			}
			seen[s.Name] = true

			res, err := s.Run(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			if len(res.Edges) == 0 {
				t.Fatal("no edges were processed")
			}

			changed := 0
			for y := range res.Grid.Height {
				for x := range res.Grid.Width {
					v := res.Grid.At(x, y)
					if v < 0 || v > res.Max {
						t.Fatalf("cell (%d, %d) = %g is out of range", x, y, v)
					}
					base := 0.0
					if s.Variant != Flat {
						base = s.Terrain.Sample(res.Grid.CellCenter(x, y))
					}
					if math.Abs(v-base) > 1e-9 {
						changed++
					}
				}
			}
			if changed == 0 {
				t.Error("the scene left the grid unchanged")
			}
		})
	}
}

func TestLookup(t *testing.T) {
	s, ok := Lookup("hairpin")
	if !ok || s.Name != "hairpin" {
		t.Fatalf("got %v, %t", s, ok)
	}
	if _, ok := Lookup("nonexistent"); ok {
		t.Error("found a scene which does not exist")
	}

	// every call returns a fresh copy
	s.Nodes[0].Position.X = -1000
	again, _ := Lookup("hairpin")
	if again.Nodes[0].Position.X == -1000 {
		t.Error("built-in scenes share state")
	}
}

func TestStraightScene(t *testing.T) {
	s, _ := Lookup("straight")
	res, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if v := valueAt(t, res.Grid, 50.5, 30.5); v != 1 {
		t.Errorf("centre: got %g, want 1", v)
	}
	if v := valueAt(t, res.Grid, 50.5, 55.5); v != 0 {
		t.Errorf("outside: got %g, want 0", v)
	}
	centre := valueAt(t, res.Grid, 50.5, 30.5)
	if end := valueAt(t, res.Grid, 11.5, 30.5); end >= centre {
		t.Errorf("the start of the path is not faded: %g", end)
	}
}

func TestCrossingScene(t *testing.T) {
	s, _ := Lookup("crossing")
	res, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if n := len(res.Edges); n != 4 {
		t.Errorf("got %d processed edges, want 4", n)
	}
	cases := []struct {
		x, z float64
		want float64
	}{
		{25.5, 40.5, 1}, // through road
		{80.5, 39.5, 1}, // through road
		{54.5, 70.5, 1}, // branch
		{10.5, 90.5, 0},
		{90.5, 70.5, 0},
	}
	for _, c := range cases {
		if v := valueAt(t, res.Grid, c.x, c.z); v != c.want {
			t.Errorf("(%g, %g): got %g, want %g", c.x, c.z, v, c.want)
		}
	}
}

func TestCapsScene(t *testing.T) {
	s, _ := Lookup("caps")
	res, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	ground := s.Terrain.Base
	if h := valueAt(t, res.Grid, 40.5, 30.5); h >= ground {
		t.Errorf("trench: got %g, want below %g", h, ground)
	}
	// the round caps carve beyond both ends
	for _, x := range []float64{17.5, 62.5} {
		if h := valueAt(t, res.Grid, x, 30.5); h >= ground {
			t.Errorf("cap at x=%g: got %g, want below %g", x, h, ground)
		}
	}
	if h := valueAt(t, res.Grid, 40.5, 50.5); h != ground {
		t.Errorf("outside: got %g, want %g", h, ground)
	}
}

func TestFordScene(t *testing.T) {
	s, _ := Lookup("ford")
	res, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	// the road lies at the height of the terrain, except where the tilted
	// borders of the ford lift one side and lower the other
	if h := valueAt(t, res.Grid, 20.5, 30.5); math.Abs(h-10) > 1e-9 {
		t.Errorf("road: got %g, want 10", h)
	}
	up := valueAt(t, res.Grid, 50.5, 26.5)
	down := valueAt(t, res.Grid, 50.5, 33.5)
	if up <= down {
		t.Errorf("ford is not tilted: %g upstream, %g downstream", up, down)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	for _, s := range Builtin() {
		t.Run(s.Name, func(t *testing.T) {
			data, err := s.Marshal()
			if err != nil {
				t.Fatal(err)
			}
			back, err := Parse(data)
			if err != nil {
				t.Fatal(err)
			}

			if back.Name != s.Name || back.Variant != s.Variant || back.Endpoints != s.Endpoints {
				t.Errorf("header changed: %q %q %q", back.Name, back.Variant, back.Endpoints)
			}
			if back.Region != s.Region || back.Terrain != s.Terrain {
				t.Errorf("region or terrain changed")
			}
			if back.Options.BorderMax != s.Options.BorderMax || back.Options.Type != s.Options.Type ||
				back.Options.CrossingOverflow != s.Options.CrossingOverflow {
				t.Errorf("options changed: %+v", back.Options)
			}
			if len(back.Options.Falloff) != len(s.Options.Falloff) {
				t.Errorf("falloff changed: %v", back.Options.Falloff)
			}

			g1, err := s.Build()
			if err != nil {
				t.Fatal(err)
			}
			g2, err := back.Build()
			if err != nil {
				t.Fatal(err)
			}
			if g1.NodeCount() != g2.NodeCount() || g1.ConnectionCount() != g2.ConnectionCount() ||
				g1.EdgeCount() != g2.EdgeCount() {
				t.Errorf("graph changed: %d/%d/%d nodes/connections/edges, want %d/%d/%d",
					g2.NodeCount(), g2.ConnectionCount(), g2.EdgeCount(),
					g1.NodeCount(), g1.ConnectionCount(), g1.EdgeCount())
			}
		})
	}
}

const minimal = `
name: minimal
region: {x: 0, z: 0, width: 50, height: 50}
variant: carving
endpoints: square
terrain: {base: 5, maxHeight: 20}
options:
  borderMax: 4
nodes:
  - {name: a, position: {x: 5, y: 5, z: 25}, type: Custom}
  - {name: b, position: {x: 45, y: 5, z: 25}, type: "Custom:trail"}
connections:
  - {width: 3, path: [a, b], direction: forward, type: Custom}
`

func TestParse(t *testing.T) {
	s, err := Parse([]byte(minimal))
	if err != nil {
		t.Fatal(err)
	}
	if s.Resolution != 1 {
		t.Errorf("default resolution lost: %g", s.Resolution)
	}
	if s.Options.BorderMax != 4 || s.Options.SectionCap != 5 {
		t.Errorf("options: got borderMax %g, sectionCap %d", s.Options.BorderMax, s.Options.SectionCap)
	}
	if s.Nodes[1].Type != (graph.NodeType{Base: graph.Custom, Custom: "trail"}) {
		t.Errorf("node type: got %v", s.Nodes[1].Type)
	}

	opt, err := s.WalkerOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opt.EndpointHandling != graphics.LineCapSquare || opt.TerrainHeight != 20 {
		t.Errorf("walker options: %+v", opt)
	}

	g, err := s.Build()
	if err != nil {
		t.Fatal(err)
	}
	conns := g.Connections()
	if len(conns) != 1 || conns[0].Direction() != graph.OneWayForward {
		t.Errorf("unexpected connections %v", conns)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name, old, new string
	}{
		{"variant", "variant: carving", "variant: melting"},
		{"endpoints", "endpoints: square", "endpoints: spiky"},
		{"region", "width: 50,", "width: 0,"},
		{"node", "path: [a, b]", "path: [a, c]"},
		{"short path", "path: [a, b]", "path: [a]"},
		{"width", "width: 3,", "width: 0,"},
		{"direction", "direction: forward", "direction: sideways"},
		{"duplicate", "name: b,", "name: a,"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			data := strings.Replace(minimal, c.old, c.new, 1)
			if data == minimal {
				t.Fatalf("%q not found", c.old)
			}
			_, err := Parse([]byte(data))
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("got %v, want ErrInvalid", err)
			}
		})
	}

	if _, err := Parse([]byte("nodes: [a: {")); err == nil || errors.Is(err, ErrInvalid) {
		t.Errorf("malformed YAML: got %v", err)
	}
	bad := strings.Replace(minimal, "type: Custom}", "type: Castle}", 1)
	if _, err := Parse([]byte(bad)); err == nil {
		t.Error("unknown node type accepted")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "minimal.yaml")
	if err := os.WriteFile(name, []byte(minimal), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := Load(name)
	if err != nil {
		t.Fatal(err)
	}
	if s.Name != "minimal" || len(s.Nodes) != 2 {
		t.Errorf("unexpected scene %+v", s)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: got %v", err)
	}
}

func TestTerrain(t *testing.T) {
	tr := Terrain{Base: 2, SlopeX: 0.5, SlopeZ: -1}
	if h := tr.Sample(vec.Vec2{X: 4, Y: 1}); h != 3 {
		t.Errorf("got %g, want 3", h)
	}
	if tr.Variance() != nil {
		t.Error("terrain without noise has a variance sampler")
	}
	tr.Noise = 2
	v := tr.Variance()
	if v == nil {
		t.Fatal("no variance sampler")
	}
	for _, p := range []vec.Vec2{{X: 0, Y: 0}, {X: 3, Y: 7}, {X: -50, Y: 12}} {
		if x := v(p); math.Abs(x) > 2 {
			t.Errorf("variance %g at %v exceeds the noise amplitude", x, p)
		}
	}
}

func TestEffectiveMargin(t *testing.T) {
	s, _ := Lookup("crossing")
	if m := s.EffectiveMargin(); m != 22 {
		t.Errorf("got %g, want 22", m)
	}
	s.Margin = 5
	if m := s.EffectiveMargin(); m != 5 {
		t.Errorf("got %g, want 5", m)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, _ := Lookup("straight")
	res, err := s.Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Edges) != 0 {
		t.Errorf("got %d edges after cancellation", len(res.Edges))
	}
}
