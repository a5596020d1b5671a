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
	"seehuhn.de/go/terrain/border"
	"seehuhn.de/go/terrain/geometry"
	"seehuhn.de/go/terrain/graph"
)

// Builtin returns freshly constructed copies of the built-in scenes,
// ordered by name.
func Builtin() []*Scene {
	return []*Scene{
		caps(),
		crossing(),
		curved(),
		ford(),
		hairpin(),
		straight(),
	}
}

// Lookup returns the built-in scene with the given name.
func Lookup(name string) (*Scene, bool) {
	for _, s := range Builtin() {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

func node(name string, x, y, z float64, base graph.BaseType) Node {
	return Node{
		Name:     name,
		Position: geometry.Vec3{X: x, Y: y, Z: z},
		Type:     graph.TypeOf(base),
	}
}

func straight() *Scene {
	s := New("straight", Flat)
	s.Description = "a single straight path, faded out at both ends"
	s.Region = Region{Width: 100, Height: 60}
	s.Options.BorderMax = 8
	s.Nodes = []Node{
		node("west", 10, 0, 30, graph.Custom),
		node("east", 90, 0, 30, graph.Custom),
	}
	s.Connections = []Connection{
		{Width: 8, Path: []string{"west", "east"}},
	}
	return s
}

func curved() *Scene {
	s := New("curve", Elevating)
	s.Description = "an S-shaped path on a slope, with adaptive borders and round ends"
	s.Region = Region{Width: 120, Height: 120}
	s.Endpoints = "round"
	s.Terrain = Terrain{Base: 5, SlopeX: 0.08, MaxHeight: 40, Noise: 0.5, Wavelength: 7}
	s.Options.Type = border.Adaptive
	s.Options.BorderMax = 12
	s.Options.MaxSlope = 25
	s.Nodes = []Node{
		node("start", 15, 10, 20, graph.Custom),
		node("end", 105, 12, 100, graph.Custom),
	}
	s.Connections = []Connection{
		{
			Width: 6,
			Path:  []string{"start", "end"},
			Curves: []Curve{{
				Edge: 0,
				Controls: [2]geometry.Vec3{
					{X: 70, Y: 10, Z: 20},
					{X: 50, Y: 12, Z: 100},
				},
			}},
		},
	}
	return s
}

func hairpin() *Scene {
	s := New("hairpin", Flat)
	s.Description = "a tight turn whose inner borders overlap"
	s.Region = Region{Width: 100, Height: 70}
	s.Options.BorderMax = 10
	s.Nodes = []Node{
		node("in", 10, 0, 25, graph.Custom),
		node("turn1", 70, 0, 25, graph.Section),
		node("turn2", 70, 0, 41, graph.Section),
		node("out", 10, 0, 41, graph.Custom),
	}
	s.Connections = []Connection{
		{
			Width: 8,
			Path:  []string{"in", "turn1", "turn2", "out"},
			Curves: []Curve{{
				Edge: 1,
				Controls: [2]geometry.Vec3{
					{X: 81, Y: 0, Z: 25},
					{X: 81, Y: 0, Z: 41},
				},
			}},
		},
	}
	return s
}

func crossing() *Scene {
	s := New("crossing", Flat)
	s.Description = "a branch joining a through road at a crossing"
	s.Region = Region{Width: 100, Height: 100}
	s.Options.BorderMax = 6
	s.Options.CrossingOverflow = true
	s.Options.CrossingWiden = true
	s.Options.CrossingFade = true
	s.Nodes = []Node{
		node("west", 0, 0, 40, graph.Custom),
		node("centre", 50, 0, 40, graph.Crossing),
		node("east", 100, 0, 40, graph.Custom),
		node("perimeter", 50, 0, 47, graph.CrossingPerimeter),
		node("north", 60, 0, 100, graph.Custom),
	}
	s.Nodes[3].BelongsTo = "centre"
	s.Connections = []Connection{
		{Width: 10, Path: []string{"west", "centre", "east"}},
		{Width: 6, Path: []string{"centre", "perimeter", "north"}},
	}
	return s
}

func caps() *Scene {
	s := New("caps", Carving)
	s.Description = "a short trench with round ends"
	s.Region = Region{Width: 80, Height: 60}
	s.Endpoints = "round"
	s.Terrain = Terrain{Base: 20, MaxHeight: 40}
	s.Options.BorderMax = 6
	s.Nodes = []Node{
		node("a", 20, 20, 30, graph.Custom),
		node("b", 60, 20, 30, graph.Custom),
	}
	s.Connections = []Connection{
		{Width: 6, Path: []string{"a", "b"}},
	}
	return s
}

func ford() *Scene {
	// the river runs towards +z and falls by 0.2 per unit
	const riverDirection = `{"x":0,"y":-0.2,"z":1}`

	s := New("ford", Elevating)
	s.Description = "a road crossing a river at a ford"
	s.Region = Region{Width: 100, Height: 60}
	s.Terrain = Terrain{Base: 10, MaxHeight: 40}
	s.Options.BorderMax = 6
	s.Options.EndFadeDistance = 0
	s.Nodes = []Node{
		node("west", 0, 10, 30, graph.Custom),
		node("bank1", 40, 10, 30, graph.SectionRiverFordSource),
		node("bank2", 60, 10, 30, graph.SectionRiverFordDestination),
		node("east", 100, 10, 30, graph.Custom),
	}
	for i := 1; i <= 2; i++ {
		s.Nodes[i].Data = map[string]string{graph.DataRiverDirection: riverDirection}
	}
	// the fords end sections, so the road is split into three connections
	s.Connections = []Connection{
		{Width: 8, Path: []string{"west", "bank1"}},
		{Width: 8, Path: []string{"bank1", "bank2"}},
		{Width: 8, Path: []string{"bank2", "east"}},
	}
	return s
}
