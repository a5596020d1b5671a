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

// Package scenes describes small terrains with path graphs on them.
//
// A scene fixes a region of the ground plane, an analytic base terrain, the
// nodes and connections of a graph and the walker which writes the paths
// into a grid.  Scenes are used as test fixtures and by the terrainpath
// command.  They can be written to and read from YAML files.
package scenes

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/terrain"
	"seehuhn.de/go/terrain/border"
	"seehuhn.de/go/terrain/curve"
	"seehuhn.de/go/terrain/geometry"
	"seehuhn.de/go/terrain/graph"
	"seehuhn.de/go/terrain/walker"
)

// ErrInvalid is returned, wrapped, for scenes which cannot be built.
var ErrInvalid = errors.New("invalid scene")

// DefaultReference is the reference under which connections are stored
// if a scene does not name one.
const DefaultReference = "paths"

// Variant selects the walker used for a scene.
type Variant string

// These are the walker variants.
const (
	Flat      Variant = "flat"
	Elevating Variant = "elevating"
	Carving   Variant = "carving"
)

// Scene is a graph on a terrain, together with the settings needed to
// write it into a grid.
type Scene struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`

	Region     Region  `yaml:"region"`
	Resolution float64 `yaml:"resolution"` // grid cells per world unit

	// Margin is the distance around the region within which connections
	// are considered.  If it is zero, a margin is derived from the widest
	// connection and the maximal border.
	Margin float64 `yaml:"margin,omitempty"`

	Variant   Variant `yaml:"variant"`
	Endpoints string  `yaml:"endpoints,omitempty"` // butt, round or square

	Terrain Terrain        `yaml:"terrain"`
	Options walker.Options `yaml:"options"`

	Nodes       []Node       `yaml:"nodes"`
	Connections []Connection `yaml:"connections"`
}

// Region is an axis-aligned rectangle in the ground plane.
type Region struct {
	X      float64 `yaml:"x"`
	Z      float64 `yaml:"z"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Rect returns the region as a rectangle in x/z coordinates.
func (r Region) Rect() rect.Rect {
	return geometry.Rect(r.X, r.Z, r.Width, r.Height)
}

// Terrain is a sloped plane, optionally with a wave pattern used as
// variance.
type Terrain struct {
	Base      float64 `yaml:"base"` // height at the origin
	SlopeX    float64 `yaml:"slopeX,omitempty"`
	SlopeZ    float64 `yaml:"slopeZ,omitempty"`
	MaxHeight float64 `yaml:"maxHeight"`

	Noise      float64 `yaml:"noise,omitempty"`
	Wavelength float64 `yaml:"wavelength,omitempty"`
}

// Sample returns the terrain height at p.
func (t Terrain) Sample(p vec.Vec2) float64 {
	return t.Base + t.SlopeX*p.X + t.SlopeZ*p.Y
}

// Variance returns the variance sampler of the terrain, or nil if the
// terrain has no noise.
func (t Terrain) Variance() border.Sampler {
	if t.Noise == 0 {
		return nil
	}
	l := t.Wavelength
	if l <= 0 {
		l = 10
	}
	return func(p vec.Vec2) float64 {
		return t.Noise * math.Sin(p.X/l) * math.Cos(p.Y/l)
	}
}

// Node is a named graph node.
type Node struct {
	Name      string            `yaml:"name"`
	Position  geometry.Vec3     `yaml:"position"`
	Radius    float64           `yaml:"radius,omitempty"`
	Type      graph.NodeType    `yaml:"type"`
	BelongsTo string            `yaml:"belongsTo,omitempty"`
	Data      map[string]string `yaml:"data,omitempty"`
}

// Connection is a chain of edges through named nodes.
type Connection struct {
	Reference string               `yaml:"reference,omitempty"`
	Type      graph.ConnectionType `yaml:"type,omitempty"`
	Direction string               `yaml:"direction,omitempty"` // two-way, forward or backward
	Width     float64              `yaml:"width"`
	Path      []string             `yaml:"path"`
	Curves    []Curve              `yaml:"curves,omitempty"`
}

// Curve gives the Bezier control points of one edge of a connection.
// Edges without a curve are straight.
type Curve struct {
	Edge     int              `yaml:"edge"`
	Controls [2]geometry.Vec3 `yaml:"controls"`
}

// New returns an empty scene with default settings.
func New(name string, variant Variant) *Scene {
	return &Scene{
		Name:       name,
		Region:     Region{Width: 100, Height: 100},
		Resolution: 1,
		Variant:    variant,
		Endpoints:  "butt",
		Terrain:    Terrain{MaxHeight: 100},
		Options:    walker.DefaultOptions(1, 100),
	}
}

// Load reads a scene from a YAML file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene file: %w", err)
	}
	return Parse(data)
}

// Parse reads a scene from YAML.  Settings missing from data keep the
// defaults of [New].
func Parse(data []byte) (*Scene, error) {
	s := New("", Flat)
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing scene YAML: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Marshal returns the YAML form of s.
func (s *Scene) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

// Validate checks that s can be built.
func (s *Scene) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("scene %q: %s: %w", s.Name, fmt.Sprintf(format, args...), ErrInvalid)
	}

	if s.Region.Width <= 0 || s.Region.Height <= 0 {
		return invalid("empty region")
	}
	if s.Resolution <= 0 {
		return invalid("resolution %g", s.Resolution)
	}
	switch s.Variant {
	case Flat, Elevating, Carving:
	default:
		return invalid("unknown variant %q", s.Variant)
	}
	if _, err := walker.ParseEndpointHandling(s.Endpoints); err != nil {
		return invalid("%v", err)
	}

	names := make(map[string]bool, len(s.Nodes))
	for _, n := range s.Nodes {
		if n.Name == "" || names[n.Name] {
			return invalid("duplicate or missing node name %q", n.Name)
		}
		names[n.Name] = true
	}
	for _, n := range s.Nodes {
		if n.BelongsTo != "" && !names[n.BelongsTo] {
			return invalid("node %q belongs to unknown node %q", n.Name, n.BelongsTo)
		}
	}

	for i, c := range s.Connections {
		if len(c.Path) < 2 {
			return invalid("connection %d has fewer than two nodes", i)
		}
		if c.Width <= 0 {
			return invalid("connection %d has width %g", i, c.Width)
		}
		if _, err := parseDirection(c.Direction); err != nil {
			return invalid("connection %d: %v", i, err)
		}
		for _, name := range c.Path {
			if !names[name] {
				return invalid("connection %d uses unknown node %q", i, name)
			}
		}
		for _, cv := range c.Curves {
			if cv.Edge < 0 || cv.Edge >= len(c.Path)-1 {
				return invalid("connection %d has a curve for edge %d", i, cv.Edge)
			}
		}
	}
	return nil
}

func parseDirection(s string) (graph.Direction, error) {
	switch s {
	case "", "two-way":
		return graph.TwoWay, nil
	case "forward":
		return graph.OneWayForward, nil
	case "backward":
		return graph.OneWayBackward, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// WalkerOptions returns the walker options of s, with the grid resolution,
// the terrain height and the endpoint handling of the scene filled in.
func (s *Scene) WalkerOptions() (walker.Options, error) {
	opt := s.Options
	opt.Resolution = s.Resolution
	opt.TerrainHeight = s.Terrain.MaxHeight
	handling, err := walker.ParseEndpointHandling(s.Endpoints)
	if err != nil {
		return opt, err
	}
	opt.EndpointHandling = handling
	return opt, nil
}

// EffectiveMargin returns the margin used when running s.
func (s *Scene) EffectiveMargin() float64 {
	if s.Margin > 0 {
		return s.Margin
	}
	width := 0.0
	for _, c := range s.Connections {
		width = max(width, c.Width)
	}
	return walker.Margin(width+s.Options.AdditionalWidth, s.Options.BorderMax, 0)
}

// Build constructs the graph of s.
func (s *Scene) Build() (*graph.WorldGraph, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	g := graph.New()
	nodes := make(map[string]*graph.Node, len(s.Nodes))
	for _, n := range s.Nodes {
		radius := n.Radius
		if radius <= 0 {
			radius = 1
		}
		node := graph.NewNode(n.Position, radius, n.Type)
		for key, value := range n.Data {
			node.SetData(key, value)
		}
		nodes[n.Name] = node
	}
	for _, n := range s.Nodes {
		if n.BelongsTo != "" {
			nodes[n.Name].SetBelongsTo(nodes[n.BelongsTo])
		}
	}
	for _, n := range s.Nodes {
		if err := g.StoreNode(nodes[n.Name]); err != nil {
			return nil, fmt.Errorf("scene %q: node %q: %w", s.Name, n.Name, err)
		}
	}

	for i, c := range s.Connections {
		dir, _ := parseDirection(c.Direction)
		conn := graph.NewConnection(c.Type, dir)

		curves := make(map[int]*curve.Bezier, len(c.Curves))
		for _, cv := range c.Curves {
			src := nodes[c.Path[cv.Edge]].Position()
			dst := nodes[c.Path[cv.Edge+1]].Position()
			curves[cv.Edge] = curve.New(src, cv.Controls[0], cv.Controls[1], dst)
		}

		widths := [2]float64{c.Width, c.Width}
		for j := 1; j < len(c.Path); j++ {
			src, dst := nodes[c.Path[j-1]], nodes[c.Path[j]]
			if _, err := conn.AddEdge(src, dst, widths, curves[j-1]); err != nil {
				return nil, fmt.Errorf("scene %q: connection %d: %w", s.Name, i, err)
			}
		}

		ref := c.Reference
		if ref == "" {
			ref = DefaultReference
		}
		if _, err := g.StoreConnection(conn, ref); err != nil {
			return nil, fmt.Errorf("scene %q: connection %d: %w", s.Name, i, err)
		}
	}

	terrain.Logger().Debug("scene built", "scene", s.Name,
		"nodes", g.NodeCount(), "connections", g.ConnectionCount(), "edges", g.EdgeCount())
	return g, nil
}

// Result is the outcome of running a scene.
type Result struct {
	Graph *graph.WorldGraph
	Edges []*graph.Edge

	// Grid holds the mask for flat scenes and the composed terrain
	// heights otherwise.
	Grid *border.Mask

	// Max is the largest value Grid can hold.
	Max float64
}

// Run builds the graph of s and writes every reference of it into a grid
// covering the region of s.
func (s *Scene) Run(ctx context.Context) (*Result, error) {
	g, err := s.Build()
	if err != nil {
		return nil, err
	}
	opt, err := s.WalkerOptions()
	if err != nil {
		return nil, err
	}

	res := &Result{Graph: g}
	region := s.Region.Rect()
	margin := s.EffectiveMargin()

	switch s.Variant {
	case Flat:
		w := walker.NewFlat(opt, nil)
		mask := border.NewGrid[float64](region, s.Resolution)
		res.Edges, err = runReferences(ctx, g, w, mask, margin)
		res.Grid, res.Max = mask, 1

	default:
		newWalker := walker.NewElevating
		if s.Variant == Carving {
			newWalker = walker.NewCarving
		}
		w, werr := newWalker(opt, s.Terrain.Sample, nil, s.Terrain.Variance())
		if werr != nil {
			return nil, werr
		}
		heights := border.NewGrid[*border.HeightProcess](region, s.Resolution)
		res.Edges, err = runReferences(ctx, g, w, heights, margin)
		res.Grid = border.Compose(heights, s.Terrain.Sample)
		res.Max = s.Terrain.MaxHeight
	}
	if err != nil {
		return res, fmt.Errorf("scene %q: %w", s.Name, err)
	}
	return res, nil
}

func runReferences[T any](ctx context.Context, g *graph.WorldGraph, w *walker.Walker[T], result *border.Grid[T], margin float64) ([]*graph.Edge, error) {
	var edges []*graph.Edge
	for _, ref := range g.References() {
		processed, err := w.ProcessEdges(ctx, g.ConnectionsByOffset(ref), result, margin)
		edges = append(edges, processed...)
		if err != nil {
			return edges, fmt.Errorf("reference %q: %w", ref, err)
		}
	}
	return edges, nil
}
