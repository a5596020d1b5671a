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

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/document"
	"seehuhn.de/go/pdf/graphics"
	"seehuhn.de/go/pdf/graphics/color"

	"seehuhn.de/go/terrain/graph"
	"seehuhn.de/go/terrain/scenes"
)

func pdfCmd() *cobra.Command {
	var output string
	var scale float64

	cmd := &cobra.Command{
		Use:   "pdf SCENE",
		Short: "Draw the graph of a scene as a PDF file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			s, err := loadScene(args[0])
			if err != nil {
				return err
			}
			g, err := s.Build()
			if err != nil {
				return err
			}
			if output == "" {
				output = s.Name + ".pdf"
			}
			return writePDF(output, s, g, scale)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default SCENE.pdf)")
	cmd.Flags().Float64Var(&scale, "scale", 4, "PDF points per world unit")
	return cmd
}

// writePDF draws the region of s with the edges of g as strokes of their
// width and the nodes as squares.  Secondary edges are drawn lighter.
func writePDF(name string, s *scenes.Scene, g *graph.WorldGraph, scale float64) error {
	if scale <= 0 {
		return fmt.Errorf("invalid scale %g", scale)
	}
	region := s.Region
	paper := &pdf.Rectangle{
		URx: region.Width * scale,
		URy: region.Height * scale,
	}

	page, err := document.CreateSinglePage(name, paper, pdf.V1_7, nil)
	if err != nil {
		return err
	}

	// world x/z coordinates, with z pointing up the page
	page.Transform(matrix.Matrix{scale, 0, 0, scale, -region.X * scale, -region.Z * scale})

	page.SetLineCap(graphics.LineCapRound)
	page.SetLineJoin(graphics.LineJoinRound)
	for _, c := range g.Connections() {
		for _, e := range c.Edges() {
			grey := 0.75
			if e.IsSecondary() {
				grey = 0.85
			}
			page.SetStrokeColor(color.DeviceGray(grey))
			page.SetLineWidth(e.WidthMax())
			drawPath(page, edgePath(e))
			page.Stroke()
		}
	}

	page.SetStrokeColor(color.DeviceGray(0))
	page.SetLineWidth(0.2)
	for _, c := range g.Connections() {
		for _, e := range c.Edges() {
			drawPath(page, edgePath(e))
			page.Stroke()
		}
	}

	for _, n := range g.Nodes(g.NodeTypes(), nil) {
		grey := 0.4
		if n.IsEndpointOrCrossing() {
			grey = 0
		}
		page.SetFillColor(color.DeviceGray(grey))
		p, r := n.PositionXZ(), n.Radius()
		page.Rectangle(p.X-r, p.Y-r, 2*r, 2*r)
		page.Fill()
	}

	page.SetStrokeColor(color.DeviceGray(0.5))
	page.SetLineWidth(0.5)
	page.Rectangle(region.X, region.Z, region.Width, region.Height)
	page.Stroke()

	return page.Close()
}

func edgePath(e *graph.Edge) *path.Data {
	b := e.Curve()
	p := &path.Data{}
	p.MoveTo(b.Source.XZ())
	p.CubeTo(b.SourceControl.XZ(), b.DestinationControl.XZ(), b.Destination.XZ())
	return p
}

func drawPath(page *document.Page, p *path.Data) {
	for cmd, pts := range p.Iter().ToCubic() {
		switch cmd {
		case path.CmdMoveTo:
			page.MoveTo(pts[0].X, pts[0].Y)
		case path.CmdLineTo:
			page.LineTo(pts[0].X, pts[0].Y)
		case path.CmdCubeTo:
			page.CurveTo(pts[0].X, pts[0].Y, pts[1].X, pts[1].Y, pts[2].X, pts[2].Y)
		case path.CmdClose:
			page.ClosePath()
		}
	}
}
