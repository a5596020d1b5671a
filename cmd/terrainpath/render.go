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
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"
	"os/signal"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/image/draw"

	"seehuhn.de/go/terrain"
	"seehuhn.de/go/terrain/border"
	"seehuhn.de/go/terrain/geometry"
	"seehuhn.de/go/terrain/graph"
	"seehuhn.de/go/terrain/raster"
	"seehuhn.de/go/terrain/scenes"
)

type renderOptions struct {
	output    string
	scale     int
	variant   string
	endpoints string
	smooth    bool
	nodes     bool
	metrics   bool
}

func renderCmd() *cobra.Command {
	var opt renderOptions

	cmd := &cobra.Command{
		Use:   "render SCENE",
		Short: "Write the mask or height map of a scene as a PNG image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(args[0], &opt, cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&opt.output, "output", "o", "", "output file (default SCENE.png)")
	cmd.Flags().IntVar(&opt.scale, "scale", 4, "output pixels per grid cell")
	cmd.Flags().StringVar(&opt.variant, "variant", "", "override the walker variant (flat, elevating, carving)")
	cmd.Flags().StringVar(&opt.endpoints, "endpoints", "", "override the endpoint handling (butt, round, square)")
	cmd.Flags().BoolVar(&opt.smooth, "smooth", false, "interpolate when scaling the image")
	cmd.Flags().BoolVar(&opt.nodes, "nodes", false, "mark the area of every node")
	cmd.Flags().BoolVar(&opt.metrics, "metrics", false, "print the walker metrics after rendering")
	return cmd
}

func runRender(name string, opt *renderOptions, errOut io.Writer) error {
	if opt.scale < 1 {
		return fmt.Errorf("invalid scale %d", opt.scale)
	}
	s, err := loadScene(name)
	if err != nil {
		return err
	}
	if opt.variant != "" {
		s.Variant = scenes.Variant(opt.variant)
	}
	if opt.endpoints != "" {
		s.Endpoints = opt.endpoints
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := s.Run(ctx)
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return fmt.Errorf("interrupted after %d edges", len(res.Edges))
	}
	terrain.Logger().Info("scene rendered", "scene", s.Name, "variant", s.Variant,
		"edges", len(res.Edges), "cells", len(res.Grid.Cells))

	img := gridImage(res.Grid, res.Max)
	if opt.nodes {
		markNodes(img, res.Grid, res.Graph)
	}
	scaled := image.NewGray(image.Rect(0, 0, img.Bounds().Dx()*opt.scale, img.Bounds().Dy()*opt.scale))
	var scaler draw.Scaler = draw.NearestNeighbor
	if opt.smooth {
		scaler = draw.CatmullRom
	}
	scaler.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)

	out := opt.output
	if out == "" {
		out = s.Name + ".png"
	}
	if err := writePNG(out, scaled); err != nil {
		return err
	}

	if opt.metrics {
		return printMetrics(errOut)
	}
	return nil
}

// gridImage converts a grid into a grey image, mapping 0 to black and
// top to white.  Larger z values are shown further up.
func gridImage(g *border.Mask, top float64) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, g.Width, g.Height))
	if top <= 0 {
		return img
	}
	for y := range g.Height {
		for x := range g.Width {
			v := geometry.Clamp01(g.At(x, y) / top)
			img.SetGray(x, g.Height-1-y, color.Gray{Y: uint8(math.Round(255 * v))})
		}
	}
	return img
}

// nodeGrey is the brightness of node areas drawn by markNodes.
const nodeGrey = 128

// markNodes brightens the area of every node of g inside the region of
// m to at least nodeGrey, scaled by the coverage of each cell.  img must
// be the image of m made by gridImage.
func markNodes(img *image.Gray, m *border.Mask, g *graph.WorldGraph) {
	r := m.Rasteriser()
	for _, n := range g.NodesInRect(m.Region) {
		r.Cells(raster.Circle(n.PositionXZ(), n.Radius()), func(x, y int, c float32) {
			py := m.Height - 1 - y
			v := uint8(math.Round(nodeGrey * float64(c)))
			if v > img.GrayAt(x, py).Y {
				img.SetGray(x, py, color.Gray{Y: v})
			}
		})
	}
}

func writePNG(name string, img image.Image) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// printMetrics writes the values of the walker metrics.
func printMetrics(w io.Writer) error {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "terrain_") {
			continue
		}
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, l := range m.GetLabel() {
				labels = append(labels, l.GetName()+"="+l.GetValue())
			}
			var value string
			switch {
			case m.GetCounter() != nil:
				value = fmt.Sprint(m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				value = fmt.Sprintf("%d samples, %.3gs total", h.GetSampleCount(), h.GetSampleSum())
			default:
				continue
			}
			fmt.Fprintf(w, "%s{%s} %s\n", mf.GetName(), strings.Join(labels, ","), value)
		}
	}
	return nil
}
