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
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"seehuhn.de/go/terrain/graph"
)

func graphCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "graph SCENE",
		Short: "Summarise the graph of a scene and optionally save it as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadScene(args[0])
			if err != nil {
				return err
			}
			g, err := s.Build()
			if err != nil {
				return err
			}
			summarise(cmd.OutOrStdout(), g)
			if output == "" {
				return nil
			}
			return writeGraph(output, g)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the graph as JSON to this file")
	return cmd
}

func summarise(w io.Writer, g *graph.WorldGraph) {
	fmt.Fprintf(w, "%d nodes, %d connections, %d edges\n", g.NodeCount(), g.ConnectionCount(), g.EdgeCount())
	for _, typ := range g.NodeTypes() {
		fmt.Fprintf(w, "  %-28s %d\n", typ, len(g.Nodes([]graph.NodeType{typ}, nil)))
	}
	for _, ref := range g.References() {
		conns := lo.Uniq(lo.Flatten(lo.Values(g.ConnectionsByOffset(ref))))
		edges := lo.SumBy(conns, func(c *graph.Connection) int { return c.EdgeCount() })
		length := lo.SumBy(conns, func(c *graph.Connection) float64 { return c.Length() })
		primary := lo.CountBy(conns, func(c *graph.Connection) bool { return c.IsPrimary() })
		fmt.Fprintf(w, "reference %q: %d connections (%d primary), %d edges, length %.1f\n",
			ref, len(conns), primary, edges, length)
	}
}

func writeGraph(name string, g *graph.WorldGraph) error {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(name, data, 0o644)
}
