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

// Package terrain shapes tiled terrain around a graph of paths.
//
// The sub-packages implement the pieces:
//
//   - [seehuhn.de/go/terrain/geometry]: vectors in space and helpers for
//     the ground plane
//   - [seehuhn.de/go/terrain/curve]: cubic Bézier curves and evaluator curves
//   - [seehuhn.de/go/terrain/graph]: nodes, edges, connections and the
//     spatially indexed world graph
//   - [seehuhn.de/go/terrain/raster]: scan conversion of border outlines
//     into grid cells
//   - [seehuhn.de/go/terrain/border]: border samples and the primitives
//     which place and rasterise them
//   - [seehuhn.de/go/terrain/walker]: the border walker which turns the
//     connections of one region into a mask or into height steps
//   - [seehuhn.de/go/terrain/scenes]: small example terrains, also
//     readable from YAML files
//
// All packages log through the logger installed with [SetLogger].
package terrain
