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

package border

import (
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/terrain/geometry"
)

// HeightProcess is the composition of height contributions for one cell.
// Each step blends the height computed so far towards the step height.
type HeightProcess struct {
	steps []heightStep
}

type heightStep struct {
	height, weight float64
}

// AddStep appends a blend towards height with the given weight in [0, 1].
func (hp *HeightProcess) AddStep(height, weight float64) {
	hp.steps = append(hp.steps, heightStep{height, weight})
}

// Len returns the number of steps.
func (hp *HeightProcess) Len() int {
	return len(hp.steps)
}

// Processed applies all steps, in order, to the terrain height h.  Steps
// with negative height are skipped.
func (hp *HeightProcess) Processed(h float64) float64 {
	for _, s := range hp.steps {
		if s.height < 0 {
			continue
		}
		h = geometry.Lerp(h, s.height, s.weight)
	}
	return h
}

// Compose evaluates a height grid over the terrain described by base.
// Cells without a composition take the terrain height.
func Compose(heights *Heights, base func(vec.Vec2) float64) *Mask {
	res := NewGrid[float64](heights.Region, heights.Resolution)
	for y := range heights.Height {
		for x := range heights.Width {
			h := base(heights.CellCenter(x, y))
			if hp := heights.At(x, y); hp != nil {
				h = hp.Processed(h)
			}
			res.Set(x, y, h)
		}
	}
	return res
}
