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
	"fmt"
	"math"

	"seehuhn.de/go/pdf/graphics"

	"seehuhn.de/go/terrain/border"
	"seehuhn.de/go/terrain/curve"
)

// Options control a [Walker].
type Options struct {
	border.Options `yaml:",inline"`

	// BorderMax is the largest distance between inner and outer border.
	BorderMax float64 `yaml:"borderMax"`

	// BorderChange bounds the change of the border distance between
	// consecutive samples.
	BorderChange float64 `yaml:"borderChange"`

	// AdditionalWidth is added to the width of every edge.
	AdditionalWidth float64 `yaml:"additionalWidth"`

	// Detail scales the number of samples per unit of edge length.
	Detail float64 `yaml:"detail"`

	// Falloff maps the relative position within a border, 0 at the outer
	// and 1 at the inner border, to a weight.
	Falloff curve.Keyframes `yaml:"falloff"`

	// EndpointHandling selects what happens where a path ends at a node
	// which is not a crossing: LineCapButt fades the path out over
	// EndFadeDistance, LineCapRound adds a round cap, LineCapSquare
	// extends the path by its radius.
	EndpointHandling graphics.LineCapStyle `yaml:"-"`
	EndFadeDistance  float64               `yaml:"endFadeDistance"`
	EndFadeFalloff   curve.Keyframes       `yaml:"endFadeFalloff"`

	// CrossingFade fades secondary connections out towards the crossing
	// they attach to.
	CrossingFade     bool            `yaml:"crossingFade"`
	CrossingDistance float64         `yaml:"crossingDistance"`
	CrossingFalloff  curve.Keyframes `yaml:"crossingFalloff"`

	// CrossingOverflow lets primary connections spill into the first
	// part of the secondary connections at their crossings.
	CrossingOverflow         bool            `yaml:"crossingOverflow"`
	CrossingOverflowDistance float64         `yaml:"crossingOverflowDistance"`
	CrossingOverflowFalloff  curve.Keyframes `yaml:"crossingOverflowFalloff"`

	// CrossingWiden widens secondary connections near their crossings,
	// by a factor between CrossingWidenMin and CrossingWidenMax.
	CrossingWiden         bool            `yaml:"crossingWiden"`
	CrossingWidenDistance float64         `yaml:"crossingWidenDistance"`
	CrossingWidenFalloff  curve.Keyframes `yaml:"crossingWidenFalloff"`
	CrossingWidenMin      float64         `yaml:"crossingWidenMin"`
	CrossingWidenMax      float64         `yaml:"crossingWidenMax"`

	// CrossingWidthFalloff shapes the width of the edges which join a
	// secondary connection to its crossing.
	CrossingWidthFalloff curve.Keyframes `yaml:"crossingWidthFalloff"`

	// CrossingTiltSmoothingDistance is the distance over which borders
	// tilted towards a crossing return to the ground plane.
	CrossingTiltSmoothingDistance float64 `yaml:"crossingTiltSmoothingDistance"`

	// DepthRatio and DepthMax give the depth of carved paths relative to
	// their width.
	DepthRatio float64 `yaml:"depthRatio"`
	DepthMax   float64 `yaml:"depthMax"`

	// ScanDistance is the number of non-overlapping samples after which
	// the search for overlapping borders gives up.
	ScanDistance int `yaml:"scanDistance"`

	// SectionCap limits the number of samples examined when an overlap
	// starts.
	SectionCap int `yaml:"sectionCap"`

	// IntersectPadding ignores border intersections this close to a
	// border end point.
	IntersectPadding float64 `yaml:"intersectPadding"`
}

// DefaultOptions returns the default options for a grid with the given
// number of cells per world unit and the given maximal terrain height.
func DefaultOptions(resolution, terrainHeight float64) Options {
	return Options{
		Options: border.Options{
			Resolution:    resolution,
			TerrainHeight: terrainHeight,
			Type:          border.Fixed,
			MaxSlope:      35,
		},

		BorderMax:    15,
		BorderChange: 0.2,
		Detail:       0.5,
		Falloff:      curve.EaseInOut(),

		EndpointHandling: graphics.LineCapButt,
		EndFadeDistance:  10,
		EndFadeFalloff:   curve.EaseInOut(),

		CrossingDistance:         10,
		CrossingFalloff:          curve.EaseInOut(),
		CrossingOverflowDistance: 10,
		CrossingOverflowFalloff:  curve.EaseInOut(),

		CrossingWidenDistance: 10,
		CrossingWidenFalloff: curve.Keyframes{
			{Time: 0, Value: 0, InTangent: 1},
			{Time: 1, Value: 1, InTangent: 3, OutTangent: 3},
		},
		CrossingWidenMin: 1,
		CrossingWidenMax: 2,

		CrossingWidthFalloff: curve.Keyframes{
			{Time: 0, Value: 0.3, OutTangent: 1},
			{Time: 1, Value: 1},
		},

		CrossingTiltSmoothingDistance: 15,

		DepthRatio: 0.1,
		DepthMax:   2,

		ScanDistance:     5,
		SectionCap:       5,
		IntersectPadding: 0.05,
	}
}

// ParseEndpointHandling converts "butt", "round" or "square" into a
// line cap style.
func ParseEndpointHandling(s string) (graphics.LineCapStyle, error) {
	switch s {
	case "butt", "fade", "":
		return graphics.LineCapButt, nil
	case "round", "circle":
		return graphics.LineCapRound, nil
	case "square":
		return graphics.LineCapSquare, nil
	}
	return 0, fmt.Errorf("unknown endpoint handling %q", s)
}

// Margin returns the margin a host should add around a region, so that
// every connection which can influence the region is found.
func Margin(maxWidth, maxBorder, maxSectionLength float64) float64 {
	return math.Ceil(maxWidth + 2*maxBorder + maxSectionLength)
}
