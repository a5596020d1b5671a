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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcomes of a region, as recorded in regionsTotal.
const (
	outcomeOK        = "ok"
	outcomeEmpty     = "empty"
	outcomeCancelled = "cancelled"
	outcomeRebuild   = "rebuild"
)

var (
	// regionsTotal counts processed regions by walker variant and outcome
	regionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "terrain_walker_regions_total",
		Help: "Total regions processed by walker variant and outcome",
	}, []string{"variant", "outcome"})

	// edgesProcessed counts the edges walked
	edgesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "terrain_walker_edges_processed_total",
		Help: "Total edges walked by walker variant",
	}, []string{"variant"})

	// regionDuration tracks the time spent per region
	regionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "terrain_walker_region_duration_seconds",
		Help:    "Region processing duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
	}, []string{"variant"})
)
