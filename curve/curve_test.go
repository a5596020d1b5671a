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

package curve

import (
	"fmt"
	"math"
	"testing"

	"seehuhn.de/go/terrain/geometry"
)

var testCurves = []*Bezier{
	Straight(geometry.Vec3{}, geometry.Vec3{X: 100}),
	New(geometry.Vec3{}, geometry.Vec3{X: 10, Y: 5}, geometry.Vec3{X: 20, Z: 30}, geometry.Vec3{X: 40, Y: 2, Z: 30}),
	New(geometry.Vec3{X: 5, Z: 5}, geometry.Vec3{X: 25, Z: 5}, geometry.Vec3{X: 25, Z: 10}, geometry.Vec3{X: 5, Z: 10}),
}

func TestPositionEndpoints(t *testing.T) {
	for i, c := range testCurves {
		if got := c.Position(0); got.Distance(c.Source) > 1e-12 {
			t.Errorf("%d: Position(0) = %v, want %v", i, got, c.Source)
		}
		if got := c.Position(1); got.Distance(c.Destination) > 1e-12 {
			t.Errorf("%d: Position(1) = %v, want %v", i, got, c.Destination)
		}
	}
}

func TestStraightLength(t *testing.T) {
	c := testCurves[0]
	if l := c.Length(); math.Abs(l-100) > 1e-6 {
		t.Errorf("Length() = %v, want 100", l)
	}
	if l := c.LengthBetween(0.25, 0.75); math.Abs(l-50) > 1e-6 {
		t.Errorf("LengthBetween(0.25, 0.75) = %v, want 50", l)
	}
}

func TestLengthMatchesPolyline(t *testing.T) {
	for i, c := range testCurves {
		const n = 10000
		sum := 0.0
		prev := c.Position(0)
		for j := 1; j <= n; j++ {
			p := c.Position(float64(j) / n)
			sum += p.Distance(prev)
			prev = p
		}
		if l := c.Length(); math.Abs(l-sum) > 1e-3*sum {
			t.Errorf("%d: Length() = %v, polyline length %v", i, l, sum)
		}
	}
}

func TestFindTRoundTrip(t *testing.T) {
	for i, c := range testCurves {
		total := c.Length()
		for _, frac := range []float64{0, 0.01, 0.1, 0.33, 0.5, 0.9, 0.999, 1} {
			d := frac * total
			t.Run(fmt.Sprintf("curve%d/%g", i, frac), func(t *testing.T) {
				tv := c.FindT(d, total)
				if tv < 0 || tv > 1 {
					t.Fatalf("FindT() = %v out of range", tv)
				}
				got := c.LengthBetween(0, tv)
				// the Newton step tolerance is in parameter space
				tol := newtonTolerance * c.Derivative(tv).Length()
				if math.Abs(got-d) > tol+1e-9 {
					t.Errorf("length at FindT(%v) = %v, diff %v > %v", d, got, math.Abs(got-d), tol)
				}
			})
		}
	}
}

func TestReversed(t *testing.T) {
	for i, c := range testCurves {
		r := c.Reversed()
		for _, tv := range []float64{0, 0.2, 0.5, 0.8, 1} {
			if d := c.Position(tv).Distance(r.Position(1 - tv)); d > 1e-9 {
				t.Errorf("%d: reversed curve differs by %v at t=%v", i, d, tv)
			}
		}
		if rr := r.Reversed(); *rr != *c {
			t.Errorf("%d: double reversal changed the curve", i)
		}
	}
}

func TestKeyframes(t *testing.T) {
	tests := []struct {
		name string
		k    Keyframes
		t    float64
		want float64
	}{
		{"linear start", Linear(), 0, 0},
		{"linear middle", Linear(), 0.3, 0.3},
		{"linear end", Linear(), 1, 1},
		{"clamped below", Linear(), -2, 0},
		{"clamped above", Linear(), 7, 1},
		{"ease middle", EaseInOut(), 0.5, 0.5},
		{"ease quarter", EaseInOut(), 0.25, 0.15625},
		{"crossing width", Keyframes{{0, 0.3, 0, 1}, {1, 1, 0, 0}}, 0, 0.3},
		{"empty", nil, 0.4, 0.4},
		{"three keys", Keyframes{{0, 0, 0, 0}, {0.5, 1, 0, 0}, {1, 0, 0, 0}}, 0.5, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.k.Evaluate(tc.t); math.Abs(got-tc.want) > 1e-12 {
				t.Errorf("Evaluate(%v) = %v, want %v", tc.t, got, tc.want)
			}
		})
	}
}
