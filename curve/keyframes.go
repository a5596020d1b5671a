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

// Keyframe is a control point of an evaluator curve.
type Keyframe struct {
	Time       float64 `yaml:"time" json:"time"`
	Value      float64 `yaml:"value" json:"value"`
	InTangent  float64 `yaml:"in" json:"in"`
	OutTangent float64 `yaml:"out" json:"out"`
}

// Keyframes is an evaluator curve: a cubic Hermite spline through the
// keyframes, which must be sorted by time.  Outside the keyframe range the
// curve is constant.
type Keyframes []Keyframe

// Evaluate returns the value of the curve at time t.
// The empty curve evaluates to t.
func (k Keyframes) Evaluate(t float64) float64 {
	if len(k) == 0 {
		return t
	}
	if t <= k[0].Time {
		return k[0].Value
	}
	last := k[len(k)-1]
	if t >= last.Time {
		return last.Value
	}

	for i := 0; i < len(k)-1; i++ {
		prev, next := k[i], k[i+1]
		if t <= prev.Time || t > next.Time {
			continue
		}
		delta := next.Time - prev.Time
		s := (t - prev.Time) / delta
		s2 := s * s
		s3 := s2 * s

		a := 2*s3 - 3*s2 + 1
		b := s3 - 2*s2 + s
		c := s3 - s2
		d := -2*s3 + 3*s2
		return a*prev.Value + b*prev.OutTangent*delta + c*next.InTangent*delta + d*next.Value
	}
	return 0
}

// Linear returns the curve which rises linearly from 0 at t=0 to 1 at t=1.
func Linear() Keyframes {
	return Keyframes{{0, 0, 1, 1}, {1, 1, 1, 1}}
}

// EaseInOut returns the curve which rises from 0 at t=0 to 1 at t=1 with
// zero slope at both ends.
func EaseInOut() Keyframes {
	return Keyframes{{0, 0, 1, 0}, {1, 1, 0, 1}}
}
