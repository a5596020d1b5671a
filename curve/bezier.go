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

// Package curve implements cubic Bézier curves in world space and the
// evaluator curves used for fades and falloffs.
package curve

import (
	"math"

	"seehuhn.de/go/terrain/geometry"
)

// Bezier is a cubic Bézier curve from Source to Destination.
type Bezier struct {
	Source             geometry.Vec3
	SourceControl      geometry.Vec3
	DestinationControl geometry.Vec3
	Destination        geometry.Vec3

	length float64 // cached arc length of the whole curve, 0 if unknown
}

// New returns the curve with the given points and caches its length.
func New(source, sourceControl, destinationControl, destination geometry.Vec3) *Bezier {
	c := &Bezier{
		Source:             source,
		SourceControl:      sourceControl,
		DestinationControl: destinationControl,
		Destination:        destination,
	}
	c.length = c.simpson(0, 1)
	return c
}

// Straight returns the straight curve from source to destination, with
// the control points at one third and two thirds of the way.
func Straight(source, destination geometry.Vec3) *Bezier {
	return New(source,
		source.Lerp(destination, 1.0/3),
		source.Lerp(destination, 2.0/3),
		destination)
}

// Reversed returns the curve traversed from Destination to Source.
func (c *Bezier) Reversed() *Bezier {
	return &Bezier{
		Source:             c.Destination,
		SourceControl:      c.DestinationControl,
		DestinationControl: c.SourceControl,
		Destination:        c.Source,
		length:             c.length,
	}
}

// Chord returns the vector from Source to Destination.
func (c *Bezier) Chord() geometry.Vec3 {
	return c.Destination.Sub(c.Source)
}

// Position evaluates the curve at the parameter t in [0, 1], using
// De Casteljau's algorithm.
func (c *Bezier) Position(t float64) geometry.Vec3 {
	q := c.Source.Lerp(c.SourceControl, t)
	r := c.SourceControl.Lerp(c.DestinationControl, t)
	s := c.DestinationControl.Lerp(c.Destination, t)

	p := q.Lerp(r, t)
	u := r.Lerp(s, t)

	return p.Lerp(u, t)
}

// Derivative returns the derivative of the curve at t.
func (c *Bezier) Derivative(t float64) geometry.Vec3 {
	p0, p1, p2, p3 := c.Source, c.SourceControl, c.DestinationControl, c.Destination

	// B'(t) = 3(P1-P0) + 6t(P0-2P1+P2) + 3t²(-P0+3P1-3P2+P3)
	d := p1.Sub(p0).Mul(3)
	d = d.Add(p0.Sub(p1.Mul(2)).Add(p2).Mul(6 * t))
	d = d.Add(p1.Sub(p2).Mul(3).Sub(p0).Add(p3).Mul(3 * t * t))
	return d
}

// Length returns the arc length of the whole curve.
func (c *Bezier) Length() float64 {
	if c.length > 0 {
		return c.length
	}
	return c.simpson(0, 1)
}

// LengthBetween returns the arc length between the parameters tStart and
// tEnd.
func (c *Bezier) LengthBetween(tStart, tEnd float64) float64 {
	if tStart <= 0 && tEnd >= 1 {
		return c.Length()
	}
	return c.simpson(tStart, tEnd)
}

// simpson integrates the speed of the curve over [tStart, tEnd] with
// Simpson's rule.
func (c *Bezier) simpson(tStart, tEnd float64) float64 {
	delta := (tEnd - tStart) / simpsonIntervals

	ends := c.Derivative(tStart).Length() + c.Derivative(tEnd).Length()

	x4 := 0.0
	for i := 1; i < simpsonIntervals; i += 2 {
		x4 += c.Derivative(tStart + delta*float64(i)).Length()
	}
	x2 := 0.0
	for i := 2; i < simpsonIntervals; i += 2 {
		x2 += c.Derivative(tStart + delta*float64(i)).Length()
	}

	return delta / 3 * (ends + 4*x4 + 2*x2)
}

// FindT returns the parameter at which the arc length from Source
// reaches d.  The total length of the curve is passed in by the caller.
// The result is computed by Newton-Raphson iteration and clamped to
// [0, 1].
func (c *Bezier) FindT(d, totalLength float64) float64 {
	if d <= 0 {
		return 0
	}
	if d >= totalLength {
		return 1
	}

	t := d / totalLength
	for range maxNewtonIterations {
		speed := c.Derivative(t).Length()
		if speed == 0 {
			break
		}
		next := t - (c.simpson(0, t)-d)/speed
		if math.Abs(next-t) < newtonTolerance {
			t = next
			break
		}
		t = next
	}
	return geometry.Clamp01(t)
}

const (
	// simpsonIntervals is the number of intervals used for numerical
	// integration.  Simpson's rule requires an even number.
	simpsonIntervals = 20

	newtonTolerance     = 0.001
	maxNewtonIterations = 1000
)
