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

// Package geometry provides the vector helpers shared by the terrain
// packages.
//
// World positions use X and Z for the ground plane and Y for the height.
// Computations which only concern the ground plane use [vec.Vec2] with
// X mapped to X and Z mapped to Y.
package geometry

import (
	"math"

	"seehuhn.de/go/geom/vec"
)

// Vec3 is a position or a direction in world space.
type Vec3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Up is the unit vector pointing upwards.
var Up = Vec3{Y: 1}

// FromXZ lifts a ground plane point to world space at the given height.
func FromXZ(v vec.Vec2, y float64) Vec3 {
	return Vec3{X: v.X, Y: y, Z: v.Y}
}

// XZ projects v onto the ground plane.
func (v Vec3) XZ() vec.Vec2 {
	return vec.Vec2{X: v.X, Y: v.Z}
}

// Flat returns v with the height set to zero.
func (v Vec3) Flat() Vec3 {
	return Vec3{X: v.X, Z: v.Z}
}

// Add returns v+w.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{X: v.X + w.X, Y: v.Y + w.Y, Z: v.Z + w.Z}
}

// Sub returns v-w.
func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{X: v.X - w.X, Y: v.Y - w.Y, Z: v.Z - w.Z}
}

// Mul returns s*v.
func (v Vec3) Mul(s float64) Vec3 {
	return Vec3{X: s * v.X, Y: s * v.Y, Z: s * v.Z}
}

// Dot returns the scalar product of v and w.
func (v Vec3) Dot(w Vec3) float64 {
	return v.X*w.X + v.Y*w.Y + v.Z*w.Z
}

// Cross returns the vector product v×w.
func (v Vec3) Cross(w Vec3) Vec3 {
	return Vec3{
		X: v.Y*w.Z - v.Z*w.Y,
		Y: v.Z*w.X - v.X*w.Z,
		Z: v.X*w.Y - v.Y*w.X,
	}
}

// Length returns the Euclidean length of v.
func (v Vec3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalize returns the unit vector in the direction of v.
// The zero vector is returned unchanged.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l < zeroLength {
		return Vec3{}
	}
	return v.Mul(1 / l)
}

// Lerp interpolates linearly between v (t=0) and w (t=1).
// The parameter is not clamped.
func (v Vec3) Lerp(w Vec3, t float64) Vec3 {
	return Vec3{
		X: v.X + (w.X-v.X)*t,
		Y: v.Y + (w.Y-v.Y)*t,
		Z: v.Z + (w.Z-v.Z)*t,
	}
}

// Distance returns the distance between v and w.
func (v Vec3) Distance(w Vec3) float64 {
	return v.Sub(w).Length()
}

// IsZero reports whether all components of v are zero.
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// Normalize2 returns the unit vector in the direction of v.
// The zero vector is returned unchanged.
func Normalize2(v vec.Vec2) vec.Vec2 {
	l := v.Length()
	if l < zeroLength {
		return vec.Vec2{}
	}
	return v.Mul(1 / l)
}

// Lerp interpolates linearly between a (t=0) and b (t=1).
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Clamp01 clamps x to the interval [0, 1].
func Clamp01(x float64) float64 {
	return min(max(x, 0), 1)
}

// zeroLength is the length below which vectors are treated as zero.
const zeroLength = 1e-12
