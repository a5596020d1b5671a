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

package graph

import (
	"fmt"
	"strings"
)

// BaseType is the role of a node within the graph.
type BaseType int

// These are the node base types.
const (
	// Custom is an endpoint placed by the user.
	Custom BaseType = iota
	// Section is an intermediate node of a connection with exactly two edges.
	Section
	// Border marks where an edge crosses between regions.
	Border
	// Perimeter marks where a connection enters the area of a node.
	Perimeter
	// Crossing is where several connections meet.
	Crossing
	// CrossingPerimeter marks where a connection enters the area of
	// another connection, just before the crossing.
	CrossingPerimeter
	// Lake is the center of a lake.
	Lake
	// RiverDryUp is where a river became too small and ended.
	RiverDryUp
	// Sea is where a river ends in the sea.
	Sea
	LakeInnerExit
	LakeOuterExit
	SeaInnerExit
	SeaOuterExit
	RiverSection
	RiverBorder
	RiverPerimeter
	RiverCrossing
	RiverCrossingPerimeter
	SectionLakeBridgeSource
	SectionLakeBridgeDestination
	SectionRiverBridgeSource
	SectionRiverBridgeDestination
	SectionRiverFordSource
	SectionRiverFordDestination

	numBaseTypes
)

var baseTypeNames = [numBaseTypes]string{
	"Custom", "Section", "Border", "Perimeter", "Crossing", "CrossingPerimeter",
	"Lake", "RiverDryUp", "Sea", "LakeInnerExit", "LakeOuterExit", "SeaInnerExit",
	"SeaOuterExit", "RiverSection", "RiverBorder", "RiverPerimeter", "RiverCrossing",
	"RiverCrossingPerimeter", "SectionLakeBridgeSource", "SectionLakeBridgeDestination",
	"SectionRiverBridgeSource", "SectionRiverBridgeDestination",
	"SectionRiverFordSource", "SectionRiverFordDestination",
}

func (b BaseType) String() string {
	if b < 0 || b >= numBaseTypes {
		return fmt.Sprintf("BaseType(%d)", int(b))
	}
	return baseTypeNames[b]
}

// ParseBaseType returns the base type with the given name.
func ParseBaseType(s string) (BaseType, error) {
	for i, name := range baseTypeNames {
		if name == s {
			return BaseType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown node base type %q", s)
}

// NodeType is the type of a node.  Custom nodes carry a user defined
// name in addition to the base type.
type NodeType struct {
	Base   BaseType
	Custom string
}

// TypeOf returns the node type with the given base and no custom name.
func TypeOf(base BaseType) NodeType {
	return NodeType{Base: base}
}

// IsEndpoint reports whether connections may start or end at nodes of
// this type.
func (t NodeType) IsEndpoint() bool {
	switch t.Base {
	case Custom, Lake, LakeInnerExit, Sea, RiverDryUp, Perimeter,
		SectionLakeBridgeSource, SectionLakeBridgeDestination,
		SectionRiverBridgeSource, SectionRiverBridgeDestination,
		SectionRiverFordSource, SectionRiverFordDestination:
		return true
	}
	return false
}

// IsSection reports whether the type is an intermediate node of a
// connection.
func (t NodeType) IsSection() bool {
	switch t.Base {
	case Section, RiverSection, LakeInnerExit, LakeOuterExit, SeaInnerExit, SeaOuterExit:
		return true
	}
	return false
}

// IsBorder reports whether the type marks a region border.
func (t NodeType) IsBorder() bool {
	return t.Base == Border || t.Base == RiverBorder
}

// IsPerimeter reports whether the type marks the perimeter of an endpoint.
func (t NodeType) IsPerimeter() bool {
	return t.Base == Perimeter || t.Base == RiverPerimeter
}

// IsCrossing reports whether the type is a crossing.
func (t NodeType) IsCrossing() bool {
	return t.Base == Crossing || t.Base == RiverCrossing
}

// IsCrossingPerimeter reports whether the type marks the perimeter of a
// crossing.
func (t NodeType) IsCrossingPerimeter() bool {
	return t.Base == CrossingPerimeter || t.Base == RiverCrossingPerimeter
}

// IsWaterCrossing reports whether the type is the end of a bridge or ford.
func (t NodeType) IsWaterCrossing() bool {
	switch t.Base {
	case SectionLakeBridgeSource, SectionLakeBridgeDestination,
		SectionRiverBridgeSource, SectionRiverBridgeDestination,
		SectionRiverFordSource, SectionRiverFordDestination:
		return true
	}
	return false
}

// IsFord reports whether the type is the end of a river ford.
func (t NodeType) IsFord() bool {
	return t.Base == SectionRiverFordSource || t.Base == SectionRiverFordDestination
}

// IsRiver reports whether the type belongs to the river network.
func (t NodeType) IsRiver() bool {
	switch t.Base {
	case RiverBorder, RiverCrossing, RiverPerimeter, RiverSection,
		RiverCrossingPerimeter, RiverDryUp, LakeInnerExit, LakeOuterExit,
		SeaInnerExit, SeaOuterExit:
		return true
	}
	return false
}

// PerimeterType returns the type of the perimeter nodes around a node of
// type t.
func (t NodeType) PerimeterType() NodeType {
	switch t.Base {
	case Custom:
		return TypeOf(Perimeter)
	case Sea, Lake:
		return TypeOf(RiverPerimeter)
	case RiverSection:
		return TypeOf(RiverCrossingPerimeter)
	default:
		return TypeOf(CrossingPerimeter)
	}
}

func (t NodeType) String() string {
	if t.Custom == "" {
		return t.Base.String()
	}
	return t.Base.String() + ":" + t.Custom
}

// MarshalText implements the encoding.TextMarshaler interface.
func (t NodeType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (t *NodeType) UnmarshalText(text []byte) error {
	base, custom, _ := strings.Cut(string(text), ":")
	b, err := ParseBaseType(base)
	if err != nil {
		return err
	}
	*t = NodeType{Base: b, Custom: custom}
	return nil
}

// ConnectionBaseType distinguishes roads from rivers.
type ConnectionBaseType int

// These are the connection base types.
const (
	CustomConnection ConnectionBaseType = iota
	RiverConnection
)

func (b ConnectionBaseType) String() string {
	switch b {
	case CustomConnection:
		return "Custom"
	case RiverConnection:
		return "River"
	default:
		return fmt.Sprintf("ConnectionBaseType(%d)", int(b))
	}
}

// ConnectionType is the type of a connection.
type ConnectionType struct {
	Base   ConnectionBaseType
	Custom string
}

func (t ConnectionType) String() string {
	if t.Custom == "" {
		return t.Base.String()
	}
	return t.Base.String() + ":" + t.Custom
}

// MarshalText implements the encoding.TextMarshaler interface.
func (t ConnectionType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (t *ConnectionType) UnmarshalText(text []byte) error {
	base, custom, _ := strings.Cut(string(text), ":")
	switch base {
	case "Custom":
		*t = ConnectionType{Base: CustomConnection, Custom: custom}
	case "River":
		*t = ConnectionType{Base: RiverConnection, Custom: custom}
	default:
		return fmt.Errorf("unknown connection base type %q", base)
	}
	return nil
}

// Direction gives the directions in which a connection may be travelled.
type Direction int

// These are the connection directions.
const (
	OneWayForward Direction = iota
	OneWayBackward
	TwoWay
)

// Reversed returns the direction of the reversed connection.
func (d Direction) Reversed() Direction {
	switch d {
	case OneWayForward:
		return OneWayBackward
	case OneWayBackward:
		return OneWayForward
	default:
		return d
	}
}

func (d Direction) String() string {
	switch d {
	case OneWayForward:
		return "OneWayForward"
	case OneWayBackward:
		return "OneWayBackward"
	case TwoWay:
		return "TwoWay"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// MarshalText implements the encoding.TextMarshaler interface.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (d *Direction) UnmarshalText(text []byte) error {
	for _, cand := range []Direction{OneWayForward, OneWayBackward, TwoWay} {
		if cand.String() == string(text) {
			*d = cand
			return nil
		}
	}
	return fmt.Errorf("unknown direction %q", text)
}
