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
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"seehuhn.de/go/terrain/curve"
	"seehuhn.de/go/terrain/geometry"
)

type jsonGraph struct {
	Nodes       []jsonNode       `json:"nodes"`
	Connections []jsonConnection `json:"connections"`
	Processed   []string         `json:"processed,omitempty"`
}

type jsonNode struct {
	ID        uuid.UUID         `json:"id"`
	Position  geometry.Vec3     `json:"position"`
	Radius    float64           `json:"radius"`
	Type      NodeType          `json:"type"`
	BelongsTo uuid.UUID         `json:"belongsTo,omitzero"`
	Data      map[string]string `json:"data,omitempty"`
}

type jsonConnection struct {
	ID         uuid.UUID      `json:"id"`
	References []string       `json:"references"`
	Type       ConnectionType `json:"type"`
	Direction  Direction      `json:"direction"`
	Edges      []jsonEdge     `json:"edges"`
}

type jsonEdge struct {
	Source      uuid.UUID        `json:"source"`
	Destination uuid.UUID        `json:"destination"`
	Curve       [4]geometry.Vec3 `json:"curve"`
	Widths      [2]float64       `json:"widths"`
}

// MarshalJSON implements the [json.Marshaler] interface.
//
// Values in the data bags of the nodes are base64 encoded.
func (g *WorldGraph) MarshalJSON() ([]byte, error) {
	var out jsonGraph

	for _, n := range g.Nodes(nil, nil) {
		jn := jsonNode{
			ID:        n.id,
			Position:  n.position,
			Radius:    n.radius,
			Type:      n.Type(),
			BelongsTo: n.belongsTo,
		}
		for key, value := range n.dataCopy() {
			if jn.Data == nil {
				jn.Data = make(map[string]string)
			}
			jn.Data[key] = base64.StdEncoding.EncodeToString([]byte(value))
		}
		out.Nodes = append(out.Nodes, jn)
	}

	var conns []*Connection
	refs := make(map[*Connection][]string)
	for _, ref := range g.References() {
		for _, c := range connectionsOf(g.ConnectionsByOffset(ref)) {
			if refs[c] == nil {
				conns = append(conns, c)
			}
			refs[c] = append(refs[c], ref)
		}
	}
	for _, c := range conns {
		jc := jsonConnection{
			ID:         c.id,
			References: refs[c],
			Type:       c.typ,
			Direction:  c.direction,
		}
		for _, e := range c.Edges() {
			b := e.curve
			jc.Edges = append(jc.Edges, jsonEdge{
				Source:      e.source.id,
				Destination: e.destination.id,
				Curve:       [4]geometry.Vec3{b.Source, b.SourceControl, b.DestinationControl, b.Destination},
				Widths:      e.widths,
			})
		}
		out.Connections = append(out.Connections, jc)
	}

	out.Processed = g.ProcessedComponents()
	return json.Marshal(out)
}

// UnmarshalJSON implements the [json.Unmarshaler] interface.  The
// previous contents of g are discarded.  On error, g is left unchanged.
func (g *WorldGraph) UnmarshalJSON(data []byte) error {
	var in jsonGraph
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	fresh := New()
	for _, jn := range in.Nodes {
		n := NewNodeWithID(jn.ID, jn.Position, jn.Radius, jn.Type)
		n.belongsTo = jn.BelongsTo
		for key, enc := range jn.Data {
			value, err := base64.StdEncoding.DecodeString(enc)
			if err != nil {
				return fmt.Errorf("node %s: data %q: %w", jn.ID, key, err)
			}
			n.SetData(key, string(value))
		}
		if err := fresh.StoreNode(n); err != nil {
			return err
		}
	}

	for _, jc := range in.Connections {
		c := &Connection{
			id:        jc.ID,
			typ:       jc.Type,
			direction: jc.Direction,
		}
		for i, je := range jc.Edges {
			src := fresh.Node(je.Source)
			dst := fresh.Node(je.Destination)
			if src == nil || dst == nil {
				return fmt.Errorf("connection %s: edge %d: %w", jc.ID, i, ErrUnknownNode)
			}
			if i > 0 && c.destination != src {
				return fmt.Errorf("connection %s: edge %d: %w", jc.ID, i, ErrNotContiguous)
			}
			b := curve.New(je.Curve[0], je.Curve[1], je.Curve[2], je.Curve[3])
			c.storeEdge(NewEdge(src, dst, je.Widths, b))
		}
		for _, ref := range jc.References {
			if err := fresh.storeConnection(c, c.id, ref); err != nil {
				return err
			}
		}
	}

	for _, name := range in.Processed {
		fresh.ProcessedComponentsAdd(name)
	}

	g.connMu.Lock()
	g.procMu.Lock()
	g.nodeMu.Lock()
	g.connections = fresh.connections
	g.processed = fresh.processed
	g.nodes = fresh.nodes
	g.nodeIDs = fresh.nodeIDs
	g.nodePositions = fresh.nodePositions
	for _, n := range g.nodeIDs {
		n.attach(g)
	}
	g.nodeMu.Unlock()
	g.procMu.Unlock()
	g.connMu.Unlock()
	return nil
}
