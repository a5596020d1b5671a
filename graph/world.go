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
	"cmp"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/terrain"
	"seehuhn.de/go/terrain/geometry"
)

// WorldGraph indexes nodes and connections by position.
//
// Nodes are bucketed by index cell and type.  Connections are bucketed by
// a reference string, which names a logical layer like "rivers" or
// "roads", and by every index cell touched by one of their nodes.
//
// All methods are safe for concurrent use.
type WorldGraph struct {
	connMu      sync.Mutex // acquire before nodeMu
	connections map[string]EdgesByOffset

	procMu    sync.Mutex
	processed map[string]bool

	nodeMu        sync.Mutex
	nodes         map[Offset]map[NodeType][]*Node
	nodeIDs       map[uuid.UUID]*Node
	nodePositions map[geometry.Vec3]*Node
}

// New returns an empty graph.
func New() *WorldGraph {
	return &WorldGraph{
		connections:   make(map[string]EdgesByOffset),
		processed:     make(map[string]bool),
		nodes:         make(map[Offset]map[NodeType][]*Node),
		nodeIDs:       make(map[uuid.UUID]*Node),
		nodePositions: make(map[geometry.Vec3]*Node),
	}
}

// StoreNode adds n to the graph.  A node which shares its id or its exact
// position with a stored node is rejected with [ErrDuplicateNode].
func (g *WorldGraph) StoreNode(n *Node) error {
	g.nodeMu.Lock()
	defer g.nodeMu.Unlock()
	return g.storeNodeLocked(n)
}

func (g *WorldGraph) checkNodeLocked(n *Node) error {
	if other, ok := g.nodeIDs[n.id]; ok {
		return fmt.Errorf("node %s collides with %s: %w", n, other, ErrDuplicateNode)
	}
	if other, ok := g.nodePositions[n.position]; ok {
		return fmt.Errorf("node %s collides with %s at %v: %w", n, other, n.position, ErrDuplicateNode)
	}
	return nil
}

func (g *WorldGraph) storeNodeLocked(n *Node) error {
	if err := g.checkNodeLocked(n); err != nil {
		return err
	}

	o := OffsetOf(n.PositionXZ(), OffsetResolution)
	byType := g.nodes[o]
	if byType == nil {
		byType = make(map[NodeType][]*Node)
		g.nodes[o] = byType
	}
	typ := n.Type()
	byType[typ] = append(byType[typ], n)
	g.nodeIDs[n.id] = n
	g.nodePositions[n.position] = n
	n.attach(g)

	terrain.Logger().Debug("store node", "node", n, "offset", o)
	return nil
}

// RemoveNode removes n from the node index.  It reports whether n was
// stored.  A removed node can be stored again, but it cannot change its
// type while it is not stored.
func (g *WorldGraph) RemoveNode(n *Node) bool {
	g.nodeMu.Lock()
	defer g.nodeMu.Unlock()

	if !g.isStoredLocked(n) {
		return false
	}
	g.unindexLocked(n, n.Type())
	delete(g.nodeIDs, n.id)
	delete(g.nodePositions, n.position)
	n.attach(nil)
	return true
}

// unindexLocked removes n from the list of its index cell for type typ.
func (g *WorldGraph) unindexLocked(n *Node, typ NodeType) {
	o := OffsetOf(n.PositionXZ(), OffsetResolution)
	byType := g.nodes[o]
	list := byType[typ]
	idx := slices.Index(list, n)
	if idx < 0 {
		return
	}
	list = slices.Delete(list, idx, idx+1)
	if len(list) > 0 {
		byType[typ] = list
		return
	}
	delete(byType, typ)
	if len(byType) == 0 {
		delete(g.nodes, o)
	}
}

// retype changes the type of the stored node n and moves it to the index
// list of the new type, without releasing the node index in between.
func (g *WorldGraph) retype(n *Node, typ NodeType) error {
	g.nodeMu.Lock()
	defer g.nodeMu.Unlock()

	if !g.isStoredLocked(n) {
		return fmt.Errorf("node %s: %w", n, ErrNodeRemoved)
	}
	old := n.Type()
	if old == typ {
		return nil
	}
	g.unindexLocked(n, old)

	n.mu.Lock()
	n.typ = typ
	n.mu.Unlock()

	o := OffsetOf(n.PositionXZ(), OffsetResolution)
	byType := g.nodes[o]
	if byType == nil {
		byType = make(map[NodeType][]*Node)
		g.nodes[o] = byType
	}
	byType[typ] = append(byType[typ], n)
	terrain.Logger().Debug("retype node", "node", n, "from", old)
	return nil
}

func (g *WorldGraph) isStoredLocked(n *Node) bool {
	return g.nodeIDs[n.id] == n
}

// Node returns the node with the given id, or nil.
func (g *WorldGraph) Node(id uuid.UUID) *Node {
	g.nodeMu.Lock()
	defer g.nodeMu.Unlock()
	return g.nodeIDs[id]
}

// BelongsTo resolves the owner of n, see [Node.SetBelongsTo].  The result
// is nil if n belongs to no node, or if the owner is not stored in g.
func (g *WorldGraph) BelongsTo(n *Node) *Node {
	if n.belongsTo == uuid.Nil {
		return nil
	}
	return g.Node(n.belongsTo)
}

// PositionIsFree reports whether no stored node has exactly position p.
func (g *WorldGraph) PositionIsFree(p geometry.Vec3) bool {
	g.nodeMu.Lock()
	defer g.nodeMu.Unlock()
	_, taken := g.nodePositions[p]
	return !taken
}

// NodeCount returns the number of stored nodes.
func (g *WorldGraph) NodeCount() int {
	g.nodeMu.Lock()
	defer g.nodeMu.Unlock()
	return len(g.nodeIDs)
}

// NodeTypes returns the types of all stored nodes, sorted by name.
func (g *WorldGraph) NodeTypes() []NodeType {
	g.nodeMu.Lock()
	defer g.nodeMu.Unlock()
	return g.nodeTypesLocked()
}

func (g *WorldGraph) nodeTypesLocked() []NodeType {
	var types []NodeType
	for _, byType := range g.nodes {
		for t := range byType {
			types = append(types, t)
		}
	}
	types = lo.Uniq(types)
	slices.SortFunc(types, func(a, b NodeType) int {
		return cmp.Compare(a.String(), b.String())
	})
	return types
}

// NodeByOffset returns all stored nodes, grouped by index cell.
func (g *WorldGraph) NodeByOffset() map[Offset][]*Node {
	g.nodeMu.Lock()
	defer g.nodeMu.Unlock()

	res := make(map[Offset][]*Node, len(g.nodes))
	for o, byType := range g.nodes {
		for _, t := range sortedTypes(byType) {
			res[o] = append(res[o], byType[t]...)
		}
	}
	return res
}

// Nodes returns the stored nodes of the given types in the given index
// cells.  If types is empty, all types are used.  If offsets is nil, all
// cells are used.  The result is ordered by cell, then by type.
func (g *WorldGraph) Nodes(types []NodeType, offsets []Offset) []*Node {
	g.nodeMu.Lock()
	defer g.nodeMu.Unlock()

	if offsets == nil {
		offsets = lo.Keys(g.nodes)
	} else {
		offsets = lo.Uniq(offsets)
	}
	slices.SortFunc(offsets, compareOffsets)

	var res []*Node
	for _, o := range offsets {
		res = append(res, collect(g.nodes[o], types)...)
	}
	return res
}

func collect(byType map[NodeType][]*Node, types []NodeType) []*Node {
	if len(byType) == 0 {
		return nil
	}
	if len(types) == 0 {
		types = sortedTypes(byType)
	}
	var res []*Node
	for _, t := range types {
		res = append(res, byType[t]...)
	}
	return res
}

func sortedTypes(byType map[NodeType][]*Node) []NodeType {
	types := lo.Keys(byType)
	slices.SortFunc(types, func(a, b NodeType) int {
		return cmp.Compare(a.String(), b.String())
	})
	return types
}

// NodesInRange returns the stored nodes of the given types within
// horizontal distance radius of p, closest first.  If no types are given,
// all types are used.
func (g *WorldGraph) NodesInRange(p vec.Vec2, radius float64, types ...NodeType) []*Node {
	g.nodeMu.Lock()
	defer g.nodeMu.Unlock()

	var res []*Node
	for _, o := range OffsetsForRange(p, radius, OffsetResolution) {
		for _, n := range collect(g.nodes[o], types) {
			if n.PositionXZ().Sub(p).Length() <= radius {
				res = append(res, n)
			}
		}
	}
	slices.SortStableFunc(res, func(a, b *Node) int {
		return cmp.Compare(a.PositionXZ().Sub(p).Length(), b.PositionXZ().Sub(p).Length())
	})
	return res
}

// NodesInRect returns the stored nodes of the given types inside r.
func (g *WorldGraph) NodesInRect(r rect.Rect, types ...NodeType) []*Node {
	cand := g.Nodes(types, OffsetsForRect(r, OffsetResolution))
	return lo.Filter(cand, func(n *Node, _ int) bool {
		return geometry.Contains(r, n.PositionXZ())
	})
}

// StoreConnection optimizes c (see [Connection.Optimized]) and stores the
// result under the given reference, together with all nodes of c which
// are not yet stored.  The stored connection is returned.
//
// Nothing is stored if a node collides with a different stored node, or
// if a connection with the same id is already stored under reference.
func (g *WorldGraph) StoreConnection(c *Connection, reference string) (*Connection, error) {
	if c.EdgeCount() == 0 {
		terrain.Logger().Warn("storing connection without edges", "connection", c)
	}
	o, id := c.prepare()
	if err := g.storeConnection(o, id, reference); err != nil {
		return nil, err
	}
	return o, nil
}

// storeConnection stores a prepared connection under the given id.  The
// connection is only committed once all checks have passed.
func (g *WorldGraph) storeConnection(o *Connection, id uuid.UUID, reference string) error {
	g.connMu.Lock()
	defer g.connMu.Unlock()

	nodes := o.Nodes()
	var offsets []Offset
	for _, n := range nodes {
		offsets = append(offsets, OffsetOf(n.PositionXZ(), OffsetResolution))
	}
	offsets = lo.Uniq(offsets)

	byOffset := g.connections[reference]
	for _, off := range offsets {
		for _, other := range byOffset[off] {
			if other == o || other.id == id {
				return fmt.Errorf("connection %s collides with %s: %w", o, other, ErrDuplicateConnection)
			}
		}
	}

	g.nodeMu.Lock()
	var missing []*Node
	for _, n := range nodes {
		if g.isStoredLocked(n) || slices.Contains(missing, n) {
			continue
		}
		err := g.checkNodeLocked(n)
		if err == nil && lo.SomeBy(missing, func(m *Node) bool { return m.id == n.id || m.position == n.position }) {
			err = fmt.Errorf("node %s occurs twice in %s: %w", n, shortID(id), ErrDuplicateNode)
		}
		if err != nil {
			g.nodeMu.Unlock()
			return err
		}
		missing = append(missing, n)
	}
	for _, n := range missing {
		_ = g.storeNodeLocked(n) // checked above
	}
	g.nodeMu.Unlock()

	o.commit(id)

	for _, e := range o.Edges() {
		for _, n := range e.Nodes() {
			n.addEdge(e)
			n.addConnection(o)
		}
	}

	if byOffset == nil {
		byOffset = make(EdgesByOffset)
		g.connections[reference] = byOffset
	}
	for _, off := range offsets {
		byOffset[off] = append(byOffset[off], o)
	}

	terrain.Logger().Debug("store connection", "reference", reference, "connection", o)
	return nil
}

// References returns the references under which connections are stored,
// sorted.
func (g *WorldGraph) References() []string {
	g.connMu.Lock()
	defer g.connMu.Unlock()
	refs := lo.Keys(g.connections)
	slices.Sort(refs)
	return refs
}

// ConnectionsByOffset returns a copy of the connection index for one
// reference.
func (g *WorldGraph) ConnectionsByOffset(reference string) EdgesByOffset {
	g.connMu.Lock()
	defer g.connMu.Unlock()
	if byOffset, ok := g.connections[reference]; ok {
		return byOffset.Clone()
	}
	return make(EdgesByOffset)
}

// Connections returns all stored connections, each once.  The order is
// by reference, then by index cell.
func (g *WorldGraph) Connections() []*Connection {
	g.connMu.Lock()
	defer g.connMu.Unlock()

	refs := lo.Keys(g.connections)
	slices.Sort(refs)
	var res []*Connection
	for _, ref := range refs {
		res = append(res, connectionsOf(g.connections[ref])...)
	}
	return lo.Uniq(res)
}

func connectionsOf(byOffset EdgesByOffset) []*Connection {
	offsets := lo.Keys(byOffset)
	slices.SortFunc(offsets, compareOffsets)
	return lo.Uniq(lo.FlatMap(offsets, func(o Offset, _ int) []*Connection {
		return byOffset[o]
	}))
}

// ConnectionsAt returns the connections of all references which touch the
// given index cell.
func (g *WorldGraph) ConnectionsAt(o Offset) []*Connection {
	g.connMu.Lock()
	defer g.connMu.Unlock()

	refs := lo.Keys(g.connections)
	slices.Sort(refs)
	var res []*Connection
	for _, ref := range refs {
		res = append(res, g.connections[ref][o]...)
	}
	return lo.Uniq(res)
}

// ConnectionCount returns the number of stored connections.
func (g *WorldGraph) ConnectionCount() int {
	return len(g.Connections())
}

// EdgeCount returns the number of edges in all stored connections.
func (g *WorldGraph) EdgeCount() int {
	return lo.SumBy(g.Connections(), (*Connection).EdgeCount)
}

// ProcessedComponentsContains reports whether the named unit of work has
// been recorded as done.
func (g *WorldGraph) ProcessedComponentsContains(name string) bool {
	g.procMu.Lock()
	defer g.procMu.Unlock()
	return g.processed[name]
}

// ProcessedComponentsAdd records the named unit of work as done.
func (g *WorldGraph) ProcessedComponentsAdd(name string) {
	g.procMu.Lock()
	defer g.procMu.Unlock()
	g.processed[name] = true
}

// ProcessedComponents returns the names of all units of work recorded as
// done, sorted.
func (g *WorldGraph) ProcessedComponents() []string {
	g.procMu.Lock()
	defer g.procMu.Unlock()
	res := lo.Keys(g.processed)
	slices.Sort(res)
	return res
}
