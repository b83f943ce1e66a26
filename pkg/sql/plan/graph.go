// Copyright 2021 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package plan

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/matrixorigin/aqlflow/pkg/common/moerr"
)

// Direction of a traversal along edges.
type Direction int8

// Direction values. DefaultDirection on an edge collection means the
// direction of the traversal.
const (
	DefaultDirection Direction = iota
	Outbound
	Inbound
	Any
)

func (d Direction) String() string {
	switch d {
	case Outbound:
		return "OUTBOUND"
	case Inbound:
		return "INBOUND"
	case Any:
		return "ANY"
	}
	return "DEFAULT"
}

func ParseDirection(ctx context.Context, s string) (Direction, error) {
	switch strings.ToUpper(s) {
	case "OUTBOUND":
		return Outbound, nil
	case "INBOUND":
		return Inbound, nil
	case "ANY":
		return Any, nil
	}
	return DefaultDirection, moerr.NewInvalidInput(ctx, "unknown traversal direction %q", s)
}

// EdgeDefinition is one relation of a named graph: the edges of
// Collection point from vertices in From to vertices in To.
type EdgeDefinition struct {
	Collection string
	From       []string
	To         []string
}

type Graph struct {
	Name              string
	EdgeDefinitions   []EdgeDefinition
	OrphanCollections []string
}

type EdgeCollection struct {
	Name      string
	Direction Direction
}

// GraphSpec is the graph part of a traversal as written in the query:
// either a named Graph or a list of edge collections.
type GraphSpec struct {
	Direction       Direction
	Graph           *Graph
	EdgeCollections []EdgeCollection
	// VertexCollections restricts the vertices. Empty means every vertex
	// collection of the graph.
	VertexCollections []string
}

type Uniqueness int8

const (
	UniqueNone Uniqueness = iota
	UniquePath
	UniqueGlobal
)

func (u Uniqueness) String() string {
	switch u {
	case UniquePath:
		return "path"
	case UniqueGlobal:
		return "global"
	}
	return "none"
}

type TraversalOptions struct {
	MinDepth       uint64
	MaxDepth       uint64
	BFS            bool
	UniqueVertices Uniqueness
	UniqueEdges    Uniqueness
}

func DefaultTraversalOptions() TraversalOptions {
	return TraversalOptions{
		MinDepth:    1,
		MaxDepth:    1,
		UniqueEdges: UniquePath,
	}
}

func (o TraversalOptions) validate(ctx context.Context) error {
	if o.MinDepth > o.MaxDepth {
		return moerr.NewInvalidInput(ctx, "traversal min depth %d exceeds max depth %d", o.MinDepth, o.MaxDepth)
	}
	if o.UniqueVertices == UniqueGlobal && !o.BFS {
		return moerr.NewInvalidInput(ctx, "global vertex uniqueness requires breadth first search")
	}
	if o.UniqueEdges == UniqueGlobal {
		return moerr.NewNotSupported(ctx, "global edge uniqueness")
	}
	return nil
}

// GraphNode is the resolved configuration of a traversal. It is built by
// a GraphNodeBuilder and never changes afterwards; its accessors hand out
// copies.
type GraphNode struct {
	direction Direction
	graphName string
	edges     []EdgeCollection
	vertices  []string
	opts      TraversalOptions
}

func (g *GraphNode) Direction() Direction {
	return g.direction
}

// GraphName is empty for a traversal over edge collections.
func (g *GraphNode) GraphName() string {
	return g.graphName
}

// EdgeCollections are the edge collections with their resolved
// directions, in the order they were declared.
func (g *GraphNode) EdgeCollections() []EdgeCollection {
	return append([]EdgeCollection(nil), g.edges...)
}

// VertexCollections is empty when the vertices are unrestricted.
func (g *GraphNode) VertexCollections() []string {
	return append([]string(nil), g.vertices...)
}

func (g *GraphNode) Options() TraversalOptions {
	return g.opts
}

func (g *GraphNode) String() string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%v %d..%d", g.direction, g.opts.MinDepth, g.opts.MaxDepth)
	if g.graphName != "" {
		fmt.Fprintf(&buf, " GRAPH %q", g.graphName)
		return buf.String()
	}
	for i, e := range g.edges {
		if i > 0 {
			buf.WriteString(",")
		}
		if e.Direction != g.direction {
			fmt.Fprintf(&buf, " %v", e.Direction)
		}
		fmt.Fprintf(&buf, " %s", e.Name)
	}
	return buf.String()
}

// RegisterEngines registers an engine of g on each of servers.
func (g *GraphNode) RegisterEngines(ctx context.Context, reg *EngineRegistry, servers []string) error {
	for _, s := range servers {
		if _, err := reg.Register(ctx, g, s); err != nil {
			return err
		}
	}
	return nil
}

type GraphNodeBuilder struct {
	spec GraphSpec
	opts TraversalOptions
}

func NewGraphNodeBuilder(spec GraphSpec) *GraphNodeBuilder {
	return &GraphNodeBuilder{
		spec: spec,
		opts: DefaultTraversalOptions(),
	}
}

func (b *GraphNodeBuilder) WithOptions(opts TraversalOptions) *GraphNodeBuilder {
	b.opts = opts
	return b
}

// Build resolves the collections and validates the options. The node
// shares no memory with the builder or its spec.
func (b *GraphNodeBuilder) Build(ctx context.Context) (*GraphNode, error) {
	spec := &b.spec
	if spec.Direction == DefaultDirection {
		return nil, moerr.NewInvalidInput(ctx, "traversal has no direction")
	}
	if err := b.opts.validate(ctx); err != nil {
		return nil, err
	}
	g := &GraphNode{
		direction: spec.Direction,
		opts:      b.opts,
	}
	var err error
	switch {
	case spec.Graph != nil && len(spec.EdgeCollections) > 0:
		return nil, moerr.NewInvalidInput(ctx, "traversal names both a graph and edge collections")
	case spec.Graph != nil:
		err = g.resolveGraph(ctx, spec)
	case len(spec.EdgeCollections) > 0:
		err = g.resolveCollections(ctx, spec)
	default:
		return nil, moerr.NewInvalidInput(ctx, "traversal has no edge collections")
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (g *GraphNode) resolveGraph(ctx context.Context, spec *GraphSpec) error {
	graph := spec.Graph
	g.graphName = graph.Name
	seen := make(map[string]bool)
	var all []string
	addVertex := func(name string) {
		if !seen[name] {
			seen[name] = true
			all = append(all, name)
		}
	}
	edges := make(map[string]bool)
	for _, def := range graph.EdgeDefinitions {
		if edges[def.Collection] {
			return moerr.NewInvalidInput(ctx, "graph %s defines edge collection %s twice", graph.Name, def.Collection)
		}
		edges[def.Collection] = true
		g.edges = append(g.edges, EdgeCollection{Name: def.Collection, Direction: spec.Direction})
		for _, v := range def.From {
			addVertex(v)
		}
		for _, v := range def.To {
			addVertex(v)
		}
	}
	for _, v := range graph.OrphanCollections {
		addVertex(v)
	}
	if len(g.edges) == 0 {
		return moerr.NewInvalidInput(ctx, "graph %s has no edge definitions", graph.Name)
	}
	if len(spec.VertexCollections) == 0 {
		g.vertices = all
		return nil
	}
	for _, v := range spec.VertexCollections {
		if !seen[v] {
			return moerr.NewInvalidInput(ctx, "vertex collection %s is not part of graph %s", v, graph.Name)
		}
	}
	g.vertices = dedup(spec.VertexCollections)
	return nil
}

func (g *GraphNode) resolveCollections(ctx context.Context, spec *GraphSpec) error {
	dirs := make(map[string]Direction)
	for _, e := range spec.EdgeCollections {
		dir := e.Direction
		if dir == DefaultDirection {
			dir = spec.Direction
		}
		if prev, ok := dirs[e.Name]; ok {
			if prev != dir {
				return moerr.NewInvalidInput(ctx, "edge collection %s used with directions %v and %v", e.Name, prev, dir)
			}
			continue
		}
		dirs[e.Name] = dir
		g.edges = append(g.edges, EdgeCollection{Name: e.Name, Direction: dir})
	}
	g.vertices = dedup(spec.VertexCollections)
	return nil
}

func dedup(names []string) []string {
	var rs []string
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			rs = append(rs, n)
		}
	}
	return rs
}
