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

	"github.com/matrixorigin/aqlflow/pkg/common/moerr"
)

// Chain builds a plan bottom up where every node has one dependency.
type Chain struct {
	top  *Node
	next int
}

func NewChain(leaf NodeType, cfg any) *Chain {
	c := &Chain{}
	c.top = c.node(leaf, cfg, nil)
	return c
}

func (c *Chain) node(typ NodeType, cfg any, dep *Node) *Node {
	n := &Node{Id: c.next, Type: typ, Config: cfg, Dependency: dep}
	c.next++
	return n
}

// Then stacks a node on top of the chain.
func (c *Chain) Then(typ NodeType, cfg any) *Chain {
	c.top = c.node(typ, cfg, c.top)
	return c
}

func (c *Chain) Node() *Node {
	return c.top
}

func (c *Chain) Query() *Query {
	return &Query{Root: c.top}
}

// Walk calls f for n and its dependencies, top down, and stops at the
// first error.
func (n *Node) Walk(f func(*Node) error) error {
	for ; n != nil; n = n.Dependency {
		if err := f(n); err != nil {
			return err
		}
	}
	return nil
}

func (qry *Query) Validate(ctx context.Context) error {
	if qry.Root == nil {
		return moerr.NewInvalidInput(ctx, "empty plan")
	}
	if qry.Root.Type != Return {
		return moerr.NewInvalidInput(ctx, "plan ends with %s instead of Return", qry.Root.Type)
	}
	return qry.Root.Walk(func(n *Node) error {
		return n.validate(ctx)
	})
}

func (n *Node) validate(ctx context.Context) error {
	if n.Type.IsLeaf() != (n.Dependency == nil) {
		if n.Dependency == nil {
			return moerr.NewInvalidInput(ctx, "node %d (%s) has no dependency", n.Id, n.Type)
		}
		return moerr.NewInvalidInput(ctx, "leaf node %d (%s) has a dependency", n.Id, n.Type)
	}
	var ok bool
	switch n.Type {
	case Singleton:
		ok = n.Config == nil
	case Values:
		var cfg *ValuesNode
		if cfg, ok = n.Config.(*ValuesNode); ok {
			for _, r := range cfg.Rows {
				if len(r) > cfg.NrRegs {
					return moerr.NewInvalidInput(ctx, "values node %d has a row of %d registers, want at most %d",
						n.Id, len(r), cfg.NrRegs)
				}
			}
		}
	case Remote:
		_, ok = n.Config.(*RemoteNode)
	case EnumerateCollection:
		_, ok = n.Config.(*EnumerateCollectionNode)
	case Calculation:
		_, ok = n.Config.(*CalculationNode)
	case Filter:
		_, ok = n.Config.(*FilterNode)
	case Limit:
		_, ok = n.Config.(*LimitNode)
	case Sort:
		var cfg *SortNode
		if cfg, ok = n.Config.(*SortNode); ok && len(cfg.Elements) == 0 {
			return moerr.NewInvalidInput(ctx, "sort node %d has no sort elements", n.Id)
		}
	case Remove:
		_, ok = n.Config.(*RemoveNode)
	case Return:
		_, ok = n.Config.(*ReturnNode)
	default:
		return moerr.NewInvalidInput(ctx, "node %d has unknown type %d", n.Id, n.Type)
	}
	if !ok {
		return moerr.NewInvalidInput(ctx, "node %d (%s) has config %T", n.Id, n.Type, n.Config)
	}
	return nil
}

func (n *Node) String() string {
	var buf bytes.Buffer

	buf.WriteString(n.Type.String())
	switch cfg := n.Config.(type) {
	case *ValuesNode:
		fmt.Fprintf(&buf, "(%d rows)", len(cfg.Rows))
	case *RemoteNode:
		fmt.Fprintf(&buf, "(%s)", cfg.Server)
	case *EnumerateCollectionNode:
		fmt.Fprintf(&buf, "(%s -> %d)", cfg.Collection, cfg.OutReg)
	case *CalculationNode:
		fmt.Fprintf(&buf, "(%d.%v -> %d)", cfg.InReg, cfg.Path, cfg.OutReg)
	case *FilterNode:
		fmt.Fprintf(&buf, "(%d)", cfg.CondReg)
	case *LimitNode:
		fmt.Fprintf(&buf, "(%d, %d)", cfg.Offset, cfg.Limit)
	case *SortNode:
		fmt.Fprintf(&buf, "(%v)", cfg.Elements)
	case *RemoveNode:
		fmt.Fprintf(&buf, "(%s, %d)", cfg.Collection, cfg.InReg)
	case *ReturnNode:
		if cfg.Inherit {
			buf.WriteString("(*)")
		} else {
			fmt.Fprintf(&buf, "(%d)", cfg.InReg)
		}
	}
	return buf.String()
}

// String prints the plan from the root down to its leaf.
func (qry *Query) String() string {
	var buf bytes.Buffer

	_ = qry.Root.Walk(func(n *Node) error {
		if n != qry.Root {
			buf.WriteString(" <- ")
		}
		buf.WriteString(n.String())
		return nil
	})
	return buf.String()
}
