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
	"github.com/matrixorigin/aqlflow/pkg/container/types"
)

type NodeType int8

// NodeType values.
const (
	Singleton NodeType = iota
	Values
	Remote
	EnumerateCollection
	Calculation
	Filter
	Limit
	Sort
	Remove
	Return
)

var nodeTypeNames = [...]string{
	Singleton:           "Singleton",
	Values:              "Values",
	Remote:              "Remote",
	EnumerateCollection: "EnumerateCollection",
	Calculation:         "Calculation",
	Filter:              "Filter",
	Limit:               "Limit",
	Sort:                "Sort",
	Remove:              "Remove",
	Return:              "Return",
}

func (t NodeType) String() string {
	if t < 0 || int(t) >= len(nodeTypeNames) {
		return "Unknown"
	}
	return nodeTypeNames[t]
}

// IsLeaf reports whether nodes of type t produce rows without a
// dependency.
func (t NodeType) IsLeaf() bool {
	return t == Singleton || t == Values
}

// Node is one operator of an executable plan. Config points to the config
// struct of Type, e.g. *LimitNode for Limit.
type Node struct {
	Id         int
	Type       NodeType
	Config     any
	Dependency *Node
}

type ValuesNode struct {
	NrRegs int
	Rows   [][]types.Value
}

// RemoteNode runs its dependency on Server and streams the result back.
type RemoteNode struct {
	Server string
}

type EnumerateCollectionNode struct {
	Collection string
	OutReg     int
}

// CalculationNode reads the attribute at Path of the document in InReg.
// An empty Path copies the value.
type CalculationNode struct {
	InReg  int
	Path   []string
	OutReg int
}

type FilterNode struct {
	CondReg int
}

type LimitNode struct {
	Offset    uint64
	Limit     uint64
	FullCount bool
	// Subquery is set when the node runs inside a subquery. The node then
	// consumes its whole input so the boundaries of every subquery run
	// reach it.
	Subquery bool
}

type SortElement struct {
	Reg int
	Asc bool
}

type SortNode struct {
	Elements []SortElement
}

type RemoveNode struct {
	Collection string
	InReg      int
	OutReg     int
	ReturnOld  bool
	IgnoreRevs bool
	// IgnoreErrors tolerates documents that are missing or were changed
	// concurrently.
	IgnoreErrors bool
}

// ReturnNode hands rows to the client. Inherit forwards the whole row,
// otherwise InReg is returned as the only register.
type ReturnNode struct {
	InReg   int
	Inherit bool
	DoCount bool
}

// Query is an executable plan.
type Query struct {
	Root *Node
	// Traversals are the graph nodes of the query. Their remote engines
	// are registered on Servers before the query runs.
	Traversals []*GraphNode
	Servers    []string
}
