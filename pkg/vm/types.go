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


package vm

import (
	"github.com/matrixorigin/aqlflow/pkg/container/row"
	"github.com/matrixorigin/aqlflow/pkg/vm/fetcher"
	"github.com/matrixorigin/aqlflow/pkg/vm/process"
)

type OpType int

const (
	Output OpType = iota
	Limit
	Restrict
	Projection
	Deletion
	Order
	TableScan
)

// Instruction contains one executor of a query plan.
type Instruction struct {
	// Op specified the operator code of an instruction.
	Op OpType
	// Idx specified the plan node the instruction was built from.
	Idx int
	// Arg contains the operand of this instruction, the *Argument of the
	// package implementing Op.
	Arg any
}

type Instructions []Instruction

// RegisterInfos is the register layout of a block's output.
type RegisterInfos struct {
	NrOutputRegs int
	// OutRegs are written by the executor.
	OutRegs []int
	// RegsToKeep are copied from the input row.
	RegsToKeep []int
}

// ExecutionBlock is the runtime of one plan node. It pulls rows from its
// upstream through a fetcher, lets its executor turn them into output
// rows and hands the output out batch by batch. It is a
// fetcher.DependencyProxy itself, so blocks chain.
type ExecutionBlock struct {
	proc  *process.Process
	ins   Instruction
	infos RegisterInfos

	upstream fetcher.DependencyProxy
	rows     fetcher.RowFetcher
	all      fetcher.MatrixFetcher

	out   *row.OutputRow
	stats process.ExecutionStats
	done  bool
}
