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


package compile

import (
	"context"

	"github.com/matrixorigin/aqlflow/pkg/common/moerr"
	"github.com/matrixorigin/aqlflow/pkg/sql/colexec/deletion"
	"github.com/matrixorigin/aqlflow/pkg/sql/colexec/limit"
	"github.com/matrixorigin/aqlflow/pkg/sql/colexec/order"
	"github.com/matrixorigin/aqlflow/pkg/sql/colexec/output"
	"github.com/matrixorigin/aqlflow/pkg/sql/colexec/projection"
	"github.com/matrixorigin/aqlflow/pkg/sql/colexec/restrict"
	"github.com/matrixorigin/aqlflow/pkg/sql/colexec/table_scan"
	"github.com/matrixorigin/aqlflow/pkg/sql/plan"
	"github.com/matrixorigin/aqlflow/pkg/vm"
	"github.com/matrixorigin/aqlflow/pkg/vm/process"
)

// compileInstruction turns n into an executor reading rows of nrIn
// registers, and lays out the registers of its output.
func (c *Compile) compileInstruction(proc *process.Process, n *plan.Node, nrIn int) (vm.Instruction, vm.RegisterInfos, error) {
	ctx := proc.Ctx
	in := vm.Instruction{Idx: n.Id}
	switch cfg := n.Config.(type) {
	case *plan.EnumerateCollectionNode:
		if err := checkOutput(ctx, n, cfg.OutReg, nrIn); err != nil {
			return in, vm.RegisterInfos{}, err
		}
		in.Op = vm.TableScan
		in.Arg = &table_scan.Argument{
			Collection: cfg.Collection,
			OutReg:     cfg.OutReg,
			Storage:    c.e,
		}
		return in, writes(nrIn, cfg.OutReg), nil
	case *plan.CalculationNode:
		if err := checkInput(ctx, n, cfg.InReg, nrIn); err != nil {
			return in, vm.RegisterInfos{}, err
		}
		if err := checkOutput(ctx, n, cfg.OutReg, nrIn); err != nil {
			return in, vm.RegisterInfos{}, err
		}
		in.Op = vm.Projection
		in.Arg = &projection.Argument{
			InReg:  cfg.InReg,
			Path:   cfg.Path,
			OutReg: cfg.OutReg,
		}
		return in, writes(nrIn, cfg.OutReg), nil
	case *plan.FilterNode:
		if err := checkInput(ctx, n, cfg.CondReg, nrIn); err != nil {
			return in, vm.RegisterInfos{}, err
		}
		in.Op = vm.Restrict
		in.Arg = &restrict.Argument{CondReg: cfg.CondReg}
		return in, copies(nrIn), nil
	case *plan.LimitNode:
		in.Op = vm.Limit
		in.Arg = &limit.Argument{
			Offset:    cfg.Offset,
			Limit:     cfg.Limit,
			FullCount: cfg.FullCount,
			Subquery:  cfg.Subquery,
		}
		return in, copies(nrIn), nil
	case *plan.SortNode:
		regs := make([]order.SortReg, len(cfg.Elements))
		for i, e := range cfg.Elements {
			if err := checkInput(ctx, n, e.Reg, nrIn); err != nil {
				return in, vm.RegisterInfos{}, err
			}
			regs[i] = order.SortReg{Reg: e.Reg, Asc: e.Asc}
		}
		in.Op = vm.Order
		in.Arg = &order.Argument{Regs: regs}
		return in, copies(nrIn), nil
	case *plan.RemoveNode:
		if err := checkInput(ctx, n, cfg.InReg, nrIn); err != nil {
			return in, vm.RegisterInfos{}, err
		}
		in.Op = vm.Deletion
		in.Arg = &deletion.Argument{
			Collection: cfg.Collection,
			InReg:      cfg.InReg,
			OutReg:     cfg.OutReg,
			ReturnOld:  cfg.ReturnOld,
			IgnoreRevs: cfg.IgnoreRevs,
			FailFast:   !cfg.IgnoreErrors,
			Storage:    c.e,
		}
		if !cfg.ReturnOld {
			return in, copies(nrIn), nil
		}
		if err := checkOutput(ctx, n, cfg.OutReg, nrIn); err != nil {
			return in, vm.RegisterInfos{}, err
		}
		return in, writes(nrIn, cfg.OutReg), nil
	case *plan.ReturnNode:
		in.Op = vm.Output
		in.Arg = &output.Argument{
			Inherit:   cfg.Inherit,
			InputReg:  cfg.InReg,
			OutputReg: 0,
			DoCount:   cfg.DoCount,
		}
		if cfg.Inherit {
			return in, copies(nrIn), nil
		}
		if err := checkInput(ctx, n, cfg.InReg, nrIn); err != nil {
			return in, vm.RegisterInfos{}, err
		}
		return in, vm.RegisterInfos{NrOutputRegs: 1, OutRegs: []int{0}}, nil
	}
	return in, vm.RegisterInfos{}, moerr.NewNotSupported(ctx, "plan node %s", n.Type)
}

// copies lays out an executor that forwards its input rows.
func copies(nrIn int) vm.RegisterInfos {
	return vm.RegisterInfos{
		NrOutputRegs: nrIn,
		RegsToKeep:   registers(nrIn, -1),
	}
}

// writes lays out an executor that writes reg and keeps every other
// input register. The row grows when reg is past its end.
func writes(nrIn, reg int) vm.RegisterInfos {
	nr := nrIn
	if reg >= nr {
		nr = reg + 1
	}
	return vm.RegisterInfos{
		NrOutputRegs: nr,
		OutRegs:      []int{reg},
		RegsToKeep:   registers(nrIn, reg),
	}
}

// registers lists 0..n-1 without skip.
func registers(n, skip int) []int {
	regs := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if i != skip {
			regs = append(regs, i)
		}
	}
	return regs
}

func checkInput(ctx context.Context, n *plan.Node, reg, nrIn int) error {
	if reg < 0 || reg >= nrIn {
		return moerr.NewInvalidInput(ctx, "node %d (%s) reads register %d of %d", n.Id, n.Type, reg, nrIn)
	}
	return nil
}

// checkOutput allows writing an input register or the one right after
// the input, so rows never have holes.
func checkOutput(ctx context.Context, n *plan.Node, reg, nrIn int) error {
	if reg < 0 || reg > nrIn {
		return moerr.NewInvalidInput(ctx, "node %d (%s) writes register %d after %d", n.Id, n.Type, reg, nrIn)
	}
	return nil
}
