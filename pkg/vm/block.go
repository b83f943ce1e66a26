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
	"go.uber.org/zap"

	"github.com/matrixorigin/aqlflow/pkg/common/moerr"
	"github.com/matrixorigin/aqlflow/pkg/container/batch"
	"github.com/matrixorigin/aqlflow/pkg/container/row"
	"github.com/matrixorigin/aqlflow/pkg/logutil"
	"github.com/matrixorigin/aqlflow/pkg/vm/fetcher"
	"github.com/matrixorigin/aqlflow/pkg/vm/process"
)

// DefaultBatchRows is the output size of a block pulled without a row
// budget.
var DefaultBatchRows = process.DefaultBatchRows

var _ fetcher.DependencyProxy = new(ExecutionBlock)

func NewExecutionBlock(proc *process.Process, ins Instruction, infos RegisterInfos, upstream fetcher.DependencyProxy) *ExecutionBlock {
	b := &ExecutionBlock{
		proc:     proc,
		ins:      ins,
		infos:    infos,
		upstream: upstream,
	}
	if ins.Op == Order {
		b.all = fetcher.NewAllRowsFetcher(upstream)
	} else {
		b.rows = fetcher.NewSingleRowFetcher(upstream)
	}
	return b
}

func (b *ExecutionBlock) Instruction() Instruction {
	return b.ins
}

func (b *ExecutionBlock) NrRegisters() int {
	return b.infos.NrOutputRegs
}

// Stats are the counters of this block alone.
func (b *ExecutionBlock) Stats() process.ExecutionStats {
	return b.stats
}

func (b *ExecutionBlock) Prepare() error {
	return prepare(b.ins, b.proc)
}

// FetchBlock returns up to atMost output rows. Rows produced before the
// upstream suspended stay in the block until the next pull. After DONE, or
// after an error, every pull returns DONE.
func (b *ExecutionBlock) FetchBlock(atMost int) (state process.ExecState, bat *batch.Batch, err error) {
	if b.done {
		return process.ExecDone, nil, nil
	}
	defer func() {
		if e := recover(); e != nil {
			err = moerr.ConvertPanicError(b.proc.Ctx, e)
		}
		if err != nil {
			logutil.Debug("execution block failed",
				logutil.QueryField(b.proc.QueryId()),
				zap.Int("node", b.ins.Idx),
				zap.Error(err))
			b.fail()
			state, bat = process.ExecDone, nil
		}
	}()

	if err = b.proc.Interrupted(); err != nil {
		return
	}
	if atMost <= 0 {
		atMost = DefaultBatchRows
	}
	if b.out == nil {
		if bat, err = b.proc.RequestBatch(atMost, b.infos.NrOutputRegs); err != nil {
			return
		}
		b.out = row.NewOutputRow(bat, b.infos.OutRegs, b.infos.RegsToKeep)
		bat = nil
	}

	for !b.out.IsFull() {
		if state, err = b.produce(); err != nil {
			return
		}
		if state == process.ExecWaiting {
			if b.out.Partial() || b.out.Produced() {
				err = moerr.NewProtocolViolation(b.proc.Ctx, "row written together with %s", state)
				return
			}
			return state, nil, nil
		}
		if b.out.Partial() {
			err = moerr.NewProtocolViolation(b.proc.Ctx, "unfinished row with %s", state)
			return
		}
		if b.out.Produced() {
			b.out.AdvanceRow()
		}
		if state == process.ExecDone {
			b.done = true
			bat = b.out.StealBatch()
			b.out = nil
			return state, bat, nil
		}
	}
	bat = b.out.StealBatch()
	b.out = nil
	return process.ExecHasMore, bat, nil
}

func (b *ExecutionBlock) fail() {
	b.done = true
	if b.out != nil {
		b.out.Release()
		b.out = nil
	}
}

// Close releases everything the block and its upstream chain still hold.
func (b *ExecutionBlock) Close() {
	b.fail()
	b.free()
	if b.rows != nil {
		b.rows.Close()
	}
	if b.all != nil {
		b.all.Close()
	}
	if c, ok := b.upstream.(interface{ Close() }); ok {
		c.Close()
	}
}
