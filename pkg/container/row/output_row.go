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

package row

import (
	"fmt"

	"github.com/matrixorigin/aqlflow/pkg/container/batch"
	"github.com/matrixorigin/aqlflow/pkg/container/types"
)

// OutputRow writes rows into a batch owned by the executing block. A row
// counts as produced once every output register is written and the
// registers to keep were copied from the input row. Only produced rows are
// ever exposed: the block advances past a row after it is complete, and an
// unfinished row is simply overwritten or cut off.
type OutputRow struct {
	bat        *batch.Batch
	outRegs    []int
	regsToKeep []int

	idx           int
	written       int
	inputCopied   bool
	lastWrittenTo []bool
}

func NewOutputRow(bat *batch.Batch, outRegs, regsToKeep []int) *OutputRow {
	o := &OutputRow{
		bat:        bat,
		outRegs:    outRegs,
		regsToKeep: regsToKeep,
	}
	o.lastWrittenTo = make([]bool, bat.NrRegisters())
	return o
}

func (o *OutputRow) Batch() *batch.Batch {
	return o.bat
}

func (o *OutputRow) IsFull() bool {
	return o.idx >= o.bat.RowCount()
}

// NumRowsWritten counts the complete rows.
func (o *OutputRow) NumRowsWritten() int {
	return o.idx
}

// NumRowsLeft is the number of rows that still fit, the current one
// included.
func (o *OutputRow) NumRowsLeft() int {
	return o.bat.RowCount() - o.idx
}

func (o *OutputRow) Produced() bool {
	return o.inputCopied && o.written == len(o.outRegs)
}

// Partial reports a current row that was started but not finished.
func (o *OutputRow) Partial() bool {
	return (o.inputCopied || o.written > 0) && !o.Produced()
}

func (o *OutputRow) isOutputRegister(reg int) bool {
	for _, r := range o.outRegs {
		if r == reg {
			return true
		}
	}
	return false
}

// MoveValueInto stores v into output register reg of the current row and
// copies the kept registers from src the first time it is called for the
// row.
func (o *OutputRow) MoveValueInto(reg int, src InputRow, v types.Value) {
	if !o.isOutputRegister(reg) {
		panic(fmt.Sprintf("register %d is not an output register", reg))
	}
	if o.lastWrittenTo[reg] {
		panic(fmt.Sprintf("register %d written twice in one row", reg))
	}
	o.bat.SetValue(o.idx, reg, v)
	o.lastWrittenTo[reg] = true
	o.written++
	if !o.inputCopied {
		o.copyKept(src)
	}
}

func (o *OutputRow) copyKept(src InputRow) {
	for _, reg := range o.regsToKeep {
		o.bat.SetValue(o.idx, reg, src.GetValue(reg))
	}
	o.inputCopied = true
}

// CopyRow forwards src unchanged: every register the input has lands in
// the same register of the output. It fills a row on its own, so the
// block must not declare output registers for it.
func (o *OutputRow) CopyRow(src InputRow) {
	if o.inputCopied {
		panic("input row copied twice")
	}
	n := src.NrRegisters()
	if n > o.bat.NrRegisters() {
		n = o.bat.NrRegisters()
	}
	for reg := 0; reg < n; reg++ {
		o.bat.SetValue(o.idx, reg, src.GetValue(reg))
	}
	o.inputCopied = true
	o.written = len(o.outRegs)
}

// CopyShadowRow forwards a subquery boundary with its depth.
func (o *OutputRow) CopyShadowRow(src InputRow) {
	if o.inputCopied {
		panic("input row copied twice")
	}
	o.bat.MakeShadowRow(o.idx, src.ShadowRowDepth())
	o.inputCopied = true
	o.written = len(o.outRegs)
}

// AdvanceRow moves on to the next row. The current row must be produced.
func (o *OutputRow) AdvanceRow() {
	if !o.Produced() {
		panic("advancing past an unfinished output row")
	}
	o.idx++
	o.written = 0
	o.inputCopied = false
	for i := range o.lastWrittenTo {
		o.lastWrittenTo[i] = false
	}
}

// StealBatch cuts the batch down to the produced rows and hands it over.
// It returns nil, and releases the batch, when no row was produced.
func (o *OutputRow) StealBatch() *batch.Batch {
	bat := o.bat
	o.bat = nil
	if o.idx == 0 {
		bat.Clean()
		return nil
	}
	bat.SetRowCount(o.idx)
	return bat
}

// Release gives the batch back without handing it over, used when the
// block fails.
func (o *OutputRow) Release() {
	if o.bat != nil {
		o.bat.Clean()
		o.bat = nil
	}
}
