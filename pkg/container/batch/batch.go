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

package batch

import (
	"bytes"
	"fmt"
	"sync/atomic"

	"github.com/RoaringBitmap/roaring"

	"github.com/matrixorigin/aqlflow/pkg/container/types"
)

func (bat *Batch) RowCount() int {
	return bat.rowCount
}

func (bat *Batch) NrRegisters() int {
	return bat.nrRegs
}

// SetRowCount shrinks the visible rows, used once a producer knows how many
// rows it actually wrote. Growing past the allocated capacity panics.
func (bat *Batch) SetRowCount(n int) {
	if n < 0 || n > bat.capacity {
		panic(fmt.Sprintf("batch row count %d out of range [0, %d]", n, bat.capacity))
	}
	if n < bat.rowCount && bat.shadows != nil {
		bat.shadows.RemoveRange(uint64(n), uint64(bat.rowCount))
	}
	bat.rowCount = n
}

func (bat *Batch) cell(row, reg int) int {
	if row < 0 || row >= bat.rowCount || reg < 0 || reg >= bat.nrRegs {
		panic(fmt.Sprintf("batch cell (%d, %d) out of range (%d, %d)", row, reg, bat.rowCount, bat.nrRegs))
	}
	return row*bat.nrRegs + reg
}

// GetValue borrows a cell.
func (bat *Batch) GetValue(row, reg int) types.Value {
	return bat.vals[bat.cell(row, reg)]
}

func (bat *Batch) SetValue(row, reg int, v types.Value) {
	bat.vals[bat.cell(row, reg)] = v
}

// StealValue moves a cell out. The cell reads as the moved marker
// afterwards.
func (bat *Batch) StealValue(row, reg int) types.Value {
	i := bat.cell(row, reg)
	v := bat.vals[i]
	bat.vals[i] = types.Moved()
	return v
}

// MakeShadowRow turns row into a shadow row closing nesting level depth.
// Any register values the row held are dropped.
func (bat *Batch) MakeShadowRow(row int, depth uint32) {
	if depth == 0 {
		panic("shadow row depth must be positive")
	}
	if row < 0 || row >= bat.rowCount {
		panic(fmt.Sprintf("batch row %d out of range %d", row, bat.rowCount))
	}
	base := row * bat.nrRegs
	for i := 0; i < bat.nrRegs; i++ {
		bat.vals[base+i] = types.None()
	}
	if bat.shadows == nil {
		bat.shadows = roaring.New()
	}
	if bat.depths == nil {
		bat.depths = make([]uint32, bat.capacity)
	}
	bat.shadows.Add(uint32(row))
	bat.depths[row] = depth
}

func (bat *Batch) IsShadowRow(row int) bool {
	return bat.shadows != nil && bat.shadows.Contains(uint32(row))
}

// ShadowRowDepth is 0 for a data row.
func (bat *Batch) ShadowRowDepth(row int) uint32 {
	if !bat.IsShadowRow(row) {
		return 0
	}
	return bat.depths[row]
}

func (bat *Batch) HasShadowRows() bool {
	return bat.shadows != nil && !bat.shadows.IsEmpty()
}

// ShadowRows lists shadow row positions in ascending order.
func (bat *Batch) ShadowRows() []uint32 {
	if bat.shadows == nil {
		return nil
	}
	return bat.shadows.ToArray()
}

func (bat *Batch) AddCnt(cnt int) {
	atomic.AddInt64(&bat.Cnt, int64(cnt))
}

func (bat *Batch) GetCnt() int64 {
	return atomic.LoadInt64(&bat.Cnt)
}

// Clean drops one reference. The last reference clears every cell and gives
// the storage back to the manager, so nothing may read the batch after it.
func (bat *Batch) Clean() {
	if bat == nil {
		return
	}
	if atomic.LoadInt64(&bat.Cnt) == 0 {
		return
	}
	if atomic.AddInt64(&bat.Cnt, -1) > 0 {
		return
	}
	if bat.mgr != nil {
		bat.mgr.release(bat)
	}
	bat.vals = nil
	bat.shadows = nil
	bat.depths = nil
	bat.rowCount = 0
	bat.capacity = 0
}

func (bat *Batch) String() string {
	var buf bytes.Buffer

	for i := 0; i < bat.rowCount; i++ {
		if bat.IsShadowRow(i) {
			buf.WriteString(fmt.Sprintf("%d : shadow(%d)\n", i, bat.depths[i]))
			continue
		}
		buf.WriteString(fmt.Sprintf("%d :", i))
		for j := 0; j < bat.nrRegs; j++ {
			buf.WriteString(" ")
			buf.WriteString(bat.vals[i*bat.nrRegs+j].String())
		}
		buf.WriteString("\n")
	}
	return buf.String()
}
