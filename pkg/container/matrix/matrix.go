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

package matrix

import (
	"github.com/matrixorigin/aqlflow/pkg/container/batch"
	"github.com/matrixorigin/aqlflow/pkg/container/row"
)

// RowIndex addresses one row of a matrix.
type RowIndex struct {
	Block uint32
	Row   uint32
}

// Matrix is the complete input of a blocking operator: every block its
// upstream produced, in arrival order. It owns one reference to each
// block.
type Matrix struct {
	nrRegs int
	size   int
	blocks []*batch.Batch
}

func New(nrRegs int) *Matrix {
	return &Matrix{nrRegs: nrRegs}
}

// AddBlock appends bat, taking over the caller's reference.
func (m *Matrix) AddBlock(bat *batch.Batch) {
	if bat.NrRegisters() != m.nrRegs {
		panic("matrix blocks must share one register layout")
	}
	m.blocks = append(m.blocks, bat)
	m.size += bat.RowCount()
}

// Size counts every row, shadow rows included.
func (m *Matrix) Size() int {
	return m.size
}

func (m *Matrix) Empty() bool {
	return m.size == 0
}

func (m *Matrix) NrRegisters() int {
	return m.nrRegs
}

func (m *Matrix) NumBlocks() int {
	return len(m.blocks)
}

func (m *Matrix) GetBlock(i int) *batch.Batch {
	return m.blocks[i]
}

func (m *Matrix) GetRow(idx RowIndex) row.InputRow {
	return row.NewInputRow(m.blocks[idx.Block], int(idx.Row))
}

// RowIndexes lists every row in order.
func (m *Matrix) RowIndexes() []RowIndex {
	idxs := make([]RowIndex, 0, m.size)
	for b, bat := range m.blocks {
		for r := 0; r < bat.RowCount(); r++ {
			idxs = append(idxs, RowIndex{Block: uint32(b), Row: uint32(r)})
		}
	}
	return idxs
}

// Segment is a run of data rows and the shadow rows closing it. The last
// segment of a matrix may have no shadow rows.
type Segment struct {
	Rows    []RowIndex
	Shadows []RowIndex
}

// Segments splits the matrix at its shadow rows, so each subquery run can
// be handled on its own.
func (m *Matrix) Segments() []Segment {
	var segs []Segment
	cur := Segment{}
	for b, bat := range m.blocks {
		for r := 0; r < bat.RowCount(); r++ {
			idx := RowIndex{Block: uint32(b), Row: uint32(r)}
			if bat.IsShadowRow(r) {
				cur.Shadows = append(cur.Shadows, idx)
				continue
			}
			if len(cur.Shadows) > 0 {
				segs = append(segs, cur)
				cur = Segment{}
			}
			cur.Rows = append(cur.Rows, idx)
		}
	}
	if len(cur.Rows) > 0 || len(cur.Shadows) > 0 {
		segs = append(segs, cur)
	}
	return segs
}

// Release drops the matrix's references to its blocks.
func (m *Matrix) Release() {
	for _, bat := range m.blocks {
		bat.Clean()
	}
	m.blocks = nil
	m.size = 0
}
