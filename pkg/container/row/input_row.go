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
	"github.com/matrixorigin/aqlflow/pkg/container/batch"
	"github.com/matrixorigin/aqlflow/pkg/container/types"
)

// InputRow is a read cursor into a batch. It does not hold a reference of
// its own; it is valid while the fetcher that handed it out keeps the
// batch alive.
type InputRow struct {
	bat *batch.Batch
	idx int
}

func NewInputRow(bat *batch.Batch, idx int) InputRow {
	return InputRow{bat: bat, idx: idx}
}

// InvalidInputRow is returned when no row is available, e.g. together with
// WAITING or DONE.
func InvalidInputRow() InputRow {
	return InputRow{idx: -1}
}

func (r InputRow) IsInitialized() bool {
	return r.bat != nil
}

func (r InputRow) Batch() *batch.Batch {
	return r.bat
}

func (r InputRow) Index() int {
	return r.idx
}

func (r InputRow) NrRegisters() int {
	return r.bat.NrRegisters()
}

// GetValue borrows register reg. It may be called any number of times.
func (r InputRow) GetValue(reg int) types.Value {
	return r.bat.GetValue(r.idx, reg)
}

// StealValue moves register reg out of the batch. Later reads of the same
// register return the moved marker.
func (r InputRow) StealValue(reg int) types.Value {
	return r.bat.StealValue(r.idx, reg)
}

func (r InputRow) IsShadowRow() bool {
	return r.bat.IsShadowRow(r.idx)
}

func (r InputRow) ShadowRowDepth() uint32 {
	return r.bat.ShadowRowDepth(r.idx)
}

// IsRelevantShadowRow reports a shadow row closing the innermost subquery.
func (r InputRow) IsRelevantShadowRow() bool {
	return r.bat.ShadowRowDepth(r.idx) == 1
}
