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


package testutil

import (
	"context"

	"github.com/matrixorigin/aqlflow/pkg/common/mpool"
	"github.com/matrixorigin/aqlflow/pkg/container/batch"
	"github.com/matrixorigin/aqlflow/pkg/container/row"
	"github.com/matrixorigin/aqlflow/pkg/container/types"
	"github.com/matrixorigin/aqlflow/pkg/vm/process"
)

var testPool = batch.NewPool(batch.DefaultPoolDepth)

func NewProcess() *process.Process {
	mp := mpool.MustNewZero()
	return NewProcessWithMPool("", mp)
}

// NewProcessWithMPool returns a process charging mp. An empty id keeps the
// generated query id.
func NewProcessWithMPool(id string, mp *mpool.MPool) *process.Process {
	proc := process.New(context.Background(), mp, testPool)
	if id != "" {
		proc.Id = id
	}
	return proc
}

// Row describes one row of a test batch. A row with a non zero Shadow is
// built as a shadow row of that depth and its values are ignored.
type Row struct {
	Vals   []types.Value
	Shadow uint32
}

func Values(vs ...types.Value) Row {
	return Row{Vals: vs}
}

func ShadowRow(depth uint32) Row {
	return Row{Shadow: depth}
}

// IntRows makes single register rows holding vs.
func IntRows(vs ...int64) []Row {
	rows := make([]Row, len(vs))
	for i, v := range vs {
		rows[i] = Row{Vals: []types.Value{types.Int(v)}}
	}
	return rows
}

// BuildBatch allocates a batch through proc and fills it with rows. It
// panics on allocation failure.
func BuildBatch(proc *process.Process, nrRegs int, rows ...Row) *batch.Batch {
	bat, err := proc.RequestBatch(len(rows), nrRegs)
	if err != nil {
		panic(err)
	}
	for i, r := range rows {
		if r.Shadow > 0 {
			bat.MakeShadowRow(i, r.Shadow)
			continue
		}
		for reg, v := range r.Vals {
			bat.SetValue(i, reg, v)
		}
	}
	return bat
}

func NewIntBatch(proc *process.Process, vs ...int64) *batch.Batch {
	return BuildBatch(proc, 1, IntRows(vs...)...)
}

// NewOutputRow allocates an output batch of rows rows for an executor
// writing outRegs and keeping regsToKeep.
func NewOutputRow(proc *process.Process, rows, nrRegs int, outRegs, regsToKeep []int) *row.OutputRow {
	bat, err := proc.RequestBatch(rows, nrRegs)
	if err != nil {
		panic(err)
	}
	return row.NewOutputRow(bat, outRegs, regsToKeep)
}

// Column returns register reg of every data row of bat. Shadow rows are
// reported as None.
func Column(bat *batch.Batch, reg int) []types.Value {
	if bat == nil {
		return nil
	}
	vs := make([]types.Value, 0, bat.RowCount())
	for i := 0; i < bat.RowCount(); i++ {
		if bat.IsShadowRow(i) {
			vs = append(vs, types.None())
			continue
		}
		vs = append(vs, bat.GetValue(i, reg))
	}
	return vs
}

// Ints is Column for integer registers. Shadow rows are skipped.
func Ints(bat *batch.Batch, reg int) []int64 {
	if bat == nil {
		return nil
	}
	vs := make([]int64, 0, bat.RowCount())
	for i := 0; i < bat.RowCount(); i++ {
		if bat.IsShadowRow(i) {
			continue
		}
		vs = append(vs, bat.GetValue(i, reg).GetInt())
	}
	return vs
}
