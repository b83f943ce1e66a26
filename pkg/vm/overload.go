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
	"bytes"

	"github.com/matrixorigin/aqlflow/pkg/common/moerr"
	"github.com/matrixorigin/aqlflow/pkg/sql/colexec/deletion"
	"github.com/matrixorigin/aqlflow/pkg/sql/colexec/limit"
	"github.com/matrixorigin/aqlflow/pkg/sql/colexec/order"
	"github.com/matrixorigin/aqlflow/pkg/sql/colexec/output"
	"github.com/matrixorigin/aqlflow/pkg/sql/colexec/projection"
	"github.com/matrixorigin/aqlflow/pkg/sql/colexec/restrict"
	"github.com/matrixorigin/aqlflow/pkg/sql/colexec/table_scan"
	"github.com/matrixorigin/aqlflow/pkg/vm/process"
)

var stringFunc = [...]func(any, *bytes.Buffer){
	Output:     output.String,
	Limit:      limit.String,
	Restrict:   restrict.String,
	Projection: projection.String,
	Deletion:   deletion.String,
	Order:      order.String,
	TableScan:  table_scan.String,
}

var prepareFunc = [...]func(*process.Process, any) error{
	Output:     output.Prepare,
	Limit:      limit.Prepare,
	Restrict:   restrict.Prepare,
	Projection: projection.Prepare,
	Deletion:   deletion.Prepare,
	Order:      order.Prepare,
	TableScan:  table_scan.Prepare,
}

// produce runs the executor once and rolls its counters up into the
// block and the query.
func (b *ExecutionBlock) produce() (process.ExecState, error) {
	var (
		state process.ExecState
		stats process.ExecutionStats
		err   error
	)

	switch b.ins.Op {
	case Output:
		var st output.Stats
		state, st, err = output.Call(b.proc, b.ins.Arg, b.rows, b.out)
		st.AddTo(&stats)
	case Limit:
		var st limit.Stats
		state, st, err = limit.Call(b.proc, b.ins.Arg, b.rows, b.out)
		st.AddTo(&stats)
	case Restrict:
		var st restrict.Stats
		state, st, err = restrict.Call(b.proc, b.ins.Arg, b.rows, b.out)
		st.AddTo(&stats)
	case Projection:
		state, err = projection.Call(b.proc, b.ins.Arg, b.rows, b.out)
	case Deletion:
		var st deletion.Stats
		state, st, err = deletion.Call(b.proc, b.ins.Arg, b.rows, b.out)
		st.AddTo(&stats)
	case Order:
		state, err = order.Call(b.proc, b.ins.Arg, b.all, b.out)
	case TableScan:
		var st table_scan.Stats
		state, st, err = table_scan.Call(b.proc, b.ins.Arg, b.rows, b.out)
		st.AddTo(&stats)
	default:
		return process.ExecDone, moerr.NewInternalError(b.proc.Ctx, "unknown operator %d", b.ins.Op)
	}

	b.stats.Add(stats)
	b.proc.Stats.Add(stats)
	return state, err
}

// free releases what an executor holds outside of its fetcher.
func (b *ExecutionBlock) free() {
	switch b.ins.Op {
	case TableScan:
		table_scan.Free(b.proc, b.ins.Arg)
	}
}
