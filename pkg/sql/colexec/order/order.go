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


package order

import (
	"bytes"
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/matrixorigin/aqlflow/pkg/container/matrix"
	"github.com/matrixorigin/aqlflow/pkg/container/row"
	"github.com/matrixorigin/aqlflow/pkg/container/types"
	"github.com/matrixorigin/aqlflow/pkg/vm/fetcher"
	"github.com/matrixorigin/aqlflow/pkg/vm/process"
)

func String(arg any, buf *bytes.Buffer) {
	ap := arg.(*Argument)
	buf.WriteString("τ([")
	for i, r := range ap.Regs {
		if i > 0 {
			buf.WriteString(", ")
		}
		dir := "DESC"
		if r.Asc {
			dir = "ASC"
		}
		buf.WriteString(fmt.Sprintf("%d %s", r.Reg, dir))
	}
	buf.WriteString("])")
}

func Prepare(_ *process.Process, arg any) error {
	ap := arg.(*Argument)
	ap.ctr = container{}
	return nil
}

// Call materializes the input on first use and then hands out one sorted
// row per call. The matrix stays owned by rows.
func Call(_ *process.Process, arg any, rows fetcher.MatrixFetcher, out *row.OutputRow) (process.ExecState, error) {
	ap := arg.(*Argument)
	ctr := &ap.ctr
	if !ctr.sorted {
		state, mat, err := rows.FetchAllRows(out.NumRowsLeft())
		if err != nil {
			return process.ExecDone, err
		}
		if state == process.ExecWaiting {
			return state, nil
		}
		ctr.mat = mat
		ctr.order = ap.sort(mat)
		ctr.sorted = true
	}
	if ctr.pos >= len(ctr.order) {
		return process.ExecDone, nil
	}

	r := ctr.mat.GetRow(ctr.order[ctr.pos])
	ctr.pos++
	if r.IsShadowRow() {
		out.CopyShadowRow(r)
	} else {
		out.CopyRow(r)
	}
	if ctr.pos == len(ctr.order) {
		return process.ExecDone, nil
	}
	return process.ExecHasMore, nil
}

func (arg *Argument) sort(mat *matrix.Matrix) []matrix.RowIndex {
	less := func(a, b matrix.RowIndex) bool {
		ra, rb := mat.GetRow(a), mat.GetRow(b)
		for _, r := range arg.Regs {
			c := types.Compare(ra.GetValue(r.Reg), rb.GetValue(r.Reg))
			if c == 0 {
				continue
			}
			if r.Asc {
				return c < 0
			}
			return c > 0
		}
		return false
	}

	order := make([]matrix.RowIndex, 0, mat.Size())
	for _, seg := range mat.Segments() {
		rows := slices.Clone(seg.Rows)
		slices.SortStableFunc(rows, less)
		order = append(order, rows...)
		order = append(order, seg.Shadows...)
	}
	return order
}
