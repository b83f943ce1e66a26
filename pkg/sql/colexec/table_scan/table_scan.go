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


package table_scan

import (
	"bytes"
	"fmt"

	"go.uber.org/zap"

	"github.com/matrixorigin/aqlflow/pkg/common/moerr"
	"github.com/matrixorigin/aqlflow/pkg/container/row"
	"github.com/matrixorigin/aqlflow/pkg/container/types"
	"github.com/matrixorigin/aqlflow/pkg/logutil"
	"github.com/matrixorigin/aqlflow/pkg/vm/fetcher"
	"github.com/matrixorigin/aqlflow/pkg/vm/process"
)

func String(arg any, buf *bytes.Buffer) {
	ap := arg.(*Argument)
	buf.WriteString(fmt.Sprintf("for %d in %s", ap.OutReg, ap.Collection))
}

func Prepare(proc *process.Process, arg any) error {
	ap := arg.(*Argument)
	if ap.Storage == nil {
		return moerr.NewInvalidState(proc.Ctx, "scan of %s without storage", ap.Collection)
	}
	Free(proc, ap)
	ap.ctr = container{upstream: process.ExecHasMore, input: row.InvalidInputRow()}
	return nil
}

// Call writes the next document of the collection for the current input
// row, moving on to the next input row once the collection is
// exhausted.
func Call(proc *process.Process, arg any, rows fetcher.RowFetcher, out *row.OutputRow) (process.ExecState, Stats, error) {
	var stats Stats

	ap := arg.(*Argument)
	ctr := &ap.ctr
	if ctr.done {
		return process.ExecDone, stats, nil
	}
	for {
		if ctr.pos < len(ctr.docs) {
			doc, err := types.ParseJSON(ctr.docs[ctr.pos])
			if err != nil {
				return process.ExecDone, stats, err
			}
			ctr.docs[ctr.pos] = nil
			ctr.pos++
			out.MoveValueInto(ap.OutReg, ctr.input, doc)
			stats.ScannedFull++
			return process.ExecHasMore, stats, nil
		}
		if ctr.cursor != nil && !ctr.exhausted {
			docs, exhausted, err := ctr.cursor.Next(proc.Ctx, out.NumRowsLeft())
			if err != nil {
				return process.ExecDone, stats, err
			}
			ctr.docs, ctr.pos, ctr.exhausted = docs, 0, exhausted
			continue
		}
		if err := ap.closeCursor(); err != nil {
			return process.ExecDone, stats, err
		}
		if ctr.upstream == process.ExecDone {
			ctr.done = true
			return process.ExecDone, stats, nil
		}

		state, r, err := rows.FetchRow(out.NumRowsLeft())
		if err != nil {
			return process.ExecDone, stats, err
		}
		if state == process.ExecWaiting {
			return state, stats, nil
		}
		ctr.upstream = state
		if !r.IsInitialized() {
			continue
		}
		if r.IsShadowRow() {
			out.CopyShadowRow(r)
			if state == process.ExecDone {
				ctr.done = true
			}
			return state, stats, nil
		}
		if ctr.cursor, err = ap.Storage.Scan(proc.Ctx, ap.Collection); err != nil {
			return process.ExecDone, stats, err
		}
		ctr.input, ctr.exhausted = r, false
	}
}

func (arg *Argument) closeCursor() error {
	ctr := &arg.ctr
	ctr.docs, ctr.pos = nil, 0
	if ctr.cursor == nil {
		return nil
	}
	err := ctr.cursor.Close()
	ctr.cursor = nil
	ctr.input = row.InvalidInputRow()
	return err
}

// Free closes a cursor left open by a query that did not run to the end.
func Free(proc *process.Process, arg any) {
	ap := arg.(*Argument)
	if err := ap.closeCursor(); err != nil {
		logutil.Warn("close collection cursor failed",
			logutil.QueryField(proc.QueryId()),
			zap.String("collection", ap.Collection),
			zap.Error(err))
	}
}
