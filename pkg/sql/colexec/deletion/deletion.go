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


package deletion

import (
	"bytes"
	"fmt"

	"github.com/matrixorigin/aqlflow/pkg/common/moerr"
	"github.com/matrixorigin/aqlflow/pkg/container/row"
	"github.com/matrixorigin/aqlflow/pkg/container/types"
	"github.com/matrixorigin/aqlflow/pkg/vm/engine"
	"github.com/matrixorigin/aqlflow/pkg/vm/fetcher"
	"github.com/matrixorigin/aqlflow/pkg/vm/process"
)

func String(arg any, buf *bytes.Buffer) {
	ap := arg.(*Argument)
	buf.WriteString(fmt.Sprintf("remove(%d in %s)", ap.InReg, ap.Collection))
	if ap.ReturnOld {
		buf.WriteString(" return old")
	}
}

func Prepare(proc *process.Process, arg any) error {
	ap := arg.(*Argument)
	if ap.Storage == nil {
		return moerr.NewInvalidState(proc.Ctx, "remove from %s without storage", ap.Collection)
	}
	ap.ctr = container{}
	return nil
}

// Call removes the document named by the next input row. Failed removes
// of documents that are missing or were changed concurrently skip the row
// unless FailFast is set.
func Call(proc *process.Process, arg any, rows fetcher.RowFetcher, out *row.OutputRow) (process.ExecState, Stats, error) {
	var stats Stats

	ap := arg.(*Argument)
	if ap.ctr.done {
		return process.ExecDone, stats, nil
	}
	for {
		state, r, err := rows.FetchRow(out.NumRowsLeft())
		if err != nil {
			return process.ExecDone, stats, err
		}
		if state == process.ExecWaiting {
			return state, stats, nil
		}
		if state == process.ExecDone {
			ap.ctr.done = true
		}
		if !r.IsInitialized() {
			return state, stats, nil
		}
		if r.IsShadowRow() {
			out.CopyShadowRow(r)
			return state, stats, nil
		}

		res := ap.remove(proc, r.GetValue(ap.InReg))
		switch res.Status {
		case engine.StatusOK:
			stats.WritesExecuted++
			if !ap.ReturnOld {
				out.CopyRow(r)
				return state, stats, nil
			}
			old, err := types.ParseJSON(res.Old)
			if err != nil {
				return process.ExecDone, stats, err
			}
			out.MoveValueInto(ap.OutReg, r, old)
			return state, stats, nil
		case engine.StatusError:
			return process.ExecDone, stats, res.Err
		}
		if ap.FailFast {
			return process.ExecDone, stats, res.Err
		}
		proc.AddWarning(res.Err)
		stats.WritesIgnored++
		if state == process.ExecDone {
			return state, stats, nil
		}
	}
}

func (arg *Argument) remove(proc *process.Process, v types.Value) engine.RemoveResult {
	key, ok := v.Key()
	if !ok {
		return engine.RemoveResult{
			Status: engine.StatusNotFound,
			Err:    moerr.NewInvalidInput(proc.Ctx, "cannot remove %s from %s: no document key", v.Kind(), arg.Collection),
		}
	}
	target := engine.Target{Key: key}
	if rev, ok := v.Rev(); ok {
		target.Rev = rev
	}
	return arg.Storage.Remove(proc.Ctx, arg.Collection, target, engine.RemoveOptions{
		ReturnOld:  arg.ReturnOld,
		IgnoreRevs: arg.IgnoreRevs,
	})
}
