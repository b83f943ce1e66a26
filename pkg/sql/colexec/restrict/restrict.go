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


package restrict

import (
	"bytes"
	"fmt"

	"github.com/matrixorigin/aqlflow/pkg/container/row"
	"github.com/matrixorigin/aqlflow/pkg/vm/fetcher"
	"github.com/matrixorigin/aqlflow/pkg/vm/process"
)

func String(arg any, buf *bytes.Buffer) {
	ap := arg.(*Argument)
	buf.WriteString(fmt.Sprintf("filter(%d)", ap.CondReg))
}

func Prepare(_ *process.Process, arg any) error {
	ap := arg.(*Argument)
	ap.ctr = container{}
	return nil
}

// Call forwards the next row whose condition holds.
func Call(_ *process.Process, arg any, rows fetcher.RowFetcher, out *row.OutputRow) (process.ExecState, Stats, error) {
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
		switch {
		case r.IsShadowRow():
			out.CopyShadowRow(r)
			return state, stats, nil
		case r.GetValue(ap.CondReg).Truthy():
			out.CopyRow(r)
			return state, stats, nil
		}
		stats.Filtered++
		if state == process.ExecDone {
			return state, stats, nil
		}
	}
}
