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


package limit

import (
	"bytes"
	"fmt"

	"github.com/matrixorigin/aqlflow/pkg/container/row"
	"github.com/matrixorigin/aqlflow/pkg/vm/fetcher"
	"github.com/matrixorigin/aqlflow/pkg/vm/process"
)

func String(arg any, buf *bytes.Buffer) {
	ap := arg.(*Argument)
	buf.WriteString(fmt.Sprintf("limit(%v, %v)", ap.Offset, ap.Limit))
	if ap.FullCount {
		buf.WriteString(" fullCount")
	}
}

func Prepare(_ *process.Process, arg any) error {
	ap := arg.(*Argument)
	ap.ctr = container{}
	return nil
}

func (arg *Argument) windowEnd() uint64 {
	return arg.Offset + arg.Limit
}

// exhausted reports that no further row can be produced and nothing
// needs to be counted.
func (arg *Argument) exhausted() bool {
	return !arg.FullCount && !arg.Subquery && arg.ctr.seen >= arg.windowEnd()
}

// Call returns the rows of the input that fall into [Offset, Offset+Limit).
func Call(_ *process.Process, arg any, rows fetcher.RowFetcher, out *row.OutputRow) (process.ExecState, Stats, error) {
	var stats Stats

	ap := arg.(*Argument)
	if ap.ctr.done || ap.exhausted() {
		ap.ctr.done = true
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
			if r.IsRelevantShadowRow() {
				ap.ctr.seen = 0
			}
			out.CopyShadowRow(r)
			return state, stats, nil
		}

		pos := ap.ctr.seen
		ap.ctr.seen++
		if ap.FullCount {
			stats.FullCount++
		}
		if pos >= ap.Offset && pos < ap.windowEnd() {
			out.CopyRow(r)
			if ap.exhausted() {
				ap.ctr.done = true
				return process.ExecDone, stats, nil
			}
			return state, stats, nil
		}
		if state == process.ExecDone {
			return state, stats, nil
		}
	}
}
