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


package projection

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matrixorigin/aqlflow/pkg/container/row"
	"github.com/matrixorigin/aqlflow/pkg/vm/fetcher"
	"github.com/matrixorigin/aqlflow/pkg/vm/process"
)

func String(arg any, buf *bytes.Buffer) {
	ap := arg.(*Argument)
	buf.WriteString(fmt.Sprintf("projection(%d.%s -> %d)", ap.InReg, strings.Join(ap.Path, "."), ap.OutReg))
}

func Prepare(_ *process.Process, arg any) error {
	ap := arg.(*Argument)
	ap.ctr = container{}
	return nil
}

func Call(_ *process.Process, arg any, rows fetcher.RowFetcher, out *row.OutputRow) (process.ExecState, error) {
	ap := arg.(*Argument)
	if ap.ctr.done {
		return process.ExecDone, nil
	}
	state, r, err := rows.FetchRow(out.NumRowsLeft())
	if err != nil {
		return process.ExecDone, err
	}
	if state == process.ExecWaiting {
		return state, nil
	}
	if state == process.ExecDone {
		ap.ctr.done = true
	}
	if !r.IsInitialized() {
		return state, nil
	}
	if r.IsShadowRow() {
		out.CopyShadowRow(r)
		return state, nil
	}
	v := r.GetValue(ap.InReg)
	if len(ap.Path) > 0 {
		v = v.Attribute(ap.Path...)
	}
	out.MoveValueInto(ap.OutReg, r, v)
	return state, nil
}
