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

package value_scan

import (
	"bytes"
	"fmt"

	"github.com/matrixorigin/aqlflow/pkg/container/batch"
	"github.com/matrixorigin/aqlflow/pkg/vm/process"
)

// New replays bats in order, the last one together with DONE.
func New(nrRegs int, bats ...*batch.Batch) *Argument {
	arg := &Argument{NrRegs: nrRegs}
	for _, bat := range bats {
		arg.Steps = append(arg.Steps, Step{Bat: bat})
	}
	return arg
}

// Block appends a batch step.
func (arg *Argument) Block(bat *batch.Batch) *Argument {
	arg.Steps = append(arg.Steps, Step{Bat: bat})
	return arg
}

// Wait appends a WAITING step.
func (arg *Argument) Wait() *Argument {
	arg.Steps = append(arg.Steps, Step{Wait: true})
	return arg
}

func String(arg any, buf *bytes.Buffer) {
	ap := arg.(*Argument)
	buf.WriteString(fmt.Sprintf("values(%d steps)", len(ap.Steps)))
}

func (arg *Argument) NrRegisters() int {
	return arg.NrRegs
}

// Calls counts FetchBlock invocations.
func (arg *Argument) Calls() int {
	return arg.ctr.calls
}

// FetchBlock ignores atMost: prepared batches are replayed as they are.
func (arg *Argument) FetchBlock(_ int) (process.ExecState, *batch.Batch, error) {
	arg.ctr.calls++
	if arg.ctr.pos >= len(arg.Steps) {
		return process.ExecDone, nil, nil
	}
	step := arg.Steps[arg.ctr.pos]
	arg.ctr.pos++
	if step.Wait {
		return process.ExecWaiting, nil, nil
	}
	arg.Steps[arg.ctr.pos-1].Bat = nil
	if arg.ctr.pos == len(arg.Steps) {
		return process.ExecDone, step.Bat, nil
	}
	return process.ExecHasMore, step.Bat, nil
}

// Close releases the batches that were never fetched.
func (arg *Argument) Close() {
	for i := arg.ctr.pos; i < len(arg.Steps); i++ {
		arg.Steps[i].Bat.Clean()
		arg.Steps[i].Bat = nil
	}
}
