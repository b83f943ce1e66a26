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
	"github.com/matrixorigin/aqlflow/pkg/container/batch"
	"github.com/matrixorigin/aqlflow/pkg/vm/fetcher"
	"github.com/matrixorigin/aqlflow/pkg/vm/process"
)

var _ fetcher.DependencyProxy = new(Singleton)

// Singleton is the leaf of a query without other input: one row of empty
// registers, then DONE.
type Singleton struct {
	proc   *process.Process
	nrRegs int
	done   bool
}

func NewSingleton(proc *process.Process, nrRegs int) *Singleton {
	return &Singleton{proc: proc, nrRegs: nrRegs}
}

func (s *Singleton) NrRegisters() int {
	return s.nrRegs
}

func (s *Singleton) FetchBlock(_ int) (process.ExecState, *batch.Batch, error) {
	if s.done {
		return process.ExecDone, nil, nil
	}
	bat, err := s.proc.RequestBatch(1, s.nrRegs)
	if err != nil {
		return process.ExecDone, nil, err
	}
	s.done = true
	return process.ExecDone, bat, nil
}
