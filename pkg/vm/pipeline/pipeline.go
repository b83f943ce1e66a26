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


package pipeline

import (
	"bytes"
	"time"

	"github.com/matrixorigin/aqlflow/pkg/common/moerr"
	"github.com/matrixorigin/aqlflow/pkg/container/batch"
	"github.com/matrixorigin/aqlflow/pkg/util/metric"
	"github.com/matrixorigin/aqlflow/pkg/vm"
	"github.com/matrixorigin/aqlflow/pkg/vm/fetcher"
	"github.com/matrixorigin/aqlflow/pkg/vm/process"
)

// WaitPollInterval is how long a suspended pipeline sleeps before it pulls
// again when nothing notifies the process.
var WaitPollInterval = 10 * time.Millisecond

func New(root fetcher.DependencyProxy, ins vm.Instructions) *Pipeline {
	return &Pipeline{
		root:         root,
		instructions: ins,
	}
}

func (p *Pipeline) String() string {
	var buf bytes.Buffer

	vm.String(p.instructions, &buf)
	return buf.String()
}

// Run prepares the instructions and pulls the root until DONE, handing
// every batch to fill. fill must not keep the batch. The chain is closed
// when Run returns.
func (p *Pipeline) Run(proc *process.Process, fill func(*batch.Batch) error) error {
	var err error
	var state process.ExecState
	var bat *batch.Batch

	defer p.close()
	if err = vm.Prepare(p.instructions, proc); err != nil {
		return err
	}
	for {
		if state, bat, err = p.root.FetchBlock(int(proc.Lim.BatchRows)); err != nil {
			return err
		}
		if bat != nil {
			err = fill(bat)
			bat.Clean()
			if err != nil {
				return err
			}
		}
		switch state {
		case process.ExecDone:
			return nil
		case process.ExecWaiting:
			metric.QueryWaitingCounter.Inc()
			if err = wait(proc); err != nil {
				return err
			}
		}
	}
}

// wait blocks until a producer notifies the process, the poll interval
// passed or the query was cancelled.
func wait(proc *process.Process) error {
	t := time.NewTimer(WaitPollInterval)
	defer t.Stop()
	select {
	case <-proc.Ctx.Done():
		return moerr.NewQueryInterrupted(proc.Ctx)
	case <-proc.WakeUp():
	case <-t.C:
	}
	return nil
}

func (p *Pipeline) close() {
	if c, ok := p.root.(interface{ Close() }); ok {
		c.Close()
	}
}
