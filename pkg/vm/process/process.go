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

package process

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/matrixorigin/aqlflow/pkg/common/moerr"
	"github.com/matrixorigin/aqlflow/pkg/common/mpool"
	"github.com/matrixorigin/aqlflow/pkg/container/batch"
	"github.com/matrixorigin/aqlflow/pkg/logutil"
)

const DefaultBatchRows = 1000

// New creates a process whose batches are charged to mp.
func New(ctx context.Context, mp *mpool.MPool, pool *batch.Pool) *Process {
	ctx, cancel := context.WithCancel(ctx)
	return &Process{
		Id:      uuid.New().String(),
		Lim:     Limitation{BatchRows: DefaultBatchRows, Size: mp.Cap()},
		Ctx:     ctx,
		Cancel:  cancel,
		mp:      mp,
		manager: batch.NewManager(mp, pool),
		wakeup:  make(chan struct{}, 1),
	}
}

// NewFromProc returns the process of a query part that runs on another
// goroutine, like the shard side of a remote dependency. It charges the
// memory pool of p and is cancelled with p, but keeps its own counters,
// warnings and wake-up channel.
func NewFromProc(p *Process) *Process {
	ctx, cancel := context.WithCancel(p.Ctx)
	return &Process{
		Id:      p.Id,
		Lim:     p.Lim,
		Ctx:     ctx,
		Cancel:  cancel,
		mp:      p.mp,
		manager: p.manager,
		wakeup:  make(chan struct{}, 1),
	}
}

func (proc *Process) QueryId() string {
	return proc.Id
}

func (proc *Process) Mp() *mpool.MPool {
	return proc.mp
}

func (proc *Process) Manager() *batch.Manager {
	return proc.manager
}

func (proc *Process) GetLim() Limitation {
	return proc.Lim
}

// RequestBatch allocates an output batch of rows x regs charged to the
// query.
func (proc *Process) RequestBatch(rows, regs int) (*batch.Batch, error) {
	return proc.manager.RequestBatch(proc.Ctx, rows, regs)
}

// Interrupted returns ErrQueryInterrupted once the query was cancelled.
func (proc *Process) Interrupted() error {
	select {
	case <-proc.Ctx.Done():
		return moerr.NewQueryInterrupted(proc.Ctx)
	default:
		return nil
	}
}

// AddWarning records a tolerated failure. The query keeps running.
func (proc *Process) AddWarning(err error) {
	logutil.Debug("query warning", logutil.QueryField(proc.Id), zap.Error(err))
	proc.warnings = append(proc.warnings, err)
}

func (proc *Process) Warnings() []error {
	return proc.warnings
}

// Notify wakes the goroutine driving the query. It never blocks and may be
// called from any goroutine.
func (proc *Process) Notify() {
	select {
	case proc.wakeup <- struct{}{}:
	default:
	}
}

// WakeUp is signalled by Notify.
func (proc *Process) WakeUp() <-chan struct{} {
	return proc.wakeup
}

// OnFree registers f to run when the process is freed. Hooks run in
// reverse order of registration.
func (proc *Process) OnFree(f func()) {
	proc.onFree = append(proc.onFree, f)
}

// Free runs the registered hooks and cancels the query context. Calling
// it again does nothing.
func (proc *Process) Free() {
	if proc.freed {
		return
	}
	proc.freed = true
	for i := len(proc.onFree) - 1; i >= 0; i-- {
		proc.onFree[i]()
	}
	proc.onFree = nil
	proc.Cancel()
}
