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

	"github.com/matrixorigin/aqlflow/pkg/common/mpool"
	"github.com/matrixorigin/aqlflow/pkg/container/batch"
)

// ExecState is the answer of every pull in the execution chain.
type ExecState int8

const (
	// ExecWaiting means the upstream has nothing yet. The pull must be
	// repeated later and carries no data.
	ExecWaiting ExecState = iota
	// ExecHasMore means data was produced and more may follow.
	ExecHasMore
	// ExecDone means no data will ever follow. It is final.
	ExecDone
)

func (s ExecState) String() string {
	switch s {
	case ExecWaiting:
		return "WAITING"
	case ExecHasMore:
		return "HASMORE"
	case ExecDone:
		return "DONE"
	}
	return "UNKNOWN"
}

type Limitation struct {
	// BatchRows is the number of rows a block asks its upstream for.
	BatchRows int64
	// Size is the memory threshold of the query, 0 means unlimited.
	Size int64
}

// ExecutionStats are the counters a query reports. Blocks add their
// executors' counters here as they run.
type ExecutionStats struct {
	WritesExecuted int64
	WritesIgnored  int64
	ScannedFull    int64
	Filtered       int64
	FullCount      int64
	Counted        int64
}

// Add merges o into s. Merging is commutative and associative and the zero
// value is its identity.
func (s *ExecutionStats) Add(o ExecutionStats) {
	s.WritesExecuted += o.WritesExecuted
	s.WritesIgnored += o.WritesIgnored
	s.ScannedFull += o.ScannedFull
	s.Filtered += o.Filtered
	s.FullCount += o.FullCount
	s.Counted += o.Counted
}

// Process holds the runtime state of one query. A single goroutine drives
// the pull chain through it; only Notify may be called from elsewhere.
type Process struct {
	Id  string // query id
	Lim Limitation
	Ctx context.Context

	Cancel context.CancelFunc

	Stats ExecutionStats

	mp       *mpool.MPool
	manager  *batch.Manager
	warnings []error
	wakeup   chan struct{}
	onFree   []func()
	freed    bool
}
