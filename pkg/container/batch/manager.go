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

package batch

import (
	"context"
	"math/bits"

	queue "github.com/yireyun/go-queue"

	"github.com/matrixorigin/aqlflow/pkg/common/moerr"
	"github.com/matrixorigin/aqlflow/pkg/common/mpool"
	"github.com/matrixorigin/aqlflow/pkg/container/types"
	"github.com/matrixorigin/aqlflow/pkg/util/metric"
)

const (
	minBucketShift = 4
	maxBucketShift = 20
	// DefaultPoolDepth is the number of free buffers kept per size class.
	DefaultPoolDepth = 64
)

// Pool keeps released cell buffers in lock-free free lists, one per power
// of two size class. Buffers above the largest class are left to the GC.
type Pool struct {
	buckets [maxBucketShift - minBucketShift + 1]*queue.EsQueue
}

// DefaultPool is shared by every query of the process.
var DefaultPool = NewPool(DefaultPoolDepth)

func NewPool(depth uint32) *Pool {
	p := &Pool{}
	for i := range p.buckets {
		p.buckets[i] = queue.NewQueue(depth)
	}
	return p
}

func bucketShift(cells int) int {
	shift := bits.Len(uint(cells - 1))
	if shift < minBucketShift {
		shift = minBucketShift
	}
	return shift
}

func (p *Pool) get(cells int) []types.Value {
	if cells == 0 {
		return nil
	}
	shift := bucketShift(cells)
	if shift > maxBucketShift {
		metric.BatchNewCounter.Inc()
		return make([]types.Value, cells)
	}
	if v, ok, _ := p.buckets[shift-minBucketShift].Get(); ok {
		metric.BatchReusedCounter.Inc()
		return v.([]types.Value)[:cells]
	}
	metric.BatchNewCounter.Inc()
	return make([]types.Value, cells, 1<<shift)
}

func (p *Pool) put(vals []types.Value) {
	c := cap(vals)
	if c == 0 || c&(c-1) != 0 {
		return
	}
	shift := bits.TrailingZeros(uint(c))
	if shift < minBucketShift || shift > maxBucketShift {
		return
	}
	vals = vals[:c]
	for i := range vals {
		vals[i] = types.Value{}
	}
	p.buckets[shift-minBucketShift].Put(vals[:0])
}

// Manager hands out batches for one query. Every batch is charged to the
// query's memory pool until its last reference is released.
type Manager struct {
	mp   *mpool.MPool
	pool *Pool
}

func NewManager(mp *mpool.MPool, pool *Pool) *Manager {
	if pool == nil {
		pool = DefaultPool
	}
	return &Manager{mp: mp, pool: pool}
}

func (m *Manager) Mp() *mpool.MPool {
	return m.mp
}

// RequestBatch returns a batch of rows x regs empty cells with a reference
// count of one. It fails with ErrOOM when the memory pool refuses the
// allocation.
func (m *Manager) RequestBatch(ctx context.Context, rows, regs int) (*Batch, error) {
	if rows <= 0 || regs < 0 {
		return nil, moerr.NewInvalidInput(ctx, "cannot allocate batch of %d rows x %d registers", rows, regs)
	}
	size := int64(rows) * int64(regs) * types.ValueSize
	if err := m.mp.Grow(ctx, size); err != nil {
		return nil, err
	}
	return &Batch{
		Cnt:      1,
		rowCount: rows,
		capacity: rows,
		nrRegs:   regs,
		vals:     m.pool.get(rows * regs),
		mgr:      m,
		charged:  size,
	}, nil
}

func (m *Manager) release(bat *Batch) {
	m.mp.Shrink(bat.charged)
	bat.charged = 0
	m.pool.put(bat.vals)
	metric.BatchReturnedCounter.Inc()
}
