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

// Package mpool accounts row-buffer memory for a query. Batches report
// every allocation and release here; a pool with a non-zero cap rejects
// the allocation that would exceed it.
package mpool

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/matrixorigin/aqlflow/pkg/common/moerr"
	"github.com/matrixorigin/aqlflow/pkg/logutil"
	"github.com/matrixorigin/aqlflow/pkg/util/metric"
)

const (
	NoLimit int64 = 0

	// GB is a handy constant for configuring caps.
	GB int64 = 1 << 30
	MB int64 = 1 << 20
	KB int64 = 1 << 10
)

// MPool is a memory accountant. It is safe for concurrent use: one query
// drives it from its own pull chain, while a remote reply may be decoded
// on a transport goroutine.
type MPool struct {
	id  int64
	tag string
	cap int64

	currNB    atomic.Int64
	highWater atomic.Int64
	numAlloc  atomic.Int64
	numFree   atomic.Int64
}

var nextPool atomic.Int64

// NewMPool creates a pool charging at most capacity bytes, NoLimit means
// unbounded.
func NewMPool(tag string, capacity int64) (*MPool, error) {
	if capacity < 0 {
		return nil, moerr.NewInvalidInput(moerr.Context(), "mpool %s capacity %d", tag, capacity)
	}
	return &MPool{
		id:  nextPool.Add(1),
		tag: tag,
		cap: capacity,
	}, nil
}

// MustNewZero returns an unbounded pool, used by tests.
func MustNewZero() *MPool {
	return MustNew("zero", NoLimit)
}

func MustNew(tag string, capacity int64) *MPool {
	mp, err := NewMPool(tag, capacity)
	if err != nil {
		panic(err)
	}
	return mp
}

func (mp *MPool) String() string {
	return fmt.Sprintf("mpool(%s) cap %d, curr %d, highwater %d, alloc %d, free %d",
		mp.tag, mp.cap, mp.CurrNB(), mp.HighWater(), mp.numAlloc.Load(), mp.numFree.Load())
}

func (mp *MPool) Cap() int64 {
	if mp.cap == NoLimit {
		return int64(^uint64(0) >> 1)
	}
	return mp.cap
}

func (mp *MPool) CurrNB() int64 {
	return mp.currNB.Load()
}

func (mp *MPool) HighWater() int64 {
	return mp.highWater.Load()
}

// Grow charges n bytes. It fails synchronously with ErrOOM and charges
// nothing if the cap would be exceeded.
func (mp *MPool) Grow(ctx context.Context, n int64) error {
	if n <= 0 {
		return nil
	}
	for {
		curr := mp.currNB.Load()
		next := curr + n
		if mp.cap != NoLimit && next > mp.cap {
			metric.MemOOMCounter.Inc()
			logutil.Warn("mpool allocation rejected",
				zap.String("pool", mp.tag),
				zap.Int64("request", n),
				zap.Int64("current", curr),
				zap.Int64("cap", mp.cap))
			return moerr.NewOOM(ctx, "pool %s cannot grow by %d bytes, %d of %d in use", mp.tag, n, curr, mp.cap)
		}
		if mp.currNB.CompareAndSwap(curr, next) {
			mp.numAlloc.Add(1)
			metric.MemQueryAllocatedGauge.Add(float64(n))
			for {
				hw := mp.highWater.Load()
				if next <= hw || mp.highWater.CompareAndSwap(hw, next) {
					break
				}
			}
			return nil
		}
	}
}

// Shrink releases n bytes previously charged with Grow.
func (mp *MPool) Shrink(n int64) {
	if n <= 0 {
		return
	}
	if mp.currNB.Add(-n) < 0 {
		panic(moerr.NewInternalError(moerr.Context(), "mpool %s released more than it charged", mp.tag))
	}
	mp.numFree.Add(1)
	metric.MemQueryAllocatedGauge.Sub(float64(n))
}
