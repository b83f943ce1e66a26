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

package mpool

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/aqlflow/pkg/common/moerr"
)

func BenchmarkMP(b *testing.B) {
	pool := MustNew("default", NoLimit)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var wg sync.WaitGroup
		run := func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				if err := pool.Grow(ctx, 8); err != nil {
					panic(err)
				}
				pool.Shrink(8)
			}
		}
		for i := 0; i < 100; i++ {
			wg.Add(1)
			go run()
		}
		wg.Wait()
	}
}

func TestMPool(t *testing.T) {
	ctx := context.Background()
	m := MustNewZero()
	for i := 0; i < 100; i++ {
		require.NoError(t, m.Grow(ctx, 10))
	}
	require.Equal(t, int64(1000), m.CurrNB())
	require.Equal(t, int64(1000), m.HighWater())
	for i := 0; i < 100; i++ {
		m.Shrink(10)
	}
	require.Equal(t, int64(0), m.CurrNB())
	require.Equal(t, int64(1000), m.HighWater())
}

func TestMPoolLimit(t *testing.T) {
	ctx := context.Background()
	m := MustNew("limited", 100)
	require.NoError(t, m.Grow(ctx, 60))
	err := m.Grow(ctx, 41)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrOOM))
	// a failed grow charges nothing
	require.Equal(t, int64(60), m.CurrNB())
	require.NoError(t, m.Grow(ctx, 40))
	require.Equal(t, int64(100), m.Cap())
	m.Shrink(100)
	require.Equal(t, int64(0), m.CurrNB())
}

func TestMPoolConcurrent(t *testing.T) {
	ctx := context.Background()
	m := MustNewZero()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				require.NoError(t, m.Grow(ctx, 3))
				m.Shrink(3)
			}
		}()
	}
	wg.Wait()
	require.Equal(t, int64(0), m.CurrNB())
	require.LessOrEqual(t, m.HighWater(), int64(16*3))
}

func TestMPoolMisuse(t *testing.T) {
	_, err := NewMPool("bad", -1)
	require.Error(t, err)
	require.Panics(t, func() {
		m := MustNewZero()
		m.Shrink(1)
	})
	require.Contains(t, MustNew("tag", KB).String(), "mpool(tag)")
}
