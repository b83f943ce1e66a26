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

package fetcher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/aqlflow/pkg/common/moerr"
	"github.com/matrixorigin/aqlflow/pkg/common/mpool"
	"github.com/matrixorigin/aqlflow/pkg/container/batch"
	"github.com/matrixorigin/aqlflow/pkg/container/matrix"
	"github.com/matrixorigin/aqlflow/pkg/container/types"
	"github.com/matrixorigin/aqlflow/pkg/vm/process"
)

type response struct {
	state process.ExecState
	vals  []int64
}

// mockProxy replays a fixed list of answers and counts how often it was
// asked.
type mockProxy struct {
	t       *testing.T
	m       *batch.Manager
	nrRegs  int
	answers []response
	calls   int
}

func newMockProxy(t *testing.T, mp *mpool.MPool) *mockProxy {
	return &mockProxy{t: t, m: batch.NewManager(mp, nil), nrRegs: 1}
}

func (p *mockProxy) andThen(state process.ExecState, vals ...int64) *mockProxy {
	p.answers = append(p.answers, response{state: state, vals: vals})
	return p
}

func (p *mockProxy) NrRegisters() int {
	return p.nrRegs
}

func (p *mockProxy) FetchBlock(int) (process.ExecState, *batch.Batch, error) {
	require.Less(p.t, p.calls, len(p.answers), "upstream asked after its last answer")
	a := p.answers[p.calls]
	p.calls++
	if len(a.vals) == 0 {
		return a.state, nil, nil
	}
	bat, err := p.m.RequestBatch(context.Background(), len(a.vals), 1)
	require.NoError(p.t, err)
	for i, v := range a.vals {
		bat.SetValue(i, 0, types.Int(v))
	}
	return a.state, bat, nil
}

func TestAllRowsFetcherNoBlocks(t *testing.T) {
	mp := mpool.MustNewZero()
	proxy := newMockProxy(t, mp).andThen(process.ExecDone)
	f := NewAllRowsFetcher(proxy)

	state, mat, err := f.FetchAllRows(10)
	require.NoError(t, err)
	require.Equal(t, process.ExecDone, state)
	require.NotNil(t, mat)
	require.True(t, mat.Empty())

	state, mat2, err := f.FetchAllRows(10)
	require.NoError(t, err)
	require.Equal(t, process.ExecDone, state)
	require.Same(t, mat, mat2)
	require.Equal(t, 1, proxy.calls)
	f.Close()
}

func TestAllRowsFetcherWaitingThenDone(t *testing.T) {
	mp := mpool.MustNewZero()
	proxy := newMockProxy(t, mp).andThen(process.ExecWaiting).andThen(process.ExecDone)
	f := NewAllRowsFetcher(proxy)

	state, mat, err := f.FetchAllRows(10)
	require.NoError(t, err)
	require.Equal(t, process.ExecWaiting, state)
	require.Nil(t, mat)

	state, mat, err = f.FetchAllRows(10)
	require.NoError(t, err)
	require.Equal(t, process.ExecDone, state)
	require.Equal(t, 0, mat.Size())

	_, mat2, _ := f.FetchAllRows(10)
	require.Same(t, mat, mat2)
	require.Equal(t, 2, proxy.calls)
	f.Close()
}

func TestAllRowsFetcherMultipleBlocks(t *testing.T) {
	tests := []struct {
		name  string
		setup func(p *mockProxy)
		calls int
	}{
		{
			name: "without waiting",
			setup: func(p *mockProxy) {
				p.andThen(process.ExecHasMore, 1, 2, 3).
					andThen(process.ExecHasMore, 4, 5).
					andThen(process.ExecDone, 6)
			},
			calls: 3,
		},
		{
			name: "waiting in between",
			setup: func(p *mockProxy) {
				p.andThen(process.ExecWaiting).
					andThen(process.ExecHasMore, 1, 2, 3).
					andThen(process.ExecWaiting).
					andThen(process.ExecHasMore, 4, 5).
					andThen(process.ExecWaiting).
					andThen(process.ExecDone, 6)
			},
			calls: 6,
		},
		{
			name: "done without a block",
			setup: func(p *mockProxy) {
				p.andThen(process.ExecWaiting).
					andThen(process.ExecHasMore, 1, 2, 3).
					andThen(process.ExecWaiting).
					andThen(process.ExecHasMore, 4, 5).
					andThen(process.ExecWaiting).
					andThen(process.ExecHasMore, 6).
					andThen(process.ExecDone)
			},
			calls: 7,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mp := mpool.MustNewZero()
			proxy := newMockProxy(t, mp)
			tt.setup(proxy)
			f := NewAllRowsFetcher(proxy)

			var (
				state = process.ExecWaiting
				mat   *matrix.Matrix
				err   error
			)
			for state == process.ExecWaiting {
				state, mat, err = f.FetchAllRows(10)
				require.NoError(t, err)
			}
			require.Equal(t, process.ExecDone, state)
			require.Equal(t, 6, mat.Size())
			var got []int64
			for _, idx := range mat.RowIndexes() {
				got = append(got, mat.GetRow(idx).GetValue(0).GetInt())
			}
			require.Equal(t, []int64{1, 2, 3, 4, 5, 6}, got)

			state, mat2, err := f.FetchAllRows(10)
			require.NoError(t, err)
			require.Equal(t, process.ExecDone, state)
			require.Same(t, mat, mat2)
			require.Equal(t, tt.calls, proxy.calls)

			f.Close()
			require.Equal(t, int64(0), mp.CurrNB())
		})
	}
}

func drainRows(t *testing.T, f *SingleRowFetcher) ([]int64, int) {
	var (
		got     []int64
		waiting int
	)
	for {
		state, r, err := f.FetchRow(10)
		require.NoError(t, err)
		switch state {
		case process.ExecWaiting:
			require.False(t, r.IsInitialized())
			waiting++
			continue
		case process.ExecDone:
			if r.IsInitialized() {
				got = append(got, r.GetValue(0).GetInt())
			}
			return got, waiting
		default:
			require.True(t, r.IsInitialized())
			got = append(got, r.GetValue(0).GetInt())
		}
	}
}

func TestSingleRowFetcherKeepsOrderAcrossWaiting(t *testing.T) {
	mp := mpool.MustNewZero()
	proxy := newMockProxy(t, mp).
		andThen(process.ExecWaiting).
		andThen(process.ExecHasMore, 1, 2, 3).
		andThen(process.ExecWaiting).
		andThen(process.ExecHasMore, 4, 5).
		andThen(process.ExecDone)
	f := NewSingleRowFetcher(proxy)

	got, waiting := drainRows(t, f)
	require.Equal(t, []int64{1, 2, 3, 4, 5}, got)
	require.Equal(t, 2, waiting)
	require.Equal(t, 5, proxy.calls)

	for i := 0; i < 3; i++ {
		state, r, err := f.FetchRow(10)
		require.NoError(t, err)
		require.Equal(t, process.ExecDone, state)
		require.False(t, r.IsInitialized())
	}
	require.Equal(t, 5, proxy.calls)
	f.Close()
	require.Equal(t, int64(0), mp.CurrNB())
}

func TestSingleRowFetcherLastRowWithDone(t *testing.T) {
	mp := mpool.MustNewZero()
	proxy := newMockProxy(t, mp).
		andThen(process.ExecHasMore, 1).
		andThen(process.ExecDone, 2, 3)
	f := NewSingleRowFetcher(proxy)

	state, r, err := f.FetchRow(10)
	require.NoError(t, err)
	require.Equal(t, process.ExecHasMore, state)
	require.Equal(t, int64(1), r.GetValue(0).GetInt())

	state, r, err = f.FetchRow(10)
	require.NoError(t, err)
	require.Equal(t, process.ExecHasMore, state)
	require.Equal(t, int64(2), r.GetValue(0).GetInt())

	state, r, err = f.FetchRow(10)
	require.NoError(t, err)
	require.Equal(t, process.ExecDone, state)
	require.Equal(t, int64(3), r.GetValue(0).GetInt())

	state, r, err = f.FetchRow(10)
	require.NoError(t, err)
	require.Equal(t, process.ExecDone, state)
	require.False(t, r.IsInitialized())
	require.Equal(t, 2, proxy.calls)

	f.Close()
	require.Equal(t, int64(0), mp.CurrNB())
}

type badProxy struct {
	mockProxy
	withWaiting bool
}

func (p *badProxy) FetchBlock(atMost int) (process.ExecState, *batch.Batch, error) {
	state, bat, err := p.mockProxy.FetchBlock(atMost)
	if p.withWaiting {
		state = process.ExecWaiting
	}
	return state, bat, err
}

func TestFetcherProtocolViolations(t *testing.T) {
	mp := mpool.MustNewZero()

	p := &badProxy{mockProxy: *newMockProxy(t, mp), withWaiting: true}
	p.andThen(process.ExecHasMore, 1)
	_, _, err := NewSingleRowFetcher(p).FetchRow(10)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrProtocolViolation))

	p = &badProxy{mockProxy: *newMockProxy(t, mp)}
	p.nrRegs = 2
	p.andThen(process.ExecDone, 1)
	_, _, err = NewAllRowsFetcher(p).FetchAllRows(10)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrProtocolViolation))

	require.Equal(t, int64(0), mp.CurrNB())
}
