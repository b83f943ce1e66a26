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


package limit

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/aqlflow/pkg/common/mpool"
	"github.com/matrixorigin/aqlflow/pkg/container/batch"
	"github.com/matrixorigin/aqlflow/pkg/sql/colexec/value_scan"
	"github.com/matrixorigin/aqlflow/pkg/testutil"
	"github.com/matrixorigin/aqlflow/pkg/vm/fetcher"
	"github.com/matrixorigin/aqlflow/pkg/vm/process"
)

// add unit tests for cases
type limitTestCase struct {
	arg       *Argument
	proc      *process.Process
	expect    []int64
	shadows   int
	fullCount int64
	calls     int
}

func newInput(proc *process.Process) *value_scan.Argument {
	return value_scan.New(1).
		Block(testutil.NewIntBatch(proc, 1, 2, 3)).
		Wait().
		Block(testutil.NewIntBatch(proc, 4, 5)).
		Wait().
		Block(testutil.NewIntBatch(proc, 6))
}

func newTestCases() []limitTestCase {
	return []limitTestCase{
		{
			proc:  testutil.NewProcessWithMPool("", mpool.MustNewZero()),
			arg:   &Argument{Limit: 0},
			calls: 0,
		},
		{
			proc:   testutil.NewProcessWithMPool("", mpool.MustNewZero()),
			arg:    &Argument{Offset: 1, Limit: 2},
			expect: []int64{2, 3},
			calls:  1,
		},
		{
			proc:   testutil.NewProcessWithMPool("", mpool.MustNewZero()),
			arg:    &Argument{Offset: 4, Limit: 10},
			expect: []int64{5, 6},
			calls:  5,
		},
		{
			proc:      testutil.NewProcessWithMPool("", mpool.MustNewZero()),
			arg:       &Argument{Limit: 2, FullCount: true},
			expect:    []int64{1, 2},
			fullCount: 6,
			calls:     5,
		},
		{
			proc:      testutil.NewProcessWithMPool("", mpool.MustNewZero()),
			arg:       &Argument{Limit: 0, FullCount: true},
			fullCount: 6,
			calls:     5,
		},
	}
}

func TestString(t *testing.T) {
	buf := new(bytes.Buffer)
	for _, tc := range newTestCases() {
		String(tc.arg, buf)
	}
	require.Contains(t, buf.String(), "limit(1, 2)")
	require.Contains(t, buf.String(), "fullCount")
}

func TestPrepare(t *testing.T) {
	for _, tc := range newTestCases() {
		tc.arg.ctr.seen = 3
		require.NoError(t, Prepare(tc.proc, tc.arg))
		require.Equal(t, uint64(0), tc.arg.ctr.seen)
	}
}

func TestLimit(t *testing.T) {
	for _, tc := range newTestCases() {
		require.NoError(t, Prepare(tc.proc, tc.arg))
		src := newInput(tc.proc)
		bat, stats := drive(t, tc.proc, tc.arg, src)

		require.Equal(t, tc.expect, testutil.Ints(bat, 0))
		require.Equal(t, tc.fullCount, stats.FullCount)
		require.Equal(t, tc.calls, src.Calls())

		bat.Clean()
		src.Close()
		tc.proc.Free()
		require.Equal(t, int64(0), tc.proc.Mp().CurrNB())
	}
}

func TestFullCountIndependentOfWindow(t *testing.T) {
	for k := uint64(0); k < 6; k++ {
		proc := testutil.NewProcess()
		src := newInput(proc)
		arg := &Argument{Limit: k, FullCount: true}
		require.NoError(t, Prepare(proc, arg))

		bat, stats := drive(t, proc, arg, src)
		require.Equal(t, int(k), len(testutil.Ints(bat, 0)))
		require.Equal(t, int64(6), stats.FullCount)

		var qs process.ExecutionStats
		stats.AddTo(&qs)
		require.Equal(t, int64(6), qs.FullCount)

		bat.Clean()
		src.Close()
		require.Equal(t, int64(0), proc.Mp().CurrNB())
	}
}

func TestLimitRestartsAfterShadowRow(t *testing.T) {
	proc := testutil.NewProcess()
	rows := append(testutil.IntRows(1, 2, 3), testutil.ShadowRow(1))
	rows = append(rows, testutil.IntRows(4, 5)...)
	rows = append(rows, testutil.ShadowRow(2), testutil.ShadowRow(1))
	src := value_scan.New(1, testutil.BuildBatch(proc, 1, rows...))

	arg := &Argument{Limit: 1, Subquery: true}
	require.NoError(t, Prepare(proc, arg))
	bat, _ := drive(t, proc, arg, src)

	require.Equal(t, []int64{1, 4}, testutil.Ints(bat, 0))
	require.Equal(t, []uint32{1, 3, 4}, bat.ShadowRows())
	require.Equal(t, uint32(2), bat.ShadowRowDepth(3))

	bat.Clean()
	src.Close()
	require.Equal(t, int64(0), proc.Mp().CurrNB())
}

func drive(t *testing.T, proc *process.Process, arg *Argument, src *value_scan.Argument) (*batch.Batch, Stats) {
	var stats Stats

	rows := fetcher.NewSingleRowFetcher(src)
	defer rows.Close()
	out := testutil.NewOutputRow(proc, 16, 1, nil, nil)
	for {
		state, st, err := Call(proc, arg, rows, out)
		require.NoError(t, err)
		stats.Add(st)
		if state == process.ExecWaiting {
			require.False(t, out.Partial())
			continue
		}
		if out.Produced() {
			out.AdvanceRow()
		}
		if state == process.ExecDone {
			break
		}
	}
	before := src.Calls()
	state, st, err := Call(proc, arg, rows, out)
	require.NoError(t, err)
	require.Equal(t, process.ExecDone, state)
	require.Equal(t, Stats{}, st)
	require.Equal(t, before, src.Calls())
	return out.StealBatch(), stats
}
