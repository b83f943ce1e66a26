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


package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/aqlflow/pkg/common/mpool"
	"github.com/matrixorigin/aqlflow/pkg/container/batch"
	"github.com/matrixorigin/aqlflow/pkg/container/types"
	"github.com/matrixorigin/aqlflow/pkg/sql/colexec/value_scan"
	"github.com/matrixorigin/aqlflow/pkg/testutil"
	"github.com/matrixorigin/aqlflow/pkg/vm/fetcher"
	"github.com/matrixorigin/aqlflow/pkg/vm/process"
)

// add unit tests for cases
type outputTestCase struct {
	arg     *Argument
	proc    *process.Process
	outRegs []int
	nrRegs  int
	expect  []types.Value
	counted int64
}

func newInput(proc *process.Process) *value_scan.Argument {
	return value_scan.New(2).
		Wait().
		Block(testutil.BuildBatch(proc, 2,
			testutil.Values(types.Int(1), types.String("a")),
			testutil.Values(types.Int(2), types.String("b")))).
		Wait().
		Block(testutil.BuildBatch(proc, 2,
			testutil.ShadowRow(1),
			testutil.Values(types.Int(3), types.String("c"))))
}

func newTestCases() []outputTestCase {
	return []outputTestCase{
		{
			proc:    testutil.NewProcessWithMPool("", mpool.MustNewZero()),
			arg:     &Argument{Inherit: true},
			nrRegs:  2,
			expect:  []types.Value{types.Int(1), types.Int(2), types.None(), types.Int(3)},
			counted: 0,
		},
		{
			proc:    testutil.NewProcessWithMPool("", mpool.MustNewZero()),
			arg:     &Argument{Inherit: true, DoCount: true},
			nrRegs:  2,
			expect:  []types.Value{types.Int(1), types.Int(2), types.None(), types.Int(3)},
			counted: 3,
		},
		{
			proc:    testutil.NewProcessWithMPool("", mpool.MustNewZero()),
			arg:     &Argument{InputReg: 1, OutputReg: 0},
			outRegs: []int{0},
			nrRegs:  1,
			expect:  []types.Value{types.String("a"), types.String("b"), types.None(), types.String("c")},
			counted: 0,
		},
		{
			proc:    testutil.NewProcessWithMPool("", mpool.MustNewZero()),
			arg:     &Argument{InputReg: 1, OutputReg: 0, DoCount: true},
			outRegs: []int{0},
			nrRegs:  1,
			expect:  []types.Value{types.String("a"), types.String("b"), types.None(), types.String("c")},
			counted: 3,
		},
	}
}

func TestString(t *testing.T) {
	buf := new(bytes.Buffer)
	for _, tc := range newTestCases() {
		String(tc.arg, buf)
	}
	require.Contains(t, buf.String(), "return(*)")
	require.Contains(t, buf.String(), "return(1 -> 0)")
}

func TestPrepare(t *testing.T) {
	for _, tc := range newTestCases() {
		tc.arg.ctr.done = true
		require.NoError(t, Prepare(tc.proc, tc.arg))
		require.False(t, tc.arg.ctr.done)
	}
}

func TestOutput(t *testing.T) {
	for _, tc := range newTestCases() {
		require.NoError(t, Prepare(tc.proc, tc.arg))
		src := newInput(tc.proc)
		bat, stats := drive(t, tc, src)

		require.Equal(t, tc.expect, testutil.Column(bat, 0))
		require.True(t, bat.IsShadowRow(2))
		require.Equal(t, uint32(1), bat.ShadowRowDepth(2))
		require.Equal(t, tc.counted, stats.Counted)

		var qs process.ExecutionStats
		stats.AddTo(&qs)
		require.Equal(t, tc.counted, qs.Counted)

		bat.Clean()
		src.Close()
		tc.proc.Free()
		require.Equal(t, int64(0), tc.proc.Mp().CurrNB())
	}
}

func TestProjectStealsSource(t *testing.T) {
	proc := testutil.NewProcess()
	in := testutil.BuildBatch(proc, 2, testutil.Values(types.Int(7), types.String("x")))
	in.AddCnt(1)
	tc := outputTestCase{
		proc:    proc,
		arg:     &Argument{InputReg: 1, OutputReg: 0},
		outRegs: []int{0},
		nrRegs:  1,
	}
	bat, _ := drive(t, tc, value_scan.New(2, in))
	require.Equal(t, []types.Value{types.String("x")}, testutil.Column(bat, 0))

	moved := in.GetValue(0, 1)
	require.True(t, moved.IsMoved())
	require.NotEqual(t, types.String("x"), moved)
	require.Equal(t, types.Int(7), in.GetValue(0, 0))

	bat.Clean()
	in.Clean()
	require.Equal(t, int64(0), proc.Mp().CurrNB())
}

func drive(t *testing.T, tc outputTestCase, src *value_scan.Argument) (*batch.Batch, Stats) {
	var stats Stats

	rows := fetcher.NewSingleRowFetcher(src)
	defer rows.Close()
	out := testutil.NewOutputRow(tc.proc, 16, tc.nrRegs, tc.outRegs, nil)
	for {
		state, st, err := Call(tc.proc, tc.arg, rows, out)
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
	// DONE is final.
	state, st, err := Call(tc.proc, tc.arg, rows, out)
	require.NoError(t, err)
	require.Equal(t, process.ExecDone, state)
	require.Equal(t, Stats{}, st)
	return out.StealBatch(), stats
}
