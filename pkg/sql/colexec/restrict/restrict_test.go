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


package restrict

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/aqlflow/pkg/common/mpool"
	"github.com/matrixorigin/aqlflow/pkg/container/types"
	"github.com/matrixorigin/aqlflow/pkg/sql/colexec/value_scan"
	"github.com/matrixorigin/aqlflow/pkg/testutil"
	"github.com/matrixorigin/aqlflow/pkg/vm/fetcher"
	"github.com/matrixorigin/aqlflow/pkg/vm/process"
)

// add unit tests for cases
type restrictTestCase struct {
	arg      *Argument
	proc     *process.Process
	input    [][]testutil.Row
	expect   []int64
	filtered int64
}

func cond(id int64, c types.Value) testutil.Row {
	return testutil.Values(types.Int(id), c)
}

func newTestCases() []restrictTestCase {
	return []restrictTestCase{
		{
			proc: testutil.NewProcessWithMPool("", mpool.MustNewZero()),
			arg:  &Argument{CondReg: 1},
			input: [][]testutil.Row{
				{cond(1, types.Bool(true)), cond(2, types.Bool(false)), cond(3, types.Int(5))},
				nil,
				{cond(4, types.Null()), cond(5, types.String("x")), cond(6, types.Int(0))},
			},
			expect:   []int64{1, 3, 5},
			filtered: 3,
		},
		{
			proc: testutil.NewProcessWithMPool("", mpool.MustNewZero()),
			arg:  &Argument{CondReg: 1},
			input: [][]testutil.Row{
				{cond(1, types.Bool(false)), cond(2, types.Bool(false))},
			},
			filtered: 2,
		},
		{
			proc: testutil.NewProcessWithMPool("", mpool.MustNewZero()),
			arg:  &Argument{CondReg: 1},
			input: [][]testutil.Row{
				{cond(1, types.Bool(false)), testutil.ShadowRow(1), cond(2, types.Bool(true))},
			},
			expect:   []int64{2},
			filtered: 1,
		},
	}
}

func newInput(proc *process.Process, input [][]testutil.Row) *value_scan.Argument {
	src := value_scan.New(2)
	for _, rows := range input {
		if rows == nil {
			src.Wait()
			continue
		}
		src.Block(testutil.BuildBatch(proc, 2, rows...))
	}
	return src
}

func TestString(t *testing.T) {
	buf := new(bytes.Buffer)
	for _, tc := range newTestCases() {
		String(tc.arg, buf)
	}
	require.Contains(t, buf.String(), "filter(1)")
}

func TestPrepare(t *testing.T) {
	for _, tc := range newTestCases() {
		require.NoError(t, Prepare(tc.proc, tc.arg))
	}
}

func TestRestrict(t *testing.T) {
	for _, tc := range newTestCases() {
		require.NoError(t, Prepare(tc.proc, tc.arg))
		src := newInput(tc.proc, tc.input)
		rows := fetcher.NewSingleRowFetcher(src)
		out := testutil.NewOutputRow(tc.proc, 8, 2, nil, nil)

		var stats Stats
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
		bat := out.StealBatch()
		require.Equal(t, tc.expect, testutil.Ints(bat, 0))
		require.Equal(t, tc.filtered, stats.Filtered)

		var qs process.ExecutionStats
		stats.AddTo(&qs)
		require.Equal(t, tc.filtered, qs.Filtered)

		bat.Clean()
		rows.Close()
		src.Close()
		tc.proc.Free()
		require.Equal(t, int64(0), tc.proc.Mp().CurrNB())
	}
}
