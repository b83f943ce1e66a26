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

package row

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/aqlflow/pkg/common/mpool"
	"github.com/matrixorigin/aqlflow/pkg/container/batch"
	"github.com/matrixorigin/aqlflow/pkg/container/types"
)

func newBatch(t *testing.T, m *batch.Manager, rows, regs int) *batch.Batch {
	bat, err := m.RequestBatch(context.Background(), rows, regs)
	require.NoError(t, err)
	return bat
}

func TestInvalidInputRow(t *testing.T) {
	r := InvalidInputRow()
	require.False(t, r.IsInitialized())
	require.Equal(t, -1, r.Index())
}

func TestInputRowStealInvalidatesSource(t *testing.T) {
	m := batch.NewManager(mpool.MustNewZero(), nil)
	in := newBatch(t, m, 1, 2)
	defer in.Clean()
	in.SetValue(0, 0, types.String("keep"))
	in.SetValue(0, 1, types.String("take"))

	r := NewInputRow(in, 0)
	require.True(t, r.IsInitialized())
	require.Equal(t, types.String("take"), r.GetValue(1))
	require.Equal(t, types.String("take"), r.StealValue(1))
	require.True(t, r.GetValue(1).IsMoved())
	require.Equal(t, types.String("keep"), r.GetValue(0))
}

func TestOutputRowMoveValueInto(t *testing.T) {
	m := batch.NewManager(mpool.MustNewZero(), nil)
	in := newBatch(t, m, 1, 2)
	defer in.Clean()
	in.SetValue(0, 0, types.Int(1))
	in.SetValue(0, 1, types.Int(2))

	out := NewOutputRow(newBatch(t, m, 2, 3), []int{2}, []int{0, 1})
	src := NewInputRow(in, 0)
	require.False(t, out.Produced())
	out.MoveValueInto(2, src, types.Int(3))
	require.True(t, out.Produced())
	require.Panics(t, func() { out.MoveValueInto(2, src, types.Int(4)) })
	require.Panics(t, func() { out.MoveValueInto(0, src, types.Int(4)) })
	out.AdvanceRow()
	require.False(t, out.IsFull())
	require.Panics(t, out.AdvanceRow)

	bat := out.StealBatch()
	defer bat.Clean()
	require.Equal(t, 1, bat.RowCount())
	require.Equal(t, types.Int(1), bat.GetValue(0, 0))
	require.Equal(t, types.Int(2), bat.GetValue(0, 1))
	require.Equal(t, types.Int(3), bat.GetValue(0, 2))
}

func TestOutputRowCopyRow(t *testing.T) {
	m := batch.NewManager(mpool.MustNewZero(), nil)
	in := newBatch(t, m, 2, 1)
	defer in.Clean()
	in.SetValue(0, 0, types.Int(10))
	in.MakeShadowRow(1, 1)

	out := NewOutputRow(newBatch(t, m, 2, 1), nil, []int{0})
	out.CopyRow(NewInputRow(in, 0))
	require.True(t, out.Produced())
	require.Panics(t, func() { out.CopyRow(NewInputRow(in, 0)) })
	out.AdvanceRow()
	out.CopyShadowRow(NewInputRow(in, 1))
	out.AdvanceRow()
	require.True(t, out.IsFull())
	require.Equal(t, 2, out.NumRowsWritten())

	bat := out.StealBatch()
	defer bat.Clean()
	require.Equal(t, types.Int(10), bat.GetValue(0, 0))
	require.True(t, bat.IsShadowRow(1))
	require.Equal(t, uint32(1), bat.ShadowRowDepth(1))
}

func TestOutputRowNothingProduced(t *testing.T) {
	mp := mpool.MustNewZero()
	m := batch.NewManager(mp, nil)
	out := NewOutputRow(newBatch(t, m, 4, 1), []int{0}, nil)
	require.Nil(t, out.StealBatch())
	require.Equal(t, int64(0), mp.CurrNB())

	out = NewOutputRow(newBatch(t, m, 4, 1), []int{0}, nil)
	out.Release()
	out.Release()
	require.Equal(t, int64(0), mp.CurrNB())
}

func TestOutputRowPartial(t *testing.T) {
	m := batch.NewManager(mpool.MustNewZero(), nil)
	in := newBatch(t, m, 1, 3)
	defer in.Clean()
	out := NewOutputRow(newBatch(t, m, 2, 3), []int{1, 2}, []int{0})
	defer out.Release()

	src := NewInputRow(in, 0)
	require.False(t, out.Partial())
	require.Equal(t, 2, out.NumRowsLeft())

	out.MoveValueInto(1, src, types.Int(1))
	require.True(t, out.Partial())
	out.MoveValueInto(2, src, types.Int(2))
	require.False(t, out.Partial())
	require.True(t, out.Produced())

	out.AdvanceRow()
	require.Equal(t, 1, out.NumRowsLeft())
	require.False(t, out.Partial())
}
