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
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/aqlflow/pkg/common/moerr"
	"github.com/matrixorigin/aqlflow/pkg/common/mpool"
	"github.com/matrixorigin/aqlflow/pkg/container/types"
)

func newTestManager() *Manager {
	return NewManager(mpool.MustNewZero(), NewPool(4))
}

func TestRequestAndClean(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()

	bat, err := m.RequestBatch(ctx, 3, 2)
	require.NoError(t, err)
	require.Equal(t, 3, bat.RowCount())
	require.Equal(t, 2, bat.NrRegisters())
	require.Equal(t, int64(1), bat.GetCnt())
	require.Equal(t, 6*types.ValueSize, m.Mp().CurrNB())
	require.True(t, bat.GetValue(2, 1).IsNone())

	bat.AddCnt(1)
	bat.Clean()
	require.Equal(t, 6*types.ValueSize, m.Mp().CurrNB())
	bat.Clean()
	require.Equal(t, int64(0), m.Mp().CurrNB())
	require.Equal(t, int64(0), bat.GetCnt())
	// a second release is a no-op
	bat.Clean()
	require.Equal(t, int64(0), m.Mp().CurrNB())

	_, err = m.RequestBatch(ctx, 0, 1)
	require.Error(t, err)
}

func TestRequestBatchOOM(t *testing.T) {
	ctx := context.Background()
	m := NewManager(mpool.MustNew("small", 10*types.ValueSize), nil)

	bat, err := m.RequestBatch(ctx, 2, 4)
	require.NoError(t, err)
	_, err = m.RequestBatch(ctx, 2, 2)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrOOM))
	bat.Clean()
	bat, err = m.RequestBatch(ctx, 5, 2)
	require.NoError(t, err)
	bat.Clean()
	require.Equal(t, int64(0), m.Mp().CurrNB())
}

func TestPoolReusesBuffers(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()

	bat, err := m.RequestBatch(ctx, 10, 2)
	require.NoError(t, err)
	bat.SetValue(0, 0, types.String("dirty"))
	first := &bat.vals[0]
	bat.Clean()

	bat, err = m.RequestBatch(ctx, 9, 3)
	require.NoError(t, err)
	require.Same(t, first, &bat.vals[0])
	require.True(t, bat.GetValue(0, 0).IsNone())
	bat.Clean()
}

func TestStealValue(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()
	bat, err := m.RequestBatch(ctx, 1, 1)
	require.NoError(t, err)
	defer bat.Clean()

	bat.SetValue(0, 0, types.Int(42))
	require.Equal(t, types.Int(42), bat.GetValue(0, 0))
	require.Equal(t, types.Int(42), bat.GetValue(0, 0))
	require.Equal(t, types.Int(42), bat.StealValue(0, 0))
	require.True(t, bat.GetValue(0, 0).IsMoved())
	require.Panics(t, func() { bat.GetValue(1, 0) })
}

func TestShadowRows(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()
	bat, err := m.RequestBatch(ctx, 4, 1)
	require.NoError(t, err)
	defer bat.Clean()

	bat.SetValue(1, 0, types.Int(1))
	bat.MakeShadowRow(1, 1)
	bat.MakeShadowRow(3, 2)
	require.True(t, bat.HasShadowRows())
	require.True(t, bat.IsShadowRow(1))
	require.False(t, bat.IsShadowRow(0))
	require.True(t, bat.GetValue(1, 0).IsNone())
	require.Equal(t, uint32(2), bat.ShadowRowDepth(3))
	require.Equal(t, uint32(0), bat.ShadowRowDepth(2))
	require.Equal(t, []uint32{1, 3}, bat.ShadowRows())
	require.Panics(t, func() { bat.MakeShadowRow(0, 0) })

	bat.SetRowCount(2)
	require.Equal(t, []uint32{1}, bat.ShadowRows())
	require.Panics(t, func() { bat.SetRowCount(5) })
}

func TestCodec(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()
	bat, err := m.RequestBatch(ctx, 3, 2)
	require.NoError(t, err)
	defer bat.Clean()

	bat.SetValue(0, 0, types.Int(1))
	bat.SetValue(0, 1, types.Document([]byte(`{"_key":"a"}`)))
	bat.SetValue(2, 0, types.String("x"))
	bat.SetValue(2, 1, types.Double(2.5))
	bat.MakeShadowRow(1, 1)
	_ = bat.StealValue(2, 0)

	data, err := bat.MarshalBinary()
	require.NoError(t, err)

	got, err := m.UnmarshalBatch(ctx, data)
	require.NoError(t, err)
	defer got.Clean()
	require.Equal(t, 3, got.RowCount())
	require.Equal(t, 2, got.NrRegisters())
	require.Equal(t, types.Int(1), got.GetValue(0, 0))
	require.Equal(t, `{"_key":"a"}`, string(got.GetValue(0, 1).Raw()))
	require.True(t, got.IsShadowRow(1))
	require.True(t, got.GetValue(2, 0).IsNone())
	require.Equal(t, types.Double(2.5), got.GetValue(2, 1))

	_, err = m.UnmarshalBatch(ctx, []byte("not lz4"))
	require.Error(t, err)
}

func TestCodecLargePayloads(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()
	bat, err := m.RequestBatch(ctx, 4, 2)
	require.NoError(t, err)
	defer bat.Clean()

	long := strings.Repeat("abcdefgh", 512)
	for i := 0; i < 4; i++ {
		bat.SetValue(i, 0, types.String(fmt.Sprintf("%d-%s", i, long)))
		bat.SetValue(i, 1, types.Document([]byte(fmt.Sprintf(`{"_key":"%d","text":%q}`, i, long))))
	}

	data, err := bat.MarshalBinary()
	require.NoError(t, err)
	got, err := m.UnmarshalBatch(ctx, data)
	require.NoError(t, err)
	defer got.Clean()

	for i := 0; i < 4; i++ {
		require.Equal(t, bat.GetValue(i, 0), got.GetValue(i, 0))
		require.Equal(t, string(bat.GetValue(i, 1).Raw()), string(got.GetValue(i, 1).Raw()))
	}
}

func TestString(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()
	bat, err := m.RequestBatch(ctx, 2, 1)
	require.NoError(t, err)
	defer bat.Clean()
	bat.SetValue(0, 0, types.Int(7))
	bat.MakeShadowRow(1, 1)
	require.Equal(t, "0 : 7\n1 : shadow(1)\n", bat.String())
}
