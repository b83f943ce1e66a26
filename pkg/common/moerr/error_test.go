// Copyright 2021 - 2022 Matrix Origin
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

package moerr

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMoErrCode(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		err      error
		code     uint16
		expected bool
	}{
		{name: "nil error is ok", err: nil, code: Ok, expected: true},
		{name: "nil error is not oom", err: nil, code: ErrOOM, expected: false},
		{name: "oom", err: NewOOM(ctx, "limit %d", 10), code: ErrOOM, expected: true},
		{name: "interrupted", err: NewQueryInterrupted(ctx), code: ErrQueryInterrupted, expected: true},
		{name: "not found is not conflict", err: NewDocumentNotFound(ctx, "c", "k"), code: ErrConflict, expected: false},
		{name: "go error", err: errors.New("x"), code: ErrInternal, expected: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsMoErrCode(tt.err, tt.code))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	ctx := context.Background()
	require.Equal(t, "document not found: users/42", NewDocumentNotFound(ctx, "users", "42").Error())
	require.Equal(t, "conflict, _rev values do not match: users/42", NewConflict(ctx, "users", "42").Error())
	require.Equal(t, "query interrupted", NewQueryInterrupted(ctx).Error())
	require.Equal(t, "internal error: execution protocol violated: row after DONE",
		NewProtocolViolation(ctx, "row after %s", "DONE").Error())
}

func TestCauseIsReachable(t *testing.T) {
	ctx := context.Background()
	cause := errors.New("disk on fire")

	err := NewStorageError(ctx, "users", cause)
	require.True(t, errors.Is(err, cause))
	require.True(t, IsMoErrCode(err, ErrStorage))

	wrapped := NewConflict(ctx, "users", "1").WithCause(cause)
	require.True(t, errors.Is(wrapped, cause))
	require.Equal(t, "conflict, _rev values do not match: users/1: disk on fire", wrapped.Display())
}

func TestConvertGoError(t *testing.T) {
	ctx := context.Background()
	require.Nil(t, ConvertGoError(ctx, nil))

	oom := NewOOM(ctx, "x")
	require.Same(t, oom, ConvertGoError(ctx, oom))

	require.True(t, IsMoErrCode(ConvertGoError(ctx, io.EOF), ErrUnexpectedEOF))

	cause := errors.New("boom")
	converted := ConvertGoError(ctx, cause)
	require.True(t, IsMoErrCode(converted, ErrInternal))
	require.True(t, errors.Is(converted, cause))
}

func TestConvertPanicError(t *testing.T) {
	ctx := context.Background()
	oom := NewOOM(ctx, "x")
	require.Same(t, oom, ConvertPanicError(ctx, oom))
	require.True(t, IsMoErrCode(ConvertPanicError(ctx, "bad"), ErrInternal))
}

func TestUnknownCodePanics(t *testing.T) {
	require.Panics(t, func() {
		_ = newError(context.Background(), 12345)
	})
}
