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
	"fmt"
	"io"
	"runtime/debug"
	"sync/atomic"
)

const (
	Ok uint16 = 0

	// Group 1: Internal errors
	ErrStart             uint16 = 20100
	ErrInternal          uint16 = 20101
	ErrOOM               uint16 = 20103
	ErrQueryInterrupted  uint16 = 20104
	ErrNotSupported      uint16 = 20105
	ErrProtocolViolation uint16 = 20106

	// Group 3: invalid input
	ErrBadConfig    uint16 = 20300
	ErrInvalidInput uint16 = 20301

	// Group 4: unexpected state and io errors
	ErrInvalidState   uint16 = 20400
	ErrUnexpectedEOF  uint16 = 20407
	ErrNoSuchTable    uint16 = 20403
	ErrRemoteFailure  uint16 = 20460
	ErrEngineNotFound uint16 = 20461

	// Group 6: txn / document storage
	ErrDocumentNotFound uint16 = 20600
	ErrConflict         uint16 = 20601
	ErrStorage          uint16 = 20602
	ErrDuplicate        uint16 = 20603

	// ErrEnd, the max value of MOErrorCode
	ErrEnd uint16 = 65535
)

type moErrorMsgItem struct {
	errorMsgOrFormat string
}

var errorMsgRefer = map[uint16]moErrorMsgItem{
	// Group 1: Internal errors
	ErrStart:             {"internal error: error code start"},
	ErrInternal:          {"internal error: %s"},
	ErrOOM:               {"error: out of memory, %s"},
	ErrQueryInterrupted:  {"query interrupted"},
	ErrNotSupported:      {"not supported: %s"},
	ErrProtocolViolation: {"internal error: execution protocol violated: %s"},

	// Group 3: invalid input
	ErrBadConfig:    {"invalid configuration: %s"},
	ErrInvalidInput: {"invalid input: %s"},

	// Group 4: unexpected state and io errors
	ErrInvalidState:   {"invalid state %s"},
	ErrUnexpectedEOF:  {"unexpected end of file %s"},
	ErrNoSuchTable:    {"no such collection %s"},
	ErrRemoteFailure:  {"remote fetch failed: %s"},
	ErrEngineNotFound: {"no traversal engine registered for server %s"},

	// Group 6: document storage
	ErrDocumentNotFound: {"document not found: %s/%s"},
	ErrConflict:         {"conflict, _rev values do not match: %s/%s"},
	ErrStorage:          {"storage error on %s: %v"},
	ErrDuplicate:        {"unique constraint violated: %s/%s"},

	// Group End: max value of MOErrorCode
	ErrEnd: {"internal error: end of errcode code"},
}

func newError(ctx context.Context, code uint16, args ...any) *Error {
	var err *Error
	item, has := errorMsgRefer[code]
	if !has {
		panic(NewInternalError(ctx, "not exist MOErrorCode: %d", code))
	}
	if len(args) == 0 {
		err = &Error{
			code:    code,
			message: item.errorMsgOrFormat,
		}
	} else {
		err = &Error{
			code:    code,
			message: fmt.Sprintf(item.errorMsgOrFormat, args...),
		}
	}
	return err
}

type Error struct {
	code    uint16
	message string
	detail  string
	cause   error
}

func (e *Error) Error() string {
	return e.message
}

func (e *Error) Detail() string {
	return e.detail
}

func (e *Error) Display() string {
	if len(e.detail) == 0 {
		return e.message
	}
	return fmt.Sprintf("%s: %s", e.message, e.detail)
}

func (e *Error) ErrorCode() uint16 {
	return e.code
}

// Unwrap returns the error that caused this one, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

func IsMoErrCode(e error, rc uint16) bool {
	if e == nil {
		return rc == Ok
	}

	me, ok := e.(*Error)
	if !ok {
		// This is not a moerr
		return false
	}
	return me.code == rc
}

// ConvertPanicError converts a runtime panic to internal error.
func ConvertPanicError(ctx context.Context, v interface{}) *Error {
	if e, ok := v.(*Error); ok {
		return e
	}
	return newError(ctx, ErrInternal, fmt.Sprintf("panic %v: %s", v, debug.Stack()))
}

// ConvertGoError converts a go error into mo error.
// Note here we must return error, because nil error
// is the same as nil *Error -- Go strangeness.
func ConvertGoError(ctx context.Context, err error) error {
	// nil is nil
	if err == nil {
		return err
	}

	// already a moerr, return it as is
	if _, ok := err.(*Error); ok {
		return err
	}

	if err == io.EOF || err == io.ErrUnexpectedEOF {
		// if io.EOF reaches here, we believe it is not expected.
		return NewUnexpectedEOF(ctx, err.Error())
	}

	e := NewInternalError(ctx, "convert go error to mo error %v", err)
	e.cause = err
	return e
}

func NewInternalError(ctx context.Context, msg string, args ...any) *Error {
	xmsg := fmt.Sprintf(msg, args...)
	return newError(ctx, ErrInternal, xmsg)
}

func NewNotSupported(ctx context.Context, msg string, args ...any) *Error {
	xmsg := fmt.Sprintf(msg, args...)
	return newError(ctx, ErrNotSupported, xmsg)
}

func NewOOM(ctx context.Context, msg string, args ...any) *Error {
	xmsg := fmt.Sprintf(msg, args...)
	return newError(ctx, ErrOOM, xmsg)
}

func NewQueryInterrupted(ctx context.Context) *Error {
	return newError(ctx, ErrQueryInterrupted)
}

func NewProtocolViolation(ctx context.Context, msg string, args ...any) *Error {
	xmsg := fmt.Sprintf(msg, args...)
	return newError(ctx, ErrProtocolViolation, xmsg)
}

func NewBadConfig(ctx context.Context, msg string, args ...any) *Error {
	xmsg := fmt.Sprintf(msg, args...)
	return newError(ctx, ErrBadConfig, xmsg)
}

func NewInvalidInput(ctx context.Context, msg string, args ...any) *Error {
	xmsg := fmt.Sprintf(msg, args...)
	return newError(ctx, ErrInvalidInput, xmsg)
}

func NewInvalidState(ctx context.Context, msg string, args ...any) *Error {
	xmsg := fmt.Sprintf(msg, args...)
	return newError(ctx, ErrInvalidState, xmsg)
}

func NewUnexpectedEOF(ctx context.Context, f string) *Error {
	return newError(ctx, ErrUnexpectedEOF, f)
}

func NewNoSuchTable(ctx context.Context, coll string) *Error {
	return newError(ctx, ErrNoSuchTable, coll)
}

func NewRemoteFailure(ctx context.Context, cause error) *Error {
	e := newError(ctx, ErrRemoteFailure, cause.Error())
	e.cause = cause
	return e
}

func NewEngineNotFound(ctx context.Context, server string) *Error {
	return newError(ctx, ErrEngineNotFound, server)
}

func NewDocumentNotFound(ctx context.Context, coll, key string) *Error {
	return newError(ctx, ErrDocumentNotFound, coll, key)
}

func NewConflict(ctx context.Context, coll, key string) *Error {
	return newError(ctx, ErrConflict, coll, key)
}

func NewDuplicate(ctx context.Context, coll, key string) *Error {
	return newError(ctx, ErrDuplicate, coll, key)
}

// NewStorageError reports a storage failure on coll, keeping cause reachable
// through errors.Unwrap.
func NewStorageError(ctx context.Context, coll string, cause error) *Error {
	e := newError(ctx, ErrStorage, coll, cause)
	e.cause = cause
	return e
}

// WithCause returns a copy of e that unwraps to cause.
func (e *Error) WithCause(cause error) *Error {
	ne := *e
	ne.cause = cause
	ne.detail = cause.Error()
	return &ne
}

var contextFunc atomic.Value

func SetContextFunc(f func() context.Context) {
	contextFunc.Store(f)
}

// Context should be used to provide a context.Context when constructing
// errors without a caller-provided context at hand.
func Context() context.Context {
	return contextFunc.Load().(func() context.Context)()
}

func init() {
	SetContextFunc(func() context.Context { return context.Background() })
}
