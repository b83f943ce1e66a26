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

package types

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"unsafe"
)

type Kind uint8

const (
	// KindNone marks a register that holds nothing, which is distinct
	// from an explicit null.
	KindNone Kind = iota
	KindNull
	KindBool
	KindInt
	KindDouble
	KindString
	KindDocument
	// KindMoved marks a cell whose value was stolen by a consumer.
	KindMoved
)

var kindNames = [...]string{
	KindNone:     "none",
	KindNull:     "null",
	KindBool:     "bool",
	KindInt:      "int",
	KindDouble:   "double",
	KindString:   "string",
	KindDocument: "document",
	KindMoved:    "moved",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Value is a single register cell. Documents are kept as raw JSON.
type Value struct {
	kind Kind
	num  uint64
	str  string
	doc  []byte
}

// ValueSize is the fixed footprint of a cell inside a batch.
const ValueSize = int64(unsafe.Sizeof(Value{}))

func None() Value  { return Value{} }
func Null() Value  { return Value{kind: KindNull} }
func Moved() Value { return Value{kind: KindMoved} }

func Bool(b bool) Value {
	v := Value{kind: KindBool}
	if b {
		v.num = 1
	}
	return v
}

func Int(i int64) Value {
	return Value{kind: KindInt, num: uint64(i)}
}

func Double(f float64) Value {
	return Value{kind: KindDouble, num: math.Float64bits(f)}
}

func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Document wraps raw JSON. The slice is owned by the value afterwards.
func Document(raw []byte) Value {
	return Value{kind: KindDocument, doc: raw}
}

func (v Value) Kind() Kind        { return v.kind }
func (v Value) IsNone() bool      { return v.kind == KindNone }
func (v Value) IsNull() bool      { return v.kind == KindNull }
func (v Value) IsMoved() bool     { return v.kind == KindMoved }
func (v Value) IsNumber() bool    { return v.kind == KindInt || v.kind == KindDouble }
func (v Value) GetBool() bool     { return v.num != 0 }
func (v Value) GetInt() int64     { return int64(v.num) }
func (v Value) GetString() string { return v.str }
func (v Value) Raw() []byte       { return v.doc }

func (v Value) GetDouble() float64 {
	if v.kind == KindInt {
		return float64(int64(v.num))
	}
	return math.Float64frombits(v.num)
}

// Clone returns a value that shares no memory with v.
func (v Value) Clone() Value {
	if v.kind == KindDocument && v.doc != nil {
		v.doc = append(make([]byte, 0, len(v.doc)), v.doc...)
	}
	return v
}

// Size is the number of heap bytes held beyond the cell itself.
func (v Value) Size() int64 {
	return int64(len(v.str) + len(v.doc))
}

// Truthy follows query-language boolean conversion: null is false, zero
// and the empty string are false, documents are true.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindBool:
		return v.num != 0
	case KindInt:
		return v.num != 0
	case KindDouble:
		return v.GetDouble() != 0
	case KindString:
		return len(v.str) > 0
	case KindDocument:
		return true
	default:
		return false
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindNone:
		return "<none>"
	case KindMoved:
		return "<moved>"
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.GetBool())
	case KindInt:
		return strconv.FormatInt(v.GetInt(), 10)
	case KindDouble:
		return strconv.FormatFloat(v.GetDouble(), 'g', -1, 64)
	case KindString:
		return strconv.Quote(v.str)
	case KindDocument:
		return string(v.doc)
	}
	return "<invalid>"
}

// typeRank orders kinds for comparison: none < null < bool < number <
// string < document.
func (v Value) typeRank() int {
	switch v.kind {
	case KindNone, KindMoved:
		return 0
	case KindNull:
		return 1
	case KindBool:
		return 2
	case KindInt, KindDouble:
		return 3
	case KindString:
		return 4
	default:
		return 5
	}
}

// Compare returns -1, 0 or 1. Values of different kinds order by kind;
// ints and doubles compare numerically.
func Compare(a, b Value) int {
	ra, rb := a.typeRank(), b.typeRank()
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch ra {
	case 2:
		return compareOrdered(a.num, b.num)
	case 3:
		if a.kind == KindInt && b.kind == KindInt {
			return compareOrdered(a.GetInt(), b.GetInt())
		}
		return compareOrdered(a.GetDouble(), b.GetDouble())
	case 4:
		return compareOrdered(a.str, b.str)
	case 5:
		return bytes.Compare(a.doc, b.doc)
	}
	return 0
}

func compareOrdered[T int64 | uint64 | float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func Equal(a, b Value) bool {
	return Compare(a, b) == 0
}
