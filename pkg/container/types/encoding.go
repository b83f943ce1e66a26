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
	"encoding/binary"

	"github.com/matrixorigin/aqlflow/pkg/common/moerr"
)

// AppendValue appends the wire form of v to buf: a kind byte followed by
// a kind specific payload. Moved cells travel as none.
func AppendValue(buf []byte, v Value) []byte {
	kind := v.kind
	if kind == KindMoved {
		kind = KindNone
	}
	buf = append(buf, byte(kind))
	switch kind {
	case KindBool:
		buf = append(buf, byte(v.num))
	case KindInt:
		buf = binary.AppendVarint(buf, v.GetInt())
	case KindDouble:
		buf = binary.LittleEndian.AppendUint64(buf, v.num)
	case KindString:
		buf = binary.AppendUvarint(buf, uint64(len(v.str)))
		buf = append(buf, v.str...)
	case KindDocument:
		buf = binary.AppendUvarint(buf, uint64(len(v.doc)))
		buf = append(buf, v.doc...)
	}
	return buf
}

// DecodeValue reads one value from data and returns it with the number of
// bytes consumed. Documents are copied out of data.
func DecodeValue(data []byte) (Value, int, error) {
	if len(data) == 0 {
		return None(), 0, moerr.NewUnexpectedEOF(moerr.Context(), "value kind")
	}
	kind, n := Kind(data[0]), 1
	switch kind {
	case KindNone:
		return None(), n, nil
	case KindNull:
		return Null(), n, nil
	case KindBool:
		if len(data) < 2 {
			return None(), 0, moerr.NewUnexpectedEOF(moerr.Context(), "bool value")
		}
		return Bool(data[1] != 0), 2, nil
	case KindInt:
		i, m := binary.Varint(data[n:])
		if m <= 0 {
			return None(), 0, moerr.NewUnexpectedEOF(moerr.Context(), "int value")
		}
		return Int(i), n + m, nil
	case KindDouble:
		if len(data) < n+8 {
			return None(), 0, moerr.NewUnexpectedEOF(moerr.Context(), "double value")
		}
		return Value{kind: KindDouble, num: binary.LittleEndian.Uint64(data[n:])}, n + 8, nil
	case KindString, KindDocument:
		l, m := binary.Uvarint(data[n:])
		if m <= 0 || uint64(len(data)-n-m) < l {
			return None(), 0, moerr.NewUnexpectedEOF(moerr.Context(), kind.String()+" value")
		}
		start := n + m
		end := start + int(l)
		if kind == KindString {
			return String(string(data[start:end])), end, nil
		}
		return Document(append([]byte(nil), data[start:end]...)), end, nil
	}
	return None(), 0, moerr.NewInvalidInput(moerr.Context(), "unknown value kind %d", kind)
}
