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
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/matrixorigin/aqlflow/pkg/common/moerr"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	KeyAttribute = "_key"
	RevAttribute = "_rev"
	IDAttribute  = "_id"
)

// NewDocument marshals fields into a document value.
func NewDocument(fields map[string]any) (Value, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return None(), err
	}
	return Document(raw), nil
}

// ParseJSON converts a JSON text into the matching value kind. Objects
// and arrays stay documents.
func ParseJSON(raw []byte) (Value, error) {
	if !json.Valid(raw) {
		return None(), moerr.NewInvalidInput(moerr.Context(), "malformed json document")
	}
	return fromAny(jsoniter.Get(raw)), nil
}

// Attribute walks path through a document. Anything missing, or a
// non-document receiver, yields null.
func (v Value) Attribute(path ...string) Value {
	if v.kind != KindDocument {
		return Null()
	}
	keys := make([]interface{}, len(path))
	for i, p := range path {
		keys[i] = p
	}
	return fromAny(jsoniter.Get(v.doc, keys...))
}

func fromAny(a jsoniter.Any) Value {
	switch a.ValueType() {
	case jsoniter.InvalidValue, jsoniter.NilValue:
		return Null()
	case jsoniter.BoolValue:
		return Bool(a.ToBool())
	case jsoniter.NumberValue:
		if strings.ContainsAny(a.ToString(), ".eE") {
			return Double(a.ToFloat64())
		}
		return Int(a.ToInt64())
	case jsoniter.StringValue:
		return String(a.ToString())
	default:
		return Document([]byte(a.ToString()))
	}
}

// Key returns the document key v identifies. A string is taken as the
// key itself, a document contributes its _key attribute.
func (v Value) Key() (string, bool) {
	switch v.kind {
	case KindString:
		return v.str, true
	case KindDocument:
		k := v.Attribute(KeyAttribute)
		if k.kind == KindString {
			return k.str, true
		}
	}
	return "", false
}

// Rev returns the _rev attribute of a document, if any.
func (v Value) Rev() (string, bool) {
	r := v.Attribute(RevAttribute)
	if r.kind == KindString {
		return r.str, true
	}
	return "", false
}

// ToJSON renders v as JSON text. Empty and moved cells render as null.
func (v Value) ToJSON() []byte {
	switch v.kind {
	case KindBool:
		return strconv.AppendBool(nil, v.GetBool())
	case KindInt:
		return strconv.AppendInt(nil, v.GetInt(), 10)
	case KindDouble:
		return strconv.AppendFloat(nil, v.GetDouble(), 'g', -1, 64)
	case KindString:
		raw, _ := json.Marshal(v.str)
		return raw
	case KindDocument:
		return v.doc
	default:
		return []byte("null")
	}
}
