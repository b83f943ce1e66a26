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

package engine

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/matrixorigin/aqlflow/pkg/common/moerr"
	"github.com/matrixorigin/aqlflow/pkg/container/types"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// PrepareDocument stamps doc with the system attributes of collection
// coll and revision rev. It returns the document key and the stored form.
func PrepareDocument(ctx context.Context, coll string, doc []byte, rev uint64) (string, []byte, error) {
	fields := make(map[string]any)
	if err := json.Unmarshal(doc, &fields); err != nil {
		return "", nil, moerr.NewInvalidInput(ctx, "document is not a json object: %v", err)
	}
	key, _ := fields[types.KeyAttribute].(string)
	if key == "" {
		if _, ok := fields[types.KeyAttribute]; ok {
			return "", nil, moerr.NewInvalidInput(ctx, "document key must be a non-empty string")
		}
		key = uuid.NewString()
	}
	fields[types.KeyAttribute] = key
	fields[types.IDAttribute] = coll + "/" + key
	fields[types.RevAttribute] = FormatRev(rev)
	raw, err := json.Marshal(fields)
	if err != nil {
		return "", nil, moerr.NewInvalidInput(ctx, "cannot encode document: %v", err)
	}
	return key, raw, nil
}

func FormatRev(rev uint64) string {
	return "_" + strconv.FormatUint(rev, 36)
}

// CheckRemove decides whether stored may be removed for target.
func CheckRemove(ctx context.Context, coll string, target Target, stored []byte, opts RemoveOptions) RemoveResult {
	if stored == nil {
		return RemoveResult{Status: StatusNotFound, Err: moerr.NewDocumentNotFound(ctx, coll, target.Key)}
	}
	if target.Rev != "" && !opts.IgnoreRevs {
		if rev, _ := types.Document(stored).Rev(); rev != target.Rev {
			return RemoveResult{Status: StatusConflict, Err: moerr.NewConflict(ctx, coll, target.Key)}
		}
	}
	res := RemoveResult{Status: StatusOK}
	if opts.ReturnOld {
		res.Old = stored
	}
	return res
}
