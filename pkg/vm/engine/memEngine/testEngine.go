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

package memEngine

import (
	"context"
	"fmt"
)

// NewTestEngine returns an engine holding collection coll with n
// documents keyed "0".."n-1", each carrying its position in "value".
func NewTestEngine(ctx context.Context, coll string, n int) (*MemEngine, error) {
	e := New()
	if err := e.CreateCollection(ctx, coll); err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		doc := fmt.Sprintf(`{"_key":"%d","value":%d}`, i, i)
		if _, err := e.Insert(ctx, coll, []byte(doc)); err != nil {
			return nil, err
		}
	}
	return e, nil
}
