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
	"sync"

	"github.com/google/btree"
)

const btreeDegree = 32

// MemEngine keeps every collection in an ordered in-memory tree.
type MemEngine struct {
	sync.RWMutex
	rev   uint64
	colls map[string]*btree.BTree
}

type document struct {
	key string
	raw []byte
}

func (d document) Less(than btree.Item) bool {
	return d.key < than.(document).key
}

type cursor struct {
	e    *MemEngine
	coll string
	last string
	// started is set once last holds a returned key.
	started bool
	done    bool
}
