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

	"github.com/google/btree"

	"github.com/matrixorigin/aqlflow/pkg/common/moerr"
	"github.com/matrixorigin/aqlflow/pkg/vm/engine"
)

var _ engine.Storage = new(MemEngine)

func New() *MemEngine {
	return &MemEngine{colls: make(map[string]*btree.BTree)}
}

func (e *MemEngine) CreateCollection(ctx context.Context, name string) error {
	e.Lock()
	defer e.Unlock()
	if _, ok := e.colls[name]; ok {
		return moerr.NewDuplicate(ctx, "collection", name)
	}
	e.colls[name] = btree.New(btreeDegree)
	return nil
}

func (e *MemEngine) collection(ctx context.Context, name string) (*btree.BTree, error) {
	tree, ok := e.colls[name]
	if !ok {
		return nil, moerr.NewNoSuchTable(ctx, name)
	}
	return tree, nil
}

func (e *MemEngine) Insert(ctx context.Context, coll string, doc []byte) (string, error) {
	e.Lock()
	defer e.Unlock()
	tree, err := e.collection(ctx, coll)
	if err != nil {
		return "", err
	}
	key, raw, err := engine.PrepareDocument(ctx, coll, doc, e.rev+1)
	if err != nil {
		return "", err
	}
	if tree.Has(document{key: key}) {
		return "", moerr.NewDuplicate(ctx, coll, key)
	}
	e.rev++
	tree.ReplaceOrInsert(document{key: key, raw: raw})
	return key, nil
}

func (e *MemEngine) Get(ctx context.Context, coll, key string) ([]byte, error) {
	e.RLock()
	defer e.RUnlock()
	tree, err := e.collection(ctx, coll)
	if err != nil {
		return nil, err
	}
	item := tree.Get(document{key: key})
	if item == nil {
		return nil, moerr.NewDocumentNotFound(ctx, coll, key)
	}
	return item.(document).raw, nil
}

func (e *MemEngine) Remove(ctx context.Context, coll string, target engine.Target, opts engine.RemoveOptions) engine.RemoveResult {
	e.Lock()
	defer e.Unlock()
	tree, err := e.collection(ctx, coll)
	if err != nil {
		return engine.RemoveResult{Status: engine.StatusError, Err: err}
	}
	var stored []byte
	if item := tree.Get(document{key: target.Key}); item != nil {
		stored = item.(document).raw
	}
	res := engine.CheckRemove(ctx, coll, target, stored, opts)
	if res.Status == engine.StatusOK {
		tree.Delete(document{key: target.Key})
	}
	return res
}

func (e *MemEngine) Count(ctx context.Context, coll string) (int64, error) {
	e.RLock()
	defer e.RUnlock()
	tree, err := e.collection(ctx, coll)
	if err != nil {
		return 0, err
	}
	return int64(tree.Len()), nil
}

func (e *MemEngine) Scan(ctx context.Context, coll string) (engine.Cursor, error) {
	e.RLock()
	defer e.RUnlock()
	if _, err := e.collection(ctx, coll); err != nil {
		return nil, err
	}
	return &cursor{e: e, coll: coll}, nil
}

func (e *MemEngine) Close() error {
	return nil
}

// Next resumes after the last returned key, so documents removed or added
// behind the cursor in between do not disturb it.
func (c *cursor) Next(ctx context.Context, atMost int) ([][]byte, bool, error) {
	if c.done {
		return nil, true, nil
	}
	if atMost < 1 {
		atMost = 1
	}
	c.e.RLock()
	defer c.e.RUnlock()
	tree, err := c.e.collection(ctx, c.coll)
	if err != nil {
		return nil, true, err
	}
	docs := make([][]byte, 0, atMost)
	more := false
	tree.AscendGreaterOrEqual(document{key: c.last}, func(i btree.Item) bool {
		d := i.(document)
		if c.started && d.key == c.last {
			return true
		}
		if len(docs) == atMost {
			more = true
			return false
		}
		docs = append(docs, d.raw)
		c.last, c.started = d.key, true
		return true
	})
	c.done = !more
	return docs, c.done, nil
}

func (c *cursor) Close() error {
	c.done = true
	return nil
}
