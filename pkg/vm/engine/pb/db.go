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

package pb

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"

	"github.com/matrixorigin/aqlflow/pkg/common/moerr"
	"github.com/matrixorigin/aqlflow/pkg/vm/engine"
)

var _ engine.Storage = new(pbEngine)

// New opens a pebble store in dir, or a purely in-memory one when dir is
// empty.
func New(dir string) (engine.Storage, error) {
	opts := &pebble.Options{}
	if dir == "" {
		opts.FS = vfs.NewMem()
	}
	db, err := pebble.Open(dir, opts)
	if err != nil {
		return nil, moerr.NewStorageError(moerr.Context(), dir, err)
	}
	// revisions stay increasing across restarts
	return &pbEngine{db: db, rev: uint64(time.Now().UnixNano())}, nil
}

func (db *pbEngine) Close() error {
	return db.db.Close()
}

func collectionKey(name string) []byte {
	return append(append([]byte{}, collectionPrefix...), name...)
}

func documentsPrefix(coll string) []byte {
	k := append(append([]byte{}, documentPrefix...), coll...)
	return append(k, 0)
}

func documentKey(coll, key string) []byte {
	return append(documentsPrefix(coll), key...)
}

func (db *pbEngine) get(k []byte) ([]byte, error) {
	v, c, err := db.db.Get(k)
	if err == pebble.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r := make([]byte, len(v))
	copy(r, v)
	c.Close()
	return r, nil
}

func (db *pbEngine) checkCollection(ctx context.Context, name string) error {
	v, err := db.get(collectionKey(name))
	if err != nil {
		return moerr.NewStorageError(ctx, name, err)
	}
	if v == nil {
		return moerr.NewNoSuchTable(ctx, name)
	}
	return nil
}

func (db *pbEngine) CreateCollection(ctx context.Context, name string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.checkCollection(ctx, name); err == nil {
		return moerr.NewDuplicate(ctx, "collection", name)
	} else if !moerr.IsMoErrCode(err, moerr.ErrNoSuchTable) {
		return err
	}
	if err := db.db.Set(collectionKey(name), []byte{1}, pebble.Sync); err != nil {
		return moerr.NewStorageError(ctx, name, err)
	}
	return nil
}

func (db *pbEngine) Insert(ctx context.Context, coll string, doc []byte) (string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.checkCollection(ctx, coll); err != nil {
		return "", err
	}
	key, raw, err := engine.PrepareDocument(ctx, coll, doc, atomic.AddUint64(&db.rev, 1))
	if err != nil {
		return "", err
	}
	k := documentKey(coll, key)
	old, err := db.get(k)
	if err != nil {
		return "", moerr.NewStorageError(ctx, coll, err)
	}
	if old != nil {
		return "", moerr.NewDuplicate(ctx, coll, key)
	}
	if err := db.db.Set(k, raw, pebble.Sync); err != nil {
		return "", moerr.NewStorageError(ctx, coll, err)
	}
	return key, nil
}

func (db *pbEngine) Get(ctx context.Context, coll, key string) ([]byte, error) {
	if err := db.checkCollection(ctx, coll); err != nil {
		return nil, err
	}
	v, err := db.get(documentKey(coll, key))
	if err != nil {
		return nil, moerr.NewStorageError(ctx, coll, err)
	}
	if v == nil {
		return nil, moerr.NewDocumentNotFound(ctx, coll, key)
	}
	return v, nil
}

func (db *pbEngine) Remove(ctx context.Context, coll string, target engine.Target, opts engine.RemoveOptions) engine.RemoveResult {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.checkCollection(ctx, coll); err != nil {
		return engine.RemoveResult{Status: engine.StatusError, Err: err}
	}
	k := documentKey(coll, target.Key)
	stored, err := db.get(k)
	if err != nil {
		return engine.RemoveResult{Status: engine.StatusError, Err: moerr.NewStorageError(ctx, coll, err)}
	}
	res := engine.CheckRemove(ctx, coll, target, stored, opts)
	if res.Status != engine.StatusOK {
		return res
	}
	if err := db.db.Delete(k, pebble.Sync); err != nil {
		return engine.RemoveResult{Status: engine.StatusError, Err: moerr.NewStorageError(ctx, coll, err)}
	}
	return res
}

func (db *pbEngine) Count(ctx context.Context, coll string) (int64, error) {
	if err := db.checkCollection(ctx, coll); err != nil {
		return 0, err
	}
	prefix := documentsPrefix(coll)
	itr := db.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: upperBound(prefix),
	})
	defer itr.Close()
	var n int64
	for itr.First(); itr.Valid(); itr.Next() {
		n++
	}
	return n, nil
}

func (db *pbEngine) Scan(ctx context.Context, coll string) (engine.Cursor, error) {
	if err := db.checkCollection(ctx, coll); err != nil {
		return nil, err
	}
	return &pbCursor{db: db.db, prefix: documentsPrefix(coll)}, nil
}

// Next opens a fresh iterator just past the last returned key, so it sees
// the store as it is now.
func (c *pbCursor) Next(ctx context.Context, atMost int) ([][]byte, bool, error) {
	if c.done {
		return nil, true, nil
	}
	if atMost < 1 {
		atMost = 1
	}
	lower := c.prefix
	if c.last != nil {
		lower = append(append([]byte{}, c.last...), 0)
	}
	itr := c.db.NewIter(&pebble.IterOptions{
		LowerBound: lower,
		UpperBound: upperBound(c.prefix),
	})
	defer itr.Close()

	docs := make([][]byte, 0, atMost)
	for itr.First(); itr.Valid(); itr.Next() {
		if len(docs) == atMost {
			return docs, false, nil
		}
		v := itr.Value()
		docs = append(docs, append(make([]byte, 0, len(v)), v...))
		c.last = append(c.last[:0], itr.Key()...)
	}
	c.done = true
	return docs, true, nil
}

func (c *pbCursor) Close() error {
	c.done = true
	return nil
}

func upperBound(k []byte) []byte {
	u := make([]byte, len(k))
	copy(u, k)
	for i := len(u) - 1; i >= 0; i-- {
		u[i] = u[i] + 1
		if u[i] != 0 {
			return u[:i+1]
		}
	}
	return nil
}
