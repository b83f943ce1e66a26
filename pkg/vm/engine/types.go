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

import "context"

//go:generate mockgen -source=types.go -destination=mock_storage.go -package=engine

// Target names the document a modification applies to. An empty Rev
// matches any revision.
type Target struct {
	Key string
	Rev string
}

type RemoveOptions struct {
	// ReturnOld asks for the removed document.
	ReturnOld bool
	// IgnoreRevs removes the document whatever its current revision.
	IgnoreRevs bool
}

type ResultStatus int8

const (
	StatusOK ResultStatus = iota
	StatusNotFound
	StatusConflict
	StatusError
)

func (s ResultStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNotFound:
		return "not-found"
	case StatusConflict:
		return "conflict"
	}
	return "error"
}

// RemoveResult is the outcome of removing one document. Err is set for
// every status but StatusOK; Old only for StatusOK with ReturnOld.
type RemoveResult struct {
	Status ResultStatus
	Old    []byte
	Err    error
}

// Storage is the document store the executors read and modify. Documents
// are JSON objects; the store maintains their _key, _id and _rev
// attributes.
type Storage interface {
	CreateCollection(ctx context.Context, name string) error
	// Insert stores doc and returns its key. A missing _key is generated.
	Insert(ctx context.Context, coll string, doc []byte) (string, error)
	Get(ctx context.Context, coll, key string) ([]byte, error)
	Remove(ctx context.Context, coll string, target Target, opts RemoveOptions) RemoveResult
	Count(ctx context.Context, coll string) (int64, error)
	// Scan iterates coll in key order.
	Scan(ctx context.Context, coll string) (Cursor, error)
	Close() error
}

// Cursor pages through a collection.
type Cursor interface {
	// Next returns up to atMost documents and whether the cursor is
	// exhausted.
	Next(ctx context.Context, atMost int) ([][]byte, bool, error)
	Close() error
}
