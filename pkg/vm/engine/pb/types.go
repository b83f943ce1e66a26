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
	"sync"

	"github.com/cockroachdb/pebble"
)

var (
	collectionPrefix = []byte("c\x00")
	documentPrefix   = []byte("d\x00")
)

// pbEngine stores documents in pebble under d\x00<collection>\x00<key>.
// Collections are marked by c\x00<collection>.
type pbEngine struct {
	// mu serializes the read-check-write sequences of Insert and Remove.
	mu  sync.Mutex
	rev uint64
	db  *pebble.DB
}

type pbCursor struct {
	db     *pebble.DB
	prefix []byte
	last   []byte
	done   bool
}
