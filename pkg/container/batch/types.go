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

package batch

import (
	"github.com/RoaringBitmap/roaring"

	"github.com/matrixorigin/aqlflow/pkg/container/types"
)

// Batch is a block of rows over a fixed number of registers. Cells are
// stored row-major. A row may instead be a shadow row, which marks the end
// of a subquery run at some nesting depth and carries no register values.
//
// Batches are shared between a producer and every row view pointing into
// them, so they are reference counted. The last Clean hands the storage
// back to the Manager that allocated it.
type Batch struct {
	// reference count, default is 1
	Cnt int64

	rowCount int
	capacity int
	nrRegs   int
	vals     []types.Value

	// shadows holds the positions of shadow rows, depths their nesting depth.
	// depths is only allocated once the first shadow row is made.
	shadows *roaring.Bitmap
	depths  []uint32

	mgr *Manager
	// charged is the number of bytes reported to the memory pool.
	charged int64
}
