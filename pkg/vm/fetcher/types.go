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

package fetcher

import (
	"github.com/matrixorigin/aqlflow/pkg/container/batch"
	"github.com/matrixorigin/aqlflow/pkg/container/matrix"
	"github.com/matrixorigin/aqlflow/pkg/container/row"
	"github.com/matrixorigin/aqlflow/pkg/vm/process"
)

// DependencyProxy is the upstream of a fetcher. Every returned batch
// carries one reference that passes to the caller. A WAITING answer never
// carries a batch, and a DONE answer may carry the last one.
type DependencyProxy interface {
	FetchBlock(atMost int) (process.ExecState, *batch.Batch, error)
	// NrRegisters is the register count of every batch the proxy returns.
	NrRegisters() int
}

// RowFetcher is what streaming executors pull from.
type RowFetcher interface {
	// FetchRow returns the next row in arrival order. The row stays valid
	// until the next call. The last row may come with DONE.
	FetchRow(atMost int) (process.ExecState, row.InputRow, error)
	Close()
}

// MatrixFetcher is what blocking executors pull from.
type MatrixFetcher interface {
	// FetchAllRows returns DONE and the complete input once the upstream
	// is exhausted. The same matrix is returned on every later call.
	FetchAllRows(atMost int) (process.ExecState, *matrix.Matrix, error)
	Close()
}
