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
	"github.com/matrixorigin/aqlflow/pkg/common/moerr"
	"github.com/matrixorigin/aqlflow/pkg/container/batch"
	"github.com/matrixorigin/aqlflow/pkg/container/row"
	"github.com/matrixorigin/aqlflow/pkg/vm/process"
)

var _ RowFetcher = new(SingleRowFetcher)

// SingleRowFetcher hands out upstream rows one at a time. It keeps the
// current block until every row of it was handed out.
type SingleRowFetcher struct {
	proxy DependencyProxy

	bat      *batch.Batch
	rowIdx   int
	upstream process.ExecState
	done     bool
}

func NewSingleRowFetcher(proxy DependencyProxy) *SingleRowFetcher {
	return &SingleRowFetcher{proxy: proxy, upstream: process.ExecHasMore}
}

func (f *SingleRowFetcher) FetchRow(atMost int) (process.ExecState, row.InputRow, error) {
	if f.done {
		return process.ExecDone, row.InvalidInputRow(), nil
	}
	for f.bat == nil || f.rowIdx >= f.bat.RowCount() {
		if f.upstream == process.ExecDone {
			f.releaseBlock()
			f.done = true
			return process.ExecDone, row.InvalidInputRow(), nil
		}
		state, bat, err := f.proxy.FetchBlock(atMost)
		if err != nil {
			return process.ExecDone, row.InvalidInputRow(), err
		}
		if err := checkBlock(state, bat, f.proxy.NrRegisters()); err != nil {
			bat.Clean()
			return process.ExecDone, row.InvalidInputRow(), err
		}
		if state == process.ExecWaiting {
			return process.ExecWaiting, row.InvalidInputRow(), nil
		}
		f.releaseBlock()
		f.bat, f.rowIdx, f.upstream = bat, 0, state
	}

	r := row.NewInputRow(f.bat, f.rowIdx)
	f.rowIdx++
	if f.rowIdx >= f.bat.RowCount() && f.upstream == process.ExecDone {
		f.done = true
		return process.ExecDone, r, nil
	}
	return process.ExecHasMore, r, nil
}

func (f *SingleRowFetcher) releaseBlock() {
	f.bat.Clean()
	f.bat = nil
	f.rowIdx = 0
}

// Close drops the block the fetcher still holds.
func (f *SingleRowFetcher) Close() {
	f.releaseBlock()
}

func checkBlock(state process.ExecState, bat *batch.Batch, nrRegs int) error {
	if state == process.ExecWaiting && bat != nil {
		return moerr.NewProtocolViolation(moerr.Context(), "upstream returned a block together with %s", state)
	}
	if bat != nil && bat.NrRegisters() != nrRegs {
		return moerr.NewProtocolViolation(moerr.Context(), "upstream block has %d registers, expected %d", bat.NrRegisters(), nrRegs)
	}
	return nil
}
