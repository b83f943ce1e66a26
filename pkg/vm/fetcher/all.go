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
	"github.com/matrixorigin/aqlflow/pkg/container/matrix"
	"github.com/matrixorigin/aqlflow/pkg/vm/process"
)

var _ MatrixFetcher = new(AllRowsFetcher)

// AllRowsFetcher materializes the whole upstream. Blocks received before a
// WAITING are kept, so a retried call continues where it stopped.
type AllRowsFetcher struct {
	proxy DependencyProxy

	mat  *matrix.Matrix
	done bool
}

func NewAllRowsFetcher(proxy DependencyProxy) *AllRowsFetcher {
	return &AllRowsFetcher{proxy: proxy}
}

func (f *AllRowsFetcher) FetchAllRows(atMost int) (process.ExecState, *matrix.Matrix, error) {
	if f.done {
		return process.ExecDone, f.mat, nil
	}
	if f.mat == nil {
		f.mat = matrix.New(f.proxy.NrRegisters())
	}
	for {
		state, bat, err := f.proxy.FetchBlock(atMost)
		if err != nil {
			return process.ExecDone, nil, err
		}
		if err := checkBlock(state, bat, f.mat.NrRegisters()); err != nil {
			bat.Clean()
			return process.ExecDone, nil, err
		}
		if state == process.ExecWaiting {
			return process.ExecWaiting, nil, nil
		}
		if bat != nil {
			f.mat.AddBlock(bat)
		}
		if state == process.ExecDone {
			f.done = true
			return process.ExecDone, f.mat, nil
		}
	}
}

// Close releases the matrix, including one already handed out.
func (f *AllRowsFetcher) Close() {
	if f.mat != nil {
		f.mat.Release()
	}
}
