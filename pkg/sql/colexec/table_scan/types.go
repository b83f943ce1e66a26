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


package table_scan

import (
	"github.com/matrixorigin/aqlflow/pkg/container/row"
	"github.com/matrixorigin/aqlflow/pkg/vm/engine"
	"github.com/matrixorigin/aqlflow/pkg/vm/process"
)

// Argument enumerates Collection once for every input row, writing each
// document into OutReg.
type Argument struct {
	Collection string
	OutReg     int
	Storage    engine.Storage

	ctr container
}

type container struct {
	input    row.InputRow
	upstream process.ExecState
	cursor   engine.Cursor
	docs     [][]byte
	pos      int
	// exhausted is set once the cursor returned its last page.
	exhausted bool
	done      bool
}

type Stats struct {
	ScannedFull int64
}

func (s *Stats) Add(o Stats) {
	s.ScannedFull += o.ScannedFull
}

func (s Stats) AddTo(dst *process.ExecutionStats) {
	dst.ScannedFull += s.ScannedFull
}
