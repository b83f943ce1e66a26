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


package output

import "github.com/matrixorigin/aqlflow/pkg/vm/process"

// Argument configures the executor that hands rows to the caller of a
// (sub)query.
type Argument struct {
	// Inherit copies whole input rows. Otherwise InputReg is moved into
	// OutputReg and nothing else is kept.
	Inherit   bool
	InputReg  int
	OutputReg int
	// DoCount counts every produced data row.
	DoCount bool

	ctr container
}

type container struct {
	done bool
}

type Stats struct {
	Counted int64
}

func (s *Stats) Add(o Stats) {
	s.Counted += o.Counted
}

func (s Stats) AddTo(dst *process.ExecutionStats) {
	dst.Counted += s.Counted
}
