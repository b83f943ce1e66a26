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


package limit

import "github.com/matrixorigin/aqlflow/pkg/vm/process"

type Argument struct {
	Offset uint64
	Limit  uint64
	// FullCount keeps consuming the input past the window and reports
	// every data row seen.
	FullCount bool
	// Subquery is set when the input carries shadow rows. The window then
	// restarts after each shadow row of depth 1 and the input is always
	// read to the end.
	Subquery bool

	ctr container
}

type container struct {
	seen uint64
	done bool
}

type Stats struct {
	FullCount int64
}

func (s *Stats) Add(o Stats) {
	s.FullCount += o.FullCount
}

func (s Stats) AddTo(dst *process.ExecutionStats) {
	dst.FullCount += s.FullCount
}
