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


package restrict

import "github.com/matrixorigin/aqlflow/pkg/vm/process"

type Argument struct {
	// CondReg holds the filter condition. Rows whose value is not truthy
	// are dropped.
	CondReg int

	ctr container
}

type container struct {
	done bool
}

type Stats struct {
	Filtered int64
}

func (s *Stats) Add(o Stats) {
	s.Filtered += o.Filtered
}

func (s Stats) AddTo(dst *process.ExecutionStats) {
	dst.Filtered += s.Filtered
}
