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


package deletion

import (
	"github.com/matrixorigin/aqlflow/pkg/vm/engine"
	"github.com/matrixorigin/aqlflow/pkg/vm/process"
)

// Argument configures a remove. InReg holds the document, or its key,
// to remove from Collection.
type Argument struct {
	Collection string
	InReg      int
	// OutReg receives the removed document when ReturnOld is set.
	OutReg     int
	ReturnOld  bool
	IgnoreRevs bool
	// FailFast turns a missing or conflicting document into a query error
	// instead of a warning.
	FailFast bool
	Storage  engine.Storage

	ctr container
}

type container struct {
	done bool
}

type Stats struct {
	WritesExecuted int64
	WritesIgnored  int64
}

func (s *Stats) Add(o Stats) {
	s.WritesExecuted += o.WritesExecuted
	s.WritesIgnored += o.WritesIgnored
}

func (s Stats) AddTo(dst *process.ExecutionStats) {
	dst.WritesExecuted += s.WritesExecuted
	dst.WritesIgnored += s.WritesIgnored
}
