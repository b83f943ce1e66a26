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


package compile

import (
	"github.com/panjf2000/ants/v2"

	"github.com/matrixorigin/aqlflow/pkg/container/batch"
	"github.com/matrixorigin/aqlflow/pkg/sql/plan"
	"github.com/matrixorigin/aqlflow/pkg/vm"
	"github.com/matrixorigin/aqlflow/pkg/vm/engine"
	"github.com/matrixorigin/aqlflow/pkg/vm/pipeline"
	"github.com/matrixorigin/aqlflow/pkg/vm/process"
)

// Compile turns one plan into a chain of execution blocks and runs it.
type Compile struct {
	e       engine.Storage
	proc    *process.Process
	workers int
	// pool runs the fetches of remote nodes, created on first use.
	pool *ants.Pool

	qry  *plan.Query
	fill func(*batch.Batch) error
	ins  vm.Instructions
	// remotes are the processes of the remote parts of the query.
	remotes []*process.Process
	engines *plan.EngineRegistry
	p       *pipeline.Pipeline
}
