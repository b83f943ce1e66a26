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

package value_scan

import (
	"github.com/matrixorigin/aqlflow/pkg/container/batch"
)

// Step is one answer of a value scan: either a WAITING or a batch.
type Step struct {
	Wait bool
	Bat  *batch.Batch
}

// Argument replays prepared batches as the upstream of a block. It holds
// one reference to each batch until the batch is handed out.
type Argument struct {
	NrRegs int
	Steps  []Step

	ctr container
}

type container struct {
	pos   int
	calls int
}
