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


package pipeline

import (
	"github.com/matrixorigin/aqlflow/pkg/vm"
	"github.com/matrixorigin/aqlflow/pkg/vm/fetcher"
)

// Pipeline drives a chain of execution blocks from its top.
type Pipeline struct {
	// root is pulled until it reports DONE.
	root fetcher.DependencyProxy
	// instructions of every block in the chain, leaf first.
	instructions vm.Instructions
}
