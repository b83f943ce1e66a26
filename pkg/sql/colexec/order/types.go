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


package order

import "github.com/matrixorigin/aqlflow/pkg/container/matrix"

type SortReg struct {
	Reg int
	Asc bool
}

// Argument sorts its whole input by Regs. Rows comparing equal keep their
// input order, and each subquery run is sorted on its own.
type Argument struct {
	Regs []SortReg

	ctr container
}

type container struct {
	mat    *matrix.Matrix
	order  []matrix.RowIndex
	pos    int
	sorted bool
}
