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


package remote

import (
	"context"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/matrixorigin/aqlflow/pkg/vm/process"
)

// Transport reaches the producer of a remote block, a shard of the
// cluster. Fetch may block. It is called from one pool worker at a time
// and returns the encoded block, if any.
type Transport interface {
	Fetch(ctx context.Context, atMost int) (process.ExecState, []byte, error)
	Close() error
}

// Proxy is the dependency of a block whose input is produced remotely.
// A pull starts a fetch on the worker pool and answers WAITING until the
// reply arrived. The process is notified when it does.
type Proxy struct {
	proc      *process.Process
	transport Transport
	pool      *ants.Pool
	nrRegs    int

	mu      sync.Mutex
	pending bool
	reply   *reply

	wg   sync.WaitGroup
	done bool
}

type reply struct {
	state process.ExecState
	data  []byte
	err   error
}
