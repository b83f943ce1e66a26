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

	"github.com/matrixorigin/aqlflow/pkg/vm/fetcher"
	"github.com/matrixorigin/aqlflow/pkg/vm/process"
)

// LocalTransport serves a dependency of this process as if it were
// remote: every block goes through the wire encoding.
type LocalTransport struct {
	mu  sync.Mutex
	src fetcher.DependencyProxy
}

func NewLocalTransport(src fetcher.DependencyProxy) *LocalTransport {
	return &LocalTransport{src: src}
}

func (t *LocalTransport) Fetch(ctx context.Context, atMost int) (process.ExecState, []byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	select {
	case <-ctx.Done():
		return process.ExecDone, nil, ctx.Err()
	default:
	}
	state, bat, err := t.src.FetchBlock(atMost)
	if err != nil || bat == nil {
		return state, nil, err
	}
	defer bat.Clean()
	data, err := bat.MarshalBinary()
	if err != nil {
		return process.ExecDone, nil, err
	}
	return state, data, nil
}

func (t *LocalTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if c, ok := t.src.(interface{ Close() }); ok {
		c.Close()
	}
	return nil
}
