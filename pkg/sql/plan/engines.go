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


package plan

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/matrixorigin/aqlflow/pkg/common/moerr"
	"github.com/matrixorigin/aqlflow/pkg/logutil"
	"github.com/matrixorigin/aqlflow/pkg/vm/process"
)

// EngineId addresses a traversal engine on a remote server. It carries no
// meaning beyond that.
type EngineId string

// EngineRegistry maps each traversal and server to the engine the query
// set up there. Two traversals on one server get distinct engines, since
// an engine carries its traversal's collections and options. The registry
// lives as long as the query's process and is torn down when the process
// is freed, whether the query finished or was cancelled.
type EngineRegistry struct {
	sync.Mutex
	queryId string
	engines map[engineKey]EngineId
	closed  bool
}

type engineKey struct {
	node   *GraphNode
	server string
}

func NewEngineRegistry(proc *process.Process) *EngineRegistry {
	r := &EngineRegistry{
		queryId: proc.QueryId(),
		engines: make(map[engineKey]EngineId),
	}
	proc.OnFree(r.teardown)
	return r
}

// Register returns the engine of g on server, creating it on first use.
func (r *EngineRegistry) Register(ctx context.Context, g *GraphNode, server string) (EngineId, error) {
	r.Lock()
	defer r.Unlock()
	if r.closed {
		return "", moerr.NewInvalidState(ctx, "traversal engines of query %s were released", r.queryId)
	}
	key := engineKey{node: g, server: server}
	if id, ok := r.engines[key]; ok {
		return id, nil
	}
	id := EngineId(uuid.New().String())
	r.engines[key] = id
	logutil.Debug("traversal engine registered",
		logutil.QueryField(r.queryId),
		zap.String("traversal", g.String()),
		zap.String("server", server),
		zap.String("engine", string(id)))
	return id, nil
}

func (r *EngineRegistry) Lookup(ctx context.Context, g *GraphNode, server string) (EngineId, error) {
	r.Lock()
	defer r.Unlock()
	id, ok := r.engines[engineKey{node: g, server: server}]
	if !ok {
		return "", moerr.NewEngineNotFound(ctx, server)
	}
	return id, nil
}

// Engines returns a copy of the server to engine map of g.
func (r *EngineRegistry) Engines(g *GraphNode) map[string]EngineId {
	r.Lock()
	defer r.Unlock()
	m := make(map[string]EngineId)
	for k, id := range r.engines {
		if k.node == g {
			m[k.server] = id
		}
	}
	return m
}

func (r *EngineRegistry) Len() int {
	r.Lock()
	defer r.Unlock()
	return len(r.engines)
}

func (r *EngineRegistry) teardown() {
	r.Lock()
	defer r.Unlock()
	if len(r.engines) > 0 {
		logutil.Debug("traversal engines released",
			logutil.QueryField(r.queryId),
			zap.Int("engines", len(r.engines)))
	}
	r.engines = make(map[engineKey]EngineId)
	r.closed = true
}
