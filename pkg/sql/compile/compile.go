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
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/matrixorigin/aqlflow/pkg/common/moerr"
	"github.com/matrixorigin/aqlflow/pkg/config"
	"github.com/matrixorigin/aqlflow/pkg/container/batch"
	"github.com/matrixorigin/aqlflow/pkg/logutil"
	"github.com/matrixorigin/aqlflow/pkg/sql/colexec/value_scan"
	"github.com/matrixorigin/aqlflow/pkg/sql/plan"
	"github.com/matrixorigin/aqlflow/pkg/util/metric"
	"github.com/matrixorigin/aqlflow/pkg/vm"
	"github.com/matrixorigin/aqlflow/pkg/vm/fetcher"
	"github.com/matrixorigin/aqlflow/pkg/vm/pipeline"
	"github.com/matrixorigin/aqlflow/pkg/vm/process"
	"github.com/matrixorigin/aqlflow/pkg/vm/remote"
)

// New is used to new an object of compile. The process takes its batch
// size from pu. Freeing the process releases what the query still holds.
func New(pu *config.ParameterUnit, proc *process.Process) *Compile {
	if pu.SV.Execution.BatchRows > 0 {
		proc.Lim.BatchRows = pu.SV.Execution.BatchRows
	}
	return &Compile{
		e:       pu.StorageEngine,
		proc:    proc,
		workers: int(pu.SV.Execution.RemoteWorkers),
	}
}

// Compile builds the execution blocks of qry. fill receives every result
// batch and must not keep it.
func (c *Compile) Compile(qry *plan.Query, fill func(*batch.Batch) error) (err error) {
	defer func() {
		if e := recover(); e != nil {
			err = moerr.ConvertPanicError(c.proc.Ctx, e)
		}
	}()
	if err = qry.Validate(c.proc.Ctx); err != nil {
		return err
	}
	c.qry = qry
	c.fill = fill
	c.engines = plan.NewEngineRegistry(c.proc)
	for _, g := range qry.Traversals {
		if err = g.RegisterEngines(c.proc.Ctx, c.engines, qry.Servers); err != nil {
			return err
		}
	}
	root, err := c.compileNode(c.proc, qry.Root)
	if err != nil {
		return err
	}
	c.p = pipeline.New(root, c.ins)
	return nil
}

func (c *Compile) compileNode(proc *process.Process, n *plan.Node) (fetcher.DependencyProxy, error) {
	switch n.Type {
	case plan.Singleton:
		return vm.NewSingleton(proc, 0), nil
	case plan.Values:
		return c.compileValues(proc, n.Config.(*plan.ValuesNode))
	case plan.Remote:
		return c.compileRemote(proc, n)
	}
	dep, err := c.compileNode(proc, n.Dependency)
	if err != nil {
		return nil, err
	}
	in, infos, err := c.compileInstruction(proc, n, dep.NrRegisters())
	if err != nil {
		closeDependency(dep)
		return nil, err
	}
	c.ins = append(c.ins, in)
	return vm.NewExecutionBlock(proc, in, infos, dep), nil
}

func (c *Compile) compileValues(proc *process.Process, cfg *plan.ValuesNode) (fetcher.DependencyProxy, error) {
	if len(cfg.Rows) == 0 {
		return value_scan.New(cfg.NrRegs), nil
	}
	bat, err := proc.RequestBatch(len(cfg.Rows), cfg.NrRegs)
	if err != nil {
		return nil, err
	}
	for i, r := range cfg.Rows {
		for reg, v := range r {
			bat.SetValue(i, reg, v.Clone())
		}
	}
	return value_scan.New(cfg.NrRegs, bat), nil
}

// compileRemote runs the dependency of n under a process of its own,
// served through the wire encoding by the remote worker pool.
func (c *Compile) compileRemote(proc *process.Process, n *plan.Node) (fetcher.DependencyProxy, error) {
	cfg := n.Config.(*plan.RemoteNode)
	pool, err := c.remotePool()
	if err != nil {
		return nil, err
	}
	rp := process.NewFromProc(proc)
	proc.OnFree(rp.Free)
	c.remotes = append(c.remotes, rp)
	dep, err := c.compileNode(rp, n.Dependency)
	if err != nil {
		return nil, err
	}
	logutil.Debug("remote dependency compiled",
		logutil.QueryField(proc.QueryId()),
		zap.Int("node", n.Id),
		zap.String("server", cfg.Server))
	return remote.New(proc, remote.NewLocalTransport(dep), pool, dep.NrRegisters()), nil
}

func (c *Compile) remotePool() (*ants.Pool, error) {
	if c.pool != nil {
		return c.pool, nil
	}
	pool, err := ants.NewPool(c.workers)
	if err != nil {
		return nil, moerr.ConvertGoError(c.proc.Ctx, err)
	}
	c.proc.OnFree(pool.Release)
	c.pool = pool
	return pool, nil
}

func closeDependency(dep fetcher.DependencyProxy) {
	if c, ok := dep.(interface{ Close() }); ok {
		c.Close()
	}
}

func (c *Compile) String() string {
	if c.p == nil {
		return ""
	}
	return c.p.String()
}

// Run executes the compiled query until its last batch was filled. The
// counters of the query are in Stats afterwards.
func (c *Compile) Run() (err error) {
	if c.p == nil {
		return nil
	}
	start := time.Now()
	logutil.Debug("query started",
		logutil.QueryField(c.proc.QueryId()),
		zap.String("plan", c.qry.String()))
	defer func() {
		c.collectRemotes()
		switch {
		case err == nil:
			metric.QueryDoneCounter.Inc()
			logutil.Info("query finished",
				logutil.QueryField(c.proc.QueryId()),
				logutil.Elapsed(start),
				zap.Int64("writesExecuted", c.proc.Stats.WritesExecuted),
				zap.Int64("writesIgnored", c.proc.Stats.WritesIgnored),
				zap.Int("warnings", len(c.proc.Warnings())))
		case moerr.IsMoErrCode(err, moerr.ErrQueryInterrupted):
			metric.QueryCancelledCounter.Inc()
			logutil.Info("query cancelled",
				logutil.QueryField(c.proc.QueryId()),
				logutil.Elapsed(start))
		default:
			metric.QueryErrorCounter.Inc()
			logutil.Error("query failed",
				logutil.QueryField(c.proc.QueryId()),
				logutil.Elapsed(start),
				zap.Error(err))
		}
	}()
	return c.p.Run(c.proc, c.fill)
}

// collectRemotes rolls the counters and warnings of the remote parts up
// into the query. The pipeline is closed by then, so no remote fetch is
// running.
func (c *Compile) collectRemotes() {
	for _, rp := range c.remotes {
		c.proc.Stats.Add(rp.Stats)
		for _, w := range rp.Warnings() {
			c.proc.AddWarning(w)
		}
	}
	c.remotes = nil
}

func (c *Compile) Stats() process.ExecutionStats {
	return c.proc.Stats
}

// GetAffectedRows is the number of documents the query modified.
func (c *Compile) GetAffectedRows() uint64 {
	return uint64(c.proc.Stats.WritesExecuted)
}
