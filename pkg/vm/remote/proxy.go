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
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/matrixorigin/aqlflow/pkg/common/moerr"
	"github.com/matrixorigin/aqlflow/pkg/container/batch"
	"github.com/matrixorigin/aqlflow/pkg/logutil"
	"github.com/matrixorigin/aqlflow/pkg/util/metric"
	"github.com/matrixorigin/aqlflow/pkg/vm/fetcher"
	"github.com/matrixorigin/aqlflow/pkg/vm/process"
)

var _ fetcher.DependencyProxy = new(Proxy)

func New(proc *process.Process, transport Transport, pool *ants.Pool, nrRegs int) *Proxy {
	return &Proxy{
		proc:      proc,
		transport: transport,
		pool:      pool,
		nrRegs:    nrRegs,
	}
}

func (p *Proxy) NrRegisters() int {
	return p.nrRegs
}

func (p *Proxy) FetchBlock(atMost int) (process.ExecState, *batch.Batch, error) {
	if p.done {
		return process.ExecDone, nil, nil
	}
	p.mu.Lock()
	r, pending := p.reply, p.pending
	p.reply = nil
	p.mu.Unlock()

	if r != nil {
		state, bat, err := p.deliver(r)
		if err != nil || state != process.ExecWaiting {
			return state, bat, err
		}
	} else if pending {
		return process.ExecWaiting, nil, nil
	}
	if err := p.start(atMost); err != nil {
		return process.ExecDone, nil, err
	}
	return process.ExecWaiting, nil, nil
}

func (p *Proxy) start(atMost int) error {
	p.mu.Lock()
	p.pending = true
	p.mu.Unlock()

	p.wg.Add(1)
	err := p.pool.Submit(func() {
		defer p.wg.Done()
		state, data, err := p.transport.Fetch(p.proc.Ctx, atMost)
		p.mu.Lock()
		p.reply = &reply{state: state, data: data, err: err}
		p.pending = false
		p.mu.Unlock()
		p.proc.Notify()
	})
	if err != nil {
		p.wg.Done()
		p.done = true
		metric.RemoteFetchCounter.WithLabelValues("error").Inc()
		return moerr.NewRemoteFailure(p.proc.Ctx, err)
	}
	return nil
}

func (p *Proxy) deliver(r *reply) (process.ExecState, *batch.Batch, error) {
	if r.err != nil {
		p.done = true
		metric.RemoteFetchCounter.WithLabelValues("error").Inc()
		logutil.Warn("remote fetch failed",
			logutil.QueryField(p.proc.QueryId()),
			zap.Error(r.err))
		if moerr.IsMoErrCode(r.err, moerr.ErrQueryInterrupted) {
			return process.ExecDone, nil, r.err
		}
		return process.ExecDone, nil, moerr.NewRemoteFailure(p.proc.Ctx, r.err)
	}
	var bat *batch.Batch
	if len(r.data) > 0 {
		var err error
		if bat, err = p.proc.Manager().UnmarshalBatch(p.proc.Ctx, r.data); err != nil {
			p.done = true
			metric.RemoteFetchCounter.WithLabelValues("error").Inc()
			return process.ExecDone, nil, err
		}
	}
	metric.RemoteFetchCounter.WithLabelValues("ok").Inc()
	if r.state == process.ExecDone {
		p.done = true
	}
	return r.state, bat, nil
}

// Close waits for a fetch in flight and closes the transport.
func (p *Proxy) Close() {
	p.wg.Wait()
	p.mu.Lock()
	p.reply = nil
	p.mu.Unlock()
	if err := p.transport.Close(); err != nil {
		logutil.Warn("close remote transport failed",
			logutil.QueryField(p.proc.QueryId()),
			zap.Error(err))
	}
}
