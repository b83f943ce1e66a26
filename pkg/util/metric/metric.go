// Copyright 2023 Matrix Origin
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

package metric

import "github.com/prometheus/client_golang/prometheus"

var registry = prometheus.NewRegistry()

// GetPrometheusRegistry returns the registry every engine metric is
// registered with.
func GetPrometheusRegistry() *prometheus.Registry {
	return registry
}

var (
	memMPoolAllocatedSizeGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "aql",
			Subsystem: "mem",
			Name:      "mpool_allocated_size",
			Help:      "Bytes currently charged against query memory pools.",
		}, []string{"type"})

	MemQueryAllocatedGauge = memMPoolAllocatedSizeGauge.WithLabelValues("query")

	MemOOMCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "aql",
			Subsystem: "mem",
			Name:      "oom_total",
			Help:      "Total number of allocations rejected by a memory limit.",
		})
)

var (
	batchAllocCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aql",
			Subsystem: "batch",
			Name:      "alloc_total",
			Help:      "Total number of batches handed out, by origin.",
		}, []string{"origin"})

	BatchNewCounter    = batchAllocCounter.WithLabelValues("new")
	BatchReusedCounter = batchAllocCounter.WithLabelValues("pool")

	BatchReturnedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "aql",
			Subsystem: "batch",
			Name:      "returned_total",
			Help:      "Total number of batches whose last reference was released.",
		})
)

var (
	queryCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aql",
			Subsystem: "query",
			Name:      "finished_total",
			Help:      "Total number of queries by outcome.",
		}, []string{"outcome"})

	QueryDoneCounter      = queryCounter.WithLabelValues("done")
	QueryErrorCounter     = queryCounter.WithLabelValues("error")
	QueryCancelledCounter = queryCounter.WithLabelValues("cancelled")

	QueryWaitingCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "aql",
			Subsystem: "query",
			Name:      "waiting_total",
			Help:      "Total number of pulls that suspended with WAITING.",
		})

	RemoteFetchCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aql",
			Subsystem: "remote",
			Name:      "fetch_total",
			Help:      "Total number of remote block fetches by status.",
		}, []string{"status"})
)

func init() {
	registry.MustRegister(memMPoolAllocatedSizeGauge)
	registry.MustRegister(MemOOMCounter)
	registry.MustRegister(batchAllocCounter)
	registry.MustRegister(BatchReturnedCounter)
	registry.MustRegister(queryCounter)
	registry.MustRegister(QueryWaitingCounter)
	registry.MustRegister(RemoteFetchCounter)
}
