// Copyright 2022 Matrix Origin
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

import (
	"testing"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRegistryGathers(t *testing.T) {
	QueryDoneCounter.Inc()
	RemoteFetchCounter.WithLabelValues("ok").Inc()

	mfs, err := GetPrometheusRegistry().Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(mfs))
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	require.True(t, names["aql_query_finished_total"])
	require.True(t, names["aql_remote_fetch_total"])
}

func TestCounters(t *testing.T) {
	before := promtest.ToFloat64(BatchReturnedCounter)
	BatchReturnedCounter.Inc()
	require.Equal(t, before+1, promtest.ToFloat64(BatchReturnedCounter))

	g := promtest.ToFloat64(MemQueryAllocatedGauge)
	MemQueryAllocatedGauge.Add(64)
	MemQueryAllocatedGauge.Sub(64)
	require.Equal(t, g, promtest.ToFloat64(MemQueryAllocatedGauge))
}
