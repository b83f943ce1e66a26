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

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/aqlflow/pkg/common/moerr"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "aql.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadParametersDefaults(t *testing.T) {
	p, err := LoadParameters(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, int64(defaultBatchRows), p.Execution.BatchRows)
	require.Equal(t, int64(0), p.Execution.MemoryLimit)
	require.Equal(t, int64(defaultRemoteWorkers), p.Execution.RemoteWorkers)
	require.Equal(t, EngineMemory, p.Storage.Engine)
	require.Equal(t, "console", p.Log.Format)
}

func TestLoadParametersFromFile(t *testing.T) {
	path := writeConfig(t, `
[log]
level = "debug"
format = "json"

[execution]
batchRows = 64
memoryLimit = 1048576

[storage]
engine = "pebble"
dir = "/tmp/aql"
`)
	p, err := LoadParameters(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, "debug", p.Log.Level)
	require.Equal(t, "json", p.Log.Format)
	require.Equal(t, int64(64), p.Execution.BatchRows)
	require.Equal(t, int64(1<<20), p.Execution.MemoryLimit)
	require.Equal(t, int64(defaultRemoteWorkers), p.Execution.RemoteWorkers)
	require.Equal(t, EnginePebble, p.Storage.Engine)
	require.Equal(t, "/tmp/aql", p.Storage.Dir)
}

func TestLoadParametersRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "negative batch rows", content: "[execution]\nbatchRows = -1\n"},
		{name: "negative memory", content: "[execution]\nmemoryLimit = -5\n"},
		{name: "unknown engine", content: "[storage]\nengine = \"rocks\"\n"},
		{name: "bad format", content: "[log]\nformat = \"xml\"\n"},
		{name: "not toml", content: "[execution\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadParameters(context.Background(), writeConfig(t, tt.content))
			require.Error(t, err)
			require.True(t, moerr.IsMoErrCode(err, moerr.ErrBadConfig))
		})
	}
}

func TestParameterUnit(t *testing.T) {
	sv := &Parameters{}
	sv.SetDefaultValues()
	pu := NewParameterUnit(sv, nil)
	ctx := WithParameterUnit(context.Background(), pu)
	require.Same(t, pu, GetParameterUnit(ctx))
	require.Panics(t, func() { GetParameterUnit(context.Background()) })
}
