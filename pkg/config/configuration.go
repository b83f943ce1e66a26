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

	"github.com/BurntSushi/toml"

	"github.com/matrixorigin/aqlflow/pkg/common/moerr"
	"github.com/matrixorigin/aqlflow/pkg/logutil"
	"github.com/matrixorigin/aqlflow/pkg/vm/engine"
)

type ConfigurationKeyType int

const (
	ParameterUnitKey ConfigurationKeyType = 1
)

const (
	EngineMemory = "memory"
	EnginePebble = "pebble"

	defaultBatchRows     = 1000
	defaultRemoteWorkers = 4
)

// ExecutionParameters bound a single query run.
type ExecutionParameters struct {
	//rows per output batch. default: 1000
	BatchRows int64 `toml:"batchRows"`

	//query memory limit in bytes, 0 means unlimited. default: 0
	MemoryLimit int64 `toml:"memoryLimit"`

	//goroutines serving remote dependency fetches. default: 4
	RemoteWorkers int64 `toml:"remoteWorkers"`
}

// StorageParameters select the document store.
type StorageParameters struct {
	//memory or pebble. default: memory
	Engine string `toml:"engine"`

	//pebble data directory, empty keeps pebble in memory
	Dir string `toml:"dir"`
}

// Parameters is the content of a configuration file.
type Parameters struct {
	Log       logutil.LogConfig   `toml:"log"`
	Execution ExecutionParameters `toml:"execution"`
	Storage   StorageParameters   `toml:"storage"`
}

// SetDefaultValues fills every unset field.
func (p *Parameters) SetDefaultValues() {
	if p.Log.Level == "" {
		p.Log.Level = "info"
	}
	if p.Log.Format == "" {
		p.Log.Format = "console"
	}
	if p.Execution.BatchRows == 0 {
		p.Execution.BatchRows = defaultBatchRows
	}
	if p.Execution.RemoteWorkers == 0 {
		p.Execution.RemoteWorkers = defaultRemoteWorkers
	}
	if p.Storage.Engine == "" {
		p.Storage.Engine = EngineMemory
	}
}

// Validate rejects values that cannot run a query.
func (p *Parameters) Validate(ctx context.Context) error {
	if p.Execution.BatchRows < 1 {
		return moerr.NewBadConfig(ctx, "batchRows must be positive, got %d", p.Execution.BatchRows)
	}
	if p.Execution.MemoryLimit < 0 {
		return moerr.NewBadConfig(ctx, "memoryLimit must not be negative, got %d", p.Execution.MemoryLimit)
	}
	if p.Execution.RemoteWorkers < 1 {
		return moerr.NewBadConfig(ctx, "remoteWorkers must be positive, got %d", p.Execution.RemoteWorkers)
	}
	switch p.Storage.Engine {
	case EngineMemory, EnginePebble:
	default:
		return moerr.NewBadConfig(ctx, "unknown storage engine %q", p.Storage.Engine)
	}
	if p.Log.Format != "console" && p.Log.Format != "json" {
		return moerr.NewBadConfig(ctx, "unsupported log format %q", p.Log.Format)
	}
	return nil
}

// LoadParameters decodes path, applies defaults and validates the result.
// An empty path yields the defaults.
func LoadParameters(ctx context.Context, path string) (*Parameters, error) {
	p := &Parameters{}
	if path != "" {
		if _, err := toml.DecodeFile(path, p); err != nil {
			return nil, moerr.NewBadConfig(ctx, "%s: %v", path, err)
		}
	}
	p.SetDefaultValues()
	if err := p.Validate(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

type ParameterUnit struct {
	SV *Parameters

	//Storage Engine
	StorageEngine engine.Storage
}

func NewParameterUnit(sv *Parameters, storageEngine engine.Storage) *ParameterUnit {
	return &ParameterUnit{
		SV:            sv,
		StorageEngine: storageEngine,
	}
}

// WithParameterUnit attaches pu to ctx.
func WithParameterUnit(ctx context.Context, pu *ParameterUnit) context.Context {
	return context.WithValue(ctx, ParameterUnitKey, pu)
}

// GetParameterUnit gets the configuration from the context.
func GetParameterUnit(ctx context.Context) *ParameterUnit {
	pu, _ := ctx.Value(ParameterUnitKey).(*ParameterUnit)
	if pu == nil {
		panic("parameter unit is invalid")
	}
	return pu
}
