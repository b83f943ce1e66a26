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


package main

import (
	"context"
	"io"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matrixorigin/aqlflow/pkg/config"
	"github.com/matrixorigin/aqlflow/pkg/logutil"
	"github.com/matrixorigin/aqlflow/pkg/vm/engine"
	"github.com/matrixorigin/aqlflow/pkg/vm/engine/memEngine"
	"github.com/matrixorigin/aqlflow/pkg/vm/engine/pb"
)

func generateConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "generate-config",
		Short: "Print a configuration file holding the default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return generateConfig(cmd.OutOrStdout())
		},
	}
}

func generateConfig(w io.Writer) error {
	sv, err := config.LoadParameters(context.Background(), "")
	if err != nil {
		return err
	}
	return toml.NewEncoder(w).Encode(sv)
}

// loadParameters reads the configuration and installs the logger it
// describes.
func loadParameters(ctx context.Context, path string) (*config.Parameters, error) {
	sv, err := config.LoadParameters(ctx, path)
	if err != nil {
		return nil, err
	}
	logutil.SetupMOLogger(&sv.Log)
	return sv, nil
}

func openStorage(sv *config.Parameters) (engine.Storage, error) {
	if sv.Storage.Engine == config.EnginePebble {
		return pb.New(sv.Storage.Dir)
	}
	return memEngine.New(), nil
}
