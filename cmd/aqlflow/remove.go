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
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matrixorigin/aqlflow/pkg/common/moerr"
	"github.com/matrixorigin/aqlflow/pkg/common/mpool"
	"github.com/matrixorigin/aqlflow/pkg/config"
	"github.com/matrixorigin/aqlflow/pkg/container/batch"
	"github.com/matrixorigin/aqlflow/pkg/logutil"
	"github.com/matrixorigin/aqlflow/pkg/sql/compile"
	"github.com/matrixorigin/aqlflow/pkg/sql/plan"
	"github.com/matrixorigin/aqlflow/pkg/vm/engine"
	"github.com/matrixorigin/aqlflow/pkg/vm/process"
)

type removeOptions struct {
	config     string
	docs       int
	collection string
	remote     bool
}

func removeCommand() *cobra.Command {
	var opts removeOptions
	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Seed a collection, then remove every document returning the old ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sv, err := loadParameters(cmd.Context(), opts.config)
			if err != nil {
				return err
			}
			return runRemove(cmd.Context(), sv, opts, cmd.OutOrStdout())
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.config, "config", "", "configuration file, defaults apply when empty")
	flags.IntVar(&opts.docs, "docs", 1000, "number of documents to seed")
	flags.StringVar(&opts.collection, "collection", "users", "collection to seed and empty")
	flags.BoolVar(&opts.remote, "remote", false, "read the collection through a remote dependency")
	return cmd
}

// removeAllQuery is FOR d IN coll REMOVE d IN coll RETURN OLD.
func removeAllQuery(coll string, viaRemote bool) *plan.Query {
	c := plan.NewChain(plan.Singleton, nil).
		Then(plan.EnumerateCollection, &plan.EnumerateCollectionNode{Collection: coll, OutReg: 0})
	if viaRemote {
		c.Then(plan.Remote, &plan.RemoteNode{Server: "local"})
	}
	return c.
		Then(plan.Remove, &plan.RemoveNode{Collection: coll, InReg: 0, OutReg: 1, ReturnOld: true}).
		Then(plan.Return, &plan.ReturnNode{InReg: 1, DoCount: true}).
		Query()
}

func seedCollection(ctx context.Context, e engine.Storage, coll string, n int) error {
	if err := e.CreateCollection(ctx, coll); err != nil && !moerr.IsMoErrCode(err, moerr.ErrDuplicate) {
		return err
	}
	for i := 0; i < n; i++ {
		doc := fmt.Sprintf(`{"_key":"%d","value":%d}`, i, i)
		if _, err := e.Insert(ctx, coll, []byte(doc)); err != nil {
			return err
		}
	}
	return nil
}

func runRemove(ctx context.Context, sv *config.Parameters, opts removeOptions, w io.Writer) (err error) {
	if opts.docs < 0 {
		return moerr.NewInvalidInput(ctx, "cannot seed %d documents", opts.docs)
	}
	e, err := openStorage(sv)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := e.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err = seedCollection(ctx, e, opts.collection, opts.docs); err != nil {
		return err
	}
	logutil.Info("collection seeded",
		zap.String("collection", opts.collection),
		zap.Int("documents", opts.docs),
		zap.String("engine", sv.Storage.Engine))

	mp, err := mpool.NewMPool("query", sv.Execution.MemoryLimit)
	if err != nil {
		return err
	}
	proc := process.New(ctx, mp, nil)
	defer proc.Free()

	var returned int
	c := compile.New(config.NewParameterUnit(sv, e), proc)
	if err = c.Compile(removeAllQuery(opts.collection, opts.remote), func(bat *batch.Batch) error {
		returned += bat.RowCount()
		return nil
	}); err != nil {
		return err
	}
	if err = c.Run(); err != nil {
		return err
	}

	left, err := e.Count(ctx, opts.collection)
	if err != nil {
		return err
	}
	st := c.Stats()
	fmt.Fprintf(w, "plan: %s\n", c)
	fmt.Fprintf(w, "removed %d documents, returned %d, %d left\n", c.GetAffectedRows(), returned, left)
	fmt.Fprintf(w, "writesExecuted=%d writesIgnored=%d scannedFull=%d warnings=%d\n",
		st.WritesExecuted, st.WritesIgnored, st.ScannedFull, len(proc.Warnings()))
	return nil
}
