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

package batch

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"

	"github.com/pierrec/lz4"

	"github.com/matrixorigin/aqlflow/pkg/common/moerr"
	"github.com/matrixorigin/aqlflow/pkg/container/types"
)

// MarshalBinary encodes the visible rows as an lz4 frame holding
//
//	uvarint rows | uvarint regs | uvarint shadows | (uvarint row, uvarint depth)* | cells
//
// Moved cells are written as empty ones.
func (bat *Batch) MarshalBinary() ([]byte, error) {
	shadows := bat.ShadowRows()
	n := bat.rowCount * bat.nrRegs
	size := 16 + len(shadows)*4 + n*4
	for i := 0; i < n; i++ {
		size += int(bat.vals[i].Size())
	}
	raw := make([]byte, 0, size)
	raw = binary.AppendUvarint(raw, uint64(bat.rowCount))
	raw = binary.AppendUvarint(raw, uint64(bat.nrRegs))
	raw = binary.AppendUvarint(raw, uint64(len(shadows)))
	for _, r := range shadows {
		raw = binary.AppendUvarint(raw, uint64(r))
		raw = binary.AppendUvarint(raw, uint64(bat.depths[r]))
	}
	for i := 0; i < n; i++ {
		raw = types.AppendValue(raw, bat.vals[i])
	}

	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(raw); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBatch decodes data produced by MarshalBinary into a new batch
// charged to this manager. A frame without rows decodes to nil.
func (m *Manager) UnmarshalBatch(ctx context.Context, data []byte) (*Batch, error) {
	raw, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
	if err != nil {
		return nil, moerr.NewInvalidInput(ctx, "corrupted batch frame: %v", err)
	}
	var hdr [3]uint64
	for i := range hdr {
		v, n := binary.Uvarint(raw)
		if n <= 0 {
			return nil, moerr.NewUnexpectedEOF(ctx, "batch header")
		}
		hdr[i], raw = v, raw[n:]
	}
	rows, regs, nshadows := int(hdr[0]), int(hdr[1]), int(hdr[2])
	if nshadows > rows {
		return nil, moerr.NewInvalidInput(ctx, "batch has %d shadow rows but %d rows", nshadows, rows)
	}
	if rows == 0 {
		return nil, nil
	}
	bat, err := m.RequestBatch(ctx, rows, regs)
	if err != nil {
		return nil, err
	}
	shadowRows := make([][2]uint64, nshadows)
	for i := range shadowRows {
		for j := 0; j < 2; j++ {
			v, n := binary.Uvarint(raw)
			if n <= 0 {
				bat.Clean()
				return nil, moerr.NewUnexpectedEOF(ctx, "batch shadow rows")
			}
			shadowRows[i][j], raw = v, raw[n:]
		}
	}
	for i := 0; i < rows*regs; i++ {
		v, n, err := types.DecodeValue(raw)
		if err != nil {
			bat.Clean()
			return nil, err
		}
		bat.vals[i], raw = v, raw[n:]
	}
	for _, sr := range shadowRows {
		if sr[0] >= uint64(rows) || sr[1] == 0 {
			bat.Clean()
			return nil, moerr.NewInvalidInput(ctx, "bad shadow row %d depth %d", sr[0], sr[1])
		}
		bat.MakeShadowRow(int(sr[0]), uint32(sr[1]))
	}
	return bat, nil
}
