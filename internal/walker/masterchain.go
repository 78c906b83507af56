// Copyright 2024 The Erigon Authors
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

package walker

import (
	"context"
	"errors"
	"fmt"

	"github.com/tonnet/archivenode/internal/blockhandle"
	"github.com/tonnet/archivenode/internal/blockid"
	"github.com/tonnet/archivenode/internal/engine"
)

// RunMasterchain drives spec §4.3's masterchain walk starting at start,
// looping while the engine reports working. A step failure is logged and
// retried from the same position — the walker never skips a masterchain
// block (spec §5: "masterchain apply order is strictly monotone by
// seq_no; enforced by the walker never advancing past a failing apply").
func (w *Walker) RunMasterchain(ctx context.Context, start blockid.Id) error {
	current := start
	limiter := w.retryLimiter()

	for w.engine.IsWorking() {
		if err := ctx.Err(); err != nil {
			return err
		}

		next, err := w.masterchainStep(ctx, current)
		if err != nil {
			w.log.Debug("masterchain step failed, retrying", "seq_no", current.SeqNo, "err", err)
			if werr := limiter.Wait(ctx); werr != nil {
				return werr
			}
			continue
		}
		current = next
	}
	return nil
}

// masterchainStep advances current by exactly one masterchain block,
// implementing spec §4.3's masterchain walk steps 1–5.
func (w *Walker) masterchainStep(ctx context.Context, current blockid.Id) (blockid.Id, error) {
	handle, err := w.handles.Load(w.kv, current.RootHash)
	switch {
	case err == nil:
		if next1, ok := handle.Next1(); ok {
			if err := w.engine.DownloadAndApplyBlock(ctx, next1, next1.SeqNo, false, 0); err != nil {
				return blockid.Id{}, fmt.Errorf("walker: download and apply cached next1 %s: %w", next1, err)
			}
			return next1, nil
		}
	case errors.Is(err, blockhandle.ErrNotFound):
		// No handle yet for current: fall through to the download path.
	default:
		return blockid.Id{}, fmt.Errorf("walker: load handle %s: %w", current, err)
	}

	downloaded, err := w.engine.DownloadNextMasterchainBlock(ctx, current)
	if err != nil {
		return blockid.Id{}, fmt.Errorf("walker: download next masterchain block after %s: %w", current, err)
	}
	if downloaded.Id.SeqNo != current.SeqNo+1 {
		return blockid.Id{}, fmt.Errorf("%w: got %d, want %d", ErrSeqNoGap, downloaded.Id.SeqNo, current.SeqNo+1)
	}
	if downloaded.IsLink {
		return blockid.Id{}, ErrLinkProofForMasterchain
	}

	virtBlock, virtInfo, _, err := w.crypto.PreCheckBlockProof(downloaded.Proof)
	if err != nil {
		return blockid.Id{}, fmt.Errorf("walker: pre-check block proof for %s: %w", downloaded.Id, err)
	}

	prevState, err := w.engine.WaitState(ctx, current, w.cfg.WaitTimeout, false)
	if err != nil {
		return blockid.Id{}, fmt.Errorf("walker: wait prev state %s: %w", current, err)
	}
	if err := w.crypto.CheckWithMasterState(downloaded.Proof, prevState, virtBlock, virtInfo); err != nil {
		return blockid.Id{}, fmt.Errorf("walker: check with master state for %s: %w", downloaded.Id, err)
	}

	newHandle, err := w.storeAndLink(current, downloaded)
	if err != nil {
		return blockid.Id{}, err
	}

	if err := w.engine.ApplyBlockExt(ctx, newHandle, downloaded, downloaded.Id.SeqNo, false, 0); err != nil {
		return blockid.Id{}, fmt.Errorf("walker: apply masterchain block %s: %w", downloaded.Id, err)
	}
	return downloaded.Id, nil
}

// storeAndLink persists a downloaded masterchain block's body and proof,
// creates its handle if one does not exist yet, and records it as prev's
// next1 successor edge so a later masterchain walk iteration over the same
// position can skip straight to the engine-apply call (spec §4.3 step 1).
// It returns the downloaded block's own handle, the one ApplyBlockExt must
// be called against.
func (w *Walker) storeAndLink(prev blockid.Id, downloaded engine.DownloadedBlock) (*blockhandle.Handle, error) {
	batch := w.kv.NewBatch()

	handle, err := w.handles.GetOrCreate(batch, downloaded.Id)
	if err != nil {
		_ = batch.Close()
		return nil, fmt.Errorf("walker: get or create handle %s: %w", downloaded.Id, err)
	}
	if err := w.entries.Put(batch, blockid.EntryId{Block: downloaded.Id, Kind: blockid.KindBlock}, downloaded.Body); err != nil {
		_ = batch.Close()
		return nil, fmt.Errorf("walker: store block body %s: %w", downloaded.Id, err)
	}
	handle.TrySet(blockhandle.HasData)
	if err := w.entries.Put(batch, blockid.EntryId{Block: downloaded.Id, Kind: blockid.KindProof}, downloaded.Proof); err != nil {
		_ = batch.Close()
		return nil, fmt.Errorf("walker: store block proof %s: %w", downloaded.Id, err)
	}
	handle.TrySet(blockhandle.HasProof)
	if err := w.handles.Persist(batch, handle); err != nil {
		_ = batch.Close()
		return nil, fmt.Errorf("walker: persist handle %s: %w", downloaded.Id, err)
	}

	prevHandle, err := w.handles.GetOrCreate(batch, prev)
	if err != nil {
		_ = batch.Close()
		return nil, fmt.Errorf("walker: get or create prev handle %s: %w", prev, err)
	}
	prevHandle.SetNext1(downloaded.Id)
	if err := w.handles.Persist(batch, prevHandle); err != nil {
		_ = batch.Close()
		return nil, fmt.Errorf("walker: persist prev handle %s: %w", prev, err)
	}

	if err := batch.Commit(); err != nil {
		_ = batch.Close()
		return nil, fmt.Errorf("walker: commit masterchain store batch for %s: %w", downloaded.Id, err)
	}
	if err := batch.Close(); err != nil {
		return nil, err
	}
	return handle, nil
}
