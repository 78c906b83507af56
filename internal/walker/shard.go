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
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	"github.com/tonnet/archivenode/internal/blockhandle"
	"github.com/tonnet/archivenode/internal/blockid"
)

// RunShardchain drives spec §4.3's shardchain walk: it follows applied
// masterchain blocks and, for each, dispatches a shard-block batch under a
// capacity-1 semaphore so mc ordering is strictly serialized across
// batches while blocks within one batch apply concurrently.
func (w *Walker) RunShardchain(ctx context.Context, startMc blockid.Id) error {
	handle, err := w.handles.Load(w.kv, startMc.RootHash)
	if err != nil {
		return fmt.Errorf("walker: load starting mc handle %s: %w", startMc, err)
	}

	for w.engine.IsWorking() {
		if err := ctx.Err(); err != nil {
			return err
		}

		next, genUtime, err := w.engine.WaitNextAppliedMcBlock(ctx, handle, w.cfg.WaitTimeout)
		if err != nil {
			w.log.Debug("wait next applied mc block failed, retrying", "err", err)
			continue
		}

		if err := w.shardBatchSem.Acquire(ctx, 1); err != nil {
			return err
		}
		// The walker moves on as soon as the permit is acquired; the batch
		// itself runs off-thread and releases the permit on completion, so
		// the next iteration's Acquire blocks until this batch is done
		// (spec §4.3 step 3: "the previous batch must finish before the
		// next begins").
		go func(mc *blockhandle.Handle, utime uint32) {
			defer w.shardBatchSem.Release(1)
			if err := w.loadShardBlocks(ctx, mc, utime); err != nil {
				w.log.Debug("shard batch failed", "mc_seq_no", mc.Id().SeqNo, "err", err)
			}
		}(next, genUtime)

		handle = next
	}
	return nil
}

// loadShardBlocks implements spec §4.3's load_shard_blocks: enumerate mc's
// referenced shard blocks, skip already-applied ones, and spawn a
// retry-until-success task per remaining block. An errgroup error, or ctx
// being cancelled (the retry tasks themselves return nil on cancellation),
// aborts this batch without touching shards_client_mc_block_id/utime.
func (w *Walker) loadShardBlocks(ctx context.Context, mc *blockhandle.Handle, genUtime uint32) error {
	ids, err := w.engine.LoadShardBlockIds(ctx, mc.Id())
	if err != nil {
		return fmt.Errorf("walker: load shard block ids for mc %s: %w", mc.Id(), err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.cfg.ShardBatchConcurrency)

	mcSeqNo := mc.Id().SeqNo
	for _, id := range ids {
		handle, err := w.handles.GetOrCreate(w.kv, id)
		if err != nil {
			return fmt.Errorf("walker: get or create shard handle %s: %w", id, err)
		}
		if handle.Has(blockhandle.IsApplied) {
			continue
		}
		g.Go(func() error {
			return w.downloadAndApplyWithRetry(gctx, id, mcSeqNo)
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("walker: shard batch for mc %s: %w", mc.Id(), err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("walker: shard batch for mc %s: %w", mc.Id(), err)
	}

	if err := w.engine.StoreShardsClientMcBlockId(ctx, mc.Id()); err != nil {
		return fmt.Errorf("walker: store shards client mc block id %s: %w", mc.Id(), err)
	}
	if err := w.engine.StoreShardsClientMcBlockUtime(ctx, genUtime); err != nil {
		return fmt.Errorf("walker: store shards client mc block utime: %w", err)
	}
	return nil
}

// downloadAndApplyWithRetry retries DownloadAndApplyBlock indefinitely
// (spec §4.3: "retries indefinitely until ... succeeds") with exponential
// backoff, stopping early only on shutdown (engine.IsWorking() false) or
// context cancellation — neither of which is reported as an error (spec
// §5's Cancellation / §7's Shutdown: "not an error; the walker exits
// cleanly").
func (w *Walker) downloadAndApplyWithRetry(ctx context.Context, id blockid.Id, mcSeqNo uint32) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = w.cfg.ShardBlockBackoffInitial
	b.MaxInterval = w.cfg.ShardBlockBackoffMax
	b.MaxElapsedTime = 0 // no overall deadline: retries are unbounded per block

	for attempt := 0; ; attempt++ {
		if !w.engine.IsWorking() || ctx.Err() != nil {
			return nil
		}

		err := w.engine.DownloadAndApplyBlock(ctx, id, mcSeqNo, true, attempt)
		if err == nil {
			return nil
		}
		w.log.Debug("shard block apply failed, retrying", "id", id, "attempt", attempt, "err", err)

		d := b.NextBackOff()
		if d == backoff.Stop {
			d = w.cfg.ShardBlockBackoffMax
		}
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil
		}
	}
}
