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

// Package engine declares the Engine collaborator (spec §6): peer-to-peer
// download, block application, and shard-client bookkeeping. None of it is
// implemented here — spec §1 puts transport and state-transition validation
// out of this core's scope — but the Walker and Broadcast Validator are
// written against this interface so a real download/apply stack can be
// plugged in without touching either.
package engine

import (
	"context"
	"time"

	"github.com/tonnet/archivenode/internal/blockhandle"
	"github.com/tonnet/archivenode/internal/blockid"
)

// DownloadedBlock is a block body plus whichever proof flavor came with it.
// IsLink distinguishes a shardchain proof-link from a full masterchain
// proof, matching spec §3/§4.3's Block/Proof/ProofLink distinction.
type DownloadedBlock struct {
	Id     blockid.Id
	Body   []byte
	Proof  []byte
	IsLink bool
}

// ShardState is an opaque handle onto a materialized shard state — the
// actual Merkle-DAG traversal lives in internal/cellstore; the Engine
// collaborator is what resolves a state root for a given block id.
type ShardState struct {
	Root []byte // repr_hash of the state root cell
}

// ZeroState is the masterchain genesis state, retained through broadcast
// validation when prev_key_block_seqno == 0 (spec §4.4, §9).
type ZeroState struct {
	ConfigParams []byte
}

// Collaborator is every capability the Walker and Broadcast Validator depend
// on but do not implement themselves (spec §6's "Engine collaborator").
type Collaborator interface {
	// DownloadNextMasterchainBlock fetches the masterchain block and proof
	// immediately following prev.
	DownloadNextMasterchainBlock(ctx context.Context, prev blockid.Id) (DownloadedBlock, error)

	// DownloadAndApplyBlock downloads (if necessary) and applies id. attempt
	// is a caller-maintained retry counter threaded through for logging/
	// backoff purposes, not interpreted by the engine itself.
	DownloadAndApplyBlock(ctx context.Context, id blockid.Id, mcSeqNo uint32, preApply bool, attempt int) error

	// WaitNextAppliedMcBlock blocks until a masterchain block beyond handle
	// has been applied, or timeout elapses. genUtime is that block's
	// gen_utime, needed by the Shardchain walk to persist
	// shards_client_mc_block_utime (spec §4.3 step 4).
	WaitNextAppliedMcBlock(ctx context.Context, handle *blockhandle.Handle, timeout time.Duration) (next *blockhandle.Handle, genUtime uint32, err error)

	// WaitState blocks until id's shard state is materialized, or timeout
	// elapses. allowPartial permits returning a state still being written.
	WaitState(ctx context.Context, id blockid.Id, timeout time.Duration, allowPartial bool) (ShardState, error)

	// ApplyBlockExt runs state transition application for block against
	// handle. mcSeqNo, preApply and attempt carry the same meaning as in
	// DownloadAndApplyBlock.
	ApplyBlockExt(ctx context.Context, handle *blockhandle.Handle, block DownloadedBlock, mcSeqNo uint32, preApply bool, attempt int) error

	// LoadShardBlockIds enumerates the shard blocks a masterchain block
	// references (spec §4.3's "enumerate the mc block's referenced shard
	// blocks"). Not named in spec §6's method list verbatim, but required
	// by it: shard-block discovery has to come from somewhere, and
	// resolving a masterchain block's shard references requires the same
	// cell/state knowledge spec §1 puts outside this core's scope.
	LoadShardBlockIds(ctx context.Context, mcBlock blockid.Id) ([]blockid.Id, error)

	LoadLastAppliedMcBlockId(ctx context.Context) (blockid.Id, error)
	LoadShardsClientMcBlockId(ctx context.Context) (blockid.Id, error)
	StoreShardsClientMcBlockId(ctx context.Context, id blockid.Id) error
	StoreShardsClientMcBlockUtime(ctx context.Context, utime uint32) error

	LoadMcZeroState(ctx context.Context) (ZeroState, error)

	// IsWorking is polled at each walker loop head and inside shard-block
	// retry loops; it turning false is the shutdown signal (spec §5).
	IsWorking() bool
}
