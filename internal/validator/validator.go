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

// Package validator is the Broadcast Validator (spec §4.4): it accepts a
// pushed BlockBroadcast, checks it against the validator set in force at its
// height, and stores and conditionally applies it.
package validator

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/erigontech/erigon-lib/log/v3"
	"github.com/holiman/uint256"

	"github.com/tonnet/archivenode/internal/blockhandle"
	"github.com/tonnet/archivenode/internal/blockid"
	"github.com/tonnet/archivenode/internal/engine"
	"github.com/tonnet/archivenode/internal/pkgentry"
	"github.com/tonnet/archivenode/internal/tonkv"
)

// shardApplyLag is the "shards_client + 8" gate from spec §6's persisted
// constants / §9's design notes: shard broadcasts may only pre-apply up to
// this many mc blocks ahead of the shard client's recorded position.
const shardApplyLag = 8

// BlockBroadcast is a pushed block announcement (spec §4.4).
type BlockBroadcast struct {
	Id               blockid.Id
	Proof            []byte
	Data             []byte
	Signatures       []Signature
	CatchainSeqno    uint32
	ValidatorSetHash uint32

	// MasterRefSeqNo is the masterchain block this broadcast's shard block
	// is referenced from. Ignored for masterchain broadcasts, where the
	// broadcast's own seq_no plays this role.
	MasterRefSeqNo uint32
}

// Validator is the Broadcast Validator.
type Validator struct {
	handles *blockhandle.Store
	entries *pkgentry.Store
	engine  engine.Collaborator
	crypto  Crypto
	log     log.Logger
	vsCache *validatorSetCache
}

// New builds a Validator. vsCacheCapacity and vsCacheTTL configure the
// optional validator-set-per-key-block cache (spec §9 enrichment); a
// capacity <= 0 disables it.
func New(handles *blockhandle.Store, entries *pkgentry.Store, eng engine.Collaborator, crypto Crypto, logger log.Logger, vsCacheCapacity int, vsCacheTTL time.Duration) *Validator {
	return &Validator{
		handles: handles,
		entries: entries,
		engine:  eng,
		crypto:  crypto,
		log:     logger,
		vsCache: newValidatorSetCache(validatorSetCacheOptions{capacity: vsCacheCapacity, ttl: vsCacheTTL}),
	}
}

// HandleBroadcast processes bc against batch, applying spec §4.4's fast
// reject, validator-set selection, subset derivation, signature/quorum
// check, proof check, and storage/conditional-apply steps in order. A nil
// return covers every benign outcome (already have it, ignored as
// future-key-block, gated out of applying yet) as well as genuine success;
// callers that need to distinguish "stored but not applied" from "applied"
// should inspect the returned handle's flags.
func (v *Validator) HandleBroadcast(ctx context.Context, r tonkv.Reader, batch tonkv.Batch, bc BlockBroadcast) (*blockhandle.Handle, error) {
	if existing, err := v.handles.Load(r, bc.Id.RootHash); err == nil {
		if existing.Has(blockhandle.HasData) {
			return existing, nil
		}
	} else if !errors.Is(err, blockhandle.ErrNotFound) {
		return nil, fmt.Errorf("validator: load handle: %w", err)
	}

	virtBlock, virtInfo, prevKeyBlockSeqNo, err := v.crypto.PreCheckBlockProof(bc.Proof)
	if err != nil {
		return nil, fmt.Errorf("%w: pre-check block proof: %v", ErrValidation, err)
	}

	lastApplied, err := v.engine.LoadLastAppliedMcBlockId(ctx)
	if err != nil {
		return nil, fmt.Errorf("validator: load last applied mc block: %w", err)
	}
	if prevKeyBlockSeqNo > lastApplied.SeqNo {
		v.log.Debug("ignoring broadcast referencing a future key block",
			"prev_key_block_seqno", prevKeyBlockSeqNo, "last_applied_seq_no", lastApplied.SeqNo)
		return nil, nil
	}

	vs, cc, keyBlockProof, zeroState, err := v.selectValidatorSet(ctx, r, prevKeyBlockSeqNo)
	if err != nil {
		return nil, err
	}

	subset, shortHash, err := v.crypto.CalcSubset(vs, cc, bc.Id.ShardPrefix, bc.Id.Workchain, bc.CatchainSeqno, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: calc subset: %v", ErrValidation, err)
	}
	if shortHash != bc.ValidatorSetHash {
		return nil, fmt.Errorf("%w: %w", ErrValidation, ErrValidatorSetHashMismatch)
	}

	weight, err := v.verifySignatureWeight(subset, bc)
	if err != nil {
		return nil, err
	}
	if !HasQuorum(weight, vs.TotalWeight) {
		return nil, fmt.Errorf("%w: %w", ErrValidation, ErrInsufficientSignatureWeight)
	}

	if bc.Id.IsMasterchain() {
		if err := v.crypto.CheckMasterchainProof(bc.Proof, keyBlockProof, zeroState, virtBlock, virtInfo); err != nil {
			return nil, fmt.Errorf("%w: %w: %v", ErrValidation, ErrProofCheckFailed, err)
		}
	} else {
		if err := v.crypto.CheckProofLink(bc.Proof); err != nil {
			return nil, fmt.Errorf("%w: %w: %v", ErrValidation, ErrProofCheckFailed, err)
		}
	}

	handle, err := v.handles.GetOrCreate(r, bc.Id)
	if err != nil {
		return nil, fmt.Errorf("validator: get or create handle: %w", err)
	}

	owned, err := v.store(batch, handle, bc)
	if err != nil {
		return nil, err
	}
	if !owned {
		// store_block_data reports "not updated": another path already
		// owns apply for this block.
		return handle, nil
	}

	if bc.Id.IsMasterchain() {
		if bc.Id.SeqNo != lastApplied.SeqNo+1 {
			return handle, nil
		}
		block := engine.DownloadedBlock{Id: bc.Id, Body: bc.Data, Proof: bc.Proof}
		if err := v.engine.ApplyBlockExt(ctx, handle, block, bc.Id.SeqNo, false, 0); err != nil {
			return handle, fmt.Errorf("validator: apply masterchain broadcast: %w", err)
		}
		return handle, nil
	}

	shardsClient, err := v.engine.LoadShardsClientMcBlockId(ctx)
	if err != nil {
		return handle, fmt.Errorf("validator: load shards client mc block: %w", err)
	}
	if shardsClient.SeqNo+shardApplyLag < bc.MasterRefSeqNo {
		return handle, nil
	}
	block := engine.DownloadedBlock{Id: bc.Id, Body: bc.Data, Proof: bc.Proof, IsLink: true}
	if err := v.engine.ApplyBlockExt(ctx, handle, block, bc.MasterRefSeqNo, true, 0); err != nil {
		return handle, fmt.Errorf("validator: apply shardchain broadcast: %w", err)
	}
	return handle, nil
}

// selectValidatorSet implements spec §4.4's "Validator set selection":
// genesis uses the zerostate's config_params, otherwise the previous key
// block's stored proof.
func (v *Validator) selectValidatorSet(ctx context.Context, r tonkv.Reader, prevKeyBlockSeqNo uint32) (vs *ValidatorSet, cc *CatchainConfig, keyBlockProof []byte, zeroState *engine.ZeroState, err error) {
	if prevKeyBlockSeqNo == 0 {
		zs, err := v.engine.LoadMcZeroState(ctx)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("validator: load zerostate: %w", err)
		}
		vs, cc, err := v.crypto.ExtractValidatorSetFromZeroState(zs)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("%w: extract validator set from zerostate: %v", ErrValidation, err)
		}
		return vs, cc, nil, &zs, nil
	}

	if cached, ok := v.vsCache.get(prevKeyBlockSeqNo); ok {
		return cached.vs, cached.cc, cached.proof, nil, nil
	}

	keyBlock, err := v.handles.LoadKeyBlock(r, prevKeyBlockSeqNo)
	if err != nil {
		if errors.Is(err, blockhandle.ErrNotFound) {
			return nil, nil, nil, nil, fmt.Errorf("%w: %w", ErrValidation, ErrUnknownKeyBlock)
		}
		return nil, nil, nil, nil, fmt.Errorf("validator: load key block %d: %w", prevKeyBlockSeqNo, err)
	}
	proof, err := v.entries.Get(r, blockid.EntryId{Block: keyBlock.Id(), Kind: blockid.KindProof})
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("validator: load key block %d proof: %w", prevKeyBlockSeqNo, err)
	}
	vs, cc, err = v.crypto.ExtractValidatorSetFromProof(proof)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("%w: extract validator set from proof: %v", ErrValidation, err)
	}
	v.vsCache.set(prevKeyBlockSeqNo, resolvedValidatorSet{vs: vs, cc: cc, proof: proof})
	return vs, cc, proof, nil, nil
}

// verifySignatureWeight verifies each broadcast signature against subset and
// accumulates the weight of the valid ones.
func (v *Validator) verifySignatureWeight(subset []ValidatorDescriptor, bc BlockBroadcast) (*uint256.Int, error) {
	weight := uint256.NewInt(0)
	for _, sig := range bc.Signatures {
		if sig.ValidatorIndex < 0 || sig.ValidatorIndex >= len(subset) {
			return nil, fmt.Errorf("%w: signature validator index %d out of range [0,%d)", ErrValidation, sig.ValidatorIndex, len(subset))
		}
		d := subset[sig.ValidatorIndex]
		if !v.crypto.VerifySignature(d.PublicKey, bc.Id.RootHash[:], sig.Sig) {
			continue
		}
		weight.Add(weight, d.Weight)
	}
	return weight, nil
}

// store persists bc's body and proof, setting the corresponding handle
// flags. It returns owned=false when the block body was already present —
// spec §4.4's "store_block_data reports not updated" case, meaning some
// other path already owns applying this block.
func (v *Validator) store(batch tonkv.Batch, handle *blockhandle.Handle, bc BlockBroadcast) (owned bool, err error) {
	blockEntryId := blockid.EntryId{Block: bc.Id, Kind: blockid.KindBlock}
	alreadyHadData := handle.Has(blockhandle.HasData)
	if err := v.entries.Put(batch, blockEntryId, bc.Data); err != nil {
		return false, fmt.Errorf("validator: store block body: %w", err)
	}
	handle.TrySet(blockhandle.HasData)

	proofKind := blockid.KindProof
	proofFlag := blockhandle.HasProof
	if !bc.Id.IsMasterchain() {
		proofKind = blockid.KindProofLink
		proofFlag = blockhandle.HasProofLink
	}
	proofEntryId := blockid.EntryId{Block: bc.Id, Kind: proofKind}
	if err := v.entries.Put(batch, proofEntryId, bc.Proof); err != nil {
		return false, fmt.Errorf("validator: store proof: %w", err)
	}
	handle.TrySet(proofFlag)

	if err := v.handles.Persist(batch, handle); err != nil {
		return false, fmt.Errorf("validator: persist handle: %w", err)
	}
	return !alreadyHadData, nil
}
