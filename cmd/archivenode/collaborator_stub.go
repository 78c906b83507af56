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

package main

import (
	"context"
	"errors"
	"time"

	"github.com/tonnet/archivenode/internal/blockhandle"
	"github.com/tonnet/archivenode/internal/blockid"
	"github.com/tonnet/archivenode/internal/engine"
	"github.com/tonnet/archivenode/internal/validator"
)

// errBackendNotWired is returned by every unimplementedCollaborator and
// unimplementedCrypto method. Peer-to-peer transport, block application,
// and TON consensus cryptography are external collaborators spec.md §1
// explicitly scopes out of this core; this binary wires the five storage
// components end to end but cannot supply a working walker/validator
// backend on its own. A real deployment replaces these two stubs with its
// download/apply stack and signature-verification library.
var errBackendNotWired = errors.New("archivenode: no download/apply/crypto backend wired into this binary")

type unimplementedCollaborator struct{}

func (unimplementedCollaborator) DownloadNextMasterchainBlock(context.Context, blockid.Id) (engine.DownloadedBlock, error) {
	return engine.DownloadedBlock{}, errBackendNotWired
}
func (unimplementedCollaborator) DownloadAndApplyBlock(context.Context, blockid.Id, uint32, bool, int) error {
	return errBackendNotWired
}
func (unimplementedCollaborator) WaitNextAppliedMcBlock(context.Context, *blockhandle.Handle, time.Duration) (*blockhandle.Handle, uint32, error) {
	return nil, 0, errBackendNotWired
}
func (unimplementedCollaborator) WaitState(context.Context, blockid.Id, time.Duration, bool) (engine.ShardState, error) {
	return engine.ShardState{}, errBackendNotWired
}
func (unimplementedCollaborator) ApplyBlockExt(context.Context, *blockhandle.Handle, engine.DownloadedBlock, uint32, bool, int) error {
	return errBackendNotWired
}
func (unimplementedCollaborator) LoadShardBlockIds(context.Context, blockid.Id) ([]blockid.Id, error) {
	return nil, errBackendNotWired
}
func (unimplementedCollaborator) LoadLastAppliedMcBlockId(context.Context) (blockid.Id, error) {
	return blockid.Id{}, errBackendNotWired
}
func (unimplementedCollaborator) LoadShardsClientMcBlockId(context.Context) (blockid.Id, error) {
	return blockid.Id{}, errBackendNotWired
}
func (unimplementedCollaborator) StoreShardsClientMcBlockId(context.Context, blockid.Id) error {
	return errBackendNotWired
}
func (unimplementedCollaborator) StoreShardsClientMcBlockUtime(context.Context, uint32) error {
	return errBackendNotWired
}
func (unimplementedCollaborator) LoadMcZeroState(context.Context) (engine.ZeroState, error) {
	return engine.ZeroState{}, errBackendNotWired
}

// IsWorking reports false so a walker loop driven by this stub exits its
// loop head immediately rather than spinning on errBackendNotWired.
func (unimplementedCollaborator) IsWorking() bool { return false }

var _ engine.Collaborator = unimplementedCollaborator{}

type unimplementedCrypto struct{}

func (unimplementedCrypto) CalcSubset(*validator.ValidatorSet, *validator.CatchainConfig, uint64, int32, uint32, uint32) ([]validator.ValidatorDescriptor, uint32, error) {
	return nil, 0, errBackendNotWired
}
func (unimplementedCrypto) VerifySignature([32]byte, []byte, []byte) bool { return false }
func (unimplementedCrypto) ExtractValidatorSetFromZeroState(engine.ZeroState) (*validator.ValidatorSet, *validator.CatchainConfig, error) {
	return nil, nil, errBackendNotWired
}
func (unimplementedCrypto) ExtractValidatorSetFromProof([]byte) (*validator.ValidatorSet, *validator.CatchainConfig, error) {
	return nil, nil, errBackendNotWired
}
func (unimplementedCrypto) PreCheckBlockProof([]byte) ([]byte, []byte, uint32, error) {
	return nil, nil, 0, errBackendNotWired
}
func (unimplementedCrypto) CheckMasterchainProof([]byte, []byte, *engine.ZeroState, []byte, []byte) error {
	return errBackendNotWired
}
func (unimplementedCrypto) CheckProofLink([]byte) error { return errBackendNotWired }
func (unimplementedCrypto) CheckWithMasterState([]byte, engine.ShardState, []byte, []byte) error {
	return errBackendNotWired
}

var _ validator.Crypto = unimplementedCrypto{}
