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
	"testing"
	"time"

	log "github.com/erigontech/erigon-lib/log/v3"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/tonnet/archivenode/internal/blockhandle"
	"github.com/tonnet/archivenode/internal/blockid"
	"github.com/tonnet/archivenode/internal/engine"
	"github.com/tonnet/archivenode/internal/pkgentry"
	"github.com/tonnet/archivenode/internal/tonkv"
	"github.com/tonnet/archivenode/internal/validator"
)

// fakeCrypto is a hand-written validator.Crypto stub: the walker only
// exercises PreCheckBlockProof and CheckWithMasterState, but the interface
// must be fully satisfied.
type fakeCrypto struct{}

func (fakeCrypto) CalcSubset(vs *validator.ValidatorSet, cc *validator.CatchainConfig, shardPrefix uint64, workchain int32, catchainSeqno uint32, unixTime uint32) ([]validator.ValidatorDescriptor, uint32, error) {
	return nil, 0, nil
}
func (fakeCrypto) VerifySignature(pubKey [32]byte, msg []byte, sig []byte) bool { return true }
func (fakeCrypto) ExtractValidatorSetFromZeroState(zeroState engine.ZeroState) (*validator.ValidatorSet, *validator.CatchainConfig, error) {
	return nil, nil, nil
}
func (fakeCrypto) ExtractValidatorSetFromProof(proof []byte) (*validator.ValidatorSet, *validator.CatchainConfig, error) {
	return nil, nil, nil
}
func (fakeCrypto) PreCheckBlockProof(proof []byte) (virtBlock, virtInfo []byte, prevKeyBlockSeqNo uint32, err error) {
	return []byte("virt-block"), []byte("virt-info"), 0, nil
}
func (fakeCrypto) CheckMasterchainProof(proof, keyBlockProof []byte, zeroState *engine.ZeroState, virtBlock, virtInfo []byte) error {
	return nil
}
func (fakeCrypto) CheckProofLink(proof []byte) error { return nil }
func (fakeCrypto) CheckWithMasterState(proof []byte, prevState engine.ShardState, virtBlock, virtInfo []byte) error {
	return nil
}

var _ validator.Crypto = fakeCrypto{}

func testMcId(seqNo uint32) blockid.Id {
	var id blockid.Id
	id.Workchain = blockid.MasterchainWorkchain
	id.SeqNo = seqNo
	id.RootHash[0] = byte(seqNo)
	id.RootHash[1] = byte(seqNo >> 8)
	id.FileHash[0] = byte(seqNo + 1)
	return id
}

func newTestWalker(t *testing.T, eng engine.Collaborator) (*Walker, tonkv.Engine, *blockhandle.Store) {
	t.Helper()
	kv, err := tonkv.OpenPebble(tonkv.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	handles := blockhandle.New(kv)
	entries := pkgentry.New(kv)
	cfg := DefaultConfig()
	cfg.WaitTimeout = time.Second
	cfg.MasterchainRetryRate = time.Millisecond
	cfg.ShardBlockBackoffInitial = time.Millisecond
	cfg.ShardBlockBackoffMax = 5 * time.Millisecond
	w := New(kv, handles, entries, eng, fakeCrypto{}, cfg, log.New())
	return w, kv, handles
}

func TestMasterchainStepDownloadsAndLinks(t *testing.T) {
	ctrl := gomock.NewController(t)
	mock := NewMockCollaborator(ctrl)

	current := testMcId(10)
	next := testMcId(11)
	downloaded := engine.DownloadedBlock{Id: next, Body: []byte("body"), Proof: []byte("proof")}

	mock.EXPECT().DownloadNextMasterchainBlock(gomock.Any(), current).Return(downloaded, nil)
	mock.EXPECT().WaitState(gomock.Any(), current, time.Second, false).Return(engine.ShardState{}, nil)
	mock.EXPECT().ApplyBlockExt(gomock.Any(), gomock.Any(), downloaded, next.SeqNo, false, 0).Return(nil)

	w, kv, handles := newTestWalker(t, mock)

	got, err := w.masterchainStep(context.Background(), current)
	require.NoError(t, err)
	require.Equal(t, next, got)

	h, err := handles.Load(kv, next.RootHash)
	require.NoError(t, err)
	require.True(t, h.Has(blockhandle.HasData))
	require.True(t, h.Has(blockhandle.HasProof))

	prevHandle, err := handles.Load(kv, current.RootHash)
	require.NoError(t, err)
	n1, ok := prevHandle.Next1()
	require.True(t, ok)
	require.Equal(t, next, n1)

	body, err := pkgentry.New(kv).Get(kv, blockid.EntryId{Block: next, Kind: blockid.KindBlock})
	require.NoError(t, err)
	require.Equal(t, []byte("body"), body)
}

func TestMasterchainStepUsesCachedNext1(t *testing.T) {
	ctrl := gomock.NewController(t)
	mock := NewMockCollaborator(ctrl)

	current := testMcId(20)
	cached := testMcId(21)

	w, kv, handles := newTestWalker(t, mock)

	batch := kv.NewBatch()
	h, err := handles.GetOrCreate(batch, current)
	require.NoError(t, err)
	h.SetNext1(cached)
	require.NoError(t, handles.Persist(batch, h))
	require.NoError(t, batch.Commit())
	require.NoError(t, batch.Close())

	mock.EXPECT().DownloadAndApplyBlock(gomock.Any(), cached, cached.SeqNo, false, 0).Return(nil)

	got, err := w.masterchainStep(context.Background(), current)
	require.NoError(t, err)
	require.Equal(t, cached, got)
}

func TestMasterchainStepRejectsSeqNoGap(t *testing.T) {
	ctrl := gomock.NewController(t)
	mock := NewMockCollaborator(ctrl)

	current := testMcId(5)
	gapped := testMcId(7)
	mock.EXPECT().DownloadNextMasterchainBlock(gomock.Any(), current).Return(engine.DownloadedBlock{Id: gapped}, nil)

	w, _, _ := newTestWalker(t, mock)

	_, err := w.masterchainStep(context.Background(), current)
	require.ErrorIs(t, err, ErrSeqNoGap)
}

func TestMasterchainStepRejectsLinkProof(t *testing.T) {
	ctrl := gomock.NewController(t)
	mock := NewMockCollaborator(ctrl)

	current := testMcId(5)
	next := testMcId(6)
	mock.EXPECT().DownloadNextMasterchainBlock(gomock.Any(), current).Return(engine.DownloadedBlock{Id: next, IsLink: true}, nil)

	w, _, _ := newTestWalker(t, mock)

	_, err := w.masterchainStep(context.Background(), current)
	require.ErrorIs(t, err, ErrLinkProofForMasterchain)
}

func TestRunMasterchainStopsWhenNotWorking(t *testing.T) {
	ctrl := gomock.NewController(t)
	mock := NewMockCollaborator(ctrl)
	mock.EXPECT().IsWorking().Return(false)

	w, _, _ := newTestWalker(t, mock)
	err := w.RunMasterchain(context.Background(), testMcId(1))
	require.NoError(t, err)
}

func TestLoadShardBlocksSkipsAppliedAndStoresProgress(t *testing.T) {
	ctrl := gomock.NewController(t)
	mock := NewMockCollaborator(ctrl)

	w, kv, handles := newTestWalker(t, mock)

	mc := testMcId(100)
	batch := kv.NewBatch()
	mcHandle, err := handles.GetOrCreate(batch, mc)
	require.NoError(t, err)
	require.NoError(t, batch.Commit())
	require.NoError(t, batch.Close())

	applied := testMcId(200)
	applied.Workchain = 0
	pending := testMcId(201)
	pending.Workchain = 0

	batch = kv.NewBatch()
	appliedHandle, err := handles.GetOrCreate(batch, applied)
	require.NoError(t, err)
	appliedHandle.TrySet(blockhandle.IsApplied)
	require.NoError(t, handles.Persist(batch, appliedHandle))
	require.NoError(t, batch.Commit())
	require.NoError(t, batch.Close())

	mock.EXPECT().LoadShardBlockIds(gomock.Any(), mc).Return([]blockid.Id{applied, pending}, nil)
	mock.EXPECT().IsWorking().Return(true)
	mock.EXPECT().DownloadAndApplyBlock(gomock.Any(), pending, mc.SeqNo, true, 0).Return(nil)
	mock.EXPECT().StoreShardsClientMcBlockId(gomock.Any(), mc).Return(nil)
	mock.EXPECT().StoreShardsClientMcBlockUtime(gomock.Any(), uint32(777)).Return(nil)

	err = w.loadShardBlocks(context.Background(), mcHandle, 777)
	require.NoError(t, err)
}

func TestDownloadAndApplyWithRetryStopsOnShutdown(t *testing.T) {
	ctrl := gomock.NewController(t)
	mock := NewMockCollaborator(ctrl)
	mock.EXPECT().IsWorking().Return(false)

	w, _, _ := newTestWalker(t, mock)
	err := w.downloadAndApplyWithRetry(context.Background(), testMcId(1), 1)
	require.NoError(t, err)
}

func TestDownloadAndApplyWithRetryRetriesUntilSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	mock := NewMockCollaborator(ctrl)
	mock.EXPECT().IsWorking().Return(true).Times(3)
	gomock.InOrder(
		mock.EXPECT().DownloadAndApplyBlock(gomock.Any(), gomock.Any(), uint32(1), true, 0).Return(assertErr),
		mock.EXPECT().DownloadAndApplyBlock(gomock.Any(), gomock.Any(), uint32(1), true, 1).Return(assertErr),
		mock.EXPECT().DownloadAndApplyBlock(gomock.Any(), gomock.Any(), uint32(1), true, 2).Return(nil),
	)

	w, _, _ := newTestWalker(t, mock)
	err := w.downloadAndApplyWithRetry(context.Background(), testMcId(1), 1)
	require.NoError(t, err)
}

var assertErr = errPeerUnavailable{}

type errPeerUnavailable struct{}

func (errPeerUnavailable) Error() string { return "peer unavailable" }
