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

// Package walker is the Block Walker (spec §4.3): two cooperating loops,
// driven by an engine.Collaborator, that walk the masterchain and its
// referenced shardchains and drive download+apply in topological order with
// bounded concurrency.
package walker

import (
	"golang.org/x/time/rate"

	log "github.com/erigontech/erigon-lib/log/v3"
	"golang.org/x/sync/semaphore"

	"github.com/tonnet/archivenode/internal/blockhandle"
	"github.com/tonnet/archivenode/internal/engine"
	"github.com/tonnet/archivenode/internal/pkgentry"
	"github.com/tonnet/archivenode/internal/tonkv"
	"github.com/tonnet/archivenode/internal/validator"
)

// Walker drives both cooperating loops spec §4.3 describes. One Walker is
// shared between a RunMasterchain and RunShardchain call running on
// separate goroutines; they communicate only through the engine
// collaborator and the shared blockhandle.Store, exactly as spec §5
// describes ("the ingest walker ... [is a] task").
type Walker struct {
	kv      tonkv.Engine
	handles *blockhandle.Store
	entries *pkgentry.Store
	engine  engine.Collaborator
	crypto  validator.Crypto
	log     log.Logger
	cfg     Config

	// shardBatchSem serializes shard batches: capacity 1, so the next mc
	// block's shard batch cannot start until the previous one's tasks have
	// all finished (spec §4.3, §5: "semaphore with capacity 1").
	shardBatchSem *semaphore.Weighted
}

// New builds a Walker.
func New(kv tonkv.Engine, handles *blockhandle.Store, entries *pkgentry.Store, eng engine.Collaborator, crypto validator.Crypto, cfg Config, logger log.Logger) *Walker {
	return &Walker{
		kv:            kv,
		handles:       handles,
		entries:       entries,
		engine:        eng,
		crypto:        crypto,
		log:           logger,
		cfg:           cfg,
		shardBatchSem: semaphore.NewWeighted(1),
	}
}

// retryLimiter builds the masterchain loop's per-position retry rate
// limiter (spec §9's backoff note): bursts cfg.MasterchainRetryBurst
// attempts, then throttles to cfg.MasterchainRetryRate so a persistently
// failing peer does not spin the loop hot.
func (w *Walker) retryLimiter() *rate.Limiter {
	r := rate.Every(w.cfg.MasterchainRetryRate)
	return rate.NewLimiter(r, w.cfg.MasterchainRetryBurst)
}
