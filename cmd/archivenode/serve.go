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
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tonnet/archivenode/internal/blockid"
	"github.com/tonnet/archivenode/internal/walker"
)

// newServeCommand builds the "serve" subcommand: opens the storage core and
// runs the Block Walker's masterchain and shardchain loops (spec §4.3)
// until SIGINT/SIGTERM or either loop returns.
func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the masterchain and shardchain walker loops",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			n, err := buildNode(cfg)
			if err != nil {
				return err
			}
			defer n.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			collab := unimplementedCollaborator{}
			crypto := unimplementedCrypto{}

			w := walker.New(n.kv, n.handles, n.entries, collab, crypto, walkerConfig(cfg), n.log)

			var zero blockid.Id

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return w.RunMasterchain(gctx, zero) })
			g.Go(func() error { return w.RunShardchain(gctx, zero) })
			return g.Wait()
		},
	}
}
