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
	"github.com/spf13/cobra"

	"github.com/tonnet/archivenode/internal/archive"
)

// newGcCommand builds the "gc" subcommand: a one-shot run of spec §4.2's
// Block GC and Archive GC against the configured data directory, retaining
// nothing (an empty TopBlocks frontier) beyond genesis and key blocks. A
// real deployment runs this against the walker's live top-blocks frontier,
// not an empty one; this command always uses an empty frontier, which lets an
// operator reclaim space for shards no longer tracked at all.
func newGcCommand() *cobra.Command {
	var maxPerBatch int
	var untilArchiveId uint32

	cmd := &cobra.Command{
		Use:   "gc",
		Short: "Run block and archive garbage collection once",
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

			top := archive.NewTopBlocks()
			deleted, err := n.archive.Gc(maxPerBatch, top)
			if err != nil {
				return err
			}
			n.log.Info("block gc complete", "deleted_entries", deleted)

			if untilArchiveId > 0 {
				removed, err := n.archive.RemoveOutdatedArchives(untilArchiveId)
				if err != nil {
					return err
				}
				n.log.Info("archive gc complete", "removed_archives", removed)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&maxPerBatch, "max-per-batch", 10000, "flush the GC write batch after this many deletions")
	cmd.Flags().Uint32Var(&untilArchiveId, "until-archive-id", 0, "also remove registered archives older than the newest archive below this id (0 skips archive gc)")
	return cmd
}
