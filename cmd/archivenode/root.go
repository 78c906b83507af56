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
	"github.com/spf13/pflag"

	"github.com/tonnet/archivenode/internal/config"
)

var configPath string

// newRootCommand builds the archivenode CLI: a root command carrying the
// shared --config flag, with "serve" and "gc" as its operational
// subcommands — a cobra.Command tree with pflag-backed persistent flags and
// no business logic in the command bodies themselves.
func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "archivenode",
		Short: "Storage and block-ingest core for a TON-style archive node",
	}
	flags := pflag.NewFlagSet("archivenode", pflag.ExitOnError)
	flags.StringVar(&configPath, "config", "archivenode.toml", "path to the TOML config file")
	root.PersistentFlags().AddFlagSet(flags)

	root.AddCommand(newServeCommand())
	root.AddCommand(newGcCommand())
	return root
}

func loadConfig() (config.Config, error) {
	return config.Load(configPath)
}
