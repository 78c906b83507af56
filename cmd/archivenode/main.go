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

// Command archivenode is a thin cobra/pflag CLI entrypoint, in the idiom of
// erigon's cmd/ binaries: it loads a Config, opens the KV engine,
// constructs the storage core's five components, and runs the Block
// Walker's two loops until a signal or context cancellation. All logic
// lives in internal/; this package is wiring only.
package main

import (
	"os"

	log "github.com/erigontech/erigon-lib/log/v3"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.New().Error("archivenode exited with error", "err", err)
		os.Exit(1)
	}
}
