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

import "errors"

var (
	// ErrSeqNoGap is returned when a downloaded masterchain block's seq_no
	// does not immediately follow the previous one (spec §4.3 step 3).
	ErrSeqNoGap = errors.New("walker: masterchain block seq_no gap")

	// ErrLinkProofForMasterchain is returned when a masterchain download
	// comes back with a proof-link rather than a full proof (spec §4.3
	// step 3: "masterchain requires full proof").
	ErrLinkProofForMasterchain = errors.New("walker: masterchain block carries a proof-link, not a full proof")
)
