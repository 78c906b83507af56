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

// Package blockhandle is the Block Handle Store: per-block metadata bitset
// and connection graph (spec §3's BlockHandle, §4 component table). Flags
// are monotone — once set, a flag never clears for a handle's lifetime.
package blockhandle

// Flag is one bit of a handle's monotone status bitset.
type Flag uint32

const (
	HasData Flag = 1 << iota
	HasProof
	HasProofLink
	IsApplied
	IsArchived
	IsMovingToArchive
	IsKeyBlock
)

func (f Flag) String() string {
	switch f {
	case HasData:
		return "has_data"
	case HasProof:
		return "has_proof"
	case HasProofLink:
		return "has_proof_link"
	case IsApplied:
		return "is_applied"
	case IsArchived:
		return "is_archived"
	case IsMovingToArchive:
		return "is_moving_to_archive"
	case IsKeyBlock:
		return "is_key_block"
	default:
		return "unknown_flag"
	}
}
