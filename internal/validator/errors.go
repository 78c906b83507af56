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

package validator

import "errors"

// ErrValidation is the sentinel every broadcast rejection wraps (spec §7's
// Validation taxonomy entry): callers test with errors.Is(err,
// ErrValidation) and, where they need the specific cause, errors.Is against
// one of the more specific sentinels below.
var ErrValidation = errors.New("validator: broadcast rejected")

var (
	// ErrValidatorSetHashMismatch: calc_subset's short_hash disagreed with
	// the broadcast's claimed validator_set_hash.
	ErrValidatorSetHashMismatch = errors.New("validator: validator set hash mismatch")

	// ErrInsufficientSignatureWeight: weight*3 <= total_weight*2.
	ErrInsufficientSignatureWeight = errors.New("validator: insufficient signature weight")

	// ErrUnknownKeyBlock: prev_key_block_seqno has no resolvable handle and
	// is not genesis.
	ErrUnknownKeyBlock = errors.New("validator: unknown previous key block")

	// ErrProofCheckFailed: Crypto.CheckMasterchainProof /
	// Crypto.CheckProofLink rejected the broadcast's proof.
	ErrProofCheckFailed = errors.New("validator: proof check failed")
)
