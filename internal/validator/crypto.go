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

import (
	"github.com/holiman/uint256"

	"github.com/tonnet/archivenode/internal/engine"
)

// ValidatorDescriptor is one member of a ValidatorSet: a public key and its
// consensus weight. Weight is a uint256 because validator weights are
// consensus-layer data produced upstream of this core — nothing in spec.md
// bounds them to a machine word, and silently truncating would make the
// quorum check (spec §4.4, §8 property 7) wrong for any weight distribution
// that doesn't fit uint64.
type ValidatorDescriptor struct {
	PublicKey [32]byte
	Weight    *uint256.Int
}

// ValidatorSet is the full weighted validator roster published by a key
// block or the zerostate.
type ValidatorSet struct {
	Validators  []ValidatorDescriptor
	TotalWeight *uint256.Int
}

// CatchainConfig carries whatever catchain-election parameters calc_subset
// needs. Its internal shape is TON consensus data this core does not
// interpret; Crypto implementations parse/produce it.
type CatchainConfig struct {
	Raw []byte
}

// Signature is one broadcast-carried signature, indexed against the subset
// calc_subset returned.
type Signature struct {
	ValidatorIndex int
	Sig            []byte
}

// Crypto is the collaborator validator-set derivation, subset selection,
// signature verification, and block-proof parsing are delegated to. spec.md
// §1 places cryptographic primitives and the TON cell-encoded block/proof
// format out of this core's scope, so — exactly like internal/engine's
// Collaborator — this is a seam, not an implementation: the Broadcast
// Validator itself owns the orchestration (fast reject, quorum arithmetic,
// gating, storage), calling out to Crypto only for the parts that require
// TON consensus cryptography or cell-format knowledge.
type Crypto interface {
	// CalcSubset derives the signing subset and its short_hash for
	// (shardPrefix, workchain, catchainSeqno) at unixTime.
	CalcSubset(vs *ValidatorSet, cc *CatchainConfig, shardPrefix uint64, workchain int32, catchainSeqno uint32, unixTime uint32) (subset []ValidatorDescriptor, shortHash uint32, err error)

	// VerifySignature reports whether sig is a valid signature by pubKey
	// over msg.
	VerifySignature(pubKey [32]byte, msg []byte, sig []byte) bool

	// ExtractValidatorSetFromZeroState reads validator_set/catchain_config
	// out of the masterchain genesis state's config_params.
	ExtractValidatorSetFromZeroState(zeroState engine.ZeroState) (*ValidatorSet, *CatchainConfig, error)

	// ExtractValidatorSetFromProof reads validator_set/catchain_config out
	// of a stored key-block proof.
	ExtractValidatorSetFromProof(proof []byte) (*ValidatorSet, *CatchainConfig, error)

	// PreCheckBlockProof parses proof into its virtual block/info cells and
	// reports the prev_key_block_seqno it references.
	PreCheckBlockProof(proof []byte) (virtBlock, virtInfo []byte, prevKeyBlockSeqNo uint32, err error)

	// CheckMasterchainProof verifies a masterchain broadcast's proof against
	// whichever reference selectValidatorSet resolved: keyBlockProof is set
	// when prev_key_block_seqno > 0, zeroState is set (and keyBlockProof
	// nil) at genesis (spec §4.4, §9 — "the zerostate object itself is
	// retained through validation to satisfy check_with_master_state").
	// Exactly one of keyBlockProof/zeroState is non-nil/non-zero.
	CheckMasterchainProof(proof, keyBlockProof []byte, zeroState *engine.ZeroState, virtBlock, virtInfo []byte) error

	// CheckProofLink verifies a shardchain broadcast's lightweight proof.
	CheckProofLink(proof []byte) error

	// CheckWithMasterState verifies a downloaded masterchain block's proof
	// against the previous block's materialized shard state (spec §4.3
	// step 4: "check_with_master_state(proof, prev_state, virt_block,
	// virt_info)"). This is the Block Walker's masterchain-proof check,
	// distinct from CheckMasterchainProof's broadcast-path key-block/
	// zerostate check: the walker verifies sequentially against the chain
	// it is itself extending, not against a separately selected validator
	// set.
	CheckWithMasterState(proof []byte, prevState engine.ShardState, virtBlock, virtInfo []byte) error
}

// HasQuorum reports whether weight constitutes strictly more than 2/3 of
// totalWeight by weight (spec §4.4, §8 property 7: weight*3 > total_weight*2
// accepts; weight*3 == total_weight*2 rejects). Computed in uint256 to match
// ValidatorDescriptor.Weight's precision — multiplying by 3 can overflow a
// uint64 well before it overflows real validator weight totals.
func HasQuorum(weight, totalWeight *uint256.Int) bool {
	lhs := new(uint256.Int).Mul(weight, uint256.NewInt(3))
	rhs := new(uint256.Int).Mul(totalWeight, uint256.NewInt(2))
	return lhs.Gt(rhs)
}
