package core

import (
	"fmt"

	"hashvote/model"
	"hashvote/pow"
)

const (
	ViolationPoW       = "pow"
	ViolationHash      = "hash"
	ViolationLink      = "link"
	ViolationDuplicate = "duplicate"
)

// Violation identifies a single integrity failure and the block it was
// found on.
type Violation struct {
	Kind    string
	BlockId uint64
	PollId  string
	Detail  string
}

func (v Violation) String() string {
	return fmt.Sprintf("[%s] block %d poll %s: %s", v.Kind, v.BlockId, v.PollId, v.Detail)
}

func blockFields(b model.Block) pow.Fields {
	return pow.Fields{
		PollId:    b.PollId,
		VoterHash: b.VoterHash,
		Choice:    b.Choice,
		Timestamp: b.Timestamp,
		PrevHash:  b.PrevHash,
	}
}

// VerifyChain walks one poll's blocks in insertion order and fails fast on
// the first invalid proof, stored-hash mismatch or broken linkage. An empty
// chain is valid.
func VerifyChain(blocks []model.Block, difficultyBits int) bool {
	expectedPrev := model.GenesisHash
	for _, b := range blocks {
		if !pow.Verify(blockFields(b), b.Nonce, difficultyBits) {
			return false
		}
		if pow.HashBlock(blockFields(b), b.Nonce) != b.BlockHash {
			return false
		}
		if b.PrevHash != expectedPrev {
			return false
		}
		expectedPrev = b.BlockHash
	}
	return true
}

// AuditChain is the diagnostic variant of VerifyChain: it records every
// violation and keeps walking.
func AuditChain(blocks []model.Block, difficultyBits int) []Violation {
	var violations []Violation
	expectedPrev := model.GenesisHash
	for _, b := range blocks {
		if !pow.Verify(blockFields(b), b.Nonce, difficultyBits) {
			violations = append(violations, Violation{
				Kind: ViolationPoW, BlockId: b.Id, PollId: b.PollId,
				Detail: fmt.Sprintf("nonce %d does not satisfy %d difficulty bits", b.Nonce, difficultyBits),
			})
		}
		// Recomputing the hash catches tampering that keeps the proof valid
		// but alters a stored field.
		if pow.HashBlock(blockFields(b), b.Nonce) != b.BlockHash {
			violations = append(violations, Violation{
				Kind: ViolationHash, BlockId: b.Id, PollId: b.PollId,
				Detail: "stored block_hash does not match recomputed hash",
			})
		}
		if b.PrevHash != expectedPrev {
			violations = append(violations, Violation{
				Kind: ViolationLink, BlockId: b.Id, PollId: b.PollId,
				Detail: "prev_hash does not match the preceding block",
			})
		}
		expectedPrev = b.BlockHash
	}
	return violations
}

// FindDuplicateVotes groups blocks ledger-wide by (poll_id, voter_hash) and
// reports every group with more than one member. This is a ledger property,
// independent of any single chain walk.
func FindDuplicateVotes(blocks []model.Block) []Violation {
	seen := make(map[[2]string]uint64)
	var violations []Violation
	for _, b := range blocks {
		key := [2]string{b.PollId, b.VoterHash}
		if firstId, ok := seen[key]; ok {
			violations = append(violations, Violation{
				Kind: ViolationDuplicate, BlockId: b.Id, PollId: b.PollId,
				Detail: fmt.Sprintf("duplicate vote by %.16s…, first recorded in block %d", b.VoterHash, firstId),
			})
			continue
		}
		seen[key] = b.Id
	}
	return violations
}

// CountChoices tallies votes per choice.
func CountChoices(blocks []model.Block) map[string]int {
	counts := make(map[string]int)
	for _, b := range blocks {
		counts[b.Choice]++
	}
	return counts
}
