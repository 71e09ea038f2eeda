package core

import "hashvote/model"

// Ledger is the storage port for the vote chain. InsertBlock is the
// authoritative serialization point: it must enforce the (poll_id, voter_hash)
// and block_hash uniqueness atomically and surface violations as
// ConflictError, never overwrite. Reads return blocks in insertion order.
type Ledger interface {
	// ChainTip returns the newest block hash of the poll, or the genesis
	// sentinel for an empty chain.
	ChainTip(pollID string) (string, error)
	HasVoted(pollID, voterHash string) (bool, error)
	PollBlocks(pollID string) ([]model.Block, error)
	AllBlocks() ([]model.Block, error)
	InsertBlock(block *model.Block) error
}
