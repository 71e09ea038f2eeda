package model

import "time"

// GenesisHash is the prev_hash sentinel carried by the first block of a poll.
const GenesisHash = "0000000000000000000000000000000000000000000000000000000000000000"

// Block 投票块对象
//
// One committed vote: its fields, chain linkage and proof-of-work witness.
// Immutable once inserted. (poll_id, voter_hash) and block_hash are unique
// ledger-wide.
type Block struct {
	tableName struct{} `pg:"blocks"`

	Id        uint64    `pg:"id,pk" json:"id" mapstructure:"id"`
	PollId    string    `pg:"poll_id" json:"poll_id" mapstructure:"poll_id"`
	VoterHash string    `pg:"voter_hash" json:"voter_hash" mapstructure:"voter_hash"`
	Choice    string    `pg:"choice" json:"choice" mapstructure:"choice"`
	Timestamp time.Time `pg:"timestamp" json:"timestamp" mapstructure:"timestamp"`
	PrevHash  string    `pg:"prev_hash" json:"prev_hash" mapstructure:"prev_hash"`
	Nonce     uint64    `pg:"nonce,use_zero" json:"nonce" mapstructure:"nonce"`
	BlockHash string    `pg:"block_hash" json:"block_hash" mapstructure:"block_hash"`
}
