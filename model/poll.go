package model

import "time"

// Poll 投票统计对象
//
// Aggregated per-poll view, produced by queries, not a stored table.
type Poll struct {
	PollId      string    `pg:"poll_id" json:"poll_id"`
	Votes       uint64    `pg:"votes" json:"votes"`
	FirstVoteAt time.Time `pg:"first_vote_at" json:"first_vote_at"`
	LastVoteAt  time.Time `pg:"last_vote_at" json:"last_vote_at"`
}
