package api

import (
	"encoding/json"

	"hashvote/model"
)

const Version = "1.0.0"

// VoteRequest is the payload of POST /vote. A missing nonce asks for a
// Phase-1 quote; a present nonce is a Phase-2 commit.
type VoteRequest struct {
	PollId    string  `json:"poll_id" mapstructure:"poll_id"`
	VoterHash string  `json:"voter_hash" mapstructure:"voter_hash"`
	Choice    string  `json:"choice" mapstructure:"choice"`
	Timestamp string  `json:"timestamp,omitempty" mapstructure:"timestamp"`
	Nonce     *uint64 `json:"nonce,omitempty" mapstructure:"nonce"`
}

type VoteResponse struct {
	Message          string `json:"message" mapstructure:"message"`
	DifficultyTarget string `json:"difficulty_target,omitempty" mapstructure:"difficulty_target"`
	DifficultyBits   int    `json:"difficulty_bits,omitempty" mapstructure:"difficulty_bits"`
	PrevHash         string `json:"prev_hash,omitempty" mapstructure:"prev_hash"`
	BlockHash        string `json:"block_hash,omitempty" mapstructure:"block_hash"`
}

type PollResult struct {
	PollId     string         `json:"poll_id" mapstructure:"poll_id"`
	TotalVotes int            `json:"total_votes" mapstructure:"total_votes"`
	Choices    map[string]int `json:"choices" mapstructure:"choices"`
}

type AuditResponse struct {
	PollId     string        `json:"poll_id" mapstructure:"poll_id"`
	Blocks     []model.Block `json:"blocks" mapstructure:"blocks"`
	ChainValid bool          `json:"chain_valid" mapstructure:"chain_valid"`
	Violations []string      `json:"violations,omitempty" mapstructure:"violations"`
}

type Error struct {
	Detail string `json:"detail" mapstructure:"detail"`
}

type Health struct {
	Status    string `json:"status" mapstructure:"status"`
	Version   string `json:"version" mapstructure:"version"`
	Timestamp string `json:"timestamp" mapstructure:"timestamp"`
}

func Marshal(v interface{}) []byte {
	data, _ := json.Marshal(v)
	return data
}

// UnmarshalVotePayload keeps the vote payload generic so the handler can tell
// the two protocol phases apart before decoding into VoteRequest.
func UnmarshalVotePayload(b []byte) (map[string]interface{}, error) {
	var payload map[string]interface{}
	err := json.Unmarshal(b, &payload)
	return payload, err
}
