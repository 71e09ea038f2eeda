package core

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"hashvote/model"
	"hashvote/pow"
	"hashvote/util"
)

// Quote is the Phase-1 answer: the tip to chain onto and the difficulty in
// effect. It is advisory; the tip may advance before the caller commits.
type Quote struct {
	PrevHash         string
	DifficultyBits   int
	DifficultyTarget string
}

// Admission runs the two-phase vote protocol against the ledger. The
// in-process commit lock only narrows the stale-tip window; the ledger's
// uniqueness constraints remain the correctness mechanism, since other
// processes may share the same storage.
type Admission struct {
	ledger Ledger
	policy *DifficultyPolicy
	cache  *Redis

	commitMu sync.Mutex
}

func NewAdmission(ledger Ledger, policy *DifficultyPolicy, cache *Redis) *Admission {
	return &Admission{
		ledger: ledger,
		policy: policy,
		cache:  cache,
	}
}

func validateVote(pollID, voterHash, choice string) error {
	if pollID == "" {
		return &ValidationError{Field: "poll_id"}
	}
	if choice == "" {
		return &ValidationError{Field: "choice"}
	}
	if !util.IsHexHash(voterHash) {
		return &ValidationError{Field: "voter_hash"}
	}
	return nil
}

// Quote rejects known duplicates early and hands out the current chain tip
// plus the difficulty for the poll's namespace. A cached tip may be stale;
// Commit re-validates against the current one regardless.
func (a *Admission) Quote(pollID, voterHash, choice string) (*Quote, error) {
	if err := validateVote(pollID, voterHash, choice); err != nil {
		return nil, err
	}

	if voted, err := a.ledger.HasVoted(pollID, voterHash); err != nil {
		return nil, err
	} else if voted {
		return nil, &ConflictError{PollId: pollID, VoterHash: voterHash}
	}

	prevHash, ok := a.cache.Tip(pollID)
	if !ok {
		var err error
		if prevHash, err = a.ledger.ChainTip(pollID); err != nil {
			return nil, err
		}
		a.cache.SetTip(pollID, prevHash)
	}

	bits := a.policy.BitsFor(pollID)
	return &Quote{
		PrevHash:         prevHash,
		DifficultyBits:   bits,
		DifficultyTarget: pow.TargetHex(bits),
	}, nil
}

// Commit verifies the caller's proof of work against the current chain tip,
// never against the Phase-1 quote, and appends the block with an atomic
// uniqueness-guarded insert. A zero timestamp is sampled now; a lost race
// surfaces as ConflictError, a stale-tip proof as ProofOfWorkError.
func (a *Admission) Commit(pollID, voterHash, choice string, timestamp time.Time, nonce uint64) (*model.Block, error) {
	if err := validateVote(pollID, voterHash, choice); err != nil {
		return nil, err
	}
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}
	// The ledger stores microseconds; hash exactly what will be stored.
	timestamp = timestamp.UTC().Truncate(time.Microsecond)

	a.commitMu.Lock()
	defer a.commitMu.Unlock()

	prevHash, err := a.ledger.ChainTip(pollID)
	if err != nil {
		return nil, err
	}

	fields := pow.Fields{
		PollId:    pollID,
		VoterHash: voterHash,
		Choice:    choice,
		Timestamp: timestamp,
		PrevHash:  prevHash,
	}
	bits := a.policy.BitsFor(pollID)
	if !pow.Verify(fields, nonce, bits) {
		return nil, &ProofOfWorkError{PollId: pollID}
	}

	block := &model.Block{
		PollId:    pollID,
		VoterHash: voterHash,
		Choice:    choice,
		Timestamp: timestamp,
		PrevHash:  prevHash,
		Nonce:     nonce,
		BlockHash: pow.HashBlock(fields, nonce),
	}
	if err := a.ledger.InsertBlock(block); err != nil {
		return nil, err
	}

	a.cache.SetTip(pollID, block.BlockHash)
	a.cache.InvalidateResult(pollID)

	log.Infof("Recorded vote for poll %v, block hash %v", pollID, block.BlockHash)
	return block, nil
}
