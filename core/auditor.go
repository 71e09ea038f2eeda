package core

import (
	"hashvote/model"
)

// Auditor reads the ledger and verifies chains. It shares the difficulty
// policy with admission, so a chain is audited under the bits it was
// admitted with.
type Auditor struct {
	ledger Ledger
	policy *DifficultyPolicy
	cache  *Redis
}

func NewAuditor(ledger Ledger, policy *DifficultyPolicy, cache *Redis) *Auditor {
	return &Auditor{
		ledger: ledger,
		policy: policy,
		cache:  cache,
	}
}

// Results aggregates choices for a poll, gated on chain integrity.
func (a *Auditor) Results(pollID string) (map[string]int, error) {
	if counts, ok := a.cache.Result(pollID); ok {
		return counts, nil
	}

	blocks, err := a.ledger.PollBlocks(pollID)
	if err != nil {
		return nil, err
	}

	if violations := AuditChain(blocks, a.policy.BitsFor(pollID)); len(violations) > 0 {
		return nil, &IntegrityError{Violations: violations}
	}

	counts := CountChoices(blocks)
	a.cache.SetResult(pollID, counts)
	return counts, nil
}

// Audit returns a poll's ordered blocks together with any violations.
func (a *Auditor) Audit(pollID string) ([]model.Block, []Violation, error) {
	blocks, err := a.ledger.PollBlocks(pollID)
	if err != nil {
		return nil, nil, err
	}
	return blocks, AuditChain(blocks, a.policy.BitsFor(pollID)), nil
}

// VerifyLedger audits every poll chain and scans the whole ledger for
// duplicate (poll_id, voter_hash) pairs.
func (a *Auditor) VerifyLedger() ([]Violation, error) {
	blocks, err := a.ledger.AllBlocks()
	if err != nil {
		return nil, err
	}

	byPoll := make(map[string][]model.Block)
	var order []string
	for _, b := range blocks {
		if _, ok := byPoll[b.PollId]; !ok {
			order = append(order, b.PollId)
		}
		byPoll[b.PollId] = append(byPoll[b.PollId], b)
	}

	var violations []Violation
	for _, pollID := range order {
		violations = append(violations, AuditChain(byPoll[pollID], a.policy.BitsFor(pollID))...)
	}
	violations = append(violations, FindDuplicateVotes(blocks)...)
	return violations, nil
}
