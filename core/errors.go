package core

import (
	"fmt"
	"strings"
)

// ValidationError reports a missing or malformed vote field.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing or malformed field: %s", e.Field)
}

// ConflictError reports a duplicate vote, whether caught by the advisory
// check or by the ledger's uniqueness constraint at commit time.
type ConflictError struct {
	PollId    string
	VoterHash string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("voter %.16s… has already voted in poll %s", e.VoterHash, e.PollId)
}

// ProofOfWorkError reports a nonce that does not satisfy the difficulty
// predicate against the current chain tip. The caller may recompute and retry.
type ProofOfWorkError struct {
	PollId string
}

func (e *ProofOfWorkError) Error() string {
	return fmt.Sprintf("invalid proof of work for poll %s", e.PollId)
}

// IntegrityError reports chain linkage, stored-hash or proof violations found
// during an audit.
type IntegrityError struct {
	Violations []Violation
}

func (e *IntegrityError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.String()
	}
	return "chain integrity compromised: " + strings.Join(msgs, "; ")
}
