package core

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"hashvote/config"
)

func seedLedger(t *testing.T, ledger *memLedger, pollID string, votes ...[2]string) {
	t.Helper()

	for _, b := range buildChain(t, pollID, votes...) {
		block := b
		block.Id = 0
		require.NoError(t, ledger.InsertBlock(&block))
	}
}

func TestResultsAggregation(t *testing.T) {
	require := require.New(t)

	ledger := newMemLedger()
	seedLedger(t, ledger, "p1", [2]string{voterA, "yes"}, [2]string{voterB, "no"}, [2]string{voterC, "yes"})

	auditor := NewAuditor(ledger, testPolicy(testBits), nil)

	counts, err := auditor.Results("p1")
	require.NoError(err)
	require.Equal(map[string]int{"yes": 2, "no": 1}, counts)

	// An unknown poll is an empty, valid chain.
	counts, err = auditor.Results("nope")
	require.NoError(err)
	require.Empty(counts)
}

func TestResultsIntegrityGate(t *testing.T) {
	require := require.New(t)

	ledger := newMemLedger()
	seedLedger(t, ledger, "p1", [2]string{voterA, "yes"}, [2]string{voterB, "no"})
	ledger.blocks[1].Choice = "tampered"

	auditor := NewAuditor(ledger, testPolicy(testBits), nil)

	var integrityErr *IntegrityError
	_, err := auditor.Results("p1")
	require.True(errors.As(err, &integrityErr))
	require.NotEmpty(integrityErr.Violations)
}

func TestAuditEndToEnd(t *testing.T) {
	require := require.New(t)

	ledger := newMemLedger()
	seedLedger(t, ledger, "p1", [2]string{voterA, "yes"}, [2]string{voterB, "no"})

	auditor := NewAuditor(ledger, testPolicy(testBits), nil)

	blocks, violations, err := auditor.Audit("p1")
	require.NoError(err)
	require.Len(blocks, 2)
	require.Empty(violations)

	ledger.blocks[0].BlockHash = strings.Repeat("4", 64)
	_, violations, err = auditor.Audit("p1")
	require.NoError(err)
	require.NotEmpty(violations)
}

func TestVerifyLedgerAcrossPolls(t *testing.T) {
	require := require.New(t)

	ledger := newMemLedger()
	seedLedger(t, ledger, "p1", [2]string{voterA, "yes"}, [2]string{voterB, "no"})
	seedLedger(t, ledger, "p2", [2]string{voterA, "no"})

	auditor := NewAuditor(ledger, testPolicy(testBits), nil)

	violations, err := auditor.VerifyLedger()
	require.NoError(err)
	require.Empty(violations)

	// Bypass the insert guard to plant a duplicate, as external tampering
	// with shared storage would.
	dup := ledger.blocks[0]
	dup.Id = 99
	dup.BlockHash = strings.Repeat("5", 64)
	ledger.blocks = append(ledger.blocks, dup)

	violations, err = auditor.VerifyLedger()
	require.NoError(err)

	kinds := make(map[string]bool)
	for _, v := range violations {
		kinds[v.Kind] = true
	}
	require.True(kinds[ViolationDuplicate])
}

func TestVerifyLedgerEmpty(t *testing.T) {
	require := require.New(t)

	auditor := NewAuditor(newMemLedger(), testPolicy(testBits), nil)
	violations, err := auditor.VerifyLedger()
	require.NoError(err)
	require.Empty(violations)

	require.True(VerifyChain(nil, testBits))
}

func TestDifficultyPolicyNamespaces(t *testing.T) {
	require := require.New(t)

	policy := NewDifficultyPolicy(nil)
	require.Equal(DefaultDifficultyBits, policy.BitsFor("general_election"))
	require.Equal(DefaultReducedBits, policy.BitsFor("test_poll"))
	// Admission and audit share one reduced value per namespace.
	require.Equal(DefaultReducedBits, policy.BitsFor("audit_poll"))

	timeout := "250ms"
	bits := 10
	configured := NewDifficultyPolicy(&config.Difficulty{
		Bits:              &bits,
		LowStakesPrefixes: []string{"dev_"},
		SearchTimeout:     &timeout,
	})
	require.Equal(bits, configured.BitsFor("general_election"))
	require.Equal(bits, configured.BitsFor("test_poll"))
	require.Equal(DefaultReducedBits, configured.BitsFor("dev_poll"))
	require.Equal(250*time.Millisecond, configured.SearchTimeout())
}
