package pow

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"hashvote/util"
)

func testFields() Fields {
	return Fields{
		PollId:    "poll_2024",
		VoterHash: strings.Repeat("ab", 32),
		Choice:    "yes",
		Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		PrevHash:  strings.Repeat("0", 64),
	}
}

func TestHashBlockDeterministic(t *testing.T) {
	require := require.New(t)

	h1 := HashBlock(testFields(), 42)
	h2 := HashBlock(testFields(), 42)
	require.Equal(h1, h2)
	require.Len(h1, 64)
	require.Equal(strings.ToLower(h1), h1)
}

func TestHashBlockFieldSensitivity(t *testing.T) {
	require := require.New(t)

	base := HashBlock(testFields(), 42)

	poll := testFields()
	poll.PollId = "poll_2025"
	voter := testFields()
	voter.VoterHash = strings.Repeat("cd", 32)
	choice := testFields()
	choice.Choice = "no"
	ts := testFields()
	ts.Timestamp = ts.Timestamp.Add(time.Microsecond)
	prev := testFields()
	prev.PrevHash = strings.Repeat("1", 64)

	for name, f := range map[string]Fields{
		"poll_id":    poll,
		"voter_hash": voter,
		"choice":     choice,
		"timestamp":  ts,
		"prev_hash":  prev,
	} {
		require.NotEqual(base, HashBlock(f, 42), name)
	}
	require.NotEqual(base, HashBlock(testFields(), 43), "nonce")
}

func TestTargetMonotonicity(t *testing.T) {
	require := require.New(t)

	require.Equal(1, Target(0).Cmp(Target(1)))
	require.Equal(1, Target(8).Cmp(Target(18)))
	require.Equal(1, Target(18).Cmp(Target(255)))

	// Zero bits is the maximal target, not a division error.
	require.Equal(0, Target(0).Cmp(util.Pow256))
}

func TestTargetHex(t *testing.T) {
	require := require.New(t)

	require.Equal(strings.Repeat("ff", 32), TargetHex(0))
	require.Equal("00"+strings.Repeat("ff", 31), TargetHex(8))
	require.Equal("0000"+"3f"+strings.Repeat("ff", 29), TargetHex(18))

	for _, bits := range []int{0, 1, 7, 8, 9, 18, 32} {
		require.Len(TargetHex(bits), 64, "bits=%d", bits)
		require.True(strings.HasPrefix(TargetHex(bits), strings.Repeat("00", bits/8)), "bits=%d", bits)
	}
}

func TestSearchNonceSatisfiesVerify(t *testing.T) {
	require := require.New(t)

	f := testFields()
	nonce, found := SearchNonce(context.Background(), f, 16, 30*time.Second)
	require.True(found)
	require.True(Verify(f, nonce, 16))

	// A proof is bound to its fields.
	other := f
	other.Choice = "no"
	require.False(Verify(other, nonce, 16))
}

func TestSearchNonceDeterministic(t *testing.T) {
	require := require.New(t)

	f := testFields()
	n1, ok1 := SearchNonce(context.Background(), f, 12, 30*time.Second)
	n2, ok2 := SearchNonce(context.Background(), f, 12, 30*time.Second)
	require.True(ok1)
	require.True(ok2)
	require.Equal(n1, n2)
}

func TestSearchNonceTimeout(t *testing.T) {
	require := require.New(t)

	start := time.Now()
	_, found := SearchNonce(context.Background(), testFields(), 40, 10*time.Millisecond)
	require.False(found)
	require.Less(int64(time.Since(start)), int64(time.Second))
}

func TestSearchNonceCancellation(t *testing.T) {
	require := require.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, found := SearchNonce(ctx, testFields(), 40, time.Minute)
	require.False(found)
}

func TestSearchNonceParallelMatchesSequential(t *testing.T) {
	require := require.New(t)

	f := testFields()
	seq, ok := SearchNonce(context.Background(), f, 12, 30*time.Second)
	require.True(ok)

	for _, workers := range []int{2, 4, 8} {
		par, ok := SearchNonceParallel(context.Background(), f, 12, 30*time.Second, workers)
		require.True(ok, "workers=%d", workers)
		require.Equal(seq, par, "workers=%d", workers)
	}
}

func TestSearchNonceParallelTimeout(t *testing.T) {
	require := require.New(t)

	_, found := SearchNonceParallel(context.Background(), testFields(), 40, 10*time.Millisecond, 4)
	require.False(found)
}
