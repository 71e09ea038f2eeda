package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"hashvote/api"
	"hashvote/model"
	"hashvote/pow"
)

func newTestApi(t *testing.T) (*httptest.Server, *Client, *memLedger) {
	t.Helper()

	ledger := newMemLedger()
	policy := testPolicy(testBits)
	a := NewApi("127.0.0.1:0", NewAdmission(ledger, policy, nil), NewAuditor(ledger, policy, nil))

	srv := httptest.NewServer(a.routes())
	t.Cleanup(srv.Close)
	return srv, NewClient(srv.URL), ledger
}

func jsonDecode(resp *http.Response, out interface{}) error {
	return json.NewDecoder(resp.Body).Decode(out)
}

// voteThrough runs the whole two-phase protocol over HTTP.
func voteThrough(t *testing.T, client *Client, pollID, voterHash, choice string) *api.VoteResponse {
	t.Helper()

	quote, err := client.RequestQuote(pollID, voterHash, choice)
	require.NoError(t, err)

	ts := time.Now().UTC().Truncate(time.Microsecond)
	f := pow.Fields{
		PollId:    pollID,
		VoterHash: voterHash,
		Choice:    choice,
		Timestamp: ts,
		PrevHash:  quote.PrevHash,
	}
	nonce, found := pow.SearchNonce(context.Background(), f, quote.DifficultyBits, 30*time.Second)
	require.True(t, found)

	resp, err := client.SubmitVote(api.VoteRequest{
		PollId:    pollID,
		VoterHash: voterHash,
		Choice:    choice,
		Timestamp: ts.Format(time.RFC3339Nano),
		Nonce:     &nonce,
	})
	require.NoError(t, err)
	return resp
}

func TestApiQuote(t *testing.T) {
	require := require.New(t)

	_, client, _ := newTestApi(t)

	quote, err := client.RequestQuote("p1", voterA, "yes")
	require.NoError(err)
	require.Equal(testBits, quote.DifficultyBits)
	require.Equal(pow.TargetHex(testBits), quote.DifficultyTarget)
	require.Len(quote.PrevHash, 64)
}

func TestApiVoteRoundTrip(t *testing.T) {
	require := require.New(t)

	_, client, ledger := newTestApi(t)

	resp := voteThrough(t, client, "p1", voterA, "yes")
	require.Len(resp.BlockHash, 64)
	voteThrough(t, client, "p1", voterB, "no")

	blocks, err := ledger.PollBlocks("p1")
	require.NoError(err)
	require.True(VerifyChain(blocks, testBits))

	result, err := client.PollResult("p1")
	require.NoError(err)
	require.Equal(2, result.TotalVotes)
	require.Equal(map[string]int{"yes": 1, "no": 1}, result.Choices)
}

func TestApiDuplicateVoteConflict(t *testing.T) {
	require := require.New(t)

	_, client, _ := newTestApi(t)
	voteThrough(t, client, "p1", voterA, "yes")

	_, err := client.RequestQuote("p1", voterA, "no")
	var apiErr *ApiError
	require.True(errors.As(err, &apiErr))
	require.Equal(http.StatusConflict, apiErr.Status)
}

func TestApiMissingFields(t *testing.T) {
	require := require.New(t)

	srv, _, _ := newTestApi(t)

	resp, err := http.Post(srv.URL+"/vote", "application/json",
		bytes.NewBufferString(`{"poll_id": "p1", "choice": "yes"}`))
	require.NoError(err)
	defer resp.Body.Close()
	require.Equal(http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestApiInvalidJSON(t *testing.T) {
	require := require.New(t)

	srv, _, _ := newTestApi(t)

	resp, err := http.Post(srv.URL+"/vote", "application/json", bytes.NewBufferString("not json"))
	require.NoError(err)
	defer resp.Body.Close()
	require.Equal(http.StatusBadRequest, resp.StatusCode)
}

func TestApiInvalidProofRejected(t *testing.T) {
	require := require.New(t)

	_, client, _ := newTestApi(t)

	ts := time.Now().UTC().Truncate(time.Microsecond)
	f := pow.Fields{PollId: "p1", VoterHash: voterA, Choice: "yes", Timestamp: ts, PrevHash: model.GenesisHash}
	bad := uint64(0)
	for pow.Verify(f, bad, testBits) {
		bad++
	}

	_, err := client.SubmitVote(api.VoteRequest{
		PollId:    "p1",
		VoterHash: voterA,
		Choice:    "yes",
		Timestamp: ts.Format(time.RFC3339Nano),
		Nonce:     &bad,
	})
	var apiErr *ApiError
	require.True(errors.As(err, &apiErr))
	require.Equal(http.StatusBadRequest, apiErr.Status)
}

func TestApiEmptyPollResult(t *testing.T) {
	require := require.New(t)

	_, client, _ := newTestApi(t)

	result, err := client.PollResult("nope")
	require.NoError(err)
	require.Equal(0, result.TotalVotes)
	require.Empty(result.Choices)
}

func TestApiAudit(t *testing.T) {
	require := require.New(t)

	srv, client, ledger := newTestApi(t)
	voteThrough(t, client, "p1", voterA, "yes")
	voteThrough(t, client, "p1", voterB, "no")

	resp, err := http.Get(srv.URL + "/poll/p1/audit")
	require.NoError(err)
	defer resp.Body.Close()
	require.Equal(http.StatusOK, resp.StatusCode)

	var audit api.AuditResponse
	require.NoError(jsonDecode(resp, &audit))
	require.True(audit.ChainValid)
	require.Len(audit.Blocks, 2)
	require.Empty(audit.Violations)

	// Tamper and audit again: violations surface, the endpoint still answers.
	ledger.blocks[0].Choice = "tampered"
	resp2, err := http.Get(srv.URL + "/poll/p1/audit")
	require.NoError(err)
	defer resp2.Body.Close()

	require.NoError(jsonDecode(resp2, &audit))
	require.False(audit.ChainValid)
	require.NotEmpty(audit.Violations)
}

func TestApiHealth(t *testing.T) {
	require := require.New(t)

	_, client, _ := newTestApi(t)

	health, err := client.Health()
	require.NoError(err)
	require.Equal("healthy", health.Status)
	require.Equal(api.Version, health.Version)
}
