package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"

	"github.com/mitchellh/mapstructure"

	"hashvote/api"
)

// Client is a thin HTTP client for the voting API, used by the console
// commands.
type Client struct {
	url string
}

// ApiError carries a non-2xx answer from the voting API.
type ApiError struct {
	Status int
	Detail string
}

func (e *ApiError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Detail)
}

func NewClient(url string) *Client {
	return &Client{url: strings.TrimRight(url, "/")}
}

// RequestQuote runs Phase 1 and returns the chain tip and difficulty to
// compute against.
func (c *Client) RequestQuote(pollID, voterHash, choice string) (*api.VoteResponse, error) {
	var resp api.VoteResponse
	if err := c.post("/vote", api.VoteRequest{PollId: pollID, VoterHash: voterHash, Choice: choice}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SubmitVote runs Phase 2 with the caller-computed nonce and timestamp.
func (c *Client) SubmitVote(vote api.VoteRequest) (*api.VoteResponse, error) {
	var resp api.VoteResponse
	if err := c.post("/vote", vote, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) PollResult(pollID string) (*api.PollResult, error) {
	var resp api.PollResult
	if err := c.get("/poll/"+pollID+"/result", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Health() (*api.Health, error) {
	var resp api.Health
	if err := c.get("/health", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// post 发送请求
func (c *Client) post(path string, body interface{}, out interface{}) error {
	resp, err := http.Post(c.url+path, "application/json", bytes.NewBuffer(api.Marshal(body)))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return c.decode(resp, out)
}

func (c *Client) get(path string, out interface{}) error {
	resp, err := http.Get(c.url + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return c.decode(resp, out)
}

// decode unmarshals the generic JSON answer and maps it onto the caller's
// type.
func (c *Client) decode(resp *http.Response, out interface{}) error {
	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(data, &payload); err != nil {
		return errors.New("Unable to unmarshal api resp (" + string(data) + ")")
	}

	if resp.StatusCode >= 400 {
		var apiErr api.Error
		mapstructure.Decode(payload, &apiErr)
		return &ApiError{Status: resp.StatusCode, Detail: apiErr.Detail}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(payload)
}
