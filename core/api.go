package core

import (
	"context"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"
	log "github.com/sirupsen/logrus"

	"hashvote/api"
)

const MaxVoteReqSize = 4096

// Api serves the JSON voting endpoints: POST /vote (two-phase),
// GET /poll/{id}/result, GET /poll/{id}/audit and GET /health.
type Api struct {
	srv *http.Server

	admission *Admission
	auditor   *Auditor

	wg sync.WaitGroup
}

func StartApi(svr *Server) *Api {
	a := NewApi(*svr.cfg.Api.Listen, svr.admission, svr.auditor)

	a.wg.Add(1)
	go a.listen()
	return a
}

func NewApi(listen string, admission *Admission, auditor *Auditor) *Api {
	a := &Api{
		admission: admission,
		auditor:   auditor,
	}
	a.srv = &http.Server{Addr: listen, Handler: a.routes()}
	return a
}

func (a *Api) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/vote", a.handleVote)
	mux.HandleFunc("/poll/", a.handlePoll)
	mux.HandleFunc("/health", a.handleHealth)
	return mux
}

func (a *Api) listen() {
	defer func() {
		log.Info("Api server is exiting")
		a.wg.Done()
	}()

	log.Infof("Api listening on %s", a.srv.Addr)
	if err := a.srv.ListenAndServe(); err != http.ErrServerClosed {
		// unexpected error. port in use?
		log.Fatalf("ListenAndServe(): %v", err)
	}
}

func (a *Api) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	if err := a.srv.Shutdown(ctx); err != nil {
		log.Errorf("Shutdown(): %v", err)
	}

	// wait for goroutine started in StartApi to stop
	a.wg.Wait()
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(api.Marshal(v))
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), api.Error{Detail: err.Error()})
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	var validationErr *ValidationError
	var conflictErr *ConflictError
	var powErr *ProofOfWorkError

	switch {
	case errors.As(err, &validationErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &conflictErr):
		return http.StatusConflict
	case errors.As(err, &powErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// handleVote implements the two-phase protocol: a payload without a nonce
// asks for a quote, one with a nonce commits.
func (a *Api) handleVote(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, api.Error{Detail: "method not allowed"})
		return
	}

	data, err := ioutil.ReadAll(http.MaxBytesReader(w, req.Body, MaxVoteReqSize))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, api.Error{Detail: "unable to read request body"})
		return
	}

	payload, err := api.UnmarshalVotePayload(data)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, api.Error{Detail: "invalid JSON payload"})
		return
	}

	var vote api.VoteRequest
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &vote,
		WeaklyTypedInput: true,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if err := decoder.Decode(payload); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, api.Error{Detail: err.Error()})
		return
	}

	if vote.Nonce == nil {
		quote, err := a.admission.Quote(vote.PollId, vote.VoterHash, vote.Choice)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, api.VoteResponse{
			Message:          fmt.Sprintf("Compute nonce with %d-bit leading zero requirement", quote.DifficultyBits),
			DifficultyTarget: quote.DifficultyTarget,
			DifficultyBits:   quote.DifficultyBits,
			PrevHash:         quote.PrevHash,
		})
		return
	}

	var timestamp time.Time
	if vote.Timestamp != "" {
		if timestamp, err = time.Parse(time.RFC3339Nano, vote.Timestamp); err != nil {
			writeError(w, &ValidationError{Field: "timestamp"})
			return
		}
	}

	block, err := a.admission.Commit(vote.PollId, vote.VoterHash, vote.Choice, timestamp, *vote.Nonce)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.VoteResponse{
		Message:   "Vote successfully recorded",
		BlockHash: block.BlockHash,
	})
}

// handlePoll serves /poll/{id}/result and /poll/{id}/audit.
func (a *Api) handlePoll(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, api.Error{Detail: "method not allowed"})
		return
	}

	parts := strings.Split(strings.Trim(req.URL.Path, "/"), "/")
	if len(parts) != 3 || parts[0] != "poll" {
		writeJSON(w, http.StatusNotFound, api.Error{Detail: "not found"})
		return
	}
	pollID := parts[1]

	switch parts[2] {
	case "result":
		counts, err := a.auditor.Results(pollID)
		if err != nil {
			writeError(w, err)
			return
		}
		total := 0
		for _, n := range counts {
			total += n
		}
		writeJSON(w, http.StatusOK, api.PollResult{
			PollId:     pollID,
			TotalVotes: total,
			Choices:    counts,
		})

	case "audit":
		blocks, violations, err := a.auditor.Audit(pollID)
		if err != nil {
			writeError(w, err)
			return
		}
		resp := api.AuditResponse{
			PollId:     pollID,
			Blocks:     blocks,
			ChainValid: len(violations) == 0,
		}
		for _, v := range violations {
			resp.Violations = append(resp.Violations, v.String())
		}
		writeJSON(w, http.StatusOK, resp)

	default:
		writeJSON(w, http.StatusNotFound, api.Error{Detail: "not found"})
	}
}

func (a *Api) handleHealth(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, api.Health{
		Status:    "healthy",
		Version:   api.Version,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	})
}
