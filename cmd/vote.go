package cmd

import (
	"errors"
	"net/http"
	"runtime"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"hashvote/api"
	"hashvote/core"
	"hashvote/pow"
	"hashvote/util"
)

const maxCommitAttempts = 3

var (
	votePoll   string
	voteChoice string
	voteVoter  string
	voteServer string
)

var voteCmd = &cobra.Command{
	Use:          "vote",
	Short:        "Compute a proof of work and submit a vote",
	RunE:         voteCmdF,
	SilenceUsage: true,
}

func init() {
	RootCmd.AddCommand(voteCmd)
	voteCmd.Flags().StringVar(&votePoll, "poll", "", "poll identifier")
	voteCmd.Flags().StringVar(&voteChoice, "choice", "", "vote choice")
	voteCmd.Flags().StringVar(&voteVoter, "voter", "", "voter identifier, hashed before submission")
	voteCmd.Flags().StringVar(&voteServer, "server", "http://127.0.0.1:8080", "voting api address")
}

func voteCmdF(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	initLogger(cfg)

	if votePoll == "" || voteChoice == "" || voteVoter == "" {
		return errors.New("--poll, --choice and --voter are required")
	}

	policy := core.NewDifficultyPolicy(cfg.Difficulty)
	threads := runtime.NumCPU()
	if cfg.Threads != nil {
		threads = *cfg.Threads
	}

	client := core.NewClient(voteServer)
	voterHash := util.HashString(voteVoter)

	for attempt := 1; attempt <= maxCommitAttempts; attempt++ {
		quote, err := client.RequestQuote(votePoll, voterHash, voteChoice)
		if err != nil {
			return err
		}
		log.Infof("Quoted difficulty %v bits, chain tip %v", quote.DifficultyBits, quote.PrevHash)

		// Truncated so the hashed value matches what the server stores.
		timestamp := time.Now().UTC().Truncate(time.Microsecond)
		fields := pow.Fields{
			PollId:    votePoll,
			VoterHash: voterHash,
			Choice:    voteChoice,
			Timestamp: timestamp,
			PrevHash:  quote.PrevHash,
		}

		nonce, found := pow.SearchNonceParallel(cmd.Context(), fields, quote.DifficultyBits, policy.SearchTimeout(), threads)
		if !found {
			return errors.New("nonce search timed out, try again or against a lower difficulty")
		}
		log.Infof("Found nonce %v", nonce)

		resp, err := client.SubmitVote(api.VoteRequest{
			PollId:    votePoll,
			VoterHash: voterHash,
			Choice:    voteChoice,
			Timestamp: timestamp.Format(time.RFC3339Nano),
			Nonce:     &nonce,
		})
		if err != nil {
			var apiErr *core.ApiError
			// The tip may have moved between quote and commit.
			if errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest && attempt < maxCommitAttempts {
				log.Warnf("Proof of work rejected, recomputing against the new tip")
				continue
			}
			return err
		}

		log.Infof("%v, block hash %v", resp.Message, resp.BlockHash)
		return nil
	}

	return errors.New("vote not accepted after repeated attempts")
}
