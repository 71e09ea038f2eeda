package cmd

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"hashvote/core"
)

var statsCmd = &cobra.Command{
	Use:          "stats",
	Short:        "Show per-poll vote statistics",
	RunE:         statsCmdF,
	SilenceUsage: true,
}

func init() {
	RootCmd.AddCommand(statsCmd)
}

func statsCmdF(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	initLogger(cfg)

	postgres := core.NewPostgres(cfg.Postgres)
	defer postgres.Close()

	polls, err := postgres.PollStats()
	if err != nil {
		return err
	}

	if len(polls) == 0 {
		log.Info("No votes recorded yet")
		return nil
	}
	for _, p := range polls {
		log.Infof("Poll %v: %v votes, first %v, last %v", p.PollId, p.Votes, p.FirstVoteAt, p.LastVoteAt)
	}
	return nil
}
