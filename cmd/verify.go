package cmd

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"hashvote/core"
)

var verifyCmd = &cobra.Command{
	Use:          "verify [poll_id]",
	Short:        "Audit chain integrity and scan for duplicate votes",
	Args:         cobra.MaximumNArgs(1),
	RunE:         verifyCmdF,
	SilenceUsage: true,
}

func init() {
	RootCmd.AddCommand(verifyCmd)
}

func verifyCmdF(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	initLogger(cfg)

	postgres := core.NewPostgres(cfg.Postgres)
	defer postgres.Close()

	auditor := core.NewAuditor(postgres, core.NewDifficultyPolicy(cfg.Difficulty), nil)

	var violations []core.Violation
	if len(args) > 0 {
		_, violations, err = auditor.Audit(args[0])
	} else {
		violations, err = auditor.VerifyLedger()
	}
	if err != nil {
		return err
	}

	if len(violations) == 0 {
		log.Info("Ledger verified, no violations found")
		return nil
	}
	for _, v := range violations {
		log.Warnf("%v", v)
	}
	return fmt.Errorf("found %d integrity violations", len(violations))
}
