package cmd

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"hashvote/core"
)

var initDbCmd = &cobra.Command{
	Use:          "initdb",
	Short:        "Create the ledger schema",
	RunE:         initDbCmdF,
	SilenceUsage: true,
}

func init() {
	RootCmd.AddCommand(initDbCmd)
}

func initDbCmdF(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	initLogger(cfg)

	postgres := core.NewPostgres(cfg.Postgres)
	defer postgres.Close()

	if err := postgres.CreateSchema(); err != nil {
		return err
	}
	log.Info("Ledger schema created")
	return nil
}
