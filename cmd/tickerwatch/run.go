package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shanehull/tickerwatch/internal/notify"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process the current filing feed once",
	Long: `Run loads the known-ticker universe (refreshing the local cache when it is stale),
reads the filing feed and processes every filing not yet in the ledger. A summary is
printed when the run ends.`,
	Args: cobra.NoArgs,
	RunE: runOnce,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := runLogger()
	s, err := newScanner(ctx, cfg, os.Stdout, logger)
	if err != nil {
		return err
	}

	summary, err := s.Run(ctx)
	notify.ReportSummary(os.Stdout, summary, cfg.LedgerPath)
	if err != nil {
		logger.Error().Err(err).Msg("Run aborted")
		return err
	}
	return nil
}
