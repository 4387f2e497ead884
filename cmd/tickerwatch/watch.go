package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/phuslu/log"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shanehull/tickerwatch/internal/config"
	"github.com/shanehull/tickerwatch/internal/notify"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Process the filing feed on a cron schedule",
	Long: `Watch runs once immediately and then on every tick of the configured cron schedule
(standard five-field syntax, default every 15 minutes). A tick that arrives while the
previous run is still going is skipped. Interrupt to stop.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().String("schedule", "", "cron schedule (default \"*/15 * * * *\")")
	_ = viper.BindPFlag("schedule", watchCmd.Flags().Lookup("schedule"))

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(cfg.Schedule, func() { scheduledRun(ctx, cfg) }); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", cfg.Schedule, err)
	}

	log.Info().Str("schedule", cfg.Schedule).Msg("Watch started")
	scheduledRun(ctx, cfg)

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()

	log.Info().Msg("Watch stopped")
	return nil
}

// scheduledRun logs failures instead of returning them so one bad run does not end the
// watch.
func scheduledRun(ctx context.Context, cfg *config.Config) {
	if ctx.Err() != nil {
		return
	}

	logger := runLogger()
	s, err := newScanner(ctx, cfg, os.Stdout, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Run setup failed")
		return
	}

	summary, err := s.Run(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Run aborted")
	}
	notify.ReportSummary(os.Stdout, summary, cfg.LedgerPath)
}
