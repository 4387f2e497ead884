// Package main is the entry point for the tickerwatch CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/phuslu/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shanehull/tickerwatch/internal/config"
)

// rootCmd is the base command for the tickerwatch CLI.
var rootCmd = &cobra.Command{
	Use:   "tickerwatch",
	Short: "Flag proposed tickers in new registration filings that resemble listed ones",
	Long: `tickerwatch polls the EDGAR current-filings feed for new registration statements,
extracts the trading symbol each registrant proposes, and alerts when that symbol is one
edit away from a ticker that already trades.

Each filing is processed at most once; processed accession numbers are kept in a ledger
file between runs.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		log.DefaultLogger = consoleLogger(level, os.Stderr)
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default: ./tickerwatch.yaml or ~/.config/tickerwatch/tickerwatch.yaml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("feed-url", "", "filing feed URL")
	flags.String("webhook-url", "", "alert webhook URL")
	flags.String("ledger", "", "processed filings ledger path")
	flags.String("ticker-cache", "", "known tickers cache path")
	flags.String("user-agent", "", "identifying User-Agent sent with every request")
	flags.String("document-type", "", "primary document type prefix (default S-1)")
	flags.Duration("delay", 0, "pause before each filing fetch (default 5s)")

	for key, name := range map[string]string{
		"feed_url":          "feed-url",
		"webhook_url":       "webhook-url",
		"ledger_path":       "ledger",
		"ticker_cache_path": "ticker-cache",
		"user_agent":        "user-agent",
		"document_type":     "document-type",
		"fetch_delay":       "delay",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(name))
	}
}

func initConfig() {
	config.SetDefaults(viper.GetViper())

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("tickerwatch")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "tickerwatch"))
		}
	}

	viper.SetEnvPrefix("TICKERWATCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// consoleLogger writes human-readable lines to out, colored only when out is a terminal.
func consoleLogger(level string, out *os.File) log.Logger {
	return log.Logger{
		Level: log.ParseLevel(level),
		Writer: &log.ConsoleWriter{
			ColorOutput: log.IsTerminal(out.Fd()),
			Writer:      out,
		},
	}
}

// loadConfig decodes the merged viper state once flags have been parsed.
func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetViper())
}

// runLogger returns a copy of the default logger tagged with a fresh run ID.
func runLogger() *log.Logger {
	logger := log.DefaultLogger
	logger.Context = log.NewContext(nil).Str("run_id", uuid.NewString()).Value()
	return &logger
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
