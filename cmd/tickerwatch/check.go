package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shanehull/tickerwatch/internal/edgar"
	"github.com/shanehull/tickerwatch/internal/extract"
	"github.com/shanehull/tickerwatch/internal/similar"
)

var checkCmd = &cobra.Command{
	Use:   "check <index-url | file>",
	Short: "Extract and match the ticker of a single filing",
	Long: `Check runs extraction and matching against one filing without reading or writing the
ledger and without sending alerts. The argument is either a filing index page URL or a
local HTML file holding the primary document.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().Bool("no-match", false, "skip loading known tickers and only report extraction")

	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	noMatch, _ := cmd.Flags().GetBool("no-match")

	ctx := cmd.Context()
	logger := runLogger()
	hc := secClient(cfg)
	target := args[0]

	var body string
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		doc, err := edgar.New(hc, cfg.FeedURL, cfg.DocumentType, logger).FetchPrimaryDocument(ctx, target)
		if err != nil {
			return err
		}
		fmt.Printf("Document: %s (%s)\n", doc.URL, doc.Type)
		body = doc.Body
	} else {
		data, err := os.ReadFile(target)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", target, err)
		}
		body = string(data)
	}

	text, err := edgar.PlainText(body)
	if err != nil {
		return err
	}

	res, ok := extract.Find(text)
	for _, rule := range res.Rejected {
		fmt.Printf("Rule %q captured a known bad value, discarded\n", rule)
	}
	if !ok {
		fmt.Println("No ticker found.")
		return nil
	}
	fmt.Printf("Proposed ticker: %s (rule %q)\n", res.Ticker, res.Rule)

	if noMatch {
		return nil
	}

	known, err := tickerProvider(cfg, hc, logger).Load(ctx)
	if err != nil {
		return err
	}
	if known.Contains(res.Ticker) {
		fmt.Printf("%s is already listed.\n", res.Ticker)
	}

	matches := similar.FindNearDuplicates(res.Ticker, known.Sorted())
	if len(matches) == 0 {
		fmt.Println("No similar listed tickers.")
		return nil
	}
	fmt.Printf("Similar existing tickers: %s\n", strings.Join(matches, ", "))
	return nil
}
