/*
Package extract locates the proposed trading symbol declared in a registration statement.

Extraction is a best-effort heuristic: an ordered cascade of case-insensitive patterns is
tried against plain document text and the first acceptable capture wins.
*/
package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// knownBadTicker is what the "ticker" rule captures when it swallows the first five
// letters of the word "symbol" instead of the symbol itself.
const knownBadTicker = "SYMBO"

type rule struct {
	name string
	re   *regexp.Regexp
}

// rules are tried in order; index is priority. Only the exchange name of the exchange prefix
// rule is case-insensitive: its symbol must be written in capitals.
var rules = []rule{
	{"under the (trading) symbol", regexp.MustCompile(`(?i)under the (?:trading )?symbol\s+[“"]?([A-Z]{1,5})[”",.]?`)},
	{"under the symbol", regexp.MustCompile(`(?i)under the symbol\s+[“"]?([A-Z]{1,5})[”",.]?`)},
	{"ticker (symbol)", regexp.MustCompile(`(?i)ticker(?:\s+symbol)?\s*[:\-]?\s*[“"]?([A-Z]{1,5})[”",.]?`)},
	{"reserved the symbol", regexp.MustCompile(`(?i)reserved the (?:ticker |trading )?symbol\s+[“"]?([A-Z]{1,5})[”",.]?`)},
	{"exchange prefix", regexp.MustCompile(`\b(?i:nasdaq|nyse american|nyse arca|nyse|cboe)\s*:\s*[“"]?([A-Z]{1,5})\b`)},
}

// snippetContext is how many bytes of surrounding text a Result snippet keeps on each side.
const snippetContext = 80

// Result describes the outcome of the cascade. Rejected lists rules whose capture was
// discarded as a known bad value. Snippet is the winning match with some surrounding text.
type Result struct {
	Ticker   string
	Rule     string
	Snippet  string
	Rejected []string
}

// Ticker returns the proposed ticker found in text, or false if no rule produced an
// acceptable value.
func Ticker(text string) (string, bool) {
	res, ok := Find(text)
	return res.Ticker, ok
}

// Find runs the cascade and reports which rule won.
func Find(text string) (Result, bool) {
	var res Result
	for _, r := range rules {
		loc := r.re.FindStringSubmatchIndex(text)
		if len(loc) < 4 || loc[2] < 0 {
			continue
		}

		ticker := normalize(text[loc[2]:loc[3]])
		if ticker == "" {
			continue
		}
		if ticker == knownBadTicker {
			res.Rejected = append(res.Rejected, r.name)
			continue
		}

		res.Ticker = ticker
		res.Rule = r.name
		res.Snippet = snippet(text, loc[0], loc[1])
		return res, true
	}
	return res, false
}

func normalize(s string) string {
	return strings.ToUpper(strings.Trim(s, " \t\"'“”‘’.,:;()"))
}

// snippet returns text[start:end] widened by snippetContext on each side, with ellipses
// where it was cut.
func snippet(text string, start, end int) string {
	from := max(start-snippetContext, 0)
	to := min(end+snippetContext, len(text))
	for from > 0 && !utf8.RuneStart(text[from]) {
		from--
	}
	for to < len(text) && !utf8.RuneStart(text[to]) {
		to++
	}

	out := strings.TrimSpace(text[from:to])
	if from > 0 {
		out = "... " + out
	}
	if to < len(text) {
		out += " ..."
	}
	return out
}
