package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicker(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "trading symbol in straight quotes",
			text: `We intend to apply to list our common stock on the Nasdaq Capital Market under the trading symbol "ABCD".`,
			want: "ABCD",
		},
		{
			name: "symbol in curly quotes",
			text: `Our shares have been approved for listing on the NYSE under the symbol “XYZ”, subject to notice of issuance.`,
			want: "XYZ",
		},
		{
			name: "lowercase capture is uppercased",
			text: `listed under the symbol "qrst" on the exchange`,
			want: "QRST",
		},
		{
			name: "ticker symbol with colon",
			text: `Proposed ticker symbol: WXYZ`,
			want: "WXYZ",
		},
		{
			name: "reserved symbol",
			text: `We have reserved the trading symbol "NEWCO" with the exchange.`,
			want: "NEWCO",
		},
		{
			name: "exchange prefix",
			text: `Acme Holdings (Nasdaq: ACME) today announced`,
			want: "ACME",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Ticker(tt.text)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTicker_Absent(t *testing.T) {
	got, ok := Ticker("This prospectus relates to the offering of common stock by the selling stockholders.")
	assert.False(t, ok)
	assert.Empty(t, got)

	_, ok = Ticker("")
	assert.False(t, ok)
}

func TestTicker_ExchangePrefixIgnoresProse(t *testing.T) {
	for _, text := range []string{
		`Trading venues include the NYSE: see "Market Information" below.`,
		`Exchanges we considered (Nasdaq: the largest by volume) were reviewed.`,
		`nasdaq: acme`,
	} {
		got, ok := Ticker(text)
		assert.False(t, ok, "%q captured %q", text, got)
	}

	got, ok := Ticker(`Shares trade on the nasdaq: ACMQ since June.`)
	require.True(t, ok)
	assert.Equal(t, "ACMQ", got)
}

func TestTicker_FirstRuleWins(t *testing.T) {
	text := `Proposed ticker: LATE. Our stock will trade under the trading symbol "EARLY".`

	res, ok := Find(text)
	require.True(t, ok)
	assert.Equal(t, "EARLY", res.Ticker)
	assert.Equal(t, "under the (trading) symbol", res.Rule)
}

func TestTicker_RejectsKnownBadCapture(t *testing.T) {
	// The "ticker" rule captures "SYMBO" here because nothing usable follows "symbol".
	text := `We have not yet selected a ticker symbol. Upon listing, Acme (NASDAQ: ACMZ) will trade publicly.`

	res, ok := Find(text)
	require.True(t, ok)
	assert.Equal(t, "ACMZ", res.Ticker)
	assert.Equal(t, "exchange prefix", res.Rule)
	assert.Equal(t, []string{"ticker (symbol)"}, res.Rejected)
}

func TestTicker_KnownBadCaptureWithoutFallbackIsAbsent(t *testing.T) {
	res, ok := Find(`No ticker symbol. has been reserved.`)
	assert.False(t, ok)
	assert.NotEqual(t, knownBadTicker, res.Ticker)
	assert.Equal(t, []string{"ticker (symbol)"}, res.Rejected)
}

func TestFind_Snippet(t *testing.T) {
	lead := strings.Repeat("Risk factors apply. ", 10)
	text := lead + `Our common stock will trade under the symbol "ACMR". ` + lead

	res, ok := Find(text)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(res.Snippet, "... "))
	assert.True(t, strings.HasSuffix(res.Snippet, " ..."))
	assert.Contains(t, res.Snippet, `under the symbol "ACMR"`)
	assert.Less(t, len(res.Snippet), len(text))

	res, ok = Find(`Listed under the symbol ABCD.`)
	require.True(t, ok)
	assert.Equal(t, "Listed under the symbol ABCD.", res.Snippet)
}
