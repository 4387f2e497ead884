package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBriefer_RequiresKey(t *testing.T) {
	_, err := NewBriefer(context.Background(), "", "")
	assert.Error(t, err)
}

func TestBrief_ParsesResponse(t *testing.T) {
	var gotPrompt string
	b := &Briefer{generate: func(_ context.Context, prompt string) (string, error) {
		gotPrompt = prompt
		return `{"company":"Acme Robotics Inc.","listing_venue":"Nasdaq Capital Market","summary":["Warehouse robots."]}`, nil
	}}

	brief, err := b.Brief(context.Background(), "ACMR", []string{"ACM", "ACMX"}, "registration statement text")
	require.NoError(t, err)

	assert.Equal(t, "Acme Robotics Inc.", brief.Company)
	assert.Equal(t, "Nasdaq Capital Market", brief.ListingVenue)
	assert.Equal(t, []string{"Warehouse robots."}, brief.Summary)
	assert.Contains(t, gotPrompt, "Proposed ticker: ACMR")
	assert.Contains(t, gotPrompt, "Similar listed tickers: ACM, ACMX")
}

func TestBrief_Errors(t *testing.T) {
	boom := errors.New("quota exceeded")
	_, err := (&Briefer{generate: func(context.Context, string) (string, error) { return "", boom }}).
		Brief(context.Background(), "A", nil, "")
	assert.ErrorIs(t, err, boom)

	_, err = (&Briefer{generate: func(context.Context, string) (string, error) { return "not json", nil }}).
		Brief(context.Background(), "A", nil, "")
	assert.Error(t, err)
}

func TestBuildUserPrompt_TruncatesDocument(t *testing.T) {
	text := strings.Repeat("q", maxDocumentChars+500)
	prompt := buildUserPrompt("ABCD", []string{"ABC"}, text)

	assert.Equal(t, maxDocumentChars, strings.Count(prompt, "q"))
}

func TestResponseSchema(t *testing.T) {
	s := getResponseSchema()
	assert.Contains(t, s.Properties, "company")
	assert.Contains(t, s.Properties, "listing_venue")
	assert.Contains(t, s.Properties, "summary")
	assert.Equal(t, []string{"company", "summary"}, s.Required)
}
