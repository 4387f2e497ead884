/*
Package ai asks the Gemini API for a short brief on a filing whose proposed ticker has been
flagged, so alerts carry the registrant name and listing venue.
*/
package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"

	"github.com/shanehull/tickerwatch/internal/types"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-2.5-flash"

type generateFunc func(ctx context.Context, prompt string) (string, error)

// Briefer produces filing briefs.
type Briefer struct {
	generate generateFunc
}

// NewBriefer creates a Gemini-backed briefer.
func NewBriefer(ctx context.Context, apiKey string, modelName string) (*Briefer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if modelName == "" {
		modelName = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		},
		ResponseMIMEType: "application/json",
		ResponseSchema:   getResponseSchema(),
	}

	generate := func(ctx context.Context, prompt string) (string, error) {
		contents := []*genai.Content{
			{
				Parts: []*genai.Part{{Text: prompt}},
				Role:  "user",
			},
		}
		resp, err := client.Models.GenerateContent(ctx, modelName, contents, config)
		if err != nil {
			return "", fmt.Errorf("gemini API call failed: %w", err)
		}
		return resp.Text(), nil
	}

	return &Briefer{generate: generate}, nil
}

// Brief summarizes the filing text for an alert on proposed.
func (b *Briefer) Brief(ctx context.Context, proposed string, matches []string, text string) (*types.FilingBrief, error) {
	respText, err := b.generate(ctx, buildUserPrompt(proposed, matches, text))
	if err != nil {
		return nil, err
	}

	var brief types.FilingBrief
	if err := json.Unmarshal([]byte(respText), &brief); err != nil {
		return nil, fmt.Errorf("failed to unmarshal gemini JSON response: %w. Raw text: %s", err, respText)
	}
	return &brief, nil
}

func getResponseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"company": {
				Type:        genai.TypeString,
				Description: "Legal name of the registrant.",
			},
			"listing_venue": {
				Type:        genai.TypeString,
				Description: "Exchange and tier the registrant intends to list on, empty if not stated.",
			},
			"summary": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: "2-4 concise bullet points about the business and the offering.",
			},
		},
		Required: []string{"company", "summary"},
	}
}
