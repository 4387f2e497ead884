package ai

import (
	"fmt"
	"strings"
)

// maxDocumentChars bounds how much of a registration statement is sent to the model.
// The cover page and prospectus summary come first and carry what the brief needs.
const maxDocumentChars = 60000

const systemInstruction = `
# [INSTRUCTION]

You are a capital markets analyst reviewing SEC registration statements (Form S-1 and
similar) for companies that intend to list a new security.

A screening tool has flagged the proposed trading symbol of this filing as one character
away from symbols that are already listed. Your task is to help a reviewer decide whether
investors could confuse the two securities.

From the provided document text, extract:

- **company**: the legal name of the registrant.
- **listing_venue**: the exchange and market tier the registrant intends to list on, exactly
  as stated (for example "Nasdaq Capital Market" or "NYSE American"). Empty if not stated.
- **summary**: 2-4 short bullet points describing the business, the size and type of the
  offering, and anything in the text that bears on confusion with the similar symbols.

Only use facts present in the document text. Do not speculate about the similar symbols'
issuers beyond what the document says.
`

const userPromptTemplate = `
Proposed ticker: %s
Similar listed tickers: %s

Analyze the following document text:
--
%s
---
`

func buildUserPrompt(proposed string, matches []string, text string) string {
	if len(text) > maxDocumentChars {
		text = text[:maxDocumentChars]
	}
	return fmt.Sprintf(userPromptTemplate, proposed, strings.Join(matches, ", "), text)
}
