package remote

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/raghavshulka/maps-llm-based-scrapper/extract"
)

// Analysis is the structured shape a model is asked to answer in.
type Analysis struct {
	Emails             []string `json:"emails"`
	Phones             []string `json:"phones"`
	SocialMedia        []string `json:"social_media"`
	AdditionalContacts []string `json:"additional_contacts"`
	Confidence         string   `json:"confidence"`
	Reasoning          string   `json:"reasoning"`
}

var codeFence = regexp.MustCompile("```json\n?|\n?```")

var looseEmailPattern = regexp.MustCompile(`[a-zA-Z0-9._-]+@[a-zA-Z0-9._-]+\.[a-zA-Z0-9_-]+`)

// DecodeEmailAnalysis turns raw model output into an Analysis. Code fences
// are stripped and the remainder parsed as strict JSON; when that fails,
// email-shaped strings are regex-harvested from the raw text with confidence
// marked low. The result is always well typed, and every reported email is
// lowercased and canonical.
func DecodeEmailAnalysis(content string) Analysis {
	clean := strings.TrimSpace(codeFence.ReplaceAllString(content, ""))

	var analysis Analysis
	if err := json.Unmarshal([]byte(clean), &analysis); err != nil {
		analysis = Analysis{
			Emails:     looseEmailPattern.FindAllString(content, -1),
			Confidence: "low",
			Reasoning:  "extracted from unstructured response",
		}
	}

	analysis.Emails = normalizeEmails(analysis.Emails)
	return analysis
}

// normalizeEmails lowercases, deduplicates, and drops anything that fails
// the canonical grammar.
func normalizeEmails(emails []string) []string {
	seen := make(map[string]struct{}, len(emails))
	var out []string
	for _, email := range emails {
		email = strings.ToLower(strings.TrimSpace(email))
		if !extract.IsCanonical(email) {
			continue
		}
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}
		out = append(out, email)
	}
	return out
}
