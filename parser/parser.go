package parser

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/raghavshulka/maps-llm-based-scrapper/models"
)

// ValidateRecord ensures the harvester captured the required fields.
func ValidateRecord(r *models.ListingRecord) error {
	if r == nil {
		return fmt.Errorf("record is nil")
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("record missing business name")
	}
	if r.Email != "" && !r.EmailSource.Valid() {
		return fmt.Errorf("record %s has email with unknown source %q", r.Name, r.EmailSource)
	}
	return nil
}

var whitespace = regexp.MustCompile(`\s+`)

// NormalizeText collapses runs of whitespace to single spaces and trims the
// ends. Listing surfaces pad their text heavily.
func NormalizeText(text string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
}

var ratingPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)`)

// ParseRating pulls the numeric rating out of an accessibility label such as
// "4.6 stars 128 Reviews". Returns "" when the label carries no number.
func ParseRating(label string) string {
	return ratingPattern.FindString(label)
}

// ExtractDomain returns the bare host of a website URL, lowercased, with any
// www. prefix removed. Bare hosts without a scheme are accepted.
func ExtractDomain(website string) string {
	website = strings.TrimSpace(website)
	if website == "" {
		return ""
	}
	if !strings.Contains(website, "://") {
		website = "https://" + website
	}
	parsed, err := url.Parse(website)
	if err != nil || parsed.Hostname() == "" {
		return ""
	}
	host := strings.ToLower(parsed.Hostname())
	return strings.TrimPrefix(host, "www.")
}
