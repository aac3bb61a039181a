package extract

import (
	"regexp"
	"strings"
)

// commonPrefixes are the local parts businesses most often publish, in the
// order candidates should be proposed.
var commonPrefixes = []string{
	"info", "contact", "hello", "admin", "support",
	"sales", "enquiries", "enquiry", "mail", "office",
	"reception", "general", "team", "help", "service",
	"customerservice", "customer.service", "customer-service",
	"reservations", "booking", "bookings", "orders",
	"shop", "store", "online", "web", "website",
}

// blockedInferenceDomains are domains that never host a business's own
// mailbox, so guessing against them is pointless.
var blockedInferenceDomains = []string{
	"google.com",
	"maps.google.com",
	"facebook.com",
	"instagram.com",
	"business.site",
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]`)

// SanitizeName lowercases a business name, strips everything outside
// [a-z0-9], and truncates to max runes. Used for name-derived guesses.
func SanitizeName(name string, max int) string {
	clean := nonAlnum.ReplaceAllString(strings.ToLower(name), "")
	if max > 0 && len(clean) > max {
		clean = clean[:max]
	}
	return clean
}

// maxInferred caps how many guesses Infer returns.
const maxInferred = 5

// Inferrer derives plausible addresses from a website domain and business
// name when harvesting found nothing directly.
type Inferrer struct {
	validator *Validator
}

// NewInferrer returns an Inferrer whose guesses pass through validator.
func NewInferrer(validator *Validator) *Inferrer {
	return &Inferrer{validator: validator}
}

// Infer generates common business addresses for the domain, plus guesses
// derived from the business name, validated and capped at five. The order is
// deterministic: prefix guesses first, headed by info@domain. Blocked
// domains yield nothing.
func (i *Inferrer) Infer(domain, businessName string) []string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return nil
	}
	for _, blocked := range blockedInferenceDomains {
		if strings.Contains(domain, blocked) {
			return nil
		}
	}

	seen := make(map[string]struct{})
	var guesses []string
	add := func(email string) {
		if _, dup := seen[email]; dup {
			return
		}
		seen[email] = struct{}{}
		guesses = append(guesses, email)
	}

	for _, prefix := range commonPrefixes {
		add(prefix + "@" + domain)
	}

	if clean := SanitizeName(businessName, 20); len(clean) > 3 {
		add(clean + "@" + domain)
		add("info@" + clean + ".com")
		add("contact@" + clean + ".com")
	}
	if first := SanitizeName(strings.SplitN(businessName, " ", 2)[0], 20); len(first) > 3 {
		add(first + "@" + domain)
	}

	valid := i.validator.Filter(guesses, "")
	if len(valid) > maxInferred {
		valid = valid[:maxInferred]
	}
	return valid
}
