package extract

import (
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// denylist holds substrings that disqualify a candidate outright:
// placeholder and disposable markers, platform/analytics/social domains,
// link shorteners, image density suffixes, and pure infrastructure roles.
var denylist = []string{
	"example.com",
	"example.org",
	"test.com",
	"localhost",
	"noreply@",
	"no-reply@",
	"donotreply@",
	"@2x",
	"@3x",
	"sentry.io",
	"gstatic.com",
	"googleapis.com",
	"google.com",
	"facebook.com",
	"twitter.com",
	"instagram.com",
	"linkedin.com",
	"youtube.com",
	"youtu.be",
	"bit.ly",
	"tinyurl.com",
	"goo.gl",
	"ow.ly",
	"short.link",
	"placeholder",
	"dummy",
	"fake",
	"invalid",
	"wixpress.com",
	"admin@",
	"webmaster@",
	"postmaster@",
	"hostmaster@",
	"abuse@",
	"security@",
	"privacy@",
	"legal@",
	"dmca@",
	"copyright@",
}

// personalProviders are consumer mailbox domains. Addresses on these domains
// get a second look for business signal instead of a flat accept.
var personalProviders = []string{
	"gmail.com",
	"yahoo.com",
	"hotmail.com",
	"outlook.com",
	"aol.com",
	"icloud.com",
	"me.com",
	"mac.com",
	"live.com",
	"msn.com",
	"protonmail.com",
	"yandex.com",
	"mail.com",
	"inbox.com",
}

// businessKeywords mark a local part as business-plausible. Shared with the
// ranker's business-likely partition.
var businessKeywords = []string{
	"info", "contact", "sales", "support", "admin", "office", "business",
	"service", "help", "inquiry", "marketing", "team", "reception",
	"booking", "reservations", "orders", "customerservice", "hello",
	"welcome", "general", "mail", "enquiry", "enquiries", "shop",
	"store", "company", "corp", "inc", "llc", "group", "services",
	"solutions", "consulting", "management", "director", "manager",
	"owner", "ceo", "president", "founder", "principal", "partner",
}

// suspiciousPatterns match local parts that look personal or auto-generated.
var suspiciousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[a-z]{1,3}[0-9]{4,}$`), // ab1234
	regexp.MustCompile(`^[0-9]{4,}$`),           // digits only
	regexp.MustCompile(`^(test|demo|sample|temp)`),
	regexp.MustCompile(`^(user|admin|root|system)$`),
	regexp.MustCompile(`^[a-z]{1,2}[0-9]{1,2}$`), // a1, ab12
}

// businessNamePatterns match local parts shaped like a business name.
var businessNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[a-z][a-z0-9]*[a-z]$`), // plain name, letter-bounded
	regexp.MustCompile(`^[a-z]+[._-][a-z]+`),    // joined words
	regexp.MustCompile(`^[a-z]{4,}[0-9]{1,3}$`), // name plus short suffix
}

// obviouslyPersonalPatterns reject personal-provider addresses that carry no
// business signal at all.
var obviouslyPersonalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[a-z]+[0-9]{4,}[a-z]*$`),  // jane5678, john1234x
	regexp.MustCompile(`^[a-z]+\.[a-z]+[0-9]{2,}$`), // jane.doe99
}

// Validator decides whether a scanned candidate is a plausible business
// email. Decisions are pure in their inputs, so they are memoised in a
// bounded LRU cache.
type Validator struct {
	cache *lru.Cache[string, bool]
}

// NewValidator builds a Validator with a decision cache of the given size.
func NewValidator(cacheSize int) *Validator {
	if cacheSize <= 0 {
		cacheSize = 4096
	}
	// lru.New only fails on a non-positive size.
	cache, _ := lru.New[string, bool](cacheSize)
	return &Validator{cache: cache}
}

// Validate reports whether candidate is acceptable as a business contact.
// selfEmail is the operator's own account address; a harvested occurrence of
// it is never accepted. Rejection rules run in a fixed order and the first
// match wins.
func (v *Validator) Validate(candidate, selfEmail string) bool {
	key := candidate + "\x00" + selfEmail
	if decision, ok := v.cache.Get(key); ok {
		return decision
	}
	decision := validate(candidate, selfEmail)
	v.cache.Add(key, decision)
	return decision
}

// Filter validates candidates, preserving discovery order and collapsing
// case-insensitive duplicates.
func (v *Validator) Filter(candidates []string, selfEmail string) []string {
	seen := make(map[string]struct{}, len(candidates))
	var out []string
	for _, candidate := range candidates {
		lower := strings.ToLower(strings.TrimSpace(candidate))
		if _, dup := seen[lower]; dup {
			continue
		}
		seen[lower] = struct{}{}
		if v.Validate(lower, selfEmail) {
			out = append(out, lower)
		}
	}
	return out
}

func validate(candidate, selfEmail string) bool {
	email := strings.ToLower(strings.TrimSpace(candidate))

	if !IsCanonical(email) {
		return false
	}

	if selfEmail != "" && email == strings.ToLower(strings.TrimSpace(selfEmail)) {
		return false
	}

	for _, blocked := range denylist {
		if strings.Contains(email, blocked) {
			return false
		}
	}

	at := strings.LastIndex(email, "@")
	local, domain := email[:at], email[at+1:]

	labels := strings.Split(domain, ".")
	if len(domain) < 4 || len(labels) < 2 || len(labels[len(labels)-1]) < 2 {
		return false
	}

	suspicious := matchesAny(local, suspiciousPatterns)

	if isPersonalProvider(domain) {
		hasKeyword := hasBusinessKeyword(local)
		nameShaped := matchesAny(local, businessNamePatterns)
		if hasKeyword || nameShaped {
			return true
		}
		if suspicious {
			return false
		}
		if matchesAny(local, obviouslyPersonalPatterns) {
			return false
		}
		// Lenient default for consumer providers with no counter-signal.
		return true
	}

	return !suspicious
}

func isPersonalProvider(domain string) bool {
	for _, provider := range personalProviders {
		if domain == provider {
			return true
		}
	}
	return false
}

func hasBusinessKeyword(local string) bool {
	for _, keyword := range businessKeywords {
		if strings.Contains(local, keyword) {
			return true
		}
	}
	return false
}

func matchesAny(s string, patterns []*regexp.Regexp) bool {
	for _, pattern := range patterns {
		if pattern.MatchString(s) {
			return true
		}
	}
	return false
}
