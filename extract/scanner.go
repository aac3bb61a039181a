// Package extract implements the email discovery primitives: text scanning,
// obfuscation decoding, candidate validation, domain inference, and ranking.
package extract

import (
	"regexp"
	"strings"
)

// canonicalPattern is the email-shape grammar every reported candidate must
// satisfy. Letters outside ASCII are tolerated in the local part and domain
// labels; the top-level label must be at least two letters.
var canonicalPattern = regexp.MustCompile(`^[\p{L}\p{N}._%+-]+@[\p{L}\p{N}.-]+\.\p{L}{2,}$`)

// IsCanonical reports whether s matches the canonical email grammar:
// local@domain with at least two dot-separated domain labels and a top
// label of two or more characters.
func IsCanonical(s string) bool {
	if !canonicalPattern.MatchString(s) {
		return false
	}
	at := strings.LastIndex(s, "@")
	local, domain := s[:at], s[at+1:]
	if strings.HasPrefix(local, ".") || strings.HasSuffix(local, ".") {
		return false
	}
	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if label == "" {
			return false
		}
	}
	return len(labels[len(labels)-1]) >= 2
}

// The scanner applies its pattern families in a fixed order so candidate
// discovery order is stable across runs.
var scanPatterns = []*regexp.Regexp{
	// Standard grammar.
	regexp.MustCompile(`[a-zA-Z0-9][a-zA-Z0-9._%+-]*@[a-zA-Z0-9][a-zA-Z0-9.-]*\.[a-zA-Z]{2,}`),
	// Quoted.
	regexp.MustCompile(`["']([a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,})["']`),
	// Angle or square bracket delimited.
	regexp.MustCompile(`[<\[]([a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,})[>\]]`),
	// mailto: URIs.
	regexp.MustCompile(`(?i)mailto:([a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,})`),
}

// spacedPattern tolerates whitespace around the separator: "jane @ acme.com".
var spacedPattern = regexp.MustCompile(`([a-zA-Z0-9._%+-]+)\s*@\s*([a-zA-Z0-9.-]+\.[a-zA-Z]{2,})`)

// unicodePattern tolerates non-ASCII letters in local part and domain.
var unicodePattern = regexp.MustCompile(`[\p{L}\p{N}._%+-]+@[\p{L}\p{N}.-]+\.\p{L}{2,}`)

// obfuscationPatterns reconstruct addresses written to defeat naive scanners.
// Submatches are (local, domain, tld).
var obfuscationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)([a-zA-Z0-9._-]+)\s*\[at\]\s*([a-zA-Z0-9.-]+)\s*\[dot\]\s*([a-zA-Z]{2,})`),
	regexp.MustCompile(`(?i)([a-zA-Z0-9._-]+)\s*\(at\)\s*([a-zA-Z0-9.-]+)\s*\(dot\)\s*([a-zA-Z]{2,})`),
	regexp.MustCompile(`(?i)([a-zA-Z0-9._-]+)\s+at\s+([a-zA-Z0-9.-]+)\s+dot\s+([a-zA-Z]{2,})`),
}

// fullwidthAtPattern catches the fullwidth at sign used to dodge filters.
var fullwidthAtPattern = regexp.MustCompile(`([a-zA-Z0-9._-]+)\s*＠\s*([a-zA-Z0-9.-]+\.[a-zA-Z]{2,})`)

// Scan finds the distinct lowercase email-shaped substrings in text, in
// discovery order. The pattern families over-generate on purpose; every
// candidate is re-checked against the canonical grammar before being
// reported, and business plausibility is judged downstream by the Validator.
func Scan(text string) []string {
	if !strings.ContainsAny(text, "@＠") {
		return nil
	}

	seen := make(map[string]struct{})
	var out []string
	add := func(candidate string) {
		candidate = strings.ToLower(strings.TrimSpace(candidate))
		if !IsCanonical(candidate) {
			return
		}
		if _, dup := seen[candidate]; dup {
			return
		}
		seen[candidate] = struct{}{}
		out = append(out, candidate)
	}

	for _, pattern := range scanPatterns {
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			if len(match) > 1 {
				add(match[1])
			} else {
				add(match[0])
			}
		}
	}
	for _, match := range spacedPattern.FindAllStringSubmatch(text, -1) {
		add(match[1] + "@" + match[2])
	}
	for _, match := range unicodePattern.FindAllString(text, -1) {
		add(match)
	}

	return out
}

// DecodeObfuscated recognises "[at]"/"(at)"/" at " and "[dot]"/"(dot)"/" dot "
// substitutions (and the fullwidth at sign), reconstructing the canonical
// address form. Results pass the same format check as direct scans.
func DecodeObfuscated(text string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(candidate string) {
		candidate = strings.ToLower(strings.TrimSpace(candidate))
		if !IsCanonical(candidate) {
			return
		}
		if _, dup := seen[candidate]; dup {
			return
		}
		seen[candidate] = struct{}{}
		out = append(out, candidate)
	}

	for _, pattern := range obfuscationPatterns {
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			add(match[1] + "@" + match[2] + "." + match[3])
		}
	}
	for _, match := range fullwidthAtPattern.FindAllStringSubmatch(text, -1) {
		add(match[1] + "@" + match[2])
	}

	return out
}
