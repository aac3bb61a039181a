package extract

import "strings"

// Rank orders a deduplicated candidate set so business-likely addresses come
// first: a local part carrying a business keyword, or a domain sharing a
// word of four or more characters with the business name. Discovery order is
// preserved inside each partition; the first element becomes the primary.
func Rank(candidates []string, businessName string) []string {
	if len(candidates) < 2 {
		return candidates
	}

	nameWords := strings.Fields(strings.ToLower(businessName))

	var businessLikely, other []string
	for _, email := range candidates {
		lower := strings.ToLower(email)
		at := strings.LastIndex(lower, "@")
		if at < 0 {
			other = append(other, email)
			continue
		}
		local, domain := lower[:at], lower[at+1:]

		likely := hasBusinessKeyword(local)
		if !likely {
			for _, word := range nameWords {
				if len(word) >= 4 && strings.Contains(domain, word) {
					likely = true
					break
				}
			}
		}

		if likely {
			businessLikely = append(businessLikely, email)
		} else {
			other = append(other, email)
		}
	}

	return append(businessLikely, other...)
}
