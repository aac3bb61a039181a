package harvest

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/raghavshulka/maps-llm-based-scrapper/extract"
)

// identityAttrs are the attributes a profile badge may carry the signed-in
// address in.
var identityAttrs = []string{
	"alt", "title", "data-email", "data-account-email", "data-user-email", "aria-label",
}

// DetectSelfEmail finds the operator's signed-in account address so harvested
// occurrences of it can be excluded. Detection tries the profile badge
// surfaces first, then account menu text, then a script-block scan that
// prefers consumer mailbox addresses. Returns "" when nothing is found;
// validation then runs without a self exclusion.
func DetectSelfEmail(doc *goquery.Document, table SelectorTable) string {
	for _, selector := range table.Profile {
		var found string
		doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			var parts []string
			for _, attr := range identityAttrs {
				if val, ok := sel.Attr(attr); ok {
					parts = append(parts, val)
				}
			}
			parts = append(parts, sel.Text())
			if emails := extract.Scan(strings.Join(parts, " ")); len(emails) > 0 {
				found = emails[0]
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}

	for _, selector := range table.AccountMenus {
		var found string
		doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			if emails := extract.Scan(sel.Text()); len(emails) > 0 {
				found = emails[0]
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}

	var fallback string
	doc.Find("script").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		emails := extract.Scan(sel.Text())
		for _, email := range emails {
			if strings.HasSuffix(email, "@gmail.com") {
				fallback = email
				return false
			}
		}
		if fallback == "" && len(emails) > 0 {
			fallback = emails[0]
		}
		return true
	})
	return fallback
}
