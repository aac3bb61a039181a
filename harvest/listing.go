package harvest

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/raghavshulka/maps-llm-based-scrapper/models"
	"github.com/raghavshulka/maps-llm-based-scrapper/parser"
)

// maxReviewExcerpts bounds how many review snippets feed the prompt context.
const maxReviewExcerpts = 3

// reviewExcerptLen bounds each snippet's length.
const reviewExcerptLen = 200

// ExtractListing reads the listing detail fields off doc: name, category,
// address, phones, website, rating, social links, and the free-text blob
// used as model prompt context. Email fields are left empty; harvesting
// fills them separately.
func ExtractListing(doc *goquery.Document) *models.ListingRecord {
	record := &models.ListingRecord{}

	record.Name = parser.NormalizeText(doc.Find("h1").First().Text())

	var categories []string
	doc.Find(`button[jsaction*="pane.rating.category"]`).Each(func(_ int, sel *goquery.Selection) {
		if category := parser.NormalizeText(sel.Text()); category != "" {
			categories = append(categories, category)
		}
	})
	record.BusinessType = strings.Join(categories, ", ")

	if address := parser.NormalizeText(doc.Find(`button[data-item-id="address"]`).First().Text()); address != "" {
		record.Address = address
		record.Location = address
	}

	var phones []string
	doc.Find(`button[data-item-id^="phone"]`).Each(func(_ int, sel *goquery.Selection) {
		if phone := parser.NormalizeText(sel.Text()); phone != "" {
			phones = append(phones, phone)
		}
	})
	if len(phones) > 0 {
		record.Phone = phones[0]
		record.AdditionalPhones = phones[1:]
	}

	if href, ok := doc.Find(`a[data-item-id="authority"]`).First().Attr("href"); ok {
		record.Website = strings.TrimSpace(href)
	}

	if label, ok := doc.Find(`span[role="img"][aria-label*="stars"]`).First().Attr("aria-label"); ok {
		record.Rating = parser.ParseRating(label)
	}

	record.SocialMedia = socialLinks(doc)
	record.AdditionalInfo = additionalInfo(doc)

	return record
}

// socialLinks collects distinct social platform targets off the listing.
func socialLinks(doc *goquery.Document) []string {
	table := DefaultSelectors()
	seen := make(map[string]struct{})
	var links []string
	for _, selector := range table.SocialLinks {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			href, ok := sel.Attr("href")
			if !ok || href == "" {
				return
			}
			if _, dup := seen[href]; dup {
				return
			}
			seen[href] = struct{}{}
			links = append(links, href)
		})
	}
	return links
}

// additionalInfo assembles the description, hours, a few review excerpts,
// categories, and about sections into the free-text context blob.
func additionalInfo(doc *goquery.Document) string {
	var parts []string
	push := func(text string) {
		if text = parser.NormalizeText(text); text != "" {
			parts = append(parts, text)
		}
	}

	push(doc.Find(`[data-item-id="description"]`).First().Text())
	push(doc.Find(`[data-item-id="oh"]`).First().Text())

	count := 0
	doc.Find(".MyEned, .wiI7pd").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := parser.NormalizeText(sel.Text())
		if text == "" {
			return true
		}
		if len(text) > reviewExcerptLen {
			text = text[:reviewExcerptLen]
		}
		parts = append(parts, text)
		count++
		return count < maxReviewExcerpts
	})

	doc.Find(".DkEaL").Each(func(_ int, sel *goquery.Selection) {
		push(sel.Text())
	})
	doc.Find(".PbZDve, .PYvSYb, .LBgpqf").Each(func(_ int, sel *goquery.Selection) {
		push(sel.Text())
	})

	return strings.Join(parts, " ")
}
