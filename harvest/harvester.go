package harvest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/raghavshulka/maps-llm-based-scrapper/extract"
)

// PageSource supplies decorated documents of the current listing view. A
// fresh document is requested per attempt so expanded sections become
// visible on rescans.
type PageSource interface {
	Document(ctx context.Context) (*goquery.Document, error)
}

// Expander triggers the expansion of collapsed detail sections before a
// rescan. Implementations that cannot act (static snapshots) return nil.
type Expander interface {
	Expand(ctx context.Context, selectors []string) error
}

// Result is one harvest attempt's yield: validated candidate emails in
// discovery order, and contact page links collected for the remote fetcher.
// Contact links are data, never dereferenced here.
type Result struct {
	Emails       []string
	ContactLinks []string
}

// candidateAttrs are the element attributes worth scanning for embedded
// addresses.
var candidateAttrs = []string{
	"title", "aria-label", "data-value", "data-email", "data-contact-email",
	"data-business-email", "data-tooltip", "data-email-address", "content",
}

// Harvester runs the scan passes over a listing document. All candidates go
// through the shared validator with the operator's self email excluded.
type Harvester struct {
	table       SelectorTable
	filter      *PanelFilter
	validator   *extract.Validator
	maxTries    int
	settleDelay time.Duration
	onRetry     func()
	log         *slog.Logger
}

// OnRetry registers a hook invoked once per re-harvest attempt. Used to feed
// retry counters without coupling this package to a metrics backend.
func (h *Harvester) OnRetry(hook func()) {
	h.onRetry = hook
}

// NewHarvester builds a Harvester. maxTries bounds HarvestWithRetries;
// settleDelay is the base wait between attempts.
func NewHarvester(table SelectorTable, validator *extract.Validator, maxTries int, settleDelay time.Duration) *Harvester {
	if maxTries < 1 {
		maxTries = 1
	}
	return &Harvester{
		table:       table,
		filter:      NewPanelFilter(table),
		validator:   validator,
		maxTries:    maxTries,
		settleDelay: settleDelay,
		log:         slog.Default(),
	}
}

// Harvest scans doc with every pass, in priority order, and returns the
// validated candidates plus collected contact links. selfEmail is the
// operator's account address; its occurrences are never reported.
func (h *Harvester) Harvest(doc *goquery.Document, selfEmail string) Result {
	var candidates []string
	add := func(more ...string) {
		candidates = append(candidates, more...)
	}

	// Pass 1: priority contact locations.
	for _, selector := range h.table.Priority {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			if h.filter.InScope(sel) {
				add(h.scanSelection(sel)...)
			}
		})
	}

	// Pass 2: raw text nodes, gated on '@' so the walk stays cheap.
	if root := doc.Get(0); root != nil {
		h.walkTextNodes(doc, root, add)
	}

	// Pass 3: clickable surfaces.
	for _, selector := range h.table.Clickables {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			if !h.filter.InScope(sel) {
				return
			}
			if href, ok := sel.Attr("href"); ok {
				add(extract.Scan(href)...)
			}
			add(extract.Scan(sel.Text())...)
		})
	}

	// Pass 4: structured data blocks.
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		add(extract.Scan(sel.Text())...)
	})

	// Pass 5: meta tags carrying an address.
	doc.Find(`meta[content*="@"]`).Each(func(_ int, sel *goquery.Selection) {
		if content, ok := sel.Attr("content"); ok {
			add(extract.Scan(content)...)
		}
	})

	// Pass 6: review bodies.
	for _, selector := range h.table.Reviews {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			if h.filter.InScope(sel) {
				add(extract.Scan(sel.Text())...)
			}
		})
	}

	// Pass 7: social and outbound links, text and target both.
	for _, selector := range h.table.SocialLinks {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			if !h.filter.InScope(sel) {
				return
			}
			href, _ := sel.Attr("href")
			add(extract.Scan(sel.Text() + " " + href)...)
		})
	}

	// Pass 8: hidden and collapsed sections, including their raw markup.
	for _, selector := range h.table.Hidden {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			if !h.filter.InScope(sel) {
				return
			}
			text := sel.Text()
			add(extract.Scan(text)...)
			add(extract.DecodeObfuscated(text)...)
			if markup, err := sel.Html(); err == nil {
				add(extract.Scan(markup)...)
			}
		})
	}

	// Pass 9: image alt and title text.
	for _, selector := range h.table.Images {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			if !h.filter.InScope(sel) {
				return
			}
			alt, _ := sel.Attr("alt")
			title, _ := sel.Attr("title")
			add(extract.Scan(alt + " " + title)...)
		})
	}

	// Pass 10: contact page links, collected for the remote fetcher.
	links := h.contactLinks(doc)

	return Result{
		Emails:       h.validator.Filter(candidates, selfEmail),
		ContactLinks: links,
	}
}

// HarvestWithRetries runs Harvest up to the configured attempt cap. Between
// attempts it asks the expander to open collapsed sections, waits a settle
// delay that grows with the attempt number, and rescans a fresh document.
func (h *Harvester) HarvestWithRetries(ctx context.Context, src PageSource, expander Expander, selfEmail string) (Result, error) {
	var last Result
	for attempt := 1; attempt <= h.maxTries; attempt++ {
		doc, err := src.Document(ctx)
		if err != nil {
			return last, fmt.Errorf("loading listing document: %w", err)
		}

		last = h.Harvest(doc, selfEmail)
		if len(last.Emails) > 0 || attempt == h.maxTries {
			return last, nil
		}

		h.log.Debug("harvest found nothing, expanding and retrying",
			slog.Int("attempt", attempt))
		if h.onRetry != nil {
			h.onRetry()
		}
		if expander != nil {
			if err := expander.Expand(ctx, h.table.Expanders); err != nil {
				h.log.Debug("expand failed", slog.Any("error", err))
			}
		}

		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-time.After(h.settleDelay * time.Duration(attempt)):
		}
	}
	return last, nil
}

// scanSelection pulls candidates out of one element: mailto target,
// attribute values, visible text, raw markup, and obfuscated spellings.
func (h *Harvester) scanSelection(sel *goquery.Selection) []string {
	var out []string

	if href, ok := sel.Attr("href"); ok && strings.HasPrefix(strings.ToLower(href), "mailto:") {
		target := strings.TrimPrefix(strings.ToLower(href), "mailto:")
		if q := strings.IndexAny(target, "?&"); q >= 0 {
			target = target[:q]
		}
		out = append(out, extract.Scan(target)...)
	}

	for _, attr := range candidateAttrs {
		if val, ok := sel.Attr(attr); ok && strings.Contains(val, "@") {
			out = append(out, extract.Scan(val)...)
		}
	}

	text := sel.Text()
	out = append(out, extract.Scan(text)...)
	out = append(out, extract.DecodeObfuscated(text)...)

	if markup, err := sel.Html(); err == nil && strings.Contains(markup, "@") {
		out = append(out, extract.Scan(markup)...)
	}

	return out
}

// walkTextNodes visits every text node under root and scans the ones that
// can possibly hold an address. Script and style bodies are skipped; the
// structured-data pass handles scripts on its own.
func (h *Harvester) walkTextNodes(doc *goquery.Document, root *html.Node, add func(...string)) {
	for node := root.FirstChild; node != nil; node = node.NextSibling {
		switch node.Type {
		case html.TextNode:
			if !strings.Contains(node.Data, "@") {
				continue
			}
			if parent := node.Parent; parent != nil {
				if name := parent.Data; name == "script" || name == "style" {
					continue
				}
				if !h.filter.InScope(doc.FindNodes(parent)) {
					continue
				}
			}
			add(extract.Scan(node.Data)...)
			add(extract.DecodeObfuscated(node.Data)...)
		case html.ElementNode:
			h.walkTextNodes(doc, node, add)
		}
	}
}

// contactLinks collects distinct anchor targets whose text or target names a
// contact page.
func (h *Harvester) contactLinks(doc *goquery.Document) []string {
	seen := make(map[string]struct{})
	var links []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || href == "" || strings.HasPrefix(strings.ToLower(href), "mailto:") {
			return
		}
		haystack := strings.ToLower(href + " " + sel.Text())
		for _, keyword := range h.table.ContactKeywords {
			if strings.Contains(haystack, keyword) {
				if _, dup := seen[href]; !dup {
					seen[href] = struct{}{}
					links = append(links, href)
				}
				break
			}
		}
	})
	return links
}
