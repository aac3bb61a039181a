package remote

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	emailaddress "github.com/mcnijman/go-emailaddress"

	"github.com/raghavshulka/maps-llm-based-scrapper/extract"
)

// contactPathKeywords mark a same-site link as a contact page worth one
// follow-up fetch.
var contactPathKeywords = []string{
	"contact", "about", "impressum", "kontakt", "reach-us", "get-in-touch", "support",
}

// WebsiteFetcher retrieves business websites through public relay endpoints
// and mines the returned markup for addresses. Each relay in the configured
// list is tried once per target, in order; the first success wins and its
// body is cached, so a page shared by several listings is fetched once and
// rescanned from cache.
type WebsiteFetcher struct {
	relays          []string
	timeout         time.Duration
	userAgent       string
	maxContactPages int
	validator       *extract.Validator
	transport       http.RoundTripper
	log             *slog.Logger

	fetched map[string][]byte
}

// NewWebsiteFetcher builds a fetcher over the given relay templates. Each
// template carries a single %s placeholder for the target URL.
func NewWebsiteFetcher(relays []string, timeout time.Duration, userAgent string, maxContactPages int, validator *extract.Validator) *WebsiteFetcher {
	return &WebsiteFetcher{
		relays:          relays,
		timeout:         timeout,
		userAgent:       userAgent,
		maxContactPages: maxContactPages,
		validator:       validator,
		log:             slog.Default(),
		fetched:         make(map[string][]byte),
	}
}

// SetTransport swaps the HTTP transport of every collector the fetcher
// builds. Tests install a mock transport here.
func (f *WebsiteFetcher) SetTransport(rt http.RoundTripper) {
	f.transport = rt
}

// FetchEmails retrieves websiteURL through the relays, scans the body, and
// follows a bounded number of contact pages: links discovered on the page
// plus any extraLinks the caller collected elsewhere. selfEmail occurrences
// are excluded. Returns the validated candidates in discovery order.
func (f *WebsiteFetcher) FetchEmails(ctx context.Context, websiteURL, selfEmail string, extraLinks []string) ([]string, error) {
	body, err := f.fetchViaRelays(ctx, websiteURL)
	if err != nil {
		return nil, err
	}

	candidates := f.scanBody(body)

	links := f.contactPages(websiteURL, body, extraLinks)
	for _, link := range links {
		pageBody, err := f.fetchViaRelays(ctx, link)
		if err != nil {
			f.log.Debug("contact page fetch failed",
				slog.String("url", link), slog.Any("error", err))
			continue
		}
		candidates = append(candidates, f.scanBody(pageBody)...)
	}

	return f.validator.Filter(candidates, selfEmail), nil
}

// fetchViaRelays tries each relay template once, in order, returning the
// first successful body. Successful fetches are cached by target; failures
// are not, so a transient outage does not poison the target for later
// listings.
func (f *WebsiteFetcher) fetchViaRelays(ctx context.Context, target string) ([]byte, error) {
	if body, done := f.fetched[target]; done {
		return body, nil
	}

	var lastErr error
	for _, relay := range f.relays {
		relayURL := renderRelay(relay, target)

		body, err := f.fetchOnce(ctx, relayURL)
		if err != nil {
			f.log.Debug("relay attempt failed",
				slog.String("relay", relayURL), slog.Any("error", err))
			lastErr = err
			continue
		}
		f.fetched[target] = body
		return body, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no relay endpoints configured")
	}
	return nil, fmt.Errorf("fetching %s: %w", target, lastErr)
}

// fetchOnce issues a single GET through a fresh collector.
func (f *WebsiteFetcher) fetchOnce(ctx context.Context, relayURL string) ([]byte, error) {
	collector := colly.NewCollector(colly.UserAgent(f.userAgent))
	collector.SetRequestTimeout(f.timeout)
	collector.IgnoreRobotsTxt = true
	if f.transport != nil {
		collector.WithTransport(f.transport)
	}

	var body []byte
	var fetchErr error

	collector.OnResponse(func(resp *colly.Response) {
		body = resp.Body
	})
	collector.OnError(func(resp *colly.Response, err error) {
		code := 0
		if resp != nil {
			code = resp.StatusCode
		}
		if code > 0 {
			fetchErr = StatusError{Code: code}
		} else {
			fetchErr = err
		}
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if err := collector.Visit(relayURL); err != nil {
		return nil, err
	}
	collector.Wait()

	if fetchErr != nil {
		return nil, fetchErr
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("empty body from %s", relayURL)
	}
	return body, nil
}

// scanBody mines markup for addresses: readable text and mailto targets via
// the document walk, then a raw-byte pass that catches addresses hidden in
// scripts or attributes.
func (f *WebsiteFetcher) scanBody(body []byte) []string {
	var candidates []string

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body))); err == nil {
		text := doc.Text()
		candidates = append(candidates, extract.Scan(text)...)
		candidates = append(candidates, extract.DecodeObfuscated(text)...)
		doc.Find(`a[href^="mailto:"]`).Each(func(_ int, sel *goquery.Selection) {
			if href, ok := sel.Attr("href"); ok {
				candidates = append(candidates, extract.Scan(href)...)
			}
		})
	}

	for _, found := range emailaddress.Find(body, false) {
		candidates = append(candidates, strings.ToLower(found.String()))
	}

	return candidates
}

// contactPages merges discovered and caller-supplied contact links, resolves
// them against the site root, and bounds the result.
func (f *WebsiteFetcher) contactPages(siteURL string, body []byte, extraLinks []string) []string {
	base, err := url.Parse(siteURL)
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var pages []string
	add := func(raw string) {
		ref, err := url.Parse(strings.TrimSpace(raw))
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref)
		if resolved.Host != base.Host {
			return
		}
		link := resolved.String()
		if link == siteURL {
			return
		}
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}
		pages = append(pages, link)
	}

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body))); err == nil {
		doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
			href, ok := sel.Attr("href")
			if !ok || strings.HasPrefix(strings.ToLower(href), "mailto:") {
				return
			}
			haystack := strings.ToLower(href + " " + sel.Text())
			for _, keyword := range contactPathKeywords {
				if strings.Contains(haystack, keyword) {
					add(href)
					break
				}
			}
		})
	}
	for _, link := range extraLinks {
		add(link)
	}

	if len(pages) > f.maxContactPages {
		pages = pages[:f.maxContactPages]
	}
	return pages
}

// renderRelay substitutes the target into a relay template, escaping it when
// the placeholder sits in the query string.
func renderRelay(template, target string) string {
	idx := strings.Index(template, "%s")
	if idx < 0 {
		return template
	}
	if strings.Contains(template[:idx], "?") {
		return fmt.Sprintf(template, url.QueryEscape(target))
	}
	return fmt.Sprintf(template, target)
}
