package remote

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"

	"github.com/raghavshulka/maps-llm-based-scrapper/extract"
)

const siteURL = "https://acme.com/"

var testRelays = []string{
	"https://relay-one.test/raw?url=%s",
	"https://relay-two.test/raw?url=%s",
}

func newMockedFetcher(t *testing.T) (*WebsiteFetcher, *httpmock.MockTransport) {
	t.Helper()
	transport := httpmock.NewMockTransport()
	fetcher := NewWebsiteFetcher(testRelays, 5*time.Second, "test-agent", 2, extract.NewValidator(0))
	fetcher.SetTransport(transport)
	return fetcher, transport
}

func registerRelay(transport *httpmock.MockTransport, relayHost, target string, responder httpmock.Responder) {
	transport.RegisterResponderWithQuery(http.MethodGet,
		"https://"+relayHost+"/raw",
		url.Values{"url": {target}},
		responder)
}

func TestFetchEmailsFirstRelayWins(t *testing.T) {
	fetcher, transport := newMockedFetcher(t)
	registerRelay(transport, "relay-one.test", siteURL,
		httpmock.NewStringResponder(200, `<html><body>Write to info@acme.com</body></html>`))

	emails, err := fetcher.FetchEmails(context.Background(), siteURL, "", nil)
	if err != nil {
		t.Fatalf("FetchEmails: %v", err)
	}
	if len(emails) != 1 || emails[0] != "info@acme.com" {
		t.Fatalf("emails = %v, want [info@acme.com]", emails)
	}
	if calls := transport.GetCallCountInfo(); len(calls) != 1 {
		t.Fatalf("unexpected relay traffic: %v", calls)
	}
}

func TestFetchEmailsFailover(t *testing.T) {
	fetcher, transport := newMockedFetcher(t)
	registerRelay(transport, "relay-one.test", siteURL,
		httpmock.NewStringResponder(502, "bad gateway"))
	registerRelay(transport, "relay-two.test", siteURL,
		httpmock.NewStringResponder(200, `<html><body>sales@acme.com</body></html>`))

	emails, err := fetcher.FetchEmails(context.Background(), siteURL, "", nil)
	if err != nil {
		t.Fatalf("FetchEmails: %v", err)
	}
	if len(emails) != 1 || emails[0] != "sales@acme.com" {
		t.Fatalf("emails = %v, want [sales@acme.com]", emails)
	}
}

func TestFetchEmailsAllRelaysFail(t *testing.T) {
	fetcher, transport := newMockedFetcher(t)
	registerRelay(transport, "relay-one.test", siteURL,
		httpmock.NewStringResponder(500, "down"))
	registerRelay(transport, "relay-two.test", siteURL,
		httpmock.NewStringResponder(503, "down"))

	if _, err := fetcher.FetchEmails(context.Background(), siteURL, "", nil); err == nil {
		t.Fatal("expected error when every relay fails")
	}
}

func TestFetchEmailsFollowsContactPage(t *testing.T) {
	fetcher, transport := newMockedFetcher(t)
	home := `<html><body><a href="/contact">Contact us</a><p>no address here</p></body></html>`
	contact := `<html><body><a href="mailto:hello@acme.com">mail us</a></body></html>`
	registerRelay(transport, "relay-one.test", siteURL,
		httpmock.NewStringResponder(200, home))
	registerRelay(transport, "relay-one.test", "https://acme.com/contact",
		httpmock.NewStringResponder(200, contact))

	emails, err := fetcher.FetchEmails(context.Background(), siteURL, "", nil)
	if err != nil {
		t.Fatalf("FetchEmails: %v", err)
	}
	if len(emails) != 1 || emails[0] != "hello@acme.com" {
		t.Fatalf("emails = %v, want [hello@acme.com]", emails)
	}
}

func TestFetchEmailsRawByteScan(t *testing.T) {
	fetcher, transport := newMockedFetcher(t)
	body := `<html><body><script>var contact = {email: "office@acme.com"};</script></body></html>`
	registerRelay(transport, "relay-one.test", siteURL,
		httpmock.NewStringResponder(200, body))

	emails, err := fetcher.FetchEmails(context.Background(), siteURL, "", nil)
	if err != nil {
		t.Fatalf("FetchEmails: %v", err)
	}
	if len(emails) != 1 || emails[0] != "office@acme.com" {
		t.Fatalf("emails = %v, want [office@acme.com]", emails)
	}
}

func TestFetchEmailsExcludesSelf(t *testing.T) {
	fetcher, transport := newMockedFetcher(t)
	registerRelay(transport, "relay-one.test", siteURL,
		httpmock.NewStringResponder(200, `<html><body>owner@gmail.com and info@acme.com</body></html>`))

	emails, err := fetcher.FetchEmails(context.Background(), siteURL, "owner@gmail.com", nil)
	if err != nil {
		t.Fatalf("FetchEmails: %v", err)
	}
	if len(emails) != 1 || emails[0] != "info@acme.com" {
		t.Fatalf("emails = %v, want [info@acme.com]", emails)
	}
}

func TestFetchEmailsServesRepeatTargetsFromCache(t *testing.T) {
	fetcher, transport := newMockedFetcher(t)
	registerRelay(transport, "relay-one.test", siteURL,
		httpmock.NewStringResponder(200, `<html><body>info@acme.com</body></html>`))

	first, err := fetcher.FetchEmails(context.Background(), siteURL, "", nil)
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	second, err := fetcher.FetchEmails(context.Background(), siteURL, "", nil)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if len(first) != 1 || len(second) != 1 || first[0] != second[0] {
		t.Fatalf("results differ across calls: %v vs %v", first, second)
	}
	if total := transport.GetTotalCallCount(); total != 1 {
		t.Fatalf("relay hit %d times for the same target, want 1", total)
	}
}

func TestFetchEmailsRetriesTargetAfterFailure(t *testing.T) {
	fetcher, transport := newMockedFetcher(t)
	registerRelay(transport, "relay-one.test", siteURL,
		httpmock.NewStringResponder(500, "down"))
	registerRelay(transport, "relay-two.test", siteURL,
		httpmock.NewStringResponder(503, "down"))

	if _, err := fetcher.FetchEmails(context.Background(), siteURL, "", nil); err == nil {
		t.Fatal("expected error while every relay is down")
	}

	registerRelay(transport, "relay-one.test", siteURL,
		httpmock.NewStringResponder(200, `<html><body>info@acme.com</body></html>`))

	emails, err := fetcher.FetchEmails(context.Background(), siteURL, "", nil)
	if err != nil {
		t.Fatalf("fetch after recovery: %v", err)
	}
	if len(emails) != 1 || emails[0] != "info@acme.com" {
		t.Fatalf("emails = %v, want [info@acme.com]", emails)
	}
}

func TestRenderRelay(t *testing.T) {
	tests := []struct {
		template string
		target   string
		want     string
	}{
		{
			template: "https://relay.test/raw?url=%s",
			target:   "https://acme.com/a b",
			want:     "https://relay.test/raw?url=" + url.QueryEscape("https://acme.com/a b"),
		},
		{
			template: "https://relay.test/fetch/%s",
			target:   "https://acme.com/",
			want:     "https://relay.test/fetch/https://acme.com/",
		},
	}

	for _, tt := range tests {
		if got := renderRelay(tt.template, tt.target); got != tt.want {
			t.Fatalf("renderRelay(%q, %q) = %q, want %q", tt.template, tt.target, got, tt.want)
		}
	}
}
