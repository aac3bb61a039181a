package remote

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
)

const testEndpoint = "https://llm.test/api/v1/chat/completions"

func newMockedClient(t *testing.T) (*Client, *httpmock.MockTransport) {
	t.Helper()
	transport := httpmock.NewMockTransport()
	client := NewClient(testEndpoint, "test-model", "test-key-1234567890", 5*time.Second)
	client.SetTransport(transport)
	return client, transport
}

func TestCompleteReturnsContent(t *testing.T) {
	client, transport := newMockedClient(t)
	transport.RegisterResponder(http.MethodPost, testEndpoint,
		httpmock.NewStringResponder(200, `{"choices":[{"message":{"content":"info@acme.com"}}]}`))

	got, err := client.Complete(context.Background(), "system", "user", Options{Temperature: 0.3, MaxTokens: 50})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "info@acme.com" {
		t.Fatalf("content = %q, want info@acme.com", got)
	}
}

func TestCompleteSendsAuthAndModel(t *testing.T) {
	client, transport := newMockedClient(t)
	var gotAuth string
	transport.RegisterResponder(http.MethodPost, testEndpoint,
		func(req *http.Request) (*http.Response, error) {
			gotAuth = req.Header.Get("Authorization")
			return httpmock.NewStringResponse(200, `{"choices":[{"message":{"content":"ok"}}]}`), nil
		})

	if _, err := client.Complete(context.Background(), "s", "u", Options{}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if gotAuth != "Bearer test-key-1234567890" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
}

func TestCompleteStatusError(t *testing.T) {
	client, transport := newMockedClient(t)
	transport.RegisterResponder(http.MethodPost, testEndpoint,
		httpmock.NewStringResponder(429, `rate limited`))

	_, err := client.Complete(context.Background(), "s", "u", Options{})
	var statusErr StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error = %v, want StatusError", err)
	}
	if statusErr.Code != 429 {
		t.Fatalf("status = %d, want 429", statusErr.Code)
	}
}

func TestCompleteEmptyChoices(t *testing.T) {
	client, transport := newMockedClient(t)
	transport.RegisterResponder(http.MethodPost, testEndpoint,
		httpmock.NewStringResponder(200, `{"choices":[]}`))

	if _, err := client.Complete(context.Background(), "s", "u", Options{}); err == nil {
		t.Fatal("expected error for empty choices")
	}
}
