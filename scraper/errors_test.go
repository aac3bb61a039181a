package scraper

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"testing"

	"github.com/raghavshulka/maps-llm-based-scrapper/remote"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "deadline exceeded" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantLabel string
	}{
		{
			name:      "deadline exceeded",
			err:       fmt.Errorf("fetch: %w", context.DeadlineExceeded),
			wantLabel: "timeout",
		},
		{
			name:      "net timeout",
			err:       timeoutErr{},
			wantLabel: "timeout",
		},
		{
			name:      "connection refused",
			err:       &net.OpError{Op: "dial", Err: errors.New("connection refused")},
			wantLabel: "connection",
		},
		{
			name:      "forbidden status",
			err:       remote.StatusError{Code: http.StatusForbidden},
			wantLabel: "forbidden",
		},
		{
			name:      "missing resource",
			err:       fmt.Errorf("relay: %w", remote.StatusError{Code: http.StatusNotFound}),
			wantLabel: "not_found",
		},
		{
			name:      "rate limited",
			err:       remote.StatusError{Code: http.StatusTooManyRequests},
			wantLabel: "rate_limited",
		},
		{
			name:      "surface never appeared",
			err:       ErrSurfaceUnavailable{Err: errors.New("no results")},
			wantLabel: "surface_unavailable",
		},
		{
			name:      "unclassified",
			err:       errors.New("something else"),
			wantLabel: "other",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errorTypeLabel(classifyError(tt.err))
			if got != tt.wantLabel {
				t.Fatalf("errorTypeLabel(classifyError(%v)) = %q, want %q", tt.err, got, tt.wantLabel)
			}
		})
	}

	if classifyError(nil) != nil {
		t.Fatal("classifyError(nil) should stay nil")
	}
}

func TestSurfaceUnavailableMessage(t *testing.T) {
	err := ErrSurfaceUnavailable{Err: errors.New("timed out")}
	if err.Error() == "" {
		t.Fatal("empty operator message")
	}
	if errors.Unwrap(err) != err.Err {
		t.Fatal("wrapped cause not reachable")
	}
}
