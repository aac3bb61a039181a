package extract

import (
	"reflect"
	"testing"
)

func TestValidate(t *testing.T) {
	v := NewValidator(0)

	tests := []struct {
		name      string
		candidate string
		selfEmail string
		want      bool
	}{
		{name: "plain business domain", candidate: "jane@acme.com", want: true},
		{name: "role on business domain", candidate: "info@acme.com", want: true},
		{name: "malformed", candidate: "not-an-email", want: false},
		{name: "missing tld", candidate: "jane@acme", want: false},
		{name: "self email excluded", candidate: "owner@gmail.com", selfEmail: "owner@gmail.com", want: false},
		{name: "self email case insensitive", candidate: "owner@gmail.com", selfEmail: "Owner@Gmail.com", want: false},
		{name: "same address without self", candidate: "owner@gmail.com", want: true},

		// Denylist.
		{name: "noreply subdomain", candidate: "noreply@service.google.com", want: false},
		{name: "placeholder domain", candidate: "test@example.com", want: false},
		{name: "image density suffix", candidate: "logo@2x.png", want: false},
		{name: "infrastructure role", candidate: "admin@acme.com", want: false},
		{name: "webmaster role", candidate: "webmaster@acme.com", want: false},
		{name: "social platform", candidate: "jane@facebook.com", want: false},
		{name: "link shortener", candidate: "hi@bit.ly", want: false},

		// Personal providers.
		{name: "keyword softens gmail", candidate: "sales@gmail.com", want: true},
		{name: "name shape softens gmail", candidate: "jane.doe@gmail.com", want: true},
		{name: "suspicious gmail", candidate: "ab1234@gmail.com", want: false},
		{name: "digits only gmail", candidate: "12345@gmail.com", want: false},
		{name: "obviously personal gmail", candidate: "jane5678@gmail.com", want: false},

		// Suspicious shapes on non-personal domains.
		{name: "test prefix", candidate: "testuser@acme.com", want: false},
		{name: "short alnum", candidate: "a1@acme.com", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.Validate(tt.candidate, tt.selfEmail); got != tt.want {
				t.Fatalf("Validate(%q, %q) = %v, want %v", tt.candidate, tt.selfEmail, got, tt.want)
			}
		})
	}
}

func TestValidateDeterministic(t *testing.T) {
	v := NewValidator(8)
	for i := 0; i < 3; i++ {
		if !v.Validate("info@acme.com", "") {
			t.Fatalf("run %d: info@acme.com rejected", i)
		}
		if v.Validate("noreply@acme.com", "") {
			t.Fatalf("run %d: noreply@acme.com accepted", i)
		}
	}
}

func TestFilter(t *testing.T) {
	v := NewValidator(0)

	in := []string{
		"Info@Acme.com",
		"info@acme.com",
		"noreply@acme.com",
		"owner@gmail.com",
		"jane@acme.com",
	}
	want := []string{"info@acme.com", "jane@acme.com"}

	got := v.Filter(in, "owner@gmail.com")
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Filter = %v, want %v", got, want)
	}

	// Same inputs, same decisions.
	if again := v.Filter(in, "owner@gmail.com"); !reflect.DeepEqual(again, got) {
		t.Fatalf("second Filter = %v, want %v", again, got)
	}
}

func TestScanThenValidate(t *testing.T) {
	v := NewValidator(0)

	text := `Contact info@acme.com, press@acme.com or noreply@notifications.acme.com.
Assets: sprite@2x.png. Socials: share@facebook.com.`

	want := []string{"info@acme.com", "press@acme.com"}
	got := v.Filter(Scan(text), "")
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Filter(Scan(...)) = %v, want %v", got, want)
	}
}
