package harvest

import "testing"

func TestDetectSelfEmailProfileBadge(t *testing.T) {
	doc := mustDoc(t, `<body>
		<div class="gb_A"><img alt="Google Account: Jane (owner@gmail.com)"></div>
	</body>`)

	if got := DetectSelfEmail(doc, DefaultSelectors()); got != "owner@gmail.com" {
		t.Fatalf("DetectSelfEmail = %q, want owner@gmail.com", got)
	}
}

func TestDetectSelfEmailAccountMenu(t *testing.T) {
	doc := mustDoc(t, `<body>
		<div class="gb_u">Signed in as owner@gmail.com</div>
	</body>`)

	if got := DetectSelfEmail(doc, DefaultSelectors()); got != "owner@gmail.com" {
		t.Fatalf("DetectSelfEmail = %q, want owner@gmail.com", got)
	}
}

func TestDetectSelfEmailScriptPrefersGmail(t *testing.T) {
	doc := mustDoc(t, `<body>
		<script>var session = {"contact":"help@maps.example","account":"owner@gmail.com"};</script>
	</body>`)

	if got := DetectSelfEmail(doc, DefaultSelectors()); got != "owner@gmail.com" {
		t.Fatalf("DetectSelfEmail = %q, want owner@gmail.com", got)
	}
}

func TestDetectSelfEmailNotFound(t *testing.T) {
	doc := mustDoc(t, `<body><p>nothing signed in</p></body>`)

	if got := DetectSelfEmail(doc, DefaultSelectors()); got != "" {
		t.Fatalf("DetectSelfEmail = %q, want empty", got)
	}
}
