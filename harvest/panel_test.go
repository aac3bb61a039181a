package harvest

import (
	"testing"
)

func TestPanelFilterInScope(t *testing.T) {
	doc := mustDoc(t, `<body>
		<div class="gb_A"><span id="chrome">account</span></div>
		<div data-section-id="pane">
			<div class="Io6YTe"><span id="panel">details</span></div>
			<div class="gb_u"><span id="nested-chrome">menu</span></div>
		</div>
		<div><span id="unclaimed">floating</span></div>
	</body>`)

	filter := NewPanelFilter(DefaultSelectors())

	tests := []struct {
		name string
		id   string
		want bool
	}{
		{name: "inside panel", id: "panel", want: true},
		{name: "inside chrome", id: "chrome", want: false},
		{name: "chrome nested in panel still excluded", id: "nested-chrome", want: false},
		{name: "matching neither defaults to kept", id: "unclaimed", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := doc.Find("#" + tt.id)
			if sel.Length() == 0 {
				t.Fatalf("fixture missing #%s", tt.id)
			}
			if got := filter.InScope(sel); got != tt.want {
				t.Fatalf("InScope(#%s) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestPanelFilterEmptySelection(t *testing.T) {
	doc := mustDoc(t, `<div></div>`)
	filter := NewPanelFilter(DefaultSelectors())
	if filter.InScope(doc.Find("#missing")) {
		t.Fatal("empty selection should not be in scope")
	}
	if filter.InScope(nil) {
		t.Fatal("nil selection should not be in scope")
	}
}
