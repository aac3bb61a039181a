package harvest

import "github.com/PuerkitoBio/goquery"

// PanelFilter decides whether a matched element belongs to the listing's
// detail panel or to surrounding application chrome. Chrome carries the
// operator's own account address, so everything under a chrome root is
// dropped before validation ever sees it.
type PanelFilter struct {
	table SelectorTable
}

// NewPanelFilter returns a filter over the given landmark table.
func NewPanelFilter(table SelectorTable) *PanelFilter {
	return &PanelFilter{table: table}
}

// InScope reports whether sel is inside the listing detail panel. Chrome
// membership always wins; after that, membership in a known panel confirms
// the element, and an element matching neither set is kept. The host surface
// renames panels too often for a strict allow list.
func (f *PanelFilter) InScope(sel *goquery.Selection) bool {
	if sel == nil || sel.Length() == 0 {
		return false
	}
	for _, chrome := range f.table.ExcludeChrome {
		if sel.Closest(chrome).Length() > 0 {
			return false
		}
	}
	for _, panel := range f.table.IncludePanels {
		if sel.Closest(panel).Length() > 0 {
			return true
		}
	}
	return true
}
