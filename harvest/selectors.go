// Package harvest walks decorated listing documents and pulls out business
// contact data: emails in all their hiding places, the listing's own fields,
// and the operator's account address for self-exclusion.
package harvest

// SelectorTable groups the landmark selectors the harvester relies on. The
// host surface renames its classes often, so the table is data, versioned,
// and replaceable wholesale without touching harvester logic.
type SelectorTable struct {
	Version string

	// Priority locations likely to carry a contact address, scanned first.
	Priority []string

	// Clickable surfaces whose text or target may embed an address.
	Clickables []string

	// Review bodies. Customers sometimes quote the business's address.
	Reviews []string

	// Social and outbound website links.
	SocialLinks []string

	// Collapsed or invisible sections that still carry markup.
	Hidden []string

	// Controls that expand collapsed sections before a rescan.
	Expanders []string

	// Alt/title text of images sometimes encodes an address.
	Images []string

	// Detail-panel roots. An element inside one is listing content.
	IncludePanels []string

	// Application chrome roots. Anything inside these is never listing
	// content, whatever else matches.
	ExcludeChrome []string

	// Operator profile badge surfaces, for self-email detection.
	Profile []string

	// Account menu surfaces, the self-email fallback.
	AccountMenus []string

	// Substrings that mark an anchor as a contact page link.
	ContactKeywords []string
}

// DefaultSelectors returns the current landmark table for the maps listing
// surface.
func DefaultSelectors() SelectorTable {
	return SelectorTable{
		Version: "2024-06",

		Priority: []string{
			`a[href^="mailto:"]`,
			`.Io6YTe`,
			`.rogA2c`,
			`.AeaXub`,
			`.section-contact-line`,
			`.section-contact-text`,
			`.section-contact-info`,
			`.section-info`,
			`.section-about`,
			`.section-description`,
			`.section-overview-text`,
			`.section-hero-header-description`,
			`[data-value*="@"]`,
			`[data-email]`,
			`[data-contact-email]`,
			`[data-business-email]`,
			`[title*="@"]`,
			`[aria-label*="@"]`,
			`[data-tooltip*="@"]`,
			`.email-link`,
			`.contact-email`,
			`.business-email`,
			`.email-address`,
			`.contact-info-item`,
			`.business-contact-item`,
			`.info-item`,
			`.contact-method`,
			`[data-test-id*="contact"]`,
			`[data-test-id*="email"]`,
			`.contact-card`,
			`.info-card`,
			`span[aria-label*="email"]`,
			`span[aria-label*="Email"]`,
			`div[aria-label*="email"]`,
			`div[aria-label*="Email"]`,
			`[data-email-address]`,
			`.widget-pane-info`,
			`.place-contact-info`,
			`.ugiz4pqJLAG__primary-text`,
			`.RcCsl`,
			`.MyEned`,
			`[data-tooltip*="Email"]`,
			`[data-tooltip*="email"]`,
			`[data-tooltip*="Contact"]`,
			`[data-tooltip*="contact"]`,
		},

		Clickables: []string{
			`a`,
			`button`,
			`[role="button"]`,
			`[onclick]`,
			`[data-click]`,
		},

		Reviews: []string{
			`.MyEned`,
			`.wiI7pd`,
			`.GWSFIe`,
			`.section-review-text`,
			`.section-review-content`,
			`.review-text`,
			`.review-content`,
			`.review-body`,
			`.user-review`,
			`.business-review`,
		},

		SocialLinks: []string{
			`a[href*="facebook"]`,
			`a[href*="twitter"]`,
			`a[href*="instagram"]`,
			`a[href*="linkedin"]`,
			`a[href*="yelp"]`,
			`a[href*="foursquare"]`,
		},

		Hidden: []string{
			`[style*="display: none"]`,
			`[style*="visibility: hidden"]`,
			`.collapsed`,
			`.hidden`,
			`.expandable`,
			`.show-more`,
			`.additional-info`,
			`.more-info`,
			`.extra-info`,
			`.expanded-content`,
			`.toggle-content`,
		},

		Expanders: []string{
			`[data-value="Show more"]`,
			`[data-value="See more"]`,
			`.show-more`,
			`.expand`,
			`.more-info`,
			`[aria-expanded="false"]`,
		},

		Images: []string{
			`img[alt*="@"]`,
			`img[title*="@"]`,
		},

		IncludePanels: []string{
			`[data-section-id="pane"]`,
			`[data-section-id="overlay"]`,
			`.section-layout-root`,
			`.section-layout`,
			`.section-hero-header`,
			`.section-info`,
			`.section-reviews`,
			`.section-contact-info`,
			`.section-about`,
			`.section-description`,
			`.section-overview`,
			`.section-business-details`,
			`.rogA2c`,
			`.PbZDve`,
			`.PYvSYb`,
			`.LBgpqf`,
			`.AeaXub`,
			`.Io6YTe`,
			`.t39EBf`,
			`.OqCZI`,
		},

		ExcludeChrome: []string{
			`.gb_A`,
			`.gb_u`,
			`.gb_z`,
			`.gb_lb`,
			`.gb_H`,
			`.gb_mb`,
			`.gb_nb`,
			`[data-section-id="searchbox"]`,
			`[data-section-id="directions"]`,
			`[data-section-id="navbar"]`,
			`[data-section-id="header"]`,
			`nav`,
			`header`,
			`.navbar`,
			`.header`,
			`.navigation`,
		},

		Profile: []string{
			`.gb_A img[alt*="@"]`,
			`.gb_A img[title*="@"]`,
			`.gb_A [data-email]`,
			`.gb_A [title*="@"]`,
			`.gb_A [aria-label*="@"]`,
			`img[alt*="@gmail.com"]`,
			`img[title*="@gmail.com"]`,
			`[data-account-email]`,
			`[data-user-email]`,
		},

		AccountMenus: []string{
			`.gb_A`,
			`.gb_u`,
			`.gb_z`,
			`.gb_lb`,
			`.gb_H`,
			`.gb_mb`,
			`.gb_nb`,
		},

		ContactKeywords: []string{
			"contact",
			"about",
			"impressum",
			"kontakt",
			"reach-us",
			"reach_us",
			"get-in-touch",
			"support",
		},
	}
}
