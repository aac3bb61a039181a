// Package models defines data structures for the scraper.
package models

import (
	"strings"
	"time"
)

// Provenance records which pipeline stage produced an accepted email.
type Provenance string

const (
	// ProvenanceDirect means the email was harvested from the listing panel itself.
	ProvenanceDirect Provenance = "direct"
	// ProvenanceWebsite means the email was scraped from the business website.
	ProvenanceWebsite Provenance = "website"
	// ProvenanceAI means the email came from language-model analysis or generation.
	ProvenanceAI Provenance = "ai"
	// ProvenanceInferred means the email was guessed from the website domain.
	ProvenanceInferred Provenance = "inferred"
)

// Valid reports whether p is one of the known provenance tags.
func (p Provenance) Valid() bool {
	switch p {
	case ProvenanceDirect, ProvenanceWebsite, ProvenanceAI, ProvenanceInferred:
		return true
	}
	return false
}

// ListingRecord is one scraped business entry. Records are append-only:
// once accepted into the result collection they are never mutated.
type ListingRecord struct {
	Name               string     `csv:"name" json:"name"`
	Address            string     `csv:"address" json:"address"`
	Phone              string     `csv:"phone" json:"phone"`
	AdditionalPhones   []string   `csv:"additional_phones" json:"additional_phones,omitempty"`
	Website            string     `csv:"website" json:"website"`
	Rating             string     `csv:"rating" json:"rating"`
	Email              string     `csv:"email" json:"email"`
	AdditionalEmails   []string   `csv:"additional_emails" json:"additional_emails,omitempty"`
	SocialMedia        []string   `csv:"social_media" json:"social_media,omitempty"`
	AdditionalContacts []string   `csv:"additional_contacts" json:"additional_contacts,omitempty"`
	EmailSource        Provenance `csv:"email_source" json:"email_source,omitempty"`

	// BusinessType and Location feed the language-model prompt placeholders.
	BusinessType string `json:"business_type,omitempty"`
	Location     string `json:"location,omitempty"`
	// AdditionalInfo is free text used only as model-prompt context.
	AdditionalInfo string `json:"additional_info,omitempty"`

	ScrapedAt time.Time `csv:"scraped_at" json:"scraped_at"`
}

// Key returns the identity used for de-duplication. Two records with the
// same (name, address) pair describe the same listing.
func (r *ListingRecord) Key() string {
	return strings.TrimSpace(r.Name) + "\x00" + strings.TrimSpace(r.Address)
}

// EmailStats counts primary emails per provenance tag. Each ListingRecord
// with a primary email increments exactly one counter.
type EmailStats struct {
	Direct   int `json:"direct"`
	Website  int `json:"website"`
	AI       int `json:"ai"`
	Inferred int `json:"inferred"`
}

// Count increments the counter matching the provenance tag.
func (s *EmailStats) Count(p Provenance) {
	switch p {
	case ProvenanceWebsite:
		s.Website++
	case ProvenanceAI:
		s.AI++
	case ProvenanceInferred:
		s.Inferred++
	default:
		s.Direct++
	}
}

// Total returns the number of primary emails found across all stages.
func (s *EmailStats) Total() int {
	return s.Direct + s.Website + s.AI + s.Inferred
}

// SessionResult holds the overall outcome of one scraping session.
type SessionResult struct {
	RunID        string
	Records      []*ListingRecord
	StartTime    time.Time
	EndTime      time.Time
	ListingCount int
	EmailCount   int
	ErrorCount   int
	ErrorsByType map[string]int
	Stats        EmailStats
}
