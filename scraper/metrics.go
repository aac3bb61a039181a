package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/raghavshulka/maps-llm-based-scrapper/models"
)

// Metrics bundles Prometheus collectors for a scrape session.
type Metrics struct {
	Registry               *prometheus.Registry
	ListingsProcessedTotal prometheus.Counter
	EmailsFoundTotal       *prometheus.CounterVec
	RemoteAttemptsTotal    *prometheus.CounterVec
	HarvestRetriesTotal    prometheus.Counter
	ListingDuration        prometheus.Histogram
	ErrorsTotal            *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	listings := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_listings_processed_total",
			Help: "Total listings run through the email pipeline.",
		},
	)
	emailsFound := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_emails_found_total",
			Help: "Primary emails found, by provenance.",
		},
		[]string{"provenance"},
	)
	remoteAttempts := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_remote_attempts_total",
			Help: "Remote collaborator calls, by service.",
		},
		[]string{"service"},
	)
	harvestRetries := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_harvest_retries_total",
			Help: "Re-harvest attempts after an empty first pass.",
		},
	)
	listingDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scraper_listing_duration_seconds",
			Help:    "Time spent per listing, harvest through pipeline.",
			Buckets: prometheus.DefBuckets,
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_errors_total",
			Help: "Total number of scraper errors by type.",
		},
		[]string{"error_type"},
	)

	registry.MustRegister(listings, emailsFound, remoteAttempts, harvestRetries, listingDuration, errorsTotal)

	return &Metrics{
		Registry:               registry,
		ListingsProcessedTotal: listings,
		EmailsFoundTotal:       emailsFound,
		RemoteAttemptsTotal:    remoteAttempts,
		HarvestRetriesTotal:    harvestRetries,
		ListingDuration:        listingDuration,
		ErrorsTotal:            errorsTotal,
	}
}

// IncListing increments the processed listings counter.
func (m *Metrics) IncListing() {
	if m == nil {
		return
	}
	m.ListingsProcessedTotal.Inc()
}

// IncEmailFound counts a primary email by its provenance.
func (m *Metrics) IncEmailFound(p models.Provenance) {
	if m == nil {
		return
	}
	m.EmailsFoundTotal.WithLabelValues(string(p)).Inc()
}

// IncRemoteAttempt counts a call to a remote collaborator.
func (m *Metrics) IncRemoteAttempt(service string) {
	if m == nil {
		return
	}
	m.RemoteAttemptsTotal.WithLabelValues(service).Inc()
}

// IncHarvestRetry increments the re-harvest counter.
func (m *Metrics) IncHarvestRetry() {
	if m == nil {
		return
	}
	m.HarvestRetriesTotal.Inc()
}

// ObserveListingDuration records how long one listing took end to end.
func (m *Metrics) ObserveListingDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.ListingDuration.Observe(d.Seconds())
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}
