// Package scraper drives a scraping session: walking the visible listings,
// resolving an email for each through the fallback states, and streaming
// accepted records into the pipeline.
package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/raghavshulka/maps-llm-based-scrapper/config"
	"github.com/raghavshulka/maps-llm-based-scrapper/harvest"
	"github.com/raghavshulka/maps-llm-based-scrapper/models"
	"github.com/raghavshulka/maps-llm-based-scrapper/pipeline"
)

// ListingView is one listing's live view: a document source plus the ability
// to expand its collapsed sections.
type ListingView interface {
	harvest.PageSource
	harvest.Expander
}

// Surface is the results surface the session sweeps. Implementations wrap
// whatever actually renders listings; the session only ever sees documents.
type Surface interface {
	// WaitReady blocks until the results surface exists, or fails when it
	// never appears within the deadline.
	WaitReady(ctx context.Context) error
	// Listings returns views of every result currently visible, in display
	// order. Repeated calls may return a longer list as more results load.
	Listings(ctx context.Context) ([]ListingView, error)
	// ScrollResults asks the surface to load more results. Implementations
	// that cannot scroll return false.
	ScrollResults(ctx context.Context) (bool, error)
}

// staleSweepLimit is how many consecutive sweeps may yield nothing new
// before the session concludes the surface is exhausted.
const staleSweepLimit = 3

// Session runs one scraping pass over a results surface. Listings are
// processed strictly one at a time; Stop and context cancellation are
// honoured between listings and between major steps.
type Session struct {
	cfg          *config.Config
	runID        string
	surface      Surface
	orchestrator *Orchestrator
	pipe         *pipeline.Pipeline
	metrics      *Metrics
	log          *slog.Logger

	active atomic.Bool

	processedCount int64
	emailCount     int64
	errorCount     int64

	mu           sync.Mutex
	records      []*models.ListingRecord
	errorsByType map[string]int
}

// NewSession wires a session together. Every session gets a fresh run ID.
func NewSession(cfg *config.Config, surface Surface, orchestrator *Orchestrator, pipe *pipeline.Pipeline, metrics *Metrics) *Session {
	runID := uuid.NewString()
	return &Session{
		cfg:          cfg,
		runID:        runID,
		surface:      surface,
		orchestrator: orchestrator,
		pipe:         pipe,
		metrics:      metrics,
		log:          slog.Default().With(slog.String("run_id", runID)),
		errorsByType: make(map[string]int),
	}
}

// RunID identifies this session in logs and results.
func (s *Session) RunID() string {
	return s.runID
}

// Stop requests a cooperative stop. The listing in flight finishes; nothing
// new starts.
func (s *Session) Stop() {
	s.active.Store(false)
}

// Run sweeps the surface until it is exhausted, stopped, or cancelled.
func (s *Session) Run(ctx context.Context) (*models.SessionResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	s.active.Store(true)
	defer s.active.Store(false)

	start := time.Now()

	waitCtx, cancel := context.WithTimeout(ctx, s.cfg.SurfaceTimeout)
	err := s.surface.WaitReady(waitCtx)
	cancel()
	if err != nil {
		classified := ErrSurfaceUnavailable{Err: err}
		s.noteError(classified)
		return nil, classified
	}

	selfEmail := ""
	selfDetected := false

	processed := 0
	staleSweeps := 0

	for {
		if !s.checkpoint(ctx) {
			break
		}

		views, err := s.surface.Listings(ctx)
		if err != nil {
			s.noteError(err)
			return nil, fmt.Errorf("listing results: %w", err)
		}

		if len(views) <= processed {
			staleSweeps++
			if staleSweeps >= staleSweepLimit {
				s.log.Info("no new results after repeated sweeps, stopping",
					slog.Int("processed", processed))
				break
			}
		} else {
			staleSweeps = 0
		}

		for _, view := range views[min(processed, len(views)):] {
			if !s.checkpoint(ctx) {
				break
			}
			processed++

			if !selfDetected {
				if doc, err := view.Document(ctx); err == nil {
					selfEmail = harvest.DetectSelfEmail(doc, harvest.DefaultSelectors())
					selfDetected = true
					if selfEmail != "" {
						s.log.Debug("excluding operator address from results")
					}
				}
			}

			s.processListing(ctx, view, selfEmail)

			select {
			case <-ctx.Done():
			case <-time.After(s.cfg.Delay):
			}
		}

		if !s.cfg.AutoScroll {
			break
		}
		scrolled, err := s.surface.ScrollResults(ctx)
		if err != nil {
			s.noteError(err)
			break
		}
		if !scrolled && staleSweeps == 0 && len(views) <= processed {
			// Surface cannot load more and everything visible is done.
			break
		}
	}

	stats := s.pipe.Stats()
	s.mu.Lock()
	records := append([]*models.ListingRecord(nil), s.records...)
	s.mu.Unlock()
	return &models.SessionResult{
		RunID:        s.runID,
		Records:      records,
		StartTime:    start,
		EndTime:      time.Now(),
		ListingCount: int(atomic.LoadInt64(&s.processedCount)),
		EmailCount:   int(atomic.LoadInt64(&s.emailCount)),
		ErrorCount:   int(atomic.LoadInt64(&s.errorCount)),
		ErrorsByType: s.snapshotErrors(),
		Stats:        stats,
	}, ctx.Err()
}

// processListing runs one listing end to end: extract its fields, resolve an
// email through the orchestrator, hand the record to the pipeline. Failures
// are recorded and the session moves on.
func (s *Session) processListing(ctx context.Context, view ListingView, selfEmail string) {
	begin := time.Now()
	defer func() {
		s.metrics.ObserveListingDuration(time.Since(begin))
	}()

	doc, err := view.Document(ctx)
	if err != nil {
		s.noteError(err)
		return
	}

	record := harvest.ExtractListing(doc)
	if record.Name == "" {
		s.log.Debug("skipping listing without a name")
		return
	}

	outcome, err := s.orchestrator.FindEmails(ctx, view, view, record, selfEmail)
	if err != nil {
		s.noteError(err)
		return
	}

	if len(outcome.Emails) > 0 {
		record.Email = outcome.Emails[0]
		record.AdditionalEmails = outcome.Emails[1:]
		record.EmailSource = outcome.Source
		atomic.AddInt64(&s.emailCount, 1)
		s.metrics.IncEmailFound(outcome.Source)
	} else {
		s.log.Info("no email found for listing", slog.String("listing", record.Name))
	}

	if err := s.pipe.Process(record); err != nil && err != pipeline.ErrPipelineClosed {
		s.noteError(err)
		return
	}

	atomic.AddInt64(&s.processedCount, 1)
	s.mu.Lock()
	s.records = append(s.records, record)
	s.mu.Unlock()
	s.metrics.IncListing()
	s.log.Info("listing processed",
		slog.String("listing", record.Name),
		slog.String("email", record.Email),
		slog.String("source", string(record.EmailSource)),
	)
}

// checkpoint reports whether the session may keep going.
func (s *Session) checkpoint(ctx context.Context) bool {
	if !s.active.Load() {
		return false
	}
	return ctx.Err() == nil
}

func (s *Session) noteError(err error) {
	atomic.AddInt64(&s.errorCount, 1)
	classified := classifyError(err)
	label := errorTypeLabel(classified)

	s.mu.Lock()
	s.errorsByType[label]++
	s.mu.Unlock()

	s.metrics.IncError(label)
	s.log.Error("session error",
		slog.String("category", label),
		slog.Any("error", err),
	)
}

func (s *Session) snapshotErrors() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.errorsByType))
	for k, v := range s.errorsByType {
		out[k] = v
	}
	return out
}
