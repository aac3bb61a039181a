package pipeline

import (
	"strconv"
	"sync"
	"testing"

	"github.com/raghavshulka/maps-llm-based-scrapper/models"
)

type mockWriter struct {
	mu          sync.Mutex
	batches     [][]*models.ListingRecord
	closed      bool
	validateErr error
}

func (mw *mockWriter) Write(records []*models.ListingRecord) error {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	copyBatch := make([]*models.ListingRecord, len(records))
	copy(copyBatch, records)
	mw.batches = append(mw.batches, copyBatch)
	return nil
}

func (mw *mockWriter) Close() error {
	mw.mu.Lock()
	mw.closed = true
	mw.mu.Unlock()
	return nil
}

func (mw *mockWriter) Validate() error {
	return mw.validateErr
}

func (mw *mockWriter) written() []*models.ListingRecord {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	var all []*models.ListingRecord
	for _, batch := range mw.batches {
		all = append(all, batch...)
	}
	return all
}

func TestPipelineWritesRecords(t *testing.T) {
	writer := &mockWriter{}
	p := NewPipeline(writer)
	p.Start(1)

	for i := 0; i < 5; i++ {
		record := &models.ListingRecord{
			Name:    "Business " + strconv.Itoa(i),
			Address: "Street " + strconv.Itoa(i),
		}
		if err := p.Process(record); err != nil {
			t.Fatalf("process: %v", err)
		}
	}

	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if got := len(writer.written()); got != 5 {
		t.Fatalf("written=%d, want 5", got)
	}
}

func TestPipelineDeduplicatesFirstWins(t *testing.T) {
	writer := &mockWriter{}
	p := NewPipeline(writer)
	p.Start(1)

	first := &models.ListingRecord{
		Name:        "Acme Plumbing",
		Address:     "12 High St",
		Email:       "info@acme.com",
		EmailSource: models.ProvenanceDirect,
	}
	duplicate := &models.ListingRecord{
		Name:        "Acme Plumbing",
		Address:     "12 High St",
		Email:       "other@acme.com",
		EmailSource: models.ProvenanceWebsite,
	}
	distinct := &models.ListingRecord{
		Name:    "Acme Plumbing",
		Address: "99 Other Rd",
	}

	if err := p.Process(first, duplicate, distinct); err != nil {
		t.Fatalf("process: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	written := writer.written()
	if len(written) != 2 {
		t.Fatalf("written=%d, want 2", len(written))
	}
	if written[0].Email != "info@acme.com" {
		t.Fatalf("first record email = %q, duplicate overwrote the original", written[0].Email)
	}
}

func TestPipelineCountsProvenanceStats(t *testing.T) {
	writer := &mockWriter{}
	p := NewPipeline(writer)
	p.Start(1)

	records := []*models.ListingRecord{
		{Name: "A", Email: "a@acme.com", EmailSource: models.ProvenanceDirect},
		{Name: "B", Email: "b@acme.com", EmailSource: models.ProvenanceWebsite},
		{Name: "C", Email: "c@acme.com", EmailSource: models.ProvenanceAI},
		{Name: "D", Email: "d@acme.com", EmailSource: models.ProvenanceInferred},
		{Name: "E"},
	}
	if err := p.Process(records...); err != nil {
		t.Fatalf("process: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	stats := p.Stats()
	if stats.Direct != 1 || stats.Website != 1 || stats.AI != 1 || stats.Inferred != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.Total() != 4 {
		t.Fatalf("total = %d, want 4", stats.Total())
	}
}

func TestPipelineDropsInvalidRecords(t *testing.T) {
	writer := &mockWriter{}
	p := NewPipeline(writer)
	p.Start(1)

	if err := p.Process(&models.ListingRecord{Address: "nameless"}); err != nil {
		t.Fatalf("process: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if got := len(writer.written()); got != 0 {
		t.Fatalf("written=%d, want 0", got)
	}
	metrics := p.GetMetrics()
	validation := metrics["validation_errors"].(map[string]int)
	if validation["invalid_record"] != 1 {
		t.Fatalf("validation errors = %v", validation)
	}
}

func TestPipelineNormalizesAdditionalEmails(t *testing.T) {
	writer := &mockWriter{}
	p := NewPipeline(writer)
	p.Start(1)

	record := &models.ListingRecord{
		Name:             "Acme",
		Email:            "Info@Acme.com",
		EmailSource:      models.ProvenanceDirect,
		AdditionalEmails: []string{"info@acme.com", "Sales@Acme.com", "sales@acme.com", ""},
	}
	if err := p.Process(record); err != nil {
		t.Fatalf("process: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	written := writer.written()
	if len(written) != 1 {
		t.Fatalf("written=%d, want 1", len(written))
	}
	got := written[0]
	if got.Email != "info@acme.com" {
		t.Fatalf("primary = %q", got.Email)
	}
	if len(got.AdditionalEmails) != 1 || got.AdditionalEmails[0] != "sales@acme.com" {
		t.Fatalf("additional emails = %v", got.AdditionalEmails)
	}
}

func TestPipelineRejectsAfterClose(t *testing.T) {
	writer := &mockWriter{}
	p := NewPipeline(writer)
	p.Start(1)

	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := p.Process(&models.ListingRecord{Name: "late"}); err != ErrPipelineClosed {
		t.Fatalf("process after close = %v, want ErrPipelineClosed", err)
	}
}
