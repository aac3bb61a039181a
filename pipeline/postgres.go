package pipeline

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/lib/pq"

	"github.com/raghavshulka/maps-llm-based-scrapper/models"
)

const createListingsTable = `
CREATE TABLE IF NOT EXISTS listings (
	name                TEXT NOT NULL,
	address             TEXT NOT NULL DEFAULT '',
	phone               TEXT,
	additional_phones   TEXT,
	website             TEXT,
	email               TEXT,
	additional_emails   TEXT,
	social_media        TEXT,
	additional_contacts TEXT,
	rating              TEXT,
	email_source        TEXT,
	scraped_at          TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (name, address)
)`

const insertListing = `
INSERT INTO listings (
	name, address, phone, additional_phones, website,
	email, additional_emails, social_media, additional_contacts,
	rating, email_source, scraped_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (name, address) DO NOTHING`

// PostgresWriter persists records into a listings table. The (name, address)
// primary key makes inserts idempotent across runs.
type PostgresWriter struct {
	db *sql.DB
	mu sync.Mutex

	written int64
}

// NewPostgresWriter connects with the given DSN and ensures the schema.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.Exec(createListingsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create listings table: %w", err)
	}
	return &PostgresWriter{db: db}, nil
}

// Write inserts the records in one transaction.
func (pw *PostgresWriter) Write(records []*models.ListingRecord) error {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	tx, err := pw.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	stmt, err := tx.Prepare(insertListing)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, record := range records {
		_, err := stmt.Exec(
			record.Name,
			record.Address,
			record.Phone,
			strings.Join(record.AdditionalPhones, "; "),
			record.Website,
			record.Email,
			strings.Join(record.AdditionalEmails, "; "),
			strings.Join(record.SocialMedia, "; "),
			strings.Join(record.AdditionalContacts, "; "),
			record.Rating,
			string(record.EmailSource),
			record.ScrapedAt,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("insert listing %q: %w", record.Name, err)
		}
		pw.written++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// Validate ensures at least one record reached the database.
func (pw *PostgresWriter) Validate() error {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	if pw.written == 0 {
		return fmt.Errorf("no listings written to postgres")
	}
	return nil
}
