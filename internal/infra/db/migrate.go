package db

import (
	"database/sql"
)

// MigrateUp creates the stories table and its indexes. Every statement is
// idempotent.
func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS stories (
    id             SERIAL PRIMARY KEY,
    publisher      TEXT NOT NULL,
    product        TEXT NOT NULL,
    doc_date       DATE NOT NULL,
    seq            INTEGER NOT NULL,
    headline       TEXT,
    body_text      TEXT,
    body_html      TEXT,
    summary_text   TEXT,
    summary_html   TEXT,
    press_cutout   TEXT,
    urgency        INTEGER NOT NULL DEFAULT 0,
    language       VARCHAR(8),
    website        TEXT,
    coding         JSONB NOT NULL DEFAULT '{}'::jsonb,
    subject_codes  TEXT[] NOT NULL DEFAULT '{}',
    company_codes  TEXT[] NOT NULL DEFAULT '{}',
    display_date   TIMESTAMPTZ,
    transmitted_at TIMESTAMPTZ,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (publisher, product, doc_date, seq)
)`); err != nil {
		return err
	}

	indexes := []string{
		// latest stories first
		`CREATE INDEX IF NOT EXISTS idx_stories_doc_date ON stories(doc_date DESC, seq DESC)`,
		// "all stories coded N/ERN" and "all stories about ADDYY"
		`CREATE INDEX IF NOT EXISTS idx_stories_subject_codes ON stories USING gin(subject_codes)`,
		`CREATE INDEX IF NOT EXISTS idx_stories_company_codes ON stories USING gin(company_codes)`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	// Needs pg_trgm, which may be missing or need superuser
	_, _ = db.Exec(`CREATE EXTENSION IF NOT EXISTS pg_trgm`)
	_, _ = db.Exec(`CREATE INDEX IF NOT EXISTS idx_stories_headline_gin ON stories USING gin(headline gin_trgm_ops)`)

	return nil
}
