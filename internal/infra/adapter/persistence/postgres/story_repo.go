package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"djnml-feed/internal/domain/entity"
	"djnml-feed/internal/observability/metrics"
	"djnml-feed/internal/repository"
	"djnml-feed/internal/resilience/circuitbreaker"
	"djnml-feed/internal/resilience/retry"

	"github.com/lib/pq"
)

// querier is satisfied by *sql.DB and *circuitbreaker.DBCircuitBreaker.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type StoryRepo struct {
	db      querier
	updates *StoryUpdateBuilder
	retry   retry.Config
}

// NewStoryRepo guards db with the store circuit breaker.
func NewStoryRepo(db *sql.DB) repository.StoryRepository {
	return NewStoryRepoWithBreaker(circuitbreaker.NewDBCircuitBreaker(db))
}

func NewStoryRepoWithBreaker(dcb *circuitbreaker.DBCircuitBreaker) *StoryRepo {
	return &StoryRepo{
		db:      dcb,
		updates: NewStoryUpdateBuilder(),
		retry:   retry.DBConfig(),
	}
}

func (repo *StoryRepo) exec(ctx context.Context, operation, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	defer func() { metrics.RecordOperationDuration(operation, time.Since(start)) }()

	var res sql.Result
	err := retry.WithBackoff(ctx, repo.retry, func() error {
		var err error
		res, err = repo.db.ExecContext(ctx, query, args...)
		return err
	})
	return res, err
}

func (repo *StoryRepo) Upsert(ctx context.Context, doc *entity.Document) error {
	if doc == nil || !doc.HasContent() {
		return fmt.Errorf("Upsert: %w: document has no body", entity.ErrInvalidInput)
	}
	key, err := doc.Key()
	if err != nil {
		return fmt.Errorf("Upsert: %w", err)
	}
	coding, err := json.Marshal(doc.Coding)
	if err != nil {
		return fmt.Errorf("Upsert: marshal coding: %w", err)
	}

	const query = `
INSERT INTO stories
       (publisher, product, doc_date, seq, headline, body_text, body_html, urgency,
        language, website, coding, subject_codes, company_codes, display_date, transmitted_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
ON CONFLICT (publisher, product, doc_date, seq) DO UPDATE SET
       headline       = EXCLUDED.headline,
       body_text      = EXCLUDED.body_text,
       body_html      = EXCLUDED.body_html,
       urgency        = EXCLUDED.urgency,
       language       = EXCLUDED.language,
       website        = EXCLUDED.website,
       coding         = EXCLUDED.coding,
       subject_codes  = EXCLUDED.subject_codes,
       company_codes  = EXCLUDED.company_codes,
       display_date   = EXCLUDED.display_date,
       transmitted_at = EXCLUDED.transmitted_at,
       updated_at     = now()`
	_, err = repo.exec(ctx, "story_upsert", query,
		key.Publisher, key.Product, key.DocDate, key.Seq,
		doc.Headline, doc.Text, doc.HTML, doc.Urgency,
		doc.Language, doc.Website, string(coding),
		pq.Array(doc.Coding.SubjectSymbols()), pq.Array(nonNil(doc.CompanyCodes)),
		doc.DisplayDate, doc.TransmissionDate,
	)
	if err != nil {
		return fmt.Errorf("Upsert: %w", err)
	}
	return nil
}

func (repo *StoryRepo) Get(ctx context.Context, key entity.StoryKey) (*repository.Story, error) {
	const query = `
SELECT headline, body_text, summary_text, press_cutout, urgency, language,
       subject_codes, company_codes, updated_at
FROM stories
WHERE publisher = $1 AND product = $2 AND doc_date = $3 AND seq = $4
LIMIT 1`
	start := time.Now()
	defer func() { metrics.RecordOperationDuration("story_get", time.Since(start)) }()

	story := repository.Story{Key: key}
	err := repo.db.QueryRowContext(ctx, query, key.Publisher, key.Product, key.DocDate, key.Seq).
		Scan(&story.Headline, &story.Text, &story.Summary, &story.PressCutout, &story.Urgency,
			&story.Language, pq.Array(&story.SubjectCodes), pq.Array(&story.CompanyCodes), &story.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("Get %s: %w", key, entity.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &story, nil
}

func (repo *StoryRepo) Delete(ctx context.Context, key entity.StoryKey) (bool, error) {
	const query = `
DELETE FROM stories
WHERE publisher = $1 AND product = $2 AND doc_date = $3 AND seq = $4`
	res, err := repo.exec(ctx, "story_delete", query, key.Publisher, key.Product, key.DocDate, key.Seq)
	if err != nil {
		return false, fmt.Errorf("Delete: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (repo *StoryRepo) ApplyModification(ctx context.Context, key entity.StoryKey, mod entity.Modification) (bool, error) {
	setClause, args, err := repo.updates.BuildSetClause(mod)
	if err != nil {
		return false, fmt.Errorf("ApplyModification: %w", err)
	}

	next := len(args) + 1
	args = append(args, key.Publisher, key.Product, key.DocDate, key.Seq)
	query := fmt.Sprintf(`
UPDATE stories SET %s
WHERE publisher = $%d AND product = $%d AND doc_date = $%d AND seq = $%d`,
		setClause, next, next+1, next+2, next+3)

	res, err := repo.exec(ctx, "story_modify", query, args...)
	if err != nil {
		return false, fmt.Errorf("ApplyModification: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
