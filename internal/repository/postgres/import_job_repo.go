package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"frigo/internal/domain"
	"frigo/internal/port"
)

type importJobRepo struct {
	db *sqlx.DB
}

// NewImportJobRepo creates a new PostgreSQL-backed ImportJobRepository.
func NewImportJobRepo(db *sqlx.DB) port.ImportJobRepository {
	return &importJobRepo{db: db}
}

func (r *importJobRepo) Create(ctx context.Context, job *domain.ImportJob) error {
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO import_jobs (
			id, user_id, source_type, source_url, photo_bucket, photo_key,
			photo_content_type, book_id, state, warning, standardized, extracted,
			matches, final_title, error_code, error_message, attempts, retry_after,
			recipe_id, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18,
			$19, $20, $21
		)`,
		job.ID, job.UserID, job.SourceType, job.SourceURL, job.PhotoBucket, job.PhotoKey,
		job.PhotoContentType, job.BookID, job.State, job.Warning, job.Standardized,
		job.Extracted,
		job.Matches, job.FinalTitle, job.ErrorCode, job.ErrorMessage, job.Attempts,
		job.RetryAfter,
		job.RecipeID, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("importJobRepo.Create: %w", err)
	}
	return nil
}

func (r *importJobRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.ImportJob, error) {
	var job domain.ImportJob
	err := r.db.GetContext(ctx, &job,
		"SELECT * FROM import_jobs WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrImportNotFound
		}
		return nil, fmt.Errorf("importJobRepo.GetByID: %w", err)
	}
	return &job, nil
}

func (r *importJobRepo) Update(ctx context.Context, job *domain.ImportJob) error {
	job.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx,
		`UPDATE import_jobs SET
			state = $1, warning = $2, standardized = $3, extracted = $4,
			matches = $5, final_title = $6, error_code = $7, error_message = $8,
			attempts = $9, retry_after = $10, recipe_id = $11, updated_at = $12
		 WHERE id = $13`,
		job.State, job.Warning, job.Standardized, job.Extracted,
		job.Matches, job.FinalTitle, job.ErrorCode, job.ErrorMessage,
		job.Attempts, job.RetryAfter, job.RecipeID, job.UpdatedAt,
		job.ID)
	if err != nil {
		return fmt.Errorf("importJobRepo.Update: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("importJobRepo.Update rows: %w", err)
	}
	if rows == 0 {
		return domain.ErrImportNotFound
	}
	return nil
}

func (r *importJobRepo) ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.ImportJob, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM import_jobs WHERE user_id = $1", userID)
	if err != nil {
		return nil, 0, fmt.Errorf("importJobRepo.ListByUser count: %w", err)
	}

	var jobs []domain.ImportJob
	err = r.db.SelectContext(ctx, &jobs,
		`SELECT * FROM import_jobs WHERE user_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("importJobRepo.ListByUser: %w", err)
	}
	return jobs, total, nil
}

// ClaimQueued atomically moves due rate-limited jobs back to the parsing
// state and returns them. FOR UPDATE SKIP LOCKED keeps concurrent workers
// from claiming the same row.
func (r *importJobRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.ImportJob, error) {
	var jobs []domain.ImportJob
	err := r.db.SelectContext(ctx, &jobs,
		`UPDATE import_jobs SET state = $1, updated_at = NOW()
		 WHERE id IN (
			SELECT id FROM import_jobs
			WHERE state = $2 AND (retry_after IS NULL OR retry_after <= NOW())
			ORDER BY updated_at
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		 )
		 RETURNING *`,
		domain.StateParsing, domain.StateQueued, limit)
	if err != nil {
		return nil, fmt.Errorf("importJobRepo.ClaimQueued: %w", err)
	}
	return jobs, nil
}

// RequeueStale sweeps parsing claims whose updated_at is older than olderThan
// back to the queued state. Running pipelines touch updated_at on every stage
// transition, so anything older than the pipeline deadline was orphaned by a
// crashed worker.
func (r *importJobRepo) RequeueStale(ctx context.Context, olderThan time.Duration) (int, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE import_jobs SET state = $1, retry_after = NULL, updated_at = NOW()
		 WHERE state = $2 AND updated_at < NOW() - ($3 * INTERVAL '1 second')`,
		domain.StateQueued, domain.StateParsing, int(olderThan.Seconds()))
	if err != nil {
		return 0, fmt.Errorf("importJobRepo.RequeueStale: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("importJobRepo.RequeueStale rows: %w", err)
	}
	return int(rows), nil
}
